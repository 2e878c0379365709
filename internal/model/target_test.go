package model

import (
	"errors"
	"testing"
)

func TestNewTarget(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		rawURL     string
		wantScheme Scheme
		wantStr    string
		wantErr    error
	}{
		{
			name:       "valid http URL",
			rawURL:     "http://example.com/status",
			wantScheme: SchemeHTTP,
			wantStr:    "http://example.com/status",
			wantErr:    nil,
		},
		{
			name:       "valid https URL",
			rawURL:     "https://example.com/status",
			wantScheme: SchemeHTTPS,
			wantStr:    "https://example.com/status",
			wantErr:    nil,
		},
		{
			name:       "uppercase scheme and host should be normalized",
			rawURL:     "HTTP://EXAMPLE.COM/Path",
			wantScheme: SchemeHTTP,
			wantStr:    "http://example.com/Path",
			wantErr:    nil,
		},
		{
			name:       "empty path normalized to root",
			rawURL:     "https://example.com",
			wantScheme: SchemeHTTPS,
			wantStr:    "https://example.com/",
			wantErr:    nil,
		},
		{
			name:       "host with port is preserved",
			rawURL:     "http://example.com:8080/debug",
			wantScheme: SchemeHTTP,
			wantStr:    "http://example.com:8080/debug",
			wantErr:    nil,
		},
		{
			name:       "query string is preserved",
			rawURL:     "http://example.com/search?q=error",
			wantScheme: SchemeHTTP,
			wantStr:    "http://example.com/search?q=error",
			wantErr:    nil,
		},
		{
			name:       "surrounding whitespace is trimmed",
			rawURL:     "  http://example.com/  ",
			wantScheme: SchemeHTTP,
			wantStr:    "http://example.com/",
			wantErr:    nil,
		},
		{
			name:    "empty URL",
			rawURL:  "",
			wantErr: ErrEmptyTarget,
		},
		{
			name:    "whitespace-only URL",
			rawURL:  "   ",
			wantErr: ErrEmptyTarget,
		},
		{
			name:    "bare hostname without scheme",
			rawURL:  "example.com",
			wantErr: ErrInvalidTarget,
		},
		{
			name:    "scheme without host",
			rawURL:  "http://",
			wantErr: ErrInvalidTarget,
		},
		{
			name:    "malformed URL",
			rawURL:  "http://exa mple.com/",
			wantErr: ErrInvalidTarget,
		},
		{
			name:    "unsupported ftp scheme",
			rawURL:  "ftp://example.com/",
			wantErr: ErrUnsupportedScheme,
		},
		{
			name:    "unsupported file scheme",
			rawURL:  "file:///etc/passwd",
			wantErr: ErrInvalidTarget,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			target, err := NewTarget(tt.rawURL)

			if tt.wantErr != nil {
				if err == nil {
					t.Errorf("expected error %v, got nil", tt.wantErr)
				} else if !errors.Is(err, tt.wantErr) {
					t.Errorf("expected error %v, got %v", tt.wantErr, err)
				}
				return
			}

			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}

			if target.Scheme() != tt.wantScheme {
				t.Errorf("expected scheme %v, got %v", tt.wantScheme, target.Scheme())
			}
			if target.String() != tt.wantStr {
				t.Errorf("expected %q, got %q", tt.wantStr, target.String())
			}
		})
	}
}

func TestTarget_Methods(t *testing.T) {
	t.Parallel()

	plain, _ := NewTarget("http://example.com:8080/status")
	secure, _ := NewTarget("https://example.com/")

	t.Run("String returns full URL", func(t *testing.T) {
		t.Parallel()
		if got := plain.String(); got != "http://example.com:8080/status" {
			t.Errorf("expected full URL, got %s", got)
		}
	})

	t.Run("Host includes port", func(t *testing.T) {
		t.Parallel()
		if got := plain.Host(); got != "example.com:8080" {
			t.Errorf("expected host with port, got %s", got)
		}
	})

	t.Run("Hostname strips port", func(t *testing.T) {
		t.Parallel()
		if got := plain.Hostname(); got != "example.com" {
			t.Errorf("expected bare hostname, got %s", got)
		}
	})

	t.Run("IsTLS returns true for https", func(t *testing.T) {
		t.Parallel()
		if !secure.IsTLS() {
			t.Error("expected IsTLS to be true")
		}
		if plain.IsTLS() {
			t.Error("expected IsTLS to be false")
		}
	})

	t.Run("URL returns an independent copy", func(t *testing.T) {
		t.Parallel()
		u := plain.URL()
		u.Path = "/mutated"
		if plain.String() != "http://example.com:8080/status" {
			t.Error("expected Target to be unaffected by URL copy mutation")
		}
	})

	t.Run("Equals compares targets", func(t *testing.T) {
		t.Parallel()
		plainCopy, _ := NewTarget("http://example.com:8080/status")
		if !plain.Equals(plainCopy) {
			t.Error("expected targets to be equal")
		}
		if plain.Equals(secure) {
			t.Error("expected targets to be different")
		}
	})

	t.Run("IsZero returns true for zero value", func(t *testing.T) {
		t.Parallel()
		var zero Target
		if !zero.IsZero() {
			t.Error("expected zero value to be zero")
		}
		if plain.IsZero() {
			t.Error("expected non-zero value to not be zero")
		}
	})

	t.Run("zero value accessors return empty", func(t *testing.T) {
		t.Parallel()
		var zero Target
		if zero.String() != "" {
			t.Errorf("expected empty string, got %q", zero.String())
		}
		if zero.Host() != "" {
			t.Errorf("expected empty host, got %q", zero.Host())
		}
		if zero.URL() != nil {
			t.Error("expected nil URL for zero value")
		}
	})
}

func TestScheme_String(t *testing.T) {
	t.Parallel()

	tests := []struct {
		scheme Scheme
		want   string
	}{
		{SchemeHTTP, "http"},
		{SchemeHTTPS, "https"},
		{SchemeUnknown, "unknown"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.want, func(t *testing.T) {
			t.Parallel()
			if got := tt.scheme.String(); got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestMustNewTarget(t *testing.T) {
	t.Parallel()

	t.Run("valid URL does not panic", func(t *testing.T) {
		t.Parallel()
		defer func() {
			if r := recover(); r != nil {
				t.Errorf("unexpected panic: %v", r)
			}
		}()
		_ = MustNewTarget("https://example.com/")
	})

	t.Run("invalid URL panics", func(t *testing.T) {
		t.Parallel()
		defer func() {
			if r := recover(); r == nil {
				t.Error("expected panic for invalid URL")
			}
		}()
		_ = MustNewTarget("not-a-url")
	})
}

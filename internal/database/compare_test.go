package database

import (
	"testing"

	"github.com/nao1215/vscan/internal/model"
)

func TestCompare(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name              string
		previousFindings  []model.Finding
		currentFindings   []model.Finding
		wantNewCount      int
		wantResolvedCount int
		wantUnchanged     int
		wantDirection     string
	}{
		{
			name: "no changes when findings are identical",
			previousFindings: []model.Finding{
				{Type: "stack_trace", Value: "Traceback (most recent call last):", Location: "https://staging.example.com/broken", Severity: model.SeverityHigh, SeverityText: "HIGH"},
			},
			currentFindings: []model.Finding{
				{Type: "stack_trace", Value: "Traceback (most recent call last):", Location: "https://staging.example.com/broken", Severity: model.SeverityHigh, SeverityText: "HIGH"},
			},
			wantNewCount:      0,
			wantResolvedCount: 0,
			wantUnchanged:     1,
			wantDirection:     RiskUnchanged,
		},
		{
			name:             "detects new findings",
			previousFindings: []model.Finding{},
			currentFindings: []model.Finding{
				{Type: "database_error", Value: "You have an error in your SQL syntax", Location: "https://staging.example.com/search", Severity: model.SeverityHigh, SeverityText: "HIGH"},
			},
			wantNewCount:      1,
			wantResolvedCount: 0,
			wantUnchanged:     0,
			wantDirection:     RiskWorsened,
		},
		{
			name: "detects resolved findings",
			previousFindings: []model.Finding{
				{Type: "fatal_error", Value: "fatal error:", Location: "https://staging.example.com/login", Severity: model.SeverityHigh, SeverityText: "HIGH"},
			},
			currentFindings:   []model.Finding{},
			wantNewCount:      0,
			wantResolvedCount: 1,
			wantUnchanged:     0,
			wantDirection:     RiskImproved,
		},
		{
			name: "handles mixed changes",
			previousFindings: []model.Finding{
				{Type: "stack_trace", Value: "Traceback (most recent call last):", Location: "https://staging.example.com/broken", Severity: model.SeverityHigh, SeverityText: "HIGH"},
				{Type: "runtime_warning", Value: "warning:", Location: "https://staging.example.com/old", Severity: model.SeverityMedium, SeverityText: "MEDIUM"},
			},
			currentFindings: []model.Finding{
				{Type: "stack_trace", Value: "Traceback (most recent call last):", Location: "https://staging.example.com/broken", Severity: model.SeverityHigh, SeverityText: "HIGH"},
				{Type: "runtime_warning", Value: "warning:", Location: "https://staging.example.com/new", Severity: model.SeverityMedium, SeverityText: "MEDIUM"},
			},
			wantNewCount:      1,
			wantResolvedCount: 1,
			wantUnchanged:     1,
			wantDirection:     RiskUnchanged,
		},
		{
			name: "same signature at a new location counts as new and resolved",
			previousFindings: []model.Finding{
				{Type: "stack_trace", Value: "Traceback (most recent call last):", Location: "https://staging.example.com/a", Severity: model.SeverityHigh, SeverityText: "HIGH"},
			},
			currentFindings: []model.Finding{
				{Type: "stack_trace", Value: "Traceback (most recent call last):", Location: "https://staging.example.com/b", Severity: model.SeverityHigh, SeverityText: "HIGH"},
			},
			wantNewCount:      1,
			wantResolvedCount: 1,
			wantUnchanged:     0,
			wantDirection:     RiskUnchanged,
		},
		{
			name:             "critical finding causes worsened status",
			previousFindings: []model.Finding{},
			currentFindings: []model.Finding{
				{Type: "debug_console", Value: "Werkzeug Debugger", Location: "https://staging.example.com/crash", Severity: model.SeverityCritical, SeverityText: "CRITICAL"},
			},
			wantNewCount:      1,
			wantResolvedCount: 0,
			wantUnchanged:     0,
			wantDirection:     RiskWorsened,
		},
		{
			name: "keyword hits do not outweigh a resolved stack trace",
			previousFindings: []model.Finding{
				{Type: "stack_trace", Value: "Traceback (most recent call last):", Location: "https://staging.example.com/broken", Severity: model.SeverityHigh, SeverityText: "HIGH"},
			},
			currentFindings: []model.Finding{
				{Type: "error_keyword", Value: "exception", Location: "https://staging.example.com/a", Severity: model.SeverityInfo, SeverityText: "INFO"},
				{Type: "error_keyword", Value: "exception", Location: "https://staging.example.com/b", Severity: model.SeverityInfo, SeverityText: "INFO"},
				{Type: "error_keyword", Value: "exception", Location: "https://staging.example.com/c", Severity: model.SeverityInfo, SeverityText: "INFO"},
			},
			wantNewCount:      3,
			wantResolvedCount: 1,
			wantUnchanged:     0,
			wantDirection:     RiskImproved,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			previous := newTestReport(t, "https://staging.example.com", tt.previousFindings...)
			current := newTestReport(t, "https://staging.example.com", tt.currentFindings...)

			result := Compare(previous, current)

			if len(result.NewFindings) != tt.wantNewCount {
				t.Errorf("NewFindings count: got %d, want %d", len(result.NewFindings), tt.wantNewCount)
			}
			if len(result.ResolvedFindings) != tt.wantResolvedCount {
				t.Errorf("ResolvedFindings count: got %d, want %d", len(result.ResolvedFindings), tt.wantResolvedCount)
			}
			if result.UnchangedCount != tt.wantUnchanged {
				t.Errorf("UnchangedCount: got %d, want %d", result.UnchangedCount, tt.wantUnchanged)
			}
			if result.RiskChange.Direction != tt.wantDirection {
				t.Errorf("RiskChange.Direction: got %q, want %q", result.RiskChange.Direction, tt.wantDirection)
			}
		})
	}
}

// TestCompareSummaries tests that the comparison carries host and per-scan summaries.
func TestCompareSummaries(t *testing.T) {
	t.Parallel()

	previous := newTestReport(t, "https://staging.example.com",
		model.Finding{Type: "stack_trace", Value: "Traceback (most recent call last):", Location: "https://staging.example.com/broken", Severity: model.SeverityHigh, SeverityText: "HIGH"},
		model.Finding{Type: "runtime_notice", Value: "notice:", Location: "https://staging.example.com/old", Severity: model.SeverityLow, SeverityText: "LOW"},
	)
	current := newTestReport(t, "https://staging.example.com",
		model.Finding{Type: "runtime_notice", Value: "notice:", Location: "https://staging.example.com/old", Severity: model.SeverityLow, SeverityText: "LOW"},
	)

	result := Compare(previous, current)

	if result.Host != "staging.example.com" {
		t.Errorf("expected host 'staging.example.com', got %q", result.Host)
	}
	if result.PreviousScan.TotalFindings != 2 {
		t.Errorf("expected 2 previous findings, got %d", result.PreviousScan.TotalFindings)
	}
	if result.PreviousScan.HighCount != 1 {
		t.Errorf("expected 1 previous high finding, got %d", result.PreviousScan.HighCount)
	}
	if result.CurrentScan.TotalFindings != 1 {
		t.Errorf("expected 1 current finding, got %d", result.CurrentScan.TotalFindings)
	}
	if result.CurrentScan.LowCount != 1 {
		t.Errorf("expected 1 current low finding, got %d", result.CurrentScan.LowCount)
	}
	if result.PreviousScan.DateScanned.IsZero() {
		t.Error("expected previous scan date to be set")
	}
	if result.CurrentScan.DateScanned.IsZero() {
		t.Error("expected current scan date to be set")
	}
}

// TestCompareWithoutSimpleReports tests comparison of reports that never
// accumulated findings and therefore have no simple report.
func TestCompareWithoutSimpleReports(t *testing.T) {
	t.Parallel()

	bareReport := func() *model.ScanReport {
		return model.NewScanReport(model.MustNewTarget("https://staging.example.com"))
	}

	t.Run("handles missing simple report in previous", func(t *testing.T) {
		t.Parallel()

		current := newTestReport(t, "https://staging.example.com",
			model.Finding{Type: "stack_trace", Value: "Traceback (most recent call last):", Location: "https://staging.example.com/broken", Severity: model.SeverityHigh, SeverityText: "HIGH"},
		)

		result := Compare(bareReport(), current)

		if len(result.NewFindings) != 1 {
			t.Errorf("expected 1 new finding, got %d", len(result.NewFindings))
		}
		if result.RiskChange.Direction != RiskWorsened {
			t.Errorf("expected direction %q, got %q", RiskWorsened, result.RiskChange.Direction)
		}
	})

	t.Run("handles missing simple report in current", func(t *testing.T) {
		t.Parallel()

		previous := newTestReport(t, "https://staging.example.com",
			model.Finding{Type: "stack_trace", Value: "Traceback (most recent call last):", Location: "https://staging.example.com/broken", Severity: model.SeverityHigh, SeverityText: "HIGH"},
		)

		result := Compare(previous, bareReport())

		if len(result.ResolvedFindings) != 1 {
			t.Errorf("expected 1 resolved finding, got %d", len(result.ResolvedFindings))
		}
		if result.RiskChange.Direction != RiskImproved {
			t.Errorf("expected direction %q, got %q", RiskImproved, result.RiskChange.Direction)
		}
	})

	t.Run("handles missing simple report in both", func(t *testing.T) {
		t.Parallel()

		result := Compare(bareReport(), bareReport())

		if len(result.NewFindings) != 0 {
			t.Errorf("expected no new findings, got %d", len(result.NewFindings))
		}
		if len(result.ResolvedFindings) != 0 {
			t.Errorf("expected no resolved findings, got %d", len(result.ResolvedFindings))
		}
		if result.UnchangedCount != 0 {
			t.Errorf("expected 0 unchanged findings, got %d", result.UnchangedCount)
		}
		if result.RiskChange.Direction != RiskUnchanged {
			t.Errorf("expected direction %q, got %q", RiskUnchanged, result.RiskChange.Direction)
		}
	})
}

func TestFindingKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		finding model.Finding
		want    string
	}{
		{
			name:    "generates key with all fields",
			finding: model.Finding{Type: "stack_trace", Value: "Traceback (most recent call last):", Location: "https://staging.example.com/broken"},
			want:    "stack_trace|Traceback (most recent call last):|https://staging.example.com/broken",
		},
		{
			name:    "handles empty location",
			finding: model.Finding{Type: "server_version", Value: "nginx/1.18.0"},
			want:    "server_version|nginx/1.18.0|",
		},
		{
			name:    "handles empty value",
			finding: model.Finding{Type: "default_error_page", Location: "https://staging.example.com/missing"},
			want:    "default_error_page||https://staging.example.com/missing",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := findingKey(tt.finding)
			if got != tt.want {
				t.Errorf("findingKey() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCalculateRiskChange(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		previous      ScanSummary
		current       ScanSummary
		wantDirection string
	}{
		{
			name:          "unchanged when same",
			previous:      ScanSummary{CriticalCount: 1, HighCount: 2},
			current:       ScanSummary{CriticalCount: 1, HighCount: 2},
			wantDirection: RiskUnchanged,
		},
		{
			name:          "improved when critical decreases",
			previous:      ScanSummary{CriticalCount: 2},
			current:       ScanSummary{CriticalCount: 1},
			wantDirection: RiskImproved,
		},
		{
			name:          "worsened when critical increases",
			previous:      ScanSummary{CriticalCount: 1},
			current:       ScanSummary{CriticalCount: 2},
			wantDirection: RiskWorsened,
		},
		{
			name:          "worsened when a medium replaces a low",
			previous:      ScanSummary{LowCount: 1},
			current:       ScanSummary{MediumCount: 1},
			wantDirection: RiskWorsened,
		},
		{
			name:          "improved when high decreases despite more info findings",
			previous:      ScanSummary{HighCount: 1},
			current:       ScanSummary{InfoCount: 10},
			wantDirection: RiskImproved,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			change := calculateRiskChange(tt.previous, tt.current)
			if change.Direction != tt.wantDirection {
				t.Errorf("Direction: got %q, want %q", change.Direction, tt.wantDirection)
			}
		})
	}

	t.Run("computes per-severity deltas", func(t *testing.T) {
		t.Parallel()

		change := calculateRiskChange(
			ScanSummary{CriticalCount: 1, HighCount: 2, MediumCount: 3, LowCount: 4, InfoCount: 5},
			ScanSummary{CriticalCount: 2, HighCount: 1, MediumCount: 3, LowCount: 0, InfoCount: 7},
		)

		if change.CriticalDelta != 1 {
			t.Errorf("CriticalDelta: got %d, want 1", change.CriticalDelta)
		}
		if change.HighDelta != -1 {
			t.Errorf("HighDelta: got %d, want -1", change.HighDelta)
		}
		if change.MediumDelta != 0 {
			t.Errorf("MediumDelta: got %d, want 0", change.MediumDelta)
		}
		if change.LowDelta != -4 {
			t.Errorf("LowDelta: got %d, want -4", change.LowDelta)
		}
		if change.InfoDelta != 2 {
			t.Errorf("InfoDelta: got %d, want 2", change.InfoDelta)
		}
		if change.Direction != RiskWorsened {
			t.Errorf("Direction: got %q, want %q", change.Direction, RiskWorsened)
		}
	})
}

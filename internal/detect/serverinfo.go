package detect

import (
	"context"
	"strings"

	"github.com/nao1215/vscan/internal/model"
)

// ServerInfoAnalyzer detects server software and configuration information
// disclosed through response headers. Header leaks are not error pages
// themselves, but they accompany them: a server that ships version banners
// usually ships verbose errors too.
//
// Design decision: We analyze header info separately because:
//  1. It comes from HTTP headers, not page content
//  2. It applies to every response, not just error responses
//  3. It feeds the technology identification shared with body analyzers
type ServerInfoAnalyzer struct{}

// NewServerInfoAnalyzer creates a new ServerInfoAnalyzer.
func NewServerInfoAnalyzer() *ServerInfoAnalyzer {
	return &ServerInfoAnalyzer{}
}

// Name returns the analyzer name.
func (a *ServerInfoAnalyzer) Name() string {
	return "serverinfo"
}

// Category returns the analyzer category.
func (a *ServerInfoAnalyzer) Category() string {
	return CategoryHeaders
}

// Analyze examines HTTP headers for server information.
func (a *ServerInfoAnalyzer) Analyze(ctx context.Context, data *AnalysisData) ([]model.Finding, error) {
	findings := make([]model.Finding, 0)

	for _, page := range data.Pages {
		select {
		case <-ctx.Done():
			return findings, ctx.Err()
		default:
		}

		// Server header
		if server := page.GetHeader("Server"); server != "" {
			findings = append(findings, a.analyzeServerHeader(server, page.URL)...)
		}

		// X-Powered-By header
		if poweredBy := page.GetHeader("X-Powered-By"); poweredBy != "" {
			findings = append(findings, model.Finding{
				Type:         "x_powered_by",
				Title:        "X-Powered-By Header Reveals Technology",
				Description:  "The X-Powered-By header reveals the backend technology stack.",
				Severity:     model.SeverityMedium,
				SeverityText: model.SeverityMedium.String(),
				Value:        poweredBy,
				Location:     page.URL,
			})

			if tech := poweredByTechnology(poweredBy); tech != model.TechnologyUnknown {
				findings = append(findings, technologyHint(tech, poweredBy, page.URL))
			}
		}

		// X-AspNet-Version / X-AspNetMvc-Version (header names in
		// net/http canonical form)
		if aspNet := page.GetHeader("X-Aspnet-Version"); aspNet != "" {
			findings = append(findings, model.Finding{
				Type:         "aspnet_version",
				Title:        "ASP.NET Version Disclosed",
				Description:  "The X-AspNet-Version header reveals the .NET framework version.",
				Severity:     model.SeverityLow,
				SeverityText: model.SeverityLow.String(),
				Value:        aspNet,
				Location:     page.URL,
			})
			findings = append(findings, technologyHint(model.TechnologyASPNet, aspNet, page.URL))
		}
		if aspNetMvc := page.GetHeader("X-Aspnetmvc-Version"); aspNetMvc != "" {
			findings = append(findings, model.Finding{
				Type:         "aspnet_version",
				Title:        "ASP.NET MVC Version Disclosed",
				Description:  "The X-AspNetMvc-Version header reveals the MVC framework version.",
				Severity:     model.SeverityLow,
				SeverityText: model.SeverityLow.String(),
				Value:        aspNetMvc,
				Location:     page.URL,
			})
			findings = append(findings, technologyHint(model.TechnologyASPNet, aspNetMvc, page.URL))
		}

		// X-Runtime (Rack/Rails response timing)
		if runtime := page.GetHeader("X-Runtime"); runtime != "" {
			findings = append(findings, model.Finding{
				Type:         "x_runtime_header",
				Title:        "X-Runtime Header Present",
				Description:  "The X-Runtime header identifies a Rack/Rails application and leaks response timing.",
				Severity:     model.SeverityLow,
				SeverityText: model.SeverityLow.String(),
				Value:        runtime,
				Location:     page.URL,
			})
		}

		// Via header (proxy information)
		if via := page.GetHeader("Via"); via != "" {
			findings = append(findings, model.Finding{
				Type:         "via_header",
				Title:        "Via Header Present",
				Description:  "The Via header reveals proxy or gateway information.",
				Severity:     model.SeverityLow,
				SeverityText: model.SeverityLow.String(),
				Value:        via,
				Location:     page.URL,
			})
		}

		// Symfony profiler token
		if token := page.GetHeader("X-Debug-Token"); token != "" {
			findings = append(findings, model.Finding{
				Type:         "debug_token_header",
				Title:        "Debug Token Header Present",
				Description:  "An X-Debug-Token header was found, indicating the Symfony web profiler is active.",
				Severity:     model.SeverityLow,
				SeverityText: model.SeverityLow.String(),
				Value:        token,
				Location:     page.URL,
			})
		}
	}

	return findings, nil
}

// analyzeServerHeader analyzes the Server header for information leaks.
func (a *ServerInfoAnalyzer) analyzeServerHeader(server, url string) []model.Finding {
	findings := make([]model.Finding, 0)
	lower := strings.ToLower(server)

	// Basic version disclosure
	if strings.Contains(server, "/") {
		findings = append(findings, model.Finding{
			Type:         "server_version",
			Title:        "Server Version Disclosed",
			Description:  "The Server header reveals software version information.",
			Severity:     model.SeverityMedium,
			SeverityText: model.SeverityMedium.String(),
			Value:        server,
			Location:     url,
		})
	}

	// Identify the server product
	switch {
	case strings.Contains(lower, "apache"):
		findings = append(findings, technologyHint(model.TechnologyApache, server, url))
		a.analyzeApache(&findings, server, url)
	case strings.Contains(lower, "nginx"):
		findings = append(findings, technologyHint(model.TechnologyNginx, server, url))
	case strings.Contains(lower, "microsoft-iis") || strings.Contains(lower, "iis/"):
		findings = append(findings, technologyHint(model.TechnologyIIS, server, url))
		a.analyzeIIS(&findings, server, url)
	case strings.Contains(lower, "litespeed"):
		findings = append(findings, technologyHint(model.TechnologyLiteSpeed, server, url))
	}

	return findings
}

// analyzeApache checks for Apache-specific information.
func (a *ServerInfoAnalyzer) analyzeApache(findings *[]model.Finding, server, url string) {
	// Check for OS disclosure in Apache
	osIndicators := map[string]string{
		"ubuntu":  "Ubuntu",
		"debian":  "Debian",
		"centos":  "CentOS",
		"red hat": "Red Hat",
		"fedora":  "Fedora",
		"win32":   "Windows",
		"win64":   "Windows",
	}

	lower := strings.ToLower(server)
	for indicator, osName := range osIndicators {
		if strings.Contains(lower, indicator) {
			*findings = append(*findings, model.Finding{
				Type:         "os_disclosure",
				Title:        "Operating System Detected from Server Header",
				Description:  "The Apache Server header reveals the operating system.",
				Severity:     model.SeverityLow,
				SeverityText: model.SeverityLow.String(),
				Value:        osName,
				Location:     url,
			})
			break
		}
	}

	// Check for modules (OpenSSL, PHP, etc.)
	if strings.Contains(lower, "openssl") {
		*findings = append(*findings, model.Finding{
			Type:         "server_version",
			Title:        "OpenSSL Version Disclosed",
			Description:  "The Server header reveals OpenSSL version information.",
			Severity:     model.SeverityMedium,
			SeverityText: model.SeverityMedium.String(),
			Value:        server,
			Location:     url,
		})
	}

	if strings.Contains(lower, "php/") {
		*findings = append(*findings, model.Finding{
			Type:         "server_version",
			Title:        "PHP Version Disclosed in Server Header",
			Description:  "The Server header reveals PHP version information.",
			Severity:     model.SeverityMedium,
			SeverityText: model.SeverityMedium.String(),
			Value:        server,
			Location:     url,
		})
		*findings = append(*findings, technologyHint(model.TechnologyPHP, server[strings.Index(lower, "php/"):], url))
	}
}

// analyzeIIS checks for IIS-specific information.
func (a *ServerInfoAnalyzer) analyzeIIS(findings *[]model.Finding, server, url string) {
	// IIS version reveals Windows version
	iisToWindows := map[string]string{
		"7.0":  "Windows Server 2008/Vista",
		"7.5":  "Windows Server 2008 R2/Windows 7",
		"8.0":  "Windows Server 2012/Windows 8",
		"8.5":  "Windows Server 2012 R2/Windows 8.1",
		"10.0": "Windows Server 2016/2019/Windows 10",
	}

	for iisVer, winVer := range iisToWindows {
		if strings.Contains(server, "IIS/"+iisVer) {
			*findings = append(*findings, model.Finding{
				Type:         "os_disclosure",
				Title:        "Windows Version Determined from IIS",
				Description:  "The IIS version reveals the Windows version.",
				Severity:     model.SeverityLow,
				SeverityText: model.SeverityLow.String(),
				Value:        winVer + " (IIS " + iisVer + ")",
				Location:     url,
			})
			break
		}
	}
}

// poweredByTechnology maps an X-Powered-By value to a technology.
func poweredByTechnology(poweredBy string) model.Technology {
	lower := strings.ToLower(poweredBy)
	switch {
	case strings.HasPrefix(lower, "php"):
		return model.TechnologyPHP
	case strings.HasPrefix(lower, "asp.net"):
		return model.TechnologyASPNet
	case strings.HasPrefix(lower, "express"):
		return model.TechnologyExpress
	case strings.Contains(lower, "servlet"):
		return model.TechnologyJava
	default:
		return model.TechnologyUnknown
	}
}

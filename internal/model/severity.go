package model

// Severity represents the risk level of a disclosure finding.
// This allows categorizing findings by how much internal detail they expose.
//
// Design decision: We use iota-based constants rather than string constants
// for efficiency in comparisons and sorting. The String() method provides
// human-readable output when needed.
type Severity int

const (
	// SeverityInfo indicates informational findings with no direct security impact.
	// Examples: weak keyword hits ("debug", "version"), technology hints.
	// These may still be useful context but don't expose internals on their own.
	SeverityInfo Severity = iota

	// SeverityLow indicates minor issues with limited impact.
	// Examples: default error pages, interpreter notices, minor header leaks.
	// These confirm software choices but reveal little beyond that.
	SeverityLow

	// SeverityMedium indicates moderate issues that warrant attention.
	// Examples: interpreter warnings with file paths, version headers,
	// internal path fragments. These narrow down the stack for an attacker.
	SeverityMedium

	// SeverityHigh indicates serious disclosures.
	// Examples: full stack traces, database error messages, framework
	// debug pages. These expose code structure, queries, or configuration.
	SeverityHigh

	// SeverityCritical indicates severe disclosures that enable direct attack.
	// Examples: interactive debug consoles, credentials in error output.
	// These findings require immediate remediation.
	SeverityCritical
)

// String returns a human-readable representation of the severity level.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "INFO"
	case SeverityLow:
		return "LOW"
	case SeverityMedium:
		return "MEDIUM"
	case SeverityHigh:
		return "HIGH"
	case SeverityCritical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// FindingInfo contains metadata about a finding type including severity,
// impact description, and remediation recommendation.
type FindingInfo struct {
	Severity       Severity
	Impact         string
	Recommendation string
}

// findingInfoMapping maps finding types to their metadata.
// This centralized mapping ensures consistent risk assessment across the application.
//
// Design decision: We use a map rather than embedding severity in each finding type
// because:
// 1. It allows updating risk assessments without modifying type definitions
// 2. It provides a single source of truth for risk levels
// 3. It makes it easy to generate severity documentation
var findingInfoMapping = map[string]FindingInfo{
	// CRITICAL - directly exploitable disclosure
	"debug_console": {
		Severity:       SeverityCritical,
		Impact:         "An interactive debugger (Werkzeug console, Laravel Ignition, etc.) is reachable, which typically allows arbitrary code execution on the server.",
		Recommendation: "Disable debug mode in production immediately and restrict debugger access to trusted networks.",
	},
	"credential_disclosure": {
		Severity:       SeverityCritical,
		Impact:         "Error output contains credentials or connection strings, giving attackers direct access to backend systems.",
		Recommendation: "Rotate the exposed credentials now and configure the application to suppress raw error output.",
	},

	// HIGH - internals exposed in detail
	"stack_trace": {
		Severity:       SeverityHigh,
		Impact:         "A full stack trace reveals source file names, line numbers, class names, and code paths that guide targeted attacks.",
		Recommendation: "Return generic error pages to clients and log stack traces server-side only.",
	},
	"database_error": {
		Severity:       SeverityHigh,
		Impact:         "Raw database errors reveal the database engine, schema details, and query fragments, and often indicate injectable parameters.",
		Recommendation: "Catch database exceptions and return generic errors. Audit the failing query for SQL injection.",
	},
	"fatal_error": {
		Severity:       SeverityHigh,
		Impact:         "Fatal interpreter errors expose absolute file paths and failing code constructs.",
		Recommendation: "Disable display_errors (or the equivalent) in production and log errors to a file instead.",
	},
	"framework_debug": {
		Severity:       SeverityHigh,
		Impact:         "A framework debug/error page discloses settings, routes, installed packages, and sometimes environment variables.",
		Recommendation: "Turn off the framework's debug flag in production and configure custom error handlers.",
	},

	// MEDIUM - stack narrowed down
	"runtime_warning": {
		Severity:       SeverityMedium,
		Impact:         "Interpreter warnings leak file paths and function names, mapping out the application layout.",
		Recommendation: "Suppress warning output in production and fix the underlying warnings.",
	},
	"exception_message": {
		Severity:       SeverityMedium,
		Impact:         "Exception details in the response describe internal failure states useful for attack planning.",
		Recommendation: "Replace detailed exception output with a generic error page.",
	},
	"path_disclosure": {
		Severity:       SeverityMedium,
		Impact:         "Absolute filesystem paths reveal the install location, OS flavor, and user accounts, aiding file inclusion and traversal attacks.",
		Recommendation: "Remove path output from error messages and templates.",
	},
	"debug_mode": {
		Severity:       SeverityMedium,
		Impact:         "Debug configuration indicators show the application runs with verbose diagnostics enabled.",
		Recommendation: "Disable all debug settings in production deployments.",
	},
	"server_version": {
		Severity:       SeverityMedium,
		Impact:         "The Server header reveals exact software versions that can be matched against known vulnerabilities.",
		Recommendation: "Configure the server to omit version information from headers.",
	},
	"x_powered_by": {
		Severity:       SeverityMedium,
		Impact:         "The X-Powered-By header reveals the backend technology stack for targeted attacks.",
		Recommendation: "Remove or suppress the X-Powered-By header.",
	},

	// LOW - software choice confirmed
	"runtime_notice": {
		Severity:       SeverityLow,
		Impact:         "Interpreter notices confirm the language runtime and hint at code quality issues.",
		Recommendation: "Suppress notice output in production.",
	},
	"default_error_page": {
		Severity:       SeverityLow,
		Impact:         "A stock server error page confirms the server software and that an unhandled failure occurred.",
		Recommendation: "Serve custom error pages and investigate the failure cause.",
	},
	"aspnet_version": {
		Severity:       SeverityLow,
		Impact:         "The X-AspNet-Version header reveals the .NET framework version.",
		Recommendation: "Set enableVersionHeader=false in the ASP.NET configuration.",
	},
	"x_runtime_header": {
		Severity:       SeverityLow,
		Impact:         "The X-Runtime header identifies a Rack/Rails application and leaks response timing.",
		Recommendation: "Strip the X-Runtime header at the proxy or middleware layer.",
	},
	"via_header": {
		Severity:       SeverityLow,
		Impact:         "The Via header reveals intermediate proxy or gateway software.",
		Recommendation: "Configure proxies to omit identifying Via values.",
	},
	"debug_token_header": {
		Severity:       SeverityLow,
		Impact:         "A debug token header (Symfony X-Debug-Token, etc.) indicates the profiler is active.",
		Recommendation: "Disable the web profiler outside development environments.",
	},
	"os_disclosure": {
		Severity:       SeverityLow,
		Impact:         "The server banner reveals the host operating system, narrowing the search for applicable exploits.",
		Recommendation: "Reduce the server signature to the product name only.",
	},

	// INFO - weak signal only
	"error_keyword": {
		Severity:       SeverityInfo,
		Impact:         "A generic error-related keyword appeared in the response. On its own this is a weak signal that may be ordinary page content.",
		Recommendation: "Review the page manually to confirm whether internal details are exposed.",
	},
	"technology_hint": {
		Severity:       SeverityInfo,
		Impact:         "Page content hints at the underlying technology without revealing versions or internals.",
		Recommendation: "No action required; consider reducing identifying markers if strict hardening is desired.",
	},
}

// GetSeverity returns the severity level for a finding type.
// Returns SeverityInfo if the finding type is not in the mapping.
func GetSeverity(findingType string) Severity {
	if info, ok := findingInfoMapping[findingType]; ok {
		return info.Severity
	}
	return SeverityInfo
}

// GetFindingInfo returns the full finding information for a finding type.
// Returns a default FindingInfo with SeverityInfo if the type is not in the mapping.
func GetFindingInfo(findingType string) FindingInfo {
	if info, ok := findingInfoMapping[findingType]; ok {
		return info
	}
	return FindingInfo{
		Severity:       SeverityInfo,
		Impact:         "Unknown finding type. Review manually.",
		Recommendation: "Investigate the finding and assess risk.",
	}
}

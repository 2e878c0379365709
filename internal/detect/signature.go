package detect

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/nao1215/vscan/internal/model"
)

// signature is a compiled body pattern shared by the content analyzers.
// The map key under which a signature is registered names the pattern
// for per-page dedup; findingType selects the severity catalog entry.
type signature struct {
	regex       *regexp.Regexp
	findingType string
	title       string
	description string
	severity    model.Severity
	technology  model.Technology
}

// maxValueLength caps the matched excerpt carried in a finding.
// Verbose error bodies can match hundreds of bytes; reports only need
// enough text to recognize the hit.
const maxValueLength = 120

// excerpt trims and caps a matched value for report output.
// The cut is moved back to a rune boundary so a multi-byte character
// straddling the cap does not leave an invalid sequence in the report.
func excerpt(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > maxValueLength {
		cut := maxValueLength
		for cut > 0 && !utf8.RuneStart(s[cut]) {
			cut--
		}
		s = s[:cut]
	}
	return s
}

// versionPattern extracts dotted version numbers from banners and error
// output ("Apache/2.4.41", "Django Version: 4.2.1"). A non-digit must
// precede the number so that fragments of larger tokens don't match.
var versionPattern = regexp.MustCompile(`[^\d](\d+(?:\.\d+)+)`)

// extractVersion returns the first dotted version number in s, or "".
func extractVersion(s string) string {
	// Prepend a space so a version at the start of s still has a
	// non-digit character in front of it.
	m := versionPattern.FindStringSubmatch(" " + s)
	if len(m) < 2 {
		return ""
	}
	return m[1]
}

// titleCaser title-cases plain technology names for report output.
var titleCaser = cases.Title(language.English)

// technologyLabel returns the display name for a technology.
// Single-word names come back from DisplayName in lowercase and are
// title-cased here (django -> Django); vendor-cased names (PHP, ASP.NET)
// pass through unchanged.
func technologyLabel(tech model.Technology) string {
	// nginx brands itself lowercase.
	if tech == model.TechnologyNginx {
		return tech.DisplayName()
	}

	name := tech.DisplayName()
	if name == strings.ToLower(name) {
		return titleCaser.String(name)
	}
	return name
}

// technologyHint builds the informational finding reported when a signature
// identifies the underlying technology. When the matched text carries a
// dotted version number, the hint includes it.
func technologyHint(tech model.Technology, match, location string) model.Finding {
	value := technologyLabel(tech)
	if version := extractVersion(match); version != "" {
		value += " " + version
	}

	return model.Finding{
		Type:         "technology_hint",
		Title:        "Technology Identified from Error Output",
		Description:  "The error output identifies the technology stack behind the application.",
		Severity:     model.SeverityInfo,
		SeverityText: model.SeverityInfo.String(),
		Value:        value,
		Location:     location,
	}
}

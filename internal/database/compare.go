package database

import (
	"time"

	"github.com/nao1215/vscan/internal/model"
)

// Risk direction values reported in a Comparison.
const (
	// RiskWorsened means the current scan carries more weighted risk than the previous one.
	RiskWorsened = "worsened"

	// RiskImproved means the current scan carries less weighted risk than the previous one.
	RiskImproved = "improved"

	// RiskUnchanged means the weighted risk score did not move between scans.
	RiskUnchanged = "unchanged"
)

// Comparison holds the result of comparing two scan reports for one host.
type Comparison struct {
	// Host is the scanned host.
	Host string `json:"host"`

	// PreviousScan summarizes the older of the two scans.
	PreviousScan ScanSummary `json:"previous_scan"`

	// CurrentScan summarizes the newer of the two scans.
	CurrentScan ScanSummary `json:"current_scan"`

	// NewFindings contains findings present in the current scan but not the previous one.
	NewFindings []model.Finding `json:"new_findings,omitempty"`

	// ResolvedFindings contains findings present in the previous scan but not the current one.
	ResolvedFindings []model.Finding `json:"resolved_findings,omitempty"`

	// UnchangedCount is the number of findings present in both scans.
	UnchangedCount int `json:"unchanged_count"`

	// RiskChange describes the overall change in risk level.
	RiskChange RiskChange `json:"risk_change"`
}

// ScanSummary contains per-severity finding counts for one scan.
type ScanSummary struct {
	// DateScanned is when the scan was performed.
	DateScanned time.Time `json:"date_scanned"`

	// TotalFindings is the total number of findings in this scan.
	TotalFindings int `json:"total_findings"`

	// CriticalCount is the number of critical findings.
	CriticalCount int `json:"critical_count"`

	// HighCount is the number of high severity findings.
	HighCount int `json:"high_count"`

	// MediumCount is the number of medium severity findings.
	MediumCount int `json:"medium_count"`

	// LowCount is the number of low severity findings.
	LowCount int `json:"low_count"`

	// InfoCount is the number of informational findings.
	InfoCount int `json:"info_count"`
}

// RiskChange describes the change in risk level between two scans.
type RiskChange struct {
	// Direction is RiskImproved, RiskWorsened, or RiskUnchanged.
	Direction string `json:"direction"`

	// CriticalDelta is the change in critical findings count.
	CriticalDelta int `json:"critical_delta"`

	// HighDelta is the change in high severity findings count.
	HighDelta int `json:"high_delta"`

	// MediumDelta is the change in medium severity findings count.
	MediumDelta int `json:"medium_delta"`

	// LowDelta is the change in low severity findings count.
	LowDelta int `json:"low_delta"`

	// InfoDelta is the change in informational findings count.
	InfoDelta int `json:"info_delta"`
}

// Compare diffs two scan reports of the same host and reports which findings
// appeared, which were resolved, and how the weighted risk level moved.
//
// Findings are matched by type, value and location. A signature that moved
// to a different URL therefore shows up as one resolved and one new finding,
// which is what an operator reviewing a deploy wants to see.
func Compare(previous, current *model.ScanReport) *Comparison {
	result := &Comparison{
		Host:         current.Host,
		PreviousScan: newScanSummary(previous),
		CurrentScan:  newScanSummary(current),
	}

	// Build finding maps for membership checks
	previousFindings := make(map[string]model.Finding)
	currentFindings := make(map[string]model.Finding)

	if previous.SimpleReport != nil {
		for _, f := range previous.SimpleReport.Findings {
			previousFindings[findingKey(f)] = f
		}
	}
	if current.SimpleReport != nil {
		for _, f := range current.SimpleReport.Findings {
			currentFindings[findingKey(f)] = f
		}
	}

	// Walk the finding slices rather than the maps so that the output
	// order matches the order findings were recorded in.
	if current.SimpleReport != nil {
		for _, f := range current.SimpleReport.Findings {
			if _, exists := previousFindings[findingKey(f)]; !exists {
				result.NewFindings = append(result.NewFindings, f)
			}
		}
	}

	if previous.SimpleReport != nil {
		for _, f := range previous.SimpleReport.Findings {
			if _, exists := currentFindings[findingKey(f)]; exists {
				result.UnchangedCount++
			} else {
				result.ResolvedFindings = append(result.ResolvedFindings, f)
			}
		}
	}

	result.RiskChange = calculateRiskChange(result.PreviousScan, result.CurrentScan)

	return result
}

// newScanSummary extracts per-severity counts from a scan report.
func newScanSummary(report *model.ScanReport) ScanSummary {
	summary := ScanSummary{DateScanned: report.DateScanned}

	if report.SimpleReport != nil {
		summary.TotalFindings = report.SimpleReport.TotalFindings()
		summary.CriticalCount = report.SimpleReport.CriticalCount
		summary.HighCount = report.SimpleReport.HighCount
		summary.MediumCount = report.SimpleReport.MediumCount
		summary.LowCount = report.SimpleReport.LowCount
		summary.InfoCount = report.SimpleReport.InfoCount
	}

	return summary
}

// findingKey generates a unique key for a finding for comparison purposes.
func findingKey(f model.Finding) string {
	return f.Type + "|" + f.Value + "|" + f.Location
}

// calculateRiskChange calculates the change in risk between two scans.
func calculateRiskChange(previous, current ScanSummary) RiskChange {
	change := RiskChange{
		CriticalDelta: current.CriticalCount - previous.CriticalCount,
		HighDelta:     current.HighCount - previous.HighCount,
		MediumDelta:   current.MediumCount - previous.MediumCount,
		LowDelta:      current.LowCount - previous.LowCount,
		InfoDelta:     current.InfoCount - previous.InfoCount,
	}

	previousScore := riskScore(previous)
	currentScore := riskScore(current)

	switch {
	case currentScore < previousScore:
		change.Direction = RiskImproved
	case currentScore > previousScore:
		change.Direction = RiskWorsened
	default:
		change.Direction = RiskUnchanged
	}

	return change
}

// riskScore computes a weighted score for a scan's findings.
// Critical and high severity findings dominate the score so that trading
// one stack trace for a handful of keyword hits still counts as improved.
func riskScore(s ScanSummary) int {
	return s.CriticalCount*100 + s.HighCount*50 + s.MediumCount*10 + s.LowCount*5 + s.InfoCount
}

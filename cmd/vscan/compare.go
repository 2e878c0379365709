package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/nao1215/vscan/internal/config"
	"github.com/nao1215/vscan/internal/database"
	"github.com/nao1215/vscan/internal/model"
	"github.com/spf13/cobra"
)

// noFindingsMessage is shown in history listings for clean scans.
const noFindingsMessage = "No findings"

// NewCompareCmd creates the compare command.
// This command compares scan results with historical data stored in the database.
func NewCompareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare [url]",
		Short: "Compare scan results with historical data",
		Long: `Compare displays differences between the current and previous scan results.

This command retrieves historical scan data from the database and shows:
- New findings that appeared since the last scan
- Resolved findings that are no longer present
- Changes in risk severity levels

The comparison requires at least two scans in the database for the specified
target. Use 'vscan scan' to perform scans and save results.

Examples:
  # Compare latest two scans for a target
  vscan compare https://staging.example.com/

  # List scan history for a target
  vscan compare --list https://staging.example.com/

  # List all scanned hosts in the database
  vscan compare --list

  # Compare with a specific historical scan by ID
  vscan compare --with-scan-id 5 https://staging.example.com/

  # Compare scans since a specific date
  vscan compare --since "2026-01-01" https://staging.example.com/

  # Output comparison in JSON format
  vscan compare --format json https://staging.example.com/`,
		Args: cobra.MaximumNArgs(1),
		RunE: runCompareCmd,
	}

	// History listing flags
	cmd.Flags().BoolP("list", "l", false,
		"List scan history for a target, or all scanned hosts when no target is given")
	cmd.Flags().Int("limit", 0,
		"Maximum number of history entries to load (0 loads all)")

	// Comparison target flags
	cmd.Flags().Int64P("with-scan-id", "i", 0,
		"Compare with a specific scan by ID (use --list to see available IDs)")
	cmd.Flags().StringP("since", "s", "",
		"Compare with the first scan after this date (format: YYYY-MM-DD)")

	// Output format flag
	cmd.Flags().StringP("format", "f", config.FormatSimple,
		"Output format: simple, json, or markdown")

	// Database location
	cmd.Flags().String("db-dir", "",
		"History database directory (default: XDG data directory)")

	return cmd
}

// runCompareCmd executes the compare command.
func runCompareCmd(cmd *cobra.Command, args []string) error {
	listFlag, err := cmd.Flags().GetBool("list")
	if err != nil {
		return err
	}

	// Validate arguments before opening the database.
	// This prevents database lock issues when validation fails.
	var host string
	if len(args) > 0 {
		host, err = normalizeHost(args[0])
		if err != nil {
			return fmt.Errorf("invalid target: %w", err)
		}
	} else if !listFlag {
		return errors.New("target URL is required (use --list to see scanned hosts)")
	}

	dbDir, err := cmd.Flags().GetString("db-dir")
	if err != nil {
		return err
	}
	if dbDir == "" {
		dbDir = config.XDGDataDir()
	}

	// Open database
	db, err := database.Open(dbDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	ctx := context.Background()

	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}

	// Handle --list: with a target it lists that host's history, without
	// one it lists every scanned host
	if listFlag {
		if host == "" {
			return listScannedHosts(ctx, db)
		}
		return listScanHistory(ctx, db, host, limit)
	}

	// Get output format flag
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return err
	}

	// Get comparison target flags
	withScanID, err := cmd.Flags().GetInt64("with-scan-id")
	if err != nil {
		return err
	}
	sinceDate, err := cmd.Flags().GetString("since")
	if err != nil {
		return err
	}

	// Perform comparison
	return runComparison(ctx, db, host, limit, withScanID, sinceDate, format)
}

// normalizeHost reduces a target URL or bare host to the host key used
// by the scan history. Both "https://staging.example.com/login" and
// "staging.example.com" refer to the same history.
func normalizeHost(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", errors.New("empty target")
	}

	// Accept a full URL and reduce it to its host
	if strings.Contains(raw, "://") {
		target, err := model.NewTarget(raw)
		if err != nil {
			return "", err
		}
		return target.Host(), nil
	}

	// Bare host, possibly with a trailing path fragment
	host := raw
	if i := strings.IndexByte(host, '/'); i >= 0 {
		host = host[:i]
	}
	if host == "" {
		return "", fmt.Errorf("cannot extract host from %q", raw)
	}

	return host, nil
}

// listScannedHosts lists all hosts that have scan records in the database.
func listScannedHosts(ctx context.Context, db *database.ScanDB) error {
	hosts, err := db.ListScannedHosts(ctx)
	if err != nil {
		return fmt.Errorf("failed to list hosts: %w", err)
	}

	if len(hosts) == 0 {
		fmt.Println("No scanned hosts found in the database.")
		fmt.Println("\nUse 'vscan scan <url>' to scan a target.")
		return nil
	}

	fmt.Printf("Scanned hosts (%d):\n\n", len(hosts))
	for _, host := range hosts {
		fmt.Printf("  • %s\n", host)
	}
	fmt.Println("\nUse 'vscan compare --list <url>' to see scan history for a host.")

	return nil
}

// listScanHistory lists all scan records for a specific host.
func listScanHistory(ctx context.Context, db *database.ScanDB, host string, limit int) error {
	reports, err := db.GetScanHistoryWithMetadata(ctx, host, limit)
	if err != nil {
		return fmt.Errorf("failed to get scan history: %w", err)
	}

	if len(reports) == 0 {
		fmt.Printf("No scan history found for %s\n", host)
		fmt.Println("\nUse 'vscan scan' to scan this target.")
		return nil
	}

	fmt.Printf("Scan history for %s (%d scans):\n\n", host, len(reports))
	fmt.Printf("  %-6s  %-20s  %s\n", "ID", "Date", "Risk Summary")
	fmt.Println("  " + strings.Repeat("-", 60))

	for _, meta := range reports {
		fmt.Printf("  %-6d  %-20s  %s\n",
			meta.ID,
			meta.Timestamp.Format("2006-01-02 15:04:05"),
			formatRiskSummary(meta.RiskSummary),
		)
	}

	fmt.Println("\nUse 'vscan compare <url>' to compare the latest two scans.")
	fmt.Println("Use 'vscan compare --with-scan-id <id> <url>' to compare with a specific scan.")

	return nil
}

// formatRiskSummary formats the risk summary map into a human-readable string.
func formatRiskSummary(summary map[string]int) string {
	if summary == nil {
		return "N/A"
	}

	var parts []string
	if v := summary["critical"]; v > 0 {
		parts = append(parts, fmt.Sprintf("C:%d", v))
	}
	if v := summary["high"]; v > 0 {
		parts = append(parts, fmt.Sprintf("H:%d", v))
	}
	if v := summary["medium"]; v > 0 {
		parts = append(parts, fmt.Sprintf("M:%d", v))
	}
	if v := summary["low"]; v > 0 {
		parts = append(parts, fmt.Sprintf("L:%d", v))
	}
	if v := summary["info"]; v > 0 {
		parts = append(parts, fmt.Sprintf("I:%d", v))
	}

	if len(parts) == 0 {
		return noFindingsMessage
	}
	return strings.Join(parts, " ")
}

// runComparison performs the actual comparison between scan reports.
func runComparison(ctx context.Context, db *database.ScanDB, host string, limit int, withScanID int64, sinceDate, format string) error {
	// Get the scan history
	reports, err := db.GetScanHistory(ctx, host, limit)
	if err != nil {
		return fmt.Errorf("failed to get scan history: %w", err)
	}

	if len(reports) == 0 {
		return fmt.Errorf("no scan history found for %s", host)
	}

	if len(reports) < 2 && withScanID == 0 && sinceDate == "" {
		return fmt.Errorf("at least 2 scans are required for comparison (found %d)", len(reports))
	}

	// Latest report is always the current one
	currentReport := reports[0]

	var previousReport *model.ScanReport
	switch {
	case withScanID > 0:
		// Find the report with the specified ID
		previousReport, err = db.GetScanReportByID(ctx, withScanID)
		if err != nil {
			return fmt.Errorf("failed to get scan with ID %d: %w", withScanID, err)
		}
		if previousReport == nil {
			return fmt.Errorf("scan with ID %d not found", withScanID)
		}
		// Validate that the scan ID belongs to the same host
		if previousReport.Host != host {
			return fmt.Errorf("scan ID %d belongs to %s, not %s", withScanID, previousReport.Host, host)
		}
	case sinceDate != "":
		parsedDate, err := time.Parse("2006-01-02", sinceDate)
		if err != nil {
			return fmt.Errorf("invalid date format (use YYYY-MM-DD): %w", err)
		}

		// Reports are sorted newest first, so walk backwards to find the
		// oldest report at or after the date
		for i := len(reports) - 1; i >= 0; i-- {
			r := reports[i]
			if r.DateScanned.After(parsedDate) || r.DateScanned.Equal(parsedDate) {
				previousReport = r
				break
			}
		}
		if previousReport == nil {
			return fmt.Errorf("no scans found since %s", sinceDate)
		}
		if previousReport == currentReport {
			return fmt.Errorf("only one scan found since %s; at least 2 scans are required for comparison", sinceDate)
		}
	default:
		// Default: compare with the previous scan
		previousReport = reports[1]
	}

	comparison := database.Compare(previousReport, currentReport)

	// Output the result
	switch format {
	case config.FormatJSON:
		return outputComparisonJSON(comparison)
	case config.FormatMarkdown:
		return outputComparisonMarkdown(comparison)
	case config.FormatSimple:
		return outputComparisonText(comparison)
	default:
		return fmt.Errorf("unknown format %q (expected %s, %s, or %s)",
			format, config.FormatSimple, config.FormatJSON, config.FormatMarkdown)
	}
}

// outputComparisonJSON outputs the comparison result in JSON format.
func outputComparisonJSON(result *database.Comparison) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

// outputComparisonMarkdown outputs the comparison result in Markdown format.
func outputComparisonMarkdown(result *database.Comparison) error {
	fmt.Printf("# Scan Comparison: %s\n\n", result.Host)

	// Risk change summary
	fmt.Println("## Summary")
	fmt.Printf("\n**Risk Status:** %s\n\n", formatRiskDirection(result.RiskChange.Direction))

	// Scan metadata table
	fmt.Println("| Metric | Previous | Current | Change |")
	fmt.Println("|--------|----------|---------|--------|")
	fmt.Printf("| Date | %s | %s | - |\n",
		result.PreviousScan.DateScanned.Format("2006-01-02 15:04"),
		result.CurrentScan.DateScanned.Format("2006-01-02 15:04"))
	fmt.Printf("| Critical | %d | %d | %s |\n",
		result.PreviousScan.CriticalCount,
		result.CurrentScan.CriticalCount,
		formatDelta(result.RiskChange.CriticalDelta))
	fmt.Printf("| High | %d | %d | %s |\n",
		result.PreviousScan.HighCount,
		result.CurrentScan.HighCount,
		formatDelta(result.RiskChange.HighDelta))
	fmt.Printf("| Medium | %d | %d | %s |\n",
		result.PreviousScan.MediumCount,
		result.CurrentScan.MediumCount,
		formatDelta(result.RiskChange.MediumDelta))
	fmt.Printf("| Low | %d | %d | %s |\n",
		result.PreviousScan.LowCount,
		result.CurrentScan.LowCount,
		formatDelta(result.RiskChange.LowDelta))
	fmt.Printf("| Info | %d | %d | %s |\n",
		result.PreviousScan.InfoCount,
		result.CurrentScan.InfoCount,
		formatDelta(result.RiskChange.InfoDelta))
	fmt.Printf("| **Total** | **%d** | **%d** | **%s** |\n",
		result.PreviousScan.TotalFindings,
		result.CurrentScan.TotalFindings,
		formatDelta(result.CurrentScan.TotalFindings-result.PreviousScan.TotalFindings))

	// New findings
	if len(result.NewFindings) > 0 {
		fmt.Printf("\n## New Findings (%d)\n\n", len(result.NewFindings))
		for _, f := range result.NewFindings {
			fmt.Printf("- **[%s]** %s: %s\n", f.SeverityText, f.Title, f.Value)
			if f.Location != "" {
				fmt.Printf("  - Location: `%s`\n", f.Location)
			}
		}
	}

	// Resolved findings
	if len(result.ResolvedFindings) > 0 {
		fmt.Printf("\n## Resolved Findings (%d)\n\n", len(result.ResolvedFindings))
		for _, f := range result.ResolvedFindings {
			fmt.Printf("- ~~**[%s]** %s: %s~~\n", f.SeverityText, f.Title, f.Value)
		}
	}

	// Unchanged count
	if result.UnchangedCount > 0 {
		fmt.Printf("\n---\n\n*%d findings unchanged*\n", result.UnchangedCount)
	}

	return nil
}

// outputComparisonText outputs the comparison result in human-readable text format.
func outputComparisonText(result *database.Comparison) error {
	fmt.Printf("Scan Comparison: %s\n", result.Host)
	fmt.Println(strings.Repeat("=", 60))

	// Risk change summary
	fmt.Printf("\nRisk Status: %s\n", formatRiskDirection(result.RiskChange.Direction))

	// Scan dates
	fmt.Printf("\nPrevious scan: %s\n", result.PreviousScan.DateScanned.Format("2006-01-02 15:04:05"))
	fmt.Printf("Current scan:  %s\n", result.CurrentScan.DateScanned.Format("2006-01-02 15:04:05"))

	// Summary table
	fmt.Println("\nFindings Summary:")
	fmt.Printf("  %-10s  %-10s  %-10s  %-10s\n", "Severity", "Previous", "Current", "Change")
	fmt.Println("  " + strings.Repeat("-", 45))
	fmt.Printf("  %-10s  %-10d  %-10d  %-10s\n", "Critical",
		result.PreviousScan.CriticalCount, result.CurrentScan.CriticalCount,
		formatDelta(result.RiskChange.CriticalDelta))
	fmt.Printf("  %-10s  %-10d  %-10d  %-10s\n", "High",
		result.PreviousScan.HighCount, result.CurrentScan.HighCount,
		formatDelta(result.RiskChange.HighDelta))
	fmt.Printf("  %-10s  %-10d  %-10d  %-10s\n", "Medium",
		result.PreviousScan.MediumCount, result.CurrentScan.MediumCount,
		formatDelta(result.RiskChange.MediumDelta))
	fmt.Printf("  %-10s  %-10d  %-10d  %-10s\n", "Low",
		result.PreviousScan.LowCount, result.CurrentScan.LowCount,
		formatDelta(result.RiskChange.LowDelta))
	fmt.Printf("  %-10s  %-10d  %-10d  %-10s\n", "Info",
		result.PreviousScan.InfoCount, result.CurrentScan.InfoCount,
		formatDelta(result.RiskChange.InfoDelta))
	fmt.Println("  " + strings.Repeat("-", 45))
	fmt.Printf("  %-10s  %-10d  %-10d  %-10s\n", "Total",
		result.PreviousScan.TotalFindings, result.CurrentScan.TotalFindings,
		formatDelta(result.CurrentScan.TotalFindings-result.PreviousScan.TotalFindings))

	// New findings
	if len(result.NewFindings) > 0 {
		fmt.Printf("\nNew Findings (%d):\n", len(result.NewFindings))
		for _, f := range result.NewFindings {
			fmt.Printf("  [+] [%s] %s: %s\n", f.SeverityText, f.Title, f.Value)
			if f.Location != "" {
				fmt.Printf("      Location: %s\n", f.Location)
			}
		}
	}

	// Resolved findings
	if len(result.ResolvedFindings) > 0 {
		fmt.Printf("\nResolved Findings (%d):\n", len(result.ResolvedFindings))
		for _, f := range result.ResolvedFindings {
			fmt.Printf("  [-] [%s] %s: %s\n", f.SeverityText, f.Title, f.Value)
		}
	}

	// Unchanged count
	if result.UnchangedCount > 0 {
		fmt.Printf("\nUnchanged: %d findings\n", result.UnchangedCount)
	}

	return nil
}

// formatRiskDirection formats the risk change direction for display.
func formatRiskDirection(direction string) string {
	switch direction {
	case database.RiskImproved:
		return "IMPROVED (risk decreased)"
	case database.RiskWorsened:
		return "WORSENED (risk increased)"
	default:
		return "UNCHANGED"
	}
}

// formatDelta formats a numeric delta with sign for display.
func formatDelta(delta int) string {
	if delta > 0 {
		return "+" + strconv.Itoa(delta)
	} else if delta < 0 {
		return strconv.Itoa(delta)
	}
	return "0"
}

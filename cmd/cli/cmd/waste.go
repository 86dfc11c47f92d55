// Package cmd - waste command
package cmd

import (
	"context"
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"gpu-spend/core/waste"
)

var (
	wasteMinSavings float64
	wasteJSON       bool
)

// wasteCmd detects waste across the fleet
var wasteCmd = &cobra.Command{
	Use:   "waste",
	Short: "Detect wasted GPU spend",
	RunE:  runWaste,
}

func init() {
	wasteCmd.Flags().Float64VarP(&wasteMinSavings, "min", "m", 50.0, "minimum monthly savings to report")
	wasteCmd.Flags().BoolVarP(&wasteJSON, "json", "j", false, "output as JSON")
}

func runWaste(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	aggregator := buildAggregator(ctx)
	detector := waste.NewDetector(aggregator)

	report := detector.Analyze(ctx)

	filtered := make([]*waste.Alert, 0, len(report.Alerts))
	for _, a := range report.Alerts {
		if a.MonthlyWaste() >= wasteMinSavings {
			filtered = append(filtered, a)
		}
	}
	report.Alerts = filtered

	if wasteJSON {
		return printJSON(report.Document())
	}

	if len(report.Alerts) == 0 {
		fmt.Printf("No waste above %s/month found across %d instances.\n",
			money(wasteMinSavings), report.TotalInstancesAnalyzed)
		return nil
	}

	tw := table.Table{}
	tw.AppendHeader(table.Row{"Severity", "Type", "Instance", "Provider", "Waste/day", "Waste/month", "Recommendation"})
	for _, a := range report.Alerts {
		severity := string(a.Severity)
		switch a.Severity {
		case waste.SeverityCritical, waste.SeverityHigh:
			severity = text.FgHiRed.Sprint(severity)
		case waste.SeverityMedium:
			severity = text.FgYellow.Sprint(severity)
		}
		tw.AppendRow(table.Row{
			severity,
			string(a.WasteType),
			a.Instance.InstanceID,
			a.Instance.Provider,
			money(a.EstimatedWastePerDay),
			money(a.MonthlyWaste()),
			a.Recommendation,
		})
	}
	tw.SetStyle(table.StyleRounded)
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 5, Align: text.AlignRight},
		{Number: 6, Align: text.AlignRight},
		{Number: 7, WidthMax: 50},
	})
	fmt.Println(tw.Render())

	fmt.Printf("\n%d alerts across %d instances\n", len(report.Alerts), report.TotalInstancesAnalyzed)
	fmt.Println(text.FgHiRed.Sprintf("Total waste: %s/day, %s/month",
		money(report.TotalDailyWaste()), money(report.TotalMonthlyWaste())))
	return nil
}

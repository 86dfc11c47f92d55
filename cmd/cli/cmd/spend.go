// Package cmd - spend command
package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"
)

var (
	spendDays int
	spendJSON bool
)

// spendCmd analyzes spend over a window
var spendCmd = &cobra.Command{
	Use:   "spend",
	Short: "Analyze GPU spend over a time period",
	RunE:  runSpend,
}

func init() {
	spendCmd.Flags().IntVarP(&spendDays, "days", "d", 30, "number of days to analyze")
	spendCmd.Flags().BoolVarP(&spendJSON, "json", "j", false, "output as JSON")
}

func runSpend(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	aggregator := buildAggregator(ctx)

	end := time.Now()
	start := end.AddDate(0, 0, -spendDays)
	summary := aggregator.Summary(ctx, start, end)

	if spendJSON {
		return printJSON(summary.Document())
	}

	fmt.Printf("GPU spend, last %d days\n\n", spendDays)

	tw := table.Table{}
	tw.AppendHeader(table.Row{"Provider", "Cost", "Hours", "Instances", "Running", "Idle", "$/hr avg"})
	for _, p := range summary.ByProvider {
		tw.AppendRow(table.Row{
			p.Provider,
			money(p.TotalCost),
			fmt.Sprintf("%.0f", p.TotalHours),
			p.InstanceCount,
			p.RunningCount,
			p.IdleCount,
			fmt.Sprintf("$%.4f", p.AvgHourlyRate()),
		})
	}
	tw.SetStyle(table.StyleRounded)
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight},
		{Number: 3, Align: text.AlignRight},
		{Number: 7, Align: text.AlignRight},
	})
	fmt.Println(tw.Render())

	gw := table.Table{}
	gw.AppendHeader(table.Row{"GPU", "Cost", "GPU Hours", "$/GPU-hr"})
	for _, g := range summary.ByGPUType {
		gw.AppendRow(table.Row{
			string(g.GPUType),
			money(g.TotalCost),
			fmt.Sprintf("%.0f", g.TotalHours),
			fmt.Sprintf("$%.4f", g.CostPerGPUHour()),
		})
	}
	gw.SetStyle(table.StyleRounded)
	gw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight},
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
	})
	fmt.Println(gw.Render())

	fmt.Printf("\nTotal: %s over %.0f GPU hours\n", money(summary.TotalCost), summary.TotalGPUHours)
	fmt.Printf("Daily run rate: %s, monthly projection: %s\n",
		money(summary.DailyRunRate()), money(summary.MonthlyProjection()))
	if summary.EstimatedWaste > 0 {
		fmt.Println(text.FgHiRed.Sprintf("Estimated waste from idle instances: %s", money(summary.EstimatedWaste)))
	}
	if summary.PotentialSavings > 0 {
		fmt.Printf("Potential savings from spot pricing: %s\n", money(summary.PotentialSavings))
	}
	return nil
}

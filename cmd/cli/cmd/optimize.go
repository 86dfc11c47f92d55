// Package cmd - optimize command
package cmd

import (
	"context"
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"gpu-spend/core/optimize"
)

var (
	optimizeQuick bool
	optimizeJSON  bool
)

// optimizeCmd generates savings recommendations
var optimizeCmd = &cobra.Command{
	Use:   "optimize",
	Short: "Get GPU cost optimization recommendations",
	RunE:  runOptimize,
}

func init() {
	optimizeCmd.Flags().BoolVarP(&optimizeQuick, "quick", "q", false, "show only quick wins")
	optimizeCmd.Flags().BoolVarP(&optimizeJSON, "json", "j", false, "output as JSON")
}

func runOptimize(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	aggregator := buildAggregator(ctx)
	recommender := optimize.NewRecommender(aggregator, nil)

	report := recommender.Generate(ctx)
	if optimizeQuick {
		report.Recommendations = report.QuickWins()
	}

	if optimizeJSON {
		return printJSON(report.Document())
	}

	if len(report.Recommendations) == 0 {
		fmt.Println("No recommendations. Your GPU spend looks tight.")
		return nil
	}

	tw := table.Table{}
	tw.AppendHeader(table.Row{"Priority", "Recommendation", "Provider", "Savings/month", "Effort"})
	for _, rec := range report.Recommendations {
		priority := string(rec.Priority)
		switch rec.Priority {
		case optimize.PriorityCritical:
			priority = text.FgHiRed.Sprint(priority)
		case optimize.PriorityHigh:
			priority = text.FgRed.Sprint(priority)
		case optimize.PriorityMedium:
			priority = text.FgYellow.Sprint(priority)
		}
		tw.AppendRow(table.Row{
			priority,
			rec.Title,
			rec.Provider,
			money(rec.MonthlySavings),
			rec.Effort,
		})
	}
	tw.SetStyle(table.StyleRounded)
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, WidthMax: 45},
		{Number: 4, Align: text.AlignRight},
	})
	fmt.Println(tw.Render())

	wins := report.QuickWins()
	fmt.Printf("\n%d recommendations, %s/month total potential savings\n",
		len(report.Recommendations), money(report.TotalMonthlySavings()))
	if len(wins) > 0 && !optimizeQuick {
		fmt.Println(text.FgHiGreen.Sprintf("%d quick wins available (low effort, >$50/month)", len(wins)))
	}
	return nil
}

// Package cmd - forecast command
package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"gpu-spend/core/forecast"
)

var (
	forecastMonths int
	forecastJSON   bool
)

// forecastCmd projects next month's spend
var forecastCmd = &cobra.Command{
	Use:   "forecast",
	Short: "Forecast future GPU costs",
	RunE:  runForecast,
}

func init() {
	forecastCmd.Flags().IntVarP(&forecastMonths, "months", "m", 1, "months to forecast ahead")
	forecastCmd.Flags().BoolVarP(&forecastJSON, "json", "j", false, "output as JSON")
}

func runForecast(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	aggregator := buildAggregator(ctx)
	predictor := forecast.NewPredictor(aggregator)

	now := time.Now()
	target := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, forecastMonths, 0)
	result := predictor.ForecastMonth(ctx, target, 0)

	if forecastJSON {
		return printJSON(result.Document())
	}

	fmt.Printf("Forecast for %s\n\n", target.Format("January 2006"))
	fmt.Printf("Predicted cost: %s\n", text.FgHiGreen.Sprint(money(result.PredictedCost)))
	fmt.Printf("95%% confidence: %s to %s\n", money(result.ConfidenceLow), money(result.ConfidenceHigh))
	fmt.Printf("Model: %s (%d data points)\n", result.ModelType, result.DataPointsUsed)

	if len(result.ByProvider) > 0 {
		fmt.Println()
		tw := table.Table{}
		tw.AppendHeader(table.Row{"Provider", "Predicted"})
		for provider, cost := range result.ByProvider {
			tw.AppendRow(table.Row{provider, money(cost)})
		}
		tw.SetStyle(table.StyleRounded)
		tw.SetColumnConfigs([]table.ColumnConfig{{Number: 2, Align: text.AlignRight}})
		tw.SortBy([]table.SortBy{{Number: 1, Mode: table.Asc}})
		fmt.Println(tw.Render())
	}
	return nil
}

// Package cmd - estimate command
package cmd

import (
	"fmt"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"gpu-spend/core/forecast"
	"gpu-spend/core/types"
)

var (
	estimateTokens   float64
	estimateGPU      string
	estimateGPUCount int
	estimateJSON     bool
)

// estimateCmd estimates training costs for a model
var estimateCmd = &cobra.Command{
	Use:   "estimate [model-size-billions]",
	Short: "Estimate training costs for a model",
	Long: `Estimate what training a model would cost across providers.

Model size is given in billions of parameters. Compute is approximated
as 6 FLOPs per parameter per token.

Examples:
  gpu-spend estimate 7
  gpu-spend estimate 70 --tokens 2 --gpu h100-80gb --count 64`,
	Args: cobra.ExactArgs(1),
	RunE: runEstimate,
}

func init() {
	estimateCmd.Flags().Float64VarP(&estimateTokens, "tokens", "t", 1.0, "training tokens in trillions")
	estimateCmd.Flags().StringVarP(&estimateGPU, "gpu", "g", "a100-80gb", "GPU type")
	estimateCmd.Flags().IntVarP(&estimateGPUCount, "count", "c", 8, "number of GPUs")
	estimateCmd.Flags().BoolVarP(&estimateJSON, "json", "j", false, "output as JSON")
}

func runEstimate(cmd *cobra.Command, args []string) error {
	modelSize, err := strconv.ParseFloat(args[0], 64)
	if err != nil || modelSize <= 0 {
		return fmt.Errorf("model size must be a positive number of billions of parameters: %q", args[0])
	}

	gpuType := types.ParseGPUType(estimateGPU)
	if gpuType == types.GPUUnknown {
		gpuType = types.GPUA10080GB
	}

	estimate := forecast.EstimateTrainingCost(modelSize, estimateTokens*1e12, gpuType, estimateGPUCount)

	if estimateJSON {
		return printJSON(estimate.Document())
	}

	fmt.Printf("Training estimate: %.0fB parameters, %.1fT tokens on %dx %s\n\n",
		modelSize, estimateTokens, estimateGPUCount, gpuType)
	fmt.Printf("Compute: %.2e FLOPs, %.0f GPU hours (%.1f days wall clock)\n",
		estimate.TotalFLOPs, estimate.GPUHours, estimate.EstimatedDays)

	tw := table.Table{}
	tw.AppendHeader(table.Row{"Provider", "Estimated Cost"})
	for provider, cost := range estimate.CostByProvider {
		row := table.Row{provider, money(cost)}
		if provider == estimate.CheapestProvider {
			row = table.Row{text.FgHiGreen.Sprint(provider), text.FgHiGreen.Sprint(money(cost))}
		}
		tw.AppendRow(row)
	}
	tw.SetStyle(table.StyleRounded)
	tw.SetColumnConfigs([]table.ColumnConfig{{Number: 2, Align: text.AlignRight}})
	tw.SortBy([]table.SortBy{{Number: 2, Mode: table.Asc}})
	fmt.Println(tw.Render())

	fmt.Printf("\nAverage estimate: %s\n", money(estimate.EstimatedCost))
	fmt.Printf("Range: %s (%s) to %s\n",
		money(estimate.CostRangeLow), estimate.CheapestProvider, money(estimate.CostRangeHigh))
	return nil
}

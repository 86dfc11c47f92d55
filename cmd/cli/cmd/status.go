// Package cmd - status command
package cmd

import (
	"context"
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"
)

var statusJSON bool

// statusCmd shows the current fleet across providers
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show current GPU instances across all providers",
	RunE:  runStatus,
}

func init() {
	statusCmd.Flags().BoolVarP(&statusJSON, "json", "j", false, "output as JSON")
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	aggregator := buildAggregator(ctx)
	instances := aggregator.AllInstances(ctx)

	running, idle := 0, 0
	hourlyBurn := 0.0
	for i := range instances {
		if instances[i].IsRunning() {
			running++
			hourlyBurn += instances[i].HourlyCost
		}
		if instances[i].IsIdle() {
			idle++
		}
	}

	if statusJSON {
		docs := make([]map[string]interface{}, 0, len(instances))
		for i := range instances {
			inst := &instances[i]
			docs = append(docs, map[string]interface{}{
				"id":              inst.InstanceID,
				"provider":        inst.Provider,
				"type":            inst.InstanceType,
				"gpu_type":        string(inst.GPUType),
				"gpu_count":       inst.GPUCount,
				"region":          inst.Region,
				"hourly_cost":     inst.HourlyCost,
				"status":          inst.Status,
				"gpu_utilization": inst.GPUUtilization,
			})
		}
		return printJSON(map[string]interface{}{
			"instances":        docs,
			"total":            len(instances),
			"running":          running,
			"idle":             idle,
			"hourly_burn_rate": hourlyBurn,
		})
	}

	tw := table.Table{}
	tw.AppendHeader(table.Row{"Instance", "Provider", "GPU", "Count", "Region", "Pricing", "$/hr", "Util", "Status"})

	for i := range instances {
		inst := &instances[i]
		status := inst.Status
		if inst.IsIdle() {
			status = text.FgHiRed.Sprintf("%s (idle)", inst.Status)
		} else if inst.IsRunning() {
			status = text.FgGreen.Sprint(inst.Status)
		}
		tw.AppendRow(table.Row{
			inst.InstanceID,
			inst.Provider,
			string(inst.GPUType),
			inst.GPUCount,
			inst.Region,
			string(inst.PricingType),
			money(inst.HourlyCost),
			percent(inst.GPUUtilization),
			status,
		})
	}

	tw.SetStyle(table.StyleRounded)
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 7, Align: text.AlignRight},
		{Number: 8, Align: text.AlignRight},
	})
	fmt.Println(tw.Render())

	fmt.Printf("\n%d instances (%d running, %d idle)\n", len(instances), running, idle)
	fmt.Printf("Burn rate: %s/hr, %s/day, %s/month\n",
		money(hourlyBurn), money(hourlyBurn*24), money(hourlyBurn*24*30))
	return nil
}

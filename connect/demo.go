package connect

import (
	"time"

	"gpu-spend/core/types"
)

// DemoWorkload pairs a synthetic instance with the hours per day it
// bills, so demo connectors can serve a consistent instance list and
// usage history without live credentials.
type DemoWorkload struct {
	Instance    types.GPUInstance
	HoursPerDay float64
}

// DemoInstances returns fresh copies of the workload instances
func DemoInstances(workloads []DemoWorkload) []types.GPUInstance {
	instances := make([]types.GPUInstance, 0, len(workloads))
	for _, w := range workloads {
		instances = append(instances, w.Instance)
	}
	return instances
}

// DemoUsage expands workloads into one usage record per instance per
// calendar day of [start, end)
func DemoUsage(workloads []DemoWorkload, start, end time.Time) []types.UsageRecord {
	var records []types.UsageRecord

	for current := start; current.Before(end); current = current.AddDate(0, 0, 1) {
		nextDay := current.AddDate(0, 0, 1)
		for _, w := range workloads {
			records = append(records, types.UsageRecord{
				InstanceID:  w.Instance.InstanceID,
				Provider:    w.Instance.Provider,
				StartTime:   current,
				EndTime:     nextDay,
				HoursUsed:   w.HoursPerDay,
				Cost:        w.Instance.HourlyCost * w.HoursPerDay,
				GPUType:     w.Instance.GPUType,
				GPUCount:    w.Instance.GPUCount,
				PricingType: w.Instance.PricingType,
				Region:      w.Instance.Region,
			})
		}
	}

	return records
}

// SumCosts totals record costs, shared by GetCurrentSpend implementations
func SumCosts(records []types.UsageRecord) float64 {
	total := 0.0
	for _, r := range records {
		total += r.Cost
	}
	return total
}

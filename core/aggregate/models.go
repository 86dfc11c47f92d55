// Package aggregate merges instance and usage data from every
// registered connector into one consistent spend view.
package aggregate

import (
	"time"

	"gpu-spend/core/output"
	"gpu-spend/core/types"
)

// ProviderBreakdown is the spend subtotal for one provider
type ProviderBreakdown struct {
	Provider      string  `json:"provider"`
	TotalCost     float64 `json:"total_cost"`
	TotalHours    float64 `json:"total_hours"`
	InstanceCount int     `json:"instance_count"`
	RunningCount  int     `json:"running_count"`
	IdleCount     int     `json:"idle_count"`
}

// AvgHourlyRate is cost per billed hour
func (b ProviderBreakdown) AvgHourlyRate() float64 {
	if b.TotalHours > 0 {
		return b.TotalCost / b.TotalHours
	}
	return 0
}

// IdlePercentage is the share of running instances sitting idle
func (b ProviderBreakdown) IdlePercentage() float64 {
	if b.RunningCount > 0 {
		return float64(b.IdleCount) / float64(b.RunningCount) * 100
	}
	return 0
}

// GPUBreakdown is the spend subtotal for one GPU type
type GPUBreakdown struct {
	GPUType        types.GPUType `json:"gpu_type"`
	TotalCost      float64       `json:"total_cost"`
	TotalHours     float64       `json:"total_hours"`
	GPUCount       int           `json:"gpu_count"`
	AvgUtilization *float64      `json:"avg_utilization,omitempty"`
}

// CostPerGPUHour normalizes cost to a single GPU hour
func (b GPUBreakdown) CostPerGPUHour() float64 {
	if b.TotalHours > 0 && b.GPUCount > 0 {
		return b.TotalCost / (b.TotalHours * float64(b.GPUCount))
	}
	return 0
}

// RegionBreakdown is the spend subtotal for one provider region
type RegionBreakdown struct {
	Region        string  `json:"region"`
	Provider      string  `json:"provider"`
	TotalCost     float64 `json:"total_cost"`
	InstanceCount int     `json:"instance_count"`
}

// PricingBreakdown is the spend subtotal for one pricing model
type PricingBreakdown struct {
	PricingType   types.PricingType `json:"pricing_type"`
	TotalCost     float64           `json:"total_cost"`
	TotalHours    float64           `json:"total_hours"`
	InstanceCount int               `json:"instance_count"`
}

// PotentialSavings estimates what switching this bucket to spot would
// save. Only on-demand spend has headroom; spot and reserved are
// already discounted.
func (b PricingBreakdown) PotentialSavings() float64 {
	if b.PricingType == types.PricingOnDemand {
		return b.TotalCost * 0.6
	}
	return 0
}

// SpendSummary is the aggregated spend view over [StartDate, EndDate)
type SpendSummary struct {
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`

	TotalCost        float64 `json:"total_cost"`
	TotalGPUHours    float64 `json:"total_gpu_hours"`
	TotalInstances   int     `json:"total_instances"`
	RunningInstances int     `json:"running_instances"`
	IdleInstances    int     `json:"idle_instances"`

	ByProvider []ProviderBreakdown `json:"by_provider"`
	ByGPUType  []GPUBreakdown      `json:"by_gpu_type"`
	ByRegion   []RegionBreakdown   `json:"by_region"`
	ByPricing  []PricingBreakdown  `json:"by_pricing"`

	// AvgGPUUtilization averages only instances exposing a reading
	AvgGPUUtilization *float64 `json:"avg_gpu_utilization,omitempty"`

	// EstimatedWaste is the window cost of idle instances
	EstimatedWaste float64 `json:"estimated_waste"`

	// PotentialSavings is the spot-switch headroom across pricing buckets
	PotentialSavings float64 `json:"potential_savings"`
}

// AvgCostPerGPUHour is total cost per billed GPU hour
func (s *SpendSummary) AvgCostPerGPUHour() float64 {
	if s.TotalGPUHours > 0 {
		return s.TotalCost / s.TotalGPUHours
	}
	return 0
}

// IdlePercentage is the share of running instances sitting idle
func (s *SpendSummary) IdlePercentage() float64 {
	if s.RunningInstances > 0 {
		return float64(s.IdleInstances) / float64(s.RunningInstances) * 100
	}
	return 0
}

// DailyRunRate is the average daily spend over the window
func (s *SpendSummary) DailyRunRate() float64 {
	days := windowDays(s.StartDate, s.EndDate)
	if days > 0 {
		return s.TotalCost / float64(days)
	}
	return s.TotalCost
}

// MonthlyProjection extrapolates the daily run rate to 30 days
func (s *SpendSummary) MonthlyProjection() float64 {
	return s.DailyRunRate() * 30
}

// Document flattens the summary for transport
func (s *SpendSummary) Document() output.Document {
	byProvider := make([]output.Document, 0, len(s.ByProvider))
	for _, p := range s.ByProvider {
		byProvider = append(byProvider, output.Document{
			"provider":        p.Provider,
			"cost":            output.Currency(p.TotalCost),
			"hours":           output.Currency(p.TotalHours),
			"instances":       p.InstanceCount,
			"running":         p.RunningCount,
			"idle":            p.IdleCount,
			"avg_hourly_rate": output.Rate(p.AvgHourlyRate()),
		})
	}

	byGPUType := make([]output.Document, 0, len(s.ByGPUType))
	for _, g := range s.ByGPUType {
		byGPUType = append(byGPUType, output.Document{
			"gpu_type":          string(g.GPUType),
			"cost":              output.Currency(g.TotalCost),
			"hours":             output.Currency(g.TotalHours),
			"gpu_count":         g.GPUCount,
			"cost_per_gpu_hour": output.Rate(g.CostPerGPUHour()),
		})
	}

	byRegion := make([]output.Document, 0, len(s.ByRegion))
	for _, r := range s.ByRegion {
		byRegion = append(byRegion, output.Document{
			"region":    r.Region,
			"provider":  r.Provider,
			"cost":      output.Currency(r.TotalCost),
			"instances": r.InstanceCount,
		})
	}

	byPricing := make([]output.Document, 0, len(s.ByPricing))
	for _, p := range s.ByPricing {
		byPricing = append(byPricing, output.Document{
			"type":              string(p.PricingType),
			"cost":              output.Currency(p.TotalCost),
			"hours":             output.Currency(p.TotalHours),
			"potential_savings": output.Currency(p.PotentialSavings()),
		})
	}

	return output.Document{
		"period": output.Document{
			"start": s.StartDate.Format(time.RFC3339),
			"end":   s.EndDate.Format(time.RFC3339),
		},
		"totals": output.Document{
			"cost":      output.Currency(s.TotalCost),
			"gpu_hours": output.Currency(s.TotalGPUHours),
			"instances": s.TotalInstances,
			"running":   s.RunningInstances,
			"idle":      s.IdleInstances,
		},
		"metrics": output.Document{
			"avg_cost_per_gpu_hour": output.Rate(s.AvgCostPerGPUHour()),
			"idle_percentage":       output.Percent(s.IdlePercentage()),
			"avg_gpu_utilization":   output.PercentPtr(s.AvgGPUUtilization),
			"estimated_waste":       output.Currency(s.EstimatedWaste),
			"potential_savings":     output.Currency(s.PotentialSavings),
		},
		"projections": output.Document{
			"daily_run_rate":     output.Currency(s.DailyRunRate()),
			"monthly_projection": output.Currency(s.MonthlyProjection()),
		},
		"by_provider": byProvider,
		"by_gpu_type": byGPUType,
		"by_region":   byRegion,
		"by_pricing":  byPricing,
	}
}

func windowDays(start, end time.Time) int {
	return int(end.Sub(start).Hours() / 24)
}

package forecast

import (
	"math"

	"gpu-spend/core/output"
	"gpu-spend/core/pricing"
	"gpu-spend/core/types"
)

// DefaultMFU is the assumed model FLOPs utilization for training runs.
// Real-world efficiency lands well under the GPU's peak.
const DefaultMFU = 0.4

// TrainingCostEstimate prices a hypothetical training run across
// providers using the 6*P*T FLOPs approximation
type TrainingCostEstimate struct {
	ModelParamsB   float64       `json:"model_params_b"`
	TrainingTokens float64       `json:"training_tokens"`
	GPUType        types.GPUType `json:"gpu_type"`
	GPUCount       int           `json:"gpu_count"`

	TotalFLOPs    float64 `json:"total_flops"`
	GPUHours      float64 `json:"gpu_hours"`
	EstimatedDays float64 `json:"estimated_days"`

	CostByProvider   map[string]float64 `json:"cost_by_provider"`
	EstimatedCost    float64            `json:"estimated_cost"`
	CheapestProvider string             `json:"cheapest_provider"`
	CostRangeLow     float64            `json:"cost_range_low"`
	CostRangeHigh    float64            `json:"cost_range_high"`
}

// Document flattens the estimate for transport
func (e *TrainingCostEstimate) Document() output.Document {
	byProvider := make(output.Document, len(e.CostByProvider))
	for provider, cost := range e.CostByProvider {
		byProvider[provider] = output.Currency(cost)
	}

	return output.Document{
		"model": output.Document{
			"parameters_billions": e.ModelParamsB,
			"training_tokens":     e.TrainingTokens,
		},
		"hardware": output.Document{
			"gpu_type":  string(e.GPUType),
			"gpu_count": e.GPUCount,
		},
		"compute": output.Document{
			"total_flops":    e.TotalFLOPs,
			"gpu_hours":      output.Currency(e.GPUHours),
			"estimated_days": output.Currency(e.EstimatedDays),
		},
		"cost": output.Document{
			"estimate":          output.Currency(e.EstimatedCost),
			"range_low":         output.Currency(e.CostRangeLow),
			"range_high":        output.Currency(e.CostRangeHigh),
			"cheapest_provider": e.CheapestProvider,
			"by_provider":       byProvider,
		},
	}
}

// EstimateTrainingCost prices a training run of modelParamsB billion
// parameters over trainingTokens tokens on gpuCount GPUs of gpuType.
//
// Compute is approximated as 6 FLOPs per parameter per token. Wall
// time assumes the default MFU against the GPU's peak throughput.
func EstimateTrainingCost(modelParamsB, trainingTokens float64, gpuType types.GPUType, gpuCount int) *TrainingCostEstimate {
	if gpuCount <= 0 {
		gpuCount = 1
	}

	totalFLOPs := 6 * modelParamsB * 1e9 * trainingTokens

	peak := pricing.PeakFLOPS(gpuType)
	effectiveFLOPS := peak * float64(gpuCount) * DefaultMFU

	seconds := totalFLOPs / effectiveFLOPS
	gpuHours := seconds / 3600 * float64(gpuCount)
	days := seconds / 86400

	rates := pricing.RatesFor(gpuType)
	costByProvider := make(map[string]float64, len(rates))

	total := 0.0
	cheapest := ""
	low := math.Inf(1)
	high := 0.0
	for provider, rate := range rates {
		cost := gpuHours * rate
		costByProvider[provider] = cost
		total += cost
		if cost < low || (cost == low && provider < cheapest) {
			low = cost
			cheapest = provider
		}
		if cost > high {
			high = cost
		}
	}

	estimate := 0.0
	if len(costByProvider) > 0 {
		estimate = total / float64(len(costByProvider))
	} else {
		low = 0
	}

	return &TrainingCostEstimate{
		ModelParamsB:     modelParamsB,
		TrainingTokens:   trainingTokens,
		GPUType:          gpuType,
		GPUCount:         gpuCount,
		TotalFLOPs:       totalFLOPs,
		GPUHours:         gpuHours,
		EstimatedDays:    days,
		CostByProvider:   costByProvider,
		EstimatedCost:    estimate,
		CheapestProvider: cheapest,
		CostRangeLow:     low,
		CostRangeHigh:    high,
	}
}

// InferenceCostEstimate prices a steady-state serving workload across
// providers
type InferenceCostEstimate struct {
	RequestsPerDay   float64       `json:"requests_per_day"`
	TokensPerRequest float64       `json:"tokens_per_request"`
	GPUType          types.GPUType `json:"gpu_type"`

	TokensPerSecond float64 `json:"tokens_per_second"`
	GPUHoursPerDay  float64 `json:"gpu_hours_per_day"`

	DailyCostByProvider   map[string]float64 `json:"daily_cost_by_provider"`
	MonthlyCostByProvider map[string]float64 `json:"monthly_cost_by_provider"`
	EstimatedDailyCost    float64            `json:"estimated_daily_cost"`
	EstimatedMonthlyCost  float64            `json:"estimated_monthly_cost"`
	CheapestProvider      string             `json:"cheapest_provider"`
}

// Document flattens the estimate for transport
func (e *InferenceCostEstimate) Document() output.Document {
	daily := make(output.Document, len(e.DailyCostByProvider))
	for provider, cost := range e.DailyCostByProvider {
		daily[provider] = output.Currency(cost)
	}
	monthly := make(output.Document, len(e.MonthlyCostByProvider))
	for provider, cost := range e.MonthlyCostByProvider {
		monthly[provider] = output.Currency(cost)
	}

	return output.Document{
		"workload": output.Document{
			"requests_per_day":   e.RequestsPerDay,
			"tokens_per_request": e.TokensPerRequest,
			"gpu_type":           string(e.GPUType),
			"tokens_per_second":  e.TokensPerSecond,
			"gpu_hours_per_day":  output.Currency(e.GPUHoursPerDay),
		},
		"cost": output.Document{
			"daily_estimate":      output.Currency(e.EstimatedDailyCost),
			"monthly_estimate":    output.Currency(e.EstimatedMonthlyCost),
			"cheapest_provider":   e.CheapestProvider,
			"daily_by_provider":   daily,
			"monthly_by_provider": monthly,
		},
	}
}

// EstimateInferenceCost prices serving requestsPerDay requests of
// tokensPerRequest tokens on gpuType, using the GPU's published
// generation throughput
func EstimateInferenceCost(requestsPerDay, tokensPerRequest float64, gpuType types.GPUType) *InferenceCostEstimate {
	throughput := pricing.InferenceThroughput(gpuType)

	tokensPerDay := requestsPerDay * tokensPerRequest
	secondsPerDay := tokensPerDay / throughput
	gpuHoursPerDay := secondsPerDay / 3600

	rates := pricing.RatesFor(gpuType)
	daily := make(map[string]float64, len(rates))
	monthly := make(map[string]float64, len(rates))

	total := 0.0
	cheapest := ""
	low := math.Inf(1)
	for provider, rate := range rates {
		cost := gpuHoursPerDay * rate
		daily[provider] = cost
		monthly[provider] = cost * 30
		total += cost
		if cost < low || (cost == low && provider < cheapest) {
			low = cost
			cheapest = provider
		}
	}

	estimate := 0.0
	if len(daily) > 0 {
		estimate = total / float64(len(daily))
	}

	return &InferenceCostEstimate{
		RequestsPerDay:        requestsPerDay,
		TokensPerRequest:      tokensPerRequest,
		GPUType:               gpuType,
		TokensPerSecond:       throughput,
		GPUHoursPerDay:        gpuHoursPerDay,
		DailyCostByProvider:   daily,
		MonthlyCostByProvider: monthly,
		EstimatedDailyCost:    estimate,
		EstimatedMonthlyCost:  estimate * 30,
		CheapestProvider:      cheapest,
	}
}

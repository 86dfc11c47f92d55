// Package forecast projects future GPU spend from historical usage and
// estimates hypothetical training and inference run costs from
// FLOP-based scaling constants.
package forecast

import (
	"context"
	"math"
	"sort"
	"time"

	"gpu-spend/core/aggregate"
	"gpu-spend/core/output"
	"gpu-spend/core/types"
)

// Model tiers, from most to least data-informed
const (
	ModelLinearTrend      = "linear_trend"
	ModelAverage          = "average"
	ModelCurrentInstances = "current_instances"
)

// DefaultLookbackDays is the history window feeding the trend fit
const DefaultLookbackDays = 30

// CostForecast predicts spend for a future period with a confidence band
type CostForecast struct {
	ForecastDate time.Time `json:"forecast_date"`
	PeriodStart  time.Time `json:"period_start"`
	PeriodEnd    time.Time `json:"period_end"`

	PredictedCost   float64 `json:"predicted_cost"`
	ConfidenceLow   float64 `json:"confidence_low"`
	ConfidenceHigh  float64 `json:"confidence_high"`
	ConfidenceLevel float64 `json:"confidence_level"`

	ByProvider map[string]float64 `json:"by_provider"`
	ByGPUType  map[string]float64 `json:"by_gpu_type"`

	ModelType      string `json:"model_type"`
	DataPointsUsed int    `json:"data_points_used"`
}

// Document flattens the forecast for transport
func (f *CostForecast) Document() output.Document {
	byProvider := make(output.Document, len(f.ByProvider))
	for provider, cost := range f.ByProvider {
		byProvider[provider] = output.Currency(cost)
	}
	byGPUType := make(output.Document, len(f.ByGPUType))
	for gpuType, cost := range f.ByGPUType {
		byGPUType[gpuType] = output.Currency(cost)
	}

	return output.Document{
		"forecast_date": f.ForecastDate.Format(time.RFC3339),
		"period": output.Document{
			"start": f.PeriodStart.Format(time.RFC3339),
			"end":   f.PeriodEnd.Format(time.RFC3339),
			"days":  int(f.PeriodEnd.Sub(f.PeriodStart).Hours() / 24),
		},
		"prediction": output.Document{
			"cost":             output.Currency(f.PredictedCost),
			"confidence_low":   output.Currency(f.ConfidenceLow),
			"confidence_high":  output.Currency(f.ConfidenceHigh),
			"confidence_level": f.ConfidenceLevel,
		},
		"by_provider": byProvider,
		"by_gpu_type": byGPUType,
		"model": output.Document{
			"type":        f.ModelType,
			"data_points": f.DataPointsUsed,
		},
	}
}

// Predictor forecasts costs from the aggregator's historical usage
type Predictor struct {
	aggregator *aggregate.Aggregator
}

// NewPredictor creates a cost predictor
func NewPredictor(aggregator *aggregate.Aggregator) *Predictor {
	return &Predictor{aggregator: aggregator}
}

// ForecastMonth forecasts spend for a target month. A zero targetMonth
// selects the first day of the next calendar month; lookbackDays <= 0
// uses the default window.
//
// The model degrades by data availability: a least-squares trend over
// the daily series, an average projection under 3 distinct days, and a
// current-instance burn-rate baseline with no usage at all.
func (p *Predictor) ForecastMonth(ctx context.Context, targetMonth time.Time, lookbackDays int) *CostForecast {
	now := time.Now()

	if targetMonth.IsZero() {
		targetMonth = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, 1, 0)
	}
	if lookbackDays <= 0 {
		lookbackDays = DefaultLookbackDays
	}

	records := p.aggregator.AllUsage(ctx, now.AddDate(0, 0, -lookbackDays), now)
	if len(records) == 0 {
		return p.forecastFromCurrentInstances(ctx, now, targetMonth)
	}

	dailyCosts := aggregateDailyCosts(records)
	periodEnd := targetMonth.AddDate(0, 1, 0)

	const daysInMonth = 30

	if len(dailyCosts) < 3 {
		// Not enough days for a trend; project the mean
		total := 0.0
		for _, cost := range dailyCosts {
			total += cost
		}
		avgDaily := total / float64(len(dailyCosts))
		predicted := avgDaily * daysInMonth

		return &CostForecast{
			ForecastDate:    now,
			PeriodStart:     targetMonth,
			PeriodEnd:       periodEnd,
			PredictedCost:   predicted,
			ConfidenceLow:   predicted * 0.7,
			ConfidenceHigh:  predicted * 1.3,
			ConfidenceLevel: 0.95,
			ModelType:       ModelAverage,
			DataPointsUsed:  len(dailyCosts),
		}
	}

	// Ordered daily series
	days := make([]time.Time, 0, len(dailyCosts))
	for day := range dailyCosts {
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	costs := make([]float64, len(days))
	for i, day := range days {
		costs[i] = dailyCosts[day]
	}

	slope, intercept := linearFit(costs)
	stdDev := populationStdDev(costs)

	daysAhead := int(targetMonth.Sub(now).Hours() / 24)
	projectedDaily := intercept + slope*float64(len(costs)+daysAhead)
	projectedDaily = math.Max(0, projectedDaily)

	predicted := projectedDaily * daysInMonth
	confidenceMargin := 1.96 * stdDev * math.Sqrt(daysInMonth)

	byProvider := make(map[string]float64)
	byGPUType := make(map[string]float64)
	totalHistorical := 0.0
	for _, r := range records {
		byProvider[r.Provider] += r.Cost
		byGPUType[string(r.GPUType)] += r.Cost
		totalHistorical += r.Cost
	}

	// Scale breakdowns proportionally so they sum to the prediction
	if totalHistorical > 0 {
		scale := predicted / totalHistorical
		for k := range byProvider {
			byProvider[k] *= scale
		}
		for k := range byGPUType {
			byGPUType[k] *= scale
		}
	}

	return &CostForecast{
		ForecastDate:    now,
		PeriodStart:     targetMonth,
		PeriodEnd:       periodEnd,
		PredictedCost:   predicted,
		ConfidenceLow:   math.Max(0, predicted-confidenceMargin),
		ConfidenceHigh:  predicted + confidenceMargin,
		ConfidenceLevel: 0.95,
		ByProvider:      byProvider,
		ByGPUType:       byGPUType,
		ModelType:       ModelLinearTrend,
		DataPointsUsed:  len(costs),
	}
}

// forecastFromCurrentInstances is the no-history fallback: project the
// current running burn rate forward a month
func (p *Predictor) forecastFromCurrentInstances(ctx context.Context, now, targetMonth time.Time) *CostForecast {
	instances := p.aggregator.AllInstances(ctx)

	byProvider := make(map[string]float64)
	byGPUType := make(map[string]float64)
	monthlyCost := 0.0
	running := 0

	for i := range instances {
		if !instances[i].IsRunning() {
			continue
		}
		running++
		monthly := instances[i].HourlyCost * 24 * 30
		monthlyCost += monthly
		byProvider[instances[i].Provider] += monthly
		byGPUType[string(instances[i].GPUType)] += monthly
	}

	return &CostForecast{
		ForecastDate:    now,
		PeriodStart:     targetMonth,
		PeriodEnd:       targetMonth.AddDate(0, 1, 0),
		PredictedCost:   monthlyCost,
		ConfidenceLow:   monthlyCost * 0.8,
		ConfidenceHigh:  monthlyCost * 1.2,
		ConfidenceLevel: 0.95,
		ByProvider:      byProvider,
		ByGPUType:       byGPUType,
		ModelType:       ModelCurrentInstances,
		DataPointsUsed:  running,
	}
}

// aggregateDailyCosts buckets record cost by the calendar day of the
// record's start time
func aggregateDailyCosts(records []types.UsageRecord) map[time.Time]float64 {
	daily := make(map[time.Time]float64)
	for _, r := range records {
		day := time.Date(r.StartTime.Year(), r.StartTime.Month(), r.StartTime.Day(),
			0, 0, 0, 0, r.StartTime.Location())
		daily[day] += r.Cost
	}
	return daily
}

// linearFit computes the ordinary least-squares line y = slope*x + b
// over y indexed 0..n-1
func linearFit(y []float64) (slope, intercept float64) {
	n := float64(len(y))
	if n == 0 {
		return 0, 0
	}

	var sumX, sumY, sumXY, sumXX float64
	for i, v := range y {
		x := float64(i)
		sumX += x
		sumY += v
		sumXY += x * v
		sumXX += x * x
	}

	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return 0, sumY / n
	}

	slope = (n*sumXY - sumX*sumY) / denom
	intercept = (sumY - slope*sumX) / n
	return slope, intercept
}

// populationStdDev is the uncorrected standard deviation of the series
func populationStdDev(y []float64) float64 {
	n := float64(len(y))
	if n == 0 {
		return 0
	}

	mean := 0.0
	for _, v := range y {
		mean += v
	}
	mean /= n

	variance := 0.0
	for _, v := range y {
		variance += (v - mean) * (v - mean)
	}
	return math.Sqrt(variance / n)
}

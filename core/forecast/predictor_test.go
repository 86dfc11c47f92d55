package forecast

import (
	"context"
	"math"
	"testing"
	"time"

	"gpu-spend/core/aggregate"
	"gpu-spend/core/types"
)

type stubConnector struct {
	name      string
	instances []types.GPUInstance
	records   []types.UsageRecord
}

func (s *stubConnector) ProviderName() string              { return s.name }
func (s *stubConnector) Connect(ctx context.Context) error { return nil }

func (s *stubConnector) ListGPUInstances(ctx context.Context) ([]types.GPUInstance, error) {
	return s.instances, nil
}

func (s *stubConnector) GetUsage(ctx context.Context, start, end time.Time) ([]types.UsageRecord, error) {
	return s.records, nil
}

func (s *stubConnector) GetCurrentSpend(ctx context.Context) (float64, error) {
	return 0, nil
}

// dailyRecords builds one record per day for the last n days, each
// costing the given amount
func dailyRecords(n int, cost float64) []types.UsageRecord {
	now := time.Now()
	records := make([]types.UsageRecord, 0, n)
	for i := n; i > 0; i-- {
		day := now.AddDate(0, 0, -i)
		records = append(records, types.UsageRecord{
			InstanceID:  "i-1",
			Provider:    "stub",
			StartTime:   day,
			EndTime:     day.Add(24 * time.Hour),
			HoursUsed:   24,
			Cost:        cost,
			GPUType:     types.GPUA10040GB,
			GPUCount:    1,
			PricingType: types.PricingOnDemand,
			Region:      "us-east-1",
		})
	}
	return records
}

func TestForecastNoHistoryUsesCurrentInstances(t *testing.T) {
	running := types.GPUInstance{
		InstanceID: "r-1", Provider: "stub", GPUType: types.GPUA10040GB,
		HourlyCost: 2.0, Status: "running",
	}
	stopped := types.GPUInstance{
		InstanceID: "s-1", Provider: "stub", GPUType: types.GPUA10040GB,
		HourlyCost: 9.0, Status: "stopped",
	}

	predictor := NewPredictor(aggregate.New(&stubConnector{
		name:      "stub",
		instances: []types.GPUInstance{running, stopped},
	}))

	forecast := predictor.ForecastMonth(context.Background(), time.Time{}, 0)

	if forecast.ModelType != ModelCurrentInstances {
		t.Fatalf("ModelType = %s, want %s", forecast.ModelType, ModelCurrentInstances)
	}

	want := 2.0 * 24 * 30
	if math.Abs(forecast.PredictedCost-want) > 1e-9 {
		t.Errorf("PredictedCost = %v, want %v (stopped excluded)", forecast.PredictedCost, want)
	}
	if math.Abs(forecast.ConfidenceLow-want*0.8) > 1e-9 || math.Abs(forecast.ConfidenceHigh-want*1.2) > 1e-9 {
		t.Errorf("confidence band = [%v, %v], want ±20%%", forecast.ConfidenceLow, forecast.ConfidenceHigh)
	}
	if forecast.DataPointsUsed != 1 {
		t.Errorf("DataPointsUsed = %d, want 1 running instance", forecast.DataPointsUsed)
	}
}

func TestForecastSparseHistoryUsesAverage(t *testing.T) {
	predictor := NewPredictor(aggregate.New(&stubConnector{
		name:    "stub",
		records: dailyRecords(2, 100.0),
	}))

	forecast := predictor.ForecastMonth(context.Background(), time.Time{}, 0)

	if forecast.ModelType != ModelAverage {
		t.Fatalf("ModelType = %s, want %s with 2 days of data", forecast.ModelType, ModelAverage)
	}

	want := 100.0 * 30
	if math.Abs(forecast.PredictedCost-want) > 1e-9 {
		t.Errorf("PredictedCost = %v, want %v", forecast.PredictedCost, want)
	}
	if math.Abs(forecast.ConfidenceLow-want*0.7) > 1e-9 || math.Abs(forecast.ConfidenceHigh-want*1.3) > 1e-9 {
		t.Errorf("confidence band = [%v, %v], want ±30%%", forecast.ConfidenceLow, forecast.ConfidenceHigh)
	}
	if forecast.DataPointsUsed != 2 {
		t.Errorf("DataPointsUsed = %d, want 2", forecast.DataPointsUsed)
	}
}

func TestForecastTrendOnFlatSeries(t *testing.T) {
	predictor := NewPredictor(aggregate.New(&stubConnector{
		name:    "stub",
		records: dailyRecords(10, 50.0),
	}))

	forecast := predictor.ForecastMonth(context.Background(), time.Time{}, 0)

	if forecast.ModelType != ModelLinearTrend {
		t.Fatalf("ModelType = %s, want %s with 10 days of data", forecast.ModelType, ModelLinearTrend)
	}

	// A flat series projects flat with zero variance
	want := 50.0 * 30
	if math.Abs(forecast.PredictedCost-want) > 1e-6 {
		t.Errorf("PredictedCost = %v, want %v", forecast.PredictedCost, want)
	}
	if math.Abs(forecast.ConfidenceLow-want) > 1e-6 || math.Abs(forecast.ConfidenceHigh-want) > 1e-6 {
		t.Errorf("flat series should have a collapsed confidence band, got [%v, %v]",
			forecast.ConfidenceLow, forecast.ConfidenceHigh)
	}

	// Breakdowns scale to match the prediction
	total := 0.0
	for _, cost := range forecast.ByProvider {
		total += cost
	}
	if math.Abs(total-forecast.PredictedCost) > 1e-6 {
		t.Errorf("ByProvider sums to %v, want %v", total, forecast.PredictedCost)
	}
}

func TestForecastNeverNegative(t *testing.T) {
	// A steeply declining series would project below zero
	now := time.Now()
	var records []types.UsageRecord
	for i := 10; i > 0; i-- {
		day := now.AddDate(0, 0, -i)
		records = append(records, types.UsageRecord{
			InstanceID: "i-1", Provider: "stub", StartTime: day,
			EndTime: day.Add(24 * time.Hour), HoursUsed: 24,
			Cost:    float64(i) * 100, // falling toward zero
			GPUType: types.GPUA10040GB, GPUCount: 1,
			PricingType: types.PricingOnDemand, Region: "us-east-1",
		})
	}

	predictor := NewPredictor(aggregate.New(&stubConnector{name: "stub", records: records}))
	forecast := predictor.ForecastMonth(context.Background(), time.Now().AddDate(0, 2, 0), 0)

	if forecast.PredictedCost < 0 {
		t.Errorf("PredictedCost = %v, must not be negative", forecast.PredictedCost)
	}
	if forecast.ConfidenceLow < 0 {
		t.Errorf("ConfidenceLow = %v, must not be negative", forecast.ConfidenceLow)
	}
}

func TestLinearFit(t *testing.T) {
	slope, intercept := linearFit([]float64{1, 3, 5})
	if math.Abs(slope-2) > 1e-9 || math.Abs(intercept-1) > 1e-9 {
		t.Errorf("linearFit = (%v, %v), want (2, 1)", slope, intercept)
	}

	slope, intercept = linearFit([]float64{7})
	if slope != 0 || intercept != 7 {
		t.Errorf("single point fit = (%v, %v), want (0, 7)", slope, intercept)
	}
}

func TestPopulationStdDev(t *testing.T) {
	got := populationStdDev([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	if math.Abs(got-2) > 1e-9 {
		t.Errorf("populationStdDev = %v, want 2", got)
	}
	if populationStdDev(nil) != 0 {
		t.Error("empty series should have zero deviation")
	}
}

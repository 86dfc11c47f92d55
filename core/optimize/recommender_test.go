package optimize

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
}

func (s *stubConnector) ProviderName() string              { return s.name }
func (s *stubConnector) Connect(ctx context.Context) error { return nil }

func (s *stubConnector) ListGPUInstances(ctx context.Context) ([]types.GPUInstance, error) {
	return s.instances, nil
}

func (s *stubConnector) GetUsage(ctx context.Context, start, end time.Time) ([]types.UsageRecord, error) {
	return nil, nil
}

func (s *stubConnector) GetCurrentSpend(ctx context.Context) (float64, error) {
	return 0, nil
}

func newRecommender(instances ...types.GPUInstance) *Recommender {
	aggregator := aggregate.New(&stubConnector{name: "stub", instances: instances})
	return NewRecommender(aggregator, nil)
}

func TestGenerateRanksAndDedupes(t *testing.T) {
	// Idle and on-demand: the idle alert and the spot scan both target
	// this instance with a switch_to_spot variant; only one survives
	idle := types.GPUInstance{
		InstanceID: "idle-1", Provider: "aws", InstanceType: "p4d.24xlarge",
		GPUType: types.GPUA10040GB, GPUCount: 8, Region: "us-east-1",
		PricingType: types.PricingOnDemand, HourlyCost: 32.77,
		Status: "running", GPUUtilization: types.Float(2.0),
	}

	report := newRecommender(idle).Generate(context.Background())
	if len(report.Recommendations) == 0 {
		t.Fatal("expected recommendations")
	}

	// Priority order holds throughout, savings descending within a tier
	for i := 1; i < len(report.Recommendations); i++ {
		prev, cur := report.Recommendations[i-1], report.Recommendations[i]
		if prev.Priority.Rank() > cur.Priority.Rank() {
			t.Errorf("recommendations out of priority order at %d", i)
		}
		if prev.Priority == cur.Priority && prev.MonthlySavings < cur.MonthlySavings {
			t.Errorf("recommendations out of savings order at %d", i)
		}
	}

	// No duplicate (instance, type) pairs
	seen := make(map[string]bool)
	for _, rec := range report.Recommendations {
		key := rec.InstanceID + "|" + string(rec.Type)
		if seen[key] {
			t.Errorf("duplicate recommendation %s", key)
		}
		seen[key] = true
	}

	// A $32.77/hr idle instance wastes >$500/month: critical
	first := report.Recommendations[0]
	if first.Type != RecTerminateIdle || first.Priority != PriorityCritical {
		t.Errorf("first recommendation = %s/%s, want terminate_idle/critical", first.Type, first.Priority)
	}
}

func TestSpotOpportunityThreshold(t *testing.T) {
	// $0.05/hr on aws: 0.05*24*30*0.65 = $23.40/month, below the floor
	tiny := types.GPUInstance{
		InstanceID: "tiny-1", Provider: "aws", InstanceType: "small",
		GPUType: types.GPUT4, GPUCount: 1, PricingType: types.PricingOnDemand,
		HourlyCost: 0.05, Status: "running", GPUUtilization: types.Float(80.0),
	}

	recs := spotOpportunities([]types.GPUInstance{tiny})
	if len(recs) != 0 {
		t.Errorf("got %d spot recommendations for negligible savings, want 0", len(recs))
	}

	// $2/hr clears it easily
	worthwhile := tiny
	worthwhile.HourlyCost = 2.0
	recs = spotOpportunities([]types.GPUInstance{worthwhile})
	if len(recs) != 1 {
		t.Fatalf("got %d spot recommendations, want 1", len(recs))
	}
	want := 2.0 * 24 * 30 * 0.65
	if math.Abs(recs[0].MonthlySavings-want) > 1e-9 {
		t.Errorf("MonthlySavings = %v, want %v with the aws discount", recs[0].MonthlySavings, want)
	}
}

func TestProviderAlternativesPicksBestOnly(t *testing.T) {
	expensive := types.GPUInstance{
		InstanceID: "exp-1", Provider: "azure", InstanceType: "nc24ads",
		GPUType: types.GPUA10080GB, GPUCount: 1, PricingType: types.PricingOnDemand,
		HourlyCost: 3.67, Status: "running",
	}

	recs := providerAlternatives([]types.GPUInstance{expensive})
	if len(recs) != 1 {
		t.Fatalf("got %d provider recommendations, want exactly the best one", len(recs))
	}

	rec := recs[0]
	if rec.Type != RecChangeProvider || rec.Priority != PriorityLow || rec.Effort != "high" {
		t.Errorf("unexpected shape: %s/%s/%s", rec.Type, rec.Priority, rec.Effort)
	}
	// Lambda at $1.29 is the list's cheapest A100-80GB
	want := 3.67*24*30 - 1.29*24*30
	if math.Abs(rec.MonthlySavings-want) > 1e-9 {
		t.Errorf("MonthlySavings = %v, want %v", rec.MonthlySavings, want)
	}
}

func TestProviderAlternativesSkipsSameProvider(t *testing.T) {
	// Already on the cheapest listed provider
	onLambda := types.GPUInstance{
		InstanceID: "l-1", Provider: "lambda", InstanceType: "gpu_1x_a100_sxm4",
		GPUType: types.GPUA10080GB, GPUCount: 1, PricingType: types.PricingOnDemand,
		HourlyCost: 1.29, Status: "running",
	}

	for _, rec := range providerAlternatives([]types.GPUInstance{onLambda}) {
		if rec.Provider == "lambda" && rec.Title == "Move to lambda" {
			t.Error("should not recommend moving to the current provider")
		}
	}
}

func TestSchedulingOpportunities(t *testing.T) {
	dev := types.GPUInstance{
		InstanceID: "dev-1", Provider: "gcp", InstanceType: "a2-highgpu-1g",
		GPUType: types.GPUA10040GB, GPUCount: 1, PricingType: types.PricingOnDemand,
		HourlyCost: 2.93, Status: "running",
		Tags: map[string]string{"environment": "development"},
	}
	prod := dev
	prod.InstanceID = "prod-1"
	prod.Tags = map[string]string{"environment": "production"}

	recs := schedulingOpportunities([]types.GPUInstance{dev, prod})
	if len(recs) != 1 {
		t.Fatalf("got %d scheduling recommendations, want 1 (dev only)", len(recs))
	}
	if recs[0].InstanceID != "dev-1" {
		t.Errorf("recommendation targets %s, want dev-1", recs[0].InstanceID)
	}
	// Half the day off
	want := 2.93 * 12 * 30
	if math.Abs(recs[0].MonthlySavings-want) > 1e-9 {
		t.Errorf("MonthlySavings = %v, want %v", recs[0].MonthlySavings, want)
	}
	if recs[0].Effort != "low" {
		t.Errorf("Effort = %s, want low", recs[0].Effort)
	}
}

func TestQuickWins(t *testing.T) {
	idle := types.GPUInstance{
		InstanceID: "idle-1", Provider: "gcp", InstanceType: "a2-highgpu-1g",
		GPUType: types.GPUA10040GB, GPUCount: 1, PricingType: types.PricingOnDemand,
		HourlyCost: 2.93, Status: "running", GPUUtilization: types.Float(1.0),
	}

	wins := newRecommender(idle).QuickWins(context.Background(), 100)
	if len(wins) == 0 {
		t.Fatal("expected quick wins for an idle instance")
	}
	for _, rec := range wins {
		if rec.Effort != "low" {
			t.Errorf("quick win with effort %s", rec.Effort)
		}
		if rec.MonthlySavings < 100 {
			t.Errorf("quick win below the savings floor: %v", rec.MonthlySavings)
		}
	}
}

func TestReportDocumentSummary(t *testing.T) {
	idle := types.GPUInstance{
		InstanceID: "idle-1", Provider: "gcp", InstanceType: "a2-highgpu-1g",
		GPUType: types.GPUA10040GB, GPUCount: 1, PricingType: types.PricingOnDemand,
		HourlyCost: 2.93, Status: "running", GPUUtilization: types.Float(1.0),
	}

	report := newRecommender(idle).Generate(context.Background())
	doc := report.Document()

	summary, ok := doc["summary"].(map[string]interface{})
	if !ok {
		t.Fatalf("summary missing from document: %T", doc["summary"])
	}
	if summary["total_recommendations"] != len(report.Recommendations) {
		t.Errorf("total_recommendations = %v, want %d", summary["total_recommendations"], len(report.Recommendations))
	}
}

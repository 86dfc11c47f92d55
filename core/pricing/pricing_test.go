package pricing

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"

	"gpu-spend/core/types"
)

func TestPriceOnDemand(t *testing.T) {
	table := Default()

	got := table.Price("aws", "p4d.24xlarge", types.PricingOnDemand)
	if math.Abs(got-32.77) > 1e-9 {
		t.Errorf("aws p4d.24xlarge on-demand = %v, want 32.77", got)
	}
}

func TestPriceSpotDiscount(t *testing.T) {
	table := Default()

	onDemand := table.Price("aws", "p4d.24xlarge", types.PricingOnDemand)
	spot := table.Price("aws", "p4d.24xlarge", types.PricingSpot)

	if math.Abs(spot-onDemand*0.35) > 1e-9 {
		t.Errorf("spot price %v should be 35%% of on-demand %v", spot, onDemand)
	}
}

func TestPriceUnknown(t *testing.T) {
	table := Default()

	if got := table.Price("nonexistent", "p4d.24xlarge", types.PricingOnDemand); got != 0 {
		t.Errorf("unknown provider should price at 0, got %v", got)
	}
	if got := table.Price("aws", "no-such-type", types.PricingOnDemand); got != 0 {
		t.Errorf("unknown instance type should price at 0, got %v", got)
	}
}

func TestPriceRangedEntryUsesMidpoint(t *testing.T) {
	table := Default()

	entry, ok := table.Lookup("vastai", "rtx-4090")
	if !ok {
		t.Fatal("vastai rtx-4090 missing from catalog")
	}
	low, _ := entry.HourlyLow.Float64()
	high, _ := entry.HourlyHigh.Float64()

	got := table.Price("vastai", "rtx-4090", types.PricingOnDemand)
	want := (low + high) / 2
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("ranged entry should price at midpoint %v, got %v", want, got)
	}
}

func TestCheapestOption(t *testing.T) {
	table := Default()

	provider, instanceType, hourly, ok := table.CheapestOption(types.GPUA10040GB, 1)
	if !ok {
		t.Fatal("expected an A100-40GB offering")
	}
	// vast.ai's low marketplace bound of $1.00 undercuts everyone
	if provider != "vastai" {
		t.Errorf("cheapest A100-40GB provider = %s (%s), want vastai", provider, instanceType)
	}
	if math.Abs(hourly-1.00) > 1e-9 {
		t.Errorf("cheapest A100-40GB hourly = %v, want 1.00", hourly)
	}
}

func TestCheapestOptionUnknownGPU(t *testing.T) {
	table := Default()

	if _, _, _, ok := table.CheapestOption(types.GPUMI300X, 1); ok {
		t.Error("expected no offering for a GPU type absent from the catalog")
	}
}

func TestSetEntryOverrides(t *testing.T) {
	table := Default()
	table.SetEntry("lambda", "gpu_1x_a100", InstancePricing{
		GPUType: types.GPUA10040GB,
		GPUs:    1,
		Hourly:  decimal.NewFromFloat(0.99),
	})

	if got := table.Price("lambda", "gpu_1x_a100", types.PricingOnDemand); math.Abs(got-0.99) > 1e-9 {
		t.Errorf("override not applied, got %v", got)
	}
}

func TestRatesFor(t *testing.T) {
	rates := RatesFor(types.GPUA10040GB)
	if len(rates) == 0 {
		t.Fatal("expected per-provider rates for A100-40GB")
	}
	if math.Abs(rates["lambda"]-1.10) > 1e-9 {
		t.Errorf("lambda A100-40GB rate = %v, want 1.10", rates["lambda"])
	}

	// Mutating the returned map must not affect later calls
	rates["lambda"] = 0
	again := RatesFor(types.GPUA10040GB)
	if math.Abs(again["lambda"]-1.10) > 1e-9 {
		t.Error("RatesFor should return a fresh map each call")
	}
}

func TestSpotDiscount(t *testing.T) {
	if got := SpotDiscount("aws"); got != 0.65 {
		t.Errorf("aws spot discount = %v, want 0.65", got)
	}
	if got := SpotDiscount("gcp"); got != 0.70 {
		t.Errorf("gcp spot discount = %v, want 0.70", got)
	}
	if got := SpotDiscount("vastai"); got != DefaultSpotDiscount {
		t.Errorf("unlisted provider should get default discount, got %v", got)
	}
}

func TestPeakFLOPS(t *testing.T) {
	if got := PeakFLOPS(types.GPUH10080GB); got != 1979e12 {
		t.Errorf("H100 peak = %v, want 1979e12", got)
	}
	// Unknown hardware falls back to A100-class throughput
	if got := PeakFLOPS(types.GPUMI300X); got != A100PeakFLOPS {
		t.Errorf("unknown GPU peak = %v, want A100 fallback %v", got, A100PeakFLOPS)
	}
}

func TestInferenceThroughput(t *testing.T) {
	if got := InferenceThroughput(types.GPUH10080GB); got != 15000 {
		t.Errorf("H100 throughput = %v, want 15000", got)
	}
	if got := InferenceThroughput(types.GPUMI250X); got != DefaultInferenceThroughput {
		t.Errorf("unknown GPU throughput = %v, want default %v", got, DefaultInferenceThroughput)
	}
}

package connect

import (
	"context"
	"math"
	"testing"
	"time"

	"gpu-spend/core/types"
)

func demoWorkloads() []DemoWorkload {
	return []DemoWorkload{
		{
			Instance: types.GPUInstance{
				InstanceID: "demo-1", Provider: "demo", InstanceType: "big",
				GPUType: types.GPUA10040GB, GPUCount: 1, Region: "earth",
				PricingType: types.PricingOnDemand, HourlyCost: 2.0, Status: "running",
			},
			HoursPerDay: 24,
		},
		{
			Instance: types.GPUInstance{
				InstanceID: "demo-2", Provider: "demo", InstanceType: "small",
				GPUType: types.GPUT4, GPUCount: 1, Region: "earth",
				PricingType: types.PricingSpot, HourlyCost: 0.5, Status: "running",
			},
			HoursPerDay: 12,
		},
	}
}

func TestRegistryUnknownProvider(t *testing.T) {
	if _, ok := NewConnector("no-such-provider", Options{}); ok {
		t.Error("unknown provider should return ok=false")
	}
}

func TestRegistryRoundTrip(t *testing.T) {
	RegisterBuilder("test-registry-provider", func(opts Options) Connector {
		return &DemoConnector{Name: "test-registry-provider", APIKey: opts.APIKey}
	})

	conn, ok := NewConnector("test-registry-provider", Options{APIKey: "k"})
	if !ok {
		t.Fatal("registered provider not found")
	}
	if conn.ProviderName() != "test-registry-provider" {
		t.Errorf("ProviderName = %s", conn.ProviderName())
	}

	found := false
	for _, name := range Names() {
		if name == "test-registry-provider" {
			found = true
		}
	}
	if !found {
		t.Error("Names() should include the registered provider")
	}
}

func TestDemoUsageOneRecordPerInstancePerDay(t *testing.T) {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 5)

	records := DemoUsage(demoWorkloads(), start, end)

	// 2 workloads over 5 days
	if len(records) != 10 {
		t.Fatalf("got %d records, want 10", len(records))
	}

	total := SumCosts(records)
	want := (2.0*24 + 0.5*12) * 5
	if math.Abs(total-want) > 1e-9 {
		t.Errorf("SumCosts = %v, want %v", total, want)
	}
}

func TestDemoConnectorWithoutKeyStaysUsable(t *testing.T) {
	conn := &DemoConnector{Name: "demo", Workloads: demoWorkloads()}
	ctx := context.Background()

	// Connect reports demo mode as an error
	if err := conn.Connect(ctx); err == nil {
		t.Error("Connect without API key should report an error")
	}

	// Data calls still work
	instances, err := conn.ListGPUInstances(ctx)
	if err != nil || len(instances) != 2 {
		t.Errorf("ListGPUInstances = %d instances, err %v", len(instances), err)
	}

	spend, err := conn.GetCurrentSpend(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if spend < 0 {
		t.Errorf("GetCurrentSpend = %v", spend)
	}
}

func TestDemoConnectorWithKeyConnects(t *testing.T) {
	conn := &DemoConnector{Name: "demo", APIKey: "secret"}
	if err := conn.Connect(context.Background()); err != nil {
		t.Errorf("Connect with API key failed: %v", err)
	}
}

package types

import "testing"

func TestIsRunning(t *testing.T) {
	cases := []struct {
		status string
		want   bool
	}{
		{"running", true},
		{"RUNNING", true},
		{"active", true},
		{"Active", true},
		{"stopped", false},
		{"terminated", false},
		{"", false},
	}

	for _, tc := range cases {
		inst := GPUInstance{Status: tc.status}
		if got := inst.IsRunning(); got != tc.want {
			t.Errorf("IsRunning() with status %q = %v, want %v", tc.status, got, tc.want)
		}
	}
}

func TestIsIdle(t *testing.T) {
	running := GPUInstance{Status: "running", GPUUtilization: Float(3.0)}
	if !running.IsIdle() {
		t.Error("running instance at 3% utilization should be idle")
	}

	busy := GPUInstance{Status: "running", GPUUtilization: Float(85.0)}
	if busy.IsIdle() {
		t.Error("instance at 85% utilization should not be idle")
	}

	boundary := GPUInstance{Status: "running", GPUUtilization: Float(10.0)}
	if boundary.IsIdle() {
		t.Error("instance at exactly 10% utilization should not be idle")
	}

	// Absence of a reading is distinct from zero
	unknown := GPUInstance{Status: "running"}
	if unknown.IsIdle() {
		t.Error("instance without a utilization reading should not be idle")
	}

	stopped := GPUInstance{Status: "stopped", GPUUtilization: Float(0.0)}
	if stopped.IsIdle() {
		t.Error("stopped instance should not be idle")
	}
}

func TestParseGPUType(t *testing.T) {
	cases := []struct {
		input string
		want  GPUType
	}{
		{"a100-40gb", GPUA10040GB},
		{"A100-80GB", GPUA10080GB},
		{"  h100-80gb ", GPUH10080GB},
		{"h100", GPUH10080GB},
		{"a100", GPUA10040GB},
		{"rtx-4090", GPURTX4090},
		{"not-a-gpu", GPUUnknown},
		{"", GPUUnknown},
	}

	for _, tc := range cases {
		if got := ParseGPUType(tc.input); got != tc.want {
			t.Errorf("ParseGPUType(%q) = %v, want %v", tc.input, got, tc.want)
		}
	}
}

func TestParsePricingType(t *testing.T) {
	if got := ParsePricingType("spot"); got != PricingSpot {
		t.Errorf("ParsePricingType(spot) = %v", got)
	}
	if got := ParsePricingType("SPOT"); got != PricingSpot {
		t.Errorf("ParsePricingType(SPOT) = %v", got)
	}
	if got := ParsePricingType("something-else"); got != PricingOnDemand {
		t.Errorf("unknown pricing type should default to on-demand, got %v", got)
	}
}

func TestEffectiveHourlyRate(t *testing.T) {
	r := UsageRecord{Cost: 48.0, HoursUsed: 24.0}
	if got := r.EffectiveHourlyRate(); got != 2.0 {
		t.Errorf("EffectiveHourlyRate() = %v, want 2.0", got)
	}

	zero := UsageRecord{Cost: 10.0}
	if got := zero.EffectiveHourlyRate(); got != 0 {
		t.Errorf("EffectiveHourlyRate() with zero hours = %v, want 0", got)
	}
}

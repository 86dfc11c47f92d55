// Package waste detects inefficiency patterns on GPU instances.
// Each rule is a data record carrying a pure evaluate function over
// (instance, threshold), so the rule set can be unit tested rule by
// rule and swapped without touching the engine.
package waste

import (
	"fmt"
	"time"

	"gpu-spend/core/output"
	"gpu-spend/core/pricing"
	"gpu-spend/core/types"
)

// WasteType enumerates inefficiency patterns
type WasteType string

const (
	WasteIdleGPU            WasteType = "idle_gpu"
	WasteLowUtilization     WasteType = "low_utilization"
	WasteOversizedInstance  WasteType = "oversized_instance"
	WasteSpotOpportunity    WasteType = "spot_opportunity"
	WasteStoppedWithStorage WasteType = "stopped_with_storage"
	WasteWrongRegion        WasteType = "wrong_region"
	WasteRedundantInstance  WasteType = "redundant_instance"
	WasteLongRunningSpot    WasteType = "long_running_spot"
)

// Severity grades how urgent an alert is
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// severityRank orders severities for sorting, most urgent first
var severityRank = map[Severity]int{
	SeverityCritical: 0,
	SeverityHigh:     1,
	SeverityMedium:   2,
	SeverityLow:      3,
}

// Rank returns the sort rank of a severity
func (s Severity) Rank() int {
	if r, ok := severityRank[s]; ok {
		return r
	}
	return len(severityRank)
}

// Alert flags one inefficiency on one instance with its estimated
// daily cost impact. Alerts are produced fresh per analysis call.
type Alert struct {
	WasteType            WasteType          `json:"waste_type"`
	Severity             Severity           `json:"severity"`
	Instance             types.GPUInstance  `json:"instance"`
	Message              string             `json:"message"`
	EstimatedWastePerDay float64            `json:"estimated_waste_per_day"`
	Recommendation       string             `json:"recommendation"`
	DetectedAt           time.Time          `json:"detected_at"`
}

// MonthlyWaste projects the daily waste to 30 days
func (a *Alert) MonthlyWaste() float64 {
	return a.EstimatedWastePerDay * 30
}

// Document flattens the alert for transport
func (a *Alert) Document() output.Document {
	return output.Document{
		"type":            string(a.WasteType),
		"severity":        string(a.Severity),
		"instance_id":     a.Instance.InstanceID,
		"provider":        a.Instance.Provider,
		"gpu_type":        string(a.Instance.GPUType),
		"message":         a.Message,
		"waste_per_day":   output.Currency(a.EstimatedWastePerDay),
		"waste_per_month": output.Currency(a.MonthlyWaste()),
		"recommendation":  a.Recommendation,
		"detected_at":     a.DetectedAt.Format(time.RFC3339),
	}
}

// EvaluateFunc inspects one instance against a threshold and returns
// an alert or nil. Implementations must be pure.
type EvaluateFunc func(instance *types.GPUInstance, threshold float64) (*Alert, error)

// Rule is one waste detection strategy
type Rule struct {
	Type        WasteType
	Name        string
	Description string
	Threshold   float64
	Enabled     bool
	Evaluate    EvaluateFunc
}

// DefaultRules returns the built-in rule set
func DefaultRules() []Rule {
	return []Rule{
		{
			Type:        WasteIdleGPU,
			Name:        "Idle GPU Detection",
			Description: "Detect GPUs with near-zero utilization",
			Threshold:   5.0,
			Enabled:     true,
			Evaluate:    evaluateIdleGPU,
		},
		{
			Type:        WasteLowUtilization,
			Name:        "Low Utilization Detection",
			Description: "Detect GPUs with low but non-zero utilization",
			Threshold:   30.0,
			Enabled:     true,
			Evaluate:    evaluateLowUtilization,
		},
		{
			Type:        WasteSpotOpportunity,
			Name:        "Spot Pricing Opportunity",
			Description: "Detect on-demand instances suitable for spot pricing",
			Threshold:   0.6,
			Enabled:     true,
			Evaluate:    evaluateSpotOpportunity,
		},
		{
			Type:        WasteOversizedInstance,
			Name:        "Oversized Instance Detection",
			Description: "Detect instances where GPU memory utilization is very low",
			Threshold:   30.0,
			Enabled:     true,
			Evaluate:    evaluateOversized,
		},
	}
}

func evaluateIdleGPU(instance *types.GPUInstance, threshold float64) (*Alert, error) {
	if !instance.IsRunning() || instance.GPUUtilization == nil {
		return nil, nil
	}
	if *instance.GPUUtilization >= threshold {
		return nil, nil
	}

	wastePerDay := instance.HourlyCost * 24

	severity := SeverityMedium
	if instance.HourlyCost > 5 {
		severity = SeverityHigh
	}

	return &Alert{
		WasteType: WasteIdleGPU,
		Severity:  severity,
		Instance:  *instance,
		Message: fmt.Sprintf("GPU utilization is only %.1f%% (threshold: %g%%)",
			*instance.GPUUtilization, threshold),
		EstimatedWastePerDay: wastePerDay,
		Recommendation: fmt.Sprintf(
			"Consider stopping this instance. Estimated savings: $%.2f/month", wastePerDay*30),
		DetectedAt: time.Now(),
	}, nil
}

func evaluateLowUtilization(instance *types.GPUInstance, threshold float64) (*Alert, error) {
	if !instance.IsRunning() || instance.GPUUtilization == nil {
		return nil, nil
	}

	// The band starts where the idle rule ends
	utilization := *instance.GPUUtilization
	if utilization < 5.0 || utilization >= threshold {
		return nil, nil
	}

	// Charge half the unused capacity; partial use means the instance
	// is doing real work, unlike the idle case which charges in full
	wasteRatio := 1 - utilization/100
	wastePerDay := instance.HourlyCost * 24 * wasteRatio * 0.5

	return &Alert{
		WasteType:            WasteLowUtilization,
		Severity:             SeverityMedium,
		Instance:             *instance,
		Message:              fmt.Sprintf("GPU utilization is only %.1f%%", utilization),
		EstimatedWastePerDay: wastePerDay,
		Recommendation:       "Consider batching workloads or downsizing to a smaller instance",
		DetectedAt:           time.Now(),
	}, nil
}

func evaluateSpotOpportunity(instance *types.GPUInstance, threshold float64) (*Alert, error) {
	if !instance.IsRunning() || instance.PricingType != types.PricingOnDemand {
		return nil, nil
	}

	// Very expensive instances are likely critical workloads
	if instance.HourlyCost > 50 {
		return nil, nil
	}

	savingsPerDay := instance.HourlyCost * 24 * threshold

	return &Alert{
		WasteType: WasteSpotOpportunity,
		Severity:  SeverityLow,
		Instance:  *instance,
		Message: fmt.Sprintf("Running on-demand at $%.2f/hr. Spot could save ~%.0f%%",
			instance.HourlyCost, threshold*100),
		EstimatedWastePerDay: savingsPerDay,
		Recommendation: fmt.Sprintf(
			"Switch to spot/preemptible pricing. Potential savings: $%.2f/month", savingsPerDay*30),
		DetectedAt: time.Now(),
	}, nil
}

func evaluateOversized(instance *types.GPUInstance, threshold float64) (*Alert, error) {
	if !instance.IsRunning() || instance.MemoryUtilization == nil {
		return nil, nil
	}
	if *instance.MemoryUtilization >= threshold {
		return nil, nil
	}

	// No alert without a sensible downgrade target
	target, ok := pricing.DowngradeTargets[instance.GPUType]
	if !ok {
		return nil, nil
	}

	wastePerDay := instance.HourlyCost * 24 * 0.3

	return &Alert{
		WasteType: WasteOversizedInstance,
		Severity:  SeverityMedium,
		Instance:  *instance,
		Message: fmt.Sprintf("GPU memory utilization is only %.1f%%",
			*instance.MemoryUtilization),
		EstimatedWastePerDay: wastePerDay,
		Recommendation: fmt.Sprintf(
			"Consider downgrading to %s for ~30%% cost savings", target),
		DetectedAt: time.Now(),
	}, nil
}

// Package types defines the shared data model for GPU spend analysis.
// Instances and usage records are value objects: every query returns
// freshly built snapshots, nothing is shared or mutated across calls.
package types

import (
	"strings"
	"time"
)

// GPUType is a normalized GPU model identifier, shared across providers
type GPUType string

const (
	// NVIDIA datacenter
	GPUA10040GB GPUType = "a100-40gb"
	GPUA10080GB GPUType = "a100-80gb"
	GPUH10080GB GPUType = "h100-80gb"
	GPUH100SXM  GPUType = "h100-sxm"
	GPUV10016GB GPUType = "v100-16gb"
	GPUV10032GB GPUType = "v100-32gb"
	GPUA10G     GPUType = "a10g"
	GPUL4       GPUType = "l4"
	GPUL40S     GPUType = "l40s"
	GPUT4       GPUType = "t4"

	// NVIDIA consumer/prosumer
	GPURTX4090 GPUType = "rtx-4090"
	GPURTX4080 GPUType = "rtx-4080"
	GPURTX3090 GPUType = "rtx-3090"
	GPURTX3080 GPUType = "rtx-3080"

	// AMD
	GPUMI250X GPUType = "mi250x"
	GPUMI300X GPUType = "mi300x"

	GPUUnknown GPUType = "unknown"
)

// AllGPUTypes lists every known GPU type
func AllGPUTypes() []GPUType {
	return []GPUType{
		GPUA10040GB, GPUA10080GB, GPUH10080GB, GPUH100SXM,
		GPUV10016GB, GPUV10032GB, GPUA10G, GPUL4, GPUL40S, GPUT4,
		GPURTX4090, GPURTX4080, GPURTX3090, GPURTX3080,
		GPUMI250X, GPUMI300X,
	}
}

// gpuAliases maps common shorthand names to canonical types
var gpuAliases = map[string]GPUType{
	"a100": GPUA10040GB,
	"h100": GPUH10080GB,
	"v100": GPUV10016GB,
	"4090": GPURTX4090,
	"3090": GPURTX3090,
}

// ParseGPUType maps a string to a known GPU type.
// Unknown strings resolve to GPUUnknown rather than failing.
func ParseGPUType(s string) GPUType {
	normalized := strings.ToLower(strings.TrimSpace(s))
	if alias, ok := gpuAliases[normalized]; ok {
		return alias
	}
	for _, t := range AllGPUTypes() {
		if t == GPUType(normalized) {
			return t
		}
	}
	return GPUUnknown
}

// PricingType is the pricing model an instance is billed under
type PricingType string

const (
	PricingOnDemand    PricingType = "on-demand"
	PricingSpot        PricingType = "spot"
	PricingReserved    PricingType = "reserved"
	PricingPreemptible PricingType = "preemptible"
)

// ParsePricingType maps a string to a pricing type, defaulting to on-demand
func ParsePricingType(s string) PricingType {
	switch PricingType(strings.ToLower(strings.TrimSpace(s))) {
	case PricingSpot:
		return PricingSpot
	case PricingReserved:
		return PricingReserved
	case PricingPreemptible:
		return PricingPreemptible
	default:
		return PricingOnDemand
	}
}

// GPUInstance is a point-in-time snapshot of a GPU instance on any provider.
// Utilization fields are nil when the provider exposes no measurement;
// absence is distinct from zero.
type GPUInstance struct {
	InstanceID   string      `json:"instance_id"`
	Provider     string      `json:"provider"`
	InstanceType string      `json:"instance_type"`
	GPUType      GPUType     `json:"gpu_type"`
	GPUCount     int         `json:"gpu_count"`
	Region       string      `json:"region"`
	PricingType  PricingType `json:"pricing_type"`
	HourlyCost   float64     `json:"hourly_cost"`

	// Status is the provider's free-form lifecycle string
	// (running, active, stopped, exited, terminated, ...)
	Status string `json:"status"`

	LaunchedAt *time.Time        `json:"launched_at,omitempty"`
	Tags       map[string]string `json:"tags,omitempty"`

	// Utilization metrics, 0-100, nil if unmeasured
	GPUUtilization    *float64 `json:"gpu_utilization,omitempty"`
	MemoryUtilization *float64 `json:"memory_utilization,omitempty"`
}

// IsRunning reports whether the status is an affirmative running state
func (i *GPUInstance) IsRunning() bool {
	switch strings.ToLower(i.Status) {
	case "running", "active":
		return true
	}
	return false
}

// IsIdle reports whether a running instance has measured utilization below 10%.
// Stopped instances and instances without a utilization reading are never idle.
func (i *GPUInstance) IsIdle() bool {
	if !i.IsRunning() {
		return false
	}
	if i.GPUUtilization == nil {
		return false
	}
	return *i.GPUUtilization < 10.0
}

// UsageRecord is a cost and usage observation over [StartTime, EndTime)
type UsageRecord struct {
	InstanceID  string      `json:"instance_id"`
	Provider    string      `json:"provider"`
	StartTime   time.Time   `json:"start_time"`
	EndTime     time.Time   `json:"end_time"`
	HoursUsed   float64     `json:"hours_used"`
	Cost        float64     `json:"cost"`
	GPUType     GPUType     `json:"gpu_type"`
	GPUCount    int         `json:"gpu_count"`
	PricingType PricingType `json:"pricing_type"`
	Region      string      `json:"region"`
}

// EffectiveHourlyRate is cost divided by hours used, 0 when no hours
func (r *UsageRecord) EffectiveHourlyRate() float64 {
	if r.HoursUsed > 0 {
		return r.Cost / r.HoursUsed
	}
	return 0
}

// Float is a convenience for building optional utilization readings
func Float(v float64) *float64 {
	return &v
}

// Package pricing holds reference pricing knowledge: per-provider GPU
// instance catalogs, per-GPU hourly rates, and hardware constants used
// by the estimators.
//
// Prices are reference approximations, not billing-grade. The default
// table carries a version stamp and callers may substitute their own
// table, so pricing knowledge stays replaceable input rather than a
// constant baked into the analysis logic.
package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"

	"gpu-spend/core/output"
	"gpu-spend/core/types"
)

// InstancePricing describes one instance type in a provider catalog
type InstancePricing struct {
	GPUType types.GPUType
	GPUs    int

	// Hourly is the flat on-demand rate, zero when the catalog entry
	// is range- or tier-priced instead
	Hourly decimal.Decimal

	// HourlyLow/HourlyHigh bound marketplace offers (vast.ai style)
	HourlyLow  decimal.Decimal
	HourlyHigh decimal.Decimal

	// Community/Secure are tiered marketplace rates (runpod style)
	Community decimal.Decimal
	Secure    decimal.Decimal
}

// RateTable is a versioned snapshot of reference pricing data
type RateTable struct {
	// Version identifies the table revision
	Version string

	// AsOf documents when the reference prices were captured
	AsOf string

	catalog map[string]map[string]InstancePricing
}

// spot pricing runs at roughly a 65% discount to on-demand
var spotMultiplier = decimal.NewFromFloat(0.35)

// Price returns the hourly rate for an instance type under a pricing
// model. Unknown providers or instance types price at 0.
func (t *RateTable) Price(provider, instanceType string, pricingType types.PricingType) float64 {
	providerCatalog, ok := t.catalog[normalize(provider)]
	if !ok {
		return 0
	}
	entry, ok := providerCatalog[normalize(instanceType)]
	if !ok {
		return 0
	}

	base := entry.baseRate(pricingType)
	if pricingType == types.PricingSpot || pricingType == types.PricingPreemptible {
		base = base.Mul(spotMultiplier)
	}
	f, _ := base.Float64()
	return f
}

// baseRate picks the right rate field for the catalog entry shape
func (e InstancePricing) baseRate(pricingType types.PricingType) decimal.Decimal {
	if !e.Hourly.IsZero() {
		return e.Hourly
	}
	if !e.HourlyLow.IsZero() || !e.HourlyHigh.IsZero() {
		// Midpoint for marketplace ranges
		return e.HourlyLow.Add(e.HourlyHigh).Div(decimal.NewFromInt(2))
	}
	if !e.Secure.IsZero() && pricingType == types.PricingReserved {
		return e.Secure
	}
	return e.Community
}

// Lookup returns the catalog entry for an instance type
func (t *RateTable) Lookup(provider, instanceType string) (InstancePricing, bool) {
	providerCatalog, ok := t.catalog[normalize(provider)]
	if !ok {
		return InstancePricing{}, false
	}
	entry, ok := providerCatalog[normalize(instanceType)]
	return entry, ok
}

// Providers returns all providers present in the table
func (t *RateTable) Providers() []string {
	providers := make([]string, 0, len(t.catalog))
	for p := range t.catalog {
		providers = append(providers, p)
	}
	return providers
}

// CheapestOption finds the lowest-rate catalog entry offering the GPU
// type with at least gpuCount GPUs. Marketplace ranges compare at the
// low end. Returns ok=false when no provider carries the GPU type.
func (t *RateTable) CheapestOption(gpuType types.GPUType, gpuCount int) (provider, instanceType string, hourly float64, ok bool) {
	best := decimal.Decimal{}
	for p, providerCatalog := range t.catalog {
		for it, entry := range providerCatalog {
			if entry.GPUType != gpuType || entry.GPUs < gpuCount {
				continue
			}
			rate := entry.Hourly
			if rate.IsZero() {
				rate = entry.HourlyLow
			}
			if rate.IsZero() {
				rate = entry.Community
			}
			if rate.IsZero() {
				continue
			}
			if !ok || rate.LessThan(best) {
				best = rate
				provider, instanceType, ok = p, it, true
			}
		}
	}
	if ok {
		hourly, _ = best.Float64()
	}
	return provider, instanceType, hourly, ok
}

// Document exports the full table as nested documents, shaped by each
// entry's pricing model
func (t *RateTable) Document() output.Document {
	providers := make(output.Document, len(t.catalog))
	for provider, providerCatalog := range t.catalog {
		entries := make(output.Document, len(providerCatalog))
		for instanceType, entry := range providerCatalog {
			entries[instanceType] = entry.Document()
		}
		providers[provider] = entries
	}

	return output.Document{
		"version":      t.Version,
		"last_updated": t.AsOf,
		"note":         "Prices are approximate and vary by region/availability",
		"providers":    providers,
	}
}

// Document exports one catalog entry
func (e InstancePricing) Document() output.Document {
	doc := output.Document{
		"gpu_type": string(e.GPUType),
		"gpus":     e.GPUs,
	}
	switch {
	case !e.Hourly.IsZero():
		doc["hourly"], _ = e.Hourly.Float64()
	case !e.HourlyLow.IsZero() || !e.HourlyHigh.IsZero():
		doc["hourly_range"] = fmt.Sprintf("%s-%s", e.HourlyLow.String(), e.HourlyHigh.String())
	default:
		doc["community"], _ = e.Community.Float64()
		doc["secure"], _ = e.Secure.Float64()
	}
	return doc
}

// SetEntry replaces or adds a catalog entry, used by configuration
// overrides
func (t *RateTable) SetEntry(provider, instanceType string, entry InstancePricing) {
	p := normalize(provider)
	if t.catalog[p] == nil {
		t.catalog[p] = make(map[string]InstancePricing)
	}
	t.catalog[p][normalize(instanceType)] = entry
}

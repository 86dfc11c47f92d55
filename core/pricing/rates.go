package pricing

import (
	"github.com/shopspring/decimal"

	"gpu-spend/core/types"
)

// GPURates maps GPU type to per-GPU hourly rates by provider.
// Used by the estimators to compare a run across providers.
var GPURates = map[types.GPUType]map[string]decimal.Decimal{
	types.GPUA10040GB: {
		"aws":    decimal.NewFromFloat(32.77).Div(decimal.NewFromInt(8)), // p4d per GPU
		"gcp":    decimal.NewFromFloat(2.93),
		"azure":  decimal.NewFromFloat(3.67),
		"vastai": decimal.NewFromFloat(1.20),
		"runpod": decimal.NewFromFloat(1.19),
		"lambda": decimal.NewFromFloat(1.10),
	},
	types.GPUA10080GB: {
		"aws":    decimal.NewFromFloat(40.97).Div(decimal.NewFromInt(8)),
		"gcp":    decimal.NewFromFloat(3.67),
		"azure":  decimal.NewFromFloat(3.67),
		"vastai": decimal.NewFromFloat(1.50),
		"runpod": decimal.NewFromFloat(1.49),
		"lambda": decimal.NewFromFloat(1.29),
	},
	types.GPUH10080GB: {
		"aws":    decimal.NewFromFloat(98.32).Div(decimal.NewFromInt(8)),
		"gcp":    decimal.NewFromFloat(10.80),
		"azure":  decimal.NewFromFloat(98.32).Div(decimal.NewFromInt(8)),
		"vastai": decimal.NewFromFloat(2.50),
		"runpod": decimal.NewFromFloat(2.39),
		"lambda": decimal.NewFromFloat(1.99),
	},
	types.GPURTX4090: {
		"vastai": decimal.NewFromFloat(0.45),
		"runpod": decimal.NewFromFloat(0.44),
	},
	types.GPUT4: {
		"aws":   decimal.NewFromFloat(0.526),
		"gcp":   decimal.NewFromFloat(0.35),
		"azure": decimal.NewFromFloat(0.526),
	},
}

// RatesFor returns per-provider hourly rates for a GPU type as floats.
// The map is freshly built on every call.
func RatesFor(gpuType types.GPUType) map[string]float64 {
	rates := make(map[string]float64)
	for provider, rate := range GPURates[gpuType] {
		f, _ := rate.Float64()
		rates[provider] = f
	}
	return rates
}

// SpotDiscounts is the typical spot discount fraction by provider
var SpotDiscounts = map[string]float64{
	"aws":   0.65,
	"gcp":   0.70,
	"azure": 0.60,
}

// DefaultSpotDiscount applies when a provider has no published estimate
const DefaultSpotDiscount = 0.5

// SpotDiscount returns the spot discount fraction for a provider
func SpotDiscount(provider string) float64 {
	if d, ok := SpotDiscounts[normalize(provider)]; ok {
		return d
	}
	return DefaultSpotDiscount
}

// Alternative is a cheaper provider offering for a GPU type
type Alternative struct {
	Provider string
	GPUType  types.GPUType
	Hourly   float64
}

// CheaperAlternatives lists marketplace offerings that commonly
// undercut the big clouds, cheapest first
var CheaperAlternatives = map[types.GPUType][]Alternative{
	types.GPUA10080GB: {
		{Provider: "lambda", GPUType: types.GPUA10080GB, Hourly: 1.29},
		{Provider: "runpod", GPUType: types.GPUA10080GB, Hourly: 1.49},
		{Provider: "vastai", GPUType: types.GPUA10080GB, Hourly: 1.50},
	},
	types.GPUH10080GB: {
		{Provider: "lambda", GPUType: types.GPUH10080GB, Hourly: 1.99},
		{Provider: "runpod", GPUType: types.GPUH10080GB, Hourly: 2.39},
		{Provider: "vastai", GPUType: types.GPUH10080GB, Hourly: 2.50},
	},
	types.GPURTX4090: {
		{Provider: "runpod", GPUType: types.GPURTX4090, Hourly: 0.44},
		{Provider: "vastai", GPUType: types.GPURTX4090, Hourly: 0.45},
	},
}

// DowngradeTargets maps oversized GPU types to the next size down.
// GPU types without an entry have no sensible downgrade.
var DowngradeTargets = map[types.GPUType]types.GPUType{
	types.GPUA10080GB: types.GPUA10040GB,
	types.GPUH10080GB: types.GPUA10080GB,
	types.GPURTX4090:  types.GPURTX4080,
}

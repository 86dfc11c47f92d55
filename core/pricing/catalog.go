package pricing

import (
	"strings"

	"github.com/shopspring/decimal"

	"gpu-spend/core/types"
)

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func hourly(gpuType types.GPUType, gpus int, rate float64) InstancePricing {
	return InstancePricing{GPUType: gpuType, GPUs: gpus, Hourly: decimal.NewFromFloat(rate)}
}

func ranged(gpuType types.GPUType, gpus int, low, high float64) InstancePricing {
	return InstancePricing{
		GPUType:    gpuType,
		GPUs:       gpus,
		HourlyLow:  decimal.NewFromFloat(low),
		HourlyHigh: decimal.NewFromFloat(high),
	}
}

func tiered(gpuType types.GPUType, gpus int, community, secure float64) InstancePricing {
	return InstancePricing{
		GPUType:   gpuType,
		GPUs:      gpus,
		Community: decimal.NewFromFloat(community),
		Secure:    decimal.NewFromFloat(secure),
	}
}

// Default returns the built-in reference rate table.
// Rates are approximate on-demand list prices and vary by region.
func Default() *RateTable {
	return &RateTable{
		Version: "2025.01",
		AsOf:    "2025-01-15",
		catalog: map[string]map[string]InstancePricing{
			"aws": {
				// P5 (H100)
				"p5.48xlarge": hourly(types.GPUH10080GB, 8, 98.32),
				// P4 (A100)
				"p4d.24xlarge":  hourly(types.GPUA10040GB, 8, 32.77),
				"p4de.24xlarge": hourly(types.GPUA10080GB, 8, 40.97),
				// P3 (V100)
				"p3.2xlarge":  hourly(types.GPUV10016GB, 1, 3.06),
				"p3.8xlarge":  hourly(types.GPUV10016GB, 4, 12.24),
				"p3.16xlarge": hourly(types.GPUV10016GB, 8, 24.48),
				// G5 (A10G)
				"g5.xlarge":    hourly(types.GPUA10G, 1, 1.006),
				"g5.2xlarge":   hourly(types.GPUA10G, 1, 1.212),
				"g5.4xlarge":   hourly(types.GPUA10G, 1, 1.624),
				"g5.12xlarge":  hourly(types.GPUA10G, 4, 5.672),
				"g5.48xlarge":  hourly(types.GPUA10G, 8, 16.288),
				// G4 (T4)
				"g4dn.xlarge":   hourly(types.GPUT4, 1, 0.526),
				"g4dn.2xlarge":  hourly(types.GPUT4, 1, 0.752),
				"g4dn.12xlarge": hourly(types.GPUT4, 4, 3.912),
			},
			"gcp": {
				"nvidia-tesla-a100": hourly(types.GPUA10040GB, 1, 2.93),
				"nvidia-a100-80gb":  hourly(types.GPUA10080GB, 1, 3.67),
				"nvidia-h100-80gb":  hourly(types.GPUH10080GB, 1, 10.80),
				"nvidia-tesla-v100": hourly(types.GPUV10016GB, 1, 2.48),
				"nvidia-l4":         hourly(types.GPUL4, 1, 0.81),
				"nvidia-tesla-t4":   hourly(types.GPUT4, 1, 0.35),
			},
			"azure": {
				"standard_nc24ads_a100_v4": hourly(types.GPUA10080GB, 1, 3.67),
				"standard_nc48ads_a100_v4": hourly(types.GPUA10080GB, 2, 7.35),
				"standard_nd96asr_v4":      hourly(types.GPUA10040GB, 8, 27.20),
				"standard_nc8as_t4_v3":     hourly(types.GPUT4, 1, 0.752),
				"standard_nc16as_t4_v3":    hourly(types.GPUT4, 1, 1.204),
			},
			"vastai": {
				// Marketplace offers vary; these bound typical rates
				"rtx-4090":  ranged(types.GPURTX4090, 1, 0.40, 0.60),
				"rtx-3090":  ranged(types.GPURTX3090, 1, 0.20, 0.35),
				"a100-40gb": ranged(types.GPUA10040GB, 1, 1.00, 1.50),
				"a100-80gb": ranged(types.GPUA10080GB, 1, 1.30, 1.80),
				"h100":      ranged(types.GPUH10080GB, 1, 2.00, 3.00),
			},
			"runpod": {
				"rtx-4090":  tiered(types.GPURTX4090, 1, 0.44, 0.74),
				"rtx-3090":  tiered(types.GPURTX3090, 1, 0.22, 0.44),
				"a100-80gb": tiered(types.GPUA10080GB, 1, 1.19, 1.89),
				"h100":      tiered(types.GPUH10080GB, 1, 2.39, 3.89),
			},
			"lambda": {
				"gpu_1x_a100":      hourly(types.GPUA10040GB, 1, 1.10),
				"gpu_1x_a100_sxm4": hourly(types.GPUA10080GB, 1, 1.29),
				"gpu_8x_a100":      hourly(types.GPUA10040GB, 8, 8.80),
				"gpu_1x_h100_pcie": hourly(types.GPUH10080GB, 1, 1.99),
				"gpu_8x_h100_sxm5": hourly(types.GPUH100SXM, 8, 23.92),
			},
		},
	}
}

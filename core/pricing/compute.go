package pricing

import (
	"gpu-spend/core/types"
)

// A100PeakFLOPS is the FP16 peak of an A100, used as the fallback for
// GPU types without a published figure. A conservative floor, not a
// guess at the actual hardware.
const A100PeakFLOPS = 312e12

// peakFLOPS is FP16 peak throughput per GPU
var peakFLOPS = map[types.GPUType]float64{
	types.GPUA10040GB: 312e12,
	types.GPUA10080GB: 312e12,
	types.GPUH10080GB: 1979e12,
	types.GPUH100SXM:  1979e12,
	types.GPURTX4090:  82.6e12,
}

// PeakFLOPS returns the FP16 peak for a GPU type, falling back to the
// A100 figure for unlisted hardware
func PeakFLOPS(gpuType types.GPUType) float64 {
	if f, ok := peakFLOPS[gpuType]; ok {
		return f
	}
	return A100PeakFLOPS
}

// DefaultInferenceThroughput applies to GPU types without a benchmark
const DefaultInferenceThroughput = 3000

// inferenceThroughput is rough decode throughput in tokens per second
var inferenceThroughput = map[types.GPUType]float64{
	types.GPUA10040GB: 5000,
	types.GPUA10080GB: 6000,
	types.GPUH10080GB: 15000,
	types.GPUT4:       1000,
	types.GPURTX4090:  3000,
}

// InferenceThroughput returns tokens-per-second serving throughput for
// a GPU type
func InferenceThroughput(gpuType types.GPUType) float64 {
	if t, ok := inferenceThroughput[gpuType]; ok {
		return t
	}
	return DefaultInferenceThroughput
}

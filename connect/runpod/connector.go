// Package runpod provides the RunPod connector.
package runpod

import (
	"gpu-spend/connect"
	"gpu-spend/core/types"
)

func init() {
	connect.RegisterBuilder("runpod", func(opts connect.Options) connect.Connector {
		return New(opts)
	})
}

// Connector is the RunPod adapter
type Connector struct {
	connect.DemoConnector
}

// New creates a RunPod connector
func New(opts connect.Options) *Connector {
	return &Connector{
		DemoConnector: connect.DemoConnector{
			Name:      "runpod",
			APIKey:    opts.APIKey,
			Workloads: demoWorkloads,
		},
	}
}

var demoWorkloads = []connect.DemoWorkload{
	{
		Instance: types.GPUInstance{
			InstanceID:     "runpod-demo-1",
			Provider:       "runpod",
			InstanceType:   "NVIDIA RTX 4090",
			GPUType:        types.GPURTX4090,
			GPUCount:       1,
			Region:         "runpod-cloud",
			PricingType:    types.PricingOnDemand,
			HourlyCost:     0.44,
			Status:         "running",
			GPUUtilization: types.Float(85.0),
		},
		HoursPerDay: 20,
	},
	{
		Instance: types.GPUInstance{
			InstanceID:     "runpod-demo-2",
			Provider:       "runpod",
			InstanceType:   "NVIDIA A100 80GB PCIe",
			GPUType:        types.GPUA10080GB,
			GPUCount:       1,
			Region:         "runpod-cloud",
			PricingType:    types.PricingOnDemand,
			HourlyCost:     1.19,
			Status:         "running",
			GPUUtilization: types.Float(8.0),
		},
		HoursPerDay: 24,
	},
}

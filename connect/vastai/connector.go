// Package vastai provides the Vast.ai marketplace connector.
package vastai

import (
	"gpu-spend/connect"
	"gpu-spend/core/types"
)

func init() {
	connect.RegisterBuilder("vastai", func(opts connect.Options) connect.Connector {
		return New(opts)
	})
}

// Connector is the Vast.ai marketplace adapter. Marketplace rentals
// bill at interruptible rates, so everything reports as spot pricing.
type Connector struct {
	connect.DemoConnector
}

// New creates a Vast.ai connector
func New(opts connect.Options) *Connector {
	return &Connector{
		DemoConnector: connect.DemoConnector{
			Name:      "vastai",
			APIKey:    opts.APIKey,
			Workloads: demoWorkloads,
		},
	}
}

var demoWorkloads = []connect.DemoWorkload{
	{
		Instance: types.GPUInstance{
			InstanceID:     "vast-demo-1",
			Provider:       "vastai",
			InstanceType:   "RTX 4090",
			GPUType:        types.GPURTX4090,
			GPUCount:       1,
			Region:         "US-West",
			PricingType:    types.PricingSpot,
			HourlyCost:     0.45,
			Status:         "running",
			GPUUtilization: types.Float(92.0),
		},
		HoursPerDay: 18,
	},
	{
		Instance: types.GPUInstance{
			InstanceID:     "vast-demo-2",
			Provider:       "vastai",
			InstanceType:   "A100 PCIe",
			GPUType:        types.GPUA10040GB,
			GPUCount:       1,
			Region:         "EU-West",
			PricingType:    types.PricingSpot,
			HourlyCost:     1.20,
			Status:         "running",
			GPUUtilization: types.Float(3.0),
		},
		HoursPerDay: 24,
	},
}

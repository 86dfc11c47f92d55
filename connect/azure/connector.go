// Package azure provides the Azure connector.
package azure

import (
	"gpu-spend/connect"
	"gpu-spend/core/types"
)

func init() {
	connect.RegisterBuilder("azure", func(opts connect.Options) connect.Connector {
		return New(opts)
	})
}

// Connector is the Azure provider adapter. It serves the demo dataset;
// live Compute/Cost Management support plugs in behind the same contract.
type Connector struct {
	connect.DemoConnector
}

// New creates an Azure connector
func New(opts connect.Options) *Connector {
	return &Connector{
		DemoConnector: connect.DemoConnector{
			Name:      "azure",
			APIKey:    opts.APIKey,
			Workloads: demoWorkloads,
		},
	}
}

var demoWorkloads = []connect.DemoWorkload{
	{
		Instance: types.GPUInstance{
			InstanceID:     "azure-demo-1",
			Provider:       "azure",
			InstanceType:   "Standard_NC8as_T4_v3",
			GPUType:        types.GPUT4,
			GPUCount:       1,
			Region:         "eastus",
			PricingType:    types.PricingOnDemand,
			HourlyCost:     0.752,
			Status:         "running",
			GPUUtilization: types.Float(78.0),
		},
		HoursPerDay: 24,
	},
	{
		Instance: types.GPUInstance{
			InstanceID:     "azure-demo-2",
			Provider:       "azure",
			InstanceType:   "Standard_NC24ads_A100_v4",
			GPUType:        types.GPUA10080GB,
			GPUCount:       1,
			Region:         "eastus",
			PricingType:    types.PricingOnDemand,
			HourlyCost:     3.67,
			Status:         "running",
			GPUUtilization: types.Float(12.0),
		},
		HoursPerDay: 24,
	},
}

// Package gcp provides the Google Cloud connector.
package gcp

import (
	"gpu-spend/connect"
	"gpu-spend/core/types"
)

func init() {
	connect.RegisterBuilder("gcp", func(opts connect.Options) connect.Connector {
		return New(opts)
	})
}

// Connector is the GCP provider adapter. It serves the demo dataset;
// live Compute Engine support plugs in behind the same contract.
type Connector struct {
	connect.DemoConnector
}

// New creates a GCP connector
func New(opts connect.Options) *Connector {
	return &Connector{
		DemoConnector: connect.DemoConnector{
			Name:      "gcp",
			APIKey:    opts.APIKey,
			Workloads: demoWorkloads,
		},
	}
}

var demoWorkloads = []connect.DemoWorkload{
	{
		Instance: types.GPUInstance{
			InstanceID:     "gcp-demo-1",
			Provider:       "gcp",
			InstanceType:   "n1-standard-8",
			GPUType:        types.GPUT4,
			GPUCount:       1,
			Region:         "us-central1-a",
			PricingType:    types.PricingOnDemand,
			HourlyCost:     0.35,
			Status:         "running",
			GPUUtilization: types.Float(45.0),
		},
		HoursPerDay: 24,
	},
	{
		Instance: types.GPUInstance{
			InstanceID:     "gcp-demo-2",
			Provider:       "gcp",
			InstanceType:   "a2-highgpu-1g",
			GPUType:        types.GPUA10040GB,
			GPUCount:       1,
			Region:         "us-central1-a",
			PricingType:    types.PricingOnDemand,
			HourlyCost:     2.93,
			Status:         "running",
			GPUUtilization: types.Float(5.0),
		},
		HoursPerDay: 24,
	},
}

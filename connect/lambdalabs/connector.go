// Package lambdalabs provides the Lambda Labs connector.
package lambdalabs

import (
	"gpu-spend/connect"
	"gpu-spend/core/types"
)

func init() {
	connect.RegisterBuilder("lambda", func(opts connect.Options) connect.Connector {
		return New(opts)
	})
}

// Connector is the Lambda Labs adapter
type Connector struct {
	connect.DemoConnector
}

// New creates a Lambda Labs connector
func New(opts connect.Options) *Connector {
	return &Connector{
		DemoConnector: connect.DemoConnector{
			Name:      "lambda",
			APIKey:    opts.APIKey,
			Workloads: demoWorkloads,
		},
	}
}

var demoWorkloads = []connect.DemoWorkload{
	{
		Instance: types.GPUInstance{
			InstanceID:     "lambda-demo-1",
			Provider:       "lambda",
			InstanceType:   "gpu_1x_a100",
			GPUType:        types.GPUA10040GB,
			GPUCount:       1,
			Region:         "us-west-2",
			PricingType:    types.PricingOnDemand,
			HourlyCost:     1.10,
			Status:         "running",
			GPUUtilization: types.Float(72.0),
		},
		HoursPerDay: 24,
	},
	{
		Instance: types.GPUInstance{
			InstanceID:     "lambda-demo-2",
			Provider:       "lambda",
			InstanceType:   "gpu_1x_h100_pcie",
			GPUType:        types.GPUH10080GB,
			GPUCount:       1,
			Region:         "us-east-1",
			PricingType:    types.PricingOnDemand,
			HourlyCost:     1.99,
			Status:         "running",
			GPUUtilization: types.Float(15.0),
		},
		HoursPerDay: 24,
	},
}

// Package aws provides the AWS connector. With credentials configured
// it queries EC2 for GPU instances and Cost Explorer for usage; without
// them it serves a demo dataset so analysis still runs end to end.
package aws

import (
	"context"
	"strconv"
	"time"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/costexplorer"
	cetypes "github.com/aws/aws-sdk-go-v2/service/costexplorer/types"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"go.uber.org/zap"

	"gpu-spend/connect"
	"gpu-spend/core/pricing"
	"gpu-spend/core/types"
	"gpu-spend/internal/errors"
	"gpu-spend/internal/logging"
)

func init() {
	connect.RegisterBuilder("aws", func(opts connect.Options) connect.Connector {
		return New(opts)
	})
}

// gpuInstanceTypes maps EC2 instance types to GPU descriptors
var gpuInstanceTypes = map[string]struct {
	GPUType types.GPUType
	Count   int
}{
	"p5.48xlarge":   {types.GPUH10080GB, 8},
	"p4d.24xlarge":  {types.GPUA10040GB, 8},
	"p4de.24xlarge": {types.GPUA10080GB, 8},
	"p3.2xlarge":    {types.GPUV10016GB, 1},
	"p3.8xlarge":    {types.GPUV10016GB, 4},
	"p3.16xlarge":   {types.GPUV10016GB, 8},
	"p3dn.24xlarge": {types.GPUV10032GB, 8},
	"g5.xlarge":     {types.GPUA10G, 1},
	"g5.2xlarge":    {types.GPUA10G, 1},
	"g5.4xlarge":    {types.GPUA10G, 1},
	"g5.12xlarge":   {types.GPUA10G, 4},
	"g5.48xlarge":   {types.GPUA10G, 8},
	"g6.xlarge":     {types.GPUL4, 1},
	"g6.12xlarge":   {types.GPUL4, 4},
	"g6.48xlarge":   {types.GPUL4, 8},
	"g4dn.xlarge":   {types.GPUT4, 1},
	"g4dn.2xlarge":  {types.GPUT4, 1},
	"g4dn.12xlarge": {types.GPUT4, 4},
	"g4dn.metal":    {types.GPUT4, 8},
}

// Connector is the AWS provider adapter
type Connector struct {
	region  string
	profile string
	rates   *pricing.RateTable

	ec2Client *ec2.Client
	ceClient  *costexplorer.Client
	connected bool
}

// New creates an AWS connector
func New(opts connect.Options) *Connector {
	region := opts.Region
	if region == "" {
		region = "us-east-1"
	}
	return &Connector{
		region:  region,
		profile: opts.Profile,
		rates:   pricing.Default(),
	}
}

// ProviderName returns "aws"
func (c *Connector) ProviderName() string {
	return "aws"
}

// Connect loads the default credential chain and verifies EC2 access.
// Failure leaves the connector in demo mode.
func (c *Connector) Connect(ctx context.Context) error {
	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(c.region),
	}
	if c.profile != "" {
		loadOpts = append(loadOpts, awsconfig.WithSharedConfigProfile(c.profile))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return errors.Provider("aws", err)
	}

	ec2Client := ec2.NewFromConfig(cfg)
	if _, err := ec2Client.DescribeRegions(ctx, &ec2.DescribeRegionsInput{
		RegionNames: []string{c.region},
	}); err != nil {
		return errors.Provider("aws", err)
	}

	c.ec2Client = ec2Client
	// Cost Explorer is a global endpoint
	c.ceClient = costexplorer.NewFromConfig(cfg, func(o *costexplorer.Options) {
		o.Region = "us-east-1"
	})
	c.connected = true
	return nil
}

// ListGPUInstances returns GPU instances in the configured region, or
// the demo dataset when not connected
func (c *Connector) ListGPUInstances(ctx context.Context) ([]types.GPUInstance, error) {
	if !c.connected {
		if err := c.Connect(ctx); err != nil {
			logging.Debug("aws not connected, serving demo instances", zap.Error(err))
			return connect.DemoInstances(demoWorkloads), nil
		}
	}

	var instances []types.GPUInstance

	paginator := ec2.NewDescribeInstancesPaginator(c.ec2Client, &ec2.DescribeInstancesInput{})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, errors.Provider("aws", err)
		}
		for _, reservation := range page.Reservations {
			for _, instance := range reservation.Instances {
				if parsed, ok := c.parseInstance(instance); ok {
					instances = append(instances, parsed)
				}
			}
		}
	}

	return instances, nil
}

func (c *Connector) parseInstance(instance ec2types.Instance) (types.GPUInstance, bool) {
	instanceType := string(instance.InstanceType)
	gpu, ok := gpuInstanceTypes[instanceType]
	if !ok {
		return types.GPUInstance{}, false
	}

	pricingType := types.PricingOnDemand
	if instance.InstanceLifecycle == ec2types.InstanceLifecycleTypeSpot {
		pricingType = types.PricingSpot
	}

	hourlyCost := c.rates.Price("aws", instanceType, pricingType)

	tags := make(map[string]string, len(instance.Tags))
	for _, tag := range instance.Tags {
		tags[awssdk.ToString(tag.Key)] = awssdk.ToString(tag.Value)
	}

	status := "unknown"
	if instance.State != nil {
		status = string(instance.State.Name)
	}

	return types.GPUInstance{
		InstanceID:   awssdk.ToString(instance.InstanceId),
		Provider:     "aws",
		InstanceType: instanceType,
		GPUType:      gpu.GPUType,
		GPUCount:     gpu.Count,
		Region:       c.region,
		PricingType:  pricingType,
		HourlyCost:   hourlyCost,
		Status:       status,
		LaunchedAt:   instance.LaunchTime,
		Tags:         tags,
	}, true
}

// GetUsage queries Cost Explorer for GPU instance usage grouped by
// instance type and region, one record per day per group
func (c *Connector) GetUsage(ctx context.Context, start, end time.Time) ([]types.UsageRecord, error) {
	if !c.connected {
		if err := c.Connect(ctx); err != nil {
			logging.Debug("aws not connected, serving demo usage", zap.Error(err))
			return connect.DemoUsage(demoWorkloads, start, end), nil
		}
	}

	instanceTypes := make([]string, 0, len(gpuInstanceTypes))
	for it := range gpuInstanceTypes {
		instanceTypes = append(instanceTypes, it)
	}

	output, err := c.ceClient.GetCostAndUsage(ctx, &costexplorer.GetCostAndUsageInput{
		Granularity: cetypes.GranularityDaily,
		TimePeriod: &cetypes.DateInterval{
			Start: awssdk.String(start.Format("2006-01-02")),
			End:   awssdk.String(end.Format("2006-01-02")),
		},
		Metrics: []string{"UnblendedCost", "UsageQuantity"},
		GroupBy: []cetypes.GroupDefinition{
			{Type: cetypes.GroupDefinitionTypeDimension, Key: awssdk.String("INSTANCE_TYPE")},
			{Type: cetypes.GroupDefinitionTypeDimension, Key: awssdk.String("REGION")},
		},
		Filter: &cetypes.Expression{
			Dimensions: &cetypes.DimensionValues{
				Key:    cetypes.DimensionInstanceType,
				Values: instanceTypes,
			},
		},
	})
	if err != nil {
		return nil, errors.Provider("aws", err)
	}

	var records []types.UsageRecord
	for _, result := range output.ResultsByTime {
		periodStart, _ := time.Parse("2006-01-02", awssdk.ToString(result.TimePeriod.Start))
		periodEnd, _ := time.Parse("2006-01-02", awssdk.ToString(result.TimePeriod.End))

		for _, group := range result.Groups {
			instanceType := "unknown"
			region := "unknown"
			if len(group.Keys) > 0 {
				instanceType = group.Keys[0]
			}
			if len(group.Keys) > 1 {
				region = group.Keys[1]
			}

			cost := metricAmount(group.Metrics, "UnblendedCost")
			hours := metricAmount(group.Metrics, "UsageQuantity")
			if cost <= 0 && hours <= 0 {
				continue
			}

			gpu := gpuInstanceTypes[instanceType]
			gpuType := gpu.GPUType
			if gpuType == "" {
				gpuType = types.GPUUnknown
			}

			records = append(records, types.UsageRecord{
				InstanceID:  "aggregated-" + instanceType,
				Provider:    "aws",
				StartTime:   periodStart,
				EndTime:     periodEnd,
				HoursUsed:   hours,
				Cost:        cost,
				GPUType:     gpuType,
				GPUCount:    gpu.Count,
				PricingType: types.PricingOnDemand,
				Region:      region,
			})
		}
	}

	return records, nil
}

func metricAmount(metrics map[string]cetypes.MetricValue, name string) float64 {
	value, ok := metrics[name]
	if !ok || value.Amount == nil {
		return 0
	}
	amount, err := strconv.ParseFloat(*value.Amount, 64)
	if err != nil {
		return 0
	}
	return amount
}

// GetCurrentSpend returns this month's GPU spend
func (c *Connector) GetCurrentSpend(ctx context.Context) (float64, error) {
	now := time.Now()
	startOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	records, err := c.GetUsage(ctx, startOfMonth, now)
	if err != nil {
		return 0, err
	}
	return connect.SumCosts(records), nil
}

// demoWorkloads is served when no AWS credentials are available
var demoWorkloads = []connect.DemoWorkload{
	{
		Instance: types.GPUInstance{
			InstanceID:     "i-0demo1a2b3c4d5e6",
			Provider:       "aws",
			InstanceType:   "g5.xlarge",
			GPUType:        types.GPUA10G,
			GPUCount:       1,
			Region:         "us-east-1",
			PricingType:    types.PricingOnDemand,
			HourlyCost:     1.006,
			Status:         "running",
			Tags:           map[string]string{"team": "ml-infra", "env": "production"},
			GPUUtilization: types.Float(64.0),
		},
		HoursPerDay: 24,
	},
	{
		Instance: types.GPUInstance{
			InstanceID:        "i-0demo7f8a9b0c1d2",
			Provider:          "aws",
			InstanceType:      "p4d.24xlarge",
			GPUType:           types.GPUA10040GB,
			GPUCount:          8,
			Region:            "us-east-1",
			PricingType:       types.PricingOnDemand,
			HourlyCost:        32.77,
			Status:            "running",
			Tags:              map[string]string{"team": "research", "env": "dev"},
			GPUUtilization:    types.Float(4.0),
			MemoryUtilization: types.Float(11.0),
		},
		HoursPerDay: 24,
	},
}

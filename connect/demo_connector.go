package connect

import (
	"context"
	"time"

	"go.uber.org/zap"

	"gpu-spend/core/types"
	"gpu-spend/internal/errors"
	"gpu-spend/internal/logging"
)

// DemoConnector implements the capability contract from a static
// workload set. Marketplace connectors embed it and layer live API
// calls on top once their client support lands; until then the demo
// dataset keeps the full analysis pipeline exercisable.
type DemoConnector struct {
	Name      string
	Workloads []DemoWorkload
	APIKey    string
}

// ProviderName returns the provider identifier
func (c *DemoConnector) ProviderName() string {
	return c.Name
}

// Connect verifies credentials. Without an API key the connector stays
// in demo mode and reports the failure; data calls still succeed.
func (c *DemoConnector) Connect(ctx context.Context) error {
	if c.APIKey == "" {
		logging.Debug("no API key configured, using demo mode",
			zap.String("provider", c.Name))
		return errors.Newf(errors.TypeProvider, "%s: no API key configured", c.Name)
	}
	return nil
}

// ListGPUInstances returns the demo instance set
func (c *DemoConnector) ListGPUInstances(ctx context.Context) ([]types.GPUInstance, error) {
	return DemoInstances(c.Workloads), nil
}

// GetUsage expands the demo workloads over the requested window
func (c *DemoConnector) GetUsage(ctx context.Context, start, end time.Time) ([]types.UsageRecord, error) {
	return DemoUsage(c.Workloads, start, end), nil
}

// GetCurrentSpend totals demo usage for the current month
func (c *DemoConnector) GetCurrentSpend(ctx context.Context) (float64, error) {
	now := time.Now()
	startOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	records, err := c.GetUsage(ctx, startOfMonth, now)
	if err != nil {
		return 0, err
	}
	return SumCosts(records), nil
}

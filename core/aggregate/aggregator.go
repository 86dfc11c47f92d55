package aggregate

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"gpu-spend/connect"
	"gpu-spend/core/types"
	"gpu-spend/internal/logging"
)

// DefaultProviderTimeout bounds each capability call; a slow provider
// degrades to an empty result instead of stalling the merge
const DefaultProviderTimeout = 30 * time.Second

// Aggregator fans out to all registered connectors and merges their
// results. One provider's failure never aborts the merged view: the
// failing provider contributes nothing and the rest proceed.
type Aggregator struct {
	connectors []connect.Connector
	timeout    time.Duration
}

// New creates an aggregator with the default per-provider timeout
func New(connectors ...connect.Connector) *Aggregator {
	return &Aggregator{
		connectors: connectors,
		timeout:    DefaultProviderTimeout,
	}
}

// AddConnector registers a provider connector. Registration is
// configuration-time only, never concurrent with analysis calls.
func (a *Aggregator) AddConnector(c connect.Connector) {
	a.connectors = append(a.connectors, c)
}

// AddConnectors registers multiple connectors
func (a *Aggregator) AddConnectors(cs []connect.Connector) {
	a.connectors = append(a.connectors, cs...)
}

// Connectors returns the registered connectors
func (a *Aggregator) Connectors() []connect.Connector {
	return a.connectors
}

// ConnectAll attempts to connect every provider and reports per-provider
// success
func (a *Aggregator) ConnectAll(ctx context.Context) map[string]bool {
	status := make(map[string]bool, len(a.connectors))
	for _, c := range a.connectors {
		err := c.Connect(ctx)
		if err != nil {
			logging.Warn("provider connect failed",
				zap.String("provider", c.ProviderName()), zap.Error(err))
		}
		status[c.ProviderName()] = err == nil
	}
	return status
}

// fanOut runs one capability call per connector concurrently, each
// bounded by the provider timeout, and merges results in registration
// order. Errors isolate to their provider.
func fanOut[T any](
	ctx context.Context,
	a *Aggregator,
	operation string,
	call func(ctx context.Context, c connect.Connector) ([]T, error),
) []T {
	results := make([][]T, len(a.connectors))

	var wg sync.WaitGroup
	for i, c := range a.connectors {
		wg.Add(1)
		go func(i int, c connect.Connector) {
			defer wg.Done()

			callCtx, cancel := context.WithTimeout(ctx, a.timeout)
			defer cancel()

			items, err := call(callCtx, c)
			if err != nil {
				logging.Warn("provider call failed, excluding from results",
					zap.String("provider", c.ProviderName()),
					zap.String("operation", operation),
					zap.Error(err))
				return
			}
			results[i] = items
		}(i, c)
	}
	wg.Wait()

	var merged []T
	for _, items := range results {
		merged = append(merged, items...)
	}
	return merged
}

// AllInstances returns GPU instances across all providers
func (a *Aggregator) AllInstances(ctx context.Context) []types.GPUInstance {
	return fanOut(ctx, a, "list_instances",
		func(ctx context.Context, c connect.Connector) ([]types.GPUInstance, error) {
			return c.ListGPUInstances(ctx)
		})
}

// AllUsage returns usage records across all providers for [start, end)
func (a *Aggregator) AllUsage(ctx context.Context, start, end time.Time) []types.UsageRecord {
	return fanOut(ctx, a, "get_usage",
		func(ctx context.Context, c connect.Connector) ([]types.UsageRecord, error) {
			return c.GetUsage(ctx, start, end)
		})
}

// InstanceByID finds an instance across providers by its opaque ID
func (a *Aggregator) InstanceByID(ctx context.Context, instanceID string) (types.GPUInstance, bool) {
	for _, instance := range a.AllInstances(ctx) {
		if instance.InstanceID == instanceID {
			return instance, true
		}
	}
	return types.GPUInstance{}, false
}

// Summary builds the spend summary for [start, end). Zero times select
// the default window: first day of the current month through now.
func (a *Aggregator) Summary(ctx context.Context, start, end time.Time) *SpendSummary {
	if end.IsZero() {
		end = time.Now()
	}
	if start.IsZero() {
		start = time.Date(end.Year(), end.Month(), 1, 0, 0, 0, 0, end.Location())
	}

	// Instances are live state, usage is history; the two sources are
	// independent and may disagree in count
	instances := a.AllInstances(ctx)
	records := a.AllUsage(ctx, start, end)

	summary := &SpendSummary{
		StartDate:      start,
		EndDate:        end,
		TotalInstances: len(instances),
	}

	for _, r := range records {
		summary.TotalCost += r.Cost
		summary.TotalGPUHours += r.HoursUsed
	}

	for i := range instances {
		if instances[i].IsRunning() {
			summary.RunningInstances++
		}
		if instances[i].IsIdle() {
			summary.IdleInstances++
		}
	}

	summary.ByProvider = providerBreakdowns(records, instances)
	summary.ByGPUType = gpuBreakdowns(records, instances)
	summary.ByRegion = regionBreakdowns(records)
	summary.ByPricing = pricingBreakdowns(records)

	summary.AvgGPUUtilization = avgUtilization(instances)

	days := windowDays(start, end)
	for i := range instances {
		if instances[i].IsIdle() {
			summary.EstimatedWaste += instances[i].HourlyCost * 24 * float64(days)
		}
	}

	for _, b := range summary.ByPricing {
		summary.PotentialSavings += b.PotentialSavings()
	}

	return summary
}

// CurrentMonthlySpend totals spend from the start of the month to now
func (a *Aggregator) CurrentMonthlySpend(ctx context.Context) float64 {
	return a.Summary(ctx, time.Time{}, time.Time{}).TotalCost
}

// RunningCostPerHour is the current hourly burn rate across providers
func (a *Aggregator) RunningCostPerHour(ctx context.Context) float64 {
	total := 0.0
	for _, instance := range a.AllInstances(ctx) {
		if instance.IsRunning() {
			total += instance.HourlyCost
		}
	}
	return total
}

func providerBreakdowns(records []types.UsageRecord, instances []types.GPUInstance) []ProviderBreakdown {
	type group struct {
		cost      float64
		hours     float64
		instances map[string]struct{}
		running   int
		idle      int
	}

	groups := make(map[string]*group)
	get := func(provider string) *group {
		g, ok := groups[provider]
		if !ok {
			g = &group{instances: make(map[string]struct{})}
			groups[provider] = g
		}
		return g
	}

	for _, r := range records {
		g := get(r.Provider)
		g.cost += r.Cost
		g.hours += r.HoursUsed
		g.instances[r.InstanceID] = struct{}{}
	}

	for i := range instances {
		if instances[i].IsRunning() {
			g := get(instances[i].Provider)
			g.running++
			if instances[i].IsIdle() {
				g.idle++
			}
		}
	}

	breakdowns := make([]ProviderBreakdown, 0, len(groups))
	for provider, g := range groups {
		breakdowns = append(breakdowns, ProviderBreakdown{
			Provider:      provider,
			TotalCost:     g.cost,
			TotalHours:    g.hours,
			InstanceCount: len(g.instances),
			RunningCount:  g.running,
			IdleCount:     g.idle,
		})
	}
	sort.Slice(breakdowns, func(i, j int) bool {
		return breakdowns[i].Provider < breakdowns[j].Provider
	})
	return breakdowns
}

func gpuBreakdowns(records []types.UsageRecord, instances []types.GPUInstance) []GPUBreakdown {
	type group struct {
		cost         float64
		hours        float64
		count        int
		utilizations []float64
	}

	groups := make(map[types.GPUType]*group)
	get := func(gpuType types.GPUType) *group {
		g, ok := groups[gpuType]
		if !ok {
			g = &group{}
			groups[gpuType] = g
		}
		return g
	}

	for _, r := range records {
		g := get(r.GPUType)
		g.cost += r.Cost
		g.hours += r.HoursUsed
		g.count += r.GPUCount
	}

	for i := range instances {
		if instances[i].GPUUtilization != nil {
			get(instances[i].GPUType).utilizations = append(
				get(instances[i].GPUType).utilizations, *instances[i].GPUUtilization)
		}
	}

	breakdowns := make([]GPUBreakdown, 0, len(groups))
	for gpuType, g := range groups {
		b := GPUBreakdown{
			GPUType:    gpuType,
			TotalCost:  g.cost,
			TotalHours: g.hours,
			GPUCount:   g.count,
		}
		if len(g.utilizations) > 0 {
			sum := 0.0
			for _, u := range g.utilizations {
				sum += u
			}
			b.AvgUtilization = types.Float(sum / float64(len(g.utilizations)))
		}
		breakdowns = append(breakdowns, b)
	}
	sort.Slice(breakdowns, func(i, j int) bool {
		return breakdowns[i].GPUType < breakdowns[j].GPUType
	})
	return breakdowns
}

func regionBreakdowns(records []types.UsageRecord) []RegionBreakdown {
	type group struct {
		provider string
		cost     float64
		count    int
	}

	groups := make(map[string]*group)
	for _, r := range records {
		key := r.Provider + ":" + r.Region
		g, ok := groups[key]
		if !ok {
			g = &group{provider: r.Provider}
			groups[key] = g
		}
		g.cost += r.Cost
		g.count++
	}

	breakdowns := make([]RegionBreakdown, 0, len(groups))
	for key, g := range groups {
		region := key
		if idx := strings.LastIndex(key, ":"); idx >= 0 {
			region = key[idx+1:]
		}
		breakdowns = append(breakdowns, RegionBreakdown{
			Region:        region,
			Provider:      g.provider,
			TotalCost:     g.cost,
			InstanceCount: g.count,
		})
	}
	sort.Slice(breakdowns, func(i, j int) bool {
		if breakdowns[i].Provider != breakdowns[j].Provider {
			return breakdowns[i].Provider < breakdowns[j].Provider
		}
		return breakdowns[i].Region < breakdowns[j].Region
	})
	return breakdowns
}

func pricingBreakdowns(records []types.UsageRecord) []PricingBreakdown {
	type group struct {
		cost  float64
		hours float64
		count int
	}

	groups := make(map[types.PricingType]*group)
	for _, r := range records {
		g, ok := groups[r.PricingType]
		if !ok {
			g = &group{}
			groups[r.PricingType] = g
		}
		g.cost += r.Cost
		g.hours += r.HoursUsed
		g.count++
	}

	breakdowns := make([]PricingBreakdown, 0, len(groups))
	for pricingType, g := range groups {
		breakdowns = append(breakdowns, PricingBreakdown{
			PricingType:   pricingType,
			TotalCost:     g.cost,
			TotalHours:    g.hours,
			InstanceCount: g.count,
		})
	}
	sort.Slice(breakdowns, func(i, j int) bool {
		return breakdowns[i].PricingType < breakdowns[j].PricingType
	})
	return breakdowns
}

func avgUtilization(instances []types.GPUInstance) *float64 {
	sum := 0.0
	n := 0
	for i := range instances {
		if instances[i].GPUUtilization != nil {
			sum += *instances[i].GPUUtilization
			n++
		}
	}
	if n == 0 {
		return nil
	}
	return types.Float(sum / float64(n))
}

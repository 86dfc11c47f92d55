// Package connect defines the provider capability contract and the
// connector registry. Cloud and marketplace connectors are modular
// plugins; the analysis engine depends only on the Connector interface,
// never on a concrete provider.
package connect

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"gpu-spend/core/types"
	"gpu-spend/internal/logging"
)

// Connector is the uniform capability contract every provider adapter
// implements. Implementations may serve cached or demo data when no
// live credentials are configured; that is invisible to callers.
type Connector interface {
	// ProviderName returns the provider identifier (aws, gcp, vastai, ...)
	ProviderName() string

	// Connect establishes or verifies access to the provider
	Connect(ctx context.Context) error

	// ListGPUInstances returns all GPU instances, running and stopped
	ListGPUInstances(ctx context.Context) ([]types.GPUInstance, error)

	// GetUsage returns usage records for [start, end)
	GetUsage(ctx context.Context, start, end time.Time) ([]types.UsageRecord, error)

	// GetCurrentSpend returns the current month's GPU spend
	GetCurrentSpend(ctx context.Context) (float64, error)
}

// Builder constructs a connector from its provider options
type Builder func(opts Options) Connector

// Options carries per-provider connection settings. Connectors read
// what they need and ignore the rest.
type Options struct {
	// Region restricts queries to one region where the provider
	// supports it
	Region string

	// Profile selects a local credentials profile (AWS)
	Profile string

	// APIKey authenticates marketplace providers
	APIKey string
}

var (
	buildersMu sync.RWMutex
	builders   = make(map[string]Builder)
)

// RegisterBuilder adds a connector builder to the registry. Connector
// packages call this from init; importing a connector package makes its
// provider available.
func RegisterBuilder(name string, builder Builder) {
	buildersMu.Lock()
	defer buildersMu.Unlock()
	builders[name] = builder
}

// NewConnector builds a connector by provider name. Unknown names
// return ok=false; callers skip them with a warning rather than fail.
func NewConnector(name string, opts Options) (Connector, bool) {
	buildersMu.RLock()
	builder, ok := builders[name]
	buildersMu.RUnlock()
	if !ok {
		logging.Warn("unknown provider, skipping", zap.String("provider", name))
		return nil, false
	}
	return builder(opts), true
}

// Names returns all registered provider names, sorted
func Names() []string {
	buildersMu.RLock()
	defer buildersMu.RUnlock()

	names := make([]string, 0, len(builders))
	for name := range builders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

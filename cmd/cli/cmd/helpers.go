package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"gpu-spend/connect"
	"gpu-spend/core/aggregate"
	"gpu-spend/internal/config"
)

// buildAggregator assembles an aggregator from the --providers flag,
// using credentials from configured provider blocks where present
func buildAggregator(ctx context.Context) *aggregate.Aggregator {
	cfg := config.Get()

	var specs []config.ProviderConfig
	if providers == "" || providers == "all" {
		specs = cfg.ActiveProviders()
	} else {
		configured := make(map[string]config.ProviderConfig)
		for _, p := range cfg.ActiveProviders() {
			configured[p.Name] = p
		}
		for _, name := range strings.Split(providers, ",") {
			name = strings.ToLower(strings.TrimSpace(name))
			if name == "" {
				continue
			}
			if spec, ok := configured[name]; ok {
				specs = append(specs, spec)
			} else {
				specs = append(specs, config.ProviderConfig{Name: name})
			}
		}
	}

	aggregator := aggregate.New()
	for _, spec := range specs {
		if conn, ok := connect.NewConnector(spec.Name, spec.Options()); ok {
			aggregator.AddConnector(conn)
		}
	}

	if live {
		aggregator.ConnectAll(ctx)
	}

	return aggregator
}

// printJSON writes a document as indented JSON to stdout
func printJSON(doc interface{}) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(doc)
}

// money formats a dollar amount for table cells
func money(v float64) string {
	return fmt.Sprintf("$%.2f", v)
}

// percent formats a percentage, dashing out missing readings
func percent(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.1f%%", *v)
}

package config

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"gpu-spend/core/pricing"
	"gpu-spend/core/types"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "gpu-spend.hcl")
	if err := os.WriteFile(path, []byte(contents), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.hcl"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.ListenAddr != ":8080" {
		t.Errorf("ListenAddr = %s, want default :8080", cfg.Server.ListenAddr)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %s, want info", cfg.Logging.Level)
	}
}

func TestLoadFullConfig(t *testing.T) {
	path := writeConfig(t, `
version = "1.1"

server {
  listen_addr = ":9090"
}

logging {
  level  = "debug"
  format = "json"
}

provider "aws" {
  region  = "eu-west-1"
  profile = "ml-team"
}

provider "vastai" {
  api_key = "vk-123"
}

provider "runpod" {
  disabled = true
}

rate {
  provider      = "lambda"
  instance_type = "gpu_1x_a100"
  gpu_type      = "a100-40gb"
  hourly        = 0.95
}
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Version != "1.1" {
		t.Errorf("Version = %s", cfg.Version)
	}
	if cfg.Server.ListenAddr != ":9090" {
		t.Errorf("ListenAddr = %s", cfg.Server.ListenAddr)
	}
	// Unset server fields fall back to defaults
	if cfg.Server.ReadTimeoutSeconds != 15 {
		t.Errorf("ReadTimeoutSeconds = %d, want default 15", cfg.Server.ReadTimeoutSeconds)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" {
		t.Errorf("Logging = %+v", cfg.Logging)
	}

	if len(cfg.Providers) != 3 {
		t.Fatalf("got %d provider blocks, want 3", len(cfg.Providers))
	}

	active := cfg.ActiveProviders()
	if len(active) != 2 {
		t.Fatalf("got %d active providers, want 2 (runpod disabled)", len(active))
	}
	if active[0].Name != "aws" || active[0].Region != "eu-west-1" || active[0].Profile != "ml-team" {
		t.Errorf("aws block = %+v", active[0])
	}
	if active[1].Options().APIKey != "vk-123" {
		t.Errorf("vastai options = %+v", active[1].Options())
	}
}

func TestActiveProvidersDefaultSet(t *testing.T) {
	cfg := Default()
	active := cfg.ActiveProviders()
	if len(active) != len(DefaultProviders) {
		t.Fatalf("got %d default providers, want %d", len(active), len(DefaultProviders))
	}
	if active[0].Name != "aws" {
		t.Errorf("first default provider = %s", active[0].Name)
	}
}

func TestValidateRejectsDuplicateProviders(t *testing.T) {
	path := writeConfig(t, `
provider "aws" {}
provider "aws" {}
`)
	if _, err := Load(path); err == nil {
		t.Error("duplicate provider blocks should fail validation")
	}
}

func TestValidateRejectsBadRate(t *testing.T) {
	path := writeConfig(t, `
rate {
  provider      = "lambda"
  instance_type = "gpu_1x_a100"
  gpu_type      = "a100-40gb"
  hourly        = -1
}
`)
	if _, err := Load(path); err == nil {
		t.Error("negative rate should fail validation")
	}
}

func TestApplyRateOverrides(t *testing.T) {
	cfg := Default()
	cfg.Rates = []RateOverride{
		{Provider: "lambda", InstanceType: "gpu_1x_a100", GPUType: "a100-40gb", Hourly: 0.95},
	}

	table := pricing.Default()
	cfg.ApplyRateOverrides(table)

	got := table.Price("lambda", "gpu_1x_a100", types.PricingOnDemand)
	if math.Abs(got-0.95) > 1e-9 {
		t.Errorf("overridden price = %v, want 0.95", got)
	}
}

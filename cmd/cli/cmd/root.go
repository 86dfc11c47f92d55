// Package cmd provides the CLI commands for gpu-spend.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"gpu-spend/internal/config"
	"gpu-spend/internal/logging"

	// Register provider connectors
	_ "gpu-spend/connect/aws"
	_ "gpu-spend/connect/azure"
	_ "gpu-spend/connect/gcp"
	_ "gpu-spend/connect/lambdalabs"
	_ "gpu-spend/connect/runpod"
	_ "gpu-spend/connect/vastai"
)

// Version is the CLI version
const Version = "0.1.0"

var (
	cfgFile   string
	verbose   bool
	providers string
	live      bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "gpu-spend",
	Short: "See, analyze, and optimize your GPU spend",
	Long: `gpu-spend is a GPU cost intelligence tool for cloud and marketplace
providers.

It aggregates spend across AWS, GCP, Azure, Vast.ai, RunPod, and Lambda
Labs, flags wasted GPU hours, forecasts next month's bill, and
recommends concrete savings actions.

Examples:
  gpu-spend status
  gpu-spend spend --days 7
  gpu-spend waste --min 100
  gpu-spend estimate 70 --gpu h100-80gb --count 64`,
}

// Execute runs the CLI
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.gpu-spend.hcl)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&providers, "providers", "p", "all", "comma-separated providers or 'all'")
	rootCmd.PersistentFlags().BoolVar(&live, "live", false, "connect to real provider APIs instead of demo data")

	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(spendCmd)
	rootCmd.AddCommand(wasteCmd)
	rootCmd.AddCommand(forecastCmd)
	rootCmd.AddCommand(optimizeCmd)
	rootCmd.AddCommand(estimateCmd)
	rootCmd.AddCommand(versionCmd)
}

func initConfig() {
	if cfgFile == "" {
		if home, err := os.UserHomeDir(); err == nil {
			cfgFile = home + "/.gpu-spend.hcl"
		}
	}
	if cfgFile != "" {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
		config.Set(cfg)
	}

	cfg := config.Get()
	if verbose {
		cfg.Logging.Level = "debug"
	}
	if err := logging.Initialize(*cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logging: %v\n", err)
	}
}

// versionCmd prints version information
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("gpu-spend version %s\n", Version)
	},
}

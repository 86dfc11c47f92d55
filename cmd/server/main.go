// Package main - entry point for the gpu-spend API server
package main

import (
	"flag"
	"fmt"
	"log"

	"gpu-spend/api"
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

const version = "0.1.0"

func main() {
	addr := flag.String("addr", "", "server address (overrides config)")
	cfgFile := flag.String("config", "", "path to HCL config file")
	flag.Parse()

	cfg := config.Default()
	if *cfgFile != "" {
		loaded, err := config.Load(*cfgFile)
		if err != nil {
			log.Fatalf("config: %v", err)
		}
		cfg = loaded
	}
	config.Set(cfg)

	if err := logging.Initialize(*cfg.Logging); err != nil {
		log.Fatalf("logging: %v", err)
	}
	defer logging.Sync()

	listenAddr := cfg.Server.ListenAddr
	if *addr != "" {
		listenAddr = *addr
	}

	server := api.NewServer(version, cfg)

	fmt.Printf("gpu-spend API server v%s\n", version)
	fmt.Printf("  http://localhost%s\n", listenAddr)

	if err := server.ListenAndServe(listenAddr); err != nil {
		log.Fatal(err)
	}
}

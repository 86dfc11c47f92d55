// Package api - thin HTTP layer over the analysis engine.
// The API is only responsible for input parsing, engine orchestration,
// and output serialization. It never performs cost logic.
package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"gpu-spend/connect"
	"gpu-spend/core/aggregate"
	"gpu-spend/core/forecast"
	"gpu-spend/core/optimize"
	"gpu-spend/core/pricing"
	"gpu-spend/core/types"
	"gpu-spend/core/waste"
	"gpu-spend/internal/config"
	"gpu-spend/internal/logging"
)

// Server is the API server
type Server struct {
	mux     *http.ServeMux
	version string
	cfg     *config.Config
	rates   *pricing.RateTable
}

// NewServer creates an API server over the given configuration
func NewServer(version string, cfg *config.Config) *Server {
	if cfg == nil {
		cfg = config.Default()
	}

	rates := pricing.Default()
	cfg.ApplyRateOverrides(rates)

	s := &Server{
		mux:     http.NewServeMux(),
		version: version,
		cfg:     cfg,
		rates:   rates,
	}

	s.registerRoutes()
	return s
}

// registerRoutes registers all API routes
func (s *Server) registerRoutes() {
	// Core endpoints
	s.mux.HandleFunc("GET /instances", instrument("/instances", s.handleInstances))
	s.mux.HandleFunc("GET /spend", instrument("/spend", s.handleSpend))
	s.mux.HandleFunc("GET /waste", instrument("/waste", s.handleWaste))
	s.mux.HandleFunc("GET /forecast", instrument("/forecast", s.handleForecast))
	s.mux.HandleFunc("GET /optimize", instrument("/optimize", s.handleOptimize))
	s.mux.HandleFunc("POST /estimate/training", instrument("/estimate/training", s.handleEstimateTraining))
	s.mux.HandleFunc("POST /estimate/inference", instrument("/estimate/inference", s.handleEstimateInference))

	// Supporting endpoints
	s.mux.HandleFunc("GET /{$}", instrument("/", s.handleRoot))
	s.mux.HandleFunc("GET /health", instrument("/health", s.handleHealth))
	s.mux.HandleFunc("GET /version", instrument("/version", s.handleVersion))
	s.mux.HandleFunc("GET /pricing", instrument("/pricing", s.handlePricing))
	s.mux.Handle("GET /metrics", promhttp.Handler())
}

// aggregatorFor builds an aggregator from the request's providers
// parameter. "all" or absence selects every configured provider; the
// demo parameter controls whether live connections are attempted.
func (s *Server) aggregatorFor(r *http.Request) *aggregate.Aggregator {
	providersParam := r.URL.Query().Get("providers")

	var specs []config.ProviderConfig
	if providersParam == "" || providersParam == "all" {
		specs = s.cfg.ActiveProviders()
	} else {
		configured := make(map[string]config.ProviderConfig)
		for _, p := range s.cfg.ActiveProviders() {
			configured[p.Name] = p
		}
		for _, name := range strings.Split(providersParam, ",") {
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

	if r.URL.Query().Get("demo") == "false" {
		for provider, connected := range aggregator.ConnectAll(r.Context()) {
			if !connected {
				providerCallErrors.WithLabelValues(provider).Inc()
			}
		}
	}

	return aggregator
}

// handleRoot handles GET /
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string]interface{}{
		"name":        "gpu-spend API",
		"version":     s.version,
		"description": "GPU spend analytics across cloud and marketplace providers",
		"endpoints": map[string]string{
			"instances":          "/instances",
			"spend":              "/spend",
			"waste":              "/waste",
			"forecast":           "/forecast",
			"optimize":           "/optimize",
			"estimate/training":  "/estimate/training",
			"estimate/inference": "/estimate/inference",
			"pricing":            "/pricing",
		},
	}, http.StatusOK)
}

// handleHealth handles GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string]interface{}{
		"status":    "healthy",
		"version":   s.version,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}, http.StatusOK)
}

// handleVersion handles GET /version
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string]string{
		"version":     s.version,
		"engine":      "gpu-spend",
		"api_version": "v1",
	}, http.StatusOK)
}

// handleInstances handles GET /instances
func (s *Server) handleInstances(w http.ResponseWriter, r *http.Request) {
	aggregator := s.aggregatorFor(r)
	instances := aggregator.AllInstances(r.Context())

	instanceDocs := make([]map[string]interface{}, 0, len(instances))
	running, idle := 0, 0
	hourlyBurn := 0.0
	for i := range instances {
		inst := &instances[i]
		if inst.IsRunning() {
			running++
			hourlyBurn += inst.HourlyCost
		}
		if inst.IsIdle() {
			idle++
		}
		instanceDocs = append(instanceDocs, map[string]interface{}{
			"id":                 inst.InstanceID,
			"provider":           inst.Provider,
			"type":               inst.InstanceType,
			"gpu_type":           string(inst.GPUType),
			"gpu_count":          inst.GPUCount,
			"region":             inst.Region,
			"pricing_type":       string(inst.PricingType),
			"hourly_cost":        inst.HourlyCost,
			"status":             inst.Status,
			"is_running":         inst.IsRunning(),
			"is_idle":            inst.IsIdle(),
			"gpu_utilization":    inst.GPUUtilization,
			"memory_utilization": inst.MemoryUtilization,
		})
	}

	s.writeJSON(w, map[string]interface{}{
		"instances": instanceDocs,
		"summary": map[string]interface{}{
			"total":             len(instances),
			"running":           running,
			"idle":              idle,
			"hourly_burn_rate":  hourlyBurn,
			"daily_burn_rate":   hourlyBurn * 24,
			"monthly_burn_rate": hourlyBurn * 24 * 30,
		},
	}, http.StatusOK)
}

// handleSpend handles GET /spend
func (s *Server) handleSpend(w http.ResponseWriter, r *http.Request) {
	days := queryInt(r, "days", 30)
	if days <= 0 {
		s.writeError(w, "VALIDATION_ERROR", "days must be positive", http.StatusBadRequest)
		return
	}

	aggregator := s.aggregatorFor(r)

	end := time.Now()
	start := end.AddDate(0, 0, -days)
	summary := aggregator.Summary(r.Context(), start, end)

	s.writeJSON(w, summary.Document(), http.StatusOK)
}

// handleWaste handles GET /waste
func (s *Server) handleWaste(w http.ResponseWriter, r *http.Request) {
	minSavings := queryFloat(r, "min_savings", 50)

	aggregator := s.aggregatorFor(r)
	detector := waste.NewDetector(aggregator)
	report := detector.Analyze(r.Context())

	// Keep alerts above the savings floor, preserving order
	filtered := make([]*waste.Alert, 0, len(report.Alerts))
	for _, a := range report.Alerts {
		if a.MonthlyWaste() >= minSavings {
			filtered = append(filtered, a)
		}
	}
	report.Alerts = filtered

	s.writeJSON(w, report.Document(), http.StatusOK)
}

// handleForecast handles GET /forecast
func (s *Server) handleForecast(w http.ResponseWriter, r *http.Request) {
	monthsAhead := queryInt(r, "months_ahead", 1)
	lookbackDays := queryInt(r, "lookback_days", 30)
	if monthsAhead <= 0 {
		s.writeError(w, "VALIDATION_ERROR", "months_ahead must be positive", http.StatusBadRequest)
		return
	}

	aggregator := s.aggregatorFor(r)
	predictor := forecast.NewPredictor(aggregator)

	now := time.Now()
	target := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, monthsAhead, 0)
	result := predictor.ForecastMonth(r.Context(), target, lookbackDays)

	s.writeJSON(w, result.Document(), http.StatusOK)
}

// handleOptimize handles GET /optimize
func (s *Server) handleOptimize(w http.ResponseWriter, r *http.Request) {
	aggregator := s.aggregatorFor(r)
	recommender := optimize.NewRecommender(aggregator, nil)
	report := recommender.Generate(r.Context())

	if r.URL.Query().Get("quick_wins_only") == "true" {
		report.Recommendations = report.QuickWins()
	}

	s.writeJSON(w, report.Document(), http.StatusOK)
}

// TrainingEstimateRequest is the POST /estimate/training body
type TrainingEstimateRequest struct {
	ModelSizeParams float64 `json:"model_size_params"`
	TrainingTokens  float64 `json:"training_tokens"`
	GPUType         string  `json:"gpu_type"`
	GPUCount        int     `json:"gpu_count"`
}

// handleEstimateTraining handles POST /estimate/training
func (s *Server) handleEstimateTraining(w http.ResponseWriter, r *http.Request) {
	var req TrainingEstimateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, "INVALID_JSON", err.Error(), http.StatusBadRequest)
		return
	}
	if req.ModelSizeParams <= 0 {
		s.writeError(w, "VALIDATION_ERROR", "model_size_params must be positive", http.StatusBadRequest)
		return
	}
	if req.TrainingTokens <= 0 {
		req.TrainingTokens = 1e12
	}
	if req.GPUCount <= 0 {
		req.GPUCount = 8
	}

	gpuType := parseGPUTypeOrDefault(req.GPUType, types.GPUA10080GB)
	estimate := forecast.EstimateTrainingCost(req.ModelSizeParams, req.TrainingTokens, gpuType, req.GPUCount)

	s.writeJSON(w, estimate.Document(), http.StatusOK)
}

// InferenceEstimateRequest is the POST /estimate/inference body
type InferenceEstimateRequest struct {
	RequestsPerDay   float64 `json:"requests_per_day"`
	TokensPerRequest float64 `json:"tokens_per_request"`
	GPUType          string  `json:"gpu_type"`
}

// handleEstimateInference handles POST /estimate/inference
func (s *Server) handleEstimateInference(w http.ResponseWriter, r *http.Request) {
	var req InferenceEstimateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, "INVALID_JSON", err.Error(), http.StatusBadRequest)
		return
	}
	if req.RequestsPerDay <= 0 {
		s.writeError(w, "VALIDATION_ERROR", "requests_per_day must be positive", http.StatusBadRequest)
		return
	}
	if req.TokensPerRequest <= 0 {
		req.TokensPerRequest = 1000
	}

	gpuType := parseGPUTypeOrDefault(req.GPUType, types.GPUA10040GB)
	estimate := forecast.EstimateInferenceCost(req.RequestsPerDay, req.TokensPerRequest, gpuType)

	s.writeJSON(w, estimate.Document(), http.StatusOK)
}

// handlePricing handles GET /pricing
func (s *Server) handlePricing(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, s.rates.Document(), http.StatusOK)
}

func (s *Server) writeJSON(w http.ResponseWriter, data interface{}, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logging.Error("failed to encode response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, code, message string, status int) {
	s.writeJSON(w, map[string]interface{}{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	}, status)
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// ListenAndServe starts the server with the configured timeouts
func (s *Server) ListenAndServe(addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s,
		ReadTimeout:  time.Duration(s.cfg.Server.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(s.cfg.Server.WriteTimeoutSeconds) * time.Second,
	}
	logging.Info("API server listening", zap.String("addr", addr))
	return srv.ListenAndServe()
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

func queryFloat(r *http.Request, key string, fallback float64) float64 {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fallback
	}
	return v
}

func parseGPUTypeOrDefault(s string, fallback types.GPUType) types.GPUType {
	if s == "" {
		return fallback
	}
	if t := types.ParseGPUType(s); t != types.GPUUnknown {
		return t
	}
	return fallback
}

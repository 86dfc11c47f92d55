package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"gpu-spend/internal/config"
)

func testServer() *Server {
	return NewServer("test", config.Default())
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not JSON: %v", err)
	}
	return body
}

func TestHealthEndpoint(t *testing.T) {
	rec := httptest.NewRecorder()
	testServer().ServeHTTP(rec, httptest.NewRequest("GET", "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["status"] != "healthy" {
		t.Errorf("status field = %v", body["status"])
	}
	if body["version"] != "test" {
		t.Errorf("version field = %v", body["version"])
	}
}

func TestVersionEndpoint(t *testing.T) {
	rec := httptest.NewRecorder()
	testServer().ServeHTTP(rec, httptest.NewRequest("GET", "/version", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["api_version"] != "v1" {
		t.Errorf("api_version = %v", body["api_version"])
	}
}

func TestRootListsEndpoints(t *testing.T) {
	rec := httptest.NewRecorder()
	testServer().ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := decodeBody(t, rec)
	endpoints, ok := body["endpoints"].(map[string]interface{})
	if !ok {
		t.Fatalf("endpoints missing: %T", body["endpoints"])
	}
	for _, name := range []string{"instances", "spend", "waste", "forecast", "optimize"} {
		if _, ok := endpoints[name]; !ok {
			t.Errorf("endpoint listing missing %s", name)
		}
	}
}

func TestUnknownRouteIs404(t *testing.T) {
	rec := httptest.NewRecorder()
	testServer().ServeHTTP(rec, httptest.NewRequest("GET", "/no-such-route", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestPricingEndpoint(t *testing.T) {
	rec := httptest.NewRecorder()
	testServer().ServeHTTP(rec, httptest.NewRequest("GET", "/pricing", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := decodeBody(t, rec)
	providers, ok := body["providers"].(map[string]interface{})
	if !ok {
		t.Fatalf("providers missing: %T", body["providers"])
	}
	if _, ok := providers["lambda"]; !ok {
		t.Error("pricing catalog should include lambda")
	}
}

func TestPricingHonorsRateOverrides(t *testing.T) {
	cfg := config.Default()
	cfg.Rates = []config.RateOverride{
		{Provider: "lambda", InstanceType: "gpu_1x_a100", GPUType: "a100-40gb", Hourly: 0.42},
	}
	server := NewServer("test", cfg)

	got := server.rates.Price("lambda", "gpu_1x_a100", "on-demand")
	if got != 0.42 {
		t.Errorf("overridden rate = %v, want 0.42", got)
	}
}

func TestEstimateTraining(t *testing.T) {
	req := httptest.NewRequest("POST", "/estimate/training",
		strings.NewReader(`{"model_size_params": 7, "training_tokens": 1e12, "gpu_type": "a100-80gb", "gpu_count": 8}`))
	rec := httptest.NewRecorder()
	testServer().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	cost, ok := body["cost"].(map[string]interface{})
	if !ok {
		t.Fatalf("cost section missing: %s", rec.Body.String())
	}
	if cost["cheapest_provider"] != "lambda" {
		t.Errorf("cheapest_provider = %v", cost["cheapest_provider"])
	}
	if estimate, ok := cost["estimate"].(float64); !ok || estimate <= 0 {
		t.Errorf("estimate = %v", cost["estimate"])
	}
}

func TestEstimateTrainingValidation(t *testing.T) {
	req := httptest.NewRequest("POST", "/estimate/training", strings.NewReader(`{"training_tokens": 1e12}`))
	rec := httptest.NewRecorder()
	testServer().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	body := decodeBody(t, rec)
	errObj, ok := body["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("error envelope missing: %s", rec.Body.String())
	}
	if errObj["code"] != "VALIDATION_ERROR" {
		t.Errorf("error code = %v", errObj["code"])
	}
}

func TestEstimateTrainingRejectsBadJSON(t *testing.T) {
	req := httptest.NewRequest("POST", "/estimate/training", strings.NewReader(`{not json`))
	rec := httptest.NewRecorder()
	testServer().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	body := decodeBody(t, rec)
	errObj := body["error"].(map[string]interface{})
	if errObj["code"] != "INVALID_JSON" {
		t.Errorf("error code = %v", errObj["code"])
	}
}

func TestEstimateInference(t *testing.T) {
	req := httptest.NewRequest("POST", "/estimate/inference",
		strings.NewReader(`{"requests_per_day": 1000000, "tokens_per_request": 1000}`))
	rec := httptest.NewRecorder()
	testServer().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	cost, ok := body["cost"].(map[string]interface{})
	if !ok {
		t.Fatalf("cost section missing: %s", rec.Body.String())
	}
	daily, _ := cost["daily_estimate"].(float64)
	monthly, _ := cost["monthly_estimate"].(float64)
	if daily <= 0 || monthly <= 0 {
		t.Errorf("costs = %v / %v", daily, monthly)
	}
}

func TestEstimateInferenceValidation(t *testing.T) {
	req := httptest.NewRequest("POST", "/estimate/inference", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	testServer().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestSpendRejectsNonPositiveDays(t *testing.T) {
	rec := httptest.NewRecorder()
	testServer().ServeHTTP(rec, httptest.NewRequest("GET", "/spend?days=-1", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestForecastRejectsNonPositiveMonths(t *testing.T) {
	rec := httptest.NewRecorder()
	testServer().ServeHTTP(rec, httptest.NewRequest("GET", "/forecast?months_ahead=0", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

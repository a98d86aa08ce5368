package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jonwraymond/breakerops/breaker"
)

func healthyChecker(name string) Checker {
	return NewCheckerFunc(name, func(ctx context.Context) Result {
		return Healthy("ok")
	})
}

func TestLivenessHandler(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()

	LivenessHandler()(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("Status = %d, want %d", rec.Code, http.StatusOK)
	}
	if rec.Body.String() != "OK" {
		t.Errorf("Body = %v, want 'OK'", rec.Body.String())
	}
	if rec.Header().Get("Content-Type") != "text/plain" {
		t.Errorf("Content-Type = %v, want 'text/plain'", rec.Header().Get("Content-Type"))
	}
}

func TestReadinessHandler(t *testing.T) {
	tests := []struct {
		name     string
		result   Result
		wantCode int
		wantBody string
	}{
		{"healthy", Healthy("ok"), http.StatusOK, "OK"},
		{"degraded", Degraded("slow"), http.StatusOK, "DEGRADED"},
		{"unhealthy", Unhealthy("down", nil), http.StatusServiceUnavailable, "UNHEALTHY"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			agg := NewAggregator()
			agg.Register("dep", NewCheckerFunc("dep", func(ctx context.Context) Result {
				return tt.result
			}))

			req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
			rec := httptest.NewRecorder()

			ReadinessHandler(agg)(rec, req)

			if rec.Code != tt.wantCode {
				t.Errorf("Status = %d, want %d", rec.Code, tt.wantCode)
			}
			if rec.Body.String() != tt.wantBody {
				t.Errorf("Body = %v, want %v", rec.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestDetailedHandler(t *testing.T) {
	agg := NewAggregator()
	agg.Register("database", healthyChecker("database"))
	agg.Register("billing", NewCheckerFunc("billing", func(ctx context.Context) Result {
		return Unhealthy("circuit open", errors.New("breaker: circuit open"))
	}))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()

	DetailedHandler(agg)(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("Status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %v, want 'application/json'", ct)
	}

	var response HealthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if response.Status != "unhealthy" {
		t.Errorf("Status = %v, want 'unhealthy'", response.Status)
	}
	if len(response.Checks) != 2 {
		t.Fatalf("len(Checks) = %d, want 2", len(response.Checks))
	}
	if response.Checks["database"].Status != "healthy" {
		t.Errorf("database Status = %v, want 'healthy'", response.Checks["database"].Status)
	}
	if response.Checks["billing"].Error != "breaker: circuit open" {
		t.Errorf("billing Error = %v, want 'breaker: circuit open'", response.Checks["billing"].Error)
	}
}

func TestSingleCheckHandler(t *testing.T) {
	agg := NewAggregator()
	agg.Register("database", healthyChecker("database"))

	req := httptest.NewRequest(http.MethodGet, "/health/database", nil)
	rec := httptest.NewRecorder()

	SingleCheckHandler(agg, "database")(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("Status = %d, want %d", rec.Code, http.StatusOK)
	}

	var response CheckResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if response.Status != "healthy" {
		t.Errorf("Status = %v, want 'healthy'", response.Status)
	}
}

func TestSingleCheckHandler_NotFound(t *testing.T) {
	agg := NewAggregator()

	req := httptest.NewRequest(http.MethodGet, "/health/missing", nil)
	rec := httptest.NewRecorder()

	SingleCheckHandler(agg, "missing")(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("Status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestCircuitsHandler(t *testing.T) {
	group := breaker.NewGroup(breaker.Config{})
	_ = group.Get("search")
	group.Get("billing").ForceOpen()

	req := httptest.NewRequest(http.MethodGet, "/circuits", nil)
	rec := httptest.NewRecorder()

	CircuitsHandler(group)(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("Status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}

	var circuits map[string]CircuitResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &circuits); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if circuits["search"].State != "closed" {
		t.Errorf("search State = %v, want 'closed'", circuits["search"].State)
	}
	if circuits["billing"].State != "open" {
		t.Errorf("billing State = %v, want 'open'", circuits["billing"].State)
	}
	if circuits["billing"].OpenedAt == "" {
		t.Error("billing OpenedAt should be set")
	}
}

func TestCircuitsHandler_AllClosed(t *testing.T) {
	group := breaker.NewGroup(breaker.Config{})
	_ = group.Get("search")

	rec := httptest.NewRecorder()
	CircuitsHandler(group)(rec, httptest.NewRequest(http.MethodGet, "/circuits", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("Status = %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestRegisterHandlers(t *testing.T) {
	agg := NewAggregator()
	agg.Register("dep", healthyChecker("dep"))

	mux := http.NewServeMux()
	RegisterHandlers(mux, agg)

	for _, path := range []string{"/healthz", "/readyz", "/health"} {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK {
			t.Errorf("%s Status = %d, want %d", path, rec.Code, http.StatusOK)
		}
	}
}

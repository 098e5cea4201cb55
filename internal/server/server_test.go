package server

import (
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

const proppedJSON = `{
	"name": "propped cantilever",
	"length": 3,
	"supports": [
		{"coord": 0, "kind": "fixed"},
		{"coord": 3, "kind": "roller"}
	],
	"loads": [
		{"type": "point_v", "force": -8000, "coord": 1.5},
		{"type": "udl", "force": -6000, "start": 0, "end": 3}
	],
	"query_points": [1.5]
}`

func TestHealthz(t *testing.T) {
	srv := New()
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest("GET", "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestAnalyse(t *testing.T) {
	srv := New()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/analyse", strings.NewReader(proppedJSON))
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp AnalyseResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Degree != 1 {
		t.Errorf("degree = %d, want 1", resp.Degree)
	}
	if len(resp.Reactions) != 2 {
		t.Fatalf("reactions = %d, want 2", len(resp.Reactions))
	}
	if got := resp.Reactions[0].Fy; math.Abs(got-16750) > 1e-6 {
		t.Errorf("Fy(0) = %g, want 16750", got)
	}
	if got := resp.Reactions[1].Fy; math.Abs(got-9250) > 1e-6 {
		t.Errorf("Fy(3) = %g, want 9250", got)
	}
	if got := resp.Extremes["shear force"]; math.Abs(got.Max-16750) > 1e-6 {
		t.Errorf("shear max = %g, want 16750", got.Max)
	}
	if len(resp.Queries) != 1 || resp.Queries[0].X != 1.5 {
		t.Errorf("queries = %+v", resp.Queries)
	}
	if resp.Samples != nil {
		t.Error("samples present without being requested")
	}
}

func TestAnalyseWithSamples(t *testing.T) {
	srv := New()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/analyse?samples=50", strings.NewReader(proppedJSON))
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp AnalyseResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Samples == nil {
		t.Fatal("samples missing")
	}
	if len(resp.Samples.X) != 51 {
		t.Errorf("sample count = %d, want 51", len(resp.Samples.X))
	}
	if len(resp.Samples.Deflection) != 51 {
		t.Errorf("deflection count = %d, want 51", len(resp.Samples.Deflection))
	}
}

func TestAnalyseErrors(t *testing.T) {
	tests := []struct {
		name   string
		target string
		body   string
		status int
	}{
		{
			name:   "malformed body",
			target: "/api/analyse",
			body:   `{"length": [}`,
			status: http.StatusBadRequest,
		},
		{
			name:   "unstable beam",
			target: "/api/analyse",
			body:   `{"length": 3, "supports": [{"coord": 0, "kind": "roller"}]}`,
			status: http.StatusUnprocessableEntity,
		},
		{
			name:   "support off the beam",
			target: "/api/analyse",
			body:   `{"length": 3, "supports": [{"coord": 5, "kind": "pinned"}]}`,
			status: http.StatusUnprocessableEntity,
		},
		{
			name:   "unintegrable distributed load",
			target: "/api/analyse",
			body: `{"length": 3,
				"supports": [{"coord": 0, "kind": "fixed"}],
				"loads": [{"type": "distributed", "expr": "sin(x^2)", "start": 0, "end": 2, "angle": 90}]}`,
			status: http.StatusUnprocessableEntity,
		},
		{
			name:   "bad samples parameter",
			target: "/api/analyse?samples=-2",
			body:   proppedJSON,
			status: http.StatusBadRequest,
		},
	}
	srv := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest("POST", tt.target, strings.NewReader(tt.body))
			srv.ServeHTTP(rec, req)
			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d, body = %s", rec.Code, tt.status, rec.Body.String())
			}
			var e errorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &e); err != nil || e.Error == "" {
				t.Errorf("error body = %s", rec.Body.String())
			}
		})
	}
}

func TestPresets(t *testing.T) {
	srv := New()
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest("GET", "/api/presets", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var families map[string][]string
	if err := json.Unmarshal(rec.Body.Bytes(), &families); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if _, ok := families["propped"]; !ok {
		t.Errorf("families = %v, want propped present", families)
	}

	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest("GET", "/api/presets/propped/textbook", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("preset status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest("GET", "/api/presets/propped/nope", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing preset status = %d, want 404", rec.Code)
	}
}

func TestRateLimit(t *testing.T) {
	srv := New()

	// The default bucket holds 10 tokens and refills at 5 per second, so a
	// tight burst of 30 must hit the limit.
	var limited bool
	for i := 0; i < 30; i++ {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/api/presets", nil)
		req.RemoteAddr = "192.0.2.1:1234"
		srv.ServeHTTP(rec, req)
		if rec.Code == http.StatusTooManyRequests {
			limited = true
			break
		}
	}
	if !limited {
		t.Error("burst of requests was never limited")
	}
}

package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	logtest "github.com/sirupsen/logrus/hooks/test"

	"vehicle/api/internal/config"
	"vehicle/api/internal/models"
	"vehicle/api/internal/security"
)

const vehicleBody = `{"id":"123"}`

func testSettings() config.Settings {
	return config.Settings{
		RequestTimeout: 5 * time.Second,
		AllowedOrigins: []string{"http://localhost:3000"},
	}
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	logger, _ := logtest.NewNullLogger()
	return New(testSettings(), logger, nil)
}

func do(t *testing.T, h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestGetVehicle(t *testing.T) {
	h := newTestRouter(t)
	for _, path := range []string{"/api/v1/vehicle", "/api/v1/vehicle/"} {
		t.Run(path, func(t *testing.T) {
			rec := do(t, h, httptest.NewRequest(http.MethodGet, path, nil))
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
			}
			if got := strings.TrimSpace(rec.Body.String()); got != vehicleBody {
				t.Errorf("body = %s, want %s", got, vehicleBody)
			}
			if rec.Header().Get("X-Request-ID") == "" {
				t.Error("missing X-Request-ID")
			}
		})
	}
}

func TestGetVehicleIndependentOfRequest(t *testing.T) {
	h := newTestRouter(t)
	tests := []struct {
		name  string
		build func() *http.Request
	}{
		{"query string", func() *http.Request {
			return httptest.NewRequest(http.MethodGet, "/api/v1/vehicle?id=456&limit=10", nil)
		}},
		{"headers", func() *http.Request {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/vehicle", nil)
			req.Header.Set("Accept", "application/xml")
			req.Header.Set("Authorization", "Bearer ignored")
			req.Header.Set("X-Forwarded-For", "10.0.0.1")
			return req
		}},
		{"body", func() *http.Request {
			return httptest.NewRequest(http.MethodGet, "/api/v1/vehicle", strings.NewReader(`{"id":"999"}`))
		}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := do(t, h, tc.build())
			if rec.Code != http.StatusOK || strings.TrimSpace(rec.Body.String()) != vehicleBody {
				t.Errorf("got %d %s", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestGetVehicleIdempotent(t *testing.T) {
	h := newTestRouter(t)
	var first string
	for i := 0; i < 25; i++ {
		rec := do(t, h, httptest.NewRequest(http.MethodGet, "/api/v1/vehicle", nil))
		body := rec.Body.String()
		if i == 0 {
			first = body
			continue
		}
		if body != first {
			t.Fatalf("request %d body %q differs from %q", i, body, first)
		}
	}
}

func TestGetVehicleConcurrent(t *testing.T) {
	srv := httptest.NewServer(newTestRouter(t))
	defer srv.Close()

	const workers = 32
	var wg sync.WaitGroup
	errs := make(chan string, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp, err := http.Get(srv.URL + "/api/v1/vehicle")
			if err != nil {
				errs <- err.Error()
				return
			}
			defer resp.Body.Close()
			var v models.Vehicle
			if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
				errs <- err.Error()
				return
			}
			if resp.StatusCode != http.StatusOK || v.ID != "123" {
				errs <- resp.Status + " " + v.ID
			}
		}()
	}
	wg.Wait()
	close(errs)
	for e := range errs {
		t.Error(e)
	}
}

func TestRoutingErrors(t *testing.T) {
	h := newTestRouter(t)
	tests := []struct {
		name       string
		method     string
		path       string
		wantStatus int
	}{
		{"post vehicle", http.MethodPost, "/api/v1/vehicle", http.StatusMethodNotAllowed},
		{"delete vehicle", http.MethodDelete, "/api/v1/vehicle", http.StatusMethodNotAllowed},
		{"unknown api path", http.MethodGet, "/api/v1/vehicles/123", http.StatusNotFound},
		{"unknown root path", http.MethodGet, "/nope", http.StatusNotFound},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := do(t, h, httptest.NewRequest(tc.method, tc.path, nil))
			if rec.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tc.wantStatus)
			}
			var body struct {
				Success    bool `json:"success"`
				StatusCode int  `json:"status_code"`
			}
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("error body is not JSON: %s", rec.Body.String())
			}
			if body.Success || body.StatusCode != tc.wantStatus {
				t.Errorf("unexpected envelope %s", rec.Body.String())
			}
		})
	}
}

func TestSystemRoutes(t *testing.T) {
	h := newTestRouter(t)
	for _, path := range []string{"/", "/health"} {
		rec := do(t, h, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"success":true`) {
			t.Errorf("%s: %d %s", path, rec.Code, rec.Body.String())
		}
	}
}

func TestCORSPreflight(t *testing.T) {
	h := newTestRouter(t)
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/vehicle", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	req.Header.Set("Access-Control-Request-Headers", "Authorization")

	rec := do(t, h, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("Allow-Origin = %q", got)
	}

	req = httptest.NewRequest(http.MethodOptions, "/api/v1/vehicle", nil)
	req.Header.Set("Origin", "http://evil.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rec = do(t, h, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("unexpected Allow-Origin %q for disallowed origin", got)
	}
}

func TestVehicleWithAuth(t *testing.T) {
	const secret = "router-test-secret"
	verifier, err := security.NewVerifier(nil, secret, "", "")
	if err != nil {
		t.Fatal(err)
	}
	cfg := testSettings()
	cfg.AuthRequiredRole = "fleet-viewer"
	logger, _ := logtest.NewNullLogger()
	h := New(cfg, logger, verifier)

	viewer, err := security.CreateAccessToken(models.Principal{Subject: "u-1", Roles: []string{"fleet-viewer"}}, secret, "", time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	outsider, err := security.CreateAccessToken(models.Principal{Subject: "u-2"}, secret, "", time.Minute)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{"no token", "", http.StatusUnauthorized},
		{"bad token", "Bearer nope", http.StatusUnauthorized},
		{"missing role", "Bearer " + outsider, http.StatusForbidden},
		{"authorized", "Bearer " + viewer, http.StatusOK},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/vehicle", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := do(t, h, req)
			if rec.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d (%s)", rec.Code, tc.wantStatus, rec.Body.String())
			}
			if tc.wantStatus == http.StatusOK && strings.TrimSpace(rec.Body.String()) != vehicleBody {
				t.Errorf("body = %s", rec.Body.String())
			}
		})
	}

	t.Run("health stays open", func(t *testing.T) {
		rec := do(t, h, httptest.NewRequest(http.MethodGet, "/health", nil))
		if rec.Code != http.StatusOK {
			t.Errorf("status = %d", rec.Code)
		}
	})
}

func TestRequestsAreAccessLogged(t *testing.T) {
	logger, hook := logtest.NewNullLogger()
	h := New(testSettings(), logger, nil)
	if rec := do(t, h, httptest.NewRequest(http.MethodGet, "/health", nil)); rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	entry := hook.LastEntry()
	if entry == nil || entry.Data["path"] != "/health" || entry.Data["status"] != http.StatusOK {
		t.Errorf("expected access log for /health, got %+v", entry)
	}
}

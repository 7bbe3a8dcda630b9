package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"jobboard-backend/internal/config"
	"jobboard-backend/internal/database/dbtest"
	"jobboard-backend/internal/metrics"
	"jobboard-backend/internal/roles"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

func newTestServer(t *testing.T, burst int) *fiber.App {
	t.Helper()
	db := dbtest.Open(t)
	if err := roles.EnsureSeeded(context.Background(), db); err != nil {
		t.Fatalf("EnsureSeeded() error = %v", err)
	}
	cfg := &config.Config{
		JWTSecret:          "routes-test-secret-0123456789abcdef",
		JWTTTL:             time.Hour,
		CORSOrigins:        "http://localhost:5173",
		AuthRateLimitRPS:   0.001,
		AuthRateLimitBurst: burst,
	}
	return newApp(newServices(db, cfg, nil, metrics.New(), zerolog.Nop()))
}

func request(t *testing.T, app *fiber.App, method, path, token string, body any) (int, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	raw, _ := io.ReadAll(resp.Body)
	out := map[string]any{}
	_ = json.Unmarshal(raw, &out)
	return resp.StatusCode, out
}

func registerAndLogin(t *testing.T, app *fiber.App, email, role, companyName string) string {
	t.Helper()
	status, body := request(t, app, "POST", "/api/auth/register", "", map[string]string{
		"full_name": "Test " + role, "email": email, "password": "password123",
		"role": role, "company_name": companyName,
	})
	if status != fiber.StatusCreated {
		t.Fatalf("register %s: got %d %v", email, status, body)
	}
	status, body = request(t, app, "POST", "/api/auth/login", "", map[string]string{"email": email, "password": "password123"})
	if status != fiber.StatusOK {
		t.Fatalf("login %s: got %d %v", email, status, body)
	}
	return body["token"].(string)
}

func TestRouteAccess(t *testing.T) {
	app := newTestServer(t, 100)

	if status, _ := request(t, app, "GET", "/api/jobs", "", nil); status != fiber.StatusOK {
		t.Fatalf("public listing: expected 200, got %d", status)
	}
	if status, _ := request(t, app, "GET", "/api/jobs/mine", "", nil); status != fiber.StatusUnauthorized {
		t.Fatalf("own jobs without token: expected 401, got %d", status)
	}

	hm := registerAndLogin(t, app, "alice@acme.test", "HIRING_MANAGER", "Acme")
	cand := registerAndLogin(t, app, "bob@example.test", "CANDIDATE", "")

	status, companies := request(t, app, "GET", "/api/auth/me", hm, nil)
	if status != fiber.StatusOK {
		t.Fatalf("me: got %d", status)
	}
	companyID := companies["companies"].([]any)[0].(map[string]any)["id"]

	job := map[string]any{"title": "Backend Engineer", "description": "APIs", "location": "Remote", "employment_type": "FULL_TIME", "company_id": companyID, "status": "CLOSED"}
	if status, _ := request(t, app, "POST", "/api/jobs", cand, job); status != fiber.StatusForbidden {
		t.Fatalf("candidate posting a job: expected 403, got %d", status)
	}
	status, created := request(t, app, "POST", "/api/jobs", hm, job)
	if status != fiber.StatusCreated || created["status"] != "OPEN" {
		t.Fatalf("create job: got %d %v", status, created)
	}
	jobPath := "/api/jobs/" + jsonID(created["id"])

	if status, got := request(t, app, "GET", jobPath, "", nil); status != fiber.StatusOK || got["title"] != "Backend Engineer" {
		t.Fatalf("public job detail: got %d %v", status, got)
	}
	if status, _ := request(t, app, "GET", "/api/jobs/mine", hm, nil); status != fiber.StatusOK {
		t.Fatalf("own jobs: expected 200, got %d", status)
	}

	if status, _ := request(t, app, "POST", jobPath+"/applications", hm, map[string]string{"cover_letter": "Hi"}); status != fiber.StatusForbidden {
		t.Fatalf("hiring manager applying: expected 403, got %d", status)
	}
	if status, _ := request(t, app, "POST", jobPath+"/applications", cand, map[string]string{"cover_letter": "Hi"}); status != fiber.StatusCreated {
		t.Fatalf("candidate applying: expected 201, got %d", status)
	}

	if status, _ := request(t, app, "GET", "/api/admin/dashboard", hm, nil); status != fiber.StatusForbidden {
		t.Fatalf("admin dashboard for non-admin: expected 403, got %d", status)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	app := newTestServer(t, 100)
	registerAndLogin(t, app, "bob@example.test", "CANDIDATE", "")

	resp, err := app.Test(httptest.NewRequest("GET", "/metrics", nil))
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != fiber.StatusOK || !strings.Contains(string(raw), `jobboard_registrations_total{role="CANDIDATE"} 1`) {
		t.Fatalf("unexpected metrics output: %d\n%s", resp.StatusCode, raw)
	}
}

func TestAuthRateLimit(t *testing.T) {
	app := newTestServer(t, 2)
	creds := map[string]string{"email": "nobody@example.test", "password": "whatever1"}

	for i := 0; i < 2; i++ {
		if status, _ := request(t, app, "POST", "/api/auth/login", "", creds); status != fiber.StatusUnauthorized {
			t.Fatalf("attempt %d: expected 401, got %d", i+1, status)
		}
	}
	if status, _ := request(t, app, "POST", "/api/auth/login", "", creds); status != fiber.StatusTooManyRequests {
		t.Fatalf("expected 429 once the burst is spent, got %d", status)
	}
}

func jsonID(v any) string {
	b, _ := json.Marshal(v)
	return string(b)
}

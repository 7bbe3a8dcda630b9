package auth

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"jobboard-backend/internal/company"
	"jobboard-backend/internal/httpx"
	"jobboard-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

func newTestApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()
	svc, db := newTestService(t)
	issuer := NewTokenIssuer(testSecret, time.Hour)
	companies := company.NewService(db, zerolog.Nop())

	app := fiber.New(fiber.Config{ErrorHandler: httpx.ErrorHandler(zerolog.Nop())})
	api := app.Group("/api")
	api.Post("/auth/register", RegisterHandler(svc))
	api.Post("/auth/login", LoginHandler(svc, issuer))

	protected := api.Group("", JWTMiddleware(issuer, svc))
	protected.Get("/auth/me", MeHandler(companies))
	protected.Get("/admin/ping", RequireRole(models.RoleSuperAdmin), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})
	return app, db
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body any) (*http.Response, map[string]any) {
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
	out := map[string]any{}
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp, out
}

func TestRegisterLoginMeFlow(t *testing.T) {
	app, _ := newTestApp(t)

	resp, body := doJSON(t, app, "POST", "/api/auth/register", "", RegisterRequest{
		FullName: "Alice", Email: "alice@acme.test", Password: "supersecret",
		Role: "HIRING_MANAGER", CompanyName: "Acme",
	})
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("register: expected 201, got %d %v", resp.StatusCode, body)
	}

	resp, body = doJSON(t, app, "POST", "/api/auth/register", "", RegisterRequest{
		FullName: "Alice", Email: "alice@acme.test", Password: "supersecret", Role: "CANDIDATE",
	})
	if resp.StatusCode != fiber.StatusConflict {
		t.Fatalf("duplicate register: expected 409, got %d %v", resp.StatusCode, body)
	}

	resp, body = doJSON(t, app, "POST", "/api/auth/login", "", LoginRequest{Email: "alice@acme.test", Password: "nope"})
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("bad login: expected 401, got %d", resp.StatusCode)
	}

	resp, body = doJSON(t, app, "POST", "/api/auth/login", "", LoginRequest{Email: "alice@acme.test", Password: "supersecret"})
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("login: expected 200, got %d %v", resp.StatusCode, body)
	}
	token, _ := body["token"].(string)
	if token == "" {
		t.Fatalf("login returned no token: %v", body)
	}

	resp, body = doJSON(t, app, "GET", "/api/auth/me", token, nil)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("me: expected 200, got %d", resp.StatusCode)
	}
	companies, _ := body["companies"].([]any)
	if len(companies) != 1 || companies[0].(map[string]any)["name"] != "Acme" {
		t.Fatalf("me: expected company Acme, got %v", body["companies"])
	}

	resp, _ = doJSON(t, app, "GET", "/api/admin/ping", token, nil)
	if resp.StatusCode != fiber.StatusForbidden {
		t.Fatalf("admin route: expected 403, got %d", resp.StatusCode)
	}
}

func TestJWTMiddlewareRejections(t *testing.T) {
	app, db := newTestApp(t)

	resp, _ := doJSON(t, app, "GET", "/api/auth/me", "", nil)
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("missing header: expected 401, got %d", resp.StatusCode)
	}
	resp, _ = doJSON(t, app, "GET", "/api/auth/me", "not-a-token", nil)
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("bad token: expected 401, got %d", resp.StatusCode)
	}

	disabled := &models.User{FullName: "Off", Email: "off@example.test", PasswordHash: "x", Enabled: true}
	db.Create(disabled)
	db.Model(disabled).Update("enabled", false)
	token, _ := NewTokenIssuer(testSecret, time.Hour).GenerateToken(disabled)
	resp, _ = doJSON(t, app, "GET", "/api/auth/me", token, nil)
	if resp.StatusCode != fiber.StatusForbidden {
		t.Fatalf("disabled user: expected 403, got %d", resp.StatusCode)
	}

	ghost, _ := NewTokenIssuer(testSecret, time.Hour).GenerateToken(&models.User{ID: 4242})
	resp, _ = doJSON(t, app, "GET", "/api/auth/me", ghost, nil)
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("deleted user: expected 401, got %d", resp.StatusCode)
	}
}

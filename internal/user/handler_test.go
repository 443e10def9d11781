package user

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
)

const testSecret = "test-secret"

// makeApp wires the handler behind a middleware that injects a jwt.Token into
// locals when the X-User-ID header is provided, standing in for jwtware.
func makeApp(h *Handler) *fiber.App {
	app := fiber.New()
	h.RegisterPublicRoutes(app)
	app.Use(func(c *fiber.Ctx) error {
		if v := c.Get("X-User-ID"); v != "" {
			c.Locals("user", &jwt.Token{Claims: jwt.MapClaims{"sub": v}})
		}
		return c.Next()
	})
	h.RegisterProtectedRoutes(app)
	return app
}

func newTestHandler(seed []User) (*Handler, *InMemoryRepository) {
	repo := NewInMemoryRepository(seed)
	service := NewService(repo, NewTokenIssuer(testSecret, 0))
	return NewHandler(service, slog.New(slog.DiscardHandler)), repo
}

func doJSON(t *testing.T, app *fiber.App, method, path, body string, headers map[string]string) (int, string, map[string][]string) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	res, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}
	b, _ := io.ReadAll(res.Body)
	return res.StatusCode, string(b), res.Header
}

func TestAuthRoutesRegistered(t *testing.T) {
	h, _ := newTestHandler(nil)
	app := makeApp(h)

	routes := map[string]bool{}
	for _, grp := range app.Stack() {
		for _, r := range grp {
			routes[r.Method+" "+r.Path] = true
		}
	}
	for _, want := range []string{
		"POST /api/auth/register",
		"POST /api/auth/login",
		"PATCH /api/auth/update-profile",
	} {
		if !routes[want] {
			t.Fatalf("expected route %q to be registered", want)
		}
	}
}

func TestRegister(t *testing.T) {
	h, repo := newTestHandler(nil)
	app := makeApp(h)

	body := `{"full_name":"  An Nguyen ","email":"An@Example.com","password":"secret1","date_of_birth":null}`
	status, resp, _ := doJSON(t, app, "POST", "/api/auth/register", body, nil)
	if status != fiber.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", status, resp)
	}
	if strings.Contains(resp, "password") {
		t.Fatalf("response must not expose the password hash: %s", resp)
	}

	var created User
	if err := json.Unmarshal([]byte(resp), &created); err != nil {
		t.Fatalf("decode user: %v", err)
	}
	if created.ID == "" || created.FullName != "An Nguyen" || created.Email != "an@example.com" {
		t.Fatalf("unexpected user %+v", created)
	}
	if created.DateOfBirth != nil || created.Gender != "" {
		t.Fatalf("profile fields should be empty, got %+v", created)
	}

	stored, err := repo.GetByEmail(t.Context(), "an@example.com")
	if err != nil {
		t.Fatalf("user not stored: %v", err)
	}
	if stored.HashedPassword == "secret1" || !strings.HasPrefix(stored.HashedPassword, "$2") {
		t.Fatalf("password should be bcrypt hashed, got %q", stored.HashedPassword)
	}

	status, resp, _ = doJSON(t, app, "POST", "/api/auth/register", body, nil)
	if status != fiber.StatusBadRequest {
		t.Fatalf("expected 400 for duplicate email, got %d", status)
	}
	if resp != `{"detail":"Email already registered"}` {
		t.Fatalf("unexpected duplicate body %s", resp)
	}
}

func TestRegister_ValidationProblems(t *testing.T) {
	h, _ := newTestHandler(nil)
	app := makeApp(h)

	status, resp, _ := doJSON(t, app, "POST", "/api/auth/register",
		`{"full_name":"Al","email":"not-an-email","password":"secret1"}`, nil)
	if status != fiber.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", status, resp)
	}
	if !strings.Contains(resp, `"loc":["body","email"]`) {
		t.Fatalf("expected problem located at body.email, got %s", resp)
	}

	status, resp, _ = doJSON(t, app, "POST", "/api/auth/register",
		`{"full_name":"Al","email":"al@example.com","password":"secret1","date_of_birth":"2999-01-01"}`, nil)
	if status != fiber.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for future birth date, got %d", status)
	}
	if !strings.Contains(resp, "date must be in the past") {
		t.Fatalf("unexpected body %s", resp)
	}

	status, _, _ = doJSON(t, app, "POST", "/api/auth/register", `{"full_name":`, nil)
	if status != fiber.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for malformed JSON, got %d", status)
	}
}

func TestLogin(t *testing.T) {
	h, _ := newTestHandler(nil)
	app := makeApp(h)

	status, _, _ := doJSON(t, app, "POST", "/api/auth/register",
		`{"full_name":"Binh Tran","email":"binh@example.com","password":"secret1"}`, nil)
	if status != fiber.StatusCreated {
		t.Fatalf("register failed with %d", status)
	}

	status, resp, _ := doJSON(t, app, "POST", "/api/auth/login",
		`{"email":"binh@example.com","password":"secret1"}`, nil)
	if status != fiber.StatusOK {
		t.Fatalf("expected 200, got %d: %s", status, resp)
	}
	var tr TokenResponse
	if err := json.Unmarshal([]byte(resp), &tr); err != nil {
		t.Fatalf("decode token response: %v", err)
	}
	if tr.TokenType != "bearer" || tr.User.Email != "binh@example.com" {
		t.Fatalf("unexpected token response %+v", tr)
	}

	tok, err := jwt.Parse(tr.AccessToken, func(*jwt.Token) (any, error) { return []byte(testSecret), nil })
	if err != nil || !tok.Valid {
		t.Fatalf("token should verify: %v", err)
	}
	if sub := tok.Claims.(jwt.MapClaims)["sub"]; sub != tr.User.ID {
		t.Fatalf("expected sub %q, got %v", tr.User.ID, sub)
	}

	status, resp, headers := doJSON(t, app, "POST", "/api/auth/login",
		`{"email":"binh@example.com","password":"wrong-password"}`, nil)
	if status != fiber.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", status)
	}
	if got := headers["Www-Authenticate"]; len(got) == 0 || got[0] != "Bearer" {
		t.Fatalf("expected WWW-Authenticate: Bearer, got %v", got)
	}
	if resp != `{"detail":"Invalid email or password"}` {
		t.Fatalf("unexpected body %s", resp)
	}
}

func TestUpdateProfile(t *testing.T) {
	h, _ := newTestHandler([]User{{ID: "u-15", FullName: "Chi Le", Email: "chi@example.com"}})
	app := makeApp(h)

	body := `{"gender":"female","date_of_birth":"1995-04-30"}`
	status, _, _ := doJSON(t, app, "PATCH", "/api/auth/update-profile", body, nil)
	if status != fiber.StatusUnauthorized {
		t.Fatalf("expected 401 without a token, got %d", status)
	}

	status, resp, _ := doJSON(t, app, "PATCH", "/api/auth/update-profile", body, map[string]string{"X-User-ID": "u-15"})
	if status != fiber.StatusOK {
		t.Fatalf("expected 200, got %d: %s", status, resp)
	}
	var updated User
	if err := json.Unmarshal([]byte(resp), &updated); err != nil {
		t.Fatalf("decode user: %v", err)
	}
	if updated.Gender != "female" || updated.DateOfBirth == nil || updated.DateOfBirth.Format("2006-01-02") != "1995-04-30" {
		t.Fatalf("profile not updated: %+v", updated)
	}

	status, _, _ = doJSON(t, app, "PATCH", "/api/auth/update-profile", `{"gender":"unknown"}`, map[string]string{"X-User-ID": "u-15"})
	if status != fiber.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for unknown gender, got %d", status)
	}

	status, _, _ = doJSON(t, app, "PATCH", "/api/auth/update-profile", body, map[string]string{"X-User-ID": "missing"})
	if status != fiber.StatusNotFound {
		t.Fatalf("expected 404 for unknown user, got %d", status)
	}
}

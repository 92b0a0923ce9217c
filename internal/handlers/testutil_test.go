package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/artsearch/backend/internal/artsy"
	"github.com/artsearch/backend/internal/config"
	"github.com/artsearch/backend/internal/middleware"
	"github.com/artsearch/backend/internal/models"
	"github.com/artsearch/backend/internal/services"
	"github.com/artsearch/backend/pkg/logger"
	"github.com/artsearch/backend/pkg/utils"
	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"gorm.io/gorm"
)

const testJWTSecret = "test-secret"

type testEnv struct {
	app   *fiber.App
	db    *gorm.DB
	artsy *fakeArtsy
}

var testSetupOnce sync.Once

// fakeArtsy stands in for the upstream catalog API. It issues numbered
// XAPP tokens and rejects catalog calls that do not carry the latest
// one, which lets tests exercise the refresh-and-retry path.
type fakeArtsy struct {
	mu         sync.Mutex
	server     *httptest.Server
	tokenCalls int
	// When true, the next catalog call is rejected with 401 even if
	// the token is current.
	rejectNextCall bool
	// When true, catalog calls fail with 500 regardless of token.
	failAll bool
}

func (f *fakeArtsy) currentToken() string {
	return fmt.Sprintf("xapp-token-%d", f.tokenCalls)
}

func (f *fakeArtsy) handler(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if r.URL.Path == "/api/tokens/xapp_token" {
		f.tokenCalls++
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"token":%q}`, f.currentToken())
		return
	}

	if f.failAll {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	if f.rejectNextCall || r.Header.Get("X-Xapp-Token") != f.currentToken() {
		f.rejectNextCall = false
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.URL.Path == "/api/search":
		fmt.Fprint(w, `{"_embedded":{"results":[
			{"og_type":"artist","title":"Pablo Picasso","_links":{"self":{"href":"https://api.artsy.net/api/artists/pablo-picasso"},"thumbnail":{"href":"https://img.test/picasso.jpg"}}},
			{"og_type":"article","title":"Not An Artist","_links":{"self":{"href":"https://api.artsy.net/api/articles/ignored"}}},
			{"og_type":"artist","title":"Mark Rothko","_links":{"self":{"href":"https://api.artsy.net/api/artists/mark-rothko"}}}
		]}}`)
	case r.URL.Path == "/api/artists/pablo-picasso":
		fmt.Fprint(w, `{"id":"pablo-picasso","name":"Pablo Picasso","birthday":"1881","deathday":"1973","nationality":"Spanish","biography":"Co-founder of Cubism.","_links":{"thumbnail":{"href":"https://img.test/picasso.jpg"}}}`)
	case r.URL.Path == "/api/artworks":
		fmt.Fprint(w, `{"_embedded":{"artworks":[{"id":"guernica","title":"Guernica","date":"1937","_links":{"thumbnail":{"href":"https://img.test/guernica.jpg"}}}]}}`)
	case r.URL.Path == "/api/genes":
		fmt.Fprint(w, `{"_embedded":{"genes":[{"name":"Cubism","_links":{"thumbnail":{"href":"https://img.test/cubism.jpg"}}},{"name":"Modernism","_links":{}}]}}`)
	case r.URL.Path == "/api/artists":
		fmt.Fprint(w, `{"_embedded":{"artists":[{"id":"georges-braque","name":"Georges Braque","birthday":"1882","deathday":"1963","nationality":"French","_links":{"thumbnail":{"href":"https://img.test/braque.jpg"}}}]}}`)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	testSetupOnce.Do(func() {
		logger.Init()
		utils.ConfigureJWT(testJWTSecret, 60)
	})

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed opening in-memory sqlite database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed getting sql.DB from gorm: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	err = db.AutoMigrate(
		&models.User{},
		&models.Favorite{},
		&models.AuditLog{},
	)
	if err != nil {
		t.Fatalf("failed automigrating models: %v", err)
	}

	fake := &fakeArtsy{}
	fake.server = httptest.NewServer(http.HandlerFunc(fake.handler))
	t.Cleanup(fake.server.Close)

	artsyClient := artsy.NewClient(config.ArtsyConfig{
		BaseURL:      fake.server.URL,
		ClientID:     "test-client",
		ClientSecret: "test-secret",
	})

	auditService := services.NewAuditService(db)

	authHandler := NewAuthHandler(db, auditService)
	favoritesHandler := NewFavoritesHandler(db, auditService)
	catalogHandler := NewCatalogHandler(artsyClient, auditService)
	authMiddleware := middleware.NewAuthMiddleware(db)

	app := fiber.New()
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "ok"})
	})

	app.Post("/register", authHandler.Register)
	app.Post("/login", authHandler.Login)
	app.Post("/logout", authHandler.Logout)
	app.Get("/me", authMiddleware.RequireAuth, authHandler.Me)
	app.Delete("/deleteUser", authMiddleware.RequireAuth, authHandler.DeleteUser)

	app.Post("/updateFavorites", authMiddleware.RequireAuth, favoritesHandler.Update)

	app.Get("/searchArtists", authMiddleware.OptionalAuth, catalogHandler.SearchArtists)
	app.Get("/fetchArtistData", catalogHandler.FetchArtistData)
	app.Get("/fetchArtworkData", catalogHandler.FetchArtworkData)
	app.Get("/fetchCategories", catalogHandler.FetchCategories)
	app.Get("/getSimilarArtistData", catalogHandler.GetSimilarArtistData)

	return &testEnv{app: app, db: db, artsy: fake}
}

func performRequest(t *testing.T, app *fiber.App, method, path string, body io.Reader, headers map[string]string, cookies ...*http.Cookie) *http.Response {
	t.Helper()

	req := httptest.NewRequest(method, path, body)
	for key, value := range headers {
		req.Header.Set(key, value)
	}
	for _, cookie := range cookies {
		if cookie != nil {
			req.AddCookie(cookie)
		}
	}

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("request %s %s failed: %v", method, path, err)
	}
	return resp
}

func performJSONRequest(t *testing.T, app *fiber.App, method, path string, payload any, cookies ...*http.Cookie) *http.Response {
	t.Helper()

	encoded, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("failed encoding request payload: %v", err)
	}

	return performRequest(t, app, method, path, bytes.NewReader(encoded), map[string]string{
		"Content-Type": "application/json",
	}, cookies...)
}

func decodeJSONMap(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()

	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("failed decoding response body: %v", err)
	}
	return body
}

func sessionCookie(t *testing.T, resp *http.Response) *http.Cookie {
	t.Helper()

	for _, cookie := range resp.Cookies() {
		if cookie.Name == middleware.SessionCookieName {
			return cookie
		}
	}
	t.Fatal("expected response to set a session cookie")
	return nil
}

// registerTestUser registers a fresh user and returns its session
// cookie together with the decoded response body.
func registerTestUser(t *testing.T, env *testEnv, fullname, email, password string) (*http.Cookie, map[string]any) {
	t.Helper()

	resp := performJSONRequest(t, env.app, http.MethodPost, "/register", map[string]any{
		"fullname": fullname,
		"email":    email,
		"password": password,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected registration to succeed, got status %d", resp.StatusCode)
	}

	cookie := sessionCookie(t, resp)
	body := decodeJSONMap(t, resp)
	return cookie, body
}

func assertErrorResponse(t *testing.T, resp *http.Response, expectedStatus int, expectedMessage string) {
	t.Helper()

	body := decodeJSONMap(t, resp)
	if resp.StatusCode != expectedStatus {
		t.Fatalf("expected status code %d, got %d (body %v)", expectedStatus, resp.StatusCode, body)
	}

	errMessage, ok := body["error"].(string)
	if !ok {
		t.Fatalf("expected error field to be string, got %T", body["error"])
	}
	if errMessage != expectedMessage {
		t.Fatalf("expected error message %q, got %q", expectedMessage, errMessage)
	}
}

func favoritesFromBody(t *testing.T, body map[string]any) []map[string]any {
	t.Helper()

	raw, ok := body["favorites"].([]any)
	if !ok {
		t.Fatalf("expected favorites array, got %T", body["favorites"])
	}

	favorites := make([]map[string]any, 0, len(raw))
	for _, item := range raw {
		favorite, ok := item.(map[string]any)
		if !ok {
			t.Fatalf("expected favorite object, got %T", item)
		}
		favorites = append(favorites, favorite)
	}
	return favorites
}

package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"splitease/internal/config"
	"splitease/internal/logger"
	"splitease/internal/testutil"
	"splitease/internal/validator"
)

const testServiceKey = "test-service-key"

// testApp holds the full application stack for end-to-end tests.
type testApp struct {
	DB     *gorm.DB
	Router *gin.Engine
}

func init() {
	gin.SetMode(gin.TestMode)
	logger.Init("test")
	validator.Register()
}

// setupApp builds the real router over an isolated in-memory SQLite.
func setupApp(t *testing.T) *testApp {
	t.Helper()

	cfg := &config.Config{
		Env:              "test",
		JWTSecret:        "test-secret",
		JWTExpirationDur: time.Hour,
		ServiceAPIKey:    testServiceKey,
		MetricsEnabled:   true,
	}
	config.Set(cfg)

	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.TeardownTestDB(t, db) })

	return &testApp{DB: db, Router: NewRouter(Deps{DB: db, Config: cfg})}
}

// request makes an HTTP request to the test router and returns the recorder.
func (app *testApp) request(method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	return rec
}

// serviceRequest calls an /internal route with the given X-API-Key.
func (app *testApp) serviceRequest(method, path, apiKey string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if apiKey != "" {
		req.Header.Set("X-API-Key", apiKey)
	}
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	return rec
}

// mustRequest is request plus a status check.
func (app *testApp) mustRequest(t *testing.T, method, path, body, token string, want int) map[string]interface{} {
	t.Helper()
	rec := app.request(method, path, body, token)
	if rec.Code != want {
		t.Fatalf("%s %s: expected %d, got %d: %s", method, path, want, rec.Code, rec.Body.String())
	}
	if rec.Body.Len() == 0 {
		return nil
	}
	return parseJSON(t, rec)
}

// parseJSON parses the response body into a map.
func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

func assertErrorCode(t *testing.T, rec *httptest.ResponseRecorder, code string) {
	t.Helper()
	errObj, ok := parseJSON(t, rec)["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected error object, got: %s", rec.Body.String())
	}
	if errObj["code"] != code {
		t.Errorf("expected error code %q, got %q", code, errObj["code"])
	}
}

// amountOf reads a JSON decimal string.
func amountOf(t *testing.T, v interface{}) decimal.Decimal {
	t.Helper()
	s, ok := v.(string)
	if !ok {
		t.Fatalf("expected decimal string, got %T %v", v, v)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("bad decimal %q: %v", s, err)
	}
	return d
}

func assertAmount(t *testing.T, v interface{}, want string) {
	t.Helper()
	if got := amountOf(t, v); !got.Equal(decimal.RequireFromString(want)) {
		t.Errorf("expected amount %s, got %s", want, got)
	}
}

// registerUser registers a new user and returns the token and user ID.
func (app *testApp) registerUser(t *testing.T, email, name string) (token, userID string) {
	t.Helper()
	body := fmt.Sprintf(`{"email":%q,"password":"password123","name":%q}`, email, name)
	result := app.mustRequest(t, "POST", "/api/v1/auth/register", body, "", http.StatusCreated)
	user := result["user"].(map[string]interface{})
	return result["token"].(string), user["id"].(string)
}

// createGroup creates a group owned by token's user and adds the given emails.
func (app *testApp) createGroup(t *testing.T, token, name string, memberEmails ...string) string {
	t.Helper()
	result := app.mustRequest(t, "POST", "/api/v1/groups", fmt.Sprintf(`{"name":%q}`, name), token, http.StatusCreated)
	groupID := result["group"].(map[string]interface{})["id"].(string)
	for _, email := range memberEmails {
		app.mustRequest(t, "POST", "/api/v1/groups/"+groupID+"/members",
			fmt.Sprintf(`{"email":%q}`, email), token, http.StatusCreated)
	}
	return groupID
}

// addExpense records an equal-split expense paid by token's user.
func (app *testApp) addExpense(t *testing.T, token, groupID, amount, description string) string {
	t.Helper()
	body := fmt.Sprintf(`{"amount":%q,"description":%q,"date":"2024-03-01"}`, amount, description)
	result := app.mustRequest(t, "POST", "/api/v1/groups/"+groupID+"/expenses", body, token, http.StatusCreated)
	return result["expense"].(map[string]interface{})["id"].(string)
}

// netByUser maps user ID to net from a group balances response.
func netByUser(t *testing.T, result map[string]interface{}) map[string]decimal.Decimal {
	t.Helper()
	out := map[string]decimal.Decimal{}
	for _, m := range result["members"].([]interface{}) {
		member := m.(map[string]interface{})
		out[member["user_id"].(string)] = amountOf(t, member["net"])
	}
	return out
}

package app

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/SHADOW0715/Hostel-Management-System/internal/config"
	"github.com/SHADOW0715/Hostel-Management-System/internal/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		Env:      "test",
		LogLevel: "error",
		Server:   config.ServerConfig{Port: "0", CORSOrigins: []string{"http://localhost:3000"}},
		GRPC:     config.GRPCConfig{Port: "0"},
		Storage:  config.StorageConfig{Backend: "memory"},
		Auth: config.AuthConfig{
			JWTSecret:       "test-secret",
			TokenTTLMinutes: 60,
			AdminUsername:   "admin",
			AdminPassword:   "warden123",
		},
		Billing: config.BillingConfig{
			Enabled:       true,
			Schedule:      "0 6 1 * *",
			MonthlyAmount: 1500,
			RoomChangeFee: 50,
		},
	}
}

func newTestApp(t *testing.T) *App {
	t.Helper()

	a, err := NewWithConfig(context.Background(), testConfig(), logger.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Shutdown(context.Background()) })
	return a
}

func do(t *testing.T, h http.Handler, method, path, token string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func login(t *testing.T, h http.Handler, path string, payload interface{}) string {
	t.Helper()

	w := do(t, h, http.MethodPost, path, "", payload)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func TestApp(t *testing.T) {
	t.Run("Health", func(t *testing.T) {
		h := newTestApp(t).Handler()

		assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/health", "", nil).Code)
		assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/ready", "", nil).Code)
	})

	t.Run("PublicRooms_SeededGrid", func(t *testing.T) {
		h := newTestApp(t).Handler()

		w := do(t, h, http.MethodGet, "/api/public/rooms", "", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var rooms []map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rooms))
		assert.Len(t, rooms, 19*17)
	})

	t.Run("Admin_RequiresToken", func(t *testing.T) {
		h := newTestApp(t).Handler()

		assert.Equal(t, http.StatusUnauthorized, do(t, h, http.MethodGet, "/api/admin/students", "", nil).Code)
	})

	t.Run("AdminLogin_WrongPassword", func(t *testing.T) {
		h := newTestApp(t).Handler()

		w := do(t, h, http.MethodPost, "/auth/admin/login", "", map[string]string{"username": "admin", "password": "nope"})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("AllotThenStudentFlow", func(t *testing.T) {
		h := newTestApp(t).Handler()

		adminToken := login(t, h, "/auth/admin/login", map[string]string{"username": "admin", "password": "warden123"})

		w := do(t, h, http.MethodPost, "/api/admin/allotments", adminToken, map[string]interface{}{
			"studentId":     "STU900",
			"name":          "Meera",
			"dept":          "CSE",
			"year":          1,
			"roomId":        "301",
			"paymentStatus": "Paid",
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		studentToken := login(t, h, "/auth/student/login", map[string]string{"allotmentId": "STU900", "roomNo": "301"})

		assert.Equal(t, http.StatusForbidden, do(t, h, http.MethodGet, "/api/admin/students", studentToken, nil).Code)

		w = do(t, h, http.MethodPost, "/api/student/complaints", studentToken, map[string]string{
			"title": "Fan broken",
			"body":  "The ceiling fan does not turn on.",
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		w = do(t, h, http.MethodGet, "/api/admin/complaints", adminToken, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Fan broken")

		w = do(t, h, http.MethodGet, "/api/student/me", studentToken, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Meera")
	})

	t.Run("BillingScheduler_RunOnce", func(t *testing.T) {
		a := newTestApp(t)
		require.NotNil(t, a.billing)

		_, err := a.billing.RunOnce(context.Background())
		require.NoError(t, err)
		assert.Equal(t, len(a.store.Allotments()), countFeesFor(a, a.store.CurrentMonth()))

		again, err := a.billing.RunOnce(context.Background())
		require.NoError(t, err)
		assert.Empty(t, again)
	})

	t.Run("NewWithConfig_RequiresAdminCredential", func(t *testing.T) {
		cfg := testConfig()
		cfg.Auth.AdminPassword = ""

		_, err := NewWithConfig(context.Background(), cfg, logger.Discard())
		assert.Error(t, err)
	})
}

func countFeesFor(a *App, month string) int {
	n := 0
	for _, f := range a.store.MonthlyFees() {
		if f.Month == month {
			n++
		}
	}
	return n
}

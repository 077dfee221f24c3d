package auth_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/SHADOW0715/Hostel-Management-System/internal/auth"
	"github.com/SHADOW0715/Hostel-Management-System/internal/metrics"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubStudent struct {
	Name   string `json:"name"`
	RoomID string `json:"roomId"`
}

type studentsStub map[string]stubStudent

func (s studentsStub) AuthenticateStudent(_ context.Context, allotmentID, roomNo string) (auth.Principal, error) {
	st, ok := s[allotmentID]
	if !ok || st.RoomID != roomNo {
		return auth.Principal{}, auth.ErrInvalidCredentials
	}
	return auth.Principal{Subject: allotmentID, Name: st.Name, Profile: st}, nil
}

func setupRouter(t *testing.T) (*chi.Mux, *auth.TokenIssuer) {
	t.Helper()

	hash, err := auth.HashPassword("warden-pass")
	require.NoError(t, err)
	admin, err := auth.NewBcryptAdmin("warden", hash)
	require.NoError(t, err)

	tokens := auth.NewTokenIssuer("test-secret-key-for-testing", time.Hour)
	students := studentsStub{"STU001": {Name: "Asha", RoomID: "101"}}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	r := chi.NewRouter()
	auth.NewHandler(tokens, admin, students, logger, metrics.NewMock(), false).RegisterRoutes(r)

	r.With(auth.RequireRole(tokens, auth.RoleAdmin, logger)).Get("/admin/ping", func(w http.ResponseWriter, r *http.Request) {
		subject, _ := auth.SubjectFrom(r.Context())
		w.Write([]byte(subject))
	})
	r.With(auth.RequireRole(tokens, auth.RoleStudent, logger)).Get("/student/ping", func(w http.ResponseWriter, r *http.Request) {
		subject, _ := auth.SubjectFrom(r.Context())
		w.Write([]byte(subject))
	})
	return r, tokens
}

func post(router http.Handler, path string, payload interface{}) *httptest.ResponseRecorder {
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func tokenCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == "token" {
			return c
		}
	}
	t.Fatal("token cookie not set")
	return nil
}

func TestAuthHandler(t *testing.T) {
	router, tokens := setupRouter(t)

	t.Run("AdminLogin_Success", func(t *testing.T) {
		w := post(router, "/auth/admin/login", map[string]string{"username": "warden", "password": "warden-pass"})
		require.Equal(t, http.StatusOK, w.Code)

		var resp auth.LoginResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Equal(t, auth.RoleAdmin, resp.Role)
		assert.NotEmpty(t, resp.Token)

		cookie := tokenCookie(t, w)
		assert.True(t, cookie.HttpOnly)
		assert.Equal(t, resp.Token, cookie.Value)

		req := httptest.NewRequest(http.MethodGet, "/admin/ping", nil)
		req.AddCookie(cookie)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "warden", rec.Body.String())
	})

	t.Run("AdminLogin_WrongPassword", func(t *testing.T) {
		w := post(router, "/auth/admin/login", map[string]string{"username": "warden", "password": "nope"})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("AdminLogin_MissingFields", func(t *testing.T) {
		w := post(router, "/auth/admin/login", map[string]string{"username": "warden"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("StudentLogin_Success", func(t *testing.T) {
		w := post(router, "/auth/student/login", map[string]string{"allotmentId": "STU001", "roomNo": "101"})
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			auth.LoginResponse
			Student stubStudent `json:"student"`
		}
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Equal(t, auth.RoleStudent, resp.Role)
		assert.Equal(t, "Asha", resp.Student.Name)

		req := httptest.NewRequest(http.MethodGet, "/student/ping", nil)
		req.Header.Set("Authorization", "Bearer "+resp.Token)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "STU001", rec.Body.String())
	})

	t.Run("StudentLogin_WrongRoom", func(t *testing.T) {
		w := post(router, "/auth/student/login", map[string]string{"allotmentId": "STU001", "roomNo": "102"})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("RequireRole_WrongRole", func(t *testing.T) {
		token, _, err := tokens.Issue(auth.RoleStudent, "STU001", "Asha")
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/admin/ping", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("RequireRole_NoToken", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/student/ping", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Logout_ClearsCookie", func(t *testing.T) {
		w := post(router, "/auth/logout", nil)
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, -1, tokenCookie(t, w).MaxAge)
	})
}

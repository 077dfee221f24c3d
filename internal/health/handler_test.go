package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(h *Handler, path string) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	h.RegisterRoutes(r)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestHandler(t *testing.T) {
	ok := CheckerFunc(func(context.Context) error { return nil })
	down := CheckerFunc(func(context.Context) error { return errors.New("connection refused") })

	t.Run("Health_AlwaysOK", func(t *testing.T) {
		w := serve(NewHandler(map[string]Checker{"storage": down}), "/health")
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Ready_AllUp", func(t *testing.T) {
		w := serve(NewHandler(map[string]Checker{"storage": ok, "nats": ok}), "/ready")
		require.Equal(t, http.StatusOK, w.Code)

		var resp HealthResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Equal(t, "ready", resp.Status)
		assert.Equal(t, "ok", resp.Checks["nats"])
	})

	t.Run("Ready_DependencyDown", func(t *testing.T) {
		w := serve(NewHandler(map[string]Checker{"storage": ok, "redis": down}), "/ready")
		require.Equal(t, http.StatusServiceUnavailable, w.Code)

		var resp HealthResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Equal(t, "connection refused", resp.Checks["redis"])
	})

	t.Run("Ready_NoChecks", func(t *testing.T) {
		w := serve(NewHandler(nil), "/ready")
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

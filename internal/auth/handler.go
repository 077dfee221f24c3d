package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/SHADOW0715/Hostel-Management-System/internal/httputil"
	"github.com/SHADOW0715/Hostel-Management-System/internal/metrics"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

// Principal is an authenticated caller. Profile is echoed in the login response.
type Principal struct {
	Subject string
	Name    string
	Profile interface{}
}

// StudentAuthenticator matches a student by allotment id and room number.
// It returns ErrInvalidCredentials when they do not match.
type StudentAuthenticator interface {
	AuthenticateStudent(ctx context.Context, allotmentID, roomNo string) (Principal, error)
}

type AdminLoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type StudentLoginRequest struct {
	AllotmentID string `json:"allotmentId" validate:"required"`
	RoomNo      string `json:"roomNo" validate:"required"`
}

type LoginResponse struct {
	Token     string      `json:"token"`
	Role      Role        `json:"role"`
	ExpiresAt time.Time   `json:"expiresAt"`
	Student   interface{} `json:"student,omitempty"`
}

type Handler struct {
	tokens       *TokenIssuer
	admins       AdminVerifier
	students     StudentAuthenticator
	logger       *slog.Logger
	metrics      *metrics.Metrics
	validator    *validator.Validate
	secureCookie bool
}

func NewHandler(tokens *TokenIssuer, admins AdminVerifier, students StudentAuthenticator, logger *slog.Logger, m *metrics.Metrics, secureCookie bool) *Handler {
	return &Handler{
		tokens:       tokens,
		admins:       admins,
		students:     students,
		logger:       logger,
		metrics:      m,
		validator:    validator.New(),
		secureCookie: secureCookie,
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/auth/admin/login", h.AdminLogin)
	r.Post("/auth/student/login", h.StudentLogin)
	r.Post("/auth/logout", h.Logout)
}

func (h *Handler) AdminLogin(w http.ResponseWriter, r *http.Request) {
	var req AdminLoginRequest
	if !h.decode(w, r, &req) {
		return
	}

	if h.admins == nil {
		httputil.RespondWithError(w, http.StatusUnauthorized, ErrInvalidCredentials.Error())
		return
	}
	if err := h.admins.VerifyAdmin(req.Username, req.Password); err != nil {
		h.metrics.RecordLogin(r.Context(), string(RoleAdmin), false)
		h.logger.WarnContext(r.Context(), "admin login failed", "username", req.Username)
		httputil.RespondWithError(w, http.StatusUnauthorized, ErrInvalidCredentials.Error())
		return
	}

	h.issue(w, r, RoleAdmin, Principal{Subject: req.Username, Name: req.Username})
}

func (h *Handler) StudentLogin(w http.ResponseWriter, r *http.Request) {
	var req StudentLoginRequest
	if !h.decode(w, r, &req) {
		return
	}

	student, err := h.students.AuthenticateStudent(r.Context(), req.AllotmentID, req.RoomNo)
	if err != nil {
		h.metrics.RecordLogin(r.Context(), string(RoleStudent), false)
		if errors.Is(err, ErrInvalidCredentials) {
			httputil.RespondWithError(w, http.StatusUnauthorized, err.Error())
			return
		}
		h.logger.ErrorContext(r.Context(), "student login failed", "error", err)
		httputil.RespondWithError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.issue(w, r, RoleStudent, student)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	ClearAuthCookie(w, h.secureCookie)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) issue(w http.ResponseWriter, r *http.Request, role Role, p Principal) {
	token, expiresAt, err := h.tokens.Issue(role, p.Subject, p.Name)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to issue token", "error", err)
		httputil.RespondWithError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.metrics.RecordLogin(r.Context(), string(role), true)
	h.logger.InfoContext(r.Context(), "logged in", "role", role, "subject", p.Subject)

	SetAuthCookie(w, token, h.tokens.TTL(), h.secureCookie)
	httputil.RespondWithJSON(w, http.StatusOK, LoginResponse{
		Token:     token,
		Role:      role,
		ExpiresAt: expiresAt,
		Student:   p.Profile,
	})
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := httputil.DecodeJSON(r, dst); err != nil {
		h.logger.WarnContext(r.Context(), "failed to decode request", "error", err)
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	if err := h.validator.Struct(dst); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

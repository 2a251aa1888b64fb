// Copyright (c) 2026 Aegis. All rights reserved.

package auth

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/aegis-id/aegis/internal/platform/request"
	"github.com/aegis-id/aegis/internal/platform/respond"
	"github.com/aegis-id/aegis/internal/platform/sec"
	"github.com/aegis-id/aegis/internal/platform/validate"
)

// # HTTP Handlers

// Handlers exposes the auth use cases over HTTP.
type Handlers struct {
	service *Service
}

// NewHandlers creates the auth HTTP handler set.
func NewHandlers(service *Service) *Handlers {
	return &Handlers{service: service}
}

// Routes returns the public auth router: login, refresh, logout.
// Registration is deliberately NOT here; it is admin-gated and mounted
// separately via [Handlers.AdminRoutes].
func (h *Handlers) Routes() chi.Router {
	router := chi.NewRouter()
	router.Post("/login", h.HandleLogin)
	router.Post("/refresh", h.HandleRefresh)
	router.Post("/logout", h.HandleLogout)
	return router
}

// AdminRoutes returns the router for administrative account operations.
// The caller is responsible for wrapping it in the admin role guard.
func (h *Handlers) AdminRoutes() chi.Router {
	router := chi.NewRouter()
	router.Post("/register", h.HandleRegister)
	return router
}

// # Request Payloads

type registerRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
	Role     string `json:"role"`
}

type loginRequest struct {
	// Username accepts a username or a phone number.
	Username string `json:"username"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type logoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// # Endpoints

/*
HandleRegister creates a new account (admin only).

	POST /api/v1/admin/register
	Body: {"username": "...", "password": "...", "phone": "...", "role": "user"}
*/
func (h *Handlers) HandleRegister(writer http.ResponseWriter, request *http.Request) {
	var payload registerRequest
	if err := requestutil.DecodeJSON(request, &payload); err != nil {
		respond.Error(writer, request, err)
		return
	}

	validator := &validate.Validator{}
	validator.
		Required(FieldUsername, payload.Username).
		MinLen(FieldUsername, payload.Username, UsernameMinLen).
		MaxLen(FieldUsername, payload.Username, UsernameMaxLen).
		Required(FieldPassword, payload.Password).
		MinLen(FieldPassword, payload.Password, PasswordMinLen).
		MaxLen(FieldPassword, payload.Password, PasswordMaxLen).
		Phone(FieldPhone, payload.Phone)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	role := sec.UserRole(payload.Role)
	if payload.Role != "" && role != sec.RoleUser && role != sec.RoleAdmin {
		respond.Error(writer, request, validate.FieldFailure(FieldRole, "Must be one of: user, admin"))
		return
	}

	user, err := h.service.Register(request.Context(), RegisterInput{
		Username: payload.Username,
		Password: payload.Password,
		Phone:    payload.Phone,
		Role:     role,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, user)
}

/*
HandleLogin verifies credentials and returns a token pair.

	POST /api/v1/auth/login
	Body: {"username": "<username or phone>", "password": "..."}
*/
func (h *Handlers) HandleLogin(writer http.ResponseWriter, request *http.Request) {
	var payload loginRequest
	if err := requestutil.DecodeJSON(request, &payload); err != nil {
		respond.Error(writer, request, err)
		return
	}

	validator := &validate.Validator{}
	validator.
		Required(FieldUsername, payload.Username).
		Required(FieldPassword, payload.Password)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	pair, err := h.service.Login(request.Context(), payload.Username, payload.Password)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, pair)
}

/*
HandleRefresh rotates a refresh token and returns a fresh pair.

	POST /api/v1/auth/refresh
	Body: {"refresh_token": "..."}
*/
func (h *Handlers) HandleRefresh(writer http.ResponseWriter, request *http.Request) {
	var payload refreshRequest
	if err := requestutil.DecodeJSON(request, &payload); err != nil {
		respond.Error(writer, request, err)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldRefreshToken, payload.RefreshToken)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	pair, err := h.service.Refresh(request.Context(), payload.RefreshToken)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, pair)
}

/*
HandleLogout revokes the caller's access token and retires the refresh token.

	POST /api/v1/auth/logout
	Authorization: Bearer <access token>   (optional)
	Body: {"refresh_token": "..."}         (optional)

Idempotent: logging out twice, or with already-expired tokens, still returns 200.
*/
func (h *Handlers) HandleLogout(writer http.ResponseWriter, request *http.Request) {
	// Body is optional; a bare logout with only the Bearer header is valid.
	var payload logoutRequest
	_ = requestutil.DecodeJSON(request, &payload)

	accessToken := requestutil.BearerToken(request)

	if err := h.service.Logout(request.Context(), accessToken, payload.RefreshToken); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Message(writer, "Logged out")
}

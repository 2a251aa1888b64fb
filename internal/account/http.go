// Copyright (c) 2026 Aegis. All rights reserved.

package account

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/aegis-id/aegis/internal/platform/request"
	"github.com/aegis-id/aegis/internal/platform/respond"
	"github.com/aegis-id/aegis/internal/platform/validate"
)

// Handlers exposes the profile endpoints. All routes here assume the
// authentication guard already ran; identity comes from the token claims,
// never from the URL.
type Handlers struct {
	service *Service
}

// NewHandlers creates the account HTTP handler set.
func NewHandlers(service *Service) *Handlers {
	return &Handlers{service: service}
}

// Routes returns the /users router for the signed-in user.
func (h *Handlers) Routes() chi.Router {
	router := chi.NewRouter()
	router.Get("/me", h.HandleGetProfile)
	router.Post("/me", h.HandleUpdateProfile)
	return router
}

type updateProfileRequest struct {
	Phone string `json:"phone"`
}

/*
HandleGetProfile returns the caller's own profile.

	GET /api/v1/users/me
*/
func (h *Handlers) HandleGetProfile(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	profile, err := h.service.GetProfile(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, profile)
}

/*
HandleUpdateProfile updates the caller's phone number.

	POST /api/v1/users/me
	Body: {"phone": "13812345678"}
*/
func (h *Handlers) HandleUpdateProfile(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var payload updateProfileRequest
	if err := requestutil.DecodeJSON(request, &payload); err != nil {
		respond.Error(writer, request, err)
		return
	}

	validator := &validate.Validator{}
	validator.
		Required("phone", payload.Phone).
		Phone("phone", payload.Phone)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	profile, err := h.service.UpdateProfile(request.Context(), userID, payload.Phone)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, profile)
}

package handler

import (
	"encoding/json"
	"net/http"

	"github.com/mcoot/registrar/internal/api/middleware"
	"github.com/mcoot/registrar/internal/api/request"
	"github.com/mcoot/registrar/internal/api/response"
	"github.com/mcoot/registrar/internal/services/registration"
)

// SessionHandler handles the two-step registration endpoints
type SessionHandler struct {
	controller *registration.Controller
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(controller *registration.Controller) *SessionHandler {
	return &SessionHandler{
		controller: controller,
	}
}

// Create handles POST /api/v1/sessions
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	session, err := h.controller.StartSession(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}

	response.Created(w, response.SessionLocation(session.ID), response.SessionFromModel(session))
}

// Get handles GET /api/v1/sessions/{id}
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	session := middleware.MustGetSession(r.Context())
	response.JSON(w, http.StatusOK, response.SessionFromModel(session))
}

// SubmitIdentity handles POST /api/v1/sessions/{id}/identity
func (h *SessionHandler) SubmitIdentity(w http.ResponseWriter, r *http.Request) {
	session := middleware.MustGetSession(r.Context())

	var req request.IdentityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	updated, fieldErrs, err := h.controller.SubmitIdentity(r.Context(), session.ID, req.ToInput())
	if err != nil {
		WriteError(w, err)
		return
	}
	if !fieldErrs.Empty() {
		WriteError(w, NewValidationError(fieldErrs))
		return
	}

	response.JSON(w, http.StatusOK, response.SessionFromModel(updated))
}

// Back handles POST /api/v1/sessions/{id}/back
func (h *SessionHandler) Back(w http.ResponseWriter, r *http.Request) {
	session := middleware.MustGetSession(r.Context())

	updated, err := h.controller.GoBack(r.Context(), session.ID)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.SessionFromModel(updated))
}

// SubmitCredentials handles POST /api/v1/sessions/{id}/credentials
func (h *SessionHandler) SubmitCredentials(w http.ResponseWriter, r *http.Request) {
	session := middleware.MustGetSession(r.Context())

	var req request.CredentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	registrant, fieldErrs, err := h.controller.SubmitCredentials(r.Context(), session.ID, req.ToInput())
	if err != nil {
		WriteError(w, err)
		return
	}
	if !fieldErrs.Empty() {
		WriteError(w, NewValidationError(fieldErrs))
		return
	}

	reset, err := h.controller.GetSession(r.Context(), session.ID)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.Created(w, response.RegistrantLocation(registrant.Email), response.Completed{
		Registrant: response.RegistrantFromModel(registrant),
		Session:    response.SessionFromModel(reset),
	})
}

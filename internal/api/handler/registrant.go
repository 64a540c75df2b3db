package handler

import (
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/gorilla/mux"

	"github.com/mcoot/registrar/internal/api/request"
	"github.com/mcoot/registrar/internal/api/response"
	"github.com/mcoot/registrar/internal/services/registration"
)

// RegistrantHandler handles registrant endpoints
type RegistrantHandler struct {
	controller *registration.Controller
}

// NewRegistrantHandler creates a new registrant handler
func NewRegistrantHandler(controller *registration.Controller) *RegistrantHandler {
	return &RegistrantHandler{
		controller: controller,
	}
}

// List handles GET /api/v1/registrants
func (h *RegistrantHandler) List(w http.ResponseWriter, r *http.Request) {
	registrants, err := h.controller.List(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.RegistrantListFromModel(registrants))
}

// Get handles GET /api/v1/registrants/{email}
func (h *RegistrantHandler) Get(w http.ResponseWriter, r *http.Request) {
	email, err := url.PathUnescape(mux.Vars(r)["email"])
	if err != nil || email == "" {
		WriteError(w, NewInvalidRequestError("invalid email"))
		return
	}

	registrant, err := h.controller.FindByEmail(r.Context(), email)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.RegistrantFromModel(registrant))
}

// Create handles POST /api/v1/registrants
func (h *RegistrantHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req request.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	registrant, fieldErrs, err := h.controller.Register(r.Context(), req.ToInput())
	if err != nil {
		WriteError(w, err)
		return
	}
	if !fieldErrs.Empty() {
		WriteError(w, NewValidationError(fieldErrs))
		return
	}

	response.Created(w, response.RegistrantLocation(registrant.Email), response.RegistrantFromModel(registrant))
}

package handler

import (
	"encoding/json"
	"net/http"

	"github.com/mcoot/registrar/internal/api/request"
	"github.com/mcoot/registrar/internal/api/response"
	"github.com/mcoot/registrar/internal/model"
	"github.com/mcoot/registrar/internal/validation"
)

// ValidateHandler exposes single-field validation
type ValidateHandler struct {
	validator *validation.Validator
}

// NewValidateHandler creates a new validate handler
func NewValidateHandler(validator *validation.Validator) *ValidateHandler {
	return &ValidateHandler{
		validator: validator,
	}
}

// Validate handles POST /api/v1/validate
func (h *ValidateHandler) Validate(w http.ResponseWriter, r *http.Request) {
	var req request.ValidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	kind, err := model.ParseFieldKind(req.Kind)
	if err != nil {
		WriteError(w, NewInvalidRequestError(err.Error()))
		return
	}

	result := h.validator.Validate(req.Value, kind)
	response.JSON(w, http.StatusOK, response.ValidationResult{
		Kind:    string(kind),
		Valid:   result.Valid,
		Message: result.Message,
	})
}

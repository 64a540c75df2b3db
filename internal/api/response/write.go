package response

import (
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/mcoot/registrar/internal/model"
)

// JSON writes data as the response body with the given status
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// Created writes a 201 whose Location header points at the new resource
func Created(w http.ResponseWriter, location string, data any) {
	w.Header().Set("Location", location)
	JSON(w, http.StatusCreated, data)
}

// RegistrantLocation is the API path of the registrant with email
func RegistrantLocation(email string) string {
	return "/api/v1/registrants/" + url.PathEscape(email)
}

// SessionLocation is the API path of a registration session
func SessionLocation(id model.SessionID) string {
	return "/api/v1/sessions/" + url.PathEscape(string(id))
}

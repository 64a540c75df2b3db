package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/mcoot/registrar/internal/middleware"
	"github.com/mcoot/registrar/internal/model"
	"github.com/mcoot/registrar/internal/services/registration"
	webmiddleware "github.com/mcoot/registrar/internal/web/middleware"
	"github.com/mcoot/registrar/internal/web/sse"
	"github.com/mcoot/registrar/internal/web/templates/components"
	"github.com/mcoot/registrar/internal/web/templates/layout"
	"github.com/mcoot/registrar/internal/web/templates/pages"
)

// RegistrationHandler serves the two-step form and the registrant table
type RegistrationHandler struct {
	controller *registration.Controller
	hub        *sse.Hub
	logger     *slog.Logger
}

// NewRegistrationHandler creates a new RegistrationHandler
func NewRegistrationHandler(controller *registration.Controller, hub *sse.Hub, logger *slog.Logger) *RegistrationHandler {
	return &RegistrationHandler{
		controller: controller,
		hub:        hub,
		logger:     logger,
	}
}

// Home renders the form at the session's current step
func (h *RegistrationHandler) Home(w http.ResponseWriter, r *http.Request) {
	session := webmiddleware.GetWizard(r.Context())
	h.renderPage(w, r, http.StatusOK, session, model.CredentialsInput{}, nil)
}

// Next handles POST /register/next
func (h *RegistrationHandler) Next(w http.ResponseWriter, r *http.Request) {
	session := webmiddleware.GetWizard(r.Context())

	if err := r.ParseForm(); err != nil {
		webmiddleware.SetFlash(w, webmiddleware.FlashError, "Invalid form data")
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	identity := model.IdentityInput{
		FirstName: r.FormValue("first_name"),
		LastName:  r.FormValue("last_name"),
		Email:     r.FormValue("email"),
	}

	updated, errs, err := h.controller.SubmitIdentity(r.Context(), session.ID, identity)
	if err != nil {
		h.redirectWithError(w, r, err)
		return
	}
	if !errs.Empty() {
		h.renderPage(w, r, http.StatusUnprocessableEntity, updated, model.CredentialsInput{}, errs)
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Back handles POST /register/back
func (h *RegistrationHandler) Back(w http.ResponseWriter, r *http.Request) {
	session := webmiddleware.GetWizard(r.Context())

	if _, err := h.controller.GoBack(r.Context(), session.ID); err != nil {
		h.redirectWithError(w, r, err)
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Save handles POST /register/save
func (h *RegistrationHandler) Save(w http.ResponseWriter, r *http.Request) {
	session := webmiddleware.GetWizard(r.Context())

	if err := r.ParseForm(); err != nil {
		webmiddleware.SetFlash(w, webmiddleware.FlashError, "Invalid form data")
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	creds := model.CredentialsInput{
		Password:        r.FormValue("password"),
		ConfirmPassword: r.FormValue("confirm_password"),
		DateOfBirth:     r.FormValue("date_of_birth"),
		Gender:          r.FormValue("gender"),
		Note:            r.FormValue("note"),
	}

	registrant, errs, err := h.controller.SubmitCredentials(r.Context(), session.ID, creds)
	if err != nil {
		h.redirectWithError(w, r, err)
		return
	}
	if !errs.Empty() {
		h.renderPage(w, r, http.StatusUnprocessableEntity, session, creds, errs)
		return
	}

	webmiddleware.SetFlash(w, webmiddleware.FlashSuccess,
		"Registered "+registrant.FirstName+" "+registrant.LastName+".")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Table handles GET /registrants/table, returning only the table fragment
func (h *RegistrationHandler) Table(w http.ResponseWriter, r *http.Request) {
	registrants, err := h.controller.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list registrants", slog.Any("error", err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := components.RegistrantTable(registrants, h.showPasswords()).Render(r.Context(), w); err != nil {
		h.logger.Error("failed to render table", slog.Any("error", err))
	}
}

// Events handles GET /events, streaming roster updates
func (h *RegistrationHandler) Events(w http.ResponseWriter, r *http.Request) {
	clientID := middleware.RequestID(r.Context())
	if clientID == "" {
		clientID = r.RemoteAddr
	}
	sse.ServeSSE(w, r, h.hub, clientID)
}

func (h *RegistrationHandler) renderPage(w http.ResponseWriter, r *http.Request, status int, session *model.Session, creds model.CredentialsInput, errs model.FieldErrors) {
	registrants, err := h.controller.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list registrants", slog.Any("error", err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	data := pages.HomeData{
		PageData: layout.PageData{
			Title: "Register",
			Flash: webmiddleware.GetFlash(r.Context()),
		},
		Step:             session.Step,
		Identity:         session.Identity,
		Credentials:      creds,
		Errors:           errs,
		EmailPlaceholder: h.emailPlaceholder(),
		Registrants:      registrants,
		ShowPasswords:    h.showPasswords(),
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := pages.Home(data).Render(r.Context(), w); err != nil {
		h.logger.Error("failed to render page", slog.Any("error", err))
	}
}

// redirectWithError turns a flow error into a flash message on the form
func (h *RegistrationHandler) redirectWithError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, model.ErrWrongStep):
		webmiddleware.SetFlash(w, webmiddleware.FlashInfo, "That step is not available right now.")
	case errors.Is(err, model.ErrSessionNotFound):
		webmiddleware.SetFlash(w, webmiddleware.FlashInfo, "Your registration expired. Please start again.")
	default:
		h.logger.Error("registration step failed", slog.Any("error", err))
		webmiddleware.SetFlash(w, webmiddleware.FlashError, "Something went wrong. Please try again.")
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *RegistrationHandler) showPasswords() bool {
	return h.controller.PasswordStorage() == model.PasswordStorageInsecurePlaintext
}

func (h *RegistrationHandler) emailPlaceholder() string {
	suffix := h.controller.Validator().Config().EmailSuffix
	if suffix == "" {
		return "name@example.com"
	}
	return "name@university" + suffix
}

package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/mcoot/registrar/internal/model"
	"github.com/mcoot/registrar/internal/services/registration"
)

type contextKey string

const (
	// WizardCookieName holds the registration session ID of the browser
	WizardCookieName = "registration"

	wizardContextKey contextKey = "wizard"
)

// GetWizard retrieves the browser's registration session from the request context.
// Returns nil outside the Wizard middleware.
func GetWizard(ctx context.Context) *model.Session {
	session, _ := ctx.Value(wizardContextKey).(*model.Session)
	return session
}

// Wizard returns middleware that attaches the browser's registration session,
// starting a new one when the cookie is missing or its session has expired
func Wizard(controller *registration.Controller) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var session *model.Session

			if cookie, err := r.Cookie(WizardCookieName); err == nil && cookie.Value != "" {
				s, err := controller.GetSession(r.Context(), model.SessionID(cookie.Value))
				switch {
				case err == nil:
					session = s
				case !errors.Is(err, model.ErrSessionNotFound):
					http.Error(w, "Internal Server Error", http.StatusInternalServerError)
					return
				}
			}

			if session == nil {
				s, err := controller.StartSession(r.Context())
				if err != nil {
					http.Error(w, "Internal Server Error", http.StatusInternalServerError)
					return
				}
				session = s
				setWizardCookie(w, session.ID)
			}

			ctx := context.WithValue(r.Context(), wizardContextKey, session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func setWizardCookie(w http.ResponseWriter, id model.SessionID) {
	http.SetCookie(w, &http.Cookie{
		Name:     WizardCookieName,
		Value:    string(id),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

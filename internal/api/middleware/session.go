package middleware

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/registrar/internal/api/apierr"
	"github.com/mcoot/registrar/internal/model"
	"github.com/mcoot/registrar/internal/services/registration"
)

type contextKey string

const sessionContextKey contextKey = "registration_session"

// SessionIDVar is the route variable holding the session ID
const SessionIDVar = "id"

// Session creates middleware that loads the registration session named in
// the route and rejects the request if it does not exist
func Session(controller *registration.Controller) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := mux.Vars(r)[SessionIDVar]
			if id == "" {
				apierr.WriteError(w, apierr.NewInvalidRequestError("session id is required"))
				return
			}

			session, err := controller.GetSession(r.Context(), model.SessionID(id))
			if err != nil {
				apierr.WriteError(w, err)
				return
			}

			ctx := context.WithValue(r.Context(), sessionContextKey, session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetSession returns the registration session from the request context
func GetSession(ctx context.Context) *model.Session {
	session, _ := ctx.Value(sessionContextKey).(*model.Session)
	return session
}

// MustGetSession returns the registration session or panics
func MustGetSession(ctx context.Context) *model.Session {
	session := GetSession(ctx)
	if session == nil {
		panic("no registration session in context - session middleware not applied?")
	}
	return session
}

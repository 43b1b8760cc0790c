package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/icmoura/jarvis/internal/auth"
)

type ctxKey string

const ctxSession ctxKey = "session"

func (a *App) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if sess := a.readSession(r); sess != nil {
			r = r.WithContext(context.WithValue(r.Context(), ctxSession, sess))
		}
		next.ServeHTTP(w, r)
	})
}

func (a *App) readSession(r *http.Request) *auth.Session {
	// Prefer cookie.
	if c, err := r.Cookie(a.cookieName); err == nil && c.Value != "" {
		if sess, err := auth.ParseHS256(a.secret, c.Value); err == nil {
			return sess
		}
	}
	// Fallback: Authorization: Bearer <token>
	authz := r.Header.Get("Authorization")
	if authz != "" {
		parts := strings.SplitN(authz, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			if sess, err := auth.ParseHS256(a.secret, strings.TrimSpace(parts[1])); err == nil {
				return sess
			}
		}
	}
	return nil
}

func sessionFrom(r *http.Request) *auth.Session {
	if v := r.Context().Value(ctxSession); v != nil {
		if s, ok := v.(*auth.Session); ok {
			return s
		}
	}
	return nil
}

func (a *App) requireAuth(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := sessionFrom(r)
		if sess == nil {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		// A pending password change blocks everything except completing it.
		if sess.PwChange && r.URL.Path != "/password" && r.URL.Path != "/logout" {
			http.Redirect(w, r, "/password", http.StatusSeeOther)
			return
		}
		h(w, r)
	}
}

func (a *App) requireAdmin(h http.HandlerFunc) http.HandlerFunc {
	return a.requireAuth(func(w http.ResponseWriter, r *http.Request) {
		if sess := sessionFrom(r); sess == nil || !sess.IsAdmin() {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		h(w, r)
	})
}

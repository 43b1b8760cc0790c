package server

import (
	"errors"
	"net"
	"net/http"
	"strings"

	"github.com/icmoura/jarvis/internal/auth"
	"github.com/icmoura/jarvis/internal/logger"
	"github.com/icmoura/jarvis/internal/userdir"
)

func remoteIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}

func (a *App) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet || r.Method == http.MethodHead {
		if sessionFrom(r) != nil {
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		a.renderPage(w, "login", &ViewData{HideNav: true, TempPassword: userdir.DefaultTempPassword})
		return
	}
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	_ = r.ParseForm()
	username := strings.TrimSpace(r.Form.Get("username"))
	password := r.Form.Get("password")
	if username == "" || password == "" {
		a.renderPage(w, "login", &ViewData{HideNav: true, TempPassword: userdir.DefaultTempPassword,
			Flash: "Username and password are required.", FlashKind: "err"})
		return
	}

	dir, err := a.users.Load(r.Context())
	if err != nil {
		logger.Error("Login: loading user directory failed: %v", err)
		a.renderPage(w, "login", &ViewData{HideNav: true, TempPassword: userdir.DefaultTempPassword,
			Flash: "Could not reach the user store. Try again.", FlashKind: "err"})
		return
	}

	// Same message whether the username or the password was wrong.
	rec, ok := dir[username]
	if !ok || !auth.CheckPassword(password, rec.PasswordHash) {
		logger.Info("Failed login attempt for user %s from %s", username, remoteIP(r))
		a.renderPage(w, "login", &ViewData{HideNav: true, TempPassword: userdir.DefaultTempPassword,
			Flash: "Invalid username or password.", FlashKind: "err"})
		return
	}

	sess := auth.Session{
		Username: username,
		Role:     string(rec.Role),
		PwChange: rec.FirstLogin || rec.ResetByAdmin,
	}
	tok, err := auth.SignHS256(a.secret, sess, sessionTTL)
	if err != nil {
		a.renderPage(w, "login", &ViewData{HideNav: true, TempPassword: userdir.DefaultTempPassword,
			Flash: "Failed to create session.", FlashKind: "err"})
		return
	}

	logger.Info("User %s logged in from %s", username, remoteIP(r))
	a.issueCookie(w, tok)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (a *App) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	sess := sessionFrom(r)
	logger.Info("User %s logged out from %s", sess.Username, remoteIP(r))
	a.results.Clear(sess.Username)
	a.clearCookie(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (a *App) handlePassword(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)

	if r.Method == http.MethodGet || r.Method == http.MethodHead {
		data := a.baseData(r)
		data.HideNav = sess.PwChange
		if sess.PwChange {
			data.Flash = "You must set a new password before continuing."
			data.FlashKind = "err"
		}
		if code := r.URL.Query().Get("err"); code != "" {
			data.FlashKind = "err"
			switch code {
			case "mismatch":
				data.Flash = "Passwords do not match."
			case "short":
				data.Flash = "The new password must be at least 6 characters long."
			case "empty":
				data.Flash = "Please fill in all fields."
			case "save":
				data.Flash = "The password was not saved. Try again."
			default:
				data.Flash = "Password change failed."
			}
		}
		a.renderPage(w, "password", data)
		return
	}
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	_ = r.ParseForm()
	newPassword := r.Form.Get("new_password")
	confirm := r.Form.Get("confirm_password")

	if err := auth.ValidateNewPassword(newPassword, confirm); err != nil {
		http.Redirect(w, r, "/password?err="+passwordErrCode(err), http.StatusSeeOther)
		return
	}

	dir, err := a.users.Load(r.Context())
	if err != nil {
		logger.Error("Password change: loading user directory failed: %v", err)
		http.Redirect(w, r, "/password?err=save", http.StatusSeeOther)
		return
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		http.Redirect(w, r, "/password?err=save", http.StatusSeeOther)
		return
	}
	if err := dir.SetPassword(sess.Username, hash, false, false); err != nil {
		http.Redirect(w, r, "/password?err=save", http.StatusSeeOther)
		return
	}
	if err := a.users.Save(r.Context(), dir, "Password change for "+sess.Username); err != nil {
		logger.Error("Password change for %s not persisted: %v", sess.Username, err)
		http.Redirect(w, r, "/password?err=save", http.StatusSeeOther)
		return
	}

	// The forced-change flag lives in the cookie; reissue it cleared.
	tok, err := auth.SignHS256(a.secret, auth.Session{Username: sess.Username, Role: sess.Role}, sessionTTL)
	if err == nil {
		a.issueCookie(w, tok)
	}
	logger.Info("User %s changed password from %s", sess.Username, remoteIP(r))
	http.Redirect(w, r, "/?pwok=1", http.StatusSeeOther)
}

func passwordErrCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, auth.ErrPasswordMismatch):
		return "mismatch"
	case errors.Is(err, auth.ErrPasswordTooShort):
		return "short"
	case errors.Is(err, auth.ErrEmptyField):
		return "empty"
	default:
		return "other"
	}
}

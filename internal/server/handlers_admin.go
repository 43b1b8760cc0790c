package server

import (
	"errors"
	"net/http"
	"sort"
	"strings"

	"github.com/icmoura/jarvis/internal/auth"
	"github.com/icmoura/jarvis/internal/logger"
	"github.com/icmoura/jarvis/internal/userdir"
)

func (a *App) handleAdminUsers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	data := a.baseData(r)
	if msg := r.URL.Query().Get("ok"); msg != "" {
		data.FlashKind = "ok"
		switch msg {
		case "created":
			data.Flash = "User created. The initial password must be changed on first login."
		case "reset":
			data.Flash = "Password reset to the temporary password '" + userdir.DefaultTempPassword + "'."
		case "role":
			data.Flash = "Role updated."
		case "deleted":
			data.Flash = "User deleted."
		default:
			data.Flash = "Done."
		}
	}
	if code := r.URL.Query().Get("err"); code != "" {
		data.Flash = adminErrMessage(code)
		data.FlashKind = "err"
	}

	dir, err := a.users.Load(r.Context())
	if err != nil {
		logger.Error("Admin user list: loading directory failed: %v", err)
		data.Flash = "Could not load the user directory."
		data.FlashKind = "err"
		a.renderPage(w, "admin_users", data)
		return
	}

	for name, rec := range dir {
		data.Users = append(data.Users, UserRow{
			Name:         name,
			Role:         string(rec.Role),
			FirstLogin:   rec.FirstLogin,
			ResetByAdmin: rec.ResetByAdmin,
		})
	}
	sort.Slice(data.Users, func(i, j int) bool { return data.Users[i].Name < data.Users[j].Name })

	a.renderPage(w, "admin_users", data)
}

func (a *App) handleAdminUsersCreate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	_ = r.ParseForm()
	username := strings.TrimSpace(r.Form.Get("username"))
	password := r.Form.Get("password")
	role := userdir.Role(r.Form.Get("role"))

	if username == "" || password == "" {
		http.Redirect(w, r, "/admin/users?err=input", http.StatusSeeOther)
		return
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		http.Redirect(w, r, "/admin/users?err=other", http.StatusSeeOther)
		return
	}

	a.mutateDirectory(w, r, "created", "Create user "+username, func(dir userdir.Directory, _ string) error {
		return dir.CreateUser(username, hash, role)
	})
}

func (a *App) handleAdminUsersReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	_ = r.ParseForm()
	target := strings.TrimSpace(r.Form.Get("username"))

	hash, err := auth.HashPassword(userdir.DefaultTempPassword)
	if err != nil {
		http.Redirect(w, r, "/admin/users?err=other", http.StatusSeeOther)
		return
	}

	a.mutateDirectory(w, r, "reset", "Reset password for "+target, func(dir userdir.Directory, actor string) error {
		return dir.ResetPassword(actor, target, hash)
	})
}

func (a *App) handleAdminUsersRole(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	_ = r.ParseForm()
	target := strings.TrimSpace(r.Form.Get("username"))
	role := userdir.Role(r.Form.Get("role"))

	a.mutateDirectory(w, r, "role", "Update role for "+target, func(dir userdir.Directory, actor string) error {
		return dir.UpdateRole(actor, target, role)
	})
}

func (a *App) handleAdminUsersDelete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	_ = r.ParseForm()
	target := strings.TrimSpace(r.Form.Get("username"))

	a.mutateDirectory(w, r, "deleted", "Delete user "+target, func(dir userdir.Directory, actor string) error {
		return dir.DeleteUser(actor, target)
	})
}

// mutateDirectory runs the load → mutate → save sequence shared by every
// console operation. A failed save means the mutation is not committed;
// the next load discards it.
func (a *App) mutateDirectory(w http.ResponseWriter, r *http.Request, okCode, commitMsg string, mutate func(dir userdir.Directory, actor string) error) {
	sess := sessionFrom(r)

	dir, err := a.users.Load(r.Context())
	if err != nil {
		logger.Error("Admin %s: loading directory failed: %v", sess.Username, err)
		http.Redirect(w, r, "/admin/users?err=load", http.StatusSeeOther)
		return
	}

	if err := mutate(dir, sess.Username); err != nil {
		http.Redirect(w, r, "/admin/users?err="+adminErrCode(err), http.StatusSeeOther)
		return
	}

	if err := a.users.Save(r.Context(), dir, commitMsg); err != nil {
		logger.Error("Admin %s: %q not persisted: %v", sess.Username, commitMsg, err)
		http.Redirect(w, r, "/admin/users?err=save", http.StatusSeeOther)
		return
	}

	logger.Info("Admin %s: %s (from %s)", sess.Username, commitMsg, remoteIP(r))
	http.Redirect(w, r, "/admin/users?ok="+okCode, http.StatusSeeOther)
}

func adminErrCode(err error) string {
	switch {
	case errors.Is(err, userdir.ErrDuplicateUser):
		return "duplicate"
	case errors.Is(err, userdir.ErrInvalidInput), errors.Is(err, userdir.ErrInvalidRole):
		return "input"
	case errors.Is(err, userdir.ErrUnknownUser):
		return "unknown"
	case errors.Is(err, userdir.ErrSelfResetForbidden):
		return "self_reset"
	case errors.Is(err, userdir.ErrSelfDemoteForbidden):
		return "self_role"
	case errors.Is(err, userdir.ErrSelfDeleteForbidden):
		return "self_delete"
	case errors.Is(err, userdir.ErrLastAdminForbidden):
		return "last_admin"
	default:
		return "other"
	}
}

func adminErrMessage(code string) string {
	switch code {
	case "duplicate":
		return "Username already exists."
	case "input":
		return "Username, password and a valid role are required."
	case "unknown":
		return "No such user."
	case "self_reset":
		return "The logged-in admin cannot reset its own password here. Use the change-password form."
	case "self_role":
		return "You cannot change your own role while logged in. Ask another admin."
	case "self_delete":
		return "You cannot delete your own account while logged in."
	case "last_admin":
		return "Cannot delete the only admin."
	case "save":
		return "The change was not saved to the user store. It will be lost."
	case "load":
		return "Could not load the user directory."
	default:
		return "Operation failed."
	}
}

package userdir

import "errors"

var (
	ErrDuplicateUser       = errors.New("username already exists")
	ErrUnknownUser         = errors.New("unknown user")
	ErrInvalidInput        = errors.New("username and password must not be empty")
	ErrInvalidRole         = errors.New("invalid role")
	ErrSelfResetForbidden  = errors.New("cannot reset your own password here")
	ErrSelfDemoteForbidden = errors.New("cannot change your own role")
	ErrSelfDeleteForbidden = errors.New("cannot delete your own account")
	ErrLastAdminForbidden  = errors.New("cannot delete the only admin")
)

// CreateUser inserts a new record. New users always start with a pending
// password change.
func (d Directory) CreateUser(username, passwordHash string, role Role) error {
	if username == "" || passwordHash == "" {
		return ErrInvalidInput
	}
	if !role.Valid() {
		return ErrInvalidRole
	}
	if _, ok := d[username]; ok {
		return ErrDuplicateUser
	}
	d[username] = Record{
		PasswordHash: passwordHash,
		Role:         role,
		FirstLogin:   true,
		ResetByAdmin: false,
	}
	return nil
}

// SetPassword replaces target's hash and flags. Used both by the
// self-service change-password flow (flags cleared) and by admin resets
// (flags raised).
func (d Directory) SetPassword(target, passwordHash string, firstLogin, resetByAdmin bool) error {
	rec, ok := d[target]
	if !ok {
		return ErrUnknownUser
	}
	rec.PasswordHash = passwordHash
	rec.FirstLogin = firstLogin
	rec.ResetByAdmin = resetByAdmin
	d[target] = rec
	return nil
}

// ResetPassword puts target back on the well-known temporary password.
// The bootstrap admin cannot reset itself through the console; it has the
// self-service flow for that.
func (d Directory) ResetPassword(actor, target, tempPasswordHash string) error {
	if _, ok := d[target]; !ok {
		return ErrUnknownUser
	}
	if target == BootstrapAdmin && target == actor {
		return ErrSelfResetForbidden
	}
	return d.SetPassword(target, tempPasswordHash, true, true)
}

// UpdateRole changes target's role. The acting admin cannot change its own
// role; a different admin has to do that.
func (d Directory) UpdateRole(actor, target string, role Role) error {
	rec, ok := d[target]
	if !ok {
		return ErrUnknownUser
	}
	if !role.Valid() {
		return ErrInvalidRole
	}
	if target == actor && role != rec.Role {
		return ErrSelfDemoteForbidden
	}
	rec.Role = role
	d[target] = rec
	return nil
}

// DeleteUser removes target, refusing self-deletion and the removal of the
// last remaining admin.
func (d Directory) DeleteUser(actor, target string) error {
	rec, ok := d[target]
	if !ok {
		return ErrUnknownUser
	}
	if target == actor {
		return ErrSelfDeleteForbidden
	}
	if rec.Role == RoleAdmin && d.AdminCount() == 1 {
		return ErrLastAdminForbidden
	}
	delete(d, target)
	return nil
}

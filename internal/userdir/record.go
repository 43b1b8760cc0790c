// Package userdir maintains the user directory: a single JSON document of
// user records persisted in a remote GitHub file, fetched before and written
// after every mutation. Concurrent writers from other processes are handled
// by the store's revision guard, not by locking.
package userdir

import (
	"bytes"
	"encoding/json"
	"fmt"
)

type Role string

const (
	RoleAdmin  Role = "admin"
	RoleNormal Role = "normal"
)

func (r Role) Valid() bool { return r == RoleAdmin || r == RoleNormal }

// Record is one user entry. The username is the map key in Directory and is
// immutable once created.
type Record struct {
	PasswordHash string `json:"password_hash"`
	Role         Role   `json:"role"`
	FirstLogin   bool   `json:"first_login"`
	ResetByAdmin bool   `json:"reset_by_admin"`
}

// Directory maps username to record.
type Directory map[string]Record

// Decode parses the serialized document, rejecting unknown record fields
// and records without a hash or with an unknown role.
func Decode(data []byte) (Directory, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var dir Directory
	if err := dec.Decode(&dir); err != nil {
		return nil, fmt.Errorf("decode user document: %w", err)
	}
	for username, rec := range dir {
		if username == "" {
			return nil, fmt.Errorf("user document contains an empty username")
		}
		if rec.PasswordHash == "" {
			return nil, fmt.Errorf("user %q has no password hash", username)
		}
		if !rec.Role.Valid() {
			return nil, fmt.Errorf("user %q has unknown role %q", username, rec.Role)
		}
	}
	return dir, nil
}

// Encode serializes the directory in the persisted layout: a JSON object
// keyed by username, indented for readable commits.
func (d Directory) Encode() ([]byte, error) {
	return json.MarshalIndent(d, "", "    ")
}

// AdminCount returns the number of admin records.
func (d Directory) AdminCount() int {
	n := 0
	for _, rec := range d {
		if rec.Role == RoleAdmin {
			n++
		}
	}
	return n
}

// Clone returns an independent copy, so a failed save cannot leak partial
// mutations into a directory the caller keeps using.
func (d Directory) Clone() Directory {
	out := make(Directory, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

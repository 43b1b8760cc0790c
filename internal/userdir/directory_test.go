package userdir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDirectory() Directory {
	return Directory{
		"israel": {PasswordHash: "h1", Role: RoleAdmin},
		"maria":  {PasswordHash: "h2", Role: RoleNormal},
	}
}

func TestCreateUser(t *testing.T) {
	dir := testDirectory()

	require.NoError(t, dir.CreateUser("joao", "h3", RoleNormal))
	rec := dir["joao"]
	assert.Equal(t, "h3", rec.PasswordHash)
	assert.Equal(t, RoleNormal, rec.Role)
	assert.True(t, rec.FirstLogin)
	assert.False(t, rec.ResetByAdmin)
}

func TestCreateUserDuplicate(t *testing.T) {
	dir := testDirectory()
	before := dir.Clone()

	err := dir.CreateUser("maria", "h3", RoleNormal)
	assert.ErrorIs(t, err, ErrDuplicateUser)
	assert.Equal(t, before, dir)
}

func TestCreateUserValidation(t *testing.T) {
	dir := testDirectory()

	assert.ErrorIs(t, dir.CreateUser("", "h3", RoleNormal), ErrInvalidInput)
	assert.ErrorIs(t, dir.CreateUser("joao", "", RoleNormal), ErrInvalidInput)
	assert.ErrorIs(t, dir.CreateUser("joao", "h3", Role("root")), ErrInvalidRole)
}

func TestResetPassword(t *testing.T) {
	dir := testDirectory()

	require.NoError(t, dir.ResetPassword("israel", "maria", "temp-hash"))
	rec := dir["maria"]
	assert.Equal(t, "temp-hash", rec.PasswordHash)
	assert.True(t, rec.FirstLogin)
	assert.True(t, rec.ResetByAdmin)
}

func TestResetPasswordSelfBootstrapForbidden(t *testing.T) {
	dir := testDirectory()

	err := dir.ResetPassword(BootstrapAdmin, BootstrapAdmin, "temp-hash")
	assert.ErrorIs(t, err, ErrSelfResetForbidden)
}

func TestUpdateRole(t *testing.T) {
	dir := testDirectory()

	require.NoError(t, dir.UpdateRole("israel", "maria", RoleAdmin))
	assert.Equal(t, RoleAdmin, dir["maria"].Role)

	// same role for yourself is a no-op, not an error
	require.NoError(t, dir.UpdateRole("israel", "israel", RoleAdmin))

	err := dir.UpdateRole("israel", "israel", RoleNormal)
	assert.ErrorIs(t, err, ErrSelfDemoteForbidden)
}

func TestDeleteUser(t *testing.T) {
	dir := testDirectory()

	require.NoError(t, dir.DeleteUser("israel", "maria"))
	_, ok := dir["maria"]
	assert.False(t, ok)
}

func TestDeleteUserSelfForbidden(t *testing.T) {
	dir := testDirectory()
	assert.ErrorIs(t, dir.DeleteUser("israel", "israel"), ErrSelfDeleteForbidden)
}

func TestDeleteLastAdminForbidden(t *testing.T) {
	dir := testDirectory()

	err := dir.DeleteUser("maria", "israel")
	assert.ErrorIs(t, err, ErrLastAdminForbidden)
	_, ok := dir["israel"]
	assert.True(t, ok)

	// with a second admin the delete goes through
	require.NoError(t, dir.CreateUser("ana", "h4", RoleAdmin))
	require.NoError(t, dir.DeleteUser("maria", "israel"))
}

func TestUnknownTargets(t *testing.T) {
	dir := testDirectory()

	assert.ErrorIs(t, dir.SetPassword("ghost", "h", false, false), ErrUnknownUser)
	assert.ErrorIs(t, dir.ResetPassword("israel", "ghost", "h"), ErrUnknownUser)
	assert.ErrorIs(t, dir.UpdateRole("israel", "ghost", RoleAdmin), ErrUnknownUser)
	assert.ErrorIs(t, dir.DeleteUser("israel", "ghost"), ErrUnknownUser)
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	dir := Directory{
		"israel": {PasswordHash: "h1", Role: RoleAdmin, FirstLogin: true},
		"maria":  {PasswordHash: "h2", Role: RoleNormal, ResetByAdmin: true},
	}

	data, err := dir.Encode()
	require.NoError(t, err)

	decoded, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, dir, decoded)
}

func TestDecodeRejectsUnknownFields(t *testing.T) {
	_, err := Decode([]byte(`{"israel":{"password_hash":"h","role":"admin","first_login":false,"reset_by_admin":false,"shoe_size":42}}`))
	assert.Error(t, err)
}

func TestDecodeRejectsBadRecords(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"missing hash", `{"israel":{"role":"admin"}}`},
		{"missing role", `{"israel":{"password_hash":"h"}}`},
		{"unknown role", `{"israel":{"password_hash":"h","role":"root"}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.doc))
			assert.Error(t, err)
		})
	}
}

func TestDecodeMissingBoolsDefaultFalse(t *testing.T) {
	dir, err := Decode([]byte(`{"israel":{"password_hash":"h","role":"admin"}}`))
	require.NoError(t, err)
	assert.False(t, dir["israel"].FirstLogin)
	assert.False(t, dir["israel"].ResetByAdmin)
}

package models

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeRole(t *testing.T) {
	tests := map[string]string{
		"":           RoleUser,
		"   ":        RoleUser,
		"admin":      RoleAdmin,
		"Admin":      RoleAdmin,
		"ROLE_ADMIN": RoleAdmin,
		"ROLE_USER":  RoleUser,
		"volunteer":  "ROLE_VOLUNTEER",
	}

	for in, want := range tests {
		assert.Equal(t, want, NormalizeRole(in), "input %q", in)
	}
}

func TestCreateUserRequest_Validate(t *testing.T) {
	req := &CreateUserRequest{Username: "  alice ", Email: " alice@example.org ", Password: "secret1"}
	require.NoError(t, req.Validate())
	assert.Equal(t, "alice", req.Username)
	assert.Equal(t, "alice@example.org", req.Email)
	assert.Equal(t, RoleUser, req.Role)

	bad := []CreateUserRequest{
		{Username: "", Email: "a@b.co", Password: "secret1"},
		{Username: "al ice", Email: "a@b.co", Password: "secret1"},
		{Username: "alice", Email: "", Password: "secret1"},
		{Username: "alice", Email: "not-an-email", Password: "secret1"},
		{Username: "alice", Email: "a@b.co", Password: "short"},
	}
	for _, b := range bad {
		assert.Error(t, b.Validate(), "%+v", b)
	}
}

func TestLoginRequest_Validate(t *testing.T) {
	assert.Error(t, (&LoginRequest{Username: " ", Password: "x"}).Validate())
	assert.Error(t, (&LoginRequest{Username: "alice"}).Validate())
	assert.NoError(t, (&LoginRequest{Username: "alice", Password: "x"}).Validate())
}

func TestUser_Principal_DefaultsBlankRole(t *testing.T) {
	u := &User{Username: "bob", PasswordHash: "h", Role: " ", IsActive: true}
	p := u.Principal()

	assert.Equal(t, "bob", p.Username)
	assert.Equal(t, RoleUser, p.Role)
	assert.Equal(t, []string{RoleUser}, p.Authorities())
}

func TestCreateDonorRequest_Validate(t *testing.T) {
	req := &CreateDonorRequest{Name: " John Doe ", BloodGroup: " a+ ", City: "Mumbai ", Contact: " +91 9876543210"}
	require.NoError(t, req.Validate())
	assert.Equal(t, "John Doe", req.Name)
	assert.Equal(t, "A+", req.BloodGroup)
	assert.Equal(t, "Mumbai", req.City)
	assert.Equal(t, "+91 9876543210", req.Contact)

	err := (&CreateDonorRequest{Name: "x", BloodGroup: "O+", City: "  "}).Validate()
	require.Error(t, err)
	assert.Equal(t, "City is required", err.Error())
}

func TestUpdateDonorRequest_ApplyTo(t *testing.T) {
	d := &Donor{Name: "Jane", BloodGroup: "O-", City: "Delhi", Contact: "1"}
	(&UpdateDonorRequest{BloodGroup: "ab+", City: "  "}).ApplyTo(d)

	assert.Equal(t, "Jane", d.Name)
	assert.Equal(t, "AB+", d.BloodGroup)
	assert.Equal(t, "Delhi", d.City)
}

func TestCreateBloodRequestRequest_Validate(t *testing.T) {
	req := &CreateBloodRequestRequest{Name: "Maternity Ward", BloodGroup: "o+", City: "Hyderabad", Contact: "2"}
	require.NoError(t, req.Validate())
	assert.Equal(t, "O+", req.BloodGroup)

	assert.EqualError(t, (&CreateBloodRequestRequest{}).Validate(), "Name is required")
}

func TestAPITypes_UseCamelCaseKeys(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	for _, v := range []any{
		User{ID: "u1", Username: "alice", Role: RoleUser, IsActive: true, CreatedAt: now, LastLoginAt: &now},
		Principal{Username: "alice", Role: RoleUser, IsActive: true},
		Donor{ID: "d1", Name: "Rahul", BloodGroup: "O+", City: "Pune", Contact: "1", RegisteredAt: now},
		BloodRequest{ID: "r1", Name: "Ward 3", BloodGroup: "B+", City: "Delhi", Contact: "2", RequestDate: now},
	} {
		raw, err := json.Marshal(v)
		require.NoError(t, err)

		var keys map[string]any
		require.NoError(t, json.Unmarshal(raw, &keys))
		for k := range keys {
			assert.False(t, strings.Contains(k, "_"), "%T key %q", v, k)
		}
	}

	raw, err := json.Marshal(User{IsActive: true, CreatedAt: now, LastLoginAt: &now})
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"isActive":true`)
	assert.Contains(t, string(raw), `"lastLoginAt"`)
	assert.NotContains(t, string(raw), "passwordHash")
}

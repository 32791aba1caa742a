package dto

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/coop-scheduler/internal/domain"
)

func TestUpdateProfileDropsPrivilegedFields(t *testing.T) {
	var req UpdateProfileRequest
	body := `{"firstName":"  Ana ","role":"admin","email":"x@y.z","storeId":"s9","qualifications":["all"],"password":"pw"}`
	require.NoError(t, json.Unmarshal([]byte(body), &req))

	update, invalid := req.Sanitize()
	require.Nil(t, invalid)
	require.NotNil(t, update.FirstName)
	assert.Equal(t, "Ana", *update.FirstName)
	assert.Nil(t, update.LastName)
	assert.Nil(t, update.Phone)

	u := &domain.User{Role: domain.RoleEmployee, Email: "a@x.com"}
	update.Apply(u)
	assert.Equal(t, domain.RoleEmployee, u.Role)
	assert.Equal(t, "a@x.com", u.Email)
	assert.Equal(t, "Ana", u.FirstName)
}

func TestUpdateProfileRejectsOversizedFields(t *testing.T) {
	long := strings.Repeat("x", maxProfileFieldLength+1)
	_, invalid := UpdateProfileRequest{LastName: &long}.Sanitize()
	assert.Equal(t, map[string]any{"lastName": "too long"}, invalid)
}

func TestUserResponseOmitsHash(t *testing.T) {
	raw, err := json.Marshal(NewUserResponse(&domain.User{ID: "u1", Email: "a@x.com", PasswordHash: "$2a$secret", Role: domain.RoleAdmin}))
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "secret")
	assert.Contains(t, string(raw), `"qualifications":[]`)
	assert.Contains(t, string(raw), `"storeId":null`)
}

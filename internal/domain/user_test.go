package domain_test

import (
	"encoding/json"
	"testing"

	"github.com/dom/account-service/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUser_PublicOmitsCredentials(t *testing.T) {
	token := "refresh"
	u := &domain.User{
		ID:           uuid.New(),
		Username:     "alice",
		Email:        "alice@x.com",
		PasswordHash: "$2a$10$hash",
		RefreshToken: &token,
	}

	data, err := json.Marshal(u.Public())
	require.NoError(t, err)

	var body map[string]any
	require.NoError(t, json.Unmarshal(data, &body))
	assert.Equal(t, "alice", body["username"])
	assert.NotContains(t, body, "password")
	assert.NotContains(t, body, "passwordHash")
	assert.NotContains(t, body, "refreshToken")

	// the full record hides the credentials as well
	data, err = json.Marshal(u)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "$2a$10$hash")
	assert.NotContains(t, string(data), "refresh\"")
}

func TestUser_HasRefreshToken(t *testing.T) {
	empty := ""
	set := "tok"

	assert.False(t, (&domain.User{}).HasRefreshToken())
	assert.False(t, (&domain.User{RefreshToken: &empty}).HasRefreshToken())
	assert.True(t, (&domain.User{RefreshToken: &set}).HasRefreshToken())
}

func TestProfilePatch_IsEmpty(t *testing.T) {
	name := "Alice"
	assert.True(t, domain.ProfilePatch{}.IsEmpty())
	assert.False(t, domain.ProfilePatch{Fullname: &name}.IsEmpty())
}

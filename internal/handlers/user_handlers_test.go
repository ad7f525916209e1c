package handlers_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atabek/storefront/internal/models"
)

func TestCreateUser_OpenRegistration(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	user := env.register("alice", "pw123")
	assert.Equal(t, "alice", user.Username)
	assert.False(t, user.IsSuperuser)
	assert.NotZero(t, user.ID)
}

func TestCreateUser_SuperuserFlagIgnored(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	rec := env.doJSON(http.MethodPost, "/users", "", map[string]any{
		"username":     "mallory",
		"full_name":    "Mallory",
		"password":     "pw123",
		"is_superuser": true,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var stored models.User
	require.NoError(t, env.DB.Where("username = ?", "mallory").First(&stored).Error)
	assert.False(t, stored.IsSuperuser)
}

func TestCreateUser_DuplicateUsername400(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	first := env.register("carol", "pw123")

	rec := env.doJSON(http.MethodPost, "/users", "", map[string]string{
		"username": "carol",
		"password": "other",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	// First creation stays intact.
	var kept models.User
	require.NoError(t, env.DB.Where("username = ?", "carol").First(&kept).Error)
	assert.Equal(t, first.ID, kept.ID)
}

func TestUserAdmin_SuperuserGate(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.register("alice", "pw123")
	victim := env.register("victim", "pw123")
	tokenA := env.login("alice", "pw123")

	// Non-superuser: listing, lookup and deletion all refuse with 401.
	for _, req := range []struct {
		method, path string
	}{
		{http.MethodGet, "/users"},
		{http.MethodGet, fmt.Sprintf("/users/%d", victim.ID)},
		{http.MethodDelete, fmt.Sprintf("/users/%d", victim.ID)},
	} {
		rec := env.doJSON(req.method, req.path, tokenA, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, req.path)
	}

	// Promote bob through the store, as an operator would.
	env.register("bob", "pw123")
	env.promote("bob")
	tokenB := env.login("bob", "pw123")

	rec := env.doJSON(http.MethodGet, "/users", tokenB, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.doJSON(http.MethodDelete, fmt.Sprintf("/users/%d", victim.ID), tokenB, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.doJSON(http.MethodGet, fmt.Sprintf("/users/%d", victim.ID), tokenB, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateUser_SelfServicePatch(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	user := env.register("alice", "pw123")
	token := env.login("alice", "pw123")

	rec := env.doJSON(http.MethodPut, "/users", token, map[string]string{
		"full_name": "Alice Updated",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var updated models.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Equal(t, user.ID, updated.ID)
	assert.Equal(t, "alice", updated.Username)
	assert.Equal(t, "Alice Updated", updated.FullName)
}

func TestUpdateUser_PasswordChangeTakesEffect(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.register("alice", "pw123")
	token := env.login("alice", "pw123")

	rec := env.doJSON(http.MethodPut, "/users", token, map[string]string{
		"password": "newpass",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	// Old password no longer works, new one does.
	bad := env.loginAttempt("alice", "pw123")
	assert.Equal(t, http.StatusUnauthorized, bad.Code)
	env.login("alice", "newpass")
}

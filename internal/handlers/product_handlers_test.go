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

func newCatalogEnv(t *testing.T) (*testEnv, string, string) {
	t.Helper()

	env := newTestEnv(t)
	env.register("admin", "adminpw")
	env.promote("admin")
	adminToken := env.login("admin", "adminpw")

	env.register("alice", "pw123")
	userToken := env.login("alice", "pw123")

	return env, adminToken, userToken
}

func TestProductMutations_SuperuserOnly401(t *testing.T) {
	t.Parallel()

	env, adminToken, userToken := newCatalogEnv(t)

	payload := map[string]any{"name": "widget", "price": 9.99, "description": "a widget"}

	// The contract here is 401, not 403.
	rec := env.doJSON(http.MethodPost, "/products", userToken, payload)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.doJSON(http.MethodPost, "/products", adminToken, payload)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created models.Product
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	path := fmt.Sprintf("/products/%d", created.ID)
	rec = env.doJSON(http.MethodPut, path, userToken, map[string]any{"price": 1.0})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.doJSON(http.MethodDelete, path, userToken, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestProductReads_AnyValidToken(t *testing.T) {
	t.Parallel()

	env, adminToken, userToken := newCatalogEnv(t)

	rec := env.doJSON(http.MethodPost, "/products", adminToken,
		map[string]any{"name": "widget", "price": 9.99, "description": "a widget"})
	require.Equal(t, http.StatusCreated, rec.Code)

	var created models.Product
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	rec = env.doJSON(http.MethodGet, fmt.Sprintf("/products/%d", created.ID), userToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var fetched models.Product
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fetched))
	assert.Equal(t, created.Name, fetched.Name)

	rec = env.doJSON(http.MethodGet, "/products", userToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var list struct {
		Data []models.Product `json:"data"`
		Meta map[string]any   `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list.Data, 1)
	assert.EqualValues(t, 1, list.Meta["total"])
}

func TestProductUpdate_DuplicateName400(t *testing.T) {
	t.Parallel()

	env, adminToken, _ := newCatalogEnv(t)

	for _, name := range []string{"widget", "gadget"} {
		rec := env.doJSON(http.MethodPost, "/products", adminToken,
			map[string]any{"name": name, "price": 1.0, "description": "stuff"})
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	var widget models.Product
	require.NoError(t, env.DB.Where("name = ?", "widget").First(&widget).Error)

	rec := env.doJSON(http.MethodPut, fmt.Sprintf("/products/%d", widget.ID), adminToken,
		map[string]any{"name": "gadget"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOrderFlow(t *testing.T) {
	t.Parallel()

	env, adminToken, userToken := newCatalogEnv(t)

	rec := env.doJSON(http.MethodPost, "/products", adminToken,
		map[string]any{"name": "widget", "price": 9.99, "description": "a widget"})
	require.Equal(t, http.StatusCreated, rec.Code)

	var product models.Product
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &product))

	rec = env.doJSON(http.MethodPost, "/orders", userToken, map[string]any{
		"items": []uint{product.ID},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var order models.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &order))
	require.Len(t, order.Details, 1)
	assert.Equal(t, "widget", order.Details[0].ProductName)

	rec = env.doJSON(http.MethodGet, fmt.Sprintf("/orders/%d/status", order.ID), userToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var status map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, "pending", status["status"])

	// alice sees only her own orders, the superuser sees them all.
	rec = env.doJSON(http.MethodGet, "/orders", userToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var own []models.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &own))
	require.Len(t, own, 1)

	rec = env.doJSON(http.MethodGet, "/orders", adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

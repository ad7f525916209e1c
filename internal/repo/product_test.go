package repo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atabek/storefront/internal/models"
)

func TestCreateProduct_DuplicateName(t *testing.T) {
	t.Parallel()

	r := newTestRepo(t)
	ctx := context.Background()
	seedProduct(t, r, "widget", 9.99)

	err := r.CreateProduct(ctx, &models.Product{Name: "widget", Price: 1})
	assert.ErrorIs(t, err, ErrDuplicateName)
}

func TestUpdateProduct_PatchAndConflict(t *testing.T) {
	t.Parallel()

	r := newTestRepo(t)
	ctx := context.Background()
	widget := seedProduct(t, r, "widget", 9.99)
	seedProduct(t, r, "gadget", 19.99)

	newPrice := 12.50
	updated, err := r.UpdateProduct(ctx, widget.ID, ProductPatch{Price: &newPrice})
	require.NoError(t, err)
	assert.Equal(t, "widget", updated.Name)
	assert.Equal(t, newPrice, updated.Price)

	taken := "gadget"
	_, err = r.UpdateProduct(ctx, widget.ID, ProductPatch{Name: &taken})
	assert.ErrorIs(t, err, ErrDuplicateName)
}

func TestListProducts_Pagination(t *testing.T) {
	t.Parallel()

	r := newTestRepo(t)
	ctx := context.Background()
	seedProduct(t, r, "a", 1)
	seedProduct(t, r, "b", 2)
	seedProduct(t, r, "c", 3)

	total, items, err := r.ListProducts(ctx, 0, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, items, 2)
	assert.Equal(t, "a", items[0].Name)

	_, rest, err := r.ListProducts(ctx, 2, 2)
	require.NoError(t, err)
	require.Len(t, rest, 1)
	assert.Equal(t, "c", rest[0].Name)
}

func TestDeleteProduct_NotFound(t *testing.T) {
	t.Parallel()

	r := newTestRepo(t)
	assert.ErrorIs(t, r.DeleteProduct(context.Background(), 9999), ErrNotFound)
}

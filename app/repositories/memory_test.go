package repositories_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/tradebridge/tradebridge/app/models"
	"github.com/tradebridge/tradebridge/app/repositories"
	"github.com/tradebridge/tradebridge/pkg/apperr"
	"github.com/tradebridge/tradebridge/pkg/auth"
)

func strp(s string) *string { return &s }

func TestMemoryUsersDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	users := repositories.NewMemory().Users()

	require.NoError(t, users.Create(ctx, &models.User{Email: "a@x.com", Role: auth.RoleRetailer}))

	dup := &models.User{Email: "a@x.com", Role: auth.RoleWholesaler}
	assert.ErrorIs(t, users.Create(ctx, dup), apperr.ErrDuplicateEmail)
	assert.True(t, dup.ID.IsZero())

	all, err := users.ListByRole(ctx, auth.RoleWholesaler)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestMemoryUsersListByRoleHidesPassword(t *testing.T) {
	ctx := context.Background()
	users := repositories.NewMemory().Users()

	require.NoError(t, users.Create(ctx, &models.User{Email: "w@x.com", Password: "hash", Role: auth.RoleWholesaler}))

	list, err := users.ListByRole(ctx, auth.RoleWholesaler)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Empty(t, list[0].Password)

	stored, err := users.FindByEmail(ctx, "w@x.com")
	require.NoError(t, err)
	assert.Equal(t, "hash", stored.Password)
}

func TestMemoryUsersNotFound(t *testing.T) {
	ctx := context.Background()
	users := repositories.NewMemory().Users()

	_, err := users.FindByEmail(ctx, "none@x.com")
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = users.FindByID(ctx, primitive.NewObjectID())
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	assert.ErrorIs(t, users.UpdatePassword(ctx, primitive.NewObjectID(), "h"), apperr.ErrNotFound)
}

func TestMemoryProductsNewestFirst(t *testing.T) {
	ctx := context.Background()
	fixed := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	mem := repositories.NewMemory().WithClock(func() time.Time { return fixed })
	products := mem.Products()
	owner := primitive.NewObjectID()

	for _, name := range []string{"first", "second", "third"} {
		require.NoError(t, products.Create(ctx, &models.Product{Name: name, Wholesaler: owner}))
	}
	require.NoError(t, products.Create(ctx, &models.Product{Name: "other", Wholesaler: primitive.NewObjectID()}))

	list, err := products.ListByWholesaler(ctx, owner)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "third", list[0].Name)
	assert.Equal(t, "first", list[2].Name)
}

func TestMemoryProductsSearch(t *testing.T) {
	ctx := context.Background()
	products := repositories.NewMemory().Products()
	owner := primitive.NewObjectID()

	require.NoError(t, products.Create(ctx, &models.Product{Name: "Blue Widget", Category: "tools", Wholesaler: owner}))
	require.NoError(t, products.Create(ctx, &models.Product{Name: "Hammer", Category: "WIDGETS", Wholesaler: owner}))
	require.NoError(t, products.Create(ctx, &models.Product{Name: "Apple", Category: "food", Wholesaler: owner}))
	require.NoError(t, products.Create(ctx, &models.Product{Name: "a.b", Category: "misc", Wholesaler: owner}))

	list, err := products.Search(ctx, "widget")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Hammer", list[0].Name)
	assert.Equal(t, "Blue Widget", list[1].Name)

	list, err = products.Search(ctx, ".")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "a.b", list[0].Name)

	list, err = products.Search(ctx, "")
	require.NoError(t, err)
	assert.Len(t, list, 4)
}

func TestMemoryProductsOwnedMutations(t *testing.T) {
	ctx := context.Background()
	products := repositories.NewMemory().Products()
	owner, stranger := primitive.NewObjectID(), primitive.NewObjectID()

	p := &models.Product{Name: "Widget", Price: 10, Wholesaler: owner}
	require.NoError(t, products.Create(ctx, p))

	_, err := products.UpdateOwned(ctx, p.ID, stranger, repositories.ProductPatch{Name: strp("Stolen")})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.ErrorIs(t, products.DeleteOwned(ctx, p.ID, stranger), apperr.ErrNotFound)

	updated, err := products.UpdateOwned(ctx, p.ID, owner, repositories.ProductPatch{Name: strp("Gadget")})
	require.NoError(t, err)
	assert.Equal(t, "Gadget", updated.Name)
	assert.Equal(t, 10.0, updated.Price)
	assert.Equal(t, owner, updated.Wholesaler)

	require.NoError(t, products.DeleteOwned(ctx, p.ID, owner))
	_, err = products.FindByID(ctx, p.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestMemoryOrders(t *testing.T) {
	ctx := context.Background()
	orders := repositories.NewMemory().Orders()

	first := &models.Order{ProductName: "A", Quantity: 1}
	second := &models.Order{ProductName: "B", Quantity: 2}
	require.NoError(t, orders.Create(ctx, first))
	require.NoError(t, orders.Create(ctx, second))

	list, err := orders.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "B", list[0].ProductName)

	paid := models.PaymentPaid
	updated, err := orders.Update(ctx, first.ID, repositories.OrderPatch{PaymentStatus: &paid, RazorpayPaymentID: strp("pay_1")})
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPaid, updated.PaymentStatus)
	assert.Equal(t, "pay_1", updated.RazorpayPaymentID)
	assert.Equal(t, "A", updated.ProductName)

	_, err = orders.Update(ctx, primitive.NewObjectID(), repositories.OrderPatch{})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

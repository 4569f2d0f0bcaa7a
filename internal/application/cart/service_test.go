package cart_test

import (
	"context"
	"testing"

	"github.com/cookease/api/internal/application/cart"
	"github.com/cookease/api/internal/domain/ingredient"
	"github.com/cookease/api/internal/domain/user"
	"github.com/cookease/api/test/testutils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type cartFixture struct {
	svc         *cart.Service
	users       *testutils.InMemoryUserRepository
	ingredients *testutils.InMemoryIngredientRepository
	userID      uuid.UUID
}

func newCartFixture(t *testing.T) *cartFixture {
	t.Helper()
	ctx := context.Background()

	f := &cartFixture{
		users:       testutils.NewInMemoryUserRepository(),
		ingredients: testutils.NewInMemoryIngredientRepository(),
	}
	f.svc = cart.NewService(f.users, f.ingredients, zap.NewNop())

	u, err := user.NewUser("alice", "alice@example.com", "password123")
	require.NoError(t, err)
	require.NoError(t, f.users.Create(ctx, u))
	f.userID = u.ID()

	require.NoError(t, f.ingredients.Create(ctx, testutils.MakeIngredient("ing-tomato", "Tomato", 0.99, "kg")))
	require.NoError(t, f.ingredients.Create(ctx, testutils.MakeIngredient("ing-basil", "Basil", 1.49, "bunch")))
	return f
}

func TestAdd(t *testing.T) {
	ctx := context.Background()

	t.Run("snapshots the catalog entry", func(t *testing.T) {
		f := newCartFixture(t)

		got, err := f.svc.Add(ctx, f.userID, cart.AddCommand{IngredientID: "ing-tomato", Quantity: 2, Unit: "kg"})
		require.NoError(t, err)
		require.Len(t, got.Items, 1)
		assert.Equal(t, "Tomato", got.Items[0].Name)
		assert.Equal(t, 0.99, got.Items[0].Price)
		assert.Equal(t, 2, got.Items[0].Quantity)
		assert.Equal(t, 2, got.TotalItems)
		assert.Equal(t, 1.98, got.TotalPrice)
	})

	t.Run("repeat add coalesces and keeps the snapshot", func(t *testing.T) {
		f := newCartFixture(t)

		_, err := f.svc.Add(ctx, f.userID, cart.AddCommand{IngredientID: "ing-tomato", Quantity: 2, Unit: "kg"})
		require.NoError(t, err)

		// Catalog price changes after the first add.
		require.NoError(t, f.ingredients.Create(ctx, testutils.MakeIngredient("ing-tomato", "Tomato", 1.50, "kg")))

		got, err := f.svc.Add(ctx, f.userID, cart.AddCommand{IngredientID: "ing-tomato", Quantity: 3, Unit: "kg"})
		require.NoError(t, err)
		require.Len(t, got.Items, 1, "one line per ingredient")
		assert.Equal(t, 5, got.Items[0].Quantity)
		assert.Equal(t, 0.99, got.Items[0].Price, "snapshot price survives catalog change")
		assert.Equal(t, 4.95, got.TotalPrice)
	})

	t.Run("unit comes from the request, not the catalog", func(t *testing.T) {
		f := newCartFixture(t)

		got, err := f.svc.Add(ctx, f.userID, cart.AddCommand{IngredientID: "ing-tomato", Quantity: 1, Unit: "pieces"})
		require.NoError(t, err)
		require.Len(t, got.Items, 1)
		assert.Equal(t, "pieces", got.Items[0].Unit)
	})

	t.Run("unknown ingredient", func(t *testing.T) {
		f := newCartFixture(t)

		_, err := f.svc.Add(ctx, f.userID, cart.AddCommand{IngredientID: "ing-missing", Quantity: 1, Unit: "kg"})
		assert.ErrorIs(t, err, ingredient.ErrIngredientNotFound)
	})
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()

	t.Run("sets absolute quantity", func(t *testing.T) {
		f := newCartFixture(t)
		_, err := f.svc.Add(ctx, f.userID, cart.AddCommand{IngredientID: "ing-tomato", Quantity: 2, Unit: "kg"})
		require.NoError(t, err)

		got, err := f.svc.Update(ctx, f.userID, "ing-tomato", cart.UpdateCommand{Quantity: 7})
		require.NoError(t, err)
		assert.Equal(t, 7, got.Items[0].Quantity)
		assert.Equal(t, 7, got.TotalItems)
	})

	t.Run("line not in cart", func(t *testing.T) {
		f := newCartFixture(t)

		_, err := f.svc.Update(ctx, f.userID, "ing-tomato", cart.UpdateCommand{Quantity: 1})
		assert.ErrorIs(t, err, user.ErrItemNotInCart)
	})

	t.Run("rejects non-positive quantity", func(t *testing.T) {
		f := newCartFixture(t)

		_, err := f.svc.Update(ctx, f.userID, "ing-tomato", cart.UpdateCommand{Quantity: 0})
		assert.ErrorIs(t, err, user.ErrInvalidQuantity)
	})
}

func TestRemoveAndClear(t *testing.T) {
	ctx := context.Background()

	t.Run("remove single line", func(t *testing.T) {
		f := newCartFixture(t)
		_, err := f.svc.Add(ctx, f.userID, cart.AddCommand{IngredientID: "ing-tomato", Quantity: 1, Unit: "kg"})
		require.NoError(t, err)
		_, err = f.svc.Add(ctx, f.userID, cart.AddCommand{IngredientID: "ing-basil", Quantity: 1, Unit: "kg"})
		require.NoError(t, err)

		got, err := f.svc.Remove(ctx, f.userID, "ing-tomato")
		require.NoError(t, err)
		require.Len(t, got.Items, 1)
		assert.Equal(t, "ing-basil", got.Items[0].IngredientID)
	})

	t.Run("remove absent line", func(t *testing.T) {
		f := newCartFixture(t)

		_, err := f.svc.Remove(ctx, f.userID, "ing-tomato")
		assert.ErrorIs(t, err, user.ErrItemNotInCart)
	})

	t.Run("clear", func(t *testing.T) {
		f := newCartFixture(t)
		_, err := f.svc.Add(ctx, f.userID, cart.AddCommand{IngredientID: "ing-tomato", Quantity: 3, Unit: "kg"})
		require.NoError(t, err)

		got, err := f.svc.Clear(ctx, f.userID)
		require.NoError(t, err)
		assert.Empty(t, got.Items)
		assert.Equal(t, 0, got.TotalItems)
		assert.Equal(t, 0.0, got.TotalPrice)
	})
}

func TestTotalsRounding(t *testing.T) {
	ctx := context.Background()
	f := newCartFixture(t)
	require.NoError(t, f.ingredients.Create(ctx, testutils.MakeIngredient("ing-saffron", "Saffron", 1.125, "g")))

	got, err := f.svc.Add(ctx, f.userID, cart.AddCommand{IngredientID: "ing-saffron", Quantity: 1, Unit: "kg"})
	require.NoError(t, err)
	assert.Equal(t, 1.13, got.TotalPrice, "half-up rounding to two decimals")
}

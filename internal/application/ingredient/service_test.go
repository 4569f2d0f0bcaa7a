package ingredient

import (
	"context"
	"testing"

	domainingredient "github.com/cookease/api/internal/domain/ingredient"
	"github.com/cookease/api/test/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newIngredientService() (*Service, *testutils.InMemoryIngredientRepository) {
	repo := testutils.NewInMemoryIngredientRepository()
	return NewService(repo, zap.NewNop()), repo
}

func TestSaveAndGet(t *testing.T) {
	ctx := context.Background()
	service, _ := newIngredientService()

	err := service.Save(ctx, &domainingredient.Ingredient{
		ID:    "rice-01",
		Name:  "Jasmine Rice",
		Price: 3.49,
		Unit:  "kg",
	})
	require.NoError(t, err)

	dto, err := service.Get(ctx, "rice-01")
	require.NoError(t, err)
	assert.Equal(t, "Jasmine Rice", dto.Name)
	assert.Equal(t, 3.49, dto.Price)
}

func TestSaveValidation(t *testing.T) {
	ctx := context.Background()
	service, _ := newIngredientService()

	err := service.Save(ctx, &domainingredient.Ingredient{ID: "x", Price: 1})
	assert.ErrorIs(t, err, domainingredient.ErrNameRequired)

	err = service.Save(ctx, &domainingredient.Ingredient{ID: "x", Name: "Salt", Price: -1})
	assert.ErrorIs(t, err, domainingredient.ErrInvalidPrice)
}

func TestSaveOverwritesSameID(t *testing.T) {
	ctx := context.Background()
	service, _ := newIngredientService()

	require.NoError(t, service.Save(ctx, testutils.MakeIngredient("salt-01", "Salt", 0.99, "g")))
	require.NoError(t, service.Save(ctx, testutils.MakeIngredient("salt-01", "Sea Salt", 1.49, "g")))

	dto, err := service.Get(ctx, "salt-01")
	require.NoError(t, err)
	assert.Equal(t, "Sea Salt", dto.Name)
	assert.Equal(t, 1.49, dto.Price)
}

func TestGetUnknown(t *testing.T) {
	service, _ := newIngredientService()

	_, err := service.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, domainingredient.ErrIngredientNotFound)
}

func TestList(t *testing.T) {
	ctx := context.Background()
	service, _ := newIngredientService()

	require.NoError(t, service.Save(ctx, testutils.MakeIngredient("salt-01", "Salt", 0.99, "g")))
	require.NoError(t, service.Save(ctx, testutils.MakeIngredient("rice-01", "Jasmine Rice", 3.49, "kg")))

	dtos, err := service.List(ctx)
	require.NoError(t, err)
	assert.Len(t, dtos, 2)
}

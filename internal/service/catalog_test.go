package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Soups":             "soups",
		"Main Courses":      "main-courses",
		"Quick & Easy":      "quick-easy",
		"  Trailing Space ": "trailing-space",
	}
	for name, want := range cases {
		assert.Equal(t, want, Slugify(name))
	}
}

func TestCreateIngredientDefaultsCategory(t *testing.T) {
	db := newTestDB(t)
	svc := NewCatalogService(db)
	ctx := context.Background()

	ingredient, err := svc.CreateIngredient(ctx, CreateIngredientInput{Name: "  Basil "})
	require.NoError(t, err)
	assert.Equal(t, "Basil", ingredient.Name)
	assert.Equal(t, "other", ingredient.Category)

	_, err = svc.CreateIngredient(ctx, CreateIngredientInput{Name: "Basil"})
	assert.ErrorIs(t, err, ErrIngredientNameTaken)
}

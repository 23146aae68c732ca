// Package enrich is the AI collaborator boundary for the planning pipeline:
// dish classification, per-dish ingredient enrichment, fuzzy shopping-list
// aggregation, free-text corrections, and recipe instruction generation.
// Every call is fallible; the orchestrator decides per call site whether a
// failure is tolerated or propagated.
package enrich

import (
	"context"

	"github.com/aaronbini/hosting/internal/grocery"
)

// EnrichmentRequest asks for one dish's ingredient list at the serving
// count given by Spec. BaseRecipe, when present, is included in the prompt
// so the collaborator scales the host's actual recipe instead of inventing
// one; BaseServings is the serving count the base recipe was written for.
type EnrichmentRequest struct {
	Spec         grocery.DishServingSpec
	BaseRecipe   []grocery.Ingredient
	BaseServings int
	DietaryNeeds []grocery.DietaryNeed
}

// RecipeRequest asks for step-by-step instructions for one homemade dish,
// referencing the already-scaled ingredient quantities.
type RecipeRequest struct {
	DishName      string
	Ingredients   []grocery.Ingredient
	TotalServings float64
}

// Collaborator is the external enrichment/aggregation service consumed by
// the orchestrator. Implementations are expected to own their own timeout
// and retry behavior.
type Collaborator interface {
	// ClassifyDishes maps each dish name to a DishCategory.
	ClassifyDishes(ctx context.Context, dishNames []string) (map[string]grocery.DishCategory, error)

	// EnrichIngredients resolves one dish's ingredient list.
	EnrichIngredients(ctx context.Context, req EnrichmentRequest) (grocery.DishIngredients, error)

	// Aggregate merges all dishes' ingredient lists into one deduplicated
	// item set. The contract is that no two returned items share a name.
	Aggregate(ctx context.Context, dishes []grocery.DishIngredients) ([]grocery.AggregatedIngredient, error)

	// ApplyCorrections applies free-text corrections to the current list
	// and returns the full revised item set.
	ApplyCorrections(ctx context.Context, list grocery.ShoppingList, corrections string) ([]grocery.AggregatedIngredient, error)

	// GenerateRecipes returns cooking instructions keyed by dish name.
	GenerateRecipes(ctx context.Context, dishes []RecipeRequest) (map[string][]string, error)
}

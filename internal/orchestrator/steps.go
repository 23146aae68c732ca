package orchestrator

import (
	"context"
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"

	"github.com/aaronbini/hosting/internal/enrich"
	"github.com/aaronbini/hosting/internal/grocery"
	"github.com/aaronbini/hosting/internal/quantity"
)

// neverPurchase holds normalized ingredient names that are always assumed
// available and must never appear on a shopping list.
var neverPurchase = map[string]bool{
	"water":         true,
	"tap water":     true,
	"cold water":    true,
	"hot water":     true,
	"boiling water": true,
	"ice water":     true,
}

// calculateQuantities classifies every dish, then applies the multiplier
// table to produce one serving spec per dish in menu order. A
// classification failure for the whole batch propagates; a missing
// classification for one dish falls back inside the quantity engine.
func (r *Runner) calculateQuantities(ctx context.Context, state RunState) (RunState, error) {
	state.Stage = StageCalculatingQuantities
	names := state.Inputs.DishNames()
	r.log.Info("calculating quantities",
		zap.String("run", state.ID),
		zap.Int("dishes", len(names)),
		zap.Int("adults", state.Inputs.AdultCount),
		zap.Int("children", state.Inputs.ChildCount))

	categories, err := r.collab.ClassifyDishes(ctx, names)
	if err != nil {
		return state, fmt.Errorf("classifying dishes: %w", err)
	}

	state.ServingSpecs = quantity.AllServingSpecs(names, categories, state.Inputs.AdultCount, state.Inputs.ChildCount)
	return state, nil
}

// storeBoughtLine synthesizes the single count-unit line for a dish bought
// ready-made. No collaborator call is needed.
func storeBoughtLine(spec grocery.DishServingSpec) grocery.DishIngredients {
	specCopy := spec
	return grocery.DishIngredients{
		DishName: spec.DishName,
		Spec:     &specCopy,
		Ingredients: []grocery.Ingredient{{
			Name:            spec.DishName,
			Quantity:        1,
			Unit:            grocery.Count,
			GroceryCategory: grocery.Other,
		}},
	}
}

// scaleRecipe multiplies every base-recipe quantity by
// total_servings/base_servings using plain arithmetic. This path is never
// delegated to the collaborator: generative scaling has been observed to
// substitute its own quantity judgement for the scale factor.
func scaleRecipe(item grocery.MenuItem, spec grocery.DishServingSpec) grocery.DishIngredients {
	base := item.BaseServings
	if base <= 0 {
		base = 4
	}
	factor := spec.TotalServings / float64(base)

	scaled := make([]grocery.Ingredient, len(item.Ingredients))
	for i, ing := range item.Ingredients {
		ing.Quantity = math.Round(ing.Quantity*factor*100) / 100
		scaled[i] = ing
	}

	specCopy := spec
	return grocery.DishIngredients{
		DishName:    spec.DishName,
		Spec:        &specCopy,
		Ingredients: scaled,
	}
}

// collectIngredients resolves an ingredient list for every dish. Routing
// per dish, in priority order: store-bought dishes get a synthetic count
// line; dishes with a base recipe (and not beverages) are scaled
// arithmetically; everything else is delegated to the collaborator
// concurrently. A delegated dish that fails is dropped from the result —
// the batch proceeds even if every delegated dish fails.
func (r *Runner) collectIngredients(ctx context.Context, state RunState) (RunState, error) {
	state.Stage = StageGettingIngredients
	r.log.Info("collecting ingredients", zap.String("run", state.ID), zap.Int("dishes", len(state.ServingSpecs)))

	resolved := make(map[string]grocery.DishIngredients, len(state.ServingSpecs))
	var delegated []enrich.EnrichmentRequest

	for _, spec := range state.ServingSpecs {
		item, found := state.Inputs.FindMenuItem(spec.DishName)
		switch {
		case found && item.Preparation == grocery.StoreBought:
			resolved[spec.DishName] = storeBoughtLine(spec)

		case found && item.HasRecipe() && !spec.DishCategory.IsBeverage():
			resolved[spec.DishName] = scaleRecipe(item, spec)

		default:
			req := enrich.EnrichmentRequest{
				Spec:         spec,
				DietaryNeeds: state.Inputs.DietaryNeeds,
			}
			if found && item.HasRecipe() {
				req.BaseRecipe = item.Ingredients
				req.BaseServings = item.BaseServings
			}
			delegated = append(delegated, req)
		}
	}

	if len(delegated) > 0 {
		results := fanOut(ctx, r.cfg.EnrichLimit, delegated,
			func(ctx context.Context, req enrich.EnrichmentRequest) (grocery.DishIngredients, error) {
				return r.collab.EnrichIngredients(ctx, req)
			})
		for i, res := range results {
			if res.Err != nil {
				r.log.Warn("enrichment failed, dropping dish",
					zap.String("run", state.ID),
					zap.String("dish", delegated[i].Spec.DishName),
					zap.Error(res.Err))
				continue
			}
			resolved[delegated[i].Spec.DishName] = res.Value
		}
	}

	// Reassemble in menu order, skipping dishes that failed enrichment.
	ordered := make([]grocery.DishIngredients, 0, len(resolved))
	for _, spec := range state.ServingSpecs {
		if d, ok := resolved[spec.DishName]; ok {
			ordered = append(ordered, d)
		}
	}
	state.DishIngredients = ordered
	return state, nil
}

// foldDuplicates is the deterministic safety net behind the delegated
// fuzzy merge: items whose case/whitespace-normalized names collide are
// folded into one line. Same-unit collisions sum quantities; a
// different-unit collision keeps the first line's quantity and is logged.
func (r *Runner) foldDuplicates(items []grocery.AggregatedIngredient) []grocery.AggregatedIngredient {
	index := make(map[string]int, len(items))
	out := make([]grocery.AggregatedIngredient, 0, len(items))

	for _, item := range items {
		key := strings.ToLower(strings.TrimSpace(item.Name))
		at, seen := index[key]
		if !seen {
			index[key] = len(out)
			out = append(out, item)
			continue
		}

		if out[at].Unit == item.Unit {
			out[at].TotalQuantity += item.TotalQuantity
		} else {
			r.log.Warn("duplicate item with mismatched units from aggregation",
				zap.String("item", item.Name),
				zap.String("kept_unit", string(out[at].Unit)),
				zap.String("dropped_unit", string(item.Unit)))
		}
		out[at].AppearsIn = appendMissing(out[at].AppearsIn, item.AppearsIn)
	}
	return out
}

func appendMissing(dst, add []string) []string {
	have := make(map[string]bool, len(dst))
	for _, d := range dst {
		have[d] = true
	}
	for _, a := range add {
		if !have[a] {
			dst = append(dst, a)
		}
	}
	return dst
}

// aggregate merges all per-dish ingredient lists into one shopping list.
// The fuzzy merge is delegated to the collaborator; a local post-filter
// then removes never-purchase items, duplicates are folded, and the
// grouped index is rebuilt from scratch. Aggregation failure propagates to
// the run's failure boundary.
func (r *Runner) aggregate(ctx context.Context, state RunState) (RunState, error) {
	state.Stage = StageAggregating
	r.log.Info("aggregating ingredients", zap.String("run", state.ID), zap.Int("dishes", len(state.DishIngredients)))

	items, err := r.collab.Aggregate(ctx, state.DishIngredients)
	if err != nil {
		return state, fmt.Errorf("aggregating ingredients: %w", err)
	}

	kept := make([]grocery.AggregatedIngredient, 0, len(items))
	for _, item := range items {
		if neverPurchase[strings.ToLower(strings.TrimSpace(item.Name))] {
			continue
		}
		kept = append(kept, item)
	}
	if removed := len(items) - len(kept); removed > 0 {
		r.log.Info("filtered never-purchase items", zap.Int("removed", removed))
	}
	kept = r.foldDuplicates(kept)

	list := &grocery.ShoppingList{
		MealPlan:    state.Inputs.DishNames(),
		AdultCount:  state.Inputs.AdultCount,
		ChildCount:  state.Inputs.ChildCount,
		TotalGuests: state.Inputs.TotalGuests(),
		Items:       kept,
	}
	list.BuildGrouped()

	state.ShoppingList = list
	r.log.Info("shopping list built", zap.String("run", state.ID), zap.Int("items", len(list.Items)))
	return state, nil
}

// applyCorrections delegates the current list plus the pending free-text
// correction to the collaborator and replaces the list wholesale with the
// response. A blank correction is a no-op. The caller clears
// PendingCorrections after this returns.
func (r *Runner) applyCorrections(ctx context.Context, state RunState) (RunState, error) {
	state.Stage = StageApplyingCorrections

	corrections := strings.TrimSpace(state.PendingCorrections)
	if corrections == "" {
		return state, nil
	}
	r.log.Info("applying corrections", zap.String("run", state.ID))

	items, err := r.collab.ApplyCorrections(ctx, *state.ShoppingList, corrections)
	if err != nil {
		return state, fmt.Errorf("applying corrections: %w", err)
	}

	revised := &grocery.ShoppingList{
		MealPlan:    state.ShoppingList.MealPlan,
		AdultCount:  state.ShoppingList.AdultCount,
		ChildCount:  state.ShoppingList.ChildCount,
		TotalGuests: state.ShoppingList.TotalGuests,
		Items:       r.foldDuplicates(items),
	}
	revised.BuildGrouped()

	state.ShoppingList = revised
	return state, nil
}

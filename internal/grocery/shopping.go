package grocery

import "strings"

// Ingredient is a single ingredient line within one dish's list.
type Ingredient struct {
	Name            string          `json:"name"`
	Quantity        float64         `json:"quantity"`
	Unit            QuantityUnit    `json:"unit"`
	GroceryCategory GroceryCategory `json:"grocery_category"`
	Note            string          `json:"note,omitempty"`
}

// DishServingSpec is the computed serving requirement for one dish.
// Invariant: TotalServings == AdultServings + ChildServings (rounded to two
// decimals by the quantity engine).
type DishServingSpec struct {
	DishName      string       `json:"dish_name"`
	DishCategory  DishCategory `json:"dish_category"`
	AdultServings float64      `json:"adult_servings"`
	ChildServings float64      `json:"child_servings"`
	TotalServings float64      `json:"total_servings"`
}

// DishIngredients is the resolved ingredient list for one dish at the
// serving count given by Spec.
type DishIngredients struct {
	DishName    string           `json:"dish_name"`
	Spec        *DishServingSpec `json:"serving_spec,omitempty"`
	Ingredients []Ingredient     `json:"ingredients"`
}

// AggregatedIngredient is one line of the final shopping list after
// deduplication and summing across dishes.
type AggregatedIngredient struct {
	Name            string          `json:"name"`
	TotalQuantity   float64         `json:"total_quantity"`
	Unit            QuantityUnit    `json:"unit"`
	GroceryCategory GroceryCategory `json:"grocery_category"`
	AppearsIn       []string        `json:"appears_in"`
}

// ShoppingList is the aggregated, deduplicated result of a planning run.
// Each correction round replaces the whole value; Grouped is a derived
// index and must only ever be produced by BuildGrouped.
type ShoppingList struct {
	MealPlan    []string                                   `json:"meal_plan"`
	AdultCount  int                                        `json:"adult_count"`
	ChildCount  int                                        `json:"child_count"`
	TotalGuests int                                        `json:"total_guests"`
	Items       []AggregatedIngredient                     `json:"items"`
	Grouped     map[GroceryCategory][]AggregatedIngredient `json:"grouped,omitempty"`
}

// BuildGrouped rebuilds the category index from Items. Any previous index
// is discarded; items keep their relative order within each bucket.
func (l *ShoppingList) BuildGrouped() {
	grouped := make(map[GroceryCategory][]AggregatedIngredient)
	for _, item := range l.Items {
		grouped[item.GroceryCategory] = append(grouped[item.GroceryCategory], item)
	}
	l.Grouped = grouped
}

// RemoveItems returns a copy of the list without the named items. Matching
// is case-insensitive on the trimmed item name; the grouped index of the
// returned list is rebuilt.
func (l ShoppingList) RemoveItems(names []string) ShoppingList {
	if len(names) == 0 {
		out := l
		out.BuildGrouped()
		return out
	}

	exclude := make(map[string]bool, len(names))
	for _, n := range names {
		exclude[strings.ToLower(strings.TrimSpace(n))] = true
	}

	kept := make([]AggregatedIngredient, 0, len(l.Items))
	for _, item := range l.Items {
		if exclude[strings.ToLower(strings.TrimSpace(item.Name))] {
			continue
		}
		kept = append(kept, item)
	}

	out := l
	out.Items = kept
	out.BuildGrouped()
	return out
}

// Clone returns a deep copy of the list. The copy is safe to hand out to
// callers without exposing the pipeline's own slices.
func (l *ShoppingList) Clone() *ShoppingList {
	if l == nil {
		return nil
	}
	out := *l
	out.MealPlan = append([]string(nil), l.MealPlan...)
	out.Items = make([]AggregatedIngredient, len(l.Items))
	for i, item := range l.Items {
		item.AppearsIn = append([]string(nil), item.AppearsIn...)
		out.Items[i] = item
	}
	out.BuildGrouped()
	return &out
}

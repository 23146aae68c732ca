package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"go.uber.org/zap"

	"github.com/aaronbini/hosting/internal/grocery"
)

// unitRules is appended to every ingredient-producing prompt so quantities
// come back in purchasable units.
const unitRules = `- Use standard grocery units (lbs, oz, cups, tbsp, count, bunch, cans, bottles, packages).
- Quantities must be purchasable amounts, not trace amounts ("to taste" becomes a small concrete quantity).`

// servingHints give the model a concrete per-serving size reference for the
// categories where free generation is most error prone.
var servingHints = map[grocery.DishCategory]string{
	grocery.MainProtein:          "about 0.5 lbs of protein per serving",
	grocery.SecondaryProtein:     "about 0.25 lbs of protein per serving",
	grocery.StarchSide:           "about 1 cup cooked per serving",
	grocery.Salad:                "about 1.5 cups per serving",
	grocery.PassedAppetizer:      "one piece per serving",
	grocery.BeverageAlcoholic:    "one drink per serving",
	grocery.BeverageNonAlcoholic: "one glass (roughly 12 fl oz) per serving",
}

// Service implements Collaborator over a langchaingo model using JSON-mode
// single-prompt calls.
type Service struct {
	model llms.Model
	log   *zap.Logger
}

// NewService wraps model as an enrichment collaborator. A nil logger is
// replaced with a no-op logger.
func NewService(model llms.Model, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{model: model, log: log}
}

var _ Collaborator = (*Service)(nil)

// jsonCall issues a JSON-mode completion and unmarshals the response into
// out, tolerating a markdown code fence around the payload.
func (s *Service) jsonCall(ctx context.Context, prompt string, out any) error {
	raw, err := llms.GenerateFromSinglePrompt(ctx, s.model, prompt,
		llms.WithJSONMode(),
		llms.WithTemperature(0),
	)
	if err != nil {
		return fmt.Errorf("model call: %w", err)
	}
	if err := json.Unmarshal([]byte(stripFences(raw)), out); err != nil {
		return fmt.Errorf("decoding model response: %w", err)
	}
	return nil
}

// stripFences removes a surrounding ```json ... ``` fence if present.
func stripFences(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}

type classification struct {
	Items []struct {
		DishName string               `json:"dish_name"`
		Category grocery.DishCategory `json:"category"`
	} `json:"items"`
}

// ClassifyDishes asks the model to place each dish into exactly one
// DishCategory. Dishes that come back with an invalid category are omitted
// from the result; the quantity engine applies its own default for them.
func (s *Service) ClassifyDishes(ctx context.Context, dishNames []string) (map[string]grocery.DishCategory, error) {
	categories := make([]string, len(grocery.DishCategories))
	for i, c := range grocery.DishCategories {
		categories[i] = string(c)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Categorise each dish below into exactly one of these categories: %s\n\n",
		strings.Join(categories, ", "))
	b.WriteString("Dishes:\n")
	for _, name := range dishNames {
		fmt.Fprintf(&b, "- %s\n", name)
	}
	b.WriteString(`
Rules:
- Each dish gets exactly one category, chosen by its primary role in the meal.
- Beverages always get a beverage category; appetisers get passed_appetizer.

Respond with JSON: {"items": [{"dish_name": "...", "category": "..."}]}
`)

	var parsed classification
	if err := s.jsonCall(ctx, b.String(), &parsed); err != nil {
		return nil, fmt.Errorf("classify dishes: %w", err)
	}

	result := make(map[string]grocery.DishCategory, len(parsed.Items))
	for _, item := range parsed.Items {
		if !item.Category.Valid() {
			s.log.Warn("dropping invalid dish category",
				zap.String("dish", item.DishName),
				zap.String("category", string(item.Category)))
			continue
		}
		result[item.DishName] = item.Category
	}
	s.log.Info("classified dishes", zap.Int("dishes", len(dishNames)), zap.Int("classified", len(result)))
	return result, nil
}

type enrichmentResponse struct {
	DishName    string               `json:"dish_name"`
	Ingredients []grocery.Ingredient `json:"ingredients"`
}

// EnrichIngredients resolves one dish's ingredient list at the requested
// serving count. Beverages get a beverage-only prompt so the model lists
// the drink itself instead of inventing a recipe around it.
func (s *Service) EnrichIngredients(ctx context.Context, req EnrichmentRequest) (grocery.DishIngredients, error) {
	spec := req.Spec

	var b strings.Builder
	if spec.DishCategory.IsBeverage() {
		fmt.Fprintf(&b, `You are a professional chef. Provide the ingredient list for this BEVERAGE:

Beverage: %s
Adult servings: %.2f
Child servings: %.2f
Total servings: %.2f

CRITICAL: this is a beverage, not a food dish. Return only the beverage
itself (plus mixers for cocktails) — never a recipe that uses it.
`, spec.DishName, spec.AdultServings, spec.ChildServings, spec.TotalServings)
	} else {
		fmt.Fprintf(&b, `You are a professional chef. Provide a complete ingredient list for:

Dish: %s
Dish category: %s
Total servings: %.2f
`, spec.DishName, spec.DishCategory, spec.TotalServings)
		if len(req.BaseRecipe) > 0 {
			base := req.BaseServings
			if base <= 0 {
				base = 4
			}
			factor := spec.TotalServings / float64(base)
			recipeJSON, _ := json.MarshalIndent(req.BaseRecipe, "", "  ")
			fmt.Fprintf(&b, `
Base recipe (%d servings) — multiply every quantity by exactly %.2fx:
%s

- Preserve all ingredients from the base recipe; do not add or remove any.
- The scale factor is the only quantity guide.
`, base, factor, recipeJSON)
		}
	}

	if len(req.DietaryNeeds) > 0 {
		b.WriteString("\nDietary restrictions (strict — no violating ingredients):\n")
		for _, d := range req.DietaryNeeds {
			fmt.Fprintf(&b, "- %d guest(s): %s\n", d.Count, d.Type)
		}
	}
	if hint, ok := servingHints[spec.DishCategory]; ok {
		fmt.Fprintf(&b, "- Serving size reference: %s\n", hint)
	}
	b.WriteString(unitRules)
	b.WriteString(`
- Standardise ingredient names ("olive oil" not "EVOO").
- Assign each ingredient the most appropriate grocery_category.

Respond with JSON: {"dish_name": "...", "ingredients": [{"name": "...", "quantity": 1.0, "unit": "...", "grocery_category": "...", "note": ""}]}
`)

	var parsed enrichmentResponse
	if err := s.jsonCall(ctx, b.String(), &parsed); err != nil {
		return grocery.DishIngredients{}, fmt.Errorf("enrich %q: %w", spec.DishName, err)
	}

	specCopy := spec
	s.log.Info("enriched dish",
		zap.String("dish", spec.DishName),
		zap.Int("ingredients", len(parsed.Ingredients)))
	return grocery.DishIngredients{
		DishName:    spec.DishName,
		Spec:        &specCopy,
		Ingredients: parsed.Ingredients,
	}, nil
}

type aggregatedItems struct {
	Items []grocery.AggregatedIngredient `json:"items"`
}

// Aggregate merges all dishes' ingredient lists into a single deduplicated
// item set. Fuzzy name matching (synonyms, generic-vs-specific variants)
// and unit-consistent summing are delegated to the model.
func (s *Service) Aggregate(ctx context.Context, dishes []grocery.DishIngredients) ([]grocery.AggregatedIngredient, error) {
	dishesJSON, err := json.MarshalIndent(dishes, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding dish ingredients: %w", err)
	}

	prompt := fmt.Sprintf(`You are a grocery list builder. Aggregate the ingredient
lists below into a single deduplicated shopping list.

Rules:
- Combine identical or synonymous ingredients ("scallions" and "spring onions"
  are the same item; use the more common name).
- Treat variants that differ only in specificity as the same item and keep the
  most specific name that covers all uses ("olive oil" + "extra virgin olive
  oil" becomes "extra virgin olive oil"). Never list both a generic and a
  specific variant.
- Sum quantities per ingredient, converting to consistent units where needed.
- Prefer lbs over oz when the total is 16 oz or more.
%s
- Set appears_in to the list of dish names using each ingredient.
- Assign the most appropriate grocery_category to each item.
- No two items in the result may share a name.

Ingredient lists by dish:
%s

Respond with JSON: {"items": [{"name": "...", "total_quantity": 1.0, "unit": "...", "grocery_category": "...", "appears_in": ["..."]}]}
`, unitRules, dishesJSON)

	var parsed aggregatedItems
	if err := s.jsonCall(ctx, prompt, &parsed); err != nil {
		return nil, fmt.Errorf("aggregate ingredients: %w", err)
	}
	s.log.Info("aggregated ingredients",
		zap.Int("dishes", len(dishes)),
		zap.Int("items", len(parsed.Items)))
	return parsed.Items, nil
}

// ApplyCorrections applies the host's free-text corrections to the current
// list and returns the full revised item set.
func (s *Service) ApplyCorrections(ctx context.Context, list grocery.ShoppingList, corrections string) ([]grocery.AggregatedIngredient, error) {
	listJSON, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding shopping list: %w", err)
	}

	prompt := fmt.Sprintf(`You are a grocery list editor. Update the shopping list
below based on the user's corrections.

Current shopping list:
%s

User corrections:
%s

Rules:
- Apply only the changes the user explicitly requested.
- Return the full updated list (all items, not just changed ones).

Respond with JSON: {"items": [{"name": "...", "total_quantity": 1.0, "unit": "...", "grocery_category": "...", "appears_in": ["..."]}]}
`, listJSON, corrections)

	var parsed aggregatedItems
	if err := s.jsonCall(ctx, prompt, &parsed); err != nil {
		return nil, fmt.Errorf("apply corrections: %w", err)
	}
	s.log.Info("applied corrections", zap.Int("items", len(parsed.Items)))
	return parsed.Items, nil
}

type recipeResponse struct {
	Recipes []struct {
		DishName     string   `json:"dish_name"`
		Instructions []string `json:"instructions"`
	} `json:"recipes"`
}

// GenerateRecipes returns step-by-step cooking instructions per dish. The
// already-scaled ingredient quantities are included so the instructions
// reference exactly what the host is buying.
func (s *Service) GenerateRecipes(ctx context.Context, dishes []RecipeRequest) (map[string][]string, error) {
	payload, err := json.MarshalIndent(dishes, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding recipe requests: %w", err)
	}

	prompt := fmt.Sprintf(`You are a professional chef. Write step-by-step cooking
instructions for each dish below. The ingredient quantities are already scaled
to the stated serving count; reference them as given.

Dishes:
%s

Rules:
- Number-free imperative steps ("Preheat the oven to 400F.").
- 5-12 steps per dish; include resting/cooling where relevant.

Respond with JSON: {"recipes": [{"dish_name": "...", "instructions": ["...", "..."]}]}
`, payload)

	var parsed recipeResponse
	if err := s.jsonCall(ctx, prompt, &parsed); err != nil {
		return nil, fmt.Errorf("generate recipes: %w", err)
	}

	result := make(map[string][]string, len(parsed.Recipes))
	for _, r := range parsed.Recipes {
		result[r.DishName] = r.Instructions
	}
	s.log.Info("generated recipe instructions", zap.Int("dishes", len(result)))
	return result, nil
}

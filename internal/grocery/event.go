package grocery

import "strings"

// PreparationMethod distinguishes dishes the host cooks from items bought
// ready-made. Store-bought items never need an ingredient breakdown.
type PreparationMethod string

const (
	StoreBought PreparationMethod = "store_bought"
	Homemade    PreparationMethod = "homemade"
)

// OutputFormat selects a delivery channel for the finished shopping list.
type OutputFormat string

const (
	OutputChat        OutputFormat = "in_chat"
	OutputRecipes     OutputFormat = "recipes"
	OutputSpreadsheet OutputFormat = "spreadsheet"
	OutputTaskList    OutputFormat = "task_list"
)

// DietaryNeed records one dietary restriction and how many guests it covers.
type DietaryNeed struct {
	Type  string `json:"type"`
	Count int    `json:"count"`
}

// MenuItem is one confirmed dish on the menu, optionally carrying a base
// recipe the host supplied. BaseServings defaults to 4 when a recipe is
// present but unsized.
type MenuItem struct {
	Name         string            `json:"name"`
	Preparation  PreparationMethod `json:"preparation"`
	Ingredients  []Ingredient      `json:"ingredients,omitempty"`
	BaseServings int               `json:"base_servings,omitempty"`
}

// HasRecipe reports whether the item carries a usable base recipe.
func (m MenuItem) HasRecipe() bool {
	return len(m.Ingredients) > 0
}

// EventInputs are the immutable inputs to a planning run: the confirmed
// menu, guest counts, and dietary needs gathered by the conversation layer.
type EventInputs struct {
	EventDate    string        `json:"event_date,omitempty"` // ISO YYYY-MM-DD
	AdultCount   int           `json:"adult_count"`
	ChildCount   int           `json:"child_count"`
	Menu         []MenuItem    `json:"menu"`
	DietaryNeeds []DietaryNeed `json:"dietary_needs,omitempty"`
}

// TotalGuests is the combined adult and child headcount.
func (e EventInputs) TotalGuests() int {
	return e.AdultCount + e.ChildCount
}

// DishNames returns the menu's dish names in menu order.
func (e EventInputs) DishNames() []string {
	names := make([]string, len(e.Menu))
	for i, m := range e.Menu {
		names[i] = m.Name
	}
	return names
}

// FindMenuItem looks up a menu item by name, case-insensitively.
func (e EventInputs) FindMenuItem(name string) (MenuItem, bool) {
	want := strings.ToLower(name)
	for _, m := range e.Menu {
		if strings.ToLower(m.Name) == want {
			return m, true
		}
	}
	return MenuItem{}, false
}

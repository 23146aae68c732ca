package mcptools

// --- MCP tool types for the planner server mode (--serve-mcp) ---
// These tools let a conversational client drive the planning pipeline as
// structured calls: start a run, answer its review checkpoint, and poll
// its state. The review suspension maps onto the tool boundary — a run
// started by plan_shopping_list parks at awaiting_review until a
// submit_review call resumes it.

import "github.com/aaronbini/hosting/internal/grocery"

// IngredientInput is one base-recipe ingredient supplied with a menu item.
type IngredientInput struct {
	Name            string  `json:"name" jsonschema:"ingredient name"`
	Quantity        float64 `json:"quantity" jsonschema:"quantity in the given unit"`
	Unit            string  `json:"unit" jsonschema:"unit, e.g. lbs, cups, count"`
	GroceryCategory string  `json:"groceryCategory,omitempty" jsonschema:"store aisle category"`
}

// MenuItemInput is one confirmed dish on the menu.
type MenuItemInput struct {
	Name         string            `json:"name" jsonschema:"dish name"`
	Preparation  string            `json:"preparation,omitempty" jsonschema:"store_bought or homemade (default homemade)"`
	BaseServings int               `json:"baseServings,omitempty" jsonschema:"servings the base recipe was written for (default 4)"`
	Ingredients  []IngredientInput `json:"ingredients,omitempty" jsonschema:"base recipe ingredients, if the host supplied a recipe"`
}

// DietaryNeedInput is one dietary restriction with a guest count.
type DietaryNeedInput struct {
	Type  string `json:"type" jsonschema:"restriction, e.g. vegetarian, gluten-free"`
	Count int    `json:"count" jsonschema:"number of guests with this restriction"`
}

// PlanInput is the input for the plan_shopping_list MCP tool.
type PlanInput struct {
	EventDate     string             `json:"eventDate,omitempty" jsonschema:"event date, ISO YYYY-MM-DD"`
	AdultCount    int                `json:"adultCount" jsonschema:"number of adult guests"`
	ChildCount    int                `json:"childCount,omitempty" jsonschema:"number of child guests"`
	Menu          []MenuItemInput    `json:"menu" jsonschema:"the confirmed menu"`
	DietaryNeeds  []DietaryNeedInput `json:"dietaryNeeds,omitempty" jsonschema:"dietary restrictions"`
	OutputFormats []string           `json:"outputFormats,omitempty" jsonschema:"requested outputs: in_chat, recipes, spreadsheet, task_list"`
	PriorRunID    string             `json:"priorRunId,omitempty" jsonschema:"ID of a completed run; reuses its shopping list and skips straight to delivery"`
}

// PlanOutput is the result of the plan_shopping_list MCP tool.
type PlanOutput struct {
	RunID        string                `json:"runId"`
	Stage        string                `json:"stage"`
	Status       string                `json:"status"` // "awaiting_review", "completed", or "failed"
	Message      string                `json:"message,omitempty"`
	ShoppingList *grocery.ShoppingList `json:"shoppingList,omitempty"`
	Deliverables *Deliverables         `json:"deliverables,omitempty"`
}

// SubmitReviewInput is the input for the submit_review MCP tool.
type SubmitReviewInput struct {
	RunID       string   `json:"runId" jsonschema:"run to resume"`
	Approved    bool     `json:"approved,omitempty" jsonschema:"approve the list as presented"`
	Exclusions  []string `json:"exclusions,omitempty" jsonschema:"item names to drop on approval"`
	Corrections string   `json:"corrections,omitempty" jsonschema:"free-text corrections; blank means approval"`
}

// SubmitReviewOutput is the result of the submit_review MCP tool. After a
// correction round the run is back at awaiting_review with the revised
// list; after an approval it carries the deliverables.
type SubmitReviewOutput struct {
	RunID        string                `json:"runId"`
	Stage        string                `json:"stage"`
	Status       string                `json:"status"`
	Message      string                `json:"message,omitempty"`
	ShoppingList *grocery.ShoppingList `json:"shoppingList,omitempty"`
	Deliverables *Deliverables         `json:"deliverables,omitempty"`
}

// GetRunInput is the input for the get_run MCP tool.
type GetRunInput struct {
	RunID string `json:"runId" jsonschema:"run to inspect"`
}

// GetRunOutput is the result of the get_run MCP tool.
type GetRunOutput struct {
	RunID        string                `json:"runId"`
	Stage        string                `json:"stage"`
	Error        string                `json:"error,omitempty"`
	ShoppingList *grocery.ShoppingList `json:"shoppingList,omitempty"`
	Deliverables *Deliverables         `json:"deliverables,omitempty"`
}

// Deliverables collects the outputs of a completed run. Channels that
// failed or were skipped are empty.
type Deliverables struct {
	ChatOutput     string `json:"chatOutput,omitempty"`
	RecipesOutput  string `json:"recipesOutput,omitempty"`
	SpreadsheetURL string `json:"spreadsheetUrl,omitempty"`
	TaskListURL    string `json:"taskListUrl,omitempty"`
}

// Package deliver produces the externally consumable artifacts of a
// finished planning run: in-chat markdown, recipe text, a formula-driven
// spreadsheet, and a task-list checklist. The spreadsheet and task-list
// services talk to their providers through narrow interfaces so the
// OAuth-backed transports stay outside this module.
package deliver

import (
	"fmt"
	"math"
	"strings"

	"github.com/aaronbini/hosting/internal/grocery"
)

// titleCase renders a grocery category for display ("passed_appetizer"
// becomes "Passed Appetizer").
func titleCase(c grocery.GroceryCategory) string {
	words := strings.Split(string(c), "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// FormatChatOutput renders the shopping list as markdown for in-chat
// display. Quantities are rounded up to whole numbers for shopping
// clarity; categories appear in canonical aisle order.
func FormatChatOutput(list *grocery.ShoppingList) string {
	if list == nil || len(list.Items) == 0 {
		return "No shopping list available."
	}

	var b strings.Builder
	b.WriteString("## Shopping List\n")

	for _, category := range grocery.GroceryCategories {
		items := list.Grouped[category]
		if len(items) == 0 {
			continue
		}
		fmt.Fprintf(&b, "\n**%s**\n", titleCase(category))
		for _, item := range items {
			qty := int(math.Ceil(item.TotalQuantity))
			fmt.Fprintf(&b, "- %s: %d %s\n", item.Name, qty, item.Unit)
		}
	}

	return b.String()
}

// FormatRecipes renders generated cooking instructions as a "## Recipes"
// markdown section. Dishes keep their input order; a dish with no
// instructions still gets its scaled ingredient list.
func FormatRecipes(dishes []grocery.DishIngredients, instructions map[string][]string) string {
	if len(dishes) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("## Recipes\n")

	for _, dish := range dishes {
		b.WriteString("\n---\n\n")
		fmt.Fprintf(&b, "### %s\n", dish.DishName)
		if dish.Spec != nil {
			fmt.Fprintf(&b, "*Serves %.0f*\n", dish.Spec.TotalServings)
		}

		b.WriteString("\n**Ingredients**\n")
		for _, ing := range dish.Ingredients {
			qty := int(math.Ceil(ing.Quantity))
			fmt.Fprintf(&b, "- %d %s %s\n", qty, ing.Unit, ing.Name)
		}

		steps := instructions[dish.DishName]
		if len(steps) > 0 {
			b.WriteString("\n**Instructions**\n")
			for i, step := range steps {
				fmt.Fprintf(&b, "%d. %s\n", i+1, step)
			}
		}
	}

	return b.String()
}

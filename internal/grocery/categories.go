// Package grocery defines the domain model shared by the planning pipeline:
// dish and grocery categories, quantity units, per-dish serving specs and
// ingredient lists, and the aggregated shopping list.
package grocery

// DishCategory classifies a menu item by its role in the meal. The set is
// closed: the quantity engine owns a serving multiplier for every value.
type DishCategory string

const (
	MainProtein          DishCategory = "main_protein"
	SecondaryProtein     DishCategory = "secondary_protein"
	StarchSide           DishCategory = "starch_side"
	VegetableSide        DishCategory = "vegetable_side"
	Salad                DishCategory = "salad"
	Bread                DishCategory = "bread"
	Dessert              DishCategory = "dessert"
	PassedAppetizer      DishCategory = "passed_appetizer"
	BeverageAlcoholic    DishCategory = "beverage_alcoholic"
	BeverageNonAlcoholic DishCategory = "beverage_nonalcoholic"
)

// DishCategories lists every valid DishCategory.
var DishCategories = []DishCategory{
	MainProtein,
	SecondaryProtein,
	StarchSide,
	VegetableSide,
	Salad,
	Bread,
	Dessert,
	PassedAppetizer,
	BeverageAlcoholic,
	BeverageNonAlcoholic,
}

// IsBeverage reports whether the category is one of the two beverage kinds.
func (c DishCategory) IsBeverage() bool {
	return c == BeverageAlcoholic || c == BeverageNonAlcoholic
}

// Valid reports whether c is a member of the closed category set.
func (c DishCategory) Valid() bool {
	switch c {
	case MainProtein, SecondaryProtein, StarchSide, VegetableSide,
		Salad, Bread, Dessert, PassedAppetizer,
		BeverageAlcoholic, BeverageNonAlcoholic:
		return true
	default:
		return false
	}
}

// GroceryCategory is the store aisle grouping used to organize the final
// shopping list.
type GroceryCategory string

const (
	Proteins   GroceryCategory = "proteins"
	Produce    GroceryCategory = "produce"
	Dairy      GroceryCategory = "dairy"
	Pantry     GroceryCategory = "pantry"
	Bakery     GroceryCategory = "bakery"
	Beverages  GroceryCategory = "beverages"
	Frozen     GroceryCategory = "frozen"
	Condiments GroceryCategory = "condiments"
	Other      GroceryCategory = "other"
)

// GroceryCategories lists every valid GroceryCategory in display order.
var GroceryCategories = []GroceryCategory{
	Proteins, Produce, Dairy, Pantry, Bakery, Beverages, Frozen, Condiments, Other,
}

// QuantityUnit is the unit attached to an ingredient quantity.
type QuantityUnit string

const (
	// Weight
	Ounces QuantityUnit = "oz"
	Pounds QuantityUnit = "lbs"
	Grams  QuantityUnit = "grams"
	Kilos  QuantityUnit = "kg"
	// Volume
	Teaspoons   QuantityUnit = "tsp"
	Tablespoons QuantityUnit = "tbsp"
	Cups        QuantityUnit = "cups"
	FluidOunces QuantityUnit = "fl oz"
	Pints       QuantityUnit = "pints"
	Quarts      QuantityUnit = "quarts"
	Gallons     QuantityUnit = "gallons"
	Liters      QuantityUnit = "liters"
	Milliliters QuantityUnit = "ml"
	// Count
	Count QuantityUnit = "count"
	Dozen QuantityUnit = "dozen"
	// Bulk
	Bunch    QuantityUnit = "bunch"
	Head     QuantityUnit = "head"
	Cloves   QuantityUnit = "cloves"
	Slices   QuantityUnit = "slices"
	Cans     QuantityUnit = "cans"
	Bottles  QuantityUnit = "bottles"
	Packages QuantityUnit = "packages"
)

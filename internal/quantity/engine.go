// Package quantity converts a confirmed menu and guest counts into per-dish
// serving specs. It is pure lookup-table arithmetic with no I/O and no
// failure modes beyond a safe default for unclassified dishes.
package quantity

import (
	"math"

	"github.com/aaronbini/hosting/internal/grocery"
)

// Per-person serving multipliers by dish category. Values are servings per
// guest and are intentionally generous: slightly over-buying beats running
// short at a party. Every DishCategory must appear in both tables.
var adultServingsPerPerson = map[grocery.DishCategory]float64{
	grocery.MainProtein:          1.25,
	grocery.SecondaryProtein:     0.5,
	grocery.StarchSide:           1.0,
	grocery.VegetableSide:        1.0,
	grocery.Salad:                1.0,
	grocery.Bread:                1.0,
	grocery.Dessert:              1.0,
	grocery.PassedAppetizer:      2.0, // pieces per person
	grocery.BeverageAlcoholic:    1.5, // drinks per person
	grocery.BeverageNonAlcoholic: 1.5,
}

// Children eat roughly 60% of an adult portion; dessert is the exception
// (kids always want dessert) and alcohol is always zero.
var childServingsPerPerson = map[grocery.DishCategory]float64{
	grocery.MainProtein:          0.75,
	grocery.SecondaryProtein:     0.5,
	grocery.StarchSide:           0.75,
	grocery.VegetableSide:        0.5,
	grocery.Salad:                0.5,
	grocery.Bread:                1.0,
	grocery.Dessert:              1.0,
	grocery.PassedAppetizer:      1.0,
	grocery.BeverageAlcoholic:    0.0,
	grocery.BeverageNonAlcoholic: 1.0,
}

// round2 rounds to two decimal places.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// ServingSpecFor computes the serving requirement for a single dish from
// the per-category multiplier tables and the guest counts.
func ServingSpecFor(dishName string, category grocery.DishCategory, adultCount, childCount int) grocery.DishServingSpec {
	adult := round2(float64(adultCount) * adultServingsPerPerson[category])
	child := round2(float64(childCount) * childServingsPerPerson[category])

	return grocery.DishServingSpec{
		DishName:      dishName,
		DishCategory:  category,
		AdultServings: adult,
		ChildServings: child,
		TotalServings: round2(adult + child),
	}
}

// AllServingSpecs computes a serving spec for every dish in the menu,
// preserving menu order. Dishes missing from the category map (upstream
// classification failure) default to starch side rather than aborting the
// run.
func AllServingSpecs(dishNames []string, categories map[string]grocery.DishCategory, adultCount, childCount int) []grocery.DishServingSpec {
	specs := make([]grocery.DishServingSpec, 0, len(dishNames))
	for _, dish := range dishNames {
		category, ok := categories[dish]
		if !ok || !category.Valid() {
			category = grocery.StarchSide
		}
		specs = append(specs, ServingSpecFor(dish, category, adultCount, childCount))
	}
	return specs
}

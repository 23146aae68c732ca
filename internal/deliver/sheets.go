package deliver

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/aaronbini/hosting/internal/grocery"
)

// childServingFactor is the fraction of an adult serving a child eats. It
// seeds the editable cell on the overview tab and must match the effective
// guest formula so rescaling stays consistent.
const childServingFactor = 0.75

// SheetTab is one tab of a spreadsheet payload. Cell values beginning with
// "=" are formulas; the provider is expected to enter values in
// user-entered mode.
type SheetTab struct {
	Title        string
	Rows         [][]string
	FrozenRows   int
	BoldRows     []int // zero-based row indexes to render bold
	CheckboxRows []int // zero-based row indexes with a checkbox in the last column
}

// Spreadsheet is a fully built spreadsheet payload ready for creation.
type Spreadsheet struct {
	Title string
	Tabs  []SheetTab
}

// SpreadsheetRef identifies a created spreadsheet.
type SpreadsheetRef struct {
	ID  string
	URL string
}

// SpreadsheetAPI is the provider boundary for spreadsheet creation. The
// OAuth transport behind it is external to this module; absence of
// credentials means no SpreadsheetAPI is supplied at all.
type SpreadsheetAPI interface {
	CreateSpreadsheet(ctx context.Context, sheet Spreadsheet) (SpreadsheetRef, error)
}

// SheetService builds and creates the two-tab party spreadsheet:
//
//	Tab 1 — Party Overview: event details with editable guest-count cells.
//	Tab 2 — Shopping List: quantities formula-driven off the effective
//	        guest count (=B4+B5*B6) so editing the overview rescales
//	        every quantity.
type SheetService struct {
	api SpreadsheetAPI
	log *zap.Logger
}

// NewSheetService creates a SheetService over the given provider.
func NewSheetService(api SpreadsheetAPI, log *zap.Logger) *SheetService {
	if log == nil {
		log = zap.NewNop()
	}
	return &SheetService{api: api, log: log}
}

// CreatePartySheet builds the spreadsheet payload and creates it via the
// provider, returning the created spreadsheet reference.
func (s *SheetService) CreatePartySheet(ctx context.Context, inputs grocery.EventInputs, list *grocery.ShoppingList, title string) (SpreadsheetRef, error) {
	sheet := BuildPartySheet(inputs, list, title)

	ref, err := s.api.CreateSpreadsheet(ctx, sheet)
	if err != nil {
		return SpreadsheetRef{}, fmt.Errorf("creating spreadsheet: %w", err)
	}

	s.log.Info("spreadsheet created", zap.String("id", ref.ID), zap.String("url", ref.URL))
	return ref, nil
}

// BuildPartySheet assembles the two-tab payload. Exported separately from
// CreatePartySheet so the layout is testable without a provider.
func BuildPartySheet(inputs grocery.EventInputs, list *grocery.ShoppingList, title string) Spreadsheet {
	adultCount := inputs.AdultCount
	childCount := inputs.ChildCount
	if list != nil {
		adultCount = list.AdultCount
		childCount = list.ChildCount
	}

	// Weighted denominator for the quantity formulas; must match the B7
	// formula on the overview tab.
	weightedTotal := float64(adultCount) + float64(childCount)*childServingFactor
	if weightedTotal < 1 {
		weightedTotal = 1
	}

	dietary := make([]string, 0, len(inputs.DietaryNeeds))
	for _, d := range inputs.DietaryNeeds {
		dietary = append(dietary, fmt.Sprintf("%d %s", d.Count, d.Type))
	}
	dietaryNote := strings.Join(dietary, "; ")
	if dietaryNote == "" {
		dietaryNote = "None"
	}

	overview := SheetTab{
		Title: "Party Overview",
		Rows: [][]string{
			{title},
			{},
			{"Event Date", inputs.EventDate},
			{"Adults", fmt.Sprintf("%d", adultCount)},
			{"Children", fmt.Sprintf("%d", childCount)},
			{"Child Serving Factor", fmt.Sprintf("%g", childServingFactor)},
			{"Effective Guests", "=B4+B5*B6"},
			{},
			{"Dietary Notes", dietaryNote},
		},
		FrozenRows: 1,
		BoldRows:   []int{0, 2, 3, 4, 5, 6, 8},
	}

	shopping := SheetTab{
		Title: "Shopping List",
		Rows: [][]string{
			{"Shopping List — quantities scale with 'Party Overview' guest count"},
			{},
		},
		FrozenRows: 1,
		BoldRows:   []int{0},
	}

	if list != nil {
		for _, category := range grocery.GroceryCategories {
			items := list.Grouped[category]
			if len(items) == 0 {
				continue
			}

			header := fmt.Sprintf("── %s ──", strings.ToUpper(strings.ReplaceAll(string(category), "_", " ")))
			shopping.Rows = append(shopping.Rows, []string{header})
			shopping.BoldRows = append(shopping.BoldRows, len(shopping.Rows)-1)

			shopping.Rows = append(shopping.Rows, []string{"Ingredient", "Quantity", "Unit", "Used In", "Already Have?"})
			shopping.BoldRows = append(shopping.BoldRows, len(shopping.Rows)-1)

			for _, item := range items {
				formula := fmt.Sprintf("=ROUND(%g * 'Party Overview'!B7 / %g, 2)",
					item.TotalQuantity, weightedTotal)
				shopping.Rows = append(shopping.Rows, []string{
					item.Name, formula, string(item.Unit), strings.Join(item.AppearsIn, ", "), "FALSE",
				})
				shopping.CheckboxRows = append(shopping.CheckboxRows, len(shopping.Rows)-1)
			}

			shopping.Rows = append(shopping.Rows, []string{})
		}
	}

	return Spreadsheet{
		Title: title,
		Tabs:  []SheetTab{overview, shopping},
	}
}

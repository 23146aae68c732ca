// Package orchestrator runs the grocery planning pipeline: deterministic
// quantity math, concurrent per-dish enrichment, delegated aggregation, a
// human-gated review cycle, and a parallel delivery fan-out. A single
// RunState value threads through every stage; stages take the state by
// value and return a replacement, so no two stages ever mutate it
// concurrently.
package orchestrator

import (
	"context"

	"github.com/aaronbini/hosting/internal/deliver"
	"github.com/aaronbini/hosting/internal/grocery"
)

// Stage identifies the pipeline's position. The only legal self-loop is
// AwaitingReview <-> ApplyingCorrections; StageError is reachable from any
// stage.
type Stage int

const (
	StageIdle Stage = iota
	StageCalculatingQuantities
	StageGettingIngredients
	StageAggregating
	StageAwaitingReview
	StageApplyingCorrections
	StageDelivering
	StageComplete
	StageError
)

func (s Stage) String() string {
	names := [...]string{
		"idle",
		"calculating_quantities",
		"getting_ingredients",
		"aggregating",
		"awaiting_review",
		"applying_corrections",
		"delivering",
		"complete",
		"error",
	}
	if int(s) < len(names) {
		return names[s]
	}
	return "unknown"
}

// RunState is the single mutable object of a planning run. It is owned
// exclusively by the Runner; stage functions receive it by value and
// return the next value. Inputs and Formats are immutable after creation.
type RunState struct {
	ID      string
	Stage   Stage
	Inputs  grocery.EventInputs
	Formats []grocery.OutputFormat

	// Stage outputs, in pipeline order.
	ServingSpecs    []grocery.DishServingSpec
	DishIngredients []grocery.DishIngredients
	ShoppingList    *grocery.ShoppingList

	// PendingCorrections is transient: set when the host submits a
	// correction round, cleared once applied.
	PendingCorrections string

	// Deliverables. A failed or skipped delivery channel leaves its field
	// unset.
	ChatOutput    string
	RecipesOutput string
	Spreadsheet   *deliver.SpreadsheetRef
	TaskList      *deliver.TaskListRef

	// Err is set only on unrecoverable failure and is terminal.
	Err string
}

// HasShoppingList reports whether a prior run produced a usable list,
// which lets a re-invocation skip straight to delivery.
func (s RunState) HasShoppingList() bool {
	return s.ShoppingList != nil && len(s.ShoppingList.Items) > 0
}

// Clone returns a deep copy safe to hand to callers or persist.
func (s RunState) Clone() RunState {
	out := s
	out.Formats = append([]grocery.OutputFormat(nil), s.Formats...)
	out.ServingSpecs = append([]grocery.DishServingSpec(nil), s.ServingSpecs...)

	out.DishIngredients = make([]grocery.DishIngredients, len(s.DishIngredients))
	for i, d := range s.DishIngredients {
		d.Ingredients = append([]grocery.Ingredient(nil), d.Ingredients...)
		if d.Spec != nil {
			spec := *d.Spec
			d.Spec = &spec
		}
		out.DishIngredients[i] = d
	}

	out.ShoppingList = s.ShoppingList.Clone()
	if s.Spreadsheet != nil {
		ref := *s.Spreadsheet
		out.Spreadsheet = &ref
	}
	if s.TaskList != nil {
		ref := *s.TaskList
		out.TaskList = &ref
	}
	return out
}

// wantsFormat reports whether the run requested the given output format.
func (s RunState) wantsFormat(f grocery.OutputFormat) bool {
	for _, have := range s.Formats {
		if have == f {
			return true
		}
	}
	return false
}

// ReviewResponse is the host's single reply to a review checkpoint. Blank
// Corrections means approval; Exclusions optionally names items to drop
// from the approved list.
type ReviewResponse struct {
	Approved    bool
	Exclusions  []string
	Corrections string
}

// SpreadsheetCreator is the optional spreadsheet delivery collaborator.
type SpreadsheetCreator interface {
	CreatePartySheet(ctx context.Context, inputs grocery.EventInputs, list *grocery.ShoppingList, title string) (deliver.SpreadsheetRef, error)
}

// TaskListCreator is the optional task-list delivery collaborator.
type TaskListCreator interface {
	CreateShoppingList(ctx context.Context, list *grocery.ShoppingList, title string) (deliver.TaskListRef, error)
}

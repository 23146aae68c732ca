package mcptools

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/aaronbini/hosting/internal/grocery"
	"github.com/aaronbini/hosting/internal/orchestrator"
)

// PlanService adapts the orchestrator Runner to MCP tool handlers.
type PlanService struct {
	runner *orchestrator.Runner
	store  *orchestrator.RunStore
	log    *zap.Logger
}

// NewPlanService creates a PlanService over the given runner and store.
func NewPlanService(runner *orchestrator.Runner, store *orchestrator.RunStore, log *zap.Logger) *PlanService {
	if log == nil {
		log = zap.NewNop()
	}
	return &PlanService{runner: runner, store: store, log: log}
}

// parseFormats validates the requested output formats. Unknown formats are
// rejected so a typo never silently drops a delivery channel.
func parseFormats(raw []string) ([]grocery.OutputFormat, error) {
	if len(raw) == 0 {
		return []grocery.OutputFormat{grocery.OutputChat}, nil
	}
	formats := make([]grocery.OutputFormat, 0, len(raw))
	for _, f := range raw {
		switch of := grocery.OutputFormat(f); of {
		case grocery.OutputChat, grocery.OutputRecipes, grocery.OutputSpreadsheet, grocery.OutputTaskList:
			formats = append(formats, of)
		default:
			return nil, fmt.Errorf("unknown output format %q", f)
		}
	}
	return formats, nil
}

// toEventInputs converts the tool input to domain inputs.
func toEventInputs(in PlanInput) grocery.EventInputs {
	menu := make([]grocery.MenuItem, len(in.Menu))
	for i, m := range in.Menu {
		prep := grocery.Homemade
		if grocery.PreparationMethod(m.Preparation) == grocery.StoreBought {
			prep = grocery.StoreBought
		}
		ingredients := make([]grocery.Ingredient, len(m.Ingredients))
		for j, ing := range m.Ingredients {
			category := grocery.GroceryCategory(ing.GroceryCategory)
			if category == "" {
				category = grocery.Other
			}
			ingredients[j] = grocery.Ingredient{
				Name:            ing.Name,
				Quantity:        ing.Quantity,
				Unit:            grocery.QuantityUnit(ing.Unit),
				GroceryCategory: category,
			}
		}
		menu[i] = grocery.MenuItem{
			Name:         m.Name,
			Preparation:  prep,
			Ingredients:  ingredients,
			BaseServings: m.BaseServings,
		}
	}

	needs := make([]grocery.DietaryNeed, len(in.DietaryNeeds))
	for i, d := range in.DietaryNeeds {
		needs[i] = grocery.DietaryNeed{Type: d.Type, Count: d.Count}
	}

	return grocery.EventInputs{
		EventDate:    in.EventDate,
		AdultCount:   in.AdultCount,
		ChildCount:   in.ChildCount,
		Menu:         menu,
		DietaryNeeds: needs,
	}
}

// deliverables extracts the completed outputs from a run state, or nil if
// there are none yet.
func deliverables(state orchestrator.RunState) *Deliverables {
	d := Deliverables{
		ChatOutput:    state.ChatOutput,
		RecipesOutput: state.RecipesOutput,
	}
	if state.Spreadsheet != nil {
		d.SpreadsheetURL = state.Spreadsheet.URL
	}
	if state.TaskList != nil {
		d.TaskListURL = state.TaskList.URL
	}
	if d == (Deliverables{}) {
		return nil
	}
	return &d
}

// statusFor maps a terminal or suspended stage to the tool status string.
func statusFor(state orchestrator.RunState) string {
	switch state.Stage {
	case orchestrator.StageAwaitingReview:
		return "awaiting_review"
	case orchestrator.StageComplete:
		return "completed"
	case orchestrator.StageError:
		return "failed"
	default:
		return state.Stage.String()
	}
}

// PlanShoppingList starts a planning run. With no prior run the pipeline
// executes up to the review checkpoint and returns the list for approval;
// with priorRunId set and a cached shopping list present, the run skips
// straight to delivery.
func (s *PlanService) PlanShoppingList(ctx context.Context, _ *mcp.CallToolRequest, in PlanInput) (*mcp.CallToolResult, PlanOutput, error) {
	formats, err := parseFormats(in.OutputFormats)
	if err != nil {
		return nil, PlanOutput{}, err
	}

	var prior *orchestrator.RunState
	if in.PriorRunID != "" {
		state, err := s.store.Get(in.PriorRunID)
		if err != nil {
			return nil, PlanOutput{}, fmt.Errorf("prior run: %w", err)
		}
		prior = &state
	} else if len(in.Menu) == 0 {
		return nil, PlanOutput{}, fmt.Errorf("menu is required")
	}

	state, runErr := s.runner.Start(ctx, toEventInputs(in), formats, prior)

	out := PlanOutput{
		RunID:        state.ID,
		Stage:        state.Stage.String(),
		Status:       statusFor(state),
		ShoppingList: state.ShoppingList,
		Deliverables: deliverables(state),
	}
	if runErr != nil {
		out.Message = state.Err
		return nil, out, nil
	}
	return nil, out, nil
}

// SubmitReview resumes a run suspended at its review checkpoint.
func (s *PlanService) SubmitReview(ctx context.Context, _ *mcp.CallToolRequest, in SubmitReviewInput) (*mcp.CallToolResult, SubmitReviewOutput, error) {
	if in.RunID == "" {
		return nil, SubmitReviewOutput{}, fmt.Errorf("runId is required")
	}

	state, err := s.runner.SubmitReview(ctx, in.RunID, orchestrator.ReviewResponse{
		Approved:    in.Approved,
		Exclusions:  in.Exclusions,
		Corrections: in.Corrections,
	})
	if err != nil && state.ID == "" {
		// The run was never found; surface as a tool error.
		return nil, SubmitReviewOutput{}, err
	}

	out := SubmitReviewOutput{
		RunID:        state.ID,
		Stage:        state.Stage.String(),
		Status:       statusFor(state),
		ShoppingList: state.ShoppingList,
		Deliverables: deliverables(state),
	}
	if err != nil {
		out.Message = err.Error()
	}
	return nil, out, nil
}

// GetRun returns the current state of a run.
func (s *PlanService) GetRun(_ context.Context, _ *mcp.CallToolRequest, in GetRunInput) (*mcp.CallToolResult, GetRunOutput, error) {
	if in.RunID == "" {
		return nil, GetRunOutput{}, fmt.Errorf("runId is required")
	}

	state, err := s.store.Get(in.RunID)
	if err != nil {
		return nil, GetRunOutput{}, err
	}

	return nil, GetRunOutput{
		RunID:        state.ID,
		Stage:        state.Stage.String(),
		Error:        state.Err,
		ShoppingList: state.ShoppingList,
		Deliverables: deliverables(state),
	}, nil
}

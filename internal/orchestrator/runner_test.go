package orchestrator

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aaronbini/hosting/internal/deliver"
	"github.com/aaronbini/hosting/internal/enrich"
	"github.com/aaronbini/hosting/internal/grocery"
)

type mockSheets struct {
	create func(ctx context.Context, inputs grocery.EventInputs, list *grocery.ShoppingList, title string) (deliver.SpreadsheetRef, error)
}

func (m *mockSheets) CreatePartySheet(ctx context.Context, inputs grocery.EventInputs, list *grocery.ShoppingList, title string) (deliver.SpreadsheetRef, error) {
	return m.create(ctx, inputs, list, title)
}

type mockTasks struct {
	create func(ctx context.Context, list *grocery.ShoppingList, title string) (deliver.TaskListRef, error)
}

func (m *mockTasks) CreateShoppingList(ctx context.Context, list *grocery.ShoppingList, title string) (deliver.TaskListRef, error) {
	return m.create(ctx, list, title)
}

// partyInputs is the standard fixture: one homemade dish with a sized
// recipe and one store-bought beverage, for eight adults.
func partyInputs() grocery.EventInputs {
	return grocery.EventInputs{
		EventDate:  "2026-07-04",
		AdultCount: 8,
		Menu: []grocery.MenuItem{
			{
				Name:         "Ribs",
				Preparation:  grocery.Homemade,
				BaseServings: 4,
				Ingredients: []grocery.Ingredient{
					{Name: "pork ribs", Quantity: 4, Unit: grocery.Pounds, GroceryCategory: grocery.Proteins},
					{Name: "bbq sauce", Quantity: 1, Unit: grocery.Cups, GroceryCategory: grocery.Condiments},
				},
			},
			{Name: "Soda", Preparation: grocery.StoreBought},
		},
	}
}

func partyClassifier() func(context.Context, []string) (map[string]grocery.DishCategory, error) {
	return func(context.Context, []string) (map[string]grocery.DishCategory, error) {
		return map[string]grocery.DishCategory{
			"Ribs": grocery.MainProtein,
			"Soda": grocery.BeverageNonAlcoholic,
		}, nil
	}
}

func TestStart_SuspendsAtReviewCheckpoint(t *testing.T) {
	collab := &mockCollaborator{classify: partyClassifier()}
	notes := &recordingNotifier{}
	r, store := newTestRunner(collab, notes, nil, nil)

	state, err := r.Start(context.Background(), partyInputs(), []grocery.OutputFormat{grocery.OutputChat}, nil)
	require.NoError(t, err)

	assert.Equal(t, StageAwaitingReview, state.Stage)
	assert.NotEmpty(t, state.ID)
	require.NotNil(t, state.ShoppingList)
	assert.NotEmpty(t, state.ShoppingList.Items)

	// Suspended state is retrievable for a later SubmitReview.
	stored, err := store.Get(state.ID)
	require.NoError(t, err)
	assert.Equal(t, StageAwaitingReview, stored.Stage)

	// One progress note per executed stage, one review checkpoint, no
	// completion yet.
	assert.Len(t, notes.byType(NoteProgress), 3)
	reviews := notes.byType(NoteReview)
	require.Len(t, reviews, 1)
	assert.Equal(t, state.ID, reviews[0].RunID)
	require.NotNil(t, reviews[0].ShoppingList)
	assert.Empty(t, notes.byType(NoteComplete))
}

func TestStart_RibsAndSodaEndToEnd(t *testing.T) {
	collab := &mockCollaborator{classify: partyClassifier()}
	notes := &recordingNotifier{}
	r, _ := newTestRunner(collab, notes, nil, nil)

	ctx := context.Background()
	state, err := r.Start(ctx, partyInputs(), []grocery.OutputFormat{grocery.OutputChat}, nil)
	require.NoError(t, err)

	// Ribs: 8 adults x 1.25 = 10 servings, recipe sized for 4, so the base
	// quantities scale by 2.5. Soda is store-bought: one count line, no
	// delegation for either dish.
	assert.Equal(t, int32(0), collab.enrichCalls.Load())
	byName := map[string]grocery.AggregatedIngredient{}
	for _, item := range state.ShoppingList.Items {
		byName[strings.ToLower(item.Name)] = item
	}
	require.Contains(t, byName, "pork ribs")
	assert.InDelta(t, 10.0, byName["pork ribs"].TotalQuantity, 0.01)
	require.Contains(t, byName, "bbq sauce")
	assert.InDelta(t, 2.5, byName["bbq sauce"].TotalQuantity, 0.01)
	require.Contains(t, byName, "soda")
	assert.Equal(t, 1.0, byName["soda"].TotalQuantity)

	state, err = r.SubmitReview(ctx, state.ID, ReviewResponse{Approved: true})
	require.NoError(t, err)

	assert.Equal(t, StageComplete, state.Stage)
	assert.Contains(t, state.ChatOutput, "pork ribs")
	assert.Contains(t, state.ChatOutput, "Soda")

	// Approval on the first pass means exactly one review checkpoint.
	assert.Len(t, notes.byType(NoteReview), 1)
	completes := notes.byType(NoteComplete)
	require.Len(t, completes, 1)
	assert.Equal(t, state.ChatOutput, completes[0].ChatOutput)
}

func TestSubmitReview_CorrectionRoundsRepresentTheList(t *testing.T) {
	collab := &mockCollaborator{
		classify: partyClassifier(),
		corrections: func(_ context.Context, list grocery.ShoppingList, _ string) ([]grocery.AggregatedIngredient, error) {
			return list.Items, nil
		},
	}
	notes := &recordingNotifier{}
	r, _ := newTestRunner(collab, notes, nil, nil)

	ctx := context.Background()
	state, err := r.Start(ctx, partyInputs(), nil, nil)
	require.NoError(t, err)

	// Two correction rounds: each re-presents the list and stays suspended.
	for i := 0; i < 2; i++ {
		state, err = r.SubmitReview(ctx, state.ID, ReviewResponse{Corrections: "more sauce please"})
		require.NoError(t, err)
		assert.Equal(t, StageAwaitingReview, state.Stage)
		assert.Empty(t, state.PendingCorrections)
	}

	state, err = r.SubmitReview(ctx, state.ID, ReviewResponse{Approved: true})
	require.NoError(t, err)
	assert.Equal(t, StageComplete, state.Stage)

	// N correction rounds produce N+1 review checkpoints.
	assert.Len(t, notes.byType(NoteReview), 3)
	assert.Len(t, notes.byType(NoteComplete), 1)
}

func TestSubmitReview_BlankResponseImpliesApproval(t *testing.T) {
	collab := &mockCollaborator{classify: partyClassifier()}
	r, _ := newTestRunner(collab, &recordingNotifier{}, nil, nil)

	ctx := context.Background()
	state, err := r.Start(ctx, partyInputs(), nil, nil)
	require.NoError(t, err)

	state, err = r.SubmitReview(ctx, state.ID, ReviewResponse{})
	require.NoError(t, err)
	assert.Equal(t, StageComplete, state.Stage)
}

func TestSubmitReview_ExclusionsRemovedOnApproval(t *testing.T) {
	collab := &mockCollaborator{classify: partyClassifier()}
	r, _ := newTestRunner(collab, &recordingNotifier{}, nil, nil)

	ctx := context.Background()
	state, err := r.Start(ctx, partyInputs(), nil, nil)
	require.NoError(t, err)
	before := len(state.ShoppingList.Items)

	state, err = r.SubmitReview(ctx, state.ID, ReviewResponse{
		Approved:   true,
		Exclusions: []string{"BBQ Sauce"},
	})
	require.NoError(t, err)

	assert.Len(t, state.ShoppingList.Items, before-1)
	for _, item := range state.ShoppingList.Items {
		assert.NotEqual(t, "bbq sauce", strings.ToLower(item.Name))
	}
	assert.NotContains(t, state.ChatOutput, "bbq sauce")
}

func TestSubmitReview_UnknownRun(t *testing.T) {
	r, _ := newTestRunner(&mockCollaborator{}, &recordingNotifier{}, nil, nil)
	_, err := r.SubmitReview(context.Background(), "no-such-run", ReviewResponse{Approved: true})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestSubmitReview_RejectsRunNotAwaitingReview(t *testing.T) {
	r, store := newTestRunner(&mockCollaborator{}, &recordingNotifier{}, nil, nil)
	store.Save(RunState{ID: "done-run", Stage: StageComplete})

	_, err := r.SubmitReview(context.Background(), "done-run", ReviewResponse{Approved: true})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not awaiting review")
}

func TestStart_PriorRunSkipsStraightToDelivery(t *testing.T) {
	collab := &mockCollaborator{
		classify: func(context.Context, []string) (map[string]grocery.DishCategory, error) {
			t.Fatal("classification must not run on re-entry")
			return nil, nil
		},
	}
	notes := &recordingNotifier{}
	r, _ := newTestRunner(collab, notes, nil, nil)

	list := &grocery.ShoppingList{
		AdultCount:  8,
		TotalGuests: 8,
		Items: []grocery.AggregatedIngredient{
			{Name: "pork ribs", TotalQuantity: 10, Unit: grocery.Pounds, GroceryCategory: grocery.Proteins},
		},
	}
	list.BuildGrouped()
	prior := &RunState{ID: "prior-run", Stage: StageComplete, Inputs: partyInputs(), ShoppingList: list}

	state, err := r.Start(context.Background(), grocery.EventInputs{}, []grocery.OutputFormat{grocery.OutputChat}, prior)
	require.NoError(t, err)

	assert.Equal(t, StageComplete, state.Stage)
	assert.Equal(t, "prior-run", state.ID)
	assert.NotEmpty(t, state.ChatOutput)

	// No notifications for skipped stages and no second review.
	progress := notes.byType(NoteProgress)
	require.Len(t, progress, 1)
	assert.Equal(t, StageDelivering, progress[0].Stage)
	assert.Empty(t, notes.byType(NoteReview))
}

func TestStart_ClassifyFailureReachesFailureBoundary(t *testing.T) {
	collab := &mockCollaborator{
		classify: func(context.Context, []string) (map[string]grocery.DishCategory, error) {
			return nil, errors.New("model down")
		},
	}
	notes := &recordingNotifier{}
	r, store := newTestRunner(collab, notes, nil, nil)

	state, err := r.Start(context.Background(), partyInputs(), nil, nil)
	require.Error(t, err)

	assert.Equal(t, StageError, state.Stage)
	assert.Contains(t, state.Err, "model down")

	stored, err := store.Get(state.ID)
	require.NoError(t, err)
	assert.Equal(t, StageError, stored.Stage)

	failures := notes.byType(NoteError)
	require.Len(t, failures, 1)
	assert.Contains(t, failures[0].Message, "Something went wrong during planning")
}

func TestReviewPublishFailureFailsTheRun(t *testing.T) {
	collab := &mockCollaborator{classify: partyClassifier()}
	notes := &recordingNotifier{failOn: NoteReview}
	r, _ := newTestRunner(collab, notes, nil, nil)

	state, err := r.Start(context.Background(), partyInputs(), nil, nil)
	require.Error(t, err)
	assert.Equal(t, StageError, state.Stage)
}

func TestDelivery_SpreadsheetFailureStillProducesChatOutput(t *testing.T) {
	collab := &mockCollaborator{classify: partyClassifier()}
	sheets := &mockSheets{
		create: func(context.Context, grocery.EventInputs, *grocery.ShoppingList, string) (deliver.SpreadsheetRef, error) {
			return deliver.SpreadsheetRef{}, errors.New("sheets API quota exceeded")
		},
	}
	r, _ := newTestRunner(collab, &recordingNotifier{}, sheets, nil)

	ctx := context.Background()
	state, err := r.Start(ctx, partyInputs(), []grocery.OutputFormat{grocery.OutputChat, grocery.OutputSpreadsheet}, nil)
	require.NoError(t, err)
	state, err = r.SubmitReview(ctx, state.ID, ReviewResponse{Approved: true})
	require.NoError(t, err, "one failed channel must not fail the run")

	assert.Equal(t, StageComplete, state.Stage)
	assert.NotEmpty(t, state.ChatOutput)
	assert.Nil(t, state.Spreadsheet)
}

func TestDelivery_AllChannelsSucceed(t *testing.T) {
	collab := &mockCollaborator{
		classify: partyClassifier(),
		recipes: func(_ context.Context, reqs []enrich.RecipeRequest) (map[string][]string, error) {
			out := map[string][]string{}
			for _, req := range reqs {
				out[req.DishName] = []string{"Prepare the " + req.DishName + ".", "Serve."}
			}
			return out, nil
		},
	}
	sheets := &mockSheets{
		create: func(_ context.Context, _ grocery.EventInputs, _ *grocery.ShoppingList, title string) (deliver.SpreadsheetRef, error) {
			assert.Equal(t, "Dinner Party Shopping - 07-04-2026", title)
			return deliver.SpreadsheetRef{ID: "sheet-1", URL: "https://sheets.example/sheet-1"}, nil
		},
	}
	tasks := &mockTasks{
		create: func(_ context.Context, _ *grocery.ShoppingList, title string) (deliver.TaskListRef, error) {
			return deliver.TaskListRef{ID: "list-1", URL: "https://tasks.example/list-1", Title: title}, nil
		},
	}
	notes := &recordingNotifier{}
	r, _ := newTestRunner(collab, notes, sheets, tasks)

	ctx := context.Background()
	formats := []grocery.OutputFormat{grocery.OutputChat, grocery.OutputRecipes, grocery.OutputSpreadsheet, grocery.OutputTaskList}
	state, err := r.Start(ctx, partyInputs(), formats, nil)
	require.NoError(t, err)
	state, err = r.SubmitReview(ctx, state.ID, ReviewResponse{Approved: true})
	require.NoError(t, err)

	assert.NotEmpty(t, state.ChatOutput)
	assert.Contains(t, state.RecipesOutput, "Ribs")
	require.NotNil(t, state.Spreadsheet)
	assert.Equal(t, "sheet-1", state.Spreadsheet.ID)
	require.NotNil(t, state.TaskList)
	assert.Equal(t, "list-1", state.TaskList.ID)

	completes := notes.byType(NoteComplete)
	require.Len(t, completes, 1)
	assert.Equal(t, "https://sheets.example/sheet-1", completes[0].SpreadsheetURL)
	assert.Equal(t, "https://tasks.example/list-1", completes[0].TaskListURL)
}

func TestDelivery_MissingCollaboratorSkipsChannel(t *testing.T) {
	collab := &mockCollaborator{classify: partyClassifier()}
	r, _ := newTestRunner(collab, &recordingNotifier{}, nil, nil)

	ctx := context.Background()
	state, err := r.Start(ctx, partyInputs(), []grocery.OutputFormat{grocery.OutputSpreadsheet, grocery.OutputTaskList}, nil)
	require.NoError(t, err)
	state, err = r.SubmitReview(ctx, state.ID, ReviewResponse{Approved: true})
	require.NoError(t, err)

	assert.Equal(t, StageComplete, state.Stage)
	assert.Nil(t, state.Spreadsheet)
	assert.Nil(t, state.TaskList)
	// Chat is always produced even when not explicitly requested.
	assert.NotEmpty(t, state.ChatOutput)
}

func TestGenerateRecipes_SkipsStoreBoughtAndBeverages(t *testing.T) {
	var captured []enrich.RecipeRequest
	collab := &mockCollaborator{
		classify: partyClassifier(),
		recipes: func(_ context.Context, reqs []enrich.RecipeRequest) (map[string][]string, error) {
			captured = reqs
			return map[string][]string{"Ribs": {"Smoke low and slow."}}, nil
		},
	}
	r, _ := newTestRunner(collab, &recordingNotifier{}, nil, nil)

	ctx := context.Background()
	state, err := r.Start(ctx, partyInputs(), []grocery.OutputFormat{grocery.OutputRecipes}, nil)
	require.NoError(t, err)
	state, err = r.SubmitReview(ctx, state.ID, ReviewResponse{Approved: true})
	require.NoError(t, err)

	// Only the homemade non-beverage dish gets a recipe; the store-bought
	// soda does not.
	require.Len(t, captured, 1)
	assert.Equal(t, "Ribs", captured[0].DishName)
	assert.InDelta(t, 10.0, captured[0].TotalServings, 0.01)
	assert.Contains(t, state.RecipesOutput, "Smoke low and slow.")
}

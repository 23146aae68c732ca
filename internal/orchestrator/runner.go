package orchestrator

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/aaronbini/hosting/internal/deliver"
	"github.com/aaronbini/hosting/internal/enrich"
	"github.com/aaronbini/hosting/internal/grocery"
)

// defaultReviewPrompt is sent alongside every review checkpoint.
const defaultReviewPrompt = "Here's your shopping list! Review it and let me know if anything " +
	"needs adjusting, or approve it to continue."

// Config tunes a Runner.
type Config struct {
	// EnrichLimit bounds concurrent enrichment calls. Zero means the
	// package default.
	EnrichLimit int

	// DeliverLimit bounds concurrent delivery tasks. Zero means the
	// package default.
	DeliverLimit int

	// ReviewPrompt overrides the message sent with review checkpoints.
	ReviewPrompt string
}

// Runner owns the pipeline sequence and the top-level failure boundary.
// It is the single writer of RunState: stages receive the state by value
// and the Runner replaces it with their return value. The review cycle
// suspends by persisting to the RunStore; SubmitReview resumes it.
type Runner struct {
	cfg      Config
	collab   enrich.Collaborator
	notifier Notifier
	store    *RunStore
	sheets   SpreadsheetCreator // optional; nil skips spreadsheet delivery
	tasks    TaskListCreator    // optional; nil skips task-list delivery
	log      *zap.Logger
}

// NewRunner wires a Runner. sheets and tasks may be nil when the
// corresponding external authorization is absent; the matching delivery
// channels are then skipped rather than failed. A nil logger is replaced
// with a no-op logger.
func NewRunner(cfg Config, collab enrich.Collaborator, notifier Notifier, store *RunStore, sheets SpreadsheetCreator, tasks TaskListCreator, log *zap.Logger) *Runner {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.ReviewPrompt == "" {
		cfg.ReviewPrompt = defaultReviewPrompt
	}
	return &Runner{
		cfg:      cfg,
		collab:   collab,
		notifier: notifier,
		store:    store,
		sheets:   sheets,
		tasks:    tasks,
		log:      log,
	}
}

// Start begins a planning run and executes it up to the first review
// checkpoint, where the run suspends awaiting SubmitReview. If prior
// already holds a non-empty shopping list — the host is requesting more
// formats after a completed run — every stage up to and including review
// is skipped, with no notifications for the skipped stages, and the run
// proceeds straight to delivery with the cached list.
//
// The final state is returned even on failure so the caller can persist
// or re-invoke it.
func (r *Runner) Start(ctx context.Context, inputs grocery.EventInputs, formats []grocery.OutputFormat, prior *RunState) (RunState, error) {
	if prior != nil && prior.HasShoppingList() {
		state := prior.Clone()
		if len(formats) > 0 {
			state.Formats = append([]grocery.OutputFormat(nil), formats...)
		}
		state.Err = ""
		r.log.Info("prior run has a shopping list; skipping to delivery", zap.String("run", state.ID))
		return r.deliverAndComplete(ctx, state)
	}

	state := RunState{
		ID:      uuid.NewString(),
		Stage:   StageIdle,
		Inputs:  inputs,
		Formats: append([]grocery.OutputFormat(nil), formats...),
	}

	if err := r.publishProgress(state.ID, StageCalculatingQuantities, "Calculating quantities for your meal plan..."); err != nil {
		return r.fail(state, err)
	}
	state, err := r.calculateQuantities(ctx, state)
	if err != nil {
		return r.fail(state, err)
	}

	if err := r.publishProgress(state.ID, StageGettingIngredients,
		fmt.Sprintf("Getting ingredients for %d dishes...", len(state.ServingSpecs))); err != nil {
		return r.fail(state, err)
	}
	state, err = r.collectIngredients(ctx, state)
	if err != nil {
		return r.fail(state, err)
	}

	if err := r.publishProgress(state.ID, StageAggregating, "Building your shopping list..."); err != nil {
		return r.fail(state, err)
	}
	state, err = r.aggregate(ctx, state)
	if err != nil {
		return r.fail(state, err)
	}

	return r.presentReview(state)
}

// SubmitReview resumes a run suspended at the review checkpoint with the
// host's single response. Free-text corrections are applied and the
// revised list is re-presented (the run stays suspended); an approval —
// explicit, or implied by blank content — optionally removes excluded
// items and proceeds to delivery. The loop has no iteration cap: only the
// host decides convergence.
func (r *Runner) SubmitReview(ctx context.Context, runID string, resp ReviewResponse) (RunState, error) {
	state, err := r.store.Get(runID)
	if err != nil {
		return RunState{}, err
	}
	if state.Stage != StageAwaitingReview {
		return state, fmt.Errorf("run %q is not awaiting review (stage %s)", runID, state.Stage)
	}

	corrections := strings.TrimSpace(resp.Corrections)
	if corrections != "" && !resp.Approved {
		state.PendingCorrections = corrections
		if err := r.publishProgress(state.ID, StageApplyingCorrections, "Applying your corrections..."); err != nil {
			return r.fail(state, err)
		}
		state, err = r.applyCorrections(ctx, state)
		if err != nil {
			return r.fail(state, err)
		}
		state.PendingCorrections = ""
		return r.presentReview(state)
	}

	if len(resp.Exclusions) > 0 && state.ShoppingList != nil {
		trimmed := state.ShoppingList.RemoveItems(resp.Exclusions)
		state.ShoppingList = &trimmed
	}
	return r.deliverAndComplete(ctx, state)
}

// presentReview suspends the run at the review checkpoint: the state is
// persisted, the current list is published, and control returns to the
// caller until SubmitReview.
func (r *Runner) presentReview(state RunState) (RunState, error) {
	state.Stage = StageAwaitingReview
	r.store.Save(state)

	err := r.notifier.Publish(Notification{
		Type:         NoteReview,
		RunID:        state.ID,
		Stage:        StageAwaitingReview,
		Message:      r.cfg.ReviewPrompt,
		ShoppingList: state.ShoppingList.Clone(),
	})
	if err != nil {
		return r.fail(state, fmt.Errorf("publishing review checkpoint: %w", err))
	}
	return state, nil
}

// deliveryTask is one delivery channel's unit of work. run reads only the
// snapshot it captured and returns an applier that folds the result into
// the state at the join point.
type deliveryTask struct {
	name string
	run  func(ctx context.Context) (func(*RunState), error)
}

// deliverAndComplete fans out one task per requested output format,
// tolerates individual channel failures, merges the successes back in
// dispatch order, and publishes the terminal notification.
func (r *Runner) deliverAndComplete(ctx context.Context, state RunState) (RunState, error) {
	if err := r.publishProgress(state.ID, StageDelivering, "Preparing your outputs..."); err != nil {
		return r.fail(state, err)
	}
	state.Stage = StageDelivering

	tasks := r.deliveryTasks(state.Clone())
	results := fanOut(ctx, r.cfg.DeliverLimit, tasks,
		func(ctx context.Context, t deliveryTask) (func(*RunState), error) {
			return t.run(ctx)
		})

	for i, res := range results {
		if res.Err != nil {
			r.log.Warn("delivery channel failed",
				zap.String("run", state.ID),
				zap.String("channel", tasks[i].name),
				zap.Error(res.Err))
			continue
		}
		res.Value(&state)
	}

	state.Stage = StageComplete
	r.store.Save(state)

	note := Notification{
		Type:          NoteComplete,
		RunID:         state.ID,
		Stage:         StageComplete,
		ChatOutput:    state.ChatOutput,
		RecipesOutput: state.RecipesOutput,
	}
	if state.Spreadsheet != nil {
		note.SpreadsheetURL = state.Spreadsheet.URL
	}
	if state.TaskList != nil {
		note.TaskListURL = state.TaskList.URL
	}
	if err := r.notifier.Publish(note); err != nil {
		return r.fail(state, fmt.Errorf("publishing completion: %w", err))
	}

	r.log.Info("run complete", zap.String("run", state.ID))
	return state, nil
}

// deliveryTasks builds the channel tasks in dispatch order. The in-chat
// format is always produced; the other channels run when requested and
// their collaborator is present.
func (r *Runner) deliveryTasks(snapshot RunState) []deliveryTask {
	tasks := []deliveryTask{{
		name: "chat",
		run: func(context.Context) (func(*RunState), error) {
			text := deliver.FormatChatOutput(snapshot.ShoppingList)
			return func(s *RunState) { s.ChatOutput = text }, nil
		},
	}}

	if snapshot.wantsFormat(grocery.OutputRecipes) {
		tasks = append(tasks, deliveryTask{
			name: "recipes",
			run: func(ctx context.Context) (func(*RunState), error) {
				return r.generateRecipes(ctx, snapshot)
			},
		})
	}

	if snapshot.wantsFormat(grocery.OutputSpreadsheet) {
		if r.sheets == nil {
			r.log.Warn("spreadsheet requested but no spreadsheet collaborator configured; skipping",
				zap.String("run", snapshot.ID))
		} else {
			tasks = append(tasks, deliveryTask{
				name: "spreadsheet",
				run: func(ctx context.Context) (func(*RunState), error) {
					title := deliver.ShoppingTitle(snapshot.Inputs.EventDate)
					ref, err := r.sheets.CreatePartySheet(ctx, snapshot.Inputs, snapshot.ShoppingList, title)
					if err != nil {
						return nil, err
					}
					return func(s *RunState) { s.Spreadsheet = &ref }, nil
				},
			})
		}
	}

	if snapshot.wantsFormat(grocery.OutputTaskList) {
		if r.tasks == nil {
			r.log.Warn("task list requested but no task-list collaborator configured; skipping",
				zap.String("run", snapshot.ID))
		} else {
			tasks = append(tasks, deliveryTask{
				name: "task_list",
				run: func(ctx context.Context) (func(*RunState), error) {
					title := deliver.ShoppingTitle(snapshot.Inputs.EventDate)
					ref, err := r.tasks.CreateShoppingList(ctx, snapshot.ShoppingList, title)
					if err != nil {
						return nil, err
					}
					return func(s *RunState) { s.TaskList = &ref }, nil
				},
			})
		}
	}

	return tasks
}

// generateRecipes produces the "## Recipes" deliverable for homemade,
// non-beverage dishes, reusing the already-scaled ingredient lists so the
// instructions reference exactly what the host is buying.
func (r *Runner) generateRecipes(ctx context.Context, snapshot RunState) (func(*RunState), error) {
	var eligible []grocery.DishIngredients
	for _, d := range snapshot.DishIngredients {
		if d.Spec == nil || d.Spec.DishCategory.IsBeverage() {
			continue
		}
		item, found := snapshot.Inputs.FindMenuItem(d.DishName)
		if !found || item.Preparation == grocery.StoreBought {
			continue
		}
		eligible = append(eligible, d)
	}
	if len(eligible) == 0 {
		return func(*RunState) {}, nil
	}

	reqs := make([]enrich.RecipeRequest, len(eligible))
	for i, d := range eligible {
		reqs[i] = enrich.RecipeRequest{
			DishName:      d.DishName,
			Ingredients:   d.Ingredients,
			TotalServings: d.Spec.TotalServings,
		}
	}

	instructions, err := r.collab.GenerateRecipes(ctx, reqs)
	if err != nil {
		return nil, err
	}

	text := deliver.FormatRecipes(eligible, instructions)
	return func(s *RunState) { s.RecipesOutput = text }, nil
}

// publishProgress announces a stage transition to the host.
func (r *Runner) publishProgress(runID string, stage Stage, message string) error {
	return r.notifier.Publish(Notification{
		Type:    NoteProgress,
		RunID:   runID,
		Stage:   stage,
		Message: message,
	})
}

// fail is the single top-level failure boundary: the error is recorded on
// the state, the run is persisted in StageError, and a failure
// notification is published so the host never sees a silent disconnect.
// The orchestrator itself never retries.
func (r *Runner) fail(state RunState, err error) (RunState, error) {
	state.Stage = StageError
	state.Err = err.Error()
	if state.ID != "" {
		r.store.Save(state)
	}
	r.log.Error("run failed", zap.String("run", state.ID), zap.Error(err))

	_ = r.notifier.Publish(Notification{
		Type:    NoteError,
		RunID:   state.ID,
		Stage:   StageError,
		Message: "Something went wrong during planning: " + err.Error(),
	})
	return state, err
}

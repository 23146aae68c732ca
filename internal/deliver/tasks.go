package deliver

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/aaronbini/hosting/internal/grocery"
)

// TaskListRef identifies a created task list.
type TaskListRef struct {
	ID    string
	URL   string
	Title string
}

// TaskAPI is the provider boundary for task-list creation. Parent is empty
// for top-level tasks.
type TaskAPI interface {
	CreateTaskList(ctx context.Context, title string) (listID string, err error)
	CreateTask(ctx context.Context, listID, parentID, title string) (taskID string, err error)
}

// TaskListService turns a shopping list into a checklist:
//
//	Task list: "Dinner Party Shopping - MM-DD-YYYY"
//	  ── PROTEINS ──          <- parent task (category header)
//	    chicken breast: 4 lbs <- child task
//	  ── PRODUCE ──
//	    garlic: 3 head
type TaskListService struct {
	api TaskAPI
	log *zap.Logger
}

// NewTaskListService creates a TaskListService over the given provider.
func NewTaskListService(api TaskAPI, log *zap.Logger) *TaskListService {
	if log == nil {
		log = zap.NewNop()
	}
	return &TaskListService{api: api, log: log}
}

// ShoppingTitle builds the task-list title from an ISO event date. An
// unparseable or empty date falls back to today, then to the raw string.
func ShoppingTitle(eventDate string) string {
	raw := eventDate
	if raw == "" {
		raw = time.Now().Format("2006-01-02")
	}
	display := raw
	if d, err := time.Parse("2006-01-02", raw); err == nil {
		display = d.Format("01-02-2006")
	}
	return "Dinner Party Shopping - " + display
}

// CreateShoppingList creates the checklist with one parent task per
// grocery category and one child task per item, quantities rounded up.
func (s *TaskListService) CreateShoppingList(ctx context.Context, list *grocery.ShoppingList, title string) (TaskListRef, error) {
	listID, err := s.api.CreateTaskList(ctx, title)
	if err != nil {
		return TaskListRef{}, fmt.Errorf("creating task list: %w", err)
	}

	for _, category := range grocery.GroceryCategories {
		items := list.Grouped[category]
		if len(items) == 0 {
			continue
		}

		header := fmt.Sprintf("── %s ──", strings.ToUpper(strings.ReplaceAll(string(category), "_", " ")))
		headerID, err := s.api.CreateTask(ctx, listID, "", header)
		if err != nil {
			return TaskListRef{}, fmt.Errorf("creating category header %q: %w", header, err)
		}

		for _, item := range items {
			qty := int(math.Ceil(item.TotalQuantity))
			child := fmt.Sprintf("%s: %d %s", item.Name, qty, item.Unit)
			if _, err := s.api.CreateTask(ctx, listID, headerID, child); err != nil {
				return TaskListRef{}, fmt.Errorf("creating task %q: %w", child, err)
			}
		}
	}

	s.log.Info("task list created", zap.String("id", listID), zap.String("title", title))
	return TaskListRef{ID: listID, URL: "https://tasks.google.com", Title: title}, nil
}

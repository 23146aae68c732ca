package deliver

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type createdTask struct {
	ListID   string
	ParentID string
	Title    string
}

type mockTaskAPI struct {
	createList func(ctx context.Context, title string) (string, error)
	createTask func(ctx context.Context, listID, parentID, title string) (string, error)

	tasks []createdTask
}

func (m *mockTaskAPI) CreateTaskList(ctx context.Context, title string) (string, error) {
	if m.createList != nil {
		return m.createList(ctx, title)
	}
	return "list-1", nil
}

func (m *mockTaskAPI) CreateTask(ctx context.Context, listID, parentID, title string) (string, error) {
	if m.createTask != nil {
		return m.createTask(ctx, listID, parentID, title)
	}
	m.tasks = append(m.tasks, createdTask{ListID: listID, ParentID: parentID, Title: title})
	return fmt.Sprintf("task-%d", len(m.tasks)), nil
}

func TestShoppingTitle(t *testing.T) {
	assert.Equal(t, "Dinner Party Shopping - 07-04-2026", ShoppingTitle("2026-07-04"))

	// Unparseable dates pass through raw.
	assert.Equal(t, "Dinner Party Shopping - next saturday", ShoppingTitle("next saturday"))

	// Empty falls back to today.
	today := time.Now().Format("01-02-2006")
	assert.Equal(t, "Dinner Party Shopping - "+today, ShoppingTitle(""))
}

func TestCreateShoppingList_HeadersWithChildTasks(t *testing.T) {
	api := &mockTaskAPI{}
	svc := NewTaskListService(api, nil)

	ref, err := svc.CreateShoppingList(context.Background(), groupedList(), "Dinner Party Shopping - 07-04-2026")
	require.NoError(t, err)
	assert.Equal(t, "list-1", ref.ID)
	assert.Equal(t, "Dinner Party Shopping - 07-04-2026", ref.Title)
	assert.NotEmpty(t, ref.URL)

	// Three categories, one item each: header + child per category.
	require.Len(t, api.tasks, 6)
	assert.Equal(t, "── PROTEINS ──", api.tasks[0].Title)
	assert.Empty(t, api.tasks[0].ParentID)

	// Child quantities are rounded up and parented under their header.
	assert.Equal(t, "pork ribs: 10 lbs", api.tasks[1].Title)
	assert.Equal(t, "task-1", api.tasks[1].ParentID)

	assert.Equal(t, "── PRODUCE ──", api.tasks[2].Title)
	assert.Equal(t, "garlic: 3 cloves", api.tasks[3].Title)
	assert.Equal(t, "── CONDIMENTS ──", api.tasks[4].Title)
	assert.Equal(t, "bbq sauce: 3 cups", api.tasks[5].Title)
}

func TestCreateShoppingList_ListCreationFailure(t *testing.T) {
	api := &mockTaskAPI{
		createList: func(context.Context, string) (string, error) {
			return "", errors.New("unauthorized")
		},
	}
	svc := NewTaskListService(api, nil)

	_, err := svc.CreateShoppingList(context.Background(), groupedList(), "title")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "creating task list")
}

func TestCreateShoppingList_TaskCreationFailure(t *testing.T) {
	api := &mockTaskAPI{
		createTask: func(context.Context, string, string, string) (string, error) {
			return "", errors.New("rate limited")
		},
	}
	svc := NewTaskListService(api, nil)

	_, err := svc.CreateShoppingList(context.Background(), groupedList(), "title")
	require.Error(t, err)
}

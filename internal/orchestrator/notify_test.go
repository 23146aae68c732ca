package orchestrator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aaronbini/hosting/internal/grocery"
)

func TestChannelNotifier_PublishAndSubscribe(t *testing.T) {
	cn := NewChannelNotifier()
	defer cn.Close()

	require.NoError(t, cn.Publish(Notification{Type: NoteProgress, Message: "working"}))

	got := <-cn.Subscribe()
	assert.Equal(t, NoteProgress, got.Type)
	assert.Equal(t, "working", got.Message)
}

func TestChannelNotifier_DropsWhenFull(t *testing.T) {
	cn := NewChannelNotifier()
	defer cn.Close()

	// Nothing drains the channel, so fill past the buffer. Publish must
	// never block or error.
	for i := 0; i < 100; i++ {
		require.NoError(t, cn.Publish(Notification{Type: NoteProgress}))
	}
	assert.Len(t, cn.ch, 64)
}

func TestFormatNotification(t *testing.T) {
	list := &grocery.ShoppingList{Items: []grocery.AggregatedIngredient{{Name: "flour"}, {Name: "salt"}}}

	cases := []struct {
		name string
		in   Notification
		want string
	}{
		{
			name: "progress",
			in:   Notification{Type: NoteProgress, Stage: StageAggregating, Message: "Building your shopping list..."},
			want: "Building your shopping list...",
		},
		{
			name: "review carries item count",
			in:   Notification{Type: NoteReview, Stage: StageAwaitingReview, ShoppingList: list},
			want: "2 items awaiting review",
		},
		{
			name: "review with no list",
			in:   Notification{Type: NoteReview, Stage: StageAwaitingReview},
			want: "0 items",
		},
		{
			name: "complete",
			in:   Notification{Type: NoteComplete, Stage: StageComplete},
			want: "planning complete",
		},
		{
			name: "error",
			in:   Notification{Type: NoteError, Stage: StageError, Message: "Something went wrong"},
			want: "Something went wrong",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Contains(t, FormatNotification(tc.in), tc.want)
		})
	}
}

func TestStageString(t *testing.T) {
	assert.Equal(t, "awaiting_review", StageAwaitingReview.String())
	assert.Equal(t, "complete", StageComplete.String())
	assert.Equal(t, "unknown", Stage(99).String())
}

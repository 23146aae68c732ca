package orchestrator

import (
	"fmt"

	"github.com/aaronbini/hosting/internal/grocery"
)

// NotificationType distinguishes the four message shapes sent to the host.
type NotificationType string

const (
	NoteProgress NotificationType = "agent_progress"
	NoteReview   NotificationType = "agent_review"
	NoteComplete NotificationType = "agent_complete"
	NoteError    NotificationType = "agent_error"
)

// Notification is one typed message to the human transport. Review
// notifications carry the current shopping list; completion notifications
// carry the deliverables.
type Notification struct {
	Type    NotificationType
	RunID   string
	Stage   Stage
	Message string

	// Review payload.
	ShoppingList *grocery.ShoppingList

	// Completion payload.
	ChatOutput     string
	RecipesOutput  string
	SpreadsheetURL string
	TaskListURL    string
}

// Notifier is the outbound half of the human transport. A Publish error
// from a sequential stage propagates to the run's failure boundary so a
// severed transport can never silently hang the review cycle.
type Notifier interface {
	Publish(n Notification) error
}

// ChannelNotifier emits notifications through a buffered channel. If the
// channel is full the notification is dropped rather than blocking the
// pipeline.
type ChannelNotifier struct {
	ch chan Notification
}

// NewChannelNotifier creates a ChannelNotifier with a buffer of 64.
func NewChannelNotifier() *ChannelNotifier {
	return &ChannelNotifier{ch: make(chan Notification, 64)}
}

// Publish sends the notification in a non-blocking fashion.
func (cn *ChannelNotifier) Publish(n Notification) error {
	select {
	case cn.ch <- n:
	default:
		// Drop when full.
	}
	return nil
}

// Subscribe returns the read side of the notification channel.
func (cn *ChannelNotifier) Subscribe() <-chan Notification {
	return cn.ch
}

// Close closes the notification channel.
func (cn *ChannelNotifier) Close() {
	close(cn.ch)
}

// FormatNotification renders a notification as a one-line status for
// terminal display.
func FormatNotification(n Notification) string {
	switch n.Type {
	case NoteProgress:
		return fmt.Sprintf("  ● [%s] %s", n.Stage, n.Message)
	case NoteReview:
		items := 0
		if n.ShoppingList != nil {
			items = len(n.ShoppingList.Items)
		}
		return fmt.Sprintf("  ○ [%s] %d items awaiting review", n.Stage, items)
	case NoteComplete:
		return fmt.Sprintf("  ✓ [%s] planning complete", n.Stage)
	case NoteError:
		return fmt.Sprintf("  ✗ [%s] %s", n.Stage, n.Message)
	default:
		return fmt.Sprintf("  ? [%s] unknown notification", n.Stage)
	}
}

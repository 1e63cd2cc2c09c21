package webhook

import (
	"context"
	"encoding/json"
)

// EventType identifies a webhook event category.
type EventType string

// Event types with registrable handlers. Deliveries of any other type
// are ignored successfully.
const (
	EventIssues      EventType = "issues"
	EventPullRequest EventType = "pull_request"
	EventPush        EventType = "push"
	EventStar        EventType = "star"
	EventFork        EventType = "fork"
	EventRelease     EventType = "release"
	EventWorkflowRun EventType = "workflow_run"
)

// knownEventTypes is the fixed handler lookup table.
var knownEventTypes = map[EventType]bool{
	EventIssues:      true,
	EventPullRequest: true,
	EventPush:        true,
	EventStar:        true,
	EventFork:        true,
	EventRelease:     true,
	EventWorkflowRun: true,
}

// Repository is the repository an event refers to.
type Repository struct {
	ID       int64  `json:"id"`
	FullName string `json:"full_name"`
	Private  bool   `json:"private"`
}

// Sender is the account that triggered an event.
type Sender struct {
	ID    int64  `json:"id"`
	Login string `json:"login"`
}

// Event is a parsed, validated webhook delivery.
type Event struct {
	// Type is the event category from the event-name header.
	Type EventType
	// DeliveryID is the UUID identifying this delivery.
	DeliveryID string
	// Action is the event sub-action ("opened", "closed", ...).
	Action string
	// Repository and Sender are the common envelope fields, when present.
	Repository *Repository
	Sender     *Sender
	// Payload is the full raw JSON body for type-specific fields.
	Payload json.RawMessage
}

// Handler processes one delivery of one event type. Returning an error
// leaves the delivery unmarked, so a re-delivery will be processed again.
type Handler func(ctx context.Context, evt *Event) error

// envelope is the common subset parsed out of every payload.
type envelope struct {
	Action     string      `json:"action"`
	Repository *Repository `json:"repository"`
	Sender     *Sender     `json:"sender"`
}

// internal/events/types.go
package events

import (
	"time"
)

// EventType represents the type of event.
type EventType string

const (
	WorkflowStarted   EventType = "workflow.started"
	WorkflowStep      EventType = "workflow.step"
	WorkflowCompleted EventType = "workflow.completed"
	WorkflowFailed    EventType = "workflow.failed"
	WorkflowCancelled EventType = "workflow.cancelled"

	SubmissionResolved EventType = "submission.resolved"
)

// Event is the base interface for all events.
type Event interface {
	Type() EventType
	Timestamp() time.Time
}

// BaseEvent provides common fields for all events.
type BaseEvent struct {
	EventType EventType `json:"type"`
	EventTime time.Time `json:"time"`
}

// Type returns the event type.
func (e BaseEvent) Type() EventType {
	return e.EventType
}

// Timestamp returns when the event occurred.
func (e BaseEvent) Timestamp() time.Time {
	return e.EventTime
}

// NewBase stamps an event of typ with the current time.
func NewBase(typ EventType) BaseEvent {
	return BaseEvent{EventType: typ, EventTime: time.Now().UTC()}
}

// Step is one stage of a workflow.
type Step string

const (
	StepValidating        Step = "validating"
	StepUploadingImage    Step = "uploading_image"
	StepUploadingMetadata Step = "uploading_metadata"
	StepCheckingAccount   Step = "checking_account"
	StepBuilding          Step = "building"
	StepSigning           Step = "signing"
	StepSending           Step = "sending"
	StepConfirming        Step = "confirming"
)

var stepMessages = map[Step]string{
	StepValidating:        "Validating input...",
	StepUploadingImage:    "Uploading image...",
	StepUploadingMetadata: "Uploading metadata...",
	StepCheckingAccount:   "Checking on-chain state...",
	StepBuilding:          "Building transaction...",
	StepSigning:           "Waiting for wallet approval...",
	StepSending:           "Sending transaction...",
	StepConfirming:        "Confirming...",
}

// Message returns the progress text shown for s.
func (s Step) Message() string {
	if m, ok := stepMessages[s]; ok {
		return m
	}
	return string(s)
}

// WorkflowStartedEvent is emitted when a workflow accepts a command.
type WorkflowStartedEvent struct {
	BaseEvent
	WorkflowID string `json:"workflow_id"`
	Operation  string `json:"operation"`
	Network    string `json:"network"`
	Wallet     string `json:"wallet"`
}

// StepEvent is emitted on every workflow state transition.
type StepEvent struct {
	BaseEvent
	WorkflowID string `json:"workflow_id"`
	Operation  string `json:"operation"`
	Step       Step   `json:"step"`
	Message    string `json:"message"`
}

// WorkflowCompletedEvent is emitted when the transaction is confirmed.
type WorkflowCompletedEvent struct {
	BaseEvent
	WorkflowID  string `json:"workflow_id"`
	Operation   string `json:"operation"`
	Network     string `json:"network"`
	Signature   string `json:"signature"`
	Mint        string `json:"mint"`
	MetadataURI string `json:"metadata_uri,omitempty"`
}

// WorkflowFailedEvent is emitted when a workflow ends with an error.
type WorkflowFailedEvent struct {
	BaseEvent
	WorkflowID string `json:"workflow_id"`
	Operation  string `json:"operation"`
	Kind       string `json:"kind"`
	Signature  string `json:"signature,omitempty"`
	Error      string `json:"error"`
}

// WorkflowCancelledEvent is emitted when the user declines to sign.
type WorkflowCancelledEvent struct {
	BaseEvent
	WorkflowID string `json:"workflow_id"`
	Operation  string `json:"operation"`
	Reason     string `json:"reason"`
}

// SubmissionResolvedEvent is emitted when a journaled submission reaches a
// final status after the fact.
type SubmissionResolvedEvent struct {
	BaseEvent
	Signature string `json:"signature"`
	Status    string `json:"status"`
	Slot      uint64 `json:"slot,omitempty"`
}

package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// EventCategory classifies audit events by their primary purpose.
type EventCategory string

const (
	// CategoryCompliance covers outcomes with regulatory significance: a
	// submission that reached the workflow engine or was refused locally.
	CategoryCompliance EventCategory = "compliance"

	// CategoryOperations covers routine traffic and delivery failures.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	ID                uuid.UUID     `json:"id"`
	Category          EventCategory `json:"category"`
	Timestamp         time.Time     `json:"timestamp"`
	Action            string        `json:"action"`
	TaskID            string        `json:"task_id,omitempty"`
	ProcessInstanceID string        `json:"process_instance_id,omitempty"`
	CustomerType      string        `json:"customer_type,omitempty"`
	// Reason carries the failure detail: offending fields for a rejection,
	// the engine error for a failed completion.
	Reason    string `json:"reason,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

type AuditEvent string

const (
	EventSubmissionReceived AuditEvent = "kyc_submission_received"
	EventSubmissionRejected AuditEvent = "kyc_submission_rejected"
	EventTaskCompleted      AuditEvent = "kyc_task_completed"
	EventTaskFailed         AuditEvent = "kyc_task_failed"
)

var eventCategories = map[AuditEvent]EventCategory{
	EventSubmissionReceived: CategoryOperations,
	EventSubmissionRejected: CategoryCompliance,
	EventTaskCompleted:      CategoryCompliance,
	EventTaskFailed:         CategoryOperations,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}

// Sink receives audit events.
type Sink interface {
	Append(ctx context.Context, event Event) error
}

// Store is a Sink that can also be read back, newest first.
type Store interface {
	Sink
	ListRecent(ctx context.Context, limit int) ([]Event, error)
}

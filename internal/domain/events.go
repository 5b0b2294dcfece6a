package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// EventType enumerates the audit event types.
type EventType string

const (
	EventUserRegistered      EventType = "strokecheck.user.registered"
	EventUserLoggedIn        EventType = "strokecheck.user.logged_in"
	EventUserLoginFailed     EventType = "strokecheck.user.login_failed"
	EventUserLoggedOut       EventType = "strokecheck.user.logged_out"
	EventPredictionEvaluated EventType = "strokecheck.prediction.evaluated"
)

// AuditEvent is a fire-and-forget record of an auth or prediction action.
type AuditEvent struct {
	EventID    uuid.UUID       `json:"event_id"`
	EventType  EventType       `json:"event_type"`
	Username   string          `json:"username"`
	Payload    json.RawMessage `json:"payload"`
	OccurredAt time.Time       `json:"occurred_at"`
}

func newAuditEvent(eventType EventType, username string, payload any) AuditEvent {
	raw, _ := json.Marshal(payload)
	return AuditEvent{
		EventID:    uuid.New(),
		EventType:  eventType,
		Username:   username,
		Payload:    raw,
		OccurredAt: time.Now().UTC(),
	}
}

// NewUserEvent creates a user lifecycle event with an empty payload.
func NewUserEvent(eventType EventType, username string) AuditEvent {
	return newAuditEvent(eventType, username, map[string]string{})
}

// NewPredictionEvent records the outcome of an evaluation. The payload
// never carries patient features.
func NewPredictionEvent(username string, p Prediction) AuditEvent {
	return newAuditEvent(EventPredictionEvaluated, username, map[string]interface{}{
		"strategy": p.Strategy,
		"has_risk": p.HasRisk,
	})
}

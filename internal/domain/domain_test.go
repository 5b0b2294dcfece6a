package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Error Tests ---

func TestAppError_Error(t *testing.T) {
	err := ErrValidation("age is required")
	assert.Equal(t, "VALIDATION_ERROR: age is required", err.Error())

	cause := errors.New("disk full")
	internal := ErrInternal("registration failed", cause)
	assert.Equal(t, "INTERNAL_ERROR: registration failed: disk full", internal.Error())
	assert.ErrorIs(t, internal, cause)
}

func TestErrorConstructors(t *testing.T) {
	tests := []struct {
		name   string
		err    *AppError
		code   string
		status int
	}{
		{"not found", ErrNotFound("user", "alice"), "NOT_FOUND", 404},
		{"conflict", ErrConflict("taken"), "CONFLICT", 409},
		{"validation", ErrValidation("bad"), "VALIDATION_ERROR", 400},
		{"unauthorized", ErrUnauthorized("nope"), "UNAUTHORIZED", 401},
		{"rate limited", ErrRateLimited("slow down"), "RATE_LIMITED", 429},
		{"internal", ErrInternal("boom", nil), "INTERNAL_ERROR", 500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.status, tt.err.Status)
		})
	}
	assert.Equal(t, "user alice not found", ErrNotFound("user", "alice").Message)
}

func TestAsAppError_Wrapped(t *testing.T) {
	wrapped := fmt.Errorf("register: %w", ErrConflict("taken"))

	appErr, ok := AsAppError(wrapped)
	require.True(t, ok)
	assert.Equal(t, 409, appErr.Status)
	assert.True(t, IsCode(wrapped, "CONFLICT"))
	assert.False(t, IsCode(wrapped, "NOT_FOUND"))

	_, ok = AsAppError(errors.New("plain"))
	assert.False(t, ok)
	assert.False(t, IsCode(nil, "CONFLICT"))
}

// --- Patient Tests ---

func TestWorkType_String(t *testing.T) {
	assert.Equal(t, "Govt_job", WorkGovernment.String())
	assert.Equal(t, "Never_worked", WorkNeverWorked.String())
	assert.Equal(t, "Private", WorkPrivate.String())
	assert.Equal(t, "Self-employed", WorkSelfEmployed.String())
	assert.Equal(t, "children", WorkChildren.String())
	assert.Equal(t, "unknown", WorkType(9).String())
}

func TestSmokingStatus_String(t *testing.T) {
	assert.Equal(t, "Unknown", SmokingUnknown.String())
	assert.Equal(t, "formerly smoked", SmokingFormerly.String())
	assert.Equal(t, "never smoked", SmokingNever.String())
	assert.Equal(t, "smokes", SmokingSmokes.String())
	assert.Equal(t, "unknown", SmokingStatus(-1).String())
}

// --- Prediction Tests ---

func TestNewPrediction(t *testing.T) {
	risk := NewPrediction(HasRisk, "rules")
	assert.True(t, risk.HasRisk)
	assert.Equal(t, MessageHasRisk, risk.Message)
	assert.Equal(t, "rules", risk.Strategy)
	assert.Equal(t, "risk", risk.Outcome.String())

	safe := NewPrediction(NoRisk, "forest")
	assert.False(t, safe.HasRisk)
	assert.Equal(t, MessageNoRisk, safe.Message)
	assert.Equal(t, "no_risk", safe.Outcome.String())
}

func TestPrediction_JSONOmitsEmptyExplanation(t *testing.T) {
	raw, err := json.Marshal(NewPrediction(NoRisk, "forest"))
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(raw, &m))
	assert.NotContains(t, m, "score")
	assert.NotContains(t, m, "factors")
	assert.NotContains(t, m, "Outcome")
	assert.Equal(t, false, m["has_risk"])
}

// --- Credential Tests ---

func TestCredentials_Has(t *testing.T) {
	creds := Credentials{"alice": {Password: "x"}}
	assert.True(t, creds.Has("alice"))
	assert.False(t, creds.Has("bob"))
	assert.False(t, Credentials(nil).Has("alice"))
}

// --- Event Tests ---

func TestNewUserEvent(t *testing.T) {
	before := time.Now().UTC()
	evt := NewUserEvent(EventUserRegistered, "alice")

	assert.NotEqual(t, uuid.Nil, evt.EventID)
	assert.Equal(t, EventUserRegistered, evt.EventType)
	assert.Equal(t, "alice", evt.Username)
	assert.JSONEq(t, `{}`, string(evt.Payload))
	assert.False(t, evt.OccurredAt.Before(before))
}

func TestNewPredictionEvent_NoFeatures(t *testing.T) {
	evt := NewPredictionEvent("alice", NewPrediction(HasRisk, "rules"))

	assert.Equal(t, EventPredictionEvaluated, evt.EventType)
	assert.JSONEq(t, `{"strategy":"rules","has_risk":true}`, string(evt.Payload))
}

// internal/model/operation.go
package model

import (
	"time"

	"github.com/google/uuid"
)

// OperationType represents what a single invocation does with the radio
type OperationType string

const (
	OperationTypeProbeBaud      OperationType = "PROBE_BAUD"
	OperationTypeShowParameters OperationType = "SHOW_PARAMETERS"
	OperationTypeApplySettings  OperationType = "APPLY_SETTINGS"
)

// OperationStatus represents the status of an operation
type OperationStatus string

const (
	OperationStatusPending    OperationStatus = "PENDING"
	OperationStatusProcessing OperationStatus = "PROCESSING"
	OperationStatusSuccess    OperationStatus = "SUCCESS"
	OperationStatusFailed     OperationStatus = "FAILED"
)

// SerialSettings describes how to reach the radio. BaudRate 0 means "probe".
type SerialSettings struct {
	Port     string `json:"port" mapstructure:"port"`
	BaudRate int    `json:"baud_rate" mapstructure:"baud_rate"`
}

// RunRequest is the finalized request handed from the CLI to the radio service
type RunRequest struct {
	OperationType OperationType  `json:"operation_type"`
	Serial        SerialSettings `json:"serial"`
	Role          RadioRole      `json:"role"`
	Settings      SettingRequest `json:"settings"`
}

// RunResult reports what a run did
type RunResult struct {
	ID             uuid.UUID       `json:"id"`
	OperationType  OperationType   `json:"operation_type"`
	Status         OperationStatus `json:"status"`
	BaudRate       int             `json:"baud_rate"`
	Probed         bool            `json:"probed"`
	Parameters     string          `json:"parameters,omitempty"`
	Applied        []Setting       `json:"applied,omitempty"`
	Persisted      bool            `json:"persisted"`
	PersistWarning bool            `json:"persist_warning"`
	Rebooted       bool            `json:"rebooted"`
	StartedAt      time.Time       `json:"started_at"`
	CompletedAt    *time.Time      `json:"completed_at"`
	DurationMs     *int            `json:"duration_ms"`
	ErrorMessage   *string         `json:"error_message"`
}

// NewRunResult starts a result record for a request
func NewRunResult(req *RunRequest) *RunResult {
	return &RunResult{
		ID:            uuid.New(),
		OperationType: req.OperationType,
		Status:        OperationStatusPending,
		StartedAt:     time.Now(),
	}
}

// Complete marks the result finished, recording err if non-nil
func (r *RunResult) Complete(err error) {
	now := time.Now()
	ms := int(now.Sub(r.StartedAt).Milliseconds())
	r.CompletedAt = &now
	r.DurationMs = &ms
	if err != nil {
		msg := err.Error()
		r.ErrorMessage = &msg
		r.Status = OperationStatusFailed
		return
	}
	r.Status = OperationStatusSuccess
}

// internal/common/errors/errors.go
package errors

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

type ErrorCode string

const (
	// Sheet source (fatal to the load step)
	ErrCodeSheetSourceUnavailable   ErrorCode = "SHEET_SOURCE_UNAVAILABLE"
	ErrCodeSheetSourceMisconfigured ErrorCode = "SHEET_SOURCE_MISCONFIGURED"

	// Snapshot cache (degrades to a fresh load)
	ErrCodeSnapshotCacheFailed ErrorCode = "SNAPSHOT_CACHE_FAILED"

	// Input validation
	ErrCodeInvalidCandidateInput ErrorCode = "INVALID_CANDIDATE_INPUT"
	ErrCodeInvalidFilterDate     ErrorCode = "INVALID_FILTER_DATE"
	ErrCodeInvalidJobVariables   ErrorCode = "INVALID_JOB_VARIABLES"

	// Outbound
	ErrCodeNotificationSendFailed ErrorCode = "NOTIFICATION_SEND_FAILED"
	ErrCodeEventIndexingFailed    ErrorCode = "EVENT_INDEXING_FAILED"

	// Workflow engine
	ErrCodeWorkflowEngineUnavailable ErrorCode = "WORKFLOW_ENGINE_UNAVAILABLE"

	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// StandardError is the error shape carried across workers and the HTTP API.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	cause     error
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.cause
}

type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}
	for k, v := range e.ErrorVariables {
		vars[k] = v
	}
	return vars
}

// AsStandard extracts a *StandardError from an error chain.
func AsStandard(err error) (*StandardError, bool) {
	var stdErr *StandardError
	if errors.As(err, &stdErr) {
		return stdErr, true
	}
	return nil, false
}

// HasCode reports whether err carries the given code.
func HasCode(err error, code ErrorCode) bool {
	stdErr, ok := AsStandard(err)
	return ok && stdErr.Code == code
}

func NewSheetSourceUnavailableError(tab string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSheetSourceUnavailable,
		Message:   "Sheet data source could not be read",
		Details:   fmt.Sprintf("tab: %s, error: %s", tab, err.Error()),
		Retryable: true,
		Metadata:  map[string]interface{}{"tab": tab},
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

func NewSheetSourceMisconfiguredError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeSheetSourceMisconfigured,
		Message:   "Sheet data source is not configured",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewSnapshotCacheFailedError(op string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSnapshotCacheFailed,
		Message:   "Snapshot cache operation failed",
		Details:   fmt.Sprintf("op: %s, error: %s", op, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

func NewInvalidCandidateInputError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidCandidateInput,
		Message:   "Candidate input failed validation",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewInvalidFilterDateError(raw string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidFilterDate,
		Message:   "Filter date could not be parsed",
		Details:   fmt.Sprintf("filterDate: %q", raw),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewInvalidJobVariablesError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidJobVariables,
		Message:   "Job variables could not be decoded",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

func NewNotificationSendFailedError(channel string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotificationSendFailed,
		Message:   "Notification delivery failed",
		Details:   fmt.Sprintf("channel: %s, error: %s", channel, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

func NewEventIndexingFailedError(index string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeEventIndexingFailed,
		Message:   "Calendar event indexing failed",
		Details:   fmt.Sprintf("index: %s, error: %s", index, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

func NewWorkflowEngineError(operation string, err error, retryable bool) *StandardError {
	return &StandardError{
		Code:      ErrCodeWorkflowEngineUnavailable,
		Message:   "Workflow engine request failed",
		Details:   fmt.Sprintf("operation: %s, error: %s", operation, err.Error()),
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

func NewInternalError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// BPMNErrorMapping maps internal codes to the error codes caught by boundary events.
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeSheetSourceUnavailable:    "SHEET_SOURCE_UNAVAILABLE",
	ErrCodeSheetSourceMisconfigured:  "SHEET_SOURCE_MISCONFIGURED",
	ErrCodeSnapshotCacheFailed:       "SNAPSHOT_CACHE_FAILED",
	ErrCodeInvalidCandidateInput:     "INVALID_CANDIDATE_INPUT",
	ErrCodeInvalidFilterDate:         "INVALID_FILTER_DATE",
	ErrCodeInvalidJobVariables:       "INVALID_JOB_VARIABLES",
	ErrCodeNotificationSendFailed:    "NOTIFICATION_SEND_FAILED",
	ErrCodeEventIndexingFailed:       "EVENT_INDEXING_FAILED",
	ErrCodeWorkflowEngineUnavailable: "WORKFLOW_ENGINE_UNAVAILABLE",
}

// GetRetryCount returns how many times the engine should retry a job failing with code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeSheetSourceUnavailable,
		ErrCodeNotificationSendFailed,
		ErrCodeEventIndexingFailed,
		ErrCodeWorkflowEngineUnavailable:
		return 3
	case ErrCodeSnapshotCacheFailed:
		return 1
	default:
		return 0
	}
}

func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code)
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	return &BPMNError{
		Code:      bpmnCode,
		Message:   stdErr.Message,
		Details:   stdErr.Details,
		Retryable: stdErr.Retryable,
		Retries:   retries,
		ErrorVariables: map[string]interface{}{
			"originalErrorCode": string(stdErr.Code),
			"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
		},
	}
}

func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.HasPrefix(codeStr, "SHEET_") || strings.HasPrefix(codeStr, "SNAPSHOT_"):
		return "SOURCE"
	case strings.HasPrefix(codeStr, "INVALID_"):
		return "VALIDATION"
	case strings.Contains(codeStr, "NOTIFICATION"):
		return "NOTIFICATION"
	case strings.Contains(codeStr, "INDEXING"):
		return "SEARCH"
	case strings.HasPrefix(codeStr, "WORKFLOW_"):
		return "ENGINE"
	default:
		return "OTHER"
	}
}

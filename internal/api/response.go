package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "appointment-workers/internal/common/errors"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{Error: APIError{Message: msg, Code: code}})
}

// RespondStandardError maps an application error to its HTTP status.
func RespondStandardError(c *gin.Context, err error) {
	std, ok := apperrors.AsStandard(err)
	if !ok {
		RespondError(c, http.StatusInternalServerError, string(apperrors.ErrCodeInternal), err)
		return
	}
	c.JSON(statusFor(std.Code), ErrorEnvelope{Error: APIError{
		Message: std.Message,
		Code:    string(std.Code),
		Details: std.Details,
	}})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

func statusFor(code apperrors.ErrorCode) int {
	switch code {
	case apperrors.ErrCodeInvalidCandidateInput,
		apperrors.ErrCodeInvalidFilterDate,
		apperrors.ErrCodeInvalidJobVariables:
		return http.StatusBadRequest
	case apperrors.ErrCodeSheetSourceUnavailable,
		apperrors.ErrCodeSnapshotCacheFailed:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

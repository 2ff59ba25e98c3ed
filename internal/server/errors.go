package server

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	contractdomain "github.com/smallbiznis/freightrate/internal/contract/domain"
	ratequotedomain "github.com/smallbiznis/freightrate/internal/ratequote/domain"
	ratingdomain "github.com/smallbiznis/freightrate/internal/rating/domain"
	"gorm.io/gorm"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrInternal       = errors.New("internal_error")
	ErrNotFound       = errors.New("not_found")
	ErrInvalidRequest = errors.New("invalid_request")

	ErrRateLimited        = errors.New("rate_limited")
	ErrCommitInProgress   = errors.New("commit_in_progress")
	ErrServiceUnavailable = errors.New("service_unavailable")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	if isValidationError(err) {
		code := validationErrorCode(err)
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{
					Field:   validationErrorField(code),
					Code:    code,
					Message: validationErrorMessage(code),
				},
			},
		}
	}

	switch {
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	case errors.Is(err, ratequotedomain.ErrContractNotResolved):
		return http.StatusUnprocessableEntity, errorPayload{
			Type:    "contract_not_resolved",
			Message: "no published contract version could be resolved for the request",
		}
	case errors.Is(err, ratingdomain.ErrLaneNotEligible):
		return http.StatusUnprocessableEntity, errorPayload{
			Type:    "lane_not_eligible",
			Message: "the contract does not permit this lane",
		}
	case errors.Is(err, ratequotedomain.ErrInconsistentState):
		return http.StatusConflict, errorPayload{
			Type:    "inconsistent_state",
			Message: "the pricing store changed while the quote was being committed",
		}
	case errors.Is(err, ErrCommitInProgress):
		return http.StatusConflict, errorPayload{
			Type:    "commit_in_progress",
			Message: "another commit with this request id is in progress",
		}
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests, errorPayload{
			Type:    "rate_limited",
			Message: "too many rating requests",
		}
	case errors.Is(err, ErrServiceUnavailable):
		return http.StatusServiceUnavailable, errorPayload{
			Type:    "service_unavailable",
			Message: "service temporarily unavailable",
		}
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, errorPayload{
			Type:    "timeout",
			Message: "request timed out",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

// classifyErrorForLog reports the payload type and code an error maps to.
func classifyErrorForLog(err error) (string, string) {
	status, payload := mapError(err)
	if len(payload.Errors) > 0 {
		return payload.Type, payload.Errors[0].Code
	}
	if status >= http.StatusInternalServerError {
		return payload.Type, "internal_error"
	}
	return payload.Type, payload.Type
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, ratingdomain.ErrInvalidMode),
		errors.Is(err, ratingdomain.ErrInvalidShipDate),
		errors.Is(err, ratingdomain.ErrMissingLines),
		errors.Is(err, ratequotedomain.ErrInvalidRequestID),
		errors.Is(err, contractdomain.ErrInvalidVersionID):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, ratequotedomain.ErrQuoteNotFound),
		errors.Is(err, contractdomain.ErrVersionNotFound),
		errors.Is(err, contractdomain.ErrContractNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func validationErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return "invalid_request"
	case errors.Is(err, ratingdomain.ErrInvalidMode):
		return ratingdomain.ErrInvalidMode.Error()
	case errors.Is(err, ratingdomain.ErrInvalidShipDate):
		return ratingdomain.ErrInvalidShipDate.Error()
	case errors.Is(err, ratingdomain.ErrMissingLines):
		return ratingdomain.ErrMissingLines.Error()
	case errors.Is(err, ratequotedomain.ErrInvalidRequestID):
		return ratequotedomain.ErrInvalidRequestID.Error()
	case errors.Is(err, contractdomain.ErrInvalidVersionID):
		return contractdomain.ErrInvalidVersionID.Error()
	default:
		return err.Error()
	}
}

func validationErrorField(code string) string {
	switch code {
	case "invalid_request":
		return "request"
	case ratingdomain.ErrMissingLines.Error():
		return "lines"
	}
	if strings.HasPrefix(code, "invalid_") {
		return strings.TrimPrefix(code, "invalid_")
	}
	return ""
}

func validationErrorMessage(code string) string {
	switch code {
	case "invalid_request":
		return "invalid request"
	case ratingdomain.ErrMissingLines.Error():
		return "at least one shipment line is required"
	default:
		return "invalid value"
	}
}

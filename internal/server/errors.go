package server

import (
	"errors"
	"net/http"
	"strings"

	auditdomain "github.com/colorworks/lackwerk/internal/audit/domain"
	"github.com/colorworks/lackwerk/internal/conversion"
	customerdomain "github.com/colorworks/lackwerk/internal/customer/domain"
	invoicedomain "github.com/colorworks/lackwerk/internal/invoice/domain"
	"github.com/colorworks/lackwerk/internal/lifecycle"
	"github.com/colorworks/lackwerk/internal/pricing"
	settingsdomain "github.com/colorworks/lackwerk/internal/settings/domain"
	tradedomain "github.com/colorworks/lackwerk/internal/trade/domain"
	vehicledomain "github.com/colorworks/lackwerk/internal/vehicle/domain"
	workorderdomain "github.com/colorworks/lackwerk/internal/workorder/domain"
	"github.com/gin-gonic/gin"
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
	ErrConflict       = errors.New("conflict")
	ErrInternal       = errors.New("internal_error")
	ErrNotFound       = errors.New("not_found")
	ErrInvalidRequest = errors.New("invalid_request")
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
	case errors.Is(err, lifecycle.ErrDocumentLocked):
		return http.StatusConflict, errorPayload{
			Type:    "document_locked",
			Message: "document is locked",
		}
	case errors.Is(err, ErrConflict):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: "conflict",
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
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
	case errors.Is(err, ErrInvalidRequest):
		return true
	case errors.Is(err, pricing.ErrInvalidAmount),
		errors.Is(err, pricing.ErrEmptyDocument):
		return true
	case errors.Is(err, lifecycle.ErrInvalidTransition),
		errors.Is(err, lifecycle.ErrConfirmationRequired),
		errors.Is(err, lifecycle.ErrUnknownStatus):
		return true
	case errors.Is(err, conversion.ErrPrecondition):
		return true
	case isCustomerValidationError(err),
		isVehicleValidationError(err),
		isWorkOrderValidationError(err),
		isInvoiceValidationError(err),
		isTradeValidationError(err),
		isSettingsValidationError(err),
		isAuditValidationError(err):
		return true
	default:
		return false
	}
}

func isCustomerValidationError(err error) bool {
	return errors.Is(err, customerdomain.ErrInvalidName) ||
		errors.Is(err, customerdomain.ErrInvalidEmail) ||
		errors.Is(err, customerdomain.ErrInvalidID)
}

func isVehicleValidationError(err error) bool {
	return errors.Is(err, vehicledomain.ErrInvalidCustomer) ||
		errors.Is(err, vehicledomain.ErrInvalidOdometer) ||
		errors.Is(err, vehicledomain.ErrInvalidID)
}

func isWorkOrderValidationError(err error) bool {
	return errors.Is(err, workorderdomain.ErrInvalidCustomer) ||
		errors.Is(err, workorderdomain.ErrInvalidVehicle) ||
		errors.Is(err, workorderdomain.ErrInvalidID)
}

func isInvoiceValidationError(err error) bool {
	return errors.Is(err, invoicedomain.ErrInvalidCustomer) ||
		errors.Is(err, invoicedomain.ErrInvalidVehicle) ||
		errors.Is(err, invoicedomain.ErrInvalidID)
}

func isTradeValidationError(err error) bool {
	return errors.Is(err, tradedomain.ErrInvalidType) ||
		errors.Is(err, tradedomain.ErrInvalidCustomer) ||
		errors.Is(err, tradedomain.ErrInvalidID)
}

func isSettingsValidationError(err error) bool {
	return errors.Is(err, settingsdomain.ErrUnknownKey) ||
		errors.Is(err, settingsdomain.ErrInvalidValue) ||
		errors.Is(err, settingsdomain.ErrValueOutOfRange)
}

func isAuditValidationError(err error) bool {
	return errors.Is(err, auditdomain.ErrInvalidPageToken) ||
		errors.Is(err, auditdomain.ErrInvalidTimeRange) ||
		errors.Is(err, auditdomain.ErrInvalidAction)
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, customerdomain.ErrNotFound),
		errors.Is(err, vehicledomain.ErrNotFound),
		errors.Is(err, workorderdomain.ErrNotFound),
		errors.Is(err, invoicedomain.ErrNotFound),
		errors.Is(err, tradedomain.ErrNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func validationErrorCode(err error) string {
	var pErr *conversion.PreconditionError
	if errors.As(err, &pErr) {
		return "conversion_precondition_" + pErr.Reason
	}
	if errors.Is(err, ErrInvalidRequest) {
		return "invalid_request"
	}
	return err.Error()
}

func validationErrorField(code string) string {
	if code == "invalid_request" {
		return "request"
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
	default:
		return "invalid value"
	}
}

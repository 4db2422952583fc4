package shared

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// ErrorCategory represents the kinds of failure the pipeline distinguishes
type ErrorCategory string

const (
	ErrorCategoryInvalidInput      ErrorCategory = "invalid_input"
	ErrorCategorySourceUnavailable ErrorCategory = "source_unavailable"
	ErrorCategoryNoData            ErrorCategory = "no_data"
	ErrorCategoryExternalService   ErrorCategory = "external_service"
	ErrorCategoryPersistence       ErrorCategory = "persistence"
	ErrorCategoryConfiguration     ErrorCategory = "configuration"
)

// ServiceError carries the category, a stable code and the component that failed
type ServiceError struct {
	Category    ErrorCategory `json:"category"`
	Code        string        `json:"code"`
	Message     string        `json:"message"`
	ServiceName string        `json:"service_name"`
	Operation   string        `json:"operation"`
	Retryable   bool          `json:"retryable"`
	OccurredAt  time.Time     `json:"occurred_at"`
	Cause       error         `json:"-"`
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("[%s:%s] %s", e.Category, e.Code, e.Message)
}

func (e *ServiceError) Unwrap() error {
	return e.Cause
}

func NewServiceError(category ErrorCategory, code, message, serviceName, operation string, retryable bool, cause error) *ServiceError {
	return &ServiceError{
		Category:    category,
		Code:        code,
		Message:     message,
		ServiceName: serviceName,
		Operation:   operation,
		Retryable:   retryable,
		OccurredAt:  time.Now(),
		Cause:       cause,
	}
}

// NewInvalidInputError is a validation failure carrying a user-facing message
func NewInvalidInputError(code, message string) *ServiceError {
	return NewServiceError(ErrorCategoryInvalidInput, code, message, "validation", "validate_search", false, nil)
}

// HTTPStatus maps the category onto the status code surfaced to API callers
func (e *ServiceError) HTTPStatus() int {
	if e.Category == ErrorCategoryInvalidInput {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// LogError writes the error to the standard logger
func (e *ServiceError) LogError() {
	fields := logrus.Fields{
		"component":      e.ServiceName,
		"operation":      e.Operation,
		"error_category": e.Category,
		"error_code":     e.Code,
		"retryable":      e.Retryable,
	}
	if e.Cause != nil {
		fields["cause"] = e.Cause.Error()
	}
	logrus.WithFields(fields).Error(e.Message)
}

// WrapError attaches service context to err. An error that already is a
// ServiceError keeps its category and code; the returned copy takes the new location
// and the original is left untouched.
func WrapError(err error, category ErrorCategory, code, serviceName, operation string, retryable bool) *ServiceError {
	if err == nil {
		return nil
	}
	if serviceErr, ok := AsServiceError(err); ok {
		relocated := *serviceErr
		relocated.ServiceName = serviceName
		relocated.Operation = operation
		return &relocated
	}
	return NewServiceError(category, code, err.Error(), serviceName, operation, retryable, err)
}

// AsServiceError extracts a ServiceError from err, if there is one in the chain
func AsServiceError(err error) (*ServiceError, bool) {
	var serviceErr *ServiceError
	if errors.As(err, &serviceErr) {
		return serviceErr, true
	}
	return nil, false
}

// HasCategory reports whether err is a ServiceError of the given category
func HasCategory(err error, category ErrorCategory) bool {
	serviceErr, ok := AsServiceError(err)
	return ok && serviceErr.Category == category
}

// Package errors provides standardized error kinds for the recommendation
// pipeline and their mapping onto BPMN job errors.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeProfileValidationFailed ErrorCode = "PROFILE_VALIDATION_FAILED"
	ErrCodeInvalidInput            ErrorCode = "INVALID_INPUT"

	ErrCodeProviderNotConfigured   ErrorCode = "PROVIDER_NOT_CONFIGURED"
	ErrCodeProviderRateLimited     ErrorCode = "PROVIDER_RATE_LIMITED"
	ErrCodeProviderUnauthenticated ErrorCode = "PROVIDER_UNAUTHENTICATED"
	ErrCodeProviderUnavailable     ErrorCode = "PROVIDER_UNAVAILABLE"

	ErrCodeMergeFallback ErrorCode = "MERGE_FALLBACK"

	ErrCodeCacheMismatch    ErrorCode = "CACHE_MISMATCH"
	ErrCodeCacheStoreFailed ErrorCode = "CACHE_STORE_FAILED"
	ErrCodeCacheNotFound    ErrorCode = "CACHE_NOT_FOUND"

	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeInternal                 ErrorCode = "INTERNAL_ERROR"
)

// InvocationCategory is the caller-facing category of a failed generation call.
type InvocationCategory string

const (
	CategoryRateLimited     InvocationCategory = "rate_limited"
	CategoryUnauthenticated InvocationCategory = "unauthenticated"
	CategoryUnavailable     InvocationCategory = "unavailable"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	Cause     error                  `json:"-"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.Cause
}

// As extracts a *StandardError from an error chain.
func As(err error) (*StandardError, bool) {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr, true
	}
	return nil, false
}

// HasCode reports whether err carries the given code.
func HasCode(err error, code ErrorCode) bool {
	stdErr, ok := As(err)
	return ok && stdErr.Code == code
}

// IsProviderInvocation reports whether err is a failed call to a generator.
func IsProviderInvocation(err error) bool {
	stdErr, ok := As(err)
	if !ok {
		return false
	}
	switch stdErr.Code {
	case ErrCodeProviderRateLimited, ErrCodeProviderUnauthenticated, ErrCodeProviderUnavailable:
		return true
	}
	return false
}

// CategoryOf returns the invocation category of a provider error, or "".
func CategoryOf(err error) InvocationCategory {
	stdErr, ok := As(err)
	if !ok {
		return ""
	}
	switch stdErr.Code {
	case ErrCodeProviderRateLimited:
		return CategoryRateLimited
	case ErrCodeProviderUnauthenticated:
		return CategoryUnauthenticated
	case ErrCodeProviderUnavailable:
		return CategoryUnavailable
	}
	return ""
}

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error thrown to the Camunda workflow engine.
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

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
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

// ==========================
// 3. Error Constructors
// ==========================

// NewProfileValidationError reports missing required profile fields.
func NewProfileValidationError(missing []string) *StandardError {
	return &StandardError{
		Code:      ErrCodeProfileValidationFailed,
		Message:   "Profile is missing required fields",
		Details:   strings.Join(missing, ", "),
		Retryable: false,
		Metadata:  map[string]interface{}{"missingFields": missing},
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidInputError reports malformed input at a boundary.
func NewInvalidInputError(details string, cause error) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidInput,
		Message:   "Input could not be decoded",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
		Cause:     cause,
	}
}

// NewProviderNotConfiguredError reports that no usable generation provider exists.
func NewProviderNotConfiguredError(provider string) *StandardError {
	details := "no generation provider configured"
	if provider != "" {
		details = fmt.Sprintf("provider %q is not configured", provider)
	}
	return &StandardError{
		Code:      ErrCodeProviderNotConfigured,
		Message:   "Generation provider not configured",
		Details:   details,
		Retryable: false,
		Metadata:  map[string]interface{}{"provider": provider},
		Timestamp: time.Now().UTC(),
	}
}

// NewProviderInvocationError wraps a failed generation call with a stable category.
func NewProviderInvocationError(provider string, category InvocationCategory, cause error) *StandardError {
	code := ErrCodeProviderUnavailable
	message := "Generation provider unavailable"
	retryable := true
	switch category {
	case CategoryRateLimited:
		code = ErrCodeProviderRateLimited
		message = "Generation provider rate limit reached"
	case CategoryUnauthenticated:
		code = ErrCodeProviderUnauthenticated
		message = "Generation provider rejected credentials"
		retryable = false
	default:
		category = CategoryUnavailable
	}
	details := ""
	if cause != nil {
		details = cause.Error()
	}
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Metadata: map[string]interface{}{
			"provider": provider,
			"category": string(category),
		},
		Timestamp: time.Now().UTC(),
		Cause:     cause,
	}
}

// NewMergeFallbackWarning records a field resolved by fallback during merging.
func NewMergeFallbackWarning(field, reason string) *StandardError {
	return &StandardError{
		Code:      ErrCodeMergeFallback,
		Message:   "External output incomplete, fallback applied",
		Details:   fmt.Sprintf("%s: %s", field, reason),
		Retryable: false,
		Metadata:  map[string]interface{}{"field": field},
		Timestamp: time.Now().UTC(),
	}
}

// NewCacheMismatch signals a cached entry under a different scenario/provider.
func NewCacheMismatch(cachedScenario, cachedProvider string) *StandardError {
	return &StandardError{
		Code:      ErrCodeCacheMismatch,
		Message:   "Cached result exists for a different scenario or provider",
		Details:   fmt.Sprintf("cachedScenario: %s, cachedProvider: %s", cachedScenario, cachedProvider),
		Retryable: false,
		Metadata: map[string]interface{}{
			"cachedScenario": cachedScenario,
			"cachedProvider": cachedProvider,
		},
		Timestamp: time.Now().UTC(),
	}
}

// NewCacheStoreFailedError wraps a persistence failure.
func NewCacheStoreFailedError(op string, cause error) *StandardError {
	return &StandardError{
		Code:      ErrCodeCacheStoreFailed,
		Message:   "Recommendation cache operation failed",
		Details:   fmt.Sprintf("op: %s, error: %v", op, cause),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		Cause:     cause,
	}
}

// NewCacheNotFoundError reports that no cached recommendation exists.
func NewCacheNotFoundError(entityID, kind string) *StandardError {
	return &StandardError{
		Code:      ErrCodeCacheNotFound,
		Message:   "No cached recommendation found",
		Details:   fmt.Sprintf("entityId: %s, kind: %s", entityID, kind),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDatabaseConnectionFailedError creates a retryable database connection error.
func NewDatabaseConnectionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseConnectionFailed,
		Message:   "Database connection error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		Cause:     err,
	}
}

// NewInternalError reports an unexpected failure inside the advisor.
func NewInternalError(details string, cause error) *StandardError {
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Internal error",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
		Cause:     cause,
	}
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// GetRetryCount returns the recommended job retry count for a code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeCacheStoreFailed,
		ErrCodeDatabaseConnectionFailed:
		return 3
	case ErrCodeProviderUnavailable:
		return 2
	case ErrCodeProviderRateLimited:
		return 1
	default:
		return 0
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	vars := map[string]interface{}{
		"originalErrorCode": string(stdErr.Code),
		"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
	}
	if category, ok := stdErr.Metadata["category"]; ok {
		vars["errorCategory"] = category
	}

	return &BPMNError{
		Code:           string(stdErr.Code),
		Message:        stdErr.Message,
		Details:        stdErr.Details,
		Retryable:      stdErr.Retryable,
		Retries:        retries,
		ErrorVariables: vars,
	}
}

// ==========================
// 5. Utility Functions
// ==========================

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the reporting category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.HasPrefix(codeStr, "PROVIDER"):
		return "PROVIDER"
	case strings.HasPrefix(codeStr, "CACHE"):
		return "CACHE"
	case strings.Contains(codeStr, "DATABASE"):
		return "DATABASE"
	case strings.Contains(codeStr, "MERGE"):
		return "MERGE"
	case strings.Contains(codeStr, "INVALID") || strings.Contains(codeStr, "VALIDATION"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}

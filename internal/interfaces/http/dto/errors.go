package dto

import (
	"net/http"
	"strings"
)

// API error codes. Domain errors carry bare codes such as NOT_FOUND; the
// API reports them as ERR_NOT_FOUND when the code is registered here.
const errPrefix = "ERR_"

// General
const (
	ErrCodeInternal            = "ERR_INTERNAL"
	ErrCodeValidation          = "ERR_VALIDATION"
	ErrCodeBadRequest          = "ERR_BAD_REQUEST"
	ErrCodeInvalidInput        = "ERR_INVALID_INPUT"
	ErrCodeInvalidJSON         = "ERR_INVALID_JSON"
	ErrCodeRequestTooLarge     = "ERR_REQUEST_TOO_LARGE"
	ErrCodeRateLimited         = "ERR_RATE_LIMITED"
	ErrCodeNotFound            = "ERR_NOT_FOUND"
	ErrCodeAlreadyExists       = "ERR_ALREADY_EXISTS"
	ErrCodeConcurrencyConflict = "ERR_CONCURRENCY_CONFLICT"
	ErrCodeInvalidState        = "ERR_INVALID_STATE"
)

// Authentication
const (
	ErrCodeUnauthorized       = "ERR_UNAUTHORIZED"
	ErrCodeForbidden          = "ERR_FORBIDDEN"
	ErrCodeTokenExpired       = "ERR_TOKEN_EXPIRED"
	ErrCodeTokenInvalid       = "ERR_TOKEN_INVALID"
	ErrCodeTokenRevoked       = "ERR_TOKEN_REVOKED"
	ErrCodeInvalidCredentials = "ERR_INVALID_CREDENTIALS"
	ErrCodeAccountLocked      = "ERR_ACCOUNT_LOCKED"
	ErrCodeAccountDisabled    = "ERR_ACCOUNT_DISABLED"
)

// Shopping
const (
	ErrCodeSessionNotFound      = "ERR_SESSION_NOT_FOUND"
	ErrCodeSessionCheckedOut    = "ERR_SESSION_ALREADY_CHECKED_OUT"
	ErrCodeBudgetPromptRequired = "ERR_BUDGET_PROMPT_REQUIRED"
	ErrCodeInvalidBudget        = "ERR_INVALID_BUDGET"
	ErrCodeCartEmpty            = "ERR_CART_EMPTY"
	ErrCodeItemNotInCart        = "ERR_ITEM_NOT_IN_CART"
	ErrCodeProductUnavailable   = "ERR_PRODUCT_UNAVAILABLE"
	ErrCodeInvalidQuantity      = "ERR_INVALID_QUANTITY"
	ErrCodeInsufficientStock    = "ERR_INSUFFICIENT_STOCK"
)

// Catalog, media and import
const (
	ErrCodeInvalidCategory     = "ERR_INVALID_CATEGORY"
	ErrCodeCategoryHasProducts = "ERR_CATEGORY_HAS_PRODUCTS"
	ErrCodeInvalidImage        = "ERR_INVALID_IMAGE"
	ErrCodeImageTooLarge       = "ERR_IMAGE_TOO_LARGE"
	ErrCodeUnsupportedImage    = "ERR_UNSUPPORTED_IMAGE_TYPE"
	ErrCodeNoImage             = "ERR_NO_IMAGE"
	ErrCodeTooManyLabels       = "ERR_TOO_MANY_LABELS"
	ErrCodePrintingDisabled    = "ERR_PRINTING_DISABLED"
	ErrCodeInvalidImportFile   = "ERR_INVALID_IMPORT_FILE"
	ErrCodeMissingColumns      = "ERR_MISSING_COLUMNS"
	ErrCodeImportTooLarge      = "ERR_IMPORT_TOO_LARGE"
	ErrCodeInvalidConflictMode = "ERR_INVALID_CONFLICT_MODE"
)

// Tickets
const (
	ErrCodeTicketAlreadyCancelled = "ERR_TICKET_ALREADY_CANCELLED"
	ErrCodeTicketNotCancelled     = "ERR_TICKET_NOT_CANCELLED"
	ErrCodeTicketNumberConflict   = "ERR_TICKET_NUMBER_CONFLICT"
)

var codeStatus = map[string]int{
	ErrCodeInternal:            http.StatusInternalServerError,
	ErrCodeValidation:          http.StatusBadRequest,
	ErrCodeBadRequest:          http.StatusBadRequest,
	ErrCodeInvalidInput:        http.StatusBadRequest,
	ErrCodeInvalidJSON:         http.StatusBadRequest,
	ErrCodeRequestTooLarge:     http.StatusRequestEntityTooLarge,
	ErrCodeRateLimited:         http.StatusTooManyRequests,
	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeAlreadyExists:       http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,
	ErrCodeInvalidState:        http.StatusUnprocessableEntity,

	ErrCodeUnauthorized:       http.StatusUnauthorized,
	ErrCodeForbidden:          http.StatusForbidden,
	ErrCodeTokenExpired:       http.StatusUnauthorized,
	ErrCodeTokenInvalid:       http.StatusUnauthorized,
	ErrCodeTokenRevoked:       http.StatusUnauthorized,
	ErrCodeInvalidCredentials: http.StatusUnauthorized,
	ErrCodeAccountLocked:      http.StatusLocked,
	ErrCodeAccountDisabled:    http.StatusForbidden,

	ErrCodeSessionNotFound:      http.StatusNotFound,
	ErrCodeSessionCheckedOut:    http.StatusConflict,
	ErrCodeBudgetPromptRequired: http.StatusConflict,
	ErrCodeInvalidBudget:        http.StatusBadRequest,
	ErrCodeCartEmpty:            http.StatusUnprocessableEntity,
	ErrCodeItemNotInCart:        http.StatusNotFound,
	ErrCodeProductUnavailable:   http.StatusUnprocessableEntity,
	ErrCodeInvalidQuantity:      http.StatusBadRequest,
	ErrCodeInsufficientStock:    http.StatusUnprocessableEntity,

	ErrCodeInvalidCategory:     http.StatusBadRequest,
	ErrCodeCategoryHasProducts: http.StatusConflict,
	ErrCodeInvalidImage:        http.StatusBadRequest,
	ErrCodeImageTooLarge:       http.StatusRequestEntityTooLarge,
	ErrCodeUnsupportedImage:    http.StatusUnsupportedMediaType,
	ErrCodeNoImage:             http.StatusNotFound,
	ErrCodeTooManyLabels:       http.StatusBadRequest,
	ErrCodePrintingDisabled:    http.StatusServiceUnavailable,
	ErrCodeInvalidImportFile:   http.StatusBadRequest,
	ErrCodeMissingColumns:      http.StatusBadRequest,
	ErrCodeImportTooLarge:      http.StatusRequestEntityTooLarge,
	ErrCodeInvalidConflictMode: http.StatusBadRequest,

	ErrCodeTicketAlreadyCancelled: http.StatusConflict,
	ErrCodeTicketNotCancelled:     http.StatusUnprocessableEntity,
	ErrCodeTicketNumberConflict:   http.StatusServiceUnavailable,
}

// domain codes whose API code is not simply ERR_<code>
var codeAliases = map[string]string{
	"VALIDATION_ERROR":    ErrCodeValidation,
	"INTERNAL_ERROR":      ErrCodeInternal,
	"PASSWORD_HASH_ERROR": ErrCodeInternal,
	"ACCOUNT_INACTIVE":    ErrCodeAccountDisabled,
	"TOKEN_MAX_REFRESH":   ErrCodeTokenInvalid,
	"TOKEN_ERROR":         ErrCodeTokenInvalid,
	"USER_NOT_FOUND":      ErrCodeNotFound,
}

// StatusOf returns the HTTP status of a registered API code, 500 otherwise
func StatusOf(code string) int {
	if status, ok := codeStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// NormalizeErrorCode turns a domain error code into its API code. Codes
// that are already prefixed or not registered pass through unchanged.
func NormalizeErrorCode(code string) string {
	if strings.HasPrefix(code, errPrefix) {
		return code
	}
	if alias, ok := codeAliases[code]; ok {
		return alias
	}
	if _, ok := codeStatus[errPrefix+code]; ok {
		return errPrefix + code
	}
	return code
}

// DomainErrorStatus returns the HTTP status for a normalized domain error code.
// Unregistered domain codes are input problems, not server faults.
func DomainErrorStatus(code string) int {
	if status, ok := codeStatus[code]; ok {
		return status
	}
	if strings.HasPrefix(code, "INVALID_") {
		return http.StatusBadRequest
	}
	return http.StatusUnprocessableEntity
}

package dto

import "net/http"

// Error code constants organized by category
// Format: ERR_<CATEGORY>

// General error codes
const (
	// ErrCodeUnknown is used when the error type is unknown
	ErrCodeUnknown = "ERR_UNKNOWN"
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "ERR_INTERNAL"
)

// Input error codes
const (
	// ErrCodeValidation is used when request input fails validation
	ErrCodeValidation = "ERR_VALIDATION"
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "ERR_BAD_REQUEST"
)

// Authentication error codes
const (
	// ErrCodeUnauthorized is used when authentication is required but missing/invalid
	ErrCodeUnauthorized = "ERR_UNAUTHORIZED"
	// ErrCodeForbidden is used when the user lacks permission
	ErrCodeForbidden = "ERR_FORBIDDEN"
	// ErrCodeTokenExpired is used when the session token has expired
	ErrCodeTokenExpired = "ERR_TOKEN_EXPIRED"
)

// Resource error codes
const (
	// ErrCodeNotFound is used when a resource is not found
	ErrCodeNotFound = "ERR_NOT_FOUND"
	// ErrCodeAlreadyExists is used when trying to create a duplicate resource
	ErrCodeAlreadyExists = "ERR_ALREADY_EXISTS"
	// ErrCodeConflict is used for general resource conflicts
	ErrCodeConflict = "ERR_CONFLICT"
)

// Marketplace error codes
const (
	// ErrCodeNotLinked is used when an operation needs a linked
	// marketplace account and the user has none
	ErrCodeNotLinked = "ERR_NOT_LINKED"
	// ErrCodeTokenRefresh is used when the marketplace token refresh grant fails
	ErrCodeTokenRefresh = "ERR_TOKEN_REFRESH"
	// ErrCodeUpstream is used when a marketplace read returns a non-success status
	ErrCodeUpstream = "ERR_UPSTREAM"
	// ErrCodePromotionRejected is used when the marketplace rejects a
	// promotion submission or an eligibility gate fails
	ErrCodePromotionRejected = "ERR_PROMOTION_REJECTED"
	// ErrCodeDelivery is used when a post-sale message cannot be delivered
	ErrCodeDelivery = "ERR_DELIVERY"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	ErrCodeValidation: http.StatusBadRequest,
	ErrCodeBadRequest: http.StatusBadRequest,

	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,
	ErrCodeTokenExpired: http.StatusUnauthorized,

	ErrCodeNotFound:      http.StatusNotFound,
	ErrCodeAlreadyExists: http.StatusConflict,
	ErrCodeConflict:      http.StatusConflict,

	ErrCodeNotLinked:         http.StatusPreconditionFailed,
	ErrCodeTokenRefresh:      http.StatusBadGateway,
	ErrCodeUpstream:          http.StatusBadGateway,
	ErrCodePromotionRejected: http.StatusUnprocessableEntity,
	ErrCodeDelivery:          http.StatusBadGateway,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DomainErrorCodeMapping maps domain error codes to wire-level codes
var DomainErrorCodeMapping = map[string]string{
	"NOT_FOUND":      ErrCodeNotFound,
	"ALREADY_EXISTS": ErrCodeAlreadyExists,
	"UNAUTHORIZED":   ErrCodeUnauthorized,
	"FORBIDDEN":      ErrCodeForbidden,

	"INVALID_INPUT":        ErrCodeValidation,
	"INVALID_EMAIL":        ErrCodeValidation,
	"INVALID_DISPLAY_NAME": ErrCodeValidation,
	"INVALID_USER_ID":      ErrCodeValidation,
	"INVALID_BUYER_ID":     ErrCodeValidation,
	"INVALID_ITEM_ID":      ErrCodeValidation,
	"INVALID_PRICE":        ErrCodeValidation,
	"INVALID_MELI_USER":    ErrCodeValidation,
	"INVALID_TOKEN_PAIR":   ErrCodeValidation,
	"VERIFIER_EXPIRED":     ErrCodeValidation,

	"INVALID_CREDENTIALS": ErrCodeUnauthorized,
	"ACCOUNT_DEACTIVATED": ErrCodeForbidden,

	"NOT_LINKED":              ErrCodeNotLinked,
	"IDENTITY_ALREADY_LINKED": ErrCodeConflict,
	"IDENTITY_MISMATCH":       ErrCodeConflict,
	"ALREADY_DEACTIVATED":     ErrCodeConflict,
	"CONCURRENCY_CONFLICT":    ErrCodeConflict,
	"NO_ORDER_HISTORY":        ErrCodeConflict,

	"PASSWORD_HASH_ERROR": ErrCodeInternal,
}

// NormalizeErrorCode converts a domain error code to the wire-level
// format. Unknown codes pass through as-is.
func NormalizeErrorCode(code string) string {
	if wireCode, ok := DomainErrorCodeMapping[code]; ok {
		return wireCode
	}
	return code
}

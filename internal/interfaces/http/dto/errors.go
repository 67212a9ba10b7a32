package dto

import "net/http"

// Transport-level error codes. Domain errors keep their own codes
// (TITLE_REQUIRED, CART_EMPTY, ...) and are mapped below.
const (
	ErrCodeInternal       = "INTERNAL_ERROR"
	ErrCodeValidation     = "VALIDATION_ERROR"
	ErrCodeBadRequest     = "BAD_REQUEST"
	ErrCodeNotFound       = "NOT_FOUND"
	ErrCodeUnauthorized   = "UNAUTHORIZED"
	ErrCodeTokenExpired   = "TOKEN_EXPIRED"
	ErrCodeTokenInvalid   = "INVALID_TOKEN"
	ErrCodeTokenRevoked   = "TOKEN_REVOKED"
	ErrCodeRateLimited    = "RATE_LIMIT_EXCEEDED"
	ErrCodeTooLarge       = "REQUEST_TOO_LARGE"
	ErrCodeMaxConnections = "MAX_CONNECTIONS_REACHED"
	ErrCodeUnavailable    = "SERVICE_UNAVAILABLE"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	// Product form and image validation
	"TITLE_REQUIRED":     http.StatusBadRequest,
	"INVALID_TITLE":      http.StatusBadRequest,
	"INVALID_PRICE":      http.StatusBadRequest,
	"CATEGORY_REQUIRED":  http.StatusBadRequest,
	"IMAGES_REQUIRED":    http.StatusBadRequest,
	"INVALID_IMAGE_TYPE": http.StatusBadRequest,
	"INVALID_IMAGE":      http.StatusBadRequest,
	"IMAGE_TOO_LARGE":    http.StatusBadRequest,
	"INVALID_ORDER":      http.StatusBadRequest,

	// Cart and checkout
	"INVALID_INPUT":       http.StatusBadRequest,
	"INVALID_QUANTITY":    http.StatusBadRequest,
	"CART_EMPTY":          http.StatusBadRequest,
	"CART_PERSIST_FAILED": http.StatusInternalServerError,

	// Identity
	"INVALID_EMAIL":       http.StatusBadRequest,
	"INVALID_PASSWORD":    http.StatusBadRequest,
	"INVALID_CREDENTIALS": http.StatusUnauthorized,

	// Resources
	"CONFLICT":         http.StatusConflict,
	"UPLOAD_FAILED":    http.StatusBadGateway,
	"UPLOAD_NOT_FOUND": http.StatusNotFound,

	ErrCodeInternal:       http.StatusInternalServerError,
	ErrCodeValidation:     http.StatusBadRequest,
	ErrCodeBadRequest:     http.StatusBadRequest,
	ErrCodeNotFound:       http.StatusNotFound,
	ErrCodeUnauthorized:   http.StatusUnauthorized,
	ErrCodeTokenExpired:   http.StatusUnauthorized,
	ErrCodeTokenInvalid:   http.StatusUnauthorized,
	ErrCodeTokenRevoked:   http.StatusUnauthorized,
	ErrCodeRateLimited:    http.StatusTooManyRequests,
	ErrCodeTooLarge:       http.StatusRequestEntityTooLarge,
	ErrCodeMaxConnections: http.StatusServiceUnavailable,
	ErrCodeUnavailable:    http.StatusServiceUnavailable,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

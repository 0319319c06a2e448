package errors

import (
	"fmt"
	"net/http"
)

// Code represents an error code with HTTP status and message
type Code struct {
	Code    int    // Business error code
	Status  int    // HTTP status code
	Message string // Error message
}

// Error codes for different modules
const (
	// Success
	Success = 0

	// Common errors (1000-1999)
	ErrInternalServer  = 1000
	ErrInvalidParams   = 1001
	ErrNotFound        = 1002
	ErrUnauthorized    = 1003
	ErrForbidden       = 1004
	ErrConflict        = 1005
	ErrTooManyRequests = 1006

	// Auth errors (2000-2999)
	ErrAuthInvalidCredentials = 2000
	ErrAuthEmailExists        = 2001
	ErrAuthInvalidToken       = 2002

	// User errors (3000-3999)
	ErrUserNotFound = 3000

	// File errors (4000-4999)
	ErrFileNotFound         = 4000
	ErrFileNoContent        = 4001
	ErrShareEmailRequired   = 4002
	ErrShareBadPermission   = 4003
	ErrFilePermissionDenied = 4004
	ErrFileStorageFailed    = 4005
	ErrFileTooLarge         = 4006
)

// codeMap maps error codes to their details
var codeMap = map[int]Code{
	Success: {Success, http.StatusOK, "Success"},

	// Common errors
	ErrInternalServer:  {ErrInternalServer, http.StatusInternalServerError, "Internal server error"},
	ErrInvalidParams:   {ErrInvalidParams, http.StatusBadRequest, "Invalid parameters"},
	ErrNotFound:        {ErrNotFound, http.StatusNotFound, "Resource not found"},
	ErrUnauthorized:    {ErrUnauthorized, http.StatusUnauthorized, "Unauthorized"},
	ErrForbidden:       {ErrForbidden, http.StatusForbidden, "Forbidden"},
	ErrConflict:        {ErrConflict, http.StatusConflict, "Resource conflict"},
	ErrTooManyRequests: {ErrTooManyRequests, http.StatusTooManyRequests, "Too many requests"},

	// Auth errors
	ErrAuthInvalidCredentials: {ErrAuthInvalidCredentials, http.StatusUnauthorized, "Invalid email or password"},
	ErrAuthEmailExists:        {ErrAuthEmailExists, http.StatusConflict, "Email already exists"},
	ErrAuthInvalidToken:       {ErrAuthInvalidToken, http.StatusUnauthorized, "Invalid or expired token"},

	// User errors
	ErrUserNotFound: {ErrUserNotFound, http.StatusNotFound, "User not found"},

	// File errors
	ErrFileNotFound:         {ErrFileNotFound, http.StatusNotFound, "File not found"},
	ErrFileNoContent:        {ErrFileNoContent, http.StatusBadRequest, "No content provided"},
	ErrShareEmailRequired:   {ErrShareEmailRequired, http.StatusBadRequest, "Email is required"},
	ErrShareBadPermission:   {ErrShareBadPermission, http.StatusBadRequest, "Permission must be 'view' or 'edit'"},
	ErrFilePermissionDenied: {ErrFilePermissionDenied, http.StatusForbidden, "Edit permission required"},
	ErrFileStorageFailed:    {ErrFileStorageFailed, http.StatusInternalServerError, "Storage operation failed"},
	ErrFileTooLarge:         {ErrFileTooLarge, http.StatusBadRequest, "File size exceeds limit"},
}

// GetCode returns the Code for a given error code
func GetCode(code int) Code {
	if c, ok := codeMap[code]; ok {
		return c
	}
	return codeMap[ErrInternalServer]
}

// GetHTTPStatus returns HTTP status for a given error code
func GetHTTPStatus(code int) int {
	return GetCode(code).Status
}

// GetMessage returns the message for a given error code
func GetMessage(code int) string {
	return GetCode(code).Message
}

// IsSuccess checks if the code represents success
func IsSuccess(code int) bool {
	return code == Success
}

// FormatError formats an error message with code
func FormatError(code int, details ...string) string {
	msg := GetMessage(code)
	if len(details) > 0 && details[0] != "" {
		return fmt.Sprintf("%s: %s", msg, details[0])
	}
	return msg
}

package apperrors

import (
	"errors"
	"fmt"
)

// Kind classifies an application error. The set is closed: every error that
// crosses a service boundary carries exactly one of these kinds.
type Kind string

const (
	KindCamera  Kind = "camera"
	KindAPI     Kind = "api"
	KindStorage Kind = "storage"
	KindNetwork Kind = "network"
)

// Storage error codes. Code carries the underlying failure name when one is
// known, else the generic marker.
const (
	CodeStorage       = "STORAGE_ERROR"
	CodeValidation    = "VALIDATION_ERROR"
	CodeQuotaExceeded = "QUOTA_EXCEEDED"
	CodeSerialization = "SERIALIZATION_ERROR"
)

// Error is the tagged application error. Code is set for storage errors,
// StatusCode for api errors from the upstream service.
type Error struct {
	Kind       Kind   `json:"type"`
	Message    string `json:"message"`
	Code       string `json:"code,omitempty"`
	StatusCode int    `json:"status_code,omitempty"`
	Err        error  `json:"-"`
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewStorageError builds a storage-kind error. An empty code falls back to the
// generic marker.
func NewStorageError(message, code string) *Error {
	if code == "" {
		code = CodeStorage
	}
	return &Error{Kind: KindStorage, Message: message, Code: code}
}

// WrapStorageError builds a storage-kind error around an underlying cause.
func WrapStorageError(message, code string, err error) *Error {
	e := NewStorageError(message, code)
	e.Err = err
	return e
}

// NewAPIError builds an api-kind error carrying the upstream HTTP status, when
// one was received.
func NewAPIError(message string, statusCode int) *Error {
	return &Error{Kind: KindAPI, Message: message, StatusCode: statusCode}
}

// NewNetworkError builds a network-kind error around a transport failure.
func NewNetworkError(message string, err error) *Error {
	return &Error{Kind: KindNetwork, Message: message, Err: err}
}

// NewCameraError builds a camera-kind error. The server never produces these;
// the kind exists so client-side classifications round-trip through the API.
func NewCameraError(message string) *Error {
	return &Error{Kind: KindCamera, Message: message}
}

// As unwraps err to the tagged error type, if it carries one.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, k Kind) bool {
	e, ok := As(err)
	return ok && e.Kind == k
}

// UserMessage maps an error kind to the fixed message shown to the user.
func UserMessage(k Kind) string {
	switch k {
	case KindCamera:
		return "Unable to access the camera. Please check permissions and try again."
	case KindAPI:
		return "Food analysis failed. Please try again."
	case KindStorage:
		return "Unable to save data. Your device storage may be full."
	case KindNetwork:
		return "Network connection problem. Please check your connection and try again."
	default:
		return "Something went wrong. Please try again."
	}
}

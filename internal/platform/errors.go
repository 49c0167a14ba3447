package platform

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Sentinel errors surfaced by account operations so callers can branch on
// outcome instead of string-matching provider messages.
var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
)

// APIError is a non-2xx response from the platform.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("platform: %s (%s)", e.Message, e.Code)
	}
	return fmt.Sprintf("platform: %s (status %d)", e.Message, e.Status)
}

// Unwrap maps well-known platform responses onto the package sentinels.
func (e *APIError) Unwrap() error {
	switch {
	case e.Status == http.StatusNotFound:
		return ErrNotFound
	case e.Status == http.StatusConflict, strings.Contains(e.Code, "already_exists"):
		return ErrAlreadyExists
	default:
		return nil
	}
}

func decodeAPIError(status int, body []byte) error {
	var payload struct {
		ErrorType    string `json:"errorType"`
		ErrorMessage string `json:"errorMessage"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || payload.ErrorMessage == "" {
		payload.ErrorMessage = strings.TrimSpace(string(body))
	}
	if payload.ErrorMessage == "" {
		payload.ErrorMessage = http.StatusText(status)
	}
	return &APIError{Status: status, Code: payload.ErrorType, Message: payload.ErrorMessage}
}

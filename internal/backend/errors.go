package backend

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrNetwork means the backend could not be reached at all
	ErrNetwork = errors.New("unable to connect to server")
	// ErrUnauthorized means the backend rejected the session (401/403)
	ErrUnauthorized = errors.New("authentication failed")
)

// APIError is any other non-2xx response. Body holds the raw response text.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend returned %d: %s", e.StatusCode, e.Message())
}

// Message returns the text to show the user: the JSON "message" field when
// the body has one, otherwise the raw body, otherwise the status text.
func (e *APIError) Message() string {
	body := strings.TrimSpace(e.Body)
	if body == "" {
		return http.StatusText(e.StatusCode)
	}

	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal([]byte(body), &payload); err == nil {
		if payload.Message != "" {
			return payload.Message
		}
		if payload.Error != "" {
			return payload.Error
		}
	}
	return body
}

// UserMessage renders any error from this package as a single alert line
func UserMessage(err error) string {
	var apiErr *APIError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNetwork):
		return "Network error: Unable to connect to server. Please check if the backend is running."
	case errors.Is(err, ErrUnauthorized):
		return "Your session has expired. Please log in again."
	case errors.As(err, &apiErr):
		return apiErr.Message()
	default:
		return err.Error()
	}
}

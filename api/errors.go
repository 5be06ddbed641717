package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/Tchaas/Bingo-ledger/internal/utils"
)

// Error is the normalized failure raised for any non-2xx response the
// pipeline could not recover from. Message is always a non-empty,
// human-readable string; Data carries the parsed error payload so
// callers can branch on it.
type Error struct {
	Message    string
	StatusCode int
	Data       map[string]interface{}
}

func (e *Error) Error() string {
	return e.Message
}

// newError builds an Error from the parsed payload. The message
// prefers the payload's "error" field, then "message", then the HTTP
// status text; a "required" field list is appended comma-joined.
func newError(statusCode int, data map[string]interface{}) *Error {
	message := stringField(data, "error")
	if message == "" {
		message = stringField(data, "message")
	}
	if message == "" {
		message = http.StatusText(statusCode)
	}
	if message == "" {
		message = fmt.Sprintf("request failed with status %d", statusCode)
	}
	if fields := requiredFields(data); len(fields) > 0 {
		message = message + ": " + strings.Join(fields, ", ")
	}
	return &Error{Message: message, StatusCode: statusCode, Data: data}
}

func stringField(data map[string]interface{}, key string) string {
	value, ok := data[key].(string)
	if !ok {
		return ""
	}
	return value
}

func requiredFields(data map[string]interface{}) []string {
	raw, ok := data["required"].([]interface{})
	if !ok {
		return nil
	}
	return utils.ToStringSlice(raw)
}

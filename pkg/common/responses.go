package common

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// MaxBodyBytes caps request bodies at 5 MiB.
const MaxBodyBytes int64 = 5 << 20

// ErrInvalidJSON is returned when a body is not a single JSON object.
var ErrInvalidJSON = errors.New("invalid JSON body")

// Envelope is the uniform response body of every endpoint.
type Envelope struct {
	Success     bool        `json:"success"`
	Data        interface{} `json:"data,omitempty"`
	Error       string      `json:"error,omitempty"`
	Message     string      `json:"message,omitempty"`
	Count       *int        `json:"count,omitempty"`
	Environment string      `json:"environment,omitempty"`
	Stack       string      `json:"stack,omitempty"`
}

// Success wraps data with an optional message.
func Success(data interface{}, message string) Envelope {
	return Envelope{Success: true, Data: data, Message: message}
}

// List wraps a sequence together with its length. A nil slice must not be
// passed as data; callers hand in an empty one instead.
func List(data interface{}, count int) Envelope {
	return Envelope{Success: true, Data: data, Count: &count}
}

// Failure builds an error envelope.
func Failure(message string) Envelope {
	return Envelope{Success: false, Error: message}
}

// RespondJSON sends a JSON response
func RespondJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// ExtractRequestID returns the request ID from the context, falling back to
// the request headers
func ExtractRequestID(r *http.Request) string {
	if id, ok := GetRequestID(r.Context()); ok {
		return id
	}
	if id := r.Header.Get("X-Request-ID"); id != "" {
		return id
	}
	if id := r.Header.Get("X-Amzn-Trace-Id"); id != "" {
		return id
	}
	return ""
}

// ParseJSONBody decodes a JSON object from an HTTP request with size limit.
// An empty body decodes to an empty object.
func ParseJSONBody(w http.ResponseWriter, r *http.Request) (map[string]interface{}, error) {
	if r.Body == nil {
		return map[string]interface{}{}, nil
	}
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	return DecodeJSONObject(raw)
}

// DecodeJSONObject decodes raw bytes that must hold exactly one JSON object.
func DecodeJSONObject(raw []byte) (map[string]interface{}, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return map[string]interface{}{}, nil
	}
	if int64(len(raw)) > MaxBodyBytes {
		return nil, fmt.Errorf("%w: body exceeds %d bytes", ErrInvalidJSON, MaxBodyBytes)
	}

	var object map[string]interface{}
	decoder := json.NewDecoder(bytes.NewReader(raw))
	if err := decoder.Decode(&object); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	if object == nil {
		return nil, fmt.Errorf("%w: body must be an object", ErrInvalidJSON)
	}
	if _, err := decoder.Token(); err != io.EOF {
		return nil, fmt.Errorf("%w: unexpected trailing data", ErrInvalidJSON)
	}
	return object, nil
}

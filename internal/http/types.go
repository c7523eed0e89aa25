package http

import "encoding/json"

// HealthResponse is the response body for GET /health.
type HealthResponse struct {
	Status string `json:"status"`
	Debug  bool   `json:"debug"`
}

// LogRequest is the request body for POST /api/v1/log.
type LogRequest struct {
	// Message is a string or an object; object member order is kept.
	Message  json.RawMessage `json:"message"`
	Metadata map[string]any  `json:"metadata,omitempty"`
	// Track records checkpoints on the request's invocation before emitting.
	Track []string `json:"track,omitempty"`
}

// LogResponse is the response body for POST /api/v1/log.
type LogResponse struct {
	InvocationID string `json:"invocation_id"`
}

// ErrorResponse mirrors echo's default error body.
type ErrorResponse struct {
	Message string `json:"message"`
}

package ipc

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// CommandType represents different IPC command types
type CommandType string

const (
	// CommandRun executes one window manager command line.
	CommandRun       CommandType = "RUN"
	CommandQuery     CommandType = "QUERY"
	CommandReload    CommandType = "RELOAD"
	CommandGetStatus CommandType = "GET_STATUS"
)

// Request represents an IPC request from client to server
type Request struct {
	ID      string          `json:"id"`
	Command CommandType     `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response represents an IPC response from server to client. ID echoes the
// request.
type Response struct {
	ID     string          `json:"id,omitempty"`
	Status string          `json:"status"` // "OK" or "ERROR"
	Data   json.RawMessage `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// RunPayload carries a command line such as "node focus west".
type RunPayload struct {
	Line string `json:"line"`
}

// StatusData represents the data returned by GET_STATUS
type StatusData struct {
	Version        string   `json:"version"`
	PID            int      `json:"pid"`
	UptimeSeconds  int64    `json:"uptime_seconds"`
	Monitors       int      `json:"monitors"`
	Desktops       int      `json:"desktops"`
	Clients        int      `json:"clients"`
	FocusedDesktop string   `json:"focused_desktop"`
	ConfigFiles    []string `json:"config_files,omitempty"`
}

// NewRequest creates a request with a fresh id.
func NewRequest(cmd CommandType, payload interface{}) (*Request, error) {
	req := &Request{ID: uuid.NewString(), Command: cmd}
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal %s payload: %w", cmd, err)
		}
		req.Payload = b
	}
	return req, nil
}

// NewOKResponse creates a successful response with optional data
func NewOKResponse(data interface{}) (*Response, error) {
	var dataBytes json.RawMessage
	if data != nil {
		bytes, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response data: %w", err)
		}
		dataBytes = bytes
	}

	return &Response{
		Status: "OK",
		Data:   dataBytes,
	}, nil
}

// NewErrorResponse creates an error response with a message
func NewErrorResponse(errMsg string) *Response {
	return &Response{
		Status: "ERROR",
		Error:  errMsg,
	}
}

// ParseRequest parses a request from JSON bytes
func ParseRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	if req.Command == "" {
		return nil, fmt.Errorf("failed to parse request: missing command")
	}
	return &req, nil
}

// Marshal converts a response to JSON bytes
func (r *Response) Marshal() ([]byte, error) {
	return json.Marshal(r)
}

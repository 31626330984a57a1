// Package plugin discovers player plugins and runs them as one-shot subprocesses that
// exchange a JSON request and response over stdin/stdout.
package plugin

import (
	"encoding/json"
	"slices"
)

// Error codes a plugin may report alongside a failed response.
const (
	CodeNotFound    = "not_found"
	CodeUnavailable = "unavailable"
	CodeTransport   = "transport"
)

// Manifest describes a plugin's metadata and the actions it implements.
type Manifest struct {
	Name        string   `json:"name"`
	Version     string   `json:"version"`
	Description string   `json:"description"`
	Executable  string   `json:"executable"`
	Actions     []string `json:"actions"`
}

// Request is sent to a plugin on stdin.
type Request struct {
	Action string          `json:"action"`
	Params json.RawMessage `json:"params,omitempty"`
}

// Response is read from a plugin's stdout.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Code    string          `json:"code,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Plugin represents a discovered plugin with its manifest and location.
type Plugin struct {
	Manifest   Manifest
	Path       string
	Executable string
}

// Supports reports whether the manifest lists the action. An empty action list means
// the plugin accepts everything.
func (p *Plugin) Supports(action string) bool {
	return len(p.Manifest.Actions) == 0 || slices.Contains(p.Manifest.Actions, action)
}

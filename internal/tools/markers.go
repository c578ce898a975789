package tools

import (
	"encoding/json"
	"strings"

	"github.com/google/uuid"

	"vibe-cli/internal/stream"
)

// callMarker is the structured payload expected inside a tool call span.
// Example: <tool_call>{"tool":"bash","id":"call-1","args":{"command":"ls"}}</tool_call>
type callMarker struct {
	Tool string          `json:"tool"`
	ID   string          `json:"id"`
	Args json.RawMessage `json:"args"`
}

// ParseCalls extracts tool calls from a complete model message. Only closed
// tool call spans count; payloads that are not valid JSON or name no tool are
// returned verbatim in malformed so the caller can report them back to the
// model.
func ParseCalls(text string) (calls []ToolCall, malformed []string) {
	for _, payload := range stream.Payloads(text) {
		trimmed := strings.TrimSpace(payload)
		var marker callMarker
		if err := json.Unmarshal([]byte(trimmed), &marker); err != nil || marker.Tool == "" {
			malformed = append(malformed, trimmed)
			continue
		}
		id := marker.ID
		if id == "" {
			id = uuid.NewString()
		}
		calls = append(calls, ToolCall{
			ID:      id,
			Name:    marker.Tool,
			Payload: marker.Args,
		})
	}
	return calls, malformed
}

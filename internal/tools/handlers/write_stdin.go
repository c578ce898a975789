package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"vibe-cli/internal/tools"
)

type WriteStdinHandler struct{}

func (WriteStdinHandler) Name() string           { return "write_stdin" }
func (WriteStdinHandler) Kind() tools.ToolKind   { return tools.ToolBash }
func (WriteStdinHandler) SupportsParallel() bool { return false }
func (WriteStdinHandler) IsMutating(tools.Invocation) bool {
	return true
}

func (WriteStdinHandler) Describe(inv tools.Invocation) tools.ToolResult {
	args := struct {
		SessionID string `json:"session_id"`
	}{}
	_ = json.Unmarshal(inv.Call.Payload, &args)
	return tools.ToolResult{
		ID:        inv.Call.ID,
		Kind:      tools.ToolBash,
		Command:   "write_stdin",
		SessionID: strings.TrimSpace(args.SessionID),
	}
}

func (WriteStdinHandler) Handle(ctx context.Context, inv tools.Invocation) (tools.ToolResult, error) {
	args := struct {
		SessionID      string `json:"session_id"`
		Chars          string `json:"chars"`
		YieldTimeMs    int    `json:"yield_time_ms"`
		MaxOutputBytes int    `json:"max_output_bytes"`
	}{}
	if err := json.Unmarshal(inv.Call.Payload, &args); err != nil || strings.TrimSpace(args.SessionID) == "" {
		return tools.ToolResult{
			ID:     inv.Call.ID,
			Kind:   tools.ToolBash,
			Status: "error",
			Error:  "invalid write_stdin payload",
		}, fmt.Errorf("invalid write_stdin payload: %w", err)
	}
	if inv.Exec == nil {
		return tools.ToolResult{
			ID:     inv.Call.ID,
			Kind:   tools.ToolBash,
			Status: "error",
			Error:  "shell executor not configured",
		}, fmt.Errorf("shell executor not configured")
	}

	res, err := inv.Exec.WriteStdin(ctx, tools.WriteStdinSpec{
		SessionID:      args.SessionID,
		Chars:          args.Chars,
		YieldTime:      time.Duration(args.YieldTimeMs) * time.Millisecond,
		MaxOutputBytes: args.MaxOutputBytes,
	})
	toolRes := tools.ToolResult{
		ID:        inv.Call.ID,
		Kind:      tools.ToolBash,
		Status:    "completed",
		Output:    res.Output,
		Command:   "write_stdin",
		SessionID: res.SessionID,
	}
	if res.ExitCode != nil {
		toolRes.ExitCode = *res.ExitCode
		if toolRes.ExitCode != 0 {
			toolRes.Status = "error"
			if err == nil {
				err = fmt.Errorf("command exited with code %d", toolRes.ExitCode)
			}
			toolRes.Error = err.Error()
		}
	}
	if err != nil && toolRes.Error == "" {
		toolRes.Status = "error"
		toolRes.Error = err.Error()
	}
	return toolRes, err
}

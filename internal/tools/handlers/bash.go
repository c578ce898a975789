package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"vibe-cli/internal/tools"
)

type BashHandler struct{}

func (BashHandler) Name() string           { return "bash" }
func (BashHandler) Kind() tools.ToolKind   { return tools.ToolBash }
func (BashHandler) SupportsParallel() bool { return false }
func (BashHandler) IsMutating(tools.Invocation) bool {
	return true
}

func (BashHandler) Describe(inv tools.Invocation) tools.ToolResult {
	args := struct {
		Command string `json:"command"`
	}{}
	_ = json.Unmarshal(inv.Call.Payload, &args)
	cmd := strings.TrimSpace(args.Command)
	if cmd == "" {
		cmd = "(empty)"
	}
	return tools.ToolResult{
		ID:      inv.Call.ID,
		Kind:    tools.ToolBash,
		Command: cmd,
	}
}

func (BashHandler) Handle(ctx context.Context, inv tools.Invocation) (tools.ToolResult, error) {
	args := struct {
		Command        string `json:"command"`
		Workdir        string `json:"workdir"`
		YieldTimeMs    int    `json:"yield_time_ms"`
		MaxOutputBytes int    `json:"max_output_bytes"`
	}{}
	if err := json.Unmarshal(inv.Call.Payload, &args); err != nil || strings.TrimSpace(args.Command) == "" {
		return tools.ToolResult{
			ID:     inv.Call.ID,
			Kind:   tools.ToolBash,
			Status: "error",
			Error:  "invalid bash payload",
		}, fmt.Errorf("invalid bash payload: %w", err)
	}
	if inv.Exec == nil {
		return tools.ToolResult{
			ID:     inv.Call.ID,
			Kind:   tools.ToolBash,
			Status: "error",
			Error:  "shell executor not configured",
		}, fmt.Errorf("shell executor not configured")
	}

	spec := tools.ExecCommandSpec{
		Command:        args.Command,
		Workdir:        chooseWorkdir(inv.Workdir, args.Workdir),
		BaseEnv:        os.Environ(),
		YieldTime:      time.Duration(args.YieldTimeMs) * time.Millisecond,
		MaxOutputBytes: args.MaxOutputBytes,
	}
	res, err := inv.Exec.ExecCommand(ctx, spec)
	toolRes := tools.ToolResult{
		ID:        inv.Call.ID,
		Kind:      tools.ToolBash,
		Status:    "completed",
		Output:    res.Output,
		Command:   args.Command,
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

func chooseWorkdir(invWorkdir, override string) string {
	if strings.TrimSpace(override) != "" {
		return override
	}
	return invWorkdir
}

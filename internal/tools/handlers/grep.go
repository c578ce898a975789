package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"vibe-cli/internal/search"
	"vibe-cli/internal/tools"
)

type GrepHandler struct{}

func (GrepHandler) Name() string           { return "grep" }
func (GrepHandler) Kind() tools.ToolKind   { return tools.ToolGrep }
func (GrepHandler) SupportsParallel() bool { return true }
func (GrepHandler) IsMutating(tools.Invocation) bool {
	return false
}

func (GrepHandler) Describe(inv tools.Invocation) tools.ToolResult {
	args := struct {
		Pattern string `json:"pattern"`
	}{}
	_ = json.Unmarshal(inv.Call.Payload, &args)
	return tools.ToolResult{
		ID:    inv.Call.ID,
		Kind:  tools.ToolGrep,
		Query: args.Pattern,
	}
}

func (GrepHandler) Handle(_ context.Context, inv tools.Invocation) (tools.ToolResult, error) {
	args := struct {
		Pattern    string `json:"pattern"`
		Path       string `json:"path"`
		MaxResults int    `json:"max_results"`
	}{}
	if err := json.Unmarshal(inv.Call.Payload, &args); err != nil || strings.TrimSpace(args.Pattern) == "" {
		return tools.ToolResult{
			ID:     inv.Call.ID,
			Kind:   tools.ToolGrep,
			Status: "error",
			Error:  "invalid grep payload",
		}, fmt.Errorf("invalid grep payload: %w", err)
	}

	root := inv.Workdir
	if root == "" {
		root = "."
	}
	if args.Path != "" {
		root = resolvePath(inv.Workdir, args.Path)
	}

	matches, err := search.GrepFiles(root, args.Pattern, args.MaxResults)
	if err != nil {
		return tools.ToolResult{
			ID:     inv.Call.ID,
			Kind:   tools.ToolGrep,
			Status: "error",
			Error:  err.Error(),
			Query:  args.Pattern,
		}, err
	}

	var sb strings.Builder
	for _, m := range matches {
		fmt.Fprintf(&sb, "%s:%d:%s\n", m.Path, m.Line, m.Text)
	}
	output := sb.String()
	if output == "" {
		output = "no matches"
	}
	return tools.ToolResult{
		ID:     inv.Call.ID,
		Kind:   tools.ToolGrep,
		Status: "completed",
		Output: output,
		Query:  args.Pattern,
		Path:   args.Path,
	}, nil
}

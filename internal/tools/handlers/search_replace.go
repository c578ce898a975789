package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"vibe-cli/internal/patch"
	"vibe-cli/internal/tools"
)

// SearchReplaceHandler applies SEARCH/REPLACE blocks from the model to one
// file. The patch is all-or-nothing: a block that fails to match leaves the
// file untouched and returns the engine's diagnostic to the model.
type SearchReplaceHandler struct{}

func (SearchReplaceHandler) Name() string           { return "search_replace" }
func (SearchReplaceHandler) Kind() tools.ToolKind   { return tools.ToolSearchReplace }
func (SearchReplaceHandler) SupportsParallel() bool { return false }
func (SearchReplaceHandler) IsMutating(tools.Invocation) bool {
	return true
}

func (SearchReplaceHandler) Describe(inv tools.Invocation) tools.ToolResult {
	args := struct {
		FilePath string `json:"file_path"`
	}{}
	_ = json.Unmarshal(inv.Call.Payload, &args)
	return tools.ToolResult{
		ID:   inv.Call.ID,
		Kind: tools.ToolSearchReplace,
		Path: args.FilePath,
	}
}

func (SearchReplaceHandler) Handle(_ context.Context, inv tools.Invocation) (tools.ToolResult, error) {
	args := struct {
		FilePath string `json:"file_path"`
		Content  string `json:"content"`
	}{}
	if err := json.Unmarshal(inv.Call.Payload, &args); err != nil || args.FilePath == "" || strings.TrimSpace(args.Content) == "" {
		return tools.ToolResult{
			ID:     inv.Call.ID,
			Kind:   tools.ToolSearchReplace,
			Status: "error",
			Error:  "invalid search_replace payload",
		}, fmt.Errorf("invalid search_replace payload: %w", err)
	}

	blocks, err := patch.Parse(args.Content)
	if err != nil {
		return tools.ToolResult{
			ID:     inv.Call.ID,
			Kind:   tools.ToolSearchReplace,
			Status: "error",
			Error:  "malformed patch: " + err.Error(),
			Path:   args.FilePath,
		}, err
	}

	target := resolvePath(inv.Workdir, args.FilePath)
	before, err := os.ReadFile(target)
	if err != nil {
		return tools.ToolResult{
			ID:     inv.Call.ID,
			Kind:   tools.ToolSearchReplace,
			Status: "error",
			Error:  err.Error(),
			Path:   args.FilePath,
		}, err
	}

	res := patch.Apply(string(before), blocks, inv.PatchLimit)
	if !res.Applied {
		err := fmt.Errorf("patch rejected: %s", res.Diagnostic)
		return tools.ToolResult{
			ID:     inv.Call.ID,
			Kind:   tools.ToolSearchReplace,
			Status: "error",
			Error:  res.Diagnostic,
			Path:   args.FilePath,
		}, err
	}

	if err := os.WriteFile(target, []byte(res.Content), 0o644); err != nil {
		return tools.ToolResult{
			ID:     inv.Call.ID,
			Kind:   tools.ToolSearchReplace,
			Status: "error",
			Error:  err.Error(),
			Path:   args.FilePath,
		}, err
	}

	output := fmt.Sprintf("applied %d block(s) to %s", len(blocks), args.FilePath)
	if len(res.Warnings) > 0 {
		output += "\nwarnings:\n" + strings.Join(res.Warnings, "\n")
	}
	return tools.ToolResult{
		ID:       inv.Call.ID,
		Kind:     tools.ToolSearchReplace,
		Status:   "completed",
		Output:   output,
		Path:     args.FilePath,
		Diff:     patch.Diff(args.FilePath, string(before), res.Content),
		Warnings: res.Warnings,
	}, nil
}

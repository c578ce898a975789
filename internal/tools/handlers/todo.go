package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"vibe-cli/internal/todo"
	"vibe-cli/internal/tools"
)

type TodoHandler struct{}

func (TodoHandler) Name() string           { return "todo" }
func (TodoHandler) Kind() tools.ToolKind   { return tools.ToolTodo }
func (TodoHandler) SupportsParallel() bool { return true }
func (TodoHandler) IsMutating(tools.Invocation) bool {
	return false
}

func (TodoHandler) Describe(inv tools.Invocation) tools.ToolResult {
	return tools.ToolResult{
		ID:   inv.Call.ID,
		Kind: tools.ToolTodo,
	}
}

func (TodoHandler) Handle(_ context.Context, inv tools.Invocation) (tools.ToolResult, error) {
	args := struct {
		Todos []todo.Item `json:"todos"`
	}{}
	if err := json.Unmarshal(inv.Call.Payload, &args); err != nil {
		return tools.ToolResult{
			ID:     inv.Call.ID,
			Kind:   tools.ToolTodo,
			Status: "error",
			Error:  "invalid todo payload",
		}, fmt.Errorf("invalid todo payload: %w", err)
	}
	if inv.Todos == nil {
		return tools.ToolResult{
			ID:     inv.Call.ID,
			Kind:   tools.ToolTodo,
			Status: "error",
			Error:  "todo store not configured",
		}, fmt.Errorf("todo store not configured")
	}

	snapshot := inv.Todos.Replace(args.Todos)
	return tools.ToolResult{
		ID:     inv.Call.ID,
		Kind:   tools.ToolTodo,
		Status: "completed",
		Output: renderTodos(snapshot),
		Todos:  snapshot,
	}, nil
}

func renderTodos(items []todo.Item) string {
	if len(items) == 0 {
		return "todo list cleared"
	}
	var sb strings.Builder
	for _, item := range items {
		mark := "[ ]"
		if item.Done {
			mark = "[x]"
		}
		fmt.Fprintf(&sb, "%s %s\n", mark, item.Text)
	}
	return strings.TrimRight(sb.String(), "\n")
}

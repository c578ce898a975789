package render

import (
	"fmt"
	"strings"

	"vibe-cli/internal/tools"
)

const maxToolBlockLines = 60

// FormatToolEventBlock formats a tools.ToolEvent into a human-readable block
// suitable for the transcript view (role="tool"). The output is plain text,
// no ANSI; styling happens when the block is rendered as lines.
func FormatToolEventBlock(ev tools.ToolEvent) string {
	switch ev.Type {
	case "item.started":
		head, detail := toolStartLine(ev.Result)
		if detail == "" {
			detail = string(ev.Result.Kind)
		}
		return fmt.Sprintf("%s %s", head, detail)
	case "item.completed":
		return toolCompletedBlock(ev.Result)
	case "item.updated":
		return toolUpdatedBlock(ev.Result)
	default:
		return ""
	}
}

func toolStartLine(res tools.ToolResult) (prefix string, detail string) {
	switch res.Kind {
	case tools.ToolBash:
		if strings.TrimSpace(res.SessionID) != "" {
			return "> running", fmt.Sprintf("%s (session=%s)", strings.TrimSpace(res.Command), strings.TrimSpace(res.SessionID))
		}
		return "> running", strings.TrimSpace(res.Command)
	case tools.ToolSearchReplace:
		return "Δ patching", strings.TrimSpace(res.Path)
	case tools.ToolFileRead:
		return "↳ reading", strings.TrimSpace(res.Path)
	case tools.ToolGrep:
		return "🔍 searching", strings.TrimSpace(res.Query)
	case tools.ToolTodo:
		return "☰ updating", "todo list"
	default:
		return "• running", strings.TrimSpace(res.Status)
	}
}

func toolUpdatedBlock(res tools.ToolResult) string {
	switch strings.ToLower(strings.TrimSpace(res.Status)) {
	case "requires_approval":
		var sb strings.Builder
		sb.WriteString("⚠ approval required")
		if strings.TrimSpace(res.Command) != "" {
			sb.WriteString("\n  └ command: " + strings.TrimSpace(res.Command))
		}
		if strings.TrimSpace(res.Path) != "" {
			sb.WriteString("\n  └ path: " + strings.TrimSpace(res.Path))
		}
		if strings.TrimSpace(res.ApprovalID) != "" {
			sb.WriteString("\n  └ approval_id: " + strings.TrimSpace(res.ApprovalID))
		}
		if strings.TrimSpace(res.ApprovalReason) != "" {
			sb.WriteString("\n  └ reason: " + strings.TrimSpace(res.ApprovalReason))
		}
		return sb.String()
	case "approved":
		if strings.TrimSpace(res.ApprovalID) == "" {
			return "✓ approved"
		}
		return "✓ approved " + strings.TrimSpace(res.ApprovalID)
	default:
		return ""
	}
}

func toolCompletedBlock(res tools.ToolResult) string {
	success := res.Error == "" && res.Status != "error"
	icon := "✓"
	state := "completed"
	if !success {
		icon = "✗"
		state = "failed"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s %s %s", icon, res.Kind, state))

	if strings.TrimSpace(res.Command) != "" {
		sb.WriteString("\n  └ command: " + strings.TrimSpace(res.Command))
	}
	if strings.TrimSpace(res.Path) != "" {
		sb.WriteString("\n  └ path: " + strings.TrimSpace(res.Path))
	}
	if strings.TrimSpace(res.SessionID) != "" {
		sb.WriteString("\n  └ session_id: " + strings.TrimSpace(res.SessionID))
	}
	if res.ExitCode != 0 {
		sb.WriteString(fmt.Sprintf("\n  └ exit_code: %d", res.ExitCode))
	}
	if strings.TrimSpace(res.Error) != "" {
		sb.WriteString("\n  └ error: " + strings.TrimSpace(res.Error))
	}
	for _, warn := range res.Warnings {
		if strings.TrimSpace(warn) != "" {
			sb.WriteString("\n  └ warning: " + strings.TrimSpace(warn))
		}
	}

	// search_replace 的结果用 diff 标注，其余用 output。
	if res.Kind == tools.ToolSearchReplace && strings.TrimSpace(res.Diff) != "" {
		sb.WriteString("\n  └ diff:")
		sb.WriteString(renderIndentedTruncatedLines(res.Diff, maxToolBlockLines))
		return sb.String()
	}
	if res.Kind == tools.ToolTodo && len(res.Todos) > 0 {
		sb.WriteString("\n  └ todos:")
		for _, item := range res.Todos {
			mark := "[ ]"
			if item.Done {
				mark = "[x]"
			}
			sb.WriteString("\n    " + mark + " " + item.Text)
		}
		return sb.String()
	}

	if strings.TrimSpace(res.Output) != "" {
		sb.WriteString("\n  └ output:")
		sb.WriteString(renderIndentedTruncatedLines(res.Output, maxToolBlockLines))
	}
	return sb.String()
}

func renderIndentedTruncatedLines(text string, limit int) string {
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	truncated := false
	if limit > 0 && len(lines) > limit {
		lines = lines[:limit]
		truncated = true
	}
	var sb strings.Builder
	for _, line := range lines {
		sb.WriteString("\n    " + strings.TrimRight(line, "\r"))
	}
	if truncated {
		sb.WriteString("\n    … (truncated)")
	}
	return sb.String()
}

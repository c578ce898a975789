package tools

import (
	"context"
	"fmt"
	"strings"
)

type Orchestrator struct {
	approvals   *ApprovalStore
	autoApprove bool
}

type OrchestratorOptions struct {
	Approvals   *ApprovalStore
	AutoApprove bool
}

func NewOrchestrator() *Orchestrator { return &Orchestrator{autoApprove: true} }

func NewOrchestratorWith(opts OrchestratorOptions) *Orchestrator {
	return &Orchestrator{approvals: opts.Approvals, autoApprove: opts.AutoApprove}
}

func (o *Orchestrator) Run(ctx context.Context, inv Invocation, handler Handler, emit func(ToolEvent)) ToolResult {
	base := handler.Describe(inv)
	base.ID = inv.Call.ID
	base.Kind = handler.Kind()

	emit(ToolEvent{
		Type:   "item.started",
		Result: base,
	})

	if o != nil && o.shouldRequireApproval(handler, inv) {
		if err := o.waitForApproval(ctx, inv, base, emit); err != nil {
			result := ToolResult{
				ID:       inv.Call.ID,
				Kind:     handler.Kind(),
				Status:   "error",
				Error:    err.Error(),
				Command:  base.Command,
				Path:     base.Path,
				ExitCode: -1,
			}
			emit(ToolEvent{Type: "item.completed", Result: result})
			return result
		}
	}

	result, err := handler.Handle(ctx, inv)
	result = normalizeResult(result, err, inv, handler)

	emit(ToolEvent{
		Type:   "item.completed",
		Result: result,
	})
	return result
}

func normalizeResult(result ToolResult, err error, inv Invocation, handler Handler) ToolResult {
	result.ID = inv.Call.ID
	result.Kind = handler.Kind()

	if err != nil && result.Error == "" {
		result.Error = err.Error()
	}
	if result.Status == "" {
		if result.Error != "" {
			result.Status = "error"
		} else {
			result.Status = "completed"
		}
	}
	return result
}

// 只有会改动工作区的调用需要人工批准；只读工具直接放行。
func (o *Orchestrator) shouldRequireApproval(handler Handler, inv Invocation) bool {
	if o == nil || o.autoApprove || o.approvals == nil {
		return false
	}
	return handler.IsMutating(inv)
}

func (o *Orchestrator) waitForApproval(ctx context.Context, inv Invocation, base ToolResult, emit func(ToolEvent)) error {
	approvalID := inv.Call.ID

	reason := approvalReason(base)
	emit(ToolEvent{
		Type: "item.updated",
		Result: ToolResult{
			ID:             inv.Call.ID,
			Kind:           base.Kind,
			Status:         "requires_approval",
			Command:        base.Command,
			Path:           base.Path,
			ApprovalID:     approvalID,
			ApprovalReason: reason,
			Output:         "approval_required: " + reason,
		},
	})

	approved, err := o.approvals.Wait(ctx, approvalID)
	if err != nil {
		return err
	}
	if !approved {
		return fmt.Errorf("approval denied")
	}
	emit(ToolEvent{
		Type: "item.updated",
		Result: ToolResult{
			ID:         inv.Call.ID,
			Kind:       base.Kind,
			Status:     "approved",
			Command:    base.Command,
			Path:       base.Path,
			ApprovalID: approvalID,
		},
	})
	return nil
}

func approvalReason(base ToolResult) string {
	switch {
	case strings.TrimSpace(base.Command) != "":
		return fmt.Sprintf("run command: %s", base.Command)
	case strings.TrimSpace(base.Path) != "":
		return fmt.Sprintf("modify file: %s", base.Path)
	default:
		return fmt.Sprintf("run %s tool", base.Kind)
	}
}

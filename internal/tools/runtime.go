package tools

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"vibe-cli/internal/todo"
)

// Runtime 协调路由与并行控制。可并行的只读工具共享读锁，
// 会改动工作区的工具独占写锁。
type Runtime struct {
	registry     *Registry
	orchestrator *Orchestrator
	workdir      string
	exec         Executor
	patchLimit   int
	todos        *todo.Store
	lock         sync.RWMutex
}

type RuntimeOptions struct {
	Workdir      string
	Exec         Executor
	PatchLimit   int
	Todos        *todo.Store
	Orchestrator *Orchestrator
}

func NewRuntime(opts RuntimeOptions, handlers []Handler) *Runtime {
	orch := opts.Orchestrator
	if orch == nil {
		orch = NewOrchestrator()
	}
	return &Runtime{
		registry:     NewRegistry(handlers...),
		orchestrator: orch,
		workdir:      opts.Workdir,
		exec:         opts.Exec,
		patchLimit:   opts.PatchLimit,
		todos:        opts.Todos,
	}
}

func (r *Runtime) Dispatch(ctx context.Context, call ToolCall, emit func(ToolEvent)) (ToolResult, error) {
	handler, ok := r.registry.Handler(call.Name)
	kind := ToolKind("unknown")
	if ok {
		kind = handler.Kind()
	}
	logToolRequest(call, kind, ok, r.workdir)
	if !ok {
		res := ToolResult{ID: call.ID, Status: "error", Error: "unknown tool: " + call.Name, Kind: kind}
		emit(ToolEvent{Type: "item.completed", Result: res})
		logToolResult(call, kind, res, r.workdir)
		return res, fmt.Errorf("unknown tool: %s", call.Name)
	}

	inv := Invocation{
		Call:       call,
		Workdir:    r.workdir,
		Exec:       r.exec,
		PatchLimit: r.patchLimit,
		Todos:      r.todos,
	}

	if handler.SupportsParallel() {
		r.lock.RLock()
		defer r.lock.RUnlock()
	} else {
		r.lock.Lock()
		defer r.lock.Unlock()
	}

	result := r.orchestrator.Run(ctx, inv, handler, emit)
	logToolResult(call, kind, result, r.workdir)
	return result, nil
}

func logToolRequest(call ToolCall, kind ToolKind, recognized bool, workdir string) {
	ensureToolsLogger()

	status := "received"
	if !recognized {
		status = "unknown"
	}
	payload := "(empty)"
	if len(call.Payload) > 0 {
		payload = sanitizeForLog(call.Payload)
	}
	wd := workdir
	if strings.TrimSpace(wd) == "" {
		wd = "."
	}
	toolsLog.Infof("tool_call id=%s name=%s kind=%s status=%s workdir=%s payload=%s",
		call.ID, call.Name, kind, status, wd, payload)
}

func logToolResult(call ToolCall, kind ToolKind, result ToolResult, workdir string) {
	ensureToolsLogger()

	payload := "(empty)"
	if len(call.Payload) > 0 {
		payload = sanitizeForLog(call.Payload)
	}
	wd := workdir
	if strings.TrimSpace(wd) == "" {
		wd = "."
	}
	errText := sanitizeForLog([]byte(result.Error))
	if strings.TrimSpace(errText) == "" {
		errText = "(empty)"
	}
	toolsLog.Infof("tool_result id=%s name=%s kind=%s status=%s workdir=%s exit_code=%d error=%s payload=%s",
		call.ID, call.Name, kind, result.Status, wd, result.ExitCode, errText, payload)
}

func sanitizeForLog(raw []byte) string {
	text := strings.TrimSpace(string(raw))
	if text == "" {
		return "(empty)"
	}
	text = strings.ReplaceAll(text, "\n", `\n`)
	text = strings.ReplaceAll(text, "\r", `\r`)
	return text
}

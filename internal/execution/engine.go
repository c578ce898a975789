package execution

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"vibe-cli/internal/agent"
	"vibe-cli/internal/events"
	"vibe-cli/internal/logger"
	"vibe-cli/internal/stream"
	"vibe-cli/internal/tools"
)

// Options 定义引擎的可注入依赖。
type Options struct {
	Manager       *events.Manager
	ManagerConfig events.ManagerConfig
	Client        agent.ModelClient
	Bus           *events.Bus
	Defaults      SessionDefaults
	ToolTimeout   time.Duration
	Retries       int
	// Approvals 非空时，SQ 里的审批决策会被转交给它。
	Approvals *tools.ApprovalStore
}

// Engine 实现 SQ→模型→工具→EQ 的回合循环。模型输出里的 <tool_call>
// 标记在每条消息结束后解析；流式阶段只向 EQ 发布原始缓冲快照，
// 由展示层负责脱敏。
type Engine struct {
	manager     *events.Manager
	contexts    *ContextManager
	client      agent.ModelClient
	bus         *events.Bus
	approvals   *tools.ApprovalStore
	active      map[string]*taskHandle
	activeMu    sync.Mutex
	forwarder   context.CancelFunc
	wg          sync.WaitGroup
	toolTimeout time.Duration
	retries     int
}

type taskHandle struct {
	cancel context.CancelFunc
}

// NewEngine 构造一个新的执行引擎。
func NewEngine(opts Options) *Engine {
	manager := opts.Manager
	if manager == nil {
		cfg := opts.ManagerConfig
		if cfg.Workers == 0 {
			cfg.Workers = 2
		}
		manager = events.NewManager(cfg)
	}
	toolTimeout := opts.ToolTimeout
	if toolTimeout == 0 {
		toolTimeout = 2 * time.Minute
	}
	return &Engine{
		manager:     manager,
		contexts:    NewContextManager(opts.Defaults),
		client:      opts.Client,
		bus:         opts.Bus,
		approvals:   opts.Approvals,
		active:      map[string]*taskHandle{},
		toolTimeout: toolTimeout,
		retries:     opts.Retries,
	}
}

// Start 注册处理器并启动 SQ/EQ。
func (e *Engine) Start(ctx context.Context) {
	e.manager.RegisterHandler(events.OperationUserInput, events.HandlerFunc(e.handleUserInput))
	e.manager.RegisterHandler(events.OperationInterrupt, events.HandlerFunc(e.handleInterrupt))
	e.manager.RegisterHandler(events.OperationApprovalDecision, events.HandlerFunc(e.handleApprovalDecision))
	e.manager.Start(ctx)
	e.startToolForwarder(ctx)
}

// Close 关闭引擎与内部 goroutine。
func (e *Engine) Close() {
	if e.forwarder != nil {
		e.forwarder()
	}
	e.wg.Wait()
	e.manager.Close()
}

// Events 订阅 EQ。
func (e *Engine) Events() <-chan events.Event {
	return e.manager.Subscribe()
}

// SubmitUserInput 放入 SQ。
func (e *Engine) SubmitUserInput(ctx context.Context, items []events.InputMessage, inputCtx events.InputContext) (string, error) {
	return e.manager.SubmitUserInput(ctx, items, inputCtx)
}

// Submit 允许直接提交任意 Submission。
func (e *Engine) Submit(ctx context.Context, sub events.Submission) (string, error) {
	return e.manager.Submit(ctx, sub)
}

// SubmitInterrupt 便捷方法：按会话触发中断。
func (e *Engine) SubmitInterrupt(ctx context.Context, sessionID string) (string, error) {
	return e.Submit(ctx, events.Submission{
		SessionID: sessionID,
		Operation: events.Operation{Kind: events.OperationInterrupt},
	})
}

// History 返回会话历史。
func (e *Engine) History(sessionID string) []agent.Message {
	return e.contexts.History(sessionID)
}

// SeedHistory 预载入指定会话的历史，便于恢复。
func (e *Engine) SeedHistory(sessionID string, history []agent.Message) {
	e.contexts.AppendMessages(sessionID, history)
}

// startToolForwarder 把 Bus 上的工具事件转发到 EQ，todo 快照单独发布。
func (e *Engine) startToolForwarder(ctx context.Context) {
	if e.bus == nil {
		return
	}
	fwdCtx, cancel := context.WithCancel(ctx)
	e.forwarder = cancel
	ch := e.bus.Subscribe()
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		for {
			select {
			case <-fwdCtx.Done():
				return
			case evt, ok := <-ch:
				if !ok {
					return
				}
				toolEvt, ok := evt.(tools.ToolEvent)
				if !ok {
					continue
				}
				_ = e.manager.PublishEvent(fwdCtx, events.Event{
					Type:      events.EventToolEvent,
					Timestamp: time.Now(),
					Payload:   toolEvt,
				})
				if toolEvt.Type == "item.completed" && toolEvt.Result.Kind == tools.ToolTodo && toolEvt.Result.Status == "completed" {
					_ = e.manager.PublishEvent(fwdCtx, events.Event{
						Type:      events.EventTodoUpdated,
						Timestamp: time.Now(),
						Payload:   toolEvt.Result.Todos,
					})
				}
			}
		}
	}()
}

func (e *Engine) handleUserInput(ctx context.Context, submission events.Submission, emit events.EventPublisher) error {
	if e.client == nil {
		return errors.New("model client not configured")
	}
	if submission.Operation.UserInput == nil {
		return errors.New("missing user input payload")
	}
	turn := submission.Operation.UserInput
	if len(turn.Items) == 0 {
		return errors.New("empty user input items")
	}

	taskCtx, cancel := context.WithCancel(ctx)
	handle := e.trackActive(submission.SessionID, cancel)
	defer e.clearActive(submission.SessionID, handle)

	state := e.contexts.PrepareTurn(submission.SessionID, turn.Context, turn.Items)
	return e.runTask(taskCtx, submission, state, emit)
}

func (e *Engine) handleApprovalDecision(_ context.Context, submission events.Submission, _ events.EventPublisher) error {
	op := submission.Operation.ApprovalDecision
	if op == nil {
		return errors.New("missing approval decision payload")
	}
	if e.approvals == nil {
		return errors.New("approval store not configured")
	}
	e.approvals.Resolve(tools.ApprovalDecision{ApprovalID: op.ApprovalID, Approved: op.Approved})
	return nil
}

func (e *Engine) handleInterrupt(_ context.Context, submission events.Submission, _ events.EventPublisher) error {
	e.activeMu.Lock()
	handle := e.active[submission.SessionID]
	e.activeMu.Unlock()
	if handle != nil && handle.cancel != nil {
		handle.cancel()
	}
	return nil
}

func (e *Engine) trackActive(sessionID string, cancel context.CancelFunc) *taskHandle {
	handle := &taskHandle{cancel: cancel}
	e.activeMu.Lock()
	e.active[sessionID] = handle
	e.activeMu.Unlock()
	return handle
}

func (e *Engine) clearActive(sessionID string, handle *taskHandle) {
	e.activeMu.Lock()
	if e.active[sessionID] == handle {
		delete(e.active, sessionID)
	}
	e.activeMu.Unlock()
}

// runTask 负责回合循环：模型交互、工具识别、工具执行，直到模型不再请求工具。
func (e *Engine) runTask(ctx context.Context, submission events.Submission, state TurnState, emit events.EventPublisher) error {
	seq := 0
	toolEvents, stopTools := e.subscribeToolEvents(ctx)
	defer stopTools()

	for {
		if err := ctx.Err(); err != nil {
			errorLog.WithError(err).WithFields(logger.Fields{
				"session_id": submission.SessionID,
				"sequence":   seq,
			}).Error("task aborted")
			return err
		}

		buffer, err := e.streamModel(ctx, submission, state, emit, &seq)
		if err != nil {
			errorLog.WithError(err).WithFields(logger.Fields{
				"session_id": submission.SessionID,
				"model":      state.Model,
			}).Error("model interaction failed")
			return err
		}
		e.contexts.AppendAssistant(submission.SessionID, buffer)

		calls, malformed := tools.ParseCalls(buffer)
		if len(calls) == 0 && len(malformed) == 0 {
			seq++
			_ = emit.Publish(ctx, events.Event{
				Type:         events.EventAgentOutput,
				SubmissionID: submission.ID,
				SessionID:    submission.SessionID,
				Timestamp:    time.Now(),
				Payload: events.AgentOutput{
					Content:  stream.Redact(buffer),
					Final:    true,
					Sequence: seq,
				},
				Metadata: submission.Metadata,
			})
			return nil
		}

		feedback := make([]agent.Message, 0, len(calls)+len(malformed))
		for _, bad := range malformed {
			feedback = append(feedback, agent.Message{
				Role:    agent.RoleUser,
				Content: fmt.Sprintf("tool_result: malformed tool call payload, expected {\"tool\",\"id\",\"args\"}: %s", bad),
			})
		}
		if len(calls) > 0 {
			results, err := e.executeTools(ctx, calls, toolEvents)
			if err != nil {
				return err
			}
			for _, res := range results {
				feedback = append(feedback, agent.Message{
					Role:    agent.RoleUser,
					Content: formatToolResult(res),
				})
			}
		}
		e.contexts.AppendMessages(submission.SessionID, feedback)
		state.History = append(state.History, agent.Message{Role: agent.RoleAssistant, Content: buffer})
		state.History = append(state.History, feedback...)
	}
}

// streamModel 执行一次流式模型调用，把原始缓冲快照逐步发布到 EQ。
// 未产生任何输出的失败会按 Retries 重试。
func (e *Engine) streamModel(ctx context.Context, submission events.Submission, state TurnState, emit events.EventPublisher, seq *int) (string, error) {
	prompt := state.BuildPrompt()

	var lastErr error
	for attempt := 0; attempt <= e.retries; attempt++ {
		var buffer strings.Builder
		err := e.client.Stream(ctx, prompt, func(delta string) {
			buffer.WriteString(delta)
			*seq++
			_ = emit.Publish(ctx, events.Event{
				Type:         events.EventAgentOutput,
				SubmissionID: submission.ID,
				SessionID:    submission.SessionID,
				Timestamp:    time.Now(),
				Payload: events.AgentOutput{
					Content:  buffer.String(),
					Sequence: *seq,
				},
				Metadata: submission.Metadata,
			})
		})
		if err == nil {
			return buffer.String(), nil
		}
		lastErr = err
		if buffer.Len() > 0 || ctx.Err() != nil {
			// 已经发布过部分输出或任务被取消时不重试。
			return "", err
		}
		errorLog.WithError(err).WithFields(logger.Fields{
			"attempt": attempt + 1,
			"model":   prompt.Model,
		}).Warn("model stream failed, retrying")
	}
	return "", lastErr
}

// subscribeToolEvents 订阅 Bus 上的工具完成事件。
func (e *Engine) subscribeToolEvents(ctx context.Context) (<-chan tools.ToolEvent, func()) {
	out := make(chan tools.ToolEvent, 64)
	if e.bus == nil {
		close(out)
		return out, func() {}
	}
	subCtx, cancel := context.WithCancel(ctx)
	ch := e.bus.Subscribe()
	go func() {
		defer close(out)
		for {
			select {
			case <-subCtx.Done():
				return
			case evt, ok := <-ch:
				if !ok {
					return
				}
				if toolEvt, ok := evt.(tools.ToolEvent); ok {
					select {
					case out <- toolEvt:
					case <-subCtx.Done():
						return
					}
				}
			}
		}
	}()
	return out, cancel
}

// executeTools 把解析出的调用发布到 Bus，等待每个调用的完成事件。
func (e *Engine) executeTools(ctx context.Context, calls []tools.ToolCall, toolEvents <-chan tools.ToolEvent) ([]tools.ToolResult, error) {
	if e.bus == nil {
		return nil, errors.New("tool bus not configured")
	}
	pending := make(map[string]struct{}, len(calls))
	for _, call := range calls {
		pending[call.ID] = struct{}{}
		e.bus.Publish(tools.DispatchRequest{Ctx: ctx, Call: call})
	}

	results := make([]tools.ToolResult, 0, len(calls))
	byID := make(map[string]tools.ToolResult, len(calls))
	timeout := time.NewTimer(e.toolTimeout)
	defer timeout.Stop()

	for len(pending) > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timeout.C:
			return nil, fmt.Errorf("timed out waiting for %d tool result(s)", len(pending))
		case evt, ok := <-toolEvents:
			if !ok {
				return nil, errors.New("tool event stream closed")
			}
			if evt.Type != "item.completed" {
				continue
			}
			if _, want := pending[evt.Result.ID]; !want {
				continue
			}
			delete(pending, evt.Result.ID)
			byID[evt.Result.ID] = evt.Result
		}
	}
	// 按请求顺序返回结果。
	for _, call := range calls {
		results = append(results, byID[call.ID])
	}
	return results, nil
}

func formatToolResult(res tools.ToolResult) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "tool_result id=%s tool=%s status=%s", res.ID, res.Kind, res.Status)
	if res.Error != "" {
		fmt.Fprintf(&sb, "\nerror: %s", res.Error)
	}
	for _, w := range res.Warnings {
		fmt.Fprintf(&sb, "\nwarning: %s", w)
	}
	if out := strings.TrimSpace(res.Output); out != "" {
		fmt.Fprintf(&sb, "\n%s", out)
	}
	return sb.String()
}

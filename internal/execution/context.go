package execution

import (
	"sync"

	"vibe-cli/internal/agent"
	"vibe-cli/internal/events"
)

// SessionDefaults 定义新会话的默认上下文。
type SessionDefaults struct {
	Model  string
	System string
}

type sessionState struct {
	model   string
	system  string
	history []agent.Message
}

// TurnState 描述一次回合所需的上下文与模型信息。
type TurnState struct {
	Model   string
	System  string
	History []agent.Message
}

// BuildPrompt 把回合上下文转换为模型输入。
func (s TurnState) BuildPrompt() agent.Prompt {
	msgs := make([]agent.Message, 0, len(s.History)+1)
	if s.System != "" {
		msgs = append(msgs, agent.Message{Role: agent.RoleSystem, Content: s.System})
	}
	msgs = append(msgs, s.History...)
	return agent.Prompt{Model: s.Model, Messages: msgs}
}

// ContextManager 负责维护会话上下文与历史。
type ContextManager struct {
	mu       sync.Mutex
	defaults SessionDefaults
	sessions map[string]*sessionState
}

// NewContextManager 创建上下文管理器。
func NewContextManager(defaults SessionDefaults) *ContextManager {
	return &ContextManager{
		defaults: defaults,
		sessions: map[string]*sessionState{},
	}
}

// PrepareTurn 根据 InputContext 与用户输入更新历史并返回回合状态。
func (m *ContextManager) PrepareTurn(sessionID string, ctx events.InputContext, items []events.InputMessage) TurnState {
	m.mu.Lock()
	defer m.mu.Unlock()

	state := m.ensureSession(sessionID, ctx)
	userMessages := toAgentMessages(items)
	state.history = append(state.history, userMessages...)

	model := state.model
	system := state.system
	if ctx.Model != "" {
		model = ctx.Model
	}
	if ctx.System != "" {
		system = ctx.System
	}

	history := make([]agent.Message, len(state.history))
	copy(history, state.history)
	return TurnState{Model: model, System: system, History: history}
}

// AppendAssistant 将助手输出写入历史。
func (m *ContextManager) AppendAssistant(sessionID string, content string) {
	if content == "" {
		return
	}
	m.AppendMessages(sessionID, []agent.Message{{Role: agent.RoleAssistant, Content: content}})
}

// AppendMessages 追加任意角色的消息到历史。
func (m *ContextManager) AppendMessages(sessionID string, msgs []agent.Message) {
	if len(msgs) == 0 {
		return
	}
	m.mu.Lock()
	state := m.ensureSession(sessionID, events.InputContext{})
	state.history = append(state.history, msgs...)
	m.mu.Unlock()
}

// History 返回会话历史的拷贝。
func (m *ContextManager) History(sessionID string) []agent.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	state := m.sessions[sessionID]
	if state == nil {
		return nil
	}
	history := make([]agent.Message, len(state.history))
	copy(history, state.history)
	return history
}

func (m *ContextManager) ensureSession(sessionID string, ctx events.InputContext) *sessionState {
	state, ok := m.sessions[sessionID]
	if ok {
		return state
	}
	model := m.defaults.Model
	system := m.defaults.System
	if ctx.Model != "" {
		model = ctx.Model
	}
	if ctx.System != "" {
		system = ctx.System
	}
	state = &sessionState{model: model, system: system}
	m.sessions[sessionID] = state
	return state
}

func toAgentMessages(items []events.InputMessage) []agent.Message {
	msgs := make([]agent.Message, 0, len(items))
	for _, item := range items {
		msgs = append(msgs, agent.Message{
			Role:    agent.Role(item.Role),
			Content: item.Content,
		})
	}
	return msgs
}

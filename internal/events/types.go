package events

import "time"

// Priority 描述提交的优先级。默认使用 PriorityNormal。
type Priority int

const (
	PriorityLow Priority = iota + 1
	PriorityNormal
	PriorityHigh
)

// OperationKind 表示提交的操作类型。
type OperationKind string

const (
	OperationUserInput        OperationKind = "user_input"
	OperationInterrupt        OperationKind = "interrupt"
	OperationApprovalDecision OperationKind = "approval_decision"
)

// InputMessage 代表一次用户输入（或上下文中的历史消息）。
type InputMessage struct {
	Role    string
	Content string
}

// InputContext 为提交提供会话与模型元数据。
type InputContext struct {
	SessionID string
	Metadata  map[string]string
	Model     string
	System    string
}

// UserInputOperation 描述用户输入操作。
type UserInputOperation struct {
	Items   []InputMessage
	Context InputContext
}

// ApprovalDecisionOperation 描述一次审批决策（approve/deny）。
type ApprovalDecisionOperation struct {
	ApprovalID string
	Approved   bool
}

// Operation 描述一次提交的操作载荷。
type Operation struct {
	Kind             OperationKind
	UserInput        *UserInputOperation
	ApprovalDecision *ApprovalDecisionOperation
}

// Submission 代表进入 SQ 的提交。
type Submission struct {
	ID        string
	Operation Operation
	Timestamp time.Time
	Priority  Priority
	SessionID string
	Metadata  map[string]string
}

// EventType 描述 EQ 中分发的事件类型。
type EventType string

const (
	EventSubmissionAccepted EventType = "submission.accepted"
	EventTaskStarted        EventType = "task.started"
	EventTaskCompleted      EventType = "task.completed"
	EventAgentOutput        EventType = "agent.output"
	EventError              EventType = "task.error"
	EventToolEvent          EventType = "tool.event"
	// EventTodoUpdated 在 todo 工具成功后发出，携带新的清单快照。
	EventTodoUpdated EventType = "todo.updated"
	// EventApprovalRequest 表示有工具调用等待用户批准。
	EventApprovalRequest EventType = "approval.request"
)

// AgentOutput 表示智能体的输出。流式阶段 Content 为原始缓冲的完整快照，
// 由展示层负责脱敏；Final 为 true 时 Content 是该条消息脱敏后的最终文本。
type AgentOutput struct {
	Content  string
	Final    bool
	Sequence int
	Metadata map[string]string
}

// TaskResult 描述任务完成状态。
type TaskResult struct {
	Status string
	Error  string
}

// Event 是 EQ 中传递的唯一消息格式，Payload 的结构由 Type 决定。
type Event struct {
	Type         EventType
	SubmissionID string
	SessionID    string
	Timestamp    time.Time
	Payload      any
	Metadata     map[string]string
}

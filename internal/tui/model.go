package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"vibe-cli/internal/agent"
	"vibe-cli/internal/events"
	"vibe-cli/internal/repl"
	"vibe-cli/internal/session"
	"vibe-cli/internal/todo"
	"vibe-cli/internal/tools"
	"vibe-cli/internal/tui/render"
	"vibe-cli/internal/tui/slash"
)

// SubmissionGateway 抽象 REPL 层的提交/订阅能力，避免 TUI 与实现耦合。
type SubmissionGateway interface {
	SubmitUserInput(ctx context.Context, items []events.InputMessage, inputCtx events.InputContext) (string, error)
	SubmitInterrupt(ctx context.Context, sessionID string) (string, error)
	SubmitApprovalDecision(ctx context.Context, approvalID string, approved bool) (string, error)
	Events() <-chan events.Event
}

type Options struct {
	Gateway         SubmissionGateway
	Model           string
	Workdir         string
	SessionID       string
	InitialPrompt   string
	InitialMessages []agent.Message
}

type eqEventMsg struct {
	Event events.Event
}

type systemMsg struct {
	Text string
}

type approvalPrompt struct {
	id   string
	text string
}

var (
	statusStyle   = lipgloss.NewStyle().Faint(true)
	errStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#CC0000"))
	approvalStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#D97706")).Bold(true)
)

type Model struct {
	textarea textarea.Model
	viewport viewport.Model
	spin     spinner.Model

	gateway SubmissionGateway
	eqSub   <-chan events.Event

	slash   *slash.State
	history promptHistory

	// cells 是已完成的历史块；active 承载流式输出。
	cells  []repl.HistoryCell
	active *repl.ActiveCell

	messages      []agent.Message
	lastAssistant string
	todos         []todo.Item
	approveQueue  []approvalPrompt

	sessionID string
	modelName string
	workdir   string
	activeSub string
	pending   bool
	status    string
	err       error
	quitting  bool

	width  int
	height int
}

func New(opts Options) *Model {
	ti := textarea.New()
	ti.Placeholder = "输入消息，/ 查看命令"
	ti.ShowLineNumbers = false
	ti.SetHeight(3)
	ti.Focus()

	vp := viewport.New(80, 20)

	spin := spinner.New()
	spin.Spinner = spinner.Dot

	m := &Model{
		textarea:  ti,
		viewport:  vp,
		spin:      spin,
		gateway:   opts.Gateway,
		slash:     slash.NewState(),
		active:    &repl.ActiveCell{},
		sessionID: opts.SessionID,
		modelName: opts.Model,
		workdir:   opts.Workdir,
		width:     80,
		height:    24,
	}
	if opts.Gateway != nil {
		m.eqSub = opts.Gateway.Events()
	}
	if len(opts.InitialMessages) > 0 {
		m.seedHistory(opts.InitialMessages)
	}
	if p := strings.TrimSpace(opts.InitialPrompt); p != "" {
		m.textarea.SetValue(p)
	}
	return m
}

func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textarea.Blink, m.spin.Tick}
	if m.eqSub != nil {
		cmds = append(cmds, m.listenEvents())
	}
	return tea.Batch(cmds...)
}

func (m *Model) listenEvents() tea.Cmd {
	sub := m.eqSub
	return func() tea.Msg {
		ev, ok := <-sub
		if !ok {
			return nil
		}
		return eqEventMsg{Event: ev}
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case spinner.TickMsg:
		if m.pending {
			var cmd tea.Cmd
			m.spin, cmd = m.spin.Update(msg)
			cmds = append(cmds, cmd)
		}
		return m, tea.Batch(cmds...)

	case systemMsg:
		m.status = msg.Text
		return m, nil

	case eqEventMsg:
		cmds = append(cmds, m.handleEQEvent(msg.Event), m.listenEvents())
		return m, tea.Batch(cmds...)

	case tea.KeyMsg:
		if cmd, handled := m.handleKey(msg); handled {
			return m, cmd
		}
	}

	var cmd tea.Cmd
	m.textarea, cmd = m.textarea.Update(msg)
	m.slash.SyncInput(m.textarea.Value())
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	key := msg.String()

	// 审批等待时 y/n 优先。
	if len(m.approveQueue) > 0 {
		switch key {
		case "y", "Y":
			return m.resolveApproval(true), true
		case "n", "N":
			return m.resolveApproval(false), true
		}
	}

	if act, handled := m.slash.HandleKey(key); handled {
		return m.applySlashAction(act), true
	}

	switch key {
	case "ctrl+c":
		if m.pending {
			return m.interrupt(), true
		}
		m.quitting = true
		return tea.Quit, true
	case "ctrl+y":
		m.copyLastAssistant()
		return nil, true
	case "enter":
		return m.submit(), true
	case "up":
		if m.textareaAtTop() {
			if text, ok := m.history.Prev(m.textarea.Value()); ok {
				m.textarea.SetValue(text)
				m.textarea.CursorEnd()
				return nil, true
			}
		}
	case "down":
		if m.history.Browsing() {
			if text, ok := m.history.Next(); ok {
				m.textarea.SetValue(text)
				m.textarea.CursorEnd()
				return nil, true
			}
		}
	case "pgup":
		m.viewport.ScrollUp(m.viewport.Height / 2)
		return nil, true
	case "pgdown":
		m.viewport.ScrollDown(m.viewport.Height / 2)
		return nil, true
	}
	return nil, false
}

func (m *Model) textareaAtTop() bool {
	return m.textarea.Line() == 0
}

func (m *Model) submit() tea.Cmd {
	input := strings.TrimSpace(m.textarea.Value())
	if input == "" {
		return nil
	}

	if act := m.slash.ResolveSubmit(input); act.Kind != slash.ActionNone {
		m.textarea.Reset()
		m.slash.SyncInput("")
		return m.applySlashAction(act)
	}

	m.textarea.Reset()
	m.slash.SyncInput("")
	m.history.Add(input)
	m.err = nil
	m.status = ""
	m.pending = true

	items := []events.InputMessage{{Role: "user", Content: input}}
	inputCtx := events.InputContext{SessionID: m.sessionID, Model: m.modelName}
	gateway := m.gateway
	return tea.Batch(m.spin.Tick, func() tea.Msg {
		if gateway == nil {
			return systemMsg{Text: "gateway 未配置"}
		}
		if _, err := gateway.SubmitUserInput(context.Background(), items, inputCtx); err != nil {
			return systemMsg{Text: "提交失败: " + err.Error()}
		}
		return nil
	})
}

func (m *Model) applySlashAction(act slash.Action) tea.Cmd {
	switch act.Kind {
	case slash.ActionInsert:
		m.textarea.SetValue(act.NewValue)
		m.textarea.CursorEnd()
		m.slash.SyncInput(act.NewValue)
		return nil
	case slash.ActionError:
		m.status = act.Message
		return nil
	case slash.ActionSubmitCommand:
		m.textarea.Reset()
		m.slash.SyncInput("")
		return m.runCommand(act.Command, act.Args)
	default:
		return nil
	}
}

func (m *Model) runCommand(cmd slash.Command, args string) tea.Cmd {
	switch cmd {
	case slash.CommandQuit, slash.CommandExit:
		m.quitting = true
		return tea.Quit
	case slash.CommandClear:
		m.cells = nil
		m.refreshViewport()
		return nil
	case slash.CommandNew:
		m.cells = nil
		m.messages = nil
		m.sessionID = ""
		m.status = "已开始新会话"
		m.refreshViewport()
		return nil
	case slash.CommandStatus:
		m.status = fmt.Sprintf("model=%s session=%s workdir=%s", m.modelName, m.sessionID, m.workdir)
		return nil
	case slash.CommandTodo:
		m.appendTodoCell(m.todos)
		return nil
	case slash.CommandCopy:
		m.copyLastAssistant()
		return nil
	case slash.CommandApprove:
		return m.decideApproval(strings.TrimSpace(args), true)
	case slash.CommandDeny:
		return m.decideApproval(strings.TrimSpace(args), false)
	case slash.CommandSessions:
		records, err := session.List(true, "")
		if err != nil {
			m.status = "读取会话失败: " + err.Error()
			return nil
		}
		var sb strings.Builder
		sb.WriteString("sessions:")
		for _, rec := range records {
			fmt.Fprintf(&sb, "\n  %s  (%d messages, %s)", rec.ID, len(rec.Messages), rec.Updated.Format("2006-01-02 15:04"))
		}
		if len(records) == 0 {
			sb.WriteString(" (none)")
		}
		m.appendSystemCell(sb.String())
		return nil
	case slash.CommandResume:
		rec, err := session.Last()
		if err != nil {
			m.status = "没有可恢复的会话: " + err.Error()
			return nil
		}
		m.sessionID = rec.ID
		m.cells = nil
		m.seedHistory(rec.Messages)
		m.todos = rec.Todos
		m.status = "已恢复会话 " + rec.ID
		return nil
	default:
		m.status = "不认识的命令"
		return nil
	}
}

func (m *Model) decideApproval(approvalID string, approved bool) tea.Cmd {
	if approvalID == "" && len(m.approveQueue) > 0 {
		approvalID = m.approveQueue[0].id
	}
	if approvalID == "" {
		m.status = "没有等待中的审批"
		return nil
	}
	return m.submitApprovalDecision(approvalID, approved)
}

func (m *Model) resolveApproval(approved bool) tea.Cmd {
	if len(m.approveQueue) == 0 {
		return nil
	}
	prompt := m.approveQueue[0]
	m.approveQueue = m.approveQueue[1:]
	return m.submitApprovalDecision(prompt.id, approved)
}

func (m *Model) submitApprovalDecision(approvalID string, approved bool) tea.Cmd {
	m.dropApproval(approvalID)
	gateway := m.gateway
	return func() tea.Msg {
		if gateway == nil {
			return systemMsg{Text: "gateway 未配置"}
		}
		if _, err := gateway.SubmitApprovalDecision(context.Background(), approvalID, approved); err != nil {
			return systemMsg{Text: "审批提交失败: " + err.Error()}
		}
		verdict := "已批准"
		if !approved {
			verdict = "已拒绝"
		}
		return systemMsg{Text: verdict + " " + approvalID}
	}
}

func (m *Model) dropApproval(approvalID string) {
	out := m.approveQueue[:0]
	for _, p := range m.approveQueue {
		if p.id != approvalID {
			out = append(out, p)
		}
	}
	m.approveQueue = out
}

func (m *Model) interrupt() tea.Cmd {
	gateway := m.gateway
	sessionID := m.sessionID
	return func() tea.Msg {
		if gateway == nil {
			return nil
		}
		_, _ = gateway.SubmitInterrupt(context.Background(), sessionID)
		return systemMsg{Text: "已发送中断"}
	}
}

func (m *Model) copyLastAssistant() {
	if strings.TrimSpace(m.lastAssistant) == "" {
		m.status = "没有可复制的回复"
		return
	}
	if err := clipboard.WriteAll(m.lastAssistant); err != nil {
		m.status = "复制失败: " + err.Error()
		return
	}
	m.status = "已复制最近一条回复"
}

func (m *Model) handleEQEvent(ev events.Event) tea.Cmd {
	if m.sessionID != "" && ev.SessionID != "" && ev.SessionID != m.sessionID {
		return nil
	}

	switch ev.Type {
	case events.EventSubmissionAccepted:
		op, ok := ev.Payload.(events.Operation)
		if !ok || op.Kind != events.OperationUserInput || op.UserInput == nil {
			return nil
		}
		m.activeSub = ev.SubmissionID
		m.active.Begin(ev.SubmissionID)
		for _, item := range op.UserInput.Items {
			if item.Role != "user" {
				continue
			}
			m.appendUserCell(item.Content)
			m.messages = append(m.messages, agent.Message{Role: agent.RoleUser, Content: item.Content})
		}

	case events.EventAgentOutput:
		out, ok := ev.Payload.(events.AgentOutput)
		if !ok {
			return nil
		}
		if m.activeSub != "" && ev.SubmissionID != m.activeSub {
			return nil
		}
		if !out.Final {
			m.active.ObserveSnapshot(ev.SubmissionID, out.Content)
			m.refreshViewport()
			return nil
		}
		if cell := m.active.Finalize(ev.SubmissionID, out.Content); cell != nil {
			m.appendCell(cell)
		}
		if text := strings.TrimSpace(out.Content); text != "" {
			m.lastAssistant = text
			m.messages = append(m.messages, agent.Message{Role: agent.RoleAssistant, Content: text})
		}
		m.activeSub = ""

	case events.EventToolEvent:
		tev, ok := ev.Payload.(tools.ToolEvent)
		if !ok {
			return nil
		}
		m.appendToolCell(tev)
		if tev.Type == "item.updated" && tev.Result.Status == "requires_approval" && tev.Result.ApprovalID != "" {
			m.approveQueue = append(m.approveQueue, approvalPrompt{
				id:   tev.Result.ApprovalID,
				text: approvalSummary(tev.Result),
			})
		}

	case events.EventTodoUpdated:
		items, ok := ev.Payload.([]todo.Item)
		if !ok {
			return nil
		}
		m.todos = items
		m.appendTodoCell(items)

	case events.EventError:
		m.err = fmt.Errorf("%v", ev.Payload)
		m.pending = false

	case events.EventTaskCompleted:
		m.pending = false
	}
	return nil
}

func approvalSummary(res tools.ToolResult) string {
	detail := strings.TrimSpace(res.Command)
	if detail == "" {
		detail = strings.TrimSpace(res.Path)
	}
	if detail == "" {
		detail = string(res.Kind)
	}
	return detail
}

// --- cells / viewport ---

func (m *Model) seedHistory(msgs []agent.Message) {
	for _, msg := range msgs {
		switch msg.Role {
		case agent.RoleUser:
			m.appendUserCell(msg.Content)
		case agent.RoleAssistant:
			m.appendAssistantCell(msg.Content)
			m.lastAssistant = msg.Content
		}
	}
	m.messages = append(m.messages, msgs...)
}

func (m *Model) appendCell(cell repl.HistoryCell) {
	if cell == nil {
		return
	}
	m.cells = append(m.cells, cell)
	m.refreshViewport()
}

func (m *Model) appendUserCell(text string)      { m.appendCell(repl.NewUserCell(text)) }
func (m *Model) appendAssistantCell(text string) { m.appendCell(repl.NewAssistantCell(text)) }
func (m *Model) appendSystemCell(text string)    { m.appendCell(repl.NewToolBlockCell(text)) }

func (m *Model) appendToolCell(ev tools.ToolEvent) {
	block := render.FormatToolEventBlock(ev)
	if block == "" {
		return
	}
	m.appendCell(repl.NewToolBlockCell(block))
}

func (m *Model) appendTodoCell(items []todo.Item) {
	m.appendCell(repl.NewTodoCell(items))
}

func (m *Model) refreshViewport() {
	width := m.viewport.Width
	if width <= 0 {
		width = 80
	}
	var lines []string
	for _, cell := range m.cells {
		lines = append(lines, render.LinesToStrings(cell.Render(width))...)
	}
	lines = append(lines, render.LinesToStrings(m.active.RenderLines(width))...)
	atBottom := m.viewport.AtBottom()
	m.viewport.SetContent(strings.Join(lines, "\n"))
	if atBottom {
		m.viewport.GotoBottom()
	}
}

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height
	m.textarea.SetWidth(width - 2)
	composerHeight := m.textarea.Height() + 1
	statusHeight := 2
	vpHeight := height - composerHeight - statusHeight
	if vpHeight < 3 {
		vpHeight = 3
	}
	m.viewport.Width = width
	m.viewport.Height = vpHeight
	m.refreshViewport()
	m.viewport.GotoBottom()
}

func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	var sections []string
	sections = append(sections, m.viewport.View())

	var status string
	switch {
	case len(m.approveQueue) > 0:
		status = approvalStyle.Render(fmt.Sprintf("⚠ 等待审批: %s  [y]批准 [n]拒绝", m.approveQueue[0].text))
	case m.err != nil:
		status = errStyle.Render("error: " + m.err.Error())
	case m.pending:
		status = statusStyle.Render(m.spin.View() + " working…")
	case m.status != "":
		status = statusStyle.Render(m.status)
	default:
		status = statusStyle.Render(fmt.Sprintf("model=%s  ctrl+c 退出  ctrl+y 复制", m.modelName))
	}
	sections = append(sections, status)

	if popup := m.slash.View(); popup != "" {
		sections = append(sections, popup)
	}
	sections = append(sections, m.textarea.View())
	return strings.Join(sections, "\n")
}

// History 返回会话消息，供退出时持久化。
func (m *Model) History() []agent.Message {
	return m.messages
}

// SessionID 返回当前会话 id。
func (m *Model) SessionID() string {
	return m.sessionID
}

// Todos 返回最近一次 todo 快照。
func (m *Model) Todos() []todo.Item {
	return m.todos
}

package slash

import (
	"sort"
	"strings"
	"unicode"

	"github.com/sahilm/fuzzy"
)

// ActionKind 描述按键触发后的处理类型。
type ActionKind int

const (
	ActionNone ActionKind = iota
	ActionClose
	ActionInsert
	ActionSubmitCommand
	ActionError
)

// Action 汇总 Slash 处理结果。
type Action struct {
	Kind     ActionKind
	Command  Command
	Args     string
	NewValue string
	Message  string
}

// State 维护 slash 弹窗的匹配与选择状态。
type State struct {
	items    []Item
	matches  []match
	selected int
	open     bool
	token    tokenInfo
	maxLines int
}

type match struct {
	item       Item
	highlights []int
	score      int
}

type tokenInfo struct {
	found bool
	value string
	args  string
}

// NewState 构造 slash 状态机。
func NewState() *State {
	return &State{items: builtinItems(), maxLines: 8}
}

// Open 返回弹窗是否展示。
func (s *State) Open() bool {
	return s != nil && s.open
}

// Matches 返回当前过滤后的条目。
func (s *State) Matches() []Item {
	if s == nil {
		return nil
	}
	out := make([]Item, 0, len(s.matches))
	for _, m := range s.matches {
		out = append(out, m.item)
	}
	return out
}

// Selected 返回当前选中的下标。
func (s *State) Selected() int {
	if s == nil {
		return 0
	}
	return s.selected
}

// SyncInput 根据最新的输入文本同步过滤列表与选中项。
// 只有首行以 "/" 开头时弹窗才会打开。
func (s *State) SyncInput(value string) {
	if s == nil {
		return
	}
	s.token = parseToken(value)
	if !s.token.found {
		s.open = false
		s.matches = nil
		return
	}
	s.open = true
	s.matches = filterMatches(s.items, s.token.value)
	if s.selected >= len(s.matches) {
		s.selected = 0
	}
}

// ResolveSubmit 按 Enter 行为解析当前输入，不依赖弹窗是否打开。
func (s *State) ResolveSubmit(value string) Action {
	token := parseToken(value)
	if !token.found || token.value == "" {
		return Action{Kind: ActionNone}
	}
	item, ok := s.findExactItem(token.value)
	if !ok {
		return Action{Kind: ActionError, Message: "不认识的命令，请输入 / 查看列表"}
	}
	return Action{Kind: ActionSubmitCommand, Command: item.Command, Args: token.args}
}

// HandleKey 处理键盘事件，返回对应动作及是否已消费该按键。
func (s *State) HandleKey(key string) (Action, bool) {
	if s == nil || !s.open {
		return Action{}, false
	}
	switch key {
	case "up", "ctrl+p":
		if len(s.matches) == 0 {
			return Action{Kind: ActionClose}, true
		}
		s.selected--
		if s.selected < 0 {
			s.selected = len(s.matches) - 1
		}
		return Action{Kind: ActionNone}, true
	case "down", "ctrl+n":
		if len(s.matches) == 0 {
			return Action{Kind: ActionClose}, true
		}
		s.selected++
		if s.selected >= len(s.matches) {
			s.selected = 0
		}
		return Action{Kind: ActionNone}, true
	case "esc":
		s.open = false
		return Action{Kind: ActionClose}, true
	case "tab":
		if len(s.matches) == 0 {
			return Action{Kind: ActionError, Message: "不认识的命令，请输入 / 查看列表"}, true
		}
		item := s.matches[s.selected].item
		s.open = false
		value := item.DisplayName()
		if args := strings.TrimSpace(s.token.args); args != "" {
			value += " " + args
		} else {
			value += " "
		}
		return Action{Kind: ActionInsert, NewValue: value}, true
	case "enter":
		if len(s.matches) == 0 {
			return Action{Kind: ActionError, Message: "不认识的命令，请输入 / 查看列表"}, true
		}
		item := s.matches[s.selected].item
		s.open = false
		return Action{Kind: ActionSubmitCommand, Command: item.Command, Args: s.token.args}, true
	default:
		return Action{}, false
	}
}

func (s *State) findExactItem(token string) (Item, bool) {
	for _, item := range s.items {
		if strings.EqualFold(item.Token(), token) {
			return item, true
		}
	}
	return Item{}, false
}

func filterMatches(items []Item, query string) []match {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		matches := make([]match, 0, len(items))
		for _, item := range items {
			matches = append(matches, match{item: item})
		}
		return matches
	}

	keys := make([]string, 0, len(items))
	for _, item := range items {
		keys = append(keys, strings.ToLower(item.Token()))
	}
	results := fuzzy.Find(strings.ToLower(trimmed), keys)
	matches := make([]match, 0, len(results))
	for _, res := range results {
		matches = append(matches, match{
			item:       items[res.Index],
			highlights: res.MatchedIndexes,
			score:      res.Score,
		})
	}
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].score == matches[j].score {
			return matches[i].item.Token() < matches[j].item.Token()
		}
		return matches[i].score > matches[j].score
	})
	return matches
}

// parseToken 从输入首行提取 "/command args" 形式的 token。
func parseToken(value string) tokenInfo {
	first := value
	if idx := strings.IndexByte(value, '\n'); idx >= 0 {
		first = value[:idx]
	}
	runes := []rune(first)
	if len(runes) == 0 || runes[0] != '/' {
		return tokenInfo{}
	}
	end := len(runes)
	for i := 1; i < len(runes); i++ {
		if unicode.IsSpace(runes[i]) {
			end = i
			break
		}
		if runes[i] == '/' {
			return tokenInfo{}
		}
	}
	return tokenInfo{
		found: true,
		value: string(runes[1:end]),
		args:  strings.TrimLeftFunc(string(runes[end:]), unicode.IsSpace),
	}
}

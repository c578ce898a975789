package tui

import "strings"

// promptHistory 维护输入框的上下箭头浏览状态。pos == len(items) 表示
// 停在“还没发出去的那行”上；向上翻历史前会把这行暂存到 pending，
// 翻回底部时原样还原。
type promptHistory struct {
	items   []string
	pos     int
	pending string
}

// Add 记录一条已提交的输入。与上一条完全相同的输入不重复入栈，
// 免得连续回车把历史刷满同一句话。
func (h *promptHistory) Add(text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	if n := len(h.items); n == 0 || h.items[n-1] != text {
		h.items = append(h.items, text)
	}
	h.pos = len(h.items)
	h.pending = ""
}

// Browsing 报告当前是否停在某条历史上。
func (h *promptHistory) Browsing() bool {
	return h.pos < len(h.items)
}

func (h *promptHistory) ResetBrowsing() {
	h.pos = len(h.items)
	h.pending = ""
}

// Prev 往更早的方向翻一条。首次离开底部时把 current 暂存起来。
func (h *promptHistory) Prev(current string) (string, bool) {
	if len(h.items) == 0 {
		return "", false
	}
	if h.pos == len(h.items) {
		h.pending = current
	}
	if h.pos > 0 {
		h.pos--
	}
	return h.items[h.pos], true
}

// Next 往更新的方向翻一条；越过最新一条时回到暂存的草稿。
func (h *promptHistory) Next() (string, bool) {
	switch {
	case len(h.items) == 0 || h.pos == len(h.items):
		return "", false
	case h.pos < len(h.items)-1:
		h.pos++
		return h.items[h.pos], true
	default:
		h.pos = len(h.items)
		return h.pending, true
	}
}

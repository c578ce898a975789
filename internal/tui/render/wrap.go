package render

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// WrapText 按显示宽度做词级别换行，宽词按显示列强拆。
// 宽度按终端列计算（中日韩字符占两列）。
func WrapText(text string, width int) []string {
	if width <= 0 {
		return []string{text}
	}
	lines := []string{}
	for _, raw := range strings.Split(text, "\n") {
		if raw == "" {
			lines = append(lines, "")
			continue
		}
		lines = append(lines, wrapLine(raw, width)...)
	}
	if len(lines) == 0 {
		lines = append(lines, "")
	}
	return lines
}

func wrapLine(line string, width int) []string {
	if runewidth.StringWidth(line) <= width {
		return []string{line}
	}
	out := []string{}
	current := ""
	for _, word := range strings.Fields(line) {
		switch {
		case current == "" && runewidth.StringWidth(word) > width:
			out = append(out, breakLongWord(word, width)...)
		case current == "":
			current = word
		case runewidth.StringWidth(current)+1+runewidth.StringWidth(word) <= width:
			current += " " + word
		default:
			out = append(out, current)
			if runewidth.StringWidth(word) > width {
				out = append(out, breakLongWord(word, width)...)
				current = ""
			} else {
				current = word
			}
		}
	}
	if current != "" {
		out = append(out, current)
	}
	if len(out) == 0 {
		return []string{line}
	}
	return out
}

func breakLongWord(word string, width int) []string {
	out := []string{}
	current := ""
	cols := 0
	for _, r := range word {
		w := runewidth.RuneWidth(r)
		if cols+w > width && current != "" {
			out = append(out, current)
			current = ""
			cols = 0
		}
		current += string(r)
		cols += w
	}
	if current != "" {
		out = append(out, current)
	}
	return out
}

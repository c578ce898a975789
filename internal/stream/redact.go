package stream

import "strings"

// Tool-call markup is emitted in-band by the model. Tags are matched
// byte-exact and case-sensitive.
const (
	OpenTag  = "<tool_call>"
	CloseTag = "</tool_call>"
)

// Redact returns the display-safe subset of buffer. It is recomputed from the
// full buffer on every call: buffers are message-sized, and stateless
// re-derivation cannot drift the way an incrementally mutated copy can.
//
// Complete <tool_call>…</tool_call> spans are removed inclusively. An opening
// tag with no closing tag yet hides everything to end-of-buffer. A trailing
// partial tag (e.g. "<tool_cal") is also hidden: streaming may still complete
// it, so it stays invisible until more characters disambiguate.
func Redact(buffer string) string {
	var out strings.Builder
	rest := buffer
	for {
		open := strings.Index(rest, OpenTag)
		if open < 0 {
			break
		}
		out.WriteString(rest[:open])
		end := strings.Index(rest[open+len(OpenTag):], CloseTag)
		if end < 0 {
			// Dangling tool call: never show a partial span.
			return out.String()
		}
		rest = rest[open+len(OpenTag)+end+len(CloseTag):]
	}
	out.WriteString(trimDanglingPrefix(rest))
	return out.String()
}

// Payloads returns the inner text of every complete tool-call span in buffer,
// in order. Dangling spans are skipped; they are not complete yet.
func Payloads(buffer string) []string {
	var payloads []string
	rest := buffer
	for {
		open := strings.Index(rest, OpenTag)
		if open < 0 {
			return payloads
		}
		rest = rest[open+len(OpenTag):]
		end := strings.Index(rest, CloseTag)
		if end < 0 {
			return payloads
		}
		payloads = append(payloads, rest[:end])
		rest = rest[end+len(CloseTag):]
	}
}

// trimDanglingPrefix strips a trailing non-empty proper prefix of OpenTag.
func trimDanglingPrefix(s string) string {
	longest := len(OpenTag) - 1
	if longest > len(s) {
		longest = len(s)
	}
	for n := longest; n > 0; n-- {
		if strings.HasSuffix(s, OpenTag[:n]) {
			return s[:len(s)-n]
		}
	}
	return s
}

package main

import (
	"os"
	"path/filepath"
	"strings"
)

const baseInstructions = `You are a coding agent running in a terminal. You can call tools by
emitting <tool_call>...</tool_call> spans anywhere in your reply. The span body is a JSON
object: {"tool": "<name>", "id": "<unique id>", "args": {...}}.

Available tools:
- bash: {"command": "..."} run a shell command in the workspace
- file_read: {"path": "..."} read a file
- grep: {"pattern": "...", "path": "..."} search file contents
- search_replace: {"file_path": "...", "content": "..."} edit a file with SEARCH/REPLACE blocks
- todo: {"todos": [{"text": "...", "done": false}]} replace the shared todo list

search_replace patches use this exact format, one block per edit, applied top to bottom:

<<<<<<< SEARCH
exact existing lines
=======
replacement lines
>>>>>>> REPLACE

The SEARCH text must match the file exactly, including indentation. Keep each block minimal.
Tool results come back as user messages prefixed with "tool_result". Text outside tool_call
spans is shown to the user as your reply.`

// systemPrompt 组装系统提示：内置协议说明加上工作区的 AGENTS.md（如有）。
func systemPrompt(workdir string) string {
	sections := []string{baseInstructions}
	if workdir != "" {
		if data, err := os.ReadFile(filepath.Join(workdir, "AGENTS.md")); err == nil {
			if text := strings.TrimSpace(string(data)); text != "" {
				sections = append(sections, "Project notes:\n"+text)
			}
		}
	}
	return strings.Join(sections, "\n\n")
}

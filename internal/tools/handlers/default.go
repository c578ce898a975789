package handlers

import "vibe-cli/internal/tools"

// Default returns the built-in tool handlers.
func Default() []tools.Handler {
	return []tools.Handler{
		BashHandler{},
		WriteStdinHandler{},
		FileReadHandler{},
		GrepHandler{},
		SearchReplaceHandler{},
		TodoHandler{},
	}
}

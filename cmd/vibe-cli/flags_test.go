package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseRootArgsCollectsOverrides(t *testing.T) {
	root, rest, err := parseRootArgs([]string{"-c", "model=gpt-4.1", "-c", "provider=openai", "exec", "hello"})
	if err != nil {
		t.Fatalf("parseRootArgs: %v", err)
	}
	if len(root.overrides) != 2 || root.overrides[0] != "model=gpt-4.1" {
		t.Fatalf("overrides = %v", root.overrides)
	}
	if len(rest) != 2 || rest[0] != "exec" {
		t.Fatalf("rest = %v", rest)
	}
}

func TestInteractiveFlagSetAliases(t *testing.T) {
	fs, cli := newInteractiveFlagSet("test")
	if err := fs.Parse([]string{"-m", "claude-x", "-C", "/tmp", "fix", "the", "bug"}); err != nil {
		t.Fatalf("parse: %v", err)
	}
	cli.finalizePrompt(fs)
	if cli.modelOverride != "claude-x" {
		t.Fatalf("modelOverride = %q", cli.modelOverride)
	}
	if cli.workdir != "/tmp" {
		t.Fatalf("workdir = %q", cli.workdir)
	}
	if cli.prompt != "fix the bug" {
		t.Fatalf("prompt = %q", cli.prompt)
	}
}

func TestPrependOverridesKeepsOrder(t *testing.T) {
	merged := prependOverrides([]string{"a=1"}, []string{"b=2"})
	if strings.Join(merged, ",") != "a=1,b=2" {
		t.Fatalf("merged = %v", merged)
	}
}

func TestSystemPromptIncludesProjectNotes(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "AGENTS.md"), []byte("Run make lint before commits.\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	prompt := systemPrompt(dir)
	if !strings.Contains(prompt, "<tool_call>") {
		t.Fatal("base instructions missing from system prompt")
	}
	if !strings.Contains(prompt, "Run make lint before commits.") {
		t.Fatal("project notes missing from system prompt")
	}

	bare := systemPrompt(t.TempDir())
	if strings.Contains(bare, "Project notes:") {
		t.Fatal("prompt should not mention project notes without AGENTS.md")
	}
}

package search

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTree(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"main.go":              "package main\n\nfunc main() {}\n",
		"util/helper.go":       "package util\n\nfunc Helper() int { return 42 }\n",
		".git/config":          "[core]\n",
		"node_modules/x/y.js":  "module.exports = 42\n",
		"docs/readme.md":       "helper functions live in util\n",
	}
	for rel, content := range files {
		path := filepath.Join(dir, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("MkdirAll: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
	}
	return dir
}

func TestFindFilesSkipsIgnoredDirs(t *testing.T) {
	dir := writeTree(t)
	paths, err := FindFiles(dir, 50)
	if err != nil {
		t.Fatalf("FindFiles: %v", err)
	}
	for _, p := range paths {
		if strings.HasPrefix(p, ".git") || strings.HasPrefix(p, "node_modules") {
			t.Fatalf("FindFiles returned ignored path %q", p)
		}
	}
	if len(paths) != 3 {
		t.Fatalf("len(paths) = %d, want 3: %v", len(paths), paths)
	}
}

func TestGrepFiles(t *testing.T) {
	dir := writeTree(t)
	matches, err := GrepFiles(dir, `[Hh]elper`, 50)
	if err != nil {
		t.Fatalf("GrepFiles: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("len(matches) = %d, want 2: %+v", len(matches), matches)
	}
	for _, m := range matches {
		if m.Line <= 0 {
			t.Fatalf("match %+v has no line number", m)
		}
	}
}

func TestGrepFilesInvalidPattern(t *testing.T) {
	if _, err := GrepFiles(t.TempDir(), "(", 10); err == nil {
		t.Fatal("GrepFiles accepted an invalid pattern")
	}
	if _, err := GrepFiles(t.TempDir(), "  ", 10); err == nil {
		t.Fatal("GrepFiles accepted an empty pattern")
	}
}

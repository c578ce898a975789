package search

import (
	"bufio"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// Match is one matching line from a content search.
type Match struct {
	Path string
	Line int
	Text string
}

// FindFiles returns up to limit relative file paths under root, skipping common ignores.
func FindFiles(root string, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 200
	}
	paths := make([]string, 0, limit)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if skipDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		paths = append(paths, rel)
		if len(paths) >= limit {
			return fs.SkipAll
		}
		return nil
	})
	return paths, err
}

// GrepFiles searches file contents under root for the given regular
// expression and returns up to limit matching lines. Binary-looking files
// and common vendor directories are skipped.
func GrepFiles(root, pattern string, limit int) ([]Match, error) {
	if strings.TrimSpace(pattern) == "" {
		return nil, fmt.Errorf("empty search pattern")
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern: %w", err)
	}
	if limit <= 0 {
		limit = 200
	}

	var matches []Match
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if skipDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		found, err := grepFile(path, rel, re, limit-len(matches))
		if err != nil {
			// Unreadable files do not abort the whole search.
			return nil
		}
		matches = append(matches, found...)
		if len(matches) >= limit {
			return fs.SkipAll
		}
		return nil
	})
	return matches, err
}

func grepFile(path, rel string, re *regexp.Regexp, limit int) ([]Match, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var matches []Match
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if lineNo == 1 && strings.ContainsRune(line, '\x00') {
			return nil, nil
		}
		if re.MatchString(line) {
			matches = append(matches, Match{Path: rel, Line: lineNo, Text: line})
			if len(matches) >= limit {
				return matches, nil
			}
		}
	}
	return matches, scanner.Err()
}

func skipDir(name string) bool {
	switch name {
	case ".git", "node_modules", ".idea", "target", "vendor":
		return true
	}
	return false
}

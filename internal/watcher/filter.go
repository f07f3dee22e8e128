package watcher

import (
	"path/filepath"
	"strings"
)

// DefaultIgnorePatterns returns the patterns for partially written files.
func DefaultIgnorePatterns() []string {
	return []string{
		"*.tmp",
		"*.part",
		"*.swp",
		"*~",
		".~*", // office lock files
		".#*", // emacs lock files
	}
}

// FileFilter decides which paths the watcher never hands to the converter.
//
// Each pattern is a filepath.Match glob against the base name. A pattern
// that starts with '.' and has no wildcard is also a case-insensitive
// suffix, so ".tmp" ignores "notes.TMP".
type FileFilter struct {
	patterns []string
	suffixes []string
}

// NewFileFilter creates a FileFilter, using DefaultIgnorePatterns when
// patterns is empty.
func NewFileFilter(patterns []string) *FileFilter {
	if len(patterns) == 0 {
		patterns = DefaultIgnorePatterns()
	}
	f := &FileFilter{patterns: patterns}
	for _, p := range patterns {
		if strings.HasPrefix(p, ".") && !strings.ContainsAny(p, "*?[") {
			f.suffixes = append(f.suffixes, strings.ToLower(p))
		}
	}
	return f
}

// ShouldIgnore reports whether path matches any pattern.
func (f *FileFilter) ShouldIgnore(path string) bool {
	name := filepath.Base(path)
	for _, g := range f.patterns {
		if ok, err := filepath.Match(g, name); err == nil && ok {
			return true
		}
	}
	lower := strings.ToLower(name)
	for _, s := range f.suffixes {
		if strings.HasSuffix(lower, s) {
			return true
		}
	}
	return false
}

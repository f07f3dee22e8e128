// Package scanner finds the date files to convert in an input directory.
package scanner

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// ScanErrorType represents the type of scanning error.
type ScanErrorType string

const (
	// DirectoryNotFound indicates the input path is missing or not a directory.
	DirectoryNotFound ScanErrorType = "DIRECTORY_NOT_FOUND"
	// PermissionDenied indicates a directory could not be read.
	PermissionDenied ScanErrorType = "PERMISSION_DENIED"
	// SymlinkError indicates a symlink was met under the "error" policy.
	SymlinkError ScanErrorType = "SYMLINK_ERROR"
)

// Symlink policies.
const (
	SymlinkPolicyFollow = "follow"
	SymlinkPolicySkip   = "skip"
	SymlinkPolicyError  = "error"
)

var (
	errNotDirectory = errors.New("path is not a directory")
	errSymlink      = errors.New("symlink encountered with error policy")
)

// ScanError represents an error that occurred during directory scanning.
type ScanError struct {
	Type ScanErrorType
	Path string
	Err  error
}

func (e *ScanError) Error() string {
	return string(e.Type) + ": " + e.Path
}

func (e *ScanError) Unwrap() error {
	return e.Err
}

// ScanOptions selects which files a scan returns.
type ScanOptions struct {
	MaxDepth      int      // Subdirectory levels to enter (0 = none, -1 = unlimited)
	SymlinkPolicy string   // "follow", "skip" or "error"
	Extensions    []string // Case-insensitive extensions to keep (empty = all files)
	ExcludeSuffix string   // Files ending in this suffix are never inputs
}

// Accepts reports whether a file name passes the extension and suffix filters.
func (o ScanOptions) Accepts(name string) bool {
	lower := strings.ToLower(name)
	if o.ExcludeSuffix != "" && strings.HasSuffix(lower, strings.ToLower(o.ExcludeSuffix)) {
		return false
	}
	if len(o.Extensions) == 0 {
		return true
	}
	ext := filepath.Ext(lower)
	for _, want := range o.Extensions {
		if ext == strings.ToLower(want) {
			return true
		}
	}
	return false
}

func (o ScanOptions) descend(depth int) bool {
	return o.MaxDepth == -1 || depth < o.MaxDepth
}

// DefaultScanOptions returns options for a flat scan that skips symlinks.
func DefaultScanOptions() ScanOptions {
	return ScanOptions{SymlinkPolicy: SymlinkPolicySkip}
}

// FileEntry is a candidate input file.
type FileEntry struct {
	Name     string // Base name
	FullPath string // Absolute path
	Size     int64
}

// Scan lists the files directly inside directory.
func Scan(directory string) ([]FileEntry, error) {
	return ScanWithOptions(directory, DefaultScanOptions())
}

// ScanWithOptions lists the files under directory that opts accepts. The
// directory itself may be a symlink; the policy applies to what it contains.
func ScanWithOptions(directory string, opts ScanOptions) ([]FileEntry, error) {
	info, err := os.Stat(directory)
	if err != nil {
		return nil, classify(directory, err)
	}
	if !info.IsDir() {
		return nil, &ScanError{Type: DirectoryNotFound, Path: directory, Err: errNotDirectory}
	}

	s := &scan{opts: opts}
	if err := s.walk(directory, 0); err != nil {
		return nil, err
	}
	return s.files, nil
}

// scan accumulates the files of one ScanWithOptions call.
type scan struct {
	opts  ScanOptions
	files []FileEntry
}

func (s *scan) walk(directory string, depth int) error {
	entries, err := os.ReadDir(directory)
	if err != nil {
		return classify(directory, err)
	}

	for _, entry := range entries {
		path := filepath.Join(directory, entry.Name())
		info, err := os.Lstat(path)
		if err != nil {
			continue
		}
		info, ok, err := resolve(path, info, s.opts.SymlinkPolicy)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}

		if info.IsDir() {
			if s.opts.descend(depth) {
				if err := s.walk(path, depth+1); err != nil {
					return err
				}
			}
			continue
		}
		if !info.Mode().IsRegular() || !s.opts.Accepts(entry.Name()) {
			continue
		}

		abs, err := filepath.Abs(path)
		if err != nil {
			abs = path
		}
		s.files = append(s.files, FileEntry{Name: entry.Name(), FullPath: abs, Size: info.Size()})
	}
	return nil
}

// resolve applies the symlink policy to an Lstat result. ok is false when
// the entry should be passed over.
func resolve(path string, info fs.FileInfo, policy string) (fs.FileInfo, bool, error) {
	if info.Mode()&fs.ModeSymlink == 0 {
		return info, true, nil
	}
	switch policy {
	case SymlinkPolicyError:
		return nil, false, &ScanError{Type: SymlinkError, Path: path, Err: errSymlink}
	case SymlinkPolicyFollow:
		target, err := os.Stat(path)
		if err != nil {
			// Broken link.
			return nil, false, nil
		}
		return target, true, nil
	default:
		return nil, false, nil
	}
}

func classify(path string, err error) error {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return &ScanError{Type: DirectoryNotFound, Path: path, Err: err}
	case errors.Is(err, fs.ErrPermission):
		return &ScanError{Type: PermissionDenied, Path: path, Err: err}
	default:
		return err
	}
}

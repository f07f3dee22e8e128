package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"fastymd/internal/scanner"
)

// ValidationSeverity represents the severity of a validation issue.
type ValidationSeverity string

const (
	SeverityError   ValidationSeverity = "error"
	SeverityWarning ValidationSeverity = "warning"
)

// ConfigValidationError represents a single validation issue.
type ConfigValidationError struct {
	Field    string             // Config field with issue (e.g., "inputDirectories[0]")
	Message  string             // Human-readable description
	Severity ValidationSeverity // "error" or "warning"
}

// ValidationResult contains all validation findings.
type ValidationResult struct {
	Errors   []ConfigValidationError
	Warnings []ConfigValidationError
	Valid    bool // True if no errors (warnings OK)
}

func (r *ValidationResult) add(findings []ConfigValidationError) {
	for _, f := range findings {
		if f.Severity == SeverityError {
			r.Errors = append(r.Errors, f)
		} else {
			r.Warnings = append(r.Warnings, f)
		}
	}
}

// ValidateConfig checks the configuration for errors and returns all findings.
func ValidateConfig(cfg *Configuration) *ValidationResult {
	result := &ValidationResult{
		Errors:   []ConfigValidationError{},
		Warnings: []ConfigValidationError{},
	}

	result.add(ValidatePaths(cfg))
	result.add(ValidatePolicies(cfg))

	result.Valid = len(result.Errors) == 0
	return result
}

// ValidatePaths checks that input directories exist and that the output
// directory exists or can be created.
func ValidatePaths(cfg *Configuration) []ConfigValidationError {
	var errors []ConfigValidationError

	for i, dir := range cfg.InputDirectories {
		field := formatField("inputDirectories", i)
		info, err := os.Stat(dir)
		if err != nil {
			switch {
			case os.IsNotExist(err):
				errors = append(errors, ConfigValidationError{field, "directory does not exist: " + dir, SeverityError})
			case os.IsPermission(err):
				errors = append(errors, ConfigValidationError{field, "directory is not accessible: " + dir, SeverityError})
			default:
				errors = append(errors, ConfigValidationError{field, "error accessing directory: " + err.Error(), SeverityError})
			}
			continue
		}
		if !info.IsDir() {
			errors = append(errors, ConfigValidationError{field, "path is not a directory: " + dir, SeverityError})
		}

		if sameDirectory(dir, cfg.OutputDirectory) {
			errors = append(errors, ConfigValidationError{
				Field:    field,
				Message:  "input directory is also the output directory; output files are skipped by suffix",
				Severity: SeverityWarning,
			})
		}
	}

	if cfg.OutputDirectory == "" {
		return errors
	}

	outDir := cfg.OutputDirectory
	info, err := os.Stat(outDir)
	if err == nil {
		if !info.IsDir() {
			errors = append(errors, ConfigValidationError{"outputDirectory", "path exists but is not a directory: " + outDir, SeverityError})
		}
		return errors
	}
	if !os.IsNotExist(err) {
		return append(errors, ConfigValidationError{"outputDirectory", "error accessing directory: " + err.Error(), SeverityError})
	}

	parentDir := filepath.Dir(outDir)
	parentInfo, parentErr := os.Stat(parentDir)
	switch {
	case parentErr != nil && os.IsNotExist(parentErr):
		errors = append(errors, ConfigValidationError{"outputDirectory", "parent directory does not exist: " + parentDir, SeverityError})
	case parentErr != nil:
		errors = append(errors, ConfigValidationError{"outputDirectory", "error accessing parent directory: " + parentErr.Error(), SeverityError})
	case !parentInfo.IsDir():
		errors = append(errors, ConfigValidationError{"outputDirectory", "parent path is not a directory: " + parentDir, SeverityError})
	case !isDirectoryWritable(parentDir):
		errors = append(errors, ConfigValidationError{"outputDirectory", "parent directory is not writable: " + parentDir, SeverityError})
	default:
		errors = append(errors, ConfigValidationError{"outputDirectory", "directory will be created: " + outDir, SeverityWarning})
	}

	return errors
}

// ValidatePolicies checks that policy and tuning values are valid.
func ValidatePolicies(cfg *Configuration) []ConfigValidationError {
	var errors []ConfigValidationError

	if cfg.SymlinkPolicy != "" {
		validPolicies := map[string]bool{
			scanner.SymlinkPolicyFollow: true,
			scanner.SymlinkPolicySkip:   true,
			scanner.SymlinkPolicyError:  true,
		}
		if !validPolicies[cfg.SymlinkPolicy] {
			errors = append(errors, ConfigValidationError{
				Field:    "symlinkPolicy",
				Message:  "invalid symlink policy: \"" + cfg.SymlinkPolicy + "\". Must be \"follow\", \"skip\", or \"error\"",
				Severity: SeverityError,
			})
		}
	}

	if cfg.ScanDepth != nil && *cfg.ScanDepth < -1 {
		errors = append(errors, ConfigValidationError{
			Field:    "scanDepth",
			Message:  "scanDepth must be -1 (unlimited) or a non-negative integer",
			Severity: SeverityError,
		})
	}

	if cfg.OutputSuffix != "" && strings.ContainsRune(cfg.OutputSuffix, filepath.Separator) {
		errors = append(errors, ConfigValidationError{
			Field:    "outputSuffix",
			Message:  "outputSuffix cannot contain a path separator",
			Severity: SeverityError,
		})
	}

	for i, ext := range cfg.Extensions {
		if cfg.OutputSuffix != "" && strings.EqualFold(ext, cfg.OutputSuffix) {
			errors = append(errors, ConfigValidationError{
				Field:    formatField("extensions", i),
				Message:  "extension " + ext + " matches outputSuffix; output files would be converted again",
				Severity: SeverityError,
			})
		}
	}

	if cfg.Watch != nil && cfg.Watch.DebounceSeconds < 0 {
		errors = append(errors, ConfigValidationError{"watch.debounceSeconds", "debounceSeconds cannot be negative", SeverityError})
	}
	if cfg.Watch != nil && cfg.Watch.StableThresholdMs < 0 {
		errors = append(errors, ConfigValidationError{"watch.stableThresholdMs", "stableThresholdMs cannot be negative", SeverityError})
	}

	return errors
}

// formatField creates a field reference string for validation errors.
func formatField(name string, index int) string {
	return name + "[" + strconv.Itoa(index) + "]"
}

func sameDirectory(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return absA == absB
}

// isDirectoryWritable checks if a directory is writable by attempting to create a temp file.
func isDirectoryWritable(dir string) bool {
	f, err := os.CreateTemp(dir, ".fastymd_write_test")
	if err != nil {
		return false
	}
	name := f.Name()
	f.Close()
	os.Remove(name)
	return true
}

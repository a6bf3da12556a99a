package utils

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nodewee/page-ocr/pkg/constants"
)

// NormalizePath cleans a path and upper-cases Windows drive letters
func NormalizePath(path string) string {
	cleaned := filepath.Clean(path)

	if constants.IsWindows() && len(cleaned) >= 2 && cleaned[1] == ':' {
		if cleaned[0] >= 'a' && cleaned[0] <= 'z' {
			cleaned = strings.ToUpper(string(cleaned[0])) + cleaned[1:]
		}
	}

	return cleaned
}

// EnsureDir creates a directory if it doesn't exist
func EnsureDir(dirPath string) error {
	return os.MkdirAll(NormalizePath(dirPath), constants.DefaultDirPermission)
}

// IsExecutable checks if a file is executable on the current platform
func IsExecutable(filePath string) bool {
	info, err := os.Stat(filePath)
	if err != nil || info.IsDir() {
		return false
	}

	if constants.IsWindows() {
		ext := strings.ToLower(filepath.Ext(filePath))
		return ext == ".exe" || ext == ".bat" || ext == ".cmd"
	}
	return info.Mode()&0111 != 0
}

// ExpandPath expands environment variables and a leading ~
func ExpandPath(path string) (string, error) {
	expanded := os.ExpandEnv(path)

	if expanded == "~" || strings.HasPrefix(expanded, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get user home directory: %w", err)
		}
		expanded = filepath.Join(homeDir, strings.TrimPrefix(expanded[1:], "/"))
	}

	return NormalizePath(expanded), nil
}

// SanitizeFileName replaces characters that are not valid in file names
func SanitizeFileName(filename string) string {
	sanitized := filename

	invalidChars := []string{"/", "\x00"}
	if constants.IsWindows() {
		invalidChars = append(invalidChars, "<", ">", ":", "\"", "\\", "|", "?", "*")
	}
	for _, char := range invalidChars {
		sanitized = strings.ReplaceAll(sanitized, char, "_")
	}
	sanitized = strings.TrimRight(sanitized, ". ")

	if strings.TrimSpace(sanitized) == "" {
		sanitized = "unnamed_file"
	}
	return sanitized
}

// IsRemoteURL reports whether input should be downloaded rather than opened
func IsRemoteURL(input string) bool {
	u, err := url.Parse(input)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// DocumentStem returns the file name of a path or URL without its extension
func DocumentStem(input string) string {
	name := input
	if IsRemoteURL(input) {
		if u, err := url.Parse(input); err == nil {
			name = u.Path
		}
	}
	base := filepath.Base(filepath.FromSlash(name))
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if stem == "" || stem == "." || stem == string(filepath.Separator) {
		stem = "document"
	}
	return SanitizeFileName(stem)
}

// OutputBaseName builds the unique artifact prefix <stem>_<timestamp>
func OutputBaseName(input string, at time.Time) string {
	return fmt.Sprintf("%s_%s", DocumentStem(input), at.Format(constants.OutputTimestamp))
}

package security

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/NeverVane/histpick/internal/logger"
)

// File permission constants for secure operation
const (
	// Secure file permissions (read/write for owner only)
	SecureFilePermission = 0600
)

// PermissionEnforcer handles file permission enforcement for files
// histpick writes on the user's behalf
type PermissionEnforcer struct {
	logger *logger.Logger
}

// PermissionError represents a permission-related error
type PermissionError struct {
	Path      string
	Expected  os.FileMode
	Actual    os.FileMode
	Operation string
	Message   string
}

func (pe *PermissionError) Error() string {
	return fmt.Sprintf("permission error on %s: %s (expected %o, got %o)",
		pe.Path, pe.Message, pe.Expected, pe.Actual)
}

// NewPermissionEnforcer creates a new permission enforcer
func NewPermissionEnforcer() *PermissionEnforcer {
	return &PermissionEnforcer{
		logger: logger.GetLogger().WithComponent("security"),
	}
}

// WriteSecureFile writes data to path readable by the owner only. An
// existing file keeps its inode but has its mode tightened; symlinks and
// non-regular files are refused.
func (pe *PermissionEnforcer) WriteSecureFile(path string, data []byte) error {
	if err := pe.ValidatePath(path); err != nil {
		return fmt.Errorf("invalid path: %w", err)
	}

	if info, err := os.Lstat(path); err == nil {
		if info.Mode()&os.ModeSymlink != 0 {
			return &PermissionError{
				Path:      path,
				Expected:  SecureFilePermission,
				Actual:    info.Mode().Perm(),
				Operation: "write_file",
				Message:   "refusing to write through a symbolic link",
			}
		}
		if !info.Mode().IsRegular() {
			return fmt.Errorf("path %s is not a regular file", path)
		}
	}

	if err := os.WriteFile(path, data, SecureFilePermission); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	return pe.SetSecureFilePermissions(path)
}

// SetSecureFilePermissions sets secure permissions on a file (0600)
func (pe *PermissionEnforcer) SetSecureFilePermissions(path string) error {
	if err := pe.ValidatePath(path); err != nil {
		return fmt.Errorf("invalid path: %w", err)
	}

	pe.logger.WithField("path", path).Debug().Msg("Setting secure file permissions")

	if err := os.Chmod(path, SecureFilePermission); err != nil {
		pe.logger.WithError(err).WithField("path", path).Error().Msg("Failed to set secure file permissions")
		return fmt.Errorf("failed to set permissions on %s: %w", path, err)
	}

	// Verify permissions were set correctly
	if err := pe.ValidateFilePermissions(path, SecureFilePermission); err != nil {
		pe.logger.WithError(err).WithField("path", path).Warn().Msg("File permissions verification failed after setting")
		return fmt.Errorf("permission verification failed: %w", err)
	}

	return nil
}

// ValidateFilePermissions validates that a file has the expected permissions
func (pe *PermissionEnforcer) ValidateFilePermissions(path string, expected os.FileMode) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to stat file %s: %w", path, err)
	}

	if info.IsDir() {
		return fmt.Errorf("path %s is a directory, not a file", path)
	}

	actual := info.Mode().Perm()
	if actual != expected {
		pe.logger.WithFields(map[string]interface{}{
			"path":     path,
			"expected": fmt.Sprintf("%o", expected),
			"actual":   fmt.Sprintf("%o", actual),
		}).Warn().Msg("File permissions validation failed")

		return &PermissionError{
			Path:      path,
			Expected:  expected,
			Actual:    actual,
			Operation: "validate_file",
			Message:   "file permissions are not secure",
		}
	}

	return nil
}

// ValidatePath validates that a path is safe to use
func (pe *PermissionEnforcer) ValidatePath(path string) error {
	if path == "" {
		return fmt.Errorf("path cannot be empty")
	}

	// Only a whole ".." segment climbs; names like "a..b" are ordinary
	for _, segment := range strings.Split(filepath.ToSlash(path), "/") {
		if segment == ".." {
			return fmt.Errorf("path contains directory traversal")
		}
	}

	return nil
}

// IsPermissionError checks if an error is a permission-related error
func IsPermissionError(err error) bool {
	_, ok := err.(*PermissionError)
	return ok
}

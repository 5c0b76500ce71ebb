package errors

import "fmt"

// Common error types.
var (
	// Config errors.
	ErrEmptyConfigPath   = fmt.Errorf("config file path cannot be empty")
	ErrInvalidConfigPath = fmt.Errorf("invalid config file path")
	ErrConfigParse       = fmt.Errorf("failed to parse config")
	ErrConfigValidation  = fmt.Errorf("invalid configuration")
	ErrConfigEncode      = fmt.Errorf("failed to encode config")
	ErrConfigDirectory   = fmt.Errorf("failed to create config directory")
	ErrConfigFileCreate  = fmt.Errorf("failed to create config file")

	// Metadata errors.
	ErrMetadataNotFound = fmt.Errorf("package metadata not found")
	ErrMetadataParse    = fmt.Errorf("failed to parse package metadata")
	ErrNoArchiveFormats = fmt.Errorf("metadata lists no archive formats")

	// Download errors.
	ErrDownloadFailed = fmt.Errorf("download failed")
	ErrInvalidPath    = fmt.Errorf("invalid path")
	ErrHashMismatch   = fmt.Errorf("file hash mismatch")

	// Validation errors.
	ErrValidationFailed = fmt.Errorf("validation failed")
	ErrValidatorExit    = fmt.Errorf("external validator reported failure")
	ErrNoUnpackedDir    = fmt.Errorf("unpacked archive directory not found")

	// Hook errors.
	ErrHookExecution = fmt.Errorf("error executing hook")
	ErrHookScript    = fmt.Errorf("hook script error")
	ErrHookLoad      = fmt.Errorf("failed to load hook")
)

// Wrap wraps an error with additional context.
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// Wrapf wraps an error with additional formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

package imager

import (
	"fmt"
	"strings"

	"github.com/xwmx/glyph-imager/core"
)

// Option field names, as reported by ConfigurationError.
const (
	FieldCodePoint  = "code_point"
	FieldFontPath   = "font_path"
	FieldOutputDir  = "output_dir"
	FieldSize       = "size"
	FieldPercentage = "pointsize_percentage"
	FieldGravity    = "gravity"
	FieldRange      = "range"
)

// ConfigurationError reports a missing or invalid option.
type ConfigurationError struct {
	Field   string
	Reason  string
	Missing bool
	Err     error
}

func missing(field string) *ConfigurationError {
	return &ConfigurationError{Field: field, Reason: "missing value", Missing: true}
}

func invalid(field string, err error) *ConfigurationError {
	return &ConfigurationError{Field: field, Reason: core.UserMessage(err), Err: err}
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s: %s", e.Field, e.Reason)
}

// Unwrap returns the underlying error, if any.
func (e *ConfigurationError) Unwrap() error { return e.Err }

// ErrorCode is core.EMISSING for missing options, core.EINVALID otherwise.
func (e *ConfigurationError) ErrorCode() int {
	if e.Missing {
		return core.EMISSING
	}
	return core.EINVALID
}

// UserMessage returns a message suitable for end users.
func (e *ConfigurationError) UserMessage() string {
	return fmt.Sprintf("%s for option %s", e.Reason, e.Field)
}

// FontLoadError reports a font which cannot be loaded, including failed
// fetches of remote fonts.
type FontLoadError struct {
	Locator string
	Err     error
}

func (e *FontLoadError) Error() string {
	return fmt.Sprintf("cannot load font %s: %v", e.Locator, e.Err)
}

// Unwrap returns the underlying error.
func (e *FontLoadError) Unwrap() error { return e.Err }

// ErrorCode is the code of the underlying error.
func (e *FontLoadError) ErrorCode() int { return core.Code(e.Err) }

// UserMessage returns a message suitable for end users.
func (e *FontLoadError) UserMessage() string {
	return core.UserMessage(e.Err)
}

// RasterizationError reports a failed rasterizer run.
type RasterizationError struct {
	Args   []string // command and arguments
	Output []byte   // combined output of the rasterizer
	Err    error
}

func (e *RasterizationError) Error() string {
	return fmt.Sprintf("rasterization failed: %s: %v", strings.Join(e.Args, " "), e.Err)
}

// Unwrap returns the underlying error.
func (e *RasterizationError) Unwrap() error { return e.Err }

// ErrorCode is always core.EEXEC.
func (e *RasterizationError) ErrorCode() int { return core.EEXEC }

// UserMessage returns a message suitable for end users.
func (e *RasterizationError) UserMessage() string {
	return core.UserMessage(e.Err)
}

var _ core.AppError = &ConfigurationError{}
var _ core.AppError = &FontLoadError{}
var _ core.AppError = &RasterizationError{}

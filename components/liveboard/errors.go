package liveboard

import (
	"errors"
	"fmt"
)

var (
	// ErrWidgetNotFound is returned when a widget id is not on the board.
	ErrWidgetNotFound = errors.New("liveboard: widget not found")
	// ErrUnknownPrompt is returned for submissions against an unknown prompt id.
	ErrUnknownPrompt = errors.New("liveboard: prompt not found")
	// ErrPromptResolved is returned when a prompt is submitted twice.
	ErrPromptResolved = errors.New("liveboard: prompt already resolved")
	// ErrEmptyDashboard is returned when pinning a board with no widgets.
	ErrEmptyDashboard = errors.New("liveboard: cannot pin an empty dashboard")
	// ErrPinNotFound is returned for unknown pinned dashboard ids.
	ErrPinNotFound = errors.New("liveboard: pinned dashboard not found")
	// ErrMissingStorageKey is returned by storage backends for an empty key.
	ErrMissingStorageKey = errors.New("liveboard: storage key is required")
	// ErrMissingPreference is returned when a submission omits a required field.
	ErrMissingPreference = errors.New("liveboard: preference is required")
)

// RejectionError is returned for tool calls whose arguments are absent or of
// the wrong shape. Its message is the tool result shown to the model.
type RejectionError struct {
	Tool    string
	Param   string
	Message string
}

func (e *RejectionError) Error() string { return e.Message }

func reject(tool, param, format string, args ...any) error {
	return &RejectionError{
		Tool:    tool,
		Param:   param,
		Message: "❌ Error: " + fmt.Sprintf(format, args...),
	}
}

func missingParam(tool, param, hint string) error {
	if hint == "" {
		return reject(tool, param, "Missing required parameter %q.", param)
	}
	return reject(tool, param, "Missing required parameter %q. %s", param, hint)
}

// IsRejection reports whether err is a tool-argument rejection.
func IsRejection(err error) bool {
	var rej *RejectionError
	return errors.As(err, &rej)
}

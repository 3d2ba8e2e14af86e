package alarm

import "errors"

var (
	// ErrValidation is returned when the requested fire time is not in the future.
	ErrValidation = errors.New("alarm time must be in the future")
	// ErrPermissionDenied is returned when a required capability is not granted.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrLaunchFailure is returned when the alert surface could not be started.
	ErrLaunchFailure = errors.New("alert launch failed")
)

package endpoint

import (
	"errors"
	"fmt"
)

// PathFormatError reports a Space path that does not split into the
// expected owner/space[/endpoint] segments.
type PathFormatError struct {
	Path string
}

func (e *PathFormatError) Error() string {
	return fmt.Sprintf("invalid space path %q: expected owner/space or owner/space/endpoint", e.Path)
}

// NoEndpointError reports a Space whose discovery response offered no
// usable endpoint.
type NoEndpointError struct {
	Space string
}

func (e *NoEndpointError) Error() string {
	return fmt.Sprintf("no valid endpoint found on space %q", e.Space)
}

// FilePathError reports a file-like argument whose path failed
// containment validation.
type FilePathError struct {
	Parameter string
	Err       error
}

func (e *FilePathError) Error() string {
	return fmt.Sprintf("invalid file path for parameter %q: %v", e.Parameter, e.Err)
}

func (e *FilePathError) Unwrap() error { return e.Err }

// RemoteError carries the message an error-stage status event reported.
type RemoteError struct {
	Message string
}

func (e *RemoteError) Error() string {
	if e.Message == "" {
		return "endpoint reported an error"
	}
	return e.Message
}

// ErrNoData is returned when the event stream completed without ever
// producing a data payload.
var ErrNoData = errors.New("endpoint returned no data")

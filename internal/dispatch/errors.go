package dispatch

import "fmt"

// ToolNotFoundError is returned when the requested tool is not registered.
// No outbound call is made.
type ToolNotFoundError struct {
	Name string
}

func (e *ToolNotFoundError) Error() string {
	return fmt.Sprintf("tool %q not found", e.Name)
}

// UpstreamError is returned when the outbound call could not be completed.
// An upstream response with any status code is not an UpstreamError.
type UpstreamError struct {
	Tool string
	URL  string
	Err  error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("tool %s: request to %s failed: %v", e.Tool, e.URL, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

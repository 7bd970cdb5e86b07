package protocol

import "fmt"

// UnknownCommandError is returned when a request names a command the
// manifest does not declare.
type UnknownCommandError struct {
	Command string
}

func (e *UnknownCommandError) Error() string {
	return fmt.Sprintf("unknown command: %q", e.Command)
}

// DecodeError is returned when a request argument is not valid JSON or does
// not match the shape derived for its command.
type DecodeError struct {
	// Command is empty when the command tag itself could not be read.
	Command string
	Err     error
}

func (e *DecodeError) Error() string {
	if e.Command == "" {
		return fmt.Sprintf("invalid request: %v", e.Err)
	}
	return fmt.Sprintf("invalid request for command %q: %v", e.Command, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// ValidationError describes one problem found in a manifest.
type ValidationError struct {
	// Path locates the offending field, e.g. "/commands/1/params/0/name".
	Path    string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Path == "" {
		return "invalid manifest: " + e.Message
	}
	return fmt.Sprintf("invalid manifest at %s: %s", e.Path, e.Message)
}

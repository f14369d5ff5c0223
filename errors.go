package pgrestql

import "fmt"

// ParsingError wraps a failure from the upstream PostgreSQL parser. Position
// is the parser's cursor location when one was reported; zero means unknown.
type ParsingError struct {
	Message  string
	Position int
	Hint     string
}

func (e ParsingError) Error() string {
	if e.Hint != "" {
		return fmt.Sprintf("%s: %s", e.Message, e.Hint)
	}
	return e.Message
}

// NewParsingError builds a ParsingError, attaching a hint from the lookup
// table in hints.go when the message matches a known parser complaint.
func NewParsingError(message string, position int) error {
	return ParsingError{
		Message:  message,
		Position: position,
		Hint:     hintForParsingMessage(message),
	}
}

// UnsupportedError marks SQL that is syntactically valid but outside
// PostgREST's subset, or that violates a cross-clause invariant.
type UnsupportedError struct {
	Feature string
	Hint    string
}

func (e UnsupportedError) Error() string {
	if e.Hint != "" {
		return fmt.Sprintf("%s is not supported: %s", e.Feature, e.Hint)
	}
	return fmt.Sprintf("%s is not supported", e.Feature)
}

// NewUnsupportedError creates an UnsupportedError, optionally attaching a hint.
func NewUnsupportedError(feature string, hint ...string) error {
	err := UnsupportedError{Feature: feature}
	if len(hint) > 0 {
		err.Hint = hint[0]
	}
	return err
}

// UnimplementedError marks a known statement kind (INSERT/UPDATE/DELETE/
// EXPLAIN) that is on the roadmap but not wired yet. Distinguished from
// UnsupportedError so callers can tell "never" from "not yet".
type UnimplementedError struct {
	Statement string
}

func (e UnimplementedError) Error() string {
	return fmt.Sprintf("%s statements are not implemented yet", e.Statement)
}

// NewUnimplementedError creates an UnimplementedError for the given statement kind.
func NewUnimplementedError(statement string) error {
	return UnimplementedError{Statement: statement}
}

// RenderError marks a valid request model that a particular renderer cannot
// express.
type RenderError struct {
	Renderer string
	Reason   string
}

func (e RenderError) Error() string {
	return fmt.Sprintf("%s renderer: %s", e.Renderer, e.Reason)
}

// NewRenderError creates a RenderError for the named renderer.
func NewRenderError(renderer, reason string) error {
	return RenderError{Renderer: renderer, Reason: reason}
}

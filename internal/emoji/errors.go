package emoji

import (
	"errors"
	"fmt"
)

// ErrTransformOrder is returned when an emojis transform receives a value
// produced by the wrong stage.
var ErrTransformOrder = errors.New("emoji: unexpected transform input")

// ParseError reports a malformed line in an upstream data file.
type ParseError struct {
	Line   int
	Text   string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %s: %q", e.Line, e.Reason, e.Text)
}

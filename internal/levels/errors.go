package levels

import (
	"errors"
	"fmt"
)

// ErrEmptyResult means no post produced a single level row. It usually points
// at content drift upstream or a line pattern that no longer matches.
var ErrEmptyResult = errors.New("no level rows parsed from posts")

// MalformedDateError is returned when a post carrying level text cannot be dated.
type MalformedDateError struct {
	Link  string
	Value string
	Err   error
}

func (e *MalformedDateError) Error() string {
	return fmt.Sprintf("malformed post date %q (post %s): %v", e.Value, e.Link, e.Err)
}

func (e *MalformedDateError) Unwrap() error { return e.Err }

package storage

import (
	"errors"
	"fmt"
)

// ErrTableNotFound is returned by DescribeSchema when the table does not exist.
var ErrTableNotFound = errors.New("table not found")

// SchemaError reports a target that cannot be written the way it was asked to:
// missing table, no primary key, unknown write mode.
type SchemaError struct {
	Table  string
	Reason string
	Err    error
}

func (e *SchemaError) Error() string {
	msg := "schema error"
	if e.Table != "" {
		msg += " on " + e.Table
	}
	msg += ": " + e.Reason
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *SchemaError) Unwrap() error { return e.Err }

// ReconciliationExecutionError wraps a failure while running the merge of a
// staged batch into its target.
type ReconciliationExecutionError struct {
	Target string
	Mode   WriteMode
	Err    error
}

func (e *ReconciliationExecutionError) Error() string {
	return fmt.Sprintf("reconcile %s into %s: %v", e.Mode, e.Target, e.Err)
}

func (e *ReconciliationExecutionError) Unwrap() error { return e.Err }

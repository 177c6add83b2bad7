package storage

import (
	"fmt"
	"strings"
)

// WriteMode selects how a batch is reconciled with its target table.
type WriteMode string

const (
	// ModeIgnore inserts new keys and leaves existing rows untouched.
	ModeIgnore WriteMode = "ignore"
	// ModeUpsert inserts new keys and overwrites non-key columns of existing ones.
	ModeUpsert WriteMode = "upsert"
	// ModeOverwrite drops and recreates the target from the batch.
	ModeOverwrite WriteMode = "overwrite"
)

// ParseWriteMode validates a configured mode string. Unknown values are a
// *SchemaError.
func ParseWriteMode(s string) (WriteMode, error) {
	switch m := WriteMode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeIgnore, ModeUpsert, ModeOverwrite:
		return m, nil
	}
	return "", &SchemaError{Reason: fmt.Sprintf("invalid write mode %q (want ignore, upsert or overwrite)", s)}
}

func (m WriteMode) String() string { return string(m) }

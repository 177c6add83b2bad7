package models

// SchemaDescriptor describes a live table as reported by the storage engine.
// It is fetched per write operation and never cached.
type SchemaDescriptor struct {
	Columns    []string
	PrimaryKey []string
}

// IsKey reports whether column is part of the primary key.
func (s SchemaDescriptor) IsKey(column string) bool {
	for _, k := range s.PrimaryKey {
		if k == column {
			return true
		}
	}
	return false
}

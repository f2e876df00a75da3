package ingest

import (
	"fmt"
)

// ConfigurationError marks invalid run options. It is fatal and aborts a
// run before anything is fetched.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "invalid configuration: " + e.Reason
}

// MalformedRecordError marks a fetched record missing its external id.
// The item is skipped; the run continues.
type MalformedRecordError struct {
	Kind string
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("malformed %s record: missing external id", e.Kind)
}

// StructuralIntegrityError marks a comment whose parent is neither stored
// nor reconciled earlier in the same run. It aborts the remainder of that
// thread's comment tree; the run continues with the next thread.
type StructuralIntegrityError struct {
	ThreadID  string
	CommentID string
	ParentID  string
}

func (e *StructuralIntegrityError) Error() string {
	return fmt.Sprintf("comment %s in thread %s references unresolved parent %s",
		e.CommentID, e.ThreadID, e.ParentID)
}

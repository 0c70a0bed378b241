// Package model defines the core data types used throughout the mealhow backend.
package model

import (
	"fmt"
	"strings"
)

// JobStatus represents the lifecycle state of a worker-generated record
// (meal plan or shopping list). The API only ever reads these states; the
// generation workers own the transitions.
type JobStatus string

const (
	// JobStatusInProgress indicates a generation job has been dispatched and
	// the worker has not finished yet. At most one record per owner may be in
	// this state at a time.
	JobStatusInProgress JobStatus = "in_progress"
	// JobStatusActive indicates the record is ready and currently in use.
	JobStatusActive JobStatus = "active"
	// JobStatusFailed indicates the worker gave up on the job.
	JobStatusFailed JobStatus = "failed"
	// JobStatusArchived indicates the record was superseded or retired.
	JobStatusArchived JobStatus = "archived"
)

// Valid returns true if the JobStatus is a known state.
func (s JobStatus) Valid() bool {
	switch s {
	case JobStatusInProgress, JobStatusActive, JobStatusFailed, JobStatusArchived:
		return true
	}
	return false
}

// Resolved reports whether the status is terminal from the poll loop's
// perspective, i.e. no longer in progress.
func (s JobStatus) Resolved() bool {
	return s.Valid() && s != JobStatusInProgress
}

// UnmarshalText implements encoding.TextUnmarshaler to allow env/JSON parsing.
func (s *JobStatus) UnmarshalText(text []byte) error {
	v := JobStatus(strings.ToLower(strings.TrimSpace(string(text))))
	if !v.Valid() {
		return fmt.Errorf("invalid JobStatus: %q", string(text))
	}
	*s = v
	return nil
}

package runtable

import "time"

// RunStatus is the orchestrator-reported state of a run.
type RunStatus string

const (
	RunStatusQueued   RunStatus = "QUEUED"
	RunStatusStarted  RunStatus = "STARTED"
	RunStatusSuccess  RunStatus = "SUCCESS"
	RunStatusFailure  RunStatus = "FAILURE"
	RunStatusCanceled RunStatus = "CANCELED"
)

// Run is one execution of a job or pipeline as reported by the backend.
//
// Runs are fetched read-only; nothing in this package mutates them. All
// display state (pin flags, synthesized tags, links) is derived per render
// and lives outside the Run.
type Run struct {
	ID      string
	Status  RunStatus
	JobName string

	// Mode is the run's execution mode. Non-job (legacy pipeline) runs may
	// carry any mode; job runs normally use the default mode.
	Mode  string
	IsJob bool

	// Tags is the raw tag list in backend order. Keys are not guaranteed
	// unique across the list.
	Tags []Tag

	// RepositoryName and LocationName identify the run's origin within the
	// workspace. Either may be empty when the origin was not recorded.
	RepositoryName string
	LocationName   string

	// AssetSelection lists the asset keys targeted by the run, if any.
	AssetSelection []string

	CreationTime time.Time
	StartTime    time.Time
	EndTime      time.Time

	CanTerminate bool
	CanDelete    bool
}

// HasBulkActions reports whether the run grants at least one of the
// permissions the bulk-action checkboxes operate on.
func (r Run) HasBulkActions() bool {
	return r.CanTerminate || r.CanDelete
}

// tagValue returns the value of the first raw tag with the given key.
func (r Run) tagValue(key string) (string, bool) {
	for _, t := range r.Tags {
		if t.Key == key {
			return t.Value, true
		}
	}
	return "", false
}

package runtable

import "strings"

// Well-known tag keys set by the orchestrator.
const (
	// TagParentRunID marks a run as a re-execution of a prior run.
	TagParentRunID = "dagster/parent_run_id"

	// TagBackfill groups runs launched by the same backfill.
	TagBackfill = "dagster/backfill"

	// TagMode is the synthesized execution-mode tag. It is never stored on
	// the Run; it is recomputed from Run fields on every render.
	TagMode = "mode"
)

// DefaultMode is the mode name job runs use unless configured otherwise.
const DefaultMode = "default"

// hiddenTagPrefix marks internal bookkeeping tags that are never displayed.
const hiddenTagPrefix = "."

// Tag is a key-value pair attached to a run.
//
// Pinned and Link are derived per render: Pinned from the user's pin
// preferences, Link for tags that navigate somewhere (currently only the
// backfill tag).
type Tag struct {
	Key   string
	Value string

	Pinned bool
	Link   string
}

// Token returns the filter token emitted when the user selects this tag,
// e.g. "tag:dagster/backfill=abc123".
func (t Tag) Token() string {
	return "tag:" + t.Key + "=" + t.Value
}

// isHidden reports whether the tag is internal bookkeeping that should
// never appear in any display list.
func (t Tag) isHidden() bool {
	return strings.HasPrefix(t.Key, hiddenTagPrefix)
}

// displayTags builds the full display tag list for a run: raw tags minus
// hidden ones, plus the synthesized mode tag when applicable, with pin
// flags resolved against the given store.
//
// The mode tag is included when the run is not a job, or when a job runs
// in a non-default mode. For non-job pipelines the mode tag is always
// shown regardless of value; this matches the backend UI's behavior.
func displayTags(run Run, pins *PinStore) []Tag {
	tags := make([]Tag, 0, len(run.Tags)+1)
	for _, t := range run.Tags {
		if t.isHidden() {
			continue
		}
		tags = append(tags, Tag{
			Key:    t.Key,
			Value:  t.Value,
			Pinned: pins.IsPinned(t.Key),
		})
	}

	if !run.IsJob || run.Mode != DefaultMode {
		tags = append(tags, Tag{
			Key:    TagMode,
			Value:  run.Mode,
			Pinned: pins.IsPinned(TagMode),
		})
	}

	return tags
}

// isReexecution reports whether any raw tag marks the run as a
// re-execution of a parent run.
func isReexecution(run Run) bool {
	_, ok := run.tagValue(TagParentRunID)
	return ok
}

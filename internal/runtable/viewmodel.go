package runtable

// RowViewModel is the render-ready projection of a single run.
//
// It is recomputed from the Run, the pin store, and the workspace resolver
// on every render; nothing here is stored back onto the Run.
type RowViewModel struct {
	Run Run

	// Tags is the full display tag list (hidden bookkeeping tags removed,
	// synthesized mode tag added, pin flags resolved). Shown in the row's
	// tag dialog.
	Tags []Tag

	// SummaryTags is the subset shown inline in the row: the backfill tag
	// first when applicable, then every other pinned tag in original order.
	SummaryTags []Tag

	// BackfillTag is the pinned backfill tag with its link resolved, or nil.
	BackfillTag *Tag

	// IsReexecution is true when the run carries a parent-run tag.
	IsReexecution bool

	// JobLink is the workspace path of the originating job, degraded to a
	// guess link when the run's repository origin cannot be resolved.
	JobLink string
}

// DeriveRow computes the view model for one run.
func DeriveRow(run Run, pins *PinStore, resolver WorkspaceResolver) RowViewModel {
	tags := displayTags(run, pins)

	vm := RowViewModel{
		Run:           run,
		Tags:          tags,
		IsReexecution: isReexecution(run),
		BackfillTag:   backfillTag(run, tags),
		JobLink:       jobLink(run, resolver),
	}
	vm.SummaryTags = summaryTags(tags, vm.BackfillTag)
	return vm
}

// backfillTag finds the pinned backfill tag, if any, and attaches its link:
// a backfill-detail link when the run targets assets, otherwise a run-list
// link filtered by the backfill tag.
func backfillTag(run Run, tags []Tag) *Tag {
	for _, t := range tags {
		if t.Key != TagBackfill || !t.Pinned {
			continue
		}
		bt := t
		if len(run.AssetSelection) > 0 {
			bt.Link = BackfillLink(bt.Value)
		} else {
			bt.Link = RunsFilteredLink(bt.Key, bt.Value)
		}
		return &bt
	}
	return nil
}

// summaryTags orders the inline tag list: the backfill tag first, then
// every other pinned tag in original order. The backfill key is skipped in
// the pass so it is not shown twice. Unpinned tags are excluded here but
// remain visible in the full-tag dialog.
func summaryTags(tags []Tag, backfill *Tag) []Tag {
	out := make([]Tag, 0, len(tags))
	if backfill != nil {
		out = append(out, *backfill)
	}
	for _, t := range tags {
		if !t.Pinned {
			continue
		}
		if backfill != nil && t.Key == TagBackfill {
			continue
		}
		out = append(out, t)
	}
	return out
}

func jobLink(run Run, resolver WorkspaceResolver) string {
	if resolver != nil {
		if path, ok := resolver.ResolveJobPath(run.RepositoryName, run.LocationName, run.JobName); ok {
			return path
		}
	}
	return GuessJobLink(run.JobName)
}

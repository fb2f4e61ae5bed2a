package runtable_test

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/jeremylgl2/dagster/internal/runtable"
)

func jobRun(tags ...runtable.Tag) runtable.Run {
	return runtable.Run{
		ID:      "abcdef01-2345",
		Status:  runtable.RunStatusSuccess,
		JobName: "daily_ingest",
		Mode:    runtable.DefaultMode,
		IsJob:   true,
		Tags:    tags,
	}
}

func tagKeys(tags []runtable.Tag) []string {
	keys := make([]string, len(tags))
	for i, tag := range tags {
		keys[i] = tag.Key
	}
	return keys
}

func TestDeriveRow_Reexecution(t *testing.T) {
	pins := newPinStore(afero.NewMemMapFs())

	vm := runtable.DeriveRow(
		jobRun(runtable.Tag{Key: runtable.TagParentRunID, Value: "parent-1"}),
		pins, nil)
	require.True(t, vm.IsReexecution)

	vm = runtable.DeriveRow(jobRun(), pins, nil)
	require.False(t, vm.IsReexecution)
}

func TestDeriveRow_ModeTag(t *testing.T) {
	pins := newPinStore(afero.NewMemMapFs())

	t.Run("job in default mode has no mode tag", func(t *testing.T) {
		vm := runtable.DeriveRow(jobRun(), pins, nil)
		require.NotContains(t, tagKeys(vm.Tags), runtable.TagMode)
	})

	t.Run("job in non-default mode grows a mode tag", func(t *testing.T) {
		run := jobRun()
		run.Mode = "backfill_mode"
		vm := runtable.DeriveRow(run, pins, nil)
		require.Contains(t, tagKeys(vm.Tags), runtable.TagMode)
		require.Equal(t, "backfill_mode", lastTag(t, vm.Tags).Value)
	})

	t.Run("non-job always shows its mode tag", func(t *testing.T) {
		run := jobRun()
		run.IsJob = false
		vm := runtable.DeriveRow(run, pins, nil)
		require.Contains(t, tagKeys(vm.Tags), runtable.TagMode)
		require.Equal(t, runtable.DefaultMode, lastTag(t, vm.Tags).Value)
	})
}

func lastTag(t *testing.T, tags []runtable.Tag) runtable.Tag {
	t.Helper()
	require.NotEmpty(t, tags)
	return tags[len(tags)-1]
}

func TestDeriveRow_HiddenTagsExcluded(t *testing.T) {
	pins := newPinStore(afero.NewMemMapFs())

	vm := runtable.DeriveRow(jobRun(
		runtable.Tag{Key: ".internal_marker", Value: "1"},
		runtable.Tag{Key: "team", Value: "data"},
	), pins, nil)

	require.Equal(t, []string{"team"}, tagKeys(vm.Tags),
		"dot-prefixed bookkeeping tags should never be displayed")
}

func TestDeriveRow_BackfillLink(t *testing.T) {
	pins := newPinStore(afero.NewMemMapFs())

	t.Run("asset runs link to the backfill detail view", func(t *testing.T) {
		run := jobRun(runtable.Tag{Key: runtable.TagBackfill, Value: "bf1234"})
		run.AssetSelection = []string{"raw/events"}

		vm := runtable.DeriveRow(run, pins, nil)
		require.NotNil(t, vm.BackfillTag)
		require.Equal(t, "/overview/backfills/bf1234", vm.BackfillTag.Link)
	})

	t.Run("non-asset runs link to the filtered run list", func(t *testing.T) {
		run := jobRun(runtable.Tag{Key: runtable.TagBackfill, Value: "bf1234"})

		vm := runtable.DeriveRow(run, pins, nil)
		require.NotNil(t, vm.BackfillTag)
		require.Equal(t, "/runs?tag=dagster/backfill=bf1234", vm.BackfillTag.Link)
	})

	t.Run("unpinned backfill tag yields no backfill tag", func(t *testing.T) {
		unpinning := newPinStore(afero.NewMemMapFs())
		unpinning.TogglePin(runtable.TagBackfill)

		run := jobRun(runtable.Tag{Key: runtable.TagBackfill, Value: "bf1234"})
		vm := runtable.DeriveRow(run, unpinning, nil)
		require.Nil(t, vm.BackfillTag)
	})
}

func TestDeriveRow_SummaryTagOrder(t *testing.T) {
	pins := newPinStore(afero.NewMemMapFs())

	run := jobRun(
		runtable.Tag{Key: "team", Value: "data"},
		runtable.Tag{Key: runtable.TagBackfill, Value: "bf1234"},
		runtable.Tag{Key: "owner", Value: "kim"},
	)
	vm := runtable.DeriveRow(run, pins, nil)

	require.Equal(t, []string{runtable.TagBackfill, "team", "owner"},
		tagKeys(vm.SummaryTags),
		"backfill tag should lead and appear exactly once")
}

func TestDeriveRow_DuplicateTagKeysSurvive(t *testing.T) {
	pins := newPinStore(afero.NewMemMapFs())

	// Tag keys are not unique across the raw list; duplicates must reach
	// both display lists. Only the backfill key is deduplicated, and only
	// in the summary.
	run := jobRun(
		runtable.Tag{Key: "team", Value: "data"},
		runtable.Tag{Key: runtable.TagBackfill, Value: "bf1234"},
		runtable.Tag{Key: "team", Value: "infra"},
		runtable.Tag{Key: runtable.TagBackfill, Value: "bf5678"},
	)
	vm := runtable.DeriveRow(run, pins, nil)

	require.Equal(t,
		[]string{"team", runtable.TagBackfill, "team", runtable.TagBackfill},
		tagKeys(vm.Tags),
		"the full list keeps every duplicate in original order")

	require.Equal(t,
		[]string{runtable.TagBackfill, "team", "team"},
		tagKeys(vm.SummaryTags))
	require.Equal(t, "bf1234", vm.SummaryTags[0].Value,
		"the first backfill tag leads the summary; the rest are deduplicated")
	require.Equal(t, "data", vm.SummaryTags[1].Value)
	require.Equal(t, "infra", vm.SummaryTags[2].Value)
}

func TestDeriveRow_UnpinnedTagsStayInDialogList(t *testing.T) {
	pins := newPinStore(afero.NewMemMapFs())
	pins.TogglePin("team")

	run := jobRun(
		runtable.Tag{Key: "team", Value: "data"},
		runtable.Tag{Key: "owner", Value: "kim"},
	)
	vm := runtable.DeriveRow(run, pins, nil)

	require.Equal(t, []string{"owner"}, tagKeys(vm.SummaryTags),
		"unpinned tags should disappear from the summary")
	require.Equal(t, []string{"team", "owner"}, tagKeys(vm.Tags),
		"unpinned tags should remain in the full dialog list")
}

func TestDeriveRow_JobLink(t *testing.T) {
	pins := newPinStore(afero.NewMemMapFs())
	resolver := runtable.StaticResolver{
		Locations: map[string]bool{"repo@loc": true},
	}

	t.Run("known origins resolve to the workspace path", func(t *testing.T) {
		run := jobRun()
		run.RepositoryName = "repo"
		run.LocationName = "loc"

		vm := runtable.DeriveRow(run, pins, resolver)
		require.Equal(t, "/locations/repo@loc/jobs/daily_ingest", vm.JobLink)
	})

	t.Run("unknown origins degrade to a guess link", func(t *testing.T) {
		run := jobRun()
		run.RepositoryName = "other"
		run.LocationName = "loc"

		vm := runtable.DeriveRow(run, pins, resolver)
		require.Equal(t, "/guess/daily_ingest", vm.JobLink)
	})

	t.Run("missing origin metadata degrades to a guess link", func(t *testing.T) {
		vm := runtable.DeriveRow(jobRun(), pins, resolver)
		require.Equal(t, "/guess/daily_ingest", vm.JobLink)
	})
}

func TestCachingResolver_MemoizesLookups(t *testing.T) {
	calls := 0
	inner := resolverFunc(func(repo, loc, job string) (string, bool) {
		calls++
		return runtable.JobPath(repo, loc, job), true
	})

	cached, err := runtable.NewCachingResolver(inner, 8)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		path, ok := cached.ResolveJobPath("repo", "loc", "daily_ingest")
		require.True(t, ok)
		require.Equal(t, "/locations/repo@loc/jobs/daily_ingest", path)
	}
	require.Equal(t, 1, calls, "repeated lookups should hit the cache")
}

type resolverFunc func(repo, loc, job string) (string, bool)

func (f resolverFunc) ResolveJobPath(repo, loc, job string) (string, bool) {
	return f(repo, loc, job)
}

func TestTagToken(t *testing.T) {
	tag := runtable.Tag{Key: "team", Value: "data"}
	require.Equal(t, "tag:team=data", tag.Token())
}

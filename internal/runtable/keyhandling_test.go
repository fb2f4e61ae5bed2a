package runtable_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jeremylgl2/dagster/internal/runtable"
)

func TestKeys_CursorMovement(t *testing.T) {
	table := newTestTable(runtable.TableParams{})
	table.SetRuns(sampleRuns())

	require.Zero(t, table.TestCursor())

	pressKey(table, "j")
	pressKey(table, "j")
	require.Equal(t, 2, table.TestCursor())

	// Cursor clamps at the list edge.
	pressKey(table, "down")
	require.Equal(t, 2, table.TestCursor())

	pressKey(table, "k")
	require.Equal(t, 1, table.TestCursor())

	pressKey(table, "up")
	pressKey(table, "up")
	require.Zero(t, table.TestCursor())
}

func TestKeys_SpaceTogglesHoveredRun(t *testing.T) {
	table := newTestTable(runtable.TableParams{})
	table.SetRuns(sampleRuns())

	pressKey(table, "space")
	require.True(t, table.TestSelection().IsChecked("aaaa1111-0000"))

	pressKey(table, "space")
	require.False(t, table.TestSelection().IsChecked("aaaa1111-0000"))
}

func TestKeys_RangeToggle(t *testing.T) {
	table := newTestTable(runtable.TableParams{})
	table.SetRuns(sampleRuns())

	pressKey(table, "space") // anchor on the first row
	pressKey(table, "j")
	pressKey(table, "j")
	pressKey(table, "v")

	require.Equal(t,
		[]string{"aaaa1111-0000", "bbbb2222-0000", "cccc3333-0000"},
		table.TestSelection().CheckedIDs())
}

func TestKeys_ToggleAll(t *testing.T) {
	table := newTestTable(runtable.TableParams{})
	table.SetRuns(sampleRuns())

	pressKey(table, "a")
	require.Equal(t, 3, table.TestSelection().Count())

	// With everything checked, "a" clears instead.
	pressKey(table, "a")
	require.Zero(t, table.TestSelection().Count())
}

func TestKeys_EscapePeelsStateInOrder(t *testing.T) {
	table := newTestTable(runtable.TableParams{})
	table.SetRuns(sampleRuns())

	pressKey(table, "space")
	table.SetFilter("daily")
	pressKey(table, "t")
	require.True(t, table.TestDialogOpen("aaaa1111-0000"))

	// First escape closes the dialog.
	pressKey(table, "esc")
	require.False(t, table.TestDialogOpen("aaaa1111-0000"))
	require.Equal(t, "daily", table.TestFilterApplied())

	// Second escape clears the filter.
	pressKey(table, "esc")
	require.Empty(t, table.TestFilterApplied())

	// Third escape clears the selection.
	pressKey(table, "space")
	require.Equal(t, 1, table.TestSelection().Count())
	pressKey(table, "esc")
	require.Zero(t, table.TestSelection().Count())
}

func TestKeys_TagDialogOpensAndCloses(t *testing.T) {
	table := newTestTable(runtable.TableParams{})
	table.SetRuns(sampleRuns())

	pressKey(table, "t")
	require.True(t, table.TestDialogOpen("aaaa1111-0000"))
	require.Contains(t, stripANSI(table.View()), "Tags — aaaa1111-0000")

	pressKey(table, "t")
	require.False(t, table.TestDialogOpen("aaaa1111-0000"))
}

func TestKeys_PinToggleInDialogDoesNotNavigate(t *testing.T) {
	var addedTokens []string
	table := newTestTable(runtable.TableParams{
		OnAddTag: func(token string) { addedTokens = append(addedTokens, token) },
	})
	table.SetRuns(sampleRuns())

	pressKey(table, "t")
	view := stripANSI(table.View())
	require.Contains(t, view, "● team=data", "pinned tags carry the filled marker")

	pressKey(table, "p")
	require.False(t, table.TestPins().IsPinned("team"))
	require.Empty(t, addedTokens, "a pin toggle must not emit a filter token")
	require.True(t, table.TestDialogOpen("aaaa1111-0000"),
		"a pin toggle must not close the dialog")
	require.Contains(t, stripANSI(table.View()), "○ team=data")

	pressKey(table, "p")
	require.True(t, table.TestPins().IsPinned("team"))
}

func TestKeys_EnterInDialogEmitsFilterToken(t *testing.T) {
	var addedTokens []string
	table := newTestTable(runtable.TableParams{
		OnAddTag: func(token string) { addedTokens = append(addedTokens, token) },
	})
	table.SetRuns(sampleRuns())

	pressKey(table, "t")
	pressKey(table, "enter")

	require.Equal(t, []string{"tag:team=data"}, addedTokens)
	require.False(t, table.TestDialogOpen("aaaa1111-0000"),
		"selecting a tag should close the dialog")
}

func TestKeys_DialogCursorMovesWithinTags(t *testing.T) {
	runs := sampleRuns()
	runs[0].Tags = append(runs[0].Tags, runtable.Tag{Key: "owner", Value: "kim"})

	var addedTokens []string
	table := newTestTable(runtable.TableParams{
		OnAddTag: func(token string) { addedTokens = append(addedTokens, token) },
	})
	table.SetRuns(runs)

	pressKey(table, "t")
	pressKey(table, "down")
	require.Equal(t, 1, table.TestDialogCursor())

	pressKey(table, "enter")
	require.Equal(t, []string{"tag:owner=kim"}, addedTokens)
}

func TestKeys_FilterTyping(t *testing.T) {
	table := newTestTable(runtable.TableParams{})
	table.SetRuns(sampleRuns())

	pressKey(table, "/")
	require.True(t, table.TestFilterTyping())

	typeString(table, "hourly")
	pressKey(table, "enter")

	require.False(t, table.TestFilterTyping())
	require.Equal(t, "hourly", table.TestFilterApplied())
	require.Len(t, table.TestRows(), 1)

	pressKey(table, "ctrl+l")
	require.Empty(t, table.TestFilterApplied())
	require.Len(t, table.TestRows(), 3)
}

func TestKeys_FilterEscapeCancelsWithoutApplying(t *testing.T) {
	table := newTestTable(runtable.TableParams{})
	table.SetRuns(sampleRuns())

	pressKey(table, "/")
	typeString(table, "hourly")
	pressKey(table, "esc")

	require.False(t, table.TestFilterTyping())
	require.Empty(t, table.TestFilterApplied())
	require.Len(t, table.TestRows(), 3)
}

func TestKeys_FilterTypingCapturesLetterShortcuts(t *testing.T) {
	table := newTestTable(runtable.TableParams{})
	table.SetRuns(sampleRuns())

	pressKey(table, "/")
	typeString(table, "a") // the toggle-all shortcut, now just input
	require.Zero(t, table.TestSelection().Count())

	pressKey(table, "enter")
	require.Equal(t, "a", table.TestFilterApplied())
}

func TestKeys_HelpOverlay(t *testing.T) {
	table := newTestTable(runtable.TableParams{})
	table.SetRuns(sampleRuns())

	pressKey(table, "h")
	require.True(t, table.TestHelpOpen())

	view := stripANSI(table.View())
	require.Contains(t, view, "Key bindings")
	require.Contains(t, view, "Terminate checked runs")

	// Other shortcuts are inert while help is open.
	pressKey(table, "a")
	require.Zero(t, table.TestSelection().Count())

	pressKey(table, "h")
	require.False(t, table.TestHelpOpen())
}

func TestKeys_BulkActionsFilterByPermission(t *testing.T) {
	var terminated, deleted []string
	table := newTestTable(runtable.TableParams{
		OnTerminate: func(ids []string) { terminated = ids },
		OnDelete:    func(ids []string) { deleted = ids },
	})
	table.SetRuns(sampleRuns())

	pressKey(table, "a") // check all three

	pressKey(table, "T")
	require.Equal(t, []string{"bbbb2222-0000"}, terminated,
		"terminate should only receive runs granting CanTerminate")

	pressKey(table, "D")
	require.Equal(t,
		[]string{"aaaa1111-0000", "bbbb2222-0000", "cccc3333-0000"},
		deleted)
}

func TestKeys_SelectionScopedToFilteredList(t *testing.T) {
	table := newTestTable(runtable.TableParams{})
	table.SetRuns(sampleRuns())

	pressKey(table, "a")
	require.Equal(t, 3, table.TestSelection().Count())

	// Applying a filter changes the list identity and resets selection.
	table.SetFilter("daily")
	require.Zero(t, table.TestSelection().Count())

	pressKey(table, "a")
	require.Equal(t, 2, table.TestSelection().Count(),
		"toggle-all should only cover the filtered list")
}

package runtable

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Column widths for the fixed table cells. Tags and caller-supplied
// columns take whatever width remains.
const (
	runIDColWidth   = 10
	statusColWidth  = 9
	createdColWidth = 16
	jobColWidth     = 24

	createdTimeLayout = "2006-01-02 15:04"
)

// renderRow renders one run row: checkbox, re-execution mark, id, status,
// creation time, job, summary tags, then caller-supplied columns.
func (t *Table) renderRow(vm RowViewModel, rowStyle lipgloss.Style) string {
	cells := make([]string, 0, 8)

	if t.showCheckboxes() {
		box := checkboxUnchecked
		if t.selection.IsChecked(vm.Run.ID) {
			box = checkboxChecked
		}
		cells = append(cells, box)
	}

	id := vm.Run.ID
	if vm.IsReexecution {
		id = reexecutionMark + " " + id
	}
	cells = append(cells,
		padValue(id, runIDColWidth),
		statusStyle(vm.Run.Status).Render(padValue(string(vm.Run.Status), statusColWidth)),
		padValue(t.formatCreated(vm.Run), createdColWidth),
		padValue(vm.Run.JobName, jobColWidth),
		t.renderSummaryTags(vm),
	)

	if t.params.AdditionalColumnsForRow != nil {
		cells = append(cells, t.params.AdditionalColumnsForRow(vm.Run)...)
	}

	return rowStyle.Render(strings.Join(cells, " "))
}

func (t *Table) formatCreated(run Run) string {
	if run.CreationTime.IsZero() {
		return "-"
	}
	return run.CreationTime.Format(createdTimeLayout)
}

// renderSummaryTags renders the inline tag list: backfill first, then the
// remaining pinned tags in original order.
func (t *Table) renderSummaryTags(vm RowViewModel) string {
	if len(vm.SummaryTags) == 0 {
		return ""
	}
	parts := make([]string, 0, len(vm.SummaryTags))
	for _, tag := range vm.SummaryTags {
		parts = append(parts, tagStyle.Render("["+tag.Key+"="+tag.Value+"]"))
	}
	return strings.Join(parts, " ")
}

// ---- Tag dialog ----

// hoveredDialogOpen reports whether the hovered row's tag dialog is open.
func (t *Table) hoveredDialogOpen() bool {
	run, ok := t.hoveredRun()
	return ok && t.dialogOpen[run.ID]
}

// dialogHeight returns the rendered height of the hovered row's dialog.
func (t *Table) dialogHeight() int {
	run, ok := t.hoveredRun()
	if !ok || !t.dialogOpen[run.ID] {
		return 0
	}
	vm := DeriveRow(run, t.params.Pins, t.params.Resolver)
	lines := len(vm.Tags) + 2 // header + job link line
	if t.params.AdditionalActionsForRun != nil {
		lines += len(t.params.AdditionalActionsForRun(run))
	}
	return lines + tagDialogChromeRows
}

// renderTagDialog renders the full tag list for the hovered run when its
// dialog is open. Unlike the summary row, the dialog shows unpinned tags
// too, with a pin marker the user can toggle without navigating.
func (t *Table) renderTagDialog(rows []RowViewModel) string {
	if t.cursor < 0 || t.cursor >= len(rows) {
		return ""
	}
	vm := rows[t.cursor]
	if !t.dialogOpen[vm.Run.ID] {
		return ""
	}

	lines := make([]string, 0, len(vm.Tags)+2)
	lines = append(lines, titleStyle.Render("Tags — "+vm.Run.ID))

	for i, tag := range vm.Tags {
		mark := unpinnedTagMark
		if tag.Pinned {
			mark = pinnedTagMark
		}
		line := mark + " " + tag.Key + "=" + tag.Value
		if tag.Key == TagBackfill && vm.BackfillTag != nil {
			line += "  → " + vm.BackfillTag.Link
		}
		if i == t.dialogCursor {
			line = cursorRowStyle.Render(line)
		}
		lines = append(lines, line)
	}

	lines = append(lines, navInfoStyle.Render("job: "+vm.JobLink))

	if t.params.AdditionalActionsForRun != nil {
		for _, action := range t.params.AdditionalActionsForRun(vm.Run) {
			lines = append(lines, navInfoStyle.Render(action))
		}
	}

	return dialogBorderStyle.Render(strings.Join(lines, "\n"))
}

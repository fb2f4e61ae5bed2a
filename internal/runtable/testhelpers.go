// Test<API> provides a controlled interface for testing internal model state.
// These methods are only exposed for tests in the runtable_test package.
package runtable

// TestSelection returns the selection state machine.
func (t *Table) TestSelection() *Selection {
	return t.selection
}

// TestCursor returns the hovered row index.
func (t *Table) TestCursor() int {
	return t.cursor
}

// TestDialogOpen reports whether the given run's tag dialog is open.
func (t *Table) TestDialogOpen(runID string) bool {
	return t.dialogOpen[runID]
}

// TestDialogCursor returns the selected tag index within the open dialog.
func (t *Table) TestDialogCursor() int {
	return t.dialogCursor
}

// TestFilterApplied returns the applied filter query.
func (t *Table) TestFilterApplied() string {
	return t.filterApplied
}

// TestFilterTyping reports whether the filter input owns the keyboard.
func (t *Table) TestFilterTyping() bool {
	return t.filterTyping
}

// TestPins returns the pin store the table derives rows against.
func (t *Table) TestPins() *PinStore {
	return t.params.Pins
}

// TestRows derives the current row view models, exactly as View does.
func (t *Table) TestRows() []RowViewModel {
	return t.rows()
}

// TestHeaderCheckbox returns the bulk checkbox glyph.
func (t *Table) TestHeaderCheckbox() string {
	return t.headerCheckbox()
}

// TestShowCheckboxes reports whether the bulk-select column is rendered.
func (t *Table) TestShowCheckboxes() bool {
	return t.showCheckboxes()
}

// TestHelpOpen reports whether the help overlay is shown.
func (t *Table) TestHelpOpen() bool {
	return t.helpOpen
}

// TestTable returns the model's table for assertions.
func (m *Model) TestTable() *Table {
	return m.table
}

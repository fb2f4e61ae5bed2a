package runtable

import (
	tea "github.com/charmbracelet/bubbletea"
)

// handleKeyMsg dispatches a key press. Filter input takes priority, then
// the hovered row's open tag dialog, then the global key map.
func (t *Table) handleKeyMsg(msg tea.KeyMsg) tea.Cmd {
	if t.filterTyping {
		return t.handleFilterKey(msg)
	}
	if t.helpOpen {
		return t.handleHelpKey(msg)
	}
	if t.hoveredDialogOpen() {
		return t.handleDialogKey(msg)
	}

	if handler, ok := t.keyMap[normalizeKey(msg.String())]; ok {
		return handler(t, msg)
	}
	return nil
}

// ---- Navigation ----

func (t *Table) handleCursorUp(tea.KeyMsg) tea.Cmd {
	t.moveCursor(-1)
	return nil
}

func (t *Table) handleCursorDown(tea.KeyMsg) tea.Cmd {
	t.moveCursor(1)
	return nil
}

func (t *Table) handlePageUp(tea.KeyMsg) tea.Cmd {
	t.moveCursor(-t.itemsPerPage())
	return nil
}

func (t *Table) handlePageDown(tea.KeyMsg) tea.Cmd {
	t.moveCursor(t.itemsPerPage())
	return nil
}

func (t *Table) handleHome(tea.KeyMsg) tea.Cmd {
	t.cursor, t.top = 0, 0
	return nil
}

func (t *Table) moveCursor(delta int) {
	total := len(t.filtered())
	if total == 0 {
		return
	}
	t.cursor = clamp(t.cursor+delta, 0, total-1)
	t.dialogCursor = 0
	t.ensureCursorVisible()
}

// ---- Selection ----

func (t *Table) handleToggleOne(tea.KeyMsg) tea.Cmd {
	if run, ok := t.hoveredRun(); ok {
		t.selection.ToggleOne(run.ID)
	}
	return nil
}

func (t *Table) handleToggleRange(tea.KeyMsg) tea.Cmd {
	if run, ok := t.hoveredRun(); ok {
		t.selection.ToggleRange(run.ID)
	}
	return nil
}

// handleToggleAll checks every run in the list, or clears the selection
// when everything is already checked.
func (t *Table) handleToggleAll(tea.KeyMsg) tea.Cmd {
	all := t.selection.Size() > 0 && t.selection.Count() == t.selection.Size()
	t.selection.ToggleAll(!all)
	return nil
}

// ---- Help ----

func (t *Table) handleToggleHelp(tea.KeyMsg) tea.Cmd {
	t.helpOpen = !t.helpOpen
	return nil
}

// handleHelpKey keeps the help overlay modal: only h and esc close it.
func (t *Table) handleHelpKey(msg tea.KeyMsg) tea.Cmd {
	switch normalizeKey(msg.String()) {
	case "h", "esc":
		t.helpOpen = false
	}
	return nil
}

// ---- Escape ----

// handleEscape peels back one layer of UI state per press: open dialog,
// then applied filter, then selection.
func (t *Table) handleEscape(tea.KeyMsg) tea.Cmd {
	if run, ok := t.hoveredRun(); ok && t.dialogOpen[run.ID] {
		delete(t.dialogOpen, run.ID)
		return nil
	}
	if t.filterApplied != "" {
		t.clearFilter()
		return nil
	}
	t.selection.ToggleAll(false)
	return nil
}

// ---- Tag dialog ----

func (t *Table) handleToggleTagDialog(tea.KeyMsg) tea.Cmd {
	run, ok := t.hoveredRun()
	if !ok {
		return nil
	}
	if t.dialogOpen[run.ID] {
		delete(t.dialogOpen, run.ID)
	} else {
		t.dialogOpen[run.ID] = true
		t.dialogCursor = 0
	}
	return nil
}

// handleDialogKey processes keys while the hovered row's tag dialog is
// open. Pin toggles must not navigate or emit a filter token; only Enter
// does that.
func (t *Table) handleDialogKey(msg tea.KeyMsg) tea.Cmd {
	run, ok := t.hoveredRun()
	if !ok {
		return nil
	}
	vm := DeriveRow(run, t.params.Pins, t.params.Resolver)

	switch normalizeKey(msg.String()) {
	case "esc", "t":
		delete(t.dialogOpen, run.ID)

	case "up":
		t.dialogCursor = clamp(t.dialogCursor-1, 0, max(len(vm.Tags)-1, 0))

	case "down":
		t.dialogCursor = clamp(t.dialogCursor+1, 0, max(len(vm.Tags)-1, 0))

	case "p":
		if t.dialogCursor < len(vm.Tags) {
			t.params.Pins.TogglePin(vm.Tags[t.dialogCursor].Key)
		}

	case "enter":
		if t.dialogCursor < len(vm.Tags) && t.params.OnAddTag != nil {
			t.params.OnAddTag(vm.Tags[t.dialogCursor].Token())
		}
		delete(t.dialogOpen, run.ID)
	}

	return nil
}

// ---- Filter ----

func (t *Table) handleEnterFilter(tea.KeyMsg) tea.Cmd {
	t.filterTyping = true
	t.filterInput.SetValue(t.filterApplied)
	return t.filterInput.Focus()
}

func (t *Table) handleClearFilter(tea.KeyMsg) tea.Cmd {
	t.clearFilter()
	return nil
}

func (t *Table) clearFilter() {
	t.filterApplied = ""
	t.filterInput.SetValue("")
	t.syncSelection()
	t.clampCursor()
}

// handleFilterKey processes keys while the filter input owns the keyboard.
func (t *Table) handleFilterKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEsc:
		t.filterTyping = false
		t.filterInput.Blur()
		return nil

	case tea.KeyEnter:
		t.filterTyping = false
		t.filterInput.Blur()
		t.filterApplied = t.filterInput.Value()
		t.cursor, t.top = 0, 0
		t.syncSelection()
		return nil
	}

	var cmd tea.Cmd
	t.filterInput, cmd = t.filterInput.Update(msg)
	return cmd
}

// ---- Bulk actions ----

func (t *Table) handleTerminateChecked(tea.KeyMsg) tea.Cmd {
	ids := t.checkedWith(func(r Run) bool { return r.CanTerminate })
	if len(ids) > 0 && t.params.OnTerminate != nil {
		t.params.OnTerminate(ids)
	}
	return nil
}

func (t *Table) handleDeleteChecked(tea.KeyMsg) tea.Cmd {
	ids := t.checkedWith(func(r Run) bool { return r.CanDelete })
	if len(ids) > 0 && t.params.OnDelete != nil {
		t.params.OnDelete(ids)
	}
	return nil
}

// checkedWith returns the checked run IDs that pass the permission check,
// in list order.
func (t *Table) checkedWith(allowed func(Run) bool) []string {
	checked := make(map[string]bool, t.selection.Count())
	for _, id := range t.selection.CheckedIDs() {
		checked[id] = true
	}

	var ids []string
	for _, r := range t.filtered() {
		if checked[r.ID] && allowed(r) {
			ids = append(ids, r.ID)
		}
	}
	return ids
}

package runtable

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeremylgl2/dagster/internal/observability"
)

// RunsMsg delivers a freshly fetched run list to the table.
type RunsMsg struct {
	Runs []Run
}

// RunsFetchErrMsg reports a failed fetch. The table shows it in the status
// bar and keeps rendering the last known list.
type RunsFetchErrMsg struct {
	Err error
}

// TableParams configures a Table.
//
// All callbacks are optional; the table degrades to built-in behavior when
// they are nil.
type TableParams struct {
	Pins     *PinStore
	Resolver WorkspaceResolver
	Logger   *observability.CoreLogger

	// OnAddTag is invoked when the user requests filtering by a tag
	// selected in a row's tag dialog. The token has the form
	// "tag:key=value".
	OnAddTag func(token string)

	// OnTerminate and OnDelete receive the checked run IDs when the
	// corresponding bulk action fires. Execution is the caller's concern.
	OnTerminate func(ids []string)
	OnDelete    func(ids []string)

	// AdditionalColumnsForRow supplies extra cells appended to each row.
	AdditionalColumnsForRow func(run Run) []string

	// AdditionalActionsForRun supplies extra action labels shown in the
	// hovered run's tag dialog.
	AdditionalActionsForRun func(run Run) []string

	// EmptyState overrides the view shown when there are no runs and no
	// filter is active.
	EmptyState func() string

	// ActionBarSlot supplies extra content appended to the bulk action bar.
	ActionBarSlot func() string
}

// Table is the run-listing table.
//
// It renders one of three states — empty, empty-filtered, populated — as a
// pure function of the input list length and the active filter. Selection
// is scoped to the rendered list and resets when the list identity
// changes. Row view models are re-derived on every render so a pin toggle
// on one row is reflected by every row immediately.
type Table struct {
	params TableParams
	keyMap map[string]func(*Table, tea.KeyMsg) tea.Cmd

	runs      []Run
	selection *Selection

	// cursor indexes the hovered row within the filtered list. The hovered
	// row is the one keyboard shortcuts (tag dialog, toggles) act on.
	cursor int
	top    int

	filterInput   textinput.Model
	filterTyping  bool
	filterApplied string

	// dialogOpen tracks, per run ID, whether that row's tag dialog is
	// open. Only the hovered row's dialog is rendered and interactive.
	dialogOpen   map[string]bool
	dialogCursor int

	status   string
	helpOpen bool

	logger *observability.CoreLogger

	width, height int
}

// NewTable creates an empty table.
func NewTable(params TableParams) *Table {
	if params.Logger == nil {
		params.Logger = observability.NewNoOpLogger()
	}
	if params.Pins == nil {
		params.Pins = NewPinStore(nil, "", params.Logger)
	}

	input := textinput.New()
	input.Prompt = "Filter: "
	input.Placeholder = "job, run id, or tag"

	return &Table{
		params:      params,
		keyMap:      buildKeyMap(TableKeyBindings()),
		selection:   NewSelection(nil),
		filterInput: input,
		dialogOpen:  make(map[string]bool),
		logger:      params.Logger,
	}
}

// SetRuns replaces the displayed run list.
//
// Selection is preserved when the (filtered) list identity is unchanged
// and reset otherwise.
func (t *Table) SetRuns(runs []Run) {
	t.runs = runs
	t.status = ""
	t.syncSelection()
	t.clampCursor()
	t.pruneDialogs()
}

// SetFilter applies a filter query programmatically, e.g. when a parent
// turns a clicked tag into a filter.
func (t *Table) SetFilter(query string) {
	t.filterApplied = query
	t.filterInput.SetValue(query)
	t.cursor, t.top = 0, 0
	t.syncSelection()
}

// SetSize updates the table dimensions.
func (t *Table) SetSize(width, height int) {
	t.width, t.height = width, height
	t.clampCursor()
}

// Init implements the component init hook; the table itself starts no
// commands.
func (t *Table) Init() tea.Cmd {
	return nil
}

// Update processes one message. All state transitions complete
// synchronously within the call.
func (t *Table) Update(msg tea.Msg) tea.Cmd {
	switch m := msg.(type) {
	case tea.WindowSizeMsg:
		t.SetSize(m.Width, m.Height)

	case RunsMsg:
		t.SetRuns(m.Runs)

	case RunsFetchErrMsg:
		if m.Err != nil {
			t.status = "fetch failed: " + m.Err.Error()
			t.logger.CaptureError(fmt.Errorf("runtable: fetch runs: %w", m.Err))
		}

	case tea.KeyMsg:
		return t.handleKeyMsg(m)
	}

	return nil
}

// ---- Derivation ----

// filtered returns the runs matching the applied filter, in input order.
func (t *Table) filtered() []Run {
	if t.filterApplied == "" {
		return t.runs
	}
	out := make([]Run, 0, len(t.runs))
	for _, r := range t.runs {
		if t.matchesFilter(r) {
			out = append(out, r)
		}
	}
	return out
}

// matchesFilter reports whether a run matches the applied filter query.
// The query matches run IDs, job names, statuses, and tag tokens,
// case-insensitively.
func (t *Table) matchesFilter(r Run) bool {
	q := strings.ToLower(t.filterApplied)
	if strings.Contains(strings.ToLower(r.ID), q) ||
		strings.Contains(strings.ToLower(r.JobName), q) ||
		strings.Contains(strings.ToLower(string(r.Status)), q) {
		return true
	}
	for _, tag := range r.Tags {
		if strings.Contains(strings.ToLower(tag.Key+"="+tag.Value), q) {
			return true
		}
	}
	return false
}

// filterOn reports whether a filter is active, either applied or being
// typed. It distinguishes the empty-filtered state from the empty state.
func (t *Table) filterOn() bool {
	return t.filterApplied != "" || t.filterTyping
}

// rows derives the view model for every filtered run against the current
// pin store. Called once per render; never cached across renders.
func (t *Table) rows() []RowViewModel {
	runs := t.filtered()
	rows := make([]RowViewModel, len(runs))
	for i, r := range runs {
		rows[i] = DeriveRow(r, t.params.Pins, t.params.Resolver)
	}
	return rows
}

// syncSelection resets the selection when the filtered list identity
// changed.
func (t *Table) syncSelection() {
	ids := t.filteredIDs()
	if !t.selection.SameIdentity(ids) {
		t.selection.Reset(ids)
	}
}

func (t *Table) filteredIDs() []string {
	runs := t.filtered()
	ids := make([]string, len(runs))
	for i, r := range runs {
		ids[i] = r.ID
	}
	return ids
}

// hoveredRun returns the run under the cursor, if any.
func (t *Table) hoveredRun() (Run, bool) {
	runs := t.filtered()
	if len(runs) == 0 || t.cursor < 0 || t.cursor >= len(runs) {
		return Run{}, false
	}
	return runs[t.cursor], true
}

// pruneDialogs drops dialog state for runs that left the list.
func (t *Table) pruneDialogs() {
	present := make(map[string]bool, len(t.runs))
	for _, r := range t.runs {
		present[r.ID] = true
	}
	for id := range t.dialogOpen {
		if !present[id] {
			delete(t.dialogOpen, id)
		}
	}
}

// showCheckboxes reports whether the bulk-select column is rendered:
// only when at least one run in the list grants terminate-or-delete.
func (t *Table) showCheckboxes() bool {
	for _, r := range t.filtered() {
		if r.HasBulkActions() {
			return true
		}
	}
	return false
}

// headerCheckbox returns the bulk checkbox glyph: a pure function of the
// checked count vs. the list length.
func (t *Table) headerCheckbox() string {
	n := t.selection.Count()
	switch {
	case n == 0:
		return checkboxUnchecked
	case n == t.selection.Size():
		return checkboxChecked
	default:
		return checkboxIndeterminate
	}
}

// ---- Layout ----

// itemsPerPage returns how many rows fit in the current content area.
func (t *Table) itemsPerPage() int {
	reserved := StatusBarHeight + tableHeaderLines
	if t.selection.Count() > 0 {
		reserved += actionBarLines
	}
	if t.hoveredDialogOpen() {
		reserved += t.dialogHeight()
	}
	return max(t.height-reserved, 1)
}

func (t *Table) clampCursor() {
	total := len(t.filtered())
	if total == 0 {
		t.cursor, t.top = 0, 0
		return
	}
	t.cursor = clamp(t.cursor, 0, total-1)
	t.ensureCursorVisible()
}

func (t *Table) ensureCursorVisible() {
	ipp := t.itemsPerPage()
	if t.cursor < t.top {
		t.top = t.cursor
	}
	if t.cursor >= t.top+ipp {
		t.top = t.cursor - ipp + 1
	}
	t.top = max(t.top, 0)
}

// ---- Rendering ----

// View renders the table. The rendered state is a pure function of the
// run list, the filter, the selection, and the pin store.
func (t *Table) View() string {
	if t.width <= 0 || t.height <= 0 {
		return "Loading..."
	}
	if t.helpOpen {
		return lipgloss.Place(t.width, t.height, lipgloss.Left, lipgloss.Top, t.renderHelp())
	}

	rows := t.rows()

	var body string
	switch {
	case len(t.runs) == 0 && !t.filterOn():
		body = t.renderEmptyState()
	case len(rows) == 0:
		body = emptyStateStyle.Render("No runs matching this filter.")
	default:
		body = t.renderRows(rows)
	}

	sections := []string{
		t.renderTitle(len(rows)),
		t.renderColumnHeader(),
		body,
	}
	if bar := t.renderActionBar(); bar != "" {
		sections = append(sections, bar)
	}
	if dialog := t.renderTagDialog(rows); dialog != "" {
		sections = append(sections, dialog)
	}
	sections = append(sections, t.renderStatusBar(len(rows)))

	view := lipgloss.JoinVertical(lipgloss.Left, sections...)
	return lipgloss.Place(t.width, t.height, lipgloss.Left, lipgloss.Top, view)
}

// renderHelp lists every key binding, grouped by category.
func (t *Table) renderHelp() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Key bindings"))
	b.WriteString("\n")
	for _, category := range TableKeyBindings() {
		b.WriteString("\n")
		b.WriteString(columnHeaderStyle.Render(category.Name))
		b.WriteString("\n")
		for _, binding := range category.Bindings {
			keys := padValue(strings.Join(binding.Keys, "/"), 14)
			b.WriteString("  " + keys + " " + binding.Description + "\n")
		}
	}
	b.WriteString("\n" + navInfoStyle.Render("h or esc to close"))
	return b.String()
}

func (t *Table) renderEmptyState() string {
	if t.params.EmptyState != nil {
		return t.params.EmptyState()
	}
	return emptyStateStyle.Render("No runs yet. Launch a run to see it here.")
}

// renderTitle renders "Runs [X-Y of N]" (or "[N items]" for single-page).
func (t *Table) renderTitle(total int) string {
	title := titleStyle.Render("Runs")

	info := ""
	if total > 0 {
		ipp := t.itemsPerPage()
		if ipp > 0 && total > ipp {
			end := min(t.top+ipp, total)
			// X-Y are 1-based indices for the visible window.
			info = fmt.Sprintf(" [%d-%d of %d]", t.top+1, end, total)
		} else {
			info = fmt.Sprintf(" [%d items]", total)
		}
	}

	return title + navInfoStyle.Render(info)
}

func (t *Table) renderColumnHeader() string {
	cells := make([]string, 0, 6)
	if t.showCheckboxes() {
		cells = append(cells, t.headerCheckbox())
	}
	cells = append(cells,
		padValue("Run ID", runIDColWidth),
		padValue("Status", statusColWidth),
		padValue("Created", createdColWidth),
		padValue("Job", jobColWidth),
		"Tags",
	)
	return columnHeaderStyle.Render(strings.Join(cells, " "))
}

// renderRows renders the visible window with zebra background and cursor
// highlight.
func (t *Table) renderRows(rows []RowViewModel) string {
	ipp := t.itemsPerPage()
	end := min(t.top+ipp, len(rows))

	lines := make([]string, 0, end-t.top)
	for i := t.top; i < end; i++ {
		style := evenRowStyle
		if (i-t.top)%2 == 1 {
			style = oddRowStyle
		}
		if i == t.cursor {
			style = cursorRowStyle
		}
		lines = append(lines, t.renderRow(rows[i], style))
	}
	return strings.Join(lines, "\n")
}

// renderActionBar renders the bulk action bar when anything is checked.
func (t *Table) renderActionBar() string {
	n := t.selection.Count()
	if n == 0 {
		return ""
	}

	parts := []string{fmt.Sprintf("%d selected", n)}
	if t.anyCheckedCan(func(r Run) bool { return r.CanTerminate }) {
		parts = append(parts, "T: terminate")
	}
	if t.anyCheckedCan(func(r Run) bool { return r.CanDelete }) {
		parts = append(parts, "D: delete")
	}
	if t.params.ActionBarSlot != nil {
		if slot := t.params.ActionBarSlot(); slot != "" {
			parts = append(parts, slot)
		}
	}
	return actionBarStyle.Render(strings.Join(parts, " • "))
}

func (t *Table) anyCheckedCan(allowed func(Run) bool) bool {
	return len(t.checkedWith(allowed)) > 0
}

func (t *Table) renderStatusBar(total int) string {
	statusText := t.buildStatusText(total)
	helpText := t.buildHelpText()

	innerWidth := max(t.width-2*StatusBarPadding, 0)
	spaceForHelp := max(innerWidth-lipgloss.Width(statusText), 0)
	rightAligned := lipgloss.PlaceHorizontal(spaceForHelp, lipgloss.Right, helpText)

	return statusBarStyle.
		Width(t.width).
		MaxWidth(t.width).
		Render(statusText + rightAligned)
}

func (t *Table) buildStatusText(total int) string {
	// Filter input mode has top priority.
	if t.filterTyping {
		return t.filterInput.View()
	}
	if t.status != "" {
		return t.status
	}
	if t.filterApplied != "" {
		return fmt.Sprintf("Filter: %q [%d/%d] (/ to change, ctrl+l to clear)",
			t.filterApplied, total, len(t.runs))
	}
	return fmt.Sprintf("%d runs", len(t.runs))
}

func (t *Table) buildHelpText() string {
	if t.filterTyping {
		return ""
	}
	return "h: help"
}

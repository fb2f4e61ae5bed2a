package runtable

import (
	tea "github.com/charmbracelet/bubbletea"
)

// KeyBinding defines a key binding for a particular target type.
//
// If Handler is nil, the binding is shown in the help line but is not
// dispatched through the key map (useful for documentation-only bindings
// handled by a parent model).
type KeyBinding[T any] struct {
	Keys        []string
	Description string
	Handler     func(*T, tea.KeyMsg) tea.Cmd
}

// BindingCategory groups related key bindings (primarily for help display).
type BindingCategory[T any] struct {
	Name     string
	Bindings []KeyBinding[T]
}

// TableKeyBindings returns the key bindings of the run table.
func TableKeyBindings() []BindingCategory[Table] {
	return []BindingCategory[Table]{
		{
			Name: "General",
			Bindings: []KeyBinding[Table]{
				{
					Keys:        []string{"q", "ctrl+c"},
					Description: "Quit",
				},
				{
					Keys:        []string{"h"},
					Description: "Toggle help",
					Handler:     (*Table).handleToggleHelp,
				},
				{
					Keys:        []string{"esc"},
					Description: "Close dialog / clear filter / clear selection",
					Handler:     (*Table).handleEscape,
				},
			},
		},
		{
			Name: "Navigation",
			Bindings: []KeyBinding[Table]{
				{
					Keys:        []string{"up", "k"},
					Description: "Previous run",
					Handler:     (*Table).handleCursorUp,
				},
				{
					Keys:        []string{"down", "j"},
					Description: "Next run",
					Handler:     (*Table).handleCursorDown,
				},
				{
					Keys:        []string{"pgup", "left"},
					Description: "Previous page",
					Handler:     (*Table).handlePageUp,
				},
				{
					Keys:        []string{"pgdown", "right"},
					Description: "Next page",
					Handler:     (*Table).handlePageDown,
				},
				{
					Keys:        []string{"home"},
					Description: "Jump to first run",
					Handler:     (*Table).handleHome,
				},
			},
		},
		{
			Name: "Selection",
			Bindings: []KeyBinding[Table]{
				{
					Keys:        []string{"space"},
					Description: "Check/uncheck the hovered run",
					Handler:     (*Table).handleToggleOne,
				},
				{
					Keys:        []string{"v"},
					Description: "Extend check/uncheck from the last toggled run",
					Handler:     (*Table).handleToggleRange,
				},
				{
					Keys:        []string{"a"},
					Description: "Check all / clear all",
					Handler:     (*Table).handleToggleAll,
				},
			},
		},
		{
			Name: "Tags",
			Bindings: []KeyBinding[Table]{
				{
					Keys:        []string{"t"},
					Description: "Toggle the hovered run's tag dialog",
					Handler:     (*Table).handleToggleTagDialog,
				},
				{
					Keys:        []string{"p"},
					Description: "Pin/unpin the selected tag (in dialog)",
				},
				{
					Keys:        []string{"enter"},
					Description: "Filter by the selected tag (in dialog)",
				},
			},
		},
		{
			Name: "Filter",
			Bindings: []KeyBinding[Table]{
				{
					Keys:        []string{"/"},
					Description: "Filter runs",
					Handler:     (*Table).handleEnterFilter,
				},
				{
					Keys:        []string{"ctrl+l"},
					Description: "Clear filter",
					Handler:     (*Table).handleClearFilter,
				},
			},
		},
		{
			Name: "Bulk actions",
			Bindings: []KeyBinding[Table]{
				{
					Keys:        []string{"T"},
					Description: "Terminate checked runs",
					Handler:     (*Table).handleTerminateChecked,
				},
				{
					Keys:        []string{"D"},
					Description: "Delete checked runs",
					Handler:     (*Table).handleDeleteChecked,
				},
			},
		},
	}
}

// buildKeyMap builds a fast lookup map from key string to handler.
func buildKeyMap[T any](categories []BindingCategory[T]) map[string]func(*T, tea.KeyMsg) tea.Cmd {
	keyMap := make(map[string]func(*T, tea.KeyMsg) tea.Cmd)
	for _, category := range categories {
		for _, binding := range category.Bindings {
			if binding.Handler == nil {
				continue
			}
			for _, key := range binding.Keys {
				keyMap[normalizeKey(key)] = binding.Handler
			}
		}
	}
	return keyMap
}

// normalizeKey normalizes Bubble Tea's KeyMsg.String() into a stable key
// used by our maps.
//
// Bubble Tea has historically reported space as " " in some situations; we
// want a help-friendly, explicit key name.
func normalizeKey(key string) string {
	if key == " " {
		return "space"
	}
	return key
}

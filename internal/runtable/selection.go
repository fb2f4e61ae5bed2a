package runtable

// Selection tracks which run IDs are checked in the currently rendered
// list.
//
// It is an explicit state machine with two operations (ToggleOne,
// ToggleAll) and one piece of memory: the last-toggled id, which anchors
// range toggles. Selection is scoped to one table instance; it is reset
// when the list identity changes and is never persisted.
type Selection struct {
	ids     []string
	index   map[string]int
	checked map[string]bool

	// last is the id most recently passed to ToggleOne or ToggleRange.
	last string
}

// NewSelection creates an empty selection over the given id list.
func NewSelection(ids []string) *Selection {
	s := &Selection{}
	s.Reset(ids)
	return s
}

// Reset replaces the id list and clears all selection state.
func (s *Selection) Reset(ids []string) {
	s.ids = append([]string(nil), ids...)
	s.index = make(map[string]int, len(ids))
	for i, id := range ids {
		s.index[id] = i
	}
	s.checked = make(map[string]bool, len(ids))
	s.last = ""
}

// SameIdentity reports whether the given ordered id list matches the one
// the selection was built over.
func (s *Selection) SameIdentity(ids []string) bool {
	if len(ids) != len(s.ids) {
		return false
	}
	for i, id := range ids {
		if s.ids[i] != id {
			return false
		}
	}
	return true
}

// ToggleOne flips the checked state of a single id and records it as the
// range anchor. Unknown ids are no-ops.
func (s *Selection) ToggleOne(id string) {
	if _, ok := s.index[id]; !ok {
		return
	}
	s.setChecked(id, !s.checked[id])
	s.last = id
}

// ToggleRange applies a shift-click style range toggle: every id between
// the last-toggled id and the given one, inclusive, in list order, is set
// to the anchor's checked state.
//
// Without a valid anchor this degrades to ToggleOne. Applying the same
// range toggle twice with fixed endpoints yields the same end state as
// once: the whole range already carries the anchor's state after the
// first application.
func (s *Selection) ToggleRange(id string) {
	to, ok := s.index[id]
	if !ok {
		return
	}
	from, ok := s.index[s.last]
	if !ok {
		s.ToggleOne(id)
		return
	}

	target := s.checked[s.last]
	if from > to {
		from, to = to, from
	}
	for i := from; i <= to; i++ {
		s.setChecked(s.ids[i], target)
	}
	s.last = id
}

// ToggleAll checks every id in the list or clears the whole selection.
func (s *Selection) ToggleAll(checked bool) {
	if !checked {
		s.checked = make(map[string]bool, len(s.ids))
		return
	}
	for _, id := range s.ids {
		s.checked[id] = true
	}
}

// IsChecked reports whether the id is currently checked.
func (s *Selection) IsChecked(id string) bool {
	return s.checked[id]
}

// Count returns the number of checked ids.
func (s *Selection) Count() int {
	return len(s.checked)
}

// Size returns the number of ids the selection ranges over.
func (s *Selection) Size() int {
	return len(s.ids)
}

// CheckedIDs returns the checked ids in list order.
func (s *Selection) CheckedIDs() []string {
	out := make([]string, 0, len(s.checked))
	for _, id := range s.ids {
		if s.checked[id] {
			out = append(out, id)
		}
	}
	return out
}

// LastToggled returns the current range anchor, or "" if none.
func (s *Selection) LastToggled() string {
	return s.last
}

func (s *Selection) setChecked(id string, checked bool) {
	if checked {
		s.checked[id] = true
	} else {
		delete(s.checked, id)
	}
}

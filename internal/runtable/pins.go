package runtable

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/spf13/afero"

	"github.com/jeremylgl2/dagster/internal/observability"
)

// PinStore holds the user's tag-pin preferences: an ordered list of tag
// keys that were explicitly unpinned. Every key is pinned by default.
//
// The list is persisted as a JSON array of strings at a fixed path and is
// shared across all rows: unpinning a key on one row hides that tag from
// the summary list of every row on the next render. Corrupted or foreign
// stored values degrade to the empty list; persistence failures are logged
// and never surface to the render path.
type PinStore struct {
	mu sync.Mutex

	fs   afero.Fs
	path string

	unpinned []string

	logger *observability.CoreLogger
}

// NewPinStore loads pin preferences from path, tolerating a missing or
// unreadable file.
func NewPinStore(fs afero.Fs, path string, logger *observability.CoreLogger) *PinStore {
	if fs == nil {
		fs = afero.NewMemMapFs()
	}
	if path == "" {
		path = "unpinned_tags.json"
	}
	if logger == nil {
		logger = observability.NewNoOpLogger()
	}
	p := &PinStore{
		fs:     fs,
		path:   path,
		logger: logger,
	}
	p.unpinned = p.load()
	return p
}

// IsPinned reports whether a tag key is pinned. Keys are pinned unless
// explicitly unpinned.
func (p *PinStore) IsPinned(key string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.indexOf(key) == -1
}

// TogglePin flips the pin state of a key and persists the new list.
//
// TogglePin is its own inverse: calling it twice restores the original
// state for the key.
func (p *PinStore) TogglePin(key string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if i := p.indexOf(key); i != -1 {
		p.unpinned = append(p.unpinned[:i], p.unpinned[i+1:]...)
	} else {
		p.unpinned = append(p.unpinned, key)
	}

	if err := p.save(); err != nil {
		p.logger.CaptureError(fmt.Errorf("runtable: persist pin preferences: %w", err))
	}
}

// UnpinnedKeys returns a copy of the unpinned key list in toggle order.
func (p *PinStore) UnpinnedKeys() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.unpinned...)
}

func (p *PinStore) indexOf(key string) int {
	for i, k := range p.unpinned {
		if k == key {
			return i
		}
	}
	return -1
}

// load reads the persisted list. Anything that is not a JSON list of
// strings (missing file, corrupt data, a foreign value written by another
// tool) yields the empty list.
func (p *PinStore) load() []string {
	data, err := afero.ReadFile(p.fs, p.path)
	if err != nil {
		return nil
	}

	var keys []string
	if err := json.Unmarshal(data, &keys); err != nil {
		p.logger.CaptureWarn("runtable: ignoring malformed pin preferences",
			"path", p.path, "error", err.Error())
		return nil
	}
	return keys
}

func (p *PinStore) save() error {
	data, err := json.Marshal(p.unpinned)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(p.path); dir != "." {
		if err := p.fs.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return afero.WriteFile(p.fs, p.path, data, 0o644)
}

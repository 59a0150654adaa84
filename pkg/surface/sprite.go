package surface

import "sync"

// SpriteHandle identifies an interned sprite name. Zero is "no sprite".
type SpriteHandle uint32

// SpriteTable interns sprite names. Texture lookup happens elsewhere; the
// table only guarantees that equal names share a handle.
type SpriteTable struct {
	mu    sync.RWMutex
	ids   map[string]SpriteHandle
	names []string
}

// NewSpriteTable returns a table holding only the empty sprite.
func NewSpriteTable() *SpriteTable {
	return &SpriteTable{ids: map[string]SpriteHandle{"": 0}, names: []string{""}}
}

// Sprites is the process-wide sprite table.
var Sprites = NewSpriteTable()

// Intern returns the handle for name. The empty name is handle 0.
func (t *SpriteTable) Intern(name string) SpriteHandle {
	t.mu.RLock()
	h, ok := t.ids[name]
	t.mu.RUnlock()
	if ok {
		return h
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if h, ok := t.ids[name]; ok {
		return h
	}
	h = SpriteHandle(len(t.names))
	t.names = append(t.names, name)
	t.ids[name] = h
	return h
}

// Name returns the sprite name for h, or "" when unknown.
func (t *SpriteTable) Name(h SpriteHandle) string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if int(h) >= len(t.names) {
		return ""
	}
	return t.names[h]
}

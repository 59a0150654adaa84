// Package surface interns the paintable surfaces of a model and the sprite
// names layers refer to. Polygon records store only the integer handles.
package surface

import (
	"fmt"
	"sync"
)

// Topology describes how a surface is generated.
type Topology uint8

const (
	// Tiled surfaces repeat a texture across block faces.
	Tiled Topology = iota
	// Cylindrical surfaces wrap around an axis.
	Cylindrical
	// Toroidal surfaces wrap in two directions.
	Toroidal
)

// Flags are per-surface rendering hints.
type Flags uint8

const (
	// IgnoreDepthForRandomize disables depth when choosing texture variants.
	IgnoreDepthForRandomize Flags = 1 << iota
	// NoBorder suppresses border textures on the surface.
	NoBorder
	// Lamp marks a surface that emits light regardless of paint.
	Lamp
)

// Surface is a named paint target shared by the polygons of one model part.
type Surface struct {
	Name     string
	Topology Topology
	Flags    Flags
}

// Handle identifies an interned surface. Zero is the nil surface.
type Handle uint32

// Nil is the handle of the absent surface.
const Nil Handle = 0

// Registry interns surfaces. It is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	byName  map[string]Handle
	entries []*Surface
}

// NewRegistry returns a registry holding only the nil surface.
func NewRegistry() *Registry {
	return &Registry{
		byName:  make(map[string]Handle),
		entries: []*Surface{nil},
	}
}

// Default is the process-wide registry used by the DSL and mesh emitters.
var Default = NewRegistry()

// Intern returns the handle for s, registering it on first use. A surface
// with the same name but different attributes is an error.
func (r *Registry) Intern(s *Surface) (Handle, error) {
	if s == nil {
		return Nil, nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if h, ok := r.byName[s.Name]; ok {
		if existing := r.entries[h]; *existing != *s {
			return Nil, fmt.Errorf("surface: %q already registered with different attributes", s.Name)
		}
		return h, nil
	}
	cp := *s
	h := Handle(len(r.entries))
	r.entries = append(r.entries, &cp)
	r.byName[s.Name] = h
	return h, nil
}

// MustIntern is Intern that panics on conflict.
func (r *Registry) MustIntern(s *Surface) Handle {
	h, err := r.Intern(s)
	if err != nil {
		panic(err.Error())
	}
	return h
}

// Lookup returns the surface for h, or nil for Nil and unknown handles.
func (r *Registry) Lookup(h Handle) *Surface {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if int(h) >= len(r.entries) {
		return nil
	}
	return r.entries[h]
}

// ByName returns the handle registered under name.
func (r *Registry) ByName(name string) (Handle, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.byName[name]
	return h, ok
}

// Len returns the number of registered surfaces, excluding the nil surface.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries) - 1
}

// List is an ordered set of surfaces declared together for one model.
type List struct {
	reg     *Registry
	handles []Handle
}

// Builder collects surfaces for a List.
type Builder struct {
	reg  *Registry
	list []*Surface
}

// NewList starts a surface list backed by reg (Default when nil).
func NewList(reg *Registry) *Builder {
	if reg == nil {
		reg = Default
	}
	return &Builder{reg: reg}
}

// Add appends a surface to the list.
func (b *Builder) Add(name string, topology Topology, flags Flags) *Builder {
	b.list = append(b.list, &Surface{Name: name, Topology: topology, Flags: flags})
	return b
}

// Build interns every surface and returns the list.
func (b *Builder) Build() (*List, error) {
	l := &List{reg: b.reg, handles: make([]Handle, 0, len(b.list))}
	for _, s := range b.list {
		h, err := b.reg.Intern(s)
		if err != nil {
			return nil, err
		}
		l.handles = append(l.handles, h)
	}
	return l, nil
}

// Len returns the number of surfaces in the list.
func (l *List) Len() int { return len(l.handles) }

// Handle returns the i'th surface handle.
func (l *List) Handle(i int) Handle { return l.handles[i] }

// Get returns the i'th surface.
func (l *List) Get(i int) *Surface { return l.reg.Lookup(l.handles[i]) }

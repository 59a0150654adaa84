package surface

import (
	"sync"
	"testing"
)

func TestInternDeduplicates(t *testing.T) {
	r := NewRegistry()
	a := r.MustIntern(&Surface{Name: "main", Topology: Tiled})
	b := r.MustIntern(&Surface{Name: "main", Topology: Tiled})
	c := r.MustIntern(&Surface{Name: "cut", Topology: Tiled, Flags: NoBorder})

	if a == Nil || c == Nil {
		t.Fatal("interned surfaces must not get the nil handle")
	}
	if a != b {
		t.Errorf("same surface interned twice: %d != %d", a, b)
	}
	if a == c {
		t.Error("different surfaces share a handle")
	}
	if r.Len() != 2 {
		t.Errorf("Len() = %d, want 2", r.Len())
	}
	if got := r.Lookup(c); got == nil || got.Name != "cut" || got.Flags != NoBorder {
		t.Errorf("Lookup(%d) = %+v", c, got)
	}
	if r.Lookup(Nil) != nil {
		t.Error("Lookup(Nil) should be nil")
	}
	if r.Lookup(99) != nil {
		t.Error("Lookup of unknown handle should be nil")
	}
}

func TestInternConflict(t *testing.T) {
	r := NewRegistry()
	r.MustIntern(&Surface{Name: "main"})
	if _, err := r.Intern(&Surface{Name: "main", Topology: Cylindrical}); err == nil {
		t.Fatal("expected conflict error")
	}
	if h, err := r.Intern(nil); err != nil || h != Nil {
		t.Errorf("Intern(nil) = %d, %v", h, err)
	}
}

func TestListBuilder(t *testing.T) {
	r := NewRegistry()
	l, err := NewList(r).
		Add("outer", Tiled, 0).
		Add("inner", Tiled, Lamp).
		Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if l.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", l.Len())
	}
	if l.Get(1).Name != "inner" || l.Get(1).Flags&Lamp == 0 {
		t.Errorf("Get(1) = %+v", l.Get(1))
	}
	if h, ok := r.ByName("outer"); !ok || h != l.Handle(0) {
		t.Errorf("ByName(outer) = %d, %v", h, ok)
	}
}

func TestSpritesConcurrent(t *testing.T) {
	st := NewSpriteTable()
	var wg sync.WaitGroup
	handles := make([]SpriteHandle, 8)
	for i := range handles {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			handles[i] = st.Intern("stone")
		}(i)
	}
	wg.Wait()
	for _, h := range handles[1:] {
		if h != handles[0] {
			t.Fatalf("concurrent interning produced different handles: %v", handles)
		}
	}
	if st.Intern("") != 0 {
		t.Error("empty sprite should be handle 0")
	}
	if st.Name(handles[0]) != "stone" {
		t.Errorf("Name() = %q", st.Name(handles[0]))
	}
}

package intstream

import (
	"errors"
	"testing"
)

func TestClaimCapacity(t *testing.T) {
	p := NewPool()
	tests := []struct {
		name string
		min  int
		want int
	}{
		{"one", 1, 1},
		{"exact power", 64, 64},
		{"rounded up", 100, 128},
		{"default", DefaultCapacity, DefaultCapacity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := p.Claim(tt.min)
			defer s.Release()
			if s.Capacity() < tt.min {
				t.Fatalf("Capacity() = %d, want >= %d", s.Capacity(), tt.min)
			}
			if s.Capacity() != tt.want {
				t.Errorf("Capacity() = %d, want %d", s.Capacity(), tt.want)
			}
		})
	}
}

func TestSetGetAndGrow(t *testing.T) {
	p := NewPool()
	s := p.Claim(4)
	defer s.Release()

	for i := 0; i < 4; i++ {
		s.Set(i, uint32(i+1))
	}
	s.Set(10, 99)
	if s.Capacity() < 11 {
		t.Fatalf("stream did not grow: cap=%d", s.Capacity())
	}
	for i := 0; i < 4; i++ {
		if got := s.Get(i); got != uint32(i+1) {
			t.Errorf("Get(%d) = %d after grow, want %d", i, got, i+1)
		}
	}
	if got := s.Get(10); got != 99 {
		t.Errorf("Get(10) = %d, want 99", got)
	}
	if s.Get(7) != 0 {
		t.Error("unwritten word should read as zero")
	}
	if s.Len() != 11 {
		t.Errorf("Len() = %d, want 11", s.Len())
	}
}

func TestGrowDoubles(t *testing.T) {
	p := NewPool()
	s := p.Claim(16)
	defer s.Release()
	s.Grow(17)
	if s.Capacity() != 32 {
		t.Errorf("Capacity() = %d after Grow(17), want 32", s.Capacity())
	}
	s.Grow(200)
	if s.Capacity() != 256 {
		t.Errorf("Capacity() = %d after Grow(200), want 256", s.Capacity())
	}
}

func TestFloatRoundTrip(t *testing.T) {
	p := NewPool()
	s := p.ClaimDefault()
	defer s.Release()
	s.SetFloat(3, 0.125)
	s.SetFloat(4, -7.5)
	if s.GetFloat(3) != 0.125 || s.GetFloat(4) != -7.5 {
		t.Fatalf("floats = %v, %v", s.GetFloat(3), s.GetFloat(4))
	}
}

func TestCopyFrom(t *testing.T) {
	p := NewPool()
	src := p.Claim(8)
	dst := p.Claim(2)
	defer src.Release()
	defer dst.Release()

	for i := 0; i < 8; i++ {
		src.Set(i, uint32(100+i))
	}
	dst.CopyFrom(1, src, 2, 5)
	want := []uint32{0, 102, 103, 104, 105, 106}
	for i, w := range want {
		if got := dst.Get(i); got != w {
			t.Errorf("dst[%d] = %d, want %d", i, got, w)
		}
	}

	// Copying past the source capacity yields zeros.
	dst.CopyFrom(0, src, 6, 4)
	if dst.Get(0) != 106 || dst.Get(1) != 107 || dst.Get(2) != 0 || dst.Get(3) != 0 {
		t.Errorf("overlong copy = %d %d %d %d", dst.Get(0), dst.Get(1), dst.Get(2), dst.Get(3))
	}
}

func TestClearKeepsCapacity(t *testing.T) {
	p := NewPool()
	s := p.Claim(32)
	defer s.Release()
	s.Set(20, 5)
	s.Clear()
	if s.Capacity() != 32 {
		t.Errorf("Capacity() = %d after Clear, want 32", s.Capacity())
	}
	if s.Len() != 0 || s.Get(20) != 0 {
		t.Error("Clear did not empty the stream")
	}
}

func TestCompact(t *testing.T) {
	p := NewPool()
	s := p.Claim(64)
	s.Set(9, 1)
	s.Compact()
	if s.Capacity() != 10 {
		t.Errorf("Capacity() = %d after Compact, want 10", s.Capacity())
	}
	if s.Get(9) != 1 {
		t.Error("Compact lost data")
	}
	s.Release()
}

func TestReleaseReturnsToPool(t *testing.T) {
	p := NewPool()
	s := p.Claim(128)
	s.Set(5, 42)
	s.Release()

	if st := p.Stats(); st.Outstanding != 0 || st.Free != 1 {
		t.Fatalf("stats after release = %+v", st)
	}

	again := p.Claim(100)
	if again != s {
		t.Fatal("expected the released stream to be reused")
	}
	if again.Get(5) != 0 {
		t.Error("reused stream was not cleared")
	}
	if st := p.Stats(); st.Reuses != 1 || st.Claims != 2 {
		t.Errorf("stats = %+v, want 1 reuse of 2 claims", st)
	}
	again.Release()
}

func TestSmallerStreamNotReusedForLargerClaim(t *testing.T) {
	p := NewPool()
	small := p.Claim(16)
	small.Release()
	big := p.Claim(1000)
	defer big.Release()
	if big == small {
		t.Fatal("undersized stream was reused")
	}
	if big.Capacity() < 1000 {
		t.Errorf("Capacity() = %d, want >= 1000", big.Capacity())
	}
}

func TestRetainRelease(t *testing.T) {
	p := NewPool()
	s := p.Claim(8)
	s.Retain()
	if s.Refs() != 2 {
		t.Fatalf("Refs() = %d, want 2", s.Refs())
	}
	s.Release()
	if st := p.Stats(); st.Free != 0 {
		t.Fatal("stream returned to pool while still referenced")
	}
	s.Release()
	if st := p.Stats(); st.Free != 1 {
		t.Fatal("stream not returned after last release")
	}
}

func TestDoubleReleasePanics(t *testing.T) {
	p := NewPool()
	s := p.Claim(8)
	s.Release()
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on double release")
		}
	}()
	s.Release()
}

func TestWithReleasesOnError(t *testing.T) {
	p := NewPool()
	sentinel := errors.New("boom")
	err := With(p, 16, func(s *Stream) error {
		s.Set(0, 1)
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("With() error = %v, want sentinel", err)
	}
	if st := p.Stats(); st.Outstanding != 0 {
		t.Errorf("outstanding = %d after With, want 0", st.Outstanding)
	}
}

func TestWithReleasesOnPanic(t *testing.T) {
	p := NewPool()
	func() {
		defer func() { _ = recover() }()
		_ = With(p, 16, func(s *Stream) error {
			panic("inside")
		})
	}()
	if st := p.Stats(); st.Outstanding != 0 {
		t.Errorf("outstanding = %d after panic, want 0", st.Outstanding)
	}
}

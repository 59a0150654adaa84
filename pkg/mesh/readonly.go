package mesh

import "github.com/chazu/blockmesh/pkg/intstream"

// ReadOnly is a compact, immutable polygon stream. Records are stored
// without spare layer slots and cannot be changed.
type ReadOnly struct {
	stream *intstream.Stream
	format Format
	end    int
	count  int
	reader Polygon
}

var _ Reader = (*ReadOnly)(nil)

func newReadOnly(s *intstream.Stream, format Format, end int) *ReadOnly {
	r := &ReadOnly{stream: s, format: format, end: end}
	var p Polygon
	for addr := 0; addr < end; addr += p.Stride() {
		p.moveTo(s, addr)
		r.count++
	}
	return r
}

// Format returns the record format.
func (r *ReadOnly) Format() Format { return r.format }

func (r *ReadOnly) checkLive() {
	if r.stream == nil || r.stream.Refs() == 0 {
		panic("mesh: use of released read-only stream")
	}
}

// Origin moves the reader to the first polygon.
func (r *ReadOnly) Origin() bool {
	r.checkLive()
	r.reader.moveTo(r.stream, 0)
	return r.end > 0
}

// Next moves the reader to the next polygon.
func (r *ReadOnly) Next() bool {
	r.checkLive()
	if r.reader.s == nil || r.reader.addr >= r.end {
		return false
	}
	next := r.reader.addr + r.reader.Stride()
	r.reader.moveTo(r.stream, next)
	return next < r.end
}

// Reader returns the iteration cursor.
func (r *ReadOnly) Reader() *Polygon { return &r.reader }

// Count returns the number of polygons.
func (r *ReadOnly) Count() int { return r.count }

// IsEmpty reports whether the stream holds no polygons.
func (r *ReadOnly) IsEmpty() bool { return r.count == 0 }

// ForEach calls fn for every polygon in order with a cursor of its own,
// independent of the reader.
func (r *ReadOnly) ForEach(fn func(p *Polygon)) {
	r.checkLive()
	var p Polygon
	for addr := 0; addr < r.end; addr += p.Stride() {
		p.moveTo(r.stream, addr)
		fn(&p)
	}
}

// Retain adds a reference for another holder of the stream.
func (r *ReadOnly) Retain() *ReadOnly {
	r.checkLive()
	r.stream.Retain()
	return r
}

// Release drops a reference. The storage returns to its pool when the last
// holder releases it.
func (r *ReadOnly) Release() {
	r.checkLive()
	r.stream.Release()
}

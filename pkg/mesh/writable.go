// Package mesh stores polygons as packed records in pooled integer
// streams. A Writable stream is filled through a single reusable writer
// cursor, iterated through a reader cursor, and finally converted to a
// compact ReadOnly stream or released.
//
// Streams come from an intstream.Pool and share its goroutine confinement.
package mesh

import (
	"github.com/chazu/blockmesh/pkg/geom"
	"github.com/chazu/blockmesh/pkg/intstream"
)

// Reader is implemented by every stream that can be iterated.
type Reader interface {
	// Origin moves the cursor to the first live polygon and reports
	// whether there is one.
	Origin() bool
	// Next advances to the following live polygon.
	Next() bool
	// Reader returns the cursor positioned by Origin and Next.
	Reader() *Polygon
}

type state uint8

const (
	stateWritable state = iota
	stateReleased
	stateConverted
)

// Writable is an append-only polygon stream.
type Writable struct {
	pool   *intstream.Pool
	format Format
	state  state

	stream        *intstream.Stream
	writerStream  *intstream.Stream
	defaultStream *intstream.Stream

	writer MutablePolygon
	reader Polygon
	poly   Polygon

	end int
}

var _ Reader = (*Writable)(nil)

// ClaimWritable returns an empty stream without link or tag words.
func ClaimWritable(pool *intstream.Pool) *Writable {
	return ClaimWritableWithFormat(pool, 0)
}

// ClaimCSG returns an empty stream whose records carry link and tag words.
func ClaimCSG(pool *intstream.Pool) *Writable {
	return ClaimWritableWithFormat(pool, FormatCSG)
}

// ClaimWritableWithFormat returns an empty stream with the given format.
func ClaimWritableWithFormat(pool *intstream.Pool, format Format) *Writable {
	w := &Writable{
		pool:          pool,
		format:        format,
		stream:        pool.ClaimDefault(),
		writerStream:  pool.Claim(64),
		defaultStream: pool.Claim(64),
	}
	w.writer.owner = w
	w.writer.moveTo(w.writerStream, 0)
	w.ClearDefaults()
	return w
}

// WithWritable claims a stream, passes it to fn and releases it afterwards
// unless fn converted it with ReleaseToReader.
func WithWritable(pool *intstream.Pool, fn func(*Writable) error) error {
	w := ClaimWritable(pool)
	defer func() {
		if w.state == stateWritable {
			w.Release()
		}
	}()
	return fn(w)
}

// Pool returns the pool the stream was claimed from.
func (w *Writable) Pool() *intstream.Pool { return w.pool }

// Format returns the stream's record format.
func (w *Writable) Format() Format { return w.format }

func (w *Writable) checkWritable() {
	switch w.state {
	case stateReleased:
		panic("mesh: use of released stream")
	case stateConverted:
		panic("mesh: use of stream after ReleaseToReader")
	}
}

// Writer returns the reusable writer cursor.
func (w *Writable) Writer() *MutablePolygon {
	w.checkWritable()
	return &w.writer
}

func writerHeader(vertexCount, layerCount int, face geom.Face) uint32 {
	var h uint32
	h = hVertexCount.Set(uint32(vertexCount), h)
	h = hLayerCount.Set(uint32(layerCount), h)
	h = hMutable.Set(true, h)
	h = hHasLink.Set(true, h)
	h = hHasTag.Set(true, h)
	h = hNominalFace.Set(face, h)
	return h
}

// ClearDefaults resets the writer and the saved defaults to four white
// vertices on one solid, contracted layer facing up.
func (w *Writable) ClearDefaults() {
	w.checkWritable()
	ws := w.writerStream
	ws.Clear()
	ws.Set(wordHeader, writerHeader(0, 1, geom.Up))
	m := &w.writer
	lay := m.layout()
	none := int32(NoLinkOrTag)
	m.setWord(lay.linkOff, uint32(none))
	m.setWord(lay.tagOff, uint32(none))
	m.SetVertexCount(4)
	w.SaveDefaults()
}

// SaveDefaults snapshots the writer as the state Append resets it to. The
// face normal override is never part of the defaults.
func (w *Writable) SaveDefaults() {
	w.checkWritable()
	w.writer.ClearFaceNormal()
	n := w.writer.Stride()
	w.defaultStream.Clear()
	w.defaultStream.CopyFrom(0, w.writerStream, 0, n)
}

// LoadDefaults restores the writer to the last saved defaults.
func (w *Writable) LoadDefaults() {
	w.checkWritable()
	n := strideOf(w.defaultStream.Get(wordHeader))
	w.writerStream.CopyFrom(0, w.defaultStream, 0, n)
}

func (w *Writable) recordLayout(layerCount int) *layout {
	return layoutFor(true, w.format&FormatLink != 0, w.format&FormatTag != 0, layerCount)
}

// writeRecord copies src into the stream at the end, converting it to the
// stream's format. When verts is non-nil only those source vertices are
// copied, in that order.
func (w *Writable) writeRecord(src *Polygon, verts []int) int {
	addr := w.end
	n := src.VertexCount()
	if verts != nil {
		n = len(verts)
	}
	layers := src.LayerCount()
	lay := w.recordLayout(layers)
	writeRecordTo(w.stream, addr, lay, true, src, verts, n)
	w.end = addr + lay.stride(n)
	return addr
}

// writeRecordTo writes src at addr of dst using layout lay.
func writeRecordTo(dst *intstream.Stream, addr int, lay *layout, mutable bool, src *Polygon, verts []int, n int) {
	sh := src.header()
	var h uint32
	h = hVertexCount.Set(uint32(n), h)
	h = hLayerCount.Set(hLayerCount.Get(sh), h)
	h = hHasLink.Set(lay.linkOff >= 0, h)
	h = hHasTag.Set(lay.tagOff >= 0, h)
	h = hMutable.Set(mutable, h)
	h = hFaceNormalSet.Set(hFaceNormalSet.Get(sh), h)
	h = hNominalFace.Set(hNominalFace.Get(sh), h)
	dst.Set(addr+wordHeader, h)

	for k := wordPaintA; k < fixedBase; k++ {
		dst.Set(addr+k, src.word(k))
	}
	if lay.linkOff >= 0 {
		dst.Set(addr+lay.linkOff, uint32(int32(src.Link())))
	}
	if lay.tagOff >= 0 {
		dst.Set(addr+lay.tagOff, uint32(int32(src.Tag())))
	}
	layers := src.LayerCount()
	for l := 0; l < lay.slots; l++ {
		var v uint32
		if l < layers {
			v = uint32(src.Sprite(l))
		}
		dst.Set(addr+lay.spriteOff+l, v)
	}

	srcLay := src.layout()
	for i := 0; i < n; i++ {
		j := i
		if verts != nil {
			j = verts[i]
		}
		base := addr + lay.vertex(i)
		srcBase := src.addr + srcLay.vertex(j)
		for k := 0; k < vertexLayers; k++ {
			dst.Set(base+k, src.s.Get(srcBase+k))
		}
		for l := 0; l < lay.slots; l++ {
			for k := 0; k < layerStride; k++ {
				off := vertexLayers + l*layerStride + k
				var v uint32
				if l < layers {
					v = src.s.Get(srcBase + off)
				} else if k == 2 {
					v = White
				}
				dst.Set(base+off, v)
			}
		}
	}
}

// Append copies the writer to the end of the stream, derives locked UVs and
// restores the writer defaults. It returns the new record's address.
func (w *Writable) Append() int {
	w.checkWritable()
	addr := w.writeRecord(&w.writer.Polygon, nil)
	rec := MutablePolygon{Polygon: Polygon{s: w.stream, addr: addr}}
	for l := 0; l < rec.LayerCount(); l++ {
		if rec.LockUV(l) {
			rec.AssignLockedUVCoordinates(l)
		}
	}
	w.LoadDefaults()
	return addr
}

// AppendCopy appends a copy of p, converting it to this stream's format.
// The writer is not touched.
func (w *Writable) AppendCopy(p *Polygon) int {
	w.checkWritable()
	return w.writeRecord(p, nil)
}

// Origin moves the reader to the first live polygon.
func (w *Writable) Origin() bool {
	w.checkWritable()
	return w.seek(0)
}

// Next moves the reader to the next live polygon.
func (w *Writable) Next() bool {
	w.checkWritable()
	if w.reader.s == nil || w.reader.addr >= w.end {
		return false
	}
	return w.seek(w.reader.addr + w.reader.Stride())
}

func (w *Writable) seek(addr int) bool {
	for addr < w.end {
		w.reader.moveTo(w.stream, addr)
		if !w.reader.IsDeleted() {
			return true
		}
		addr += w.reader.Stride()
	}
	w.reader.moveTo(w.stream, w.end)
	return false
}

// Reader returns the iteration cursor.
func (w *Writable) Reader() *Polygon { return &w.reader }

// PolyAt returns a cursor, separate from the reader, positioned at addr.
func (w *Writable) PolyAt(addr int) *Polygon {
	w.checkWritable()
	w.poly.moveTo(w.stream, addr)
	return &w.poly
}

// polyAtMutable returns a writable view of the record at addr.
func (w *Writable) polyAtMutable(addr int) *MutablePolygon {
	return &MutablePolygon{Polygon: Polygon{s: w.stream, addr: addr}, owner: w}
}

// Delete marks the record at addr deleted.
func (w *Writable) Delete(addr int) {
	w.checkWritable()
	w.polyAtMutable(addr).setDeleted(true)
}

// Count returns the number of live polygons.
func (w *Writable) Count() int {
	w.checkWritable()
	n := 0
	var p Polygon
	for addr := 0; addr < w.end; addr += p.Stride() {
		p.moveTo(w.stream, addr)
		if !p.IsDeleted() {
			n++
		}
	}
	return n
}

// IsEmpty reports whether the stream has no live polygons.
func (w *Writable) IsEmpty() bool {
	w.checkWritable()
	var p Polygon
	for addr := 0; addr < w.end; addr += p.Stride() {
		p.moveTo(w.stream, addr)
		if !p.IsDeleted() {
			return false
		}
	}
	return true
}

// Release returns all storage to the pool.
func (w *Writable) Release() {
	w.checkWritable()
	w.releaseStreams()
	w.state = stateReleased
}

func (w *Writable) releaseStreams() {
	w.stream.Release()
	w.writerStream.Release()
	w.defaultStream.Release()
	w.stream, w.writerStream, w.defaultStream = nil, nil, nil
}

// ReleaseToReader converts the stream into a compact read-only copy holding
// only live polygons in immutable format, and releases this stream.
func (w *Writable) ReleaseToReader() *ReadOnly {
	w.checkWritable()
	out := w.pool.Claim(w.end + 1)
	link := w.format&FormatLink != 0
	tag := w.format&FormatTag != 0
	end := 0
	var p Polygon
	for addr := 0; addr < w.end; addr += p.Stride() {
		p.moveTo(w.stream, addr)
		if p.IsDeleted() {
			continue
		}
		n := p.VertexCount()
		lay := layoutFor(false, link, tag, p.LayerCount())
		writeRecordTo(out, end, lay, false, &p, nil, n)
		end += lay.stride(n)
	}
	w.releaseStreams()
	w.state = stateConverted
	return newReadOnly(out, w.format, end)
}

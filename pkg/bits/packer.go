// Package bits provides a declarative description of bit fields packed into
// a single 32-bit word. Elements are allocated in creation order, each one
// taking the next free bits of the word, so packing is defined in one place
// and can be tested independently of the code that stores the words.
package bits

import (
	"fmt"
	mbits "math/bits"
)

// Packer32 allocates fields inside one uint32.
type Packer32 struct {
	name string
	used uint
}

// NewPacker32 returns an empty packer. The name is only used in panics.
func NewPacker32(name string) *Packer32 {
	return &Packer32{name: name}
}

// BitLength is the number of bits allocated so far.
func (p *Packer32) BitLength() uint {
	return p.used
}

func (p *Packer32) alloc(width uint) (shift uint, mask uint32) {
	if width == 0 || p.used+width > 32 {
		panic(fmt.Sprintf("bits: packer %s cannot allocate %d bits (%d used)", p.name, width, p.used))
	}
	shift = p.used
	mask = uint32((uint64(1)<<width)-1) << shift
	p.used += width
	return shift, mask
}

// Bool is a single-bit field.
type Bool struct {
	mask uint32
}

// Bool allocates a one-bit field.
func (p *Packer32) Bool() Bool {
	_, mask := p.alloc(1)
	return Bool{mask: mask}
}

// Get reads the field from word.
func (b Bool) Get(word uint32) bool {
	return word&b.mask != 0
}

// Set returns word with the field set to v.
func (b Bool) Set(v bool, word uint32) uint32 {
	if v {
		return word | b.mask
	}
	return word &^ b.mask
}

// Int is an unsigned integer field holding values in [0, count).
type Int struct {
	shift uint
	mask  uint32
	count uint32
}

// Int allocates a field wide enough to hold count distinct values.
func (p *Packer32) Int(count uint32) Int {
	if count < 2 {
		panic(fmt.Sprintf("bits: packer %s int element needs at least 2 values, got %d", p.name, count))
	}
	width := uint(mbits.Len32(count - 1))
	shift, mask := p.alloc(width)
	return Int{shift: shift, mask: mask, count: count}
}

// Get reads the field from word.
func (e Int) Get(word uint32) uint32 {
	return (word & e.mask) >> e.shift
}

// Set returns word with the field set to v. Values outside the declared
// range are a programming error.
func (e Int) Set(v uint32, word uint32) uint32 {
	if v >= e.count {
		panic(fmt.Sprintf("bits: value %d out of range [0,%d)", v, e.count))
	}
	return (word &^ e.mask) | (v << e.shift)
}

// Enum is an Int field typed for a small integer enumeration.
type Enum[T ~uint8] struct {
	Int
}

// NewEnum allocates a field for an enumeration with count members.
func NewEnum[T ~uint8](p *Packer32, count int) Enum[T] {
	return Enum[T]{Int: p.Int(uint32(count))}
}

// Get reads the enum value from word.
func (e Enum[T]) Get(word uint32) T {
	return T(e.Int.Get(word))
}

// Set returns word with the enum set to v.
func (e Enum[T]) Set(v T, word uint32) uint32 {
	return e.Int.Set(uint32(v), word)
}

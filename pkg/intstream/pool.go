package intstream

import mbits "math/bits"

// maxBucket bounds the size classes kept on the free list. Larger streams
// are dropped for the garbage collector on release.
const maxBucket = 24

// Pool is a free list of released streams keyed by power-of-two capacity.
// The zero value is not usable; call NewPool.
type Pool struct {
	free [maxBucket + 1][]*Stream

	claims      int
	reuses      int
	outstanding int
}

// NewPool returns an empty pool.
func NewPool() *Pool {
	return &Pool{}
}

// PoolStats reports pool activity.
type PoolStats struct {
	Claims      int // total claims
	Reuses      int // claims satisfied from the free list
	Outstanding int // streams claimed and not yet returned
	Free        int // streams on the free list
}

// Stats returns a snapshot of pool counters.
func (p *Pool) Stats() PoolStats {
	free := 0
	for _, b := range p.free {
		free += len(b)
	}
	return PoolStats{
		Claims:      p.claims,
		Reuses:      p.reuses,
		Outstanding: p.outstanding,
		Free:        free,
	}
}

// ClaimDefault returns a stream of DefaultCapacity words.
func (p *Pool) ClaimDefault() *Stream {
	return p.Claim(DefaultCapacity)
}

// Claim returns a stream with capacity of at least minCapacity words and a
// single reference. The stream reads as zero from offset 0.
func (p *Pool) Claim(minCapacity int) *Stream {
	if minCapacity < 1 {
		minCapacity = 1
	}
	p.claims++
	p.outstanding++

	bucket := bucketFor(minCapacity)
	for b := bucket; b <= maxBucket; b++ {
		list := p.free[b]
		if n := len(list); n > 0 {
			s := list[n-1]
			list[n-1] = nil
			p.free[b] = list[:n-1]
			p.reuses++
			s.Clear()
			s.refs = 1
			return s
		}
	}

	return &Stream{
		data: make([]uint32, 1<<bucket),
		refs: 1,
		pool: p,
	}
}

func (p *Pool) put(s *Stream) {
	p.outstanding--
	// Streams are filed under the largest class they fully satisfy.
	b := mbits.Len(uint(len(s.data))) - 1
	if b < 0 || b > maxBucket {
		return
	}
	p.free[b] = append(p.free[b], s)
}

func bucketFor(n int) int {
	return mbits.Len(uint(roundUpPow2(n))) - 1
}

// With claims a stream, passes it to fn and releases it on every exit path,
// including a panic inside fn.
func With(p *Pool, minCapacity int, fn func(*Stream) error) error {
	s := p.Claim(minCapacity)
	defer s.Release()
	return fn(s)
}

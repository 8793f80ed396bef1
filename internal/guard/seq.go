package guard

import "sync/atomic"

// seqCounter issues attempt sequence numbers and answers whether a
// given attempt is still the latest one issued.
type seqCounter struct {
	n atomic.Uint64
}

func (c *seqCounter) next() uint64 {
	return c.n.Add(1)
}

func (c *seqCounter) isLatest(seq uint64) bool {
	return c.n.Load() == seq
}

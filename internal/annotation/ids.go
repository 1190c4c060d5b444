package annotation

import (
	"strconv"
	"sync/atomic"

	"github.com/google/uuid"
)

// IDGenerator hands out annotation ids.
type IDGenerator interface {
	NextID() string
}

// UUIDGenerator issues random version 4 UUIDs.
type UUIDGenerator struct{}

func (UUIDGenerator) NextID() string { return uuid.NewString() }

// CounterGenerator issues Prefix1, Prefix2, ... in order.
type CounterGenerator struct {
	Prefix string
	n      atomic.Uint64
}

// NewCounterGenerator returns a CounterGenerator starting at 1.
func NewCounterGenerator(prefix string) *CounterGenerator {
	return &CounterGenerator{Prefix: prefix}
}

func (g *CounterGenerator) NextID() string {
	return g.Prefix + strconv.FormatUint(g.n.Add(1), 10)
}

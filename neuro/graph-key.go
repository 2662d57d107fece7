package neuro

import (
	"math/bits"
	"strings"

	"github.com/pkg/errors"
)

// GraphKey is the packed triangular adjacency encoding of an undirected graph.
//
// Edge slot s is bit 7-(s%8) of byte s/8, so byte-wise (string) order equals the
// lexicographic order of the slot bits. Unused trailing bits are always zero.
// Being a string, a GraphKey can never be changed in place once built.
type GraphKey string

// EdgeIdx is a signed edge index in [1,E]: +s+1 proposes setting slot s, -s-1 proposes clearing it.
// The ±1 offset keeps slot 0 unambiguous.
type EdgeIdx int32

// Slot returns the zero-based edge slot of idx.
func (idx EdgeIdx) Slot() int {
	if idx < 0 {
		return int(-idx) - 1
	}
	return int(idx) - 1
}

// IsAdd returns true if idx sets its slot.
func (idx EdgeIdx) IsAdd() bool {
	return idx > 0
}

// Complement returns the index that undoes idx.
func (idx EdgeIdx) Complement() EdgeIdx {
	return -idx
}

// AddEdge returns the index that sets the given slot.
func AddEdge(slot int) EdgeIdx {
	return EdgeIdx(slot + 1)
}

// RemoveEdge returns the index that clears the given slot.
func RemoveEdge(slot int) EdgeIdx {
	return -EdgeIdx(slot + 1)
}

// Rand is the subset of *math/rand.Rand used for sampling.
type Rand interface {
	Float64() float64
}

// EdgeSpace describes the edge slots of graphs on a fixed vertex set.
type EdgeSpace struct {
	NumVertex int
	NumEdges  int // N(N-1)/2
}

func NewEdgeSpace(numVertex int) (EdgeSpace, error) {
	if numVertex < 2 {
		return EdgeSpace{}, errors.Wrapf(ErrBadVertexCount, "got %d", numVertex)
	}
	return EdgeSpace{
		NumVertex: numVertex,
		NumEdges:  numVertex * (numVertex - 1) / 2,
	}, nil
}

// KeyLen is the byte length of every GraphKey in this space.
func (es EdgeSpace) KeyLen() int {
	return (es.NumEdges + 7) >> 3
}

// Slot maps an unordered vertex pair (zero-based, i != j) to its edge slot.
func (es EdgeSpace) Slot(i, j int) int {
	if i > j {
		i, j = j, i
	}
	return i + 1 + (j+1)*(j-2)/2
}

// Pair is the inverse of Slot and returns i > j.
func (es EdgeSpace) Pair(slot int) (i, j int) {
	i = 1
	for (i+1)*i/2 <= slot {
		i++
	}
	j = slot - i*(i-1)/2
	return i, j
}

// EmptyKey returns the graph with no edges.
func (es EdgeSpace) EmptyKey() GraphKey {
	return GraphKey(make([]byte, es.KeyLen()))
}

// CheckKey returns an error if key does not belong to this space.
func (es EdgeSpace) CheckKey(key GraphKey) error {
	if len(key) != es.KeyLen() {
		return errors.Wrapf(ErrBadEncoding, "key has %d bytes, expected %d", len(key), es.KeyLen())
	}
	if tail := es.NumEdges & 7; tail != 0 && key[len(key)-1]&(0xFF>>tail) != 0 {
		return errors.Wrap(ErrBadEncoding, "padding bits are set")
	}
	return nil
}

func (es EdgeSpace) HasEdge(key GraphKey, slot int) bool {
	return key[slot>>3]&(0x80>>(slot&7)) != 0
}

// EdgeCount returns the number of edges present in key.
func (es EdgeSpace) EdgeCount(key GraphKey) int {
	n := 0
	for i := 0; i < len(key); i++ {
		n += bits.OnesCount8(key[i])
	}
	return n
}

// InitRandom draws a graph where each slot is set independently with probability 0.5.
func (es EdgeSpace) InitRandom(rng Rand) GraphKey {
	buf := make([]byte, es.KeyLen())
	for s := 0; s < es.NumEdges; s++ {
		if rng.Float64() >= 0.5 {
			buf[s>>3] |= 0x80 >> (s & 7)
		}
	}
	return GraphKey(buf)
}

// SampleEdge picks a slot uniformly and proposes flipping it.
//
// A uniform variate is mapped onto one of NumEdges equal-width partitions of [0,1).
// The returned index adds the edge if the slot is clear and removes it otherwise.
func (es EdgeSpace) SampleEdge(rng Rand, key GraphKey) EdgeIdx {
	slot := int(rng.Float64() * float64(es.NumEdges))
	if slot >= es.NumEdges {
		slot = es.NumEdges - 1
	}
	if es.HasEdge(key, slot) {
		return RemoveEdge(slot)
	}
	return AddEdge(slot)
}

// Flip returns a fresh copy of key with slot |idx|-1 set or cleared according to the sign of idx.
func (es EdgeSpace) Flip(key GraphKey, idx EdgeIdx) GraphKey {
	slot := idx.Slot()
	buf := []byte(key)
	if idx.IsAdd() {
		buf[slot>>3] |= 0x80 >> (slot & 7)
	} else {
		buf[slot>>3] &^= 0x80 >> (slot & 7)
	}
	return GraphKey(buf)
}

// CheckEdgeIdx returns an error if idx is out of range for this space.
func (es EdgeSpace) CheckEdgeIdx(idx EdgeIdx) error {
	if idx == 0 || idx.Slot() >= es.NumEdges {
		return errors.Wrapf(ErrBadEdgeIdx, "%d not in ±[1,%d]", idx, es.NumEdges)
	}
	return nil
}

// Bits renders key in vector form, one '0' or '1' per slot.
func (es EdgeSpace) Bits(key GraphKey) string {
	b := strings.Builder{}
	b.Grow(es.NumEdges)
	for s := 0; s < es.NumEdges; s++ {
		if es.HasEdge(key, s) {
			b.WriteByte('1')
		} else {
			b.WriteByte('0')
		}
	}
	return b.String()
}

// FromBits is the inverse of Bits.
func (es EdgeSpace) FromBits(vec string) (GraphKey, error) {
	if len(vec) != es.NumEdges {
		return "", errors.Wrapf(ErrBadEncoding, "vector has %d slots, expected %d", len(vec), es.NumEdges)
	}
	buf := make([]byte, es.KeyLen())
	for s := 0; s < len(vec); s++ {
		switch vec[s] {
		case '0':
		case '1':
			buf[s>>3] |= 0x80 >> (s & 7)
		default:
			return "", errors.Wrapf(ErrBadEncoding, "slot %d is %q", s, vec[s])
		}
	}
	return GraphKey(buf), nil
}

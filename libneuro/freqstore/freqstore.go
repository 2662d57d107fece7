// Package freqstore is an ordered symbol table of graph keys where each entry carries a visit counter.
//
// The table is a skip list (Pugh, 1990): an ordered linked list whose nodes carry a random number
// of forward links, so a search skips large runs of the list and insert, search and delete are
// expected O(log N). Nodes live in an arena; node 0 is the head sentinel and a link value of 0
// means "end of level" since no link can point back at the head.
//
// Every successful Search increments the found entry's counter, and the table keeps a pointer to
// the entry with the highest counter (the mode). Repairing that pointer after the mode loses
// counts takes a full scan, which is acceptable as long as deleting the mode stays rare.
package freqstore

import (
	"math/bits"
	"math/rand"

	"github.com/2x3systems/neurograph/neuro"
)

// MaxHeight is the max number of levels (links) a node can have.
const MaxHeight = 30

// NodeOverhead estimates the bytes a stored entry costs beyond its key bytes:
// the key's string header, the counter, the link slice header and two int32 links on average.
const NodeOverhead = 16 + 8 + 24 + 2*4

// EntryFootprint estimates the memory used by one stored graph whose key is keyLen bytes.
func EntryFootprint(keyLen int) uint64 {
	return uint64(keyLen) + NodeOverhead
}

// Entry is a read-only view of a stored key.
type Entry struct {
	Key    neuro.GraphKey
	Count  uint64 // visit counter, >= 1
	Height int    // number of levels the node is linked into
}

type node struct {
	key   neuro.GraphKey
	count uint64
	next  []int32 // len(next) is the node height
}

// Store is a skip list of graph keys with visit counters and a running mode.
//
// A Store is not safe for concurrent use.
type Store struct {
	nodes  []node  // arena; nodes[0] is the head
	free   []int32 // recycled arena slots
	levels int     // number of levels currently in use
	count  int     // number of live entries
	visits uint64  // sum of all live counters
	mode   int32   // entry with the highest counter, 0 if empty
	rng    *rand.Rand
	update [MaxHeight]int32 // predecessors found by seek
}

// New returns an empty Store whose node heights are drawn from the given seed.
func New(seed int64) *Store {
	st := &Store{
		rng: rand.New(rand.NewSource(seed)),
	}
	st.nodes = append(st.nodes, node{
		next: make([]int32, MaxHeight),
	})
	return st
}

// randomHeight returns h with probability 2^-h (capped at MaxHeight) by counting fair coin flips until the first failure.
func (st *Store) randomHeight() int {
	h := 1 + bits.TrailingZeros64(^st.rng.Uint64())
	if h > MaxHeight {
		h = MaxHeight
	}
	return h
}

// seek fills st.update with the rightmost node at each level whose key is less than key
// and returns the first node at level 0 whose key is not less than key (0 if none).
func (st *Store) seek(key neuro.GraphKey) int32 {
	x := int32(0)
	for lvl := st.levels - 1; lvl >= 0; lvl-- {
		for {
			nx := st.nodes[x].next[lvl]
			if nx == 0 || st.nodes[nx].key >= key {
				break
			}
			x = nx
		}
		st.update[lvl] = x
	}
	return st.nodes[x].next[0]
}

func (st *Store) alloc(key neuro.GraphKey, height int) int32 {
	if n := len(st.free); n > 0 {
		xi := st.free[n-1]
		st.free = st.free[:n-1]
		x := &st.nodes[xi]
		x.key = key
		x.count = 1
		if cap(x.next) >= height {
			x.next = x.next[:height]
			for i := range x.next {
				x.next[i] = 0
			}
		} else {
			x.next = make([]int32, height)
		}
		return xi
	}

	st.nodes = append(st.nodes, node{
		key:   key,
		count: 1,
		next:  make([]int32, height),
	})
	return int32(len(st.nodes) - 1)
}

// Insert adds key with a counter of 1 and returns the stored key.
//
// The caller asserts key is not already present (i.e. a Search for it just failed).
func (st *Store) Insert(key neuro.GraphKey) neuro.GraphKey {
	h := st.randomHeight()
	if h > st.levels {
		st.levels = h
	}

	if xi := st.seek(key); xi != 0 && st.nodes[xi].key == key {
		panic("freqstore: Insert of a key already present")
	}

	xi := st.alloc(key, h)
	for lvl := 0; lvl < h; lvl++ {
		p := st.update[lvl]
		st.nodes[xi].next[lvl] = st.nodes[p].next[lvl]
		st.nodes[p].next[lvl] = xi
	}

	st.count++
	st.visits++
	if st.mode == 0 {
		st.mode = xi
	}
	return key
}

// Search looks for key and, if found, increments its counter and returns the stored key.
//
// If the counter now exceeds the mode's counter, the entry becomes the mode.
// If key is not present, false is returned and the store is unchanged.
func (st *Store) Search(key neuro.GraphKey) (neuro.GraphKey, bool) {
	x := int32(0)
	for lvl := st.levels - 1; lvl >= 0; lvl-- {
		for {
			nx := st.nodes[x].next[lvl]
			if nx == 0 {
				break
			}
			nkey := st.nodes[nx].key
			if nkey == key {
				st.bump(nx)
				return nkey, true
			}
			if nkey > key {
				break
			}
			x = nx
		}
	}
	return "", false
}

func (st *Store) bump(xi int32) {
	st.nodes[xi].count++
	st.visits++
	if st.nodes[xi].count > st.nodes[st.mode].count {
		st.mode = xi
	}
}

// Delete removes one visit of key.
//
// An entry with a counter above 1 is only decremented; otherwise it is unlinked from every level and freed.
// If the affected entry was the mode, the mode is re-derived with a full scan.
// Returns false if key is not present.
func (st *Store) Delete(key neuro.GraphKey) bool {
	xi := st.seek(key)
	if xi == 0 || st.nodes[xi].key != key {
		return false
	}

	st.visits--
	x := &st.nodes[xi]
	if x.count > 1 {
		x.count--
		if st.mode == xi {
			st.mode = st.scanMode()
		}
		return true
	}

	for lvl, nx := range x.next {
		st.nodes[st.update[lvl]].next[lvl] = nx
		x.next[lvl] = 0
	}
	x.key = ""
	x.count = 0
	st.free = append(st.free, xi)
	st.count--

	for st.levels > 0 && st.nodes[0].next[st.levels-1] == 0 {
		st.levels--
	}

	if st.mode == xi {
		st.mode = st.scanMode()
	}
	return true
}

// scanMode walks the bottom level and returns the first entry with the highest counter.
func (st *Store) scanMode() int32 {
	best := int32(0)
	for xi := st.nodes[0].next[0]; xi != 0; xi = st.nodes[xi].next[0] {
		if best == 0 || st.nodes[xi].count > st.nodes[best].count {
			best = xi
		}
	}
	return best
}

func (st *Store) entry(xi int32) Entry {
	x := &st.nodes[xi]
	return Entry{
		Key:    x.key,
		Count:  x.count,
		Height: len(x.next),
	}
}

// MaxEntry returns the mode: the entry with the highest counter.
func (st *Store) MaxEntry() (Entry, bool) {
	if st.mode == 0 {
		return Entry{}, false
	}
	return st.entry(st.mode), true
}

// Count returns the number of distinct keys stored.
func (st *Store) Count() int {
	return st.count
}

// TotalVisits returns the sum of the counters of all stored keys.
func (st *Store) TotalVisits() uint64 {
	return st.visits
}

// Levels returns the number of levels currently in use.
func (st *Store) Levels() int {
	return st.levels
}

// ForEach calls visit for each entry in ascending key order until visit returns false.
func (st *Store) ForEach(visit func(e Entry) bool) {
	for xi := st.nodes[0].next[0]; xi != 0; xi = st.nodes[xi].next[0] {
		if !visit(st.entry(xi)) {
			return
		}
	}
}

// Select returns the k-th smallest entry (zero-based).
func (st *Store) Select(k int) (Entry, bool) {
	if k < 0 {
		return Entry{}, false
	}
	xi := st.nodes[0].next[0]
	for i := 0; i < k && xi != 0; i++ {
		xi = st.nodes[xi].next[0]
	}
	if xi == 0 {
		return Entry{}, false
	}
	return st.entry(xi), true
}

// Close releases all entries.  The Store is empty (and reusable) afterwards.
func (st *Store) Close() {
	head := st.nodes[0]
	for i := range head.next {
		head.next[i] = 0
	}
	st.nodes = []node{head}
	st.free = nil
	st.levels = 0
	st.count = 0
	st.visits = 0
	st.mode = 0
}

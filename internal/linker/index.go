// Package linker implements the unitig linker: a
// second pass over the finished unitig set that indexes each unitig's
// two extremities and emits a per-unitig adjacency list.
package linker

import (
	"github.com/twotwotwo/sorts"

	"github.com/shenwei356/dbgbuild/internal/graph"
	"github.com/shenwei356/dbgbuild/internal/kmer"
	"github.com/shenwei356/dbgbuild/internal/unitig"
)

// ExtremityState tracks one extremity through the linking pass. Fresh
// moves to Linked or DeadEnd here; a Linked -> Fresh regression can only
// happen during fragment gluing, before unitigs are ever numbered, so it
// never surfaces at this stage.
type ExtremityState int

const (
	Fresh ExtremityState = iota
	Linked
	DeadEnd
)

type extremityKey struct {
	UnitigID uint64
	Position unitig.Position
}

// boundaryNode returns the canonical graph node at one extremity of u,
// and whether reaching it required reading u's own sequence on the
// opposite strand (the ExtremityInfo rc bit).
func boundaryNode(u *unitig.Unitig, k int, pos unitig.Position) (graph.Node, bool) {
	var window []byte
	if pos == unitig.Begin {
		window = u.Seq[:k]
	} else {
		window = u.Seq[len(u.Seq)-k:]
	}
	c, _ := kmer.Parse(window)
	canon, rc := c.Canonical()
	return graph.Node{Kmer: canon, Strand: rc}, rc
}

func nodeKey(n graph.Node) [4]uint64 { return n.Kmer.W }

// extremityTuple is one (unitig, position) extremity prior to grouping.
type extremityTuple struct {
	node  graph.Node
	owner *unitig.Unitig
	pos   unitig.Position
	rc    bool
}

type tuples []extremityTuple

func (t tuples) Len() int      { return len(t) }
func (t tuples) Swap(i, j int) { t[i], t[j] = t[j], t[i] }
func (t tuples) Less(i, j int) bool {
	return t[i].node.Kmer.Cmp(t[j].node.Kmer) < 0
}

// Key exposes the low word of the boundary k-mer; sorts.Quicksort
// orders through Less/Swap only and does not call it.
func (t tuples) Key(i int) uint64 { return t[i].node.Kmer.W[3] }

// Index binds every unitig boundary node to its owning (unitig,
// position) pair, built by sorting all extremities once in a single
// hash-join-style pass rather than growing a hash map incrementally.
type Index struct {
	k     int
	owner map[[4]uint64][]extremityTuple
	state map[extremityKey]ExtremityState
}

// BuildIndex runs the indexing half of C10 over a finished unitig set.
func BuildIndex(k int, units []*unitig.Unitig) *Index {
	var all tuples
	for _, u := range units {
		if len(u.Seq) < k {
			continue
		}
		for _, pos := range [2]unitig.Position{unitig.Begin, unitig.End} {
			node, rc := boundaryNode(u, k, pos)
			all = append(all, extremityTuple{node: node, owner: u, pos: pos, rc: rc})
		}
	}
	sorts.Quicksort(all)

	idx := &Index{k: k, owner: make(map[[4]uint64][]extremityTuple), state: make(map[extremityKey]ExtremityState)}
	for _, tup := range all {
		key := nodeKey(tup.node)
		idx.owner[key] = append(idx.owner[key], tup)
		idx.state[extremityKey{tup.owner.ID, tup.pos}] = Fresh
	}
	return idx
}

// State returns the current state of one unitig's extremity.
func (idx *Index) State(unitigID uint64, pos unitig.Position) ExtremityState {
	return idx.state[extremityKey{unitigID, pos}]
}

// Package graph implements the de Bruijn graph facade:
// Node/Edge/BranchingNode/BranchingEdge abstractions over the Bloom+cFP
// membership test and the MPHF annotation store, with O(1) neighbour
// queries and a simple-path iterator.
package graph

import (
	"github.com/shenwei356/dbgbuild/internal/bloom"
	"github.com/shenwei356/dbgbuild/internal/kmer"
	"github.com/shenwei356/dbgbuild/internal/mphf"
)

// Node is a canonical k-mer with the strand it was queried under.
type Node struct {
	Kmer   kmer.Code
	Strand bool // true if Kmer (canonical) is the revcomp of the node's own orientation
}

// Direction distinguishes successor/predecessor queries.
type Direction bool

const (
	Outgoing Direction = true
	Incoming Direction = false
)

// Edge connects two nodes, labelled by the nucleotide appended (for an
// outgoing edge) or prepended (for an incoming edge).
type Edge struct {
	From, To Node
	Label    byte
	Dir      Direction
}

// BranchingNode is a node with in- or out-degree != 1.
type BranchingNode struct {
	Node Node
}

// BranchingEdge connects two branching nodes with the distance (in
// bases) of the simple path between them.
type BranchingEdge struct {
	From, To BranchingNode
	Distance int
}

// Graph binds the Bloom+cFP membership structure and the MPHF
// annotation store into the read-only query facade.
type Graph struct {
	Model   *kmer.Model
	Bloom   *bloom.Bloom
	Cascade *bloom.Cascade
	Annot   *mphf.Store
}

// oriented returns the k-mer in the node's own orientation (not
// necessarily canonical), needed to extend it at either end.
func (n Node) oriented() kmer.Code {
	if n.Strand {
		return n.Kmer.RevComp()
	}
	return n.Kmer
}

// Oriented returns the k-mer in the node's own orientation (exported for
// the unitig builder and linker, which reconstruct unitig sequences and
// extremity (k-1)-mers directly from node orientation).
func (n Node) Oriented() kmer.Code { return n.oriented() }

func nodeFrom(oriented kmer.Code) Node {
	canon, strand := oriented.Canonical()
	return Node{Kmer: canon, Strand: strand}
}

// Reverse swaps the node's strand: the same underlying k-mer read on
// the opposite strand.
func (g *Graph) Reverse(n Node) Node {
	return Node{Kmer: n.Kmer, Strand: !n.Strand}
}

// BuildNode encodes the first k-mer of seq into a Node.
func (g *Graph) BuildNode(seq []byte) (Node, error) {
	c, broken, err := kmer.Seed(seq, 0, g.Model.K)
	if err != nil {
		return Node{}, err
	}
	if broken {
		return Node{}, errInvalidSeed
	}
	return nodeFrom(c), nil
}

// Contains reports whether x is a live node of the graph: Bloom-positive,
// not a critical false positive, and not marked deleted.
func (g *Graph) Contains(x kmer.Code) bool {
	canon, _ := x.Canonical()
	if !g.Cascade.Contains(g.Bloom, canon) {
		return false
	}
	idx := g.Annot.Index(canon)
	return !g.Annot.IsDeleted(idx)
}

// Abundance returns the node's recorded total abundance.
func (g *Graph) Abundance(n Node) uint8 {
	return g.Annot.Abundance(g.Annot.Index(n.Kmer))
}

// Delete marks n absent from the graph by setting its MPHF deleted bit.
func (g *Graph) Delete(n Node) { g.Annot.Delete(g.Annot.Index(n.Kmer)) }

// Undelete restores a previously deleted node.
func (g *Graph) Undelete(n Node) { g.Annot.Undelete(g.Annot.Index(n.Kmer)) }

// neighbours enumerates the (at most 4) nodes reachable from n by
// appending (Outgoing) or prepending (Incoming) each of A,C,T,G,
// skipping anything the graph does not contain.
func (g *Graph) neighbours(n Node, dir Direction) []Edge {
	oriented := n.oriented()
	out := make([]Edge, 0, 4)
	for nt := int8(0); nt < 4; nt++ {
		var cand kmer.Code
		if dir == Outgoing {
			cand = oriented.Next(nt)
		} else {
			cand = oriented.Prev(nt)
		}
		canon, _ := cand.Canonical()
		if !g.Contains(canon) {
			continue
		}
		to := nodeFrom(cand)
		out = append(out, Edge{From: n, To: to, Label: baseLetter(nt), Dir: dir})
	}
	return out
}

var baseLetters = [4]byte{'A', 'C', 'T', 'G'}

func baseLetter(nt int8) byte { return baseLetters[nt] }

// Successors returns n's outgoing edges.
func (g *Graph) Successors(n Node) []Edge { return g.neighbours(n, Outgoing) }

// Predecessors returns n's incoming edges.
func (g *Graph) Predecessors(n Node) []Edge { return g.neighbours(n, Incoming) }

// Neighbour tests a single candidate nucleotide in the given direction,
// reporting whether it exists.
func (g *Graph) Neighbour(n Node, dir Direction, nt int8) (Edge, bool) {
	oriented := n.oriented()
	var cand kmer.Code
	if dir == Outgoing {
		cand = oriented.Next(nt)
	} else {
		cand = oriented.Prev(nt)
	}
	canon, _ := cand.Canonical()
	if !g.Contains(canon) {
		return Edge{}, false
	}
	return Edge{From: n, To: nodeFrom(cand), Label: baseLetter(nt), Dir: dir}, true
}

// InDegree and OutDegree count live neighbours in each direction.
func (g *Graph) InDegree(n Node) int  { return len(g.Predecessors(n)) }
func (g *Graph) OutDegree(n Node) int { return len(g.Successors(n)) }

// IsBranching reports in-degree != 1 or out-degree != 1.
func (g *Graph) IsBranching(n Node) bool {
	return g.InDegree(n) != 1 || g.OutDegree(n) != 1
}

type invalidSeedErr struct{}

func (invalidSeedErr) Error() string { return "graph: seed window spans an invalid base" }

var errInvalidSeed = invalidSeedErr{}

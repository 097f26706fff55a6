package unitig

import (
	"github.com/shenwei356/dbgbuild/internal/graph"
	"github.com/shenwei356/dbgbuild/internal/kmer"
)

// fragment is one bucket worker's contribution towards a final unitig: a
// run of nucleotides bounded by true graph boundaries (branch/tip) on
// sides where the bucket's local view was sufficient, and by a "pending"
// marker on any side the walk had to stop purely because the bucket
// could not see past it.
type fragment struct {
	seq []byte

	pendingStart bool
	startKey     [4]uint64
	pendingEnd   bool
	endKey       [4]uint64

	circular bool
}

func orientedSeq(n graph.Node) []byte { return n.Oriented().Bytes() }

func halfKey(seq []byte) [4]uint64 {
	c, _ := kmer.Parse(seq)
	canon, _ := c.Canonical()
	return codeKey(canon)
}

// prefixKey and suffixKey compute the shared (k-1)-mer at a node's front
// or back extremity; a de Bruijn edge's two endpoints compute the same
// key from either side (cur's suffix == next's prefix), which is what
// lets Phase C match pending fragment ends without any side-channel.
func prefixKey(n graph.Node) [4]uint64 {
	seq := orientedSeq(n)
	return halfKey(seq[:len(seq)-1])
}

func suffixKey(n graph.Node) [4]uint64 {
	seq := orientedSeq(n)
	return halfKey(seq[1:])
}

// classifyStart reports whether c should begin a fragment in this
// bucket: either it is a genuine graph boundary (in-degree != 1), or its
// unique predecessor is invisible in this bucket's local member set, in
// which case the fragment starts here anyway but is flagged pending so
// Phase C glues it to whatever fragment upstream actually produced it.
func classifyStart(g *graph.Graph, local map[[4]uint64]kmer.Code, c kmer.Code) (start, pending bool) {
	n := graph.Node{Kmer: c}
	if g.InDegree(n) != 1 {
		return true, false
	}
	preds := g.Predecessors(n)
	if len(preds) == 0 {
		return true, false
	}
	if _, ok := local[codeKey(preds[0].To.Kmer)]; ok {
		return false, false
	}
	return true, true
}

// CompactBucket runs Phase B for one bucket: claim every
// local start candidate with a lock-free CAS, then walk forward,
// appending one base per step, until a branch, a tip, or the bucket's
// local boundary. A second, unconstrained sweep over whatever remains
// unclaimed picks up pure cycles (every node in a cycle has in- and
// out-degree 1, so no node in it is ever a "start").
func CompactBucket(g *graph.Graph, assign *BucketAssignment, bucketID uint32, claims *claimSet) []*fragment {
	local := assign.Members[bucketID]
	var out []*fragment

	inLocal := func(n graph.Node) bool {
		_, ok := local[codeKey(n.Kmer)]
		return ok
	}

	walk := func(start graph.Node, pendingStart bool) *fragment {
		f := &fragment{seq: append([]byte(nil), orientedSeq(start)...), pendingStart: pendingStart}
		if pendingStart {
			f.startKey = prefixKey(start)
		}
		cur := start
		for {
			edges := g.Successors(cur)
			if len(edges) != 1 {
				return f
			}
			next := edges[0].To
			if g.InDegree(next) != 1 {
				return f
			}
			if !inLocal(next) {
				f.pendingEnd, f.endKey = true, suffixKey(cur)
				return f
			}
			idx := g.Annot.Index(next.Kmer)
			if !claims.TryClaim(idx) {
				f.pendingEnd, f.endKey = true, suffixKey(cur)
				return f
			}
			f.seq = append(f.seq, edges[0].Label)
			cur = next
		}
	}

	for _, c := range local {
		idx := g.Annot.Index(c)
		if claims.IsClaimed(idx) {
			continue
		}
		start, pending := classifyStart(g, local, c)
		if !start {
			continue
		}
		if !claims.TryClaim(idx) {
			continue
		}
		out = append(out, walk(graph.Node{Kmer: c}, pending))
	}

	for _, c := range local {
		idx := g.Annot.Index(c)
		if claims.IsClaimed(idx) {
			continue
		}
		if !claims.TryClaim(idx) {
			continue
		}
		n := graph.Node{Kmer: c}
		seq := append([]byte(nil), orientedSeq(n)...)
		cur := n
		closed := false
		for {
			edges := g.Successors(cur)
			if len(edges) != 1 {
				break
			}
			next := edges[0].To
			if next.Kmer.Equal(n.Kmer) {
				closed = true
				break
			}
			idx2 := g.Annot.Index(next.Kmer)
			if !claims.TryClaim(idx2) {
				break
			}
			seq = append(seq, edges[0].Label)
			cur = next
		}
		out = append(out, &fragment{seq: seq, circular: closed})
	}

	return out
}

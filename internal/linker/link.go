package linker

import (
	"github.com/shenwei356/dbgbuild/internal/graph"
	"github.com/shenwei356/dbgbuild/internal/unitig"
)

// Link is one adjacency list entry: this extremity connects to
// ToUnitigID's ToPosition extremity. Orientation is that extremity's rc
// bit: true when its boundary k-mer, read along ToUnitigID's sequence,
// is the reverse complement of its canonical form.
type Link struct {
	ToUnitigID  uint64
	ToPosition  unitig.Position
	Orientation bool
}

// Links resolves every unitig's two extremities against the graph's
// own predecessor/successor edges and groups the matches by which
// unitig owns the neighbouring boundary node, updating each
// extremity's state to LINKED or DEAD_END as it goes, emitting at most
// 4+4 entries per unitig.
func (idx *Index) Links(g *graph.Graph, units []*unitig.Unitig) map[uint64][]Link {
	out := make(map[uint64][]Link, len(units))
	for _, u := range units {
		if len(u.Seq) < idx.k {
			continue
		}
		var links []Link
		for _, pos := range [2]unitig.Position{unitig.Begin, unitig.End} {
			node, _ := boundaryNode(u, idx.k, pos)
			var edges []graph.Edge
			if pos == unitig.Begin {
				edges = g.Predecessors(node)
			} else {
				edges = g.Successors(node)
			}
			found := false
			for _, e := range edges {
				for _, tup := range idx.owner[nodeKey(e.To)] {
					if tup.owner.ID == u.ID && tup.pos == pos {
						continue
					}
					// e.To read on the same strand as tup's boundary window
					// enters that unitig at its Begin when walking forward
					// (successors) and leaves it at its End when walking
					// backward (predecessors).
					sameStrand := e.To.Strand == tup.rc
					if sameStrand != ((pos == unitig.End) == (tup.pos == unitig.Begin)) {
						continue
					}
					links = append(links, Link{
						ToUnitigID:  tup.owner.ID,
						ToPosition:  tup.pos,
						Orientation: tup.rc,
					})
					found = true
				}
			}
			key := extremityKey{u.ID, pos}
			if found {
				idx.state[key] = Linked
			} else {
				idx.state[key] = DeadEnd
			}
		}
		out[u.ID] = links
	}
	return out
}

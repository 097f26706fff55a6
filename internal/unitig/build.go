package unitig

import "sync"

// Progress is the subset of progressbar.Bar the builder drives.
type Progress interface {
	Increment(delta int)
}

// glue runs Phase C: fragments that stopped at a bucket's
// local boundary are paired up by their shared (k-1)-mer key (computed
// identically from either side in compact.go) and unioned; each
// resulting chain is walked head-to-tail via the explicit match table
// and concatenated, trimming the k-1 overlapping bases at every join.
func glue(frags []*fragment, k int) []*Unitig {
	n := len(frags)
	if n == 0 {
		return nil
	}
	uf := newUnionFind(n)

	pendingStarts := make(map[[4]uint64][]int)
	for i, f := range frags {
		if f.pendingStart {
			pendingStarts[f.startKey] = append(pendingStarts[f.startKey], i)
		}
	}

	next := make(map[int]int, n)
	hasPred := make(map[int]bool, n)
	for i, f := range frags {
		if !f.pendingEnd {
			continue
		}
		cand := pendingStarts[f.endKey]
		if len(cand) == 0 {
			continue
		}
		j := cand[0]
		pendingStarts[f.endKey] = cand[1:]
		next[i] = j
		hasPred[j] = true
		uf.Union(int32(i), int32(j))
	}

	groups := make(map[int32][]int)
	for i := range frags {
		r := uf.Find(int32(i))
		groups[r] = append(groups[r], i)
	}

	var out []*Unitig
	var nextID uint64
	for _, members := range groups {
		head := -1
		for _, m := range members {
			if !hasPred[m] {
				head = m
				break
			}
		}
		if head == -1 {
			head = members[0]
		}
		seq := append([]byte(nil), frags[head].seq...)
		circular := frags[head].circular
		cur := head
		for steps := 0; steps <= len(members); steps++ {
			nxt, ok := next[cur]
			if !ok {
				break
			}
			if nxt == head {
				circular = true
				break
			}
			seq = append(seq, frags[nxt].seq[k-1:]...)
			cur = nxt
		}
		out = append(out, &Unitig{ID: nextID, Seq: seq, Circular: circular})
		nextID++
	}
	return out
}

// Build runs the bucketing-compaction-gluing pipeline: Phase B compacts
// every bucket concurrently (bounded by nbWorkers), Phase C glues the
// resulting fragments across bucket boundaries, and unitigs are
// numbered in emission order.
func Build(input *Input, nbWorkers int, progress Progress) []*Unitig {
	g, assign := input.Graph, input.Assignment
	if nbWorkers < 1 {
		nbWorkers = 1
	}
	nb := assign.NumBuckets()
	claims := newClaimSet(g.Annot.Domain())
	results := make([][]*fragment, nb)

	work := make(chan int, nb)
	for i := 0; i < nb; i++ {
		work <- i
	}
	close(work)

	var wg sync.WaitGroup
	for w := 0; w < nbWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for b := range work {
				results[b] = CompactBucket(g, assign, uint32(b), claims)
				if progress != nil {
					progress.Increment(1)
				}
			}
		}()
	}
	wg.Wait()

	var frags []*fragment
	for _, r := range results {
		frags = append(frags, r...)
	}
	return glue(frags, g.Model.K)
}

// Package unitig implements the BCALM-style compacted de Bruijn graph
// builder: minimizer bucketing, per-bucket compaction
// over the Graph facade, and cross-bucket gluing via a lock-free
// union-find.
package unitig

import (
	"github.com/shenwei356/dbgbuild/internal/graph"
	"github.com/shenwei356/dbgbuild/internal/kmer"
	"github.com/shenwei356/dbgbuild/internal/partition"
)

func codeKey(c kmer.Code) [4]uint64 { return c.W }

// BucketAssignment buckets solid k-mers by the minimizer partition of
// either the k-mer itself or either of its two (k-1)-mer extremities
//. A k-mer is duplicated into every bucket any of
// the three windows maps to; duplicates collapse within a bucket via the
// member map's key.
type BucketAssignment struct {
	table    *partition.Table
	full     *kmer.Model // K = k, ranks the k-mer's own window
	ext      *kmer.Model // K = k-1, ranks the two extremity windows; nil if m >= k-1
	Members  []map[[4]uint64]kmer.Code
}

// NewBucketAssignment prepares one member set per partition in table.
// full must already be the k-mer model used for counting (K=k); the
// extremity model (K=k-1) is derived internally and simply omitted (a
// k-mer then only ever lands in its own bucket) when m is too large to
// rank a (k-1)-mer, an edge case only tiny test k-mers hit.
func NewBucketAssignment(full *kmer.Model, table *partition.Table) *BucketAssignment {
	members := make([]map[[4]uint64]kmer.Code, table.NumPartitions())
	for i := range members {
		members[i] = make(map[[4]uint64]kmer.Code)
	}
	ext, err := kmer.NewModel(full.K-1, full.M, full.Order)
	if err != nil {
		ext = nil
	}
	return &BucketAssignment{table: table, full: full, ext: ext, Members: members}
}

func (a *BucketAssignment) windowPartition(model *kmer.Model, seq []byte) uint32 {
	var part uint32
	model.Iterate(seq, func(e kmer.Event) {
		part = a.table.PartitionOf(e.MinimizerCode)
	})
	return part
}

// Homes returns the deduplicated bucket ids c belongs to.
func (a *BucketAssignment) Homes(c kmer.Code) []uint32 {
	seq := c.Bytes()
	seen := make(map[uint32]struct{}, 3)
	homes := make([]uint32, 0, 3)
	add := func(p uint32) {
		if _, ok := seen[p]; !ok {
			seen[p] = struct{}{}
			homes = append(homes, p)
		}
	}
	add(a.windowPartition(a.full, seq))
	if a.ext != nil && len(seq) > 1 {
		add(a.windowPartition(a.ext, seq[:len(seq)-1]))
		add(a.windowPartition(a.ext, seq[1:]))
	}
	return homes
}

// Assign places every solid k-mer into every bucket it homes to.
func (a *BucketAssignment) Assign(codes []kmer.Code) {
	for _, c := range codes {
		for _, b := range a.Homes(c) {
			a.Members[b][codeKey(c)] = c
		}
	}
}

// NumBuckets returns P.
func (a *BucketAssignment) NumBuckets() int { return len(a.Members) }

// Input bundles the graph facade and the Phase A bucketing it was built
// over, the unit Build operates on.
type Input struct {
	Graph      *graph.Graph
	Assignment *BucketAssignment
}

// NewInput runs Phase A: buckets every solid k-mer under g and returns
// the ready-to-compact Input.
func NewInput(g *graph.Graph, table *partition.Table, codes []kmer.Code) *Input {
	assign := NewBucketAssignment(g.Model, table)
	assign.Assign(codes)
	return &Input{Graph: g, Assignment: assign}
}

// Package mphf implements the minimal perfect hash annotation store over
// solid k-mers: a from-scratch compress-hash-displace (CHD) construction
// against this module's own key and bucket types, plus the parallel
// abundance/deleted arrays it indexes.
package mphf

import (
	"sort"

	"github.com/pkg/errors"
)

// maxSeedAttempts bounds the per-bucket seed search before construction
// is declared infeasible.
const maxSeedAttempts = 1 << 17

// Builder accumulates the key set before Freeze computes the
// displacement seeds.
type Builder struct {
	seen map[uint64]struct{}
	keys []uint64
	salt uint64
}

// NewBuilder creates an empty MPHF builder keyed by a fixed salt so
// construction is reproducible given the same key set and salt.
func NewBuilder(salt uint64) *Builder {
	return &Builder{seen: make(map[uint64]struct{}), salt: salt}
}

// Add registers one key (the caller derives it from a solid k-mer, e.g.
// via xxhash over the canonical encoding). Duplicate keys are an error:
// the MPHF domain must be exactly the solid set, one entry each.
func (b *Builder) Add(key uint64) error {
	if _, ok := b.seen[key]; ok {
		return errors.Errorf("mphf: duplicate key %x", key)
	}
	b.seen[key] = struct{}{}
	b.keys = append(b.keys, key)
	return nil
}

// Len returns the number of distinct keys added so far.
func (b *Builder) Len() int { return len(b.keys) }

type bucket struct {
	slot uint32
	keys []uint64
}

type bucketsByOccupancy []bucket

func (b bucketsByOccupancy) Len() int           { return len(b) }
func (b bucketsByOccupancy) Less(i, j int) bool { return len(b[i].keys) > len(b[j].keys) }
func (b bucketsByOccupancy) Swap(i, j int)      { b[i], b[j] = b[j], b[i] }

// MPHF is a frozen bijection over exactly the key set it was built from:
// the displacement table places every key in a collision-free slot of a
// power-of-two table, and the rank table then compresses that sparse
// placement down to a dense index in [0, domain).
type MPHF struct {
	seeds     []uint32
	rank      []uint32 // length tableSize; rank[slot] = occupied slots before slot
	salt      uint64
	tableSize int // displacement table size (power of 2), >= domain
	domain    int // number of keys, the actual minimal codomain size
}

// Freeze builds the displacement table at the given load factor
// (suggested 0.75-0.9); lower load factors make construction faster at
// the cost of a larger table. The table is then compressed via a rank
// step so Find returns a dense index in [0, Domain()).
func (b *Builder) Freeze(load float64) (*MPHF, error) {
	if load <= 0 || load > 1 {
		load = 0.8
	}
	nKeys := len(b.keys)
	if nKeys == 0 {
		return &MPHF{salt: b.salt, tableSize: 0, domain: 0}, nil
	}
	m := nextPow2(uint64(float64(nKeys) / load))

	buckets := make([]bucket, m)
	for i := range buckets {
		buckets[i].slot = uint32(i)
	}
	for _, key := range b.keys {
		j := rhash(0, key, m, b.salt)
		buckets[j].keys = append(buckets[j].keys, key)
	}
	sort.Sort(bucketsByOccupancy(buckets))

	seeds := make([]uint32, m)
	occupied := make([]bool, m)
	bucketOcc := make([]bool, m)

	for i := range buckets {
		bkt := &buckets[i]
		if len(bkt.keys) == 0 {
			continue
		}
		found := false
		for s := uint32(1); s < maxSeedAttempts; s++ {
			for k := range bucketOcc {
				bucketOcc[k] = false
			}
			collided := false
			for _, key := range bkt.keys {
				h := rhash(s, key, m, b.salt)
				if occupied[h] || bucketOcc[h] {
					collided = true
					break
				}
				bucketOcc[h] = true
			}
			if collided {
				continue
			}
			for k, v := range bucketOcc {
				if v {
					occupied[k] = true
				}
			}
			seeds[bkt.slot] = s
			found = true
			break
		}
		if !found {
			return nil, errors.Errorf("mphf: no perfect hash found after %d seed attempts", maxSeedAttempts)
		}
	}

	rank := make([]uint32, m)
	var acc uint32
	for i := uint64(0); i < m; i++ {
		rank[i] = acc
		if occupied[i] {
			acc++
		}
	}
	if int(acc) != nKeys {
		return nil, errors.Errorf("mphf: rank compression produced %d occupied slots, want %d", acc, nKeys)
	}
	return &MPHF{seeds: seeds, rank: rank, salt: b.salt, tableSize: int(m), domain: nKeys}, nil
}

// Find returns the unique index in [0, Domain()) for key. The result is
// meaningful only for keys that were present at construction time; it
// gives no membership guarantee for keys outside that set, so callers
// must independently confirm membership.
func (h *MPHF) Find(key uint64) uint64 {
	if h.tableSize == 0 {
		return 0
	}
	m := uint64(h.tableSize)
	b := rhash(0, key, m, h.salt)
	slot := rhash(h.seeds[b], key, m, h.salt)
	return uint64(h.rank[slot])
}

// Domain returns the size of the minimal codomain: exactly the number of
// keys the MPHF was built from.
func (h *MPHF) Domain() int { return h.domain }

func mix(x uint64) uint64 {
	x ^= x >> 23
	x *= 0x2127599bf4325c37
	x ^= x >> 47
	return x
}

// rhash hashes key with seed and salt, reduced modulo sz (a power of
// two), using a SuperFastHash-style mixer.
func rhash(seed uint32, key, sz, salt uint64) uint64 {
	const m uint64 = 0x880355f21e6d1965
	h := key
	h *= m
	h ^= mix(salt)
	h *= m
	h ^= mix(uint64(seed))
	h *= m
	return mix(h) & (sz - 1)
}

func nextPow2(n uint64) uint64 {
	if n < 1 {
		return 1
	}
	n--
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n |= n >> 32
	return n + 1
}

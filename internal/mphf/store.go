package mphf

import (
	"encoding/binary"
	"sync/atomic"

	"github.com/cespare/xxhash"
	"github.com/pkg/errors"

	"github.com/shenwei356/dbgbuild/internal/kmer"
	"github.com/shenwei356/dbgbuild/internal/store"
)

// keyOf derives the CHD builder key for a canonical k-mer code.
func keyOf(c kmer.Code) uint64 { return xxhash.Sum64(c.Bytes()) }

// Store is the MPHF annotation store over a solid k-mer set:
// a perfect hash plus parallel abundance and deleted arrays indexed by
// h(x).
type Store struct {
	h         *MPHF
	abundance []uint8
	deleted   []uint32 // bit-packed, one bit per MPHF slot
}

const saturatedAbundance = 0xff

func saturate8(n uint64) uint8 {
	if n > saturatedAbundance {
		return saturatedAbundance
	}
	return uint8(n)
}

// Build constructs the MPHF and populates abundance[] from the solid
// k-mer set. codes and abundances must be parallel slices of equal
// length: the solid k-mers stream into a CHD perfect-hash constructor
// that produces a bijection over exactly N keys.
func Build(salt uint64, codes []kmer.Code, abundances []uint64) (*Store, error) {
	if len(codes) != len(abundances) {
		return nil, errors.New("mphf: codes and abundances length mismatch")
	}
	b := NewBuilder(salt)
	for _, c := range codes {
		if err := b.Add(keyOf(c)); err != nil {
			return nil, errors.Wrap(err, "mphf: building from solid set")
		}
	}
	h, err := b.Freeze(0.8)
	if err != nil {
		return nil, err
	}
	s := &Store{
		h:         h,
		abundance: make([]uint8, h.Domain()),
		deleted:   make([]uint32, (h.Domain()+31)/32),
	}
	for i, c := range codes {
		idx := h.Find(keyOf(c))
		s.abundance[idx] = saturate8(abundances[i])
	}
	return s, nil
}

// Index returns h(x); callers must have already confirmed x is solid
// via the Bloom+cFP structure, since Find gives no membership guarantee
// on its own.
func (s *Store) Index(x kmer.Code) uint64 { return s.h.Find(keyOf(x)) }

// Abundance returns the saturated total abundance recorded for index i.
func (s *Store) Abundance(i uint64) uint8 { return s.abundance[i] }

// IsDeleted reports whether index i has been marked deleted.
func (s *Store) IsDeleted(i uint64) bool {
	word := atomic.LoadUint32(&s.deleted[i/32])
	return word&(1<<(i%32)) != 0
}

// Delete sets the deletion bit for index i using a word-wise CAS loop.
func (s *Store) Delete(i uint64) {
	mask := uint32(1) << (i % 32)
	w := &s.deleted[i/32]
	for {
		old := atomic.LoadUint32(w)
		if old&mask != 0 {
			return
		}
		if atomic.CompareAndSwapUint32(w, old, old|mask) {
			return
		}
	}
}

// Undelete clears the deletion bit for index i.
func (s *Store) Undelete(i uint64) {
	mask := uint32(1) << (i % 32)
	w := &s.deleted[i/32]
	for {
		old := atomic.LoadUint32(w)
		if old&mask == 0 {
			return
		}
		if atomic.CompareAndSwapUint32(w, old, old&^mask) {
			return
		}
	}
}

// Domain returns the number of keys the MPHF was built from: the size of
// its minimal codomain, and the length of the parallel abundance/deleted
// arrays.
func (s *Store) Domain() int { return s.h.Domain() }

// Encode serialises the store to a flat byte blob: MPHF seed table,
// rank table, abundance array, deleted bitmap, in that order, each
// length-prefixed. Persisted under the "mphf" Group.
func (s *Store) Encode() []byte {
	seedBytes := make([]byte, 4*len(s.h.seeds))
	for i, v := range s.h.seeds {
		binary.LittleEndian.PutUint32(seedBytes[4*i:], v)
	}
	rankBytes := make([]byte, 4*len(s.h.rank))
	for i, v := range s.h.rank {
		binary.LittleEndian.PutUint32(rankBytes[4*i:], v)
	}
	header := make([]byte, 8+8+4+4+4+4+4)
	binary.LittleEndian.PutUint64(header[0:8], s.h.salt)
	binary.LittleEndian.PutUint64(header[8:16], uint64(s.h.tableSize))
	binary.LittleEndian.PutUint32(header[16:20], uint32(s.h.domain))
	binary.LittleEndian.PutUint32(header[20:24], uint32(len(seedBytes)))
	binary.LittleEndian.PutUint32(header[24:28], uint32(len(rankBytes)))
	binary.LittleEndian.PutUint32(header[28:32], uint32(len(s.abundance)))
	binary.LittleEndian.PutUint32(header[32:36], uint32(len(s.deleted)*4))

	out := make([]byte, 0, len(header)+len(seedBytes)+len(rankBytes)+len(s.abundance)+len(s.deleted)*4)
	out = append(out, header...)
	out = append(out, seedBytes...)
	out = append(out, rankBytes...)
	out = append(out, s.abundance...)
	for _, w := range s.deleted {
		var b [4]byte
		binary.LittleEndian.PutUint32(b[:], w)
		out = append(out, b[:]...)
	}
	return out
}

// Decode reconstructs a Store from bytes produced by Encode. The slice
// is expected to back a read-only mmap region once the store is sealed.
func Decode(data []byte) (*Store, error) {
	if len(data) < 36 {
		return nil, errors.New("mphf: truncated header")
	}
	salt := binary.LittleEndian.Uint64(data[0:8])
	tableSize := binary.LittleEndian.Uint64(data[8:16])
	domain := binary.LittleEndian.Uint32(data[16:20])
	seedLen := binary.LittleEndian.Uint32(data[20:24])
	rankLen := binary.LittleEndian.Uint32(data[24:28])
	abLen := binary.LittleEndian.Uint32(data[28:32])
	delLen := binary.LittleEndian.Uint32(data[32:36])

	off := 36
	if len(data) < off+int(seedLen)+int(rankLen)+int(abLen)+int(delLen) {
		return nil, errors.New("mphf: truncated body")
	}
	seeds := make([]uint32, seedLen/4)
	for i := range seeds {
		seeds[i] = binary.LittleEndian.Uint32(data[off+4*i:])
	}
	off += int(seedLen)
	rank := make([]uint32, rankLen/4)
	for i := range rank {
		rank[i] = binary.LittleEndian.Uint32(data[off+4*i:])
	}
	off += int(rankLen)
	abundance := make([]uint8, abLen)
	copy(abundance, data[off:off+int(abLen)])
	off += int(abLen)
	deleted := make([]uint32, delLen/4)
	for i := range deleted {
		deleted[i] = binary.LittleEndian.Uint32(data[off+4*i:])
	}

	return &Store{
		h:         &MPHF{seeds: seeds, rank: rank, salt: salt, tableSize: int(tableSize), domain: int(domain)},
		abundance: abundance,
		deleted:   deleted,
	}, nil
}

// SealTo persists the store as one record in a collection called name
// inside group g, so it can later be reopened via the container's mmap
// backend for read-only queries.
func SealTo(g *store.Group, name string, s *Store) error {
	data := s.Encode()
	coll, err := g.CreateCollection(name, len(data))
	if err != nil {
		return errors.Wrapf(err, "mphf: creating %s", name)
	}
	if err := coll.Append(data); err != nil {
		return errors.Wrapf(err, "mphf: writing %s", name)
	}
	return coll.Seal()
}

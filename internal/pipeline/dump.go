package pipeline

import (
	"encoding/binary"

	"github.com/shenwei356/dbgbuild/internal/kmer"
	"github.com/shenwei356/dbgbuild/internal/store"
)

// EncodeCountRecord packs a canonical k-mer and its per-bank abundance
// vector as "<kmer bytes: ceil(2k/8)>
// <abundance: 2 bytes little-endian>", repeated once per bank.
func EncodeCountRecord(code kmer.Code, counts []uint16) []byte {
	kb := code.Packed()
	out := make([]byte, len(kb)+2*len(counts))
	copy(out, kb)
	off := len(kb)
	for _, c := range counts {
		binary.LittleEndian.PutUint16(out[off:], c)
		off += 2
	}
	return out
}

// DecodeCountRecord is EncodeCountRecord's inverse, given the k-mer size
// and bank count a collection's metadata records.
func DecodeCountRecord(data []byte, k, nbBanks int) (kmer.Code, []uint16) {
	nKmerBytes := (2*k + 7) / 8
	code := kmer.Unpack(data[:nKmerBytes], k)
	counts := make([]uint16, nbBanks)
	off := nKmerBytes
	for i := range counts {
		counts[i] = binary.LittleEndian.Uint16(data[off:])
		off += 2
	}
	return code, counts
}

// Dump writes surviving records to a partitioned output collection, one
// output partition per input partition so sorted order is preserved.
type Dump struct {
	out *store.Partitioned
}

// NewDump wraps an already-created output Partitioned store.
func NewDump(out *store.Partitioned) *Dump { return &Dump{out: out} }

func (d *Dump) Begin(cfg Config) error { return nil }

func (d *Dump) BeginPart(pass, part int, cacheRecords int, name string) error { return nil }

func (d *Dump) Process(partID int, code kmer.Code, counts []uint16, sum uint64) (bool, error) {
	rec := EncodeCountRecord(code, counts)
	if err := d.out.Writer(partID).Append(rec); err != nil {
		return false, err
	}
	return true, nil
}

func (d *Dump) EndPart(partID int) error { return d.out.Writer(partID).Flush() }

func (d *Dump) End() error { return d.out.SealAll() }

// Clone returns itself: every worker writes through the same
// Partitioned store, whose writer caches already serialise per-partition
// appends.
func (d *Dump) Clone() Processor { return d }

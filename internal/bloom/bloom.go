// Package bloom implements the Bloom filter and cascading
// critical-false-positive (cFP) structure over solid k-mers: a
// constant-time, bounded-memory "is this k-mer a graph node" query.
package bloom

import (
	"math"
	"sync/atomic"

	"github.com/shenwei356/dbgbuild/internal/kmer"
)

// Kind selects the Bloom variant.
type Kind int

const (
	KindBasic Kind = iota
	KindCache
)

func (k Kind) String() string {
	if k == KindCache {
		return "cache"
	}
	return "basic"
}

// DefaultFalsePositiveRate is p = 2^-4.
const DefaultFalsePositiveRate = 1.0 / 16

// blockBits is the cache-line-sized block used by the cache-coherent
// variant: 64 bytes = 512 bits.
const blockBits = 64 * 8

// Bloom is a bit array with h hash functions derived from two base
// hashes by double hashing.
type Bloom struct {
	kind     Kind
	words    []uint32 // bit array, word-level atomic OR
	sizeBits uint64
	nbHash   uint32
}

// New sizes a Bloom filter for n expected elements at false-positive
// rate p.6: size = -(N*ln p)/(ln 2)^2, h = round(ln2 * n/N).
func New(kind Kind, n uint64, p float64) *Bloom {
	if p <= 0 || p >= 1 {
		p = DefaultFalsePositiveRate
	}
	if n == 0 {
		n = 1
	}
	sizeBits := uint64(math.Ceil(-(float64(n) * math.Log(p)) / (math.Ln2 * math.Ln2)))
	if kind == KindCache {
		// round up to a whole number of cache-line blocks
		sizeBits = ((sizeBits + blockBits - 1) / blockBits) * blockBits
	}
	if sizeBits == 0 {
		sizeBits = blockBits
	}
	nbHash := uint32(math.Round(math.Ln2 * float64(sizeBits) / float64(n)))
	if nbHash == 0 {
		nbHash = 1
	}
	nWords := (sizeBits + 31) / 32
	return &Bloom{kind: kind, words: make([]uint32, nWords), sizeBits: sizeBits, nbHash: nbHash}
}

// Kind returns the filter's variant.
func (b *Bloom) Kind() Kind { return b.kind }

// SizeBits returns the bit array size.
func (b *Bloom) SizeBits() uint64 { return b.sizeBits }

// NbHash returns the number of hash probes.
func (b *Bloom) NbHash() uint32 { return b.nbHash }

func (b *Bloom) setBit(pos uint64) {
	word := pos / 32
	mask := uint32(1) << (pos % 32)
	for {
		old := atomic.LoadUint32(&b.words[word])
		if old&mask != 0 {
			return
		}
		if atomic.CompareAndSwapUint32(&b.words[word], old, old|mask) {
			return
		}
	}
}

func (b *Bloom) testBit(pos uint64) bool {
	word := pos / 32
	mask := uint32(1) << (pos % 32)
	return atomic.LoadUint32(&b.words[word])&mask != 0
}

// positions returns the h probe positions for a code, using the
// cache-coherent reduction when Kind is KindCache: the first probe
// selects a 64-byte block, and the remaining h-1 probes are reduced
// into that block.
func (b *Bloom) positions(code kmer.Code) []uint64 {
	h1, h2 := doubleHash(code)
	out := make([]uint64, b.nbHash)
	if b.kind == KindCache {
		nBlocks := b.sizeBits / blockBits
		block := h1 % nBlocks
		base := block * blockBits
		out[0] = base + (h1 % blockBits)
		for i := uint32(1); i < b.nbHash; i++ {
			out[i] = base + ((h2 + uint64(i)*h1) % blockBits)
		}
		return out
	}
	for i := uint32(0); i < b.nbHash; i++ {
		out[i] = (h1 + uint64(i)*h2) % b.sizeBits
	}
	return out
}

// Insert adds code to the filter using word-level atomic OR per probe.
func (b *Bloom) Insert(code kmer.Code) {
	for _, pos := range b.positions(code) {
		b.setBit(pos)
	}
}

// Contains reports whether every one of code's h probes is set. False
// positives are possible; false negatives are not.
func (b *Bloom) Contains(code kmer.Code) bool {
	for _, pos := range b.positions(code) {
		if !b.testBit(pos) {
			return false
		}
	}
	return true
}

// Bits returns the raw bit array as packed bytes, little-endian within
// each word, for serialisation.
func (b *Bloom) Bits() []byte {
	n := (b.sizeBits + 7) / 8
	out := make([]byte, n)
	for i := uint64(0); i < n; i++ {
		word := b.words[i/4]
		shift := uint((i % 4) * 8)
		out[i] = byte(word >> shift)
	}
	return out
}

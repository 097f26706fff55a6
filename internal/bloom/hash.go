package bloom

import (
	"github.com/cespare/xxhash"
	farm "github.com/dgryski/go-farm"

	"github.com/shenwei356/dbgbuild/internal/kmer"
)

// doubleHash derives two independent base hashes for a k-mer code, used
// to synthesise h probe positions by double hashing: h_i =
// h1 + i*h2. xxhash and farm are chosen deliberately as two unrelated
// hash families so the probes stay independent ( P4 assumes
// independent hashes).
func doubleHash(code kmer.Code) (h1, h2 uint64) {
	b := code.Bytes()
	h1 = xxhash.Sum64(b)
	h2 = farm.Hash64WithSeed(b, 0x9e3779b97f4a7c15)
	if h2 == 0 {
		h2 = 1
	}
	return h1, h2
}

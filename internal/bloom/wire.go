package bloom

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

// Encode serialises a Bloom filter as
// "<size_bits: 8 bytes><nb_hash: 4 bytes><seed: 4 bytes><bits: ceil(size/8) bytes>".
// seed is always 0: the two base hashes are fixed algorithm choices, not
// a per-build random seed.
func (b *Bloom) Encode() []byte {
	bits := b.Bits()
	out := make([]byte, 8+4+4+len(bits))
	binary.LittleEndian.PutUint64(out[0:8], b.sizeBits)
	binary.LittleEndian.PutUint32(out[8:12], b.nbHash)
	binary.LittleEndian.PutUint32(out[12:16], 0)
	copy(out[16:], bits)
	return out
}

// Decode parses a Bloom filter encoded by Encode, with the given kind
// (kind is a store metadata field, not part of the wire payload itself).
func Decode(kind Kind, data []byte) (*Bloom, error) {
	if len(data) < 16 {
		return nil, errors.New("bloom: truncated header")
	}
	sizeBits := binary.LittleEndian.Uint64(data[0:8])
	nbHash := binary.LittleEndian.Uint32(data[8:12])
	bits := data[16:]
	want := int((sizeBits + 7) / 8)
	if len(bits) < want {
		return nil, errors.New("bloom: truncated bit array")
	}
	nWords := (sizeBits + 31) / 32
	words := make([]uint32, nWords)
	for i := 0; i < want; i++ {
		words[i/4] |= uint32(bits[i]) << uint((i%4)*8)
	}
	return &Bloom{kind: kind, words: words, sizeBits: sizeBits, nbHash: nbHash}, nil
}

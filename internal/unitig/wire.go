package unitig

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

var baseForCode = [4]byte{'A', 'C', 'T', 'G'}

func codeForBase(b byte) byte {
	switch b {
	case 'A', 'a':
		return 0
	case 'C', 'c':
		return 1
	case 'T', 't':
		return 2
	case 'G', 'g':
		return 3
	default:
		return 0
	}
}

// packSeqLE 2-bit packs seq, four bases per byte, little-endian within
// the byte (first base in the low bits), zero-padding the final partial
// byte.
func packSeqLE(seq []byte) []byte {
	out := make([]byte, (len(seq)+3)/4)
	for i, b := range seq {
		out[i/4] |= codeForBase(b) << uint(2*(i%4))
	}
	return out
}

func unpackSeqLE(data []byte, n int) []byte {
	out := make([]byte, n)
	for i := 0; i < n; i++ {
		code := (data[i/4] >> uint(2*(i%4))) & 0x3
		out[i] = baseForCode[code]
	}
	return out
}

const (
	tagCircular = 1 << 0
	tagDeleted  = 1 << 1
)

// EncodeUnitigRecord serialises u as
// <length:4B><nucleotides 2-bit packed><metadata tag:1B>. Links are a
// separate collection, written by the linker package.
func EncodeUnitigRecord(u *Unitig) []byte {
	packed := packSeqLE(u.Seq)
	out := make([]byte, 4+len(packed)+1)
	binary.LittleEndian.PutUint32(out[0:4], uint32(len(u.Seq)))
	copy(out[4:], packed)
	tag := byte(0)
	if u.Circular {
		tag |= tagCircular
	}
	if u.Deleted {
		tag |= tagDeleted
	}
	out[len(out)-1] = tag
	return out
}

// DecodeUnitigRecord is EncodeUnitigRecord's inverse.
func DecodeUnitigRecord(data []byte) (*Unitig, error) {
	if len(data) < 5 {
		return nil, errors.New("unitig: truncated record header")
	}
	length := binary.LittleEndian.Uint32(data[0:4])
	packedLen := (int(length) + 3) / 4
	if len(data) < 4+packedLen+1 {
		return nil, errors.New("unitig: truncated record body")
	}
	seq := unpackSeqLE(data[4:4+packedLen], int(length))
	tag := data[4+packedLen]
	return &Unitig{
		Seq:      seq,
		Circular: tag&tagCircular != 0,
		Deleted:  tag&tagDeleted != 0,
	}, nil
}

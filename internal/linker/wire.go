package linker

import (
	"encoding/binary"

	"github.com/pkg/errors"

	"github.com/shenwei356/dbgbuild/internal/unitig"
)

const (
	orientFlag  = 1 << 0
	positionEnd = 1 << 1
)

// EncodeLinks serialises one unitig's adjacency list as
// <link_count:1B> followed by that many
// <unitig_id:8B little-endian><flags:1B>.
func EncodeLinks(links []Link) []byte {
	out := make([]byte, 1+9*len(links))
	out[0] = byte(len(links))
	off := 1
	for _, l := range links {
		binary.LittleEndian.PutUint64(out[off:], l.ToUnitigID)
		off += 8
		var flags byte
		if l.Orientation {
			flags |= orientFlag
		}
		if l.ToPosition == unitig.End {
			flags |= positionEnd
		}
		out[off] = flags
		off++
	}
	return out
}

// DecodeLinks is EncodeLinks' inverse.
func DecodeLinks(data []byte) ([]Link, error) {
	if len(data) < 1 {
		return nil, errors.New("linker: truncated link record")
	}
	n := int(data[0])
	if len(data) < 1+9*n {
		return nil, errors.New("linker: truncated link entries")
	}
	out := make([]Link, n)
	off := 1
	for i := 0; i < n; i++ {
		id := binary.LittleEndian.Uint64(data[off:])
		off += 8
		flags := data[off]
		off++
		pos := unitig.Begin
		if flags&positionEnd != 0 {
			pos = unitig.End
		}
		out[i] = Link{ToUnitigID: id, ToPosition: pos, Orientation: flags&orientFlag != 0}
	}
	return out, nil
}

package store

import (
	"bytes"
	"encoding/binary"
	"io"
	"os"
	"sync"

	"github.com/pkg/errors"
)

// hdf5Magic identifies the single-file container's trailer.
const hdf5Magic = "DBGH5C01"

// dirEntry locates one collection's data and metadata sections inside the
// single container file.
type dirEntry struct {
	DataOff, DataLen int64
	MetaOff, MetaLen int64
}

// HDF5LikeBackend is the "hdf5-like" container kind: all collections live
// inside one file with a group hierarchy expressed purely through dotted
// identifiers. This module does not implement real HDF5; this is a
// from-scratch equivalent honouring the same group/collection contract.
type HDF5LikeBackend struct {
	mu      sync.Mutex
	writeMu sync.Mutex // serialises section writers: a single-file container
	// can only grow safely one open stream at a time.
	file *os.File
	dir  map[string]*dirEntry
	end  int64
}

// CreateHDF5Like creates a fresh single-file container at path.
func CreateHDF5Like(path string) (*HDF5LikeBackend, error) {
	fh, err := os.Create(path)
	if err != nil {
		return nil, errors.Wrapf(err, "store: creating container %s", path)
	}
	return &HDF5LikeBackend{file: fh, dir: make(map[string]*dirEntry)}, nil
}

// OpenHDF5Like reopens an existing single-file container for reading.
func OpenHDF5Like(path string) (*HDF5LikeBackend, error) {
	fh, err := os.OpenFile(path, os.O_RDWR, 0o644)
	if err != nil {
		return nil, errors.Wrapf(err, "store: opening container %s", path)
	}
	b := &HDF5LikeBackend{file: fh, dir: make(map[string]*dirEntry)}
	if err := b.readTrailer(); err != nil {
		fh.Close()
		return nil, err
	}
	return b, nil
}

func (b *HDF5LikeBackend) entry(id string) *dirEntry {
	e, ok := b.dir[id]
	if !ok {
		e = &dirEntry{}
		b.dir[id] = e
	}
	return e
}

type sectionWriter struct {
	b      *HDF5LikeBackend
	id     string
	isMeta bool
	off    int64
	n      int64
}

func (w *sectionWriter) Write(p []byte) (int, error) {
	w.b.mu.Lock()
	defer w.b.mu.Unlock()
	n, err := w.b.file.WriteAt(p, w.off+w.n)
	if err != nil {
		return n, errors.Wrapf(ErrStorageFull, "store: writing container section %s: %v", w.id, err)
	}
	w.n += int64(n)
	return n, nil
}

func (w *sectionWriter) Close() error {
	w.b.mu.Lock()
	e := w.b.entry(w.id)
	if w.isMeta {
		e.MetaOff, e.MetaLen = w.off, w.n
	} else {
		e.DataOff, e.DataLen = w.off, w.n
	}
	if end := w.off + w.n; end > w.b.end {
		w.b.end = end
	}
	b := w.b
	b.mu.Unlock()
	b.writeMu.Unlock()
	return nil
}

// createStream serialises against any other open writer: the single
// container file only grows safely with one active writer at a time.
func (b *HDF5LikeBackend) createStream(id string) (io.WriteCloser, error) {
	b.writeMu.Lock()
	b.mu.Lock()
	off := b.end
	b.mu.Unlock()
	return &sectionWriter{b: b, id: id, off: off}, nil
}

// reserve must be called with writeMu held: it hands the caller exclusive
// ownership of [off, off+n) at the tail of the file.
func (b *HDF5LikeBackend) reserve(n int64) int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	off := b.end
	b.end += n
	return off
}

func (b *HDF5LikeBackend) openStream(id string) (io.ReadCloser, error) {
	e, ok := b.dir[id]
	if !ok || e.DataLen == 0 {
		if !ok {
			return nil, errors.Wrapf(ErrCorruptPartition, "store: unknown collection %s", id)
		}
	}
	sr := io.NewSectionReader(b.file, e.DataOff, e.DataLen)
	return io.NopCloser(sr), nil
}

func (b *HDF5LikeBackend) writeMeta(id string, meta Metadata) error {
	b.writeMu.Lock()
	defer b.writeMu.Unlock()
	var buf bytes.Buffer
	if err := writeMetaTLV(&buf, meta); err != nil {
		return err
	}
	off := b.reserve(int64(buf.Len()))
	b.mu.Lock()
	_, err := b.file.WriteAt(buf.Bytes(), off)
	if err == nil {
		e := b.entry(id)
		e.MetaOff, e.MetaLen = off, int64(buf.Len())
	}
	b.mu.Unlock()
	if err != nil {
		return errors.Wrapf(err, "store: writing metadata for %s", id)
	}
	return nil
}

func (b *HDF5LikeBackend) readMeta(id string) (Metadata, bool, error) {
	e, ok := b.dir[id]
	if !ok || e.MetaLen == 0 {
		return nil, false, nil
	}
	sr := io.NewSectionReader(b.file, e.MetaOff, e.MetaLen)
	m, err := readMetaTLV(sr)
	if err != nil {
		return nil, false, errors.Wrapf(ErrCorruptPartition, "store: metadata %s: %v", id, err)
	}
	return m, true, nil
}

// close writes the trailer directory so the container can be reopened.
func (b *HDF5LikeBackend) close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	var buf bytes.Buffer
	var lenBuf [4]byte
	var i64Buf [8]byte
	for id, e := range b.dir {
		binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(id)))
		buf.Write(lenBuf[:])
		buf.WriteString(id)
		for _, v := range []int64{e.DataOff, e.DataLen, e.MetaOff, e.MetaLen} {
			binary.LittleEndian.PutUint64(i64Buf[:], uint64(v))
			buf.Write(i64Buf[:])
		}
	}
	footerOff := b.end
	if _, err := b.file.WriteAt(buf.Bytes(), footerOff); err != nil {
		return errors.Wrap(err, "store: writing container trailer")
	}
	var trailer [8 + 8 + 8]byte
	copy(trailer[:8], hdf5Magic)
	binary.LittleEndian.PutUint64(trailer[8:16], uint64(footerOff))
	binary.LittleEndian.PutUint64(trailer[16:24], uint64(buf.Len()))
	if _, err := b.file.WriteAt(trailer[:], footerOff+int64(buf.Len())); err != nil {
		return errors.Wrap(err, "store: writing container trailer header")
	}
	return b.file.Close()
}

func (b *HDF5LikeBackend) readTrailer() error {
	info, err := b.file.Stat()
	if err != nil {
		return errors.Wrap(err, "store: stat container")
	}
	if info.Size() < 24 {
		return errors.Wrap(ErrCorruptPartition, "store: container too small for trailer")
	}
	var trailer [24]byte
	if _, err := b.file.ReadAt(trailer[:], info.Size()-24); err != nil {
		return errors.Wrap(err, "store: reading container trailer")
	}
	if string(trailer[:8]) != hdf5Magic {
		return errors.Wrap(ErrCorruptPartition, "store: bad container magic")
	}
	footerOff := int64(binary.LittleEndian.Uint64(trailer[8:16]))
	footerLen := int64(binary.LittleEndian.Uint64(trailer[16:24]))
	buf := make([]byte, footerLen)
	if _, err := b.file.ReadAt(buf, footerOff); err != nil {
		return errors.Wrap(err, "store: reading container directory")
	}
	r := bytes.NewReader(buf)
	var lenBuf [4]byte
	var i64Buf [8]byte
	for r.Len() > 0 {
		if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
			return errors.Wrap(ErrCorruptPartition, "store: truncated container directory")
		}
		idLen := binary.LittleEndian.Uint32(lenBuf[:])
		idBuf := make([]byte, idLen)
		if _, err := io.ReadFull(r, idBuf); err != nil {
			return errors.Wrap(ErrCorruptPartition, "store: truncated container directory")
		}
		vals := make([]int64, 4)
		for i := range vals {
			if _, err := io.ReadFull(r, i64Buf[:]); err != nil {
				return errors.Wrap(ErrCorruptPartition, "store: truncated container directory")
			}
			vals[i] = int64(binary.LittleEndian.Uint64(i64Buf[:]))
		}
		b.dir[string(idBuf)] = &dirEntry{DataOff: vals[0], DataLen: vals[1], MetaOff: vals[2], MetaLen: vals[3]}
		b.end = footerOff
	}
	return nil
}

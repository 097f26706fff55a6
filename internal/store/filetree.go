package store

import (
	"encoding/binary"
	"io"
	"os"
	"path/filepath"

	"github.com/edsrzf/mmap-go"
	"github.com/pkg/errors"
)

// FileTreeBackend is the "file-tree" container kind: one OS file per
// collection, named by its dotted identifier, plus a sidecar .meta file.
type FileTreeBackend struct {
	root string
}

// OpenFileTree creates (if needed) and returns a file-tree backed container
// rooted at dir.
func OpenFileTree(dir string) (*FileTreeBackend, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "store: creating file-tree root %s", dir)
	}
	return &FileTreeBackend{root: dir}, nil
}

func (f *FileTreeBackend) dataPath(id string) string { return filepath.Join(f.root, id+".dat") }
func (f *FileTreeBackend) metaPath(id string) string { return filepath.Join(f.root, id+".meta") }

func (f *FileTreeBackend) createStream(id string) (io.WriteCloser, error) {
	path := f.dataPath(id)
	fh, err := os.Create(path)
	if err != nil {
		if os.IsPermission(err) {
			return nil, errors.Wrapf(ErrStorageFull, "store: creating %s: %v", path, err)
		}
		return nil, errors.Wrapf(err, "store: creating %s", path)
	}
	return fh, nil
}

func (f *FileTreeBackend) openStream(id string) (io.ReadCloser, error) {
	path := f.dataPath(id)
	fh, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "store: opening %s", path)
	}
	return fh, nil
}

func (f *FileTreeBackend) writeMeta(id string, meta Metadata) error {
	path := f.metaPath(id)
	fh, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "store: writing metadata %s", path)
	}
	defer fh.Close()
	return writeMetaTLV(fh, meta)
}

func (f *FileTreeBackend) readMeta(id string) (Metadata, bool, error) {
	path := f.metaPath(id)
	fh, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, errors.Wrapf(err, "store: reading metadata %s", path)
	}
	defer fh.Close()
	m, err := readMetaTLV(fh)
	if err != nil {
		return nil, false, errors.Wrapf(ErrCorruptPartition, "store: metadata %s: %v", path, err)
	}
	return m, true, nil
}

func (f *FileTreeBackend) close() error { return nil }

// mmap memory-maps the sealed data file for id, read-only.
func (f *FileTreeBackend) mmap(id string) (MappedBytes, error) {
	path := f.dataPath(id)
	fh, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "store: opening %s for mmap", path)
	}
	info, err := fh.Stat()
	if err != nil {
		fh.Close()
		return nil, errors.Wrapf(err, "store: stat %s", path)
	}
	if info.Size() == 0 {
		fh.Close()
		return &emptyMapped{}, nil
	}
	m, err := mmap.Map(fh, mmap.RDONLY, 0)
	if err != nil {
		fh.Close()
		return nil, errors.Wrapf(err, "store: mmap %s", path)
	}
	return &fileMapped{f: fh, m: m}, nil
}

type fileMapped struct {
	f *os.File
	m mmap.MMap
}

func (m *fileMapped) Bytes() []byte { return m.m }
func (m *fileMapped) Close() error {
	err := m.m.Unmap()
	m.f.Close()
	return err
}

type emptyMapped struct{}

func (emptyMapped) Bytes() []byte { return nil }
func (emptyMapped) Close() error  { return nil }

// writeMetaTLV encodes a Metadata map as a sequence of
// (keylen u32, key, vallen u32, value) tuples.
func writeMetaTLV(w io.Writer, meta Metadata) error {
	var lenBuf [4]byte
	for k, v := range meta {
		binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(k)))
		if _, err := w.Write(lenBuf[:]); err != nil {
			return err
		}
		if _, err := io.WriteString(w, k); err != nil {
			return err
		}
		binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(v)))
		if _, err := w.Write(lenBuf[:]); err != nil {
			return err
		}
		if _, err := io.WriteString(w, v); err != nil {
			return err
		}
	}
	return nil
}

func readMetaTLV(r io.Reader) (Metadata, error) {
	out := make(Metadata)
	var lenBuf [4]byte
	for {
		_, err := io.ReadFull(r, lenBuf[:])
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		klen := binary.LittleEndian.Uint32(lenBuf[:])
		key := make([]byte, klen)
		if _, err := io.ReadFull(r, key); err != nil {
			return nil, err
		}
		if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
			return nil, err
		}
		vlen := binary.LittleEndian.Uint32(lenBuf[:])
		val := make([]byte, vlen)
		if _, err := io.ReadFull(r, val); err != nil {
			return nil, err
		}
		out[string(key)] = string(val)
	}
}

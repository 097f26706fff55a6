package store

import (
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
)

// Collection is a typed, append-only single stream living inside a Group,
// identified by a dotted path. recordSize == 0 means
// variable-length records, each framed with a little-endian uint32 length
// prefix (used for superk-mers and unitig records); recordSize > 0 means
// fixed-size records with no framing overhead (used for count records).
type Collection struct {
	id         string
	backend    backend
	recordSize int
	stream     io.WriteCloser
	cache      *writerCache
	meta       Metadata
	sealed     bool
}

// CreateCollection opens id for writing inside the given backend.
func CreateCollection(b backend, id string, recordSize int, meta Metadata) (*Collection, error) {
	s, err := b.createStream(id)
	if err != nil {
		return nil, err
	}
	c := &Collection{id: id, backend: b, recordSize: recordSize, stream: s, meta: meta}
	c.cache = newWriterCache(c)
	if meta == nil {
		c.meta = make(Metadata)
	}
	c.meta.SetInt("record_size", recordSize)
	return c, nil
}

// Append writes one record, batched through the writer cache. For
// variable-length collections the record is framed with a length prefix;
// for fixed-size collections its length must equal recordSize or
// ErrSchemaMismatch is returned.
func (c *Collection) Append(record []byte) error {
	if c.sealed {
		return errors.Wrap(ErrSchemaMismatch, "store: append to sealed collection")
	}
	if c.recordSize > 0 && len(record) != c.recordSize {
		return errors.Wrapf(ErrSchemaMismatch, "store: record size %d != declared %d for %s", len(record), c.recordSize, c.id)
	}
	if c.recordSize == 0 {
		var lenBuf [4]byte
		binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(record)))
		if err := c.cache.append(lenBuf[:]); err != nil {
			return err
		}
	}
	return c.cache.append(record)
}

// Flush forces any batched records to the underlying stream.
func (c *Collection) Flush() error { return c.cache.flush() }

// Seal flushes and closes the collection for writing, then persists its
// metadata. No further Append calls are permitted afterwards.
func (c *Collection) Seal() error {
	if c.sealed {
		return nil
	}
	if err := c.Flush(); err != nil {
		return errors.Wrapf(err, "store: sealing %s", c.id)
	}
	if err := c.stream.Close(); err != nil {
		return errors.Wrapf(err, "store: closing %s", c.id)
	}
	if err := c.backend.writeMeta(c.id, c.meta); err != nil {
		return errors.Wrapf(err, "store: writing metadata for %s", c.id)
	}
	c.sealed = true
	return nil
}

// Metadata returns the collection's live metadata map for mutation before
// Seal (e.g. to set kmer_size, abundance thresholds, histogram).
func (c *Collection) Metadata() Metadata { return c.meta }

// OpenCollection reopens a sealed collection for reading.
func OpenCollection(b backend, id string) (*Reader, error) {
	meta, ok, err := b.readMeta(id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.Wrapf(ErrSchemaMismatch, "store: no metadata for %s", id)
	}
	recordSize, _ := meta.Int("record_size")
	s, err := b.openStream(id)
	if err != nil {
		return nil, err
	}
	return &Reader{id: id, stream: s, recordSize: recordSize, meta: meta}, nil
}

// Reader sequentially scans a sealed collection's records.
type Reader struct {
	id         string
	stream     io.ReadCloser
	recordSize int
	meta       Metadata
}

// Metadata returns the collection's persisted metadata.
func (r *Reader) Metadata() Metadata { return r.meta }

// Next reads the next record, returning io.EOF when exhausted and
// ErrCorruptPartition on a short/truncated record.
func (r *Reader) Next() ([]byte, error) {
	if r.recordSize > 0 {
		buf := make([]byte, r.recordSize)
		if _, err := io.ReadFull(r.stream, buf); err != nil {
			if err == io.EOF {
				return nil, io.EOF
			}
			return nil, errors.Wrapf(ErrCorruptPartition, "store: short record in %s: %v", r.id, err)
		}
		return buf, nil
	}
	var lenBuf [4]byte
	if _, err := io.ReadFull(r.stream, lenBuf[:]); err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, errors.Wrapf(ErrCorruptPartition, "store: truncated length prefix in %s: %v", r.id, err)
	}
	n := binary.LittleEndian.Uint32(lenBuf[:])
	buf := make([]byte, n)
	if _, err := io.ReadFull(r.stream, buf); err != nil {
		return nil, errors.Wrapf(ErrCorruptPartition, "store: truncated record in %s: %v", r.id, err)
	}
	return buf, nil
}

// Close releases the underlying stream.
func (r *Reader) Close() error { return r.stream.Close() }

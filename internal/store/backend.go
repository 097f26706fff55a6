package store

import "io"

// backend is the byte-level substrate a Container is built on. Both
// recognised container kinds from (file-tree, hdf5-like) satisfy
// it; everything above this layer (Group, Collection, Partition) is kind
// agnostic.
type backend interface {
	createStream(id string) (io.WriteCloser, error)
	openStream(id string) (io.ReadCloser, error)
	writeMeta(id string, meta Metadata) error
	readMeta(id string) (Metadata, bool, error)
	close() error
}

// mmapBackend is implemented by backends that can hand back a read-only
// memory-mapped view of a sealed stream, exposed through Container.Mmap.
type mmapBackend interface {
	mmap(id string) (MappedBytes, error)
}

// MappedBytes is a closeable read-only byte view, backed by edsrzf/mmap-go
// when available.
type MappedBytes interface {
	Bytes() []byte
	Close() error
}

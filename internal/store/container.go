package store

import "github.com/pkg/errors"

// Kind names the two recognised container kinds from
type Kind string

const (
	KindFileTree Kind = "file-tree"
	KindHDF5Like Kind = "hdf5-like"
)

// Container owns a backend and vends Groups. It is the top-level handle a
// run holds for its whole output (or scratch) tree.
type Container struct {
	kind Kind
	b    backend
}

// Create opens a new container of the given kind at path (a directory for
// file-tree, a single file for hdf5-like).
func Create(kind Kind, path string) (*Container, error) {
	switch kind {
	case KindFileTree:
		b, err := OpenFileTree(path)
		if err != nil {
			return nil, err
		}
		return &Container{kind: kind, b: b}, nil
	case KindHDF5Like:
		b, err := CreateHDF5Like(path)
		if err != nil {
			return nil, err
		}
		return &Container{kind: kind, b: b}, nil
	default:
		return nil, errors.Errorf("store: unknown container kind %q", kind)
	}
}

// Open reopens an existing container for reading.
func Open(kind Kind, path string) (*Container, error) {
	switch kind {
	case KindFileTree:
		b, err := OpenFileTree(path)
		if err != nil {
			return nil, err
		}
		return &Container{kind: kind, b: b}, nil
	case KindHDF5Like:
		b, err := OpenHDF5Like(path)
		if err != nil {
			return nil, err
		}
		return &Container{kind: kind, b: b}, nil
	default:
		return nil, errors.Errorf("store: unknown container kind %q", kind)
	}
}

// Kind reports which container kind this is.
func (c *Container) Kind() Kind { return c.kind }

// Group opens (without forcing disk state) the named group.
func (c *Container) Group(name string) *Group { return OpenGroup(c.b, name) }

// Mmap returns a memory-mapped read-only view of a sealed collection, when
// the backend supports it (file-tree does; hdf5-like currently does not
// and returns an error — callers fall back to the sequential Reader).
func (c *Container) Mmap(id string) (MappedBytes, error) {
	mb, ok := c.b.(mmapBackend)
	if !ok {
		return nil, errors.Errorf("store: container kind %s does not support mmap", c.kind)
	}
	return mb.mmap(id)
}

// Close finalises the container (writes the hdf5-like trailer; a no-op
// for file-tree).
func (c *Container) Close() error { return c.b.close() }

package store

import "github.com/pkg/errors"

// Group is a named nested scope (e.g. "dsk", "bloom", "debloom", "mphf",
// "bcalm") holding a group-level status key used to mark partial output
// invalid on a terminal error.
type Group struct {
	name    string
	backend backend
}

// OpenGroup returns a handle to the named group inside the container. It
// does not itself force any on-disk state until Collections are created.
func OpenGroup(b backend, name string) *Group {
	return &Group{name: name, backend: b}
}

func (g *Group) statusID() string { return g.name + ".__group__" }

// Status returns the group's status metadata key, defaulting to "ok" when
// absent.
func (g *Group) Status() (string, error) {
	meta, ok, err := g.backend.readMeta(g.statusID())
	if err != nil {
		return "", err
	}
	if !ok {
		return "ok", nil
	}
	if s, ok := meta["status"]; ok {
		return s, nil
	}
	return "ok", nil
}

// MarkInvalid records a terminal failure against the group so that a
// later reopen fails closed with ErrInvalidStatus unless forced.
func (g *Group) MarkInvalid(reason string) error {
	meta := Metadata{"status": "invalid", "reason": reason}
	return g.backend.writeMeta(g.statusID(), meta)
}

// MarkValid clears a previously recorded invalid status.
func (g *Group) MarkValid() error {
	return g.backend.writeMeta(g.statusID(), Metadata{"status": "ok"})
}

// RequireValid returns ErrInvalidStatus unless force is true or the
// group's status is "ok"/absent.
func (g *Group) RequireValid(force bool) error {
	if force {
		return nil
	}
	status, err := g.Status()
	if err != nil {
		return err
	}
	if status == "invalid" {
		return errors.Wrapf(ErrInvalidStatus, "store: group %s", g.name)
	}
	return nil
}

// Path builds a dotted collection id rooted at this group.
func (g *Group) Path(parts ...string) string {
	id := g.name
	for _, p := range parts {
		id += "." + p
	}
	return id
}

// CreateCollection creates a fixed- or variable-size collection under
// this group.
func (g *Group) CreateCollection(name string, recordSize int) (*Collection, error) {
	return CreateCollection(g.backend, g.Path(name), recordSize, nil)
}

// OpenCollection opens a previously sealed collection under this group.
func (g *Group) OpenCollection(name string) (*Reader, error) {
	return OpenCollection(g.backend, g.Path(name))
}

// CreatePartitioned creates a P-way partitioned collection under this group.
func (g *Group) CreatePartitioned(name string, p, recordSize int) (*Partitioned, error) {
	return CreatePartitioned(g.backend, g.Path(name), p, recordSize)
}

// OpenPartitioned reopens a P-way partitioned collection under this group.
func (g *Group) OpenPartitioned(name string, p int) ([]*Reader, error) {
	return OpenPartitioned(g.backend, g.Path(name), p)
}

// OpenPartition reopens a single partition i of a P-way partitioned
// collection under this group, for re-reading it from the start.
func (g *Group) OpenPartition(name string, i int) (*Reader, error) {
	return OpenPartition(g.backend, g.Path(name), i)
}

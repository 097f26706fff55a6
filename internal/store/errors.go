package store

import "errors"

// Sentinel error kinds from Callers use errors.Is against these
// after unwrapping a github.com/pkg/errors wrapped chain.
var (
	// ErrCorruptPartition is returned on a short read or truncated record.
	ErrCorruptPartition = errors.New("store: corrupt partition (short or truncated record)")
	// ErrStorageFull is returned when a writer cannot flush for lack of space.
	ErrStorageFull = errors.New("store: storage full")
	// ErrSchemaMismatch is returned when a collection's declared record
	// size does not match the metadata recorded at creation time.
	ErrSchemaMismatch = errors.New("store: schema mismatch")
	// ErrInvalidStatus is returned when opening a group whose status
	// metadata key is "invalid" and the caller did not force the open.
	ErrInvalidStatus = errors.New("store: group status is invalid")
)

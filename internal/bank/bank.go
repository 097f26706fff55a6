// Package bank names, by interface only, the external collaborator that
// supplies reads to the counting engine. FASTA/FASTQ/BAM parsing and
// compressed sequence I/O are explicitly out of scope for this module
//; dbgbuild depends only on this interface, plus a default
// concrete adapter in the fastx subpackage.
package bank

// Read is one sequencing read's raw nucleotide bytes (upper or lower
// case ACGTN, anything else treated as N by the k-mer model).
type Read struct {
	Name string
	Seq  []byte
}

// Source iterates the reads of one bank (one input file or stream). It is
// the sole contract the counting engine has with sequence I/O.
type Source interface {
	// Next returns the next read, or io.EOF when exhausted.
	Next() (Read, error)
	// Close releases any underlying file handles.
	Close() error
}

// Bank groups one or more Sources representing a single logical input,
// the unit a per-bank abundance vector entry is counted against.
type Bank interface {
	// Open returns a fresh Source for the bank, positioned at the start.
	Open() (Source, error)
	// EstimateNumSequences returns a cheap upper-bound estimate of the
	// number of reads, used by C3 to plan passes/partitions.
	EstimateNumSequences() (int64, error)
}

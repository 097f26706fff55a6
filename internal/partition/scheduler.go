package partition

// Scheduler assigns each partition to exactly one pass, round-robin, so
// that a superk-mer is only ever emitted during the single pass its
// minimizer's partition is scheduled in.
type Scheduler struct {
	passes     int
	partitions int
}

// NewScheduler builds a scheduler for the given (passes, partitions) plan.
func NewScheduler(passes, partitions int) *Scheduler {
	return &Scheduler{passes: passes, partitions: partitions}
}

// PassOf returns which pass a partition is scheduled in.
func (s *Scheduler) PassOf(partitionID uint32) int {
	return int(partitionID) % s.passes
}

// ActiveInPass reports whether the given partition should be written to
// during the given (0-based) pass.
func (s *Scheduler) ActiveInPass(pass int, partitionID uint32) bool {
	return s.PassOf(partitionID) == pass
}

// Passes returns the total number of passes.
func (s *Scheduler) Passes() int { return s.passes }

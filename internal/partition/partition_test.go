package partition

import "testing"

func TestLexTableCoversEveryPartition(t *testing.T) {
	m, p := 3, 4
	table := NewLexTable(m, p)
	if table.NumPartitions() != p {
		t.Fatalf("NumPartitions() = %d, want %d", table.NumPartitions(), p)
	}
	seen := make(map[uint32]bool)
	n := 1 << uint(2*m)
	for code := 0; code < n; code++ {
		id := table.PartitionOf(uint64(code))
		if int(id) >= p {
			t.Fatalf("PartitionOf(%d) = %d, out of range [0,%d)", code, id, p)
		}
		seen[id] = true
	}
	if len(seen) != p {
		t.Fatalf("only %d of %d partitions were ever assigned", len(seen), p)
	}
}

func TestLexTablePartitionOfOutOfRange(t *testing.T) {
	table := NewLexTable(2, 4)
	if got := table.PartitionOf(1 << 20); got != 0 {
		t.Fatalf("PartitionOf(out of range) = %d, want 0", got)
	}
}

func TestFrequencyTableBalancesLoad(t *testing.T) {
	m, p := 3, 2
	n := 1 << uint(2*m)
	freq := make([]uint64, n)
	// one very hot m-mer, everything else cold.
	freq[0] = 1000
	for i := 1; i < n; i++ {
		freq[i] = 1
	}
	table := NewFrequencyTable(m, p, freq)

	load := make([]uint64, p)
	for code, f := range freq {
		load[table.PartitionOf(uint64(code))] += f
	}
	// the hot m-mer's partition should not also have swallowed every
	// other m-mer: the greedy least-loaded assignment must have steered
	// subsequent m-mers to the other partition.
	maxLoad, minLoad := load[0], load[0]
	for _, l := range load[1:] {
		if l > maxLoad {
			maxLoad = l
		}
		if l < minLoad {
			minLoad = l
		}
	}
	if maxLoad-minLoad > freq[0] {
		t.Fatalf("load imbalance %d exceeds the single hot m-mer's weight %d", maxLoad-minLoad, freq[0])
	}
}

func TestSchedulerRoundRobin(t *testing.T) {
	s := NewScheduler(3, 7)
	if s.Passes() != 3 {
		t.Fatalf("Passes() = %d, want 3", s.Passes())
	}
	for pid := uint32(0); pid < 7; pid++ {
		pass := s.PassOf(pid)
		if pass < 0 || pass >= 3 {
			t.Fatalf("PassOf(%d) = %d, out of range", pid, pass)
		}
		for p := 0; p < 3; p++ {
			want := p == pass
			if got := s.ActiveInPass(p, pid); got != want {
				t.Fatalf("ActiveInPass(%d, %d) = %v, want %v", p, pid, got, want)
			}
		}
	}
}

func TestSchedulerEachPartitionExactlyOnePass(t *testing.T) {
	s := NewScheduler(4, 16)
	for pid := uint32(0); pid < 16; pid++ {
		active := 0
		for p := 0; p < 4; p++ {
			if s.ActiveInPass(p, pid) {
				active++
			}
		}
		if active != 1 {
			t.Fatalf("partition %d is active in %d passes, want exactly 1", pid, active)
		}
	}
}

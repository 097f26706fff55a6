package cmd

import (
	"fmt"
	"io"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/shenwei356/dbgbuild/internal/store"
	"github.com/shenwei356/dbgbuild/internal/unitig"
)

var graphinfoCmd = &cobra.Command{
	Use:   "graphinfo",
	Short: "report basic statistics of a built graph",
	Long: `graphinfo reopens a container written by "dbgh5 build" and reports
nb_nodes (distinct k-mers across the compacted unitig set), nb_unitigs,
nb_branching (unitigs with more than two links over both extremities), and
isolated/tip unitig counts.

It reads the persisted unitig and link catalogue directly rather than
rebuilding the Bloom/cFP membership structure, since that structure is
not itself part of the output container.`,
	Run: func(cmd *cobra.Command, args []string) {
		in := getFlagPath(cmd, "in")
		kind := store.KindFileTree
		if getFlagString(cmd, "container") == "hdf5-like" {
			kind = store.KindHDF5Like
		}
		if err := runGraphinfo(kind, in, getFlagPositiveInt(cmd, "kmer-size")); err != nil {
			checkError(err)
		}
	},
}

func init() {
	RootCmd.AddCommand(graphinfoCmd)

	pflags := graphinfoCmd.Flags()
	pflags.StringP("in", "i", "", "container path written by 'build'")
	pflags.String("container", "file-tree", "container kind: file-tree|hdf5-like")
	pflags.IntP("kmer-size", "k", 31, "k-mer size the container was built with")
}

type graphStats struct {
	NbUnitigs   int
	NbNodes     int
	NbBranching int
	NbIsolated  int
	NbTips      int
}

func runGraphinfo(kind store.Kind, path string, k int) error {
	if path == "" {
		return errors.New("flag -i/--in is required")
	}
	container, err := store.Open(kind, path)
	if err != nil {
		return errors.Wrap(err, "opening container")
	}
	defer container.Close()

	bcalm := container.Group("bcalm")
	units, err := readUnitigs(bcalm)
	if err != nil {
		return err
	}
	linkCounts, err := readLinkCounts(bcalm)
	if err != nil {
		return err
	}

	stats := summarize(units, linkCounts, k)
	fmt.Printf("nb_unitigs: %d\n", stats.NbUnitigs)
	fmt.Printf("nb_nodes: %d\n", stats.NbNodes)
	fmt.Printf("nb_branching: %d\n", stats.NbBranching)
	fmt.Printf("nb_isolated: %d\n", stats.NbIsolated)
	fmt.Printf("nb_tips: %d\n", stats.NbTips)
	return nil
}

func readUnitigs(g *store.Group) ([]*unitig.Unitig, error) {
	r, err := g.OpenCollection("unitigs")
	if err != nil {
		return nil, errors.Wrap(err, "opening unitigs collection")
	}
	defer r.Close()

	var units []*unitig.Unitig
	for {
		rec, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "reading unitigs collection")
		}
		u, err := unitig.DecodeUnitigRecord(rec)
		if err != nil {
			return nil, err
		}
		units = append(units, u)
	}
	return units, nil
}

// readLinkCounts returns, per record position, the number of links
// stored for that unitig's adjacency list (the "links" collection is
// written in the same order as "unitigs", one record each).
func readLinkCounts(g *store.Group) ([]int, error) {
	r, err := g.OpenCollection("links")
	if err != nil {
		return nil, errors.Wrap(err, "opening links collection")
	}
	defer r.Close()

	var counts []int
	for {
		rec, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "reading links collection")
		}
		n := 0
		if len(rec) > 0 {
			n = int(rec[0])
		}
		counts = append(counts, n)
	}
	return counts, nil
}

// summarize derives graph-level statistics from the compacted unitig
// set: each unitig contributes len(seq)-k+1 distinct k-mers. The links
// collection stores one combined adjacency list per unitig (both
// extremities together), so a count of 0 means both ends are dead
// ends (isolated), 1 means exactly one end is linked (a tip), 2 is the
// ordinary "linked on both ends" case for an interior unitig of a
// simple chain, and anything above 2 can only arise from a branch on
// at least one end.
func summarize(units []*unitig.Unitig, linkCounts []int, k int) graphStats {
	var s graphStats
	s.NbUnitigs = len(units)
	for i, u := range units {
		if len(u.Seq) >= k {
			s.NbNodes += len(u.Seq) - k + 1
		}
		if i >= len(linkCounts) {
			continue
		}
		switch {
		case linkCounts[i] == 0:
			s.NbIsolated++
		case linkCounts[i] == 1:
			s.NbTips++
		case linkCounts[i] > 2:
			s.NbBranching++
		}
	}
	return s
}

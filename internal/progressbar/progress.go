// Package progressbar implements the Progress callback trait from the
// design notes: a single observer, dependency-injected into the long
// stages (C3 pass loop, C9 bucket compaction; C4 counting reports none),
// that the core calls at fixed granularity and never owns. It is backed
// by vbauerster/mpb/v5, the progress bar library kmcp's own commands use.
package progressbar

import (
	"os"

	"github.com/vbauerster/mpb/v5"
	"github.com/vbauerster/mpb/v5/decor"
)

// Reporter is the Progress trait: Begin starts a named bar of total units,
// Increment advances it by delta, and Close finalises it.
type Reporter interface {
	Begin(name string, total int64) Bar
}

// Bar is one progress bar's write end.
type Bar interface {
	Increment(delta int)
	Close()
}

// Group owns one mpb.Progress container and hands out bars under it; a
// single Group is shared across a whole dbgh5 run.
type Group struct {
	enabled bool
	p       *mpb.Progress
}

// New creates a progress group. When enabled is false, Begin returns a
// no-op bar so callers never need to branch on verbosity themselves.
func New(enabled bool) *Group {
	g := &Group{enabled: enabled}
	if enabled {
		g.p = mpb.New(mpb.WithWidth(40), mpb.WithOutput(os.Stderr))
	}
	return g
}

func (g *Group) Begin(name string, total int64) Bar {
	if !g.enabled {
		return noopBar{}
	}
	prefix := name + ": "
	bar := g.p.AddBar(total,
		mpb.BarStyle("[=>-]<+"),
		mpb.PrependDecorators(
			decor.Name(prefix, decor.WC{W: len(prefix), C: decor.DidentRight}),
			decor.CountersNoUnit("%d / %d", decor.WCSyncWidth),
		),
		mpb.AppendDecorators(
			decor.Percentage(decor.WC{W: 5}),
			decor.OnComplete(decor.Name(""), " done"),
		),
	)
	return &mpbBar{bar: bar}
}

// Wait blocks until every bar under the group has completed.
func (g *Group) Wait() {
	if g.enabled {
		g.p.Wait()
	}
}

type mpbBar struct{ bar *mpb.Bar }

func (b *mpbBar) Increment(delta int) { b.bar.IncrBy(delta) }
func (b *mpbBar) Close()              { b.bar.SetTotal(b.bar.Current(), true) }

type noopBar struct{}

func (noopBar) Increment(int) {}
func (noopBar) Close()        {}

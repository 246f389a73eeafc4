package search

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/hpungsan/sigdecode/internal/signal"
)

type chunkBest struct {
	best  Candidate
	found bool
}

// better orders candidates by score descending, then position ascending.
func better(a, b Candidate) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	return a.Position < b.Position
}

// sweepParallel splits the n windows into contiguous chunks, sweeps them
// concurrently and reduces the chunk winners deterministically, so the result
// matches the sequential sweep regardless of completion order.
func (d *Driver) sweepParallel(ctx context.Context, sig *signal.Signal, n int) (Candidate, bool, error) {
	workers := min(d.opts.Workers, n)
	size := (n + workers - 1) / workers

	results := make([]chunkBest, workers)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i := range workers {
		from := i * size
		to := min(from+size, n)
		if from >= to {
			continue
		}
		g.Go(func() error {
			best, found, err := d.sweep(gctx, sig, from, to, false)
			if err != nil {
				return err
			}
			// Each goroutine owns results[i].
			results[i] = chunkBest{best: best, found: found}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Candidate{}, false, err
	}

	var best Candidate
	found := false
	for _, r := range results {
		if !r.found {
			continue
		}
		if !found || better(r.best, best) {
			best = r.best
			found = true
		}
	}
	ev := d.log.Debug().Int("workers", workers).Int("chunk_size", size).Bool("matched", found)
	if found {
		ev = ev.Int("position", best.Position).Float64("score", best.Score)
	}
	ev.Msg("parallel sweep reduced")
	return best, found, nil
}

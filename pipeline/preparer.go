// Package pipeline wires the Record Preparer, Detection Engine, Aggregate
// Evaluator and Pipeline Orchestrator (spec.md §4.D–H) into the batched
// per-file loop: enumerate, decode, filter, prepare, detect, repeat.
package pipeline

import (
	"context"

	"github.com/huntops/evtxscan/models"
	"golang.org/x/sync/errgroup"
)

// Prepare flattens one batch of raw records against keys in parallel,
// fanned out over a bounded worker pool (workerCount, sized to logical
// CPU count per spec.md §5) and gathered back into the same order the
// batch was read in — an ordered-slot scatter/gather, not a channel that
// could reorder results (spec.md §5).
//
// A single record's flattening can never fail (gjson lookups on a
// missing path simply report absent), so the only error this surfaces
// is cancellation of the group's context.
func Prepare(ctx context.Context, batch []*models.RawRecord, keys []string, workerCount int) ([]*models.PreparedRecord, error) {
	if workerCount < 1 {
		workerCount = 1
	}

	out := make([]*models.PreparedRecord, len(batch))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workerCount)

	for i, raw := range batch {
		i, raw := i, raw
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			out[i] = flatten(raw, keys)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func flatten(raw *models.RawRecord, keys []string) *models.PreparedRecord {
	flat := make(map[string]string, len(keys))
	for _, key := range keys {
		if key == models.EventIDPath {
			// Route through the same scalar/structured coercion the
			// filter uses, so detection and statistics key off the
			// same EventID string as Accept does (spec.md §3).
			if id, ok := raw.EventID(); ok {
				flat[key] = id
			}
			continue
		}
		if v, ok := raw.Get(key); ok {
			flat[key] = v
		}
	}
	return &models.PreparedRecord{
		SourcePath: raw.SourcePath,
		Raw:        raw,
		Flat:       flat,
	}
}

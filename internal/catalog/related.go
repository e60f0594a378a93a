package catalog

import (
	"context"
	"fmt"

	"github.com/juanjparedez/mundobl/internal/models"
)

// ReplaceRelatedSeries makes ids the exact set of series related to
// seriesID. Every edge is written in both directions. Edges between two
// other series are not touched, so B<->C survives a rewrite of A.
//
// Self references and repeated ids are dropped. Unknown ids are rejected
// before any edge is removed.
func ReplaceRelatedSeries(ctx context.Context, r Repos, seriesID int64, ids []int64) error {
	targets := make([]int64, 0, len(ids))
	seen := make(map[int64]bool, len(ids))
	for _, id := range ids {
		if id == seriesID || id <= 0 || seen[id] {
			continue
		}
		seen[id] = true
		targets = append(targets, id)
	}

	if len(targets) > 0 {
		missing, err := r.Series.MissingIDs(ctx, targets)
		if err != nil {
			return err
		}
		if len(missing) > 0 {
			return invalid(string(models.RelRelated), "unknown series ids %v", missing)
		}
	}

	if err := r.Relations.ClearRelated(ctx, seriesID); err != nil {
		return err
	}
	for _, id := range targets {
		if err := r.Relations.AddRelated(ctx, seriesID, id); err != nil {
			return fmt.Errorf("relate %d to %d: %w", seriesID, id, err)
		}
		if err := r.Relations.AddRelated(ctx, id, seriesID); err != nil {
			return fmt.Errorf("relate %d to %d: %w", id, seriesID, err)
		}
	}
	return nil
}

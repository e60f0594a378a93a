package catalog

import (
	"context"
	"fmt"
)

// MigrationReport summarizes one image migration sweep.
type MigrationReport struct {
	Scanned int `json:"scanned"`
	Hosted  int `json:"hosted"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}

// MigrateImages re-hosts every stored image URL that still points outside
// the managed store. Failed downloads keep their URL and are retried on the
// next sweep.
func (s *Service) MigrateImages(ctx context.Context) (MigrationReport, error) {
	var report MigrationReport
	if s.images == nil {
		return report, fmt.Errorf("image host not configured")
	}

	repos := s.store.Repos()
	refs, err := repos.Images.ListImages(ctx)
	if err != nil {
		return report, fmt.Errorf("list images: %w", err)
	}

	for _, ref := range refs {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		report.Scanned++
		if s.images.Owns(ref.URL) {
			report.Skipped++
			continue
		}
		res := s.images.EnsureHosted(ctx, ref.URL, string(ref.Owner))
		if !res.OK() {
			report.Failed++
			s.logger.Warn("image migration failed", "owner", ref.Owner, "id", ref.ID, "url", ref.URL, "error", res.Err)
			continue
		}
		if err := repos.Images.SetImage(ctx, ref, res.URL); err != nil {
			return report, fmt.Errorf("store %s %d image: %w", ref.Owner, ref.ID, err)
		}
		report.Hosted++
	}

	s.logger.Info("image migration finished",
		"scanned", report.Scanned, "hosted", report.Hosted, "skipped", report.Skipped, "failed", report.Failed)
	if report.Hosted > 0 {
		s.publish(EventImagesMigrated, report)
	}
	return report, nil
}

package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/juanjparedez/mundobl/internal/images"
	"github.com/juanjparedez/mundobl/internal/models"
)

// Change events published after a successful commit.
const (
	EventSeriesCreated  = "series:created"
	EventSeriesUpdated  = "series:updated"
	EventSeriesDeleted  = "series:deleted"
	EventImagesMigrated = "images:migrated"
)

// personEvent names an actor or director event, e.g. "actor:merged".
func personEvent(kind models.RefKind, verb string) string {
	return string(kind) + ":" + verb
}

// ImageHost re-hosts external image URLs in the managed object store.
type ImageHost interface {
	EnsureHosted(ctx context.Context, rawURL, folder string) images.Result
	Owns(rawURL string) bool
}

// Publisher fans change events out to connected clients.
type Publisher interface {
	Broadcast(event string, data interface{})
}

type Service struct {
	store  Store
	images ImageHost
	events Publisher
	logger *slog.Logger
}

// NewService wires the catalog. images and events may be nil: without an
// image host URLs are stored as given, without a publisher no events are sent.
func NewService(store Store, host ImageHost, events Publisher, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, images: host, events: events, logger: logger}
}

func (s *Service) publish(event string, data interface{}) {
	if s.events != nil {
		s.events.Broadcast(event, data)
	}
}

// ──────────────────── Series ────────────────────

func (s *Service) ListSeries(ctx context.Context) ([]*models.Series, error) {
	return s.store.Repos().Series.List(ctx)
}

// GetSeries returns the series with every relation loaded.
func (s *Service) GetSeries(ctx context.Context, id int64) (*models.Series, error) {
	repos := s.store.Repos()
	series, err := repos.Series.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := repos.Relations.Load(ctx, series); err != nil {
		return nil, fmt.Errorf("load relations: %w", err)
	}
	return series, nil
}

// CreateSeries persists a new series and its relations and returns it with
// every relation loaded.
func (s *Service) CreateSeries(ctx context.Context, in *SeriesInput) (*models.Series, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	imageURL := s.hostImage(ctx, in.ImageURL, models.ImageOwnerSeries)

	var created *models.Series
	err := s.store.WithTx(ctx, func(r Repos) error {
		series := &models.Series{}
		if err := applySeriesScalars(ctx, r, series, in, imageURL); err != nil {
			return err
		}
		if err := r.Series.Create(ctx, series); err != nil {
			return err
		}
		if err := SyncRelations(ctx, r, series.ID, in); err != nil {
			return err
		}
		if err := r.Relations.Load(ctx, series); err != nil {
			return fmt.Errorf("load relations: %w", err)
		}
		created = series
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("series created", "id", created.ID, "title", created.Title)
	s.publish(EventSeriesCreated, created)
	return created, nil
}

// UpdateSeries applies scalar changes and replaces every relation present in
// in. All statements share one transaction. The scalar row is returned
// without relations.
func (s *Service) UpdateSeries(ctx context.Context, id int64, in *SeriesInput) (*models.Series, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.store.Repos().Series.GetByID(ctx, id); err != nil {
		return nil, err
	}
	imageURL := s.hostImage(ctx, in.ImageURL, models.ImageOwnerSeries)

	var updated *models.Series
	err := s.store.WithTx(ctx, func(r Repos) error {
		series, err := r.Series.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := applySeriesScalars(ctx, r, series, in, imageURL); err != nil {
			return err
		}
		if err := r.Series.Update(ctx, series); err != nil {
			return err
		}
		if err := SyncRelations(ctx, r, series.ID, in); err != nil {
			return err
		}
		updated = series
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("series updated", "id", updated.ID, "title", updated.Title)
	s.publish(EventSeriesUpdated, updated)
	return updated, nil
}

// DeleteSeries removes the row; join rows cascade in storage.
func (s *Service) DeleteSeries(ctx context.Context, id int64) error {
	if err := s.store.Repos().Series.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("series deleted", "id", id)
	s.publish(EventSeriesDeleted, map[string]int64{"id": id})
	return nil
}

// hostImage runs the ingestion adapter. A failed ingestion keeps the
// original URL: the mutation proceeds and the failure is only logged.
// The returned pointer is nil when the payload carried no image field.
func (s *Service) hostImage(ctx context.Context, raw *string, owner models.ImageOwner) *string {
	if raw == nil {
		return nil
	}
	url := strings.TrimSpace(*raw)
	if url == "" || s.images == nil {
		return &url
	}

	res := s.images.EnsureHosted(ctx, url, string(owner))
	if !res.OK() {
		var ingestErr *images.IngestError
		stage := images.Stage("")
		if errors.As(res.Err, &ingestErr) {
			stage = ingestErr.Stage
		}
		s.logger.Warn("image ingestion failed, keeping original url",
			"owner", owner, "url", url, "stage", stage, "error", res.Err)
		return &url
	}
	return &res.URL
}

func applySeriesScalars(ctx context.Context, r Repos, series *models.Series, in *SeriesInput, imageURL *string) error {
	series.Title = strings.TrimSpace(*in.Title)
	if in.OriginalTitle != nil {
		series.OriginalTitle = blankToNil(*in.OriginalTitle)
	}
	if in.Year != nil {
		series.Year = in.Year
	}
	if in.Type != nil {
		series.Type = blankToNil(*in.Type)
	}
	if in.Rating != nil {
		series.Rating = in.Rating
	}
	if in.Synopsis != nil {
		series.Synopsis = blankToNil(*in.Synopsis)
	}
	if imageURL != nil {
		series.ImageURL = blankToNil(*imageURL)
	}
	if in.EpisodeCount != nil {
		series.EpisodeCount = in.EpisodeCount
	}
	if in.Duration != nil {
		series.Duration = in.Duration
	}

	var err error
	if series.CountryID, err = resolveScalarRef(ctx, r, models.KindCountry, in.Country, in.CountryID, series.CountryID); err != nil {
		return err
	}
	if series.ProductionCompanyID, err = resolveScalarRef(ctx, r, models.KindProductionCompany, in.ProductionCompany, in.ProductionCompanyID, series.ProductionCompanyID); err != nil {
		return err
	}
	if series.OriginalLanguageID, err = resolveScalarRef(ctx, r, models.KindLanguage, in.OriginalLanguage, in.OriginalLanguageID, series.OriginalLanguageID); err != nil {
		return err
	}
	return nil
}

// resolveScalarRef picks the foreign key for a scalar reference. A name is
// resolved or created; a blank name or a zero id clears the column; neither
// keeps current.
func resolveScalarRef(ctx context.Context, r Repos, kind models.RefKind, name *string, id *int64, current *int64) (*int64, error) {
	switch {
	case name != nil:
		trimmed := strings.TrimSpace(*name)
		if trimmed == "" {
			return nil, nil
		}
		resolved, err := ResolveOrCreate(ctx, r.References, kind, trimmed)
		if err != nil {
			return nil, err
		}
		return &resolved, nil
	case id != nil:
		if *id <= 0 {
			return nil, nil
		}
		v := *id
		return &v, nil
	default:
		return current, nil
	}
}

package catalog

import (
	"context"

	"github.com/juanjparedez/mundobl/internal/models"
)

// ReferenceRepository stores the name-keyed lookup tables.
type ReferenceRepository interface {
	// FindByName returns the id of the row whose name equals name exactly,
	// or ErrNotFound.
	FindByName(ctx context.Context, kind models.RefKind, name string) (int64, error)
	// Insert creates a row and returns its id. A unique violation on name is
	// reported as ErrDuplicate.
	Insert(ctx context.Context, kind models.RefKind, name string, code *string) (int64, error)
	List(ctx context.Context, kind models.RefKind) ([]*models.Reference, error)
}

type SeriesRepository interface {
	Create(ctx context.Context, s *models.Series) error
	Update(ctx context.Context, s *models.Series) error
	GetByID(ctx context.Context, id int64) (*models.Series, error)
	// List returns every series with country, genres and tags populated.
	List(ctx context.Context) ([]*models.Series, error)
	Delete(ctx context.Context, id int64) error
	// MissingIDs returns the subset of ids that have no series row.
	MissingIDs(ctx context.Context, ids []int64) ([]int64, error)
}

// RelationRepository manages the join rows owned by a series.
type RelationRepository interface {
	Clear(ctx context.Context, seriesID int64, rel models.Relation) error
	AddActor(ctx context.Context, row *models.SeriesActor) error
	AddDirector(ctx context.Context, seriesID, directorID int64) error
	AddDubbing(ctx context.Context, row *models.SeriesDubbing) error
	AddTag(ctx context.Context, seriesID, tagID int64) error
	AddGenre(ctx context.Context, seriesID, genreID int64) error
	AddWatchLink(ctx context.Context, link *models.WatchLink) error
	AddSeason(ctx context.Context, season *models.Season) error
	AddEmbed(ctx context.Context, embed *models.Embed) error
	// ClearRelated deletes every related-series edge where seriesID is
	// either endpoint.
	ClearRelated(ctx context.Context, seriesID int64) error
	// AddRelated inserts the directed edge, ignoring an existing duplicate.
	AddRelated(ctx context.Context, mainID, relatedID int64) error
	// Load fills every relation of s.
	Load(ctx context.Context, s *models.Series) error
}

// PersonRepository manages actor and director profiles.
type PersonRepository interface {
	GetByID(ctx context.Context, kind models.RefKind, id int64) (*models.Person, error)
	List(ctx context.Context, kind models.RefKind, search string) ([]*models.Person, error)
	Update(ctx context.Context, kind models.RefKind, p *models.Person) error
	Delete(ctx context.Context, kind models.RefKind, id int64) error
	CountReferences(ctx context.Context, kind models.RefKind, id int64) (int, error)
	Credits(ctx context.Context, kind models.RefKind, id int64) ([]models.Credit, error)
	// Reassign moves every join row from source to target and returns how
	// many were moved. Rows that would duplicate an existing target row are
	// dropped instead.
	Reassign(ctx context.Context, kind models.RefKind, sourceID, targetID int64) (int, error)
}

type ImageRepository interface {
	ListImages(ctx context.Context) ([]models.ImageRef, error)
	SetImage(ctx context.Context, ref models.ImageRef, url string) error
}

// Repos bundles the repositories bound to one connection or transaction.
type Repos struct {
	References ReferenceRepository
	Series     SeriesRepository
	Relations  RelationRepository
	People     PersonRepository
	Images     ImageRepository
}

// Store is the storage handle injected into the service.
type Store interface {
	Repos() Repos
	// WithTx runs fn against repositories bound to a single transaction,
	// committing when fn returns nil and rolling back otherwise.
	WithTx(ctx context.Context, fn func(Repos) error) error
}

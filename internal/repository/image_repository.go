package repository

import (
	"context"
	"fmt"

	"github.com/juanjparedez/mundobl/internal/models"
)

type ImageRepository struct {
	db DBTX
}

func NewImageRepository(db DBTX) *ImageRepository {
	return &ImageRepository{db: db}
}

var imageTables = map[models.ImageOwner]string{
	models.ImageOwnerSeries:   "series",
	models.ImageOwnerActor:    "actors",
	models.ImageOwnerDirector: "directors",
}

// ListImages returns every non-empty image URL across series and people.
func (r *ImageRepository) ListImages(ctx context.Context) ([]models.ImageRef, error) {
	query := `SELECT 'series', id, image_url FROM series WHERE COALESCE(image_url, '') <> ''
		UNION ALL
		SELECT 'actor', id, image_url FROM actors WHERE COALESCE(image_url, '') <> ''
		UNION ALL
		SELECT 'director', id, image_url FROM directors WHERE COALESCE(image_url, '') <> ''
		ORDER BY 1, 2`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var refs []models.ImageRef
	for rows.Next() {
		var ref models.ImageRef
		if err := rows.Scan(&ref.Owner, &ref.ID, &ref.URL); err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	return refs, rows.Err()
}

func (r *ImageRepository) SetImage(ctx context.Context, ref models.ImageRef, url string) error {
	table, ok := imageTables[ref.Owner]
	if !ok {
		return fmt.Errorf("unknown image owner %q", ref.Owner)
	}
	result, err := r.db.ExecContext(ctx,
		`UPDATE `+table+` SET image_url = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2`, url, ref.ID)
	if err != nil {
		return err
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return notFound(string(ref.Owner))
	}
	return nil
}

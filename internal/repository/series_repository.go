package repository

import (
	"context"
	"database/sql"

	"github.com/lib/pq"

	"github.com/juanjparedez/mundobl/internal/models"
)

type SeriesRepository struct {
	db DBTX
}

func NewSeriesRepository(db DBTX) *SeriesRepository {
	return &SeriesRepository{db: db}
}

const seriesColumns = `s.id, s.title, s.original_title, s.year, s.type, s.rating, s.synopsis, s.image_url,
	s.episode_count, s.duration, s.country_id, s.production_company_id, s.original_language_id,
	s.created_at, s.updated_at`

func scanSeries(row interface{ Scan(...interface{}) error }, s *models.Series, extra ...interface{}) error {
	dest := []interface{}{&s.ID, &s.Title, &s.OriginalTitle, &s.Year, &s.Type, &s.Rating, &s.Synopsis, &s.ImageURL,
		&s.EpisodeCount, &s.Duration, &s.CountryID, &s.ProductionCompanyID, &s.OriginalLanguageID,
		&s.CreatedAt, &s.UpdatedAt}
	return row.Scan(append(dest, extra...)...)
}

func (r *SeriesRepository) Create(ctx context.Context, s *models.Series) error {
	query := `INSERT INTO series (title, original_title, year, type, rating, synopsis, image_url,
			episode_count, duration, country_id, production_company_id, original_language_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query, s.Title, s.OriginalTitle, s.Year, s.Type, s.Rating, s.Synopsis,
		s.ImageURL, s.EpisodeCount, s.Duration, s.CountryID, s.ProductionCompanyID, s.OriginalLanguageID).
		Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
	return mapError(err)
}

func (r *SeriesRepository) Update(ctx context.Context, s *models.Series) error {
	query := `UPDATE series SET title=$1, original_title=$2, year=$3, type=$4, rating=$5, synopsis=$6,
			image_url=$7, episode_count=$8, duration=$9, country_id=$10, production_company_id=$11,
			original_language_id=$12, updated_at=CURRENT_TIMESTAMP
		WHERE id=$13 RETURNING updated_at`
	err := r.db.QueryRowContext(ctx, query, s.Title, s.OriginalTitle, s.Year, s.Type, s.Rating, s.Synopsis,
		s.ImageURL, s.EpisodeCount, s.Duration, s.CountryID, s.ProductionCompanyID, s.OriginalLanguageID, s.ID).
		Scan(&s.UpdatedAt)
	if err == sql.ErrNoRows {
		return notFound("series")
	}
	return mapError(err)
}

func (r *SeriesRepository) GetByID(ctx context.Context, id int64) (*models.Series, error) {
	s := &models.Series{}
	err := scanSeries(r.db.QueryRowContext(ctx, `SELECT `+seriesColumns+` FROM series s WHERE s.id = $1`, id), s)
	if err == sql.ErrNoRows {
		return nil, notFound("series")
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

// List returns the catalog with the shallow relations the browse page
// filters on: country, tags and genres.
func (r *SeriesRepository) List(ctx context.Context) ([]*models.Series, error) {
	query := `SELECT ` + seriesColumns + `, c.name, c.code
		FROM series s LEFT JOIN countries c ON c.id = s.country_id
		ORDER BY s.title`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []*models.Series
	byID := map[int64]*models.Series{}
	for rows.Next() {
		s := &models.Series{}
		var countryName, countryCode *string
		if err := scanSeries(rows, s, &countryName, &countryCode); err != nil {
			return nil, err
		}
		if s.CountryID != nil && countryName != nil {
			s.Country = &models.Reference{ID: *s.CountryID, Name: *countryName, Code: countryCode}
		}
		list = append(list, s)
		byID[s.ID] = s
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return list, nil
	}

	ids := make([]int64, 0, len(list))
	for _, s := range list {
		ids = append(ids, s.ID)
	}
	if err := r.attachNamed(ctx, `SELECT st.series_id, t.id, t.name FROM series_tags st
		JOIN tags t ON t.id = st.tag_id WHERE st.series_id = ANY($1) ORDER BY t.name`, ids,
		func(s *models.Series, ref models.Reference) { s.Tags = append(s.Tags, ref) }, byID); err != nil {
		return nil, err
	}
	if err := r.attachNamed(ctx, `SELECT sg.series_id, g.id, g.name FROM series_genres sg
		JOIN genres g ON g.id = sg.genre_id WHERE sg.series_id = ANY($1) ORDER BY g.name`, ids,
		func(s *models.Series, ref models.Reference) { s.Genres = append(s.Genres, ref) }, byID); err != nil {
		return nil, err
	}
	return list, nil
}

func (r *SeriesRepository) attachNamed(ctx context.Context, query string, ids []int64,
	add func(*models.Series, models.Reference), byID map[int64]*models.Series) error {
	rows, err := r.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var seriesID int64
		var ref models.Reference
		if err := rows.Scan(&seriesID, &ref.ID, &ref.Name); err != nil {
			return err
		}
		if s, ok := byID[seriesID]; ok {
			add(s, ref)
		}
	}
	return rows.Err()
}

// Delete removes the series; every join row cascades.
func (r *SeriesRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM series WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return notFound("series")
	}
	return nil
}

func (r *SeriesRepository) MissingIDs(ctx context.Context, ids []int64) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT u.id FROM unnest($1::bigint[]) AS u(id)
		WHERE NOT EXISTS (SELECT 1 FROM series s WHERE s.id = u.id)`, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var missing []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		missing = append(missing, id)
	}
	return missing, rows.Err()
}

package repository

import (
	"context"
	"fmt"

	"github.com/juanjparedez/mundobl/internal/models"
)

// RelationRepository owns the series join tables.
type RelationRepository struct {
	db DBTX
}

func NewRelationRepository(db DBTX) *RelationRepository {
	return &RelationRepository{db: db}
}

var relationTables = map[models.Relation]string{
	models.RelActors:     "series_actors",
	models.RelDirectors:  "series_directors",
	models.RelDubbings:   "series_dubbings",
	models.RelSeasons:    "seasons",
	models.RelTags:       "series_tags",
	models.RelGenres:     "series_genres",
	models.RelWatchLinks: "watch_links",
	models.RelEmbeds:     "series_embeds",
}

func (r *RelationRepository) Clear(ctx context.Context, seriesID int64, rel models.Relation) error {
	if rel == models.RelRelated {
		return r.ClearRelated(ctx, seriesID)
	}
	table, ok := relationTables[rel]
	if !ok {
		return fmt.Errorf("unknown relation %q", rel)
	}
	_, err := r.db.ExecContext(ctx, `DELETE FROM `+table+` WHERE series_id = $1`, seriesID)
	return err
}

func (r *RelationRepository) AddActor(ctx context.Context, row *models.SeriesActor) error {
	query := `INSERT INTO series_actors (series_id, actor_id, character_name, is_main, pairing_group)
		VALUES ($1, $2, $3, $4, $5) RETURNING id`
	err := r.db.QueryRowContext(ctx, query, row.SeriesID, row.ActorID, row.Character, row.IsMain, row.PairingGroup).
		Scan(&row.ID)
	return mapError(err)
}

func (r *RelationRepository) AddDirector(ctx context.Context, seriesID, directorID int64) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO series_directors (series_id, director_id) VALUES ($1, $2)`, seriesID, directorID)
	return mapError(err)
}

func (r *RelationRepository) AddTag(ctx context.Context, seriesID, tagID int64) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO series_tags (series_id, tag_id) VALUES ($1, $2)`, seriesID, tagID)
	return mapError(err)
}

func (r *RelationRepository) AddGenre(ctx context.Context, seriesID, genreID int64) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO series_genres (series_id, genre_id) VALUES ($1, $2)`, seriesID, genreID)
	return mapError(err)
}

func (r *RelationRepository) AddDubbing(ctx context.Context, row *models.SeriesDubbing) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO series_dubbings (series_id, language_id, kind) VALUES ($1, $2, $3)`,
		row.SeriesID, row.LanguageID, row.Kind)
	return mapError(err)
}

func (r *RelationRepository) AddWatchLink(ctx context.Context, link *models.WatchLink) error {
	query := `INSERT INTO watch_links (series_id, platform, url, official)
		VALUES ($1, $2, $3, $4) RETURNING id`
	err := r.db.QueryRowContext(ctx, query, link.SeriesID, link.Platform, link.URL, link.Official).Scan(&link.ID)
	return mapError(err)
}

func (r *RelationRepository) AddSeason(ctx context.Context, season *models.Season) error {
	query := `INSERT INTO seasons (series_id, number, title, year, episode_count, synopsis)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	err := r.db.QueryRowContext(ctx, query, season.SeriesID, season.Number, season.Title, season.Year,
		season.EpisodeCount, season.Synopsis).Scan(&season.ID)
	return mapError(err)
}

func (r *RelationRepository) AddEmbed(ctx context.Context, embed *models.Embed) error {
	query := `INSERT INTO series_embeds (series_id, title, url, kind, sort_order)
		VALUES ($1, $2, $3, $4, $5) RETURNING id`
	err := r.db.QueryRowContext(ctx, query, embed.SeriesID, embed.Title, embed.URL, embed.Kind, embed.SortOrder).
		Scan(&embed.ID)
	return mapError(err)
}

// ──────────────────── Related series ────────────────────

func (r *RelationRepository) ClearRelated(ctx context.Context, seriesID int64) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM related_series WHERE main_series_id = $1 OR related_series_id = $1`, seriesID)
	return err
}

func (r *RelationRepository) AddRelated(ctx context.Context, mainID, relatedID int64) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO related_series (main_series_id, related_series_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		mainID, relatedID)
	return mapError(err)
}

// ──────────────────── Load ────────────────────

func (r *RelationRepository) Load(ctx context.Context, s *models.Series) error {
	var err error
	if s.Country, err = r.scalarRef(ctx, "countries", true, s.CountryID); err != nil {
		return err
	}
	if s.ProductionCompany, err = r.scalarRef(ctx, "production_companies", false, s.ProductionCompanyID); err != nil {
		return err
	}
	if s.OriginalLanguage, err = r.scalarRef(ctx, "languages", true, s.OriginalLanguageID); err != nil {
		return err
	}
	if s.Actors, err = r.loadActors(ctx, s.ID); err != nil {
		return err
	}
	if s.Directors, err = r.loadNamed(ctx, `SELECT d.id, d.name FROM series_directors sd
		JOIN directors d ON d.id = sd.director_id WHERE sd.series_id = $1 ORDER BY d.name`, s.ID); err != nil {
		return err
	}
	if s.Tags, err = r.loadNamed(ctx, `SELECT t.id, t.name FROM series_tags st
		JOIN tags t ON t.id = st.tag_id WHERE st.series_id = $1 ORDER BY t.name`, s.ID); err != nil {
		return err
	}
	if s.Genres, err = r.loadNamed(ctx, `SELECT g.id, g.name FROM series_genres sg
		JOIN genres g ON g.id = sg.genre_id WHERE sg.series_id = $1 ORDER BY g.name`, s.ID); err != nil {
		return err
	}
	if s.Dubbings, err = r.loadDubbings(ctx, s.ID); err != nil {
		return err
	}
	if s.Seasons, err = r.loadSeasons(ctx, s.ID); err != nil {
		return err
	}
	if s.WatchLinks, err = r.loadWatchLinks(ctx, s.ID); err != nil {
		return err
	}
	if s.Embeds, err = r.loadEmbeds(ctx, s.ID); err != nil {
		return err
	}
	s.RelatedSeries, err = r.loadRelated(ctx, s.ID)
	return err
}

func (r *RelationRepository) scalarRef(ctx context.Context, table string, hasCode bool, id *int64) (*models.Reference, error) {
	if id == nil {
		return nil, nil
	}
	code := `NULL::text`
	if hasCode {
		code = `code`
	}
	ref := &models.Reference{}
	err := r.db.QueryRowContext(ctx, `SELECT id, name, `+code+` FROM `+table+` WHERE id = $1`, *id).
		Scan(&ref.ID, &ref.Name, &ref.Code)
	if err != nil {
		return nil, err
	}
	return ref, nil
}

func (r *RelationRepository) loadNamed(ctx context.Context, query string, seriesID int64) ([]models.Reference, error) {
	rows, err := r.db.QueryContext(ctx, query, seriesID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var refs []models.Reference
	for rows.Next() {
		var ref models.Reference
		if err := rows.Scan(&ref.ID, &ref.Name); err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	return refs, rows.Err()
}

func (r *RelationRepository) loadActors(ctx context.Context, seriesID int64) ([]models.SeriesActor, error) {
	query := `SELECT sa.id, sa.series_id, sa.actor_id, sa.character_name, sa.is_main, sa.pairing_group,
			a.name, a.image_url
		FROM series_actors sa JOIN actors a ON a.id = sa.actor_id
		WHERE sa.series_id = $1 ORDER BY sa.is_main DESC, sa.pairing_group NULLS LAST, sa.id`
	rows, err := r.db.QueryContext(ctx, query, seriesID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var actors []models.SeriesActor
	for rows.Next() {
		var a models.SeriesActor
		if err := rows.Scan(&a.ID, &a.SeriesID, &a.ActorID, &a.Character, &a.IsMain, &a.PairingGroup,
			&a.Name, &a.ImageURL); err != nil {
			return nil, err
		}
		actors = append(actors, a)
	}
	return actors, rows.Err()
}

func (r *RelationRepository) loadDubbings(ctx context.Context, seriesID int64) ([]models.SeriesDubbing, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT d.series_id, d.language_id, d.kind, l.name
		FROM series_dubbings d JOIN languages l ON l.id = d.language_id
		WHERE d.series_id = $1 ORDER BY l.name, d.kind`, seriesID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.SeriesDubbing
	for rows.Next() {
		var d models.SeriesDubbing
		if err := rows.Scan(&d.SeriesID, &d.LanguageID, &d.Kind, &d.Language); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *RelationRepository) loadSeasons(ctx context.Context, seriesID int64) ([]models.Season, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, series_id, number, title, year, episode_count, synopsis
		FROM seasons WHERE series_id = $1 ORDER BY number`, seriesID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Season
	for rows.Next() {
		var s models.Season
		if err := rows.Scan(&s.ID, &s.SeriesID, &s.Number, &s.Title, &s.Year, &s.EpisodeCount, &s.Synopsis); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *RelationRepository) loadWatchLinks(ctx context.Context, seriesID int64) ([]models.WatchLink, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, series_id, platform, url, official
		FROM watch_links WHERE series_id = $1 ORDER BY official DESC, platform`, seriesID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.WatchLink
	for rows.Next() {
		var l models.WatchLink
		if err := rows.Scan(&l.ID, &l.SeriesID, &l.Platform, &l.URL, &l.Official); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *RelationRepository) loadEmbeds(ctx context.Context, seriesID int64) ([]models.Embed, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, series_id, title, url, kind, sort_order
		FROM series_embeds WHERE series_id = $1 ORDER BY sort_order, id`, seriesID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Embed
	for rows.Next() {
		var e models.Embed
		if err := rows.Scan(&e.ID, &e.SeriesID, &e.Title, &e.URL, &e.Kind, &e.SortOrder); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *RelationRepository) loadRelated(ctx context.Context, seriesID int64) ([]models.RelatedSeries, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT s.id, s.title, s.year, s.image_url
		FROM related_series rs JOIN series s ON s.id = rs.related_series_id
		WHERE rs.main_series_id = $1 ORDER BY s.title`, seriesID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.RelatedSeries
	for rows.Next() {
		var rel models.RelatedSeries
		if err := rows.Scan(&rel.SeriesID, &rel.Title, &rel.Year, &rel.ImageURL); err != nil {
			return nil, err
		}
		out = append(out, rel)
	}
	return out, rows.Err()
}

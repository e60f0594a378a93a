package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/juanjparedez/mundobl/internal/models"
)

type refTable struct {
	name    string
	hasCode bool
	// usage counts the distinct series pointing at t.id.
	usage string
}

var refTables = map[models.RefKind]refTable{
	models.KindCountry: {name: "countries", hasCode: true,
		usage: `(SELECT COUNT(*) FROM series s WHERE s.country_id = t.id)`},
	models.KindProductionCompany: {name: "production_companies",
		usage: `(SELECT COUNT(*) FROM series s WHERE s.production_company_id = t.id)`},
	models.KindLanguage: {name: "languages", hasCode: true,
		usage: `(SELECT COUNT(*) FROM series s WHERE s.original_language_id = t.id
			OR EXISTS (SELECT 1 FROM series_dubbings d WHERE d.series_id = s.id AND d.language_id = t.id))`},
	models.KindActor: {name: "actors",
		usage: `(SELECT COUNT(DISTINCT sa.series_id) FROM series_actors sa WHERE sa.actor_id = t.id)`},
	models.KindDirector: {name: "directors",
		usage: `(SELECT COUNT(*) FROM series_directors sd WHERE sd.director_id = t.id)`},
	models.KindTag: {name: "tags",
		usage: `(SELECT COUNT(*) FROM series_tags st WHERE st.tag_id = t.id)`},
	models.KindGenre: {name: "genres",
		usage: `(SELECT COUNT(*) FROM series_genres sg WHERE sg.genre_id = t.id)`},
}

func tableFor(kind models.RefKind) (refTable, error) {
	t, ok := refTables[kind]
	if !ok {
		return refTable{}, fmt.Errorf("unknown reference kind %q", kind)
	}
	return t, nil
}

type ReferenceRepository struct {
	db DBTX
}

func NewReferenceRepository(db DBTX) *ReferenceRepository {
	return &ReferenceRepository{db: db}
}

func (r *ReferenceRepository) FindByName(ctx context.Context, kind models.RefKind, name string) (int64, error) {
	t, err := tableFor(kind)
	if err != nil {
		return 0, err
	}
	var id int64
	err = r.db.QueryRowContext(ctx, `SELECT id FROM `+t.name+` WHERE name = $1`, name).Scan(&id)
	if err == sql.ErrNoRows {
		return 0, notFound(string(kind))
	}
	return id, err
}

func (r *ReferenceRepository) Insert(ctx context.Context, kind models.RefKind, name string, code *string) (int64, error) {
	t, err := tableFor(kind)
	if err != nil {
		return 0, err
	}
	var id int64
	if t.hasCode {
		err = r.db.QueryRowContext(ctx,
			`INSERT INTO `+t.name+` (name, code) VALUES ($1, $2) RETURNING id`, name, code).Scan(&id)
	} else {
		err = r.db.QueryRowContext(ctx,
			`INSERT INTO `+t.name+` (name) VALUES ($1) RETURNING id`, name).Scan(&id)
	}
	if err != nil {
		return 0, mapError(err)
	}
	return id, nil
}

func (r *ReferenceRepository) List(ctx context.Context, kind models.RefKind) ([]*models.Reference, error) {
	t, err := tableFor(kind)
	if err != nil {
		return nil, err
	}
	code := `NULL::text`
	if t.hasCode {
		code = `t.code`
	}
	query := `SELECT t.id, t.name, ` + code + `, ` + t.usage + ` AS series_count
		FROM ` + t.name + ` t ORDER BY t.name`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var refs []*models.Reference
	for rows.Next() {
		ref := &models.Reference{}
		if err := rows.Scan(&ref.ID, &ref.Name, &ref.Code, &ref.SeriesCount); err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	return refs, rows.Err()
}

package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/juanjparedez/mundobl/internal/models"
)

// PersonRepository serves the actors and directors tables, which share a
// profile layout.
type PersonRepository struct {
	db DBTX
}

func NewPersonRepository(db DBTX) *PersonRepository {
	return &PersonRepository{db: db}
}

type personTable struct {
	table string
	join  string
	fk    string
}

func personTableFor(kind models.RefKind) (personTable, error) {
	switch kind {
	case models.KindActor:
		return personTable{table: "actors", join: "series_actors", fk: "actor_id"}, nil
	case models.KindDirector:
		return personTable{table: "directors", join: "series_directors", fk: "director_id"}, nil
	}
	return personTable{}, fmt.Errorf("%q has no profile table", kind)
}

func (t personTable) selectColumns() string {
	return `p.id, p.name, p.biography, p.birth_date, p.nationality, p.image_url, p.created_at, p.updated_at,
		COALESCE((SELECT COUNT(DISTINCT j.series_id) FROM ` + t.join + ` j WHERE j.` + t.fk + ` = p.id), 0) AS series_count`
}

func scanPerson(row interface{ Scan(...interface{}) error }, p *models.Person) error {
	return row.Scan(&p.ID, &p.Name, &p.Biography, &p.BirthDate, &p.Nationality, &p.ImageURL,
		&p.CreatedAt, &p.UpdatedAt, &p.SeriesCount)
}

func (r *PersonRepository) GetByID(ctx context.Context, kind models.RefKind, id int64) (*models.Person, error) {
	t, err := personTableFor(kind)
	if err != nil {
		return nil, err
	}
	p := &models.Person{}
	query := `SELECT ` + t.selectColumns() + ` FROM ` + t.table + ` p WHERE p.id = $1`
	err = scanPerson(r.db.QueryRowContext(ctx, query, id), p)
	if err == sql.ErrNoRows {
		return nil, notFound(string(kind))
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *PersonRepository) List(ctx context.Context, kind models.RefKind, search string) ([]*models.Person, error) {
	t, err := personTableFor(kind)
	if err != nil {
		return nil, err
	}
	query := `SELECT ` + t.selectColumns() + ` FROM ` + t.table + ` p`
	var args []interface{}
	if search != "" {
		query += ` WHERE p.name ILIKE $1`
		args = append(args, "%"+search+"%")
	}
	query += ` ORDER BY p.name`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var people []*models.Person
	for rows.Next() {
		p := &models.Person{}
		if err := scanPerson(rows, p); err != nil {
			return nil, err
		}
		people = append(people, p)
	}
	return people, rows.Err()
}

func (r *PersonRepository) Update(ctx context.Context, kind models.RefKind, p *models.Person) error {
	t, err := personTableFor(kind)
	if err != nil {
		return err
	}
	query := `UPDATE ` + t.table + ` SET name=$1, biography=$2, birth_date=$3, nationality=$4, image_url=$5,
			updated_at=CURRENT_TIMESTAMP
		WHERE id=$6 RETURNING updated_at`
	err = r.db.QueryRowContext(ctx, query, p.Name, p.Biography, p.BirthDate, p.Nationality, p.ImageURL, p.ID).
		Scan(&p.UpdatedAt)
	if err == sql.ErrNoRows {
		return notFound(string(kind))
	}
	return mapError(err)
}

func (r *PersonRepository) Delete(ctx context.Context, kind models.RefKind, id int64) error {
	t, err := personTableFor(kind)
	if err != nil {
		return err
	}
	result, err := r.db.ExecContext(ctx, `DELETE FROM `+t.table+` WHERE id = $1`, id)
	if err != nil {
		return mapError(err)
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return notFound(string(kind))
	}
	return nil
}

func (r *PersonRepository) CountReferences(ctx context.Context, kind models.RefKind, id int64) (int, error) {
	t, err := personTableFor(kind)
	if err != nil {
		return 0, err
	}
	var n int
	err = r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+t.join+` WHERE `+t.fk+` = $1`, id).Scan(&n)
	return n, err
}

func (r *PersonRepository) Credits(ctx context.Context, kind models.RefKind, id int64) ([]models.Credit, error) {
	var query string
	switch kind {
	case models.KindActor:
		query = `SELECT s.id, s.title, s.year, s.image_url, sa.character_name, sa.is_main
			FROM series_actors sa JOIN series s ON s.id = sa.series_id
			WHERE sa.actor_id = $1 ORDER BY s.year DESC NULLS LAST, s.title`
	case models.KindDirector:
		query = `SELECT s.id, s.title, s.year, s.image_url, NULL::text, false
			FROM series_directors sd JOIN series s ON s.id = sd.series_id
			WHERE sd.director_id = $1 ORDER BY s.year DESC NULLS LAST, s.title`
	default:
		return nil, fmt.Errorf("%q has no credits", kind)
	}

	rows, err := r.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var credits []models.Credit
	for rows.Next() {
		var c models.Credit
		if err := rows.Scan(&c.SeriesID, &c.Title, &c.Year, &c.ImageURL, &c.Character, &c.IsMain); err != nil {
			return nil, err
		}
		credits = append(credits, c)
	}
	return credits, rows.Err()
}

// Reassign points every join row of source at target. A source row that
// would duplicate a target row on the same series is deleted first.
func (r *PersonRepository) Reassign(ctx context.Context, kind models.RefKind, sourceID, targetID int64) (int, error) {
	var dedupe, move string
	switch kind {
	case models.KindActor:
		dedupe = `DELETE FROM series_actors src USING series_actors dst
			WHERE src.actor_id = $1 AND dst.actor_id = $2 AND dst.series_id = src.series_id
			AND dst.character_name IS NOT DISTINCT FROM src.character_name`
		move = `UPDATE series_actors SET actor_id = $2 WHERE actor_id = $1`
	case models.KindDirector:
		dedupe = `DELETE FROM series_directors src
			WHERE src.director_id = $1 AND EXISTS (
				SELECT 1 FROM series_directors dst WHERE dst.director_id = $2 AND dst.series_id = src.series_id)`
		move = `UPDATE series_directors SET director_id = $2 WHERE director_id = $1`
	default:
		return 0, fmt.Errorf("%q cannot be merged", kind)
	}

	if _, err := r.db.ExecContext(ctx, dedupe, sourceID, targetID); err != nil {
		return 0, err
	}
	result, err := r.db.ExecContext(ctx, move, sourceID, targetID)
	if err != nil {
		return 0, mapError(err)
	}
	n, _ := result.RowsAffected()
	return int(n), nil
}

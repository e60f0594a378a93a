package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/juanjparedez/mundobl/internal/catalog"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// Store implements catalog.Store on PostgreSQL.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Repos() catalog.Repos {
	return reposFor(s.db)
}

func (s *Store) WithTx(ctx context.Context, fn func(catalog.Repos) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(reposFor(tx)); err != nil {
		return err
	}
	return tx.Commit()
}

func reposFor(q DBTX) catalog.Repos {
	return catalog.Repos{
		References: NewReferenceRepository(q),
		Series:     NewSeriesRepository(q),
		Relations:  NewRelationRepository(q),
		People:     NewPersonRepository(q),
		Images:     NewImageRepository(q),
	}
}

// PostgreSQL error classes mapped onto catalog sentinels.
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
)

func mapError(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}
	switch pqErr.Code {
	case codeUniqueViolation:
		return fmt.Errorf("%w (%s)", catalog.ErrDuplicate, pqErr.Constraint)
	case codeForeignKeyViolation:
		return fmt.Errorf("%w (%s)", catalog.ErrInvalidReference, pqErr.Constraint)
	}
	return err
}

func notFound(what string) error {
	return fmt.Errorf("%s %w", what, catalog.ErrNotFound)
}

package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/juanjparedez/mundobl/internal/catalog"
	"github.com/juanjparedez/mundobl/internal/models"
)

func TestMapError(t *testing.T) {
	dup := mapError(fmt.Errorf("insert: %w", &pq.Error{Code: codeUniqueViolation, Constraint: "tags_name_key"}))
	assert.ErrorIs(t, dup, catalog.ErrDuplicate)
	assert.Contains(t, dup.Error(), "tags_name_key")

	fk := mapError(&pq.Error{Code: codeForeignKeyViolation, Constraint: "series_country_id_fkey"})
	assert.ErrorIs(t, fk, catalog.ErrInvalidReference)

	other := &pq.Error{Code: "57014"}
	assert.Same(t, other, mapError(other))

	plain := errors.New("boom")
	assert.Equal(t, plain, mapError(plain))
	assert.NoError(t, mapError(nil))
}

func TestNotFoundWrapsSentinel(t *testing.T) {
	err := notFound("series")
	assert.ErrorIs(t, err, catalog.ErrNotFound)
	assert.Equal(t, "series not found", err.Error())
}

func TestEveryReferenceKindHasATable(t *testing.T) {
	for _, kind := range models.RefKinds() {
		tbl, err := tableFor(kind)
		require.NoError(t, err, kind)
		assert.NotEmpty(t, tbl.name)
		assert.NotEmpty(t, tbl.usage)
	}
	_, err := tableFor("planet")
	assert.Error(t, err)
}

func TestPersonTables(t *testing.T) {
	actors, err := personTableFor(models.KindActor)
	require.NoError(t, err)
	assert.Equal(t, "series_actors", actors.join)

	_, err = personTableFor(models.KindTag)
	assert.Error(t, err)
}

func TestEveryRelationHasATable(t *testing.T) {
	for _, rel := range []models.Relation{
		models.RelActors, models.RelDirectors, models.RelDubbings, models.RelSeasons,
		models.RelTags, models.RelGenres, models.RelWatchLinks, models.RelEmbeds,
	} {
		assert.Contains(t, relationTables, rel)
	}
}

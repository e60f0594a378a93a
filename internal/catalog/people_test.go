package catalog_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/juanjparedez/mundobl/internal/catalog"
	"github.com/juanjparedez/mundobl/internal/models"
)

func TestDeleteReferencedActorIsBlocked(t *testing.T) {
	svc, store, _, _ := newService(t)
	ctx := context.Background()
	id := store.SeedSeries("Example")

	_, err := svc.UpdateSeries(ctx, id, &catalog.SeriesInput{
		Title:  ptr("Example"),
		Actors: &[]catalog.ActorInput{{Name: "Jun", Character: ptr("Lead")}, {Name: "Jun", Character: ptr("Twin")}},
	})
	require.NoError(t, err)
	people, err := svc.ListPeople(ctx, models.KindActor, "jun")
	require.NoError(t, err)
	require.Len(t, people, 1)

	err = svc.DeletePerson(ctx, models.KindActor, people[0].ID)
	var blocked *catalog.ReferentialBlockError
	require.ErrorAs(t, err, &blocked)
	assert.Equal(t, 2, blocked.References)

	_, err = svc.GetPerson(ctx, models.KindActor, people[0].ID)
	assert.NoError(t, err)
}

func TestDeleteUnreferencedDirector(t *testing.T) {
	svc, store, _, events := newService(t)
	ctx := context.Background()
	id := store.SeedReference(models.KindDirector, "Aof")

	require.NoError(t, svc.DeletePerson(ctx, models.KindDirector, id))
	_, err := svc.GetPerson(ctx, models.KindDirector, id)
	assert.ErrorIs(t, err, catalog.ErrNotFound)
	assert.Equal(t, []string{"director:deleted"}, events.events)
}

func TestPersonOperationsRejectLookupKinds(t *testing.T) {
	svc, _, _, _ := newService(t)

	_, err := svc.ListPeople(context.Background(), models.KindTag, "")
	var verr *catalog.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestUpdatePersonProfile(t *testing.T) {
	svc, store, host, _ := newService(t)
	ctx := context.Background()
	id := store.SeedReference(models.KindActor, "Jun")
	store.SeedReference(models.KindActor, "Tay")

	p, err := svc.UpdatePerson(ctx, models.KindActor, id, &catalog.PersonInput{
		Biography: ptr("Thai actor."),
		BirthDate: ptr("1998-05-02"),
		ImageURL:  ptr("https://cdn.example/jun.jpg"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Thai actor.", *p.Biography)
	assert.Equal(t, 1998, p.BirthDate.Year())
	assert.Equal(t, hostedPrefix+"actor/hosted.jpg", *p.ImageURL)
	assert.Equal(t, []string{"https://cdn.example/jun.jpg"}, host.calls)

	_, err = svc.UpdatePerson(ctx, models.KindActor, id, &catalog.PersonInput{Name: ptr("Tay")})
	var conflict *catalog.ConflictError
	assert.ErrorAs(t, err, &conflict)

	_, err = svc.UpdatePerson(ctx, models.KindActor, id, &catalog.PersonInput{BirthDate: ptr("02/05/1998")})
	var verr *catalog.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestMergeActorsMovesCredits(t *testing.T) {
	svc, store, _, events := newService(t)
	ctx := context.Background()
	first := store.SeedSeries("First")
	second := store.SeedSeries("Second")

	_, err := svc.UpdateSeries(ctx, first, &catalog.SeriesInput{
		Title:  ptr("First"),
		Actors: &[]catalog.ActorInput{{Name: "Jun P.", Character: ptr("Lead")}, {Name: "Jun", Character: ptr("Lead")}},
	})
	require.NoError(t, err)
	_, err = svc.UpdateSeries(ctx, second, &catalog.SeriesInput{
		Title:  ptr("Second"),
		Actors: &[]catalog.ActorInput{{Name: "Jun P.", Character: ptr("Rival")}},
	})
	require.NoError(t, err)

	list, err := svc.ListPeople(ctx, models.KindActor, "")
	require.NoError(t, err)
	require.Len(t, list, 2)
	ids := map[string]int64{}
	for _, p := range list {
		ids[p.Name] = p.ID
	}

	res, err := svc.MergePeople(ctx, models.KindActor, catalog.MergeInput{SourceID: ids["Jun P."], TargetID: ids["Jun"]})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Moved)

	_, err = svc.GetPerson(ctx, models.KindActor, ids["Jun P."])
	assert.ErrorIs(t, err, catalog.ErrNotFound)

	detail, err := svc.GetPerson(ctx, models.KindActor, ids["Jun"])
	require.NoError(t, err)
	assert.Len(t, detail.Credits, 2)
	assert.Equal(t, 2, detail.SeriesCount)
	assert.Contains(t, events.events, "actor:merged")
}

func TestMergeValidation(t *testing.T) {
	svc, store, _, _ := newService(t)
	ctx := context.Background()
	id := store.SeedReference(models.KindDirector, "Aof")

	_, err := svc.MergePeople(ctx, models.KindDirector, catalog.MergeInput{SourceID: id, TargetID: id})
	var verr *catalog.ValidationError
	assert.ErrorAs(t, err, &verr)

	_, err = svc.MergePeople(ctx, models.KindDirector, catalog.MergeInput{SourceID: id, TargetID: 999})
	assert.ErrorIs(t, err, catalog.ErrNotFound)

	_, err = svc.GetPerson(ctx, models.KindDirector, id)
	assert.NoError(t, err)
}

func TestMigrateImages(t *testing.T) {
	svc, store, host, _ := newService(t)
	ctx := context.Background()
	broken := "https://cdn.example/broken.jpg"
	host.failing[broken] = true

	a := store.SeedSeries("A")
	b := store.SeedSeries("B")
	actor := store.SeedReference(models.KindActor, "Jun")
	repos := store.Repos()
	require.NoError(t, repos.Images.SetImage(ctx, models.ImageRef{Owner: models.ImageOwnerSeries, ID: a}, "https://cdn.example/a.jpg"))
	require.NoError(t, repos.Images.SetImage(ctx, models.ImageRef{Owner: models.ImageOwnerSeries, ID: b}, broken))
	require.NoError(t, repos.Images.SetImage(ctx, models.ImageRef{Owner: models.ImageOwnerActor, ID: actor}, hostedPrefix+"actor/x.jpg"))

	report, err := svc.MigrateImages(ctx)
	require.NoError(t, err)
	assert.Equal(t, catalog.MigrationReport{Scanned: 3, Hosted: 1, Skipped: 1, Failed: 1}, report)

	got, err := svc.GetSeries(ctx, a)
	require.NoError(t, err)
	assert.Equal(t, hostedPrefix+"series/hosted.jpg", *got.ImageURL)
	got, err = svc.GetSeries(ctx, b)
	require.NoError(t, err)
	assert.Equal(t, broken, *got.ImageURL)
}

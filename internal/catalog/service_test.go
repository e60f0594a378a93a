package catalog_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/juanjparedez/mundobl/internal/catalog"
	"github.com/juanjparedez/mundobl/internal/images"
	"github.com/juanjparedez/mundobl/internal/models"
	"github.com/juanjparedez/mundobl/internal/testsupport"
)

const hostedPrefix = "https://media.example/"

// fakeHost re-hosts every URL except the ones listed in failing.
type fakeHost struct {
	failing map[string]bool
	calls   []string
}

func (f *fakeHost) Owns(raw string) bool { return strings.HasPrefix(raw, hostedPrefix) }

func (f *fakeHost) EnsureHosted(ctx context.Context, raw, folder string) images.Result {
	f.calls = append(f.calls, raw)
	if f.Owns(raw) {
		return images.Result{Original: raw, URL: raw}
	}
	if f.failing[raw] {
		return images.Result{Original: raw, Err: &images.IngestError{
			Stage: images.StageDownload, URL: raw, Err: errors.New("status 404"),
		}}
	}
	return images.Result{Original: raw, URL: hostedPrefix + folder + "/hosted.jpg", Uploaded: true}
}

type recorder struct {
	events []string
}

func (r *recorder) Broadcast(event string, data interface{}) {
	r.events = append(r.events, event)
}

func newService(t *testing.T) (*catalog.Service, *testsupport.MemStore, *fakeHost, *recorder) {
	t.Helper()
	store := testsupport.NewMemStore()
	host := &fakeHost{failing: map[string]bool{}}
	events := &recorder{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return catalog.NewService(store, host, events, logger), store, host, events
}

func ptr[T any](v T) *T { return &v }

func actorNames(s *models.Series) []string {
	var names []string
	for _, a := range s.Actors {
		names = append(names, a.Name)
	}
	return names
}

func refNames(refs []models.Reference) []string {
	var names []string
	for _, r := range refs {
		names = append(names, r.Name)
	}
	return names
}

func relatedIDs(s *models.Series) []int64 {
	var ids []int64
	for _, r := range s.RelatedSeries {
		ids = append(ids, r.SeriesID)
	}
	return ids
}

// ──────────────────── Resolver ────────────────────

func TestResolveOrCreateIsIdempotent(t *testing.T) {
	store := testsupport.NewMemStore()
	refs := store.Repos().References
	ctx := context.Background()

	first, err := catalog.ResolveOrCreate(ctx, refs, models.KindActor, "Jun")
	require.NoError(t, err)
	second, err := catalog.ResolveOrCreate(ctx, refs, models.KindActor, "Jun")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, store.CountNamed(models.KindActor, "Jun"))
}

func TestResolveOrCreateIsCaseSensitive(t *testing.T) {
	store := testsupport.NewMemStore()
	refs := store.Repos().References
	ctx := context.Background()

	a, err := catalog.ResolveOrCreate(ctx, refs, models.KindTag, "Slow Burn")
	require.NoError(t, err)
	b, err := catalog.ResolveOrCreate(ctx, refs, models.KindTag, "slow burn")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestResolveOrCreateDerivesCountryCode(t *testing.T) {
	svc, store, _, _ := newService(t)
	ctx := context.Background()

	_, err := catalog.ResolveOrCreate(ctx, store.Repos().References, models.KindCountry, "Tailandia")
	require.NoError(t, err)

	list, err := svc.ListReferences(ctx, models.KindCountry)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.NotNil(t, list[0].Code)
	assert.Equal(t, "TH", *list[0].Code)
}

func TestResolveOrCreateRejectsBlankName(t *testing.T) {
	store := testsupport.NewMemStore()
	_, err := catalog.ResolveOrCreate(context.Background(), store.Repos().References, models.KindGenre, "   ")

	var verr *catalog.ValidationError
	assert.ErrorAs(t, err, &verr)
}

// racingRefs simulates another request inserting the same name between
// lookup and insert.
type racingRefs struct{ catalog.ReferenceRepository }

func (racingRefs) FindByName(ctx context.Context, kind models.RefKind, name string) (int64, error) {
	return 0, catalog.ErrNotFound
}

func (racingRefs) Insert(ctx context.Context, kind models.RefKind, name string, code *string) (int64, error) {
	return 0, catalog.ErrDuplicate
}

func TestResolveOrCreateReportsLostRaceAsConflict(t *testing.T) {
	_, err := catalog.ResolveOrCreate(context.Background(), racingRefs{}, models.KindActor, "Jun")

	var conflict *catalog.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "actor", conflict.Kind)
	assert.True(t, errors.Is(err, catalog.ErrDuplicate))
}

// ──────────────────── Relation replacement ────────────────────

func TestUpdateReplacesActorsWholesale(t *testing.T) {
	svc, store, _, _ := newService(t)
	ctx := context.Background()
	id := store.SeedSeries("Example")

	_, err := svc.UpdateSeries(ctx, id, &catalog.SeriesInput{
		Title:  ptr("Example"),
		Actors: &[]catalog.ActorInput{{Name: "A", Character: ptr("X")}, {Name: "B"}},
	})
	require.NoError(t, err)

	_, err = svc.UpdateSeries(ctx, id, &catalog.SeriesInput{
		Title:  ptr("Example"),
		Actors: &[]catalog.ActorInput{{Name: "B", Character: ptr("Friend")}, {Name: "C", IsMain: true}},
	})
	require.NoError(t, err)

	got, err := svc.GetSeries(ctx, id)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"B", "C"}, actorNames(got))
	for _, a := range got.Actors {
		if a.Name == "B" {
			require.NotNil(t, a.Character)
			assert.Equal(t, "Friend", *a.Character)
		}
		if a.Name == "C" {
			assert.True(t, a.IsMain)
		}
	}
	// A stays in the lookup table.
	assert.Equal(t, 1, store.CountNamed(models.KindActor, "A"))
}

func TestEmptyListClearsAndOmittedKeyPreserves(t *testing.T) {
	svc, store, _, _ := newService(t)
	ctx := context.Background()
	id := store.SeedSeries("Example")

	_, err := svc.UpdateSeries(ctx, id, &catalog.SeriesInput{
		Title:  ptr("Example"),
		Tags:   &[]string{"Enemy to Lovers", "Office"},
		Genres: &[]string{"Romance"},
	})
	require.NoError(t, err)

	_, err = svc.UpdateSeries(ctx, id, &catalog.SeriesInput{Title: ptr("Example"), Tags: &[]string{}})
	require.NoError(t, err)

	got, err := svc.GetSeries(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, got.Tags)
	assert.Equal(t, []string{"Romance"}, refNames(got.Genres))
}

func TestMalformedItemsAreSkipped(t *testing.T) {
	svc, store, _, _ := newService(t)
	ctx := context.Background()
	id := store.SeedSeries("Example")

	_, err := svc.UpdateSeries(ctx, id, &catalog.SeriesInput{
		Title:      ptr("Example"),
		Actors:     &[]catalog.ActorInput{{Name: "Jun"}, {Name: "  "}, {Name: "Tay"}},
		WatchLinks: &[]catalog.WatchLinkInput{{Platform: "GMMTV", URL: ""}, {Platform: "YouTube", URL: "https://youtu.be/x", Official: true}},
		Seasons:    &[]catalog.SeasonInput{{Title: ptr("no number")}, {Number: ptr(1)}},
	})
	require.NoError(t, err)

	got, err := svc.GetSeries(ctx, id)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Jun", "Tay"}, actorNames(got))
	require.Len(t, got.WatchLinks, 1)
	assert.True(t, got.WatchLinks[0].Official)
	require.Len(t, got.Seasons, 1)
	assert.Equal(t, 1, got.Seasons[0].Number)
}

func TestWatchLinkPlatformIsOptional(t *testing.T) {
	svc, store, _, _ := newService(t)
	ctx := context.Background()
	id := store.SeedSeries("Example")

	_, err := svc.UpdateSeries(ctx, id, &catalog.SeriesInput{
		Title: ptr("Example"),
		WatchLinks: &[]catalog.WatchLinkInput{
			{URL: "https://www.viki.com/tv/123", Official: true},
			{URL: "not a url"},
			{Platform: "GMMTV", URL: "https://youtu.be/x"},
		},
	})
	require.NoError(t, err)

	got, err := svc.GetSeries(ctx, id)
	require.NoError(t, err)
	require.Len(t, got.WatchLinks, 3)
	platforms := map[string]string{}
	for _, l := range got.WatchLinks {
		platforms[l.URL] = l.Platform
	}
	assert.Equal(t, "viki", platforms["https://www.viki.com/tv/123"])
	assert.Equal(t, "other", platforms["not a url"])
	assert.Equal(t, "GMMTV", platforms["https://youtu.be/x"])
}

func TestSetRelationsDeduplicateResolvedNames(t *testing.T) {
	svc, store, _, _ := newService(t)
	ctx := context.Background()
	id := store.SeedSeries("Example")

	_, err := svc.UpdateSeries(ctx, id, &catalog.SeriesInput{
		Title:     ptr("Example"),
		Tags:      &[]string{"Office", " Office "},
		Directors: &[]catalog.DirectorInput{{Name: "Aof"}, {Name: "Aof"}},
		Dubbings:  &[]catalog.DubbingInput{{Language: "Spanish"}, {Language: "Spanish", Kind: "sub"}, {Language: "Spanish", Kind: "DUB"}},
	})
	require.NoError(t, err)

	got, err := svc.GetSeries(ctx, id)
	require.NoError(t, err)
	assert.Len(t, got.Tags, 1)
	assert.Len(t, got.Directors, 1)
	assert.Len(t, got.Dubbings, 2)
}

func TestDuplicateSeasonNumberIsConflict(t *testing.T) {
	svc, store, _, _ := newService(t)
	ctx := context.Background()
	id := store.SeedSeries("Example")

	_, err := svc.UpdateSeries(ctx, id, &catalog.SeriesInput{
		Title:   ptr("Renamed"),
		Seasons: &[]catalog.SeasonInput{{Number: ptr(1)}, {Number: ptr(1)}},
	})
	var conflict *catalog.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "season", conflict.Kind)

	// The whole update rolled back.
	got, err := svc.GetSeries(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Example", got.Title)
	assert.Empty(t, got.Seasons)
}

func TestEmbedsKeepPayloadOrder(t *testing.T) {
	svc, store, _, _ := newService(t)
	ctx := context.Background()
	id := store.SeedSeries("Example")

	_, err := svc.UpdateSeries(ctx, id, &catalog.SeriesInput{
		Title: ptr("Example"),
		Embeds: &[]catalog.EmbedInput{
			{URL: "https://youtu.be/trailer", Title: ptr("Trailer")},
			{URL: ""},
			{URL: "https://youtu.be/ep1", Kind: "episode"},
		},
	})
	require.NoError(t, err)

	got, err := svc.GetSeries(ctx, id)
	require.NoError(t, err)
	require.Len(t, got.Embeds, 2)
	assert.Equal(t, 0, got.Embeds[0].SortOrder)
	assert.Equal(t, "video", got.Embeds[0].Kind)
	assert.Equal(t, 1, got.Embeds[1].SortOrder)
	assert.Equal(t, "episode", got.Embeds[1].Kind)
}

// ──────────────────── Related series ────────────────────

func TestRelatedSeriesAreMirrored(t *testing.T) {
	svc, store, _, _ := newService(t)
	ctx := context.Background()
	a := store.SeedSeries("A")
	b := store.SeedSeries("B")
	c := store.SeedSeries("C")

	_, err := svc.UpdateSeries(ctx, b, &catalog.SeriesInput{Title: ptr("B"), RelatedSeriesIDs: &[]int64{c}})
	require.NoError(t, err)
	_, err = svc.UpdateSeries(ctx, a, &catalog.SeriesInput{Title: ptr("A"), RelatedSeriesIDs: &[]int64{b, c, a, b}})
	require.NoError(t, err)

	gotB, err := svc.GetSeries(ctx, b)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{a, c}, relatedIDs(gotB))
	gotC, err := svc.GetSeries(ctx, c)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{a, b}, relatedIDs(gotC))

	_, err = svc.UpdateSeries(ctx, a, &catalog.SeriesInput{Title: ptr("A"), RelatedSeriesIDs: &[]int64{c}})
	require.NoError(t, err)

	assert.ElementsMatch(t, [][2]int64{{b, c}, {c, b}, {a, c}, {c, a}}, store.Edges())
}

func TestRelatedSeriesRejectsUnknownIDs(t *testing.T) {
	svc, store, _, _ := newService(t)
	ctx := context.Background()
	a := store.SeedSeries("A")
	b := store.SeedSeries("B")

	_, err := svc.UpdateSeries(ctx, a, &catalog.SeriesInput{Title: ptr("A"), RelatedSeriesIDs: &[]int64{b}})
	require.NoError(t, err)

	_, err = svc.UpdateSeries(ctx, a, &catalog.SeriesInput{Title: ptr("A"), RelatedSeriesIDs: &[]int64{999}})
	var verr *catalog.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, store.Edges(), 2)
}

// ──────────────────── Orchestrator ────────────────────

func TestUpdateRequiresTitle(t *testing.T) {
	svc, store, _, _ := newService(t)
	id := store.SeedSeries("Example")

	for _, in := range []*catalog.SeriesInput{
		{},
		{Title: ptr("   ")},
		{Title: ptr("ok"), Year: ptr(1800)},
		{Title: ptr("ok"), Rating: ptr(11.0)},
		{Title: ptr("ok"), EpisodeCount: ptr(-1)},
	} {
		_, err := svc.UpdateSeries(context.Background(), id, in)
		var verr *catalog.ValidationError
		assert.ErrorAs(t, err, &verr)
	}
}

func TestUpdateUnknownSeriesIsNotFound(t *testing.T) {
	svc, _, host, _ := newService(t)

	_, err := svc.UpdateSeries(context.Background(), 404, &catalog.SeriesInput{
		Title: ptr("x"), ImageURL: ptr("https://cdn.example/a.jpg"),
	})
	assert.ErrorIs(t, err, catalog.ErrNotFound)
	assert.Empty(t, host.calls)
}

func TestImageIngestionFailureKeepsOriginalURL(t *testing.T) {
	svc, store, host, _ := newService(t)
	ctx := context.Background()
	id := store.SeedSeries("Example")
	broken := "https://cdn.example/missing.jpg"
	host.failing[broken] = true

	updated, err := svc.UpdateSeries(ctx, id, &catalog.SeriesInput{Title: ptr("Example"), ImageURL: &broken})
	require.NoError(t, err)
	require.NotNil(t, updated.ImageURL)
	assert.Equal(t, broken, *updated.ImageURL)
}

func TestImageIsRehosted(t *testing.T) {
	svc, _, _, _ := newService(t)

	created, err := svc.CreateSeries(context.Background(), &catalog.SeriesInput{
		Title:    ptr("Example"),
		ImageURL: ptr("https://cdn.example/poster.jpg"),
	})
	require.NoError(t, err)
	require.NotNil(t, created.ImageURL)
	assert.Equal(t, hostedPrefix+"series/hosted.jpg", *created.ImageURL)
}

func TestUpdateKeepsOmittedScalars(t *testing.T) {
	svc, _, _, _ := newService(t)
	ctx := context.Background()

	created, err := svc.CreateSeries(ctx, &catalog.SeriesInput{
		Title:    ptr("Example"),
		Year:     ptr(2020),
		Synopsis: ptr("Two rivals."),
		Country:  ptr("Thailand"),
	})
	require.NoError(t, err)
	require.NotNil(t, created.Country)
	assert.Equal(t, "Thailand", created.Country.Name)

	updated, err := svc.UpdateSeries(ctx, created.ID, &catalog.SeriesInput{Title: ptr("Example 2"), Synopsis: ptr("")})
	require.NoError(t, err)
	assert.Equal(t, "Example 2", updated.Title)
	assert.Equal(t, 2020, *updated.Year)
	assert.Nil(t, updated.Synopsis)
	assert.Equal(t, created.CountryID, updated.CountryID)
}

func TestCreateReturnsLoadedRelations(t *testing.T) {
	svc, _, _, events := newService(t)

	created, err := svc.CreateSeries(context.Background(), &catalog.SeriesInput{
		Title:            ptr("Example"),
		OriginalLanguage: ptr("Thai"),
		Actors:           &[]catalog.ActorInput{{Name: "Jun", Character: ptr("Lead"), IsMain: true, PairingGroup: ptr(1)}},
		Genres:           &[]string{"Romance"},
	})
	require.NoError(t, err)
	require.Len(t, created.Actors, 1)
	assert.Equal(t, "Jun", created.Actors[0].Name)
	assert.Equal(t, 1, *created.Actors[0].PairingGroup)
	assert.Equal(t, []string{"Romance"}, refNames(created.Genres))
	require.NotNil(t, created.OriginalLanguage)
	assert.Equal(t, "Thai", created.OriginalLanguage.Name)
	assert.Equal(t, []string{catalog.EventSeriesCreated}, events.events)
}

func TestFailedRelationRollsBackUpdate(t *testing.T) {
	svc, store, _, events := newService(t)
	ctx := context.Background()
	id := store.SeedSeries("Example")

	_, err := svc.UpdateSeries(ctx, id, &catalog.SeriesInput{Title: ptr("Example"), Actors: &[]catalog.ActorInput{{Name: "Jun"}}})
	require.NoError(t, err)

	boom := errors.New("connection reset")
	store.FailOn("AddTag", boom)
	_, err = svc.UpdateSeries(ctx, id, &catalog.SeriesInput{
		Title:  ptr("Renamed"),
		Actors: &[]catalog.ActorInput{{Name: "Tay"}},
		Tags:   &[]string{"Office"},
	})
	require.ErrorIs(t, err, boom)

	got, err := svc.GetSeries(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Example", got.Title)
	assert.Equal(t, []string{"Jun"}, actorNames(got))
	assert.Equal(t, 0, store.CountNamed(models.KindActor, "Tay"))
	assert.Equal(t, []string{catalog.EventSeriesUpdated}, events.events)
}

func TestDeleteSeriesCascades(t *testing.T) {
	svc, store, _, _ := newService(t)
	ctx := context.Background()
	a := store.SeedSeries("A")
	b := store.SeedSeries("B")

	_, err := svc.UpdateSeries(ctx, a, &catalog.SeriesInput{
		Title: ptr("A"), Tags: &[]string{"Office"}, RelatedSeriesIDs: &[]int64{b},
	})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteSeries(ctx, a))
	assert.Empty(t, store.Edges())
	assert.Equal(t, 1, store.CountNamed(models.KindTag, "Office"))

	_, err = svc.GetSeries(ctx, a)
	assert.ErrorIs(t, err, catalog.ErrNotFound)
	assert.ErrorIs(t, svc.DeleteSeries(ctx, a), catalog.ErrNotFound)
}

// Series 42 has no relations; series 7 has no related series.
func TestEndToEndUpdateScenario(t *testing.T) {
	svc, store, _, _ := newService(t)
	ctx := context.Background()
	seven := store.SeedSeries("Seven")
	target := store.SeedSeries("Before")

	updated, err := svc.UpdateSeries(ctx, target, &catalog.SeriesInput{
		Title:            ptr("Example"),
		Actors:           &[]catalog.ActorInput{{Name: "Jun", Character: ptr("Lead"), IsMain: true}},
		Tags:             &[]string{"Enemy to Lovers"},
		RelatedSeriesIDs: &[]int64{seven},
	})
	require.NoError(t, err)
	assert.Equal(t, "Example", updated.Title)
	assert.Empty(t, updated.Actors)

	got, err := svc.GetSeries(ctx, target)
	require.NoError(t, err)
	require.Len(t, got.Actors, 1)
	assert.Equal(t, "Jun", got.Actors[0].Name)
	assert.Equal(t, "Lead", *got.Actors[0].Character)
	assert.True(t, got.Actors[0].IsMain)
	assert.Equal(t, []string{"Enemy to Lovers"}, refNames(got.Tags))
	assert.Equal(t, []int64{seven}, relatedIDs(got))

	other, err := svc.GetSeries(ctx, seven)
	require.NoError(t, err)
	assert.Equal(t, []int64{target}, relatedIDs(other))
}

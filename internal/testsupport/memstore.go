// Package testsupport provides an in-memory catalog.Store for tests.
package testsupport

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/juanjparedez/mundobl/internal/catalog"
	"github.com/juanjparedez/mundobl/internal/models"
)

type refRow struct {
	person models.Person
	code   *string
}

type pair struct {
	a, b int64
}

type state struct {
	nextID    int64
	refs      map[models.RefKind]map[int64]refRow
	series    map[int64]models.Series
	actors    []models.SeriesActor
	directors []pair
	tags      []pair
	genres    []pair
	dubbings  []models.SeriesDubbing
	links     []models.WatchLink
	seasons   []models.Season
	embeds    []models.Embed
	related   []pair
}

func (st *state) clone() *state {
	out := &state{
		nextID:    st.nextID,
		refs:      make(map[models.RefKind]map[int64]refRow, len(st.refs)),
		series:    make(map[int64]models.Series, len(st.series)),
		actors:    append([]models.SeriesActor(nil), st.actors...),
		directors: append([]pair(nil), st.directors...),
		tags:      append([]pair(nil), st.tags...),
		genres:    append([]pair(nil), st.genres...),
		dubbings:  append([]models.SeriesDubbing(nil), st.dubbings...),
		links:     append([]models.WatchLink(nil), st.links...),
		seasons:   append([]models.Season(nil), st.seasons...),
		embeds:    append([]models.Embed(nil), st.embeds...),
		related:   append([]pair(nil), st.related...),
	}
	for kind, rows := range st.refs {
		m := make(map[int64]refRow, len(rows))
		for id, row := range rows {
			m[id] = row
		}
		out.refs[kind] = m
	}
	for id, s := range st.series {
		out.series[id] = s
	}
	return out
}

// MemStore keeps the whole catalog in memory. WithTx snapshots the state
// and restores it when fn fails, so rollback behaves like a database.
type MemStore struct {
	mu       sync.Mutex
	st       *state
	failures map[string]error
}

func NewMemStore() *MemStore {
	st := &state{
		refs:   make(map[models.RefKind]map[int64]refRow),
		series: make(map[int64]models.Series),
	}
	for _, kind := range models.RefKinds() {
		st.refs[kind] = make(map[int64]refRow)
	}
	return &MemStore{st: st, failures: make(map[string]error)}
}

// FailOn makes every later call of op (a repository method name such as
// "AddActor") return err. A nil err clears the failure.
func (m *MemStore) FailOn(op string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.failures, op)
		return
	}
	m.failures[op] = err
}

func (m *MemStore) fail(op string) error {
	return m.failures[op]
}

func (m *MemStore) Repos() catalog.Repos {
	return catalog.Repos{
		References: memRefs{m},
		Series:     memSeries{m},
		Relations:  memRelations{m},
		People:     memPeople{m},
		Images:     memImages{m},
	}
}

func (m *MemStore) WithTx(ctx context.Context, fn func(catalog.Repos) error) error {
	m.mu.Lock()
	snapshot := m.st.clone()
	m.mu.Unlock()

	if err := fn(m.Repos()); err != nil {
		m.mu.Lock()
		m.st = snapshot
		m.mu.Unlock()
		return err
	}
	return nil
}

func (m *MemStore) id() int64 {
	m.st.nextID++
	return m.st.nextID
}

// ──────────────────── Seeding & inspection ────────────────────

// SeedSeries inserts a bare series and returns its id.
func (m *MemStore) SeedSeries(title string) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	s := models.Series{ID: m.id(), Title: title, CreatedAt: now, UpdatedAt: now}
	m.st.series[s.ID] = s
	return s.ID
}

// SeedReference inserts a lookup row and returns its id.
func (m *MemStore) SeedReference(kind models.RefKind, name string) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	id := m.id()
	m.st.refs[kind][id] = refRow{person: models.Person{ID: id, Name: name, CreatedAt: now, UpdatedAt: now}}
	return id
}

// CountNamed returns the number of kind rows named name.
func (m *MemStore) CountNamed(kind models.RefKind, name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, row := range m.st.refs[kind] {
		if row.person.Name == name {
			n++
		}
	}
	return n
}

// Edges returns every stored related-series edge as [main, related].
func (m *MemStore) Edges() [][2]int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][2]int64, 0, len(m.st.related))
	for _, p := range m.st.related {
		out = append(out, [2]int64{p.a, p.b})
	}
	return out
}

// ──────────────────── References ────────────────────

type memRefs struct{ m *MemStore }

func (r memRefs) FindByName(ctx context.Context, kind models.RefKind, name string) (int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.fail("FindByName"); err != nil {
		return 0, err
	}
	for id, row := range r.m.st.refs[kind] {
		if row.person.Name == name {
			return id, nil
		}
	}
	return 0, catalog.ErrNotFound
}

func (r memRefs) Insert(ctx context.Context, kind models.RefKind, name string, code *string) (int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.fail("Insert"); err != nil {
		return 0, err
	}
	for _, row := range r.m.st.refs[kind] {
		if row.person.Name == name {
			return 0, catalog.ErrDuplicate
		}
	}
	now := time.Now()
	id := r.m.id()
	r.m.st.refs[kind][id] = refRow{person: models.Person{ID: id, Name: name, CreatedAt: now, UpdatedAt: now}, code: code}
	return id, nil
}

func (r memRefs) List(ctx context.Context, kind models.RefKind) ([]*models.Reference, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	out := make([]*models.Reference, 0, len(r.m.st.refs[kind]))
	for id, row := range r.m.st.refs[kind] {
		out = append(out, &models.Reference{
			ID:          id,
			Name:        row.person.Name,
			Code:        row.code,
			SeriesCount: r.m.seriesCount(kind, id),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// seriesCount counts distinct series linked to a reference row.
func (m *MemStore) seriesCount(kind models.RefKind, id int64) int {
	seen := map[int64]bool{}
	match := func(ref *int64) bool { return ref != nil && *ref == id }
	switch kind {
	case models.KindCountry, models.KindProductionCompany, models.KindLanguage:
		for sid, s := range m.st.series {
			if (kind == models.KindCountry && match(s.CountryID)) ||
				(kind == models.KindProductionCompany && match(s.ProductionCompanyID)) ||
				(kind == models.KindLanguage && match(s.OriginalLanguageID)) {
				seen[sid] = true
			}
		}
		if kind == models.KindLanguage {
			for _, d := range m.st.dubbings {
				if d.LanguageID == id {
					seen[d.SeriesID] = true
				}
			}
		}
	case models.KindActor:
		for _, a := range m.st.actors {
			if a.ActorID == id {
				seen[a.SeriesID] = true
			}
		}
	default:
		for _, p := range m.pairs(kind) {
			if p.b == id {
				seen[p.a] = true
			}
		}
	}
	return len(seen)
}

func (m *MemStore) pairs(kind models.RefKind) []pair {
	switch kind {
	case models.KindDirector:
		return m.st.directors
	case models.KindTag:
		return m.st.tags
	case models.KindGenre:
		return m.st.genres
	}
	return nil
}

func (m *MemStore) reference(kind models.RefKind, id *int64) *models.Reference {
	if id == nil {
		return nil
	}
	row, ok := m.st.refs[kind][*id]
	if !ok {
		return nil
	}
	return &models.Reference{ID: *id, Name: row.person.Name, Code: row.code}
}

func (m *MemStore) referenceList(kind models.RefKind, rows []pair, seriesID int64) []models.Reference {
	var out []models.Reference
	for _, p := range rows {
		if p.a == seriesID {
			out = append(out, *m.reference(kind, &p.b))
		}
	}
	return out
}

// ──────────────────── Series ────────────────────

type memSeries struct{ m *MemStore }

func (r memSeries) Create(ctx context.Context, s *models.Series) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.fail("CreateSeries"); err != nil {
		return err
	}
	if err := r.m.checkScalarRefs(s); err != nil {
		return err
	}
	now := time.Now()
	s.ID = r.m.id()
	s.CreatedAt, s.UpdatedAt = now, now
	r.m.st.series[s.ID] = scalarsOnly(*s)
	return nil
}

func (r memSeries) Update(ctx context.Context, s *models.Series) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.fail("UpdateSeries"); err != nil {
		return err
	}
	if _, ok := r.m.st.series[s.ID]; !ok {
		return catalog.ErrNotFound
	}
	if err := r.m.checkScalarRefs(s); err != nil {
		return err
	}
	s.UpdatedAt = time.Now()
	r.m.st.series[s.ID] = scalarsOnly(*s)
	return nil
}

func (m *MemStore) checkScalarRefs(s *models.Series) error {
	for kind, id := range map[models.RefKind]*int64{
		models.KindCountry:           s.CountryID,
		models.KindProductionCompany: s.ProductionCompanyID,
		models.KindLanguage:          s.OriginalLanguageID,
	} {
		if id == nil {
			continue
		}
		if _, ok := m.st.refs[kind][*id]; !ok {
			return catalog.ErrInvalidReference
		}
	}
	return nil
}

func scalarsOnly(s models.Series) models.Series {
	s.Country, s.ProductionCompany, s.OriginalLanguage = nil, nil, nil
	s.Actors, s.Directors, s.Dubbings, s.Seasons = nil, nil, nil, nil
	s.Tags, s.Genres, s.WatchLinks, s.Embeds, s.RelatedSeries = nil, nil, nil, nil, nil
	return s
}

func (r memSeries) GetByID(ctx context.Context, id int64) (*models.Series, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	s, ok := r.m.st.series[id]
	if !ok {
		return nil, catalog.ErrNotFound
	}
	return &s, nil
}

func (r memSeries) List(ctx context.Context) ([]*models.Series, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	out := make([]*models.Series, 0, len(r.m.st.series))
	for _, s := range r.m.st.series {
		s := s
		s.Country = r.m.reference(models.KindCountry, s.CountryID)
		s.Tags = r.m.referenceList(models.KindTag, r.m.st.tags, s.ID)
		s.Genres = r.m.referenceList(models.KindGenre, r.m.st.genres, s.ID)
		out = append(out, &s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out, nil
}

// Delete removes the series and cascades to every row that references it.
func (r memSeries) Delete(ctx context.Context, id int64) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	st := r.m.st
	if _, ok := st.series[id]; !ok {
		return catalog.ErrNotFound
	}
	delete(st.series, id)
	st.actors = filter(st.actors, func(a models.SeriesActor) bool { return a.SeriesID != id })
	st.directors = filter(st.directors, func(p pair) bool { return p.a != id })
	st.tags = filter(st.tags, func(p pair) bool { return p.a != id })
	st.genres = filter(st.genres, func(p pair) bool { return p.a != id })
	st.dubbings = filter(st.dubbings, func(d models.SeriesDubbing) bool { return d.SeriesID != id })
	st.links = filter(st.links, func(l models.WatchLink) bool { return l.SeriesID != id })
	st.seasons = filter(st.seasons, func(s models.Season) bool { return s.SeriesID != id })
	st.embeds = filter(st.embeds, func(e models.Embed) bool { return e.SeriesID != id })
	st.related = filter(st.related, func(p pair) bool { return p.a != id && p.b != id })
	return nil
}

func (r memSeries) MissingIDs(ctx context.Context, ids []int64) ([]int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var missing []int64
	for _, id := range ids {
		if _, ok := r.m.st.series[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing, nil
}

func filter[T any](rows []T, keep func(T) bool) []T {
	out := rows[:0:0]
	for _, row := range rows {
		if keep(row) {
			out = append(out, row)
		}
	}
	return out
}

// ──────────────────── Relations ────────────────────

type memRelations struct{ m *MemStore }

func (r memRelations) Clear(ctx context.Context, seriesID int64, rel models.Relation) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.fail("Clear"); err != nil {
		return err
	}
	st := r.m.st
	notSeries := func(p pair) bool { return p.a != seriesID }
	switch rel {
	case models.RelActors:
		st.actors = filter(st.actors, func(a models.SeriesActor) bool { return a.SeriesID != seriesID })
	case models.RelDirectors:
		st.directors = filter(st.directors, notSeries)
	case models.RelTags:
		st.tags = filter(st.tags, notSeries)
	case models.RelGenres:
		st.genres = filter(st.genres, notSeries)
	case models.RelDubbings:
		st.dubbings = filter(st.dubbings, func(d models.SeriesDubbing) bool { return d.SeriesID != seriesID })
	case models.RelWatchLinks:
		st.links = filter(st.links, func(l models.WatchLink) bool { return l.SeriesID != seriesID })
	case models.RelSeasons:
		st.seasons = filter(st.seasons, func(s models.Season) bool { return s.SeriesID != seriesID })
	case models.RelEmbeds:
		st.embeds = filter(st.embeds, func(e models.Embed) bool { return e.SeriesID != seriesID })
	case models.RelRelated:
		st.related = filter(st.related, func(p pair) bool { return p.a != seriesID && p.b != seriesID })
	}
	return nil
}

func (r memRelations) AddActor(ctx context.Context, row *models.SeriesActor) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.fail("AddActor"); err != nil {
		return err
	}
	row.ID = r.m.id()
	r.m.st.actors = append(r.m.st.actors, *row)
	return nil
}

func (r memRelations) addPair(op string, table func(*state) *[]pair, p pair) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.fail(op); err != nil {
		return err
	}
	rows := table(r.m.st)
	for _, existing := range *rows {
		if existing == p {
			return catalog.ErrDuplicate
		}
	}
	*rows = append(*rows, p)
	return nil
}

func (r memRelations) AddDirector(ctx context.Context, seriesID, directorID int64) error {
	return r.addPair("AddDirector", func(st *state) *[]pair { return &st.directors }, pair{seriesID, directorID})
}

func (r memRelations) AddTag(ctx context.Context, seriesID, tagID int64) error {
	return r.addPair("AddTag", func(st *state) *[]pair { return &st.tags }, pair{seriesID, tagID})
}

func (r memRelations) AddGenre(ctx context.Context, seriesID, genreID int64) error {
	return r.addPair("AddGenre", func(st *state) *[]pair { return &st.genres }, pair{seriesID, genreID})
}

func (r memRelations) AddDubbing(ctx context.Context, row *models.SeriesDubbing) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.fail("AddDubbing"); err != nil {
		return err
	}
	for _, d := range r.m.st.dubbings {
		if d.SeriesID == row.SeriesID && d.LanguageID == row.LanguageID && d.Kind == row.Kind {
			return catalog.ErrDuplicate
		}
	}
	r.m.st.dubbings = append(r.m.st.dubbings, *row)
	return nil
}

func (r memRelations) AddWatchLink(ctx context.Context, link *models.WatchLink) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.fail("AddWatchLink"); err != nil {
		return err
	}
	link.ID = r.m.id()
	r.m.st.links = append(r.m.st.links, *link)
	return nil
}

func (r memRelations) AddSeason(ctx context.Context, season *models.Season) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.fail("AddSeason"); err != nil {
		return err
	}
	for _, s := range r.m.st.seasons {
		if s.SeriesID == season.SeriesID && s.Number == season.Number {
			return catalog.ErrDuplicate
		}
	}
	season.ID = r.m.id()
	r.m.st.seasons = append(r.m.st.seasons, *season)
	return nil
}

func (r memRelations) AddEmbed(ctx context.Context, embed *models.Embed) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.fail("AddEmbed"); err != nil {
		return err
	}
	embed.ID = r.m.id()
	r.m.st.embeds = append(r.m.st.embeds, *embed)
	return nil
}

func (r memRelations) ClearRelated(ctx context.Context, seriesID int64) error {
	return r.Clear(ctx, seriesID, models.RelRelated)
}

func (r memRelations) AddRelated(ctx context.Context, mainID, relatedID int64) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.fail("AddRelated"); err != nil {
		return err
	}
	p := pair{mainID, relatedID}
	for _, existing := range r.m.st.related {
		if existing == p {
			return nil
		}
	}
	r.m.st.related = append(r.m.st.related, p)
	return nil
}

func (r memRelations) Load(ctx context.Context, s *models.Series) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	m, st := r.m, r.m.st
	s.Country = m.reference(models.KindCountry, s.CountryID)
	s.ProductionCompany = m.reference(models.KindProductionCompany, s.ProductionCompanyID)
	s.OriginalLanguage = m.reference(models.KindLanguage, s.OriginalLanguageID)

	s.Actors = nil
	for _, a := range st.actors {
		if a.SeriesID == s.ID {
			row := st.refs[models.KindActor][a.ActorID]
			a.Name, a.ImageURL = row.person.Name, row.person.ImageURL
			s.Actors = append(s.Actors, a)
		}
	}
	s.Directors = m.referenceList(models.KindDirector, st.directors, s.ID)
	s.Tags = m.referenceList(models.KindTag, st.tags, s.ID)
	s.Genres = m.referenceList(models.KindGenre, st.genres, s.ID)

	s.Dubbings = nil
	for _, d := range st.dubbings {
		if d.SeriesID == s.ID {
			d.Language = st.refs[models.KindLanguage][d.LanguageID].person.Name
			s.Dubbings = append(s.Dubbings, d)
		}
	}
	s.WatchLinks = filter(st.links, func(l models.WatchLink) bool { return l.SeriesID == s.ID })
	s.Seasons = filter(st.seasons, func(x models.Season) bool { return x.SeriesID == s.ID })
	sort.Slice(s.Seasons, func(i, j int) bool { return s.Seasons[i].Number < s.Seasons[j].Number })
	s.Embeds = filter(st.embeds, func(e models.Embed) bool { return e.SeriesID == s.ID })

	s.RelatedSeries = nil
	for _, p := range st.related {
		if p.a != s.ID {
			continue
		}
		other := st.series[p.b]
		s.RelatedSeries = append(s.RelatedSeries, models.RelatedSeries{
			SeriesID: other.ID, Title: other.Title, Year: other.Year, ImageURL: other.ImageURL,
		})
	}
	return nil
}

// ──────────────────── People ────────────────────

type memPeople struct{ m *MemStore }

func (r memPeople) GetByID(ctx context.Context, kind models.RefKind, id int64) (*models.Person, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	row, ok := r.m.st.refs[kind][id]
	if !ok {
		return nil, catalog.ErrNotFound
	}
	p := row.person
	p.SeriesCount = r.m.seriesCount(kind, id)
	return &p, nil
}

func (r memPeople) List(ctx context.Context, kind models.RefKind, search string) ([]*models.Person, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []*models.Person
	needle := strings.ToLower(search)
	for id, row := range r.m.st.refs[kind] {
		if needle != "" && !strings.Contains(strings.ToLower(row.person.Name), needle) {
			continue
		}
		p := row.person
		p.SeriesCount = r.m.seriesCount(kind, id)
		out = append(out, &p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r memPeople) Update(ctx context.Context, kind models.RefKind, p *models.Person) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	row, ok := r.m.st.refs[kind][p.ID]
	if !ok {
		return catalog.ErrNotFound
	}
	for id, other := range r.m.st.refs[kind] {
		if id != p.ID && other.person.Name == p.Name {
			return catalog.ErrDuplicate
		}
	}
	p.UpdatedAt = time.Now()
	row.person = *p
	row.person.SeriesCount = 0
	r.m.st.refs[kind][p.ID] = row
	return nil
}

func (r memPeople) Delete(ctx context.Context, kind models.RefKind, id int64) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.st.refs[kind][id]; !ok {
		return catalog.ErrNotFound
	}
	if r.m.seriesCount(kind, id) > 0 {
		return catalog.ErrInvalidReference
	}
	delete(r.m.st.refs[kind], id)
	return nil
}

func (r memPeople) CountReferences(ctx context.Context, kind models.RefKind, id int64) (int, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	n := 0
	if kind == models.KindActor {
		for _, a := range r.m.st.actors {
			if a.ActorID == id {
				n++
			}
		}
		return n, nil
	}
	for _, p := range r.m.pairs(kind) {
		if p.b == id {
			n++
		}
	}
	return n, nil
}

func (r memPeople) Credits(ctx context.Context, kind models.RefKind, id int64) ([]models.Credit, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []models.Credit
	credit := func(seriesID int64) models.Credit {
		s := r.m.st.series[seriesID]
		return models.Credit{SeriesID: s.ID, Title: s.Title, Year: s.Year, ImageURL: s.ImageURL}
	}
	if kind == models.KindActor {
		for _, a := range r.m.st.actors {
			if a.ActorID == id {
				c := credit(a.SeriesID)
				c.Character, c.IsMain = a.Character, a.IsMain
				out = append(out, c)
			}
		}
		return out, nil
	}
	for _, p := range r.m.pairs(kind) {
		if p.b == id {
			out = append(out, credit(p.a))
		}
	}
	return out, nil
}

func (r memPeople) Reassign(ctx context.Context, kind models.RefKind, sourceID, targetID int64) (int, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.fail("Reassign"); err != nil {
		return 0, err
	}
	st := r.m.st
	moved := 0
	if kind == models.KindActor {
		var kept []models.SeriesActor
		for _, a := range st.actors {
			if a.ActorID == sourceID {
				if hasActorRow(st.actors, a.SeriesID, targetID, a.Character) {
					continue
				}
				a.ActorID = targetID
				moved++
			}
			kept = append(kept, a)
		}
		st.actors = kept
		return moved, nil
	}

	var kept []pair
	for _, p := range st.directors {
		if p.b == sourceID {
			if containsPair(st.directors, pair{p.a, targetID}) {
				continue
			}
			p.b = targetID
			moved++
		}
		kept = append(kept, p)
	}
	st.directors = kept
	return moved, nil
}

func hasActorRow(rows []models.SeriesActor, seriesID, actorID int64, character *string) bool {
	for _, a := range rows {
		if a.SeriesID == seriesID && a.ActorID == actorID && sameString(a.Character, character) {
			return true
		}
	}
	return false
}

func sameString(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func containsPair(rows []pair, p pair) bool {
	for _, existing := range rows {
		if existing == p {
			return true
		}
	}
	return false
}

// ──────────────────── Images ────────────────────

type memImages struct{ m *MemStore }

func (r memImages) ListImages(ctx context.Context) ([]models.ImageRef, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []models.ImageRef
	for id, s := range r.m.st.series {
		if s.ImageURL != nil && *s.ImageURL != "" {
			out = append(out, models.ImageRef{Owner: models.ImageOwnerSeries, ID: id, URL: *s.ImageURL})
		}
	}
	for _, kind := range []models.RefKind{models.KindActor, models.KindDirector} {
		for id, row := range r.m.st.refs[kind] {
			if row.person.ImageURL != nil && *row.person.ImageURL != "" {
				out = append(out, models.ImageRef{Owner: models.ImageOwner(kind), ID: id, URL: *row.person.ImageURL})
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Owner != out[j].Owner {
			return out[i].Owner < out[j].Owner
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r memImages) SetImage(ctx context.Context, ref models.ImageRef, url string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if ref.Owner == models.ImageOwnerSeries {
		s, ok := r.m.st.series[ref.ID]
		if !ok {
			return catalog.ErrNotFound
		}
		s.ImageURL = &url
		r.m.st.series[ref.ID] = s
		return nil
	}
	kind := models.RefKind(ref.Owner)
	row, ok := r.m.st.refs[kind][ref.ID]
	if !ok {
		return catalog.ErrNotFound
	}
	row.person.ImageURL = &url
	r.m.st.refs[kind][ref.ID] = row
	return nil
}

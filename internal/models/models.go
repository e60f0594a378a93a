package models

import (
	"time"
)

// ──────────────────── Enums ────────────────────

type Role string

const (
	RoleAdmin     Role = "ADMIN"
	RoleModerator Role = "MODERATOR"
	RoleVisitor   Role = "VISITOR"
)

// RefKind identifies a reference table deduplicated by its unique name.
type RefKind string

const (
	KindCountry           RefKind = "country"
	KindActor             RefKind = "actor"
	KindDirector          RefKind = "director"
	KindProductionCompany RefKind = "productionCompany"
	KindLanguage          RefKind = "language"
	KindTag               RefKind = "tag"
	KindGenre             RefKind = "genre"
)

var refKinds = []RefKind{
	KindCountry, KindActor, KindDirector, KindProductionCompany,
	KindLanguage, KindTag, KindGenre,
}

func RefKinds() []RefKind {
	out := make([]RefKind, len(refKinds))
	copy(out, refKinds)
	return out
}

func (k RefKind) Valid() bool {
	for _, v := range refKinds {
		if v == k {
			return true
		}
	}
	return false
}

// IsPerson reports whether the kind has a profile (actors and directors).
func (k RefKind) IsPerson() bool {
	return k == KindActor || k == KindDirector
}

// Relation names a to-many relation owned by a Series.
type Relation string

const (
	RelActors     Relation = "actors"
	RelDirectors  Relation = "directors"
	RelDubbings   Relation = "dubbings"
	RelSeasons    Relation = "seasons"
	RelTags       Relation = "tags"
	RelGenres     Relation = "genres"
	RelWatchLinks Relation = "watchLinks"
	RelEmbeds     Relation = "embeds"
	RelRelated    Relation = "relatedSeries"
)

// ──────────────────── Reference data ────────────────────

type Reference struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Code        *string `json:"code,omitempty"`
	SeriesCount int     `json:"seriesCount,omitempty"`
}

// Person is an actor or director profile.
type Person struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	Biography   *string    `json:"biography,omitempty"`
	BirthDate   *time.Time `json:"birthDate,omitempty"`
	Nationality *string    `json:"nationality,omitempty"`
	ImageURL    *string    `json:"imageUrl,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	// Aggregated
	SeriesCount int `json:"seriesCount"`
}

// Credit is one series a person is linked to.
type Credit struct {
	SeriesID  int64   `json:"seriesId"`
	Title     string  `json:"title"`
	Year      *int    `json:"year,omitempty"`
	ImageURL  *string `json:"imageUrl,omitempty"`
	Character *string `json:"character,omitempty"`
	IsMain    bool    `json:"isMain"`
}

// ──────────────────── Series ────────────────────

type Series struct {
	ID                  int64     `json:"id"`
	Title               string    `json:"title"`
	OriginalTitle       *string   `json:"originalTitle,omitempty"`
	Year                *int      `json:"year,omitempty"`
	Type                *string   `json:"type,omitempty"`
	Rating              *float64  `json:"rating,omitempty"`
	Synopsis            *string   `json:"synopsis,omitempty"`
	ImageURL            *string   `json:"imageUrl,omitempty"`
	EpisodeCount        *int      `json:"episodeCount,omitempty"`
	Duration            *int      `json:"duration,omitempty"`
	CountryID           *int64    `json:"countryId,omitempty"`
	ProductionCompanyID *int64    `json:"productionCompanyId,omitempty"`
	OriginalLanguageID  *int64    `json:"originalLanguageId,omitempty"`
	CreatedAt           time.Time `json:"createdAt"`
	UpdatedAt           time.Time `json:"updatedAt"`
	// Joined
	Country           *Reference      `json:"country,omitempty"`
	ProductionCompany *Reference      `json:"productionCompany,omitempty"`
	OriginalLanguage  *Reference      `json:"originalLanguage,omitempty"`
	Actors            []SeriesActor   `json:"actors,omitempty"`
	Directors         []Reference     `json:"directors,omitempty"`
	Dubbings          []SeriesDubbing `json:"dubbings,omitempty"`
	Seasons           []Season        `json:"seasons,omitempty"`
	Tags              []Reference     `json:"tags,omitempty"`
	Genres            []Reference     `json:"genres,omitempty"`
	WatchLinks        []WatchLink     `json:"watchLinks,omitempty"`
	Embeds            []Embed         `json:"embeds,omitempty"`
	RelatedSeries     []RelatedSeries `json:"relatedSeries,omitempty"`
}

type SeriesActor struct {
	ID           int64   `json:"id"`
	SeriesID     int64   `json:"seriesId"`
	ActorID      int64   `json:"actorId"`
	Character    *string `json:"character,omitempty"`
	IsMain       bool    `json:"isMain"`
	PairingGroup *int    `json:"pairingGroup,omitempty"`
	// Joined
	Name     string  `json:"name,omitempty"`
	ImageURL *string `json:"imageUrl,omitempty"`
}

type SeriesDubbing struct {
	SeriesID   int64  `json:"seriesId"`
	LanguageID int64  `json:"languageId"`
	Kind       string `json:"kind"`
	// Joined
	Language string `json:"language,omitempty"`
}

type WatchLink struct {
	ID       int64  `json:"id"`
	SeriesID int64  `json:"seriesId"`
	Platform string `json:"platform"`
	URL      string `json:"url"`
	Official bool   `json:"official"`
}

type Season struct {
	ID           int64   `json:"id"`
	SeriesID     int64   `json:"seriesId"`
	Number       int     `json:"number"`
	Title        *string `json:"title,omitempty"`
	Year         *int    `json:"year,omitempty"`
	EpisodeCount *int    `json:"episodeCount,omitempty"`
	Synopsis     *string `json:"synopsis,omitempty"`
}

// Embed is a piece of embeddable content (trailer, clip, episode player).
type Embed struct {
	ID        int64   `json:"id"`
	SeriesID  int64   `json:"seriesId"`
	Title     *string `json:"title,omitempty"`
	URL       string  `json:"url"`
	Kind      string  `json:"kind"`
	SortOrder int     `json:"sortOrder"`
}

// RelatedSeries is the far endpoint of a related-series edge.
type RelatedSeries struct {
	SeriesID int64   `json:"seriesId"`
	Title    string  `json:"title"`
	Year     *int    `json:"year,omitempty"`
	ImageURL *string `json:"imageUrl,omitempty"`
}

// ──────────────────── Images ────────────────────

type ImageOwner string

const (
	ImageOwnerSeries   ImageOwner = "series"
	ImageOwnerActor    ImageOwner = "actor"
	ImageOwnerDirector ImageOwner = "director"
)

// ImageRef points at one stored image URL column.
type ImageRef struct {
	Owner ImageOwner `json:"owner"`
	ID    int64      `json:"id"`
	URL   string     `json:"url"`
}

package catalog

import (
	"strings"
	"time"
)

// SeriesInput is the create/update payload. A nil relation slice means the
// relation was not supplied and must be left untouched; an empty slice
// clears it. Nil scalars keep their stored value on update.
type SeriesInput struct {
	Title         *string  `json:"title"`
	OriginalTitle *string  `json:"originalTitle"`
	Year          *int     `json:"year"`
	Type          *string  `json:"type"`
	Rating        *float64 `json:"rating"`
	Synopsis      *string  `json:"synopsis"`
	ImageURL      *string  `json:"imageUrl"`
	EpisodeCount  *int     `json:"episodeCount"`
	Duration      *int     `json:"duration"`

	// Scalar references accept either an id or a display name; the name wins.
	CountryID           *int64  `json:"countryId"`
	Country             *string `json:"country"`
	ProductionCompanyID *int64  `json:"productionCompanyId"`
	ProductionCompany   *string `json:"productionCompany"`
	OriginalLanguageID  *int64  `json:"originalLanguageId"`
	OriginalLanguage    *string `json:"originalLanguage"`

	Actors           *[]ActorInput     `json:"actors"`
	Directors        *[]DirectorInput  `json:"directors"`
	Dubbings         *[]DubbingInput   `json:"dubbings"`
	Seasons          *[]SeasonInput    `json:"seasons"`
	Tags             *[]string         `json:"tags"`
	Genres           *[]string         `json:"genres"`
	WatchLinks       *[]WatchLinkInput `json:"watchLinks"`
	Embeds           *[]EmbedInput     `json:"embeds"`
	RelatedSeriesIDs *[]int64          `json:"relatedSeriesIds"`
}

type ActorInput struct {
	Name         string  `json:"name"`
	Character    *string `json:"character"`
	IsMain       bool    `json:"isMain"`
	PairingGroup *int    `json:"pairingGroup"`
}

type DirectorInput struct {
	Name string `json:"name"`
}

type DubbingInput struct {
	Language string `json:"language"`
	Kind     string `json:"kind"`
}

type SeasonInput struct {
	Number       *int    `json:"number"`
	Title        *string `json:"title"`
	Year         *int    `json:"year"`
	EpisodeCount *int    `json:"episodeCount"`
	Synopsis     *string `json:"synopsis"`
}

type WatchLinkInput struct {
	Platform string `json:"platform"`
	URL      string `json:"url"`
	Official bool   `json:"official"`
}

type EmbedInput struct {
	Title *string `json:"title"`
	URL   string  `json:"url"`
	Kind  string  `json:"kind"`
}

// Validate checks the scalar fields. It never touches storage.
func (in *SeriesInput) Validate() error {
	if in.Title == nil || strings.TrimSpace(*in.Title) == "" {
		return invalid("title", "is required")
	}
	if in.Year != nil && (*in.Year < 1900 || *in.Year > 2100) {
		return invalid("year", "must be between 1900 and 2100")
	}
	if in.Rating != nil && (*in.Rating < 0 || *in.Rating > 10) {
		return invalid("rating", "must be between 0 and 10")
	}
	if in.EpisodeCount != nil && *in.EpisodeCount < 0 {
		return invalid("episodeCount", "must not be negative")
	}
	if in.Duration != nil && *in.Duration < 0 {
		return invalid("duration", "must not be negative")
	}
	return nil
}

// PersonInput updates an actor or director profile.
type PersonInput struct {
	Name        *string `json:"name"`
	Biography   *string `json:"biography"`
	BirthDate   *string `json:"birthDate"`
	Nationality *string `json:"nationality"`
	ImageURL    *string `json:"imageUrl"`
}

func (in *PersonInput) Validate() error {
	if in.Name != nil && strings.TrimSpace(*in.Name) == "" {
		return invalid("name", "must not be blank")
	}
	if in.BirthDate != nil && strings.TrimSpace(*in.BirthDate) != "" {
		if _, err := time.Parse(time.DateOnly, strings.TrimSpace(*in.BirthDate)); err != nil {
			return invalid("birthDate", "must be formatted YYYY-MM-DD")
		}
	}
	return nil
}

// MergeInput names the actor or director folded into another.
type MergeInput struct {
	SourceID int64 `json:"sourceId"`
	TargetID int64 `json:"targetId"`
}

func blankToNil(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

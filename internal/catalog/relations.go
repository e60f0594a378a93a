package catalog

import (
	"context"
	"errors"
	"net/url"
	"strconv"
	"strings"

	"github.com/juanjparedez/mundobl/internal/models"
)

const (
	defaultDubbingKind = "dub"
	defaultEmbedKind   = "video"
)

// SyncRelations replaces every relation supplied in in, in a fixed order.
// Relations left nil in the payload are not touched.
func SyncRelations(ctx context.Context, r Repos, seriesID int64, in *SeriesInput) error {
	if in.Actors != nil {
		if err := ReplaceActors(ctx, r, seriesID, *in.Actors); err != nil {
			return err
		}
	}
	if in.Directors != nil {
		if err := ReplaceDirectors(ctx, r, seriesID, *in.Directors); err != nil {
			return err
		}
	}
	if in.Dubbings != nil {
		if err := ReplaceDubbings(ctx, r, seriesID, *in.Dubbings); err != nil {
			return err
		}
	}
	if in.Seasons != nil {
		if err := ReplaceSeasons(ctx, r, seriesID, *in.Seasons); err != nil {
			return err
		}
	}
	if in.Tags != nil {
		if err := ReplaceTags(ctx, r, seriesID, *in.Tags); err != nil {
			return err
		}
	}
	if in.Genres != nil {
		if err := ReplaceGenres(ctx, r, seriesID, *in.Genres); err != nil {
			return err
		}
	}
	if in.WatchLinks != nil {
		if err := ReplaceWatchLinks(ctx, r, seriesID, *in.WatchLinks); err != nil {
			return err
		}
	}
	if in.Embeds != nil {
		if err := ReplaceEmbeds(ctx, r, seriesID, *in.Embeds); err != nil {
			return err
		}
	}
	if in.RelatedSeriesIDs != nil {
		if err := ReplaceRelatedSeries(ctx, r, seriesID, *in.RelatedSeriesIDs); err != nil {
			return err
		}
	}
	return nil
}

// ReplaceActors rewrites the cast. The same actor may appear more than once
// with different characters; entries without a name are skipped.
func ReplaceActors(ctx context.Context, r Repos, seriesID int64, items []ActorInput) error {
	if err := r.Relations.Clear(ctx, seriesID, models.RelActors); err != nil {
		return err
	}
	for _, item := range items {
		name := strings.TrimSpace(item.Name)
		if name == "" {
			continue
		}
		actorID, err := ResolveOrCreate(ctx, r.References, models.KindActor, name)
		if err != nil {
			return err
		}
		row := &models.SeriesActor{
			SeriesID:     seriesID,
			ActorID:      actorID,
			IsMain:       item.IsMain,
			PairingGroup: item.PairingGroup,
		}
		if item.Character != nil {
			row.Character = blankToNil(*item.Character)
		}
		if err := r.Relations.AddActor(ctx, row); err != nil {
			return err
		}
	}
	return nil
}

func ReplaceDirectors(ctx context.Context, r Repos, seriesID int64, items []DirectorInput) error {
	names := make([]string, 0, len(items))
	for _, item := range items {
		names = append(names, item.Name)
	}
	return replaceNamed(ctx, r, seriesID, models.RelDirectors, models.KindDirector, names, r.Relations.AddDirector)
}

func ReplaceTags(ctx context.Context, r Repos, seriesID int64, names []string) error {
	return replaceNamed(ctx, r, seriesID, models.RelTags, models.KindTag, names, r.Relations.AddTag)
}

func ReplaceGenres(ctx context.Context, r Repos, seriesID int64, names []string) error {
	return replaceNamed(ctx, r, seriesID, models.RelGenres, models.KindGenre, names, r.Relations.AddGenre)
}

// replaceNamed handles the plain set relations keyed by a reference name.
// Two names resolving to the same row produce one join row.
func replaceNamed(ctx context.Context, r Repos, seriesID int64, rel models.Relation, kind models.RefKind,
	names []string, add func(context.Context, int64, int64) error) error {
	if err := r.Relations.Clear(ctx, seriesID, rel); err != nil {
		return err
	}
	seen := make(map[int64]bool, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		id, err := ResolveOrCreate(ctx, r.References, kind, name)
		if err != nil {
			return err
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		if err := add(ctx, seriesID, id); err != nil {
			return err
		}
	}
	return nil
}

func ReplaceDubbings(ctx context.Context, r Repos, seriesID int64, items []DubbingInput) error {
	if err := r.Relations.Clear(ctx, seriesID, models.RelDubbings); err != nil {
		return err
	}
	type key struct {
		language int64
		kind     string
	}
	seen := make(map[key]bool, len(items))
	for _, item := range items {
		lang := strings.TrimSpace(item.Language)
		if lang == "" {
			continue
		}
		kind := strings.ToLower(strings.TrimSpace(item.Kind))
		if kind == "" {
			kind = defaultDubbingKind
		}
		langID, err := ResolveOrCreate(ctx, r.References, models.KindLanguage, lang)
		if err != nil {
			return err
		}
		k := key{langID, kind}
		if seen[k] {
			continue
		}
		seen[k] = true
		if err := r.Relations.AddDubbing(ctx, &models.SeriesDubbing{SeriesID: seriesID, LanguageID: langID, Kind: kind}); err != nil {
			return err
		}
	}
	return nil
}

// ReplaceSeasons rewrites the season list. A repeated season number
// collides with the (series, number) unique key and is reported as a
// conflict.
func ReplaceSeasons(ctx context.Context, r Repos, seriesID int64, items []SeasonInput) error {
	if err := r.Relations.Clear(ctx, seriesID, models.RelSeasons); err != nil {
		return err
	}
	for _, item := range items {
		if item.Number == nil || *item.Number < 0 {
			continue
		}
		season := &models.Season{
			SeriesID:     seriesID,
			Number:       *item.Number,
			Year:         item.Year,
			EpisodeCount: item.EpisodeCount,
		}
		if item.Title != nil {
			season.Title = blankToNil(*item.Title)
		}
		if item.Synopsis != nil {
			season.Synopsis = blankToNil(*item.Synopsis)
		}
		err := r.Relations.AddSeason(ctx, season)
		if errors.Is(err, ErrDuplicate) {
			return &ConflictError{Kind: "season", Name: strconv.Itoa(season.Number), Err: err}
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func ReplaceWatchLinks(ctx context.Context, r Repos, seriesID int64, items []WatchLinkInput) error {
	if err := r.Relations.Clear(ctx, seriesID, models.RelWatchLinks); err != nil {
		return err
	}
	for _, item := range items {
		link := strings.TrimSpace(item.URL)
		if link == "" {
			continue
		}
		platform := strings.TrimSpace(item.Platform)
		if platform == "" {
			platform = platformFromURL(link)
		}
		row := &models.WatchLink{SeriesID: seriesID, Platform: platform, URL: link, Official: item.Official}
		if err := r.Relations.AddWatchLink(ctx, row); err != nil {
			return err
		}
	}
	return nil
}

// platformFromURL names a link's platform after its host, e.g.
// "https://www.viki.com/x" is "viki". Unparsable links are "other".
func platformFromURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Hostname() == "" {
		return "other"
	}
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	if i := strings.Index(host, "."); i > 0 {
		host = host[:i]
	}
	return host
}

// ReplaceEmbeds stores embeds in payload order; SortOrder counts kept items only.
func ReplaceEmbeds(ctx context.Context, r Repos, seriesID int64, items []EmbedInput) error {
	if err := r.Relations.Clear(ctx, seriesID, models.RelEmbeds); err != nil {
		return err
	}
	order := 0
	for _, item := range items {
		url := strings.TrimSpace(item.URL)
		if url == "" {
			continue
		}
		kind := strings.TrimSpace(item.Kind)
		if kind == "" {
			kind = defaultEmbedKind
		}
		embed := &models.Embed{SeriesID: seriesID, URL: url, Kind: kind, SortOrder: order}
		if item.Title != nil {
			embed.Title = blankToNil(*item.Title)
		}
		if err := r.Relations.AddEmbed(ctx, embed); err != nil {
			return err
		}
		order++
	}
	return nil
}

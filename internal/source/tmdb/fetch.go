package tmdb

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/Aftnet/NetMediaInfoLib/internal/log"
	"github.com/Aftnet/NetMediaInfoLib/internal/media"
	"github.com/patrickmn/go-cache"
	"github.com/ryanbradynd05/go-tmdb"
	"github.com/sirupsen/logrus"
)

// SearchResult is one search hit. It is not populated enough for tagging;
// pass ID to GetMovie or GetShow.
type SearchResult struct {
	ID          string
	Title       string
	ReleaseDate string
	Overview    string
}

// cachedFetch returns the cached value for key or calls fetch under the rate
// limiter and caches its result.
func cachedFetch[T any](ctx context.Context, s *Source, key, what string, fetch func() (*T, error)) (*T, error) {
	if s.cache != nil {
		if cached, found := s.cache.Get(key); found {
			if v, ok := cached.(*T); ok {
				return v, nil
			}
		}
	}

	if err := s.rateLimiter.wait(ctx); err != nil {
		return nil, err
	}
	v, err := fetch()
	if err != nil {
		return nil, mapError(err)
	}
	if v == nil {
		return nil, notFound("%s not found", what)
	}

	if s.cache != nil {
		s.cache.Set(key, v, cache.DefaultExpiration)
	}
	return v, nil
}

// GetMovie fetches a movie with its cover image.
func (s *Source) GetMovie(ctx context.Context, id string) (*media.Movie, error) {
	movieID, err := parseID("movie", id)
	if err != nil {
		return nil, err
	}
	cfg, err := s.imageConfig(ctx)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("movie:%d:%s", movieID, s.language)
	m, err := cachedFetch(ctx, s, key, "movie "+id, func() (*tmdb.Movie, error) {
		return s.client.GetMovieInfo(movieID, s.options())
	})
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(m.Genres))
	for _, g := range m.Genres {
		names = append(names, g.Name)
	}

	return &media.Movie{
		ID:          strconv.Itoa(movieID),
		Title:       m.Title,
		Description: m.Overview,
		Genres:      genreNames(names),
		ReleaseDate: m.ReleaseDate,
		Image:       s.fetchImage(ctx, cfg.coverURL(m.PosterPath)),
		Source:      MovieSource,
	}, nil
}

// GetShow fetches a show with its cover image. Seasons are listed by number
// only; GetSeason populates them.
func (s *Source) GetShow(ctx context.Context, id string) (*media.TVShow, error) {
	showID, err := parseID("show", id)
	if err != nil {
		return nil, err
	}
	cfg, err := s.imageConfig(ctx)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("tv:%d:%s", showID, s.language)
	tv, err := cachedFetch(ctx, s, key, "show "+id, func() (*tmdb.TV, error) {
		return s.client.GetTvInfo(showID, s.options())
	})
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(tv.Genres))
	for _, g := range tv.Genres {
		names = append(names, g.Name)
	}

	show := &media.TVShow{
		ID:          strconv.Itoa(showID),
		Title:       tv.Name,
		Description: tv.Overview,
		Genres:      genreNames(names),
		ReleaseDate: tv.FirstAirDate,
		Image:       s.fetchImage(ctx, cfg.coverURL(tv.PosterPath)),
		Source:      ShowSource,
	}
	for _, season := range tv.Seasons {
		show.AddSeason(&media.TVSeason{Number: season.SeasonNumber, ReleaseDate: season.AirDate})
	}
	return show, nil
}

// GetSeason fetches season number of show with its episodes and cover image
// and attaches it to show.
func (s *Source) GetSeason(ctx context.Context, show *media.TVShow, number int) (*media.TVSeason, error) {
	if show == nil {
		return nil, fmt.Errorf("tmdb: nil show")
	}
	showID, err := parseID("show", show.ID)
	if err != nil {
		return nil, err
	}
	cfg, err := s.imageConfig(ctx)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("season:%d:%d:%s", showID, number, s.language)
	ts, err := cachedFetch(ctx, s, key, fmt.Sprintf("season %d of show %d", number, showID), func() (*tmdb.TvSeason, error) {
		return s.client.GetTvSeasonInfo(showID, number, s.options())
	})
	if err != nil {
		return nil, err
	}

	season := &media.TVSeason{
		Number:      number,
		Title:       ts.Name,
		Description: ts.Overview,
		ReleaseDate: ts.AirDate,
		Image:       s.fetchImage(ctx, cfg.coverURL(ts.PosterPath)),
	}
	for _, ep := range ts.Episodes {
		season.AddEpisode(&media.TVEpisode{
			Number:      ep.EpisodeNumber,
			Title:       ep.Name,
			Description: ep.Overview,
			ReleaseDate: ep.AirDate,
		})
	}
	show.AddSeason(season)
	return season, nil
}

// GetEpisode fetches the full episode -> season -> show chain.
func (s *Source) GetEpisode(ctx context.Context, showID string, seasonNumber, episodeNumber int) (*media.TVEpisode, error) {
	show, err := s.GetShow(ctx, showID)
	if err != nil {
		return nil, err
	}
	season, err := s.GetSeason(ctx, show, seasonNumber)
	if err != nil {
		return nil, err
	}
	if ep := season.Episode(episodeNumber); ep != nil {
		return ep, nil
	}

	// Not in the season listing; ask for the episode directly.
	id, _ := strconv.Atoi(show.ID)
	key := fmt.Sprintf("episode:%d:%d:%d:%s", id, seasonNumber, episodeNumber, s.language)
	te, err := cachedFetch(ctx, s, key, fmt.Sprintf("episode S%02dE%02d of show %s", seasonNumber, episodeNumber, show.ID), func() (*tmdb.TvEpisode, error) {
		return s.client.GetTvEpisodeInfo(id, seasonNumber, episodeNumber, s.options())
	})
	if err != nil {
		return nil, err
	}
	ep := &media.TVEpisode{
		Number:      episodeNumber,
		Title:       te.Name,
		Description: te.Overview,
		ReleaseDate: te.AirDate,
	}
	season.AddEpisode(ep)
	return ep, nil
}

// SearchMovies searches movies by title. Queries shorter than
// MinQueryLength return no results.
func (s *Source) SearchMovies(ctx context.Context, query string) ([]SearchResult, error) {
	if len(query) < MinQueryLength {
		return []SearchResult{}, nil
	}
	if err := s.rateLimiter.wait(ctx); err != nil {
		return nil, err
	}
	results, err := s.client.SearchMovie(query, s.options())
	if err != nil {
		return nil, mapError(err)
	}
	if results == nil {
		return []SearchResult{}, nil
	}

	out := make([]SearchResult, 0, len(results.Results))
	for _, m := range results.Results {
		out = append(out, SearchResult{
			ID:          strconv.Itoa(m.ID),
			Title:       m.Title,
			ReleaseDate: m.ReleaseDate,
			Overview:    m.Overview,
		})
	}
	return out, nil
}

// SearchShows searches shows by name. Queries shorter than MinQueryLength
// return no results.
func (s *Source) SearchShows(ctx context.Context, query string) ([]SearchResult, error) {
	if len(query) < MinQueryLength {
		return []SearchResult{}, nil
	}
	if err := s.rateLimiter.wait(ctx); err != nil {
		return nil, err
	}
	results, err := s.client.SearchTv(query, s.options())
	if err != nil {
		return nil, mapError(err)
	}
	if results == nil {
		return []SearchResult{}, nil
	}

	out := make([]SearchResult, 0, len(results.Results))
	for _, tv := range results.Results {
		out = append(out, SearchResult{
			ID:          strconv.Itoa(tv.ID),
			Title:       tv.Name,
			ReleaseDate: tv.FirstAirDate,
		})
	}
	return out, nil
}

// fetchImage downloads a cover. Missing art is not an error: the cover is
// simply absent and the tagger skips it.
func (s *Source) fetchImage(ctx context.Context, url string) []byte {
	if url == "" || s.images == nil {
		return nil
	}
	key := "image:" + url
	if s.cache != nil {
		if cached, found := s.cache.Get(key); found {
			if data, ok := cached.([]byte); ok {
				return data
			}
		}
	}

	data, err := s.images.Fetch(ctx, url)
	if err != nil {
		log.Logger().WithFields(logrus.Fields{"url": url, "error": err}).Warn("Failed to download cover image")
		return nil
	}
	if s.cache != nil {
		s.cache.Set(key, data, cache.DefaultExpiration)
	}
	return data
}

// genreNames drops empty names and sorts the rest.
func genreNames(names []string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		if n != "" {
			out = append(out, n)
		}
	}
	sort.Strings(out)
	return out
}

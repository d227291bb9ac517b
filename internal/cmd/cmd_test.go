package cmd

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/Aftnet/NetMediaInfoLib/internal/config"
	"github.com/Aftnet/NetMediaInfoLib/internal/container"
	"github.com/Aftnet/NetMediaInfoLib/internal/log"
	"github.com/Aftnet/NetMediaInfoLib/internal/media"
	"github.com/Aftnet/NetMediaInfoLib/internal/source/tmdb"
)

// fakeSource serves fixed entities. seasonErr and episodeErr replace every
// season or episode lookup when set.
type fakeSource struct {
	movies     map[string]*media.Movie
	show       *media.TVShow
	results    []tmdb.SearchResult
	queries    []string
	saves      int
	seasonErr  error
	episodeErr error
}

func (f *fakeSource) GetMovie(ctx context.Context, id string) (*media.Movie, error) {
	if m, ok := f.movies[id]; ok {
		return m, nil
	}
	return nil, &tmdb.SourceError{Code: tmdb.CodeNotFound, Message: fmt.Sprintf("movie %s not found", id)}
}

func (f *fakeSource) GetShow(ctx context.Context, id string) (*media.TVShow, error) {
	if f.show != nil && f.show.ID == id {
		return f.show, nil
	}
	return nil, &tmdb.SourceError{Code: tmdb.CodeNotFound, Message: fmt.Sprintf("show %s not found", id)}
}

func (f *fakeSource) GetSeason(ctx context.Context, show *media.TVShow, number int) (*media.TVSeason, error) {
	if f.seasonErr != nil {
		return nil, f.seasonErr
	}
	if season := show.Season(number); season != nil {
		return season, nil
	}
	return nil, &tmdb.SourceError{Code: tmdb.CodeNotFound, Message: fmt.Sprintf("season %d not found", number)}
}

func (f *fakeSource) GetEpisode(ctx context.Context, showID string, season, episode int) (*media.TVEpisode, error) {
	if f.episodeErr != nil {
		return nil, f.episodeErr
	}
	show, err := f.GetShow(ctx, showID)
	if err != nil {
		return nil, err
	}
	if ep := show.Season(season).Episode(episode); ep != nil {
		return ep, nil
	}
	return nil, &tmdb.SourceError{Code: tmdb.CodeNotFound, Message: fmt.Sprintf("S%02dE%02d not found", season, episode)}
}

func (f *fakeSource) SearchMovies(ctx context.Context, query string) ([]tmdb.SearchResult, error) {
	f.queries = append(f.queries, "movie:"+query)
	return f.results, nil
}

func (f *fakeSource) SearchShows(ctx context.Context, query string) ([]tmdb.SearchResult, error) {
	f.queries = append(f.queries, "show:"+query)
	return f.results, nil
}

func (f *fakeSource) SaveCache() error {
	f.saves++
	return nil
}

func newFakeSource() *fakeSource {
	show := &media.TVShow{
		ID:          "1396",
		Title:       "Breaking Bad",
		Description: "A dying man turns to crime.",
		Genres:      []string{"Crime", "Drama"},
		Image:       []byte("show-poster"),
		Source:      media.Source{Name: "tmdb", IDTagLabel: "TMDB_TVSHOWID"},
	}
	season := &media.TVSeason{Number: 1, Title: "Season 1", Image: []byte("season-poster")}
	show.AddSeason(season)
	season.AddEpisode(&media.TVEpisode{Number: 1, Title: "Pilot", Description: "Walter is diagnosed."})
	season.AddEpisode(&media.TVEpisode{Number: 2, Title: "Cat's in the Bag..."})

	return &fakeSource{
		movies: map[string]*media.Movie{
			"949": {
				ID:          "949",
				Title:       "Heat",
				Description: "A group of professional bank robbers.",
				Genres:      []string{"Action", "Crime"},
				Image:       []byte("heat-poster"),
				Source:      media.Source{Name: "tmdb", IDTagLabel: "TMDB_MOVIEID"},
			},
		},
		show: show,
	}
}

// testEnv isolates a command run: a temp home, a config file, a fake
// source and an in-memory opener.
type testEnv struct {
	home   string
	config string
	source *fakeSource
	opener *container.MemoryOpener
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	home := t.TempDir()
	t.Setenv("HOME", home)

	env := &testEnv{
		home:   home,
		config: filepath.Join(home, "config.json"),
		source: newFakeSource(),
		opener: container.NewMemoryOpener(),
	}

	cfg := config.DefaultConfig()
	cfg.TMDBAPIKey = "test-api-key"
	if err := cfg.SaveTo(env.config); err != nil {
		t.Fatalf("SaveTo() error = %v", err)
	}

	origSource, origOpener := newSourceFunc, newOpenerFunc
	newSourceFunc = func(*config.Config) (metadataSource, error) { return env.source, nil }
	newOpenerFunc = func(*config.Config) container.Opener { return env.opener }

	log.SetOutput(io.Discard)
	t.Cleanup(func() {
		newSourceFunc, newOpenerFunc = origSource, origOpener
		log.SetOutput(os.Stderr)
		historyLimit, historySession = 10, ""
		seasonNumber = 0
	})
	return env
}

// run executes the root command with args and returns its output.
func (e *testEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(append([]string{"--config", e.config}, args...))
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

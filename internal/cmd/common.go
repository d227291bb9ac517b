package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/Aftnet/NetMediaInfoLib/internal/config"
	"github.com/Aftnet/NetMediaInfoLib/internal/container"
	"github.com/Aftnet/NetMediaInfoLib/internal/log"
	"github.com/Aftnet/NetMediaInfoLib/internal/media"
	"github.com/Aftnet/NetMediaInfoLib/internal/source/tmdb"
	"github.com/Aftnet/NetMediaInfoLib/internal/tagging"
	"github.com/spf13/cobra"
)

// metadataSource is the part of tmdb.Source the commands use.
type metadataSource interface {
	GetMovie(ctx context.Context, id string) (*media.Movie, error)
	GetShow(ctx context.Context, id string) (*media.TVShow, error)
	GetSeason(ctx context.Context, show *media.TVShow, number int) (*media.TVSeason, error)
	GetEpisode(ctx context.Context, showID string, season, episode int) (*media.TVEpisode, error)
	SearchMovies(ctx context.Context, query string) ([]tmdb.SearchResult, error)
	SearchShows(ctx context.Context, query string) ([]tmdb.SearchResult, error)
	SaveCache() error
}

// Constructors are variables so tests can substitute fakes.
var (
	newSourceFunc = func(cfg *config.Config) (metadataSource, error) {
		if cfg.TMDBAPIKey == "" {
			return nil, fmt.Errorf("TMDB API key not configured: run 'mediatag config set %s KEY' or set MEDIATAG_TMDB_API_KEY", config.KeyTMDBAPIKey)
		}
		opts := tmdb.Options{
			APIKey:        cfg.TMDBAPIKey,
			Language:      cfg.TMDBLanguage,
			CacheEnabled:  cfg.CacheEnabled,
			CacheDuration: time.Duration(cfg.CacheDurationHours) * time.Hour,
		}
		if cfg.CacheEnabled {
			if file, err := tmdb.DefaultCacheFile(); err == nil {
				opts.CacheFile = file
			}
		}
		return tmdb.New(opts)
	}

	newOpenerFunc = func(cfg *config.Config) container.Opener {
		return container.NewFileOpener(cfg.AtomicSave)
	}
)

// withSource runs fn against a metadata source and persists its cache
// afterwards.
func withSource(fn func(src metadataSource) error) error {
	src, err := newSourceFunc(appConfig)
	if err != nil {
		return err
	}
	defer func() {
		if err := src.SaveCache(); err != nil {
			log.Logger().WithError(err).Warn("Failed to save TMDB cache")
		}
	}()
	return fn(src)
}

// runTagJobs tags every job inside a session log and prints a report. It
// fails when any file could not be tagged.
func runTagJobs(cmd *cobra.Command, commandName string, args []string, jobs []tagging.Job, skipped []skippedFile) error {
	if err := log.StartSession(commandName, args); err != nil {
		log.Logger().WithError(err).Warn("Failed to start session log")
	}
	defer func() {
		if err := log.EndSession(); err != nil {
			log.Logger().WithError(err).Warn("Failed to write session log")
		}
	}()

	batch := &tagging.Batch{
		Tagger:  tagging.NewTagger(newOpenerFunc(appConfig)),
		Workers: appConfig.WorkerCount,
	}
	results, err := batch.Run(cmd.Context(), jobs)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	writeReport(out, outputTheme(out), results, skipped)

	failed := 0
	for _, res := range results {
		if !res.OK() {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d files failed to tag", failed, len(results))
	}
	return nil
}

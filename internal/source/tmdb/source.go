// Package tmdb populates the media model from The Movie Database.
package tmdb

import (
	"context"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/Aftnet/NetMediaInfoLib/internal/log"
	"github.com/Aftnet/NetMediaInfoLib/internal/media"
	"github.com/patrickmn/go-cache"
	"github.com/ryanbradynd05/go-tmdb"
)

// Sources and their identifier tag labels.
var (
	MovieSource = media.Source{Name: "TMDB Movies", IDTagLabel: "TMDB_MOVIEID"}
	ShowSource  = media.Source{Name: "TMDB TV Shows", IDTagLabel: "TMDB_TVSHOWID"}
)

const (
	defaultLanguage = "en-US"
	// MinQueryLength is the shortest search query sent to TMDB.
	MinQueryLength = 3
)

// Client interface for testing (matches *tmdb.TMDb exactly)
type Client interface {
	GetConfiguration() (*tmdb.Configuration, error)
	SearchMovie(name string, options map[string]string) (*tmdb.MovieSearchResults, error)
	SearchTv(name string, options map[string]string) (*tmdb.TvSearchResults, error)
	GetMovieInfo(id int, options map[string]string) (*tmdb.Movie, error)
	GetTvInfo(id int, options map[string]string) (*tmdb.TV, error)
	GetTvSeasonInfo(showID, seasonID int, options map[string]string) (*tmdb.TvSeason, error)
	GetTvEpisodeInfo(showID, seasonNum, episodeNum int, options map[string]string) (*tmdb.TvEpisode, error)
}

// Options configure a Source.
type Options struct {
	APIKey   string
	Language string
	// CacheEnabled keeps TMDB responses for CacheDuration and persists them
	// to CacheFile between runs when it is set.
	CacheEnabled  bool
	CacheDuration time.Duration
	CacheFile     string
}

// Source fetches fully populated movies and episode chains.
type Source struct {
	client      Client
	images      ImageFetcher
	cache       *cache.Cache
	cacheFile   string
	language    string
	rateLimiter *rateLimiter
}

func init() {
	gob.Register(&tmdb.Movie{})
	gob.Register(&tmdb.TV{})
	gob.Register(&tmdb.TvSeason{})
	gob.Register(&tmdb.TvEpisode{})
}

// New creates a Source backed by the TMDB API.
func New(opts Options) (*Source, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("tmdb: api key is required")
	}
	client := tmdb.Init(tmdb.Config{
		APIKey:   opts.APIKey,
		Proxies:  nil,
		UseProxy: false,
	})
	return NewWithClient(client, NewHTTPImageFetcher(30*time.Second), opts), nil
}

// NewWithClient creates a Source around an existing client.
func NewWithClient(client Client, images ImageFetcher, opts Options) *Source {
	s := &Source{
		client:      client,
		images:      images,
		language:    opts.Language,
		rateLimiter: newRateLimiter(38, 10*time.Second), // 38 requests per 10 seconds
	}
	if s.language == "" {
		s.language = defaultLanguage
	}

	if opts.CacheEnabled {
		duration := opts.CacheDuration
		if duration <= 0 {
			duration = 168 * time.Hour
		}
		s.cache = cache.New(duration, 10*time.Minute)
		if opts.CacheFile != "" {
			s.cacheFile = opts.CacheFile
			if _, err := os.Stat(s.cacheFile); err == nil {
				if err := s.cache.LoadFile(s.cacheFile); err != nil {
					log.Logger().WithError(err).WithField("file", s.cacheFile).Warn("Ignoring unreadable TMDB cache")
				}
			}
		}
	}
	return s
}

// DefaultCacheFile returns ~/.mediatag/tmdb_cache/tmdb_cache.gob.
func DefaultCacheFile() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".mediatag", "tmdb_cache", "tmdb_cache.gob"), nil
}

// SaveCache persists the cache to disk
func (s *Source) SaveCache() error {
	if s.cache == nil || s.cacheFile == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(s.cacheFile), 0755); err != nil {
		return err
	}
	return s.cache.SaveFile(s.cacheFile)
}

// imageConfig is the part of the TMDB configuration used to build cover URLs.
type imageConfig struct {
	SecureBaseURL string
	PosterSize    string
}

func (c imageConfig) coverURL(path string) string {
	if path == "" {
		return ""
	}
	return c.SecureBaseURL + c.PosterSize + path
}

// The remote configuration is fetched once per process and shared by every
// Source.
var (
	configCache = cache.New(cache.NoExpiration, 0)
	configMu    sync.Mutex
)

const configCacheKey = "configuration"

func (s *Source) imageConfig(ctx context.Context) (imageConfig, error) {
	configMu.Lock()
	defer configMu.Unlock()

	if cached, found := configCache.Get(configCacheKey); found {
		return cached.(imageConfig), nil
	}

	if err := s.rateLimiter.wait(ctx); err != nil {
		return imageConfig{}, err
	}
	cfg, err := s.client.GetConfiguration()
	if err != nil {
		return imageConfig{}, mapError(err)
	}
	if cfg == nil {
		return imageConfig{}, notFound("TMDB configuration unavailable")
	}

	ic := imageConfig{SecureBaseURL: cfg.Images.SecureBaseURL}
	// Second-largest poster size; the largest is "original".
	if sizes := cfg.Images.PosterSizes; len(sizes) >= 2 {
		ic.PosterSize = sizes[len(sizes)-2]
	} else if len(sizes) == 1 {
		ic.PosterSize = sizes[0]
	}
	configCache.Set(configCacheKey, ic, cache.NoExpiration)
	return ic, nil
}

// resetConfigCache drops the process-wide configuration. Used by tests.
func resetConfigCache() {
	configMu.Lock()
	defer configMu.Unlock()
	configCache.Flush()
}

func (s *Source) options() map[string]string {
	return map[string]string{"language": s.language}
}

func parseID(kind, id string) (int, error) {
	n, err := strconv.Atoi(id)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid TMDB %s id %q", kind, id)
	}
	return n, nil
}

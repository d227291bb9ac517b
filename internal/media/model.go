package media

// Kind identifies the kind of entity being tagged.
type Kind string

const (
	KindMovie   Kind = "movie"
	KindShow    Kind = "show"
	KindSeason  Kind = "season"
	KindEpisode Kind = "episode"
)

// Source describes the metadata source an entity was fetched from.
//
// IDTagLabel is the key under which the source's identifier is stored in
// containers that support free-form keys (e.g. TMDB_MOVIEID).
type Source struct {
	Name       string
	IDTagLabel string
}

// Movie is a fully populated movie as supplied by a metadata source.
type Movie struct {
	ID          string
	Title       string
	Description string
	Genres      []string
	ReleaseDate string
	Image       []byte
	Source      Source
}

// TVShow is the root of a show -> season -> episode chain.
type TVShow struct {
	ID          string
	Title       string
	Description string
	Genres      []string
	ReleaseDate string
	Image       []byte
	Source      Source
	Seasons     []*TVSeason
}

// Season returns the season with the given number, or nil.
func (s *TVShow) Season(number int) *TVSeason {
	if s == nil {
		return nil
	}
	for _, season := range s.Seasons {
		if season.Number == number {
			return season
		}
	}
	return nil
}

// AddSeason attaches season to the show, replacing any season with the same
// number, and points the season back at the show.
func (s *TVShow) AddSeason(season *TVSeason) {
	season.Show = s
	for i, existing := range s.Seasons {
		if existing.Number == season.Number {
			s.Seasons[i] = season
			return
		}
	}
	s.Seasons = append(s.Seasons, season)
}

// TVSeason belongs to exactly one show.
type TVSeason struct {
	Number      int
	Title       string
	Description string
	ReleaseDate string
	Image       []byte
	Show        *TVShow
	Episodes    []*TVEpisode
}

// Episode returns the episode with the given number, or nil.
func (s *TVSeason) Episode(number int) *TVEpisode {
	if s == nil {
		return nil
	}
	for _, ep := range s.Episodes {
		if ep.Number == number {
			return ep
		}
	}
	return nil
}

// AddEpisode attaches ep to the season, replacing any episode with the same
// number, and points the episode back at the season.
func (s *TVSeason) AddEpisode(ep *TVEpisode) {
	ep.Season = s
	for i, existing := range s.Episodes {
		if existing.Number == ep.Number {
			s.Episodes[i] = ep
			return
		}
	}
	s.Episodes = append(s.Episodes, ep)
}

// TVEpisode has no genres or cover art of its own; both are inherited from
// its ancestors.
type TVEpisode struct {
	Number      int
	Title       string
	Description string
	ReleaseDate string
	Season      *TVSeason
}

// Show returns the show at the top of the episode's chain, or nil when the
// chain is incomplete.
func (e *TVEpisode) Show() *TVShow {
	if e == nil || e.Season == nil {
		return nil
	}
	return e.Season.Show
}

// Complete reports whether the episode -> season -> show chain is populated.
func (e *TVEpisode) Complete() bool {
	return e.Show() != nil
}

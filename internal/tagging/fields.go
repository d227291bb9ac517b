package tagging

import (
	"errors"

	"github.com/Aftnet/NetMediaInfoLib/internal/media"
)

var (
	errNilMovie        = errors.New("nil movie")
	errIncompleteChain = errors.New("episode is not attached to a season and show")
)

// Fields is the flattened record the mappers write. It is built fresh for
// every tagging call.
type Fields struct {
	Kind        media.Kind
	Title       string
	Genres      []string
	Description string
	Cover       []byte

	// ID is the source identifier of the movie, or of the show for episodes.
	ID         string
	IDTagLabel string

	// Episode only.
	SeasonNumber  int
	EpisodeNumber int
	ShowTitle     string
	SeasonTitle   string
}

// MovieFields copies every field straight from the movie.
func MovieFields(m *media.Movie) (Fields, error) {
	if m == nil {
		return Fields{}, errNilMovie
	}
	return Fields{
		Kind:        media.KindMovie,
		Title:       m.Title,
		Genres:      m.Genres,
		Description: m.Description,
		Cover:       m.Image,
		ID:          m.ID,
		IDTagLabel:  m.Source.IDTagLabel,
	}, nil
}

// EpisodeFields resolves fields the episode lacks from its season and show.
// The title is the episode's own, the description falls back to the season
// then the show, genres always come from the show and the cover comes from
// the season or else the show.
func EpisodeFields(ep *media.TVEpisode) (Fields, error) {
	if !ep.Complete() {
		return Fields{}, errIncompleteChain
	}
	season := ep.Season
	show := season.Show

	return Fields{
		Kind:  media.KindEpisode,
		Title: ep.Title,
		Genres: Resolve(AnyGenre,
			func() []string { return show.Genres },
		),
		Description: Resolve(NonEmpty,
			func() string { return ep.Description },
			func() string { return season.Description },
			func() string { return show.Description },
		),
		Cover: Resolve(Present,
			func() []byte { return season.Image },
			func() []byte { return show.Image },
		),
		ID:            show.ID,
		IDTagLabel:    show.Source.IDTagLabel,
		SeasonNumber:  season.Number,
		EpisodeNumber: ep.Number,
		ShowTitle:     show.Title,
		SeasonTitle:   season.Title,
	}, nil
}

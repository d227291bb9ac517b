package tagging

import (
	"strconv"

	"github.com/Aftnet/NetMediaInfoLib/internal/container"
	"github.com/Aftnet/NetMediaInfoLib/internal/media"
)

// Matroska simple tag names written besides the standard ones.
const (
	TagMediaType     = "MEDIA_TYPE"
	TagSeasonNumber  = "SEASON_NUMBER"
	TagEpisodeNumber = "EPISODE_NUMBER"
	TagShowTitle     = "SHOW_TITLE"
	TagSeasonTitle   = "SEASON_TITLE"

	mediaTypeMovie  = "MOVIE"
	mediaTypeTVShow = "TV_SHOW"
)

type matroskaTarget struct {
	tag *container.MatroskaTag
}

func (t *matroskaTarget) SetTitle(title string) {
	t.tag.Set(container.TagTitle, title)
}

func (t *matroskaTarget) SetGenres(genres []string) {
	t.tag.Set(container.TagGenre, genres...)
}

func (t *matroskaTarget) SetDescription(description string) {
	t.tag.Set(container.TagDescription, description)
}

func (t *matroskaTarget) SetCoverImage(image []byte) {
	t.tag.SetCover(image)
}

// setIfValid writes a simple tag only when both the name and value are set.
func (t *matroskaTarget) setIfValid(name, value string) {
	if NonEmpty(name) && NonEmpty(value) {
		t.tag.Set(name, value)
	}
}

func (t *matroskaTarget) applyExtra(fields Fields, _ container.Properties) {
	if fields.Kind == media.KindEpisode {
		t.setIfValid(TagMediaType, mediaTypeTVShow)
	} else {
		t.setIfValid(TagMediaType, mediaTypeMovie)
	}
	t.setIfValid(fields.IDTagLabel, fields.ID)

	if fields.Kind == media.KindEpisode {
		t.setIfValid(TagSeasonNumber, strconv.Itoa(fields.SeasonNumber))
		t.setIfValid(TagEpisodeNumber, strconv.Itoa(fields.EpisodeNumber))
		t.setIfValid(TagShowTitle, fields.ShowTitle)
		t.setIfValid(TagSeasonTitle, fields.SeasonTitle)
	}
}

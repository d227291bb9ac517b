package tagging

import (
	"encoding/binary"

	"github.com/Aftnet/NetMediaInfoLib/internal/apple"
	"github.com/Aftnet/NetMediaInfoLib/internal/container"
	"github.com/Aftnet/NetMediaInfoLib/internal/media"
)

const (
	hdVideoMinWidth  = 1280
	hdVideoMinHeight = 720

	movieURLPrefix = "https://www.themoviedb.org/movie/"
	showURLPrefix  = "https://www.themoviedb.org/tv/"
)

type appleTarget struct {
	tag *container.AppleTag
}

func (t *appleTarget) SetTitle(title string) {
	t.tag.SetText(apple.Title, title)
}

func (t *appleTarget) SetGenres(genres []string) {
	t.tag.SetText(apple.Genre, genres...)
}

func (t *appleTarget) SetDescription(description string) {
	t.tag.SetText(apple.Description, description)
}

func (t *appleTarget) SetCoverImage(image []byte) {
	t.tag.SetPictures(image)
}

func (t *appleTarget) applyExtra(fields Fields, props container.Properties) {
	urlPrefix, mediaType := movieURLPrefix, apple.MediaTypeMovie
	if fields.Kind == media.KindEpisode {
		urlPrefix, mediaType = showURLPrefix, apple.MediaTypeTVShow
	}
	if NonEmpty(fields.ID) {
		t.tag.SetText(apple.URL, urlPrefix+fields.ID)
	}

	if fields.Kind == media.KindEpisode {
		t.tag.SetData(apple.TvSeasonNumber, int32Bytes(fields.SeasonNumber), container.FlagImplicit)
		t.tag.SetData(apple.TvEpisodeNumber, int32Bytes(fields.EpisodeNumber), container.FlagImplicit)
		if NonEmpty(fields.ShowTitle) {
			t.tag.SetText(apple.TvShowName, fields.ShowTitle)
		}
	}

	t.tag.SetData(apple.ITunesHDVideo, []byte{hdVideoFlag(props)}, container.FlagImplicit)
	t.tag.SetData(apple.ITunesMediaType, []byte{byte(mediaType)}, container.FlagImplicit)
}

func hdVideoFlag(props container.Properties) byte {
	if props.VideoWidth >= hdVideoMinWidth && props.VideoHeight >= hdVideoMinHeight {
		return 1
	}
	return 0
}

// int32Bytes encodes n as a big-endian 32-bit integer.
func int32Bytes(n int) []byte {
	return binary.BigEndian.AppendUint32(nil, uint32(int32(n)))
}

// Package apple holds the iTunes-style metadata atom vocabulary used in
// MP4/M4V containers.
package apple

import "fmt"

// AtomKey is the 4-byte type of a metadata atom. Legacy 3-character atoms
// carry a 0xA9 ("©") prefix byte, so keys are compared as raw bytes and never
// as Go strings.
type AtomKey [4]byte

// Key builds an AtomKey from a 4-character ASCII code.
func Key(code string) AtomKey {
	if len(code) != 4 {
		panic(fmt.Sprintf("apple: atom code %q must be 4 bytes", code))
	}
	return AtomKey{code[0], code[1], code[2], code[3]}
}

// FixIdLen3 builds a legacy atom key by prefixing 0xA9 to a 3-character code.
func FixIdLen3(code string) AtomKey {
	if len(code) != 3 {
		panic(fmt.Sprintf("apple: legacy atom code %q must be 3 bytes", code))
	}
	return AtomKey{0xA9, code[0], code[1], code[2]}
}

// String renders the key with the prefix byte shown as ©.
func (k AtomKey) String() string {
	if k[0] == 0xA9 {
		return "©" + string(k[1:])
	}
	return string(k[:])
}

// MediaType is the value stored in the stik atom.
type MediaType byte

const (
	MediaTypeMusic      MediaType = 1
	MediaTypeAudiobook  MediaType = 2
	MediaTypeMusicVideo MediaType = 6
	MediaTypeMovie      MediaType = 9
	MediaTypeTVShow     MediaType = 10
	MediaTypeBooklet    MediaType = 11
	MediaTypeRingtone   MediaType = 14
)

// Metadata atoms.
var (
	AlbumArtist     = Key("aART")
	Album           = FixIdLen3("alb")
	Artist          = FixIdLen3("ART")
	Comment         = FixIdLen3("cmt")
	Conductor       = Key("cond")
	Compilation     = Key("cpil")
	Copyright       = Key("cprt")
	Cover           = Key("covr")
	Date            = FixIdLen3("day")
	Description     = Key("desc")
	DiskNumber      = Key("disk")
	Genre           = FixIdLen3("gen")
	GenreID         = Key("geID")
	Lyrics          = FixIdLen3("lyr")
	Name            = Key("name")
	Title           = FixIdLen3("nam")
	SortAlbumArtist = Key("soaa")
	SortArtist      = Key("soar")
	SortComposer    = Key("soco")
	SortTrackTitle  = Key("sonm")
	SortAlbumTitle  = Key("soal")
	BPM             = Key("tmpo")
	TrackNumber     = Key("trkn")
	URL             = FixIdLen3("url")
	Composer        = FixIdLen3("wrt")
	Work            = FixIdLen3("wrk")
)

// Video specific atoms.
var (
	ITunesAdvisory  = Key("rtng")
	ITunesGapless   = Key("pgap")
	ITunesHDVideo   = Key("hdvd") // 0/1
	ITunesMediaType = Key("stik")
	ShowMovement    = Key("shwm")
	TvEpisodeNumber = Key("tves")
	TvEpisodeID     = Key("tven")
	TvNetworkName   = Key("tvnn")
	TvSeasonNumber  = Key("tvsn")
	TvShowName      = Key("tvsh")
	SortTvShowName  = Key("sosn")
)

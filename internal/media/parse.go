package media

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// Filename parsing helpers.
//
// Batch tagging a season directory needs to know which episode each file
// holds. Parsing is tolerant: several community naming conventions are
// accepted and the season can come from the parent folder when the filename
// only carries an episode number.
var (
	// seasonRe matches canonical season tokens like "Season 01", "S01", "s1".
	seasonRe = regexp.MustCompile(`(?i)\b(?:s|season)\.? *(\d+)\b`)

	// seasonAltRe matches alternative season tokens with separators: _Season_01_, season-1.
	seasonAltRe = regexp.MustCompile(`(?i)(?:^|[\s\.\-_])(?:s|season)[\s\.\-_]+(\d+)`)

	// seasonEpisodeRe matches combined season/episode forms: S01E02, 1x02, s1e2.
	seasonEpisodeRe = regexp.MustCompile(`(?i)[sx]?(\d+)[ex](\d+)`)

	// dottedSeasonEpisodeRe matches compact dotted forms: 1.04, 01.4, 10.12
	// The season is capped to two digits to avoid capturing a leading year like 2024.05.
	dottedSeasonEpisodeRe = regexp.MustCompile(`(?i)(?:^|[\s_\-\.])([0-9]{1,2})[\. _-]([0-9]{1,2})(?:[^0-9]|$)`)

	// videoRe matches video file extensions.
	videoRe = regexp.MustCompile(`(?i)\.(mp4|mkv|avi|mov|wmv|flv|webm|mpeg|mpg|m4v|3gp|vob|ts|mts|m2ts|rmvb|divx)$`)

	// episodeNumberRe captures a loose episode number when SxxExx is not present.
	episodeNumberRe = regexp.MustCompile(`(?:^|[\s\.\-_]|[Ee])(\d+)(?:[\s\.\-_]|$)`)

	// simpleNumberRe matches a standalone number that might represent a season.
	simpleNumberRe = regexp.MustCompile(`^(\d+)|[\s\.\-_](\d+)(?:[\s\.\-_]|$)`)
)

// IsVideo reports whether filename has a recognized video extension.
func IsVideo(filename string) bool {
	return videoRe.MatchString(filename)
}

// IsSample reports whether filename or folder name contains "sample".
func IsSample(name string) bool {
	return strings.Contains(strings.ToLower(name), "sample")
}

// ExtractSeasonNumber attempts to extract a season number from a string.
// Returns the season number and true if found, or 0 and false if not found.
func ExtractSeasonNumber(input string) (int, bool) {
	return firstIntFromRegexps(input, seasonRe, seasonAltRe, simpleNumberRe)
}

// ParseSeasonEpisode extracts season and episode numbers from a filename.
// parentDir is the name of the folder holding the file; it supplies the
// season when the filename only carries an episode number. Returns 0, 0,
// false when nothing usable is found.
func ParseSeasonEpisode(filename, parentDir string) (int, int, bool) {
	name := strings.TrimSuffix(filename, filepath.Ext(filename))

	// Dotted pattern first because it's otherwise ambiguous with fallback episode extraction.
	if m := dottedSeasonEpisodeRe.FindStringSubmatch(name); len(m) >= 3 {
		season, err1 := strconv.Atoi(m[1])
		episode, err2 := strconv.Atoi(m[2])
		// Guard against false positives like a leading year (e.g. 2024.05)
		if err1 == nil && err2 == nil && season > 0 && season <= 100 && episode > 0 && episode <= 300 {
			return season, episode, true
		}
	}
	if m := seasonEpisodeRe.FindStringSubmatch(name); len(m) >= 3 {
		season, err1 := strconv.Atoi(m[1])
		episode, err2 := strconv.Atoi(m[2])
		if err1 == nil && err2 == nil {
			return season, episode, true
		}
	}
	return episodeFromContext(name, parentDir)
}

func firstIntFromRegexps(input string, regexps ...*regexp.Regexp) (int, bool) {
	for _, re := range regexps {
		m := re.FindStringSubmatch(input)
		if len(m) < 2 {
			continue
		}
		for i := 1; i < len(m); i++ {
			if m[i] == "" {
				continue
			}
			if n, err := strconv.Atoi(m[i]); err == nil {
				return n, true
			}
		}
	}
	return 0, false
}

// episodeFromContext takes the episode from the filename and the season from
// the parent folder name.
func episodeFromContext(name, parentDir string) (int, int, bool) {
	episode, ok := firstIntFromRegexps(name, episodeNumberRe)
	if !ok || parentDir == "" {
		return 0, 0, false
	}
	season, found := ExtractSeasonNumber(parentDir)
	if !found {
		return 0, 0, false
	}
	return season, episode, true
}

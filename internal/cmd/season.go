package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Aftnet/NetMediaInfoLib/internal/media"
	"github.com/Aftnet/NetMediaInfoLib/internal/source/tmdb"
	"github.com/Aftnet/NetMediaInfoLib/internal/tagging"
	ptn "github.com/razsteinmetz/go-ptn"
	"github.com/spf13/cobra"
)

var (
	seasonShowID string
	seasonNumber int
)

var seasonCmd = &cobra.Command{
	Use:   "season --show TMDB_ID [--season N] DIR",
	Short: "Tag every episode file in a season folder",
	Long: `Tag the video files directly inside DIR as episodes of one show.

Season and episode numbers are read from file names such as S01E02, 1x02 or
1.02. A file named only with an episode number takes its season from the
folder name (e.g. "Season 01") or from --season. Samples, unsupported
containers and files without an episode number are skipped.`,
	Args: cobra.ExactArgs(1),
	RunE: runSeasonCommand,
}

func init() {
	seasonCmd.Flags().StringVar(&seasonShowID, "show", "", "TMDB show id (see 'mediatag search show')")
	seasonCmd.Flags().IntVarP(&seasonNumber, "season", "s", 0, "season number when the folder name does not carry one")
	_ = seasonCmd.MarkFlagRequired("show")
	rootCmd.AddCommand(seasonCmd)
}

// plannedEpisode is a file matched to a season and episode number.
type plannedEpisode struct {
	Path    string
	Season  int
	Episode int
}

// planSeason lists the episode files of dir. season, when positive, is the
// only season accepted.
func planSeason(dir string, season int) ([]plannedEpisode, []skippedFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, err
	}

	folder := filepath.Base(filepath.Clean(dir))
	if season > 0 {
		folder = fmt.Sprintf("Season %d", season)
	}

	var planned []plannedEpisode
	var skipped []skippedFile
	for _, entry := range entries {
		name := entry.Name()
		path := filepath.Join(dir, name)
		if entry.IsDir() || strings.HasPrefix(name, ".") || !media.IsVideo(name) {
			continue
		}
		if media.IsSample(name) {
			skipped = append(skipped, skippedFile{Path: path, Reason: "sample"})
			continue
		}
		if _, ok := tagging.FormatFor(name); !ok {
			skipped = append(skipped, skippedFile{Path: path, Reason: "unsupported container"})
			continue
		}

		s, e, ok := parseEpisode(name, folder)
		if !ok {
			skipped = append(skipped, skippedFile{Path: path, Reason: "no episode number"})
			continue
		}
		if season > 0 && s != season {
			skipped = append(skipped, skippedFile{Path: path, Reason: fmt.Sprintf("season %d", s)})
			continue
		}
		planned = append(planned, plannedEpisode{Path: path, Season: s, Episode: e})
	}

	sort.Slice(planned, func(i, j int) bool {
		if planned[i].Season != planned[j].Season {
			return planned[i].Season < planned[j].Season
		}
		if planned[i].Episode != planned[j].Episode {
			return planned[i].Episode < planned[j].Episode
		}
		return planned[i].Path < planned[j].Path
	})
	return planned, skipped, nil
}

// parseEpisode numbers a file from its name. Release names the filename
// patterns miss are handed to the torrent name parser.
func parseEpisode(name, folder string) (int, int, bool) {
	if s, e, ok := media.ParseSeasonEpisode(name, folder); ok {
		return s, e, true
	}
	info, err := ptn.Parse(name)
	if err != nil || info.Episode <= 0 {
		return 0, 0, false
	}
	if info.Season > 0 {
		return info.Season, info.Episode, true
	}
	season, ok := media.ExtractSeasonNumber(folder)
	if !ok {
		return 0, 0, false
	}
	return season, info.Episode, true
}

func runSeasonCommand(cmd *cobra.Command, args []string) error {
	dir := args[0]
	planned, skipped, err := planSeason(dir, seasonNumber)
	if err != nil {
		return err
	}
	if len(planned) == 0 {
		writeReport(cmd.OutOrStdout(), outputTheme(cmd.OutOrStdout()), nil, skipped)
		return fmt.Errorf("no episode files found in %s", dir)
	}

	return withSource(func(src metadataSource) error {
		jobs, unresolved, err := resolveEpisodes(cmd.Context(), src, seasonShowID, planned)
		if err != nil {
			return err
		}
		cmdArgs := []string{"--show", seasonShowID}
		if seasonNumber > 0 {
			cmdArgs = append(cmdArgs, "--season", fmt.Sprint(seasonNumber))
		}
		return runTagJobs(cmd, "season", append(cmdArgs, dir), jobs, append(skipped, unresolved...))
	})
}

// resolveEpisodes fetches the show once and each needed season once, and
// matches the planned files to episodes. Only NOT_FOUND lookups skip a file;
// any other source failure aborts the run.
func resolveEpisodes(ctx context.Context, src metadataSource, showID string, planned []plannedEpisode) ([]tagging.Job, []skippedFile, error) {
	show, err := src.GetShow(ctx, showID)
	if err != nil {
		return nil, nil, fmt.Errorf("fetch show %s: %w", showID, err)
	}

	seasons := make(map[int]*media.TVSeason)
	var jobs []tagging.Job
	var unresolved []skippedFile
	for _, p := range planned {
		season, ok := seasons[p.Season]
		if !ok {
			season, err = src.GetSeason(ctx, show, p.Season)
			if err != nil {
				if !tmdb.IsNotFound(err) {
					return nil, nil, fmt.Errorf("fetch season %d: %w", p.Season, err)
				}
				season = nil
			}
			seasons[p.Season] = season
		}
		if season == nil {
			unresolved = append(unresolved, skippedFile{Path: p.Path, Reason: fmt.Sprintf("season %d not found", p.Season)})
			continue
		}

		ep := season.Episode(p.Episode)
		if ep == nil {
			ep, err = src.GetEpisode(ctx, showID, p.Season, p.Episode)
			if err != nil {
				if !tmdb.IsNotFound(err) {
					return nil, nil, fmt.Errorf("fetch S%02dE%02d: %w", p.Season, p.Episode, err)
				}
				unresolved = append(unresolved, skippedFile{Path: p.Path, Reason: fmt.Sprintf("S%02dE%02d not found", p.Season, p.Episode)})
				continue
			}
		}
		jobs = append(jobs, tagging.Job{Path: p.Path, Episode: ep})
	}
	return jobs, unresolved, nil
}

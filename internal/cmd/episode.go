package cmd

import (
	"fmt"

	"github.com/Aftnet/NetMediaInfoLib/internal/tagging"
	"github.com/spf13/cobra"
)

var (
	episodeShowID string
	episodeSeason int
	episodeNumber int
)

var episodeCmd = &cobra.Command{
	Use:   "episode --show TMDB_ID --season N --episode N FILE",
	Short: "Tag a single TV episode file",
	Long: `Fetch one episode together with its season and show from TMDB and write
its metadata into FILE.

Descriptions the episode lacks are taken from the season or the show, cover
art from the season or the show, and genres always from the show.`,
	Args: cobra.ExactArgs(1),
	RunE: runEpisodeCommand,
}

func init() {
	episodeCmd.Flags().StringVar(&episodeShowID, "show", "", "TMDB show id (see 'mediatag search show')")
	episodeCmd.Flags().IntVarP(&episodeSeason, "season", "s", 0, "season number")
	episodeCmd.Flags().IntVarP(&episodeNumber, "episode", "e", 0, "episode number")
	_ = episodeCmd.MarkFlagRequired("show")
	_ = episodeCmd.MarkFlagRequired("season")
	_ = episodeCmd.MarkFlagRequired("episode")
	rootCmd.AddCommand(episodeCmd)
}

func runEpisodeCommand(cmd *cobra.Command, args []string) error {
	return withSource(func(src metadataSource) error {
		ep, err := src.GetEpisode(cmd.Context(), episodeShowID, episodeSeason, episodeNumber)
		if err != nil {
			return fmt.Errorf("fetch episode S%02dE%02d of show %s: %w", episodeSeason, episodeNumber, episodeShowID, err)
		}

		jobs := []tagging.Job{{Path: args[0], Episode: ep}}
		cmdArgs := []string{"--show", episodeShowID, "--season", fmt.Sprint(episodeSeason), "--episode", fmt.Sprint(episodeNumber), args[0]}
		return runTagJobs(cmd, "episode", cmdArgs, jobs, nil)
	})
}

package cmd

import (
	"fmt"

	"github.com/Aftnet/NetMediaInfoLib/internal/tagging"
	"github.com/spf13/cobra"
)

var movieID string

var movieCmd = &cobra.Command{
	Use:   "movie --id TMDB_ID FILE...",
	Short: "Tag movie files",
	Long: `Fetch a movie from TMDB and write its metadata into each FILE.

Every file gets the same movie; use this for a movie split across several
files or kept in more than one container.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runMovieCommand,
}

func init() {
	movieCmd.Flags().StringVar(&movieID, "id", "", "TMDB movie id (see 'mediatag search movie')")
	_ = movieCmd.MarkFlagRequired("id")
	rootCmd.AddCommand(movieCmd)
}

func runMovieCommand(cmd *cobra.Command, args []string) error {
	return withSource(func(src metadataSource) error {
		movie, err := src.GetMovie(cmd.Context(), movieID)
		if err != nil {
			return fmt.Errorf("fetch movie %s: %w", movieID, err)
		}

		jobs := make([]tagging.Job, 0, len(args))
		for _, path := range args {
			jobs = append(jobs, tagging.Job{Path: path, Movie: movie})
		}
		return runTagJobs(cmd, "movie", append([]string{"--id", movieID}, args...), jobs, nil)
	})
}

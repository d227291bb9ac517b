package cmd

import (
	"fmt"
	"strings"

	"github.com/Aftnet/NetMediaInfoLib/internal/source/tmdb"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"
)

const overviewWidth = 60

var searchCmd = &cobra.Command{
	Use:       "search movie|show QUERY...",
	Short:     "Search TMDB for a movie or show id",
	Long:      `Search TMDB and list matching ids for use with the movie, episode and season commands.`,
	Args:      cobra.MinimumNArgs(2),
	ValidArgs: []string{"movie", "show"},
	RunE:      runSearchCommand,
}

func init() {
	rootCmd.AddCommand(searchCmd)
}

func runSearchCommand(cmd *cobra.Command, args []string) error {
	kind := args[0]
	query := strings.Join(args[1:], " ")
	if kind != "movie" && kind != "show" {
		return fmt.Errorf("unknown search kind %q: expected movie or show", kind)
	}
	if len(query) < tmdb.MinQueryLength {
		return fmt.Errorf("query %q is too short: use at least %d characters", query, tmdb.MinQueryLength)
	}

	return withSource(func(src metadataSource) error {
		var results []tmdb.SearchResult
		var err error
		if kind == "movie" {
			results, err = src.SearchMovies(cmd.Context(), query)
		} else {
			results, err = src.SearchShows(cmd.Context(), query)
		}
		if err != nil {
			return fmt.Errorf("search %s %q: %w", kind, query, err)
		}

		out := cmd.OutOrStdout()
		if len(results) == 0 {
			fmt.Fprintf(out, "No %s found for %q\n", kind, query)
			return nil
		}

		rows := make([][]string, 0, len(results))
		for _, r := range results {
			rows = append(rows, []string{r.ID, r.Title, r.ReleaseDate, runewidth.Truncate(r.Overview, overviewWidth, "…")})
		}
		fmt.Fprintln(out, renderTable([]string{"ID", "Title", "Released", "Overview"}, rows, []columnAlignment{alignRight}))
		return nil
	})
}

package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/Aftnet/NetMediaInfoLib/internal/tagging"
	"github.com/Aftnet/NetMediaInfoLib/internal/theme"
	"github.com/mattn/go-isatty"
	"github.com/mattn/go-runewidth"
)

const maxSubjectWidth = 48

// skippedFile is a file a batch command chose not to tag.
type skippedFile struct {
	Path   string
	Reason string
}

func shouldColorize(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func outputTheme(w io.Writer) theme.Theme {
	if shouldColorize(w) {
		return theme.New()
	}
	return theme.New(theme.Plain())
}

// writeReport prints one line per file followed by a summary.
func writeReport(w io.Writer, th theme.Theme, results []tagging.Result, skipped []skippedFile) {
	width := 0
	for _, res := range results {
		width = max(width, runewidth.StringWidth(res.Job.Subject()))
	}
	width = min(width, maxSubjectWidth)

	tagged := 0
	for _, res := range results {
		kind := "movie"
		if res.Job.Episode != nil {
			kind = "episode"
		}
		subject := runewidth.FillRight(runewidth.Truncate(res.Job.Subject(), width, "…"), width)

		if res.OK() {
			tagged++
			fmt.Fprintf(w, "%s %s %s  %s\n", th.Marker(kind), th.Badge(theme.StatusSuccess, " OK "), subject, res.Job.Path)
			continue
		}
		fmt.Fprintf(w, "%s %s %s  %s\n", th.Marker(kind), th.Badge(theme.StatusError, "FAIL"), subject, res.Job.Path)
		fmt.Fprintf(w, "    %s\n", th.Faint(res.Err.Error()))
	}

	for _, s := range skipped {
		fmt.Fprintf(w, "%s %s %s  %s\n", th.Marker("skipped"), th.Badge(theme.StatusSkipped, "SKIP"), runewidth.FillRight(s.Reason, width), s.Path)
	}

	summary := fmt.Sprintf("Tagged %d of %d files", tagged, len(results))
	if len(skipped) > 0 {
		summary += fmt.Sprintf(", %d skipped", len(skipped))
	}
	fmt.Fprintln(w, summary)
}

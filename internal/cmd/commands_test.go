package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Aftnet/NetMediaInfoLib/internal/apple"
	"github.com/Aftnet/NetMediaInfoLib/internal/config"
	"github.com/Aftnet/NetMediaInfoLib/internal/container"
	"github.com/Aftnet/NetMediaInfoLib/internal/log"
	"github.com/Aftnet/NetMediaInfoLib/internal/source/tmdb"
	"github.com/Aftnet/NetMediaInfoLib/internal/tagging"
	"github.com/google/go-cmp/cmp"
)

func TestMovieCommand(t *testing.T) {
	env := newTestEnv(t)
	env.opener.Put("/media/Heat.mp4", container.Properties{VideoWidth: 1920, VideoHeight: 1080})
	env.opener.Put("/media/Heat.mkv", container.Properties{VideoWidth: 720, VideoHeight: 480})

	out, err := env.run(t, "movie", "--id", "949", "/media/Heat.mp4", "/media/Heat.mkv")
	if err != nil {
		t.Fatalf("movie command error = %v\n%s", err, out)
	}
	if !strings.Contains(out, "Tagged 2 of 2 files") {
		t.Errorf("output missing summary:\n%s", out)
	}

	if got := env.opener.AppleTag("/media/Heat.mp4").Text(apple.Title); !cmp.Equal(got, []string{"Heat"}) {
		t.Errorf("mp4 title = %v, want [Heat]", got)
	}
	mkv := env.opener.MatroskaTag("/media/Heat.mkv")
	if got, _ := mkv.First(container.TagTitle); got != "Heat" {
		t.Errorf("mkv title = %q, want Heat", got)
	}
	if got, _ := mkv.First("TMDB_MOVIEID"); got != "949" {
		t.Errorf("mkv TMDB_MOVIEID = %q, want 949", got)
	}
	if env.source.saves != 1 {
		t.Errorf("SaveCache calls = %d, want 1", env.source.saves)
	}
}

func TestMovieCommand_ReportsFailures(t *testing.T) {
	env := newTestEnv(t)
	env.opener.Put("/media/Heat.mp4", container.Properties{})

	out, err := env.run(t, "movie", "--id", "949", "/media/Heat.mp4", "/media/missing.mp4", "/media/Heat.avi")
	if err == nil {
		t.Fatal("movie command error = nil, want failure")
	}
	if want := "2 of 3 files failed to tag"; err.Error() != want {
		t.Errorf("error = %q, want %q", err, want)
	}
	if !strings.Contains(out, "FAIL") || !strings.Contains(out, "Tagged 1 of 3 files") {
		t.Errorf("output missing failure report:\n%s", out)
	}
	if env.opener.Opens("/media/Heat.avi") != 0 {
		t.Error("unsupported container was opened")
	}
}

func TestMovieCommand_UnknownMovie(t *testing.T) {
	env := newTestEnv(t)
	env.opener.Put("/media/Heat.mp4", container.Properties{})

	_, err := env.run(t, "movie", "--id", "1", "/media/Heat.mp4")
	if !tmdb.IsNotFound(err) {
		t.Fatalf("error = %v, want NOT_FOUND", err)
	}
	if env.opener.Opens("/media/Heat.mp4") != 0 {
		t.Error("file opened although the movie was not found")
	}
}

func TestEpisodeCommand(t *testing.T) {
	env := newTestEnv(t)
	env.opener.Put("/tv/bb.mkv", container.Properties{})

	out, err := env.run(t, "episode", "--show", "1396", "--season", "1", "--episode", "2", "/tv/bb.mkv")
	if err != nil {
		t.Fatalf("episode command error = %v\n%s", err, out)
	}
	if !strings.Contains(out, "Breaking Bad S01E02") {
		t.Errorf("output missing subject:\n%s", out)
	}

	tag := env.opener.MatroskaTag("/tv/bb.mkv")
	want := map[string]string{
		container.TagTitle:       "Cat's in the Bag...",
		container.TagDescription: "A dying man turns to crime.",
		tagging.TagMediaType:     "TV_SHOW",
		tagging.TagEpisodeNumber: "2",
		tagging.TagShowTitle:     "Breaking Bad",
	}
	for name, value := range want {
		if got, _ := tag.First(name); got != value {
			t.Errorf("%s = %q, want %q", name, got, value)
		}
	}
	if diff := cmp.Diff([]byte("season-poster"), tag.Cover()); diff != "" {
		t.Errorf("cover mismatch (-want +got):\n%s", diff)
	}
}

func TestSeasonCommand(t *testing.T) {
	env := newTestEnv(t)
	dir := filepath.Join(t.TempDir(), "Season 01")
	names := []string{"Breaking.Bad.S01E01.mkv", "02.mp4", "Breaking.Bad.S01E07.mkv", "sample.mkv", "notes.txt"}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	for _, name := range names {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, nil, 0o644); err != nil {
			t.Fatal(err)
		}
		env.opener.Put(path, container.Properties{VideoWidth: 1280, VideoHeight: 720})
	}

	out, err := env.run(t, "season", "--show", "1396", dir)
	if err != nil {
		t.Fatalf("season command error = %v\n%s", err, out)
	}
	if !strings.Contains(out, "Tagged 2 of 2 files, 2 skipped") {
		t.Errorf("output missing summary:\n%s", out)
	}
	if !strings.Contains(out, "S01E07 not found") {
		t.Errorf("output missing unresolved episode:\n%s", out)
	}

	if got := env.opener.AppleTag(filepath.Join(dir, "02.mp4")).Text(apple.Title); !cmp.Equal(got, []string{"Cat's in the Bag..."}) {
		t.Errorf("02.mp4 title = %v", got)
	}
	if env.opener.Saves(filepath.Join(dir, "Breaking.Bad.S01E07.mkv")) != 0 {
		t.Error("unresolved episode was saved")
	}
}

func TestSeasonCommand_SourceFailureFails(t *testing.T) {
	env := newTestEnv(t)
	env.source.seasonErr = &tmdb.SourceError{Source: "tmdb", Code: tmdb.CodeAuthFailed, Message: "invalid api key"}
	dir := filepath.Join(t.TempDir(), "Season 01")
	writeFiles(t, dir, "Breaking.Bad.S01E01.mkv")
	env.opener.Put(filepath.Join(dir, "Breaking.Bad.S01E01.mkv"), container.Properties{})

	_, err := env.run(t, "season", "--show", "1396", dir)
	if err == nil || !strings.Contains(err.Error(), "invalid api key") {
		t.Fatalf("error = %v, want invalid api key", err)
	}
	if env.opener.Saves(filepath.Join(dir, "Breaking.Bad.S01E01.mkv")) != 0 {
		t.Error("file saved after a failed season lookup")
	}
}

func TestSeasonCommand_EmptyDirectory(t *testing.T) {
	env := newTestEnv(t)
	dir := t.TempDir()

	_, err := env.run(t, "season", "--show", "1396", dir)
	if err == nil || !strings.Contains(err.Error(), "no episode files") {
		t.Fatalf("error = %v, want no episode files", err)
	}
	if env.source.saves != 0 {
		t.Error("source created for an empty directory")
	}
}

func TestSearchCommand(t *testing.T) {
	env := newTestEnv(t)
	env.source.results = []tmdb.SearchResult{
		{ID: "949", Title: "Heat", ReleaseDate: "1995-12-15", Overview: "Obsessive master thief Neil McCauley leads a top-notch crew."},
	}

	out, err := env.run(t, "search", "movie", "heat", "1995")
	if err != nil {
		t.Fatalf("search error = %v", err)
	}
	if diff := cmp.Diff([]string{"movie:heat 1995"}, env.source.queries); diff != "" {
		t.Errorf("queries mismatch (-want +got):\n%s", diff)
	}
	for _, want := range []string{"949", "Heat", "1995-12-15"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	env.source.results = nil
	out, err = env.run(t, "search", "show", "nothing here")
	if err != nil {
		t.Fatalf("search error = %v", err)
	}
	if !strings.Contains(out, `No show found for "nothing here"`) {
		t.Errorf("output = %q", out)
	}
}

func TestSearchCommand_RejectsBadInput(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name string
		args []string
	}{
		{name: "unknown_kind", args: []string{"search", "person", "heat"}},
		{name: "short_query", args: []string{"search", "movie", "up"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := env.run(t, tc.args...); err == nil {
				t.Error("search error = nil, want error")
			}
		})
	}
	if len(env.source.queries) != 0 {
		t.Errorf("queries sent = %v, want none", env.source.queries)
	}
}

func TestShowCommand(t *testing.T) {
	env := newTestEnv(t)
	env.opener.Put("/media/Heat.mp4", container.Properties{VideoWidth: 1920, VideoHeight: 1080})
	if _, err := env.run(t, "movie", "--id", "949", "/media/Heat.mp4"); err != nil {
		t.Fatalf("movie command error = %v", err)
	}

	out, err := env.run(t, "show", "/media/Heat.mp4")
	if err != nil {
		t.Fatalf("show command error = %v", err)
	}
	for _, want := range []string{"(1920x1080)", "Heat", "https://www.themoviedb.org/movie/949", "covr[0]", "11 bytes"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if env.opener.Saves("/media/Heat.mp4") != 1 {
		t.Error("show saved the file")
	}
}

func TestAtomValue(t *testing.T) {
	tests := []struct {
		name string
		atom container.Atom
		want string
	}{
		{name: "text", atom: container.Atom{Text: []string{"Action", "Crime"}}, want: "Action; Crime"},
		{name: "byte", atom: container.Atom{Data: []byte{10}}, want: "10"},
		{name: "int16", atom: container.Atom{Data: []byte{0xff, 0xfe}}, want: "-2"},
		{name: "int32", atom: container.Atom{Data: []byte{0, 0, 1, 0}}, want: "256"},
		{name: "blob", atom: container.Atom{Data: []byte{1, 2, 3}}, want: "3 bytes"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := atomValue(tc.atom); got != tc.want {
				t.Errorf("atomValue() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestConfigCommands(t *testing.T) {
	env := newTestEnv(t)

	out, err := env.run(t, "config")
	if err != nil {
		t.Fatalf("config error = %v", err)
	}
	if strings.Contains(out, "test-api-key") || !strings.Contains(out, "********-key") {
		t.Errorf("api key not masked:\n%s", out)
	}

	if _, err := env.run(t, "--workers", "2", "config", "set", config.KeyLogRetentionDays, "7"); err != nil {
		t.Fatalf("config set error = %v", err)
	}
	cfg, err := config.LoadFrom(env.config)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if cfg.LogRetentionDays != 7 {
		t.Errorf("LogRetentionDays = %d, want 7", cfg.LogRetentionDays)
	}
	if cfg.WorkerCount != config.DefaultConfig().WorkerCount {
		t.Errorf("WorkerCount = %d, flag override was persisted", cfg.WorkerCount)
	}

	if _, err := env.run(t, "config", "set", "bogus", "1"); err == nil {
		t.Error("config set bogus error = nil, want error")
	}

	out, err = env.run(t, "config", "path")
	if err != nil {
		t.Fatalf("config path error = %v", err)
	}
	if strings.TrimSpace(out) != env.config {
		t.Errorf("config path = %q, want %q", strings.TrimSpace(out), env.config)
	}
}

func TestMaskSecret(t *testing.T) {
	tests := map[string]string{
		"":             "(not set)",
		"abc":          "***",
		"abcdef123456": "********3456",
	}
	for in, want := range tests {
		if got := maskSecret(in); got != want {
			t.Errorf("maskSecret(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestHistoryCommand(t *testing.T) {
	env := newTestEnv(t)
	env.opener.Put("/media/Heat.mp4", container.Properties{})

	out, err := env.run(t, "history")
	if err != nil {
		t.Fatalf("history error = %v", err)
	}
	if !strings.Contains(out, "No tagging sessions recorded.") {
		t.Errorf("output = %q", out)
	}

	_, _ = env.run(t, "movie", "--id", "949", "/media/Heat.mp4", "/media/gone.mkv")

	sessions, err := log.ReadSessions(0)
	if err != nil || len(sessions) != 1 {
		t.Fatalf("ReadSessions() = %d sessions, %v; want 1", len(sessions), err)
	}
	meta := sessions[0].Metadata
	if meta.SuccessfulOps != 1 || meta.FailedOps != 1 {
		t.Errorf("session ops = %d ok / %d failed, want 1/1", meta.SuccessfulOps, meta.FailedOps)
	}

	out, err = env.run(t, "history")
	if err != nil {
		t.Fatalf("history error = %v", err)
	}
	if !strings.Contains(out, meta.SessionID) || !strings.Contains(out, "movie --id 949") {
		t.Errorf("history output missing session:\n%s", out)
	}

	out, err = env.run(t, "history", "--session", meta.SessionID)
	if err != nil {
		t.Fatalf("history --session error = %v", err)
	}
	for _, want := range []string{"/media/gone.mkv", "failed", "Heat"} {
		if !strings.Contains(out, want) {
			t.Errorf("session output missing %q:\n%s", want, out)
		}
	}

	if _, err := env.run(t, "history", "--session", "nope"); err == nil {
		t.Error("history --session nope error = nil, want error")
	}
}

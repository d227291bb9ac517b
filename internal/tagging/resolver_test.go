package tagging

import (
	"testing"

	"github.com/Aftnet/NetMediaInfoLib/internal/media"
	"github.com/google/go-cmp/cmp"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name       string
		candidates []string
		want       string
		wantCalls  int
	}{
		{"first valid wins", []string{"E", "S", "D"}, "E", 1},
		{"skips empty", []string{"", "S", "D"}, "S", 2},
		{"falls through to last", []string{"", "", "D"}, "D", 3},
		{"none valid returns last", []string{"", "", ""}, "", 3},
		{"no candidates", nil, "", 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			calls := 0
			candidates := make([]func() string, 0, len(tc.candidates))
			for _, c := range tc.candidates {
				candidates = append(candidates, func() string {
					calls++
					return c
				})
			}

			got := Resolve(NonEmpty, candidates...)
			if got != tc.want {
				t.Errorf("Resolve() = %q, want %q", got, tc.want)
			}
			if calls != tc.wantCalls {
				t.Errorf("Resolve() evaluated %d candidates, want %d", calls, tc.wantCalls)
			}
		})
	}
}

func TestResolve_Images(t *testing.T) {
	season := []byte("season")
	show := []byte("show")

	got := Resolve(Present, func() []byte { return nil }, func() []byte { return show })
	if string(got) != "show" {
		t.Errorf("Resolve() = %q, want show", got)
	}
	got = Resolve(Present, func() []byte { return season }, func() []byte { return show })
	if string(got) != "season" {
		t.Errorf("Resolve() = %q, want season", got)
	}
	// An empty but present image still counts.
	got = Resolve(Present, func() []byte { return []byte{} }, func() []byte { return show })
	if got == nil || len(got) != 0 {
		t.Errorf("Resolve() = %v, want empty image", got)
	}
}

func testChain(episodeDesc, seasonDesc, showDesc string) *media.TVEpisode {
	show := &media.TVShow{
		ID:          "Y",
		Title:       "Show",
		Description: showDesc,
		Genres:      []string{"Drama"},
		Source:      media.Source{Name: "TMDB TV Shows", IDTagLabel: "TMDB_TVSHOWID"},
	}
	season := &media.TVSeason{Number: 2, Title: "S2", Description: seasonDesc}
	show.AddSeason(season)
	ep := &media.TVEpisode{Number: 5, Title: "E5", Description: episodeDesc}
	season.AddEpisode(ep)
	return ep
}

func TestEpisodeFields_DescriptionFallback(t *testing.T) {
	tests := []struct {
		name    string
		episode string
		season  string
		show    string
		want    string
	}{
		{"episode wins", "E", "S", "D", "E"},
		{"episode wins over empty ancestors", "E", "", "", "E"},
		{"season when episode empty", "", "S", "D", "S"},
		{"show when episode and season empty", "", "", "D", "D"},
		{"absent everywhere", "", "", "", ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			fields, err := EpisodeFields(testChain(tc.episode, tc.season, tc.show))
			if err != nil {
				t.Fatalf("EpisodeFields() error = %v", err)
			}
			if fields.Description != tc.want {
				t.Errorf("Description = %q, want %q", fields.Description, tc.want)
			}
		})
	}
}

func TestEpisodeFields(t *testing.T) {
	ep := testChain("", "", "ShowDesc")
	ep.Season.Show.Image = []byte("show-art")

	got, err := EpisodeFields(ep)
	if err != nil {
		t.Fatalf("EpisodeFields() error = %v", err)
	}
	want := Fields{
		Kind:          media.KindEpisode,
		Title:         "E5",
		Genres:        []string{"Drama"},
		Description:   "ShowDesc",
		Cover:         []byte("show-art"),
		ID:            "Y",
		IDTagLabel:    "TMDB_TVSHOWID",
		SeasonNumber:  2,
		EpisodeNumber: 5,
		ShowTitle:     "Show",
		SeasonTitle:   "S2",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("EpisodeFields() mismatch (-want +got)\n%s", diff)
	}

	// Season art takes precedence over show art.
	ep.Season.Image = []byte("season-art")
	got, _ = EpisodeFields(ep)
	if string(got.Cover) != "season-art" {
		t.Errorf("Cover = %q, want season-art", got.Cover)
	}
}

func TestEpisodeFields_TitleHasNoFallback(t *testing.T) {
	ep := testChain("", "", "")
	ep.Title = ""

	got, err := EpisodeFields(ep)
	if err != nil {
		t.Fatalf("EpisodeFields() error = %v", err)
	}
	if got.Title != "" {
		t.Errorf("Title = %q, want empty", got.Title)
	}
}

func TestEpisodeFields_IncompleteChain(t *testing.T) {
	cases := map[string]*media.TVEpisode{
		"nil episode": nil,
		"no season":   {Number: 1, Title: "Orphan"},
		"no show":     {Number: 1, Season: &media.TVSeason{Number: 1}},
	}
	for name, ep := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := EpisodeFields(ep); err == nil {
				t.Error("EpisodeFields() expected error")
			}
		})
	}
}

func TestMovieFields(t *testing.T) {
	movie := &media.Movie{
		ID:          "X",
		Title:       "T",
		Description: "D",
		Genres:      []string{"G1", "G2"},
		Image:       []byte("poster"),
		Source:      media.Source{IDTagLabel: "TMDB_MOVIEID"},
	}
	got, err := MovieFields(movie)
	if err != nil {
		t.Fatalf("MovieFields() error = %v", err)
	}
	want := Fields{
		Kind:        media.KindMovie,
		Title:       "T",
		Genres:      []string{"G1", "G2"},
		Description: "D",
		Cover:       []byte("poster"),
		ID:          "X",
		IDTagLabel:  "TMDB_MOVIEID",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("MovieFields() mismatch (-want +got)\n%s", diff)
	}

	if _, err := MovieFields(nil); err == nil {
		t.Error("MovieFields(nil) expected error")
	}
}

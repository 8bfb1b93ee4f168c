package embedurl

import (
	"errors"
	"testing"
)

func TestVidsrcMovie(t *testing.T) {
	got, err := VidsrcMovie(Options{TMDBID: 550})
	if err != nil {
		t.Fatalf("VidsrcMovie failed: %v", err)
	}
	want := "https://vidsrc.xyz/embed/movie?tmdb=550"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestVidsrcMovie_AllOptions(t *testing.T) {
	got, err := VidsrcMovie(Options{TMDBID: 550, IMDBID: "0137523", Autoplay: true, Locale: "en"})
	if err != nil {
		t.Fatalf("VidsrcMovie failed: %v", err)
	}
	// url.Values encodes keys alphabetically.
	want := "https://vidsrc.xyz/embed/movie?autoplay=1&ds_lang=en&imdb=tt0137523&tmdb=550"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestVidsrcEpisode(t *testing.T) {
	got, err := VidsrcEpisode(Options{TMDBID: 1399}, 1, 2)
	if err != nil {
		t.Fatalf("VidsrcEpisode failed: %v", err)
	}
	want := "https://vidsrc.xyz/embed/tv?episode=2&season=1&tmdb=1399"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestVidsrcProMovie_PrefersTMDBID(t *testing.T) {
	got, err := VidsrcProMovie(Options{TMDBID: 550, IMDBID: "tt0137523"})
	if err != nil {
		t.Fatal(err)
	}
	if got != "https://vidsrc.pro/embed/movie/550" {
		t.Errorf("unexpected url %q", got)
	}

	got, err = VidsrcProMovie(Options{IMDBID: "0137523"})
	if err != nil {
		t.Fatal(err)
	}
	if got != "https://vidsrc.pro/embed/movie/tt0137523" {
		t.Errorf("unexpected url %q", got)
	}
}

func TestVidsrcProEpisode(t *testing.T) {
	got, err := VidsrcProEpisode(Options{TMDBID: 1399}, 3, 9)
	if err != nil {
		t.Fatal(err)
	}
	if got != "https://vidsrc.pro/embed/tv/1399/3/9" {
		t.Errorf("unexpected url %q", got)
	}
}

func TestSuperEmbedMovie(t *testing.T) {
	got, err := SuperEmbedMovie(Options{TMDBID: 550})
	if err != nil {
		t.Fatal(err)
	}
	want := "https://multiembed.mov/?tmdb=1&video_id=550"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}

	got, err = SuperEmbedMovie(Options{IMDBID: "tt0137523"})
	if err != nil {
		t.Fatal(err)
	}
	want = "https://multiembed.mov/?video_id=tt0137523"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestSuperEmbedEpisode(t *testing.T) {
	got, err := SuperEmbedEpisode(Options{TMDBID: 1399}, 1, 2)
	if err != nil {
		t.Fatal(err)
	}
	want := "https://multiembed.mov/?tmdb=1&video_id=1399&s=1&e=2"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestMissingIdentifier(t *testing.T) {
	builders := map[string]func() (string, error){
		"VidsrcMovie":     func() (string, error) { return VidsrcMovie(Options{}) },
		"VidsrcEpisode":   func() (string, error) { return VidsrcEpisode(Options{}, 1, 1) },
		"VidsrcProMovie":  func() (string, error) { return VidsrcProMovie(Options{}) },
		"SuperEmbedMovie": func() (string, error) { return SuperEmbedMovie(Options{}) },
	}
	for name, build := range builders {
		if _, err := build(); !errors.Is(err, ErrMissingIdentifier) {
			t.Errorf("%s: expected ErrMissingIdentifier, got %v", name, err)
		}
	}
}

func TestNormalizeIMDBID(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"tt0137523", "tt0137523"},
		{"0137523", "tt0137523"},
		{"  0137523  ", "tt0137523"},
		{"", ""},
		{"   ", ""},
	}
	for _, tt := range tests {
		if got := NormalizeIMDBID(tt.in); got != tt.want {
			t.Errorf("NormalizeIMDBID(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

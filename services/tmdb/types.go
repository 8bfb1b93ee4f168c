package tmdb

// MovieSummary is a lightweight list-page entry.
type MovieSummary struct {
	ID            int64   `json:"id"`
	Title         string  `json:"title"`
	OriginalTitle string  `json:"original_title"`
	Overview      string  `json:"overview"`
	ReleaseDate   string  `json:"release_date"`
	PosterPath    string  `json:"poster_path"`
	BackdropPath  string  `json:"backdrop_path"`
	VoteAverage   float64 `json:"vote_average"`
	VoteCount     int     `json:"vote_count"`
	Popularity    float64 `json:"popularity"`
	GenreIDs      []int64 `json:"genre_ids"`
}

// TVSummary is a lightweight list-page entry for series.
type TVSummary struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	OriginalName string  `json:"original_name"`
	Overview     string  `json:"overview"`
	FirstAirDate string  `json:"first_air_date"`
	PosterPath   string  `json:"poster_path"`
	BackdropPath string  `json:"backdrop_path"`
	VoteAverage  float64 `json:"vote_average"`
	VoteCount    int     `json:"vote_count"`
	Popularity   float64 `json:"popularity"`
	GenreIDs     []int64 `json:"genre_ids"`
}

// MoviePage is one page of movie list results.
type MoviePage struct {
	Page         int            `json:"page"`
	TotalPages   int            `json:"total_pages"`
	TotalResults int            `json:"total_results"`
	Results      []MovieSummary `json:"results"`
}

// TVPage is one page of series list results.
type TVPage struct {
	Page         int         `json:"page"`
	TotalPages   int         `json:"total_pages"`
	TotalResults int         `json:"total_results"`
	Results      []TVSummary `json:"results"`
}

// Genre is a taxonomy entry.
type Genre struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// ExternalIDs carries cross-reference ids for an item.
type ExternalIDs struct {
	IMDBID string `json:"imdb_id"`
}

// MovieDetail is the full record for one movie, including cross-reference ids.
type MovieDetail struct {
	ID            int64       `json:"id"`
	IMDBID        string      `json:"imdb_id"`
	Title         string      `json:"title"`
	OriginalTitle string      `json:"original_title"`
	Overview      string      `json:"overview"`
	ReleaseDate   string      `json:"release_date"`
	PosterPath    string      `json:"poster_path"`
	BackdropPath  string      `json:"backdrop_path"`
	Runtime       int         `json:"runtime"`
	VoteAverage   float64     `json:"vote_average"`
	VoteCount     int         `json:"vote_count"`
	Popularity    float64     `json:"popularity"`
	Genres        []Genre     `json:"genres"`
	ExternalIDs   ExternalIDs `json:"external_ids"`
}

// TVDetail is the full record for one series.
type TVDetail struct {
	ID               int64       `json:"id"`
	Name             string      `json:"name"`
	OriginalName     string      `json:"original_name"`
	Overview         string      `json:"overview"`
	FirstAirDate     string      `json:"first_air_date"`
	LastAirDate      string      `json:"last_air_date"`
	PosterPath       string      `json:"poster_path"`
	BackdropPath     string      `json:"backdrop_path"`
	NumberOfSeasons  int         `json:"number_of_seasons"`
	NumberOfEpisodes int         `json:"number_of_episodes"`
	Status           string      `json:"status"`
	VoteAverage      float64     `json:"vote_average"`
	VoteCount        int         `json:"vote_count"`
	Popularity       float64     `json:"popularity"`
	Genres           []Genre     `json:"genres"`
	ExternalIDs      ExternalIDs `json:"external_ids"`
	Networks         []struct {
		Name string `json:"name"`
	} `json:"networks"`
	CreatedBy []struct {
		Name string `json:"name"`
	} `json:"created_by"`
	Seasons []SeasonEntry `json:"seasons"`
}

// SeasonEntry is the per-season rollup embedded in a series detail.
type SeasonEntry struct {
	SeasonNumber int    `json:"season_number"`
	EpisodeCount int    `json:"episode_count"`
	AirDate      string `json:"air_date"`
	Name         string `json:"name"`
}

// SeasonDetail lists one season's episodes.
type SeasonDetail struct {
	SeasonNumber int            `json:"season_number"`
	Episodes     []EpisodeEntry `json:"episodes"`
}

// EpisodeEntry is one episode within a season detail.
type EpisodeEntry struct {
	SeasonNumber  int     `json:"season_number"`
	EpisodeNumber int     `json:"episode_number"`
	Name          string  `json:"name"`
	Overview      string  `json:"overview"`
	AirDate       string  `json:"air_date"`
	Runtime       int     `json:"runtime"`
	StillPath     string  `json:"still_path"`
	VoteAverage   float64 `json:"vote_average"`
}

type genreListResponse struct {
	Genres []Genre `json:"genres"`
}

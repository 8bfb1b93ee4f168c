package models

// ListParams are the normalized query parameters for catalog list endpoints.
type ListParams struct {
	Page      int     `json:"page"`
	Limit     int     `json:"limit"`
	Genre     string  `json:"genre,omitempty"` // store id or case-insensitive name
	Year      int     `json:"year,omitempty"`
	MinRating float64 `json:"minRating,omitempty"`
	Search    string  `json:"search,omitempty"`
	SortBy    string  `json:"sortBy,omitempty"`
	Order     string  `json:"order,omitempty"` // asc|desc
}

// MovieList is the paginated response envelope for movie listings.
type MovieList struct {
	Items       []Movie `json:"items"`
	TotalPages  int     `json:"totalPages"`
	CurrentPage int     `json:"currentPage"`
	Total       int     `json:"total"`
}

// TVShowList is the paginated response envelope for show listings.
type TVShowList struct {
	Items       []TVShow `json:"items"`
	TotalPages  int      `json:"totalPages"`
	CurrentPage int      `json:"currentPage"`
	Total       int      `json:"total"`
}

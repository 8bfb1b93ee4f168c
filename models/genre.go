package models

// Genre is a taxonomy entry from the external source, referenced by movies
// and shows through join tables. Deletion is blocked at the application
// layer while anything still references it.
type Genre struct {
	ID     int64  `json:"id"`
	TMDBID int64  `json:"tmdbId"`
	Name   string `json:"name"`
}

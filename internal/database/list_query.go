package database

import "strings"

// ListQuery is the repository-level shape of a catalog list request. Sort
// column and order are validated by the caller; everything else is bound as
// a parameter.
type ListQuery struct {
	Page      int
	Limit     int
	GenreIDs  []int64 // OR-combined when multiple
	Year      int
	MinRating float64
	Search    string // literal substring, matched case-insensitively
	SortBy    string // column name, already whitelisted
	Order     string // "ASC" or "DESC"
}

func (q ListQuery) offset() int {
	return (q.Page - 1) * q.Limit
}

// escapeLike escapes LIKE metacharacters so the pattern matches the input
// as a literal substring. The queries using it must specify ESCAPE '\'.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// placeholders returns a comma-separated list of n "?" markers.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat("?,", n-1) + "?"
}

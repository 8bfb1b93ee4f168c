package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"streamvault/models"
)

// parseListParams reads the catalog list query string. Values are passed
// through as-is; the catalog service owns clamping and defaults.
func parseListParams(r *http.Request) models.ListParams {
	q := r.URL.Query()
	return models.ListParams{
		Page:      atoiDefault(q.Get("page"), 0),
		Limit:     atoiDefault(q.Get("limit"), 0),
		Genre:     strings.TrimSpace(q.Get("genre")),
		Year:      atoiDefault(q.Get("year"), 0),
		MinRating: atofDefault(q.Get("minRating"), 0),
		Search:    strings.TrimSpace(q.Get("search")),
		SortBy:    strings.TrimSpace(q.Get("sortBy")),
		Order:     strings.TrimSpace(q.Get("order")),
	}
}

func atoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

func atofDefault(s string, def float64) float64 {
	if s == "" {
		return def
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return def
	}
	return f
}

func pathID(vars map[string]string, key string) (int64, bool) {
	id, err := strconv.ParseInt(vars[key], 10, 64)
	if err != nil || id < 1 {
		return 0, false
	}
	return id, true
}

package api

import (
	"net/http"
	"regexp"
	"strings"
)

var (
	repeatedSlashes = regexp.MustCompile(`/+`)
	numericSegment  = regexp.MustCompile(`^[0-9]+$`)
)

// normalizeEndpoint collapses repeated slashes and trims a leading and a
// trailing slash: "//bot_templates//5/" becomes "bot_templates/5".
func normalizeEndpoint(endpoint string) string {
	endpoint = repeatedSlashes.ReplaceAllString(endpoint, "/")
	endpoint = strings.TrimPrefix(endpoint, "/")
	return strings.TrimSuffix(endpoint, "/")
}

// normalizeMethod upper-cases the method and maps anything other than
// GET, POST, PUT or DELETE to GET.
func normalizeMethod(method string) string {
	switch m := strings.ToUpper(method); m {
	case http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete:
		return m
	default:
		return http.MethodGet
	}
}

// metricLabel reduces an endpoint to its route: the query is dropped and
// numeric path segments become ":id".
func metricLabel(endpoint string) string {
	path, _, _ := strings.Cut(endpoint, "?")
	parts := strings.Split(path, "/")
	for i, p := range parts {
		if numericSegment.MatchString(p) {
			parts[i] = ":id"
		}
	}
	return strings.Join(parts, "/")
}

package catalog

import (
	"regexp"
	"strings"
)

// creationKind matches the creation kind segment of a show detail URL,
// e.g. "/creations/performance/12345/".
var creationKind = regexp.MustCompile(`/creations/([^/]+)/`)

// TypeNumFromURL derives the numeric classification code from a show's
// detail URL.  Only two kinds are mapped upstream; everything else yields
// an empty string and is stored as NULL.
func TypeNumFromURL(url string) string {
	if url == "" {
		return ""
	}
	m := creationKind.FindStringSubmatch(url)
	if m == nil {
		return ""
	}
	switch strings.ToLower(m[1]) {
	case "performance":
		return "9"
	case "concert":
		return "4"
	default:
		return ""
	}
}

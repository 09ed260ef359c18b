package artifact

import "strings"

// Repository is a Maven repository reachable over http(s) or file://.
type Repository struct {
	ID  string
	URL string
}

// Central is the Maven Central repository.
var Central = Repository{ID: "central", URL: "https://repo1.maven.org/maven2/"}

// String returns "id (url)".
func (r Repository) String() string { return r.ID + " (" + r.URL + ")" }

// BaseURL returns URL without a trailing slash.
func (r Repository) BaseURL() string { return strings.TrimRight(r.URL, "/") }

// ReposKey returns a string identifying an ordered repository list.
func ReposKey(repos []Repository) string {
	var b strings.Builder
	for i, r := range repos {
		if i > 0 {
			b.WriteByte('|')
		}
		b.WriteString(r.ID)
		b.WriteByte('=')
		b.WriteString(r.BaseURL())
	}
	return b.String()
}

package version

import (
	"fmt"
	"strings"
)

// Version is a parsed Maven-style version string.
//
// Versions are ordered component by component. Numeric components compare
// numerically, qualifiers compare by their well-known rank (alpha, beta,
// milestone, rc, snapshot, release, sp) and unknown qualifiers compare
// lexicographically after sp. Trailing zero components and release
// qualifiers are insignificant, so "1", "1.0" and "1.0.0-final" are equal.
//
// The zero Version is empty and sorts before every other version.
type Version struct {
	raw   string
	items []item
}

type item struct {
	digits  string // numeric component without leading zeros; empty for qualifiers
	qual    string // lowercased qualifier
	numeric bool
}

// Qualifier ranks. Unknown qualifiers rank after sp.
const (
	rankAlpha = iota
	rankBeta
	rankMilestone
	rankRC
	rankSnapshot
	rankRelease
	rankSP
	rankUnknown
)

var qualifierRanks = map[string]int{
	"alpha":     rankAlpha,
	"a":         rankAlpha,
	"beta":      rankBeta,
	"b":         rankBeta,
	"milestone": rankMilestone,
	"m":         rankMilestone,
	"rc":        rankRC,
	"cr":        rankRC,
	"snapshot":  rankSnapshot,
	"":          rankRelease,
	"ga":        rankRelease,
	"final":     rankRelease,
	"release":   rankRelease,
	"sp":        rankSP,
}

// Parse parses a concrete version. It rejects empty strings and strings that
// contain whitespace or range syntax.
func Parse(s string) (Version, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Version{}, fmt.Errorf("invalid version: empty")
	}
	if i := strings.IndexAny(s, " \t\r\n[](),${}"); i >= 0 {
		return Version{}, fmt.Errorf("invalid version %q: unexpected %q", s, s[i])
	}
	return Version{raw: s, items: tokenize(s)}, nil
}

// MustParse is like Parse but panics on invalid input.
func MustParse(s string) Version {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

func tokenize(s string) []item {
	var (
		items []item
		start int
	)
	lower := strings.ToLower(s)
	flush := func(end int) {
		tok := lower[start:end]
		if isDigits(tok) {
			items = append(items, item{digits: trimZeros(tok), numeric: true})
		} else {
			items = append(items, item{qual: tok})
		}
	}
	for i := 0; i < len(lower); i++ {
		c := lower[i]
		if c == '.' || c == '-' || c == '_' || c == '+' {
			if i > start {
				flush(i)
			}
			start = i + 1
			continue
		}
		if i > start && isDigit(c) != isDigit(lower[i-1]) {
			flush(i)
			start = i
		}
	}
	if start < len(lower) {
		flush(len(lower))
	}
	return trimTrailing(items)
}

// trimTrailing drops trailing zeros and release qualifiers.
func trimTrailing(items []item) []item {
	for len(items) > 0 {
		last := items[len(items)-1]
		if last.numeric && last.digits == "0" {
			items = items[:len(items)-1]
			continue
		}
		if !last.numeric && rank(last.qual) == rankRelease {
			items = items[:len(items)-1]
			continue
		}
		break
	}
	return items
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isDigit(s[i]) {
			return false
		}
	}
	return true
}

func trimZeros(s string) string {
	t := strings.TrimLeft(s, "0")
	if t == "" {
		return "0"
	}
	return t
}

func rank(q string) int {
	if r, ok := qualifierRanks[q]; ok {
		return r
	}
	return rankUnknown
}

// String returns the version as it was written.
func (v Version) String() string { return v.raw }

// IsZero reports whether v is the empty version.
func (v Version) IsZero() bool { return v.raw == "" }

// IsSnapshot reports whether v is a snapshot version.
func (v Version) IsSnapshot() bool {
	return strings.HasSuffix(strings.ToUpper(v.raw), "SNAPSHOT")
}

// Equal reports whether v and o denote the same version.
func (v Version) Equal(o Version) bool { return v.Compare(o) == 0 }

// Less reports whether v sorts before o.
func (v Version) Less(o Version) bool { return v.Compare(o) < 0 }

// Compare returns -1, 0 or +1 depending on whether v sorts before, equal to
// or after o.
func (v Version) Compare(o Version) int {
	if v.raw == "" || o.raw == "" {
		switch {
		case v.raw == o.raw:
			return 0
		case v.raw == "":
			return -1
		default:
			return 1
		}
	}
	n := max(len(v.items), len(o.items))
	for i := range n {
		var a, b *item
		if i < len(v.items) {
			a = &v.items[i]
		}
		if i < len(o.items) {
			b = &o.items[i]
		}
		if c := compareItems(a, b); c != 0 {
			return c
		}
	}
	return 0
}

// Compare is a convenience for slices.SortFunc.
func Compare(a, b Version) int { return a.Compare(b) }

func compareItems(a, b *item) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -compareItems(b, nil)
	case b == nil:
		if a.numeric {
			if a.digits == "0" {
				return 0
			}
			return 1
		}
		return cmpInt(rank(a.qual), rankRelease)
	case a.numeric && b.numeric:
		if len(a.digits) != len(b.digits) {
			return cmpInt(len(a.digits), len(b.digits))
		}
		return strings.Compare(a.digits, b.digits)
	case a.numeric:
		return 1
	case b.numeric:
		return -1
	}
	ra, rb := rank(a.qual), rank(b.qual)
	if ra != rb {
		return cmpInt(ra, rb)
	}
	if ra == rankUnknown {
		return strings.Compare(a.qual, b.qual)
	}
	return 0
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

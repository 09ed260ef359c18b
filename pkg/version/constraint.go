package version

import (
	"fmt"
	"strings"
)

// Meta-versions resolved against repository metadata.
const (
	Latest  = "LATEST"
	Release = "RELEASE"
)

// Range is a single interval of versions. A nil bound is unbounded.
type Range struct {
	Lower          *Version
	Upper          *Version
	LowerInclusive bool
	UpperInclusive bool
}

// Contains reports whether v lies within r.
func (r Range) Contains(v Version) bool {
	if r.Lower != nil {
		c := v.Compare(*r.Lower)
		if c < 0 || (c == 0 && !r.LowerInclusive) {
			return false
		}
	}
	if r.Upper != nil {
		c := v.Compare(*r.Upper)
		if c > 0 || (c == 0 && !r.UpperInclusive) {
			return false
		}
	}
	return true
}

// String formats r in Maven range syntax.
func (r Range) String() string {
	var b strings.Builder
	if r.LowerInclusive {
		b.WriteByte('[')
	} else {
		b.WriteByte('(')
	}
	if r.Lower != nil && r.Upper != nil && r.LowerInclusive && r.UpperInclusive && r.Lower.Equal(*r.Upper) {
		b.WriteString(r.Lower.String())
		b.WriteByte(']')
		return b.String()
	}
	if r.Lower != nil {
		b.WriteString(r.Lower.String())
	}
	b.WriteByte(',')
	if r.Upper != nil {
		b.WriteString(r.Upper.String())
	}
	if r.UpperInclusive {
		b.WriteByte(']')
	} else {
		b.WriteByte(')')
	}
	return b.String()
}

// Constraint is either a soft version ("1.2"), a union of ranges
// ("[1.0,2.0),[3.0,)") or a meta-version (LATEST, RELEASE).
type Constraint struct {
	raw     string
	version *Version
	ranges  []Range
	meta    string
}

// ParseConstraint parses a version constraint.
func ParseConstraint(s string) (Constraint, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Constraint{}, fmt.Errorf("invalid version constraint: empty")
	}
	switch strings.ToUpper(s) {
	case Latest, Release:
		return Constraint{raw: s, meta: strings.ToUpper(s)}, nil
	}
	if s[0] != '[' && s[0] != '(' {
		v, err := Parse(s)
		if err != nil {
			return Constraint{}, fmt.Errorf("invalid version constraint %q: %w", s, err)
		}
		return Constraint{raw: s, version: &v}, nil
	}

	c := Constraint{raw: s}
	rest := s
	for rest != "" {
		if rest[0] != '[' && rest[0] != '(' {
			return Constraint{}, fmt.Errorf("invalid version constraint %q: expected '[' or '('", s)
		}
		end := strings.IndexAny(rest, "])")
		if end < 0 {
			return Constraint{}, fmt.Errorf("invalid version constraint %q: unbounded range", s)
		}
		r, err := parseRange(rest[:end+1])
		if err != nil {
			return Constraint{}, fmt.Errorf("invalid version constraint %q: %w", s, err)
		}
		c.ranges = append(c.ranges, r)
		rest = strings.TrimSpace(rest[end+1:])
		if strings.HasPrefix(rest, ",") {
			rest = strings.TrimSpace(rest[1:])
			if rest == "" {
				return Constraint{}, fmt.Errorf("invalid version constraint %q: trailing comma", s)
			}
		} else if rest != "" {
			return Constraint{}, fmt.Errorf("invalid version constraint %q: expected ','", s)
		}
	}
	return c, nil
}

// MustParseConstraint is like ParseConstraint but panics on invalid input.
func MustParseConstraint(s string) Constraint {
	c, err := ParseConstraint(s)
	if err != nil {
		panic(err)
	}
	return c
}

func parseRange(s string) (Range, error) {
	r := Range{
		LowerInclusive: s[0] == '[',
		UpperInclusive: s[len(s)-1] == ']',
	}
	body := strings.TrimSpace(s[1 : len(s)-1])
	lower, upper, found := strings.Cut(body, ",")
	if !found {
		if !r.LowerInclusive || !r.UpperInclusive {
			return Range{}, fmt.Errorf("single version must be surrounded by []: %s", s)
		}
		v, err := Parse(body)
		if err != nil {
			return Range{}, err
		}
		r.Lower, r.Upper = &v, &v
		return r, nil
	}
	if strings.Contains(upper, ",") {
		return Range{}, fmt.Errorf("too many bounds: %s", s)
	}
	if lower = strings.TrimSpace(lower); lower != "" {
		v, err := Parse(lower)
		if err != nil {
			return Range{}, err
		}
		r.Lower = &v
	}
	if upper = strings.TrimSpace(upper); upper != "" {
		v, err := Parse(upper)
		if err != nil {
			return Range{}, err
		}
		r.Upper = &v
	}
	if r.Lower != nil && r.Upper != nil {
		c := r.Lower.Compare(*r.Upper)
		if c > 0 || (c == 0 && !(r.LowerInclusive && r.UpperInclusive)) {
			return Range{}, fmt.Errorf("empty range: %s", s)
		}
	}
	return r, nil
}

// String returns the constraint as it was written.
func (c Constraint) String() string { return c.raw }

// IsRange reports whether resolving c requires repository metadata.
func (c Constraint) IsRange() bool { return c.version == nil && c.raw != "" }

// IsMeta reports whether c is LATEST or RELEASE.
func (c Constraint) IsMeta() bool { return c.meta != "" }

// Meta returns LATEST, RELEASE or "".
func (c Constraint) Meta() string { return c.meta }

// Version returns the soft version of a non-range constraint.
func (c Constraint) Version() (Version, bool) {
	if c.version == nil {
		return Version{}, false
	}
	return *c.version, true
}

// Ranges returns the ranges of c. It is empty for soft versions and
// meta-versions.
func (c Constraint) Ranges() []Range { return c.ranges }

// Contains reports whether v satisfies c. RELEASE excludes snapshots.
func (c Constraint) Contains(v Version) bool {
	switch {
	case c.version != nil:
		return c.version.Equal(v)
	case c.meta == Release:
		return !v.IsSnapshot()
	case c.meta == Latest:
		return true
	}
	for _, r := range c.ranges {
		if r.Contains(v) {
			return true
		}
	}
	return false
}

package artifact

import (
	"fmt"
	"strings"
)

// Scope classifies when a dependency is visible.
type Scope string

// Dependency scopes.
const (
	Compile              Scope = "compile"
	Runtime              Scope = "runtime"
	Test                 Scope = "test"
	Provided             Scope = "provided"
	System               Scope = "system"
	AnnotationProcessing Scope = "annotation-processing"
)

// Scopes lists every scope in declaration order.
var Scopes = []Scope{Compile, Runtime, Test, Provided, System, AnnotationProcessing}

// acceptable maps a query scope to the effective scopes it includes.
var acceptable = map[Scope][]Scope{
	Compile:              {Compile, Provided, System},
	Runtime:              {Runtime, Compile},
	Test:                 {Test},
	Provided:             {Provided},
	System:               {System},
	AnnotationProcessing: {AnnotationProcessing},
}

// ParseScope parses a scope keyword. The empty string means compile.
func ParseScope(s string) (Scope, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return Compile, nil
	}
	for _, sc := range Scopes {
		if string(sc) == s {
			return sc, nil
		}
	}
	return "", fmt.Errorf("unknown scope %q", s)
}

// Normalize maps the empty scope to compile.
func (s Scope) Normalize() Scope {
	if s == "" {
		return Compile
	}
	return s
}

// Accepts reports whether a node whose effective scope is effective belongs
// to the library set queried with s.
func (s Scope) Accepts(effective Scope) bool {
	for _, a := range acceptable[s.Normalize()] {
		if a == effective.Normalize() {
			return true
		}
	}
	return false
}

// String returns the scope keyword.
func (s Scope) String() string { return string(s.Normalize()) }

// Set implements pflag.Value so scopes can be bound to command flags.
func (s *Scope) Set(v string) error {
	sc, err := ParseScope(v)
	if err != nil {
		return err
	}
	*s = sc
	return nil
}

// Type implements pflag.Value.
func (s *Scope) Type() string { return "scope" }

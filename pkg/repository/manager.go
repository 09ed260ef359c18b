package repository

import (
	"strings"

	"github.com/teletha/bee-sub002/pkg/artifact"
)

// Manager merges repository lists for the collector.
type Manager struct{}

// AggregateRepositories returns dominant followed by the recessive
// repositories whose id and URL are both new.
func (Manager) AggregateRepositories(dominant, recessive []artifact.Repository) []artifact.Repository {
	if len(recessive) == 0 {
		return dominant
	}
	ids := make(map[string]bool, len(dominant)+len(recessive))
	urls := make(map[string]bool, len(dominant)+len(recessive))
	out := make([]artifact.Repository, 0, len(dominant)+len(recessive))
	add := func(r artifact.Repository) {
		u := strings.ToLower(r.BaseURL())
		if ids[r.ID] || urls[u] {
			return
		}
		ids[r.ID] = true
		urls[u] = true
		out = append(out, r)
	}
	for _, r := range dominant {
		add(r)
	}
	for _, r := range recessive {
		add(r)
	}
	return out
}

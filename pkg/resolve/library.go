package resolve

import (
	"github.com/teletha/bee-sub002/pkg/artifact"
	"github.com/teletha/bee-sub002/pkg/collect"
)

// Library is one entry of a resolved library set.
type Library struct {
	GroupID    string         `json:"group"`
	ArtifactID string         `json:"name"`
	Version    string         `json:"version"`
	Classifier string         `json:"classifier,omitempty"`
	Extension  string         `json:"extension,omitempty"`
	Scope      artifact.Scope `json:"scope"`
	Optional   bool           `json:"optional,omitempty"`
	Repository string         `json:"repository,omitempty"`
	LocalPath  string         `json:"local_path,omitempty"`
}

func newLibrary(n *collect.Node) Library {
	a := n.Artifact
	lib := Library{
		GroupID:    a.GroupID,
		ArtifactID: a.ArtifactID,
		Version:    a.Version,
		Classifier: a.Classifier,
		Extension:  a.Extension,
		Scope:      n.Scope.Normalize(),
		Optional:   n.Optional,
		LocalPath:  a.LocalPath(),
	}
	if len(n.Repositories) > 0 {
		lib.Repository = n.Repositories[0].ID
	}
	return lib
}

// Artifact returns the library's artifact.
func (l Library) Artifact() artifact.Artifact {
	a := artifact.New(l.GroupID, l.ArtifactID, l.Version)
	a.Classifier = l.Classifier
	if l.Extension != "" {
		a.Extension = l.Extension
	}
	if l.LocalPath != "" {
		a = a.WithProperties(map[string]string{artifact.PropLocalPath: l.LocalPath})
	}
	return a
}

// Coordinate returns the library's coordinate string.
func (l Library) Coordinate() string { return l.Artifact().String() }

// String returns "name-version", the library's file base name.
func (l Library) String() string { return l.ArtifactID + "-" + l.Version }

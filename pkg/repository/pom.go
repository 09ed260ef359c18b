package repository

import (
	"encoding/xml"
	"fmt"
	"strings"
)

type pomProject struct {
	GroupID      string          `xml:"groupId"`
	ArtifactID   string          `xml:"artifactId"`
	Version      string          `xml:"version"`
	Packaging    string          `xml:"packaging"`
	Parent       *pomParent      `xml:"parent"`
	Properties   pomProperties   `xml:"properties"`
	Dependencies []pomDependency `xml:"dependencies>dependency"`
	Management   []pomDependency `xml:"dependencyManagement>dependencies>dependency"`
	Repositories []pomRepository `xml:"repositories>repository"`
	Relocation   *pomRelocation  `xml:"distributionManagement>relocation"`
}

type pomParent struct {
	GroupID    string `xml:"groupId"`
	ArtifactID string `xml:"artifactId"`
	Version    string `xml:"version"`
}

type pomDependency struct {
	GroupID    string         `xml:"groupId"`
	ArtifactID string         `xml:"artifactId"`
	Version    string         `xml:"version"`
	Type       string         `xml:"type"`
	Classifier string         `xml:"classifier"`
	Scope      string         `xml:"scope"`
	Optional   string         `xml:"optional"`
	SystemPath string         `xml:"systemPath"`
	Exclusions []pomExclusion `xml:"exclusions>exclusion"`
}

// key identifies a dependency within one POM the way Maven does:
// group, artifact, type and classifier.
func (d pomDependency) key() string {
	t := d.Type
	if t == "" {
		t = "jar"
	}
	return d.GroupID + ":" + d.ArtifactID + ":" + t + ":" + d.Classifier
}

type pomExclusion struct {
	GroupID    string `xml:"groupId"`
	ArtifactID string `xml:"artifactId"`
}

type pomRepository struct {
	ID  string `xml:"id"`
	URL string `xml:"url"`
}

type pomRelocation struct {
	GroupID    string `xml:"groupId"`
	ArtifactID string `xml:"artifactId"`
	Version    string `xml:"version"`
	Message    string `xml:"message"`
}

// pomProperties collects the free-form children of <properties>.
type pomProperties map[string]string

func (p *pomProperties) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	props := make(pomProperties)
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			var v string
			if err := d.DecodeElement(&v, &t); err != nil {
				return err
			}
			props[t.Name.Local] = strings.TrimSpace(v)
		case xml.EndElement:
			*p = props
			return nil
		}
	}
}

func parsePOM(data []byte) (*pomProject, error) {
	var p pomProject
	if err := xml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse pom: %w", err)
	}
	return &p, nil
}

func groupPath(groupID string) string {
	return strings.ReplaceAll(groupID, ".", "/")
}

// pomPath returns the repository path of the POM for group:artifact:version.
func pomPath(groupID, artifactID, version string) string {
	return groupPath(groupID) + "/" + artifactID + "/" + version + "/" + artifactID + "-" + version + ".pom"
}

// typeExtensions maps packaging types to file extension and classifier.
var typeExtensions = map[string][2]string{
	"test-jar":     {"jar", "tests"},
	"maven-plugin": {"jar", ""},
	"ejb":          {"jar", ""},
	"ejb-client":   {"jar", "client"},
	"bundle":       {"jar", ""},
	"java-source":  {"jar", "sources"},
	"javadoc":      {"jar", "javadoc"},
}

// extension returns the file extension and default classifier for a
// dependency type.
func extension(typ string) (ext, classifier string) {
	if typ == "" {
		return "jar", ""
	}
	if e, ok := typeExtensions[typ]; ok {
		return e[0], e[1]
	}
	return typ, ""
}

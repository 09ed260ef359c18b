package repository

import (
	"encoding/xml"
	"fmt"
)

// Metadata is the content of a maven-metadata.xml file at artifact level.
type Metadata struct {
	GroupID    string `xml:"groupId"`
	ArtifactID string `xml:"artifactId"`
	Versioning struct {
		Latest   string   `xml:"latest"`
		Release  string   `xml:"release"`
		Versions []string `xml:"versions>version"`
	} `xml:"versioning"`
}

// ParseMetadata decodes a maven-metadata.xml document.
func ParseMetadata(data []byte) (*Metadata, error) {
	var md Metadata
	if err := xml.Unmarshal(data, &md); err != nil {
		return nil, fmt.Errorf("parse maven-metadata.xml: %w", err)
	}
	return &md, nil
}

// metadataPath returns the repository path of the metadata for group:artifact.
func metadataPath(groupID, artifactID string) string {
	return groupPath(groupID) + "/" + artifactID + "/maven-metadata.xml"
}

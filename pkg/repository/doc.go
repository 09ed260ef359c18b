// Package repository reads Maven repositories.
//
// It provides the I/O side of dependency collection:
//
//   - [RangeResolver] expands version constraints using maven-metadata.xml
//   - [DescriptorReader] reads POM files into artifact descriptors
//   - [Manager] merges repository lists
//
// Files are fetched through a [Fetcher]. [Transport] serves http(s)
// repositories through an [httputil.Client], with caching and retries, and
// file:// repositories from the local filesystem.
//
// The POM reader is intentionally small. It follows parent POMs for
// groupId, version, properties, dependencies and dependencyManagement,
// imports BOMs, interpolates ${...} placeholders from properties and
// project.* values, and follows relocations. Profiles, plugin
// configuration and other model-builder features are not supported.
package repository

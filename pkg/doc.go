// Package pkg provides the core libraries of bee, a Maven-style dependency
// collector.
//
// # Overview
//
// bee reads the dependency descriptors (POMs) of a project's libraries from
// Maven repositories, collects them concurrently into a dependency graph and
// resolves version conflicts the way Maven does: the nearest declaration
// wins, scopes are narrowed along each path and optional and test-only
// dependencies stop at the first level.
//
// # Architecture
//
// The typical data flow:
//
//	bee.yaml / bee.toml or a coordinate
//	         ↓
//	    [project] package (load project, build the collection request)
//	         ↓
//	    [collect] package (concurrent graph collection)
//	         ↓      ↖
//	         ↓    [repository] package (metadata, POMs, version ranges)
//	         ↓
//	    [transform] package (conflict marking, scopes, nearest wins)
//	         ↓
//	    [resolve] package (library sets per scope, caching)
//	         ↓
//	    [render] package (tree, DOT, SVG/PDF/PNG, JSON)
//
// # Quick Start
//
//	r := resolve.New(resolve.Options{Cache: cache.NewNullCache()})
//	dep := artifact.Dependency{Artifact: artifact.MustParse("junit:junit:4.13.2")}
//	libs, err := r.DependencyLibraries(ctx, dep, nil, artifact.Test)
//
// # Main Packages
//
// [artifact] - Coordinates, dependencies, exclusions, scopes and
// repositories.
//
// [version] - Maven version ordering and range constraints.
//
// [collect] - The collector, its session policies (selectors, managers,
// traversers) and the node graph it produces.
//
// [transform] - Graph transformers applied after collection and the scope
// queries over their output.
//
// [repository] - The Maven repository layout: HTTP and file transports,
// maven-metadata.xml, POM reading with parents, properties and relocations.
//
// [cache] and [httputil] - Response caching (file or Redis) and retrying
// HTTP fetches.
//
// [observability] - Hooks for collection and HTTP events, with a Prometheus
// implementation in observability/prom.
//
// [errors] - Coded errors shared by every layer and shown by the CLI.
//
// [artifact]: https://pkg.go.dev/github.com/teletha/bee-sub002/pkg/artifact
// [version]: https://pkg.go.dev/github.com/teletha/bee-sub002/pkg/version
// [collect]: https://pkg.go.dev/github.com/teletha/bee-sub002/pkg/collect
// [transform]: https://pkg.go.dev/github.com/teletha/bee-sub002/pkg/transform
// [repository]: https://pkg.go.dev/github.com/teletha/bee-sub002/pkg/repository
// [project]: https://pkg.go.dev/github.com/teletha/bee-sub002/pkg/project
// [resolve]: https://pkg.go.dev/github.com/teletha/bee-sub002/pkg/resolve
// [render]: https://pkg.go.dev/github.com/teletha/bee-sub002/pkg/render
// [cache]: https://pkg.go.dev/github.com/teletha/bee-sub002/pkg/cache
// [httputil]: https://pkg.go.dev/github.com/teletha/bee-sub002/pkg/httputil
// [observability]: https://pkg.go.dev/github.com/teletha/bee-sub002/pkg/observability
// [errors]: https://pkg.go.dev/github.com/teletha/bee-sub002/pkg/errors
package pkg

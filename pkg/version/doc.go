// Package version implements Maven version ordering and version constraints.
//
// # Versions
//
// [Parse] splits a version into numeric components and qualifiers on '.',
// '-', '_' and digit/letter transitions:
//
//	1.2.3          -> 1, 2, 3
//	1.0-beta-2     -> 1, beta, 2
//	2.0.0.RELEASE  -> 2
//
// Well-known qualifiers are ranked:
//
//	alpha < beta < milestone < rc < snapshot < (release) < sp < unknown
//
// # Constraints
//
// [ParseConstraint] accepts the forms understood by Maven:
//
//	1.0            soft version, matches exactly 1.0
//	[1.0]          hard version
//	[1.0,2.0)      1.0 <= v < 2.0
//	(,1.0],[1.2,)  v <= 1.0 or v >= 1.2
//	LATEST         any version, snapshots included
//	RELEASE        any non-snapshot version
//
// Only ranges and meta-versions need repository metadata; a soft version
// resolves to itself.
package version

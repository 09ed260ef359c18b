// Package artifact defines the immutable value types of the dependency model:
// [Artifact], [Dependency], [Exclusion], [Scope] and [Repository].
//
// An artifact is identified by group, artifact id, classifier and extension.
// Its [Artifact.Key] is shared by every version of the same package and is
// what conflict resolution groups on:
//
//	a := artifact.MustParse("org.ow2.asm:asm:5.0.4")
//	a.Key()    // "org.ow2.asm:asm::jar"
//	a.String() // "org.ow2.asm:asm:jar:5.0.4"
//
// Scopes follow Maven's Java scopes plus annotation-processing. A query
// scope [Scope.Accepts] a fixed set of effective scopes:
//
//	compile                -> compile, provided, system
//	runtime                -> runtime, compile
//	test                   -> test
//	provided               -> provided
//	system                 -> system
//	annotation-processing  -> annotation-processing
package artifact

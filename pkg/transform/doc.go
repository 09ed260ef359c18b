// Package transform rewrites collected dependency graphs into resolved
// trees.
//
// The collector hands over a graph whose child lists may be shared between
// nodes. [Default] returns the chain used for Java projects:
//
//  1. [Expand] copies the graph into a tree, cutting cycles
//  2. [ConflictMarker] assigns conflict keys, joining relocated and aliased
//     artifacts with their targets
//  3. [ScopeCalculator] derives every node's effective scope from its path
//  4. [NearestResolver] picks the occurrence closest to the root for each
//     conflict key
//  5. [ContextRefiner] gives winners the widest scope among their
//     occurrences and prunes the losers
//
// [Libraries] then flattens the resolved tree for one query scope.
package transform

// Package render turns collected dependency trees into text and graphics.
//
// # Tree dump
//
// [Tree] prints a resolved tree the way "mvn dependency:tree" does, one
// artifact per line with its effective scope. Nodes that lost a version
// conflict (kept with resolve.Options.KeepLosers) are shown with the
// version that won:
//
//	org.example:app:jar:1.0
//	├── com.google.guava:guava:jar:32.1.3-jre
//	│   └── com.google.guava:failureaccess:jar:1.0.1
//	└── junit:junit:jar:4.13.2 [test]
//	    └── org.hamcrest:hamcrest-core:jar:1.3 [test]
//
// # Graphs
//
// [ToDOT] emits Graphviz DOT source with one vertex per artifact version.
// [RenderSVG] lays it out in-process with [github.com/goccy/go-graphviz];
// [ToPDF] and [ToPNG] convert the SVG with rsvg-convert from librsvg.
// [WriteJSON] writes the same vertices and edges for other tools.
package render

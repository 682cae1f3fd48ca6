// Package depgraph provides the ordered, directed graph that backs pkgtree's
// requirement view of an environment.
//
// # Overview
//
// Nodes are installed packages keyed by their normalized name. Edges point from
// a requirer to the package it requires and carry [Metadata], which the tree
// builder uses to remember the extra that gates an optional dependency.
//
// Unlike a general-purpose graph the store remembers insertion order
// everywhere: [Graph.Nodes], [Graph.Children] and [Graph.Sources] return
// elements in the order they were added. Tree output depends on that order, so
// rendering the same environment twice yields the same text.
//
// Cycles are allowed. Installed environments routinely contain packages that
// require each other and the renderer truncates such branches itself.
//
// # Basic Usage
//
//	g := depgraph.New()
//	_ = g.AddNode(depgraph.Node{ID: "requests"})
//	_ = g.AddNode(depgraph.Node{ID: "idna"})
//	_ = g.AddEdge(depgraph.Edge{From: "requests", To: "idna"})
//
//	g.Children("requests") // [idna]
//	g.Sources()            // [requests]
//
// Use [Graph.Invert] to answer "what depends on me" questions with the same
// traversal code.
package depgraph

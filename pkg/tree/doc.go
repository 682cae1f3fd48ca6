// Package tree renders the requirement structure of installed packages as a
// text tree, the way "pip tree" style commands show an environment.
//
// # Overview
//
// Rendering happens in two steps. [Build] turns a flat list of
// [installed.Dist] values into a [Graph]: every dist becomes a node keyed by
// its normalized name, and every requirement whose target is installed and
// whose environment marker holds becomes an edge. [Render] then walks the
// graph depth-first from its roots and produces the prefixed lines.
//
//	eval := markers.NewEvaluator(markers.Default(), nil)
//	g, err := tree.Build(dists, eval, tree.BuildOptions{})
//	if err != nil {
//		return err
//	}
//	res := tree.Render(g, tree.RenderOptions{})
//	for _, line := range append(res.Lines, res.Legend()...) {
//		fmt.Println(line)
//	}
//
// # Roots
//
// A root is a package that no other installed package requires. Roots are
// rendered in the order the dists were given. With [BuildOptions.Invert] the
// edges point from a package to the packages that require it, so the roots
// become the packages that require nothing and the tree answers "what
// depends on this".
//
// A group of packages that only require each other has no root and is left
// out unless [RenderOptions.ShowOrphanCycles] is set.
//
// # Extras
//
// A requirement that only applies when one of the requirer's extras is
// active (a marker such as extra == "socks") is still recorded, tagged with
// that extra. The child line is labelled "[socks] ". When a package reaches
// the same dependency both unconditionally and through an extra, only the
// unconditional edge is kept; when several extras pull in the same dependency,
// the first requirement naming it decides the label.
//
// # Markers
//
// A package already on the current branch ends its line with [CycleMarker]
// and is not expanded again. A package that was expanded earlier in the render
// ends its line with [RepeatMarker] unless [RenderOptions.NoDedupe] is set.
// [Result.Legend] explains whichever markers were used.
//
// # Diagnostics
//
// Duplicate package names and unreadable metadata do not stop a build. They
// are collected as coded errors on [Graph.Diagnostics]; the first dist with a
// given name wins and a dist without metadata is rendered without children.
package tree

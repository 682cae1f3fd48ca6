package tree

import (
	stderrors "errors"

	"github.com/matzehuels/pkgtree/pkg/depgraph"
	"github.com/matzehuels/pkgtree/pkg/errors"
	"github.com/matzehuels/pkgtree/pkg/installed"
)

// MetaExtra is the edge metadata key holding the extra that gates an edge.
const MetaExtra = "extra"

// MarkerEvaluator decides whether a requirement's environment marker holds
// with the given extras active. An empty marker always holds.
// *markers.Evaluator implements it.
type MarkerEvaluator interface {
	Evaluate(marker string, extras []string) bool
}

// BuildOptions configures Build.
type BuildOptions struct {
	Invert   bool                 // Point edges from a package to its requirers
	NoExtras bool                 // Drop requirements that only apply under an extra
	Logger   func(string, ...any) // Debug output (optional)
}

// WithDefaults returns a copy of BuildOptions with zero values replaced by defaults.
func (o BuildOptions) WithDefaults() BuildOptions {
	opts := o
	if opts.Logger == nil {
		opts.Logger = func(string, ...any) {}
	}
	return opts
}

// Graph is the requirement graph of one environment. It is read-only once
// built and may be rendered any number of times.
type Graph struct {
	deps        *depgraph.Graph
	inverted    bool
	diagnostics []error
}

// Dependency is an outgoing edge of the graph.
type Dependency struct {
	Dist  *installed.Dist
	Extra string // Extra gating the edge, empty when unconditional
}

// Build creates the requirement graph for dists.
//
// The dists are indexed by normalized name in the given order. A requirement
// becomes an edge when its target is installed and its marker holds, either
// unconditionally or with one of the requirer's own extras active. Problems
// with individual dists are recorded on [Graph.Diagnostics]; the returned
// error is reserved for unusable input.
func Build(dists []*installed.Dist, eval MarkerEvaluator, opts BuildOptions) (*Graph, error) {
	if eval == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "marker evaluator is required")
	}
	opts = opts.WithDefaults()

	g := &Graph{deps: depgraph.New(), inverted: opts.Invert}
	indexed := g.index(dists)

	for _, d := range indexed {
		if d.Err != nil {
			g.diagnostics = append(g.diagnostics,
				errors.Wrap(errors.ErrCodeMissingMetadata, d.Err, "requirements of %s %s unavailable", d.Name, d.Version))
			continue
		}
		g.addRequirements(d, eval, opts.NoExtras)
	}
	opts.Logger("built graph: %d packages, %d edges, %d diagnostics",
		g.deps.NodeCount(), g.deps.EdgeCount(), len(g.diagnostics))

	if opts.Invert {
		g.deps = g.deps.Invert()
	}
	return g, nil
}

func (g *Graph) index(dists []*installed.Dist) []*installed.Dist {
	indexed := make([]*installed.Dist, 0, len(dists))
	for _, d := range dists {
		if d == nil {
			continue
		}
		err := g.deps.AddNode(depgraph.Node{ID: d.Key(), Value: d})
		switch {
		case err == nil:
			indexed = append(indexed, d)
		case stderrors.Is(err, depgraph.ErrDuplicateNodeID):
			first := g.dist(d.Key())
			g.diagnostics = append(g.diagnostics, errors.New(errors.ErrCodeDuplicatePackage,
				"%s %s duplicates %s %s, keeping the first", d.Name, d.Version, first.Name, first.Version))
		default:
			g.diagnostics = append(g.diagnostics, errors.Wrap(errors.ErrCodeInvalidPackage, err,
				"package %q version %q", d.Name, d.Version))
		}
	}
	return indexed
}

func (g *Graph) addRequirements(d *installed.Dist, eval MarkerEvaluator, noExtras bool) {
	from := d.Key()
	for _, req := range d.Requires {
		to := req.Key()
		if to == from {
			continue
		}
		if _, ok := g.deps.Node(to); !ok {
			continue
		}
		extra, ok := activatingExtra(req.Marker, d.Extras, eval)
		if !ok || (extra != "" && noExtras) {
			continue
		}

		if g.deps.HasEdge(from, to) {
			// An unconditional requirement supersedes an extra-gated one.
			if extra == "" {
				g.deps.SetEdgeMeta(from, to, nil)
			}
			continue
		}
		var meta depgraph.Metadata
		if extra != "" {
			meta = depgraph.Metadata{MetaExtra: extra}
		}
		_ = g.deps.AddEdge(depgraph.Edge{From: from, To: to, Meta: meta})
	}
}

// activatingExtra reports whether marker can hold for a package declaring
// extras, and which extra has to be active for it. The extra is empty when
// the marker holds without any.
func activatingExtra(marker string, extras []string, eval MarkerEvaluator) (string, bool) {
	if eval.Evaluate(marker, nil) {
		return "", true
	}
	for _, extra := range extras {
		if eval.Evaluate(marker, []string{extra}) {
			return extra, true
		}
	}
	return "", false
}

// Inverted reports whether edges point from a package to its requirers.
func (g *Graph) Inverted() bool { return g.inverted }

// Len returns the number of indexed packages.
func (g *Graph) Len() int { return g.deps.NodeCount() }

// Edges returns the number of requirement edges.
func (g *Graph) Edges() int { return g.deps.EdgeCount() }

// Diagnostics returns the problems found while building, in the order they
// were found. Each is an *errors.Error with code DUPLICATE_PACKAGE,
// MISSING_METADATA or INVALID_PACKAGE.
func (g *Graph) Diagnostics() []error { return g.diagnostics }

// Dist returns the package with the given name, which need not be normalized.
func (g *Graph) Dist(name string) (*installed.Dist, bool) {
	d := g.dist(installed.NormalizeName(name))
	return d, d != nil
}

func (g *Graph) dist(id string) *installed.Dist {
	n, ok := g.deps.Node(id)
	if !ok {
		return nil
	}
	return n.Value.(*installed.Dist)
}

// Dists returns all indexed packages in input order.
func (g *Graph) Dists() []*installed.Dist {
	nodes := g.deps.Nodes()
	out := make([]*installed.Dist, len(nodes))
	for i, n := range nodes {
		out[i] = n.Value.(*installed.Dist)
	}
	return out
}

// Roots returns the packages nothing points to, in input order.
func (g *Graph) Roots() []*installed.Dist {
	var roots []*installed.Dist
	for _, n := range g.deps.Sources() {
		roots = append(roots, n.Value.(*installed.Dist))
	}
	return roots
}

// Dependencies returns the outgoing edges of the named package in stored
// order: its requirements, or its requirers when the graph is inverted.
func (g *Graph) Dependencies(name string) []Dependency {
	edges := g.deps.OutEdges(installed.NormalizeName(name))
	out := make([]Dependency, len(edges))
	for i, e := range edges {
		out[i] = Dependency{Dist: g.dist(e.To), Extra: e.Meta.String(MetaExtra)}
	}
	return out
}

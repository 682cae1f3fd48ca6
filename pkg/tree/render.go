package tree

import (
	"slices"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/matzehuels/pkgtree/pkg/installed"
)

const (
	// DefaultMaxDepth is the depth limit the command line uses when none is given.
	DefaultMaxDepth = 255

	// CycleMarker ends the line of a package that is already one of its own
	// ancestors on the current branch.
	CycleMarker = "(cycle)"

	// RepeatMarker ends the line of a package whose tree was shown earlier.
	RepeatMarker = "(*)"
)

// Connectors prefixed to child lines.
const (
	branch     = "├── "
	corner     = "└── "
	continuing = "│   "
	blank      = "    "
)

// RenderOptions configures Render.
type RenderOptions struct {
	// MaxDepth is the deepest nesting level shown when LimitDepth is set.
	// Roots are level 0, so 0 shows roots only. A negative value means no
	// limit.
	MaxDepth int

	// LimitDepth enables MaxDepth. The zero value renders every level.
	LimitDepth bool

	// Prune lists package names whose lines and subtrees are left out.
	Prune []string

	// NoDedupe expands a package every time it is reached instead of marking
	// repeats with RepeatMarker.
	NoDedupe bool

	// ShowOrphanCycles also renders groups of packages that only require each
	// other and so have no root. Each group starts at its first member in
	// input order.
	ShowOrphanCycles bool
}

// WithDefaults returns a copy of o with MaxDepth normalized: negative means
// unlimited after the call, whichever way it was requested.
func (o RenderOptions) WithDefaults() RenderOptions {
	if !o.LimitDepth || o.MaxDepth < 0 {
		o.LimitDepth = false
		o.MaxDepth = -1
	}
	return o
}

// Result is the output of Render.
type Result struct {
	Lines   []string
	Cycles  bool // Some line ends with CycleMarker
	Repeats bool // Some line ends with RepeatMarker
}

// Legend returns the lines explaining the markers that occur in Lines.
func (r *Result) Legend() []string {
	var legend []string
	if r.Repeats {
		legend = append(legend, RepeatMarker+" Package tree already displayed")
	}
	if r.Cycles {
		legend = append(legend, CycleMarker+" Package tree is a cycle and cannot be shown")
	}
	return legend
}

// renderer holds the state of one Render call. path is the chain of packages
// being expanded; visited holds every package expanded so far.
type renderer struct {
	g       *Graph
	opts    RenderOptions
	pruned  mapset.Set[string]
	visited mapset.Set[string]
	path    []string
	result  *Result
}

// Render draws g depth-first from its roots. It never fails: cycles are cut
// and marked, and an empty graph yields no lines.
func Render(g *Graph, opts RenderOptions) *Result {
	opts = opts.WithDefaults()
	r := &renderer{
		g:       g,
		opts:    opts,
		pruned:  mapset.NewThreadUnsafeSet[string](),
		visited: mapset.NewThreadUnsafeSet[string](),
		result:  &Result{},
	}
	for _, name := range opts.Prune {
		r.pruned.Add(installed.NormalizeName(name))
	}

	roots := g.Roots()
	for _, root := range roots {
		r.emit(r.visit(root.Key(), "", 0))
	}
	if opts.ShowOrphanCycles {
		r.renderOrphans(roots)
	}
	return r.result
}

func (r *renderer) emit(lines []string) {
	r.result.Lines = append(r.result.Lines, lines...)
}

// renderOrphans renders every package not reachable from a root, starting a
// new top-level tree at the first such package in input order.
func (r *renderer) renderOrphans(roots []*installed.Dist) {
	covered := mapset.NewThreadUnsafeSet[string]()
	for _, root := range roots {
		covered.Append(keys(r.g.deps.Reachable(root.Key()))...)
	}
	for _, d := range r.g.Dists() {
		id := d.Key()
		if covered.Contains(id) {
			continue
		}
		covered.Append(keys(r.g.deps.Reachable(id))...)
		r.emit(r.visit(id, "", 0))
	}
}

func keys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

func (r *renderer) visit(id, label string, depth int) []string {
	if r.tooDeep(depth) || r.pruned.Contains(id) {
		return nil
	}

	d := r.g.dist(id)
	line := label + d.Name + " v" + d.Version
	if slices.Contains(r.path, id) {
		r.result.Cycles = true
		return []string{line + " " + CycleMarker}
	}
	if !r.opts.NoDedupe && r.visited.Contains(id) {
		r.result.Repeats = true
		return []string{line + " " + RepeatMarker}
	}

	r.path = append(r.path, id)
	r.visited.Add(id)
	defer func() { r.path = r.path[:len(r.path)-1] }()

	lines := []string{line}
	children := r.children(id, depth+1)
	for i, child := range children {
		first, rest := branch, continuing
		if i == len(children)-1 {
			first, rest = corner, blank
		}
		for j, l := range r.visit(child.Dist.Key(), extraLabel(child.Extra), depth+1) {
			if j == 0 {
				lines = append(lines, first+l)
			} else {
				lines = append(lines, rest+l)
			}
		}
	}
	return lines
}

// children returns the dependencies of id that will produce output at the
// given depth, so the last of them gets the corner connector.
func (r *renderer) children(id string, depth int) []Dependency {
	if r.tooDeep(depth) {
		return nil
	}
	deps := r.g.Dependencies(id)
	return slices.DeleteFunc(deps, func(dep Dependency) bool {
		return r.pruned.Contains(dep.Dist.Key())
	})
}

func (r *renderer) tooDeep(depth int) bool {
	return r.opts.LimitDepth && depth > r.opts.MaxDepth
}

func extraLabel(extra string) string {
	if extra == "" {
		return ""
	}
	return "[" + extra + "] "
}

package installed

import (
	"fmt"
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/pkgtree/pkg/errors"
)

type lockFile struct {
	Packages []lockPackage `toml:"package"`
}

type lockPackage struct {
	Name         string              `toml:"name"`
	Version      string              `toml:"version"`
	Dependencies map[string]any      `toml:"dependencies"`
	Extras       map[string][]string `toml:"extras"`
}

// LoadPoetryLock reads the [[package]] entries of a poetry.lock file.
//
// Poetry records optional dependencies with optional = true and lists them
// under [package.extras]; such dependencies become requirements gated by
// extra == "<name>" for every extra that pulls them in. Dependencies within a
// package are ordered by name since TOML tables carry no order.
func LoadPoetryLock(path string) ([]*Dist, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "poetry lock %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "reading %s", path)
	}
	var lock lockFile
	if err := toml.Unmarshal(data, &lock); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parsing %s", path)
	}

	dists := make([]*Dist, 0, len(lock.Packages))
	for _, pkg := range lock.Packages {
		d := &Dist{
			Name:     pkg.Name,
			Version:  pkg.Version,
			Extras:   slices.Sorted(maps.Keys(pkg.Extras)),
			Location: path,
		}
		reqs, err := lockRequirements(pkg)
		if err != nil {
			d.Err = errors.Wrap(errors.ErrCodeMissingMetadata, err, "dependencies of %s", pkg.Name)
		} else {
			d.Requires = reqs
		}
		dists = append(dists, d)
	}
	return dists, nil
}

func lockRequirements(pkg lockPackage) ([]Requirement, error) {
	gating := extrasByDependency(pkg.Extras)

	var reqs []Requirement
	for _, name := range slices.Sorted(maps.Keys(pkg.Dependencies)) {
		specs, err := dependencySpecs(pkg.Dependencies[name])
		if err != nil {
			return nil, fmt.Errorf("dependency %s: %w", name, err)
		}
		for _, spec := range specs {
			req := Requirement{
				Name:      name,
				Specifier: normalizeLockVersion(spec.Version),
				Extras:    spec.Extras,
				Marker:    spec.Markers,
			}
			if spec.Optional {
				extras := gating[NormalizeName(name)]
				if len(extras) == 0 {
					// Optional but not reachable through any extra.
					continue
				}
				req.Marker = andMarkers(req.Marker, extraMarker(extras))
			}
			reqs = append(reqs, req)
		}
	}
	return reqs, nil
}

type lockDependency struct {
	Version  string
	Markers  string
	Optional bool
	Extras   []string
}

// dependencySpecs decodes the three shapes poetry uses for a dependency: a
// plain version string, an inline table, or an array of inline tables for
// marker-dependent constraints.
func dependencySpecs(v any) ([]lockDependency, error) {
	switch v := v.(type) {
	case string:
		return []lockDependency{{Version: v}}, nil
	case map[string]any:
		dep, err := dependencyTable(v)
		if err != nil {
			return nil, err
		}
		return []lockDependency{dep}, nil
	case []any:
		var out []lockDependency
		for _, item := range v {
			t, ok := item.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("unexpected constraint %T", item)
			}
			dep, err := dependencyTable(t)
			if err != nil {
				return nil, err
			}
			out = append(out, dep)
		}
		return out, nil
	case []map[string]any:
		var out []lockDependency
		for _, t := range v {
			dep, err := dependencyTable(t)
			if err != nil {
				return nil, err
			}
			out = append(out, dep)
		}
		return out, nil
	}
	return nil, fmt.Errorf("unexpected dependency value %T", v)
}

func dependencyTable(t map[string]any) (lockDependency, error) {
	var dep lockDependency
	dep.Version, _ = t["version"].(string)
	dep.Markers, _ = t["markers"].(string)
	dep.Optional, _ = t["optional"].(bool)
	if raw, ok := t["extras"]; ok {
		list, ok := raw.([]any)
		if !ok {
			return dep, fmt.Errorf("extras must be a list, got %T", raw)
		}
		for _, e := range list {
			s, ok := e.(string)
			if !ok {
				return dep, fmt.Errorf("extra must be a string, got %T", e)
			}
			dep.Extras = append(dep.Extras, s)
		}
	}
	return dep, nil
}

// extrasByDependency inverts [package.extras]: normalized dependency name to
// the extras that list it, in extra-name order.
func extrasByDependency(extras map[string][]string) map[string][]string {
	out := make(map[string][]string)
	for _, extra := range slices.Sorted(maps.Keys(extras)) {
		for _, entry := range extras[extra] {
			req, err := ParseRequirement(entry)
			if err != nil {
				continue
			}
			key := req.Key()
			if !slices.Contains(out[key], extra) {
				out[key] = append(out[key], extra)
			}
		}
	}
	return out
}

func extraMarker(extras []string) string {
	parts := make([]string, len(extras))
	for i, e := range extras {
		parts[i] = fmt.Sprintf("extra == %q", e)
	}
	return strings.Join(parts, " or ")
}

func andMarkers(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	}
	return "(" + a + ") and (" + b + ")"
}

// normalizeLockVersion turns poetry's "*" and bare versions into specifiers.
func normalizeLockVersion(v string) string {
	v = strings.ReplaceAll(strings.TrimSpace(v), " ", "")
	switch {
	case v == "" || v == "*":
		return ""
	case strings.ContainsAny(v[:1], "<>=!~^"):
		return v
	}
	return "==" + v
}

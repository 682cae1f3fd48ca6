package installed

import (
	"regexp"
	"strings"

	"github.com/matzehuels/pkgtree/pkg/errors"
)

// Dist is an installed distribution.
type Dist struct {
	Name     string        // Project name as declared in metadata
	Version  string        // Installed version, opaque
	Requires []Requirement // Declared requirements in metadata order
	Extras   []string      // Extras the distribution provides (Provides-Extra)
	Location string        // Where the metadata was read from (optional)

	// Err is set when the requirement list could not be read. Name and Version
	// are still filled in from whatever was available.
	Err error
}

// Key returns the normalized name that identifies the dist.
func (d *Dist) Key() string { return NormalizeName(d.Name) }

// Requirement is one Requires-Dist entry.
type Requirement struct {
	Name      string   // Target project name, as written
	Extras    []string // Extras requested on the target, e.g. requests[socks]
	Specifier string   // Version specifier or "@ url", opaque
	Marker    string   // Environment marker, empty when unconditional
}

// Key returns the normalized target name.
func (r Requirement) Key() string { return NormalizeName(r.Name) }

// String renders the requirement in PEP 508 form.
func (r Requirement) String() string {
	var b strings.Builder
	b.WriteString(r.Name)
	if len(r.Extras) > 0 {
		b.WriteString("[" + strings.Join(r.Extras, ",") + "]")
	}
	if r.Specifier != "" {
		if strings.HasPrefix(r.Specifier, "@") {
			b.WriteString(" ")
		}
		b.WriteString(r.Specifier)
	}
	if r.Marker != "" {
		if strings.HasPrefix(r.Specifier, "@") {
			b.WriteString(" ")
		}
		b.WriteString("; " + r.Marker)
	}
	return b.String()
}

var nameSepRE = regexp.MustCompile(`[-_.]+`)

// NormalizeName converts a project name to its PEP 503 canonical form:
// lower-case with runs of "-", "_" and "." collapsed to a single "-".
func NormalizeName(name string) string {
	return nameSepRE.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "-")
}

var requirementRE = regexp.MustCompile(`^\s*([A-Za-z0-9][A-Za-z0-9._-]*)\s*(?:\[([^\]]*)\])?\s*(.*?)\s*$`)

// ParseRequirement parses a PEP 508 requirement string such as
//
//	PySocks (!=1.5.7,>=1.5.6) ; extra == 'socks'
//	urllib3[socks]<3,>=1.21.1
//	mylib @ https://example.com/mylib.zip ; python_version >= "3.8"
func ParseRequirement(s string) (Requirement, error) {
	spec, marker, _ := strings.Cut(s, ";")
	m := requirementRE.FindStringSubmatch(spec)
	if m == nil {
		return Requirement{}, errors.New(errors.ErrCodeInvalidRequirement, "cannot parse requirement %q", s)
	}
	if err := errors.ValidatePythonPackageName(m[1]); err != nil {
		return Requirement{}, errors.Wrap(errors.ErrCodeInvalidRequirement, err, "requirement %q", s)
	}

	req := Requirement{
		Name:   m[1],
		Marker: strings.TrimSpace(marker),
	}
	if m[2] != "" {
		for _, e := range strings.Split(m[2], ",") {
			if e = strings.TrimSpace(e); e != "" {
				req.Extras = append(req.Extras, e)
			}
		}
	}

	rest := m[3]
	switch {
	case strings.HasPrefix(rest, "@"):
		req.Specifier = "@ " + strings.TrimSpace(rest[1:])
	case strings.HasPrefix(rest, "("):
		if !strings.HasSuffix(rest, ")") {
			return Requirement{}, errors.New(errors.ErrCodeInvalidRequirement, "unbalanced parenthesis in %q", s)
		}
		req.Specifier = strings.ReplaceAll(strings.TrimSpace(rest[1:len(rest)-1]), " ", "")
	default:
		req.Specifier = strings.ReplaceAll(rest, " ", "")
	}
	if req.Specifier != "" && !strings.HasPrefix(req.Specifier, "@") && !strings.ContainsAny(req.Specifier[:1], "<>=!~") {
		return Requirement{}, errors.New(errors.ErrCodeInvalidRequirement, "invalid version specifier in %q", s)
	}
	return req, nil
}

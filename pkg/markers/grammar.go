package markers

import (
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/matzehuels/pkgtree/pkg/errors"
)

var (
	markerLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "String", Pattern: `'[^']*'|"[^"]*"`},
		{Name: "Op", Pattern: `===|==|!=|<=|>=|~=|<|>`},
		{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_.]*`},
		{Name: "Punct", Pattern: `[()]`},
		{Name: "Whitespace", Pattern: `\s+`},
	})

	markerParser = participle.MustBuild[Marker](
		participle.Lexer(markerLexer),
		participle.Elide("Whitespace"),
	)
)

// Marker is a parsed marker expression: a disjunction of conjunctions.
type Marker struct {
	Or []*Conjunction `parser:"@@ ( 'or' @@ )*"`
}

// Conjunction is a sequence of terms joined by "and".
type Conjunction struct {
	And []*Term `parser:"@@ ( 'and' @@ )*"`
}

// Term is either a parenthesised marker or a single comparison.
type Term struct {
	Group      *Marker     `parser:"  '(' @@ ')'"`
	Comparison *Comparison `parser:"| @@"`
}

// Comparison is "<operand> <op> <operand>". Op is one of the version
// comparison operators, "in", or "notin" for "not in".
type Comparison struct {
	Left  *Operand `parser:"@@"`
	Op    string   `parser:"( @Op | @'in' | @( 'not' 'in' ) )"`
	Right *Operand `parser:"@@"`
}

// Operand is an environment variable name or a quoted string literal.
type Operand struct {
	Var *string `parser:"  @Ident"`
	Str *string `parser:"| @String"`
}

// legacyNames maps the dotted spellings still found in old metadata.
var legacyNames = map[string]string{
	"os.name":                        "os_name",
	"sys.platform":                   "sys_platform",
	"platform.version":               "platform_version",
	"platform.machine":               "platform_machine",
	"platform.python_implementation": "platform_python_implementation",
	"python_implementation":          "platform_python_implementation",
}

// Parse parses a marker expression. Unknown variable names are rejected with
// an ErrCodeInvalidMarker error, as are syntax errors.
func Parse(s string) (*Marker, error) {
	m, err := markerParser.ParseString("", s)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidMarker, err, "parsing marker %q", s)
	}
	if err := m.validate(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Marker) validate() error {
	for _, c := range m.Or {
		for _, t := range c.And {
			if t.Group != nil {
				if err := t.Group.validate(); err != nil {
					return err
				}
				continue
			}
			for _, o := range []*Operand{t.Comparison.Left, t.Comparison.Right} {
				if o.Var == nil {
					continue
				}
				name := o.name()
				if name != extraVar && !isKnownVariable(name) {
					return errors.New(errors.ErrCodeInvalidMarker, "unknown marker variable %q", *o.Var)
				}
			}
		}
	}
	return nil
}

// name returns the canonical variable name of a Var operand.
func (o *Operand) name() string {
	if canonical, ok := legacyNames[*o.Var]; ok {
		return canonical
	}
	return *o.Var
}

// literal returns the unquoted value of a string operand.
func (o *Operand) literal() string {
	s := *o.Str
	return s[1 : len(s)-1]
}

// String renders the marker back in normalized PEP 508 form.
func (m *Marker) String() string {
	parts := make([]string, len(m.Or))
	for i, c := range m.Or {
		parts[i] = c.String()
	}
	return strings.Join(parts, " or ")
}

func (c *Conjunction) String() string {
	parts := make([]string, len(c.And))
	for i, t := range c.And {
		if t.Group != nil {
			parts[i] = "(" + t.Group.String() + ")"
		} else {
			parts[i] = t.Comparison.String()
		}
	}
	return strings.Join(parts, " and ")
}

func (c *Comparison) String() string {
	return c.Left.String() + " " + c.op() + " " + c.Right.String()
}

func (c *Comparison) op() string {
	if c.Op == "notin" {
		return "not in"
	}
	return c.Op
}

func (o *Operand) String() string {
	if o.Var != nil {
		return o.name()
	}
	return `"` + o.literal() + `"`
}

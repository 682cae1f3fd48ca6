package markers

import "strings"

// Evaluate reports whether the marker holds in env with the given extras
// activated.
func (m *Marker) Evaluate(env Environment, extras []string) bool {
	for _, c := range m.Or {
		if c.evaluate(env, extras) {
			return true
		}
	}
	return false
}

func (c *Conjunction) evaluate(env Environment, extras []string) bool {
	for _, t := range c.And {
		var ok bool
		if t.Group != nil {
			ok = t.Group.Evaluate(env, extras)
		} else {
			ok = t.Comparison.evaluate(env, extras)
		}
		if !ok {
			return false
		}
	}
	return true
}

func (c *Comparison) evaluate(env Environment, extras []string) bool {
	if c.Left.isExtra() || c.Right.isExtra() {
		return c.evaluateExtra(extras)
	}
	lhs := c.Left.value(env)
	rhs := c.Right.value(env)
	return compare(lhs, c.Op, rhs)
}

// evaluateExtra compares the extra variable against each activated extra.
// With no extras activated the variable is the empty string.
func (c *Comparison) evaluateExtra(extras []string) bool {
	if len(extras) == 0 {
		extras = []string{""}
	}
	other := c.Right
	if c.Right.isExtra() {
		other = c.Left
	}
	if other.Str == nil {
		return false
	}
	want := normalizeExtra(other.literal())
	match := func(op string) bool {
		for _, e := range extras {
			e = normalizeExtra(e)
			var ok bool
			switch op {
			case "==", "===":
				ok = e == want
			case "in":
				ok = e != "" && strings.Contains(want, e)
			}
			if ok {
				return true
			}
		}
		return false
	}
	switch c.Op {
	case "==", "===", "in":
		return match(c.Op)
	case "!=":
		return !match("==")
	case "notin":
		return !match("in")
	}
	return false
}

func (o *Operand) isExtra() bool {
	return o.Var != nil && o.name() == extraVar
}

func (o *Operand) value(env Environment) string {
	if o.Str != nil {
		return o.literal()
	}
	v, _ := env.Lookup(o.name())
	return v
}

func compare(lhs, op, rhs string) bool {
	switch op {
	case "in":
		return strings.Contains(rhs, lhs)
	case "notin":
		return !strings.Contains(rhs, lhs)
	case "===":
		return lhs == rhs
	}
	if ok, isVersion := compareVersions(lhs, op, rhs); isVersion {
		return ok
	}
	switch op {
	case "==":
		return lhs == rhs
	case "!=":
		return lhs != rhs
	case "<":
		return lhs < rhs
	case "<=":
		return lhs <= rhs
	case ">":
		return lhs > rhs
	case ">=":
		return lhs >= rhs
	}
	return false
}

// normalizeExtra applies PEP 685 normalization to an extra name.
func normalizeExtra(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	dash := false
	for _, r := range s {
		if r == '-' || r == '_' || r == '.' {
			if !dash {
				b.WriteByte('-')
			}
			dash = true
			continue
		}
		dash = false
		b.WriteRune(r)
	}
	return b.String()
}

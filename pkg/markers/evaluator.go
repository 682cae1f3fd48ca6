package markers

import "strings"

// Evaluator evaluates marker strings against a fixed environment, caching
// parsed expressions. Markers that fail to parse evaluate to false and are
// reported once through the logger.
//
// An Evaluator is not safe for concurrent use.
type Evaluator struct {
	env    Environment
	logger func(string, ...any)
	cache  map[string]*Marker
	failed map[string]error
	errs   []error
}

// NewEvaluator creates an Evaluator for env. logger may be nil.
func NewEvaluator(env Environment, logger func(string, ...any)) *Evaluator {
	if logger == nil {
		logger = func(string, ...any) {}
	}
	return &Evaluator{
		env:    env,
		logger: logger,
		cache:  make(map[string]*Marker),
		failed: make(map[string]error),
	}
}

// Environment returns the environment markers are evaluated against.
func (e *Evaluator) Environment() Environment { return e.env }

// Evaluate reports whether marker holds with the given extras activated. An
// empty marker always holds.
func (e *Evaluator) Evaluate(marker string, extras []string) bool {
	marker = strings.TrimSpace(marker)
	if marker == "" {
		return true
	}
	m, err := e.parse(marker)
	if err != nil {
		return false
	}
	return m.Evaluate(e.env, extras)
}

// Errors returns the parse failures seen so far, one per distinct marker, in
// the order they were first seen. Each carries ErrCodeInvalidMarker.
func (e *Evaluator) Errors() []error { return e.errs }

func (e *Evaluator) parse(marker string) (*Marker, error) {
	if m, ok := e.cache[marker]; ok {
		return m, nil
	}
	if err, ok := e.failed[marker]; ok {
		return nil, err
	}
	m, err := Parse(marker)
	if err != nil {
		e.failed[marker] = err
		e.errs = append(e.errs, err)
		e.logger("invalid marker %q: %v", marker, err)
		return nil, err
	}
	e.cache[marker] = m
	return m, nil
}

package gocollect

// Selector is a condition used by queries to match resolved values.
// It is one of Truthy, Key, Predicate or AnyOf. A nil Selector matches everything.
type Selector interface {
	match(value any) bool
}

// Truthy matches every value if true, and no value if false.
type Truthy bool

// Key matches a Record that owns the key, or a non-record value equal to the key.
// Used as a Resolver, Key wraps a resolved value into a single-entry Record.
type Key string

// Predicate matches the values it returns true for.
type Predicate func(value any) bool

// AnyOf matches a value if any of its selectors does. An empty AnyOf matches nothing.
type AnyOf []Selector

// Always is the selector queries default to.
const Always = Truthy(true)

// Record is a keyed value, as matched by Key selectors and produced by Key resolvers.
type Record = map[string]any

// Matcher returns a function that reports whether a value matches sel.
func Matcher(sel Selector) func(value any) bool {
	if sel == nil {
		sel = Always
	}

	return sel.match
}

// Match reports whether value matches sel.
func Match(sel Selector, value any) bool {
	return Matcher(sel)(value)
}

func (t Truthy) match(_ any) bool {
	return bool(t)
}

func (k Key) match(value any) bool {
	if rec, ok := value.(Record); ok {
		_, ok = rec[string(k)]
		return ok
	}

	switch v := value.(type) {
	case Key:
		return v == k
	case string:
		return v == string(k)
	}

	return false
}

func (p Predicate) match(value any) bool {
	if p == nil {
		return false
	}

	return p(value)
}

func (a AnyOf) match(value any) bool {
	for _, sel := range a {
		if Match(sel, value) {
			return true
		}
	}

	return false
}

// filter returns the values matching sel, in order.
func filter(values []any, sel Selector) []any {
	match := Matcher(sel)

	matches := []any{}

	for _, v := range values {
		if match(v) {
			matches = append(matches, v)
		}
	}

	return matches
}

// Package router is the console's client-side route table: a static mapping
// from navigated path to a named view.
//
// Navigation uses browser history semantics (path based, no hash fragment).
// The table is immutable once built and safe for concurrent use.
package router

import (
	"fmt"
	"strings"
)

// Route binds a path to a view. V is whatever the host renders; the table
// never inspects it.
type Route[V any] struct {
	Path string // absolute, e.g. "/chat"
	Name string // display label, unique within a table
	View V
}

// Table resolves navigated paths to routes.
type Table[V any] struct {
	base   string // "" for root, otherwise "/prefix" without trailing slash
	routes []Route[V]
	byPath map[string]int
	byName map[string]int
	home   int
}

// New validates routes and builds a table served under base ("/" or "" for
// the site root).
//
// Paths must be pairwise distinct (ignoring case and trailing slash), names
// must be pairwise distinct, and exactly one route must have path "/".
func New[V any](base string, routes ...Route[V]) (*Table[V], error) {
	b, err := normalizeBase(base)
	if err != nil {
		return nil, err
	}
	t := &Table[V]{
		base:   b,
		routes: make([]Route[V], 0, len(routes)),
		byPath: make(map[string]int, len(routes)),
		byName: make(map[string]int, len(routes)),
		home:   -1,
	}
	for _, r := range routes {
		if err := validatePath(r.Path); err != nil {
			return nil, err
		}
		if strings.TrimSpace(r.Name) == "" {
			return nil, fmt.Errorf("%w: route %q has no name", ErrInvalidRoute, r.Path)
		}
		key := matchKey(r.Path)
		if _, dup := t.byPath[key]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicatePath, r.Path)
		}
		if _, dup := t.byName[r.Name]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateName, r.Name)
		}
		idx := len(t.routes)
		t.routes = append(t.routes, r)
		t.byPath[key] = idx
		t.byName[r.Name] = idx
		if key == "/" {
			t.home = idx
		}
	}
	if t.home < 0 {
		return nil, ErrNoHome
	}
	return t, nil
}

// Resolve returns the route registered for location, which may carry the
// history base, a query string and a fragment. Matching ignores case and a
// trailing slash. Unmatched locations fail with a *NavigationError wrapping
// ErrNotFound; there is no catch-all.
func (t *Table[V]) Resolve(location string) (Route[V], error) {
	p, ok := t.stripBase(stripQueryAndFragment(location))
	if !ok {
		return Route[V]{}, &NavigationError{Location: location}
	}
	idx, found := t.byPath[matchKey(p)]
	if !found {
		return Route[V]{}, &NavigationError{Location: location}
	}
	return t.routes[idx], nil
}

// ByName returns the route with the given display name.
func (t *Table[V]) ByName(name string) (Route[V], error) {
	idx, ok := t.byName[name]
	if !ok {
		return Route[V]{}, &NavigationError{Name: name}
	}
	return t.routes[idx], nil
}

// Href returns the base-prefixed location of the named route.
func (t *Table[V]) Href(name string) (string, error) {
	r, err := t.ByName(name)
	if err != nil {
		return "", err
	}
	return t.Location(r.Path), nil
}

// Location prefixes a route path with the history base.
func (t *Table[V]) Location(path string) string {
	if t.base == "" {
		return path
	}
	if path == "/" {
		return t.base + "/"
	}
	return t.base + path
}

// Routes returns the routes in registration order.
func (t *Table[V]) Routes() []Route[V] {
	out := make([]Route[V], len(t.routes))
	copy(out, t.routes)
	return out
}

// Home returns the route for "/".
func (t *Table[V]) Home() Route[V] { return t.routes[t.home] }

// Base returns the history base ("/" for the site root).
func (t *Table[V]) Base() string {
	if t.base == "" {
		return "/"
	}
	return t.base
}

// Len returns the number of routes.
func (t *Table[V]) Len() int { return len(t.routes) }

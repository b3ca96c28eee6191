package router

import (
	"fmt"
	"strings"
)

func normalizeBase(base string) (string, error) {
	base = strings.TrimSpace(base)
	if base == "" || base == "/" {
		return "", nil
	}
	if !strings.HasPrefix(base, "/") || strings.ContainsAny(base, "?#") {
		return "", fmt.Errorf("%w: history base %q", ErrInvalidRoute, base)
	}
	return strings.TrimRight(base, "/"), nil
}

func validatePath(p string) error {
	switch {
	case !strings.HasPrefix(p, "/"):
		return fmt.Errorf("%w: path %q must start with '/'", ErrInvalidRoute, p)
	case strings.ContainsAny(p, "?# \t\n"):
		return fmt.Errorf("%w: path %q contains a query, fragment or whitespace", ErrInvalidRoute, p)
	case p != "/" && strings.HasSuffix(p, "/"):
		return fmt.Errorf("%w: path %q has a trailing slash", ErrInvalidRoute, p)
	}
	return nil
}

func stripQueryAndFragment(location string) string {
	if i := strings.IndexAny(location, "?#"); i >= 0 {
		location = location[:i]
	}
	return location
}

// stripBase removes the history base. ok is false when location lies outside it.
func (t *Table[V]) stripBase(location string) (string, bool) {
	if !strings.HasPrefix(location, "/") {
		return "", false
	}
	if t.base == "" {
		return location, true
	}
	n := len(t.base)
	if len(location) < n || !strings.EqualFold(location[:n], t.base) {
		return "", false
	}
	rest := location[n:]
	if rest == "" {
		return "/", true
	}
	if rest[0] != '/' {
		return "", false
	}
	return rest, true
}

// matchKey folds case and drops trailing slashes.
func matchKey(p string) string {
	p = strings.ToLower(p)
	for len(p) > 1 && strings.HasSuffix(p, "/") {
		p = p[:len(p)-1]
	}
	return p
}

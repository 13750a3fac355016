package fetch

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Policy decides which URLs are eligible for offline fallback. It is data,
// not code: exact path literals plus a small set of path patterns where "*"
// matches exactly one segment.
type Policy struct {
	Exact    []string `yaml:"exact"`
	Patterns []string `yaml:"patterns"`
}

// DefaultPolicy covers the read endpoints the client serves offline.
func DefaultPolicy() *Policy {
	return &Policy{
		Exact: []string{
			"/api/bookings",
			"/api/routes",
			"/api/profile",
		},
		Patterns: []string{
			"/api/bookings/*",
			"/api/routes/*",
		},
	}
}

// LoadPolicy reads a policy file, falling back to the defaults when the file
// does not exist.
func LoadPolicy(path string) (*Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultPolicy(), nil
		}
		return nil, fmt.Errorf("read endpoint policy: %w", err)
	}

	var p Policy
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse endpoint policy: %w", err)
	}
	return &p, nil
}

// Cacheable reports whether the URL's path is in the cacheable set.
// The query string never participates in the decision; it only shapes the
// cache key.
func (p *Policy) Cacheable(url string) bool {
	path := url
	if i := strings.Index(path, "?"); i >= 0 {
		path = path[:i]
	}
	// Absolute URLs match on their path component.
	if strings.HasPrefix(path, "http") {
		if i := strings.Index(path, "//"); i >= 0 {
			rest := path[i+2:]
			if j := strings.Index(rest, "/"); j >= 0 {
				path = rest[j:]
			} else {
				path = "/"
			}
		}
	}

	for _, exact := range p.Exact {
		if path == exact {
			return true
		}
	}
	for _, pattern := range p.Patterns {
		if matchPattern(pattern, path) {
			return true
		}
	}
	return false
}

// matchPattern compares path segments; "*" matches exactly one segment.
func matchPattern(pattern, path string) bool {
	ps := strings.Split(strings.Trim(pattern, "/"), "/")
	ts := strings.Split(strings.Trim(path, "/"), "/")
	if len(ps) != len(ts) {
		return false
	}
	for i := range ps {
		if ps[i] == "*" {
			if ts[i] == "" {
				return false
			}
			continue
		}
		if ps[i] != ts[i] {
			return false
		}
	}
	return true
}

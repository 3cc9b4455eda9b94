// Package exclude resolves ignore-in-destination patterns into the set of
// lookup keys that must survive a sync.
package exclude

import (
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/sdejongh/globsync/pkg/pathmap"
)

// Set is a set of protected lookup keys, stored in pathmap.Key form
type Set map[string]struct{}

// Add inserts a key
func (s Set) Add(p string) {
	s[pathmap.Key(p)] = struct{}{}
}

// Has reports whether p is protected
func (s Set) Has(p string) bool {
	_, ok := s[pathmap.Key(p)]
	return ok
}

// Keys returns the members in no particular order
func (s Set) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	return keys
}

// Match reports whether relativePath matches any of the patterns.
// Patterns support:
//   - Simple glob patterns: *.tmp (full relative path, use **/*.tmp for any depth)
//   - Any depth: **/test-0.txt, one/**/*
//   - Directory patterns: cache/ matches the directory and everything below it
//
// Dotfiles are matched like any other name. Invalid patterns never match.
func Match(relativePath string, patterns []string) bool {
	normalizedPath := pathmap.Normalize(relativePath)

	for _, pattern := range patterns {
		if pattern == "" {
			continue
		}

		for _, p := range expandPattern(pathmap.Normalize(pattern)) {
			matched, err := doublestar.Match(p, normalizedPath)
			if err == nil && matched {
				return true
			}
		}
	}

	return false
}

// expandPattern turns a directory pattern "dir/" into "dir" and "dir/**"
func expandPattern(pattern string) []string {
	if !strings.HasSuffix(pattern, "/") {
		return []string{pattern}
	}

	dir := strings.TrimRight(pattern, "/")
	if dir == "" {
		return nil
	}
	return []string{dir, dir + "/**"}
}

// Resolve computes the protected keys for a destination.
// Every destination entry matching an ignore pattern is mapped back to its
// source lookup key, and that key plus each of its ancestor directories is
// protected. Protecting the ancestors keeps a directory that only holds
// ignored files from being treated as stale.
func Resolve(destinationFiles, patterns []string, base string) Set {
	set := Set{}
	if len(patterns) == 0 {
		return set
	}

	for _, d := range destinationFiles {
		if !Match(d, patterns) {
			continue
		}

		key := pathmap.DestinationToSource(d, base)
		for _, p := range pathmap.ExpandTree(key) {
			set.Add(p)
		}
	}

	return set
}

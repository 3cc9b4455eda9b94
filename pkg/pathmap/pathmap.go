// Package pathmap converts between source paths, destination-relative paths
// and lookup keys used when reconciling a destination tree against a set of
// glob matches.
package pathmap

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// PathError reports a source path that does not live under the configured base
type PathError struct {
	Path string
	Base string
}

func (e *PathError) Error() string {
	return fmt.Sprintf("path %q is not under base %q", e.Path, e.Base)
}

// Normalize replaces every backslash with a forward slash
func Normalize(p string) string {
	return strings.ReplaceAll(p, "\\", "/")
}

// TrimBase strips trailing separators from a base path.
// A bare "/" is kept as is.
func TrimBase(base string) string {
	base = Normalize(base)
	for len(base) > 1 && strings.HasSuffix(base, "/") {
		base = strings.TrimSuffix(base, "/")
	}
	return base
}

// SourceToDestination maps a source path onto the destination root.
// When base is set the source is first made relative to it; a source
// outside base yields a *PathError.
func SourceToDestination(sourcePath, root, base string) (string, error) {
	rel := Normalize(sourcePath)

	if base != "" {
		r, err := filepath.Rel(filepath.FromSlash(Normalize(base)), filepath.FromSlash(rel))
		if err != nil {
			return "", &PathError{Path: sourcePath, Base: base}
		}
		r = filepath.ToSlash(r)
		if r == ".." || strings.HasPrefix(r, "../") {
			return "", &PathError{Path: sourcePath, Base: base}
		}
		rel = r
	}

	return Normalize(path.Join(Normalize(root), rel)), nil
}

// DestinationToSource maps a destination-relative path back to the key it
// would have in the source file list. The result is a lookup key and need
// not exist on disk.
func DestinationToSource(destRelative, base string) string {
	if base == "" {
		return Normalize(destRelative)
	}
	return Normalize(path.Join(Normalize(base), Normalize(destRelative)))
}

// Key returns the comparison form of p: normalized, cleaned and without a
// leading "/" or "./". Absolute source paths remapped under a destination
// lose their leading slash in the destination listing, so both sides are
// compared in this form.
func Key(p string) string {
	if p == "" {
		return ""
	}
	k := path.Clean(Normalize(p))
	k = strings.TrimLeft(k, "/")
	if k == "." {
		return ""
	}
	return k
}

// ExpandTree returns every cumulative prefix of p split on "/".
//
//	ExpandTree("a/b/c") == []string{"a", "a/b", "a/b/c"}
func ExpandTree(p string) []string {
	p = Normalize(p)

	lead := ""
	if strings.HasPrefix(p, "/") {
		lead = "/"
		p = strings.TrimLeft(p, "/")
	}

	parts := strings.Split(p, "/")
	tree := make([]string, 0, len(parts))

	current := lead + parts[0]
	tree = append(tree, current)
	for _, part := range parts[1:] {
		current = Normalize(path.Join(current, part))
		tree = append(tree, current)
	}

	return tree
}

// ParentDir returns the literal directory prefix of a glob pattern, the
// part before the first path segment containing a meta character.
// The current directory is returned as "".
func ParentDir(pattern string) string {
	base, _ := doublestar.SplitPattern(Normalize(pattern))
	if base == "." {
		return ""
	}
	return base
}

// Recursive reports whether the wildcard part of pattern can match entries
// below ParentDir other than its direct files: a "**", a bare "*" segment,
// or wildcards spanning several segments.
func Recursive(pattern string) bool {
	_, rest := doublestar.SplitPattern(Normalize(pattern))
	if !strings.ContainsAny(rest, "*?[{") {
		return false
	}
	if strings.Contains(rest, "**") || strings.Contains(rest, "/") {
		return true
	}
	return rest == "*"
}

// ValidPattern reports whether pattern is non-empty, well-formed glob syntax
func ValidPattern(pattern string) bool {
	if pattern == "" {
		return false
	}
	return doublestar.ValidatePattern(Normalize(pattern))
}

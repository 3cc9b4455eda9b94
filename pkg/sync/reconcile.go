package sync

import (
	"path"
	"strings"

	"github.com/sdejongh/globsync/pkg/exclude"
	"github.com/sdejongh/globsync/pkg/models"
	"github.com/sdejongh/globsync/pkg/pathmap"
)

// PlanInput holds everything reconciliation needs for one destination
type PlanInput struct {
	// Patterns are the source glob patterns as given by the caller
	Patterns []string
	// SourceFiles are the paths the patterns expanded to
	SourceFiles []string
	// Root is the destination root directory
	Root string
	// DestinationFiles are the entries below Root, relative to it
	DestinationFiles []string
	// Options must already be normalized
	Options models.Options
}

// RemoveAction deletes a stale destination entry
type RemoveAction struct {
	// Path is the entry below the destination root
	Path string
	// Relative is the entry relative to the destination root
	Relative string
}

// CopyAction copies a source file to its mapped destination path.
// Whether the copy really happens is decided at execution time.
type CopyAction struct {
	From string
	To   string
}

// Plan is the set of actions for one destination
type Plan struct {
	Root    string
	Deletes []RemoveAction
	Copies  []CopyAction
}

// Len returns the number of planned actions
func (p *Plan) Len() int {
	return len(p.Deletes) + len(p.Copies)
}

// Reconcile computes the delete and copy candidates for one destination.
//
// A destination entry is stale when its lookup key is not covered by any
// source file, any directory on the literal prefix of a pattern, or any path
// protected by IgnoreInDest. Stale entries are only collected when
// UpdateAndDelete is set. Every source file becomes a copy candidate.
//
// It returns a *pathmap.PathError when a source file is not under Base.
func Reconcile(in PlanInput) (*Plan, error) {
	opts := in.Options
	plan := &Plan{Root: in.Root}

	// Map copies first so a bad base fails before anything is planned
	for _, src := range in.SourceFiles {
		to, err := pathmap.SourceToDestination(src, in.Root, opts.Base)
		if err != nil {
			return nil, err
		}
		plan.Copies = append(plan.Copies, CopyAction{From: src, To: to})
	}

	if !opts.UpdateAndDelete {
		return plan, nil
	}

	keys := sourceKeys(in.Patterns, in.SourceFiles, in.DestinationFiles, opts)
	covered := coverage(opts.Containment, keys)

	for _, d := range in.DestinationFiles {
		key := pathmap.Key(pathmap.DestinationToSource(d, opts.Base))
		if covered(key) {
			continue
		}

		rel := pathmap.Normalize(d)
		plan.Deletes = append(plan.Deletes, RemoveAction{
			Path:     pathmap.Normalize(path.Join(pathmap.Normalize(in.Root), rel)),
			Relative: rel,
		})
	}

	return plan, nil
}

// sourceKeys builds the full key set a destination entry is checked against:
// the source files, every directory on each pattern's literal prefix, and
// every protected path with its ancestors.
func sourceKeys(patterns, sourceFiles, destinationFiles []string, opts models.Options) []string {
	seen := make(map[string]struct{}, len(sourceFiles))
	var keys []string

	add := func(p string) {
		k := pathmap.Key(p)
		if _, ok := seen[k]; ok {
			return
		}
		seen[k] = struct{}{}
		keys = append(keys, k)
	}

	for _, s := range sourceFiles {
		add(s)
	}

	add("")
	for _, pattern := range patterns {
		parent := pathmap.ParentDir(pattern)
		if parent == "" {
			continue
		}
		for _, dir := range pathmap.ExpandTree(parent) {
			add(dir)
		}
	}

	for _, k := range exclude.Resolve(destinationFiles, opts.IgnoreInDest, opts.Base).Keys() {
		add(k)
	}

	return keys
}

// coverage returns the predicate deciding whether a destination key survives
func coverage(mode models.Containment, keys []string) func(key string) bool {
	if mode == models.ContainmentSubstring {
		return func(key string) bool {
			for _, k := range keys {
				if strings.Contains(k, key) {
					return true
				}
			}
			return false
		}
	}

	// Every key and each of its ancestors, so lookups are exact
	set := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		if k == "" {
			continue
		}
		for _, prefix := range pathmap.ExpandTree(k) {
			set[prefix] = struct{}{}
		}
	}

	return func(key string) bool {
		if key == "" {
			return true
		}
		_, ok := set[key]
		return ok
	}
}

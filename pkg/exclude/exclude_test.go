package exclude

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatch(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		patterns []string
		want     bool
	}{
		{"NoPatterns", "a.txt", nil, false},
		{"EmptyPattern", "a.txt", []string{""}, false},
		{"AnyDepthFile", "main/test-0.txt", []string{"**/test-0.txt"}, true},
		{"AnyDepthAtRoot", "test-0.txt", []string{"**/test-0.txt"}, true},
		{"Extension", "deep/nested/x.txt", []string{"**/*.txt"}, true},
		{"ExtensionMiss", "deep/nested/x.md", []string{"**/*.txt"}, false},
		{"TopLevelOnly", "deep/x.txt", []string{"*.txt"}, false},
		{"Dotfile", ".env", []string{"*"}, true},
		{"SubtreeChild", "one/test-0.txt", []string{"one/**/*"}, true},
		{"SubtreeDirItself", "one", []string{"one/**/*"}, false},
		{"DirectoryPatternDir", "cache", []string{"cache/"}, true},
		{"DirectoryPatternChild", "cache/x/y.bin", []string{"cache/"}, true},
		{"DirectoryPatternSibling", "cached", []string{"cache/"}, false},
		{"BackslashPath", "main\\test-0.txt", []string{"main/*.txt"}, true},
		{"InvalidPattern", "a[b", []string{"a[b"}, false},
		{"SecondPatternMatches", "two/x", []string{"one/**", "two/**"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Match(tt.path, tt.patterns))
		})
	}
}

func TestResolve(t *testing.T) {
	t.Run("ProtectsAncestors", func(t *testing.T) {
		dest := []string{
			"fixtures",
			"fixtures/main",
			"fixtures/main/test-0.txt",
			"fixtures/keep.md",
		}

		set := Resolve(dest, []string{"**/*.txt"}, "")
		keys := set.Keys()
		sort.Strings(keys)

		assert.Equal(t, []string{"fixtures", "fixtures/main", "fixtures/main/test-0.txt"}, keys)
		assert.False(t, set.Has("fixtures/keep.md"))
	})

	t.Run("MapsThroughBase", func(t *testing.T) {
		dest := []string{"one", "one/test-0.txt", "two", "two/test-0.txt", "folder-1"}

		set := Resolve(dest, []string{"one/**/*", "two/**/*"}, "fixtures")

		for _, key := range []string{"fixtures", "fixtures/one", "fixtures/one/test-0.txt", "fixtures/two", "fixtures/two/test-0.txt"} {
			assert.True(t, set.Has(key), "expected %q to be protected", key)
		}
		assert.False(t, set.Has("fixtures/folder-1"))
	})

	t.Run("AbsoluteBase", func(t *testing.T) {
		set := Resolve([]string{"logs/a.log"}, []string{"logs/"}, "/srv/app")

		assert.True(t, set.Has("/srv/app/logs/a.log"))
		assert.True(t, set.Has("srv/app/logs"))
		assert.True(t, set.Has("/srv"))
	})

	t.Run("NoPatterns", func(t *testing.T) {
		assert.Empty(t, Resolve([]string{"a", "b"}, nil, ""))
	})

	t.Run("NoMatches", func(t *testing.T) {
		assert.Empty(t, Resolve([]string{"a.md"}, []string{"**/*.txt"}, ""))
	})
}

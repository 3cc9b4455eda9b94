package pathmap

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"test\\file.js", "test/file.js"},
		{"a/b/c", "a/b/c"},
		{"C:\\dir\\sub\\", "C:/dir/sub/"},
		{"", ""},
	}

	for _, tt := range tests {
		got := Normalize(tt.in)
		if got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
		if strings.Contains(got, "\\") {
			t.Errorf("Normalize(%q) still contains a backslash", tt.in)
		}
		if again := Normalize(got); again != got {
			t.Errorf("Normalize is not idempotent: %q -> %q", got, again)
		}
	}
}

func TestTrimBase(t *testing.T) {
	tests := map[string]string{
		"fixtures/":   "fixtures",
		"fixtures//":  "fixtures",
		"fixtures":    "fixtures",
		"a\\b\\":      "a/b",
		"/":           "/",
		"":            "",
		"/tmp/src/":   "/tmp/src",
	}

	for in, want := range tests {
		if got := TrimBase(in); got != want {
			t.Errorf("TrimBase(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestDestinationToSource(t *testing.T) {
	if got := DestinationToSource("file.js", "dest"); got != "dest/file.js" {
		t.Errorf("DestinationToSource() = %q, want dest/file.js", got)
	}
	if got := DestinationToSource("sub\\file.js", ""); got != "sub/file.js" {
		t.Errorf("DestinationToSource() without base = %q, want sub/file.js", got)
	}
}

func TestSourceToDestination(t *testing.T) {
	t.Run("WithBase", func(t *testing.T) {
		got, err := SourceToDestination("src/file.js", "dest", "src")
		if err != nil {
			t.Fatalf("SourceToDestination() error = %v", err)
		}
		if got != "dest/file.js" {
			t.Errorf("SourceToDestination() = %q, want dest/file.js", got)
		}
	})

	t.Run("WithoutBase", func(t *testing.T) {
		got, err := SourceToDestination("fixtures/a/b.txt", "out", "")
		if err != nil {
			t.Fatalf("SourceToDestination() error = %v", err)
		}
		if got != "out/fixtures/a/b.txt" {
			t.Errorf("SourceToDestination() = %q, want out/fixtures/a/b.txt", got)
		}
	})

	t.Run("AbsoluteSourceWithoutBase", func(t *testing.T) {
		got, err := SourceToDestination("/work/fixtures/a.txt", "/out", "")
		if err != nil {
			t.Fatalf("SourceToDestination() error = %v", err)
		}
		if got != "/out/work/fixtures/a.txt" {
			t.Errorf("SourceToDestination() = %q, want /out/work/fixtures/a.txt", got)
		}
	})

	t.Run("BackslashInput", func(t *testing.T) {
		got, err := SourceToDestination("src\\nested\\file.js", "dest", "src")
		if err != nil {
			t.Fatalf("SourceToDestination() error = %v", err)
		}
		if got != "dest/nested/file.js" {
			t.Errorf("SourceToDestination() = %q, want dest/nested/file.js", got)
		}
	})

	t.Run("OutsideBase", func(t *testing.T) {
		_, err := SourceToDestination("other/file.js", "dest", "src")
		var pathErr *PathError
		if !errors.As(err, &pathErr) {
			t.Fatalf("SourceToDestination() error = %v, want *PathError", err)
		}
		if pathErr.Path != "other/file.js" || pathErr.Base != "src" {
			t.Errorf("PathError = %+v", pathErr)
		}
	})

	t.Run("SiblingWithSharedPrefix", func(t *testing.T) {
		if _, err := SourceToDestination("srcx/file.js", "dest", "src"); err == nil {
			t.Error("SourceToDestination() should reject a sibling that only shares a name prefix")
		}
	})
}

func TestRoundTrip(t *testing.T) {
	tests := []struct {
		source string
		base   string
	}{
		{"src/a/b.txt", "src"},
		{"fixtures/folder-1/test.txt", "fixtures"},
		{"/work/project/src/x.go", "/work/project"},
		{"a/b.txt", ""},
	}

	for _, tt := range tests {
		dest, err := SourceToDestination(tt.source, "root", tt.base)
		if err != nil {
			t.Fatalf("SourceToDestination(%q) error = %v", tt.source, err)
		}

		rel := strings.TrimPrefix(dest, "root/")
		back := DestinationToSource(rel, tt.base)
		if !strings.HasSuffix(Normalize(tt.source), back) {
			t.Errorf("round trip of %q via base %q gave %q", tt.source, tt.base, back)
		}
	}
}

func TestKey(t *testing.T) {
	tests := map[string]string{
		"":                "",
		".":               "",
		"./a/b":           "a/b",
		"/abs/path/":      "abs/path",
		"a\\b":            "a/b",
		"a//b/../c":       "a/c",
	}

	for in, want := range tests {
		if got := Key(in); got != want {
			t.Errorf("Key(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestExpandTree(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"a/b/c", []string{"a", "a/b", "a/b/c"}},
		{"x", []string{"x"}},
		{"/abs/dir", []string{"/abs", "/abs/dir"}},
		{"src\\files", []string{"src", "src/files"}},
	}

	for _, tt := range tests {
		got := ExpandTree(tt.in)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("ExpandTree(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParentDir(t *testing.T) {
	tests := map[string]string{
		"fixtures/**":         "fixtures",
		"src/files/**/*.js":   "src/files",
		"**":                  "",
		"*.txt":               "",
		"/abs/dir/*.go":       "/abs/dir",
		"a/b/{c,d}/*.txt":     "a/b",
	}

	for in, want := range tests {
		if got := ParentDir(in); got != want {
			t.Errorf("ParentDir(%q) = %q, want %q", in, got, want)
		}
	}

	tree := ExpandTree(ParentDir("src/files/**/*.js"))
	if !reflect.DeepEqual(tree, []string{"src", "src/files"}) {
		t.Errorf("ExpandTree(ParentDir()) = %v", tree)
	}
}

func TestRecursive(t *testing.T) {
	tests := map[string]bool{
		"**":               true,
		"./**":             true,
		"*":                true,
		"fixtures/**":      true,
		"fixtures/*":       true,
		"*/*.txt":          true,
		"a/{b,c}/x.txt":    true,
		"*.txt":            false,
		"fixtures/*.go":    false,
		"fixtures/a.txt":   false,
		"/abs/dir/file.go": false,
	}

	for in, want := range tests {
		if got := Recursive(in); got != want {
			t.Errorf("Recursive(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestValidPattern(t *testing.T) {
	valid := []string{"fixtures/**", "*.txt", "a/b/c", "**/{a,b}/*.go"}
	for _, p := range valid {
		if !ValidPattern(p) {
			t.Errorf("ValidPattern(%q) = false, want true", p)
		}
	}

	invalid := []string{"", "a/[b", "{a,b"}
	for _, p := range invalid {
		if ValidPattern(p) {
			t.Errorf("ValidPattern(%q) = true, want false", p)
		}
	}
}

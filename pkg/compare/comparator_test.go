package compare

import (
	"testing"
	"time"

	"github.com/sdejongh/globsync/pkg/storage"
)

func fileAt(seconds int64) *storage.FileInfo {
	return &storage.FileInfo{ModTime: time.Unix(seconds, 0)}
}

func TestSkipUpdate(t *testing.T) {
	dir := &storage.FileInfo{IsDir: true, ModTime: time.Unix(50, 0)}

	tests := []struct {
		name            string
		source          *storage.FileInfo
		dest            *storage.FileInfo
		updateAndDelete bool
		want            bool
		reason          Reason
	}{
		{"DirectoryWithDest", dir, fileAt(10), true, true, ReasonDirectory},
		{"DirectoryWithoutDest", dir, nil, true, true, ReasonDirectory},
		{"DirectoryNoUpdate", dir, nil, false, true, ReasonDirectory},
		{"MissingDest", fileAt(10), nil, true, false, ReasonMissing},
		{"MissingDestNoUpdate", fileAt(10), nil, false, false, ReasonMissing},
		{"PresentDestNoUpdate", fileAt(100), fileAt(10), false, true, ReasonDestExists},
		{"DestNewer", fileAt(10), fileAt(100), true, true, ReasonUpToDate},
		{"SourceNewer", fileAt(100), fileAt(10), true, false, ReasonOutdated},
		{"SameModTime", fileAt(10), fileAt(10), true, false, ReasonOutdated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SkipUpdate(tt.source, tt.dest, tt.updateAndDelete); got != tt.want {
				t.Errorf("SkipUpdate() = %v, want %v", got, tt.want)
			}

			decision := Decide(tt.source, tt.dest, tt.updateAndDelete)
			if decision.Reason != tt.reason {
				t.Errorf("Decide().Reason = %q, want %q", decision.Reason, tt.reason)
			}
		})
	}
}

func TestDecisionString(t *testing.T) {
	skip := Decision{Skip: true, Reason: ReasonUpToDate}
	if got := skip.String(); got != "skip: destination is up to date" {
		t.Errorf("String() = %q", got)
	}

	cp := Decision{Reason: ReasonMissing}
	if got := cp.String(); got != "copy: destination does not exist" {
		t.Errorf("String() = %q", got)
	}
}

package compare

import (
	"fmt"

	"github.com/sdejongh/globsync/pkg/storage"
)

// Reason explains an update decision
type Reason string

const (
	// ReasonDestExists means the destination exists and overwriting is disabled
	ReasonDestExists Reason = "destination exists and updates are disabled"
	// ReasonDirectory means the source is a directory
	ReasonDirectory Reason = "source is a directory"
	// ReasonUpToDate means the destination is newer than the source
	ReasonUpToDate Reason = "destination is up to date"
	// ReasonMissing means the destination does not exist
	ReasonMissing Reason = "destination does not exist"
	// ReasonOutdated means the source is newer than or as new as the destination
	ReasonOutdated Reason = "destination is outdated"
)

// Decision is the outcome of comparing a source file with its destination
type Decision struct {
	Skip   bool
	Reason Reason
}

// String formats the decision for logs
func (d Decision) String() string {
	verb := "copy"
	if d.Skip {
		verb = "skip"
	}
	return fmt.Sprintf("%s: %s", verb, d.Reason)
}

// Decide compares source metadata with the destination's. dest is nil when
// the destination does not exist.
//
// Rules, first match wins:
//  1. dest exists and updateAndDelete is off: skip, existing files are never overwritten
//  2. source is a directory: skip, directories appear as a side effect of copying files
//  3. dest exists and source is strictly older: skip
//  4. otherwise: copy
func Decide(source, dest *storage.FileInfo, updateAndDelete bool) Decision {
	if dest != nil && !updateAndDelete {
		return Decision{Skip: true, Reason: ReasonDestExists}
	}
	if source.IsDir {
		return Decision{Skip: true, Reason: ReasonDirectory}
	}
	if dest != nil && source.ModTime.Before(dest.ModTime) {
		return Decision{Skip: true, Reason: ReasonUpToDate}
	}
	if dest == nil {
		return Decision{Skip: false, Reason: ReasonMissing}
	}
	return Decision{Skip: false, Reason: ReasonOutdated}
}

// SkipUpdate reports whether copying source over dest can be skipped
func SkipUpdate(source, dest *storage.FileInfo, updateAndDelete bool) bool {
	return Decide(source, dest, updateAndDelete).Skip
}

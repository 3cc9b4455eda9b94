package sync

import "fmt"

// RemoveError reports a failed deletion of a destination entry
type RemoveError struct {
	Path string
	Err  error
}

func (e *RemoveError) Error() string {
	return fmt.Sprintf("cannot remove '%s': %v", e.Path, e.Err)
}

func (e *RemoveError) Unwrap() error {
	return e.Err
}

// CopyError reports a failed copy of a source file
type CopyError struct {
	From string
	To   string
	Err  error
}

func (e *CopyError) Error() string {
	return fmt.Sprintf("'%s' to '%s': %v", e.From, e.To, e.Err)
}

func (e *CopyError) Unwrap() error {
	return e.Err
}

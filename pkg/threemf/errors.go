package threemf

import "fmt"

// PackagingError reports a failure while assembling or writing the
// archive. Path is the archive-internal part the failure relates to,
// when one applies.
type PackagingError struct {
	Op   string
	Path string
	Err  error
}

func (e *PackagingError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("threemf: %s %s: %v", e.Op, e.Path, e.Err)
	}
	return fmt.Sprintf("threemf: %s: %v", e.Op, e.Err)
}

func (e *PackagingError) Unwrap() error { return e.Err }

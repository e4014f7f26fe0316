package assets

import "errors"

var (
	// ErrDestinationConflict is returned when two plugins declare the same destination path
	ErrDestinationConflict = errors.New("asset destination declared by more than one plugin")

	// ErrSyncFailed wraps every failure collected during a synchronization
	ErrSyncFailed = errors.New("asset synchronization failed")
)

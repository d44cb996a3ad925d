package claim

import "errors"

var (
	// ErrNotFound is returned for absent claim records.
	ErrNotFound = errors.New("claim: not found")

	// ErrStatusConflict means the claim's current status no longer matches
	// the transition's starting point, either because the requested jump is
	// illegal or because a concurrent update won.
	ErrStatusConflict = errors.New("claim: status conflict")
)

package logs

import "errors"

var (
	// ErrUnauthenticated means no identity was presented where one is needed.
	ErrUnauthenticated = errors.New("authentication required")
	// ErrForbidden means an identity was presented but it does not own the record.
	ErrForbidden = errors.New("access denied")
	// ErrNotFound covers both a missing record and, for id-scoped lookups, a
	// record owned by somebody else.
	ErrNotFound = errors.New("log not found")
	// ErrStorageWrite means the physical blob write or removal failed.
	ErrStorageWrite = errors.New("blob storage write failed")
)

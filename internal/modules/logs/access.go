package logs

import "savelog/internal/domain"

// Access decisions are pure functions of the record and the resolved
// identity. Handlers resolve tokens before calling in; nothing here touches
// storage.

// CanRead allows anyone to read a public record. A private record is readable
// only by its owner: no identity yields ErrUnauthenticated, a non-owner
// identity yields ErrForbidden. The two outcomes stay distinct so the
// boundary can report 401 vs 403.
func CanRead(rec *domain.Log, identity *domain.User) error {
	if !rec.Private {
		return nil
	}
	if identity == nil {
		return ErrUnauthenticated
	}
	if !rec.OwnedBy(identity.ID) {
		return ErrForbidden
	}
	return nil
}

// RequireIdentity guards the operations that never work anonymously: delete,
// list-mine and bulk cleanup. Ownership is enforced separately by the
// owner-scoped queries.
func RequireIdentity(identity *domain.User) error {
	if identity == nil {
		return ErrUnauthenticated
	}
	return nil
}

package credstore

import "context"

// Store persists at most one credential blob and its optional username for
// the local profile. Implementations treat the credential as an opaque
// pass-through payload and must keep the pair coupled: a username is never
// present without a credential, and Clear removes both unconditionally.
type Store interface {
	// Get returns the persisted pair. ok is false when nothing is stored.
	Get(ctx context.Context) (credential []byte, username string, ok bool, err error)
	// Put persists the credential together with the username. An empty
	// username is valid (login-only profiles have no name).
	Put(ctx context.Context, credential []byte, username string) error
	// Clear removes both entries. Idempotent when nothing is stored.
	Clear(ctx context.Context) error
}

package session

import (
	"context"

	"github.com/passwallet/passwallet/internal/passkey"
)

// Restore reconstructs the authenticated session from the credential store.
// It runs once at startup. A restore failure of any kind is treated as "no
// session": the store is cleared and the application lands on the
// unauthenticated screen without a user-facing notification. This is looser
// than the login path on purpose and matches the auth-flow asymmetry the
// product ships with.
func (m *Manager) Restore(ctx context.Context) {
	payload, username, ok, err := m.store.Get(ctx)
	if err != nil || !ok {
		if err != nil {
			m.logger.Warn("read stored credential", "error", err)
		}
		m.setView(ViewUnauthenticated)
		return
	}

	m.setView(ViewLoading)

	cred, err := passkey.Decode(payload)
	if err != nil {
		m.failRestore(ctx, err)
		return
	}

	acct, err := m.resolver.Resolve(ctx, cred, username)
	if err != nil {
		m.failRestore(ctx, err)
		return
	}

	m.setAccount(acct)
	m.logger.Info("session restored", "address", acct.Address.Hex(), "name", acct.Name)
}

func (m *Manager) failRestore(ctx context.Context, cause error) {
	m.logger.Warn("restore session", "error", cause)
	if err := m.store.Clear(ctx); err != nil {
		m.logger.Warn("clear stored credential", "error", err)
	}
	m.setView(ViewUnauthenticated)
}

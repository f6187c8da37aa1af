package session

import (
	"context"
	"errors"

	"github.com/passwallet/passwallet/internal/chain"
	"github.com/passwallet/passwallet/internal/notification"
	"github.com/passwallet/passwallet/internal/passkey"
)

// ErrUsernameRequired rejects registration without a name. The form enforces
// this before the call; the check here is the backstop.
var ErrUsernameRequired = errors.New("username is required")

// ErrAlreadyAuthenticated rejects a login or registration attempt while an
// account is live; logout comes first.
var ErrAlreadyAuthenticated = errors.New("an account is already live")

// Login asserts an existing passkey and installs the resulting account.
// Failure leaves the session untouched and surfaces an error notification.
func (m *Manager) Login(ctx context.Context) error {
	if err := m.beginAuth(); err != nil {
		return err
	}
	defer m.endAuth()

	err := m.authenticate(ctx, passkey.ModeLogin, "")
	if err != nil {
		m.logger.Warn("login", "error", err)
		m.notify(ctx, notification.LevelError, "Error", "Failed to login. Please try again.")
		return err
	}

	m.notify(ctx, notification.LevelSuccess, "Success", "Successfully logged in to your wallet")
	return nil
}

// Register creates a new passkey bound to username and installs the
// resulting account.
func (m *Manager) Register(ctx context.Context, username string) error {
	if username == "" {
		return ErrUsernameRequired
	}
	if err := m.beginAuth(); err != nil {
		return err
	}
	defer m.endAuth()

	err := m.authenticate(ctx, passkey.ModeRegister, username)
	if err != nil {
		m.logger.Warn("register", "error", err, "username", username)
		m.notify(ctx, notification.LevelError, "Error", "Failed to create wallet. Please try again.")
		return err
	}

	m.notify(ctx, notification.LevelSuccess, "Success", "Successfully created your wallet")
	return nil
}

// Logout tears the session down: credentials cleared, account dropped, view
// reset. The epoch bump makes any in-flight completions for the old session
// no-ops when they land.
func (m *Manager) Logout(ctx context.Context) {
	if err := m.store.Clear(ctx); err != nil {
		m.logger.Warn("clear stored credential", "error", err)
	}

	m.mu.Lock()
	m.acct = nil
	m.view = ViewUnauthenticated
	m.draft = Draft{}
	m.txHash = ""
	m.balance = chain.ZeroBalance
	m.balanced = false
	m.sending = false
	m.epoch++
	m.mu.Unlock()

	m.notify(ctx, notification.LevelInfo, "Logged out", "Successfully logged out of your wallet")
}

// authenticate runs the shared issue-persist-resolve sequence. The
// credential is persisted before resolution, mirroring the browser flow; if
// resolution fails the stored credential stays put and the next startup's
// restore pass decides its fate.
func (m *Manager) authenticate(ctx context.Context, mode passkey.Mode, username string) error {
	cred, err := m.issuer.Issue(ctx, mode, username)
	if err != nil {
		return err
	}

	if err := m.store.Put(ctx, cred.Encode(), username); err != nil {
		return err
	}

	acct, err := m.resolver.Resolve(ctx, cred, username)
	if err != nil {
		return err
	}

	m.setAccount(acct)
	return nil
}

// beginAuth claims the auth-flow slot: login and registration are mutually
// exclusive while either is in flight, and neither may start over a live
// account.
func (m *Manager) beginAuth() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.busy {
		return ErrBusy
	}
	if m.acct != nil {
		return ErrAlreadyAuthenticated
	}
	m.busy = true
	return nil
}

func (m *Manager) endAuth() {
	m.mu.Lock()
	m.busy = false
	m.mu.Unlock()
}

func (m *Manager) notify(ctx context.Context, level, title, body string) {
	if m.notifier == nil {
		return
	}
	if err := m.notifier.Send(ctx, notification.Message{Level: level, Title: title, Body: body}); err != nil {
		m.logger.Warn("send notification", "error", err)
	}
}

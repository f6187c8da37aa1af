package session

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/passwallet/passwallet/internal/account"
	"github.com/passwallet/passwallet/internal/chain"
	"github.com/passwallet/passwallet/internal/credstore"
	"github.com/passwallet/passwallet/internal/notification"
	"github.com/passwallet/passwallet/internal/passkey"
)

// View enumerates the single active application view. Unauthenticated and
// loading gate the top-level screen; overview, send and result are valid
// only while an account is live.
type View string

const (
	ViewUnauthenticated View = "unauthenticated"
	ViewLoading         View = "loading"
	ViewOverview        View = "overview"
	ViewSend            View = "send-transaction"
	ViewResult          View = "transaction-result"
)

// Draft is the pending transfer the user is composing. It exists only while
// the send view is active.
type Draft struct {
	Recipient string
	Amount    string
}

// Errors surfaced by transition methods.
var (
	ErrBusy              = errors.New("an authentication flow is already in progress")
	ErrSubmitInProgress  = errors.New("a transfer is already in progress")
	ErrNotAuthenticated  = errors.New("no account is live")
	ErrInvalidTransition = errors.New("invalid view transition")
)

// Manager owns the top-level session and view state. Every mutation goes
// through a named transition method under one lock, so sub-controllers and
// the HTTP facade never write fields ad hoc.
type Manager struct {
	store    credstore.Store
	issuer   passkey.Issuer
	resolver account.Resolver
	notifier notification.Notifier
	logger   *slog.Logger

	mu       sync.Mutex
	view     View
	acct     *account.Account
	busy     bool
	sending  bool
	epoch    uint64
	draft    Draft
	txHash   string
	balance  string
	balanced bool
}

// NewManager builds a session manager in the unauthenticated state.
func NewManager(store credstore.Store, issuer passkey.Issuer, resolver account.Resolver, notifier notification.Notifier, logger *slog.Logger) *Manager {
	return &Manager{
		store:    store,
		issuer:   issuer,
		resolver: resolver,
		notifier: notifier,
		logger:   logger,
		view:     ViewUnauthenticated,
		balance:  chain.ZeroBalance,
	}
}

// Snapshot is an immutable view of the session state for rendering.
type Snapshot struct {
	View          View
	Address       string
	Name          string
	Balance       string
	BalanceLoaded bool
	Busy          bool
	Sending       bool
	Draft         Draft
	TxHash        string
}

// Snapshot returns the current state under the lock.
func (m *Manager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := Snapshot{
		View:          m.view,
		Balance:       m.balance,
		BalanceLoaded: m.balanced,
		Busy:          m.busy,
		Sending:       m.sending,
		Draft:         m.draft,
		TxHash:        m.txHash,
	}
	if m.acct != nil {
		snap.Address = m.acct.Address.Hex()
		snap.Name = m.acct.Name
	}
	return snap
}

// Account returns the live account handle, if any.
func (m *Manager) Account() (account.Account, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.acct == nil {
		return account.Account{}, false
	}
	return *m.acct, true
}

// View returns the active view.
func (m *Manager) View() View {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.view
}

// Epoch identifies the current authenticated session. Async completions
// capture it before suspending and present it back when applying results, so
// work that finishes after a logout is dropped instead of mutating the next
// session's state.
func (m *Manager) Epoch() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.epoch
}

// BeginSend opens the transfer form.
func (m *Manager) BeginSend() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.acct == nil {
		return ErrNotAuthenticated
	}
	if m.view != ViewOverview {
		return ErrInvalidTransition
	}
	m.view = ViewSend
	return nil
}

// CancelSend abandons the transfer form and clears the draft.
func (m *Manager) CancelSend() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.view != ViewSend {
		return ErrInvalidTransition
	}
	m.view = ViewOverview
	m.draft = Draft{}
	return nil
}

// SetDraft records the pending transfer fields. Valid only in the send view.
func (m *Manager) SetDraft(recipient, amount string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.view != ViewSend {
		return ErrInvalidTransition
	}
	m.draft = Draft{Recipient: recipient, Amount: amount}
	return nil
}

// Draft returns the pending transfer fields.
func (m *Manager) Draft() Draft {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.draft
}

// BeginSubmit marks a transfer as in flight, guarding against re-entrant
// double submission.
func (m *Manager) BeginSubmit() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.view != ViewSend {
		return ErrInvalidTransition
	}
	if m.sending {
		return ErrSubmitInProgress
	}
	m.sending = true
	return nil
}

// EndSubmit clears the in-flight flag. Called on every submit exit path.
func (m *Manager) EndSubmit() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sending = false
}

// CompleteSend records a confirmed transfer: the draft is cleared, the hash
// is carried into the result view.
func (m *Manager) CompleteSend(epoch uint64, txHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if epoch != m.epoch || m.acct == nil {
		// The session changed while the operation was in flight.
		return ErrNotAuthenticated
	}
	if m.view != ViewSend {
		return ErrInvalidTransition
	}
	m.draft = Draft{}
	m.txHash = txHash
	m.view = ViewResult
	return nil
}

// ReturnToOverview leaves the result view and clears the transaction record.
func (m *Manager) ReturnToOverview() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.view != ViewResult {
		return ErrInvalidTransition
	}
	m.txHash = ""
	m.view = ViewOverview
	return nil
}

// SetBalance publishes a formatted balance read for the given session epoch.
// Reads that complete after logout are dropped.
func (m *Manager) SetBalance(epoch uint64, formatted string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if epoch != m.epoch || m.acct == nil {
		return
	}
	m.balance = formatted
	m.balanced = true
}

// setAccount installs the authenticated account and enters the overview.
// Callers hold no lock.
func (m *Manager) setAccount(acct account.Account) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.acct = &acct
	m.view = ViewOverview
	m.balance = chain.ZeroBalance
	m.balanced = false
	m.draft = Draft{}
	m.txHash = ""
}

func (m *Manager) setView(view View) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.view = view
}

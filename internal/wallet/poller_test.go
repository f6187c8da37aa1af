package wallet

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync/atomic"
	"testing"
	"time"

	"github.com/passwallet/passwallet/internal/account"
	"github.com/passwallet/passwallet/internal/chain"
	"github.com/passwallet/passwallet/internal/credstore"
	"github.com/passwallet/passwallet/internal/logging"
	"github.com/passwallet/passwallet/internal/notification"
	"github.com/passwallet/passwallet/internal/passkey"
	"github.com/passwallet/passwallet/internal/session"
)

type fakeIssuer struct{}

func (fakeIssuer) Issue(_ context.Context, mode passkey.Mode, username string) (passkey.Credential, error) {
	return passkey.Decode([]byte(fmt.Sprintf(`{"id":"cred-%s","username":%q}`, mode, username)))
}

type fakeResolver struct{}

func (fakeResolver) Resolve(_ context.Context, _ passkey.Credential, name string) (account.Account, error) {
	addr, _ := chain.ParseAddress("0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed")
	return account.Account{Address: addr, Name: name}, nil
}

type fakeReader struct {
	balance *big.Int
	err     error
	reads   atomic.Int32
	signal  chan struct{}
}

func (r *fakeReader) TokenBalance(_ context.Context, _, _ chain.Address) (*big.Int, error) {
	r.reads.Add(1)
	select {
	case r.signal <- struct{}{}:
	default:
	}
	if r.err != nil {
		return nil, r.err
	}
	return r.balance, nil
}

func authenticatedManager(t *testing.T) *session.Manager {
	t.Helper()
	m := session.NewManager(credstore.NewMemoryStore(), fakeIssuer{}, fakeResolver{}, notification.NewBuffer(0, nil), logging.Discard())
	if err := m.Login(context.Background()); err != nil {
		t.Fatalf("login: %v", err)
	}
	return m
}

func testToken(t *testing.T) chain.Address {
	t.Helper()
	token, err := chain.ParseAddress("0x75faf114eafb1BDbe2F0316DF893fd58CE46AA4d")
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	return token
}

func waitSignal(t *testing.T, ch chan struct{}) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for balance read")
	}
}

func TestPollerCadenceAndTeardown(t *testing.T) {
	manager := authenticatedManager(t)
	reader := &fakeReader{balance: big.NewInt(1_234_567), signal: make(chan struct{}, 1)}

	p := NewPoller(reader, manager, testToken(t), 6, 20*time.Millisecond, logging.Discard())
	if err := p.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}

	// One immediate read, then one per interval.
	waitSignal(t, reader.signal)
	waitSignal(t, reader.signal)

	p.Stop()
	stopped := reader.reads.Load()
	if stopped < 2 {
		t.Fatalf("expected at least two reads before stop, got %d", stopped)
	}

	time.Sleep(80 * time.Millisecond)
	if after := reader.reads.Load(); after != stopped {
		t.Fatalf("expected zero reads after stop, got %d extra", after-stopped)
	}

	if snap := manager.Snapshot(); snap.Balance != "1.23" || !snap.BalanceLoaded {
		t.Fatalf("expected published balance 1.23, got %+v", snap)
	}
}

func TestPollerDegradesToZeroOnError(t *testing.T) {
	manager := authenticatedManager(t)
	reader := &fakeReader{err: errors.New("rpc unavailable"), signal: make(chan struct{}, 1)}

	p := NewPoller(reader, manager, testToken(t), 6, 15*time.Millisecond, logging.Discard())
	if err := p.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer p.Stop()

	waitSignal(t, reader.signal)
	// The loop must keep ticking after a failed read.
	waitSignal(t, reader.signal)

	if snap := manager.Snapshot(); snap.Balance != chain.ZeroBalance {
		t.Fatalf("expected zero balance display, got %q", snap.Balance)
	}
}

func TestPollerRequiresAccount(t *testing.T) {
	m := session.NewManager(credstore.NewMemoryStore(), fakeIssuer{}, fakeResolver{}, notification.NewBuffer(0, nil), logging.Discard())
	reader := &fakeReader{balance: big.NewInt(0), signal: make(chan struct{}, 1)}

	p := NewPoller(reader, m, testToken(t), 6, time.Second, logging.Discard())
	if err := p.Start(); err == nil {
		t.Fatalf("expected error without account")
	}
}

func TestSupervisorFollowsSession(t *testing.T) {
	manager := authenticatedManager(t)
	reader := &fakeReader{balance: big.NewInt(5_000_000), signal: make(chan struct{}, 1)}

	s := NewSupervisor(reader, manager, testToken(t), 6, 20*time.Millisecond, logging.Discard())
	s.Refresh()
	waitSignal(t, reader.signal)

	// Logout then refresh: the poller must be torn down.
	manager.Logout(context.Background())
	s.Refresh()
	stopped := reader.reads.Load()
	time.Sleep(80 * time.Millisecond)
	if after := reader.reads.Load(); after != stopped {
		t.Fatalf("expected no reads after logout, got %d extra", after-stopped)
	}
}

package wallet

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"
	"sync"
	"time"

	"github.com/passwallet/passwallet/internal/chain"
	"github.com/passwallet/passwallet/internal/session"
)

// BalanceReader is the read-only token-balance capability.
type BalanceReader interface {
	TokenBalance(ctx context.Context, token, owner chain.Address) (*big.Int, error)
}

// Poller periodically reads the token balance for the authenticated account
// and publishes the formatted value into the session. It is an explicitly
// owned task: Start launches it, Stop cancels it deterministically, and a
// stopped poller issues no further reads.
type Poller struct {
	reader   BalanceReader
	manager  *session.Manager
	token    chain.Address
	decimals int
	interval time.Duration
	logger   *slog.Logger

	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
	started  bool
}

// NewPoller builds a poller for the current authenticated session.
func NewPoller(reader BalanceReader, manager *session.Manager, token chain.Address, decimals int, interval time.Duration, logger *slog.Logger) *Poller {
	return &Poller{
		reader:   reader,
		manager:  manager,
		token:    token,
		decimals: decimals,
		interval: interval,
		logger:   logger,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start issues an immediate read and then one read per interval until Stop.
// It fails when no account is live.
func (p *Poller) Start() error {
	acct, ok := p.manager.Account()
	if !ok {
		return fmt.Errorf("start poller: %w", session.ErrNotAuthenticated)
	}
	epoch := p.manager.Epoch()

	p.started = true
	go p.run(acct.Address, epoch)
	return nil
}

// Stop cancels the polling loop and waits for it to wind down. Safe to call
// more than once.
func (p *Poller) Stop() {
	p.stopOnce.Do(func() { close(p.stop) })
	if p.started {
		<-p.done
	}
}

func (p *Poller) run(owner chain.Address, epoch uint64) {
	defer close(p.done)

	p.readOnce(owner, epoch)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-p.stop:
			return
		case <-ticker.C:
			p.readOnce(owner, epoch)
		}
	}
}

// readOnce performs a single balance read. A failed read degrades to a zero
// display and the loop keeps going; a transient RPC error must not kill the
// cadence or toast the user.
func (p *Poller) readOnce(owner chain.Address, epoch uint64) {
	ctx, cancel := context.WithTimeout(context.Background(), p.interval)
	defer cancel()

	balance, err := p.reader.TokenBalance(ctx, p.token, owner)
	if err != nil {
		p.logger.Warn("read token balance", "error", err, "owner", owner.Hex())
		p.manager.SetBalance(epoch, chain.ZeroBalance)
		return
	}
	p.manager.SetBalance(epoch, chain.FormatBalance(balance, p.decimals))
}

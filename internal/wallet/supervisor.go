package wallet

import (
	"log/slog"
	"sync"
	"time"

	"github.com/passwallet/passwallet/internal/chain"
	"github.com/passwallet/passwallet/internal/session"
)

// Supervisor ties poller lifetime to the session: one poller per
// authenticated session, torn down before the account goes away. The facade
// calls Refresh after every auth transition instead of managing timers
// itself.
type Supervisor struct {
	reader   BalanceReader
	manager  *session.Manager
	token    chain.Address
	decimals int
	interval time.Duration
	logger   *slog.Logger

	mu      sync.Mutex
	current *Poller
}

// NewSupervisor builds a poller supervisor.
func NewSupervisor(reader BalanceReader, manager *session.Manager, token chain.Address, decimals int, interval time.Duration, logger *slog.Logger) *Supervisor {
	return &Supervisor{
		reader:   reader,
		manager:  manager,
		token:    token,
		decimals: decimals,
		interval: interval,
		logger:   logger,
	}
}

// Refresh reconciles the poller with the session state: starts one when an
// account is live, stops the old one when it is not.
func (s *Supervisor) Refresh() {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, authenticated := s.manager.Account()

	if !authenticated {
		if s.current != nil {
			s.current.Stop()
			s.current = nil
		}
		return
	}

	if s.current != nil {
		return
	}

	poller := NewPoller(s.reader, s.manager, s.token, s.decimals, s.interval, s.logger)
	if err := poller.Start(); err != nil {
		s.logger.Warn("start balance poller", "error", err)
		return
	}
	s.current = poller
}

// Stop tears down any running poller. Called on shutdown.
func (s *Supervisor) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current != nil {
		s.current.Stop()
		s.current = nil
	}
}

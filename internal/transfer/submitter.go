package transfer

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/passwallet/passwallet/internal/account"
	"github.com/passwallet/passwallet/internal/bundler"
	"github.com/passwallet/passwallet/internal/chain"
	"github.com/passwallet/passwallet/internal/notification"
	"github.com/passwallet/passwallet/internal/session"
)

// Submitter drives the sponsored token-transfer flow: encode the ERC-20
// call, submit it with gas sponsorship, await finality, and advance the view
// state. Failure leaves the draft intact so the user can retry without
// re-entering anything.
type Submitter struct {
	ops      bundler.Submitter
	manager  *session.Manager
	notifier notification.Notifier
	logger   *slog.Logger
	token    chain.Address
	decimals int
}

// NewSubmitter builds a transfer submitter for the configured token.
func NewSubmitter(ops bundler.Submitter, manager *session.Manager, notifier notification.Notifier, logger *slog.Logger, token chain.Address, decimals int) *Submitter {
	return &Submitter{
		ops:      ops,
		manager:  manager,
		notifier: notifier,
		logger:   logger,
		token:    token,
		decimals: decimals,
	}
}

// Send submits a sponsored transfer of amount tokens to recipient. Empty
// fields are a silent no-op; the form never invokes the flow without both.
func (s *Submitter) Send(ctx context.Context, recipient, amount string) error {
	if recipient == "" || amount == "" {
		return nil
	}

	if err := s.manager.BeginSubmit(); err != nil {
		return err
	}
	defer s.manager.EndSubmit()

	if err := s.manager.SetDraft(recipient, amount); err != nil {
		return err
	}

	epoch := s.manager.Epoch()
	acct, ok := s.manager.Account()
	if !ok {
		return session.ErrNotAuthenticated
	}

	txHash, err := s.submit(ctx, acct, recipient, amount)
	if err != nil {
		s.logger.Warn("send transfer", "error", err, "recipient", recipient)
		s.notify(ctx, notification.LevelError, "Error", "Failed to send transaction. Please try again.")
		return err
	}

	if err := s.manager.CompleteSend(epoch, txHash); err != nil {
		// The session moved on while the operation was in flight; the
		// transfer itself stands.
		s.logger.Warn("apply transfer result", "error", err, "tx", txHash)
		return nil
	}

	s.logger.Info("transfer confirmed", "tx", txHash, "recipient", recipient)
	return nil
}

func (s *Submitter) submit(ctx context.Context, acct account.Account, recipient, amount string) (string, error) {
	to, err := chain.ParseAddress(recipient)
	if err != nil {
		return "", fmt.Errorf("recipient: %w", err)
	}

	units, err := chain.ParseUnits(amount, s.decimals)
	if err != nil {
		return "", fmt.Errorf("amount: %w", err)
	}

	data, err := chain.EncodeTransfer(to, units)
	if err != nil {
		return "", err
	}

	opHash, err := s.ops.Submit(ctx, acct, []bundler.Call{{To: s.token, Data: data}}, true)
	if err != nil {
		return "", err
	}

	receipt, err := s.ops.WaitReceipt(ctx, opHash)
	if err != nil {
		return "", err
	}
	return receipt.TransactionHash, nil
}

func (s *Submitter) notify(ctx context.Context, level, title, body string) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Send(ctx, notification.Message{Level: level, Title: title, Body: body}); err != nil {
		s.logger.Warn("send notification", "error", err)
	}
}

package bundler

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/passwallet/passwallet/internal/account"
	"github.com/passwallet/passwallet/internal/chain"
)

// Call is a single contract call inside a user operation.
type Call struct {
	To   chain.Address
	Data []byte
}

// Receipt carries the finality result of a submitted operation.
type Receipt struct {
	TransactionHash string
}

// Submitter represents the sponsored-operation capability: submit a batch of
// calls as a user operation and await its inclusion receipt. Bundling,
// signing and paymaster negotiation happen inside the external service.
type Submitter interface {
	Submit(ctx context.Context, acct account.Account, calls []Call, sponsored bool) (string, error)
	WaitReceipt(ctx context.Context, opHash string) (Receipt, error)
}

// RPCSubmitter drives user operations through the bundler RPC endpoint.
type RPCSubmitter struct {
	rpc          *chain.Client
	pollInterval time.Duration
	waitTimeout  time.Duration
}

// NewRPCSubmitter builds a submitter on top of the shared RPC client.
func NewRPCSubmitter(rpc *chain.Client) *RPCSubmitter {
	return &RPCSubmitter{
		rpc:          rpc,
		pollInterval: 2 * time.Second,
		waitTimeout:  2 * time.Minute,
	}
}

type callParam struct {
	To   string `json:"to"`
	Data string `json:"data"`
}

type operationParams struct {
	Sender    string      `json:"sender"`
	Calls     []callParam `json:"calls"`
	Paymaster bool        `json:"paymaster"`
}

// Submit sends the user operation and returns its operation hash.
func (s *RPCSubmitter) Submit(ctx context.Context, acct account.Account, calls []Call, sponsored bool) (string, error) {
	if len(calls) == 0 {
		return "", fmt.Errorf("at least one call is required")
	}

	params := operationParams{Sender: acct.Address.Hex(), Paymaster: sponsored}
	for _, call := range calls {
		params.Calls = append(params.Calls, callParam{
			To:   call.To.Hex(),
			Data: "0x" + hex.EncodeToString(call.Data),
		})
	}

	var opHash string
	if err := s.rpc.Call(ctx, "eth_sendUserOperation", []any{params}, &opHash); err != nil {
		return "", fmt.Errorf("submit operation: %w", err)
	}
	if opHash == "" {
		return "", fmt.Errorf("submit operation: empty operation hash")
	}
	return opHash, nil
}

type receiptResult struct {
	Success bool `json:"success"`
	Receipt struct {
		TransactionHash string `json:"transactionHash"`
	} `json:"receipt"`
}

// WaitReceipt polls for the operation receipt until it lands, the context is
// cancelled, or the wait timeout expires.
func (s *RPCSubmitter) WaitReceipt(ctx context.Context, opHash string) (Receipt, error) {
	ctx, cancel := context.WithTimeout(ctx, s.waitTimeout)
	defer cancel()

	for {
		var raw json.RawMessage
		if err := s.rpc.Call(ctx, "eth_getUserOperationReceipt", []any{opHash}, &raw); err != nil {
			return Receipt{}, fmt.Errorf("fetch receipt: %w", err)
		}

		if len(raw) > 0 && string(raw) != "null" {
			var result receiptResult
			if err := json.Unmarshal(raw, &result); err != nil {
				return Receipt{}, fmt.Errorf("decode receipt: %w", err)
			}
			if !result.Success {
				return Receipt{}, fmt.Errorf("operation %s reverted", opHash)
			}
			return Receipt{TransactionHash: result.Receipt.TransactionHash}, nil
		}

		select {
		case <-ctx.Done():
			return Receipt{}, fmt.Errorf("await receipt for %s: %w", opHash, ctx.Err())
		case <-time.After(s.pollInterval):
		}
	}
}

package account

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/passwallet/passwallet/internal/chain"
	"github.com/passwallet/passwallet/internal/passkey"
)

// Account is the authenticated session handle: the resolved smart-account
// address for a credential owner, plus the registration name when one exists.
type Account struct {
	Address chain.Address
	Name    string
}

// Resolver turns a credential into a smart-account handle. The derivation of
// the account address from the passkey owner is performed by the external
// service; only the result matters here.
type Resolver interface {
	Resolve(ctx context.Context, cred passkey.Credential, name string) (Account, error)
}

// RPCResolver resolves accounts through the modular transport endpoint.
type RPCResolver struct {
	rpc *chain.Client
}

// NewRPCResolver builds a resolver on top of the shared RPC client.
func NewRPCResolver(rpc *chain.Client) *RPCResolver {
	return &RPCResolver{rpc: rpc}
}

type resolveParams struct {
	Credential json.RawMessage `json:"credential"`
	Name       string          `json:"name,omitempty"`
}

type resolveResult struct {
	Address string `json:"address"`
}

// Resolve asks the wallet service for the smart-account address bound to the
// credential owner.
func (r *RPCResolver) Resolve(ctx context.Context, cred passkey.Credential, name string) (Account, error) {
	if len(cred.Raw) == 0 {
		return Account{}, fmt.Errorf("credential payload is empty")
	}

	var result resolveResult
	params := []any{resolveParams{Credential: cred.Raw, Name: name}}
	if err := r.rpc.Call(ctx, "circle_getAddress", params, &result); err != nil {
		return Account{}, fmt.Errorf("resolve account: %w", err)
	}

	addr, err := chain.ParseAddress(result.Address)
	if err != nil {
		return Account{}, fmt.Errorf("resolve account: %w", err)
	}
	return Account{Address: addr, Name: name}, nil
}

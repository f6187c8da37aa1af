package chain

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

const clientKeyHeader = "X-Client-Key"

// Client speaks JSON-RPC 2.0 to the modular transport endpoint. It covers
// the read-only calls the wallet needs; everything behind the endpoint is
// treated as opaque.
type Client struct {
	endpoint  string
	clientKey string
	http      *http.Client
}

// NewClient builds an RPC client for the given endpoint.
func NewClient(endpoint, clientKey string) *Client {
	return &Client{
		endpoint:  endpoint,
		clientKey: clientKey,
		http:      &http.Client{Timeout: 30 * time.Second},
	}
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      string `json:"id"`
	Method  string `json:"method"`
	Params  any    `json:"params"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *RPCError       `json:"error"`
}

// RPCError is a JSON-RPC error object returned by the endpoint.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface.
func (e *RPCError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// Call performs a single JSON-RPC request and unmarshals the result.
func (c *Client) Call(ctx context.Context, method string, params any, result any) error {
	body, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		ID:      uuid.NewString(),
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.clientKey != "" {
		req.Header.Set(clientKeyHeader, c.clientKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", method, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s: unexpected status %d", method, resp.StatusCode)
	}

	var rpcResp rpcResponse
	if err := json.Unmarshal(data, &rpcResp); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if rpcResp.Error != nil {
		return fmt.Errorf("%s: %w", method, rpcResp.Error)
	}
	if result == nil {
		return nil
	}
	if err := json.Unmarshal(rpcResp.Result, result); err != nil {
		return fmt.Errorf("decode result: %w", err)
	}
	return nil
}

type callParams struct {
	To   string `json:"to"`
	Data string `json:"data"`
}

// CallContract issues an eth_call against the given contract and returns the
// raw output bytes.
func (c *Client) CallContract(ctx context.Context, to Address, data []byte) ([]byte, error) {
	var result string
	params := []any{callParams{To: to.Hex(), Data: "0x" + hex.EncodeToString(data)}, "latest"}
	if err := c.Call(ctx, "eth_call", params, &result); err != nil {
		return nil, err
	}
	output, err := hex.DecodeString(strings.TrimPrefix(result, "0x"))
	if err != nil {
		return nil, fmt.Errorf("decode call output: %w", err)
	}
	return output, nil
}

// TokenBalance reads the ERC-20 balance of owner on the given token contract.
func (c *Client) TokenBalance(ctx context.Context, token, owner Address) (*big.Int, error) {
	output, err := c.CallContract(ctx, token, EncodeBalanceOf(owner))
	if err != nil {
		return nil, err
	}
	return DecodeUint256(output)
}

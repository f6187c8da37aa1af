package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/passwallet/passwallet/internal/account"
	"github.com/passwallet/passwallet/internal/bundler"
	"github.com/passwallet/passwallet/internal/chain"
	"github.com/passwallet/passwallet/internal/config"
	"github.com/passwallet/passwallet/internal/credstore"
	"github.com/passwallet/passwallet/internal/logging"
	"github.com/passwallet/passwallet/internal/notification"
	"github.com/passwallet/passwallet/internal/passkey"
	"github.com/passwallet/passwallet/internal/session"
	"github.com/passwallet/passwallet/internal/transfer"
	"github.com/passwallet/passwallet/internal/wallet"
)

type fakeIssuer struct{}

func (fakeIssuer) Issue(_ context.Context, mode passkey.Mode, username string) (passkey.Credential, error) {
	return passkey.Decode([]byte(fmt.Sprintf(`{"id":"cred-%s","username":%q}`, mode, username)))
}

type fakeResolver struct{}

func (fakeResolver) Resolve(_ context.Context, _ passkey.Credential, name string) (account.Account, error) {
	addr, _ := chain.ParseAddress("0x1111111111111111111111111111111111111111")
	return account.Account{Address: addr, Name: name}, nil
}

type fakeReader struct{}

func (fakeReader) TokenBalance(_ context.Context, _, _ chain.Address) (*big.Int, error) {
	return big.NewInt(5_000_000), nil
}

type fakeBundler struct{}

func (fakeBundler) Submit(_ context.Context, _ account.Account, _ []bundler.Call, _ bool) (string, error) {
	return "0xop1", nil
}

func (fakeBundler) WaitReceipt(_ context.Context, _ string) (bundler.Receipt, error) {
	return bundler.Receipt{TransactionHash: "0xtxfinal"}, nil
}

func testApp(t *testing.T) (*fiber.App, *wallet.Supervisor) {
	t.Helper()

	cfg := config.Config{
		AppName:       "PassWallet",
		ChainName:     "arbitrumSepolia",
		TokenSymbol:   "USDC",
		TokenDecimals: 6,
		ExplorerTxURL: "https://sepolia.arbiscan.io/tx/",
		PollInterval:  time.Hour,
	}
	token, err := chain.ParseAddress("0x75faf114eafb1BDbe2F0316DF893fd58CE46AA4d")
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}

	logger := logging.Discard()
	toasts := notification.NewBuffer(0, nil)
	manager := session.NewManager(credstore.NewMemoryStore(), fakeIssuer{}, fakeResolver{}, toasts, logger)
	supervisor := wallet.NewSupervisor(fakeReader{}, manager, token, cfg.TokenDecimals, cfg.PollInterval, logger)
	transfers := transfer.NewSubmitter(fakeBundler{}, manager, toasts, logger, token, cfg.TokenDecimals)

	app := fiber.New()
	err = Setup(app, Deps{
		Cfg:        cfg,
		Logger:     logger,
		Manager:    manager,
		Supervisor: supervisor,
		Transfers:  transfers,
		Toasts:     toasts,
	})
	if err != nil {
		t.Fatalf("setup routes: %v", err)
	}
	t.Cleanup(supervisor.Stop)
	return app, supervisor
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body any) (*http.Response, map[string]any) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}

	var decoded map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		t.Fatalf("decode %s %s response: %v", method, path, err)
	}
	return resp, decoded
}

func TestFullWalletFlow(t *testing.T) {
	app, _ := testApp(t)

	// Fresh start: no stored credential, unauthenticated.
	resp, state := doJSON(t, app, http.MethodGet, "/api/v1/state", nil)
	if resp.StatusCode != http.StatusOK || state["view"] != "unauthenticated" {
		t.Fatalf("expected unauthenticated state, got %d %v", resp.StatusCode, state)
	}

	resp, state = doJSON(t, app, http.MethodPost, "/api/v1/register", map[string]string{"username": "alice"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register: status %d %v", resp.StatusCode, state)
	}
	if state["view"] != "overview" || state["name"] != "alice" {
		t.Fatalf("expected overview for alice, got %v", state)
	}

	resp, state = doJSON(t, app, http.MethodPost, "/api/v1/view/send", nil)
	if resp.StatusCode != http.StatusOK || state["view"] != "send-transaction" {
		t.Fatalf("expected send view, got %d %v", resp.StatusCode, state)
	}

	resp, state = doJSON(t, app, http.MethodPost, "/api/v1/send", map[string]string{
		"recipient": "0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed",
		"amount":    "5",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("send: status %d %v", resp.StatusCode, state)
	}
	if state["view"] != "transaction-result" || state["tx_hash"] != "0xtxfinal" {
		t.Fatalf("expected transaction result, got %v", state)
	}
	if state["explorer_url"] != "https://sepolia.arbiscan.io/tx/0xtxfinal" {
		t.Fatalf("expected explorer url, got %v", state["explorer_url"])
	}

	resp, state = doJSON(t, app, http.MethodPost, "/api/v1/view/return", nil)
	if resp.StatusCode != http.StatusOK || state["view"] != "overview" {
		t.Fatalf("expected overview, got %d %v", resp.StatusCode, state)
	}

	resp, state = doJSON(t, app, http.MethodPost, "/api/v1/logout", nil)
	if resp.StatusCode != http.StatusOK || state["view"] != "unauthenticated" {
		t.Fatalf("expected unauthenticated after logout, got %d %v", resp.StatusCode, state)
	}
}

func TestRegisterRequiresUsername(t *testing.T) {
	app, _ := testApp(t)

	resp, _ := doJSON(t, app, http.MethodPost, "/api/v1/register", map[string]string{"username": ""})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestSendRequiresFields(t *testing.T) {
	app, _ := testApp(t)

	if _, state := doJSON(t, app, http.MethodPost, "/api/v1/login", nil); state["view"] != "overview" {
		t.Fatalf("login failed: %v", state)
	}
	if resp, _ := doJSON(t, app, http.MethodPost, "/api/v1/view/send", nil); resp.StatusCode != http.StatusOK {
		t.Fatalf("begin send failed: %d", resp.StatusCode)
	}

	resp, _ := doJSON(t, app, http.MethodPost, "/api/v1/send", map[string]string{"recipient": "", "amount": "5"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty recipient, got %d", resp.StatusCode)
	}
}

func TestViewTransitionConflicts(t *testing.T) {
	app, _ := testApp(t)

	// Cannot open the send form while unauthenticated.
	resp, _ := doJSON(t, app, http.MethodPost, "/api/v1/view/send", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}

	if _, state := doJSON(t, app, http.MethodPost, "/api/v1/login", nil); state["view"] != "overview" {
		t.Fatalf("login failed: %v", state)
	}

	// Cancel only makes sense from the send view.
	resp, _ = doJSON(t, app, http.MethodPost, "/api/v1/view/cancel", nil)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409, got %d", resp.StatusCode)
	}
}

package routes

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/passwallet/passwallet/internal/session"
)

var validate = validator.New()

type stateResponse struct {
	View          string        `json:"view"`
	Chain         string        `json:"chain"`
	TokenSymbol   string        `json:"token_symbol"`
	Address       string        `json:"address,omitempty"`
	Name          string        `json:"name,omitempty"`
	Balance       string        `json:"balance"`
	BalanceLoaded bool          `json:"balance_loaded"`
	Busy          bool          `json:"busy"`
	Sending       bool          `json:"sending"`
	Draft         draftResponse `json:"draft"`
	TxHash        string        `json:"tx_hash,omitempty"`
	ExplorerURL   string        `json:"explorer_url,omitempty"`
}

type draftResponse struct {
	Recipient string `json:"recipient"`
	Amount    string `json:"amount"`
}

func stateOf(d Deps) stateResponse {
	snap := d.Manager.Snapshot()
	resp := stateResponse{
		View:          string(snap.View),
		Chain:         d.Cfg.ChainName,
		TokenSymbol:   d.Cfg.TokenSymbol,
		Address:       snap.Address,
		Name:          snap.Name,
		Balance:       snap.Balance,
		BalanceLoaded: snap.BalanceLoaded,
		Busy:          snap.Busy,
		Sending:       snap.Sending,
		Draft:         draftResponse{Recipient: snap.Draft.Recipient, Amount: snap.Draft.Amount},
		TxHash:        snap.TxHash,
	}
	if snap.TxHash != "" {
		resp.ExplorerURL = d.Cfg.ExplorerTxURL + snap.TxHash
	}
	return resp
}

type registerRequest struct {
	Username string `json:"username" validate:"required,min=1,max=64"`
}

// RegisterSessionRoutes wires authentication and session-state endpoints.
func RegisterSessionRoutes(r fiber.Router, d Deps) {
	r.Get("/state", func(c *fiber.Ctx) error {
		return c.Status(http.StatusOK).JSON(stateOf(d))
	})

	r.Get("/notifications", func(c *fiber.Ctx) error {
		return c.Status(http.StatusOK).JSON(fiber.Map{"notifications": d.Toasts.Recent()})
	})

	r.Post("/login", func(c *fiber.Ctx) error {
		if err := d.Manager.Login(c.UserContext()); err != nil {
			return authError(err)
		}
		d.Supervisor.Refresh()
		return c.Status(http.StatusOK).JSON(stateOf(d))
	})

	r.Post("/register", func(c *fiber.Ctx) error {
		var req registerRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}
		if err := d.Manager.Register(c.UserContext(), req.Username); err != nil {
			return authError(err)
		}
		d.Supervisor.Refresh()
		return c.Status(http.StatusCreated).JSON(stateOf(d))
	})

	r.Post("/logout", func(c *fiber.Ctx) error {
		d.Manager.Logout(c.UserContext())
		d.Supervisor.Refresh()
		return c.Status(http.StatusOK).JSON(stateOf(d))
	})
}

// authError maps session errors onto HTTP statuses: contention on the auth
// flow is a conflict, anything else is the external capability failing.
func authError(err error) error {
	switch {
	case errors.Is(err, session.ErrBusy), errors.Is(err, session.ErrAlreadyAuthenticated):
		return fiber.NewError(http.StatusConflict, err.Error())
	case errors.Is(err, session.ErrUsernameRequired):
		return fiber.NewError(http.StatusBadRequest, err.Error())
	default:
		return fiber.NewError(http.StatusBadGateway, err.Error())
	}
}

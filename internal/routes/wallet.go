package routes

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/passwallet/passwallet/internal/session"
)

type sendRequest struct {
	Recipient string `json:"recipient" validate:"required"`
	Amount    string `json:"amount" validate:"required"`
}

// RegisterWalletRoutes wires the authenticated wallet screen: view
// transitions, balance, and the sponsored transfer flow.
func RegisterWalletRoutes(r fiber.Router, d Deps) {
	r.Get("/balance", func(c *fiber.Ctx) error {
		snap := d.Manager.Snapshot()
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"balance":        snap.Balance,
			"balance_loaded": snap.BalanceLoaded,
			"token_symbol":   d.Cfg.TokenSymbol,
		})
	})

	r.Post("/view/send", func(c *fiber.Ctx) error {
		if err := d.Manager.BeginSend(); err != nil {
			return viewError(err)
		}
		return c.Status(http.StatusOK).JSON(stateOf(d))
	})

	r.Post("/view/cancel", func(c *fiber.Ctx) error {
		if err := d.Manager.CancelSend(); err != nil {
			return viewError(err)
		}
		return c.Status(http.StatusOK).JSON(stateOf(d))
	})

	r.Post("/view/return", func(c *fiber.Ctx) error {
		if err := d.Manager.ReturnToOverview(); err != nil {
			return viewError(err)
		}
		return c.Status(http.StatusOK).JSON(stateOf(d))
	})

	r.Post("/send", func(c *fiber.Ctx) error {
		var req sendRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}
		if err := d.Transfers.Send(c.UserContext(), req.Recipient, req.Amount); err != nil {
			return sendError(err)
		}
		return c.Status(http.StatusOK).JSON(stateOf(d))
	})
}

func viewError(err error) error {
	switch {
	case errors.Is(err, session.ErrNotAuthenticated):
		return fiber.NewError(http.StatusUnauthorized, err.Error())
	case errors.Is(err, session.ErrInvalidTransition):
		return fiber.NewError(http.StatusConflict, err.Error())
	default:
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
}

func sendError(err error) error {
	switch {
	case errors.Is(err, session.ErrSubmitInProgress), errors.Is(err, session.ErrInvalidTransition):
		return fiber.NewError(http.StatusConflict, err.Error())
	case errors.Is(err, session.ErrNotAuthenticated):
		return fiber.NewError(http.StatusUnauthorized, err.Error())
	default:
		return fiber.NewError(http.StatusBadGateway, err.Error())
	}
}

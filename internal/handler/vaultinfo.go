package handler

import (
	"time"

	"log/slog"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gofiber/fiber/v3"

	"github.com/memeswapfi/memeswap-contracts/internal/service"
)

type VaultHandler struct {
	BaseHandler
	service *service.VaultService
}

func NewVaultHandler(logger *slog.Logger, svc *service.VaultService) *VaultHandler {
	return &VaultHandler{
		BaseHandler: BaseHandler{
			logger: logger,
		},
		service: svc,
	}
}

type RentQuoteRequest struct {
	Amount   string `query:"amount" json:"amount"`
	Duration string `query:"duration" json:"duration"`
}

// HandleStats responds with the vault's aggregate counters.
func (h *VaultHandler) HandleStats() fiber.Handler {
	return func(c fiber.Ctx) error {
		return c.JSON(h.service.Stats())
	}
}

// HandlePosition responds with one staker's balances and accrued yield.
func (h *VaultHandler) HandlePosition() fiber.Handler {
	return func(c fiber.Ctx) error {
		account := c.Query("account")
		if account == "" {
			return NewAddressRequired("account")
		}
		if !common.IsHexAddress(account) {
			return NewInvalidAddress("account")
		}
		return c.JSON(h.service.Position(common.HexToAddress(account)))
	}
}

// HandleRentQuote prices a prospective rental at current utilization.
func (h *VaultHandler) HandleRentQuote() fiber.Handler {
	return func(c fiber.Ctx) error {
		var req RentQuoteRequest
		if err := c.Bind().Query(&req); err != nil {
			h.logger.Debug("failed to bind query parameters", "err", err)
			return ErrInvalidQueryParameters
		}

		amount, err := parseAmount(req.Amount)
		if err != nil {
			return NewInvalidAmountIn(err)
		}
		duration, err := time.ParseDuration(req.Duration)
		if err != nil || duration <= 0 {
			return ErrInvalidDuration
		}

		price := h.service.RentQuote(amount, duration)
		return c.SendString(price.String())
	}
}

// HandleRental responds with the active rental on a pair.
func (h *VaultHandler) HandleRental() fiber.Handler {
	return func(c fiber.Ctx) error {
		pairStr := c.Query("pair")
		if pairStr == "" {
			return NewAddressRequired("pair")
		}
		if !common.IsHexAddress(pairStr) {
			return NewInvalidAddress("pair")
		}

		rental, err := h.service.Rental(common.HexToAddress(pairStr))
		if err != nil {
			if err == service.ErrNoRental {
				return ErrRentalNotFound
			}
			h.logger.Error("rental lookup failed", "err", err)
			return ErrQuoteFailedInternal
		}
		return c.JSON(rental)
	}
}

package handler

import (
	"log/slog"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gofiber/fiber/v3"

	"github.com/memeswapfi/memeswap-contracts/internal/service"
)

type PoolHandler struct {
	BaseHandler
	service *service.PoolService
}

func NewPoolHandler(logger *slog.Logger, svc *service.PoolService) *PoolHandler {
	return &PoolHandler{
		BaseHandler: BaseHandler{
			logger: logger,
		},
		service: svc,
	}
}

// Handle responds with the state of the pool named in the path.
func (h *PoolHandler) Handle() fiber.Handler {
	return func(c fiber.Ctx) error {
		addr := c.Params("address")
		if addr == "" {
			return NewAddressRequired("pool")
		}
		if !common.IsHexAddress(addr) {
			return NewInvalidAddress("pool")
		}

		info, err := h.service.Info(common.HexToAddress(addr))
		if err != nil {
			if err == service.ErrUnknownPair {
				return ErrPoolNotFound
			}
			h.logger.Error("pool info failed", "err", err)
			return ErrQuoteFailedInternal
		}
		return c.JSON(info)
	}
}

// HandleList responds with the state of every deployed pool.
func (h *PoolHandler) HandleList() fiber.Handler {
	return func(c fiber.Ctx) error {
		infos, err := h.service.List()
		if err != nil {
			h.logger.Error("pool list failed", "err", err)
			return ErrQuoteFailedInternal
		}
		return c.JSON(fiber.Map{"pools": infos})
	}
}

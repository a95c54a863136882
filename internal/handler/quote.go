package handler

import (
	"math/big"
	"strings"

	"log/slog"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gofiber/fiber/v3"

	"github.com/memeswapfi/memeswap-contracts/internal/service"
)

type QuoteHandler struct {
	BaseHandler
	service *service.QuoteService
}

func NewQuoteHandler(logger *slog.Logger, svc *service.QuoteService) *QuoteHandler {
	return &QuoteHandler{
		BaseHandler: BaseHandler{
			logger: logger,
		},
		service: svc,
	}
}

type QuoteRequest struct {
	Pool     string `query:"pool" json:"pool"`
	Src      string `query:"src" json:"src"`
	Dst      string `query:"dst" json:"dst"`
	AmountIn string `query:"src_amount" json:"amount_in"`
}

type RouteRequest struct {
	Path     string `query:"path" json:"path"`
	AmountIn string `query:"src_amount" json:"amount_in"`
}

// Handle quotes a single-pool swap and responds with the output amount.
func (h *QuoteHandler) Handle() fiber.Handler {
	return func(c fiber.Ctx) error {
		req, err := h.parseAndValidateRequest(c)
		if err != nil {
			return err
		}

		pool := common.HexToAddress(req.Pool)
		src := common.HexToAddress(req.Src)
		dst := common.HexToAddress(req.Dst)

		amountIn, err := parseAmount(req.AmountIn)
		if err != nil {
			return NewInvalidAmountIn(err)
		}

		amountOut, err := h.service.Quote(pool, src, dst, amountIn)
		if err != nil {
			return h.handleServiceError(err)
		}

		h.logger.Debug("quote computed", "pool", req.Pool, "src", req.Src, "dst", req.Dst, "in", amountIn.String(), "out", amountOut.String())
		return c.SendString(amountOut.String())
	}
}

// HandleRoute quotes a multi-hop route and responds with the amount at every
// hop.
func (h *QuoteHandler) HandleRoute() fiber.Handler {
	return func(c fiber.Ctx) error {
		var req RouteRequest
		if err := c.Bind().Query(&req); err != nil {
			h.logger.Debug("failed to bind query parameters", "err", err)
			return ErrInvalidQueryParameters
		}

		path, err := parsePath(req.Path)
		if err != nil {
			return err
		}
		amountIn, err := parseAmount(req.AmountIn)
		if err != nil {
			return NewInvalidAmountIn(err)
		}

		amounts, err := h.service.QuotePath(amountIn, path)
		if err != nil {
			return h.handleServiceError(err)
		}

		out := make([]string, len(amounts))
		for i, a := range amounts {
			out[i] = a.String()
		}
		return c.JSON(fiber.Map{"amounts": out})
	}
}

func (h *QuoteHandler) parseAndValidateRequest(c fiber.Ctx) (*QuoteRequest, error) {
	var req QuoteRequest

	if err := c.Bind().Query(&req); err != nil {
		h.logger.Debug("failed to bind query parameters", "err", err)
		return nil, ErrInvalidQueryParameters
	}

	if err := h.validateAddresses(&req); err != nil {
		return nil, err
	}

	return &req, nil
}

func (h *QuoteHandler) validateAddresses(req *QuoteRequest) error {
	addresses := map[string]string{
		"pool": req.Pool,
		"src":  req.Src,
		"dst":  req.Dst,
	}

	for field, addr := range addresses {
		if addr == "" {
			return NewAddressRequired(field)
		}
		if !common.IsHexAddress(addr) {
			return NewInvalidAddress(field)
		}
	}

	if req.Src == req.Dst {
		return ErrSameAddresses
	}

	return nil
}

func (h *QuoteHandler) handleServiceError(err error) error {
	switch err {
	case service.ErrSameToken:
		return ErrSameTokenBadRequest
	case service.ErrPairMismatch:
		return ErrPairMismatchBadRequest
	case service.ErrEmptyReserves:
		return ErrEmptyReservesBadRequest
	case service.ErrUnknownPair:
		return ErrPoolNotFound
	default:
		h.logger.Error("service quote failed", "err", err)
		return ErrQuoteFailedInternal
	}
}

func parseAmount(amountStr string) (*big.Int, error) {
	if amountStr == "" {
		return nil, ErrAmountRequired
	}

	amount, ok := new(big.Int).SetString(amountStr, 10)
	if !ok {
		return nil, ErrInvalidAmountFormat
	}

	if amount.Sign() <= 0 {
		return nil, ErrAmountNonPositive
	}

	return amount, nil
}

func parsePath(pathStr string) ([]common.Address, error) {
	parts := strings.Split(pathStr, ",")
	if len(parts) < 2 {
		return nil, ErrInvalidPath
	}
	path := make([]common.Address, len(parts))
	for i, p := range parts {
		p = strings.TrimSpace(p)
		if !common.IsHexAddress(p) {
			return nil, ErrInvalidPath
		}
		path[i] = common.HexToAddress(p)
	}
	return path, nil
}

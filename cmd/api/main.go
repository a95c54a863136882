package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/gofiber/fiber/v3"
	"github.com/joho/godotenv"

	"github.com/memeswapfi/memeswap-contracts/internal/config"
	"github.com/memeswapfi/memeswap-contracts/internal/handler"
	"github.com/memeswapfi/memeswap-contracts/internal/logging"
	"github.com/memeswapfi/memeswap-contracts/internal/registry"
	"github.com/memeswapfi/memeswap-contracts/internal/service"
	"github.com/memeswapfi/memeswap-contracts/internal/token"
	"github.com/memeswapfi/memeswap-contracts/internal/vault"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}

	app := fiber.New()
	logger := logging.NewLogger(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg, v := deploy(cfg, logger)

	quoteHandler := handler.NewQuoteHandler(logger, service.NewQuoteService(logger, reg))
	poolHandler := handler.NewPoolHandler(logger, service.NewPoolService(logger, reg))
	vaultHandler := handler.NewVaultHandler(logger, service.NewVaultService(logger, v))

	app.Get("/quote", quoteHandler.Handle())
	app.Get("/route", quoteHandler.HandleRoute())
	app.Get("/pools", poolHandler.HandleList())
	app.Get("/pools/:address", poolHandler.Handle())
	app.Get("/vault", vaultHandler.HandleStats())
	app.Get("/vault/position", vaultHandler.HandlePosition())
	app.Get("/vault/rent-quote", vaultHandler.HandleRentQuote())
	app.Get("/vault/rental", vaultHandler.HandleRental())

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Listen(cfg.Addr)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			_ = app.Shutdown()
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	_ = app.Shutdown()

	<-shutdownCtx.Done()
	return nil
}

// deploy stands up the in-memory exchange: the collateral token, the
// registry and the rental vault, wired together and configured from cfg.
func deploy(cfg *config.Config, logger *slog.Logger) (*registry.Registry, *vault.Vault) {
	registryAddr := addressFor("registry")
	vaultAddr := addressFor("vault")
	escrowAddr := addressFor("escrow")
	collateralAddr := addressFor("collateral")
	digest := common.BytesToHash(crypto.Keccak256([]byte("pair-v1")))

	collateral := token.New("Wrapped Native", "WNAT", 18, collateralAddr, nil)

	reg := registry.New(registryAddr, cfg.Owner, cfg.FeeTo, digest, logger, nil)
	reg.RegisterToken(collateral)

	durations := make(map[time.Duration]bool, len(cfg.Durations))
	for _, d := range cfg.Durations {
		durations[d] = true
	}
	params := vault.Params{
		MinRateBps:        cfg.MinRateBps,
		MaxRateBps:        cfg.MaxRateBps,
		ProtocolCutBps:    cfg.ProtocolCutBps,
		SuccessMultiplier: cfg.SuccessMultiplier,
		ResolutionFeeBps:  cfg.ResolutionFeeBps,
		RewardWindow:      cfg.RewardWindow,
		MinDeposit:        cfg.MinDeposit,
		Durations:         durations,
	}

	v := vault.New(vaultAddr, cfg.Owner, registryAddr, collateral, reg, &vault.ShareEscrow{Addr: escrowAddr}, nil, params, logger, nil)
	reg.SetVault(v)

	if err := reg.ApproveToken(cfg.Owner, collateralAddr, true); err != nil {
		logger.Error("approving collateral for rental", "err", err)
	}

	logger.Info("deployment ready",
		"registry", registryAddr,
		"vault", vaultAddr,
		"collateral", collateralAddr,
		"owner", cfg.Owner)
	return reg, v
}

// addressFor derives a stable address for a deployment-time component.
func addressFor(label string) common.Address {
	sum := crypto.Keccak256([]byte("memeswap/" + label))
	return common.BytesToAddress(sum[12:])
}

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/p2d/serverwallet/internal/boot"
	"github.com/p2d/serverwallet/internal/chain"
	"github.com/p2d/serverwallet/internal/config"
	"github.com/p2d/serverwallet/internal/infra"
	"github.com/p2d/serverwallet/internal/logging"
	"github.com/p2d/serverwallet/internal/platform"
	"github.com/p2d/serverwallet/internal/server"
	"github.com/p2d/serverwallet/internal/wallet"
)

const bootTimeout = 2 * time.Minute

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.AppName, cfg.LogLevel)

	ctx := context.Background()

	cache, err := infra.NewOptionalRedis(ctx, cfg.RedisURL)
	if err != nil {
		logger.Error("connect redis", "error", err)
		os.Exit(1)
	}
	if cache != nil {
		defer func() {
			if err := cache.Close(); err != nil {
				logger.Warn("close redis", "error", err)
			}
		}()
	}

	client, err := platform.New(platform.Config{
		BaseURL:      cfg.APIBase,
		KeyID:        cfg.APIKeyID,
		KeySecret:    cfg.APIKeySecret,
		WalletSecret: cfg.WalletSecret,
	})
	if err != nil {
		logger.Error("build platform client", "error", err)
		os.Exit(1)
	}

	srv, err := server.New(cfg, cache, client, logger)
	if err != nil {
		logger.Error("build server", "error", err)
		os.Exit(1)
	}

	// One-shot startup: provision the wallet and hit the faucet. Failures are
	// logged inside the hook and never block the server.
	var receipts boot.Receipts
	if cfg.FaucetWait {
		rpc, err := chain.New(cfg.RPCURL)
		if err != nil {
			logger.Warn("chain client unavailable, skipping confirmation wait", "error", err)
		} else {
			receipts = rpc
		}
	}
	hook := boot.New(wallet.NewProvisioner(client), client, receipts, logger, boot.Config{
		Network:          cfg.Network,
		OwnerName:        cfg.OwnerName,
		SmartAccountName: cfg.SmartAccountName,
		FaucetToken:      cfg.FaucetToken,
		WaitForReceipt:   cfg.FaucetWait,
	})
	bootCtx, bootCancel := context.WithTimeout(ctx, bootTimeout)
	hook.Run(bootCtx)
	bootCancel()

	srvErrCh := make(chan error, 1)
	go func() {
		srvErrCh <- srv.Listen()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("shutdown signal received", "signal", sig.String())
	case err := <-srvErrCh:
		if err != nil {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
		return
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownPeriod)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
		os.Exit(1)
	}

	logger.Info("server exited cleanly")
}

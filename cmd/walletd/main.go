package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/passwallet/passwallet/internal/account"
	"github.com/passwallet/passwallet/internal/bundler"
	"github.com/passwallet/passwallet/internal/chain"
	"github.com/passwallet/passwallet/internal/config"
	"github.com/passwallet/passwallet/internal/credstore"
	"github.com/passwallet/passwallet/internal/infra"
	"github.com/passwallet/passwallet/internal/logging"
	"github.com/passwallet/passwallet/internal/notification"
	"github.com/passwallet/passwallet/internal/passkey"
	"github.com/passwallet/passwallet/internal/routes"
	"github.com/passwallet/passwallet/internal/server"
	"github.com/passwallet/passwallet/internal/session"
	"github.com/passwallet/passwallet/internal/transfer"
	"github.com/passwallet/passwallet/internal/wallet"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.LogLevel)

	ctx := context.Background()

	var store credstore.Store
	if cfg.RedisURL != "" {
		cache, err := infra.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			logger.Error("connect redis", "error", err)
			os.Exit(1)
		}
		defer func() {
			if err := cache.Close(); err != nil {
				logger.Warn("close redis", "error", err)
			}
		}()
		store = credstore.NewRedisStore(cache, "")
	} else {
		fileStore, err := credstore.NewFileStore(cfg.ProfileDir)
		if err != nil {
			logger.Error("open profile store", "error", err)
			os.Exit(1)
		}
		store = fileStore
	}

	token, err := chain.ParseAddress(cfg.TokenAddress)
	if err != nil {
		logger.Error("parse token address", "error", err)
		os.Exit(1)
	}

	rpc := chain.NewClient(cfg.ChainURL(), cfg.ClientKey)
	issuer := passkey.NewHTTPIssuer(cfg.ClientURL, cfg.ClientKey)
	resolver := account.NewRPCResolver(rpc)
	toasts := notification.NewBuffer(20, notification.NewLoggerNotifier(logger))

	manager := session.NewManager(store, issuer, resolver, toasts, logger)
	supervisor := wallet.NewSupervisor(rpc, manager, token, cfg.TokenDecimals, cfg.PollInterval, logger)
	transfers := transfer.NewSubmitter(bundler.NewRPCSubmitter(rpc), manager, toasts, logger, token, cfg.TokenDecimals)

	// Session bootstrap runs exactly once before the API comes up; the
	// poller follows whatever session it yields.
	manager.Restore(ctx)
	supervisor.Refresh()
	defer supervisor.Stop()

	srv, err := server.New(routes.Deps{
		Cfg:        cfg,
		Logger:     logger,
		Manager:    manager,
		Supervisor: supervisor,
		Transfers:  transfers,
		Toasts:     toasts,
	})
	if err != nil {
		logger.Error("build server", "error", err)
		os.Exit(1)
	}

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

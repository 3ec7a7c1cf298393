package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/NexxxT-x/TamagotchPy/internal/api"
	"github.com/NexxxT-x/TamagotchPy/internal/arena"
	"github.com/NexxxT-x/TamagotchPy/internal/constants"
	"github.com/NexxxT-x/TamagotchPy/internal/gateway"
	"github.com/NexxxT-x/TamagotchPy/internal/logging"
	"github.com/NexxxT-x/TamagotchPy/internal/service"
	"github.com/NexxxT-x/TamagotchPy/internal/telemetry"
	"github.com/NexxxT-x/TamagotchPy/internal/version"
)

const shutdownTimeout = 10 * time.Second

type ServeCmd struct{}

func (ServeCmd) Run(cli *CLI) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := cli.loadConfig()
	if err != nil {
		return err
	}

	shutdownTracing, err := telemetry.Setup(ctx, constants.ServiceName, version.Version, cli.env.OTelEndpoint)
	if err != nil {
		logging.Error("tracing disabled", err, nil)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			logging.Error("failed to flush traces", err, nil)
		}
	}()

	repo, closeDB, err := cli.openRepository(cfg)
	if err != nil {
		return err
	}
	defer closeDB()

	store := service.NewCombatStore(repo)
	hub := gateway.NewHub(gateway.Options{})
	registry := arena.NewRegistry(arena.Options{
		Loader:      store,
		Persister:   store,
		Gateway:     hub,
		TurnTimeout: cfg.Combat.TurnTimeout,
		Rules:       cfg.Combat.Rules,
		Items:       cfg.ItemCatalog(),
	})
	hub.Bind(registry)

	if cli.env.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := api.NewRouter(api.NewArenaHandler(repo, registry, hub), hub.Serve)
	addr := cli.env.ResolveAddress(cfg)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logging.Info("Server started", logging.Fields{constants.LogFieldAddr: addr})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		service.RunDecayLoop(gctx, repo, cfg.Decay)
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logging.Info("shutting down", nil)
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(sctx); err != nil {
			logging.Error("http shutdown failed", err, nil)
		}
		// Hijacked WebSocket connections are not closed by Shutdown.
		hub.Close()
		if err := registry.Close(sctx); err != nil {
			logging.Error("combat results still pending at shutdown", err, nil)
		}
		return nil
	})
	return g.Wait()
}

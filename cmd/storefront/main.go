package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jcmexdev/storefront/internal/auth"
	"github.com/jcmexdev/storefront/internal/cart"
	"github.com/jcmexdev/storefront/internal/catalog"
	"github.com/jcmexdev/storefront/internal/checkout"
	"github.com/jcmexdev/storefront/internal/config"
	"github.com/jcmexdev/storefront/internal/core/ports"
	"github.com/jcmexdev/storefront/internal/infra/httpx"
	"github.com/jcmexdev/storefront/internal/infra/kafka"
	"github.com/jcmexdev/storefront/internal/infra/redisstore"
	"github.com/jcmexdev/storefront/internal/infra/sqlite"
	"github.com/jcmexdev/storefront/internal/order"
	"github.com/jcmexdev/storefront/internal/pkg/telemetry"
)

const roleCacheTTL = 5 * time.Minute

func main() {
	telemetry.InitLogger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	shutdownTracer, err := telemetry.SetupTracer(ctx, cfg.ServiceName, cfg.OTLPEndpoint, cfg.Environment)
	if err != nil {
		slog.Error("failed to initialise tracer", "error", err)
		os.Exit(1)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracer(shutdownCtx); err != nil {
			slog.Error("tracer shutdown error", "error", err)
		}
	}()

	store, err := sqlite.Open(cfg.SQLitePath)
	if err != nil {
		slog.Error("failed to open store", "path", cfg.SQLitePath, "error", err)
		os.Exit(1)
	}
	defer store.Close()

	redis := redisstore.New(cfg.RedisAddr, cfg.ServiceName)
	defer redis.Close()

	var events ports.OrderEventPublisher = ports.NopPublisher{}
	if brokers := cfg.Brokers(); len(brokers) > 0 {
		pub := kafka.NewPublisher(brokers, cfg.KafkaTopic)
		defer pub.Close()
		events = pub
	}

	gate := auth.NewGate(store.Roles(), redis, roleCacheTTL)
	cartSvc := cart.NewService(store.Carts())
	catalogSvc := catalog.NewService(store.Products(), gate)
	orderSvc := order.NewService(store.Orders(), store.Profiles(), gate)
	checkoutWf := checkout.NewWorkflow(store.Carts(), store.Orders(), store.CheckoutLogs(), events, redis)

	handler := httpx.NewHandler(catalogSvc, cartSvc, checkoutWf, orderSvc, gate)
	router := httpx.NewRouter(handler, redis)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("storefront running", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http shutdown error", "error", err)
	}
}

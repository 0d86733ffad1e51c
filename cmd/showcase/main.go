package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/nexchakra/showcase/config"
	"github.com/nexchakra/showcase/internal/adminapi"
	"github.com/nexchakra/showcase/internal/app"
	"github.com/nexchakra/showcase/internal/cart"
	"github.com/nexchakra/showcase/internal/checkout"
	"github.com/nexchakra/showcase/internal/notify"
	"github.com/nexchakra/showcase/internal/storeapi"
	"github.com/nexchakra/showcase/internal/webserver"
)

var (
	cfile    = flag.String("c", "showcase.yml", "config file")
	initdb   = flag.Bool("initdb", false, "drop and recreate the database schema, then exit")
	showVer  = flag.Bool("v", false, "print version and exit")
	buildVer = "dev"
)

func main() {
	flag.Parse()

	if *showVer {
		fmt.Println(buildVer)
		return
	}

	cfg := config.LoadConfig(*cfile)
	application := app.NewApplication(cfg)
	application.Init(cfg)
	defer application.Release()

	if *initdb {
		application.InitDb()
		zap.L().Info("database initialized")
		return
	}

	// cart sessions live in redis with a ttl, not in the database
	redisClient, err := cart.NewRedisClient(cfg.Redis)
	if err != nil {
		zap.S().Fatalf("redis connect error: %v", err)
	}
	cartTTL := time.Duration(application.ConfigMgr().GetInt("checkout", "cart_ttl_hours")) * time.Hour
	if cartTTL <= 0 {
		cartTTL = cart.DefaultSessionTTL
	}
	cartService := cart.NewService(
		cart.NewRedisStore(redisClient),
		cart.NewGormProductReader(application.DB()),
		cartTTL,
	)

	bus := notify.NewBus()
	checkoutService := checkout.NewService(
		checkout.NewGormRepository(application.DB()),
		cartService,
		checkout.NewPaymentClient(cfg.Payment),
		bus,
	)

	hub, err := notify.NewHub(bus,
		checkout.EventOrderCreated, checkout.EventOrderPaid,
		checkout.EventOrderCancelled, checkout.EventOrderShipped)
	if err != nil {
		zap.S().Fatalf("notification hub error: %v", err)
	}
	defer hub.Close()

	_, err = notify.NewStockWatcher(bus,
		notify.NewGormLowStockSource(application.DB()), application.ConfigMgr())
	if err != nil {
		zap.S().Fatalf("stock watcher error: %v", err)
	}

	mailer, err := notify.NewMailer(bus, application.DB(), application.ConfigMgr())
	if err != nil {
		zap.S().Fatalf("mailer error: %v", err)
	}
	defer mailer.Release()

	storeapi.Init()
	adminapi.Init()

	server := webserver.NewWebServer(&webserver.Deps{
		Config:   cfg,
		DB:       application.DB(),
		Cart:     cartService,
		Checkout: checkoutService,
		Settings: application.ConfigMgr(),
	})
	server.Echo().GET("/ws/notifications", hub.Handler)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	checkoutService.Start(ctx, time.Minute)
	defer checkoutService.Stop()

	// cancel unpaid orders that never completed payment
	_, err = application.Scheduler().AddFunc("@every 5m", func() {
		maxAge := time.Duration(application.ConfigMgr().GetInt("checkout", "stale_pending_minutes")) * time.Minute
		if maxAge <= 0 {
			maxAge = time.Hour
		}
		if n := checkoutService.ExpireStalePending(context.Background(), maxAge); n > 0 {
			zap.L().Info("expired stale pending orders", zap.Int("count", n))
		}
	})
	if err != nil {
		zap.S().Errorf("schedule stale order job error: %v", err)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(server.Start)
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Echo().Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		zap.S().Error(err)
		os.Exit(1)
	}
}

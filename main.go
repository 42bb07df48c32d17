package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/phillip/campus-services-go/config"
	"github.com/phillip/campus-services-go/controllers"
	"github.com/phillip/campus-services-go/metrics"
	"github.com/phillip/campus-services-go/notify"
	"github.com/phillip/campus-services-go/repository"
	"github.com/phillip/campus-services-go/routes"
	"github.com/phillip/campus-services-go/services/lostfound"
	"github.com/phillip/campus-services-go/services/sysconfig"
	"github.com/phillip/campus-services-go/utils"
)

type store interface {
	repository.ItemStore
	repository.ConfigStore
	Ping(ctx context.Context) error
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		utils.Fatal("invalid configuration", map[string]any{"error": err.Error()})
	}
	utils.SetLogLevel(cfg.LogLevel)
	gin.SetMode(cfg.GinMode)
	metrics.MustRegister()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, closeStore := openStore(ctx, cfg)
	defer closeStore()

	events := openPublishers(cfg)
	defer events.Close()

	configOpts := []sysconfig.Option{sysconfig.WithPublisher(events)}
	if cfg.RedisURL != "" {
		cache, err := sysconfig.NewRedisCacheFromURL(cfg.RedisURL)
		if err != nil {
			utils.Fatal("redis connection failed", map[string]any{"error": err.Error()})
		}
		defer cache.Close()
		configOpts = append(configOpts, sysconfig.WithCache(cache))
		utils.Info("public config cache enabled", nil)
	}
	configs := sysconfig.NewService(db, configOpts...)

	var images utils.ImageStore = utils.NoopImageStore{}
	if cfg.CloudinaryEnabled() {
		cld, err := utils.NewCloudinaryStore(cfg.CloudinaryURL, cfg.CloudinaryName, cfg.CloudinaryKey, cfg.CloudinarySecret)
		if err != nil {
			utils.Fatal("cloudinary setup failed", map[string]any{"error": err.Error()})
		}
		images = cld
	} else {
		utils.Warn("cloudinary not configured, image uploads disabled", nil)
	}

	items := lostfound.NewService(db,
		lostfound.WithPublisher(events),
		lostfound.WithImageStore(images),
		lostfound.WithDefaultTTL(cfg.DefaultTTL),
		lostfound.WithAutoRejectSiblings(cfg.AutoRejectSiblings, configs),
	)

	if cfg.SweepInterval > 0 {
		go items.RunSweeper(ctx, cfg.SweepInterval)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	routes.SetupRoutes(r, cfg, &controllers.Deps{
		Items:      items,
		Moderation: items,
		Configs:    configs,
		Images:     images,
		Store:      db,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      90 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		sig := <-quit
		utils.Info("shutdown signal received", map[string]any{"signal": sig.String()})

		cancel()
		shutdownCtx, done := context.WithTimeout(context.Background(), 15*time.Second)
		defer done()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			utils.Error("server forced to shutdown", map[string]any{"error": err.Error()})
		}
	}()

	utils.Info("server started", map[string]any{"port": cfg.Port, "store": cfg.StoreDriver})
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		utils.Fatal("server error", map[string]any{"error": err.Error()})
	}
	utils.Info("server stopped", nil)
}

func openStore(ctx context.Context, cfg *config.Config) (store, func()) {
	if cfg.StoreDriver == config.DriverMemory {
		utils.Warn("using in-memory store, data is lost on restart", nil)
		return repository.NewMemoryRepo(), func() {}
	}

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	mongoStore, err := repository.NewMongoStore(connectCtx, cfg.MongoURI, cfg.DBName)
	if err != nil {
		utils.Fatal("mongo connection failed", map[string]any{"error": err.Error()})
	}
	if err := mongoStore.EnsureIndexes(connectCtx); err != nil {
		utils.Fatal("mongo index setup failed", map[string]any{"error": err.Error()})
	}
	utils.Info("connected to MongoDB", map[string]any{"db": cfg.DBName})

	return mongoStore, func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := mongoStore.Close(closeCtx); err != nil {
			utils.Warn("mongo disconnect failed", map[string]any{"error": err.Error()})
		}
	}
}

func openPublishers(cfg *config.Config) notify.Publisher {
	var pubs notify.Multi
	if cfg.RabbitURL != "" {
		rabbit, err := notify.NewRabbit(cfg.RabbitURL, cfg.RabbitExchange)
		if err != nil {
			utils.Fatal("rabbitmq connection failed", map[string]any{"error": err.Error()})
		}
		pubs = append(pubs, rabbit)
		utils.Info("publishing events to RabbitMQ", map[string]any{"exchange": cfg.RabbitExchange})
	}
	if cfg.EmailEnabled() {
		mailer, err := notify.NewZeptoMailer(cfg.ZeptoAPIURL, cfg.ZeptoAPIKey, cfg.EmailFrom)
		if err != nil {
			utils.Fatal("email setup failed", map[string]any{"error": err.Error()})
		}
		pubs = append(pubs, notify.NewEmailPublisher(mailer, cfg.ModerationInbox))
	}
	if len(pubs) == 0 {
		return notify.NewNoop()
	}
	return pubs
}

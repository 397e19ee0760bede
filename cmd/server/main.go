package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/itaybe6/Events-Mannagement-sub003/config"
	"github.com/itaybe6/Events-Mannagement-sub003/internal/cache"
	"github.com/itaybe6/Events-Mannagement-sub003/internal/database"
	"github.com/itaybe6/Events-Mannagement-sub003/internal/gateway"
	"github.com/itaybe6/Events-Mannagement-sub003/internal/handler"
	"github.com/itaybe6/Events-Mannagement-sub003/internal/messaging"
	"github.com/itaybe6/Events-Mannagement-sub003/internal/queue"
	"github.com/itaybe6/Events-Mannagement-sub003/internal/repository"
	"github.com/itaybe6/Events-Mannagement-sub003/internal/store"
	"github.com/itaybe6/Events-Mannagement-sub003/internal/worker"
	"github.com/itaybe6/Events-Mannagement-sub003/pkg/logger"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg := config.LoadConfig()

	pool, err := database.InitDatabase(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer pool.Close()

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		log.Fatalf("Failed to initialize redis: %v", err)
	}
	defer rdb.Close()

	userRepo := repository.NewUserRepository(pool)
	eventRepo := repository.NewEventRepository(pool)
	guestRepo := repository.NewGuestRepository(pool)

	authGateway := gateway.NewJWTAuthGateway(
		userRepo, rdb, cfg.Auth.JWTSecret,
		time.Duration(cfg.Auth.TokenTTL)*time.Minute,
		logger.WithComponent("auth"),
	)

	var files gateway.FileGateway
	if cfg.Cloudinary.CloudName != "" {
		cld, err := gateway.NewCloudinaryFileGateway(&cfg.Cloudinary)
		if err != nil {
			log.Fatalf("Failed to initialize cloudinary: %v", err)
		}
		files = cld
	}

	snapshots := cache.NewRedisSnapshotStore(rdb)
	planner := store.NewManager(snapshots, eventRepo, guestRepo, logger.WithComponent("planner"))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var sender messaging.Sender
	if cfg.WhatsApp.Enabled {
		wa, err := messaging.NewWhatsAppSender(cfg.WhatsApp.DataDir, logger.WithComponent("whatsapp"))
		if err != nil {
			log.Fatalf("Failed to initialize whatsapp: %v", err)
		}
		if err := wa.Connect(ctx); err != nil {
			log.Fatalf("Failed to connect whatsapp: %v", err)
		}
		defer wa.Disconnect()
		sender = wa
	} else {
		sender = messaging.NewLogSender(logger.WithComponent("messaging"))
	}

	outbox, err := queue.NewRedisStreamMessageQueue(rdb, "", nil)
	if err != nil {
		log.Fatalf("Failed to initialize message queue: %v", err)
	}

	deliveryWorker := worker.NewMessageWorker(sender, outbox, planner, logger.WithComponent("worker"))
	if err := deliveryWorker.Start(ctx); err != nil {
		log.Fatalf("Failed to start delivery worker: %v", err)
	}

	router := gin.Default()
	router.Use(cors.Default())
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	handler.NewAuthHandler(authGateway, files).RegisterRoutes(router)
	handler.NewEventHandler(authGateway, eventRepo, planner).RegisterRoutes(router)
	handler.NewPlannerHandler(authGateway, eventRepo, guestRepo, planner, outbox).RegisterRoutes(router)

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown: %v", err)
	}
}

package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	gcstorage "cloud.google.com/go/storage"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"

	"github.com/rookies/ecommerce-api/internal/config"
	"github.com/rookies/ecommerce-api/internal/handler"
	"github.com/rookies/ecommerce-api/internal/middleware"
	"github.com/rookies/ecommerce-api/internal/repository"
	"github.com/rookies/ecommerce-api/internal/service"
	"github.com/rookies/ecommerce-api/internal/upload"
	"github.com/rookies/ecommerce-api/internal/worker"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		log.Error("load config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// PostgreSQL
	poolCfg, err := pgxpool.ParseConfig(cfg.DB.DSN())
	if err != nil {
		log.Error("parse db config", "error", err)
		os.Exit(1)
	}
	poolCfg.MaxConns = cfg.DB.MaxConns

	dbPool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		log.Error("connect to database", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	if err := dbPool.Ping(ctx); err != nil {
		log.Error("ping database", "error", err)
		os.Exit(1)
	}
	log.Info("connected to PostgreSQL")

	// Redis
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Error("connect to Redis", "error", err)
		os.Exit(1)
	}
	log.Info("connected to Redis")

	// RabbitMQ
	amqpConn, err := amqp.Dial(cfg.RabbitMQ.URL)
	if err != nil {
		log.Error("connect to RabbitMQ", "error", err)
		os.Exit(1)
	}
	defer amqpConn.Close()

	amqpCh, err := amqpConn.Channel()
	if err != nil {
		log.Error("open RabbitMQ channel", "error", err)
		os.Exit(1)
	}
	defer amqpCh.Close()

	if err := worker.SetupRabbitMQ(amqpCh); err != nil {
		log.Error("setup RabbitMQ", "error", err)
		os.Exit(1)
	}
	log.Info("connected to RabbitMQ")

	// Cloud Storage
	storageClient, err := gcstorage.NewClient(ctx)
	if err != nil {
		log.Error("connect to Cloud Storage", "error", err)
		os.Exit(1)
	}
	defer storageClient.Close()
	uploader := upload.NewGCSUploader(storageClient, cfg.Storage.Bucket)

	// Repositories
	userRepo := repository.NewUserRepository(dbPool)
	categoryRepo := repository.NewCategoryRepository(dbPool)
	productRepo := repository.NewProductRepository(dbPool)
	featuredRepo := repository.NewFeaturedProductRepository(dbPool)
	cartRepo := repository.NewCartRepository(dbPool)
	reviewRepo := repository.NewReviewRepository(dbPool)
	orderRepo := repository.NewOrderRepository(dbPool)

	// Services
	tokenStore := service.NewRedisTokenStore(redisClient)
	publisher := worker.NewPublisher(amqpCh)

	authSvc := service.NewAuthService(userRepo, cartRepo, tokenStore, cfg.JWT.Secret, cfg.JWT.AccessExpiry, cfg.JWT.RefreshExpiry)
	userSvc := service.NewUserService(userRepo)
	adminSvc := service.NewAdminService(userRepo)
	categorySvc := service.NewCategoryService(categoryRepo)
	productSvc := service.NewProductService(productRepo, categoryRepo, userRepo, uploader, redisClient)
	featuredSvc := service.NewFeaturedService(featuredRepo)
	cartSvc := service.NewCartService(cartRepo, productRepo, userRepo)
	reviewSvc := service.NewReviewService(reviewRepo, productRepo, userRepo)
	orderSvc := service.NewOrderService(orderRepo, cartRepo, productRepo, userRepo, publisher, log)

	// Handlers
	authH := handler.NewAuthHandler(authSvc)
	userH := handler.NewUserHandler(userSvc, adminSvc)
	categoryH := handler.NewCategoryHandler(categorySvc)
	productH := handler.NewProductHandler(productSvc)
	featuredH := handler.NewFeaturedHandler(featuredSvc)
	cartH := handler.NewCartHandler(cartSvc)
	reviewH := handler.NewReviewHandler(reviewSvc)
	orderH := handler.NewOrderHandler(orderSvc)
	healthH := handler.NewHealthHandler(dbPool, redisClient, amqpConn)

	// Worker
	orderWorker := worker.NewOrderWorker(amqpCh, orderRepo, productRepo, redisClient, log)

	authRequired := middleware.AuthMiddleware(cfg.JWT.Secret, tokenStore)

	// Router
	router := gin.Default()
	router.Use(middleware.CORS())
	router.GET("/healthz", healthH.Healthz)
	router.GET("/readyz", healthH.Readyz)

	v1 := router.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		auth.POST("/register", authH.Register)
		auth.POST("/login", authH.Login)
		auth.POST("/logout", authH.Logout)
		auth.POST("/refresh", authH.Refresh)

		users := v1.Group("/users", authRequired)
		users.GET("/me", userH.GetMe)
		users.PUT("/me", userH.UpdateProfile)
		users.PUT("/me/password", userH.ChangePassword)

		categories := v1.Group("/categories")
		categories.GET("", categoryH.List)
		categories.GET("/:id", categoryH.GetByID)
		categories.GET("/:id/products", productH.ListByCategory)

		categoriesAdmin := categories.Group("", authRequired, middleware.AdminOnly())
		categoriesAdmin.POST("", categoryH.Create)
		categoriesAdmin.PUT("/:id", categoryH.Update)
		categoriesAdmin.PATCH("/:id/toggle", categoryH.Toggle)

		products := v1.Group("/products")
		products.GET("", productH.List)
		products.GET("/search", productH.Search)
		products.GET("/slug/:slug", productH.GetBySlug)
		products.GET("/:id", productH.GetByID)
		products.GET("/:id/reviews", reviewH.ListByProduct)
		products.GET("/:id/reviews/statistic", reviewH.Statistic)

		productsAdmin := products.Group("", authRequired, middleware.AdminOnly())
		productsAdmin.POST("", productH.Create)
		productsAdmin.PUT("/:id", productH.Update)
		productsAdmin.PATCH("/:id/toggle", productH.Toggle)

		featured := v1.Group("/featured-products")
		featured.GET("", featuredH.ListActive)

		featuredAdmin := featured.Group("", authRequired, middleware.AdminOnly())
		featuredAdmin.GET("/all", featuredH.ListAll)
		featuredAdmin.GET("/:id", featuredH.GetByID)
		featuredAdmin.POST("", featuredH.Create)
		featuredAdmin.PUT("/:id", featuredH.Update)
		featuredAdmin.DELETE("/:id", featuredH.Delete)

		cart := v1.Group("/cart", authRequired, middleware.UserOnly())
		cart.GET("", cartH.GetDetail)
		cart.POST("/items", cartH.AddItem)
		cart.PUT("/items", cartH.UpdateItem)
		cart.DELETE("/items", cartH.RemoveItems)

		reviews := v1.Group("/reviews", authRequired)
		reviews.GET("/me", reviewH.ListMine)
		reviews.POST("", middleware.UserOnly(), reviewH.Create)
		reviews.PUT("/:id", middleware.UserOnly(), reviewH.Update)
		reviews.DELETE("/:id", reviewH.Delete)

		orders := v1.Group("/orders", authRequired)
		orders.POST("/checkout", middleware.UserOnly(), orderH.Checkout)
		orders.GET("", orderH.ListMine)
		orders.GET("/:id", orderH.GetByID)
		orders.PATCH("/:id/status", middleware.AdminOnly(), orderH.UpdateStatus)

		admin := v1.Group("/admin", authRequired, middleware.AdminOnly())
		admin.GET("/users", userH.ListUsers)
		admin.PUT("/users/status", userH.ToggleUserStatus)
		admin.GET("/products/hidden", productH.ListHidden)
		admin.GET("/products/:id", productH.AdminDetail)
		admin.GET("/reviews", reviewH.ListAll)
	}

	if err := orderWorker.Start(ctx); err != nil {
		log.Error("start order worker", "error", err)
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info("starting HTTP server", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown", "error", err)
	}

	orderWorker.Stop()
	time.Sleep(500 * time.Millisecond)
	cancel()
	log.Info("server stopped")
}

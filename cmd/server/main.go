package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	"google.golang.org/grpc"

	"github.com/rl1809/micro-shop/internal/adapter/filestore"
	"github.com/rl1809/micro-shop/internal/adapter/handler"
	"github.com/rl1809/micro-shop/internal/adapter/notify"
	"github.com/rl1809/micro-shop/internal/adapter/storage"
	"github.com/rl1809/micro-shop/internal/config"
	"github.com/rl1809/micro-shop/internal/core/domain"
	"github.com/rl1809/micro-shop/internal/core/service"
	"github.com/rl1809/micro-shop/internal/port"
)

func main() {
	issueToken := flag.Bool("issue-admin-token", false, "create a new admin token, print it and exit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	repos, err := storage.Open(ctx, cfg)
	if err != nil {
		log.Fatalf("%v", err)
	}

	settingsService := service.NewSettingsService(repos.Settings, cfg.AdminTokenTTL)
	if *issueToken {
		token, err := settingsService.IssueAdminToken(ctx)
		repos.Close()
		if err != nil {
			log.Fatalf("failed to issue admin token: %v", err)
		}
		fmt.Println(token)
		return
	}

	// Initialize file storage
	var files port.FileStore
	var local *filestore.Local
	if cfg.CloudinaryURL != "" {
		files, err = filestore.NewCloudinary(cfg.CloudinaryURL)
		if err != nil {
			log.Fatalf("failed to configure cloudinary: %v", err)
		}
		log.Println("storing uploads on cloudinary")
	} else {
		local, err = filestore.NewLocal(cfg.MediaDir, cfg.MediaURL)
		if err != nil {
			log.Fatalf("failed to prepare media dir: %v", err)
		}
		files = local
		log.Printf("storing uploads in %s", local.Root())
	}

	// Initialize services
	orderService := service.NewOrderService(repos.Transactions, repos.Cache, files, cfg.QueueSize)
	productService := service.NewProductService(repos.Products, repos.Cache, files)

	// Order event notifiers
	hub := notify.NewHub()
	notifiers := notify.Multi{notify.Log{Printf: log.Printf}, hub}
	if cfg.MailEnabled() {
		notifiers = append(notifiers, notify.NewMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.MailFrom))
		log.Printf("order emails via %s:%d", cfg.SMTPHost, cfg.SMTPPort)
	}

	// Start worker pool
	var wg sync.WaitGroup
	for i := 0; i < cfg.WorkerCount; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			workerLoop(id, orderService.GetEventQueue(), notifiers)
		}(i)
	}
	log.Printf("started %d workers", cfg.WorkerCount)

	// Initialize gRPC server
	grpcServer := grpc.NewServer()
	handler.RegisterOrderTrackingServer(grpcServer, handler.NewGRPCHandler(orderService))

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		log.Fatalf("failed to listen: %v", err)
	}

	go func() {
		log.Printf("gRPC server listening on %s", cfg.GRPCAddr)
		if err := grpcServer.Serve(lis); err != nil {
			log.Printf("gRPC server error: %v", err)
		}
	}()

	// Initialize HTTP server
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	router.Use(newCORS(cfg.CORSOrigins))
	if local != nil && strings.HasPrefix(cfg.MediaURL, "/") {
		router.Static(cfg.MediaURL, local.Root())
	}

	httpHandler := handler.NewHTTPHandler(orderService, productService, settingsService, http.HandlerFunc(hub.Serve))
	httpHandler.Register(router)

	httpServer := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: router,
	}

	go func() {
		log.Printf("HTTP server listening on %s", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
			log.Printf("HTTP server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down...")

	// Stop HTTP server
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP shutdown: %v", err)
	}
	log.Println("HTTP server stopped")

	// Stop gRPC server
	grpcServer.GracefulStop()
	log.Println("gRPC server stopped")

	// Close event queue and wait for workers
	orderService.Close()
	wg.Wait()
	hub.Close()
	log.Println("workers stopped")

	repos.Close()
	log.Println("connections closed")
}

// newCORS allows the storefront origins; an empty list allows any origin.
func newCORS(origins []string) gin.HandlerFunc {
	c := cors.DefaultConfig()
	c.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	c.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "Idempotency-Key"}
	c.ExposeHeaders = []string{"Content-Disposition"}
	c.MaxAge = 12 * time.Hour
	if len(origins) == 0 {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = origins
	}
	return cors.New(c)
}

func workerLoop(id int, queue <-chan domain.OrderEvent, notifier port.Notifier) {
	for event := range queue {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)

		if err := notifier.Notify(ctx, event); err != nil {
			log.Printf("worker %d: failed to deliver %s for order %s: %v",
				id, event.Kind, event.Transaction.TrackingNumber, err)
		}

		cancel()
	}
}

package main

import (
	"context"
	"log"
	"os"
	"path/filepath"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/gin-gonic/gin"
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"

	"github.com/rl1809/micro-shop/internal/adapter/filestore"
	"github.com/rl1809/micro-shop/internal/adapter/handler"
	"github.com/rl1809/micro-shop/internal/adapter/storage"
	"github.com/rl1809/micro-shop/internal/config"
	"github.com/rl1809/micro-shop/internal/core/service"
	"github.com/rl1809/micro-shop/internal/port"
)

// The function serves the public storefront reads behind API Gateway. Writes
// stay on the long-running server.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	repos, err := storage.Open(context.Background(), cfg)
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer repos.Close()

	var files port.FileStore
	if cfg.CloudinaryURL != "" {
		files, err = filestore.NewCloudinary(cfg.CloudinaryURL)
	} else {
		files, err = filestore.NewLocal(filepath.Join(os.TempDir(), "media"), cfg.MediaURL)
	}
	if err != nil {
		log.Fatalf("failed to configure file storage: %v", err)
	}

	orderService := service.NewOrderService(repos.Transactions, repos.Cache, files, 1)
	defer orderService.Close()
	productService := service.NewProductService(repos.Products, repos.Cache, files)
	settingsService := service.NewSettingsService(repos.Settings, cfg.AdminTokenTTL)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	handler.NewHTTPHandler(orderService, productService, settingsService, nil).RegisterReadOnly(router)

	lambda.Start(handler.NewLambdaHandler(router).Handle)
}

// Package shoptest starts an in-process backend for client-side tests.
package shoptest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/rl1809/micro-shop/internal/adapter/filestore"
	"github.com/rl1809/micro-shop/internal/adapter/handler"
	"github.com/rl1809/micro-shop/internal/adapter/notify"
	"github.com/rl1809/micro-shop/internal/adapter/storage"
	"github.com/rl1809/micro-shop/internal/core/domain"
	"github.com/rl1809/micro-shop/internal/core/service"
)

// Backend is the full REST API over the in-memory store, served by httptest.
// Order events are broadcast on Hub.
type Backend struct {
	Server   *httptest.Server
	Store    *storage.MemoryAdapter
	Hub      *notify.Hub
	Orders   *service.OrderService
	Products *service.ProductService
	Settings *service.SettingsService
	Token    string
}

func NewBackend(t testing.TB) *Backend {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := storage.NewMemoryAdapter()
	files, err := filestore.NewLocal(t.TempDir(), "/media/")
	require.NoError(t, err)

	hub := notify.NewHub()
	orders := service.NewOrderService(store, store, files, 100)
	go func() {
		for event := range orders.GetEventQueue() {
			hub.Notify(context.Background(), event)
		}
	}()
	products := service.NewProductService(store, store, files)
	settings := service.NewSettingsService(store, 0)
	token, err := settings.IssueAdminToken(context.Background())
	require.NoError(t, err)

	router := gin.New()
	handler.NewHTTPHandler(orders, products, settings, http.HandlerFunc(hub.Serve)).Register(router)
	srv := httptest.NewServer(router)

	t.Cleanup(func() {
		hub.Close()
		srv.Close()
		orders.Close()
	})

	return &Backend{
		Server:   srv,
		Store:    store,
		Hub:      hub,
		Orders:   orders,
		Products: products,
		Settings: settings,
		Token:    token,
	}
}

// APIURL is the base URL a client should be pointed at.
func (b *Backend) APIURL() string {
	return b.Server.URL + "/api"
}

// SeedProduct stores a product with the given name, category and price.
func (b *Backend) SeedProduct(t testing.TB, name, category, price string, qty int) domain.Product {
	t.Helper()
	p, err := b.Products.CreateProduct(context.Background(), service.ProductInput{
		Name:     name,
		Category: category,
		Price:    domain.MustMoney(price),
		Quantity: qty,
	}, nil, 0)
	require.NoError(t, err)
	return *p
}

package handler

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/rl1809/micro-shop/internal/core/catalog"
	"github.com/rl1809/micro-shop/internal/core/service"
)

const defaultPageLimit = 10

type HTTPHandler struct {
	orders   *service.OrderService
	products *service.ProductService
	settings *service.SettingsService
	events   http.Handler
}

// NewHTTPHandler wires the REST API. events serves the admin websocket feed
// and may be nil.
func NewHTTPHandler(orders *service.OrderService, products *service.ProductService, settings *service.SettingsService, events http.Handler) *HTTPHandler {
	return &HTTPHandler{orders: orders, products: products, settings: settings, events: events}
}

// Register mounts every route on r.
func (h *HTTPHandler) Register(r gin.IRouter) {
	r.GET("/health", h.HealthCheck)

	api := r.Group("/api")
	admin := h.RequireAdmin
	h.registerReads(api)

	api.GET("/products/export/", admin, h.ExportProducts)
	api.POST("/products/", admin, h.CreateProduct)
	api.PATCH("/products/:id/", admin, h.UpdateProduct)
	api.PUT("/products/:id/", admin, h.UpdateProduct)
	api.DELETE("/products/:id/", admin, h.DeleteProduct)
	api.POST("/products/:id/upload-images/", admin, h.UploadProductImages)

	api.GET("/transactions/", admin, h.ListTransactions)
	api.GET("/transactions/export/", admin, h.ExportTransactions)
	api.GET("/transactions/:id/", admin, h.GetTransaction)
	api.POST("/transactions/", h.PlaceOrder)
	api.PATCH("/transactions/:id/", admin, h.UpdateTransactionStatus)

	api.POST("/upload-payment-proof/", h.UploadPaymentProof)

	api.POST("/bank-details/", admin, h.SaveBankDetails)
	api.PUT("/bank-details/:id/", admin, h.SaveBankDetails)
	api.PATCH("/bank-details/:id/", admin, h.SaveBankDetails)

	api.PUT("/site-settings/:id/", admin, h.UpdateSiteSettings)
	api.PATCH("/site-settings/:id/", admin, h.UpdateSiteSettings)

	api.POST("/verify-admin/", h.VerifyAdmin)

	if h.events != nil {
		api.GET("/admin/events/", admin, gin.WrapH(h.events))
	}
}

// RegisterReadOnly mounts only the public GET routes the storefront needs.
func (h *HTTPHandler) RegisterReadOnly(r gin.IRouter) {
	r.GET("/health", h.HealthCheck)
	h.registerReads(r.Group("/api"))
}

func (h *HTTPHandler) registerReads(api gin.IRouter) {
	api.GET("/products/", h.ListProducts)
	api.GET("/products/:id/", h.GetProduct)
	api.GET("/track-order/", h.TrackOrder)
	api.GET("/bank-details/", h.ListBankDetails)
	api.GET("/site-settings/", h.GetSiteSettings)
}

func (h *HTTPHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// RequireAdmin accepts "Authorization: Bearer <token>", "Token <token>" or,
// for websocket clients, a token query parameter.
func (h *HTTPHandler) RequireAdmin(c *gin.Context) {
	token := adminToken(c)

	err := h.settings.VerifyAdmin(c.Request.Context(), token)
	switch {
	case err == nil:
		c.Next()
	case errors.Is(err, service.ErrTokenExpired):
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token expired"})
	case errors.Is(err, service.ErrInvalidToken):
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
	default:
		log.Printf("verify admin token: %v", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func adminToken(c *gin.Context) string {
	header := strings.TrimSpace(c.GetHeader("Authorization"))
	for _, scheme := range []string{"Bearer ", "Token "} {
		if len(header) > len(scheme) && strings.EqualFold(header[:len(scheme)], scheme) {
			return strings.TrimSpace(header[len(scheme):])
		}
	}
	return c.Query("token")
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidTrackingNumber):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid tracking number"})
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": strings.ReplaceAll(err.Error(), "\n", ": ")})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, service.ErrDuplicateRequest):
		c.JSON(http.StatusConflict, gin.H{"error": "duplicate request"})
	default:
		log.Printf("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return 0, false
	}
	return id, true
}

// respondList writes items as a plain array, or as a page envelope when the
// request carries a page parameter.
func respondList[T any](c *gin.Context, items []T) {
	raw, ok := c.GetQuery("page")
	if !ok {
		c.JSON(http.StatusOK, items)
		return
	}

	page, err := strconv.Atoi(raw)
	if err != nil {
		badRequest(c, "page must be a number")
		return
	}
	limit := defaultPageLimit
	if l := c.Query("limit"); l != "" {
		if limit, err = strconv.Atoi(l); err != nil || limit < 1 {
			badRequest(c, "limit must be a positive number")
			return
		}
	}
	c.JSON(http.StatusOK, catalog.Paginate(items, page, limit))
}

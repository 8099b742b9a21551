package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rl1809/micro-shop/internal/core/service"
)

type placeOrderRequest struct {
	Name        string      `json:"name"`
	Email       string      `json:"email"`
	Location    string      `json:"location"`
	Phone       string      `json:"phone"`
	Products    string      `json:"products"`
	TotalAmount json.Number `json:"total_amount"`
}

type statusRequest struct {
	Status string `json:"status"`
}

// PlaceOrder creates a pending transaction. An Idempotency-Key header makes
// repeated submits of the same checkout fail with 409.
func (h *HTTPHandler) PlaceOrder(c *gin.Context) {
	var req placeOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	tx, err := h.orders.PlaceOrder(c.Request.Context(), service.PlaceOrderInput{
		Name:           req.Name,
		Email:          req.Email,
		Location:       req.Location,
		Phone:          req.Phone,
		Products:       req.Products,
		TotalAmount:    req.TotalAmount.String(),
		IdempotencyKey: c.GetHeader("Idempotency-Key"),
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, tx)
}

func (h *HTTPHandler) ListTransactions(c *gin.Context) {
	txs, err := h.orders.ListTransactions(c.Request.Context(), c.Query("search"), c.Query("status"))
	if err != nil {
		writeError(c, err)
		return
	}
	respondList(c, txs)
}

func (h *HTTPHandler) GetTransaction(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	tx, err := h.orders.GetTransaction(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, tx)
}

func (h *HTTPHandler) UpdateTransactionStatus(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Status == "" {
		badRequest(c, "status is required")
		return
	}

	tx, err := h.orders.UpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, tx)
}

func (h *HTTPHandler) TrackOrder(c *gin.Context) {
	tx, err := h.orders.TrackOrder(c.Request.Context(), c.Query("tracking_number"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, tx)
}

func (h *HTTPHandler) UploadPaymentProof(c *gin.Context) {
	trackingNumber := c.PostForm("tracking_number")
	fh, err := c.FormFile("payment_proof")
	if err != nil {
		badRequest(c, "payment_proof is required")
		return
	}

	f, err := fh.Open()
	if err != nil {
		badRequest(c, "could not read payment_proof")
		return
	}
	defer f.Close()

	if _, err := h.orders.UploadPaymentProof(c.Request.Context(), trackingNumber, fh.Filename, f); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Payment proof uploaded successfully"})
}

package handler

import (
	"context"
	"errors"
	"log"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/rl1809/micro-shop/internal/core/domain"
	"github.com/rl1809/micro-shop/internal/core/service"
)

type GRPCHandler struct {
	orderService *service.OrderService
}

var _ OrderTrackingServer = (*GRPCHandler)(nil)

func NewGRPCHandler(orderService *service.OrderService) *GRPCHandler {
	return &GRPCHandler{orderService: orderService}
}

func (h *GRPCHandler) TrackOrder(ctx context.Context, req *TrackOrderRequest) (*TrackOrderResponse, error) {
	tx, err := h.orderService.TrackOrder(ctx, req.TrackingNumber)
	if err != nil {
		if errors.Is(err, service.ErrInvalidTrackingNumber) {
			return nil, status.Error(codes.NotFound, "Invalid tracking number")
		}
		log.Printf("grpc track order: %v", err)
		return nil, status.Error(codes.Internal, "internal error")
	}

	return &TrackOrderResponse{
		TrackingNumber: tx.TrackingNumber,
		Status:         string(tx.Status),
		Label:          tx.Status.Label(),
		TotalAmount:    tx.TotalAmount.String(),
		CreatedAt:      tx.CreatedAt,
		Timeline:       domain.NewTimeline(tx.Status),
	}, nil
}

func (h *GRPCHandler) PlaceOrder(ctx context.Context, req *PlaceOrderRequest) (*PlaceOrderResponse, error) {
	tx, err := h.orderService.PlaceOrder(ctx, service.PlaceOrderInput{
		Name:           req.Name,
		Email:          req.Email,
		Location:       req.Location,
		Phone:          req.Phone,
		Products:       req.Products,
		TotalAmount:    req.TotalAmount,
		IdempotencyKey: req.RequestID,
	})
	if err != nil {
		if errors.Is(err, service.ErrDuplicateRequest) {
			return &PlaceOrderResponse{
				Success: false,
				Message: "duplicate request",
			}, nil
		}
		if errors.Is(err, service.ErrInvalidInput) {
			return &PlaceOrderResponse{
				Success: false,
				Message: err.Error(),
			}, nil
		}
		log.Printf("grpc place order: %v", err)
		return &PlaceOrderResponse{
			Success: false,
			Message: "internal error",
		}, nil
	}

	return &PlaceOrderResponse{
		Success:        true,
		Message:        "order placed successfully",
		TrackingNumber: tx.TrackingNumber,
	}, nil
}

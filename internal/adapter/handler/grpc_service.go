package handler

import (
	"context"
	"time"

	"google.golang.org/grpc"

	"github.com/rl1809/micro-shop/internal/core/domain"
)

const (
	orderTrackingService = "shop.OrderTracking"
	trackOrderMethod     = "/" + orderTrackingService + "/TrackOrder"
	placeOrderMethod     = "/" + orderTrackingService + "/PlaceOrder"
)

type TrackOrderRequest struct {
	TrackingNumber string `json:"tracking_number"`
}

type TrackOrderResponse struct {
	TrackingNumber string          `json:"tracking_number"`
	Status         string          `json:"status"`
	Label          string          `json:"label"`
	TotalAmount    string          `json:"total_amount"`
	CreatedAt      time.Time       `json:"created_at"`
	Timeline       domain.Timeline `json:"timeline"`
}

type PlaceOrderRequest struct {
	RequestID   string `json:"request_id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Location    string `json:"location"`
	Phone       string `json:"phone"`
	Products    string `json:"products"`
	TotalAmount string `json:"total_amount"`
}

type PlaceOrderResponse struct {
	Success        bool   `json:"success"`
	Message        string `json:"message"`
	TrackingNumber string `json:"tracking_number,omitempty"`
}

type OrderTrackingServer interface {
	TrackOrder(context.Context, *TrackOrderRequest) (*TrackOrderResponse, error)
	PlaceOrder(context.Context, *PlaceOrderRequest) (*PlaceOrderResponse, error)
}

func RegisterOrderTrackingServer(s grpc.ServiceRegistrar, srv OrderTrackingServer) {
	s.RegisterService(&orderTrackingServiceDesc, srv)
}

var orderTrackingServiceDesc = grpc.ServiceDesc{
	ServiceName: orderTrackingService,
	HandlerType: (*OrderTrackingServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "TrackOrder", Handler: trackOrderHandler},
		{MethodName: "PlaceOrder", Handler: placeOrderHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "shop/order_tracking",
}

func trackOrderHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(TrackOrderRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(OrderTrackingServer).TrackOrder(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: trackOrderMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(OrderTrackingServer).TrackOrder(ctx, req.(*TrackOrderRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func placeOrderHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(PlaceOrderRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(OrderTrackingServer).PlaceOrder(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: placeOrderMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(OrderTrackingServer).PlaceOrder(ctx, req.(*PlaceOrderRequest))
	}
	return interceptor(ctx, in, info, handler)
}

// OrderTrackingClient calls the service over a connection using the JSON codec.
type OrderTrackingClient struct {
	cc grpc.ClientConnInterface
}

func NewOrderTrackingClient(cc grpc.ClientConnInterface) *OrderTrackingClient {
	return &OrderTrackingClient{cc: cc}
}

func (c *OrderTrackingClient) TrackOrder(ctx context.Context, in *TrackOrderRequest, opts ...grpc.CallOption) (*TrackOrderResponse, error) {
	out := new(TrackOrderResponse)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := c.cc.Invoke(ctx, trackOrderMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *OrderTrackingClient) PlaceOrder(ctx context.Context, in *PlaceOrderRequest, opts ...grpc.CallOption) (*PlaceOrderResponse, error) {
	out := new(PlaceOrderResponse)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := c.cc.Invoke(ctx, placeOrderMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

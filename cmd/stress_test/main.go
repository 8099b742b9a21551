package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/rl1809/micro-shop/internal/adapter/handler"
	"github.com/rl1809/micro-shop/internal/client"
	"github.com/rl1809/micro-shop/internal/config"
	"github.com/rl1809/micro-shop/internal/core/cart"
	"github.com/rl1809/micro-shop/internal/core/service"
)

// Fires concurrent checkouts at a running server. Every checkout is submitted
// duplicates times with the same idempotency key; exactly one submit per
// checkout must succeed.
func main() {
	checkouts := flag.Int("checkouts", 20, "distinct checkouts")
	duplicates := flag.Int("duplicates", 5, "concurrent submits per checkout")
	useGRPC := flag.Bool("grpc", false, "submit over gRPC instead of REST")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	ctx := context.Background()

	var submit func(ctx context.Context, key string) error
	if *useGRPC {
		conn, err := grpc.NewClient(cfg.GRPCTarget(), grpc.WithTransportCredentials(insecure.NewCredentials()))
		if err != nil {
			log.Fatalf("failed to connect grpc: %v", err)
		}
		defer conn.Close()
		submit = grpcSubmit(handler.NewOrderTrackingClient(conn))
	} else {
		submit = restSubmit(client.New(cfg.APIURL))
	}

	// Counters
	var successCount atomic.Int32
	var duplicateCount atomic.Int32
	var failCount atomic.Int32

	// Spawn concurrent requests
	var wg sync.WaitGroup
	start := time.Now()

	for i := 0; i < *checkouts; i++ {
		key := uuid.NewString()
		for j := 0; j < *duplicates; j++ {
			wg.Add(1)
			go func() {
				defer wg.Done()

				err := submit(ctx, key)
				switch {
				case err == nil:
					successCount.Add(1)
				case errors.Is(err, errDuplicate):
					duplicateCount.Add(1)
				default:
					failCount.Add(1)
					log.Printf("checkout %s: %v", key, err)
				}
			}()
		}
	}

	wg.Wait()
	elapsed := time.Since(start)

	// Results
	success := successCount.Load()
	dup := duplicateCount.Load()
	fail := failCount.Load()
	total := *checkouts * *duplicates

	fmt.Println("========== STRESS TEST RESULTS ==========")
	fmt.Printf("Checkouts:        %d\n", *checkouts)
	fmt.Printf("Total Requests:   %d\n", total)
	fmt.Printf("Placed:           %d\n", success)
	fmt.Printf("Duplicates:       %d\n", dup)
	fmt.Printf("Failed:           %d\n", fail)
	fmt.Printf("Duration:         %v\n", elapsed)
	fmt.Println("==========================================")

	// Assertions
	if success == int32(*checkouts) && dup == int32(total-*checkouts) {
		fmt.Printf("PASS: exactly one order per checkout (%d placed, %d rejected)\n", success, dup)
	} else {
		fmt.Printf("FAIL: expected %d placed/%d duplicates, got %d/%d (%d failed)\n",
			*checkouts, total-*checkouts, success, dup, fail)
	}
}

var errDuplicate = errors.New("duplicate checkout")

func order(key string) cart.OrderRequest {
	return cart.OrderRequest{
		CustomerInfo: cart.CustomerInfo{
			Name:     "Load Test",
			Email:    "load@example.com",
			Location: "Nowhere",
			Phone:    "0000000000",
		},
		Products:       "Stress Item (x1)",
		TotalAmount:    "1.00",
		IdempotencyKey: key,
	}
}

func restSubmit(c *client.Client) func(context.Context, string) error {
	return func(ctx context.Context, key string) error {
		_, err := c.PlaceOrder(ctx, order(key))
		if errors.Is(err, client.ErrConflict) {
			return errDuplicate
		}
		return err
	}
}

func grpcSubmit(c *handler.OrderTrackingClient) func(context.Context, string) error {
	return func(ctx context.Context, key string) error {
		o := order(key)
		resp, err := c.PlaceOrder(ctx, &handler.PlaceOrderRequest{
			RequestID:   key,
			Name:        o.Name,
			Email:       o.Email,
			Location:    o.Location,
			Phone:       o.Phone,
			Products:    o.Products,
			TotalAmount: o.TotalAmount,
		})
		if err != nil {
			return err
		}
		if !resp.Success {
			if resp.Message == service.ErrDuplicateRequest.Error() {
				return errDuplicate
			}
			return errors.New(resp.Message)
		}
		return nil
	}
}

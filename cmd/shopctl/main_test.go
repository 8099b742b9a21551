package main

import (
	"bufio"
	"bytes"
	"context"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rl1809/micro-shop/internal/config"
	"github.com/rl1809/micro-shop/internal/core/domain"
	"github.com/rl1809/micro-shop/internal/core/service"
	"github.com/rl1809/micro-shop/internal/shoptest"
)

func newCLI(t *testing.T, b *shoptest.Backend, token, input string) (*cli, *bytes.Buffer) {
	t.Helper()
	cfg, err := config.FromEnv(func(string) (string, bool) { return "", false })
	require.NoError(t, err)
	cfg.APIURL = b.APIURL()
	cfg.AdminToken = token

	var out bytes.Buffer
	return &cli{cfg: cfg, stdin: bufio.NewReader(strings.NewReader(input)), stdout: &out}, &out
}

func placeOrder(t *testing.T, b *shoptest.Backend) *domain.Transaction {
	t.Helper()
	tx, err := b.Orders.PlaceOrder(context.Background(), service.PlaceOrderInput{
		Name:        "Ann",
		Email:       "ann@example.com",
		Location:    "Hanoi",
		Phone:       "0123",
		Products:    "Mug (x1)",
		TotalAmount: "5.00",
	})
	require.NoError(t, err)
	return tx
}

func TestTrack(t *testing.T) {
	b := shoptest.NewBackend(t)
	tx := placeOrder(t, b)
	c, out := newCLI(t, b, "", "")

	require.NoError(t, c.run(context.Background(), []string{"track", tx.TrackingNumber}))
	assert.Contains(t, out.String(), "Total: 5.00")
	assert.Contains(t, out.String(), "-> Pending")
	assert.Contains(t, out.String(), "   Delivered")

	err := c.run(context.Background(), []string{"track", "bogus"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Failed to track order")
}

func TestVerify(t *testing.T) {
	b := shoptest.NewBackend(t)
	c, out := newCLI(t, b, "", "")

	require.NoError(t, c.run(context.Background(), []string{"verify", b.Token}))
	require.NoError(t, c.run(context.Background(), []string{"verify", "nope"}))
	assert.Equal(t, "valid\ninvalid: Invalid token\n", out.String())
}

func TestSetStatus_Confirmed(t *testing.T) {
	b := shoptest.NewBackend(t)
	tx := placeOrder(t, b)
	c, out := newCLI(t, b, b.Token, "y\n")

	id := strconv.FormatInt(tx.ID, 10)
	require.NoError(t, c.run(context.Background(), []string{"set-status", id, "shipped"}))
	assert.Contains(t, out.String(), "Change order "+id+" to Shipped? [y/N]")
	assert.Contains(t, out.String(), "is now Shipped")

	got, err := b.Orders.GetTransaction(context.Background(), tx.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusShipped, got.Status)
}

func TestSetStatus_DeclinedSendsNothing(t *testing.T) {
	b := shoptest.NewBackend(t)
	tx := placeOrder(t, b)
	c, out := newCLI(t, b, b.Token, "\n")

	require.NoError(t, c.run(context.Background(), []string{"set-status", strconv.FormatInt(tx.ID, 10), "delivered"}))
	assert.Contains(t, out.String(), "cancelled")

	got, err := b.Orders.GetTransaction(context.Background(), tx.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusPending, got.Status)
}

func TestSetStatus_Errors(t *testing.T) {
	b := shoptest.NewBackend(t)
	ctx := context.Background()

	c, _ := newCLI(t, b, "", "")
	assert.Error(t, c.run(ctx, []string{"set-status", "1", "shipped"}))

	c, _ = newCLI(t, b, "bad-token", "")
	err := c.run(ctx, []string{"set-status", "-yes", "1", "shipped"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid token")

	c, _ = newCLI(t, b, b.Token, "")
	assert.Error(t, c.run(ctx, []string{"set-status", "-yes", "1", "lost"}))
	assert.Error(t, c.run(ctx, []string{"set-status", "x", "shipped"}))
}

func TestOrders(t *testing.T) {
	b := shoptest.NewBackend(t)
	placeOrder(t, b)
	placeOrder(t, b)
	c, out := newCLI(t, b, b.Token, "")

	require.NoError(t, c.run(context.Background(), []string{"orders", "-search", "ann"}))
	assert.Contains(t, out.String(), "page 1 of 1 (2 orders)")
	assert.Equal(t, 2, strings.Count(out.String(), "Pending"))
}

func TestUsage(t *testing.T) {
	b := shoptest.NewBackend(t)
	c, _ := newCLI(t, b, "", "")
	assert.ErrorIs(t, c.run(context.Background(), nil), errUsage)
	assert.ErrorIs(t, c.run(context.Background(), []string{"explode"}), errUsage)
}

package storage

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rl1809/micro-shop/internal/core/domain"
	"github.com/rl1809/micro-shop/internal/port"
)

func TestMemoryAdapter_Products(t *testing.T) {
	m := NewMemoryAdapter()
	ctx := context.Background()

	p := domain.Product{Name: "Mug", Category: "Kitchen", Price: domain.MustMoney("3")}
	require.NoError(t, m.CreateProduct(ctx, &p))

	images := domain.NormalizePrimary([]domain.ProductImage{{URL: "a"}, {URL: "b"}}, 1)
	require.NoError(t, m.SaveProductImages(ctx, p.ID, images))
	assert.NotZero(t, images[0].ID)

	got, err := m.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	require.NotNil(t, got.PrimaryImage)
	assert.Equal(t, "b", got.PrimaryImage.URL)

	// Callers get copies.
	got.Images[0].URL = "changed"
	again, _ := m.GetProduct(ctx, p.ID)
	assert.Equal(t, "a", again.Images[0].URL)

	got.Name = "Cup"
	require.NoError(t, m.UpdateProduct(ctx, *got))
	list, _ := m.ListProducts(ctx)
	require.Len(t, list, 1)
	assert.Equal(t, "Cup", list[0].Name)
	assert.Len(t, list[0].Images, 2)

	require.NoError(t, m.DeleteProduct(ctx, p.ID))
	missing, err := m.GetProduct(ctx, p.ID)
	assert.NoError(t, err)
	assert.Nil(t, missing)
}

func TestMemoryAdapter_TransactionSearch(t *testing.T) {
	m := NewMemoryAdapter()
	ctx := context.Background()

	tn := uuid.NewString()
	ada := domain.Transaction{TrackingNumber: tn, Name: "Ada", Email: "ada@example.com", Status: domain.OrderStatusPending}
	bob := domain.Transaction{TrackingNumber: uuid.NewString(), Name: "Bob", Email: "bob@example.com", Status: domain.OrderStatusShipped}
	require.NoError(t, m.CreateTransaction(ctx, &ada))
	require.NoError(t, m.CreateTransaction(ctx, &bob))

	tests := []struct {
		filter port.TransactionFilter
		want   []string
	}{
		{port.TransactionFilter{}, []string{"Ada", "Bob"}},
		{port.TransactionFilter{Search: "BOB"}, []string{"Bob"}},
		{port.TransactionFilter{Search: strings.ToUpper(tn)}, []string{"Ada"}},
		{port.TransactionFilter{Search: tn[:8]}, nil},
		{port.TransactionFilter{Status: domain.OrderStatusShipped}, []string{"Bob"}},
	}
	for _, tt := range tests {
		txs, err := m.ListTransactions(ctx, tt.filter)
		require.NoError(t, err)
		var names []string
		for _, tx := range txs {
			names = append(names, tx.Name)
		}
		assert.Equal(t, tt.want, names, "%+v", tt.filter)
	}

	require.NoError(t, m.AttachPaymentProof(ctx, ada.ID, "/media/p.pdf", "p.pdf"))
	got, _ := m.GetTransactionByTrackingNumber(ctx, tn)
	assert.Equal(t, domain.OrderStatusPaymentUploaded, got.Status)
}

func TestMemoryAdapter_Idempotency(t *testing.T) {
	m := NewMemoryAdapter()
	ctx := context.Background()

	ok, _ := m.SetIdempotency(ctx, "k")
	assert.True(t, ok)
	ok, _ = m.SetIdempotency(ctx, "k")
	assert.False(t, ok)
	require.NoError(t, m.ReleaseIdempotency(ctx, "k"))
	ok, _ = m.SetIdempotency(ctx, "k")
	assert.True(t, ok)
}

package port

import (
	"context"

	"github.com/rl1809/micro-shop/internal/core/domain"
)

// Getters return (nil, nil) when the record does not exist.

type ProductRepository interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)

	// CreateProduct inserts the product and sets its ID
	CreateProduct(ctx context.Context, product *domain.Product) error

	UpdateProduct(ctx context.Context, product domain.Product) error

	// DeleteProduct removes the product and its image rows
	DeleteProduct(ctx context.Context, id int64) error

	// SaveProductImages writes the full gallery: images without an ID are
	// inserted (and get one), the rest have their primary flag updated
	SaveProductImages(ctx context.Context, productID int64, images []domain.ProductImage) error
}

type TransactionFilter struct {
	// Search matches name/email by substring and the whole tracking number, ignoring case
	Search string
	Status domain.OrderStatus
}

type TransactionRepository interface {
	// CreateTransaction inserts the order and sets its ID
	CreateTransaction(ctx context.Context, tx *domain.Transaction) error

	GetTransaction(ctx context.Context, id int64) (*domain.Transaction, error)
	GetTransactionByTrackingNumber(ctx context.Context, trackingNumber string) (*domain.Transaction, error)
	ListTransactions(ctx context.Context, filter TransactionFilter) ([]domain.Transaction, error)
	UpdateTransactionStatus(ctx context.Context, id int64, status domain.OrderStatus) error

	// AttachPaymentProof stores the proof reference and moves the order to payment_uploaded
	AttachPaymentProof(ctx context.Context, id int64, url, key string) error
}

type SettingsRepository interface {
	GetBankDetails(ctx context.Context) (*domain.BankDetails, error)

	// SaveBankDetails upserts the singleton and sets its ID
	SaveBankDetails(ctx context.Context, details *domain.BankDetails) error

	GetSiteSettings(ctx context.Context) (*domain.SiteSettings, error)

	// SaveSiteSettings upserts the singleton and sets its ID
	SaveSiteSettings(ctx context.Context, settings *domain.SiteSettings) error

	GetAdminToken(ctx context.Context, token string) (*domain.AdminToken, error)
	CreateAdminToken(ctx context.Context, token domain.AdminToken) error
}

package storage

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/rl1809/micro-shop/internal/core/domain"
	"github.com/rl1809/micro-shop/internal/port"
)

var (
	_ port.ProductRepository     = (*MemoryAdapter)(nil)
	_ port.TransactionRepository = (*MemoryAdapter)(nil)
	_ port.SettingsRepository    = (*MemoryAdapter)(nil)
	_ port.CacheRepository       = (*MemoryAdapter)(nil)
)

// MemoryAdapter keeps everything in process. It backs DB_DRIVER=memory for
// running without MySQL or Redis.
type MemoryAdapter struct {
	mu           sync.Mutex
	nextID       int64
	products     map[int64]domain.Product
	transactions map[int64]domain.Transaction
	bank         *domain.BankDetails
	site         *domain.SiteSettings
	tokens       map[string]domain.AdminToken
	keys         map[string]struct{}
}

func NewMemoryAdapter() *MemoryAdapter {
	return &MemoryAdapter{
		products:     make(map[int64]domain.Product),
		transactions: make(map[int64]domain.Transaction),
		tokens:       make(map[string]domain.AdminToken),
		keys:         make(map[string]struct{}),
	}
}

func (m *MemoryAdapter) id() int64 {
	m.nextID++
	return m.nextID
}

func sortedKeys[V any](items map[int64]V) []int64 {
	ids := make([]int64, 0, len(items))
	for id := range items {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

func copyProduct(p domain.Product) domain.Product {
	p.SetImages(slices.Clone(p.Images))
	return p
}

func (m *MemoryAdapter) ListProducts(ctx context.Context) ([]domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]domain.Product, 0, len(m.products))
	for _, id := range sortedKeys(m.products) {
		out = append(out, copyProduct(m.products[id]))
	}
	return out, nil
}

func (m *MemoryAdapter) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.products[id]
	if !ok {
		return nil, nil
	}
	p = copyProduct(p)
	return &p, nil
}

func (m *MemoryAdapter) CreateProduct(ctx context.Context, product *domain.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	product.ID = m.id()
	m.products[product.ID] = copyProduct(*product)
	return nil
}

func (m *MemoryAdapter) UpdateProduct(ctx context.Context, product domain.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.products[product.ID]
	if !ok {
		return nil
	}
	product.SetImages(existing.Images)
	m.products[product.ID] = product
	return nil
}

func (m *MemoryAdapter) DeleteProduct(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.products, id)
	return nil
}

func (m *MemoryAdapter) SaveProductImages(ctx context.Context, productID int64, images []domain.ProductImage) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range images {
		if images[i].ID == 0 {
			images[i].ID = m.id()
		}
		images[i].ProductID = productID
	}
	p, ok := m.products[productID]
	if !ok {
		return nil
	}
	p.SetImages(slices.Clone(images))
	m.products[productID] = p
	return nil
}

func (m *MemoryAdapter) CreateTransaction(ctx context.Context, tx *domain.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	tx.ID = m.id()
	m.transactions[tx.ID] = *tx
	return nil
}

func (m *MemoryAdapter) GetTransaction(ctx context.Context, id int64) (*domain.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	tx, ok := m.transactions[id]
	if !ok {
		return nil, nil
	}
	return &tx, nil
}

func (m *MemoryAdapter) GetTransactionByTrackingNumber(ctx context.Context, trackingNumber string) (*domain.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, tx := range m.transactions {
		if tx.TrackingNumber == trackingNumber {
			return &tx, nil
		}
	}
	return nil, nil
}

func (m *MemoryAdapter) ListTransactions(ctx context.Context, filter port.TransactionFilter) ([]domain.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	search := strings.ToLower(filter.Search)
	out := []domain.Transaction{}
	for _, id := range sortedKeys(m.transactions) {
		tx := m.transactions[id]
		if filter.Status != "" && tx.Status != filter.Status {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(tx.Name), search) &&
			!strings.Contains(strings.ToLower(tx.Email), search) &&
			strings.ToLower(tx.TrackingNumber) != search {
			continue
		}
		out = append(out, tx)
	}
	return out, nil
}

func (m *MemoryAdapter) UpdateTransactionStatus(ctx context.Context, id int64, status domain.OrderStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if tx, ok := m.transactions[id]; ok {
		tx.Status = status
		m.transactions[id] = tx
	}
	return nil
}

func (m *MemoryAdapter) AttachPaymentProof(ctx context.Context, id int64, url, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if tx, ok := m.transactions[id]; ok {
		tx.PaymentProof = &url
		tx.PaymentProofKey = key
		tx.Status = domain.OrderStatusPaymentUploaded
		m.transactions[id] = tx
	}
	return nil
}

func (m *MemoryAdapter) GetBankDetails(ctx context.Context) (*domain.BankDetails, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.bank == nil {
		return nil, nil
	}
	d := *m.bank
	return &d, nil
}

func (m *MemoryAdapter) SaveBankDetails(ctx context.Context, details *domain.BankDetails) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if details.ID == 0 {
		details.ID = m.id()
	}
	d := *details
	m.bank = &d
	return nil
}

func (m *MemoryAdapter) GetSiteSettings(ctx context.Context) (*domain.SiteSettings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.site == nil {
		return nil, nil
	}
	s := *m.site
	return &s, nil
}

func (m *MemoryAdapter) SaveSiteSettings(ctx context.Context, settings *domain.SiteSettings) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if settings.ID == 0 {
		settings.ID = m.id()
	}
	s := *settings
	m.site = &s
	return nil
}

func (m *MemoryAdapter) GetAdminToken(ctx context.Context, token string) (*domain.AdminToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.tokens[token]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

func (m *MemoryAdapter) CreateAdminToken(ctx context.Context, token domain.AdminToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.tokens[token.Token] = token
	return nil
}

func (m *MemoryAdapter) SetIdempotency(ctx context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.keys[key]; ok {
		return false, nil
	}
	m.keys[key] = struct{}{}
	return true, nil
}

func (m *MemoryAdapter) ReleaseIdempotency(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.keys, key)
	return nil
}

// The catalog is always read straight from the product map.

func (m *MemoryAdapter) GetCatalog(ctx context.Context) ([]domain.Product, bool, error) {
	return nil, false, nil
}

func (m *MemoryAdapter) SetCatalog(ctx context.Context, products []domain.Product) error {
	return nil
}

func (m *MemoryAdapter) InvalidateCatalog(ctx context.Context) error {
	return nil
}

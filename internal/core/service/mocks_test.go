package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"

	"github.com/rl1809/micro-shop/internal/core/domain"
	"github.com/rl1809/micro-shop/internal/port"
)

// Mock CacheRepository
type mockCacheRepo struct {
	mu             sync.Mutex
	idempotencySet map[string]bool
	catalog        []domain.Product
	catalogSet     bool
	invalidations  int
	getErr         error
}

func newMockCacheRepo() *mockCacheRepo {
	return &mockCacheRepo{idempotencySet: make(map[string]bool)}
}

func (m *mockCacheRepo) SetIdempotency(ctx context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.idempotencySet[key] {
		return false, nil
	}
	m.idempotencySet[key] = true
	return true, nil
}

func (m *mockCacheRepo) ReleaseIdempotency(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.idempotencySet, key)
	return nil
}

func (m *mockCacheRepo) GetCatalog(ctx context.Context) ([]domain.Product, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, false, m.getErr
	}
	return m.catalog, m.catalogSet, nil
}

func (m *mockCacheRepo) SetCatalog(ctx context.Context, products []domain.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.catalog = products
	m.catalogSet = true
	return nil
}

func (m *mockCacheRepo) InvalidateCatalog(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.catalog = nil
	m.catalogSet = false
	m.invalidations++
	return nil
}

// Mock FileStore
type mockFileStore struct {
	mu      sync.Mutex
	files   map[string]string
	failOn  string
	deleted []string
}

func newMockFileStore() *mockFileStore {
	return &mockFileStore{files: make(map[string]string)}
}

func (m *mockFileStore) Save(ctx context.Context, folder, filename string, r io.Reader) (port.StoredFile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, err := io.ReadAll(r)
	if err != nil {
		return port.StoredFile{}, err
	}
	if m.failOn != "" && strings.Contains(string(data), m.failOn) {
		return port.StoredFile{}, errors.New("disk full")
	}
	key := folder + "/" + filename
	m.files[key] = string(data)
	return port.StoredFile{URL: "/media/" + key, Key: key}, nil
}

func (m *mockFileStore) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.files, key)
	m.deleted = append(m.deleted, key)
	return nil
}

// Mock repositories, all in memory
type mockRepo struct {
	mu           sync.Mutex
	nextID       int64
	products     map[int64]domain.Product
	transactions map[int64]domain.Transaction
	bank         *domain.BankDetails
	site         *domain.SiteSettings
	tokens       map[string]domain.AdminToken
	createErr    error
	productLists int
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		products:     make(map[int64]domain.Product),
		transactions: make(map[int64]domain.Transaction),
		tokens:       make(map[string]domain.AdminToken),
	}
}

func (m *mockRepo) id() int64 {
	m.nextID++
	return m.nextID
}

func (m *mockRepo) ListProducts(ctx context.Context) ([]domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.productLists++
	out := make([]domain.Product, 0, len(m.products))
	for id := int64(1); id <= m.nextID; id++ {
		if p, ok := m.products[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockRepo) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return nil, nil
	}
	p.Images = append([]domain.ProductImage(nil), p.Images...)
	return &p, nil
}

func (m *mockRepo) CreateProduct(ctx context.Context, product *domain.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	product.ID = m.id()
	m.products[product.ID] = *product
	return nil
}

func (m *mockRepo) UpdateProduct(ctx context.Context, product domain.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing := m.products[product.ID]
	product.Images = existing.Images
	product.PrimaryImage = existing.PrimaryImage
	m.products[product.ID] = product
	return nil
}

func (m *mockRepo) DeleteProduct(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.products, id)
	return nil
}

func (m *mockRepo) SaveProductImages(ctx context.Context, productID int64, images []domain.ProductImage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range images {
		if images[i].ID == 0 {
			images[i].ID = m.id()
		}
		images[i].ProductID = productID
	}
	p := m.products[productID]
	p.SetImages(append([]domain.ProductImage(nil), images...))
	m.products[productID] = p
	return nil
}

func (m *mockRepo) CreateTransaction(ctx context.Context, tx *domain.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	tx.ID = m.id()
	m.transactions[tx.ID] = *tx
	return nil
}

func (m *mockRepo) GetTransaction(ctx context.Context, id int64) (*domain.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tx, ok := m.transactions[id]
	if !ok {
		return nil, nil
	}
	return &tx, nil
}

func (m *mockRepo) GetTransactionByTrackingNumber(ctx context.Context, trackingNumber string) (*domain.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, tx := range m.transactions {
		if tx.TrackingNumber == trackingNumber {
			return &tx, nil
		}
	}
	return nil, nil
}

func (m *mockRepo) ListTransactions(ctx context.Context, filter port.TransactionFilter) ([]domain.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Transaction
	for id := int64(1); id <= m.nextID; id++ {
		tx, ok := m.transactions[id]
		if !ok {
			continue
		}
		if filter.Status != "" && tx.Status != filter.Status {
			continue
		}
		if filter.Search != "" &&
			!strings.Contains(strings.ToLower(tx.Name), strings.ToLower(filter.Search)) &&
			!strings.Contains(strings.ToLower(tx.Email), strings.ToLower(filter.Search)) &&
			!strings.EqualFold(tx.TrackingNumber, filter.Search) {
			continue
		}
		out = append(out, tx)
	}
	return out, nil
}

func (m *mockRepo) UpdateTransactionStatus(ctx context.Context, id int64, status domain.OrderStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	tx := m.transactions[id]
	tx.Status = status
	m.transactions[id] = tx
	return nil
}

func (m *mockRepo) AttachPaymentProof(ctx context.Context, id int64, url, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	tx := m.transactions[id]
	tx.PaymentProof = &url
	tx.PaymentProofKey = key
	tx.Status = domain.OrderStatusPaymentUploaded
	m.transactions[id] = tx
	return nil
}

func (m *mockRepo) GetBankDetails(ctx context.Context) (*domain.BankDetails, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.bank == nil {
		return nil, nil
	}
	b := *m.bank
	return &b, nil
}

func (m *mockRepo) SaveBankDetails(ctx context.Context, details *domain.BankDetails) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if details.ID == 0 {
		details.ID = m.id()
	}
	b := *details
	m.bank = &b
	return nil
}

func (m *mockRepo) GetSiteSettings(ctx context.Context) (*domain.SiteSettings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.site == nil {
		return nil, nil
	}
	s := *m.site
	return &s, nil
}

func (m *mockRepo) SaveSiteSettings(ctx context.Context, settings *domain.SiteSettings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if settings.ID == 0 {
		settings.ID = m.id()
	}
	s := *settings
	m.site = &s
	return nil
}

func (m *mockRepo) GetAdminToken(ctx context.Context, token string) (*domain.AdminToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tokens[token]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

func (m *mockRepo) CreateAdminToken(ctx context.Context, token domain.AdminToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[token.Token] = token
	return nil
}

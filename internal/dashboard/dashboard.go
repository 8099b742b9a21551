// Package dashboard is the admin view model: token login, product and order
// management, and the shop settings. Like the storefront it has one owner
// and is not safe for concurrent use.
package dashboard

import (
	"context"
	"errors"

	"github.com/rl1809/micro-shop/internal/client"
	"github.com/rl1809/micro-shop/internal/core/catalog"
	"github.com/rl1809/micro-shop/internal/core/domain"
	"github.com/rl1809/micro-shop/internal/core/service"
	"github.com/rl1809/micro-shop/internal/storefront"
)

var (
	ErrLoginRejected = errors.New("admin token rejected")
	ErrNotLoggedIn   = errors.New("not logged in")
)

type Message = storefront.Message

// API is the part of the backend the dashboard calls.
type API interface {
	SetToken(token string)
	VerifyAdmin(ctx context.Context, token string) (bool, string, error)

	ListProducts(ctx context.Context) ([]domain.Product, error)
	CreateProduct(ctx context.Context, in client.ProductForm) (*domain.Product, error)
	UpdateProduct(ctx context.Context, id int64, patch service.ProductPatch) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id int64) error
	UploadProductImages(ctx context.Context, id int64, images []client.File, primary int) (*domain.Product, error)

	ListTransactions(ctx context.Context, search, status string) ([]domain.Transaction, error)
	UpdateTransactionStatus(ctx context.Context, id int64, status domain.OrderStatus) (*domain.Transaction, error)

	BankDetails(ctx context.Context) (*domain.BankDetails, error)
	SaveBankDetails(ctx context.Context, details domain.BankDetails) (*domain.BankDetails, error)
	SiteSettings(ctx context.Context) (*client.SiteSettings, error)
	UpdateSiteSettings(ctx context.Context, patch service.SiteSettingsPatch) (*client.SiteSettings, error)
}

var _ API = (*client.Client)(nil)

type Dashboard struct {
	api      API
	loggedIn bool
	message  *Message

	products     *catalog.Browser[domain.Product]
	transactions *catalog.Browser[domain.Transaction]
	status       string
	update       *StatusUpdate

	bank     *domain.BankDetails
	settings *client.SiteSettings
}

func New(api API) *Dashboard {
	d := &Dashboard{
		api:      api,
		products: catalog.NewProductBrowser(catalog.DashboardPageSize),
		status:   catalog.StatusAll,
	}
	d.transactions = catalog.NewBrowser(catalog.DashboardPageSize, func(tx domain.Transaction, term string) bool {
		return catalog.MatchTransaction(tx, term, d.status)
	})
	d.update = &StatusUpdate{api: api, refresh: d.LoadTransactions}
	return d
}

func (d *Dashboard) fail(content string, err error) error {
	d.message = &Message{Type: storefront.MessageError, Content: content}
	return err
}

func (d *Dashboard) Message() *Message {
	return d.message
}

func (d *Dashboard) DismissMessage() {
	d.message = nil
}

// Login checks token with the backend and, when it is accepted, sends it
// with every later request. A rejected token leaves the dashboard locked
// and the backend's reason in the message.
func (d *Dashboard) Login(ctx context.Context, token string) error {
	valid, reason, err := d.api.VerifyAdmin(ctx, token)
	if err != nil {
		return d.fail("Invalid token", err)
	}
	if !valid {
		return d.fail(reason, ErrLoginRejected)
	}
	d.api.SetToken(token)
	d.loggedIn = true
	d.message = nil
	return nil
}

func (d *Dashboard) Logout() {
	d.api.SetToken("")
	d.loggedIn = false
}

func (d *Dashboard) LoggedIn() bool {
	return d.loggedIn
}

func (d *Dashboard) requireLogin() error {
	if !d.loggedIn {
		return ErrNotLoggedIn
	}
	return nil
}

func (d *Dashboard) LoadProducts(ctx context.Context) error {
	if err := d.requireLogin(); err != nil {
		return err
	}
	products, err := d.api.ListProducts(ctx)
	if err != nil {
		return d.fail("Failed to fetch products.", err)
	}
	d.products.SetItems(products)
	return nil
}

func (d *Dashboard) SearchProducts(term string) {
	d.products.SetTerm(term)
}

func (d *Dashboard) SetProductsPage(page int) {
	d.products.SetPage(page)
}

func (d *Dashboard) ProductsPage() catalog.Page[domain.Product] {
	return d.products.Current()
}

// CreateProduct adds a product and reloads the list.
func (d *Dashboard) CreateProduct(ctx context.Context, in client.ProductForm) (*domain.Product, error) {
	if err := d.requireLogin(); err != nil {
		return nil, err
	}
	p, err := d.api.CreateProduct(ctx, in)
	if err != nil {
		return nil, d.fail("Failed to add product.", err)
	}
	return p, d.LoadProducts(ctx)
}

func (d *Dashboard) UpdateProduct(ctx context.Context, id int64, patch service.ProductPatch) (*domain.Product, error) {
	if err := d.requireLogin(); err != nil {
		return nil, err
	}
	p, err := d.api.UpdateProduct(ctx, id, patch)
	if err != nil {
		return nil, d.fail("Failed to update product.", err)
	}
	return p, d.LoadProducts(ctx)
}

// DeleteProduct removes a product. Callers confirm with the admin first.
func (d *Dashboard) DeleteProduct(ctx context.Context, id int64) error {
	if err := d.requireLogin(); err != nil {
		return err
	}
	if err := d.api.DeleteProduct(ctx, id); err != nil {
		return d.fail("Failed to delete product.", err)
	}
	return d.LoadProducts(ctx)
}

func (d *Dashboard) UploadProductImages(ctx context.Context, id int64, images []client.File, primary int) (*domain.Product, error) {
	if err := d.requireLogin(); err != nil {
		return nil, err
	}
	p, err := d.api.UploadProductImages(ctx, id, images, primary)
	if err != nil {
		return nil, d.fail("Failed to upload images.", err)
	}
	return p, d.LoadProducts(ctx)
}

// LoadBankDetails returns nil when no account has been set up yet.
func (d *Dashboard) LoadBankDetails(ctx context.Context) (*domain.BankDetails, error) {
	if err := d.requireLogin(); err != nil {
		return nil, err
	}
	bank, err := d.api.BankDetails(ctx)
	if err != nil {
		return nil, d.fail("Failed to fetch bank details.", err)
	}
	d.bank = bank
	return bank, nil
}

func (d *Dashboard) SaveBankDetails(ctx context.Context, details domain.BankDetails) (*domain.BankDetails, error) {
	if err := d.requireLogin(); err != nil {
		return nil, err
	}
	if d.bank != nil && details.ID == 0 {
		details.ID = d.bank.ID
	}
	saved, err := d.api.SaveBankDetails(ctx, details)
	if err != nil {
		return nil, d.fail("Failed to save bank details.", err)
	}
	d.bank = saved
	return saved, nil
}

func (d *Dashboard) LoadSiteSettings(ctx context.Context) (*client.SiteSettings, error) {
	if err := d.requireLogin(); err != nil {
		return nil, err
	}
	s, err := d.api.SiteSettings(ctx)
	if err != nil {
		return nil, d.fail("Failed to fetch site settings.", err)
	}
	d.settings = s
	return s, nil
}

func (d *Dashboard) UpdateSiteSettings(ctx context.Context, patch service.SiteSettingsPatch) (*client.SiteSettings, error) {
	if err := d.requireLogin(); err != nil {
		return nil, err
	}
	s, err := d.api.UpdateSiteSettings(ctx, patch)
	if err != nil {
		return nil, d.fail("Failed to update site settings.", err)
	}
	d.settings = s
	return s, nil
}

// Settings is the last loaded or saved site settings record.
func (d *Dashboard) Settings() *client.SiteSettings {
	return d.settings
}

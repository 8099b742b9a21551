// Package storefront is the shopper-facing view model: catalog browsing,
// cart and checkout, order tracking and payment proof upload. Failures are
// surfaced as a dismissible Message rather than aborting the page.
//
// A Storefront belongs to one shopper and is not safe for concurrent use.
package storefront

import (
	"context"
	"errors"
	"math/rand"
	"slices"
	"strings"
	"time"

	"github.com/rl1809/micro-shop/internal/client"
	"github.com/rl1809/micro-shop/internal/core/cart"
	"github.com/rl1809/micro-shop/internal/core/catalog"
	"github.com/rl1809/micro-shop/internal/core/domain"
)

var ErrProofIncomplete = errors.New("tracking number and payment proof are required")

type MessageType string

const (
	MessageError   MessageType = "error"
	MessageSuccess MessageType = "success"
	MessageInfo    MessageType = "info"
)

type Message struct {
	Type    MessageType `json:"type"`
	Content string      `json:"content"`
}

const (
	msgProductsFailed = "Failed to fetch products. Please try again later."
	msgBankFailed     = "Failed to fetch bank details. Please try again later."
	msgSettingsFailed = "Failed to fetch site settings. Using default values."
	msgProductFailed  = "Failed to fetch product details. Please try again."
	msgOrderPlaced    = "Order placed successfully!"
	msgCheckoutFailed = "Failed to process checkout. Please try again."
	msgTrackFailed    = "Failed to track order. Please check your tracking number and try again."
	msgProofMissing   = "Please provide both tracking number and payment proof file."
	msgProofUploaded  = "Payment proof uploaded successfully!"
	msgProofFailed    = "Failed to upload payment proof. Please try again."
	msgCartEmpty      = "Your cart is empty."
)

// API is the part of the backend the storefront calls.
type API interface {
	cart.OrderPlacer
	ListProducts(ctx context.Context) ([]domain.Product, error)
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)
	BankDetails(ctx context.Context) (*domain.BankDetails, error)
	SiteSettings(ctx context.Context) (*client.SiteSettings, error)
	TrackOrder(ctx context.Context, trackingNumber string) (*domain.Transaction, error)
	UploadPaymentProof(ctx context.Context, trackingNumber string, proof client.File) error
}

var _ API = (*client.Client)(nil)

// TrackedOrder is a tracking lookup result laid out on the order timeline.
type TrackedOrder struct {
	Transaction domain.Transaction
	Timeline    domain.Timeline
}

type Storefront struct {
	api      API
	rng      *rand.Rand
	products []domain.Product
	browser  *catalog.Browser[domain.Product]
	featured *catalog.Carousel
	session  *cart.Session
	settings domain.SiteSettings
	bank     *domain.BankDetails
	selected *domain.Product
	tracked  *TrackedOrder
	message  *Message
}

// New builds a storefront over api. rng drives the featured selection; nil
// seeds one from the clock.
func New(api API, rng *rand.Rand) *Storefront {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Storefront{
		api:      api,
		rng:      rng,
		browser:  catalog.NewProductBrowser(catalog.StorefrontPageSize),
		featured: catalog.NewCarousel(nil),
		session:  cart.NewSession(nil),
		settings: domain.DefaultSiteSettings(),
	}
}

func (s *Storefront) fail(content string, err error) error {
	s.message = &Message{Type: MessageError, Content: content}
	return err
}

func (s *Storefront) succeed(content string) {
	s.message = &Message{Type: MessageSuccess, Content: content}
}

// Load fetches everything the landing page shows. Each fetch fails on its
// own; the first error is returned and the last failure is the message.
func (s *Storefront) Load(ctx context.Context) error {
	var first error
	for _, load := range []func(context.Context) error{s.LoadCatalog, s.LoadBankDetails, s.LoadSettings} {
		if err := load(ctx); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// LoadCatalog fetches the full product list and picks a new set of featured
// products from it.
func (s *Storefront) LoadCatalog(ctx context.Context) error {
	s.message = nil
	products, err := s.api.ListProducts(ctx)
	if err != nil {
		return s.fail(msgProductsFailed, err)
	}
	s.setProducts(products)
	s.featured = catalog.NewCarousel(catalog.PickFeatured(products, s.rng))
	return nil
}

func (s *Storefront) setProducts(products []domain.Product) {
	s.products = products
	s.browser.SetItems(products)
}

func (s *Storefront) LoadBankDetails(ctx context.Context) error {
	bank, err := s.api.BankDetails(ctx)
	if err != nil {
		return s.fail(msgBankFailed, err)
	}
	s.bank = bank
	return nil
}

// LoadSettings keeps the defaults when the fetch fails.
func (s *Storefront) LoadSettings(ctx context.Context) error {
	settings, err := s.api.SiteSettings(ctx)
	if err != nil {
		return s.fail(msgSettingsFailed, err)
	}
	s.settings = settings.SiteSettings
	return nil
}

func (s *Storefront) Products() []domain.Product {
	return s.products
}

func (s *Storefront) Featured() *catalog.Carousel {
	return s.featured
}

// Search filters the grid and returns to its first page.
func (s *Storefront) Search(term string) {
	s.browser.SetTerm(term)
}

func (s *Storefront) SetPage(page int) {
	s.browser.SetPage(page)
}

// Page is the current grid page after filtering.
func (s *Storefront) Page() catalog.Page[domain.Product] {
	return s.browser.Current()
}

// OpenProduct selects a product for the detail view, as when the page is
// opened with a product id. A product already in the loaded list is used as
// is; otherwise it is fetched and added to the list.
func (s *Storefront) OpenProduct(ctx context.Context, id int64) (*domain.Product, error) {
	for i := range s.products {
		if s.products[i].ID == id {
			p := s.products[i]
			s.selected = &p
			return s.selected, nil
		}
	}

	p, err := s.api.GetProduct(ctx, id)
	if err != nil {
		return nil, s.fail(msgProductFailed, err)
	}
	s.setProducts(append(slices.Clone(s.products), *p))
	s.selected = p
	return p, nil
}

func (s *Storefront) CloseProduct() {
	s.selected = nil
}

func (s *Storefront) Selected() *domain.Product {
	return s.selected
}

func (s *Storefront) Cart() *cart.Session {
	return s.session
}

// AddToCart adds qty of p; qty below 1 adds one.
func (s *Storefront) AddToCart(p domain.Product, qty int) {
	s.session.Add(cart.Snapshot(p), qty)
}

func (s *Storefront) BeginCheckout() error {
	if err := s.session.BeginCheckout(); err != nil {
		return s.fail(msgCartEmpty, err)
	}
	return nil
}

// Checkout submits the open checkout form. On failure the cart and the form
// stay as they were so the shopper can try again.
func (s *Storefront) Checkout(ctx context.Context, info cart.CustomerInfo) (string, error) {
	tracking, err := s.session.Submit(ctx, s.api, info)
	if err != nil {
		return "", s.fail(msgCheckoutFailed, err)
	}
	s.succeed(msgOrderPlaced)
	return tracking, nil
}

// TrackOrder issues one lookup. Refreshing means calling it again.
func (s *Storefront) TrackOrder(ctx context.Context, trackingNumber string) (*TrackedOrder, error) {
	tx, err := s.api.TrackOrder(ctx, strings.TrimSpace(trackingNumber))
	if err != nil {
		s.tracked = nil
		return nil, s.fail(msgTrackFailed, err)
	}
	s.tracked = &TrackedOrder{Transaction: *tx, Timeline: domain.NewTimeline(tx.Status)}
	return s.tracked, nil
}

func (s *Storefront) Tracked() *TrackedOrder {
	return s.tracked
}

// UploadProof sends a payment proof for the order. Both the number and the
// file are required before any request is made.
func (s *Storefront) UploadProof(ctx context.Context, trackingNumber string, proof *client.File) error {
	trackingNumber = strings.TrimSpace(trackingNumber)
	if trackingNumber == "" || proof == nil || proof.Content == nil {
		return s.fail(msgProofMissing, ErrProofIncomplete)
	}
	if err := s.api.UploadPaymentProof(ctx, trackingNumber, *proof); err != nil {
		return s.fail(msgProofFailed, err)
	}
	s.succeed(msgProofUploaded)
	return nil
}

func (s *Storefront) Settings() domain.SiteSettings {
	return s.settings
}

func (s *Storefront) Theme() domain.Theme {
	return s.settings.Theme()
}

// BankDetails is nil until loaded or when the shop has none configured.
func (s *Storefront) BankDetails() *domain.BankDetails {
	return s.bank
}

func (s *Storefront) Message() *Message {
	return s.message
}

func (s *Storefront) DismissMessage() {
	s.message = nil
}

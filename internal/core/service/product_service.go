package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/rl1809/micro-shop/internal/core/domain"
	"github.com/rl1809/micro-shop/internal/port"
)

const productImageFolder = "products"

// Upload is one file received from a multipart form.
type Upload struct {
	Filename string
	Content  io.Reader
}

type ProductInput struct {
	Name        string       `json:"name"`
	Category    string       `json:"category"`
	Description string       `json:"description"`
	Price       domain.Money `json:"price"`
	Quantity    int          `json:"quantity"`
}

// ProductPatch carries only the fields an admin edited.
type ProductPatch struct {
	Name        *string       `json:"name"`
	Category    *string       `json:"category"`
	Description *string       `json:"description"`
	Price       *domain.Money `json:"price"`
	Quantity    *int          `json:"quantity"`
}

// Input turns the patch into a create request; missing fields stay zero.
func (p ProductPatch) Input() ProductInput {
	var in ProductInput
	if p.Name != nil {
		in.Name = *p.Name
	}
	if p.Category != nil {
		in.Category = *p.Category
	}
	if p.Description != nil {
		in.Description = *p.Description
	}
	if p.Price != nil {
		in.Price = *p.Price
	}
	if p.Quantity != nil {
		in.Quantity = *p.Quantity
	}
	return in
}

func (p ProductPatch) apply(product *domain.Product) {
	if p.Name != nil {
		product.Name = *p.Name
	}
	if p.Category != nil {
		product.Category = *p.Category
	}
	if p.Description != nil {
		product.Description = *p.Description
	}
	if p.Price != nil {
		product.Price = *p.Price
	}
	if p.Quantity != nil {
		product.Quantity = *p.Quantity
	}
}

type ProductService struct {
	repo  port.ProductRepository
	cache port.CacheRepository
	files port.FileStore
}

func NewProductService(repo port.ProductRepository, cache port.CacheRepository, files port.FileStore) *ProductService {
	return &ProductService{repo: repo, cache: cache, files: files}
}

// ListProducts serves the catalog from cache, falling back to the database
// and repopulating the cache on a miss.
func (s *ProductService) ListProducts(ctx context.Context) ([]domain.Product, error) {
	products, ok, err := s.cache.GetCatalog(ctx)
	if err != nil {
		log.Printf("catalog cache read failed, falling back to db: %v", err)
	}
	if ok {
		return products, nil
	}

	products, err = s.repo.ListProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	if err := s.cache.SetCatalog(ctx, products); err != nil {
		log.Printf("populate catalog cache: %v", err)
	}
	return products, nil
}

func (s *ProductService) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	p, err := s.repo.GetProduct(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	if p == nil {
		return nil, ErrNotFound
	}
	return p, nil
}

// CreateProduct stores the product with an optional gallery. primary picks
// the primary image among uploads; out of range means the first one.
func (s *ProductService) CreateProduct(ctx context.Context, in ProductInput, uploads []Upload, primary int) (*domain.Product, error) {
	product := domain.Product{
		Name:        strings.TrimSpace(in.Name),
		Category:    strings.TrimSpace(in.Category),
		Description: in.Description,
		Price:       in.Price,
		Quantity:    in.Quantity,
	}
	if err := product.Validate(); err != nil {
		return nil, errors.Join(ErrInvalidInput, err)
	}

	images, err := s.storeImages(ctx, uploads)
	if err != nil {
		return nil, err
	}

	if err := s.repo.CreateProduct(ctx, &product); err != nil {
		s.discard(ctx, images)
		return nil, fmt.Errorf("create product: %w", err)
	}

	if len(images) > 0 {
		images = domain.NormalizePrimary(images, primary)
		if err := s.repo.SaveProductImages(ctx, product.ID, images); err != nil {
			s.discard(ctx, images)
			return nil, fmt.Errorf("product %d created but saving images failed: %w", product.ID, err)
		}
	}
	product.SetImages(images)

	s.invalidate(ctx)
	return &product, nil
}

func (s *ProductService) UpdateProduct(ctx context.Context, id int64, patch ProductPatch) (*domain.Product, error) {
	product, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	patch.apply(product)
	if err := product.Validate(); err != nil {
		return nil, errors.Join(ErrInvalidInput, err)
	}

	if err := s.repo.UpdateProduct(ctx, *product); err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}

	s.invalidate(ctx)
	return product, nil
}

func (s *ProductService) DeleteProduct(ctx context.Context, id int64) error {
	product, err := s.GetProduct(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.DeleteProduct(ctx, id); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	s.discard(ctx, product.Images)

	s.invalidate(ctx)
	return nil
}

// UploadImages appends uploads to the product gallery. primary indexes into
// uploads; a negative value keeps the current primary image.
func (s *ProductService) UploadImages(ctx context.Context, id int64, uploads []Upload, primary int) (*domain.Product, error) {
	if len(uploads) == 0 {
		return nil, fmt.Errorf("%w: no images uploaded", ErrInvalidInput)
	}

	product, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	added, err := s.storeImages(ctx, uploads)
	if err != nil {
		return nil, err
	}

	preferred := -1
	if primary >= 0 && primary < len(added) {
		preferred = len(product.Images) + primary
	}
	gallery := domain.NormalizePrimary(append(product.Images, added...), preferred)

	if err := s.repo.SaveProductImages(ctx, id, gallery); err != nil {
		s.discard(ctx, added)
		return nil, fmt.Errorf("save images: %w", err)
	}
	product.SetImages(gallery)

	s.invalidate(ctx)
	return product, nil
}

func (s *ProductService) storeImages(ctx context.Context, uploads []Upload) ([]domain.ProductImage, error) {
	images := make([]domain.ProductImage, 0, len(uploads))
	for _, up := range uploads {
		name := uuid.NewString() + strings.ToLower(filepath.Ext(up.Filename))
		stored, err := s.files.Save(ctx, productImageFolder, name, up.Content)
		if err != nil {
			s.discard(ctx, images)
			return nil, fmt.Errorf("store image %s: %w", up.Filename, err)
		}
		images = append(images, domain.ProductImage{
			URL:        stored.URL,
			StorageKey: stored.Key,
			CreatedAt:  time.Now().UTC(),
		})
	}
	return images, nil
}

func (s *ProductService) discard(ctx context.Context, images []domain.ProductImage) {
	for _, img := range images {
		if img.StorageKey == "" {
			continue
		}
		if err := s.files.Delete(ctx, img.StorageKey); err != nil {
			log.Printf("delete image %s: %v", img.StorageKey, err)
		}
	}
}

func (s *ProductService) invalidate(ctx context.Context) {
	if err := s.cache.InvalidateCatalog(ctx); err != nil {
		log.Printf("invalidate catalog cache: %v", err)
	}
}

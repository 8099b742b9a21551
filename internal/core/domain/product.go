package domain

import (
	"errors"
	"fmt"
	"time"
)

var ErrInvalidProduct = errors.New("invalid product")

type Product struct {
	ID           int64          `json:"id"`
	Name         string         `json:"name"`
	Category     string         `json:"category"`
	Description  string         `json:"description"`
	Price        Money          `json:"price"`
	Quantity     int            `json:"quantity"`
	Images       []ProductImage `json:"images"`
	PrimaryImage *ProductImage  `json:"primary_image"`
}

type ProductImage struct {
	ID         int64     `json:"id"`
	ProductID  int64     `json:"-"`
	URL        string    `json:"image"`
	StorageKey string    `json:"-"`
	IsPrimary  bool      `json:"is_primary"`
	CreatedAt  time.Time `json:"created_at"`
}

func (p *Product) Validate() error {
	switch {
	case p.Name == "":
		return errors.Join(ErrInvalidProduct, errors.New("name is required"))
	case p.Category == "":
		return errors.Join(ErrInvalidProduct, errors.New("category is required"))
	case p.Price.IsNegative():
		return errors.Join(ErrInvalidProduct, errors.New("price must not be negative"))
	case p.Quantity < 0:
		return errors.Join(ErrInvalidProduct, errors.New("quantity must not be negative"))
	}
	if err := p.Price.CheckRange(); err != nil {
		return errors.Join(ErrInvalidProduct, fmt.Errorf("price: %w", err))
	}
	return nil
}

// InStock reports whether the storefront may offer the product for sale.
func (p *Product) InStock() bool {
	return p.Quantity > 0
}

// SetImages replaces the gallery and refreshes PrimaryImage.
func (p *Product) SetImages(images []ProductImage) {
	p.Images = images
	p.PrimaryImage = nil
	for i := range p.Images {
		if p.Images[i].IsPrimary {
			img := p.Images[i]
			p.PrimaryImage = &img
			return
		}
	}
}

// NormalizePrimary flags exactly one image as primary. preferred is an index
// into images; when it is out of range the existing primary is kept, or the
// first image is promoted if there is none.
func NormalizePrimary(images []ProductImage, preferred int) []ProductImage {
	if len(images) == 0 {
		return images
	}

	chosen := -1
	if preferred >= 0 && preferred < len(images) {
		chosen = preferred
	} else {
		for i, img := range images {
			if img.IsPrimary {
				chosen = i
				break
			}
		}
	}
	if chosen < 0 {
		chosen = 0
	}

	for i := range images {
		images[i].IsPrimary = i == chosen
	}
	return images
}

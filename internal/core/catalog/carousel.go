package catalog

import (
	"math/rand"

	"github.com/rl1809/micro-shop/internal/core/domain"
)

// Carousel rotates through featured products with wraparound.
type Carousel struct {
	items []domain.Product
	pos   int
}

func NewCarousel(items []domain.Product) *Carousel {
	return &Carousel{items: items}
}

func (c *Carousel) Len() int {
	return len(c.items)
}

func (c *Carousel) Current() (domain.Product, bool) {
	if len(c.items) == 0 {
		return domain.Product{}, false
	}
	return c.items[c.pos], true
}

func (c *Carousel) Next() {
	if n := len(c.items); n > 0 {
		c.pos = (c.pos + 1) % n
	}
}

func (c *Carousel) Prev() {
	if n := len(c.items); n > 0 {
		c.pos = (c.pos - 1 + n) % n
	}
}

// Visible returns up to n products starting at the current one, wrapping
// around the end.
func (c *Carousel) Visible(n int) []domain.Product {
	size := len(c.items)
	n = max(0, min(n, size))
	out := make([]domain.Product, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, c.items[(c.pos+i)%size])
	}
	return out
}

// PickFeatured returns a random, non-empty subset of products in random
// order (empty only when products is).
func PickFeatured(products []domain.Product, rng *rand.Rand) []domain.Product {
	if len(products) == 0 {
		return nil
	}
	shuffled := make([]domain.Product, len(products))
	copy(shuffled, products)
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	return shuffled[:rng.Intn(len(shuffled))+1]
}

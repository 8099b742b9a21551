// Package catalog filters and pages collections that were fetched in full.
package catalog

import (
	"strings"

	"github.com/rl1809/micro-shop/internal/core/domain"
)

const (
	StorefrontPageSize = 9
	DashboardPageSize  = 10

	// StatusAll disables the status filter.
	StatusAll = "all"
)

func contains(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), needle)
}

// MatchProduct reports whether term occurs, ignoring case, in the product's
// name, category or description. An empty term matches everything.
func MatchProduct(p domain.Product, term string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return true
	}
	return contains(p.Name, term) || contains(p.Category, term) || contains(p.Description, term)
}

func NewProductBrowser(pageSize int) *Browser[domain.Product] {
	return NewBrowser(pageSize, MatchProduct)
}

func FilterProducts(products []domain.Product, term string) []domain.Product {
	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if MatchProduct(p, term) {
			out = append(out, p)
		}
	}
	return out
}

// MatchTransaction matches term against name, email and tracking number and
// status exactly, where "" or "all" accepts any status.
func MatchTransaction(tx domain.Transaction, term, status string) bool {
	if status != "" && status != StatusAll && string(tx.Status) != status {
		return false
	}
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return true
	}
	return contains(tx.Name, term) || contains(tx.Email, term) || contains(tx.TrackingNumber, term)
}

func FilterTransactions(txs []domain.Transaction, term, status string) []domain.Transaction {
	out := make([]domain.Transaction, 0, len(txs))
	for _, tx := range txs {
		if MatchTransaction(tx, term, status) {
			out = append(out, tx)
		}
	}
	return out
}

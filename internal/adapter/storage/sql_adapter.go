package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rl1809/micro-shop/internal/core/domain"
)

const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
)

// SQLAdapter implements the product, transaction and settings repositories
// on database/sql. Queries are written with ? placeholders and rebound for
// postgres.
type SQLAdapter struct {
	db     *sql.DB
	driver string
}

func NewSQLAdapter(db *sql.DB, driver string) *SQLAdapter {
	return &SQLAdapter{db: db, driver: driver}
}

func (s *SQLAdapter) rebind(query string) string {
	if s.driver != DriverPostgres {
		return query
	}

	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// insert runs an INSERT and returns the generated id.
func (s *SQLAdapter) insert(ctx context.Context, e execer, query string, args ...any) (int64, error) {
	if s.driver == DriverPostgres {
		var id int64
		err := e.QueryRowContext(ctx, s.rebind(query+" RETURNING id"), args...).Scan(&id)
		return id, err
	}

	result, err := e.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

func (s *SQLAdapter) ListProducts(ctx context.Context) ([]domain.Product, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, category, description, price, quantity
		FROM products ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	var products []domain.Product
	index := make(map[int64]int)
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Category, &p.Description, &p.Price, &p.Quantity); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		index[p.ID] = len(products)
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	images, err := s.queryImages(ctx, `
		SELECT id, product_id, image, storage_key, is_primary, created_at
		FROM product_images ORDER BY product_id, id`)
	if err != nil {
		return nil, err
	}

	grouped := make(map[int64][]domain.ProductImage)
	for _, img := range images {
		grouped[img.ProductID] = append(grouped[img.ProductID], img)
	}
	for id, i := range index {
		products[i].SetImages(grouped[id])
	}

	if products == nil {
		products = []domain.Product{}
	}
	return products, nil
}

func (s *SQLAdapter) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	var p domain.Product
	err := s.db.QueryRowContext(ctx, s.rebind(`
		SELECT id, name, category, description, price, quantity
		FROM products WHERE id = ?`), id,
	).Scan(&p.ID, &p.Name, &p.Category, &p.Description, &p.Price, &p.Quantity)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query product: %w", err)
	}

	images, err := s.queryImages(ctx, s.rebind(`
		SELECT id, product_id, image, storage_key, is_primary, created_at
		FROM product_images WHERE product_id = ? ORDER BY id`), id)
	if err != nil {
		return nil, err
	}
	p.SetImages(images)
	return &p, nil
}

func (s *SQLAdapter) queryImages(ctx context.Context, query string, args ...any) ([]domain.ProductImage, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query product images: %w", err)
	}
	defer rows.Close()

	var images []domain.ProductImage
	for rows.Next() {
		var img domain.ProductImage
		if err := rows.Scan(&img.ID, &img.ProductID, &img.URL, &img.StorageKey, &img.IsPrimary, &img.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan product image: %w", err)
		}
		images = append(images, img)
	}
	return images, rows.Err()
}

func (s *SQLAdapter) CreateProduct(ctx context.Context, product *domain.Product) error {
	id, err := s.insert(ctx, s.db, `
		INSERT INTO products (name, category, description, price, quantity)
		VALUES (?, ?, ?, ?, ?)`,
		product.Name, product.Category, product.Description, product.Price, product.Quantity,
	)
	if err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	product.ID = id
	return nil
}

func (s *SQLAdapter) UpdateProduct(ctx context.Context, product domain.Product) error {
	_, err := s.db.ExecContext(ctx, s.rebind(`
		UPDATE products
		SET name = ?, category = ?, description = ?, price = ?, quantity = ?
		WHERE id = ?`),
		product.Name, product.Category, product.Description, product.Price, product.Quantity, product.ID,
	)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	return nil
}

func (s *SQLAdapter) DeleteProduct(ctx context.Context, id int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, s.rebind(`DELETE FROM product_images WHERE product_id = ?`), id); err != nil {
		return fmt.Errorf("delete product images: %w", err)
	}
	if _, err := tx.ExecContext(ctx, s.rebind(`DELETE FROM products WHERE id = ?`), id); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}

	return tx.Commit()
}

func (s *SQLAdapter) SaveProductImages(ctx context.Context, productID int64, images []domain.ProductImage) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	for i := range images {
		img := &images[i]
		img.ProductID = productID

		if img.ID != 0 {
			_, err := tx.ExecContext(ctx, s.rebind(`
				UPDATE product_images SET is_primary = ? WHERE id = ? AND product_id = ?`),
				img.IsPrimary, img.ID, productID,
			)
			if err != nil {
				return fmt.Errorf("update product image %d: %w", img.ID, err)
			}
			continue
		}

		id, err := s.insert(ctx, tx, `
			INSERT INTO product_images (product_id, image, storage_key, is_primary, created_at)
			VALUES (?, ?, ?, ?, ?)`,
			productID, img.URL, img.StorageKey, img.IsPrimary, img.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert product image: %w", err)
		}
		img.ID = id
	}

	return tx.Commit()
}

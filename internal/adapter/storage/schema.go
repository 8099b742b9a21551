package storage

import (
	"context"
	"fmt"
	"strings"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS products (
		id %[1]s,
		name VARCHAR(255) NOT NULL,
		category VARCHAR(255) NOT NULL,
		description TEXT NOT NULL,
		price DECIMAL(10,2) NOT NULL DEFAULT 0.00,
		quantity INT NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS product_images (
		id %[1]s,
		product_id BIGINT NOT NULL,
		image TEXT NOT NULL,
		storage_key VARCHAR(512) NOT NULL DEFAULT '',
		is_primary BOOLEAN NOT NULL DEFAULT FALSE,
		created_at %[2]s NOT NULL DEFAULT CURRENT_TIMESTAMP(6),
		FOREIGN KEY (product_id) REFERENCES products(id) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS transactions (
		id %[1]s,
		tracking_number VARCHAR(36) NOT NULL UNIQUE,
		name VARCHAR(255) NOT NULL,
		email VARCHAR(254) NOT NULL,
		location TEXT NOT NULL,
		phone VARCHAR(20) NOT NULL,
		products TEXT NOT NULL,
		total_amount DECIMAL(10,2) NOT NULL,
		status VARCHAR(20) NOT NULL DEFAULT 'pending',
		payment_proof TEXT NULL,
		payment_proof_key VARCHAR(512) NULL,
		created_at %[2]s NOT NULL DEFAULT CURRENT_TIMESTAMP(6)
	)`,
	`CREATE TABLE IF NOT EXISTS bank_details (
		id %[1]s,
		bank_name VARCHAR(100) NOT NULL,
		account_name VARCHAR(100) NOT NULL,
		account_number VARCHAR(50) NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS site_settings (
		id %[1]s,
		site_title VARCHAR(200) NOT NULL,
		contact_email VARCHAR(254) NOT NULL,
		contact_number VARCHAR(20) NOT NULL,
		main_color VARCHAR(7) NOT NULL,
		store_tag VARCHAR(100) NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS admin_tokens (
		token VARCHAR(64) PRIMARY KEY,
		created_at %[2]s NOT NULL DEFAULT CURRENT_TIMESTAMP(6)
	)`,
}

// EnsureSchema creates missing tables for the adapter's driver.
func (s *SQLAdapter) EnsureSchema(ctx context.Context) error {
	idType, timeType := "BIGINT AUTO_INCREMENT PRIMARY KEY", "DATETIME(6)"
	if s.driver == DriverPostgres {
		idType, timeType = "BIGSERIAL PRIMARY KEY", "TIMESTAMPTZ"
	}

	for _, ddl := range schema {
		stmt := fmt.Sprintf(ddl, idType, timeType)
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			table := strings.Fields(stmt)[5]
			return fmt.Errorf("create table %s: %w", table, err)
		}
	}
	return nil
}

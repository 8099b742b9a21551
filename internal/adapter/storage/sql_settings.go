package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rl1809/micro-shop/internal/core/domain"
)

func (s *SQLAdapter) GetBankDetails(ctx context.Context) (*domain.BankDetails, error) {
	var d domain.BankDetails
	err := s.db.QueryRowContext(ctx, `
		SELECT id, bank_name, account_name, account_number
		FROM bank_details ORDER BY id LIMIT 1`,
	).Scan(&d.ID, &d.BankName, &d.AccountName, &d.AccountNumber)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query bank details: %w", err)
	}
	return &d, nil
}

func (s *SQLAdapter) SaveBankDetails(ctx context.Context, details *domain.BankDetails) error {
	if details.ID != 0 {
		_, err := s.db.ExecContext(ctx, s.rebind(`
			UPDATE bank_details SET bank_name = ?, account_name = ?, account_number = ?
			WHERE id = ?`),
			details.BankName, details.AccountName, details.AccountNumber, details.ID,
		)
		if err != nil {
			return fmt.Errorf("update bank details: %w", err)
		}
		return nil
	}

	id, err := s.insert(ctx, s.db, `
		INSERT INTO bank_details (bank_name, account_name, account_number) VALUES (?, ?, ?)`,
		details.BankName, details.AccountName, details.AccountNumber,
	)
	if err != nil {
		return fmt.Errorf("insert bank details: %w", err)
	}
	details.ID = id
	return nil
}

func (s *SQLAdapter) GetSiteSettings(ctx context.Context) (*domain.SiteSettings, error) {
	var st domain.SiteSettings
	err := s.db.QueryRowContext(ctx, `
		SELECT id, site_title, contact_email, contact_number, main_color, store_tag
		FROM site_settings ORDER BY id LIMIT 1`,
	).Scan(&st.ID, &st.SiteTitle, &st.ContactEmail, &st.ContactNumber, &st.MainColor, &st.StoreTag)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query site settings: %w", err)
	}
	return &st, nil
}

func (s *SQLAdapter) SaveSiteSettings(ctx context.Context, settings *domain.SiteSettings) error {
	if settings.ID != 0 {
		_, err := s.db.ExecContext(ctx, s.rebind(`
			UPDATE site_settings
			SET site_title = ?, contact_email = ?, contact_number = ?, main_color = ?, store_tag = ?
			WHERE id = ?`),
			settings.SiteTitle, settings.ContactEmail, settings.ContactNumber,
			settings.MainColor, settings.StoreTag, settings.ID,
		)
		if err != nil {
			return fmt.Errorf("update site settings: %w", err)
		}
		return nil
	}

	id, err := s.insert(ctx, s.db, `
		INSERT INTO site_settings (site_title, contact_email, contact_number, main_color, store_tag)
		VALUES (?, ?, ?, ?, ?)`,
		settings.SiteTitle, settings.ContactEmail, settings.ContactNumber, settings.MainColor, settings.StoreTag,
	)
	if err != nil {
		return fmt.Errorf("insert site settings: %w", err)
	}
	settings.ID = id
	return nil
}

func (s *SQLAdapter) GetAdminToken(ctx context.Context, token string) (*domain.AdminToken, error) {
	var t domain.AdminToken
	err := s.db.QueryRowContext(ctx, s.rebind(`
		SELECT token, created_at FROM admin_tokens WHERE token = ?`), token,
	).Scan(&t.Token, &t.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query admin token: %w", err)
	}
	return &t, nil
}

func (s *SQLAdapter) CreateAdminToken(ctx context.Context, token domain.AdminToken) error {
	_, err := s.db.ExecContext(ctx, s.rebind(`
		INSERT INTO admin_tokens (token, created_at) VALUES (?, ?)`),
		token.Token, token.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert admin token: %w", err)
	}
	return nil
}

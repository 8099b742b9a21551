package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rl1809/micro-shop/internal/core/domain"
	"github.com/rl1809/micro-shop/internal/port"
)

type SiteSettingsPatch struct {
	SiteTitle     *string `json:"site_title"`
	ContactEmail  *string `json:"contact_email"`
	ContactNumber *string `json:"contact_number"`
	MainColor     *string `json:"main_color"`
	StoreTag      *string `json:"store_tag"`
}

func (p SiteSettingsPatch) apply(s *domain.SiteSettings) {
	if p.SiteTitle != nil {
		s.SiteTitle = *p.SiteTitle
	}
	if p.ContactEmail != nil {
		s.ContactEmail = *p.ContactEmail
	}
	if p.ContactNumber != nil {
		s.ContactNumber = *p.ContactNumber
	}
	if p.MainColor != nil {
		s.MainColor = *p.MainColor
	}
	if p.StoreTag != nil {
		s.StoreTag = *p.StoreTag
	}
}

// SettingsService owns the singleton records and the admin tokens.
type SettingsService struct {
	repo     port.SettingsRepository
	tokenTTL time.Duration
	now      func() time.Time
}

func NewSettingsService(repo port.SettingsRepository, tokenTTL time.Duration) *SettingsService {
	if tokenTTL <= 0 {
		tokenTTL = domain.DefaultAdminTokenTTL
	}
	return &SettingsService{repo: repo, tokenTTL: tokenTTL, now: time.Now}
}

// BankDetails returns zero or one record, in the list shape the storefront reads.
func (s *SettingsService) BankDetails(ctx context.Context) ([]domain.BankDetails, error) {
	d, err := s.repo.GetBankDetails(ctx)
	if err != nil {
		return nil, fmt.Errorf("get bank details: %w", err)
	}
	if d == nil {
		return []domain.BankDetails{}, nil
	}
	return []domain.BankDetails{*d}, nil
}

// SaveBankDetails overwrites the singleton whatever ID the caller used.
func (s *SettingsService) SaveBankDetails(ctx context.Context, details domain.BankDetails) (*domain.BankDetails, error) {
	if err := details.Validate(); err != nil {
		return nil, errors.Join(ErrInvalidInput, err)
	}

	existing, err := s.repo.GetBankDetails(ctx)
	if err != nil {
		return nil, fmt.Errorf("get bank details: %w", err)
	}
	details.ID = 0
	if existing != nil {
		details.ID = existing.ID
	}

	if err := s.repo.SaveBankDetails(ctx, &details); err != nil {
		return nil, fmt.Errorf("save bank details: %w", err)
	}
	return &details, nil
}

// SiteSettings returns the singleton, creating it with defaults on first use.
func (s *SettingsService) SiteSettings(ctx context.Context) (*domain.SiteSettings, error) {
	settings, err := s.repo.GetSiteSettings(ctx)
	if err != nil {
		return nil, fmt.Errorf("get site settings: %w", err)
	}
	if settings != nil {
		return settings, nil
	}

	defaults := domain.DefaultSiteSettings()
	if err := s.repo.SaveSiteSettings(ctx, &defaults); err != nil {
		return nil, fmt.Errorf("create site settings: %w", err)
	}
	return &defaults, nil
}

func (s *SettingsService) UpdateSiteSettings(ctx context.Context, patch SiteSettingsPatch) (*domain.SiteSettings, error) {
	settings, err := s.SiteSettings(ctx)
	if err != nil {
		return nil, err
	}

	patch.apply(settings)
	if err := settings.Validate(); err != nil {
		return nil, errors.Join(ErrInvalidInput, err)
	}

	if err := s.repo.SaveSiteSettings(ctx, settings); err != nil {
		return nil, fmt.Errorf("save site settings: %w", err)
	}
	return settings, nil
}

// VerifyAdmin returns nil for a live token, ErrTokenExpired for one past its
// TTL and ErrInvalidToken for anything else.
func (s *SettingsService) VerifyAdmin(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return ErrInvalidToken
	}

	t, err := s.repo.GetAdminToken(ctx, token)
	if err != nil {
		return fmt.Errorf("get admin token: %w", err)
	}
	if t == nil {
		return ErrInvalidToken
	}
	if !t.Valid(s.now(), s.tokenTTL) {
		return ErrTokenExpired
	}
	return nil
}

// IssueAdminToken creates a fresh shared admin token.
func (s *SettingsService) IssueAdminToken(ctx context.Context) (string, error) {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}

	token := domain.AdminToken{Token: hex.EncodeToString(buf), CreatedAt: s.now().UTC()}
	if err := s.repo.CreateAdminToken(ctx, token); err != nil {
		return "", fmt.Errorf("create admin token: %w", err)
	}
	return token.Token, nil
}

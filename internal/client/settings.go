package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/rl1809/micro-shop/internal/core/domain"
	"github.com/rl1809/micro-shop/internal/core/service"
)

// SiteSettings is the settings record with the palette the backend derives
// from it.
type SiteSettings struct {
	domain.SiteSettings
	Theme domain.Theme `json:"theme"`
}

// BankDetails returns the payment account, or nil when none is configured.
func (c *Client) BankDetails(ctx context.Context) (*domain.BankDetails, error) {
	var details []domain.BankDetails
	if err := c.get(ctx, "/bank-details/", nil, &details); err != nil {
		return nil, fmt.Errorf("get bank details: %w", err)
	}
	if len(details) == 0 {
		return nil, nil
	}
	return &details[0], nil
}

// SaveBankDetails creates the record when it has no id and replaces it
// otherwise.
func (c *Client) SaveBankDetails(ctx context.Context, details domain.BankDetails) (*domain.BankDetails, error) {
	method, path := http.MethodPost, "/bank-details/"
	if details.ID != 0 {
		method, path = http.MethodPut, "/bank-details/"+strconv.FormatInt(details.ID, 10)+"/"
	}

	var saved domain.BankDetails
	if err := c.sendJSON(ctx, method, path, details, &saved); err != nil {
		return nil, fmt.Errorf("save bank details: %w", err)
	}
	return &saved, nil
}

func (c *Client) SiteSettings(ctx context.Context) (*SiteSettings, error) {
	var s SiteSettings
	if err := c.get(ctx, "/site-settings/", nil, &s); err != nil {
		return nil, fmt.Errorf("get site settings: %w", err)
	}
	return &s, nil
}

func (c *Client) UpdateSiteSettings(ctx context.Context, patch service.SiteSettingsPatch) (*SiteSettings, error) {
	var s SiteSettings
	if err := c.sendJSON(ctx, http.MethodPatch, "/site-settings/1/", patch, &s); err != nil {
		return nil, fmt.Errorf("update site settings: %w", err)
	}
	return &s, nil
}

// VerifyAdmin checks token against the backend. A rejected token is not an
// error: valid is false and message says why.
func (c *Client) VerifyAdmin(ctx context.Context, token string) (valid bool, message string, err error) {
	req, err := c.newJSONRequest(ctx, http.MethodPost, "/verify-admin/", map[string]string{"token": token})
	if err != nil {
		return false, "", err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, "", fmt.Errorf("verify admin: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusUnauthorized {
		return false, "", fmt.Errorf("verify admin: %w", decodeError(resp))
	}

	var body struct {
		Valid   bool   `json:"valid"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return false, "", fmt.Errorf("verify admin: decode: %w", err)
	}
	if !body.Valid && body.Message == "" {
		body.Message = "Invalid token"
	}
	return body.Valid, body.Message, nil
}

// IsUnauthorized reports whether err came from a rejected admin token.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

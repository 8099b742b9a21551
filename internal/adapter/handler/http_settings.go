package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rl1809/micro-shop/internal/core/domain"
	"github.com/rl1809/micro-shop/internal/core/service"
)

type siteSettingsResponse struct {
	*domain.SiteSettings
	Theme domain.Theme `json:"theme"`
}

type verifyAdminRequest struct {
	Token string `json:"token"`
}

func (h *HTTPHandler) ListBankDetails(c *gin.Context) {
	details, err := h.settings.BankDetails(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, details)
}

// SaveBankDetails upserts the single bank details record.
func (h *HTTPHandler) SaveBankDetails(c *gin.Context) {
	var details domain.BankDetails
	if err := c.ShouldBindJSON(&details); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	saved, err := h.settings.SaveBankDetails(c.Request.Context(), details)
	if err != nil {
		writeError(c, err)
		return
	}

	status := http.StatusOK
	if c.Request.Method == http.MethodPost {
		status = http.StatusCreated
	}
	c.JSON(status, saved)
}

func (h *HTTPHandler) GetSiteSettings(c *gin.Context) {
	s, err := h.settings.SiteSettings(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, siteSettingsResponse{SiteSettings: s, Theme: s.Theme()})
}

// UpdateSiteSettings ignores the path id; there is only one record.
func (h *HTTPHandler) UpdateSiteSettings(c *gin.Context) {
	var patch service.SiteSettingsPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	s, err := h.settings.UpdateSiteSettings(c.Request.Context(), patch)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, siteSettingsResponse{SiteSettings: s, Theme: s.Theme()})
}

func (h *HTTPHandler) VerifyAdmin(c *gin.Context) {
	var req verifyAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		// An unreadable body carries no token.
		c.JSON(http.StatusUnauthorized, gin.H{"valid": false, "message": "Invalid token"})
		return
	}

	err := h.settings.VerifyAdmin(c.Request.Context(), req.Token)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"valid": true})
	case errors.Is(err, service.ErrTokenExpired):
		c.JSON(http.StatusOK, gin.H{"valid": false, "message": "Token expired"})
	case errors.Is(err, service.ErrInvalidToken):
		c.JSON(http.StatusUnauthorized, gin.H{"valid": false, "message": "Invalid token"})
	default:
		writeError(c, err)
	}
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ikonicity-airban/geek-creations-sub000/internal/service"
	"github.com/ikonicity-airban/geek-creations-sub000/pkg/errors"
)

// LocaleHandler serves currency, language, and exchange-rate settings. Reads
// are public (the storefront needs them); writes sit behind admin auth.
type LocaleHandler struct {
	locale *service.LocaleService
	syncer *service.RateSyncer
	logger *zap.Logger
}

// NewLocaleHandler creates the locale settings handler
func NewLocaleHandler(locale *service.LocaleService, syncer *service.RateSyncer, logger *zap.Logger) *LocaleHandler {
	return &LocaleHandler{locale: locale, syncer: syncer, logger: logger}
}

// ListCurrencies handles GET /api/locale/currencies
func (h *LocaleHandler) ListCurrencies(c *gin.Context) {
	currencies, err := h.locale.ListCurrencies(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"currencies": currencies})
}

// UpsertCurrency handles POST and PATCH /api/admin/locale/currencies
func (h *LocaleHandler) UpsertCurrency(c *gin.Context) {
	var req service.CurrencyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, &errors.ErrValidation{Message: err.Error()})
		return
	}
	currency, err := h.locale.UpsertCurrency(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"currency": currency})
}

// DeleteCurrency handles DELETE /api/admin/locale/currencies/:code
func (h *LocaleHandler) DeleteCurrency(c *gin.Context) {
	if err := h.locale.DeleteCurrency(c.Request.Context(), c.Param("code")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// ListLanguages handles GET /api/locale/languages
func (h *LocaleHandler) ListLanguages(c *gin.Context) {
	languages, err := h.locale.ListLanguages(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"languages": languages})
}

// UpsertLanguage handles POST and PATCH /api/admin/locale/languages
func (h *LocaleHandler) UpsertLanguage(c *gin.Context) {
	var req service.LanguageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, &errors.ErrValidation{Message: err.Error()})
		return
	}
	language, err := h.locale.UpsertLanguage(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"language": language})
}

// DeleteLanguage handles DELETE /api/admin/locale/languages/:code
func (h *LocaleHandler) DeleteLanguage(c *gin.Context) {
	if err := h.locale.DeleteLanguage(c.Request.Context(), c.Param("code")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// ListRates handles GET /api/locale/rates
func (h *LocaleHandler) ListRates(c *gin.Context) {
	rates, err := h.locale.ListRates(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rates": rates})
}

// UpsertRate handles POST and PATCH /api/admin/locale/rates
func (h *LocaleHandler) UpsertRate(c *gin.Context) {
	var req service.RateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, &errors.ErrValidation{Message: err.Error()})
		return
	}
	rate, err := h.locale.UpsertRate(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rate": rate})
}

// DeleteRate handles DELETE /api/admin/locale/rates/:from/:to
func (h *LocaleHandler) DeleteRate(c *gin.Context) {
	if err := h.locale.DeleteRate(c.Request.Context(), c.Param("from"), c.Param("to")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// SyncRates handles POST /api/admin/locale/rates/sync, forcing an immediate
// sync outside the background interval
func (h *LocaleHandler) SyncRates(c *gin.Context) {
	if err := h.syncer.SyncOnce(c.Request.Context()); err != nil {
		h.logger.Warn("Manual rate sync failed", zap.Error(err))
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"synced": true})
}

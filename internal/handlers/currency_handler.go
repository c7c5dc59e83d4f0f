package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pennywise/internal/services"
)

// CurrencyHandler exposes the currencies accepted on transactions.
type CurrencyHandler struct {
	currency services.CurrencyNormalizer
}

// NewCurrencyHandler creates a new CurrencyHandler.
func NewCurrencyHandler(currency services.CurrencyNormalizer) *CurrencyHandler {
	return &CurrencyHandler{currency: currency}
}

// CurrenciesResponse lists the supported currency codes.
type CurrenciesResponse struct {
	Canonical  string   `json:"canonical"`
	Currencies []string `json:"currencies"`
}

// GetCurrencies lists supported currency codes.
// @Summary     List currencies
// @Description List the currency codes accepted on transactions and the canonical currency amounts are converted to
// @Tags        currencies
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} CurrenciesResponse "Supported currencies"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /currencies [get]
func (h *CurrencyHandler) GetCurrencies(c *gin.Context) {
	c.JSON(http.StatusOK, CurrenciesResponse{
		Canonical:  h.currency.Canonical(),
		Currencies: h.currency.SupportedCodes(c.Request.Context()),
	})
}

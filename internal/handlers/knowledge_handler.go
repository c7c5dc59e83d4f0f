package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "pennywise/internal/errors"
	"pennywise/internal/knowledge"
	"pennywise/internal/logger"
	"pennywise/internal/services"
)

// KnowledgeHandler forwards questions to the knowledge service.
type KnowledgeHandler struct {
	knowledge services.KnowledgeServicer
}

// NewKnowledgeHandler creates a new KnowledgeHandler.
func NewKnowledgeHandler(knowledge services.KnowledgeServicer) *KnowledgeHandler {
	return &KnowledgeHandler{knowledge: knowledge}
}

// KnowledgeQueryRequest is a free-form question.
type KnowledgeQueryRequest struct {
	Query string `json:"query" binding:"required,max=500"`
}

// ConvertCurrencyRequest asks for "{amount} {from} to {to}".
type ConvertCurrencyRequest struct {
	Amount FlexibleAmount `json:"amount" binding:"required,max=50" swaggertype:"string"`
	From   string         `json:"from" binding:"required,currency_code"`
	To     string         `json:"to" binding:"required,currency_code"`
}

// AnalyzeBudgetRequest asks for commentary on a budget amount.
type AnalyzeBudgetRequest struct {
	Amount FlexibleAmount `json:"amount" binding:"required,max=50" swaggertype:"string"`
}

// KnowledgeAnswer is a plaintext answer.
type KnowledgeAnswer struct {
	Result string `json:"result"`
}

// knowledgeError maps knowledge client failures to API errors.
func knowledgeError(err error) error {
	switch {
	case errors.Is(err, knowledge.ErrNotConfigured):
		return apperrors.ErrKnowledgeUnavailable
	case errors.Is(err, knowledge.ErrNoResult):
		return apperrors.WithMessage(apperrors.ErrUpstream, "No result available for this query")
	default:
		logger.Get().Warnw("knowledge request failed", "error", err)
		return apperrors.Wrap(apperrors.ErrUpstream, err)
	}
}

func (h *KnowledgeHandler) ready(c *gin.Context) bool {
	if h.knowledge == nil || !h.knowledge.Configured() {
		respondWithError(c, apperrors.ErrKnowledgeUnavailable)
		return false
	}
	return true
}

// Query runs a free-form query.
// @Summary     Knowledge query
// @Description Run a free-form query and return the full query result
// @Tags        knowledge
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body KnowledgeQueryRequest true "Query"
// @Success     200 {object} knowledge.QueryResult "Query result"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     502 {object} ErrorResponse "Upstream failure"
// @Failure     503 {object} ErrorResponse "Knowledge service not configured"
// @Router      /knowledge/query [post]
func (h *KnowledgeHandler) Query(c *gin.Context) {
	if !h.ready(c) {
		return
	}

	var req KnowledgeQueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.knowledge.Raw(c.Request.Context(), req.Query)
	if err != nil {
		respondWithError(c, knowledgeError(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"result": result})
}

// ConvertCurrency asks the knowledge service for a currency conversion.
// @Summary     Knowledge currency conversion
// @Description Ask the knowledge service to convert an amount between currencies
// @Tags        knowledge
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body ConvertCurrencyRequest true "Conversion"
// @Success     200 {object} KnowledgeAnswer "Conversion text"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     502 {object} ErrorResponse "Upstream failure"
// @Failure     503 {object} ErrorResponse "Knowledge service not configured"
// @Router      /knowledge/convert-currency [post]
func (h *KnowledgeHandler) ConvertCurrency(c *gin.Context) {
	if !h.ready(c) {
		return
	}

	var req ConvertCurrencyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	text, err := h.knowledge.ConvertCurrency(c.Request.Context(), string(req.Amount), req.From, req.To)
	if err != nil {
		respondWithError(c, knowledgeError(err))
		return
	}

	c.JSON(http.StatusOK, KnowledgeAnswer{Result: text})
}

// AnalyzeBudget asks the knowledge service about a budget amount.
// @Summary     Knowledge budget analysis
// @Description Ask the knowledge service for commentary on a budget amount
// @Tags        knowledge
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body AnalyzeBudgetRequest true "Budget amount"
// @Success     200 {object} KnowledgeAnswer "Analysis text"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     502 {object} ErrorResponse "Upstream failure"
// @Failure     503 {object} ErrorResponse "Knowledge service not configured"
// @Router      /knowledge/analyze-budget [post]
func (h *KnowledgeHandler) AnalyzeBudget(c *gin.Context) {
	if !h.ready(c) {
		return
	}

	var req AnalyzeBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	text, err := h.knowledge.AnalyzeBudget(c.Request.Context(), string(req.Amount))
	if err != nil {
		respondWithError(c, knowledgeError(err))
		return
	}

	c.JSON(http.StatusOK, KnowledgeAnswer{Result: text})
}

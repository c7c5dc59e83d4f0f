package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "pennywise/internal/errors"
	"pennywise/internal/models"
	"pennywise/internal/pagination"
	"pennywise/internal/services"
)

// RecurringTransactionHandler handles recurring transaction requests
type RecurringTransactionHandler struct {
	recurringService services.RecurringTransactionServicer
	auditService     services.AuditServicer
}

// NewRecurringTransactionHandler creates a new RecurringTransactionHandler
func NewRecurringTransactionHandler(recurringService services.RecurringTransactionServicer, auditService services.AuditServicer) *RecurringTransactionHandler {
	return &RecurringTransactionHandler{recurringService: recurringService, auditService: auditService}
}

// CreateRecurringRequest represents the request payload for creating a recurring transaction.
// Frequency defaults to monthly and DayOfMonth to the start date's day.
type CreateRecurringRequest struct {
	CategoryID    string         `json:"category_id" binding:"required,uuid"`
	SubcategoryID string         `json:"subcategory_id" binding:"required,uuid"`
	Amount        FlexibleAmount `json:"amount" binding:"required,max=200" swaggertype:"string"`
	Currency      string         `json:"currency" binding:"omitempty,alpha,len=3"`
	Description   string         `json:"description" binding:"max=200"`
	StartDate     string         `json:"start_date" binding:"required,date_string"`
	EndDate       string         `json:"end_date" binding:"required,date_string"`
	Frequency     string         `json:"frequency" binding:"omitempty,recurrence_frequency"`
	DayOfMonth    int            `json:"day_of_month" binding:"omitempty,min=1,max=31"`
}

// CreateRecurringTransaction handles creating and expanding a recurring transaction
// @Summary     Create a recurring transaction
// @Description Create a recurrence rule and one transaction for every occurrence between the start and end dates
// @Tags        recurring-transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateRecurringRequest true "Recurring transaction details"
// @Success     201 {object} services.RecurringResult "Rule created and expanded"
// @Failure     400 {object} ErrorResponse "Invalid input or recurrence"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Category or subcategory not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /recurring-transactions [post]
func (h *RecurringTransactionHandler) CreateRecurringTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateRecurringRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	start, err := parseFlexibleTime(req.StartDate)
	if err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}
	end, err := parseFlexibleTime(req.EndDate)
	if err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	frequency := models.FrequencyMonthly
	if req.Frequency != "" {
		frequency = models.Frequency(req.Frequency)
	}
	day := req.DayOfMonth
	if day == 0 {
		day = start.Day()
	}

	result, err := h.recurringService.CreateRecurringTransaction(c.Request.Context(), userID, services.RecurringInput{
		CategoryID:    req.CategoryID,
		SubcategoryID: req.SubcategoryID,
		Amount:        string(req.Amount),
		Currency:      strings.ToUpper(req.Currency),
		Description:   req.Description,
		StartDate:     start,
		EndDate:       end,
		Frequency:     frequency,
		DayOfMonth:    day,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "CREATE_RECURRING_TRANSACTION", "recurring_transaction", result.RecurringTransaction.ID, c.ClientIP(),
		map[string]interface{}{
			"frequency":            string(frequency),
			"transactions_created": result.TransactionsCreated,
		})

	c.JSON(http.StatusCreated, result)
}

// GetUserRecurringTransactions handles listing active recurring transactions
// @Summary     List recurring transactions
// @Description Get a paginated list of active recurrence rules
// @Tags        recurring-transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       page      query int false "Page number (default 1)"
// @Param       page_size query int false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.RecurringTransaction] "Paginated recurring transactions"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /recurring-transactions [get]
func (h *RecurringTransactionHandler) GetUserRecurringTransactions(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.recurringService.GetUserRecurringTransactions(userID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetRecurringTransactionByID handles fetching a single recurrence rule
// @Summary     Get recurring transaction
// @Description Get a recurrence rule by ID, including deactivated ones
// @Tags        recurring-transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Recurring transaction ID"
// @Success     200 {object} models.RecurringTransaction "Recurring transaction"
// @Failure     400 {object} ErrorResponse "Invalid ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Recurring transaction not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /recurring-transactions/{id} [get]
func (h *RecurringTransactionHandler) GetRecurringTransactionByID(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	recurringID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	rule, err := h.recurringService.GetRecurringTransactionByID(userID, recurringID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"recurring_transaction": rule})
}

// DeleteRecurringTransaction handles deactivating a recurrence rule
// @Summary     Delete recurring transaction
// @Description Deactivate a recurrence rule and remove its transactions dated today or later. Past transactions are kept.
// @Tags        recurring-transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Recurring transaction ID"
// @Success     200 {object} MessageResponse "Recurring transaction deactivated"
// @Failure     400 {object} ErrorResponse "Invalid ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Recurring transaction not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /recurring-transactions/{id} [delete]
func (h *RecurringTransactionHandler) DeleteRecurringTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	recurringID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	removed, err := h.recurringService.DeleteRecurringTransaction(userID, recurringID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "DELETE_RECURRING_TRANSACTION", "recurring_transaction", recurringID, c.ClientIP(),
		map[string]interface{}{"transactions_removed": removed})

	c.JSON(http.StatusOK, gin.H{
		"message":              "Recurring transaction deactivated",
		"transactions_removed": removed,
	})
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "pennywise/internal/errors"
	"pennywise/internal/pagination"
	"pennywise/internal/services"
)

// SubcategoryHandler handles subcategory-related requests
type SubcategoryHandler struct {
	subcategoryService services.SubcategoryServicer
	auditService       services.AuditServicer
}

// NewSubcategoryHandler creates a new SubcategoryHandler
func NewSubcategoryHandler(subcategoryService services.SubcategoryServicer, auditService services.AuditServicer) *SubcategoryHandler {
	return &SubcategoryHandler{subcategoryService: subcategoryService, auditService: auditService}
}

// CreateSubcategoryRequest represents the request payload for creating a subcategory
type CreateSubcategoryRequest struct {
	CategoryID string `json:"category_id" binding:"required,uuid"`
	Name       string `json:"name" binding:"required,max=100"`
}

// UpdateSubcategoryRequest represents the request payload for renaming a subcategory
type UpdateSubcategoryRequest struct {
	Name string `json:"name" binding:"required,max=100"`
}

// CreateSubcategory handles the creation of a new subcategory
// @Summary     Create a subcategory
// @Description Create a subcategory inside one of the user's categories
// @Tags        subcategories
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateSubcategoryRequest true "Subcategory details"
// @Success     201 {object} models.Subcategory "Subcategory created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Category not found"
// @Failure     409 {object} ErrorResponse "Duplicate subcategory"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /subcategories [post]
func (h *SubcategoryHandler) CreateSubcategory(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateSubcategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	sub, err := h.subcategoryService.CreateSubcategory(userID, req.CategoryID, req.Name)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "CREATE_SUBCATEGORY", "subcategory", sub.ID, c.ClientIP(),
		map[string]interface{}{"name": sub.Name, "category_id": sub.CategoryID})

	c.JSON(http.StatusCreated, gin.H{"subcategory": sub})
}

// GetUserSubcategories handles listing subcategories
// @Summary     Get subcategories
// @Description Get a paginated list of subcategories, optionally limited to one category
// @Tags        subcategories
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       category_id query string false "Filter by category ID"
// @Param       page        query int    false "Page number (default 1)"
// @Param       page_size   query int    false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.Subcategory] "Paginated subcategories"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /subcategories [get]
func (h *SubcategoryHandler) GetUserSubcategories(c *gin.Context) {
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

	categoryID, err := queryID(c, "category_id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.subcategoryService.GetUserSubcategories(userID, categoryID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetSubcategoryByID handles the retrieval of a specific subcategory
// @Summary     Get subcategory by ID
// @Description Get a specific subcategory
// @Tags        subcategories
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Subcategory ID"
// @Success     200 {object} models.Subcategory "Subcategory details"
// @Failure     400 {object} ErrorResponse "Invalid subcategory ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Subcategory not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /subcategories/{id} [get]
func (h *SubcategoryHandler) GetSubcategoryByID(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	subcategoryID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	sub, err := h.subcategoryService.GetSubcategoryByID(userID, subcategoryID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"subcategory": sub})
}

// UpdateSubcategory handles renaming a subcategory
// @Summary     Rename subcategory
// @Description Rename a subcategory within its category
// @Tags        subcategories
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string                   true "Subcategory ID"
// @Param       request body UpdateSubcategoryRequest true "New name"
// @Success     200 {object} models.Subcategory "Updated subcategory"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Subcategory not found"
// @Failure     409 {object} ErrorResponse "Duplicate or protected subcategory"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /subcategories/{id} [put]
func (h *SubcategoryHandler) UpdateSubcategory(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	subcategoryID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateSubcategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	sub, err := h.subcategoryService.UpdateSubcategory(userID, subcategoryID, req.Name)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "UPDATE_SUBCATEGORY", "subcategory", sub.ID, c.ClientIP(),
		map[string]interface{}{"name": sub.Name})

	c.JSON(http.StatusOK, gin.H{"subcategory": sub})
}

// DeleteSubcategory handles deleting a subcategory
// @Summary     Delete subcategory
// @Description Delete a subcategory. Its transactions and recurring rules move to Uncategorized.
// @Tags        subcategories
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Subcategory ID"
// @Success     200 {object} services.ReassignmentResult "Subcategory deleted"
// @Failure     400 {object} ErrorResponse "Invalid subcategory ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Subcategory not found"
// @Failure     409 {object} ErrorResponse "Protected subcategory"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /subcategories/{id} [delete]
func (h *SubcategoryHandler) DeleteSubcategory(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	subcategoryID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.subcategoryService.DeleteSubcategory(userID, subcategoryID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "DELETE_SUBCATEGORY", "subcategory", subcategoryID, c.ClientIP(),
		map[string]interface{}{"reassigned_transactions": result.Transactions})

	c.JSON(http.StatusOK, gin.H{"message": "Subcategory deleted successfully", "reassignment": result})
}

package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	apperrors "pennywise/internal/errors"
	"pennywise/internal/models"
	"pennywise/internal/pagination"
	"pennywise/internal/services"
)

const testSubcategoryID = "0190c0de-0000-7000-8000-000000000020"

// --- mock subcategory service ---

type mockSubcategoryService struct {
	createSubcategoryFn    func(userID, categoryID, name string) (*models.Subcategory, error)
	getUserSubcategoriesFn func(userID string, categoryID *string, page pagination.PageRequest) (*pagination.PageResponse[models.Subcategory], error)
	getSubcategoryByIDFn   func(userID, subcategoryID string) (*models.Subcategory, error)
	updateSubcategoryFn    func(userID, subcategoryID, name string) (*models.Subcategory, error)
	deleteSubcategoryFn    func(userID, subcategoryID string) (*services.ReassignmentResult, error)
}

var _ services.SubcategoryServicer = (*mockSubcategoryService)(nil)

func (m *mockSubcategoryService) CreateSubcategory(userID, categoryID, name string) (*models.Subcategory, error) {
	if m.createSubcategoryFn != nil {
		return m.createSubcategoryFn(userID, categoryID, name)
	}
	return &models.Subcategory{}, nil
}

func (m *mockSubcategoryService) GetUserSubcategories(userID string, categoryID *string, page pagination.PageRequest) (*pagination.PageResponse[models.Subcategory], error) {
	if m.getUserSubcategoriesFn != nil {
		return m.getUserSubcategoriesFn(userID, categoryID, page)
	}
	resp := pagination.NewPageResponse([]models.Subcategory{}, 1, 20, 0)
	return &resp, nil
}

func (m *mockSubcategoryService) GetSubcategoryByID(userID, subcategoryID string) (*models.Subcategory, error) {
	if m.getSubcategoryByIDFn != nil {
		return m.getSubcategoryByIDFn(userID, subcategoryID)
	}
	return &models.Subcategory{}, nil
}

func (m *mockSubcategoryService) UpdateSubcategory(userID, subcategoryID, name string) (*models.Subcategory, error) {
	if m.updateSubcategoryFn != nil {
		return m.updateSubcategoryFn(userID, subcategoryID, name)
	}
	return &models.Subcategory{}, nil
}

func (m *mockSubcategoryService) DeleteSubcategory(userID, subcategoryID string) (*services.ReassignmentResult, error) {
	if m.deleteSubcategoryFn != nil {
		return m.deleteSubcategoryFn(userID, subcategoryID)
	}
	return &services.ReassignmentResult{}, nil
}

func setupSubcategoryRouter(handler *SubcategoryHandler) *gin.Engine {
	r := gin.New()
	auth := r.Group("", injectUserID(testUserID))
	auth.POST("/subcategories", handler.CreateSubcategory)
	auth.GET("/subcategories", handler.GetUserSubcategories)
	auth.GET("/subcategories/:id", handler.GetSubcategoryByID)
	auth.PUT("/subcategories/:id", handler.UpdateSubcategory)
	auth.DELETE("/subcategories/:id", handler.DeleteSubcategory)
	return r
}

func TestSubcategoryHandler_CreateSubcategory(t *testing.T) {
	t.Run("returns 201 on success", func(t *testing.T) {
		subSvc := &mockSubcategoryService{
			createSubcategoryFn: func(_, categoryID, name string) (*models.Subcategory, error) {
				return &models.Subcategory{Base: models.Base{ID: testSubcategoryID}, CategoryID: categoryID, Name: name}, nil
			},
		}
		handler := NewSubcategoryHandler(subSvc, &mockAuditService{})
		r := setupSubcategoryRouter(handler)

		rec := doRequest(r, "POST", "/subcategories",
			`{"category_id":"`+testCategoryID+`","name":"Groceries"}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		sub := parseJSON(t, rec)["subcategory"].(map[string]interface{})
		if sub["category_id"] != testCategoryID {
			t.Errorf("expected category %s, got %v", testCategoryID, sub["category_id"])
		}
	})

	t.Run("returns 400 on missing category", func(t *testing.T) {
		handler := NewSubcategoryHandler(&mockSubcategoryService{}, &mockAuditService{})
		r := setupSubcategoryRouter(handler)

		rec := doRequest(r, "POST", "/subcategories", `{"name":"Groceries"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("returns 409 on duplicate", func(t *testing.T) {
		subSvc := &mockSubcategoryService{
			createSubcategoryFn: func(_, _, _ string) (*models.Subcategory, error) {
				return nil, apperrors.ErrDuplicateSubcategory
			},
		}
		handler := NewSubcategoryHandler(subSvc, &mockAuditService{})
		r := setupSubcategoryRouter(handler)

		rec := doRequest(r, "POST", "/subcategories",
			`{"category_id":"`+testCategoryID+`","name":"Groceries"}`)

		if rec.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "DUPLICATE_SUBCATEGORY")
	})
}

func TestSubcategoryHandler_GetUserSubcategories(t *testing.T) {
	t.Run("passes category filter", func(t *testing.T) {
		var captured *string
		subSvc := &mockSubcategoryService{
			getUserSubcategoriesFn: func(_ string, categoryID *string, _ pagination.PageRequest) (*pagination.PageResponse[models.Subcategory], error) {
				captured = categoryID
				resp := pagination.NewPageResponse([]models.Subcategory{}, 1, 20, 0)
				return &resp, nil
			},
		}
		handler := NewSubcategoryHandler(subSvc, &mockAuditService{})
		r := setupSubcategoryRouter(handler)

		rec := doRequest(r, "GET", "/subcategories?category_id="+testCategoryID, "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if captured == nil || *captured != testCategoryID {
			t.Errorf("expected category filter %s, got %v", testCategoryID, captured)
		}
	})

	t.Run("returns 400 on invalid category filter", func(t *testing.T) {
		handler := NewSubcategoryHandler(&mockSubcategoryService{}, &mockAuditService{})
		r := setupSubcategoryRouter(handler)

		rec := doRequest(r, "GET", "/subcategories?category_id=abc", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
	})
}

func TestSubcategoryHandler_UpdateSubcategory(t *testing.T) {
	t.Run("returns 409 on sentinel", func(t *testing.T) {
		subSvc := &mockSubcategoryService{
			updateSubcategoryFn: func(_, _, _ string) (*models.Subcategory, error) {
				return nil, apperrors.ErrProtectedCategory
			},
		}
		handler := NewSubcategoryHandler(subSvc, &mockAuditService{})
		r := setupSubcategoryRouter(handler)

		rec := doRequest(r, "PUT", "/subcategories/"+testSubcategoryID, `{"name":"Other"}`)

		if rec.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", rec.Code)
		}
	})
}

func TestSubcategoryHandler_DeleteSubcategory(t *testing.T) {
	t.Run("returns 200 with reassignment counts", func(t *testing.T) {
		subSvc := &mockSubcategoryService{
			deleteSubcategoryFn: func(_, _ string) (*services.ReassignmentResult, error) {
				return &services.ReassignmentResult{Transactions: 4, DeletedSubcategories: 1}, nil
			},
		}
		handler := NewSubcategoryHandler(subSvc, &mockAuditService{})
		r := setupSubcategoryRouter(handler)

		rec := doRequest(r, "DELETE", "/subcategories/"+testSubcategoryID, "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		reassigned := parseJSON(t, rec)["reassignment"].(map[string]interface{})
		if reassigned["reassigned_transactions"] != float64(4) {
			t.Errorf("expected 4 reassigned transactions, got %v", reassigned["reassigned_transactions"])
		}
	})

	t.Run("returns 404 when not found", func(t *testing.T) {
		subSvc := &mockSubcategoryService{
			deleteSubcategoryFn: func(_, _ string) (*services.ReassignmentResult, error) {
				return nil, apperrors.ErrSubcategoryNotFound
			},
		}
		handler := NewSubcategoryHandler(subSvc, &mockAuditService{})
		r := setupSubcategoryRouter(handler)

		rec := doRequest(r, "DELETE", "/subcategories/"+testSubcategoryID, "")

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})
}

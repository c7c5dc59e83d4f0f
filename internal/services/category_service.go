package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	apperrors "pennywise/internal/errors"
	"pennywise/internal/logger"
	"pennywise/internal/models"
	"pennywise/internal/overview"
	"pennywise/internal/pagination"
)

// defaultCategory is a category created for every new user.
type defaultCategory struct {
	Name          string
	Subcategories []string
}

var defaultCategories = []defaultCategory{
	{"Car", []string{"Gas", "Insurance", "Maintenance", "Parking", "Public", "Toll", "Uber"}},
	{"Clothing", []string{"Casual", "Gym", "Office"}},
	{"Education", []string{"Books", "Career", "Courses", "News Subs"}},
	{"Financing", []string{"Loans", "Fees", "Taxes"}},
	{"Food", []string{"Groceries", "Meal Delivery", "Restaurants"}},
	{"Fun", []string{"Tickets", "Gifts"}},
	{"Health", []string{"Dental", "Fitness", "Medical", "Vision"}},
	{"Hobbies", []string{"Voice", "Horse-back Riding", "Crochet"}},
	{"Home", []string{"Rental Insurance", "Utilities", "Internet", "Furniture", "Decor"}},
	{"Services", []string{"Facial", "Hair", "Home", "Nails"}},
	{"Tech", []string{"Accessories", "Devices", "Phone", "Subscriptions"}},
	{"Toiletries", []string{"Bath", "Skincare", "Beauty"}},
	{"Travel", []string{"Flights", "Hotels", "Activities", "Food", "Car", "Taxi", "Visa"}},
	{models.RecurringCategoryName, []string{"Rent"}},
}

// categoryService handles category-related business logic.
type categoryService struct {
	db           *gorm.DB
	reassignment ReassignmentServicer
}

// NewCategoryService creates a new CategoryServicer.
func NewCategoryService(db *gorm.DB, reassignment ReassignmentServicer) CategoryServicer {
	return &categoryService{db: db, reassignment: reassignment}
}

// validateCategoryName trims name and rejects empty or reserved names.
func validateCategoryName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", apperrors.WithMessage(apperrors.ErrInvalidInput, "category name is required")
	}
	// "budget" is the overview's ceiling key; "Uncategorized" is the deletion sentinel.
	if strings.EqualFold(name, overview.BudgetKey) || strings.EqualFold(name, models.UncategorizedName) {
		return "", apperrors.WithMessage(apperrors.ErrInvalidInput, "category name is reserved")
	}
	return name, nil
}

// CreateCategory creates a new category
func (s *categoryService) CreateCategory(userID, name string) (*models.Category, error) {
	name, err := validateCategoryName(name)
	if err != nil {
		return nil, err
	}

	// Check if a category with the same name already exists for this user
	var count int64
	if err := s.db.Model(&models.Category{}).
		Where("user_id = ? AND name = ?", userID, name).
		Count(&count).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return nil, apperrors.ErrDuplicateCategory
	}

	category := &models.Category{UserID: userID, Name: name}
	if err := s.db.Create(category).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return category, nil
}

// GetUserCategories retrieves a paginated list of categories for a user,
// each with its subcategories.
func (s *categoryService) GetUserCategories(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Category], error) {
	page.Defaults()

	var totalItems int64
	base := s.db.Model(&models.Category{}).Where("user_id = ?", userID).Session(&gorm.Session{})
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var categories []models.Category
	if err := base.
		Preload("Subcategories", func(db *gorm.DB) *gorm.DB { return db.Order("name ASC") }).
		Order("name ASC").
		Scopes(pagination.Paginate(page)).
		Find(&categories).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(categories, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetCategoryByID retrieves a category by ID for a specific user
func (s *categoryService) GetCategoryByID(userID, categoryID string) (*models.Category, error) {
	var category models.Category
	if err := s.db.Preload("Subcategories").
		Where("id = ? AND user_id = ?", categoryID, userID).
		First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCategoryNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &category, nil
}

// UpdateCategory renames a category
func (s *categoryService) UpdateCategory(userID, categoryID, name string) (*models.Category, error) {
	category, err := s.GetCategoryByID(userID, categoryID)
	if err != nil {
		return nil, err
	}
	if category.Name == models.UncategorizedName {
		return nil, apperrors.WithMessage(apperrors.ErrProtectedCategory, "this category cannot be renamed")
	}

	name, err = validateCategoryName(name)
	if err != nil {
		return nil, err
	}
	if name == category.Name {
		return category, nil
	}

	var count int64
	if err := s.db.Model(&models.Category{}).
		Where("user_id = ? AND name = ? AND id <> ?", userID, name, categoryID).
		Count(&count).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return nil, apperrors.ErrDuplicateCategory
	}

	if err := s.db.Model(category).Update("name", name).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return category, nil
}

// DeleteCategory reassigns everything filed under the category to
// "Uncategorized" and deletes it together with its subcategories. Either
// all of it happens or none of it.
func (s *categoryService) DeleteCategory(userID, categoryID string) (*ReassignmentResult, error) {
	var result *ReassignmentResult

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var category models.Category
		if err := tx.Where("id = ? AND user_id = ?", categoryID, userID).First(&category).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrCategoryNotFound
			}
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if category.Name == models.UncategorizedName {
			return apperrors.ErrProtectedCategory
		}

		moved, err := s.reassignment.ReassignCategory(tx, userID, &category)
		if err != nil {
			return err
		}

		if err := tx.Delete(&category).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		result = moved
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// SeedDefaults creates the default category tree for a user. Existing
// categories and subcategories are left alone.
func (s *categoryService) SeedDefaults(userID string) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		for _, def := range defaultCategories {
			var category models.Category
			if err := tx.Where(models.Category{UserID: userID, Name: def.Name}).
				FirstOrCreate(&category).Error; err != nil {
				return err
			}
			for _, name := range def.Subcategories {
				var subcategory models.Subcategory
				if err := tx.Where(models.Subcategory{UserID: userID, CategoryID: category.ID, Name: name}).
					FirstOrCreate(&subcategory).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	logger.Get().Infow("seeded default categories", "user_id", userID, "categories", len(defaultCategories))
	return nil
}

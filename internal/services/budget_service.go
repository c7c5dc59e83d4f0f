package services

import (
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "pennywise/internal/errors"
	"pennywise/internal/models"
	"pennywise/internal/pagination"
)

// BudgetProgress reports canonical spending against a budget's ceiling.
type BudgetProgress struct {
	BudgetID   string          `json:"budget_id"`
	Budgeted   decimal.Decimal `json:"budgeted"`
	Spent      decimal.Decimal `json:"spent"`
	Remaining  decimal.Decimal `json:"remaining"`
	Percentage float64         `json:"percentage"`
}

// budgetService handles budget-related business logic.
type budgetService struct {
	db *gorm.DB
}

// NewBudgetService creates a new BudgetServicer.
func NewBudgetService(db *gorm.DB) BudgetServicer {
	return &budgetService{db: db}
}

// CreateBudget creates a new budget over an inclusive date range.
func (s *budgetService) CreateBudget(userID string, input BudgetInput) (*models.Budget, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "budget name is required")
	}

	start, end := models.DateOnly(input.StartDate), models.DateOnly(input.EndDate)
	if start.After(end) {
		return nil, apperrors.ErrInvalidDateRange
	}

	limit := models.DefaultBudgetLimit
	if input.TotalLimit != nil {
		limit = input.TotalLimit.Round(2)
	}
	if limit.IsNegative() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "total_limit must not be negative")
	}

	budget := &models.Budget{
		UserID:     userID,
		Name:       name,
		TotalLimit: limit,
		StartDate:  start,
		EndDate:    end,
	}

	if err := s.db.Create(budget).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return budget, nil
}

// GetUserBudgets returns a paginated list of budgets for the user, newest first.
func (s *budgetService) GetUserBudgets(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Budget], error) {
	page.Defaults()

	base := s.db.Model(&models.Budget{}).Where("user_id = ?", userID).Session(&gorm.Session{})

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var budgets []models.Budget
	if err := base.Order("start_date DESC").Scopes(pagination.Paginate(page)).Find(&budgets).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(budgets, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetBudgetByID returns a budget by ID if it belongs to the user.
func (s *budgetService) GetBudgetByID(userID, budgetID string) (*models.Budget, error) {
	return findBudget(s.db, userID, budgetID)
}

// UpdateBudget updates an existing budget's fields. Transactions already
// attached to the budget are not re-checked against a new range.
func (s *budgetService) UpdateBudget(userID, budgetID string, update BudgetUpdate) (*models.Budget, error) {
	budget, err := findBudget(s.db, userID, budgetID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if update.Name != nil {
		name := strings.TrimSpace(*update.Name)
		if name == "" {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "budget name is required")
		}
		updates["name"] = name
	}
	if update.TotalLimit != nil {
		if update.TotalLimit.IsNegative() {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "total_limit must not be negative")
		}
		updates["total_limit"] = update.TotalLimit.Round(2)
	}

	start, end := budget.StartDate, budget.EndDate
	if update.StartDate != nil {
		start = models.DateOnly(*update.StartDate)
		updates["start_date"] = start
	}
	if update.EndDate != nil {
		end = models.DateOnly(*update.EndDate)
		updates["end_date"] = end
	}
	if start.After(end) {
		return nil, apperrors.ErrInvalidDateRange
	}

	if len(updates) > 0 {
		if err := s.db.Model(budget).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	return budget, nil
}

// DeleteBudget deletes a budget and detaches its transactions.
func (s *budgetService) DeleteBudget(userID, budgetID string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		budget, err := findBudget(tx, userID, budgetID)
		if err != nil {
			return err
		}

		if err := tx.Model(&models.Transaction{}).
			Where("user_id = ? AND budget_id = ?", userID, budget.ID).
			Update("budget_id", nil).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		if err := tx.Delete(budget).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
}

// GetBudgetProgress sums the canonical amounts of the user's transactions
// dated within the budget's range.
func (s *budgetService) GetBudgetProgress(userID, budgetID string) (*BudgetProgress, error) {
	budget, err := findBudget(s.db, userID, budgetID)
	if err != nil {
		return nil, err
	}

	var amounts []decimal.Decimal
	if err := s.db.Model(&models.Transaction{}).
		Where("user_id = ? AND date >= ? AND date <= ?", userID, models.DateOnly(budget.StartDate), models.DateOnly(budget.EndDate)).
		Pluck("canonical_amount", &amounts).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	spent := decimal.Zero
	for _, a := range amounts {
		spent = spent.Add(a)
	}

	var percentage float64
	if budget.TotalLimit.IsPositive() {
		percentage = spent.Div(budget.TotalLimit).Mul(decimal.NewFromInt(100)).Round(2).InexactFloat64()
	}

	return &BudgetProgress{
		BudgetID:   budget.ID,
		Budgeted:   budget.TotalLimit,
		Spent:      spent,
		Remaining:  budget.TotalLimit.Sub(spent),
		Percentage: percentage,
	}, nil
}

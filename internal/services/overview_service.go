package services

import (
	"context"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	apperrors "pennywise/internal/errors"
	"pennywise/internal/models"
	"pennywise/internal/overview"
)

// overviewService loads a user's transactions and budgets and aggregates
// them by month.
type overviewService struct {
	db *gorm.DB
}

// NewOverviewService creates a new OverviewServicer.
func NewOverviewService(db *gorm.DB) OverviewServicer {
	return &overviewService{db: db}
}

// GetOverview builds the monthly overview for the user.
func (s *overviewService) GetOverview(ctx context.Context, userID string) (*overview.Overview, error) {
	var (
		transactions []models.Transaction
		budgets      []models.Budget
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.db.WithContext(gctx).
			Preload("Category").Preload("Subcategory").
			Where("user_id = ?", userID).
			Find(&transactions).Error
	})
	g.Go(func() error {
		return s.db.WithContext(gctx).
			Where("user_id = ?", userID).
			Find(&budgets).Error
	})
	if err := g.Wait(); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	rows := make([]overview.Transaction, 0, len(transactions))
	for _, t := range transactions {
		row := overview.Transaction{Date: t.Date, Amount: t.CanonicalAmount}
		if t.Category != nil {
			row.Category = t.Category.Name
		}
		if t.Subcategory != nil {
			row.Subcategory = t.Subcategory.Name
		}
		rows = append(rows, row)
	}

	limits := make([]overview.Budget, 0, len(budgets))
	for _, b := range budgets {
		limits = append(limits, overview.Budget{StartDate: b.StartDate, Limit: b.TotalLimit})
	}

	result := overview.Aggregate(rows, limits)
	return &result, nil
}

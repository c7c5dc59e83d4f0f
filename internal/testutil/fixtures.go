package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"pennywise/internal/models"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// Date returns midnight UTC of the given calendar day.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// CreateTestUser creates a user with a hashed password and unique email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	email := fmt.Sprintf("user%d@test.com", nextID())
	return CreateTestUserWithEmail(t, db, email)
}

// CreateTestUserWithEmail creates a user with the given email and the
// password "password123".
func CreateTestUserWithEmail(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Email:    email,
		Password: string(hash),
		IsActive: true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestCategory creates a category with a unique name.
func CreateTestCategory(t *testing.T, db *gorm.DB, userID string) *models.Category {
	t.Helper()
	return CreateTestCategoryNamed(t, db, userID, fmt.Sprintf("Category %d", nextID()))
}

// CreateTestCategoryNamed creates a category with the given name.
func CreateTestCategoryNamed(t *testing.T, db *gorm.DB, userID, name string) *models.Category {
	t.Helper()

	category := &models.Category{UserID: userID, Name: name}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("failed to create test category: %v", err)
	}
	return category
}

// CreateTestSubcategory creates a subcategory with a unique name.
func CreateTestSubcategory(t *testing.T, db *gorm.DB, userID, categoryID string) *models.Subcategory {
	t.Helper()
	return CreateTestSubcategoryNamed(t, db, userID, categoryID, fmt.Sprintf("Subcategory %d", nextID()))
}

// CreateTestSubcategoryNamed creates a subcategory with the given name.
func CreateTestSubcategoryNamed(t *testing.T, db *gorm.DB, userID, categoryID, name string) *models.Subcategory {
	t.Helper()

	subcategory := &models.Subcategory{UserID: userID, CategoryID: categoryID, Name: name}
	if err := db.Create(subcategory).Error; err != nil {
		t.Fatalf("failed to create test subcategory: %v", err)
	}
	return subcategory
}

// CreateTestBudget creates a 5000.00 budget covering start..end.
func CreateTestBudget(t *testing.T, db *gorm.DB, userID string, start, end time.Time) *models.Budget {
	t.Helper()

	budget := &models.Budget{
		UserID:     userID,
		Name:       fmt.Sprintf("Budget %d", nextID()),
		TotalLimit: models.DefaultBudgetLimit,
		StartDate:  models.DateOnly(start),
		EndDate:    models.DateOnly(end),
	}
	if err := db.Create(budget).Error; err != nil {
		t.Fatalf("failed to create test budget: %v", err)
	}
	return budget
}

// CreateTestTransaction creates a USD transaction whose canonical amount
// equals its amount.
func CreateTestTransaction(t *testing.T, db *gorm.DB, userID string, subcategory *models.Subcategory, amount string, date time.Time) *models.Transaction {
	t.Helper()

	value := decimal.RequireFromString(amount)
	transaction := &models.Transaction{
		UserID:          userID,
		CategoryID:      subcategory.CategoryID,
		SubcategoryID:   subcategory.ID,
		Amount:          value,
		Currency:        "USD",
		CanonicalAmount: value,
		Description:     fmt.Sprintf("Transaction %d", nextID()),
		Date:            models.DateOnly(date),
	}
	if err := db.Create(transaction).Error; err != nil {
		t.Fatalf("failed to create test transaction: %v", err)
	}
	return transaction
}

// CreateTestRecurring creates an active monthly rule without instances.
func CreateTestRecurring(t *testing.T, db *gorm.DB, userID string, subcategory *models.Subcategory, start, end time.Time) *models.RecurringTransaction {
	t.Helper()

	rule := &models.RecurringTransaction{
		UserID:        userID,
		CategoryID:    subcategory.CategoryID,
		SubcategoryID: subcategory.ID,
		Amount:        decimal.NewFromInt(100),
		Currency:      "USD",
		StartDate:     models.DateOnly(start),
		EndDate:       models.DateOnly(end),
		Frequency:     models.FrequencyMonthly,
		DayOfMonth:    start.Day(),
		IsActive:      true,
	}
	if err := db.Create(rule).Error; err != nil {
		t.Fatalf("failed to create test recurring transaction: %v", err)
	}
	return rule
}

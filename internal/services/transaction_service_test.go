package services

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"pennywise/internal/currency"
	"pennywise/internal/models"
	"pennywise/internal/pagination"
	"pennywise/internal/testutil"
)

// countingNormalizer wraps the static-table converter and counts conversions.
type countingNormalizer struct {
	*currency.Converter
	calls int
}

func (c *countingNormalizer) Normalize(ctx context.Context, amount decimal.Decimal, code string) (decimal.Decimal, error) {
	c.calls++
	return c.Converter.Normalize(ctx, amount, code)
}

func newStaticNormalizer() *countingNormalizer {
	return &countingNormalizer{Converter: currency.NewConverter("USD", nil)}
}

type transactionFixture struct {
	db   *gorm.DB
	svc  TransactionServicer
	fx   *countingNormalizer
	user *models.User
	cat  *models.Category
	sub  *models.Subcategory
}

func setupTransactionFixture(t *testing.T) *transactionFixture {
	t.Helper()
	db := testutil.SetupTestDB(t)
	fx := newStaticNormalizer()
	user := testutil.CreateTestUser(t, db)
	cat := testutil.CreateTestCategoryNamed(t, db, user.ID, "Food")
	sub := testutil.CreateTestSubcategoryNamed(t, db, user.ID, cat.ID, "Groceries")
	return &transactionFixture{
		db:   db,
		svc:  NewTransactionService(db, fx),
		fx:   fx,
		user: user,
		cat:  cat,
		sub:  sub,
	}
}

func (f *transactionFixture) input(amount, code string) TransactionInput {
	return TransactionInput{
		CategoryID:    f.cat.ID,
		SubcategoryID: f.sub.ID,
		Amount:        amount,
		Currency:      code,
		Description:   "Weekly shop",
		Date:          testutil.Date(2025, 1, 15),
	}
}

func (f *transactionFixture) count(t *testing.T) int64 {
	t.Helper()
	var n int64
	testutil.AssertNoError(t, f.db.Model(&models.Transaction{}).Count(&n).Error)
	return n
}

func TestCreateTransaction(t *testing.T) {
	t.Run("canonical_currency_unchanged", func(t *testing.T) {
		f := setupTransactionFixture(t)
		defer testutil.TeardownTestDB(t, f.db)

		tx, err := f.svc.CreateTransaction(context.Background(), f.user.ID, f.input("42.50", "USD"))
		testutil.AssertNoError(t, err)

		if !tx.CanonicalAmount.Equal(tx.Amount) || !tx.Amount.Equal(decimal.RequireFromString("42.5")) {
			t.Errorf("expected canonical == amount == 42.50, got %s / %s", tx.CanonicalAmount, tx.Amount)
		}
		if tx.Currency != "USD" {
			t.Errorf("expected USD, got %s", tx.Currency)
		}
	})

	t.Run("expression_amount", func(t *testing.T) {
		f := setupTransactionFixture(t)
		defer testutil.TeardownTestDB(t, f.db)

		tx, err := f.svc.CreateTransaction(context.Background(), f.user.ID, f.input("10+20.10", ""))
		testutil.AssertNoError(t, err)

		testutil.AssertAmount(t, tx.Amount, "30.10")
		if tx.Currency != "USD" {
			t.Errorf("expected empty currency to default to USD, got %s", tx.Currency)
		}
	})

	t.Run("converted_with_fallback_rate", func(t *testing.T) {
		f := setupTransactionFixture(t)
		defer testutil.TeardownTestDB(t, f.db)

		tx, err := f.svc.CreateTransaction(context.Background(), f.user.ID, f.input("100", "eur"))
		testutil.AssertNoError(t, err)

		if tx.Currency != "EUR" {
			t.Errorf("expected EUR, got %s", tx.Currency)
		}
		testutil.AssertAmount(t, tx.CanonicalAmount, "103.00")
	})

	t.Run("invalid_expression_creates_nothing", func(t *testing.T) {
		f := setupTransactionFixture(t)
		defer testutil.TeardownTestDB(t, f.db)

		_, err := f.svc.CreateTransaction(context.Background(), f.user.ID, f.input("invalid_expression", "USD"))
		testutil.AssertAppError(t, err, "INVALID_EXPRESSION")

		if n := f.count(t); n != 0 {
			t.Errorf("expected no transactions, got %d", n)
		}
		if f.fx.calls != 0 {
			t.Errorf("expected no conversion for an invalid amount, got %d calls", f.fx.calls)
		}
	})

	t.Run("unsupported_currency", func(t *testing.T) {
		f := setupTransactionFixture(t)
		defer testutil.TeardownTestDB(t, f.db)

		for _, code := range []string{"XYZ", "US", "THB"} {
			_, err := f.svc.CreateTransaction(context.Background(), f.user.ID, f.input("10", code))
			testutil.AssertAppError(t, err, "UNSUPPORTED_CURRENCY")
		}
		if n := f.count(t); n != 0 {
			t.Errorf("expected no transactions, got %d", n)
		}
	})

	t.Run("subcategory_mismatch", func(t *testing.T) {
		f := setupTransactionFixture(t)
		defer testutil.TeardownTestDB(t, f.db)
		otherCat := testutil.CreateTestCategory(t, f.db, f.user.ID)

		in := f.input("10", "USD")
		in.CategoryID = otherCat.ID
		_, err := f.svc.CreateTransaction(context.Background(), f.user.ID, in)
		testutil.AssertAppError(t, err, "SUBCATEGORY_MISMATCH")
	})

	t.Run("missing_subcategory", func(t *testing.T) {
		f := setupTransactionFixture(t)
		defer testutil.TeardownTestDB(t, f.db)

		in := f.input("10", "USD")
		in.SubcategoryID = ""
		_, err := f.svc.CreateTransaction(context.Background(), f.user.ID, in)
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("category_of_other_user", func(t *testing.T) {
		f := setupTransactionFixture(t)
		defer testutil.TeardownTestDB(t, f.db)
		other := testutil.CreateTestUser(t, f.db)

		_, err := f.svc.CreateTransaction(context.Background(), other.ID, f.input("10", "USD"))
		testutil.AssertAppError(t, err, "CATEGORY_NOT_FOUND")
	})

	t.Run("within_budget", func(t *testing.T) {
		f := setupTransactionFixture(t)
		defer testutil.TeardownTestDB(t, f.db)
		budget := testutil.CreateTestBudget(t, f.db, f.user.ID, testutil.Date(2025, 1, 1), testutil.Date(2025, 1, 31))

		in := f.input("10", "USD")
		in.BudgetID = &budget.ID
		tx, err := f.svc.CreateTransaction(context.Background(), f.user.ID, in)
		testutil.AssertNoError(t, err)
		if tx.BudgetID == nil || *tx.BudgetID != budget.ID {
			t.Errorf("expected budget %s, got %v", budget.ID, tx.BudgetID)
		}
	})

	t.Run("date_outside_budget_creates_nothing", func(t *testing.T) {
		f := setupTransactionFixture(t)
		defer testutil.TeardownTestDB(t, f.db)
		budget := testutil.CreateTestBudget(t, f.db, f.user.ID, testutil.Date(2025, 2, 1), testutil.Date(2025, 2, 28))

		in := f.input("10", "USD")
		in.BudgetID = &budget.ID
		_, err := f.svc.CreateTransaction(context.Background(), f.user.ID, in)
		testutil.AssertAppError(t, err, "DATE_OUTSIDE_BUDGET")

		if n := f.count(t); n != 0 {
			t.Errorf("expected no transactions, got %d", n)
		}
	})

	t.Run("budget_of_other_user", func(t *testing.T) {
		f := setupTransactionFixture(t)
		defer testutil.TeardownTestDB(t, f.db)
		other := testutil.CreateTestUser(t, f.db)
		budget := testutil.CreateTestBudget(t, f.db, other.ID, testutil.Date(2025, 1, 1), testutil.Date(2025, 1, 31))

		in := f.input("10", "USD")
		in.BudgetID = &budget.ID
		_, err := f.svc.CreateTransaction(context.Background(), f.user.ID, in)
		testutil.AssertAppError(t, err, "BUDGET_NOT_FOUND")
	})
}

func TestGetUserTransactions(t *testing.T) {
	f := setupTransactionFixture(t)
	defer testutil.TeardownTestDB(t, f.db)

	car := testutil.CreateTestCategoryNamed(t, f.db, f.user.ID, "Car")
	gas := testutil.CreateTestSubcategoryNamed(t, f.db, f.user.ID, car.ID, "Gas")

	testutil.CreateTestTransaction(t, f.db, f.user.ID, f.sub, "10", testutil.Date(2025, 1, 5))
	latest := testutil.CreateTestTransaction(t, f.db, f.user.ID, f.sub, "20", testutil.Date(2025, 2, 5))
	testutil.CreateTestTransaction(t, f.db, f.user.ID, gas, "30", testutil.Date(2025, 1, 20))

	all, err := f.svc.GetUserTransactions(f.user.ID, pagination.PageRequest{}, TransactionFilter{})
	testutil.AssertNoError(t, err)
	if all.TotalItems != 3 {
		t.Fatalf("expected 3 transactions, got %d", all.TotalItems)
	}
	if all.Data[0].ID != latest.ID {
		t.Error("expected newest transaction first")
	}
	if all.Data[0].Category == nil || all.Data[0].Category.Name != "Food" {
		t.Error("expected category to be preloaded")
	}

	from, to := testutil.Date(2025, 1, 1), testutil.Date(2025, 1, 31)
	january, err := f.svc.GetUserTransactions(f.user.ID, pagination.PageRequest{}, TransactionFilter{FromDate: &from, ToDate: &to})
	testutil.AssertNoError(t, err)
	if january.TotalItems != 2 {
		t.Errorf("expected 2 January transactions, got %d", january.TotalItems)
	}

	byCategory, err := f.svc.GetUserTransactions(f.user.ID, pagination.PageRequest{}, TransactionFilter{CategoryID: &car.ID})
	testutil.AssertNoError(t, err)
	if byCategory.TotalItems != 1 {
		t.Errorf("expected 1 Car transaction, got %d", byCategory.TotalItems)
	}

	empty, err := f.svc.GetUserTransactions(f.user.ID, pagination.PageRequest{}, TransactionFilter{FromDate: &to, ToDate: &to})
	testutil.AssertNoError(t, err)
	if empty.TotalItems != 0 || empty.Data == nil {
		t.Errorf("expected an empty, non-nil page, got %+v", empty)
	}

	_, err = f.svc.GetUserTransactions(f.user.ID, pagination.PageRequest{}, TransactionFilter{FromDate: &to, ToDate: &from})
	testutil.AssertAppError(t, err, "INVALID_DATE_RANGE")
}

func TestUpdateTransaction(t *testing.T) {
	t.Run("description_only_skips_conversion", func(t *testing.T) {
		f := setupTransactionFixture(t)
		defer testutil.TeardownTestDB(t, f.db)
		tx, err := f.svc.CreateTransaction(context.Background(), f.user.ID, f.input("100", "EUR"))
		testutil.AssertNoError(t, err)
		f.fx.calls = 0

		desc := "Updated"
		updated, err := f.svc.UpdateTransaction(context.Background(), f.user.ID, tx.ID, TransactionUpdate{Description: &desc})
		testutil.AssertNoError(t, err)

		if updated.Description != "Updated" || !updated.CanonicalAmount.Equal(decimal.NewFromInt(103)) {
			t.Errorf("unexpected transaction %+v", updated)
		}
		if f.fx.calls != 0 {
			t.Errorf("expected no conversion, got %d calls", f.fx.calls)
		}
	})

	t.Run("currency_change_renormalizes", func(t *testing.T) {
		f := setupTransactionFixture(t)
		defer testutil.TeardownTestDB(t, f.db)
		tx, err := f.svc.CreateTransaction(context.Background(), f.user.ID, f.input("100", "USD"))
		testutil.AssertNoError(t, err)

		code := "GBP"
		updated, err := f.svc.UpdateTransaction(context.Background(), f.user.ID, tx.ID, TransactionUpdate{Currency: &code})
		testutil.AssertNoError(t, err)

		if updated.Currency != "GBP" || !updated.CanonicalAmount.Equal(decimal.NewFromInt(122)) {
			t.Errorf("expected 122.00 USD from 100 GBP, got %s %s", updated.Currency, updated.CanonicalAmount)
		}
	})

	t.Run("amount_expression", func(t *testing.T) {
		f := setupTransactionFixture(t)
		defer testutil.TeardownTestDB(t, f.db)
		tx, err := f.svc.CreateTransaction(context.Background(), f.user.ID, f.input("100", "USD"))
		testutil.AssertNoError(t, err)

		expr := "(2+3)*4"
		updated, err := f.svc.UpdateTransaction(context.Background(), f.user.ID, tx.ID, TransactionUpdate{Amount: &expr})
		testutil.AssertNoError(t, err)
		if !updated.Amount.Equal(decimal.NewFromInt(20)) || !updated.CanonicalAmount.Equal(decimal.NewFromInt(20)) {
			t.Errorf("expected 20, got %s / %s", updated.Amount, updated.CanonicalAmount)
		}

		bad := "1/0"
		_, err = f.svc.UpdateTransaction(context.Background(), f.user.ID, tx.ID, TransactionUpdate{Amount: &bad})
		testutil.AssertAppError(t, err, "INVALID_EXPRESSION")
	})

	t.Run("move_date_outside_budget", func(t *testing.T) {
		f := setupTransactionFixture(t)
		defer testutil.TeardownTestDB(t, f.db)
		budget := testutil.CreateTestBudget(t, f.db, f.user.ID, testutil.Date(2025, 1, 1), testutil.Date(2025, 1, 31))
		in := f.input("10", "USD")
		in.BudgetID = &budget.ID
		tx, err := f.svc.CreateTransaction(context.Background(), f.user.ID, in)
		testutil.AssertNoError(t, err)

		date := testutil.Date(2025, 3, 1)
		_, err = f.svc.UpdateTransaction(context.Background(), f.user.ID, tx.ID, TransactionUpdate{Date: &date})
		testutil.AssertAppError(t, err, "DATE_OUTSIDE_BUDGET")

		updated, err := f.svc.UpdateTransaction(context.Background(), f.user.ID, tx.ID, TransactionUpdate{Date: &date, ClearBudget: true})
		testutil.AssertNoError(t, err)
		if updated.BudgetID != nil || !updated.Date.Equal(date) {
			t.Errorf("expected detached transaction on %v, got %+v", date, updated)
		}
	})

	t.Run("not_found", func(t *testing.T) {
		f := setupTransactionFixture(t)
		defer testutil.TeardownTestDB(t, f.db)

		_, err := f.svc.UpdateTransaction(context.Background(), f.user.ID, "0190c0de-0000-7000-8000-0000000099ff", TransactionUpdate{})
		testutil.AssertAppError(t, err, "TRANSACTION_NOT_FOUND")
	})
}

func TestDeleteTransaction(t *testing.T) {
	f := setupTransactionFixture(t)
	defer testutil.TeardownTestDB(t, f.db)
	other := testutil.CreateTestUser(t, f.db)
	tx := testutil.CreateTestTransaction(t, f.db, f.user.ID, f.sub, "10", time.Now())

	err := f.svc.DeleteTransaction(other.ID, tx.ID)
	testutil.AssertAppError(t, err, "TRANSACTION_NOT_FOUND")

	testutil.AssertNoError(t, f.svc.DeleteTransaction(f.user.ID, tx.ID))

	_, err = f.svc.GetTransactionByID(f.user.ID, tx.ID)
	testutil.AssertAppError(t, err, "TRANSACTION_NOT_FOUND")
}

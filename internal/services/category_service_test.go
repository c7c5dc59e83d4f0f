package services

import (
	"errors"
	"testing"
	"time"

	"gorm.io/gorm"

	"pennywise/internal/models"
	"pennywise/internal/pagination"
	"pennywise/internal/testutil"
)

func newCategoryService(db *gorm.DB) CategoryServicer {
	return NewCategoryService(db, NewReassignmentService())
}

func TestCreateCategory(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newCategoryService(db)
		user := testutil.CreateTestUser(t, db)

		cat, err := svc.CreateCategory(user.ID, "  Groceries ")
		testutil.AssertNoError(t, err)

		if cat.ID == "" {
			t.Fatal("expected a category ID")
		}
		if cat.Name != "Groceries" {
			t.Errorf("expected name Groceries, got %q", cat.Name)
		}
		if cat.UserID != user.ID {
			t.Errorf("expected owner %s, got %s", user.ID, cat.UserID)
		}
	})

	t.Run("duplicate_name", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newCategoryService(db)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.CreateCategory(user.ID, "Food")
		testutil.AssertNoError(t, err)

		_, err = svc.CreateCategory(user.ID, "Food")
		testutil.AssertAppError(t, err, "DUPLICATE_CATEGORY")
	})

	t.Run("same_name_other_user", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newCategoryService(db)
		user1 := testutil.CreateTestUser(t, db)
		user2 := testutil.CreateTestUser(t, db)

		_, err := svc.CreateCategory(user1.ID, "Food")
		testutil.AssertNoError(t, err)
		_, err = svc.CreateCategory(user2.ID, "Food")
		testutil.AssertNoError(t, err)
	})

	t.Run("empty_name", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newCategoryService(db)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.CreateCategory(user.ID, "   ")
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("reserved_name", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newCategoryService(db)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.CreateCategory(user.ID, "Budget")
		testutil.AssertAppError(t, err, "INVALID_INPUT")

		_, err = svc.CreateCategory(user.ID, "Uncategorized")
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})
}

func TestGetUserCategories(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := newCategoryService(db)
	user := testutil.CreateTestUser(t, db)
	other := testutil.CreateTestUser(t, db)

	food := testutil.CreateTestCategoryNamed(t, db, user.ID, "Food")
	testutil.CreateTestSubcategoryNamed(t, db, user.ID, food.ID, "Restaurants")
	testutil.CreateTestSubcategoryNamed(t, db, user.ID, food.ID, "Groceries")
	testutil.CreateTestCategoryNamed(t, db, user.ID, "Car")
	testutil.CreateTestCategoryNamed(t, db, other.ID, "Hidden")

	result, err := svc.GetUserCategories(user.ID, pagination.PageRequest{})
	testutil.AssertNoError(t, err)

	if result.TotalItems != 2 || len(result.Data) != 2 {
		t.Fatalf("expected 2 categories, got %d (%d items)", result.TotalItems, len(result.Data))
	}
	if result.Data[0].Name != "Car" || result.Data[1].Name != "Food" {
		t.Errorf("expected categories ordered by name, got %s, %s", result.Data[0].Name, result.Data[1].Name)
	}
	subs := result.Data[1].Subcategories
	if len(subs) != 2 || subs[0].Name != "Groceries" {
		t.Errorf("expected preloaded subcategories ordered by name, got %+v", subs)
	}

	paged, err := svc.GetUserCategories(user.ID, pagination.PageRequest{Page: 2, PageSize: 1})
	testutil.AssertNoError(t, err)
	if len(paged.Data) != 1 || paged.Data[0].Name != "Food" || paged.TotalPages != 2 {
		t.Errorf("unexpected second page %+v", paged)
	}
}

func TestUpdateCategory(t *testing.T) {
	t.Run("rename", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newCategoryService(db)
		user := testutil.CreateTestUser(t, db)
		cat := testutil.CreateTestCategoryNamed(t, db, user.ID, "Food")

		updated, err := svc.UpdateCategory(user.ID, cat.ID, "Dining")
		testutil.AssertNoError(t, err)
		if updated.Name != "Dining" {
			t.Errorf("expected Dining, got %s", updated.Name)
		}
	})

	t.Run("duplicate_name", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newCategoryService(db)
		user := testutil.CreateTestUser(t, db)
		testutil.CreateTestCategoryNamed(t, db, user.ID, "Food")
		cat := testutil.CreateTestCategoryNamed(t, db, user.ID, "Car")

		_, err := svc.UpdateCategory(user.ID, cat.ID, "Food")
		testutil.AssertAppError(t, err, "DUPLICATE_CATEGORY")
	})

	t.Run("sentinel_is_protected", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newCategoryService(db)
		user := testutil.CreateTestUser(t, db)
		cat := testutil.CreateTestCategoryNamed(t, db, user.ID, models.UncategorizedName)

		_, err := svc.UpdateCategory(user.ID, cat.ID, "Other")
		testutil.AssertAppError(t, err, "PROTECTED_CATEGORY")
	})

	t.Run("cannot_rename_to_sentinel", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newCategoryService(db)
		user := testutil.CreateTestUser(t, db)
		cat := testutil.CreateTestCategoryNamed(t, db, user.ID, "Food")

		_, err := svc.UpdateCategory(user.ID, cat.ID, "uncategorized")
		testutil.AssertAppError(t, err, "INVALID_INPUT")

		var stored models.Category
		testutil.AssertNoError(t, db.First(&stored, "id = ?", cat.ID).Error)
		if stored.Name != "Food" {
			t.Errorf("expected name unchanged, got %s", stored.Name)
		}
	})

	t.Run("wrong_user", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newCategoryService(db)
		owner := testutil.CreateTestUser(t, db)
		other := testutil.CreateTestUser(t, db)
		cat := testutil.CreateTestCategory(t, db, owner.ID)

		_, err := svc.UpdateCategory(other.ID, cat.ID, "Mine")
		testutil.AssertAppError(t, err, "CATEGORY_NOT_FOUND")
	})
}

func TestDeleteCategory(t *testing.T) {
	t.Run("reassigns_to_uncategorized", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newCategoryService(db)
		user := testutil.CreateTestUser(t, db)

		cat := testutil.CreateTestCategoryNamed(t, db, user.ID, "Food")
		sub := testutil.CreateTestSubcategoryNamed(t, db, user.ID, cat.ID, "Groceries")
		t1 := testutil.CreateTestTransaction(t, db, user.ID, sub, "10", time.Now())
		t2 := testutil.CreateTestTransaction(t, db, user.ID, sub, "20", time.Now())
		rule := testutil.CreateTestRecurring(t, db, user.ID, sub, testutil.Date(2025, 1, 1), testutil.Date(2025, 12, 31))

		result, err := svc.DeleteCategory(user.ID, cat.ID)
		testutil.AssertNoError(t, err)

		if result.Transactions != 2 || result.RecurringTransactions != 1 || result.DeletedSubcategories != 1 {
			t.Errorf("unexpected result %+v", result)
		}

		var uncategorized models.Category
		if err := db.Where("user_id = ? AND name = ?", user.ID, models.UncategorizedName).First(&uncategorized).Error; err != nil {
			t.Fatalf("expected Uncategorized category: %v", err)
		}
		var sentinelSub models.Subcategory
		if err := db.Where("category_id = ? AND name = ?", uncategorized.ID, models.UncategorizedName).First(&sentinelSub).Error; err != nil {
			t.Fatalf("expected Uncategorized subcategory: %v", err)
		}

		for _, id := range []string{t1.ID, t2.ID} {
			var tx models.Transaction
			testutil.AssertNoError(t, db.First(&tx, "id = ?", id).Error)
			if tx.CategoryID != uncategorized.ID || tx.SubcategoryID != sentinelSub.ID {
				t.Errorf("transaction %s not reassigned: %+v", id, tx)
			}
		}

		var movedRule models.RecurringTransaction
		testutil.AssertNoError(t, db.First(&movedRule, "id = ?", rule.ID).Error)
		if movedRule.CategoryID != uncategorized.ID || movedRule.SubcategoryID != sentinelSub.ID {
			t.Errorf("recurring rule not reassigned: %+v", movedRule)
		}

		var count int64
		db.Model(&models.Category{}).Where("id = ?", cat.ID).Count(&count)
		if count != 0 {
			t.Error("expected category to be deleted")
		}
		db.Model(&models.Subcategory{}).Where("id = ?", sub.ID).Count(&count)
		if count != 0 {
			t.Error("expected subcategory to be deleted")
		}
	})

	t.Run("reuses_existing_sentinel", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newCategoryService(db)
		user := testutil.CreateTestUser(t, db)

		first := testutil.CreateTestCategory(t, db, user.ID)
		second := testutil.CreateTestCategory(t, db, user.ID)

		_, err := svc.DeleteCategory(user.ID, first.ID)
		testutil.AssertNoError(t, err)
		_, err = svc.DeleteCategory(user.ID, second.ID)
		testutil.AssertNoError(t, err)

		var count int64
		db.Model(&models.Category{}).Where("user_id = ? AND name = ?", user.ID, models.UncategorizedName).Count(&count)
		if count != 1 {
			t.Errorf("expected exactly one Uncategorized category, got %d", count)
		}
	})

	t.Run("sentinel_is_protected", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newCategoryService(db)
		user := testutil.CreateTestUser(t, db)
		cat := testutil.CreateTestCategoryNamed(t, db, user.ID, models.UncategorizedName)

		_, err := svc.DeleteCategory(user.ID, cat.ID)
		testutil.AssertAppError(t, err, "PROTECTED_CATEGORY")
	})

	t.Run("not_found", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newCategoryService(db)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.DeleteCategory(user.ID, "0190c0de-0000-7000-8000-0000000099ff")
		testutil.AssertAppError(t, err, "CATEGORY_NOT_FOUND")
	})

	t.Run("failure_rolls_back", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newCategoryService(db)
		user := testutil.CreateTestUser(t, db)

		cat := testutil.CreateTestCategoryNamed(t, db, user.ID, "Food")
		sub := testutil.CreateTestSubcategoryNamed(t, db, user.ID, cat.ID, "Groceries")
		t1 := testutil.CreateTestTransaction(t, db, user.ID, sub, "10", time.Now())
		t2 := testutil.CreateTestTransaction(t, db, user.ID, sub, "20", time.Now())

		// Fail the final category delete, after reassignment has run.
		err := db.Callback().Delete().Before("gorm:delete").Register("test:fail_category_delete", func(tx *gorm.DB) {
			if tx.Statement.Table == "categories" {
				_ = tx.AddError(errors.New("simulated failure"))
			}
		})
		testutil.AssertNoError(t, err)

		_, err = svc.DeleteCategory(user.ID, cat.ID)
		testutil.AssertAppError(t, err, "INTERNAL_ERROR")

		for _, id := range []string{t1.ID, t2.ID} {
			var tx models.Transaction
			testutil.AssertNoError(t, db.First(&tx, "id = ?", id).Error)
			if tx.CategoryID != cat.ID || tx.SubcategoryID != sub.ID {
				t.Errorf("transaction %s should be untouched, got %+v", id, tx)
			}
		}

		var count int64
		db.Model(&models.Subcategory{}).Where("id = ?", sub.ID).Count(&count)
		if count != 1 {
			t.Error("expected subcategory to survive the rollback")
		}
		db.Model(&models.Category{}).Where("user_id = ? AND name = ?", user.ID, models.UncategorizedName).Count(&count)
		if count != 0 {
			t.Error("expected Uncategorized creation to be rolled back")
		}
	})
}

func TestSeedDefaults(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := newCategoryService(db)
	user := testutil.CreateTestUser(t, db)

	testutil.AssertNoError(t, svc.SeedDefaults(user.ID))
	// Idempotent
	testutil.AssertNoError(t, svc.SeedDefaults(user.ID))

	var categories int64
	db.Model(&models.Category{}).Where("user_id = ?", user.ID).Count(&categories)
	if categories != int64(len(defaultCategories)) {
		t.Errorf("expected %d categories, got %d", len(defaultCategories), categories)
	}

	var rent models.Subcategory
	err := db.Joins("JOIN categories ON categories.id = subcategories.category_id").
		Where("categories.user_id = ? AND categories.name = ? AND subcategories.name = ?", user.ID, models.RecurringCategoryName, "Rent").
		First(&rent).Error
	if err != nil {
		t.Errorf("expected Recurring/Rent to be seeded: %v", err)
	}
}

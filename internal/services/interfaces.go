package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"pennywise/internal/knowledge"
	"pennywise/internal/models"
	"pennywise/internal/overview"
	"pennywise/internal/pagination"
)

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(email, password, firstName, lastName string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id string) (*models.User, error)
	VerifyPassword(user *models.User, password string) bool
	AttemptLogin(email, password string) (*models.User, error)
	StoreRefreshTokenHash(userID, tokenHash string) error
	GetRefreshTokenHash(userID string) (string, error)
}

// CurrencyNormalizer converts amounts to the canonical currency and decides
// which currency codes are accepted. *currency.Converter implements it.
type CurrencyNormalizer interface {
	Canonical() string
	Normalize(ctx context.Context, amount decimal.Decimal, code string) (decimal.Decimal, error)
	ValidateCode(ctx context.Context, code string) error
	SupportedCodes(ctx context.Context) []string
}

// CategoryServicer defines the contract for category-related business logic.
type CategoryServicer interface {
	CreateCategory(userID, name string) (*models.Category, error)
	GetUserCategories(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Category], error)
	GetCategoryByID(userID, categoryID string) (*models.Category, error)
	UpdateCategory(userID, categoryID, name string) (*models.Category, error)
	DeleteCategory(userID, categoryID string) (*ReassignmentResult, error)
	SeedDefaults(userID string) error
}

// SubcategoryServicer defines the contract for subcategory-related business logic.
type SubcategoryServicer interface {
	CreateSubcategory(userID, categoryID, name string) (*models.Subcategory, error)
	GetUserSubcategories(userID string, categoryID *string, page pagination.PageRequest) (*pagination.PageResponse[models.Subcategory], error)
	GetSubcategoryByID(userID, subcategoryID string) (*models.Subcategory, error)
	UpdateSubcategory(userID, subcategoryID, name string) (*models.Subcategory, error)
	DeleteSubcategory(userID, subcategoryID string) (*ReassignmentResult, error)
}

// ReassignmentResult reports what a category or subcategory deletion moved.
type ReassignmentResult struct {
	Transactions          int64 `json:"reassigned_transactions"`
	RecurringTransactions int64 `json:"reassigned_recurring_transactions"`
	DeletedSubcategories  int   `json:"deleted_subcategories"`
}

// ReassignmentServicer moves transactions and recurring rules off a category
// or subcategory that is about to be deleted. Every method runs on the
// caller's database transaction.
type ReassignmentServicer interface {
	EnsureUncategorized(tx *gorm.DB, userID string) (*models.Category, *models.Subcategory, error)
	ReassignCategory(tx *gorm.DB, userID string, category *models.Category) (*ReassignmentResult, error)
	ReassignSubcategory(tx *gorm.DB, userID string, subcategory *models.Subcategory) (*ReassignmentResult, error)
}

// BudgetInput holds the fields for creating a budget. A nil TotalLimit
// selects models.DefaultBudgetLimit.
type BudgetInput struct {
	Name       string
	TotalLimit *decimal.Decimal
	StartDate  time.Time
	EndDate    time.Time
}

// BudgetUpdate holds optional fields for updating a budget.
type BudgetUpdate struct {
	Name       *string
	TotalLimit *decimal.Decimal
	StartDate  *time.Time
	EndDate    *time.Time
}

// BudgetServicer defines the contract for budget-related business logic.
type BudgetServicer interface {
	CreateBudget(userID string, input BudgetInput) (*models.Budget, error)
	GetUserBudgets(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Budget], error)
	GetBudgetByID(userID, budgetID string) (*models.Budget, error)
	UpdateBudget(userID, budgetID string, update BudgetUpdate) (*models.Budget, error)
	DeleteBudget(userID, budgetID string) error
	GetBudgetProgress(userID, budgetID string) (*BudgetProgress, error)
}

// TransactionInput holds the fields for creating a transaction. Amount is a
// decimal literal or arithmetic expression; an empty Currency selects the
// canonical currency.
type TransactionInput struct {
	CategoryID    string
	SubcategoryID string
	Amount        string
	Currency      string
	Description   string
	Date          time.Time
	BudgetID      *string
}

// TransactionUpdate holds optional fields for updating a transaction.
// ClearBudget detaches the transaction from its budget.
type TransactionUpdate struct {
	CategoryID    *string
	SubcategoryID *string
	Amount        *string
	Currency      *string
	Description   *string
	Date          *time.Time
	BudgetID      *string
	ClearBudget   bool
}

// TransactionFilter holds optional filter parameters for listing transactions.
type TransactionFilter struct {
	FromDate      *time.Time
	ToDate        *time.Time
	CategoryID    *string
	SubcategoryID *string
	BudgetID      *string
}

// TransactionServicer defines the contract for transaction-related business logic.
type TransactionServicer interface {
	CreateTransaction(ctx context.Context, userID string, input TransactionInput) (*models.Transaction, error)
	GetUserTransactions(userID string, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error)
	GetTransactionByID(userID, transactionID string) (*models.Transaction, error)
	UpdateTransaction(ctx context.Context, userID, transactionID string, update TransactionUpdate) (*models.Transaction, error)
	DeleteTransaction(userID, transactionID string) error
}

// RecurringInput holds the fields for creating a recurring transaction.
type RecurringInput struct {
	CategoryID    string
	SubcategoryID string
	Amount        string
	Currency      string
	Description   string
	StartDate     time.Time
	EndDate       time.Time
	Frequency     models.Frequency
	DayOfMonth    int
}

// RecurringResult is a created rule and the number of transactions it expanded into.
type RecurringResult struct {
	RecurringTransaction *models.RecurringTransaction `json:"recurring_transaction"`
	TransactionsCreated  int                          `json:"transactions_created"`
}

// RecurringTransactionServicer defines the contract for recurring transactions.
type RecurringTransactionServicer interface {
	CreateRecurringTransaction(ctx context.Context, userID string, input RecurringInput) (*RecurringResult, error)
	GetUserRecurringTransactions(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.RecurringTransaction], error)
	GetRecurringTransactionByID(userID, recurringID string) (*models.RecurringTransaction, error)
	DeleteRecurringTransaction(userID, recurringID string) (int64, error)
}

// OverviewServicer builds the monthly overview report.
type OverviewServicer interface {
	GetOverview(ctx context.Context, userID string) (*overview.Overview, error)
}

// KnowledgeServicer answers free-form questions from the knowledge service.
// *knowledge.Client implements it.
type KnowledgeServicer interface {
	Configured() bool
	Raw(ctx context.Context, input string) (*knowledge.QueryResult, error)
	ConvertCurrency(ctx context.Context, amount, from, to string) (string, error)
	AnalyzeBudget(ctx context.Context, amount string) (string, error)
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(userID, action, resourceType, resourceID, ipAddress string, changes map[string]interface{})
}

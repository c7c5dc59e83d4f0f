package models

// Sentinel category names with special handling.
const (
	// UncategorizedName receives transactions orphaned by category deletion.
	UncategorizedName = "Uncategorized"
	// RecurringCategoryName is broken down per subcategory in the overview.
	RecurringCategoryName = "Recurring"
)

// Category groups transactions under a user-defined name.
type Category struct {
	Base
	UserID string `gorm:"type:uuid;not null;uniqueIndex:idx_categories_user_name" json:"user_id"`
	Name   string `gorm:"not null;size:100;uniqueIndex:idx_categories_user_name" json:"name"`

	Subcategories []Subcategory `gorm:"foreignKey:CategoryID;constraint:OnDelete:CASCADE" json:"subcategories,omitempty"`
}

// Subcategory is a named bucket within a Category.
type Subcategory struct {
	Base
	UserID     string `gorm:"type:uuid;not null;uniqueIndex:idx_subcategories_user_category_name" json:"user_id"`
	CategoryID string `gorm:"type:uuid;not null;index;uniqueIndex:idx_subcategories_user_category_name" json:"category_id"`
	Name       string `gorm:"not null;size:100;uniqueIndex:idx_subcategories_user_category_name" json:"name"`
}

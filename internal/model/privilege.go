package model

// Privilege represents a permission that can be assigned to users.
type Privilege struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Code string `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"` // e.g. "checkout:create"
	Name string `gorm:"type:varchar(100)" json:"name"`
}

// Default privileges for the system
var DefaultPrivileges = []Privilege{
	// User management
	{Code: "user:view", Name: "View User"},
	{Code: "user:create", Name: "Create User"},
	{Code: "user:update", Name: "Update User"},
	{Code: "user:delete", Name: "Delete User"},
	{Code: "user:update_privilege", Name: "Update User Privileges"},
	// Catalog
	{Code: "product:view", Name: "View Product"},
	{Code: "product:create", Name: "Create Product"},
	{Code: "product:update", Name: "Update Product"},
	{Code: "product:delete", Name: "Delete Product"},
	// Stock ledger
	{Code: "stock:view", Name: "View Stock Ledger"},
	{Code: "stock:adjust", Name: "Adjust Stock"},
	// Checkout
	{Code: "checkout:create", Name: "Create Sale"},
	{Code: "transaction:view", Name: "View Transaction"},
	{Code: "transaction:finalize", Name: "Finalize Payment"},
	{Code: "transaction:cancel", Name: "Cancel Transaction"},
	// Barcode pool
	{Code: "barcode:view", Name: "View Barcode Pool"},
	{Code: "barcode:generate", Name: "Generate Barcodes"},
	// Dashboard
	{Code: "dashboard:view", Name: "View Dashboard"},
}

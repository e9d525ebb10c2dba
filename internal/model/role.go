package model

// Role represents user roles in the system.
type Role struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	Code        string      `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"`
	Name        string      `gorm:"type:varchar(100)" json:"name"`
	Description string      `gorm:"type:text" json:"description"`
	Privileges  []Privilege `gorm:"many2many:role_privileges;" json:"privileges,omitempty"`
}

// Role codes as constants
const (
	RoleMasterAdmin      = "MASTER_ADMIN"
	RoleAdmin            = "ADMIN"
	RoleCashier          = "CASHIER"
	RoleInventoryManager = "INVENTORY_MANAGER"
)

// DefaultRoles defines the roles seeded at first boot.
var DefaultRoles = []Role{
	{
		Code:        RoleMasterAdmin,
		Name:        "Master Administrator",
		Description: "Full system access with all privileges",
	},
	{
		Code:        RoleAdmin,
		Name:        "Administrator",
		Description: "Store administration without user management",
	},
	{
		Code:        RoleCashier,
		Name:        "Cashier",
		Description: "Point-of-sale checkout and transaction lookup",
	},
	{
		Code:        RoleInventoryManager,
		Name:        "Inventory Manager",
		Description: "Catalog, stock and barcode pool management",
	},
}

// RolePrivilegeCodes maps each role to the privilege codes it receives when
// seeded. MASTER_ADMIN is handled separately and always gets everything.
var RolePrivilegeCodes = map[string][]string{
	RoleAdmin: {
		"product:view", "product:create", "product:update", "product:delete",
		"stock:view", "stock:adjust",
		"checkout:create", "transaction:view", "transaction:finalize", "transaction:cancel",
		"barcode:view", "barcode:generate",
		"dashboard:view",
	},
	RoleCashier: {
		"product:view",
		"checkout:create", "transaction:view", "transaction:finalize",
		"dashboard:view",
	},
	RoleInventoryManager: {
		"product:view", "product:create", "product:update",
		"stock:view", "stock:adjust",
		"barcode:view", "barcode:generate",
		"dashboard:view",
	},
}

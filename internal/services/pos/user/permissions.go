package user

import (
	"encoding/json"
	"slices"
	"strings"

	apperrors "github.com/louisbranch/postpos/internal/platform/errors"
)

// Wildcard grants every permission.
const Wildcard = "*"

// Permission names used by the point-of-sale screens.
const (
	SalesView       = "sales.view"
	SalesCreate     = "sales.create"
	SalesEdit       = "sales.edit"
	ProductsView    = "products.view"
	ProductsCreate  = "products.create"
	ProductsEdit    = "products.edit"
	ProductsDelete  = "products.delete"
	InventoryView   = "inventory.view"
	InventoryEdit   = "inventory.edit"
	CustomersView   = "customers.view"
	CustomersCreate = "customers.create"
	CustomersEdit   = "customers.edit"
	ReportsView     = "reports.view"
	ReportsExport   = "reports.export"
	UsersView       = "users.view"
	UsersCreate     = "users.create"
	UsersEdit       = "users.edit"
	UsersDelete     = "users.delete"
)

// ErrInvalidPermissions indicates a stored permission list that is not a JSON
// array of strings.
var ErrInvalidPermissions = apperrors.New(apperrors.CodeUserInvalidPermissions, "permissions are malformed")

// Permissions is an ordered set of permission names.
type Permissions []string

// NewPermissions trims, drops empties and de-duplicates names, keeping the
// first occurrence order.
func NewPermissions(names ...string) Permissions {
	out := make(Permissions, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" || slices.Contains(out, name) {
			continue
		}
		out = append(out, name)
	}
	return out
}

// Has reports whether p grants permission, directly or through Wildcard.
func (p Permissions) Has(permission string) bool {
	return slices.Contains(p, Wildcard) || slices.Contains(p, permission)
}

// Encode renders p as the JSON array stored in users.permissions.
func (p Permissions) Encode() (string, error) {
	if p == nil {
		p = Permissions{}
	}
	data, err := json.Marshal([]string(p))
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// ParsePermissions decodes a stored permission list.
func ParsePermissions(raw string) (Permissions, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Permissions{}, nil
	}
	var names []string
	if err := json.Unmarshal([]byte(raw), &names); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeUserInvalidPermissions, "decode permissions", err)
	}
	return NewPermissions(names...), nil
}

// DefaultPermissions returns the grant a new account receives for role.
func DefaultPermissions(role Role) Permissions {
	switch role {
	case RoleAdmin:
		return Permissions{Wildcard}
	case RoleManager:
		return Permissions{
			SalesView, SalesCreate, SalesEdit,
			ProductsView, ProductsCreate, ProductsEdit, ProductsDelete,
			InventoryView, InventoryEdit,
			CustomersView, CustomersCreate, CustomersEdit,
			ReportsView, ReportsExport,
			UsersView, UsersCreate, UsersEdit, UsersDelete,
		}
	case RoleUser:
		return Permissions{SalesView, SalesCreate, ProductsView, CustomersView, CustomersCreate}
	default:
		return Permissions{}
	}
}

package user

import (
	"errors"
	"slices"
	"testing"
)

func TestParsePermissions(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    Permissions
		wantErr bool
	}{
		{name: "wildcard", raw: `["*"]`, want: Permissions{Wildcard}},
		{name: "list", raw: `["sales.view", "products.view"]`, want: Permissions{SalesView, ProductsView}},
		{name: "duplicates", raw: `["sales.view", " sales.view ", ""]`, want: Permissions{SalesView}},
		{name: "empty", raw: "", want: Permissions{}},
		{name: "not json", raw: "sales.view", wantErr: true},
		{name: "not strings", raw: `[1, 2]`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePermissions(tt.raw)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidPermissions) {
					t.Fatalf("expected invalid permissions error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			if !slices.Equal(got, tt.want) {
				t.Fatalf("parse = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPermissionsEncode(t *testing.T) {
	encoded, err := Permissions{SalesView, CustomersCreate}.Encode()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if encoded != `["sales.view","customers.create"]` {
		t.Fatalf("encode = %s", encoded)
	}

	empty, err := Permissions(nil).Encode()
	if err != nil {
		t.Fatalf("encode nil: %v", err)
	}
	if empty != "[]" {
		t.Fatalf("encode nil = %s, want []", empty)
	}
}

func TestDefaultPermissions(t *testing.T) {
	if got := DefaultPermissions(RoleAdmin); !slices.Equal(got, Permissions{Wildcard}) {
		t.Fatalf("admin permissions = %v", got)
	}
	manager := DefaultPermissions(RoleManager)
	if len(manager) != 18 || !manager.Has(UsersDelete) || manager.Has(Wildcard) {
		t.Fatalf("manager permissions = %v", manager)
	}
	cashier := DefaultPermissions(RoleUser)
	if len(cashier) != 5 || cashier.Has(SalesEdit) {
		t.Fatalf("user permissions = %v", cashier)
	}
	if len(DefaultPermissions("owner")) != 0 {
		t.Fatal("expected no permissions for unknown role")
	}
}

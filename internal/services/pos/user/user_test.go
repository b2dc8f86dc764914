package user

import (
	"errors"
	"testing"
	"time"
)

func TestParseRole(t *testing.T) {
	tests := []struct {
		input   string
		want    Role
		wantErr error
	}{
		{input: "admin", want: RoleAdmin},
		{input: " Manager ", want: RoleManager},
		{input: "user", want: RoleUser},
		{input: "owner", wantErr: ErrInvalidRole},
		{input: "", wantErr: ErrInvalidRole},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseRole(tt.input)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("ParseRole(%q) error = %v, want %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Fatalf("ParseRole(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNewUserNormalizesInput(t *testing.T) {
	fixedTime := time.Date(2026, 1, 23, 10, 0, 0, 0, time.FixedZone("ART", -3*3600))
	created, err := NewUser(CreateUserInput{
		Email:    "  Cashier@PostPOS.com ",
		Password: "secret1",
		Name:     "  Ana Cashier ",
		Role:     "USER",
	}, func() time.Time { return fixedTime })
	if err != nil {
		t.Fatalf("new user: %v", err)
	}

	if created.Email != "cashier@postpos.com" {
		t.Fatalf("expected normalized email, got %q", created.Email)
	}
	if created.Name != "Ana Cashier" {
		t.Fatalf("expected trimmed name, got %q", created.Name)
	}
	if created.Role != RoleUser {
		t.Fatalf("expected role user, got %q", created.Role)
	}
	if !created.Permissions.Has(SalesCreate) || created.Permissions.Has(UsersDelete) {
		t.Fatalf("expected default user permissions, got %v", created.Permissions)
	}
	if created.CreatedAt.Location() != time.UTC || !created.CreatedAt.Equal(fixedTime) {
		t.Fatalf("expected UTC created_at, got %v", created.CreatedAt)
	}
	ok, err := CheckPassword(created.PasswordHash, "secret1")
	if err != nil || !ok {
		t.Fatalf("expected hash to match password, got %v, %v", ok, err)
	}
}

func TestNormalizeCreateUserInputValidation(t *testing.T) {
	valid := CreateUserInput{Email: "a@b.com", Password: "secret1", Name: "A", Role: RoleUser}
	tests := []struct {
		name    string
		mutate  func(*CreateUserInput)
		wantErr error
	}{
		{name: "empty email", mutate: func(in *CreateUserInput) { in.Email = " " }, wantErr: ErrInvalidEmail},
		{name: "malformed email", mutate: func(in *CreateUserInput) { in.Email = "not-an-email" }, wantErr: ErrInvalidEmail},
		{name: "display name email", mutate: func(in *CreateUserInput) { in.Email = "Ann <a@b.com>" }, wantErr: ErrInvalidEmail},
		{name: "empty name", mutate: func(in *CreateUserInput) { in.Name = "  " }, wantErr: ErrEmptyName},
		{name: "bad role", mutate: func(in *CreateUserInput) { in.Role = "owner" }, wantErr: ErrInvalidRole},
		{name: "short password", mutate: func(in *CreateUserInput) { in.Password = "abc" }, wantErr: ErrWeakPassword},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := valid
			tt.mutate(&input)
			_, err := NormalizeCreateUserInput(input)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestNormalizeCreateUserInputKeepsExplicitPermissions(t *testing.T) {
	input, err := NormalizeCreateUserInput(CreateUserInput{
		Email: "a@b.com", Password: "secret1", Name: "A", Role: RoleManager,
		Permissions: Permissions{ReportsView},
	})
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if len(input.Permissions) != 1 || input.Permissions[0] != ReportsView {
		t.Fatalf("expected explicit permissions kept, got %v", input.Permissions)
	}
}

func TestUserCan(t *testing.T) {
	deletedAt := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	admin := User{Role: RoleAdmin, Permissions: DefaultPermissions(RoleAdmin)}
	if !admin.Can(UsersDelete) {
		t.Fatal("expected wildcard to grant every permission")
	}
	admin.DeletedAt = &deletedAt
	if admin.Active() || admin.Can(SalesView) {
		t.Fatal("expected soft-deleted user to lose access")
	}
}

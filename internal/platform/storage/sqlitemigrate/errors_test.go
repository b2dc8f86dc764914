package sqlitemigrate

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestIsConstraintViolationFromDriver(t *testing.T) {
	db := openTestDB(t)
	if _, err := db.Exec("CREATE TABLE items (id INTEGER PRIMARY KEY, name TEXT UNIQUE, qty INTEGER CHECK (qty > 0))"); err != nil {
		t.Fatalf("create table: %v", err)
	}
	if _, err := db.Exec("INSERT INTO items (id, name, qty) VALUES (1, 'a', 1)"); err != nil {
		t.Fatalf("insert: %v", err)
	}

	_, err := db.Exec("INSERT INTO items (id, name, qty) VALUES (2, 'a', 1)")
	if !IsConstraintViolation(err) {
		t.Fatalf("expected unique violation, got %v", err)
	}
	_, err = db.Exec("INSERT INTO items (id, name, qty) VALUES (3, 'b', 0)")
	if !IsConstraintViolation(fmt.Errorf("wrapped: %w", err)) {
		t.Fatalf("expected wrapped check violation, got %v", err)
	}
	if IsTransient(err) {
		t.Fatal("constraint violation must not be transient")
	}
}

func TestIsConstraintViolationFromTrigger(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	if _, err := db.ExecContext(ctx, "CREATE TABLE items (id INTEGER PRIMARY KEY)"); err != nil {
		t.Fatalf("create table: %v", err)
	}
	trigger := CreateTrigger{Name: "items_guard", Table: "items", Event: BeforeInsert, Body: "SELECT RAISE(ABORT, 'items are frozen')"}
	if _, err := trigger.Apply(ctx, db); err != nil {
		t.Fatalf("create trigger: %v", err)
	}
	_, err := db.ExecContext(ctx, "INSERT INTO items (id) VALUES (1)")
	if !IsConstraintViolation(err) {
		t.Fatalf("expected trigger abort to be a constraint violation, got %v", err)
	}
}

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil"},
		{name: "temporary", err: fmt.Errorf("wrapped: %w", temporaryError{}), want: true},
		{name: "locked message", err: errors.New("database is locked"), want: true},
		{name: "plain", err: errors.New("syntax error")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsTransient(tt.err); got != tt.want {
				t.Fatalf("IsTransient = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsAlreadyExistsError(t *testing.T) {
	if IsAlreadyExistsError(nil) {
		t.Fatal("nil is not an already-exists error")
	}
	if !IsAlreadyExistsError(errors.New("table items already exists")) {
		t.Fatal("expected already exists match")
	}
	if !IsAlreadyExistsError(errors.New("duplicate column name: notes")) {
		t.Fatal("expected duplicate column match")
	}
}

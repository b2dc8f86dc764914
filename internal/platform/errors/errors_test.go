package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestErrorIsMatchesByCode(t *testing.T) {
	err := Wrap(CodeConstraintViolation, "insert user", stderrors.New("UNIQUE constraint failed: users.email"))
	wrapped := fmt.Errorf("create user: %w", err)

	if !stderrors.Is(wrapped, ErrConstraintViolation) {
		t.Fatal("expected wrapped error to match constraint sentinel")
	}
	if stderrors.Is(wrapped, ErrSchema) {
		t.Fatal("did not expect schema sentinel to match")
	}
}

func TestErrorMessageIncludesCause(t *testing.T) {
	err := Wrap(CodeSchema, "apply step 3", stderrors.New("near \"CREAT\": syntax error"))
	if got := err.Error(); got != "apply step 3: near \"CREAT\": syntax error" {
		t.Fatalf("unexpected message %q", got)
	}
	if New(CodeNotFound, "missing").Error() != "missing" {
		t.Fatal("expected bare message without cause")
	}
}

func TestCodeOf(t *testing.T) {
	if got := CodeOf(fmt.Errorf("outer: %w", New(CodeLedgerCorruption, "gap"))); got != CodeLedgerCorruption {
		t.Fatalf("expected ledger corruption, got %s", got)
	}
	if got := CodeOf(stderrors.New("plain")); got != CodeUnknown {
		t.Fatalf("expected unknown, got %s", got)
	}
}

func TestCodeClassification(t *testing.T) {
	tests := []struct {
		code      Code
		retryable bool
		fatal     bool
	}{
		{CodeSchema, false, true},
		{CodeStorageUnavailable, true, true},
		{CodeLedgerCorruption, false, true},
		{CodeConstraintViolation, false, false},
		{CodeNotFound, false, false},
	}
	for _, tc := range tests {
		if tc.code.Retryable() != tc.retryable {
			t.Fatalf("%s: expected retryable=%v", tc.code, tc.retryable)
		}
		if tc.code.Fatal() != tc.fatal {
			t.Fatalf("%s: expected fatal=%v", tc.code, tc.fatal)
		}
	}
}

func TestLocalize(t *testing.T) {
	err := WrapWithMetadata(CodeOrderInvalidStatusTransition, "update order 4", map[string]string{
		"from": "pending",
		"to":   "completed",
	}, nil)

	if got := Localize(err, "en"); got != "An order cannot move from pending to completed." {
		t.Fatalf("unexpected english message %q", got)
	}
	if got := Localize(fmt.Errorf("wrap: %w", err), "es-AR"); got != "Un pedido no puede pasar de pending a completed." {
		t.Fatalf("unexpected spanish message %q", got)
	}
	if got := Localize(stderrors.New("boom"), "en"); got != "An unexpected error occurred." {
		t.Fatalf("unexpected fallback message %q", got)
	}
	if Localize(nil, "en") != "" {
		t.Fatal("expected empty message for nil error")
	}
}

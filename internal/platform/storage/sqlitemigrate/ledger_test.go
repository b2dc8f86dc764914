package sqlitemigrate

import (
	"errors"
	"testing"

	apperrors "github.com/louisbranch/postpos/internal/platform/errors"
)

func TestVerifyLedger(t *testing.T) {
	catalog := mustCatalog(t,
		Step{Version: 1, Description: "create_items", Effect: itemsTable()},
		Step{Version: 4, Description: "index_codes", Effect: CreateIndex{Name: "idx_items_code", Table: "items", Columns: []string{"code"}}},
	)
	tests := []struct {
		name    string
		applied []LedgerEntry
		wantErr bool
	}{
		{name: "empty"},
		{name: "prefix", applied: []LedgerEntry{{Version: 1, Description: "create_items"}}},
		{name: "complete", applied: []LedgerEntry{{Version: 1, Description: "create_items"}, {Version: 4, Description: "index_codes"}}},
		{name: "space spelling", applied: []LedgerEntry{{Version: 1, Description: "Create Items"}}},
		{name: "unknown version", applied: []LedgerEntry{{Version: 1, Description: "create_items"}, {Version: 2, Description: "x"}}, wantErr: true},
		{name: "gap", applied: []LedgerEntry{{Version: 4, Description: "index_codes"}}, wantErr: true},
		{name: "negative", applied: []LedgerEntry{{Version: -1, Description: "x"}}, wantErr: true},
		{name: "beyond latest", applied: []LedgerEntry{{Version: 1, Description: "create_items"}, {Version: 4, Description: "index_codes"}, {Version: 5, Description: "x"}}, wantErr: true},
		{name: "description", applied: []LedgerEntry{{Version: 1, Description: "create_widgets"}}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := verifyLedger(tt.applied, catalog)
			if !tt.wantErr {
				if err != nil {
					t.Fatalf("verify: %v", err)
				}
				return
			}
			if !errors.Is(err, apperrors.ErrLedgerCorruption) {
				t.Fatalf("expected ledger corruption, got %v", err)
			}
			var domainErr *apperrors.Error
			if !errors.As(err, &domainErr) || domainErr.Metadata["version"] == "" {
				t.Fatalf("expected version metadata, got %v", err)
			}
		})
	}
}

func TestSameDescription(t *testing.T) {
	if !sameDescription("create users table", "create_users_table") {
		t.Fatal("expected space and underscore spellings to match")
	}
	if sameDescription("create_users_table", "create_user_table") {
		t.Fatal("expected different descriptions to differ")
	}
}

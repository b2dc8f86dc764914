package sqlitemigrate

import (
	"testing"
)

func TestNewCatalogRejectsInvalidSteps(t *testing.T) {
	table := itemsTable()
	tests := []struct {
		name  string
		steps []Step
	}{
		{name: "zero version", steps: []Step{{Version: 0, Description: "a", Effect: table}}},
		{name: "duplicate version", steps: []Step{
			{Version: 1, Description: "a", Effect: table},
			{Version: 1, Description: "b", Effect: table},
		}},
		{name: "descending", steps: []Step{
			{Version: 2, Description: "a", Effect: table},
			{Version: 1, Description: "b", Effect: table},
		}},
		{name: "empty description", steps: []Step{{Version: 1, Description: "  ", Effect: table}}},
		{name: "nil effect", steps: []Step{{Version: 1, Description: "a"}}},
		{name: "unrestricted backfill", steps: []Step{{Version: 1, Description: "a", Effect: Backfill{Table: "items", Column: "code", Expr: "'x'"}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewCatalog(tt.steps...); err == nil {
				t.Fatal("expected catalog error")
			}
		})
	}
}

func TestCatalogQueries(t *testing.T) {
	catalog := itemsCatalog(t)

	if catalog.Len() != 3 || catalog.Latest() != 3 {
		t.Fatalf("len/latest = %d/%d, want 3/3", catalog.Len(), catalog.Latest())
	}
	step, ok := catalog.Step(2)
	if !ok || step.Description != "insert_sample_items" {
		t.Fatalf("step 2 = %+v, %v", step, ok)
	}
	if _, ok := catalog.Step(9); ok {
		t.Fatal("expected unknown version lookup to fail")
	}

	prefix := catalog.Until(2)
	if prefix.Len() != 2 || prefix.Latest() != 2 {
		t.Fatalf("prefix len/latest = %d/%d, want 2/2", prefix.Len(), prefix.Latest())
	}
	if catalog.Until(0).Len() != 0 {
		t.Fatal("expected empty prefix for version 0")
	}

	steps := catalog.Steps()
	steps[0].Description = "mutated"
	if first, _ := catalog.Step(1); first.Description != "create_items" {
		t.Fatal("expected Steps to return a copy")
	}
}

func TestEmptyCatalog(t *testing.T) {
	var catalog Catalog
	if catalog.Latest() != 0 || catalog.Len() != 0 {
		t.Fatal("expected zero catalog to be empty")
	}
}

func TestCatalogAllowsVersionGaps(t *testing.T) {
	catalog := mustCatalog(t,
		Step{Version: 1, Description: "a", Effect: itemsTable()},
		Step{Version: 5, Description: "b", Effect: CreateIndex{Name: "idx_items_code", Table: "items", Columns: []string{"code"}}},
	)
	if catalog.Latest() != 5 || catalog.Until(4).Len() != 1 {
		t.Fatalf("unexpected catalog shape: latest %d", catalog.Latest())
	}
}

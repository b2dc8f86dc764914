package sqlitemigrate

import (
	"fmt"
	"strings"
)

// DeleteAction is the explicit ON DELETE behavior of a foreign key.
type DeleteAction int

const (
	// Cascade deletes referencing rows with the referenced row.
	Cascade DeleteAction = iota + 1
	// SetNull clears the referencing column.
	SetNull
	// Restrict rejects deleting a referenced row.
	Restrict
	// NoAction defers to SQLite's default check at statement end.
	NoAction
)

func (a DeleteAction) sql() (string, error) {
	switch a {
	case Cascade:
		return "CASCADE", nil
	case SetNull:
		return "SET NULL", nil
	case Restrict:
		return "RESTRICT", nil
	case NoAction:
		return "NO ACTION", nil
	default:
		return "", fmt.Errorf("foreign key delete action is required")
	}
}

// ForeignKey references a column of another table.
type ForeignKey struct {
	Table    string
	Column   string
	OnDelete DeleteAction
}

// Column describes one column of a table.
//
// Default and Check hold raw SQL: Default is rendered after DEFAULT and Check
// inside CHECK (...).
type Column struct {
	Name          string
	Type          string
	PrimaryKey    bool
	AutoIncrement bool
	NotNull       bool
	Unique        bool
	Default       string
	Check         string
	References    *ForeignKey
}

// Table describes a table created by a CreateTable step.
type Table struct {
	Name    string
	Columns []Column
}

// Column returns the named column definition.
func (t Table) Column(name string) (Column, bool) {
	for _, column := range t.Columns {
		if column.Name == name {
			return column, true
		}
	}
	return Column{}, false
}

func (t Table) createSQL() (string, error) {
	if err := checkIdentifier("table", t.Name); err != nil {
		return "", err
	}
	if len(t.Columns) == 0 {
		return "", fmt.Errorf("table %s has no columns", t.Name)
	}
	seen := make(map[string]struct{}, len(t.Columns))
	defs := make([]string, 0, len(t.Columns))
	for _, column := range t.Columns {
		if _, dup := seen[column.Name]; dup {
			return "", fmt.Errorf("table %s declares column %s twice", t.Name, column.Name)
		}
		seen[column.Name] = struct{}{}
		def, err := column.definition()
		if err != nil {
			return "", fmt.Errorf("table %s: %w", t.Name, err)
		}
		defs = append(defs, "    "+def)
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n%s\n)", t.Name, strings.Join(defs, ",\n")), nil
}

func (c Column) definition() (string, error) {
	if err := checkIdentifier("column", c.Name); err != nil {
		return "", err
	}
	typ := strings.ToUpper(strings.TrimSpace(c.Type))
	switch typ {
	case "INTEGER", "TEXT", "REAL", "BLOB", "NUMERIC":
	default:
		return "", fmt.Errorf("column %s has unsupported type %q", c.Name, c.Type)
	}
	if c.AutoIncrement && (!c.PrimaryKey || typ != "INTEGER") {
		return "", fmt.Errorf("column %s: autoincrement requires an INTEGER primary key", c.Name)
	}

	var b strings.Builder
	b.WriteString(c.Name)
	b.WriteString(" ")
	b.WriteString(typ)
	if c.PrimaryKey {
		b.WriteString(" PRIMARY KEY")
		if c.AutoIncrement {
			b.WriteString(" AUTOINCREMENT")
		}
	}
	if c.NotNull {
		b.WriteString(" NOT NULL")
	}
	if c.Unique {
		b.WriteString(" UNIQUE")
	}
	if d := strings.TrimSpace(c.Default); d != "" {
		b.WriteString(" DEFAULT ")
		b.WriteString(d)
	}
	if check := strings.TrimSpace(c.Check); check != "" {
		b.WriteString(" CHECK (")
		b.WriteString(check)
		b.WriteString(")")
	}
	if ref := c.References; ref != nil {
		if err := checkIdentifier("referenced table", ref.Table); err != nil {
			return "", fmt.Errorf("column %s: %w", c.Name, err)
		}
		if err := checkIdentifier("referenced column", ref.Column); err != nil {
			return "", fmt.Errorf("column %s: %w", c.Name, err)
		}
		action, err := ref.OnDelete.sql()
		if err != nil {
			return "", fmt.Errorf("column %s: %w", c.Name, err)
		}
		fmt.Fprintf(&b, " REFERENCES %s(%s) ON DELETE %s", ref.Table, ref.Column, action)
	}
	return b.String(), nil
}

// checkIdentifier accepts lower-case SQL identifiers so rendered statements
// never need quoting.
func checkIdentifier(kind, name string) error {
	if name == "" {
		return fmt.Errorf("%s name is required", kind)
	}
	for i, r := range name {
		switch {
		case r == '_', r >= 'a' && r <= 'z':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return fmt.Errorf("%s name %q is not a plain identifier", kind, name)
		}
	}
	return nil
}

package sqlite

import (
	"context"
	"database/sql"

	"github.com/louisbranch/postpos/internal/services/pos/money"
	"github.com/louisbranch/postpos/internal/services/pos/settings"
)

const settingsColumns = `name, description, tax_enabled, tax_percentage, currency_symbol, language, logo_url,
address, phone, email, website, created_at, updated_at`

// GetCompanySettings reads the singleton settings row.
func (s *Store) GetCompanySettings(ctx context.Context) (settings.CompanySettings, error) {
	if err := s.ready(ctx); err != nil {
		return settings.CompanySettings{}, err
	}
	return getSettings(ctx, s.sqlDB)
}

// UpdateCompanySettings validates and writes the singleton settings row,
// creating it when a database predates the default settings.
func (s *Store) UpdateCompanySettings(ctx context.Context, cs settings.CompanySettings) (settings.CompanySettings, error) {
	if err := s.ready(ctx); err != nil {
		return settings.CompanySettings{}, err
	}
	cs, err := settings.Normalize(cs)
	if err != nil {
		return settings.CompanySettings{}, err
	}
	now := formatTime(s.timestamp())

	_, err = s.sqlDB.ExecContext(ctx, `
INSERT INTO company_settings (id, name, description, tax_enabled, tax_percentage, currency_symbol, language,
	logo_url, address, phone, email, website, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (id) DO UPDATE SET
	name = excluded.name,
	description = excluded.description,
	tax_enabled = excluded.tax_enabled,
	tax_percentage = excluded.tax_percentage,
	currency_symbol = excluded.currency_symbol,
	language = excluded.language,
	logo_url = excluded.logo_url,
	address = excluded.address,
	phone = excluded.phone,
	email = excluded.email,
	website = excluded.website,
	updated_at = excluded.updated_at`,
		settings.ID, cs.Name, nullString(cs.Description), boolInt(cs.TaxEnabled), money.Float(cs.TaxPercentage),
		cs.CurrencySymbol, cs.Language, nullString(cs.LogoURL), nullString(cs.Address), nullString(cs.Phone),
		nullString(cs.Email), nullString(cs.Website), now, now,
	)
	if err != nil {
		return settings.CompanySettings{}, storeError("update company settings", err)
	}
	return getSettings(ctx, s.sqlDB)
}

func getSettings(ctx context.Context, q queryRower) (settings.CompanySettings, error) {
	var (
		cs                            settings.CompanySettings
		description, logoURL, address sql.NullString
		phone, email, website         sql.NullString
		taxEnabled                    int64
		taxPercentage                 float64
		createdAt, updatedAt          string
	)
	err := q.QueryRowContext(ctx, "SELECT "+settingsColumns+" FROM company_settings WHERE id = ?", settings.ID).Scan(
		&cs.Name, &description, &taxEnabled, &taxPercentage, &cs.CurrencySymbol, &cs.Language, &logoURL,
		&address, &phone, &email, &website, &createdAt, &updatedAt,
	)
	if err != nil {
		return settings.CompanySettings{}, storeError("get company settings", err)
	}
	cs.Description = description.String
	cs.TaxEnabled = taxEnabled == 1
	cs.TaxPercentage = money.FromFloat(taxPercentage)
	cs.LogoURL = logoURL.String
	cs.Address = address.String
	cs.Phone = phone.String
	cs.Email = email.String
	cs.Website = website.String
	if cs.CreatedAt, err = parseTime(createdAt); err != nil {
		return settings.CompanySettings{}, err
	}
	if cs.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return settings.CompanySettings{}, err
	}
	return cs, nil
}

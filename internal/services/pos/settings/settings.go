// Package settings defines the store-wide company configuration. There is
// exactly one settings record; its id is always 1.
package settings

import (
	"strings"
	"time"

	apperrors "github.com/louisbranch/postpos/internal/platform/errors"
	"github.com/louisbranch/postpos/internal/services/pos/money"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
)

// ID is the primary key of the singleton row.
const ID = 1

var (
	// ErrEmptyName indicates a missing company name.
	ErrEmptyName = apperrors.New(apperrors.CodeSettingsEmptyName, "company name is required")
	// ErrInvalidTax indicates a tax percentage outside 0..100.
	ErrInvalidTax = apperrors.New(apperrors.CodeSettingsInvalidTax, "tax percentage must be between 0 and 100")

	hundred = decimal.NewFromInt(100)
)

// CompanySettings is the store-wide configuration shown on receipts.
type CompanySettings struct {
	Name           string
	Description    string
	TaxEnabled     bool
	TaxPercentage  decimal.Decimal
	CurrencySymbol string
	Language       string
	LogoURL        string
	Address        string
	Phone          string
	Email          string
	Website        string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Defaults returns the settings seeded into a new database.
func Defaults() CompanySettings {
	return CompanySettings{
		Name:           "Post POS",
		Description:    "Modern Point of Sale System",
		TaxEnabled:     true,
		TaxPercentage:  decimal.NewFromInt(10),
		CurrencySymbol: "$",
		Language:       "en",
	}
}

// TaxRate is the fraction applied to order subtotals; zero when tax is off.
func (s CompanySettings) TaxRate() decimal.Decimal {
	if !s.TaxEnabled {
		return decimal.Zero
	}
	return s.TaxPercentage.Div(hundred)
}

// Normalize trims fields, canonicalizes the language tag and validates the
// tax percentage.
func Normalize(s CompanySettings) (CompanySettings, error) {
	s.Name = strings.TrimSpace(s.Name)
	if s.Name == "" {
		return CompanySettings{}, ErrEmptyName
	}
	s.Description = strings.TrimSpace(s.Description)
	s.CurrencySymbol = strings.TrimSpace(s.CurrencySymbol)
	if s.CurrencySymbol == "" {
		s.CurrencySymbol = Defaults().CurrencySymbol
	}
	lang, err := NormalizeLanguage(s.Language)
	if err != nil {
		return CompanySettings{}, err
	}
	s.Language = lang
	s.TaxPercentage = money.Round(s.TaxPercentage)
	if s.TaxPercentage.IsNegative() || s.TaxPercentage.GreaterThan(hundred) {
		return CompanySettings{}, ErrInvalidTax
	}
	s.LogoURL = strings.TrimSpace(s.LogoURL)
	s.Address = strings.TrimSpace(s.Address)
	s.Phone = strings.TrimSpace(s.Phone)
	s.Email = strings.TrimSpace(s.Email)
	s.Website = strings.TrimSpace(s.Website)
	return s, nil
}

// NormalizeLanguage parses a BCP 47 tag and returns its canonical form. An
// empty value selects the default language.
func NormalizeLanguage(value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return Defaults().Language, nil
	}
	tag, err := language.Parse(value)
	if err != nil {
		return "", apperrors.WrapWithMetadata(apperrors.CodeSettingsInvalidLanguage, "invalid language tag",
			map[string]string{"language": value}, err)
	}
	return tag.String(), nil
}

// Package customer defines shoppers tracked for loyalty and receipts.
package customer

import (
	"fmt"
	"net/mail"
	"strings"
	"time"

	apperrors "github.com/louisbranch/postpos/internal/platform/errors"
	"github.com/louisbranch/postpos/internal/services/pos/money"
	"github.com/shopspring/decimal"
)

var (
	// ErrEmptyName indicates a missing first or last name.
	ErrEmptyName = apperrors.New(apperrors.CodeCustomerEmptyName, "first and last name are required")
	// ErrInvalidEmail indicates a malformed customer email.
	ErrInvalidEmail = apperrors.New(apperrors.CodeCustomerInvalidEmail, "customer email is invalid")
)

// Customer is a registered shopper. Email, Phone and CustomerNumber are
// optional but unique when set.
type Customer struct {
	ID               int64
	CustomerNumber   *string
	FirstName        string
	LastName         string
	Email            *string
	Phone            *string
	AddressLine1     string
	AddressLine2     string
	City             string
	State            string
	PostalCode       string
	Country          string
	LoyaltyPoints    int64
	TotalSpent       decimal.Decimal
	LastPurchaseDate *time.Time
	IsActive         bool
	Notes            string
	CreatedAt        time.Time
	UpdatedAt        time.Time
	DeletedAt        *time.Time
}

// DisplayName joins first and last name.
func (c Customer) DisplayName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

// FormatNumber renders the customer number derived from a row id.
func FormatNumber(id int64) string {
	return fmt.Sprintf("CUST-%06d", id)
}

// Normalize trims fields, lower-cases email and clears blank optional values.
func Normalize(c Customer) (Customer, error) {
	c.FirstName = strings.TrimSpace(c.FirstName)
	c.LastName = strings.TrimSpace(c.LastName)
	if c.FirstName == "" || c.LastName == "" {
		return Customer{}, ErrEmptyName
	}
	c.Email = trimOptional(c.Email)
	if c.Email != nil {
		email := strings.ToLower(*c.Email)
		addr, err := mail.ParseAddress(email)
		if err != nil || addr.Address != email {
			return Customer{}, ErrInvalidEmail
		}
		c.Email = &email
	}
	c.Phone = trimOptional(c.Phone)
	c.CustomerNumber = trimOptional(c.CustomerNumber)
	c.AddressLine1 = strings.TrimSpace(c.AddressLine1)
	c.AddressLine2 = strings.TrimSpace(c.AddressLine2)
	c.City = strings.TrimSpace(c.City)
	c.State = strings.TrimSpace(c.State)
	c.PostalCode = strings.TrimSpace(c.PostalCode)
	c.Country = strings.TrimSpace(c.Country)
	c.Notes = strings.TrimSpace(c.Notes)
	if c.LoyaltyPoints < 0 {
		c.LoyaltyPoints = 0
	}
	c.TotalSpent = money.Round(c.TotalSpent)
	if c.TotalSpent.IsNegative() {
		c.TotalSpent = decimal.Zero
	}
	return c, nil
}

func trimOptional(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

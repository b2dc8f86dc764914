// Package order defines sales and their line items.
//
// An order moves pending -> paid -> completed, or pending -> cancelled. The
// database only constrains the status value; the transition rules live here
// and every write through the store goes through Advance.
//
// Totals are derived: each item's total is quantity times unit price, and an
// order's total is its subtotal plus tax, all rounded to cents. ComputeTotals
// is the single place they are calculated.
package order

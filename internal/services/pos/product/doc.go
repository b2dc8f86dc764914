// Package product defines catalog items sold at the register.
package product

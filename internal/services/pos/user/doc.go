// Package user defines point-of-sale staff accounts: their role, the
// permission set granted to that role, and password hashing.
//
// Permissions are persisted as a JSON array of strings. The single entry "*"
// grants every permission and is what the seeded administrator carries.
package user

// Package sqlerr translates database driver errors.
//
// It turns PostgreSQL SQLSTATE codes into a small set of categories and then
// into application errors, so a constraint violation reaches the client as a
// 400 with a readable message while anything unexpected stays a 500.
package sqlerr

// Package errs defines the error types the HTTP layer understands.
//
// Handlers and middleware return these errors; the global error handler
// turns them into a consistent response: an ErrorMessage body for client
// errors, or a bare status code when the failure detail must stay in the
// server log.
package errs

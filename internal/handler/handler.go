// Package handler is the HTTP layer, the first stop after the router.
//
// Handlers receive requests already bound and validated through the
// validation package, call the service layer and map its results and
// errors onto the response contract.
package handler

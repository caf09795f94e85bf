// Package api is the client of the remote creator/payments service.
//
// # Overview
//
// The package provides:
//  1. A transport-agnostic contract (see the Client interface) covering
//     auth, landing pages, creators, payment links, payments and crypto
//     payments.
//  2. A concrete HTTP implementation (see HTTPClient) that sends JSON,
//     attaches "Authorization: Bearer <token>" from a TokenSource, and
//     decodes every response into an explicit result type.
//
// # Error Handling
//
// Non-2xx responses become *APIError with a friendly message; 401 and 404
// also match common.ErrUnauthorized and common.ErrNotFound with errors.Is.
// Responses that do not have the expected shape fail with *ParseError,
// which matches ErrParse.
//
// Concurrency & Contexts
//
// HTTPClient is safe for concurrent use. All operations accept
// context.Context and honor cancellation.
package api

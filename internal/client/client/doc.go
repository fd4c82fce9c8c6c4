// Package client is the session-bound transport for the dream API.
//
// # Overview
//
// The package provides:
//  1. Session, the bearer-token gate every authenticated call goes through.
//  2. The Endpoint catalog: one constructor per logical API operation, each
//     mapping to a bit-exact method and path (see endpoints.go).
//  3. The Client contract and its HTTP implementation (HTTPClient), which
//     attaches headers, applies a per-request timeout, buffers the whole
//     response and classifies the outcome strictly by status code.
//  4. Local persistence bootstrap (InitDatabase, RunMigrations) for the
//     small SQLite file holding client preferences.
//
// # Error Handling
//
// Outcomes map onto a closed set of errors that callers match with
// errors.Is / errors.As: ErrInvalidURL, ErrNoData, ErrDecodingFailed,
// ErrUnauthorized, *ServerError and ErrUnknown.
//
// # Concurrency
//
// Session and HTTPClient are safe for concurrent use. No call is retried.
package client

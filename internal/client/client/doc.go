// Package client is the valetkey API adapter used by the CLI and the
// controllers.
//
// # Overview
//
// The package provides:
//  1. A transport-agnostic API contract (see the Client interface and its
//     parts AuthAPI, FileAPI, UploadAPI, FolderAPI and PublicAPI).
//  2. A REST implementation (see HTTPClient) that keeps the session in a
//     cookie jar, validates inputs locally before any request, and maps
//     failures to typed errors.
//  3. Local persistence bootstrap utilities (InitDatabase, RunMigrations)
//     for the SQLite database holding persisted session cookies.
//
// # Error Handling
//
// Every failure is an *APIError whose Kind is one of ErrNetwork,
// ErrAuthRequired, ErrValidation, ErrNotFound, ErrForbidden, ErrServer or
// ErrTransferFailed; match them with errors.Is. Message returns the text the
// backend supplied, suitable for showing to a user.
//
// # Concurrency & Contexts
//
// HTTPClient is safe for concurrent use. All operations accept
// context.Context and honor cancellation and timeouts.
package client

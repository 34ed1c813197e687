// Package client talks to the WhatTheNote backend.
//
// # Overview
//
// The package provides:
//  1. The API contract (see the Client interface): account management,
//     document listing, upload, deletion, questions and the public
//     feature list.
//  2. A concrete HTTP/JSON implementation (see HTTPClient) that attaches
//     the bearer credential read from a CredentialStore, applies per-call
//     deadlines, clears the credential on 401 and notifies OnUnauthorized
//     handlers.
//  3. Local persistence bootstrap (InitDatabase, RunMigrations) wiring an
//     SQLite database and applying embedded goose migrations.
//
// # Error Handling
//
// Every Client operation fails with an *APIError. Its Kind separates
// network failures, authorization failures and other rejected requests;
// errors.Is matches them against ErrUnavailable, ErrUnauthorized and
// ErrRequest.
package client

// Package cli provides the interactive WhatTheNote command-line client.
//
// It wires configuration, the local credential store, the HTTP API client
// and the page controllers, then runs a REPL. Typical flow: the landing
// screen lists the product features while the stored session is restored;
// a signed-in user lands on the dashboard.
//
// Key features:
//   - Register / Login / Logout, profile edits and account deletion
//   - Dashboard: search, subject filter, grid or list view, recent and
//     subject-grouped tabs
//   - Document view: summary, content, questions and history
//   - Upload of PDF files and export of reports to disk or S3
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App and runREPL for details.
package cli

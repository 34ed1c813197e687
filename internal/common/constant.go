// Package common contains shared constants and sentinel errors used across
// WhatTheNote client components.
package common

// Metadata keys of the local credential store.
const (
	// TokenMetadataKey is the single well-known key the bearer credential
	// is persisted under.
	TokenMetadataKey = "token"
	// UserMetadataKey holds the JSON-encoded profile of the signed-in user.
	UserMetadataKey = "user"
)

// HTTP header names set on outbound requests.
const (
	AuthorizationHeaderName = "Authorization"
	RequestIDHeaderName     = "X-Request-ID"
)

// UncategorizedSubject is the group name used for documents without a subject.
const UncategorizedSubject = "Uncategorized"

// AllSubjects is the subject filter value that disables subject filtering.
const AllSubjects = "all"

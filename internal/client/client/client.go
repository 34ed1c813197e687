package client

import (
	"context"
	"io"

	"github.com/dmitrijs2005/whatthenote/internal/client/models"
)

// Client is the contract of the WhatTheNote backend API, one method per
// backend capability. Every error returned is an *APIError.
type Client interface {
	Register(ctx context.Context, name, email, password string) (models.User, error)
	Login(ctx context.Context, email, password string) (string, error)
	CurrentUser(ctx context.Context) (models.User, error)
	UpdateUser(ctx context.Context, name, email string) (models.User, error)
	DeleteUser(ctx context.Context) error

	ListDocuments(ctx context.Context) ([]models.Document, error)
	Dashboard(ctx context.Context, subject string) ([]models.Document, error)
	GetDocument(ctx context.Context, id models.ID) (models.Document, error)
	UploadDocument(ctx context.Context, filename string, r io.Reader) (models.Document, error)
	DeleteDocument(ctx context.Context, id models.ID) error
	AskQuestion(ctx context.Context, id models.ID, question string) (models.Query, error)

	Features(ctx context.Context) ([]models.Feature, error)
}

// CredentialStore is where the client reads the bearer credential from
// and clears it on an authorization failure.
type CredentialStore interface {
	Token(ctx context.Context) (string, error)
	ClearToken(ctx context.Context) error
}

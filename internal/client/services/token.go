// Package services contains the application services of the WhatTheNote
// client: session handling, document orchestration, the upload flow and
// the question/answer flow.
package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/whatthenote/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/whatthenote/internal/common"
)

// TokenStore persists the bearer credential in the local metadata table.
// It satisfies client.CredentialStore.
type TokenStore struct {
	repo metadata.Repository
}

func NewTokenStore(repo metadata.Repository) *TokenStore {
	return &TokenStore{repo: repo}
}

// Token returns the stored credential, or "" when there is none.
func (s *TokenStore) Token(ctx context.Context) (string, error) {
	b, err := s.repo.Get(ctx, common.TokenMetadataKey)
	if err != nil {
		return "", fmt.Errorf("read token: %w", err)
	}
	return string(b), nil
}

func (s *TokenStore) SetToken(ctx context.Context, token string) error {
	if err := s.repo.Set(ctx, common.TokenMetadataKey, []byte(token)); err != nil {
		return fmt.Errorf("store token: %w", err)
	}
	return nil
}

func (s *TokenStore) ClearToken(ctx context.Context) error {
	if err := s.repo.Delete(ctx, common.TokenMetadataKey); err != nil {
		return fmt.Errorf("clear token: %w", err)
	}
	return nil
}

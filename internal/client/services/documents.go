package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"

	"github.com/dmitrijs2005/whatthenote/internal/client/client"
	"github.com/dmitrijs2005/whatthenote/internal/client/collection"
	"github.com/dmitrijs2005/whatthenote/internal/client/models"
	"github.com/dmitrijs2005/whatthenote/internal/common"
	"github.com/dmitrijs2005/whatthenote/internal/logging"
)

// ErrQuestionInFlight is returned by Ask while a question about the same
// document is still waiting for its answer.
var ErrQuestionInFlight = errors.New("a question about this document is already being answered")

// DocumentService orchestrates document operations between the API client
// and the collection cache.
//
// Contract:
//   - Load: replace the cache with the server's document list.
//   - BySubject: server-side subject listing; the cache is not touched.
//   - Open: fetch the detail (the server bumps last-viewed) and refresh the
//     cached entry.
//   - Delete: delete on the server, then remove from the cache.
//   - Ask: validate, single-flight per document, prepend the answer.
//   - SuggestQuestions: sample starter questions.
type DocumentService interface {
	Load(ctx context.Context) error
	BySubject(ctx context.Context, subject string) ([]models.Document, error)
	Open(ctx context.Context, id models.ID) (models.Document, error)
	Delete(ctx context.Context, id models.ID) error
	Ask(ctx context.Context, id models.ID, question string) (models.Query, error)
	SuggestQuestions(n int) []string
	Cache() *collection.Cache
}

type documentService struct {
	api    client.Client
	cache  *collection.Cache
	logger logging.Logger

	mu     sync.Mutex
	asking map[models.ID]struct{}

	shuffle func(n int, swap func(i, j int))
}

func NewDocumentService(api client.Client, cache *collection.Cache, logger logging.Logger) DocumentService {
	if logger == nil {
		logger = logging.Discard()
	}
	return &documentService{
		api:     api,
		cache:   cache,
		logger:  logger,
		asking:  make(map[models.ID]struct{}),
		shuffle: rand.Shuffle,
	}
}

func (s *documentService) Cache() *collection.Cache {
	return s.cache
}

func (s *documentService) Load(ctx context.Context) error {
	if err := s.cache.Load(ctx, s.api.ListDocuments); err != nil {
		return fmt.Errorf("load documents: %w", err)
	}
	return nil
}

func (s *documentService) BySubject(ctx context.Context, subject string) ([]models.Document, error) {
	docs, err := s.api.Dashboard(ctx, subject)
	if err != nil {
		return nil, fmt.Errorf("load dashboard: %w", err)
	}
	return docs, nil
}

func (s *documentService) Open(ctx context.Context, id models.ID) (models.Document, error) {
	doc, err := s.api.GetDocument(ctx, id)
	if err != nil {
		return models.Document{}, fmt.Errorf("open document %s: %w", id, err)
	}
	s.cache.Replace(doc)
	return doc, nil
}

func (s *documentService) Delete(ctx context.Context, id models.ID) error {
	if err := s.api.DeleteDocument(ctx, id); err != nil {
		return fmt.Errorf("delete document %s: %w", id, err)
	}
	s.cache.Remove(id)
	s.logger.Info(ctx, "document deleted", "id", id)
	return nil
}

func (s *documentService) Ask(ctx context.Context, id models.ID, question string) (models.Query, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return models.Query{}, common.NewValidationError("question", "Please enter a question")
	}

	if !s.begin(id) {
		return models.Query{}, ErrQuestionInFlight
	}
	defer s.end(id)

	q, err := s.api.AskQuestion(ctx, id, question)
	if err != nil {
		return models.Query{}, fmt.Errorf("ask: %w", err)
	}
	if q.Question == "" {
		q.Question = question
	}
	s.cache.PrependQuery(id, q)
	return q, nil
}

func (s *documentService) begin(id models.ID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.asking[id]; busy {
		return false
	}
	s.asking[id] = struct{}{}
	return true
}

func (s *documentService) end(id models.ID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.asking, id)
}

var suggestionPool = []string{
	"What are the main points of this document?",
	"Can you summarize the key findings?",
	"What conclusions does the author reach?",
	"What methodology was used?",
	"What are the most important definitions?",
	"Which examples illustrate the main idea?",
	"What questions does this document leave open?",
	"How could this be applied in practice?",
	"What are the limitations mentioned?",
	"What should I remember for an exam?",
}

// SuggestQuestions returns up to n distinct starter questions in random
// order. Every call draws a new sample.
func (s *documentService) SuggestQuestions(n int) []string {
	if n <= 0 {
		return nil
	}
	pool := append([]string(nil), suggestionPool...)
	s.shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	if n > len(pool) {
		n = len(pool)
	}
	return pool[:n]
}

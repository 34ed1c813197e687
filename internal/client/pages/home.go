package pages

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/whatthenote/internal/client/client"
	"github.com/dmitrijs2005/whatthenote/internal/client/models"
	"github.com/dmitrijs2005/whatthenote/internal/client/services"
	"github.com/dmitrijs2005/whatthenote/internal/logging"
	"golang.org/x/sync/errgroup"
)

// DefaultFeatures are shown when the feature list cannot be fetched.
var DefaultFeatures = []models.Feature{
	{Icon: models.IconFileText, Title: "PDF Processing", Description: "Upload PDF documents and extract their text automatically."},
	{Icon: models.IconBrain, Title: "AI Summarization", Description: "Get concise summaries of long documents."},
	{Icon: models.IconSearch, Title: "Smart Querying", Description: "Ask questions and get answers grounded in your documents."},
}

// Home is the landing screen: the feature list and the restored session.
type Home struct {
	api     client.Client
	session *services.SessionStore
	logger  logging.Logger

	mu          sync.Mutex
	features    []models.Feature
	featuresErr error
}

func NewHome(api client.Client, session *services.SessionStore, logger logging.Logger) *Home {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Home{api: api, session: session, logger: logger}
}

// Mount fetches the features and restores the session concurrently. A
// feature fetch failure falls back to DefaultFeatures and is not returned.
func (h *Home) Mount(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		features, err := h.api.Features(gctx)
		h.mu.Lock()
		defer h.mu.Unlock()
		h.featuresErr = err
		if err != nil || len(features) == 0 {
			if err != nil {
				h.logger.Warn(gctx, "loading features failed", "error", err)
			}
			h.features = append([]models.Feature(nil), DefaultFeatures...)
			return nil
		}
		h.features = features
		return nil
	})

	g.Go(func() error {
		return h.session.Restore(gctx)
	})

	return g.Wait()
}

// Features returns the list loaded by Mount, or DefaultFeatures before it.
func (h *Home) Features() []models.Feature {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.features == nil {
		return append([]models.Feature(nil), DefaultFeatures...)
	}
	return append([]models.Feature(nil), h.features...)
}

// FeaturesErr is the error of the last feature fetch, if any.
func (h *Home) FeaturesErr() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.featuresErr
}

// DeleteAccount removes the signed-in account after confirm approves it.
func DeleteAccount(ctx context.Context, session *services.SessionStore, confirm Confirm) error {
	if !confirmed(confirm, "Delete your account and all documents? This cannot be undone.") {
		return ErrCancelled
	}
	return session.DeleteAccount(ctx)
}

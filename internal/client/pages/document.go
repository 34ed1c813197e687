package pages

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/dmitrijs2005/whatthenote/internal/client/collection"
	"github.com/dmitrijs2005/whatthenote/internal/client/models"
	"github.com/dmitrijs2005/whatthenote/internal/client/services"
	"github.com/dmitrijs2005/whatthenote/internal/common"
)

type DocumentTab string

const (
	TabSummary  DocumentTab = "summary"
	TabDocument DocumentTab = "document"
	TabQA       DocumentTab = "qa"
	TabHistory  DocumentTab = "history"
)

func ParseDocumentTab(s string) (DocumentTab, error) {
	switch t := DocumentTab(strings.ToLower(strings.TrimSpace(s))); t {
	case TabSummary, TabDocument, TabQA, TabHistory:
		return t, nil
	}
	return "", common.NewValidationError("tab", fmt.Sprintf("Unknown tab %q. Use summary, document, qa or history", s))
}

// DocumentState is everything the document screen renders.
type DocumentState struct {
	Document models.Document
	Tab      DocumentTab
	// Latest is the answer to the last question asked on this page.
	Latest  *models.Query
	AskErr  error
	Asking  bool
	Gone    bool
	Mounted bool
}

// DocumentPage shows one document and runs its question/answer flow.
type DocumentPage struct {
	docs  services.DocumentService
	cache *collection.Cache

	mu          sync.Mutex
	id          models.ID
	doc         models.Document
	tab         DocumentTab
	latest      *models.Query
	askErr      error
	asking      bool
	gone        bool
	mounted     bool
	unsubscribe func()
}

func NewDocumentPage(docs services.DocumentService) *DocumentPage {
	return &DocumentPage{docs: docs, cache: docs.Cache(), tab: TabSummary}
}

// Mount fetches the document. Fetching also bumps its last-viewed time on
// the server.
func (p *DocumentPage) Mount(ctx context.Context, id models.ID) error {
	p.Unmount()

	p.mu.Lock()
	p.id = id
	p.doc = models.Document{}
	p.tab = TabSummary
	p.latest, p.askErr = nil, nil
	p.asking, p.gone, p.mounted = false, false, false
	p.unsubscribe = p.cache.Subscribe(p.onEvent)
	p.mu.Unlock()

	doc, err := p.docs.Open(ctx, id)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.id == id {
		p.doc = doc
		p.mounted = true
	}
	return nil
}

func (p *DocumentPage) Unmount() {
	p.mu.Lock()
	unsubscribe := p.unsubscribe
	p.unsubscribe = nil
	p.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
}

func (p *DocumentPage) onEvent(e collection.Event) {
	p.mu.Lock()
	id := p.id
	p.mu.Unlock()
	if e.ID != id {
		return
	}

	switch e.Kind {
	case collection.EventDeleted:
		p.mu.Lock()
		p.gone = true
		p.mu.Unlock()
	case collection.EventUpdated, collection.EventInserted:
		if doc, ok := p.cache.Get(id); ok {
			p.mu.Lock()
			if p.mounted {
				p.doc = doc
			}
			p.mu.Unlock()
		}
	}
}

func (p *DocumentPage) SetTab(t DocumentTab) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.tab = t
}

// Ask sends a question about the mounted document. The answer becomes the
// latest answer and the head of the history.
func (p *DocumentPage) Ask(ctx context.Context, question string) (models.Query, error) {
	p.mu.Lock()
	id, gone := p.id, p.gone
	if id == "" {
		p.mu.Unlock()
		return models.Query{}, common.ErrNotFound
	}
	if gone {
		p.mu.Unlock()
		return models.Query{}, fmt.Errorf("document %s: %w", id, common.ErrNotFound)
	}
	p.asking = true
	p.mu.Unlock()

	q, err := p.docs.Ask(ctx, id, question)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.asking = false
	p.askErr = err
	if err != nil {
		return models.Query{}, err
	}
	p.latest = &q
	if doc, ok := p.cache.Get(id); ok {
		p.doc = doc
	} else {
		p.doc = p.doc.WithQuery(q)
	}
	return q, nil
}

// Suggestions returns n starter questions.
func (p *DocumentPage) Suggestions(n int) []string {
	return p.docs.SuggestQuestions(n)
}

// Delete removes the mounted document after confirm approves it.
func (p *DocumentPage) Delete(ctx context.Context, confirm Confirm) error {
	p.mu.Lock()
	id, title := p.id, p.doc.Title
	p.mu.Unlock()
	if id == "" {
		return common.ErrNotFound
	}
	if !confirmed(confirm, fmt.Sprintf("Delete %q? This cannot be undone.", title)) {
		return ErrCancelled
	}
	return p.docs.Delete(ctx, id)
}

func (p *DocumentPage) State() DocumentState {
	p.mu.Lock()
	defer p.mu.Unlock()

	st := DocumentState{
		Document: p.doc.Clone(),
		Tab:      p.tab,
		AskErr:   p.askErr,
		Asking:   p.asking,
		Gone:     p.gone,
		Mounted:  p.mounted,
	}
	if p.latest != nil {
		q := *p.latest
		st.Latest = &q
	}
	return st
}

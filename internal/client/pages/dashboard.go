package pages

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/dmitrijs2005/whatthenote/internal/client/collection"
	"github.com/dmitrijs2005/whatthenote/internal/client/models"
	"github.com/dmitrijs2005/whatthenote/internal/client/services"
	"github.com/dmitrijs2005/whatthenote/internal/client/views"
	"github.com/dmitrijs2005/whatthenote/internal/common"
)

type Tab string

const (
	TabAll      Tab = "all"
	TabRecent   Tab = "recent"
	TabSubjects Tab = "subjects"
)

func ParseTab(s string) (Tab, error) {
	switch t := Tab(strings.ToLower(strings.TrimSpace(s))); t {
	case TabAll, TabRecent, TabSubjects:
		return t, nil
	}
	return "", common.NewValidationError("tab", fmt.Sprintf("Unknown tab %q. Use all, recent or subjects", s))
}

// DashboardState is everything the dashboard renders.
type DashboardState struct {
	View           views.View
	Search         string
	Subject        string
	SubjectOptions []string
	Expanded       map[string]bool
	Tab            Tab
	Loading        bool
	Err            error
}

// IsExpanded reports whether the group of subject is open.
func (s DashboardState) IsExpanded(subject string) bool {
	return s.Expanded[subject]
}

// Dashboard lists the user's documents.
type Dashboard struct {
	docs  services.DocumentService
	cache *collection.Cache

	mu          sync.Mutex
	search      string
	subject     string
	mode        views.ViewMode
	expanded    map[string]bool
	tab         Tab
	err         error
	stale       bool
	unsubscribe func()
}

func NewDashboard(docs services.DocumentService) *Dashboard {
	d := &Dashboard{docs: docs, cache: docs.Cache()}
	d.reset()
	return d
}

func (d *Dashboard) reset() {
	d.search = ""
	d.subject = views.AllSubjects
	d.mode = views.ViewGrid
	d.expanded = make(map[string]bool)
	d.tab = TabAll
	d.err = nil
	d.stale = false
}

// Mount resets the controls, starts observing the cache and loads the
// document list. The load error is also kept in State.
func (d *Dashboard) Mount(ctx context.Context) error {
	d.mu.Lock()
	d.reset()
	if d.unsubscribe == nil {
		d.unsubscribe = d.cache.Subscribe(d.onEvent)
	}
	d.mu.Unlock()

	err := d.docs.Load(ctx)

	d.mu.Lock()
	d.err = err
	d.mu.Unlock()
	return err
}

func (d *Dashboard) Unmount() {
	d.mu.Lock()
	unsubscribe := d.unsubscribe
	d.unsubscribe = nil
	d.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
}

// Refresh reloads the list without touching the controls.
func (d *Dashboard) Refresh(ctx context.Context) error {
	err := d.docs.Load(ctx)
	d.mu.Lock()
	d.err = err
	d.mu.Unlock()
	return err
}

func (d *Dashboard) onEvent(collection.Event) {
	present := make(map[string]bool)
	for _, doc := range d.cache.Documents() {
		present[doc.SubjectOrDefault()] = true
	}
	subjects := d.cache.Subjects()

	d.mu.Lock()
	defer d.mu.Unlock()
	d.stale = true
	for s := range d.expanded {
		if !present[s] {
			delete(d.expanded, s)
		}
	}
	if d.subject != views.AllSubjects && !slices.Contains(subjects, d.subject) {
		d.subject = views.AllSubjects
	}
}

// Stale reports whether the cache changed since the last State call.
func (d *Dashboard) Stale() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stale
}

func (d *Dashboard) SetSearch(s string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.search = s
}

// SetSubject accepts AllSubjects or a subject present in the cache.
func (d *Dashboard) SetSubject(s string) error {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, views.AllSubjects) {
		s = views.AllSubjects
	} else if !slices.Contains(d.cache.Subjects(), s) {
		return common.NewValidationError("subject", fmt.Sprintf("Unknown subject %q", s))
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.subject = s
	return nil
}

func (d *Dashboard) SetViewMode(m views.ViewMode) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.mode = m
}

// ToggleSubject flips the expanded flag of a subject group and returns the
// new value.
func (d *Dashboard) ToggleSubject(subject string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.expanded[subject] = !d.expanded[subject]
	if !d.expanded[subject] {
		delete(d.expanded, subject)
		return false
	}
	return true
}

func (d *Dashboard) SetTab(t Tab) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.tab = t
}

func (d *Dashboard) State() DashboardState {
	docs := d.cache.Documents()
	subjects := d.cache.Subjects()
	loading := d.cache.Loading()

	d.mu.Lock()
	defer d.mu.Unlock()
	d.stale = false

	expanded := make(map[string]bool, len(d.expanded))
	for k, v := range d.expanded {
		expanded[k] = v
	}
	return DashboardState{
		View:           views.Build(docs, d.search, d.subject, d.mode),
		Search:         d.search,
		Subject:        d.subject,
		SubjectOptions: append([]string{views.AllSubjects}, subjects...),
		Expanded:       expanded,
		Tab:            d.tab,
		Loading:        loading,
		Err:            d.err,
	}
}

// Delete removes a document after confirm approves it.
func (d *Dashboard) Delete(ctx context.Context, id models.ID, confirm Confirm) error {
	title := id.String()
	if doc, ok := d.cache.Get(id); ok {
		title = doc.Title
	}
	if !confirmed(confirm, fmt.Sprintf("Delete %q? This cannot be undone.", title)) {
		return ErrCancelled
	}
	return d.docs.Delete(ctx, id)
}

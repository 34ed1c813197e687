package pages

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/dmitrijs2005/whatthenote/internal/client/client"
	"github.com/dmitrijs2005/whatthenote/internal/client/client/clienttest"
	"github.com/dmitrijs2005/whatthenote/internal/client/collection"
	"github.com/dmitrijs2005/whatthenote/internal/client/models"
	"github.com/dmitrijs2005/whatthenote/internal/client/services"
	"github.com/dmitrijs2005/whatthenote/internal/client/views"
	"github.com/dmitrijs2005/whatthenote/internal/common"
	"github.com/dmitrijs2005/whatthenote/internal/timex"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func library() []models.Document {
	return []models.Document{
		{ID: "1", Title: "ML Basics", Subject: "CS", LastViewed: timex.Ptr("2023-05-20T10:00:00Z")},
		{ID: "2", Title: "Quantum", Subject: "Physics"},
		{ID: "3", Title: "Essay"},
	}
}

func newDocs(fc *clienttest.Client) services.DocumentService {
	if fc.ListDocumentsFn == nil {
		fc.ListDocumentsFn = func() ([]models.Document, error) { return library(), nil }
	}
	return services.NewDocumentService(fc, collection.New(), nil)
}

func yes(string) bool { return true }
func no(string) bool  { return false }

func TestDashboard_MountAndState(t *testing.T) {
	d := NewDashboard(newDocs(&clienttest.Client{}))
	require.NoError(t, d.Mount(context.Background()))
	defer d.Unmount()

	st := d.State()
	assert.Len(t, st.View.Filtered, 3)
	assert.Equal(t, []string{views.AllSubjects, "CS", "Physics"}, st.SubjectOptions)
	assert.Equal(t, TabAll, st.Tab)
	assert.Equal(t, views.ViewGrid, st.View.ViewMode)
	assert.Equal(t, views.AllSubjects, st.Subject)
	assert.Len(t, st.View.Recent, 1)
	assert.NoError(t, st.Err)
}

func TestDashboard_MountErrorKeptInState(t *testing.T) {
	fc := &clienttest.Client{ListDocumentsFn: func() ([]models.Document, error) {
		return nil, &client.APIError{Kind: client.KindNetwork, Message: client.NetworkErrorMessage}
	}}
	d := NewDashboard(newDocs(fc))

	err := d.Mount(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, d.State().Err, client.ErrUnavailable)
}

func TestDashboard_Controls(t *testing.T) {
	d := NewDashboard(newDocs(&clienttest.Client{}))
	require.NoError(t, d.Mount(context.Background()))

	d.SetSearch("ml")
	st := d.State()
	require.Len(t, st.View.Filtered, 1)
	assert.Equal(t, models.ID("1"), st.View.Filtered[0].ID)

	d.SetSearch("")
	require.NoError(t, d.SetSubject("Physics"))
	st = d.State()
	require.Len(t, st.View.Filtered, 1)
	assert.Equal(t, "Physics", st.Subject)

	assert.ErrorIs(t, d.SetSubject("Art"), common.ErrValidation)
	require.NoError(t, d.SetSubject("ALL"))
	assert.Equal(t, views.AllSubjects, d.State().Subject)

	d.SetViewMode(views.ViewList)
	d.SetTab(TabSubjects)
	st = d.State()
	assert.Equal(t, views.ViewList, st.View.ViewMode)
	assert.Equal(t, TabSubjects, st.Tab)

	assert.True(t, d.ToggleSubject("CS"))
	assert.True(t, d.State().IsExpanded("CS"))
	assert.False(t, d.ToggleSubject("CS"))
	assert.False(t, d.State().IsExpanded("CS"))
}

func TestDashboard_RemountResetsControls(t *testing.T) {
	d := NewDashboard(newDocs(&clienttest.Client{}))
	require.NoError(t, d.Mount(context.Background()))
	d.SetSearch("ml")
	d.SetTab(TabRecent)
	d.ToggleSubject("CS")

	require.NoError(t, d.Mount(context.Background()))
	st := d.State()
	assert.Empty(t, st.Search)
	assert.Equal(t, TabAll, st.Tab)
	assert.Empty(t, st.Expanded)
}

func TestDashboard_ObservesDeletion(t *testing.T) {
	fc := &clienttest.Client{DeleteFn: func(models.ID) error { return nil }}
	docs := newDocs(fc)
	d := NewDashboard(docs)
	require.NoError(t, d.Mount(context.Background()))
	defer d.Unmount()

	require.NoError(t, d.SetSubject("Physics"))
	d.ToggleSubject("Physics")
	d.ToggleSubject("CS")
	_ = d.State()
	assert.False(t, d.Stale())

	require.NoError(t, d.Delete(context.Background(), "2", yes))

	assert.True(t, d.Stale())
	st := d.State()
	assert.False(t, d.Stale())
	assert.Len(t, st.View.Filtered, 2)
	assert.Equal(t, views.AllSubjects, st.Subject, "vanished subject falls back to all")
	assert.False(t, st.IsExpanded("Physics"))
	assert.True(t, st.IsExpanded("CS"))
}

func TestDashboard_DeleteRequiresConfirmation(t *testing.T) {
	fc := &clienttest.Client{DeleteFn: func(models.ID) error { return nil }}
	d := NewDashboard(newDocs(fc))
	require.NoError(t, d.Mount(context.Background()))

	var prompt string
	err := d.Delete(context.Background(), "1", func(p string) bool { prompt = p; return false })
	assert.ErrorIs(t, err, ErrCancelled)
	assert.Contains(t, prompt, "ML Basics")
	assert.Zero(t, fc.Count("DeleteDocument"))

	assert.ErrorIs(t, d.Delete(context.Background(), "1", nil), ErrCancelled)
	assert.Len(t, d.State().View.Filtered, 3)
}

func TestDashboard_UnmountStopsObserving(t *testing.T) {
	docs := newDocs(&clienttest.Client{})
	d := NewDashboard(docs)
	require.NoError(t, d.Mount(context.Background()))
	_ = d.State()
	d.Unmount()
	d.Unmount()

	docs.Cache().InsertFront(models.Document{ID: "9", Title: "new"})
	assert.False(t, d.Stale())
}

func TestParseTabs(t *testing.T) {
	tab, err := ParseTab(" Recent ")
	require.NoError(t, err)
	assert.Equal(t, TabRecent, tab)
	_, err = ParseTab("processed")
	assert.ErrorIs(t, err, common.ErrValidation)

	dt, err := ParseDocumentTab("QA")
	require.NoError(t, err)
	assert.Equal(t, TabQA, dt)
	_, err = ParseDocumentTab("x")
	assert.ErrorIs(t, err, common.ErrValidation)
}

func detailClient() *clienttest.Client {
	return &clienttest.Client{
		GetDocumentFn: func(id models.ID) (models.Document, error) {
			for _, d := range library() {
				if d.ID == id {
					d.Summary = "summary of " + d.Title
					return d, nil
				}
			}
			return models.Document{}, &client.APIError{Kind: client.KindRequest, Status: 404, Message: "Document not found", Detail: "Document not found"}
		},
		AskFn: func(_ context.Context, id models.ID, question string) (models.Query, error) {
			return models.Query{Question: question, Answer: "answer to " + question}, nil
		},
		DeleteFn: func(models.ID) error { return nil },
	}
}

func TestDocumentPage_MountAndAsk(t *testing.T) {
	fc := detailClient()
	docs := newDocs(fc)
	require.NoError(t, docs.Load(context.Background()))

	p := NewDocumentPage(docs)
	require.NoError(t, p.Mount(context.Background(), "1"))
	defer p.Unmount()

	st := p.State()
	assert.True(t, st.Mounted)
	assert.Equal(t, TabSummary, st.Tab)
	assert.Equal(t, "summary of ML Basics", st.Document.Summary)

	q, err := p.Ask(context.Background(), "What is ML?")
	require.NoError(t, err)

	st = p.State()
	require.NotNil(t, st.Latest)
	assert.Equal(t, q, *st.Latest)
	require.Len(t, st.Document.Queries, 1)
	assert.Equal(t, "What is ML?", st.Document.Queries[0].Question)

	cached, _ := docs.Cache().Get("1")
	assert.Len(t, cached.Queries, 1)
}

func TestDocumentPage_AskNotCachedDocument(t *testing.T) {
	docs := newDocs(detailClient())
	p := NewDocumentPage(docs)
	require.NoError(t, p.Mount(context.Background(), "2"))

	_, err := p.Ask(context.Background(), "Why?")
	require.NoError(t, err)
	assert.Len(t, p.State().Document.Queries, 1)
}

func TestDocumentPage_EmptyQuestion(t *testing.T) {
	fc := detailClient()
	p := NewDocumentPage(newDocs(fc))
	require.NoError(t, p.Mount(context.Background(), "1"))

	_, err := p.Ask(context.Background(), "  ")
	assert.ErrorIs(t, err, common.ErrValidation)
	st := p.State()
	assert.ErrorIs(t, st.AskErr, common.ErrValidation)
	assert.Empty(t, st.Document.Queries)
	assert.Zero(t, fc.Count("AskQuestion"))
}

func TestDocumentPage_MountNotFound(t *testing.T) {
	p := NewDocumentPage(newDocs(detailClient()))
	err := p.Mount(context.Background(), "404")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Document not found")
	assert.False(t, p.State().Mounted)
}

func TestDocumentPage_ObservesDeletion(t *testing.T) {
	docs := newDocs(detailClient())
	require.NoError(t, docs.Load(context.Background()))

	p := NewDocumentPage(docs)
	require.NoError(t, p.Mount(context.Background(), "1"))

	other := NewDashboard(docs)
	require.NoError(t, other.Delete(context.Background(), "1", yes))

	assert.True(t, p.State().Gone)
	_, err := p.Ask(context.Background(), "still there?")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestDocumentPage_Delete(t *testing.T) {
	fc := detailClient()
	docs := newDocs(fc)
	require.NoError(t, docs.Load(context.Background()))
	p := NewDocumentPage(docs)
	require.NoError(t, p.Mount(context.Background(), "1"))

	assert.ErrorIs(t, p.Delete(context.Background(), no), ErrCancelled)
	assert.Zero(t, fc.Count("DeleteDocument"))

	require.NoError(t, p.Delete(context.Background(), yes))
	assert.True(t, p.State().Gone)
	_, ok := docs.Cache().Get("1")
	assert.False(t, ok)
}

func TestDocumentPage_Unmounted(t *testing.T) {
	p := NewDocumentPage(newDocs(detailClient()))
	_, err := p.Ask(context.Background(), "q")
	assert.ErrorIs(t, err, common.ErrNotFound)
	assert.ErrorIs(t, p.Delete(context.Background(), yes), common.ErrNotFound)
}

func TestDocumentPage_TabsAndSuggestions(t *testing.T) {
	p := NewDocumentPage(newDocs(detailClient()))
	p.SetTab(TabHistory)
	assert.Equal(t, TabHistory, p.State().Tab)
	assert.Len(t, p.Suggestions(3), 3)
}

func writeFile(t *testing.T, name string, size int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(strings.Repeat("x", size)), 0o600))
	return path
}

func newUploadPage(fc *clienttest.Client, maxMB int) (*UploadPage, *collection.Cache) {
	cache := collection.New()
	flow := services.NewUploadFlow(fc, cache, services.UploadRules{AllowedTypes: []string{".pdf"}, MaxSizeMB: maxMB}, nil)
	return NewUploadPage(flow), cache
}

func TestUploadPage_Submit(t *testing.T) {
	fc := &clienttest.Client{UploadFn: func(name string, r io.Reader) (models.Document, error) {
		b, _ := io.ReadAll(r)
		assert.Equal(t, "notes.pdf", name)
		assert.Len(t, b, 64)
		return models.Document{ID: "7", Title: "notes"}, nil
	}}
	p, cache := newUploadPage(fc, 10)

	require.NoError(t, p.Select(writeFile(t, "notes.pdf", 64)))
	_, size := p.Selected()
	assert.Equal(t, int64(64), size)

	doc, err := p.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.ID("7"), doc.ID)
	assert.Equal(t, services.UploadSucceeded, p.Status().State)
	assert.Equal(t, 1, cache.Len())

	path, _ := p.Selected()
	assert.Empty(t, path)
}

func TestUploadPage_ValidationFailsLocally(t *testing.T) {
	fc := &clienttest.Client{}
	p, _ := newUploadPage(fc, 1)

	require.NoError(t, p.Select(writeFile(t, "big.pdf", 2*1024*1024)))
	_, err := p.Submit(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Maximum size: 1MB")
	assert.Equal(t, services.UploadIdle, p.Status().State)

	require.NoError(t, p.Select(writeFile(t, "notes.txt", 10)))
	_, err = p.Submit(context.Background())
	assert.EqualError(t, err, "Invalid file type. Allowed types: .pdf")

	assert.Zero(t, fc.Total())
}

func TestUploadPage_SelectErrors(t *testing.T) {
	p, _ := newUploadPage(&clienttest.Client{}, 10)

	assert.ErrorIs(t, p.Select(filepath.Join(t.TempDir(), "missing.pdf")), common.ErrValidation)
	assert.ErrorIs(t, p.Select(t.TempDir()), common.ErrValidation)

	_, err := p.Submit(context.Background())
	assert.ErrorIs(t, err, common.ErrValidation)
	require.NoError(t, p.Reset())
}

func TestHome_Mount(t *testing.T) {
	var calls atomic.Int32
	fc := &clienttest.Client{
		FeaturesFn: func() ([]models.Feature, error) {
			calls.Add(1)
			return []models.Feature{{Icon: models.IconBot, Title: "Chat"}}, nil
		},
	}
	session := services.NewSessionStore(fc, setupDB(t), nil)
	h := NewHome(fc, session, nil)

	assert.Equal(t, DefaultFeatures, h.Features())
	require.NoError(t, h.Mount(context.Background()))

	assert.Equal(t, []models.Feature{{Icon: models.IconBot, Title: "Chat"}}, h.Features())
	st, _ := session.State()
	assert.Equal(t, services.SessionUnauthenticated, st)
	assert.Equal(t, int32(1), calls.Load())
}

func TestHome_FeatureFailureFallsBack(t *testing.T) {
	boom := &client.APIError{Kind: client.KindNetwork, Message: client.NetworkErrorMessage}
	fc := &clienttest.Client{FeaturesFn: func() ([]models.Feature, error) { return nil, boom }}
	h := NewHome(fc, services.NewSessionStore(fc, setupDB(t), nil), nil)

	require.NoError(t, h.Mount(context.Background()))
	assert.Equal(t, DefaultFeatures, h.Features())
	assert.True(t, errors.Is(h.FeaturesErr(), client.ErrUnavailable))
}

func TestDeleteAccount(t *testing.T) {
	fc := &clienttest.Client{
		LoginFn:       func(string, string) (string, error) { return "tok", nil },
		CurrentUserFn: func() (models.User, error) { return models.User{ID: "1", Email: "a@b.c"}, nil },
		DeleteUserFn:  func() error { return nil },
	}
	session := services.NewSessionStore(fc, setupDB(t), nil)
	require.NoError(t, session.Login(context.Background(), "a@b.c", "pw"))

	assert.ErrorIs(t, DeleteAccount(context.Background(), session, no), ErrCancelled)
	assert.True(t, session.Authenticated())

	require.NoError(t, DeleteAccount(context.Background(), session, yes))
	assert.False(t, session.Authenticated())
	assert.Equal(t, 1, fc.Count("DeleteUser"))
}

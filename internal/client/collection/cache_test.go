package collection

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/dmitrijs2005/whatthenote/internal/client/models"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func doc(id, title, subject string) models.Document {
	return models.Document{ID: models.ID(id), Title: title, Subject: subject}
}

func fixed(docs ...models.Document) FetchFunc {
	return func(context.Context) ([]models.Document, error) { return docs, nil }
}

// gated returns a fetch that blocks until release is closed, and a channel
// that is closed once the fetch has started.
func gated(release <-chan struct{}, docs ...models.Document) (FetchFunc, <-chan struct{}) {
	started := make(chan struct{})
	return func(context.Context) ([]models.Document, error) {
		close(started)
		<-release
		return docs, nil
	}, started
}

func ids(docs []models.Document) []models.ID {
	out := make([]models.ID, len(docs))
	for i, d := range docs {
		out[i] = d.ID
	}
	return out
}

type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) record(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) all() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

func TestLoad_ReplacesCollectionAndPublishes(t *testing.T) {
	c := New()
	rec := &recorder{}
	c.Subscribe(rec.record)

	require.NoError(t, c.Load(context.Background(), fixed(doc("1", "a", "CS"), doc("2", "b", ""), doc("3", "c", "CS"))))

	assert.Equal(t, []models.ID{"1", "2", "3"}, ids(c.Documents()))
	assert.Equal(t, []string{"CS"}, c.Subjects())
	assert.Equal(t, []Event{{Kind: EventReloaded}}, rec.all())
	assert.False(t, c.Loading())
}

func TestLoad_ErrorKeepsPreviousState(t *testing.T) {
	c := New()
	require.NoError(t, c.Load(context.Background(), fixed(doc("1", "a", ""))))

	boom := errors.New("boom")
	err := c.Load(context.Background(), func(context.Context) ([]models.Document, error) { return nil, boom })
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, c.Len())
}

func TestLoad_DropsDuplicateIDs(t *testing.T) {
	c := New()
	require.NoError(t, c.Load(context.Background(), fixed(doc("1", "first", ""), doc("1", "second", ""))))

	got, ok := c.Get("1")
	require.True(t, ok)
	assert.Equal(t, "first", got.Title)
	assert.Equal(t, 1, c.Len())
}

func TestRemove_AbsentIsNoop(t *testing.T) {
	c := New()
	require.NoError(t, c.Load(context.Background(), fixed(doc("1", "a", ""))))
	rec := &recorder{}
	c.Subscribe(rec.record)

	assert.False(t, c.Remove("nope"))
	assert.Equal(t, 1, c.Len())
	assert.Empty(t, rec.all())
}

func TestRemove_PresentRemovesExactlyOne(t *testing.T) {
	c := New()
	require.NoError(t, c.Load(context.Background(), fixed(doc("1", "a", "CS"), doc("2", "b", "Math"))))
	rec := &recorder{}
	c.Subscribe(rec.record)

	assert.True(t, c.Remove("1"))
	assert.False(t, c.Remove("1"))

	assert.Equal(t, []models.ID{"2"}, ids(c.Documents()))
	assert.Equal(t, []string{"Math"}, c.Subjects())
	assert.Equal(t, []Event{{Kind: EventDeleted, ID: "1"}}, rec.all())
}

func TestRemove_DuringLoadIsAppliedToResult(t *testing.T) {
	c := New()
	release := make(chan struct{})
	fetch, started := gated(release, doc("1", "a", ""), doc("2", "b", ""))

	done := make(chan error)
	go func() { done <- c.Load(context.Background(), fetch) }()
	<-started

	assert.True(t, c.Loading())
	assert.False(t, c.Remove("1"), "nothing cached yet")

	close(release)
	require.NoError(t, <-done)

	assert.Equal(t, []models.ID{"2"}, ids(c.Documents()))

	// Once no load is in flight, the pending set is cleared.
	require.NoError(t, c.Load(context.Background(), fixed(doc("1", "a", ""))))
	assert.Equal(t, []models.ID{"1"}, ids(c.Documents()))
}

func TestInsertFront_DuringLoadSurvivesResult(t *testing.T) {
	c := New()
	release := make(chan struct{})
	fetch, started := gated(release, doc("1", "a", ""), doc("2", "stale", ""))

	done := make(chan error)
	go func() { done <- c.Load(context.Background(), fetch) }()
	<-started

	c.InsertFront(doc("2", "uploaded", "Bio"))
	c.InsertFront(doc("3", "newest", ""))

	close(release)
	require.NoError(t, <-done)

	assert.Equal(t, []models.ID{"3", "2", "1"}, ids(c.Documents()))
	got, ok := c.Get("2")
	require.True(t, ok)
	assert.Equal(t, "uploaded", got.Title)
	assert.Equal(t, []string{"Bio"}, c.Subjects())

	// Once no load is in flight, insertions no longer shadow load results.
	require.NoError(t, c.Load(context.Background(), fixed(doc("1", "a", ""))))
	assert.Equal(t, []models.ID{"1"}, ids(c.Documents()))
}

func TestInsertThenRemove_DuringLoad(t *testing.T) {
	c := New()
	release := make(chan struct{})
	fetch, started := gated(release, doc("1", "a", ""))

	done := make(chan error)
	go func() { done <- c.Load(context.Background(), fetch) }()
	<-started

	c.InsertFront(doc("2", "b", ""))
	assert.True(t, c.Remove("2"))

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, []models.ID{"1"}, ids(c.Documents()))
}

func TestLoad_SupersededResultIsDiscarded(t *testing.T) {
	c := New()
	release := make(chan struct{})
	slow, started := gated(release, doc("old", "stale", ""))

	done := make(chan error)
	go func() { done <- c.Load(context.Background(), slow) }()
	<-started

	require.NoError(t, c.Load(context.Background(), fixed(doc("new", "fresh", ""))))

	close(release)
	require.NoError(t, <-done)

	assert.Equal(t, []models.ID{"new"}, ids(c.Documents()))
	assert.False(t, c.Loading())
}

func TestInsertFront_ReplacesStaleEntry(t *testing.T) {
	c := New()
	require.NoError(t, c.Load(context.Background(), fixed(doc("1", "a", ""), doc("2", "b", ""))))
	rec := &recorder{}
	c.Subscribe(rec.record)

	c.InsertFront(doc("2", "b2", "Bio"))

	assert.Equal(t, []models.ID{"2", "1"}, ids(c.Documents()))
	got, _ := c.Get("2")
	assert.Equal(t, "b2", got.Title)
	assert.Equal(t, []string{"Bio"}, c.Subjects())
	assert.Equal(t, []Event{{Kind: EventInserted, ID: "2"}}, rec.all())
}

func TestReplaceAndPrependQuery(t *testing.T) {
	c := New()
	require.NoError(t, c.Load(context.Background(), fixed(doc("1", "a", ""))))

	assert.False(t, c.Replace(doc("9", "x", "")))
	assert.True(t, c.Replace(doc("1", "renamed", "")))

	q := models.Query{Question: "q", Answer: "a"}
	assert.True(t, c.PrependQuery("1", q))
	assert.False(t, c.PrependQuery("9", q))

	got, _ := c.Get("1")
	assert.Equal(t, "renamed", got.Title)
	if diff := cmp.Diff([]models.Query{q}, got.Queries); diff != "" {
		t.Fatalf("queries mismatch (-want +got):\n%s", diff)
	}
}

func TestDocumentsReturnsCopies(t *testing.T) {
	c := New()
	require.NoError(t, c.Load(context.Background(), fixed(doc("1", "a", ""))))

	docs := c.Documents()
	docs[0].Title = "mutated"

	got, _ := c.Get("1")
	assert.Equal(t, "a", got.Title)
}

func TestUnsubscribe(t *testing.T) {
	c := New()
	rec := &recorder{}
	unsubscribe := c.Subscribe(rec.record)
	unsubscribe()
	unsubscribe()

	c.InsertFront(doc("1", "a", ""))
	assert.Empty(t, rec.all())
}

func TestHandlersMayCallBackIntoCache(t *testing.T) {
	c := New()
	var seen int
	c.Subscribe(func(e Event) {
		if e.Kind == EventDeleted {
			seen = c.Len()
		}
	})

	c.InsertFront(doc("1", "a", ""))
	c.InsertFront(doc("2", "b", ""))
	c.Remove("1")
	assert.Equal(t, 1, seen)
}

func TestZeroValueCache(t *testing.T) {
	var c Cache
	release := make(chan struct{})
	fetch, started := gated(release, doc("1", "a", ""))

	done := make(chan error)
	go func() { done <- c.Load(context.Background(), fetch) }()
	<-started
	c.Remove("1")
	close(release)
	require.NoError(t, <-done)
	assert.Zero(t, c.Len())
}

func TestEventKindString(t *testing.T) {
	assert.Equal(t, "deleted", EventDeleted.String())
	assert.Equal(t, "reloaded", EventReloaded.String())
	assert.Equal(t, "unknown", EventKind(0).String())
}

package models

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/whatthenote/internal/timex"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocument_UnmarshalBackendPayload(t *testing.T) {
	payload := `{
		"id": 7,
		"title": "Machine Learning Fundamentals",
		"subject": "Computer Science",
		"content": "Machine learning is a subfield of AI.",
		"summary": "An introduction.",
		"uploadedDate": "2023-04-15T10:00:00+03:00",
		"lastViewed": null,
		"queries": [{"question": "What is ML?", "answer": "A field of AI.", "timestamp": "2023-05-15T14:32:00"}]
	}`

	var d Document
	require.NoError(t, json.Unmarshal([]byte(payload), &d))

	assert.Equal(t, ID("7"), d.ID)
	assert.Equal(t, "Computer Science", d.Subject)
	assert.True(t, d.Processed())
	assert.Nil(t, d.LastViewed)
	_, ok := d.LastViewedAt()
	assert.False(t, ok)
	require.Len(t, d.Queries, 1)
	assert.Equal(t, "What is ML?", d.Queries[0].Question)
	assert.True(t, time.Date(2023, 4, 15, 7, 0, 0, 0, time.UTC).Equal(d.UploadedDate.Time))
}

func TestID_JSON(t *testing.T) {
	var id ID
	require.NoError(t, json.Unmarshal([]byte(`"abc"`), &id))
	assert.Equal(t, ID("abc"), id)

	require.NoError(t, json.Unmarshal([]byte(`42`), &id))
	assert.Equal(t, ID("42"), id)

	b, err := json.Marshal(ID("42"))
	require.NoError(t, err)
	assert.Equal(t, `42`, string(b))

	b, err = json.Marshal(ID("abc"))
	require.NoError(t, err)
	assert.Equal(t, `"abc"`, string(b))

	assert.Error(t, json.Unmarshal([]byte(`{}`), &id))
}

func TestDocument_SubjectOrDefault_DoesNotMutate(t *testing.T) {
	d := Document{ID: "1", Title: "x"}
	assert.Equal(t, "Uncategorized", d.SubjectOrDefault())
	assert.Empty(t, d.Subject)

	d.Subject = "Physics"
	assert.Equal(t, "Physics", d.SubjectOrDefault())
}

func TestDocument_Preview(t *testing.T) {
	short := Document{Content: "  short text  "}
	assert.Equal(t, "short text", short.Preview())

	long := Document{Content: strings.Repeat("é", PreviewLength+50)}
	assert.Equal(t, PreviewLength, len([]rune(long.Preview())))
}

func TestDocument_WithQuery_PrependsAndCopies(t *testing.T) {
	older := Query{Question: "old", Answer: "a", Timestamp: timex.MustParse("2023-05-15T14:32:00")}
	d := Document{ID: "1", Title: "ML", Queries: []Query{older}, LastViewed: timex.Ptr("2023-05-20")}

	newer := Query{Question: "What is ML?", Answer: "b"}
	got := d.WithQuery(newer)

	require.Len(t, got.Queries, 2)
	assert.Equal(t, newer, got.Queries[0])
	assert.Equal(t, older, got.Queries[1])
	assert.Len(t, d.Queries, 1, "receiver must not change")
	assert.NotSame(t, d.LastViewed, got.LastViewed)
}

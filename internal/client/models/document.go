// Package models defines client-side data models used by the WhatTheNote CLI.
package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/whatthenote/internal/common"
	"github.com/dmitrijs2005/whatthenote/internal/timex"
)

// PreviewLength is the number of runes of content shown as a card preview.
const PreviewLength = 200

// ID is an opaque document identifier. The backend emits integers; the
// client treats them as strings.
type ID string

func (id ID) String() string { return string(id) }

func (id ID) MarshalJSON() ([]byte, error) {
	if n, err := strconv.ParseInt(string(id), 10, 64); err == nil {
		return []byte(strconv.FormatInt(n, 10)), nil
	}
	return json.Marshal(string(id))
}

func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("document id: %w", err)
	}
	*id = ID(n.String())
	return nil
}

// Document is the server-side record of one uploaded file as seen by the client.
type Document struct {
	ID           ID          `json:"id"`
	Title        string      `json:"title"`
	Content      string      `json:"content,omitempty"`
	Summary      string      `json:"summary,omitempty"`
	Subject      string      `json:"subject,omitempty"`
	UploadedDate timex.Time  `json:"uploadedDate"`
	LastViewed   *timex.Time `json:"lastViewed,omitempty"`
	// Queries are ordered most-recent-first.
	Queries []Query `json:"queries,omitempty"`
}

// Query is one question/answer exchange for a document.
type Query struct {
	Question  string     `json:"question"`
	Answer    string     `json:"answer"`
	Timestamp timex.Time `json:"timestamp"`
}

// SubjectOrDefault returns the subject used for grouping. The stored record
// keeps its empty subject.
func (d Document) SubjectOrDefault() string {
	if strings.TrimSpace(d.Subject) == "" {
		return common.UncategorizedSubject
	}
	return d.Subject
}

// Processed reports whether the backend produced an AI summary.
func (d Document) Processed() bool {
	return strings.TrimSpace(d.Summary) != ""
}

// Preview is the first PreviewLength runes of the extracted content.
func (d Document) Preview() string {
	r := []rune(strings.TrimSpace(d.Content))
	if len(r) <= PreviewLength {
		return string(r)
	}
	return string(r[:PreviewLength])
}

// LastViewedAt returns the last-viewed instant and whether it is defined.
func (d Document) LastViewedAt() (time.Time, bool) {
	if d.LastViewed == nil || d.LastViewed.IsZero() {
		return time.Time{}, false
	}
	return d.LastViewed.Time, true
}

// Clone returns a copy that shares nothing mutable with d.
func (d Document) Clone() Document {
	c := d
	if d.LastViewed != nil {
		lv := *d.LastViewed
		c.LastViewed = &lv
	}
	if d.Queries != nil {
		c.Queries = append([]Query(nil), d.Queries...)
	}
	return c
}

// WithQuery returns a copy of d with q placed first in its history.
func (d Document) WithQuery(q Query) Document {
	c := d.Clone()
	c.Queries = append([]Query{q}, c.Queries...)
	return c
}

// SortQueries orders the history most-recent-first. Entries with equal
// timestamps keep their relative order.
func (d *Document) SortQueries() {
	sort.SliceStable(d.Queries, func(i, j int) bool {
		return d.Queries[i].Timestamp.After(d.Queries[j].Timestamp.Time)
	})
}

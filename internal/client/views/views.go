// Package views derives the dashboard projections from the cached document
// list and the current UI controls. Everything here is a pure function of
// its inputs.
package views

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dmitrijs2005/whatthenote/internal/client/models"
	"github.com/dmitrijs2005/whatthenote/internal/common"
)

// AllSubjects is the subject filter value that disables subject filtering.
const AllSubjects = common.AllSubjects

type ViewMode string

const (
	ViewGrid ViewMode = "grid"
	ViewList ViewMode = "list"
)

// ParseViewMode accepts "grid" or "list" in any case.
func ParseViewMode(s string) (ViewMode, error) {
	switch ViewMode(strings.ToLower(strings.TrimSpace(s))) {
	case ViewGrid:
		return ViewGrid, nil
	case ViewList:
		return ViewList, nil
	}
	return "", common.NewValidationError("view", fmt.Sprintf("Unknown view mode %q. Use grid or list", s))
}

// Group is the documents of one subject, in cache order.
type Group struct {
	Subject   string
	Documents []models.Document
}

type View struct {
	Filtered []models.Document
	Groups   []Group
	Recent   []models.Document
	ViewMode ViewMode
}

// Build computes every projection for the given controls.
func Build(docs []models.Document, search, subject string, mode ViewMode) View {
	filtered := Filter(docs, search, subject)
	return View{
		Filtered: filtered,
		Groups:   GroupBySubject(filtered),
		Recent:   RecentlyViewed(filtered),
		ViewMode: mode,
	}
}

// Filter keeps documents whose title contains search (case-insensitive) and
// whose subject equals subject, unless subject is AllSubjects or empty.
func Filter(docs []models.Document, search, subject string) []models.Document {
	needle := strings.ToLower(strings.TrimSpace(search))
	anySubject := subject == "" || subject == AllSubjects

	out := make([]models.Document, 0, len(docs))
	for _, d := range docs {
		if needle != "" && !strings.Contains(strings.ToLower(d.Title), needle) {
			continue
		}
		if !anySubject && d.Subject != subject {
			continue
		}
		out = append(out, d)
	}
	return out
}

// GroupBySubject partitions docs by SubjectOrDefault. Groups appear in the
// order their subject is first seen.
func GroupBySubject(docs []models.Document) []Group {
	var groups []Group
	index := make(map[string]int)
	for _, d := range docs {
		s := d.SubjectOrDefault()
		i, ok := index[s]
		if !ok {
			i = len(groups)
			index[s] = i
			groups = append(groups, Group{Subject: s})
		}
		groups[i].Documents = append(groups[i].Documents, d)
	}
	return groups
}

// RecentlyViewed returns the documents with a last-viewed time, newest
// first. Ties keep their input order.
func RecentlyViewed(docs []models.Document) []models.Document {
	out := make([]models.Document, 0, len(docs))
	for _, d := range docs {
		if _, ok := d.LastViewedAt(); ok {
			out = append(out, d)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		ti, _ := out[i].LastViewedAt()
		tj, _ := out[j].LastViewedAt()
		return ti.After(tj)
	})
	return out
}

// Group returns the group of subject, if any.
func (v View) Group(subject string) (Group, bool) {
	for _, g := range v.Groups {
		if g.Subject == subject {
			return g, true
		}
	}
	return Group{}, false
}

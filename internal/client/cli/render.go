package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/whatthenote/internal/client/models"
	"github.com/dmitrijs2005/whatthenote/internal/client/pages"
	"github.com/dmitrijs2005/whatthenote/internal/client/views"
)

const dateLayout = "Jan 2, 2006"

func uploaded(d models.Document) string {
	if d.UploadedDate.IsZero() {
		return "-"
	}
	return d.UploadedDate.Format(dateLayout)
}

func badge(d models.Document) string {
	if d.Processed() {
		return " [AI]"
	}
	return ""
}

func renderFeatures(w io.Writer, features []models.Feature) {
	fmt.Fprintln(w, "WhatTheNote: upload documents, read AI summaries, ask questions.")
	for _, f := range features {
		fmt.Fprintf(w, "  %-6s %s: %s\n", f.Icon.Glyph(), f.Title, f.Description)
	}
}

func renderDashboard(w io.Writer, st pages.DashboardState) {
	header := fmt.Sprintf("Documents (%d)  tab: %s  subject: %s  view: %s",
		len(st.View.Filtered), st.Tab, st.Subject, st.View.ViewMode)
	if st.Search != "" {
		header += fmt.Sprintf("  search: %q", st.Search)
	}
	fmt.Fprintln(w, header)

	if st.Loading {
		fmt.Fprintln(w, "Loading...")
	}

	switch st.Tab {
	case pages.TabRecent:
		if len(st.View.Recent) == 0 {
			fmt.Fprintln(w, "No recently viewed documents.")
			return
		}
		for _, d := range st.View.Recent {
			lv, _ := d.LastViewedAt()
			fmt.Fprintf(w, "  [%s] %s%s  viewed %s\n", d.ID, d.Title, badge(d), lv.Format(dateLayout+" 15:04"))
		}

	case pages.TabSubjects:
		if len(st.View.Groups) == 0 {
			fmt.Fprintln(w, "No documents found.")
			return
		}
		for _, g := range st.View.Groups {
			marker := "+"
			if st.IsExpanded(g.Subject) {
				marker = "-"
			}
			fmt.Fprintf(w, "%s %s (%d)\n", marker, g.Subject, len(g.Documents))
			if st.IsExpanded(g.Subject) {
				renderDocuments(w, g.Documents, st.View.ViewMode, "    ")
			}
		}

	default:
		if len(st.View.Filtered) == 0 {
			if st.Search == "" && st.Subject == views.AllSubjects {
				fmt.Fprintln(w, "No documents yet. Use 'upload <file.pdf>' to add one.")
			} else {
				fmt.Fprintln(w, "No documents found.")
			}
			return
		}
		renderDocuments(w, st.View.Filtered, st.View.ViewMode, "  ")
	}
}

func renderDocuments(w io.Writer, docs []models.Document, mode views.ViewMode, indent string) {
	for _, d := range docs {
		if mode == views.ViewList {
			fmt.Fprintf(w, "%s[%s] %s  %s  %s%s\n", indent, d.ID, d.Title, d.SubjectOrDefault(), uploaded(d), badge(d))
			continue
		}
		fmt.Fprintf(w, "%s[%s] %s%s\n", indent, d.ID, d.Title, badge(d))
		fmt.Fprintf(w, "%s    %s, uploaded %s, %d questions\n", indent, d.SubjectOrDefault(), uploaded(d), len(d.Queries))
		if p := d.Preview(); p != "" {
			fmt.Fprintf(w, "%s    %s\n", indent, strings.Join(strings.Fields(p), " "))
		}
	}
}

func renderDocument(w io.Writer, st pages.DocumentState, suggestions []string) {
	d := st.Document
	fmt.Fprintf(w, "[%s] %s%s\n", d.ID, d.Title, badge(d))
	fmt.Fprintf(w, "Subject: %s  Uploaded: %s\n", d.SubjectOrDefault(), uploaded(d))
	if st.Gone {
		fmt.Fprintln(w, "This document has been deleted.")
		return
	}
	fmt.Fprintf(w, "-- %s --\n", st.Tab)

	switch st.Tab {
	case pages.TabDocument:
		if strings.TrimSpace(d.Content) == "" {
			fmt.Fprintln(w, "Content is not available.")
			return
		}
		fmt.Fprintln(w, strings.TrimSpace(d.Content))

	case pages.TabQA:
		if st.Latest != nil {
			renderQuery(w, *st.Latest)
		} else {
			fmt.Fprintln(w, "Ask a question with: ask <question>")
		}
		if st.AskErr != nil {
			fmt.Fprintln(w, userMessage(st.AskErr))
		}
		if len(suggestions) > 0 {
			fmt.Fprintln(w, "Try asking:")
			for _, s := range suggestions {
				fmt.Fprintf(w, "  - %s\n", s)
			}
		}

	case pages.TabHistory:
		if len(d.Queries) == 0 {
			fmt.Fprintln(w, "No questions yet.")
			return
		}
		for _, q := range d.Queries {
			renderQuery(w, q)
		}

	default:
		if !d.Processed() {
			fmt.Fprintln(w, "Summary is not available yet.")
			return
		}
		fmt.Fprintln(w, strings.TrimSpace(d.Summary))
	}
}

func renderQuery(w io.Writer, q models.Query) {
	when := ""
	if !q.Timestamp.IsZero() {
		when = "  (" + q.Timestamp.Format(dateLayout+" 15:04") + ")"
	}
	fmt.Fprintf(w, "Q: %s%s\n", q.Question, when)
	fmt.Fprintf(w, "A: %s\n", strings.TrimSpace(q.Answer))
}

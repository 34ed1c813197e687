package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/whatthenote/internal/client/models"
	"github.com/dmitrijs2005/whatthenote/internal/client/pages"
	"github.com/dmitrijs2005/whatthenote/internal/client/views"
	"github.com/dmitrijs2005/whatthenote/internal/common"
)

// suggestionCount is how many starter questions the qa tab shows.
const suggestionCount = 4

var errNoDocument = fmt.Errorf("no document open: %w", common.ErrNotFound)

func (a *App) openDashboard(ctx context.Context) error {
	if err := a.dashboard.Mount(ctx); err != nil {
		return err
	}
	a.listed = true
	renderDashboard(a.out, a.dashboard.State())
	return nil
}

// ensureDashboard mounts the dashboard on first use after sign-in. Mount
// resets the controls, so it runs before any of them are changed.
func (a *App) ensureDashboard(ctx context.Context) error {
	if a.listed {
		return nil
	}
	if err := a.dashboard.Mount(ctx); err != nil {
		return err
	}
	a.listed = true
	return nil
}

func (a *App) closePages() {
	a.listed = false
	a.dashboard.Unmount()
	a.document.Unmount()
}

// List renders the dashboard, optionally switching to the given tab.
func (a *App) List(ctx context.Context, args []string) error {
	if err := a.ensureDashboard(ctx); err != nil {
		return err
	}
	if len(args) > 0 {
		tab, err := pages.ParseTab(args[0])
		if err != nil {
			return err
		}
		a.dashboard.SetTab(tab)
	}
	renderDashboard(a.out, a.dashboard.State())
	return nil
}

func (a *App) Search(ctx context.Context, args []string) error {
	if err := a.ensureDashboard(ctx); err != nil {
		return err
	}
	a.dashboard.SetSearch(strings.Join(args, " "))
	renderDashboard(a.out, a.dashboard.State())
	return nil
}

func (a *App) Subject(ctx context.Context, args []string) error {
	if err := a.ensureDashboard(ctx); err != nil {
		return err
	}
	subject := views.AllSubjects
	if len(args) > 0 {
		subject = strings.Join(args, " ")
	}
	if err := a.dashboard.SetSubject(subject); err != nil {
		return err
	}
	renderDashboard(a.out, a.dashboard.State())
	return nil
}

func (a *App) Subjects(ctx context.Context, _ []string) error {
	if err := a.ensureDashboard(ctx); err != nil {
		return err
	}
	st := a.dashboard.State()
	for _, s := range st.SubjectOptions {
		marker := " "
		if s == st.Subject {
			marker = "*"
		}
		fmt.Fprintf(a.out, "%s %s\n", marker, s)
	}
	return nil
}

func (a *App) View(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return common.NewValidationError("view", "Usage: view grid|list")
	}
	mode, err := views.ParseViewMode(args[0])
	if err != nil {
		return err
	}
	if err := a.ensureDashboard(ctx); err != nil {
		return err
	}
	a.dashboard.SetViewMode(mode)
	renderDashboard(a.out, a.dashboard.State())
	return nil
}

// Toggle opens or closes a subject group and shows the subjects tab.
func (a *App) Toggle(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return common.NewValidationError("subject", "Usage: toggle <subject>")
	}
	if err := a.ensureDashboard(ctx); err != nil {
		return err
	}
	a.dashboard.ToggleSubject(strings.Join(args, " "))
	a.dashboard.SetTab(pages.TabSubjects)
	renderDashboard(a.out, a.dashboard.State())
	return nil
}

// Browse asks the server for the dashboard of one subject. The cached list
// is left alone.
func (a *App) Browse(ctx context.Context, args []string) error {
	subject := views.AllSubjects
	if len(args) > 0 {
		subject = strings.Join(args, " ")
	}
	docs, err := a.docs.BySubject(ctx, subject)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Server dashboard for %s (%d)\n", subject, len(docs))
	if len(docs) == 0 {
		fmt.Fprintln(a.out, "No documents found.")
		return nil
	}
	renderDocuments(a.out, docs, views.ViewList, "  ")
	return nil
}

func (a *App) Refresh(ctx context.Context, _ []string) error {
	if err := a.dashboard.Refresh(ctx); err != nil {
		return err
	}
	renderDashboard(a.out, a.dashboard.State())
	return nil
}

// Show opens a document, optionally on the given tab.
func (a *App) Show(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return a.renderDocument()
	}
	var tab pages.DocumentTab
	if len(args) > 1 {
		t, err := pages.ParseDocumentTab(args[1])
		if err != nil {
			return err
		}
		tab = t
	}
	if err := a.document.Mount(ctx, models.ID(args[0])); err != nil {
		return err
	}
	if tab != "" {
		a.document.SetTab(tab)
	}
	return a.renderDocument()
}

func (a *App) Tab(_ context.Context, args []string) error {
	if len(args) == 0 {
		return common.NewValidationError("tab", "Usage: tab summary|document|qa|history")
	}
	tab, err := pages.ParseDocumentTab(args[0])
	if err != nil {
		return err
	}
	if !a.document.State().Mounted {
		return errNoDocument
	}
	a.document.SetTab(tab)
	return a.renderDocument()
}

func (a *App) Ask(ctx context.Context, args []string) error {
	if !a.document.State().Mounted {
		return errNoDocument
	}
	a.document.SetTab(pages.TabQA)
	fmt.Fprintln(a.out, "Thinking...")
	if _, err := a.document.Ask(ctx, strings.Join(args, " ")); err != nil {
		var ve *common.ValidationError
		if errors.As(err, &ve) {
			return err
		}
	}
	return a.renderDocument()
}

func (a *App) History(ctx context.Context, _ []string) error {
	return a.Tab(ctx, []string{string(pages.TabHistory)})
}

func (a *App) Suggest(_ context.Context, _ []string) error {
	for i, q := range a.document.Suggestions(suggestionCount) {
		fmt.Fprintf(a.out, "%d. %s\n", i+1, q)
	}
	return nil
}

func (a *App) Upload(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return common.NewValidationError("file", "Usage: upload <path>")
	}
	if err := a.upload.Select(strings.Join(args, " ")); err != nil {
		return err
	}
	name, _ := a.upload.Selected()
	fmt.Fprintf(a.out, "Uploading %s...\n", name)

	doc, err := a.upload.Submit(ctx)
	if err != nil {
		_ = a.upload.Reset()
		return err
	}
	fmt.Fprintf(a.out, "Uploaded [%s] %s\n", doc.ID, doc.Title)
	return a.Show(ctx, []string{doc.ID.String()})
}

// Delete removes the given document, or the open one.
func (a *App) Delete(ctx context.Context, args []string) error {
	if len(args) == 0 {
		if !a.document.State().Mounted {
			return errNoDocument
		}
		if err := a.document.Delete(ctx, a.confirm); err != nil {
			return err
		}
		fmt.Fprintln(a.out, "Document deleted.")
		a.document.Unmount()
		return nil
	}
	if err := a.dashboard.Delete(ctx, models.ID(args[0]), a.confirm); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Document deleted.")
	return nil
}

// Export writes the report of the given or open document to every
// configured target.
func (a *App) Export(ctx context.Context, args []string) error {
	var doc models.Document
	if len(args) > 0 {
		d, err := a.docs.Open(ctx, models.ID(args[0]))
		if err != nil {
			return err
		}
		doc = d
	} else {
		st := a.document.State()
		if !st.Mounted || st.Gone {
			return errNoDocument
		}
		doc = st.Document
	}

	for _, x := range a.exporters {
		where, err := x.Export(ctx, doc)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Exported to %s\n", where)
	}
	return nil
}

func (a *App) renderDocument() error {
	st := a.document.State()
	if !st.Mounted {
		return errNoDocument
	}
	var suggestions []string
	if st.Tab == pages.TabQA && st.Latest == nil && len(st.Document.Queries) == 0 {
		suggestions = a.document.Suggestions(suggestionCount)
	}
	renderDocument(a.out, st, suggestions)
	return nil
}

package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dmitrijs2005/whatthenote/internal/client/client"
	"github.com/dmitrijs2005/whatthenote/internal/client/collection"
	"github.com/dmitrijs2005/whatthenote/internal/client/config"
	"github.com/dmitrijs2005/whatthenote/internal/client/export"
	"github.com/dmitrijs2005/whatthenote/internal/client/pages"
	"github.com/dmitrijs2005/whatthenote/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/whatthenote/internal/client/services"
	"github.com/dmitrijs2005/whatthenote/internal/logging"
)

// App is the interactive client: one set of pages over one session.
type App struct {
	config  *config.Config
	logger  logging.Logger
	db      *sql.DB
	api     client.Client
	session *services.SessionStore
	docs    services.DocumentService

	home      *pages.Home
	dashboard *pages.Dashboard
	document  *pages.DocumentPage
	upload    *pages.UploadPage
	exporters []export.Exporter

	reader *bufio.Reader
	out    io.Writer
	// listed is set once the dashboard has been mounted for this session.
	listed bool

	unsubscribe func()
}

// NewApp opens the local database and wires the API client, the session
// and the pages.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewTextLogger(os.Stderr, c.LogLevel)

	db, err := client.InitDatabase(ctx, c.DatabasePath)
	if err != nil {
		logger.Error(ctx, "error initializing database", "error", err)
		return nil, err
	}

	a := newHTTPApp(c, logger, db, bufio.NewReader(os.Stdin), os.Stdout)

	if c.S3Enabled() {
		s3x, err := export.NewS3Exporter(ctx, export.S3Config{
			Bucket:       c.S3Bucket,
			Region:       c.S3Region,
			BaseEndpoint: c.S3BaseEndpoint,
			AccessKey:    c.S3AccessKey,
			SecretKey:    c.S3SecretKey,
		})
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		a.exporters = append(a.exporters, s3x)
	}
	return a, nil
}

// newHTTPApp builds the app over the real API client and routes its
// authorization failures through onUnauthorized.
func newHTTPApp(c *config.Config, logger logging.Logger, db *sql.DB, reader *bufio.Reader, out io.Writer) *App {
	tokens := services.NewTokenStore(metadata.NewSQLiteRepository(db))
	api := client.NewHTTPClient(c.ServerURL, tokens,
		client.WithLogger(logger),
		client.WithTimeouts(c.RequestTimeout, c.ProcessingTimeout),
	)
	a := newApp(c, logger, db, api, reader, out)
	api.OnUnauthorized(a.onUnauthorized)
	return a
}

func newApp(c *config.Config, logger logging.Logger, db *sql.DB, api client.Client, reader *bufio.Reader, out io.Writer) *App {
	cache := collection.New()
	session := services.NewSessionStore(api, db, logger)
	docs := services.NewDocumentService(api, cache, logger)
	flow := services.NewUploadFlow(api, cache, services.UploadRules{
		AllowedTypes: c.UploadAllowedTypes,
		MaxSizeMB:    c.UploadMaxSizeMB,
	}, logger)

	a := &App{
		config:    c,
		logger:    logger,
		db:        db,
		api:       api,
		session:   session,
		docs:      docs,
		home:      pages.NewHome(api, session, logger),
		dashboard: pages.NewDashboard(docs),
		document:  pages.NewDocumentPage(docs),
		upload:    pages.NewUploadPage(flow),
		exporters: []export.Exporter{export.NewFileExporter(c.ExportDir)},
		reader:    reader,
		out:       out,
	}
	a.unsubscribe = session.Subscribe(a.onSession)
	return a
}

// Run shows the landing screen and blocks in the REPL until the user exits.
func (a *App) Run(ctx context.Context) error {
	defer a.Close()

	if err := a.home.Mount(ctx); err != nil {
		a.logger.Warn(ctx, "restoring session failed", "error", err)
	}
	a.showFeatures()

	if a.isLoggedIn() {
		_, user := a.session.State()
		fmt.Fprintf(a.out, "Welcome back, %s.\n", user.Name)
		if err := a.openDashboard(ctx); err != nil {
			printlnFn(userMessage(err))
		}
	} else {
		fmt.Fprintln(a.out, "Type 'login' or 'register' to get started, 'help' for all commands.")
	}

	runREPL(ctx, a, a.status, bufio.NewScanner(a.reader))
	return nil
}

// Close releases the pages and the local database.
func (a *App) Close() {
	if a.unsubscribe != nil {
		a.unsubscribe()
		a.unsubscribe = nil
	}
	a.closePages()
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Warn(context.Background(), "closing database failed", "error", err)
		}
		a.db = nil
	}
}

func (a *App) isLoggedIn() bool {
	return a.session.Authenticated()
}

// staleHint is appended to the prompt status once the listed documents
// have changed since the dashboard was last printed.
const staleHint = "list changed, type 'list'"

func (a *App) status() string {
	state, user := a.session.State()
	if state != services.SessionAuthenticated {
		return state.String()
	}
	status := user.Email
	if st := a.document.State(); st.Mounted && !st.Gone {
		status += " | " + truncate(st.Document.Title, 24)
	}
	if a.listed && a.dashboard.Stale() {
		status += " | " + staleHint
	}
	return status
}

// onSession drops the pages of a session that ended, whichever way it ended.
func (a *App) onSession(e services.SessionEvent) {
	a.logger.Debug(context.Background(), "session changed", "state", e.State.String())
	if e.State == services.SessionUnauthenticated {
		a.closePages()
	}
}

// onUnauthorized drops the session after a 401. The expiry notice is only
// printed for a session that had been confirmed.
func (a *App) onUnauthorized(ctx context.Context) {
	expired := a.session.Authenticated()
	a.session.HandleUnauthorized(ctx)
	if expired {
		fmt.Fprintln(a.out, "Session expired. Please log in again.")
	}
}

func (a *App) confirm(prompt string) bool {
	return confirmFn(a.reader, prompt, a.out)
}

func truncate(s string, n int) string {
	r := []rune(strings.TrimSpace(s))
	if len(r) <= n {
		return string(r)
	}
	return string(r[:n-1]) + "…"
}

package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/dreamteller/internal/client/client"
	"github.com/dmitrijs2005/dreamteller/internal/client/config"
	"github.com/dmitrijs2005/dreamteller/internal/client/identity"
	"github.com/dmitrijs2005/dreamteller/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/dreamteller/internal/client/services"
	"github.com/dmitrijs2005/dreamteller/internal/logging"
)

// App wires the dream store, the auth session and local preferences to a
// terminal.
type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB

	auth   *services.AuthSession
	dreams *services.DreamStore
	prefs  *services.PreferencesService

	reader *bufio.Reader
	out    io.Writer
}

// NewApp opens the local database and picks the identity provider: the
// in-process one when cfg.OfflineIdentity is set, the auth API otherwise.
func NewApp(ctx context.Context, cfg *config.Config, logger logging.Logger) (*App, error) {
	db, err := client.InitDatabase(ctx, cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("init database: %w", err)
	}

	var provider identity.Provider
	if cfg.OfflineIdentity {
		provider = identity.NewMemoryProvider()
	} else {
		provider = identity.NewHTTPProvider(identity.HTTPProviderConfig{
			BaseURL: cfg.IdentityURL(),
			Timeout: cfg.RequestTimeout,
			Logger:  logger,
		})
	}

	api := client.NewHTTPClient(client.HTTPClientConfig{
		BaseURL: cfg.ServerBaseURL,
		Timeout: cfg.RequestTimeout,
		Logger:  logger,
	})

	return newApp(cfg, logger, db, provider, api, os.Stdin, os.Stdout), nil
}

func newApp(cfg *config.Config, logger logging.Logger, db *sql.DB, provider identity.Provider,
	api client.Client, in io.Reader, out io.Writer) *App {

	session := client.NewSession()
	return &App{
		config: cfg,
		logger: logger,
		db:     db,
		auth:   services.NewAuthSession(provider, session, logger),
		dreams: services.NewDreamStore(api, session, logger),
		prefs:  services.NewPreferencesService(metadata.NewSQLiteRepository(db)),
		reader: bufio.NewReader(in),
		out:    out,
	}
}

// Run starts the auth listener, shows onboarding on first launch and then
// serves the REPL until exit or EOF.
func (a *App) Run(ctx context.Context) error {
	a.auth.Start(ctx)
	defer a.Close()

	if err := a.showOnboarding(ctx, false); err != nil {
		a.logger.Warn(ctx, "onboarding", "error", err)
	}

	a.println("Type 'help' to see available commands.")
	runREPL(ctx, a, a.status, a.reader)
	return nil
}

// Close stops the auth listener and closes the local database.
func (a *App) Close() {
	a.auth.Close()
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Warn(context.Background(), "close database", "error", err)
		}
		a.db = nil
	}
}

func (a *App) isLoggedIn() bool {
	return a.auth.Snapshot().IsAuthenticated
}

func (a *App) status() string {
	st := a.auth.Snapshot()
	if !st.IsAuthenticated {
		return "not logged in"
	}
	return fmt.Sprintf("%s %s", st.Email, formatDay(a.dreams.SelectedDate()))
}

func (a *App) println(args ...any) {
	fmt.Fprintln(a.out, args...)
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

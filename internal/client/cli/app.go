package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/samplekeeper/internal/client/client"
	"github.com/dmitrijs2005/samplekeeper/internal/client/config"
	"github.com/dmitrijs2005/samplekeeper/internal/client/entities"
	"github.com/dmitrijs2005/samplekeeper/internal/client/models"
	"github.com/dmitrijs2005/samplekeeper/internal/client/services"
	"github.com/dmitrijs2005/samplekeeper/internal/logging"

	_ "modernc.org/sqlite"
)

// App is the interactive client: one session manager, one entity console
// and a single buffered reader shared by the REPL and every prompt.
type App struct {
	config  *config.Config
	log     logging.Logger
	db      *sql.DB
	session *services.SessionManager
	console *services.Console
	reader  *bufio.Reader
	out     io.Writer
}

type appOptions struct {
	in     io.Reader
	out    io.Writer
	log    logging.Logger
	client client.Client
}

type AppOption func(*appOptions)

// WithInput replaces stdin.
func WithInput(r io.Reader) AppOption {
	return func(o *appOptions) { o.in = r }
}

// WithOutput replaces stdout.
func WithOutput(w io.Writer) AppOption {
	return func(o *appOptions) { o.out = w }
}

func WithLogger(l logging.Logger) AppOption {
	return func(o *appOptions) { o.log = l }
}

// WithClient replaces the HTTP client built from the configuration.
func WithClient(c client.Client) AppOption {
	return func(o *appOptions) { o.client = c }
}

// NewApp opens the session database and wires the session manager and the
// entity console from c.
func NewApp(ctx context.Context, c *config.Config, opts ...AppOption) (*App, error) {
	o := appOptions{in: os.Stdin, out: os.Stdout}
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = logging.New(logging.Options{Backend: c.LogBackend, Level: c.LogLevel})
	}

	reg, err := loadRegistry(c)
	if err != nil {
		return nil, err
	}

	db, err := client.InitDatabase(ctx, c.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("error initializing database: %w", err)
	}

	api := o.client
	if api == nil {
		api = client.NewHTTPClient(c.APIBaseURL,
			client.WithTimeout(c.RequestTimeout),
			client.WithTokenScheme(c.TokenScheme),
			client.WithLogger(o.log.With("component", "http")),
		)
	}

	a := &App{
		config:  c,
		log:     o.log,
		db:      db,
		session: services.NewSessionManager(api, services.NewSQLiteSessionStore(db), o.log),
		reader:  bufio.NewReader(o.in),
		out:     o.out,
	}

	notifier := services.NewNotifier(c.NoticeTTL)
	notifier.OnChange(a.showNotice)

	a.console, err = services.NewConsole(a.session, reg,
		services.WithConsoleLogger(o.log),
		services.WithEncoder(entities.Encoder{Booleans: entities.ParseBoolEncoding(c.CheckboxEncoding)}),
		services.WithConfirmer(services.ConfirmFunc(a.confirm)),
		services.WithNotifier(notifier),
	)
	if err != nil {
		db.Close()
		return nil, err
	}

	return a, nil
}

func loadRegistry(c *config.Config) (*entities.Registry, error) {
	if c.DescriptorsFile != "" {
		return entities.LoadFile(c.DescriptorsFile)
	}
	return entities.Default()
}

// Close releases the session database.
func (a *App) Close() error {
	return a.db.Close()
}

// Session exposes the session manager to one-shot commands.
func (a *App) Session() *services.SessionManager { return a.session }

// Console exposes the entity console to one-shot commands.
func (a *App) Console() *services.Console { return a.console }

// Start restores a persisted session and, when it is still valid, loads
// every collection.
func (a *App) Start(ctx context.Context) {
	s := a.session.RestoreSession(ctx)
	if !s.IsAuthenticated() {
		return
	}
	a.printf("Welcome back, %s.\n", s.User.DisplayName())
	a.loadAll(ctx)
}

// Run starts the app and blocks in the REPL until the user exits or the
// input ends.
func (a *App) Run(ctx context.Context) error {
	a.println("Samplekeeper console (type 'help' for commands)")
	a.Start(ctx)
	runREPL(ctx, a, a.status, a.reader, a.out)
	return nil
}

func (a *App) isAuthenticated() bool {
	return a.session.IsAuthenticated()
}

// status is shown in the prompt: the signed-in user and the active tab.
func (a *App) status() string {
	user := a.session.User()
	if user == nil {
		return ""
	}
	return fmt.Sprintf("%s@%s", user.DisplayName(), a.console.Active())
}

func (a *App) confirm(_ context.Context, prompt string) bool {
	return Confirm(a.reader, prompt, a.out)
}

func (a *App) showNotice(n models.Notice, visible bool) {
	if !visible {
		return
	}
	if n.Kind == models.NoticeError {
		a.printf("! %s\n", n.Text)
		return
	}
	a.printf("* %s\n", n.Text)
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

func (a *App) println(args ...any) {
	fmt.Fprintln(a.out, args...)
}

package cli

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/dmitrijs2005/gophsocial/internal/client/client"
	"github.com/dmitrijs2005/gophsocial/internal/client/config"
	"github.com/dmitrijs2005/gophsocial/internal/client/guard"
	"github.com/dmitrijs2005/gophsocial/internal/client/localstore"
	"github.com/dmitrijs2005/gophsocial/internal/client/metrics"
	"github.com/dmitrijs2005/gophsocial/internal/client/models"
	"github.com/dmitrijs2005/gophsocial/internal/client/notify"
	"github.com/dmitrijs2005/gophsocial/internal/client/otp"
	"github.com/dmitrijs2005/gophsocial/internal/client/services"
	"github.com/dmitrijs2005/gophsocial/internal/client/session"
	"github.com/dmitrijs2005/gophsocial/internal/client/storage"
	"github.com/dmitrijs2005/gophsocial/internal/common"
	"github.com/dmitrijs2005/gophsocial/internal/logging"
)

type App struct {
	config   *config.Config
	db       *sql.DB
	api      client.Client
	session  *session.Store
	guard    *guard.Guard
	auth     services.AuthService
	feed     *services.Feed
	profiles *services.ProfileService
	timer    *otp.Timer
	notifier *notify.Notifier
	metrics  *metrics.Metrics
	log      logging.Logger

	reader *bufio.Reader
	out    io.Writer

	// navigation
	current string
	history []string

	// password reset flow
	resetEmail string
	otpEmail   string

	mu   sync.Mutex
	busy bool
}

// NewApp opens the local database, builds the API client and wires the
// services. in and out carry the interactive session.
func NewApp(ctx context.Context, cfg *config.Config, in io.Reader, out io.Writer, log logging.Logger) (*App, error) {
	if log == nil {
		log = logging.Discard()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	db, err := storage.InitDatabase(ctx, cfg.DBPath)
	if err != nil {
		log.Error(ctx, "error initializing database", "path", cfg.DBPath, "error", err)
		return nil, err
	}
	store := localstore.New(db)
	m := metrics.New()

	api, err := client.NewHTTPClient(ctx, cfg.ServerURL,
		client.WithTimeout(cfg.RequestTimeout),
		client.WithRateLimit(cfg.RequestsPerSecond),
		client.WithCookieStore(store),
		client.WithLogger(log),
		client.WithMetrics(m),
	)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	sess := session.New(api, store,
		session.WithLogger(log),
		session.WithMetrics(m),
		session.WithCookieName(cfg.SessionCookieName),
	)

	return &App{
		config:   cfg,
		db:       db,
		api:      api,
		session:  sess,
		guard:    guard.New(sess, m),
		auth:     services.NewAuthService(api, sess, log),
		feed:     services.NewFeed(api, cfg.FeedPageSize, log),
		profiles: services.NewProfileService(api),
		timer:    otp.New(api),
		notifier: notify.New(out, notify.DefaultKeep),
		metrics:  m,
		log:      log.With("component", "cli"),
		reader:   bufio.NewReader(in),
		out:      out,
	}, nil
}

// Run resolves the session in the background, opens the home page and
// serves commands until the input ends or the user exits.
func (a *App) Run(ctx context.Context) {
	defer a.Close()

	fmt.Fprintln(a.out, "Welcome to gophsocial (type 'help' for commands)")
	a.session.Start(ctx)
	_ = a.Home(ctx)

	runREPL(ctx, a, a.status, &readerLines{r: a.reader})
}

// Close stops background work and releases the database and connections.
func (a *App) Close() error {
	a.timer.Stop()
	errs := []error{a.session.Close(), a.api.Close()}
	if a.db != nil {
		errs = append(errs, a.db.Close())
		a.db = nil
	}
	return errors.Join(errs...)
}

// Metrics exposes the instrumentation, e.g. for a textfile dump on exit.
func (a *App) Metrics() *metrics.Metrics {
	return a.metrics
}

func (a *App) isLoggedIn() bool {
	return a.session.State() == models.Authenticated
}

func (a *App) status() string {
	snap := a.session.Snapshot()
	who := "anonymous"
	switch snap.State {
	case models.Unresolved:
		who = "resolving"
	case models.Authenticated:
		who = snap.Identity.Username
	}
	if a.current == "" {
		return who
	}
	return fmt.Sprintf("%s %s", who, a.current)
}

// run executes one user action. The busy flag is held for its duration, an
// error becomes an error notification built from fallback, and a non-empty
// message on success becomes a success notification.
func (a *App) run(ctx context.Context, fallback string, fn func(ctx context.Context) (string, error)) error {
	a.mu.Lock()
	if a.busy {
		a.mu.Unlock()
		a.notifier.Error("Another action is still running")
		return nil
	}
	a.busy = true
	a.mu.Unlock()
	defer func() {
		a.mu.Lock()
		a.busy = false
		a.mu.Unlock()
	}()

	msg, err := fn(ctx)
	if err != nil {
		a.log.Debug(ctx, "action failed", "action", fallback, "error", err)
		a.notifier.Error(common.UserMessage(err, fallback))
		return err
	}
	if msg != "" {
		a.notifier.Success(msg)
	}
	return nil
}

// readerLines feeds the REPL from the same buffered reader the prompts use,
// so neither steals the other's input.
type readerLines struct {
	r    *bufio.Reader
	line string
}

func (l *readerLines) Scan() bool {
	line, err := l.r.ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	l.line = strings.TrimRight(line, "\r\n")
	return true
}

func (l *readerLines) Text() string { return l.line }

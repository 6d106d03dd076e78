package commands

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/coachboard/coachboard-client/internal/api"
	"github.com/coachboard/coachboard-client/internal/config"
	"github.com/coachboard/coachboard-client/internal/logging"
	"github.com/coachboard/coachboard-client/internal/querycache"
	"github.com/coachboard/coachboard-client/internal/session"
	"github.com/coachboard/coachboard-client/internal/transport"
)

// Global flags, bound by the root command
var (
	ConfigPath string
	APIURL     string
	Verbose    bool
	JSONOutput bool
)

// Screens that are not auth routes
const (
	screenTasks     = "/tasks"
	screenRisks     = "/risks"
	screenProjects  = "/projects"
	screenPosts     = "/posts"
	screenAnalytics = "/analytics"
	screenAI        = "/ai-studio"
	screenAccount   = "/settings"
	screenRegister  = "/auth/register"
)

// RegisterFlags adds the persistent flags every command understands.
func RegisterFlags(root *cobra.Command) {
	root.PersistentFlags().StringVar(&ConfigPath, "config", "", "Config file (default ~/.coachboard/config.yaml)")
	root.PersistentFlags().StringVar(&APIURL, "api-url", "", "Override the backend API URL")
	root.PersistentFlags().BoolVarP(&Verbose, "verbose", "v", false, "Enable debug logging")
	root.PersistentFlags().BoolVar(&JSONOutput, "json", false, "Print raw JSON instead of tables")
}

// Register attaches every command to root.
func Register(root *cobra.Command) {
	root.AddCommand(LoginCmd)
	root.AddCommand(LogoutCmd)
	root.AddCommand(RegisterCmd)
	root.AddCommand(OAuthCallbackCmd)
	root.AddCommand(StatusCmd)
	root.AddCommand(WhoamiCmd)
	root.AddCommand(TokenCmd)
	root.AddCommand(TasksCmd)
	root.AddCommand(RisksCmd)
	root.AddCommand(ProjectsCmd)
	root.AddCommand(PostsCmd)
	root.AddCommand(AnalyticsCmd)
	root.AddCommand(AICmd)
	root.AddCommand(AccountCmd)
	root.AddCommand(ConfigCmd)
}

// app is the per-invocation wiring: config, session, transport and API client.
type app struct {
	cfg      *config.Config
	cfgPath  string
	screen   string
	logger   *slog.Logger
	router   *session.Router
	provider *session.Provider
	sessions *session.Manager
	api      *api.Client
	out      io.Writer
	errOut   io.Writer
	in       *bufio.Reader
	closers  []io.Closer
}

func newApp(cmd *cobra.Command, screen string) (*app, error) {
	path, err := configPath()
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if APIURL != "" {
		cfg.APIURL = APIURL
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}

	level := cfg.Log.Level
	if Verbose {
		level = "debug"
	}
	logger := logging.WithCommand(logging.Init(level, cfg.Log.Format), cmd.CommandPath())

	a := &app{
		cfg:     cfg,
		cfgPath: path,
		screen:  screen,
		logger:  logger,
		router:  session.NewRouter(screen),
		out:     cmd.OutOrStdout(),
		errOut:  cmd.ErrOrStderr(),
		in:      bufio.NewReader(cmd.InOrStdin()),
	}
	a.router.OnNavigate(func(from, to string) {
		logger.Debug("navigate", "from", from, "to", to)
	})

	store, err := a.openSessionStore()
	if err != nil {
		return nil, err
	}
	if a.provider, err = session.NewProvider(store, a.router, logger); err != nil {
		a.Close()
		return nil, err
	}

	cache, err := a.openCache(cmd.Context())
	if err != nil {
		a.Close()
		return nil, err
	}

	doer := transport.Chain(transport.NewHTTPClient(cfg.RequestTimeout),
		transport.RequestID(),
		transport.Logging(logger),
		transport.RateLimit(transport.NewLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)),
		transport.Bearer(a.provider),
		transport.Unauthorized(a.provider),
	)
	a.api = api.New(cfg.APIURL, doer, api.WithCache(cache), api.WithLogger(logger))
	a.sessions = session.NewManager(a.provider, a.api, a.router, session.WithLogger(logger))
	return a, nil
}

func (a *app) openSessionStore() (session.Store, error) {
	switch a.cfg.Session.Store {
	case "memory":
		return session.NewMemoryStore(), nil
	case "sqlite":
		s, err := session.OpenSQLiteStore(a.cfg.Session.Path)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, s)
		return s, nil
	}
	return session.NewFileStore(a.cfg.Session.Path), nil
}

// openCache scopes entries to the current token and purges them whenever
// the credentials change.
func (a *app) openCache(ctx context.Context) (*querycache.Cache, error) {
	var store querycache.Store
	switch a.cfg.Cache.Backend {
	case "none":
		return nil, nil
	case "redis":
		s, err := querycache.NewRedisStore(ctx, a.cfg.Cache.RedisURL)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, s)
		store = s
	default:
		store = querycache.NewMemoryStore(a.cfg.Cache.TTL, 10*time.Minute)
	}

	cache := querycache.New(store, a.cfg.Cache.TTL, a.logger, querycache.WithScope(a.provider.CacheScope))
	a.provider.OnChange(func() { cache.Purge(context.WithoutCancel(ctx)) })
	return cache, nil
}

func (a *app) Close() {
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			a.logger.Warn("close failed", "error", err)
		}
	}
}

// wrap adds a login hint to 401s raised outside the auth screens, where the
// session has just been cleared.
func (a *app) wrap(err error) error {
	if err == nil {
		return nil
	}
	if api.IsUnauthorized(err) && !session.IsAuthRoute(a.screen) {
		return fmt.Errorf("session expired, run 'coachboard login': %w", err)
	}
	return err
}

// withApp builds the app for screen, runs fn and tears it down.
func withApp(cmd *cobra.Command, screen string, fn func(a *app) error) error {
	a, err := newApp(cmd, screen)
	if err != nil {
		return err
	}
	defer a.Close()
	return a.wrap(fn(a))
}

package cli

import (
	"bufio"
	"context"
	"database/sql"
	"log"
	"log/slog"
	"os"

	"github.com/dmitrijs2005/shelfsync/internal/cache"
	"github.com/dmitrijs2005/shelfsync/internal/config"
	"github.com/dmitrijs2005/shelfsync/internal/conflict"
	"github.com/dmitrijs2005/shelfsync/internal/engine"
	"github.com/dmitrijs2005/shelfsync/internal/logging"
	"github.com/dmitrijs2005/shelfsync/internal/models"
	"github.com/dmitrijs2005/shelfsync/internal/remote"
	"github.com/dmitrijs2005/shelfsync/internal/repositories"
	"github.com/dmitrijs2005/shelfsync/internal/repositories/syncconfig"

	_ "modernc.org/sqlite"
)

// reconciler is the engine surface the CLI needs. The real
// engine.Orchestrator satisfies it; tests provide a stub.
type reconciler interface {
	Sync(ctx context.Context, silent bool) (engine.SyncResult, error)
	ImportFromPrefix(ctx context.Context, prefix string, silent bool, known []models.RemoteObject) (engine.ImportResult, error)
	Statuses() []models.OperationStatus
	TerminateActiveOperations(ctx context.Context) error
	State() engine.OpState
}

type App struct {
	config   *config.Config
	engine   reconciler
	records  engine.LocalStore
	cfgStore engine.ConfigStore
	reader   *bufio.Reader
	log      logging.Logger
	db       *sql.DB
}

func NewApp(c *config.Config) (*App, error) {

	ctx := context.Background()

	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	repos, err := repositories.InitDatabase(ctx, c.DatabaseDSN)
	if err != nil {
		log.Printf("error initializing database: %s", err.Error())
		return nil, err
	}

	store, err := remote.NewS3Store(ctx, remote.Config{
		Endpoint:     c.S3Endpoint,
		Region:       c.S3Region,
		Bucket:       c.S3Bucket,
		AccessKey:    c.S3AccessKey,
		SecretKey:    c.S3SecretKey,
		MaxRetries:   c.S3MaxRetries,
		UsePathStyle: c.S3UsePathStyle,
	}, nil, logger)
	if err != nil {
		_ = repos.DB.Close()
		return nil, err
	}

	cfgStore := syncconfig.NewStore(repos.Metadata)

	eng := engine.New(engine.Deps{
		Remote:   store,
		Cache:    cache.New(c.CacheFreshness),
		Resolver: conflict.NewResolver(TerminalConfirmer{}),
		Local:    repos.Records,
		Config:   cfgStore,
		Prompter: TerminalUpgradePrompter{},
		Log:      logger,
	})

	return &App{
		config:   c,
		engine:   eng,
		records:  repos.Records,
		cfgStore: cfgStore,
		reader:   bufio.NewReader(os.Stdin),
		log:      logger,
		db:       repos.DB,
	}, nil
}

func (a *App) Run(ctx context.Context) {
	defer func() { _ = a.db.Close() }()

	printlnFn("shelfsync CLI (type 'help' for commands)")
	scanner := bufio.NewScanner(os.Stdin)
	runREPL(ctx, a, a.getStatus, scanner)
}

// getStatus renders the prompt suffix: the configured prefix and whether a
// reconciliation is in flight.
func (a *App) getStatus() string {
	cfg, err := a.cfgStore.Load(context.Background())
	if err != nil || !cfg.Configured() {
		return "(sync off)"
	}

	switch a.engine.State() {
	case engine.StateSyncing:
		return "(" + cfg.Prefix + " syncing)"
	case engine.StateImporting:
		return "(" + cfg.Prefix + " importing)"
	default:
		return "(" + cfg.Prefix + ")"
	}
}

func (a *App) isConfigured(ctx context.Context) bool {
	cfg, err := a.cfgStore.Load(ctx)
	if err != nil {
		return false
	}
	return cfg.Configured()
}

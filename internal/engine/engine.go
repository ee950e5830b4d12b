// Package engine drives reconciliation between the local library and the
// remote blob store: the batch sync orchestrator (push) and the import
// orchestrator (pull). At most one reconciliation is in flight at a time.
package engine

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/dmitrijs2005/shelfsync/internal/cache"
	"github.com/dmitrijs2005/shelfsync/internal/common"
	"github.com/dmitrijs2005/shelfsync/internal/conflict"
	"github.com/dmitrijs2005/shelfsync/internal/logging"
	"github.com/dmitrijs2005/shelfsync/internal/models"
	"github.com/dmitrijs2005/shelfsync/internal/remote"
)

// batchSize bounds concurrent uploads within one sync batch. Batches are
// sequential with respect to each other, so total in-flight network
// operations never exceed this.
const batchSize = 5

// OpState is the engine's single mutex-like resource: the active-operation
// token.
type OpState int32

const (
	StateIdle OpState = iota
	StateSyncing
	StateImporting
)

// LocalStore is the externally provided record store. Each call is
// individually atomic per record.
type LocalStore interface {
	LoadAll(ctx context.Context) ([]models.Record, error)
	Put(ctx context.Context, r models.Record) error
	BulkPut(ctx context.Context, rs []models.Record) error
	Delete(ctx context.Context, id string) error
	Clear(ctx context.Context) error
}

// ConfigStore reads and writes the persisted sync configuration as a single
// atomic unit.
type ConfigStore interface {
	Load(ctx context.Context) (models.SyncConfig, error)
	Save(ctx context.Context, cfg models.SyncConfig) error
}

// UpgradePrompter surfaces a single "operation requires a paid tier" prompt.
// It returns when the prompt has been dismissed.
type UpgradePrompter interface {
	PresentUpgradePrompt(ctx context.Context) error
}

// ProgressFunc reports run progress to a UI: records processed so far, the
// run total, and the most recently handled title.
type ProgressFunc func(processed, total int, title string)

// Orchestrator is the top-level sync driver.
type Orchestrator struct {
	remote   remote.Store
	cache    *cache.Cache
	resolver *conflict.Resolver
	local    LocalStore
	cfgStore ConfigStore
	prompter UpgradePrompter
	progress ProgressFunc
	log      logging.Logger

	state    atomic.Int32
	statuses statusTracker
}

// Deps wires the orchestrator's collaborators. Remote, Cache, Resolver,
// Local and Config are required; the rest default to no-ops.
type Deps struct {
	Remote   remote.Store
	Cache    *cache.Cache
	Resolver *conflict.Resolver
	Local    LocalStore
	Config   ConfigStore
	Prompter UpgradePrompter
	Progress ProgressFunc
	Log      logging.Logger
}

func New(deps Deps) *Orchestrator {
	o := &Orchestrator{
		remote:   deps.Remote,
		cache:    deps.Cache,
		resolver: deps.Resolver,
		local:    deps.Local,
		cfgStore: deps.Config,
		prompter: deps.Prompter,
		progress: deps.Progress,
		log:      deps.Log,
	}
	if o.prompter == nil {
		o.prompter = nopPrompter{}
	}
	if o.progress == nil {
		o.progress = func(int, int, string) {}
	}
	if o.log == nil {
		o.log = logging.Nop{}
	}
	return o
}

type nopPrompter struct{}

func (nopPrompter) PresentUpgradePrompt(context.Context) error { return nil }

// State returns the current active-operation state.
func (o *Orchestrator) State() OpState {
	return OpState(o.state.Load())
}

// acquire takes the active-operation slot for target, failing with
// ErrAlreadyRunning when any reconciliation is in flight. The returned
// release must run regardless of outcome; it is a no-op if the slot was
// cleared underneath us by TerminateActiveOperations.
func (o *Orchestrator) acquire(target OpState) (release func(), err error) {
	if !o.state.CompareAndSwap(int32(StateIdle), int32(target)) {
		return nil, common.ErrAlreadyRunning
	}
	return func() {
		o.state.CompareAndSwap(int32(target), int32(StateIdle))
	}, nil
}

// Statuses returns a snapshot of the per-record operation statuses for the
// current (or most recent) run.
func (o *Orchestrator) Statuses() []models.OperationStatus {
	return o.statuses.snapshot()
}

// TerminateActiveOperations disables the persisted sync configuration,
// clears the active-operation flag and drops the in-progress status list.
// It does not abort network requests already dispatched; running code paths
// observe the cleared flag and treat subsequent steps as stale.
func (o *Orchestrator) TerminateActiveOperations(ctx context.Context) error {
	cfg, err := o.cfgStore.Load(ctx)
	if err != nil {
		return fmt.Errorf("loading sync config: %w", err)
	}
	cfg.Enabled = false
	if err := o.cfgStore.Save(ctx, cfg); err != nil {
		return fmt.Errorf("disabling sync config: %w", err)
	}

	o.state.Store(int32(StateIdle))
	o.statuses.reset()
	o.log.Info(ctx, "active operations terminated")
	return nil
}

// running reports whether the given state is still the active one. Code in
// the middle of a run uses this to detect termination.
func (o *Orchestrator) running(s OpState) bool {
	return OpState(o.state.Load()) == s
}

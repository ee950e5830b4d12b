package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/shelfsync/internal/common"
	"github.com/dmitrijs2005/shelfsync/internal/engine"
	"github.com/dmitrijs2005/shelfsync/internal/models"
	"github.com/dmitrijs2005/shelfsync/internal/remote"
)

func stateName(s engine.OpState) string {
	switch s {
	case engine.StateSyncing:
		return "syncing"
	case engine.StateImporting:
		return "importing"
	default:
		return "idle"
	}
}

// Sync pushes the local library to the remote store and reports the outcome.
func (a *App) Sync(ctx context.Context, silent bool) error {
	res, err := a.engine.Sync(ctx, silent)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrNotConfigured):
			printlnFn("Syncing is off. Use 'enable <prefix>' first.")
		case errors.Is(err, common.ErrAlreadyRunning):
			printlnFn("Another operation is already running.")
		case errors.Is(err, remote.ErrEntitlementRequired):
			printlnFn("The remote store requires an upgraded plan; sync stopped early.")
			printSyncResult(res)
		case errors.Is(err, common.ErrTerminated):
			printlnFn("Sync was terminated.")
		default:
			a.log.Error(ctx, "sync failed", "error", err)
		}
		return err
	}

	printSyncResult(res)
	return nil
}

func printSyncResult(res engine.SyncResult) {
	printlnFn(fmt.Sprintf("Sync finished: %d added, %d updated, %d removed, %d failed",
		res.Added, res.Updated, res.Removed, res.Failed))
}

// Import pulls remote records under the configured prefix into the library.
func (a *App) Import(ctx context.Context, silent bool) error {
	cfg, err := a.cfgStore.Load(ctx)
	if err != nil {
		a.log.Error(ctx, "loading sync config", "error", err)
		return err
	}
	if !cfg.Configured() {
		printlnFn("Syncing is off. Use 'enable <prefix>' first.")
		return common.ErrNotConfigured
	}

	res, err := a.engine.ImportFromPrefix(ctx, cfg.Prefix, silent, nil)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrAlreadyRunning):
			printlnFn("Another operation is already running.")
		case errors.Is(err, remote.ErrEntitlementRequired):
			printlnFn("The remote store requires an upgraded plan; import stopped early.")
			printlnFn(fmt.Sprintf("Imported %d record(s) before stopping", res.Imported))
		case errors.Is(err, common.ErrTerminated):
			printlnFn("Import was terminated.")
		default:
			a.log.Error(ctx, "import failed", "error", err)
		}
		return err
	}

	printlnFn(fmt.Sprintf("Import finished: %d record(s)", res.Imported))
	return nil
}

// Statuses prints the per-record outcome of the current or most recent run.
func (a *App) Statuses(ctx context.Context) error {
	list := a.engine.Statuses()
	if len(list) == 0 {
		printlnFn("No operation statuses recorded.")
		return nil
	}

	for _, s := range list {
		line := fmt.Sprintf("%-10s %s", s.State, s.Title)
		if s.State == models.StatusError && s.Err != "" {
			line += " (" + s.Err + ")"
		}
		printlnFn(line)
	}
	return nil
}

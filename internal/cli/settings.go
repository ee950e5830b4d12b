package cli

import (
	"context"
	"fmt"
	"time"
)

// Status prints the persisted sync configuration and the engine state.
func (a *App) Status(ctx context.Context) error {
	cfg, err := a.cfgStore.Load(ctx)
	if err != nil {
		a.log.Error(ctx, "loading sync config", "error", err)
		return err
	}

	if !cfg.Configured() {
		printlnFn("Syncing is off. Use 'enable <prefix>' to turn it on.")
		return nil
	}

	printlnFn("Syncing is on")
	printlnFn("Prefix:", cfg.Prefix)
	if cfg.LastSyncTime > 0 {
		printlnFn("Last sync:", time.UnixMilli(cfg.LastSyncTime).UTC().Format(time.RFC3339))
	} else {
		printlnFn("Last sync: never")
	}
	printlnFn("Engine:", stateName(a.engine.State()))
	return nil
}

// Enable turns syncing on under the given key prefix. Switching to a
// different prefix resets the last-sync marker, because it refers to a
// different remote collection.
func (a *App) Enable(ctx context.Context, prefix string) error {
	cfg, err := a.cfgStore.Load(ctx)
	if err != nil {
		a.log.Error(ctx, "loading sync config", "error", err)
		return err
	}

	if cfg.Prefix != prefix {
		cfg.LastSyncTime = 0
	}
	cfg.Enabled = true
	cfg.Prefix = prefix

	if err := a.cfgStore.Save(ctx, cfg); err != nil {
		a.log.Error(ctx, "saving sync config", "error", err)
		return err
	}

	printlnFn(fmt.Sprintf("Syncing enabled under prefix %q", prefix))
	return nil
}

// Disable turns syncing off and terminates any reconciliation in flight.
func (a *App) Disable(ctx context.Context) error {
	if err := a.engine.TerminateActiveOperations(ctx); err != nil {
		a.log.Error(ctx, "disabling sync", "error", err)
		return err
	}

	printlnFn("Syncing disabled")
	return nil
}

// Package conflict arbitrates divergent local and remote copies of a record.
// The rule is last-writer-wins by modification timestamp, with an interactive
// escape hatch; there is no field-level merge.
package conflict

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/shelfsync/internal/models"
)

// Action is the resolver's verdict for one record.
type Action int

const (
	// ActionKeepLocal keeps the local copy; the remote one is ignored.
	ActionKeepLocal Action = iota
	// ActionTakeRemote replaces the local copy with the remote one.
	ActionTakeRemote
)

// Decision carries the verdict together with the record that won.
type Decision struct {
	Action Action
	Record models.Record
}

// ConfirmRequest is what an interactive collaborator gets to show the user.
type ConfirmRequest struct {
	Title         string
	LocalSummary  string
	RemoteSummary string
}

// Confirmer answers a conflict question. true means "take remote". Any
// concrete UI (terminal form, web modal, headless auto-answer in tests)
// satisfies this interface.
type Confirmer interface {
	Confirm(ctx context.Context, req ConfirmRequest) (bool, error)
}

// Resolver decides between a local and a remote copy of the same record.
type Resolver struct {
	confirmer Confirmer
}

func NewResolver(confirmer Confirmer) *Resolver {
	return &Resolver{confirmer: confirmer}
}

// Resolve applies the decision rule:
//
//  1. remote.LastModified <= local.LastModified: keep local. Local is at
//     least as new, no ambiguity.
//  2. remote is newer and silent is set: take remote. Background runs must
//     make progress without blocking on a human.
//  3. remote is newer and the run is interactive: the confirmer's boolean
//     answer is final.
func (r *Resolver) Resolve(ctx context.Context, local, remote models.Record, silent bool) (Decision, error) {
	if remote.LastModified <= local.LastModified {
		return Decision{Action: ActionKeepLocal, Record: local}, nil
	}

	if silent {
		return Decision{Action: ActionTakeRemote, Record: remote}, nil
	}

	takeRemote, err := r.confirmer.Confirm(ctx, ConfirmRequest{
		Title:         local.Title,
		LocalSummary:  summarize(local),
		RemoteSummary: summarize(remote),
	})
	if err != nil {
		return Decision{}, fmt.Errorf("conflict confirmation: %w", err)
	}

	if takeRemote {
		return Decision{Action: ActionTakeRemote, Record: remote}, nil
	}
	return Decision{Action: ActionKeepLocal, Record: local}, nil
}

func summarize(r models.Record) string {
	ts := time.UnixMilli(r.LastModified).UTC().Format(time.RFC3339)
	return fmt.Sprintf("modified %s, %.0f%% read", ts, r.Progress*100)
}

package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/shelfsync/internal/common"
	"github.com/dmitrijs2005/shelfsync/internal/conflict"
	"github.com/dmitrijs2005/shelfsync/internal/models"
	"github.com/dmitrijs2005/shelfsync/internal/remote"
)

// ImportResult aggregates one pull run.
type ImportResult struct {
	Imported int
	Merged   []models.Record
}

// ImportFromPrefix pulls remote objects that are not fully reflected locally.
// known, when non-nil, restricts the run to a caller-supplied subset (e.g.
// "only objects newer than the last sync") instead of listing the prefix.
//
// Objects are processed strictly sequentially: each one is downloaded,
// parsed, conflict-resolved and persisted before the next begins, because
// every step may mutate the local snapshot the next comparison depends on.
// The local store is persisted and reloaded after every object that produced
// a change, so interrupting a long import never discards already-merged
// records.
func (o *Orchestrator) ImportFromPrefix(ctx context.Context, prefix string, silent bool, known []models.RemoteObject) (ImportResult, error) {
	var res ImportResult

	release, err := o.acquire(StateImporting)
	if err != nil {
		return res, err
	}
	defer release()

	o.statuses.reset()

	objects := known
	if objects == nil {
		objects, err = o.listObjects(ctx, prefix)
		if err != nil {
			if errors.Is(err, remote.ErrEntitlementRequired) {
				o.promptUpgrade(ctx)
			}
			return res, err
		}
	}

	records, err := o.local.LoadAll(ctx)
	if err != nil {
		return res, fmt.Errorf("loading local records: %w", err)
	}
	byID := indexRecords(records)

	o.log.Info(ctx, "import starting", "prefix", prefix, "objects", len(objects))

	for i, obj := range objects {
		if !o.running(StateImporting) {
			return res, common.ErrTerminated
		}

		id, ok := remote.ParseKey(obj.Key)
		if !ok {
			o.log.Warn(ctx, "skipping unparsable remote key", "key", obj.Key)
			continue
		}

		o.statuses.add(id, obj.Key)

		changed, merged, err := o.importOne(ctx, obj, id, byID, silent)
		progressTitle := merged.Title
		switch {
		case err == nil:
			o.statuses.set(id, models.StatusCompleted, "")
		case errors.Is(err, remote.ErrEntitlementRequired):
			o.statuses.set(id, models.StatusError, err.Error())
			o.promptUpgrade(ctx)
			return res, err
		default:
			// Per-object failures are recorded and the import moves on;
			// completed work is already persisted.
			o.log.Warn(ctx, "import of object failed", "key", obj.Key, "error", err)
			o.statuses.set(id, models.StatusError, err.Error())
			progressTitle = obj.Key
		}

		if changed {
			res.Imported++
			res.Merged = append(res.Merged, merged)

			// Reload so the next object's conflict comparison sees the
			// just-persisted state.
			records, err = o.local.LoadAll(ctx)
			if err != nil {
				return res, fmt.Errorf("reloading local records: %w", err)
			}
			byID = indexRecords(records)
		}

		o.progress(i+1, len(objects), progressTitle)
	}

	o.log.Info(ctx, "import finished", "imported", res.Imported)
	return res, nil
}

// importOne processes a single remote object: download, parse, resolve,
// persist. Returns the persisted record and whether the local store changed.
func (o *Orchestrator) importOne(ctx context.Context, obj models.RemoteObject, id string, byID map[string]models.Record, silent bool) (bool, models.Record, error) {
	o.statuses.set(id, models.StatusSyncing, "")

	local, exists := byID[id]

	// The payload's lastModified can never exceed the server-assigned upload
	// time, so an upload that predates the local copy cannot win a conflict;
	// skip the download outright.
	if exists && obj.UploadedAt <= local.LastModified {
		return false, local, nil
	}

	data, err := o.remote.Fetch(ctx, obj.Key)
	if err != nil {
		return false, models.Record{}, err
	}

	remoteRec, err := models.UnmarshalPayload(data)
	if err != nil {
		return false, models.Record{}, fmt.Errorf("parsing %s: %w", obj.Key, err)
	}
	o.cache.RecordSnapshot(obj.Key, remoteRec.Significant())

	if !exists {
		if err := o.local.Put(ctx, remoteRec); err != nil {
			return false, models.Record{}, fmt.Errorf("persisting %s: %w", remoteRec.ID, err)
		}
		return true, remoteRec, nil
	}

	decision, err := o.resolver.Resolve(ctx, local, remoteRec, silent)
	if err != nil {
		return false, models.Record{}, err
	}
	if decision.Action != conflict.ActionTakeRemote {
		return false, local, nil
	}

	if err := o.local.Put(ctx, decision.Record); err != nil {
		return false, models.Record{}, fmt.Errorf("persisting %s: %w", decision.Record.ID, err)
	}
	return true, decision.Record, nil
}

func indexRecords(records []models.Record) map[string]models.Record {
	m := make(map[string]models.Record, len(records))
	for _, r := range records {
		m[r.ID] = r
	}
	return m
}

package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/shelfsync/internal/common"
	"github.com/dmitrijs2005/shelfsync/internal/models"
	"github.com/dmitrijs2005/shelfsync/internal/remote"
)

// SyncResult aggregates one push run.
type SyncResult struct {
	Added   int
	Updated int
	Removed int
	Failed  int
}

type opKind int

const (
	opAdd opKind = iota
	opUpdate
	opDelete
)

// planItem is one decided operation. For uploads the payload is serialized
// up front so a marshalling failure surfaces before any network dispatch.
type planItem struct {
	kind    opKind
	key     string
	record  models.Record
	payload []byte
}

// Sync reconciles the local library against the remote prefix: new records
// are uploaded, stale remote copies are overwritten, remote objects whose
// record no longer exists locally are deleted. Unchanged records are skipped
// via the cached significant-fields snapshot.
//
// Uploads run in batches of batchSize with per-item failure isolation. An
// entitlement rejection stops the run after the current batch settles and
// surfaces a single upgrade prompt.
func (o *Orchestrator) Sync(ctx context.Context, silent bool) (SyncResult, error) {
	var res SyncResult

	cfg, err := o.cfgStore.Load(ctx)
	if err != nil {
		return res, fmt.Errorf("loading sync config: %w", err)
	}
	if !cfg.Configured() {
		return res, common.ErrNotConfigured
	}

	release, err := o.acquire(StateSyncing)
	if err != nil {
		return res, err
	}
	defer release()

	o.statuses.reset()

	records, err := o.local.LoadAll(ctx)
	if err != nil {
		return res, fmt.Errorf("loading local records: %w", err)
	}

	objects, err := o.listObjects(ctx, cfg.Prefix)
	if err != nil {
		// Without the remote listing there is nothing to reconcile
		// against; the whole run fails.
		if errors.Is(err, remote.ErrEntitlementRequired) {
			o.promptUpgrade(ctx)
		}
		return res, err
	}

	plan, err := o.buildPlan(cfg.Prefix, records, objects)
	if err != nil {
		return res, err
	}

	for _, it := range plan {
		o.statuses.add(it.record.ID, it.record.Title)
	}

	uploads, deletes := splitPlan(plan)
	total := len(uploads) + len(deletes)
	o.log.Info(ctx, "sync plan ready",
		"uploads", len(uploads), "deletes", len(deletes), "records", len(records))

	entitlement := false
	processed := 0

	for start := 0; start < len(uploads) && !entitlement; start += batchSize {
		if !o.running(StateSyncing) {
			return res, common.ErrTerminated
		}

		end := min(start+batchSize, len(uploads))
		batch := uploads[start:end]
		entitlement = o.runBatch(ctx, batch, &res)

		processed += len(batch)
		o.progress(processed, total, batch[len(batch)-1].record.Title)
	}

	for _, it := range deletes {
		if entitlement || !o.running(StateSyncing) {
			break
		}
		o.statuses.set(it.record.ID, models.StatusSyncing, "")
		err := o.remote.Delete(ctx, it.key)
		o.cache.InvalidateFreshness()
		switch {
		case err == nil:
			o.cache.Evict(it.key)
			o.statuses.set(it.record.ID, models.StatusCompleted, "")
			res.Removed++
		case errors.Is(err, remote.ErrEntitlementRequired):
			o.statuses.set(it.record.ID, models.StatusError, err.Error())
			res.Failed++
			entitlement = true
		default:
			o.log.Warn(ctx, "remote delete failed", "key", it.key, "error", err)
			o.statuses.set(it.record.ID, models.StatusError, err.Error())
			res.Failed++
		}
		processed++
		o.progress(processed, total, it.record.Title)
	}

	if entitlement {
		o.promptUpgrade(ctx)
		return res, fmt.Errorf("sync stopped: %w", remote.ErrEntitlementRequired)
	}

	cfg.LastSyncTime = time.Now().UnixMilli()
	if err := o.cfgStore.Save(ctx, cfg); err != nil {
		return res, fmt.Errorf("persisting last sync time: %w", err)
	}

	o.log.Info(ctx, "sync finished",
		"added", res.Added, "updated", res.Updated, "removed", res.Removed, "failed", res.Failed)
	return res, nil
}

// listObjects resolves the remote listing through the cache.
func (o *Orchestrator) listObjects(ctx context.Context, prefix string) ([]models.RemoteObject, error) {
	if objects, ok := o.cache.GetFresh(prefix); ok {
		o.log.Debug(ctx, "remote listing served from cache", "prefix", prefix, "count", len(objects))
		return objects, nil
	}

	objects, err := o.remote.List(ctx, prefix)
	if err != nil {
		return nil, err
	}
	o.cache.RecordListResult(prefix, objects)
	return objects, nil
}

// buildPlan decides add/update/skip per local record and delete per orphaned
// remote object.
//
// A record whose remote counterpart predates it is still skipped when none
// of its significant fields differ from the cached snapshot: timestamps
// alone may suggest an upload that would carry no visible change.
//
// An object is an orphan only when its key is not the expected key of any
// local record. Prefixes may contain the key separator themselves, so a
// parsed id alone cannot prove an object unclaimed.
func (o *Orchestrator) buildPlan(prefix string, records []models.Record, objects []models.RemoteObject) ([]planItem, error) {
	byKey := make(map[string]models.RemoteObject, len(objects))
	for _, obj := range objects {
		byKey[obj.Key] = obj
	}

	localIDs := make(map[string]struct{}, len(records))
	expectedKeys := make(map[string]struct{}, len(records))
	var plan []planItem

	for _, rec := range records {
		localIDs[rec.ID] = struct{}{}
		key := remote.MakeKey(prefix, rec.ID)
		expectedKeys[key] = struct{}{}

		obj, exists := byKey[key]
		switch {
		case !exists:
			payload, err := rec.MarshalPayload()
			if err != nil {
				return nil, fmt.Errorf("serializing record %s: %w", rec.ID, err)
			}
			plan = append(plan, planItem{kind: opAdd, key: key, record: rec, payload: payload})

		case obj.UploadedAt < rec.LastModified:
			if entry, ok := o.cache.Lookup(key); ok && entry.Snapshot != nil &&
				*entry.Snapshot == rec.Significant() {
				continue
			}
			payload, err := rec.MarshalPayload()
			if err != nil {
				return nil, fmt.Errorf("serializing record %s: %w", rec.ID, err)
			}
			plan = append(plan, planItem{kind: opUpdate, key: key, record: rec, payload: payload})
		}
	}

	for _, obj := range objects {
		if _, claimed := expectedKeys[obj.Key]; claimed {
			continue
		}
		id, ok := remote.ParseKey(obj.Key)
		if !ok {
			continue
		}
		if _, exists := localIDs[id]; !exists {
			plan = append(plan, planItem{
				kind:   opDelete,
				key:    obj.Key,
				record: models.Record{ID: id, Title: obj.Key},
			})
		}
	}

	return plan, nil
}

func splitPlan(plan []planItem) (uploads, deletes []planItem) {
	for _, it := range plan {
		if it.kind == opDelete {
			deletes = append(deletes, it)
		} else {
			uploads = append(uploads, it)
		}
	}
	return uploads, deletes
}

// runBatch dispatches one batch of uploads concurrently and waits for all of
// them to settle. Each item's outcome is recorded independently; one failure
// never aborts its batch siblings. Returns true when an entitlement
// rejection was observed.
func (o *Orchestrator) runBatch(ctx context.Context, batch []planItem, res *SyncResult) bool {
	for _, it := range batch {
		o.statuses.set(it.record.ID, models.StatusSyncing, "")
	}

	errs := make([]error, len(batch))
	var wg sync.WaitGroup
	for i, it := range batch {
		wg.Add(1)
		go func(i int, it planItem) {
			defer wg.Done()
			obj, err := o.remote.Put(ctx, it.key, it.payload)
			if err != nil {
				errs[i] = err
				return
			}
			o.cache.RecordUpload(obj, it.record.Significant())
		}(i, it)
	}
	wg.Wait()

	// Any put against the active prefix invalidates the listing.
	o.cache.InvalidateFreshness()

	entitlement := false
	for i, it := range batch {
		if err := errs[i]; err != nil {
			o.log.Warn(ctx, "upload failed", "record", it.record.ID, "error", err)
			o.statuses.set(it.record.ID, models.StatusError, err.Error())
			res.Failed++
			if errors.Is(err, remote.ErrEntitlementRequired) {
				entitlement = true
			}
			continue
		}
		o.statuses.set(it.record.ID, models.StatusCompleted, "")
		if it.kind == opAdd {
			res.Added++
		} else {
			res.Updated++
		}
	}
	return entitlement
}

func (o *Orchestrator) promptUpgrade(ctx context.Context) {
	if err := o.prompter.PresentUpgradePrompt(ctx); err != nil {
		o.log.Warn(ctx, "upgrade prompt failed", "error", err)
	}
}

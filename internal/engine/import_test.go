package engine

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/shelfsync/internal/common"
	"github.com/dmitrijs2005/shelfsync/internal/models"
	"github.com/dmitrijs2005/shelfsync/internal/remote"
)

func seedRemoteBook(t *testing.T, rig *testRig, rec models.Record, uploadedAt int64) models.RemoteObject {
	t.Helper()
	payload, err := rec.MarshalPayload()
	require.NoError(t, err)
	obj := models.RemoteObject{Key: remote.MakeKey("shelf42", rec.ID), UploadedAt: uploadedAt, Size: int64(len(payload))}
	rig.remote.seed(obj, payload)
	return obj
}

func TestImport_PullsNewObjects(t *testing.T) {
	rig := newRig()
	rec := book("x", 100)
	seedRemoteBook(t, rig, rec, 150)

	res, err := rig.orch.ImportFromPrefix(context.Background(), "shelf42", true, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Imported)
	require.Len(t, res.Merged, 1)
	assert.Equal(t, "x", res.Merged[0].ID)

	got, ok := rig.local.get("x")
	require.True(t, ok)
	assert.Equal(t, rec.Title, got.Title)
	assert.Equal(t, rec.Content, got.Content)
}

func TestImport_AlreadyRunning(t *testing.T) {
	rig := newRig()
	rig.orch.state.Store(int32(StateSyncing))

	_, err := rig.orch.ImportFromPrefix(context.Background(), "shelf42", true, nil)
	require.ErrorIs(t, err, common.ErrAlreadyRunning)
}

func TestImport_SkipsWhenUploadPredatesLocal(t *testing.T) {
	local := book("x", 200)
	rig := newRig(local)
	seedRemoteBook(t, rig, book("x", 90), 100)

	res, err := rig.orch.ImportFromPrefix(context.Background(), "shelf42", true, nil)
	require.NoError(t, err)
	assert.Zero(t, res.Imported)
	assert.Empty(t, rig.remote.fetches, "an upload older than the local copy needs no download")

	got, _ := rig.local.get("x")
	assert.Equal(t, int64(200), got.LastModified)
}

func TestImport_SilentTakesNewerRemote(t *testing.T) {
	rig := newRig(book("x", 100))
	remoteRec := book("x", 300)
	remoteRec.Progress = 0.9
	seedRemoteBook(t, rig, remoteRec, 350)

	res, err := rig.orch.ImportFromPrefix(context.Background(), "shelf42", true, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Imported)
	assert.Zero(t, rig.confirmer.calls, "silent mode never asks")

	got, _ := rig.local.get("x")
	assert.Equal(t, int64(300), got.LastModified)
	assert.Equal(t, 0.9, got.Progress)
}

func TestImport_InteractiveKeepLocal(t *testing.T) {
	rig := newRig(book("x", 100))
	rig.confirmer.answer = false
	seedRemoteBook(t, rig, book("x", 300), 350)

	res, err := rig.orch.ImportFromPrefix(context.Background(), "shelf42", false, nil)
	require.NoError(t, err)
	assert.Zero(t, res.Imported)
	assert.Equal(t, 1, rig.confirmer.calls)

	got, _ := rig.local.get("x")
	assert.Equal(t, int64(100), got.LastModified)
}

func TestImport_PersistsIncrementally(t *testing.T) {
	rig := newRig()
	for i := 0; i < 3; i++ {
		seedRemoteBook(t, rig, book(fmt.Sprintf("x%d", i), 100), 150)
	}

	var progressCalls int
	rig.orch.progress = func(processed, total int, _ string) {
		progressCalls++
		assert.Equal(t, 3, total)
	}

	res, err := rig.orch.ImportFromPrefix(context.Background(), "shelf42", true, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Imported)
	assert.Equal(t, 3, rig.local.putCalls, "each object persists before the next starts")
	assert.Equal(t, 3, progressCalls, "progress emitted after every object")
	assert.GreaterOrEqual(t, rig.local.loads, 4, "local snapshot reloads after every change")
}

func TestImport_UsesCallerSuppliedSubset(t *testing.T) {
	rig := newRig()
	rec := book("x", 100)
	obj := seedRemoteBook(t, rig, rec, 150)
	seedRemoteBook(t, rig, book("y", 100), 150)

	res, err := rig.orch.ImportFromPrefix(context.Background(), "shelf42", true, []models.RemoteObject{obj})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Imported)
	assert.Zero(t, rig.remote.lists, "a known subset skips the listing")

	_, ok := rig.local.get("y")
	assert.False(t, ok)
}

func TestImport_SkipsUnparsableKeys(t *testing.T) {
	rig := newRig()
	rig.remote.seed(models.RemoteObject{Key: "garbage.bin", UploadedAt: 10}, []byte("junk"))

	res, err := rig.orch.ImportFromPrefix(context.Background(), "shelf42", true, nil)
	require.NoError(t, err)
	assert.Zero(t, res.Imported)
	assert.Empty(t, rig.remote.fetches)
}

func TestImport_PerObjectFailureDoesNotAbort(t *testing.T) {
	rig := newRig()
	seedRemoteBook(t, rig, book("a", 100), 150)
	bad := seedRemoteBook(t, rig, book("b", 100), 150)
	seedRemoteBook(t, rig, book("c", 100), 150)
	rig.remote.fetchErrs[bad.Key] = &remote.NetworkError{Err: fmt.Errorf("timeout")}

	res, err := rig.orch.ImportFromPrefix(context.Background(), "shelf42", true, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Imported, "completed objects survive a sibling failure")

	var errored int
	for _, s := range rig.orch.Statuses() {
		if s.State == models.StatusError {
			errored++
			assert.Equal(t, "b", s.RecordID)
		}
	}
	assert.Equal(t, 1, errored)
}

func TestImport_ProgressTitleNamesFailedObject(t *testing.T) {
	rig := newRig()
	seedRemoteBook(t, rig, book("a", 100), 150)
	bad := seedRemoteBook(t, rig, book("b", 100), 150)
	rig.remote.fetchErrs[bad.Key] = &remote.NetworkError{Err: fmt.Errorf("timeout")}

	var titles []string
	rig.orch.progress = func(_, _ int, title string) { titles = append(titles, title) }

	_, err := rig.orch.ImportFromPrefix(context.Background(), "shelf42", true, nil)
	require.NoError(t, err)
	require.Len(t, titles, 2)
	assert.Equal(t, "Book a", titles[0])
	assert.Equal(t, bad.Key, titles[1], "a failed object is reported by its key, not a blank title")
}

func TestImport_EntitlementStopsRun(t *testing.T) {
	rig := newRig()
	first := seedRemoteBook(t, rig, book("a", 100), 150)
	rig.remote.fetchErrs[first.Key] = fmt.Errorf("fetch: %w", remote.ErrEntitlementRequired)
	seedRemoteBook(t, rig, book("b", 100), 150)

	res, err := rig.orch.ImportFromPrefix(context.Background(), "shelf42", true, nil)
	require.ErrorIs(t, err, remote.ErrEntitlementRequired)
	assert.Zero(t, res.Imported)
	assert.Equal(t, 1, rig.prompter.calls)
	assert.Empty(t, rig.remote.fetches, "run stops at the first entitlement rejection")
}

func TestImport_TerminatedMidRunStops(t *testing.T) {
	rig := newRig()
	seedRemoteBook(t, rig, book("a", 100), 150)
	seedRemoteBook(t, rig, book("b", 100), 150)

	// Simulate termination after the first object by clearing the flag from
	// the progress callback.
	rig.orch.progress = func(int, int, string) {
		rig.orch.state.Store(int32(StateIdle))
	}

	res, err := rig.orch.ImportFromPrefix(context.Background(), "shelf42", true, nil)
	require.ErrorIs(t, err, common.ErrTerminated)
	assert.Equal(t, 1, res.Imported, "work completed before termination is kept")
}

func TestImport_RecordsSnapshotsForDownloads(t *testing.T) {
	rig := newRig()
	rec := book("x", 100)
	obj := seedRemoteBook(t, rig, rec, 150)

	_, err := rig.orch.ImportFromPrefix(context.Background(), "shelf42", true, nil)
	require.NoError(t, err)

	entry, ok := rig.cache.Lookup(obj.Key)
	require.True(t, ok)
	require.NotNil(t, entry.Snapshot)
	assert.Equal(t, rec.Significant(), *entry.Snapshot)
}

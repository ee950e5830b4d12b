package engine

import (
	"context"
	"sort"
	"sync"

	"github.com/dmitrijs2005/shelfsync/internal/cache"
	"github.com/dmitrijs2005/shelfsync/internal/conflict"
	"github.com/dmitrijs2005/shelfsync/internal/models"
)

// fakeRemote is an in-memory remote.Store with per-key error injection.
type fakeRemote struct {
	mu sync.Mutex

	payloads map[string][]byte
	objects  map[string]models.RemoteObject

	listErr   error
	putErrs   map[string]error
	fetchErrs map[string]error

	puts    []string
	deletes []string
	fetches []string
	lists   int

	// uploadedAt assigned to the next successful put; keeps server time
	// fully under test control.
	nextUploadedAt int64
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{
		payloads:       make(map[string][]byte),
		objects:        make(map[string]models.RemoteObject),
		putErrs:        make(map[string]error),
		fetchErrs:      make(map[string]error),
		nextUploadedAt: 1000,
	}
}

func (f *fakeRemote) seed(obj models.RemoteObject, payload []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[obj.Key] = obj
	if payload != nil {
		f.payloads[obj.Key] = payload
	}
}

func (f *fakeRemote) List(_ context.Context, prefix string) ([]models.RemoteObject, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lists++
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []models.RemoteObject
	for _, o := range f.objects {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (f *fakeRemote) Put(_ context.Context, key string, data []byte) (models.RemoteObject, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.putErrs[key]; err != nil {
		return models.RemoteObject{}, err
	}
	f.puts = append(f.puts, key)
	obj := models.RemoteObject{Key: key, Size: int64(len(data)), UploadedAt: f.nextUploadedAt}
	f.objects[key] = obj
	f.payloads[key] = data
	return obj, nil
}

func (f *fakeRemote) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes = append(f.deletes, key)
	delete(f.objects, key)
	delete(f.payloads, key)
	return nil
}

func (f *fakeRemote) Fetch(_ context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fetchErrs[key]; err != nil {
		return nil, err
	}
	f.fetches = append(f.fetches, key)
	return f.payloads[key], nil
}

func (f *fakeRemote) putCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.puts)
}

// fakeLocal is an in-memory LocalStore tracking individual persist calls.
type fakeLocal struct {
	mu       sync.Mutex
	records  map[string]models.Record
	putCalls int
	loads    int
}

func newFakeLocal(records ...models.Record) *fakeLocal {
	l := &fakeLocal{records: make(map[string]models.Record)}
	for _, r := range records {
		l.records[r.ID] = r
	}
	return l
}

func (l *fakeLocal) LoadAll(context.Context) ([]models.Record, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.loads++
	out := make([]models.Record, 0, len(l.records))
	for _, r := range l.records {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (l *fakeLocal) Put(_ context.Context, r models.Record) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.putCalls++
	l.records[r.ID] = r
	return nil
}

func (l *fakeLocal) BulkPut(_ context.Context, rs []models.Record) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, r := range rs {
		l.records[r.ID] = r
	}
	return nil
}

func (l *fakeLocal) Delete(_ context.Context, id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.records, id)
	return nil
}

func (l *fakeLocal) Clear(context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.records = make(map[string]models.Record)
	return nil
}

func (l *fakeLocal) get(id string) (models.Record, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	r, ok := l.records[id]
	return r, ok
}

// fakeConfigStore keeps the sync config in memory.
type fakeConfigStore struct {
	mu  sync.Mutex
	cfg models.SyncConfig
}

func (s *fakeConfigStore) Load(context.Context) (models.SyncConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg, nil
}

func (s *fakeConfigStore) Save(_ context.Context, cfg models.SyncConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg = cfg
	return nil
}

type fakePrompter struct {
	mu    sync.Mutex
	calls int
}

func (p *fakePrompter) PresentUpgradePrompt(context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	return nil
}

type autoConfirmer struct {
	answer bool
	calls  int
}

func (c *autoConfirmer) Confirm(context.Context, conflict.ConfirmRequest) (bool, error) {
	c.calls++
	return c.answer, nil
}

// testRig bundles an orchestrator with all its fakes.
type testRig struct {
	orch      *Orchestrator
	remote    *fakeRemote
	local     *fakeLocal
	cfg       *fakeConfigStore
	prompter  *fakePrompter
	confirmer *autoConfirmer
	cache     *cache.Cache
}

func newRig(records ...models.Record) *testRig {
	r := &testRig{
		remote:    newFakeRemote(),
		local:     newFakeLocal(records...),
		cfg:       &fakeConfigStore{cfg: models.SyncConfig{Enabled: true, Prefix: "shelf42"}},
		prompter:  &fakePrompter{},
		confirmer: &autoConfirmer{},
		cache:     cache.New(0),
	}
	r.orch = New(Deps{
		Remote:   r.remote,
		Cache:    r.cache,
		Resolver: conflict.NewResolver(r.confirmer),
		Local:    r.local,
		Config:   r.cfg,
		Prompter: r.prompter,
	})
	return r
}

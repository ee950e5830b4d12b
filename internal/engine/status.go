package engine

import (
	"sync"

	"github.com/dmitrijs2005/shelfsync/internal/models"
)

// statusTracker keeps per-record operation statuses for one run. Transitions
// are monotonic within a run (pending -> syncing -> completed|error); the
// whole list is discarded when the next run starts.
type statusTracker struct {
	mu   sync.Mutex
	list []*models.OperationStatus
	byID map[string]*models.OperationStatus
}

func (t *statusTracker) reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.list = nil
	t.byID = make(map[string]*models.OperationStatus)
}

func (t *statusTracker) add(id, title string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.byID == nil {
		t.byID = make(map[string]*models.OperationStatus)
	}
	s := &models.OperationStatus{RecordID: id, Title: title, State: models.StatusPending}
	t.list = append(t.list, s)
	t.byID[id] = s
}

func (t *statusTracker) set(id string, state models.StatusState, errMsg string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if s, ok := t.byID[id]; ok {
		s.State = state
		s.Err = errMsg
	}
}

func (t *statusTracker) snapshot() []models.OperationStatus {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]models.OperationStatus, 0, len(t.list))
	for _, s := range t.list {
		out = append(out, *s)
	}
	return out
}

package models

// StatusState is the lifecycle state of one per-record operation within a
// sync or import run.
type StatusState string

const (
	StatusPending   StatusState = "pending"
	StatusSyncing   StatusState = "syncing"
	StatusCompleted StatusState = "completed"
	StatusError     StatusState = "error"
)

// OperationStatus tracks one record through a run. Statuses are created when
// a run starts and discarded at the start of the next run; they are never
// persisted.
type OperationStatus struct {
	RecordID string
	Title    string
	State    StatusState
	Err      string
}

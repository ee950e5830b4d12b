package models

// SyncConfig is the persisted synchronization configuration. It is read and
// written as a single atomic unit (see repositories/syncconfig).
//
// An empty Prefix means sync has never been configured.
type SyncConfig struct {
	Enabled      bool   `json:"enabled"`
	Prefix       string `json:"prefix"`
	LastSyncTime int64  `json:"lastSyncTime"`
}

// Configured reports whether the config is usable for a sync or import run.
func (c SyncConfig) Configured() bool {
	return c.Enabled && c.Prefix != ""
}

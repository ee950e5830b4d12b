// Package common defines shared constants and sentinel errors used across
// shelfsync layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// Orchestrator guard errors. Both are returned before any network or
	// local-store access is attempted.
	ErrNotConfigured  = errors.New("sync not configured")
	ErrAlreadyRunning = errors.New("another sync operation is already running")

	// ErrTerminated reports that a run observed the cleared active-operation
	// flag mid-flight and stopped before its next batch or commit step.
	ErrTerminated = errors.New("operation terminated")
)

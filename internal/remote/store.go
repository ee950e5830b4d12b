// Package remote implements the blob store client: a thin wrapper over an
// S3-compatible backend that translates transport failures into the typed
// error taxonomy the sync engine works with.
package remote

import (
	"context"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/shelfsync/internal/models"
)

// Store is the remote blob store surface the orchestrator depends on.
//
// Put must have idempotent overwrite semantics so retried uploads are safe.
// Delete of an absent key is not an error.
type Store interface {
	List(ctx context.Context, prefix string) ([]models.RemoteObject, error)
	Put(ctx context.Context, key string, data []byte) (models.RemoteObject, error)
	Delete(ctx context.Context, key string) error
	Fetch(ctx context.Context, key string) ([]byte, error)
}

// EntitlementGate decides whether a backend rejection means "this account
// tier is not allowed to do this" as opposed to a generic 4xx.
type EntitlementGate interface {
	IsForbidden(status int, body string) bool
}

// DefaultGate treats 402 as an entitlement failure unconditionally, and 403
// only when the response body points at a plan or entitlement problem.
type DefaultGate struct{}

func (DefaultGate) IsForbidden(status int, body string) bool {
	if status == http.StatusPaymentRequired {
		return true
	}
	if status != http.StatusForbidden {
		return false
	}
	b := strings.ToLower(body)
	return strings.Contains(b, "entitlement") || strings.Contains(b, "upgrade") || strings.Contains(b, "plan")
}

// Package syncconfig persists the sync configuration through the metadata
// repository as one JSON value, so reads and writes stay atomic as a unit.
package syncconfig

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/shelfsync/internal/models"
	"github.com/dmitrijs2005/shelfsync/internal/repositories/metadata"
)

const configKey = "sync_config"

type Store struct {
	md metadata.Repository
}

func NewStore(md metadata.Repository) *Store {
	return &Store{md: md}
}

// Load returns the persisted config; a never-saved config comes back as the
// zero value (disabled, no prefix).
func (s *Store) Load(ctx context.Context) (models.SyncConfig, error) {
	var cfg models.SyncConfig

	data, err := s.md.Get(ctx, configKey)
	if err != nil {
		return cfg, fmt.Errorf("loading sync config: %w", err)
	}
	if data == nil {
		return cfg, nil
	}

	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing sync config: %w", err)
	}
	return cfg, nil
}

func (s *Store) Save(ctx context.Context, cfg models.SyncConfig) error {
	data, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("serializing sync config: %w", err)
	}
	if err := s.md.Set(ctx, configKey, data); err != nil {
		return fmt.Errorf("saving sync config: %w", err)
	}
	return nil
}

package floorplan

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/table-reservation/internal/model"
)

// ErrNotLoaded is returned by Current before the first successful Reload.
var ErrNotLoaded = errors.New("floor plan not loaded")

// Source reads raw floor plan configuration from storage.
type Source interface {
	ListZones(ctx context.Context) ([]model.Zone, error)
	ListTables(ctx context.Context) ([]model.Table, error)
	ListCombinations(ctx context.Context) ([]model.TableCombination, error)
}

// Store publishes the current Snapshot.  Readers never block writers;
// a reload builds a complete snapshot before swapping it in.
type Store struct {
	src     Source
	log     *zap.Logger
	current atomic.Pointer[Snapshot]
	now     func() time.Time
}

// NewStore creates an empty store.  Call Reload before serving requests.
func NewStore(src Source, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{src: src, log: log, now: time.Now}
}

// Current returns the active snapshot.
func (s *Store) Current() (*Snapshot, error) {
	snap := s.current.Load()
	if snap == nil {
		return nil, ErrNotLoaded
	}
	return snap, nil
}

// Reload reads zones, tables and combinations and swaps in a new
// snapshot.  On error the previous snapshot stays active.
func (s *Store) Reload(ctx context.Context) (*Snapshot, error) {
	zones, err := s.src.ListZones(ctx)
	if err != nil {
		return nil, fmt.Errorf("load zones: %w", err)
	}
	tables, err := s.src.ListTables(ctx)
	if err != nil {
		return nil, fmt.Errorf("load tables: %w", err)
	}
	combos, err := s.src.ListCombinations(ctx)
	if err != nil {
		return nil, fmt.Errorf("load combinations: %w", err)
	}
	snap := NewSnapshot(zones, tables, combos, s.now())
	s.current.Store(snap)
	s.log.Info("floor plan reloaded",
		zap.Int("zones", len(snap.zones)),
		zap.Int("tables", len(snap.tables)),
		zap.Int("combinations", len(snap.Combinations())),
	)
	return snap, nil
}

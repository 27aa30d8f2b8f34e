package catalog

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/smartstyle-cloud/styledex/internal/domain"
	domcat "github.com/smartstyle-cloud/styledex/internal/domain/catalog"
	"github.com/smartstyle-cloud/styledex/internal/usecase/similarity"
)

// session pairs one catalog snapshot with the index built over it.
type session struct {
	store *domcat.Store
	index *similarity.Index
}

// Service owns the catalog session lifecycle: load rows, build the
// similarity index, and swap both in atomically. Readers always see a
// complete (store, index) pair; a failed reload leaves the previous pair
// serving.
type Service struct {
	rows    RowSource
	embed   domain.Embedder
	logger  *zap.Logger
	current atomic.Pointer[session]

	itemsGauge    prometheus.Gauge
	buildDuration prometheus.Observer
}

// New creates a catalog session service.
func New(rows RowSource, embed domain.Embedder, logger *zap.Logger) *Service {
	return &Service{rows: rows, embed: embed, logger: logger}
}

// WithMetrics attaches catalog gauges, passed explicitly from main.
func (s *Service) WithMetrics(items prometheus.Gauge, buildDuration prometheus.Observer) *Service {
	s.itemsGauge = items
	s.buildDuration = buildDuration
	return s
}

// Reload fetches rows, loads a fresh store, builds a fresh index, then swaps
// the pair in atomically. On any failure the currently served pair is kept.
func (s *Service) Reload(ctx context.Context) error {
	start := time.Now()

	rows, err := s.rows.Rows(ctx)
	if err != nil {
		return fmt.Errorf("fetch catalog rows: %w", err)
	}

	store, err := domcat.Load(rows)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}

	index, err := similarity.Build(ctx, store, s.embed)
	if err != nil {
		return fmt.Errorf("build similarity index: %w", err)
	}

	s.current.Store(&session{store: store, index: index})

	if s.itemsGauge != nil {
		s.itemsGauge.Set(float64(store.Size()))
	}
	if s.buildDuration != nil {
		s.buildDuration.Observe(time.Since(start).Seconds())
	}

	s.logger.Info("catalog reloaded",
		zap.Int("rows", len(rows)),
		zap.Int("items", store.Size()),
		zap.Int("dropped", len(rows)-store.Size()),
		zap.Duration("took", time.Since(start)),
	)
	return nil
}

// Snapshot returns the currently served (store, index) pair.
// Fails with domain.ErrIndexNotReady before the first successful Reload.
func (s *Service) Snapshot() (*domcat.Store, *similarity.Index, error) {
	cur := s.current.Load()
	if cur == nil {
		return nil, nil, domain.ErrIndexNotReady
	}
	return cur.store, cur.index, nil
}

// Ready reports whether a session has been loaded.
func (s *Service) Ready() bool { return s.current.Load() != nil }

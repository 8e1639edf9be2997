package repository

import (
	"context"
	"errors"
	"time"

	"github.com/deppfellow/shopping-list/internal/metrics"
	"github.com/deppfellow/shopping-list/internal/model"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// InstrumentedStore decorates a ShoppingListStore with Prometheus metrics
// and logging. Operations slower than the threshold are logged at warn,
// every successful save at debug.
type InstrumentedStore struct {
	next          ShoppingListStore
	slowThreshold time.Duration
}

func NewInstrumentedStore(next ShoppingListStore, slowThreshold time.Duration) *InstrumentedStore {
	return &InstrumentedStore{next: next, slowThreshold: slowThreshold}
}

func (s *InstrumentedStore) observe(ctx context.Context, operation string, start time.Time, err error) {
	elapsed := time.Since(start)

	result := metrics.ResultOK
	switch {
	case errors.Is(err, ErrNotFound):
		result = metrics.ResultNotFound
	case err != nil:
		result = metrics.ResultError
	}

	metrics.StoreOperations.WithLabelValues(operation, result).Inc()
	metrics.StoreLatency.WithLabelValues(operation).Observe(elapsed.Seconds())

	if s.slowThreshold > 0 && elapsed > s.slowThreshold {
		zerolog.Ctx(ctx).Warn().
			Str("operation", operation).
			Dur("duration", elapsed).
			Dur("threshold", s.slowThreshold).
			Msg("slow store operation")
	}
}

func (s *InstrumentedStore) Create(ctx context.Context, list *model.ShoppingList) error {
	start := time.Now()
	err := s.next.Create(ctx, list)
	s.observe(ctx, "create", start, err)

	if err == nil {
		zerolog.Ctx(ctx).Debug().Str("list_id", list.ID.Hex()).Msg("shopping list created")
	}
	return err
}

func (s *InstrumentedStore) FindByID(ctx context.Context, id primitive.ObjectID) (*model.ShoppingList, error) {
	start := time.Now()
	list, err := s.next.FindByID(ctx, id)
	s.observe(ctx, "find_by_id", start, err)
	return list, err
}

func (s *InstrumentedStore) FindVisible(ctx context.Context) ([]model.ListSummary, error) {
	start := time.Now()
	lists, err := s.next.FindVisible(ctx)
	s.observe(ctx, "find_visible", start, err)
	return lists, err
}

func (s *InstrumentedStore) Save(ctx context.Context, list *model.ShoppingList) error {
	start := time.Now()
	err := s.next.Save(ctx, list)
	s.observe(ctx, "save", start, err)

	if err == nil {
		zerolog.Ctx(ctx).Debug().
			Str("list_id", list.ID.Hex()).
			Int("items", len(list.Items)).
			Bool("hidden", list.Hidden).
			Msg("shopping list saved")
	}
	return err
}

func (s *InstrumentedStore) Ping(ctx context.Context) error {
	return s.next.Ping(ctx)
}

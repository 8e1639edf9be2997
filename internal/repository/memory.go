package repository

import (
	"context"
	"sync"
	"time"

	"github.com/deppfellow/shopping-list/internal/model"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryShoppingListRepository keeps lists in process memory. It backs the
// "memory" driver and the service and handler tests.
//
// Lists are copied on the way in and on the way out, so callers never
// share item slices with the store.
type MemoryShoppingListRepository struct {
	mu    sync.RWMutex
	order []primitive.ObjectID
	lists map[primitive.ObjectID]*model.ShoppingList
	now   func() time.Time
}

func NewMemoryShoppingListRepository() *MemoryShoppingListRepository {
	return &MemoryShoppingListRepository{
		lists: make(map[primitive.ObjectID]*model.ShoppingList),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (r *MemoryShoppingListRepository) Create(_ context.Context, list *model.ShoppingList) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	list.ID = primitive.NewObjectID()
	list.CreatedAt = now
	list.UpdatedAt = now
	list.EnsureItems()

	r.lists[list.ID] = list.Clone()
	r.order = append(r.order, list.ID)
	return nil
}

func (r *MemoryShoppingListRepository) FindByID(_ context.Context, id primitive.ObjectID) (*model.ShoppingList, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list, ok := r.lists[id]
	if !ok {
		return nil, ErrNotFound
	}
	return list.Clone(), nil
}

func (r *MemoryShoppingListRepository) FindVisible(_ context.Context) ([]model.ListSummary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	summaries := make([]model.ListSummary, 0, len(r.order))
	for _, id := range r.order {
		list := r.lists[id]
		if list.Hidden {
			continue
		}
		summaries = append(summaries, list.Clone().Summary())
	}
	return summaries, nil
}

func (r *MemoryShoppingListRepository) Save(_ context.Context, list *model.ShoppingList) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.lists[list.ID]
	if !ok {
		return ErrNotFound
	}

	list.CreatedAt = stored.CreatedAt
	list.UpdatedAt = r.now()
	list.EnsureItems()

	r.lists[list.ID] = list.Clone()
	return nil
}

func (r *MemoryShoppingListRepository) Ping(context.Context) error {
	return nil
}

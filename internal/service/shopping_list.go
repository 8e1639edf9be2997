package service

import (
	"context"
	"errors"

	"github.com/deppfellow/shopping-list/internal/errs"
	"github.com/deppfellow/shopping-list/internal/metrics"
	"github.com/deppfellow/shopping-list/internal/model"
	"github.com/deppfellow/shopping-list/internal/repository"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ShoppingListService implements list and item operations on top of a
// document store.
//
// Every mutation is a read-modify-write of the whole list with no
// isolation between concurrent requests: the last save wins.
type ShoppingListService struct {
	store repository.ShoppingListStore
}

func NewShoppingListService(store repository.ShoppingListStore) *ShoppingListService {
	return &ShoppingListService{store: store}
}

// CreateList stores a new visible list holding items in the given order.
func (s *ShoppingListService) CreateList(ctx context.Context, name string, items []model.ItemInput) (*model.ShoppingList, error) {
	list := model.NewShoppingList(name, model.ToItems(items))

	if err := s.store.Create(ctx, list); err != nil {
		return nil, storeError("Failed to create shopping list", err)
	}

	metrics.ListMutations.WithLabelValues("create").Inc()
	zerolog.Ctx(ctx).Info().
		Str("list_id", list.ID.Hex()).
		Int("items", len(list.Items)).
		Msg("shopping list created")

	return list, nil
}

// ListLists returns every list that is not hidden.
func (s *ShoppingListService) ListLists(ctx context.Context) ([]model.ListSummary, error) {
	lists, err := s.store.FindVisible(ctx)
	if err != nil {
		return nil, storeError("Failed to load shopping lists", err)
	}
	return lists, nil
}

// GetList returns one list by id, including hidden ones.
func (s *ShoppingListService) GetList(ctx context.Context, listID string) (*model.ShoppingList, error) {
	return s.loadList(ctx, listID)
}

// HideList soft-deletes a list. Hiding an already hidden list succeeds.
func (s *ShoppingListService) HideList(ctx context.Context, listID string) (*model.ShoppingList, error) {
	list, err := s.loadList(ctx, listID)
	if err != nil {
		return nil, err
	}

	list.Hidden = true
	if err := s.save(ctx, list, "hide"); err != nil {
		return nil, err
	}

	zerolog.Ctx(ctx).Info().Str("list_id", listID).Msg("shopping list hidden")
	return list, nil
}

// AddItems appends items to the list in the order given.
func (s *ShoppingListService) AddItems(ctx context.Context, listID string, items []model.ItemInput) (*model.ShoppingList, error) {
	list, err := s.loadList(ctx, listID)
	if err != nil {
		return nil, err
	}

	list.AppendItems(model.ToItems(items)...)
	if err := s.save(ctx, list, "add_items"); err != nil {
		return nil, err
	}
	return list, nil
}

// UpdateItem merges the supplied fields onto one item. The bought flag is
// left as stored.
func (s *ShoppingListService) UpdateItem(ctx context.Context, listID, itemID string, patch model.ItemInput) (*model.ShoppingList, error) {
	list, i, err := s.loadItem(ctx, listID, itemID)
	if err != nil {
		return nil, err
	}

	patch.MergeInto(&list.Items[i])
	if err := s.save(ctx, list, "update_item"); err != nil {
		return nil, err
	}
	return list, nil
}

// ToggleBought flips the bought flag of one item.
func (s *ShoppingListService) ToggleBought(ctx context.Context, listID, itemID string) (*model.ShoppingList, error) {
	list, i, err := s.loadItem(ctx, listID, itemID)
	if err != nil {
		return nil, err
	}

	list.Items[i].ToggleBought()
	if err := s.save(ctx, list, "toggle_bought"); err != nil {
		return nil, err
	}
	return list, nil
}

// DeleteItem removes one item, keeping the order of the others.
func (s *ShoppingListService) DeleteItem(ctx context.Context, listID, itemID string) (*model.ShoppingList, error) {
	list, i, err := s.loadItem(ctx, listID, itemID)
	if err != nil {
		return nil, err
	}

	list.RemoveItem(i)
	if err := s.save(ctx, list, "delete_item"); err != nil {
		return nil, err
	}
	return list, nil
}

// loadList resolves listID. Ids that are not valid ObjectIDs cannot match
// any list and are reported as not found.
func (s *ShoppingListService) loadList(ctx context.Context, listID string) (*model.ShoppingList, error) {
	id, err := primitive.ObjectIDFromHex(listID)
	if err != nil {
		return nil, errs.ListNotFound(listID)
	}

	list, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errs.ListNotFound(listID)
		}
		return nil, storeError("Failed to load shopping list", err)
	}
	return list, nil
}

func (s *ShoppingListService) loadItem(ctx context.Context, listID, itemID string) (*model.ShoppingList, int, error) {
	list, err := s.loadList(ctx, listID)
	if err != nil {
		return nil, -1, err
	}

	id, err := primitive.ObjectIDFromHex(itemID)
	if err != nil {
		return nil, -1, errs.ItemNotFound(itemID)
	}

	i, ok := list.FindItem(id)
	if !ok {
		return nil, -1, errs.ItemNotFound(itemID)
	}
	return list, i, nil
}

func (s *ShoppingListService) save(ctx context.Context, list *model.ShoppingList, mutation string) error {
	if err := s.store.Save(ctx, list); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return errs.ListNotFound(list.ID.Hex())
		}
		return storeError("Failed to save shopping list", err)
	}

	metrics.ListMutations.WithLabelValues(mutation).Inc()
	return nil
}

// storeError keeps errors the store already classified and marks anything
// else as a store failure.
func storeError(message string, err error) error {
	if errs.KindOf(err) != errs.KindUnknown {
		return err
	}
	return errs.Store(message, err)
}

// Package repository persists shopping lists.
//
// Every backend stores a list as one document with its items embedded:
// loads and saves always move the whole list. ShoppingListStore is the
// contract the service layer depends on; MongoDB, PostgreSQL (JSONB) and
// an in-process map implement it.
package repository

import (
	"context"
	"errors"

	"github.com/deppfellow/shopping-list/internal/model"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrNotFound is returned when no list has the requested id.
var ErrNotFound = errors.New("shopping list not found")

// ShoppingListStore is a document store of shopping lists.
type ShoppingListStore interface {
	// Create assigns the id and both timestamps, then inserts the list.
	Create(ctx context.Context, list *model.ShoppingList) error

	// FindByID loads one list, hidden or not.
	FindByID(ctx context.Context, id primitive.ObjectID) (*model.ShoppingList, error)

	// FindVisible returns every list that is not hidden, in store order.
	FindVisible(ctx context.Context) ([]model.ListSummary, error)

	// Save replaces the stored list with list and refreshes UpdatedAt.
	// ErrNotFound is returned when the list no longer exists.
	Save(ctx context.Context, list *model.ShoppingList) error

	// Ping reports whether the backend is reachable.
	Ping(ctx context.Context) error
}

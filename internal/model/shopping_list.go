// Package model holds the shopping list documents and the request payloads
// that create and mutate them.
package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func init() {
	// Costs are JSON numbers on the wire, not quoted strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// Item is one line of a shopping list. Items only exist embedded in a list.
type Item struct {
	ID     primitive.ObjectID `json:"id" bson:"_id"`
	Item   string             `json:"item" bson:"item"`
	Bought bool               `json:"bought" bson:"bought"`
	Cost   *decimal.Decimal   `json:"cost,omitempty" bson:"cost,omitempty"`
	Amount *float64           `json:"amount,omitempty" bson:"amount,omitempty"`
}

// ShoppingList is the stored document. The whole list, items included, is
// read and written as one unit.
type ShoppingList struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name      string             `json:"name,omitempty" bson:"name,omitempty"`
	Items     []Item             `json:"items" bson:"items"`
	Hidden    bool               `json:"hidden" bson:"hidden"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// ListSummary is the projection returned by the list-all query.
type ListSummary struct {
	ID        primitive.ObjectID `json:"id" bson:"_id"`
	Name      string             `json:"name,omitempty" bson:"name,omitempty"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
	Items     []Item             `json:"items" bson:"items"`
}

// NewShoppingList builds an unsaved, visible list. The store assigns the id
// and timestamps.
func NewShoppingList(name string, items []Item) *ShoppingList {
	list := &ShoppingList{
		Name:   strings.TrimSpace(name),
		Items:  make([]Item, 0, len(items)),
		Hidden: false,
	}
	list.AppendItems(items...)
	return list
}

// EnsureItems replaces a nil item slice with an empty one so the list
// always serializes "items": [].
func (l *ShoppingList) EnsureItems() {
	if l.Items == nil {
		l.Items = []Item{}
	}
}

// FindItem returns the index of the item with the given id.
func (l *ShoppingList) FindItem(id primitive.ObjectID) (int, bool) {
	for i := range l.Items {
		if l.Items[i].ID == id {
			return i, true
		}
	}
	return -1, false
}

// AppendItems adds items at the end, in the order given.
func (l *ShoppingList) AppendItems(items ...Item) {
	l.Items = append(l.Items, items...)
}

// RemoveItem deletes the item at index i, keeping the order of the rest.
func (l *ShoppingList) RemoveItem(i int) {
	l.Items = append(l.Items[:i], l.Items[i+1:]...)
}

// Summary projects the list onto the fields exposed by the list-all query.
func (l *ShoppingList) Summary() ListSummary {
	items := l.Items
	if items == nil {
		items = []Item{}
	}
	return ListSummary{
		ID:        l.ID,
		Name:      l.Name,
		CreatedAt: l.CreatedAt,
		Items:     items,
	}
}

// Clone returns a deep copy, so callers can mutate it without touching the original.
func (l *ShoppingList) Clone() *ShoppingList {
	clone := *l
	clone.Items = make([]Item, len(l.Items))
	for i, item := range l.Items {
		clone.Items[i] = item.clone()
	}
	return &clone
}

func (i Item) clone() Item {
	if i.Cost != nil {
		cost := *i.Cost
		i.Cost = &cost
	}
	if i.Amount != nil {
		amount := *i.Amount
		i.Amount = &amount
	}
	return i
}

// ToggleBought flips the bought flag.
func (i *Item) ToggleBought() {
	i.Bought = !i.Bought
}

package service

import (
	"context"
	"errors"
	"testing"

	"github.com/deppfellow/shopping-list/internal/errs"
	"github.com/deppfellow/shopping-list/internal/model"
	"github.com/deppfellow/shopping-list/internal/repository"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// failingStore fails every call with a driver-like error.
type failingStore struct {
	err error
}

func (f failingStore) Create(context.Context, *model.ShoppingList) error { return f.err }
func (f failingStore) FindByID(context.Context, primitive.ObjectID) (*model.ShoppingList, error) {
	return nil, f.err
}
func (f failingStore) FindVisible(context.Context) ([]model.ListSummary, error) { return nil, f.err }
func (f failingStore) Save(context.Context, *model.ShoppingList) error         { return f.err }
func (f failingStore) Ping(context.Context) error                              { return f.err }

func names(items ...string) []model.ItemInput {
	inputs := make([]model.ItemInput, len(items))
	for i, item := range items {
		inputs[i] = model.ItemName(item)
	}
	return inputs
}

func itemNames(list *model.ShoppingList) []string {
	out := make([]string, len(list.Items))
	for i, item := range list.Items {
		out[i] = item.Item
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func newService(t *testing.T) (*ShoppingListService, *repository.MemoryShoppingListRepository) {
	t.Helper()
	store := repository.NewMemoryShoppingListRepository()
	return NewShoppingListService(store), store
}

func TestCreateList(t *testing.T) {
	ctx := context.Background()
	svc, store := newService(t)

	list, err := svc.CreateList(ctx, "weekly", names("milk", "eggs", "bread"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	stored, err := store.FindByID(ctx, list.ID)
	if err != nil {
		t.Fatalf("created list not stored: %v", err)
	}
	if stored.Hidden {
		t.Error("new list must not be hidden")
	}
	if want := []string{"milk", "eggs", "bread"}; !equalStrings(itemNames(stored), want) {
		t.Errorf("expected items %v, got %v", want, itemNames(stored))
	}
	for _, item := range stored.Items {
		if item.Bought {
			t.Errorf("item %q should default to not bought", item.Item)
		}
	}
}

func TestHideList(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	list, _ := svc.CreateList(ctx, "old", names("milk"))
	other, _ := svc.CreateList(ctx, "new", nil)

	if _, err := svc.HideList(ctx, list.ID.Hex()); err != nil {
		t.Fatalf("hide: %v", err)
	}

	visible, err := svc.ListLists(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(visible) != 1 || visible[0].ID != other.ID {
		t.Errorf("expected only the visible list, got %+v", visible)
	}

	got, err := svc.GetList(ctx, list.ID.Hex())
	if err != nil {
		t.Fatalf("hidden list must stay retrievable by id: %v", err)
	}
	if !got.Hidden {
		t.Error("expected hidden=true")
	}

	t.Run("hiding twice succeeds", func(t *testing.T) {
		if _, err := svc.HideList(ctx, list.ID.Hex()); err != nil {
			t.Errorf("second hide: %v", err)
		}
	})

	t.Run("unknown list", func(t *testing.T) {
		_, err := svc.HideList(ctx, primitive.NewObjectID().Hex())
		if errs.KindOf(err) != errs.KindListNotFound {
			t.Errorf("expected list not found, got %v", err)
		}
	})
}

func TestAddItemsAssociative(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	one, _ := svc.CreateList(ctx, "", names("a"))
	two, _ := svc.CreateList(ctx, "", names("a"))

	if _, err := svc.AddItems(ctx, one.ID.Hex(), names("b")); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.AddItems(ctx, one.ID.Hex(), names("c", "d")); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.AddItems(ctx, two.ID.Hex(), names("b", "c", "d")); err != nil {
		t.Fatal(err)
	}

	gotOne, _ := svc.GetList(ctx, one.ID.Hex())
	gotTwo, _ := svc.GetList(ctx, two.ID.Hex())

	if !equalStrings(itemNames(gotOne), itemNames(gotTwo)) {
		t.Errorf("split and combined appends differ: %v vs %v", itemNames(gotOne), itemNames(gotTwo))
	}

	seen := map[primitive.ObjectID]bool{}
	for _, item := range gotOne.Items {
		if seen[item.ID] {
			t.Fatalf("duplicate item id %s", item.ID.Hex())
		}
		seen[item.ID] = true
	}
}

func TestToggleBoughtTwiceRestores(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	list, _ := svc.CreateList(ctx, "", names("milk"))
	listID, itemID := list.ID.Hex(), list.Items[0].ID.Hex()

	once, err := svc.ToggleBought(ctx, listID, itemID)
	if err != nil {
		t.Fatal(err)
	}
	if !once.Items[0].Bought {
		t.Error("expected bought after one toggle")
	}

	twice, err := svc.ToggleBought(ctx, listID, itemID)
	if err != nil {
		t.Fatal(err)
	}
	if twice.Items[0].Bought != list.Items[0].Bought {
		t.Error("two toggles must restore the original flag")
	}
}

func TestUpdateItemPreservesBought(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	list, _ := svc.CreateList(ctx, "", names("milk"))
	listID, itemID := list.ID.Hex(), list.Items[0].ID.Hex()

	if _, err := svc.ToggleBought(ctx, listID, itemID); err != nil {
		t.Fatal(err)
	}

	name := "oat milk"
	notBought := false
	updated, err := svc.UpdateItem(ctx, listID, itemID, model.ItemObject(model.ItemFields{Item: &name, Bought: &notBought}))
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	item := updated.Items[0]
	if item.Item != "oat milk" {
		t.Errorf("expected merged name, got %q", item.Item)
	}
	if !item.Bought {
		t.Error("update must not change bought")
	}
	if item.ID != list.Items[0].ID {
		t.Error("update must not change the item id")
	}
}

func TestDeleteItem(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	list, _ := svc.CreateList(ctx, "", names("milk", "eggs", "bread"))

	t.Run("unknown item leaves the list unchanged", func(t *testing.T) {
		_, err := svc.DeleteItem(ctx, list.ID.Hex(), primitive.NewObjectID().Hex())
		if errs.KindOf(err) != errs.KindItemNotFound {
			t.Fatalf("expected item not found, got %v", err)
		}
		got, _ := svc.GetList(ctx, list.ID.Hex())
		if len(got.Items) != 3 {
			t.Errorf("items changed: %v", itemNames(got))
		}
	})

	t.Run("removes only the item", func(t *testing.T) {
		got, err := svc.DeleteItem(ctx, list.ID.Hex(), list.Items[1].ID.Hex())
		if err != nil {
			t.Fatal(err)
		}
		if want := []string{"milk", "bread"}; !equalStrings(itemNames(got), want) {
			t.Errorf("expected %v, got %v", want, itemNames(got))
		}
	})
}

func TestNotFoundKinds(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)
	list, _ := svc.CreateList(ctx, "", names("milk"))

	tests := []struct {
		name   string
		listID string
		itemID string
		want   errs.Kind
	}{
		{"unknown list", primitive.NewObjectID().Hex(), list.Items[0].ID.Hex(), errs.KindListNotFound},
		{"malformed list id", "not-an-id", list.Items[0].ID.Hex(), errs.KindListNotFound},
		{"unknown item", list.ID.Hex(), primitive.NewObjectID().Hex(), errs.KindItemNotFound},
		{"malformed item id", list.ID.Hex(), "42", errs.KindItemNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.ToggleBought(ctx, tt.listID, tt.itemID)
			if got := errs.KindOf(err); got != tt.want {
				t.Errorf("expected %s, got %s (%v)", tt.want, got, err)
			}
		})
	}
}

func TestStoreFailures(t *testing.T) {
	ctx := context.Background()
	cause := errors.New("connection reset")
	svc := NewShoppingListService(failingStore{err: cause})

	_, err := svc.CreateList(ctx, "", nil)
	if errs.KindOf(err) != errs.KindStore {
		t.Fatalf("expected store kind, got %v", err)
	}
	if !errors.Is(err, cause) {
		t.Error("cause must be kept for logging")
	}

	if _, err := svc.ListLists(ctx); errs.KindOf(err) != errs.KindStore {
		t.Errorf("list: expected store kind, got %v", err)
	}
	if _, err := svc.GetList(ctx, primitive.NewObjectID().Hex()); errs.KindOf(err) != errs.KindStore {
		t.Errorf("get: expected store kind, got %v", err)
	}
}

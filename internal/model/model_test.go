package model

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/deppfellow/shopping-list/internal/validation"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func decodeCreate(t *testing.T, body string) *CreateListRequest {
	t.Helper()
	req := &CreateListRequest{}
	if err := json.Unmarshal([]byte(body), req); err != nil {
		t.Fatalf("unmarshal %s: %v", body, err)
	}
	return req
}

func problemFields(t *testing.T, err error) []string {
	t.Helper()
	var problems validation.CustomValidationErrors
	if err == nil {
		return nil
	}
	var ok bool
	if problems, ok = err.(validation.CustomValidationErrors); !ok {
		t.Fatalf("expected CustomValidationErrors, got %T: %v", err, err)
	}
	fields := make([]string, 0, len(problems))
	for _, p := range problems {
		fields = append(fields, p.Field)
	}
	return fields
}

func TestCreateListRequest(t *testing.T) {
	t.Run("mixed item forms", func(t *testing.T) {
		req := decodeCreate(t, `{"name":"weekly","items":["milk",{"item":"eggs","cost":2.5,"amount":12}]}`)
		if err := req.Validate(); err != nil {
			t.Fatalf("unexpected validation error: %v", err)
		}

		items := ToItems(req.Items)
		if len(items) != 2 {
			t.Fatalf("expected 2 items, got %d", len(items))
		}
		if items[0].Item != "milk" || items[0].Bought {
			t.Errorf("bare string not normalised: %+v", items[0])
		}
		if items[1].Item != "eggs" || items[1].Cost == nil || !items[1].Cost.Equal(decimal.RequireFromString("2.5")) {
			t.Errorf("object item not normalised: %+v", items[1])
		}
		if items[0].ID == items[1].ID || items[0].ID.IsZero() {
			t.Errorf("items need distinct ids, got %s and %s", items[0].ID.Hex(), items[1].ID.Hex())
		}
		if req.ListName() != "weekly" {
			t.Errorf("expected name weekly, got %q", req.ListName())
		}
	})

	t.Run("empty items array is accepted", func(t *testing.T) {
		req := decodeCreate(t, `{"items":[]}`)
		if err := req.Validate(); err != nil {
			t.Fatalf("unexpected validation error: %v", err)
		}
	})

	tests := []struct {
		name   string
		body   string
		fields []string
	}{
		{"items missing", `{"name":"x"}`, []string{"items"}},
		{"items null", `{"items":null}`, []string{"items"}},
		{"client id", `{"_id":"abc","items":[]}`, []string{"_id"}},
		{"date and extra key", `{"date":"2024-01-01","owner":"me","items":[]}`, []string{"date", "owner"}},
		{"blank item", `{"items":["  "]}`, []string{"items[0]"}},
		{"object without name", `{"items":[{"bought":true}]}`, []string{"items[0].item"}},
		{"item with id", `{"items":[{"item":"milk","_id":"x"}]}`, []string{"items[0]._id"}},
		{"negative cost", `{"items":[{"item":"milk","cost":-1}]}`, []string{"items[0].cost"}},
		{"items wrong type", `{"items":"milk"}`, []string{"items"}},
		{"numeric entry", `{"items":["milk",3]}`, []string{"items"}},
		{"name wrong type", `{"name":3,"items":[]}`, []string{"name"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := decodeCreate(t, tt.body).Validate()
			got := problemFields(t, err)
			if strings.Join(got, ",") != strings.Join(tt.fields, ",") {
				t.Errorf("expected problems on %v, got %v", tt.fields, got)
			}
		})
	}
}

func TestItemInputRejectsOtherJSON(t *testing.T) {
	var in ItemInput
	if err := json.Unmarshal([]byte(`42`), &in); err == nil {
		t.Fatal("expected an error for a numeric item")
	}
}

func TestAddItemsRequest(t *testing.T) {
	t.Run("requires at least one item", func(t *testing.T) {
		req := &AddItemsRequest{ListID: primitive.NewObjectID().Hex(), Items: []ItemInput{}}
		got := problemFields(t, req.Validate())
		if strings.Join(got, ",") != "items" {
			t.Errorf("expected items problem, got %v", got)
		}
	})

	t.Run("reports list id and bad item together", func(t *testing.T) {
		req := &AddItemsRequest{Items: []ItemInput{ItemName("")}}
		got := problemFields(t, req.Validate())
		if strings.Join(got, ",") != "listID,items[0]" {
			t.Errorf("expected listID and items[0] problems, got %v", got)
		}
	})
}

func TestMergeIntoKeepsBought(t *testing.T) {
	name := "oat milk"
	bought := false
	amount := 2.0

	item := Item{ID: primitive.NewObjectID(), Item: "milk", Bought: true}
	ItemObject(ItemFields{Item: &name, Bought: &bought, Amount: &amount}).MergeInto(&item)

	if item.Item != "oat milk" {
		t.Errorf("expected name to be merged, got %q", item.Item)
	}
	if !item.Bought {
		t.Error("bought must not change on merge")
	}
	if item.Amount == nil || *item.Amount != 2 {
		t.Errorf("expected amount 2, got %v", item.Amount)
	}
}

func TestShoppingListItems(t *testing.T) {
	list := NewShoppingList(" weekly ", ToItems([]ItemInput{ItemName("milk"), ItemName("eggs"), ItemName("bread")}))
	if list.Name != "weekly" {
		t.Errorf("expected trimmed name, got %q", list.Name)
	}

	eggs := list.Items[1].ID
	i, ok := list.FindItem(eggs)
	if !ok || i != 1 {
		t.Fatalf("expected eggs at index 1, got %d %v", i, ok)
	}

	clone := list.Clone()
	clone.RemoveItem(i)

	if len(list.Items) != 3 {
		t.Errorf("clone mutation leaked into original: %d items", len(list.Items))
	}
	if clone.Items[0].Item != "milk" || clone.Items[1].Item != "bread" {
		t.Errorf("order not kept after removal: %+v", clone.Items)
	}
	if _, ok := clone.FindItem(eggs); ok {
		t.Error("removed item still found")
	}
}

func TestCostIsJSONNumber(t *testing.T) {
	cost := decimal.RequireFromString("1.25")
	out, err := json.Marshal(Item{Item: "milk", Cost: &cost})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(out), `"cost":1.25`) {
		t.Errorf("expected numeric cost, got %s", out)
	}
}

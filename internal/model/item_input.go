package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/deppfellow/shopping-list/internal/validation"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type itemInputKind uint8

const (
	itemInputMissing itemInputKind = iota
	itemInputName
	itemInputFields
)

// ItemFields is the object form of an item in a request body.
// Pointers tell "absent" apart from zero values.
type ItemFields struct {
	Item   *string          `json:"item"`
	Bought *bool            `json:"bought"`
	Cost   *decimal.Decimal `json:"cost"`
	Amount *float64         `json:"amount"`
}

var itemFieldKeys = map[string]bool{
	"item":   true,
	"bought": true,
	"cost":   true,
	"amount": true,
}

// ItemInput is an item as clients send it: either a bare name
//
//	"milk"
//
// or an object
//
//	{"item": "milk", "bought": false, "cost": 1.25, "amount": 2}
//
// It is resolved into an Item by ToItem (new items) or MergeInto (updates).
type ItemInput struct {
	kind    itemInputKind
	name    string
	fields  ItemFields
	unknown []string
}

// ItemName builds the bare-name form.
func ItemName(name string) ItemInput {
	return ItemInput{kind: itemInputName, name: name}
}

// ItemObject builds the object form.
func ItemObject(fields ItemFields) ItemInput {
	return ItemInput{kind: itemInputFields, fields: fields}
}

func (in *ItemInput) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*in = ItemInput{}

	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		return nil

	case data[0] == '"':
		in.kind = itemInputName
		return json.Unmarshal(data, &in.name)

	case data[0] == '{':
		var raw map[string]json.RawMessage
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		for key := range raw {
			if !itemFieldKeys[key] {
				in.unknown = append(in.unknown, key)
			}
		}
		sort.Strings(in.unknown)

		in.kind = itemInputFields
		return json.Unmarshal(data, &in.fields)

	default:
		return fmt.Errorf("item must be a string or an object, got %s", data)
	}
}

// MarshalJSON writes the input back in the form it was received. Used by
// tests and request logging.
func (in ItemInput) MarshalJSON() ([]byte, error) {
	switch in.kind {
	case itemInputName:
		return json.Marshal(in.name)
	case itemInputFields:
		return json.Marshal(in.fields)
	default:
		return []byte("null"), nil
	}
}

// check reports problems of an item used to create a new line: a name is
// mandatory.
func (in ItemInput) check(field string, problems *validation.CustomValidationErrors) {
	switch in.kind {
	case itemInputMissing:
		problems.Add(field, "is required")

	case itemInputName:
		if strings.TrimSpace(in.name) == "" {
			problems.Add(field, "must not be empty")
		}

	case itemInputFields:
		if in.fields.Item == nil {
			problems.Add(field+".item", "is required")
		} else if strings.TrimSpace(*in.fields.Item) == "" {
			problems.Add(field+".item", "must not be empty")
		}
		in.checkFields(field, problems)
	}
}

// checkPatch reports problems of an item used as an update: every field is
// optional but a name, when present, must not be blank.
func (in ItemInput) checkPatch(field string, problems *validation.CustomValidationErrors) {
	switch in.kind {
	case itemInputMissing:
		problems.Add(field, "is required")

	case itemInputName:
		if strings.TrimSpace(in.name) == "" {
			problems.Add(field, "must not be empty")
		}

	case itemInputFields:
		if in.fields.Item != nil && strings.TrimSpace(*in.fields.Item) == "" {
			problems.Add(field+".item", "must not be empty")
		}
		in.checkFields(field, problems)
	}
}

func (in ItemInput) checkFields(field string, problems *validation.CustomValidationErrors) {
	for _, key := range in.unknown {
		if key == "id" || key == "_id" {
			problems.Add(field+"."+key, "must not be supplied")
			continue
		}
		problems.Add(field+"."+key, "is not allowed")
	}
	if in.fields.Cost != nil && in.fields.Cost.IsNegative() {
		problems.Add(field+".cost", "must not be negative")
	}
	if in.fields.Amount != nil && *in.fields.Amount < 0 {
		problems.Add(field+".amount", "must not be negative")
	}
}

// ToItem resolves the input into a new item with a fresh id. bought
// defaults to false.
func (in ItemInput) ToItem() Item {
	item := Item{ID: primitive.NewObjectID()}

	switch in.kind {
	case itemInputName:
		item.Item = strings.TrimSpace(in.name)

	case itemInputFields:
		if in.fields.Item != nil {
			item.Item = strings.TrimSpace(*in.fields.Item)
		}
		if in.fields.Bought != nil {
			item.Bought = *in.fields.Bought
		}
		item.Cost = in.fields.Cost
		item.Amount = in.fields.Amount
	}

	return item
}

// MergeInto applies the fields present in the input onto item. The id and
// the bought flag are never changed here; bought only moves through
// Item.ToggleBought.
func (in ItemInput) MergeInto(item *Item) {
	switch in.kind {
	case itemInputName:
		item.Item = strings.TrimSpace(in.name)

	case itemInputFields:
		if in.fields.Item != nil {
			item.Item = strings.TrimSpace(*in.fields.Item)
		}
		if in.fields.Cost != nil {
			item.Cost = in.fields.Cost
		}
		if in.fields.Amount != nil {
			item.Amount = in.fields.Amount
		}
	}
}

// ToItems resolves a batch of inputs, keeping their order.
func ToItems(inputs []ItemInput) []Item {
	items := make([]Item, 0, len(inputs))
	for _, in := range inputs {
		items = append(items, in.ToItem())
	}
	return items
}

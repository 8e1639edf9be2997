package model

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/deppfellow/shopping-list/internal/validation"
)

// ---------------------------------------------------------------------------
// Create list
// ---------------------------------------------------------------------------

// CreateListRequest is the body of POST /create/list.
//
// Only "name" and "items" are accepted. Unknown keys are collected while
// decoding and reported by Validate, so a client-supplied id or date is a
// validation error instead of being silently dropped.
type CreateListRequest struct {
	Name  *string     `json:"name"`
	Items []ItemInput `json:"items"`

	itemsPresent bool
	problems     validation.CustomValidationErrors
}

func (r *CreateListRequest) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	keys := make([]string, 0, len(raw))
	for key := range raw {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		value := raw[key]

		switch key {
		case "name":
			if string(value) == "null" {
				continue
			}
			var name string
			if err := json.Unmarshal(value, &name); err != nil {
				r.problems.Add("name", "must be a string")
				continue
			}
			r.Name = &name

		case "items":
			if string(value) == "null" {
				continue
			}
			if err := json.Unmarshal(value, &r.Items); err != nil {
				r.Items = nil
				r.problems.Add("items", "must be an array of item names or item objects")
				continue
			}
			r.itemsPresent = true

		case "_id", "id":
			r.problems.Add(key, "must not be supplied")

		default:
			r.problems.Add(key, "is not allowed")
		}
	}

	return nil
}

func (r *CreateListRequest) Validate() error {
	problems := append(validation.CustomValidationErrors{}, r.problems...)

	if !r.itemsPresent && !hasProblem(problems, "items") {
		problems.Add("items", "is required")
	}
	for i, item := range r.Items {
		item.check(fmt.Sprintf("items[%d]", i), &problems)
	}

	return validation.Merge(validation.Struct(r), problems)
}

// ListName returns the requested name, or "" when none was sent.
func (r *CreateListRequest) ListName() string {
	if r.Name == nil {
		return ""
	}
	return *r.Name
}

// ---------------------------------------------------------------------------
// Add items
// ---------------------------------------------------------------------------

// AddItemsRequest is PUT /update/list/:listID/addItem.
type AddItemsRequest struct {
	ListID string      `param:"listID" json:"-" validate:"required"`
	Items  []ItemInput `json:"items" validate:"required,min=1"`
}

func (r *AddItemsRequest) Validate() error {
	var problems validation.CustomValidationErrors
	for i, item := range r.Items {
		item.check(fmt.Sprintf("items[%d]", i), &problems)
	}
	return validation.Merge(validation.Struct(r), problems)
}

// ---------------------------------------------------------------------------
// Update item
// ---------------------------------------------------------------------------

// UpdateItemRequest is PATCH /update/list/:listID/updateItem/:itemID.
// Item carries the fields to merge onto the stored item.
type UpdateItemRequest struct {
	ListID string    `param:"listID" json:"-" validate:"required"`
	ItemID string    `param:"itemID" json:"-" validate:"required"`
	Item   ItemInput `json:"item"`
}

func (r *UpdateItemRequest) Validate() error {
	var problems validation.CustomValidationErrors
	r.Item.checkPatch("item", &problems)
	return validation.Merge(validation.Struct(r), problems)
}

// ---------------------------------------------------------------------------
// Path-only requests
// ---------------------------------------------------------------------------

// ItemPathRequest addresses one item of one list. Used by toggleBought and
// deleteItem.
type ItemPathRequest struct {
	ListID string `param:"listID" json:"-" validate:"required"`
	ItemID string `param:"itemID" json:"-" validate:"required"`
}

func (r *ItemPathRequest) Validate() error {
	return validation.Merge(validation.Struct(r))
}

// ListPathRequest addresses one list.
type ListPathRequest struct {
	ListID string `param:"listID" json:"-" validate:"required"`
}

func (r *ListPathRequest) Validate() error {
	return validation.Merge(validation.Struct(r))
}

// EmptyRequest is used by routes without input.
type EmptyRequest struct{}

func (r *EmptyRequest) Validate() error {
	return nil
}

func hasProblem(problems validation.CustomValidationErrors, field string) bool {
	for _, p := range problems {
		if p.Field == field {
			return true
		}
	}
	return false
}

// ---------------------------------------------------------------------------
// Responses
// ---------------------------------------------------------------------------

// ListResponse wraps a single list.
type ListResponse struct {
	List *ShoppingList `json:"list"`
}

// ListsResponse is the body of GET /get/lists.
type ListsResponse struct {
	Lists []ListSummary `json:"lists"`
	Count int           `json:"count"`
}

// MessageResponse confirms a deletion and returns the list as saved.
type MessageResponse struct {
	Message string        `json:"message"`
	List    *ShoppingList `json:"list"`
}

// ItemCount reports the number of items, for tracing attributes.
func (r *ListResponse) ItemCount() int {
	if r == nil || r.List == nil {
		return 0
	}
	return len(r.List.Items)
}

func (r *MessageResponse) ItemCount() int {
	if r == nil || r.List == nil {
		return 0
	}
	return len(r.List.Items)
}

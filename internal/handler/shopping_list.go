package handler

import (
	"fmt"

	"github.com/deppfellow/shopping-list/internal/model"
	"github.com/deppfellow/shopping-list/internal/server"
	"github.com/deppfellow/shopping-list/internal/service"
	"github.com/labstack/echo/v4"
)

// ShoppingListHandler serves the list and item endpoints. Each method
// receives an already validated request.
type ShoppingListHandler struct {
	Handler
	lists *service.ShoppingListService
}

func NewShoppingListHandler(s *server.Server, lists *service.ShoppingListService) *ShoppingListHandler {
	return &ShoppingListHandler{
		Handler: NewHandler(s),
		lists:   lists,
	}
}

func (h *ShoppingListHandler) CreateList(c echo.Context, req *model.CreateListRequest) (*model.ListResponse, error) {
	list, err := h.lists.CreateList(c.Request().Context(), req.ListName(), req.Items)
	if err != nil {
		return nil, err
	}
	return &model.ListResponse{List: list}, nil
}

func (h *ShoppingListHandler) GetLists(c echo.Context, _ *model.EmptyRequest) (*model.ListsResponse, error) {
	lists, err := h.lists.ListLists(c.Request().Context())
	if err != nil {
		return nil, err
	}
	return &model.ListsResponse{Lists: lists, Count: len(lists)}, nil
}

func (h *ShoppingListHandler) GetList(c echo.Context, req *model.ListPathRequest) (*model.ListResponse, error) {
	list, err := h.lists.GetList(c.Request().Context(), req.ListID)
	if err != nil {
		return nil, err
	}
	return &model.ListResponse{List: list}, nil
}

func (h *ShoppingListHandler) AddItems(c echo.Context, req *model.AddItemsRequest) (*model.ListResponse, error) {
	list, err := h.lists.AddItems(c.Request().Context(), req.ListID, req.Items)
	if err != nil {
		return nil, err
	}
	return &model.ListResponse{List: list}, nil
}

func (h *ShoppingListHandler) UpdateItem(c echo.Context, req *model.UpdateItemRequest) (*model.ListResponse, error) {
	list, err := h.lists.UpdateItem(c.Request().Context(), req.ListID, req.ItemID, req.Item)
	if err != nil {
		return nil, err
	}
	return &model.ListResponse{List: list}, nil
}

func (h *ShoppingListHandler) ToggleBought(c echo.Context, req *model.ItemPathRequest) (*model.ListResponse, error) {
	list, err := h.lists.ToggleBought(c.Request().Context(), req.ListID, req.ItemID)
	if err != nil {
		return nil, err
	}
	return &model.ListResponse{List: list}, nil
}

func (h *ShoppingListHandler) DeleteItem(c echo.Context, req *model.ItemPathRequest) (*model.MessageResponse, error) {
	list, err := h.lists.DeleteItem(c.Request().Context(), req.ListID, req.ItemID)
	if err != nil {
		return nil, err
	}
	return &model.MessageResponse{
		Message: fmt.Sprintf("Item deleted, ID: %s", req.ItemID),
		List:    list,
	}, nil
}

func (h *ShoppingListHandler) HideList(c echo.Context, req *model.ListPathRequest) (*model.MessageResponse, error) {
	list, err := h.lists.HideList(c.Request().Context(), req.ListID)
	if err != nil {
		return nil, err
	}
	return &model.MessageResponse{
		Message: fmt.Sprintf("List deleted, ID: %s", req.ListID),
		List:    list,
	}, nil
}

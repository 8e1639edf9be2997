package handler

import (
	"github.com/deppfellow/shopping-list/internal/server"
	"github.com/deppfellow/shopping-list/internal/service"
)

// Handlers groups every HTTP handler for the router.
type Handlers struct {
	ShoppingLists *ShoppingListHandler
	Health        *HealthHandler
	OpenAPI       *OpenAPIHandler
}

func NewHandlers(s *server.Server, services *service.Services) *Handlers {
	return &Handlers{
		ShoppingLists: NewShoppingListHandler(s, services.ShoppingLists),
		Health:        NewHealthHandler(s),
		OpenAPI:       NewOpenAPIHandler(s),
	}
}

package service

import (
	"github.com/deppfellow/shopping-list/internal/repository"
	"github.com/deppfellow/shopping-list/internal/server"
)

type Services struct {
	ShoppingLists *ShoppingListService
}

func NewServices(s *server.Server, repos *repository.Repositories) *Services {
	return &Services{
		ShoppingLists: NewShoppingListService(repos.ShoppingLists),
	}
}

package repository

import (
	"context"
	"fmt"

	"github.com/deppfellow/shopping-list/internal/config"
	"github.com/deppfellow/shopping-list/internal/server"
)

// Repositories groups the stores handed to the service layer.
type Repositories struct {
	ShoppingLists ShoppingListStore
}

// NewRepositories picks the list store matching the configured driver,
// using the connection opened by server.New, and wraps it with metrics.
func NewRepositories(ctx context.Context, s *server.Server) (*Repositories, error) {
	var store ShoppingListStore

	switch s.Config.Database.Driver {
	case config.DriverMongo:
		mongoStore, err := NewMongoShoppingListRepository(ctx, s.Mongo.Collection)
		if err != nil {
			return nil, err
		}
		store = mongoStore

	case config.DriverPostgres:
		store = NewPostgresShoppingListRepository(s.DB.Pool)

	case config.DriverMemory:
		s.Logger.Warn().Msg("using in-memory store, lists are lost on restart")
		store = NewMemoryShoppingListRepository()

	default:
		return nil, fmt.Errorf("unsupported database driver %q", s.Config.Database.Driver)
	}

	return &Repositories{
		ShoppingLists: NewInstrumentedStore(store, s.Config.Observability.Logging.SlowOperationThreshold),
	}, nil
}

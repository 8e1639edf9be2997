package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/deppfellow/shopping-list/internal/model"
	"github.com/deppfellow/shopping-list/internal/sqlerr"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PostgresShoppingListRepository stores lists in the shopping_lists table.
// Items are kept in a JSONB array column and always rewritten with the list.
// Ids are ObjectID hex strings so both backends hand out the same ids.
type PostgresShoppingListRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresShoppingListRepository(pool *pgxpool.Pool) *PostgresShoppingListRepository {
	return &PostgresShoppingListRepository{pool: pool}
}

func (r *PostgresShoppingListRepository) Create(ctx context.Context, list *model.ShoppingList) error {
	now := time.Now().UTC().Truncate(time.Microsecond)
	list.ID = primitive.NewObjectID()
	list.CreatedAt = now
	list.UpdatedAt = now
	list.EnsureItems()

	items, err := json.Marshal(list.Items)
	if err != nil {
		return fmt.Errorf("encoding items: %w", err)
	}

	stmt := `
		INSERT INTO shopping_lists (id, name, hidden, items, created_at, updated_at)
		VALUES (@id, @name, @hidden, @items, @created_at, @updated_at)
	`
	_, err = r.pool.Exec(ctx, stmt, pgx.NamedArgs{
		"id":         list.ID.Hex(),
		"name":       list.Name,
		"hidden":     list.Hidden,
		"items":      items,
		"created_at": list.CreatedAt,
		"updated_at": list.UpdatedAt,
	})
	if err != nil {
		return sqlerr.HandleError(err)
	}
	return nil
}

func (r *PostgresShoppingListRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*model.ShoppingList, error) {
	stmt := `
		SELECT id, name, hidden, items, created_at, updated_at
		FROM shopping_lists
		WHERE id = @id
	`

	var (
		rawID string
		items []byte
		list  model.ShoppingList
	)
	err := r.pool.QueryRow(ctx, stmt, pgx.NamedArgs{"id": id.Hex()}).
		Scan(&rawID, &list.Name, &list.Hidden, &items, &list.CreatedAt, &list.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, sqlerr.HandleError(err)
	}

	if list.ID, err = primitive.ObjectIDFromHex(rawID); err != nil {
		return nil, fmt.Errorf("stored list id %q: %w", rawID, err)
	}
	if err := json.Unmarshal(items, &list.Items); err != nil {
		return nil, fmt.Errorf("decoding items of list %s: %w", rawID, err)
	}

	list.EnsureItems()
	return &list, nil
}

func (r *PostgresShoppingListRepository) FindVisible(ctx context.Context) ([]model.ListSummary, error) {
	stmt := `
		SELECT id, name, items, created_at
		FROM shopping_lists
		WHERE hidden = FALSE
		ORDER BY created_at, id
	`

	rows, err := r.pool.Query(ctx, stmt)
	if err != nil {
		return nil, sqlerr.HandleError(err)
	}
	defer rows.Close()

	summaries := []model.ListSummary{}
	for rows.Next() {
		var (
			rawID   string
			items   []byte
			summary model.ListSummary
		)
		if err := rows.Scan(&rawID, &summary.Name, &items, &summary.CreatedAt); err != nil {
			return nil, sqlerr.HandleError(err)
		}
		if summary.ID, err = primitive.ObjectIDFromHex(rawID); err != nil {
			return nil, fmt.Errorf("stored list id %q: %w", rawID, err)
		}
		if err := json.Unmarshal(items, &summary.Items); err != nil {
			return nil, fmt.Errorf("decoding items of list %s: %w", rawID, err)
		}
		if summary.Items == nil {
			summary.Items = []model.Item{}
		}
		summaries = append(summaries, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, sqlerr.HandleError(err)
	}

	return summaries, nil
}

func (r *PostgresShoppingListRepository) Save(ctx context.Context, list *model.ShoppingList) error {
	list.UpdatedAt = time.Now().UTC().Truncate(time.Microsecond)
	list.EnsureItems()

	items, err := json.Marshal(list.Items)
	if err != nil {
		return fmt.Errorf("encoding items: %w", err)
	}

	stmt := `
		UPDATE shopping_lists
		SET name = @name, hidden = @hidden, items = @items, updated_at = @updated_at
		WHERE id = @id
	`
	tag, err := r.pool.Exec(ctx, stmt, pgx.NamedArgs{
		"id":         list.ID.Hex(),
		"name":       list.Name,
		"hidden":     list.Hidden,
		"items":      items,
		"updated_at": list.UpdatedAt,
	})
	if err != nil {
		return sqlerr.HandleError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresShoppingListRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

package repository

import (
	"context"
	"errors"
	"time"

	"github.com/deppfellow/shopping-list/internal/errs"
	"github.com/deppfellow/shopping-list/internal/model"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoShoppingListRepository stores each list as one document of a
// MongoDB collection, with its items as an embedded array.
type MongoShoppingListRepository struct {
	lists *mongo.Collection
}

// listSummaryProjection limits list-all reads to the fields it returns.
var listSummaryProjection = bson.D{
	{Key: "_id", Value: 1},
	{Key: "name", Value: 1},
	{Key: "createdAt", Value: 1},
	{Key: "items", Value: 1},
}

// NewMongoShoppingListRepository wraps the collection and makes sure the
// index used by list-all exists.
func NewMongoShoppingListRepository(ctx context.Context, collection *mongo.Collection) (*MongoShoppingListRepository, error) {
	_, err := collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "hidden", Value: 1}},
		Options: options.Index().SetName("hidden_1"),
	})
	if err != nil {
		return nil, mongoError("creating shopping list index", err)
	}

	return &MongoShoppingListRepository{lists: collection}, nil
}

func (r *MongoShoppingListRepository) Create(ctx context.Context, list *model.ShoppingList) error {
	now := time.Now().UTC().Truncate(time.Millisecond)
	list.ID = primitive.NewObjectID()
	list.CreatedAt = now
	list.UpdatedAt = now
	list.EnsureItems()

	if _, err := r.lists.InsertOne(ctx, list); err != nil {
		return mongoError("inserting shopping list", err)
	}
	return nil
}

func (r *MongoShoppingListRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*model.ShoppingList, error) {
	var list model.ShoppingList

	err := r.lists.FindOne(ctx, bson.M{"_id": id}).Decode(&list)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, mongoError("loading shopping list", err)
	}

	list.EnsureItems()
	return &list, nil
}

func (r *MongoShoppingListRepository) FindVisible(ctx context.Context) ([]model.ListSummary, error) {
	// $ne also matches documents written before the hidden field existed.
	cursor, err := r.lists.Find(ctx,
		bson.M{"hidden": bson.M{"$ne": true}},
		options.Find().SetProjection(listSummaryProjection),
	)
	if err != nil {
		return nil, mongoError("listing shopping lists", err)
	}

	summaries := []model.ListSummary{}
	if err := cursor.All(ctx, &summaries); err != nil {
		return nil, mongoError("decoding shopping lists", err)
	}

	for i := range summaries {
		if summaries[i].Items == nil {
			summaries[i].Items = []model.Item{}
		}
	}
	return summaries, nil
}

func (r *MongoShoppingListRepository) Save(ctx context.Context, list *model.ShoppingList) error {
	list.UpdatedAt = time.Now().UTC().Truncate(time.Millisecond)
	list.EnsureItems()

	res, err := r.lists.ReplaceOne(ctx, bson.M{"_id": list.ID}, list)
	if err != nil {
		return mongoError("saving shopping list", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoShoppingListRepository) Ping(ctx context.Context) error {
	return r.lists.Database().Client().Ping(ctx, nil)
}

func mongoError(op string, err error) error {
	switch {
	case mongo.IsDuplicateKeyError(err):
		return errs.Store(op+": duplicate shopping list id", err)
	case mongo.IsTimeout(err), errors.Is(err, context.DeadlineExceeded):
		return errs.Store(op+": timed out", err)
	case mongo.IsNetworkError(err):
		return errs.Store(op+": document store unreachable", err)
	default:
		return errs.Store(op, err)
	}
}

package database

import (
	"context"
	"fmt"

	"github.com/deppfellow/shopping-list/internal/config"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Mongo is the MongoDB client and the collection holding the lists.
type Mongo struct {
	Client     *mongo.Client
	Collection *mongo.Collection
	log        *zerolog.Logger
}

// NewMongo connects to MongoDB and pings the primary.
func NewMongo(cfg *config.Config, logger *zerolog.Logger) (*Mongo, error) {
	mc := cfg.Database.Mongo

	ctx, cancel := context.WithTimeout(context.Background(), mc.ConnectTimeout)
	defer cancel()

	opts := options.Client().
		ApplyURI(mc.URI).
		SetRegistry(Registry()).
		SetAppName(config.ServiceName).
		SetConnectTimeout(mc.ConnectTimeout)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	logger.Info().
		Str("database", mc.Database).
		Str("collection", mc.Collection).
		Msg("connected to mongo")

	return &Mongo{
		Client:     client,
		Collection: client.Database(mc.Database).Collection(mc.Collection),
		log:        logger,
	}, nil
}

// Ping checks that the primary answers.
func (m *Mongo) Ping(ctx context.Context) error {
	return m.Client.Ping(ctx, readpref.Primary())
}

// Close disconnects the client, waiting for in-flight operations until ctx ends.
func (m *Mongo) Close(ctx context.Context) error {
	m.log.Info().Msg("closing mongo connection")
	return m.Client.Disconnect(ctx)
}

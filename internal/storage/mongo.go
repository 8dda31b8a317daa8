package storage

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/yourname/bloomhealth/internal"
)

// MongoStore upserts each record as a document whose _id is the record id.
type MongoStore struct {
	client   *mongo.Client
	database *mongo.Database
	logger   internal.Logger
}

func NewMongoStore(ctx context.Context, uri, database string, logger internal.Logger) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		logger.Errorf("failed to connect to mongo: %v", err)
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		logger.Errorf("failed to ping mongo: %v", err)
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return &MongoStore{client: client, database: client.Database(database), logger: logger}, nil
}

func (m *MongoStore) Put(ctx context.Context, collection, id string, record map[string]any) error {
	doc := bson.M{"_id": id, "createdAt": time.Now().UTC()}
	for k, v := range record {
		doc[k] = v
	}
	_, err := m.database.Collection(collection).ReplaceOne(ctx,
		bson.D{{Key: "_id", Value: id}},
		doc,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		m.logger.Errorf("failed to upsert document: %v", err)
		return fmt.Errorf("mongo upsert %s/%s: %w", collection, id, err)
	}
	return nil
}

func (m *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return m.client.Disconnect(ctx)
}

var _ DocumentStore = (*MongoStore)(nil)

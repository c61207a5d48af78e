package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore persists diagrams in a MongoDB collection, for server
// deployments where diagrams are shared across instances.
type MongoStore struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// MongoConfig configures the MongoDB connection.
type MongoConfig struct {
	URI        string
	Database   string
	Collection string // defaults to "diagrams"
}

// NewMongoStore connects to MongoDB and verifies connectivity.
func NewMongoStore(ctx context.Context, cfg MongoConfig) (*MongoStore, error) {
	if cfg.Collection == "" {
		cfg.Collection = "diagrams"
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}
	return &MongoStore{
		client:     client,
		collection: client.Database(cfg.Database).Collection(cfg.Collection),
	}, nil
}

// Get retrieves a diagram by ID.
func (s *MongoStore) Get(ctx context.Context, id string) (*Diagram, error) {
	var d Diagram
	err := s.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&d)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("find diagram %s: %w", id, err)
	}
	return &d, nil
}

// Put saves a diagram (upsert).
func (s *MongoStore) Put(ctx context.Context, d *Diagram) error {
	if d == nil || d.ID == "" {
		return ErrInvalidID
	}
	d.UpdatedAt = time.Now().UTC()
	_, err := s.collection.ReplaceOne(ctx,
		bson.M{"_id": d.ID},
		d,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("save diagram %s: %w", d.ID, err)
	}
	return nil
}

// Delete removes a diagram.
func (s *MongoStore) Delete(ctx context.Context, id string) error {
	res, err := s.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete diagram %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// List returns all stored diagram IDs, sorted.
func (s *MongoStore) List(ctx context.Context) ([]string, error) {
	opts := options.Find().
		SetProjection(bson.M{"_id": 1}).
		SetSort(bson.M{"_id": 1})
	cursor, err := s.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list diagrams: %w", err)
	}
	defer cursor.Close(ctx)

	var ids []string
	for cursor.Next(ctx) {
		var doc struct {
			ID string `bson:"_id"`
		}
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode diagram id: %w", err)
		}
		ids = append(ids, doc.ID)
	}
	return ids, cursor.Err()
}

// Close disconnects from MongoDB.
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// Ensure MongoStore implements Store.
var _ Store = (*MongoStore)(nil)

package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/xhad/fileseed/internal/models"
	"github.com/xhad/fileseed/internal/types"
)

type MongoStore struct {
	config   Config
	client   *mongo.Client
	files    *mongo.Collection
	binaries *mongo.Collection
}

var _ types.MetadataStore = (*MongoStore)(nil)

func NewMongoWithConfig(ctx context.Context, config Config) (*MongoStore, error) {
	config.applyDefaults()
	if config.URL == "" {
		config.URL = "mongodb://localhost:27017"
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(config.URL))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, config.Timeout)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	db := client.Database(config.Database)
	return &MongoStore{
		config:   config,
		client:   client,
		files:    db.Collection(config.Collection),
		binaries: db.Collection(config.Bucket + ".files"),
	}, nil
}

func (s *MongoStore) DeleteAll(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	res, err := s.files.DeleteMany(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to clear %s: %w", s.config.Collection, err)
	}
	return res.DeletedCount, nil
}

func (s *MongoStore) Upsert(ctx context.Context, filename, fileType string, at time.Time) (models.UpsertResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	filter := bson.M{"filename": filename}
	update := bson.M{"$set": bson.M{
		"file_type":   fileType,
		"uploaded_at": at,
	}}

	res, err := s.files.UpdateMany(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		return models.UpsertResult{}, fmt.Errorf("failed to upsert %s: %w", filename, err)
	}

	return models.UpsertResult{
		Matched:  res.MatchedCount,
		Modified: res.ModifiedCount,
		Upserted: res.UpsertedCount,
	}, nil
}

func (s *MongoStore) Count(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	n, err := s.files.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", s.config.Collection, err)
	}
	return n, nil
}

func (s *MongoStore) List(ctx context.Context) ([]models.FileRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	cur, err := s.files.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", s.config.Collection, err)
	}

	var records []models.FileRecord
	if err := cur.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", s.config.Collection, err)
	}
	return records, nil
}

func (s *MongoStore) ListBinaries(ctx context.Context) ([]models.BinaryFile, error) {
	ctx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	projection := bson.M{"filename": 1, "length": 1, "uploadDate": 1}
	cur, err := s.binaries.Find(ctx, bson.M{}, options.Find().SetProjection(projection))
	if err != nil {
		return nil, fmt.Errorf("failed to query %s.files: %w", s.config.Bucket, err)
	}

	var files []models.BinaryFile
	if err := cur.All(ctx, &files); err != nil {
		return nil, fmt.Errorf("failed to decode %s.files: %w", s.config.Bucket, err)
	}
	return files, nil
}

func (s *MongoStore) Close(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	if err := s.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("failed to disconnect from mongodb: %w", err)
	}
	return nil
}

package docstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/bistroboss/bistro/pkg/metrics"
)

// MongoStore implements Store on one MongoDB database.
type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
}

// ConnectMongo dials uri, verifies the connection and selects database.
func ConnectMongo(ctx context.Context, uri, database string) (*MongoStore, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri).
		SetConnectTimeout(5*time.Second).
		SetServerSelectionTimeout(5*time.Second))
	if err != nil {
		return nil, fmt.Errorf("docstore: mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("docstore: mongo ping: %w", err)
	}

	return &MongoStore{client: client, db: client.Database(database)}, nil
}

func (s *MongoStore) FindOne(ctx context.Context, coll string, filter Filter) (bson.Raw, error) {
	defer metrics.ObserveStoreOp(coll, "find_one", time.Now())

	raw, err := s.db.Collection(coll).FindOne(ctx, orAll(filter)).Raw()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("docstore: find one in %s: %w", coll, err)
	}
	return raw, nil
}

func (s *MongoStore) FindMany(ctx context.Context, coll string, filter Filter) ([]bson.Raw, error) {
	defer metrics.ObserveStoreOp(coll, "find", time.Now())

	cur, err := s.db.Collection(coll).Find(ctx, orAll(filter))
	if err != nil {
		return nil, fmt.Errorf("docstore: find in %s: %w", coll, err)
	}
	defer cur.Close(ctx)

	out := make([]bson.Raw, 0)
	for cur.Next(ctx) {
		// cur.Current is reused between iterations.
		doc := make(bson.Raw, len(cur.Current))
		copy(doc, cur.Current)
		out = append(out, doc)
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("docstore: iterate %s: %w", coll, err)
	}
	return out, nil
}

func (s *MongoStore) Insert(ctx context.Context, coll string, doc interface{}) (string, error) {
	defer metrics.ObserveStoreOp(coll, "insert", time.Now())

	res, err := s.db.Collection(coll).InsertOne(ctx, doc)
	if mongo.IsDuplicateKeyError(err) {
		return "", ErrDuplicate
	}
	if err != nil {
		return "", fmt.Errorf("docstore: insert into %s: %w", coll, err)
	}
	return IDString(res.InsertedID), nil
}

func (s *MongoStore) UpdateOne(ctx context.Context, coll string, filter Filter, patch Patch, upsert bool) (UpdateResult, error) {
	defer metrics.ObserveStoreOp(coll, "update", time.Now())

	res, err := s.db.Collection(coll).UpdateOne(ctx, orAll(filter),
		bson.M{"$set": patch}, options.Update().SetUpsert(upsert))
	if mongo.IsDuplicateKeyError(err) {
		return UpdateResult{}, ErrDuplicate
	}
	if err != nil {
		return UpdateResult{}, fmt.Errorf("docstore: update %s: %w", coll, err)
	}
	return UpdateResult{
		Matched:    res.MatchedCount,
		Modified:   res.ModifiedCount,
		UpsertedID: IDString(res.UpsertedID),
	}, nil
}

func (s *MongoStore) DeleteOne(ctx context.Context, coll string, filter Filter) (int64, error) {
	defer metrics.ObserveStoreOp(coll, "delete", time.Now())

	res, err := s.db.Collection(coll).DeleteOne(ctx, orAll(filter))
	if err != nil {
		return 0, fmt.Errorf("docstore: delete from %s: %w", coll, err)
	}
	return res.DeletedCount, nil
}

// Count uses collection metadata, so it is fast but may lag recent writes.
func (s *MongoStore) Count(ctx context.Context, coll string) (int64, error) {
	defer metrics.ObserveStoreOp(coll, "count", time.Now())

	n, err := s.db.Collection(coll).EstimatedDocumentCount(ctx)
	if err != nil {
		return 0, fmt.Errorf("docstore: count %s: %w", coll, err)
	}
	return n, nil
}

func (s *MongoStore) EnsureIndexes(ctx context.Context, indexes []Index) error {
	for _, idx := range indexes {
		keys := bson.D{}
		for _, k := range idx.Keys {
			keys = append(keys, bson.E{Key: k, Value: 1})
		}
		model := mongo.IndexModel{Keys: keys}
		if idx.Unique {
			model.Options = options.Index().SetUnique(true)
		}
		if _, err := s.db.Collection(idx.Collection).Indexes().CreateOne(ctx, model); err != nil {
			return fmt.Errorf("docstore: index %s%v: %w", idx.Collection, idx.Keys, err)
		}
	}
	return nil
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func orAll(f Filter) Filter {
	if f == nil {
		return Filter{}
	}
	return f
}

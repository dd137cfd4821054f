// Package docstore is the document access layer shared by every collection.
//
// Callers work with bson filters and get raw documents back; the generic
// helpers decode them into typed models:
//
//	item, err := docstore.One[models.MenuItem](ctx, store, "menu", docstore.ByID(id))
//	if errors.Is(err, docstore.ErrNotFound) { ... }
//
// Only single-document atomicity is assumed from any implementation.
package docstore

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrNotFound  = errors.New("docstore: document not found")
	ErrDuplicate = errors.New("docstore: duplicate key")
)

// Filter selects documents by field equality.
type Filter = bson.M

// Patch lists fields to set on a matched document.
type Patch = bson.M

// UpdateResult reports what UpdateOne did.
type UpdateResult struct {
	Matched    int64
	Modified   int64
	UpsertedID string
}

// Index describes a secondary index on one collection.
type Index struct {
	Collection string
	Keys       []string
	Unique     bool
}

// Store is the storage contract used by repositories.
type Store interface {
	// FindOne returns the first match or ErrNotFound.
	FindOne(ctx context.Context, coll string, filter Filter) (bson.Raw, error)
	// FindMany returns all matches; an empty result is not an error.
	FindMany(ctx context.Context, coll string, filter Filter) ([]bson.Raw, error)
	// Insert stores doc and returns its id as a string. A missing _id is generated.
	Insert(ctx context.Context, coll string, doc interface{}) (string, error)
	// UpdateOne applies patch with $set semantics to the first match.
	UpdateOne(ctx context.Context, coll string, filter Filter, patch Patch, upsert bool) (UpdateResult, error)
	// DeleteOne removes the first match and returns how many were removed.
	DeleteOne(ctx context.Context, coll string, filter Filter) (int64, error)
	// Count is a fast, possibly approximate document count.
	Count(ctx context.Context, coll string) (int64, error)
	EnsureIndexes(ctx context.Context, indexes []Index) error
	Close(ctx context.Context) error
}

// ByID filters on _id. Hex strings are matched as ObjectIDs.
func ByID(id string) Filter {
	return Filter{"_id": IDValue(id)}
}

// IDValue converts a hex string to an ObjectID, leaving anything else as-is.
func IDValue(id string) interface{} {
	if oid, err := primitive.ObjectIDFromHex(id); err == nil {
		return oid
	}
	return id
}

// IDString renders an _id value the way clients see it.
func IDString(v interface{}) string {
	switch id := v.(type) {
	case primitive.ObjectID:
		return id.Hex()
	case string:
		return id
	case nil:
		return ""
	default:
		return fmt.Sprint(id)
	}
}

// One finds and decodes a single document.
func One[T any](ctx context.Context, s Store, coll string, filter Filter) (T, error) {
	var out T
	raw, err := s.FindOne(ctx, coll, filter)
	if err != nil {
		return out, err
	}
	if err := bson.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("docstore: decode %s: %w", coll, err)
	}
	return out, nil
}

// Many finds and decodes all matching documents. The result is never nil.
func Many[T any](ctx context.Context, s Store, coll string, filter Filter) ([]T, error) {
	raws, err := s.FindMany(ctx, coll, filter)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(raws))
	for _, raw := range raws {
		var v T
		if err := bson.Unmarshal(raw, &v); err != nil {
			return nil, fmt.Errorf("docstore: decode %s: %w", coll, err)
		}
		out = append(out, v)
	}
	return out, nil
}

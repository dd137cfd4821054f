package docstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type dish struct {
	ID       primitive.ObjectID `bson:"_id,omitempty"`
	Name     string             `bson:"name"`
	Category string             `bson:"category"`
	Price    float64            `bson:"price"`
}

func TestMemoryInsertAndFind(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	id, err := s.Insert(ctx, "menu", dish{Name: "Soup", Category: "soup", Price: 5.5})
	require.NoError(t, err)
	_, err = s.Insert(ctx, "menu", dish{Name: "Salad", Category: "salad", Price: 7})
	require.NoError(t, err)

	got, err := One[dish](ctx, s, "menu", ByID(id))
	require.NoError(t, err)
	assert.Equal(t, "Soup", got.Name)
	assert.Equal(t, id, got.ID.Hex())

	soups, err := Many[dish](ctx, s, "menu", Filter{"category": "soup"})
	require.NoError(t, err)
	assert.Len(t, soups, 1)

	all, err := Many[dish](ctx, s, "menu", nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	none, err := Many[dish](ctx, s, "menu", Filter{"category": "dessert"})
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)

	_, err = One[dish](ctx, s, "menu", ByID(primitive.NewObjectID().Hex()))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryUpdateAndUpsert(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	id, err := s.Insert(ctx, "users", map[string]interface{}{"email": "a@example.com", "name": "A"})
	require.NoError(t, err)

	res, err := s.UpdateOne(ctx, "users", ByID(id), Patch{"role": "admin"}, false)
	require.NoError(t, err)
	assert.Equal(t, UpdateResult{Matched: 1, Modified: 1}, res)

	res, err = s.UpdateOne(ctx, "users", ByID(id), Patch{"role": "admin"}, false)
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Matched)
	assert.Equal(t, int64(0), res.Modified, "promoting twice is a no-op")

	res, err = s.UpdateOne(ctx, "users", Filter{"email": "b@example.com"}, Patch{"name": "B"}, false)
	require.NoError(t, err)
	assert.Equal(t, UpdateResult{}, res)

	res, err = s.UpdateOne(ctx, "users", Filter{"email": "b@example.com"}, Patch{"name": "B"}, true)
	require.NoError(t, err)
	assert.NotEmpty(t, res.UpsertedID)

	raw, err := s.FindOne(ctx, "users", Filter{"email": "b@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "B", raw.Lookup("name").StringValue())

	n, err := s.Count(ctx, "users")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestMemoryDelete(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	id, err := s.Insert(ctx, "carts", map[string]interface{}{"userEmail": "a@example.com"})
	require.NoError(t, err)

	n, err := s.DeleteOne(ctx, "carts", Filter{"_id": IDValue(id), "userEmail": "b@example.com"})
	require.NoError(t, err)
	assert.Equal(t, int64(0), n, "other owners cannot match")

	n, err = s.DeleteOne(ctx, "carts", Filter{"_id": IDValue(id), "userEmail": "a@example.com"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = s.DeleteOne(ctx, "carts", ByID(id))
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestMemoryUniqueIndex(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	require.NoError(t, s.EnsureIndexes(ctx, []Index{{Collection: "payments", Keys: []string{"transactionId"}, Unique: true}}))

	_, err := s.Insert(ctx, "payments", map[string]interface{}{"transactionId": "pi_1"})
	require.NoError(t, err)
	_, err = s.Insert(ctx, "payments", map[string]interface{}{"transactionId": "pi_1"})
	assert.ErrorIs(t, err, ErrDuplicate)
	_, err = s.Insert(ctx, "payments", map[string]interface{}{"transactionId": "pi_2"})
	assert.NoError(t, err)
}

func TestIDHelpers(t *testing.T) {
	oid := primitive.NewObjectID()
	assert.Equal(t, oid, IDValue(oid.Hex()))
	assert.Equal(t, "legacy-id", IDValue("legacy-id"))
	assert.Equal(t, oid.Hex(), IDString(oid))
	assert.Equal(t, "", IDString(nil))
}

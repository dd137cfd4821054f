package docstore

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryStore keeps documents in process memory. Filters support field
// equality only. Documents go through a bson round trip on every write so
// that decoding behaves exactly like MongoStore.
type MemoryStore struct {
	mu     sync.RWMutex
	colls  map[string][]bson.D
	unique map[string][][]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		colls:  make(map[string][]bson.D),
		unique: make(map[string][][]string),
	}
}

func (s *MemoryStore) FindOne(_ context.Context, coll string, filter Filter) (bson.Raw, error) {
	match, err := compile(filter)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, doc := range s.colls[coll] {
		if match(doc) {
			return bson.Marshal(doc)
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) FindMany(_ context.Context, coll string, filter Filter) ([]bson.Raw, error) {
	match, err := compile(filter)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]bson.Raw, 0)
	for _, doc := range s.colls[coll] {
		if !match(doc) {
			continue
		}
		raw, err := bson.Marshal(doc)
		if err != nil {
			return nil, err
		}
		out = append(out, raw)
	}
	return out, nil
}

func (s *MemoryStore) Insert(_ context.Context, coll string, doc interface{}) (string, error) {
	d, err := toDoc(doc)
	if err != nil {
		return "", fmt.Errorf("docstore: encode %s: %w", coll, err)
	}

	id, ok := get(d, "_id")
	if !ok || isZeroID(id) {
		id = primitive.NewObjectID()
		d = append(bson.D{{Key: "_id", Value: id}}, withoutKey(d, "_id")...)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conflicts(coll, d, -1) {
		return "", ErrDuplicate
	}
	s.colls[coll] = append(s.colls[coll], d)
	return IDString(id), nil
}

func (s *MemoryStore) UpdateOne(_ context.Context, coll string, filter Filter, patch Patch, upsert bool) (UpdateResult, error) {
	match, err := compile(filter)
	if err != nil {
		return UpdateResult{}, err
	}
	fields, err := toDoc(patch)
	if err != nil {
		return UpdateResult{}, fmt.Errorf("docstore: encode patch: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i, doc := range s.colls[coll] {
		if !match(doc) {
			continue
		}
		updated := copyDoc(doc)
		for _, e := range fields {
			updated = set(updated, e.Key, e.Value)
		}
		if s.conflicts(coll, updated, i) {
			return UpdateResult{}, ErrDuplicate
		}
		res := UpdateResult{Matched: 1}
		if !reflect.DeepEqual(doc, updated) {
			res.Modified = 1
		}
		s.colls[coll][i] = updated
		return res, nil
	}

	if !upsert {
		return UpdateResult{}, nil
	}

	seed, err := toDoc(filter)
	if err != nil {
		return UpdateResult{}, err
	}
	for _, e := range fields {
		seed = set(seed, e.Key, e.Value)
	}
	id, ok := get(seed, "_id")
	if !ok {
		id = primitive.NewObjectID()
		seed = append(bson.D{{Key: "_id", Value: id}}, seed...)
	}
	if s.conflicts(coll, seed, -1) {
		return UpdateResult{}, ErrDuplicate
	}
	s.colls[coll] = append(s.colls[coll], seed)
	return UpdateResult{UpsertedID: IDString(id)}, nil
}

func (s *MemoryStore) DeleteOne(_ context.Context, coll string, filter Filter) (int64, error) {
	match, err := compile(filter)
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	docs := s.colls[coll]
	for i, doc := range docs {
		if match(doc) {
			s.colls[coll] = append(docs[:i:i], docs[i+1:]...)
			return 1, nil
		}
	}
	return 0, nil
}

func (s *MemoryStore) Count(_ context.Context, coll string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.colls[coll])), nil
}

// EnsureIndexes records unique indexes so inserts can reject duplicates.
// Non-unique indexes have no effect in memory.
func (s *MemoryStore) EnsureIndexes(_ context.Context, indexes []Index) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, idx := range indexes {
		if idx.Unique && len(idx.Keys) > 0 {
			s.unique[idx.Collection] = append(s.unique[idx.Collection], idx.Keys)
		}
	}
	return nil
}

func (s *MemoryStore) Close(context.Context) error { return nil }

// conflicts reports whether d collides with another document on a unique
// index. skip is the index of the document being replaced, or -1.
func (s *MemoryStore) conflicts(coll string, d bson.D, skip int) bool {
	for _, keys := range s.unique[coll] {
		want := make([]interface{}, len(keys))
		present := false
		for i, k := range keys {
			want[i], _ = get(d, k)
			present = present || want[i] != nil
		}
		if !present {
			continue
		}
		for i, other := range s.colls[coll] {
			if i == skip {
				continue
			}
			same := true
			for j, k := range keys {
				v, _ := get(other, k)
				if !reflect.DeepEqual(v, want[j]) {
					same = false
					break
				}
			}
			if same {
				return true
			}
		}
	}
	return false
}

// compile turns an equality filter into a predicate over stored documents.
func compile(filter Filter) (func(bson.D) bool, error) {
	want := make(map[string]interface{}, len(filter))
	for k, v := range filter {
		n, err := normalize(v)
		if err != nil {
			return nil, fmt.Errorf("docstore: filter %q: %w", k, err)
		}
		want[k] = n
	}
	return func(doc bson.D) bool {
		for k, v := range want {
			got, ok := get(doc, k)
			if !ok || !reflect.DeepEqual(got, v) {
				return false
			}
		}
		return true
	}, nil
}

func normalize(v interface{}) (interface{}, error) {
	d, err := toDoc(bson.D{{Key: "v", Value: v}})
	if err != nil {
		return nil, err
	}
	return d[0].Value, nil
}

func toDoc(v interface{}) (bson.D, error) {
	if v == nil {
		return bson.D{}, nil
	}
	raw, err := bson.Marshal(v)
	if err != nil {
		return nil, err
	}
	var d bson.D
	if err := bson.Unmarshal(raw, &d); err != nil {
		return nil, err
	}
	return d, nil
}

func get(d bson.D, key string) (interface{}, bool) {
	for _, e := range d {
		if e.Key == key {
			return e.Value, true
		}
	}
	return nil, false
}

func set(d bson.D, key string, value interface{}) bson.D {
	for i, e := range d {
		if e.Key == key {
			d[i].Value = value
			return d
		}
	}
	return append(d, bson.E{Key: key, Value: value})
}

func withoutKey(d bson.D, key string) bson.D {
	out := make(bson.D, 0, len(d))
	for _, e := range d {
		if e.Key != key {
			out = append(out, e)
		}
	}
	return out
}

func copyDoc(d bson.D) bson.D {
	return append(bson.D(nil), d...)
}

func isZeroID(v interface{}) bool {
	switch id := v.(type) {
	case nil:
		return true
	case primitive.ObjectID:
		return id.IsZero()
	case string:
		return id == ""
	}
	return false
}

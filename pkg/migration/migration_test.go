package migration

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bistroboss/bistro/pkg/docstore"
)

func TestRunnerAppliesOnce(t *testing.T) {
	ctx := context.Background()
	store := docstore.NewMemoryStore()

	calls := 0
	r := &Runner{store: store, out: &bytes.Buffer{}, steps: []registered{
		{name: "001_first", m: MigrationFunc(func(context.Context, docstore.Store) error { calls++; return nil })},
		{name: "002_unique_tx", m: Indexes(docstore.Index{Collection: "payments", Keys: []string{"transactionId"}, Unique: true})},
	}}

	pending, err := r.Pending(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"001_first", "002_unique_tx"}, pending)

	require.NoError(t, r.Run(ctx))
	require.NoError(t, r.Run(ctx))
	assert.Equal(t, 1, calls)

	pending, err = r.Pending(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)

	_, err = store.Insert(ctx, "payments", map[string]string{"transactionId": "pi_1"})
	require.NoError(t, err)
	_, err = store.Insert(ctx, "payments", map[string]string{"transactionId": "pi_1"})
	assert.ErrorIs(t, err, docstore.ErrDuplicate, "index step took effect")

	var out bytes.Buffer
	r.out = &out
	require.NoError(t, r.Status(ctx))
	assert.Contains(t, out.String(), "[batch 1] 002_unique_tx")
}

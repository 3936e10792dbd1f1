package memory

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "campus/pkg/domain"
	audit "campus/pkg/platform/audit"
)

func TestInMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()
	ana := id.UserID(uuid.New())
	luis := id.UserID(uuid.New())

	for _, e := range []audit.Event{
		{UserID: ana, Action: "first"},
		{UserID: luis, Action: "second"},
		{UserID: ana, Action: "third"},
	} {
		require.NoError(t, store.Append(ctx, e))
	}

	byUser, err := store.ListByUser(ctx, ana)
	require.NoError(t, err)
	require.Len(t, byUser, 2)
	assert.Equal(t, "third", byUser[0].Action)

	recent, err := store.ListRecent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, []string{"third", "second"}, []string{recent[0].Action, recent[1].Action})
}

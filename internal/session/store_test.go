package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vortechdev/enilai-gateway/internal/models"
)

func TestMemoryStoreLifecycle(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	sess := &models.Session{
		ID:        "sess-1",
		Token:     "upstream-token",
		User:      models.User{ID: "7", Name: "Admin", Role: models.RoleAdmin},
		CreatedAt: time.Now(),
	}

	require.NoError(t, store.Save(ctx, sess))
	assert.Equal(t, 1, store.Len())

	found, err := store.Find(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, "upstream-token", found.Token)
	assert.Equal(t, models.RoleAdmin, found.User.Role)

	require.NoError(t, store.Delete(ctx, "sess-1"))
	_, err = store.Find(ctx, "sess-1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreRejectsEmptyID(t *testing.T) {
	store := NewMemoryStore()
	err := store.Save(context.Background(), &models.Session{})
	require.Error(t, err)
}

func TestMemoryStoreReturnsCopy(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, &models.Session{ID: "s", Token: "a"}))

	first, err := store.Find(ctx, "s")
	require.NoError(t, err)
	first.Token = "tampered"

	second, err := store.Find(ctx, "s")
	require.NoError(t, err)
	assert.Equal(t, "a", second.Token)
}

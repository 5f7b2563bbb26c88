package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/dNogueira300/pimpos-smart-tag-system-sub000/internal/domain/identity"
	"github.com/dNogueira300/pimpos-smart-tag-system-sub000/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormUserRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormUserRepository(db)
	ctx := context.Background()

	user, err := identity.NewUser("cajera01", "pan2026seguro", identity.RoleCashier)
	require.NoError(t, err)
	require.NoError(t, user.SetDisplayName("Rosa Quispe"))
	require.NoError(t, repo.Create(ctx, user))

	t.Run("duplicate username", func(t *testing.T) {
		dup, err := identity.NewUser("cajera01", "otraClave99", identity.RoleCashier)
		require.NoError(t, err)
		assert.ErrorIs(t, repo.Create(ctx, dup), shared.ErrAlreadyExists)
	})

	t.Run("find by username ignores case", func(t *testing.T) {
		found, err := repo.FindByUsername(ctx, "CAJERA01")
		require.NoError(t, err)
		assert.Equal(t, user.ID, found.ID)
		assert.Equal(t, identity.RoleCashier, found.Role)
		assert.True(t, found.VerifyPassword("pan2026seguro"))
	})

	t.Run("update persists login state", func(t *testing.T) {
		found, err := repo.FindByID(ctx, user.ID)
		require.NoError(t, err)

		locked := found.RecordLoginFailure(1, 15*time.Minute)
		require.True(t, locked)
		require.NoError(t, repo.Update(ctx, found))

		reloaded, err := repo.FindByID(ctx, user.ID)
		require.NoError(t, err)
		assert.True(t, reloaded.IsLocked())
		require.NotNil(t, reloaded.LockedUntil)
	})

	t.Run("exists and count", func(t *testing.T) {
		exists, err := repo.ExistsByUsername(ctx, "Cajera01")
		require.NoError(t, err)
		assert.True(t, exists)

		count, err := repo.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})

	t.Run("missing user", func(t *testing.T) {
		_, err := repo.FindByID(ctx, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)

		ghost, err := identity.NewUser("fantasma", "clave12345", identity.RoleCashier)
		require.NoError(t, err)
		assert.ErrorIs(t, repo.Update(ctx, ghost), shared.ErrNotFound)
	})
}

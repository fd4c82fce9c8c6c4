package users

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/dreamteller/internal/common"
	"github.com/dmitrijs2005/dreamteller/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	u, err := repo.Create(ctx, &models.User{Email: "ann@example.com", Name: "Ann", PasswordHash: []byte("h")})
	require.NoError(t, err)
	require.NotEmpty(t, u.ID)
	require.False(t, u.CreatedAt.IsZero())

	_, err = repo.Create(ctx, &models.User{Email: "ann@example.com"})
	require.ErrorIs(t, err, common.ErrorAlreadyExists)

	byEmail, err := repo.GetByEmail(ctx, "ann@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byEmail.ID)

	byEmail.Name = "mutated"
	byID, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ann", byID.Name, "callers get copies")

	require.NoError(t, repo.SetEmailVerified(ctx, u.ID))
	byID, err = repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, byID.EmailVerified)

	_, err = repo.GetByEmail(ctx, "nobody@example.com")
	require.ErrorIs(t, err, common.ErrorNotFound)
	require.ErrorIs(t, repo.SetEmailVerified(ctx, "nope"), common.ErrorNotFound)

	require.NoError(t, repo.SetPassword(ctx, u.ID, []byte("h2")))
	byID, err = repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, []byte("h2"), byID.PasswordHash)
	require.ErrorIs(t, repo.SetPassword(ctx, "nope", nil), common.ErrorNotFound)
}

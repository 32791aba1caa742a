package repository

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreRepositoryCreate(t *testing.T) {
	repo := NewMemoryStoreRepository()

	a, err := repo.Create(context.Background(), "Main Street")
	require.NoError(t, err)
	b, err := repo.Create(context.Background(), "Harbour")
	require.NoError(t, err)

	assert.Equal(t, "Main Street", a.Name)
	assert.False(t, a.CreatedAt.IsZero())
	assert.NotEqual(t, a.ID, b.ID)
	_, err = uuid.Parse(a.ID)
	assert.NoError(t, err)
}

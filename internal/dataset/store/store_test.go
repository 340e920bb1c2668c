package store

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"podium/internal/athlete/models"
	"podium/pkg/platform/sentinel"
)

func TestInMemory(t *testing.T) {
	ctx := context.Background()
	s := NewInMemory()

	_, err := s.Current(ctx)
	assert.ErrorIs(t, err, sentinel.ErrNotFound)

	first := &models.Snapshot{ID: uuid.New()}
	second := &models.Snapshot{ID: uuid.New()}
	require.NoError(t, s.Save(ctx, first))
	require.NoError(t, s.Save(ctx, second))

	cur, err := s.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, second.ID, cur.ID)

	assert.ErrorIs(t, s.Save(ctx, nil), sentinel.ErrInvalidState)
}

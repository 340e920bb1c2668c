package tx

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithTxIgnoresNil(t *testing.T) {
	ctx := WithTx(context.Background(), nil)
	_, ok := From(ctx)
	assert.False(t, ok)
}

func TestRunJoinsOuterTransaction(t *testing.T) {
	outer := &sql.Tx{}
	ctx := WithTx(context.Background(), outer)

	var got *sql.Tx
	// a nil db proves no new transaction is started
	err := Run(ctx, nil, func(_ context.Context, tx *sql.Tx) error {
		got = tx
		return nil
	})
	require.NoError(t, err)
	assert.Same(t, outer, got)
}

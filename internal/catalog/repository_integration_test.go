// AngelaMos | 2026
// repository_integration_test.go

//go:build integration

package catalog

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/leafcare/internal/core"
	"github.com/carterperez-dev/leafcare/internal/testdb"
)

func TestRepository_RejectsNonFinitePrice(t *testing.T) {
	repo := NewRepository(testdb.Open(t).DB)
	ctx := context.Background()

	for _, price := range []float64{math.Inf(1), math.NaN(), 0} {
		err := repo.Create(ctx, &Supplement{Name: "Bad", Description: "d", Price: price})
		assert.Error(t, err, price)
	}

	require.NoError(t, repo.Create(ctx, &Supplement{Name: "Neem Oil", Description: "d", Price: 199}))
	err := repo.Create(ctx, &Supplement{Name: "Neem Oil", Description: "d", Price: 5})
	assert.ErrorIs(t, err, core.ErrDuplicateKey)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.InDelta(t, 199, list[0].Price, 1e-9)
}

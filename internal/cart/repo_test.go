package cart

import (
	"context"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/soundstall-backend/pkg/db/dbtest"
	"github.com/angelmondragon/soundstall-backend/pkg/db/models"
)

func newTestRepository(t *testing.T) Repository {
	t.Helper()
	return NewRepository(dbtest.OpenSQLite(t, &models.CartItem{}))
}

func fakeProduct(stock int) *models.Product {
	return &models.Product{
		ID:          uuid.MustParse(gofakeit.UUID()),
		ArtistID:    uuid.MustParse(gofakeit.UUID()),
		Name:        gofakeit.ProductName(),
		Description: gofakeit.BeerName(),
		Price:       decimal.NewFromFloat(gofakeit.Price(1, 100)).Round(2),
		Image:       gofakeit.URL(),
		Colors:      []string{gofakeit.Color(), gofakeit.Color()},
		Stock:       stock,
	}
}

func TestRepositoryInsertRejectsSecondLineForProduct(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	userID := uuid.New()
	product := fakeProduct(10)

	require.NoError(t, repo.Insert(ctx, userID, snapshot(product, 1, time.Now())))
	err := repo.Insert(ctx, userID, snapshot(product, 2, time.Now()))
	require.ErrorIs(t, err, ErrLineExists)

	// another user may hold the same product
	require.NoError(t, repo.Insert(ctx, uuid.New(), snapshot(product, 2, time.Now())))

	count, err := repo.Count(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestRepositorySetQuantityComparesObservedQuantity(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	userID := uuid.New()
	product := fakeProduct(10)
	require.NoError(t, repo.Insert(ctx, userID, snapshot(product, 2, time.Now())))

	err := repo.SetQuantity(ctx, userID, product.ID, 3, 4, LineTotal(product.Price, 4))
	require.ErrorIs(t, err, ErrQuantityChanged)

	require.NoError(t, repo.SetQuantity(ctx, userID, product.ID, 2, 4, LineTotal(product.Price, 4)))
	line, err := repo.FindByProduct(ctx, userID, product.ID)
	require.NoError(t, err)
	require.NotNil(t, line)
	assert.Equal(t, 4, line.Quantity)
	assert.True(t, line.TotalPrice.Equal(LineTotal(product.Price, 4)), "total %s", line.TotalPrice)

	err = repo.SetQuantity(ctx, userID, uuid.New(), 2, 3, decimal.Zero)
	require.ErrorIs(t, err, ErrQuantityChanged)
}

func TestRepositoryFindByProductMissing(t *testing.T) {
	repo := newTestRepository(t)

	line, err := repo.FindByProduct(context.Background(), uuid.New(), uuid.New())
	require.NoError(t, err)
	assert.Nil(t, line)
}

func TestRepositoryRemoveLineIsScopedToUser(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	owner := uuid.New()
	line := snapshot(fakeProduct(5), 1, time.Now())
	require.NoError(t, repo.Insert(ctx, owner, line))

	require.NoError(t, repo.RemoveLine(ctx, uuid.New(), line.ID))
	lines, err := repo.List(ctx, owner)
	require.NoError(t, err)
	require.Len(t, lines, 1)

	require.NoError(t, repo.RemoveLine(ctx, owner, line.ID))
	require.NoError(t, repo.RemoveLine(ctx, owner, line.ID))
	lines, err = repo.List(ctx, owner)
	require.NoError(t, err)
	assert.Empty(t, lines)
	assert.NotNil(t, lines)
}

func TestRepositoryListKeepsInsertionOrder(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	userID := uuid.New()
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	var want []uuid.UUID
	for i := 0; i < 3; i++ {
		line := snapshot(fakeProduct(5), 1, base.Add(time.Duration(i)*time.Minute))
		require.NoError(t, repo.Insert(ctx, userID, line))
		want = append(want, line.ProductID)
	}

	lines, err := repo.List(ctx, userID)
	require.NoError(t, err)
	got := make([]uuid.UUID, 0, len(lines))
	for _, line := range lines {
		got = append(got, line.ProductID)
		assert.NotNil(t, line.Colors)
	}
	assert.Equal(t, want, got)
}

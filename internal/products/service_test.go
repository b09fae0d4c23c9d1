package product

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/soundstall-backend/pkg/db/dbtest"
	"github.com/angelmondragon/soundstall-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/soundstall-backend/pkg/errors"
	"github.com/angelmondragon/soundstall-backend/pkg/pagination"
)

func newTestService(t *testing.T) (Service, *Repository) {
	t.Helper()
	repo := NewRepository(dbtest.OpenSQLite(t, &models.Product{}))
	svc, err := NewService(repo)
	require.NoError(t, err)
	return svc, repo
}

func validInput() CreateProductInput {
	return CreateProductInput{
		Name:        "  Tour Hoodie ",
		Description: "Heavyweight fleece",
		Price:       decimal.RequireFromString("45.00"),
		Image:       "/api/image/hoodie.png",
		Colors:      []string{"black", " ", "sand"},
		Items:       12,
	}
}

func requireCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	typed := pkgerrors.As(err)
	require.NotNil(t, typed, "expected typed error, got %v", err)
	require.Equal(t, code, typed.Code())
}

func stringPtr(v string) *string { return &v }

func TestCreateProductTrimsAndStores(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()
	artistID := uuid.New()

	dto, err := svc.CreateProduct(ctx, artistID, validInput())
	require.NoError(t, err)

	assert.Equal(t, "Tour Hoodie", dto.Name)
	assert.Equal(t, []string{"black", "sand"}, dto.Colors)
	assert.Equal(t, 12, dto.Items)
	assert.Equal(t, artistID, dto.ArtistID)

	owner, err := repo.FindOwner(ctx, dto.ID)
	require.NoError(t, err)
	assert.Equal(t, artistID, owner)
}

func TestCreateProductValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	cases := map[string]func(*CreateProductInput){
		"missing name":   func(in *CreateProductInput) { in.Name = " " },
		"zero price":     func(in *CreateProductInput) { in.Price = decimal.Zero },
		"negative stock": func(in *CreateProductInput) { in.Items = -1 },
		"no colors":      func(in *CreateProductInput) { in.Colors = nil },
		"sub-cent price": func(in *CreateProductInput) { in.Price = decimal.RequireFromString("1.005") },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			input := validInput()
			mutate(&input)
			_, err := svc.CreateProduct(ctx, uuid.New(), input)
			requireCode(t, err, pkgerrors.CodeValidation)
		})
	}

	_, err := svc.CreateProduct(ctx, uuid.Nil, validInput())
	requireCode(t, err, pkgerrors.CodeUnauthorized)
}

func TestUpdateProductRequiresOwner(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	artistID := uuid.New()
	dto, err := svc.CreateProduct(ctx, artistID, validInput())
	require.NoError(t, err)

	_, err = svc.UpdateProduct(ctx, uuid.New(), dto.ID, UpdateProductInput{Name: stringPtr("Stolen")})
	requireCode(t, err, pkgerrors.CodeForbidden)

	_, err = svc.UpdateProduct(ctx, artistID, uuid.New(), UpdateProductInput{Name: stringPtr("Ghost")})
	requireCode(t, err, pkgerrors.CodeNotFound)

	items := 3
	updated, err := svc.UpdateProduct(ctx, artistID, dto.ID, UpdateProductInput{Name: stringPtr(" Crewneck "), Items: &items})
	require.NoError(t, err)
	assert.Equal(t, "Crewneck", updated.Name)
	assert.Equal(t, 3, updated.Items)
	assert.Equal(t, "Heavyweight fleece", updated.Description)

	negative := -2
	_, err = svc.UpdateProduct(ctx, artistID, dto.ID, UpdateProductInput{Items: &negative})
	requireCode(t, err, pkgerrors.CodeValidation)
}

func TestDeleteProduct(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()
	artistID := uuid.New()
	dto, err := svc.CreateProduct(ctx, artistID, validInput())
	require.NoError(t, err)

	requireCode(t, svc.DeleteProduct(ctx, uuid.New(), dto.ID), pkgerrors.CodeForbidden)
	require.NoError(t, svc.DeleteProduct(ctx, artistID, dto.ID))

	found, err := repo.FindByID(ctx, dto.ID)
	require.NoError(t, err)
	assert.Nil(t, found)

	_, err = svc.GetProduct(ctx, dto.ID)
	requireCode(t, err, pkgerrors.CodeNotFound)

	owner, err := repo.FindOwner(ctx, dto.ID)
	require.NoError(t, err)
	assert.Equal(t, uuid.Nil, owner)
}

func TestListByArtistPagesNewestFirst(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()
	artistID := uuid.New()
	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	var ids []uuid.UUID
	for i := 0; i < 5; i++ {
		product := &models.Product{
			ArtistID:    artistID,
			Name:        "Poster",
			Description: "A2 print",
			Price:       decimal.RequireFromString("15.00"),
			Image:       "/api/image/poster.png",
			Colors:      []string{"white"},
			Stock:       4,
			CreatedAt:   base.Add(time.Duration(i) * time.Hour),
		}
		_, err := repo.Create(ctx, product)
		require.NoError(t, err)
		ids = append(ids, product.ID)
	}
	_, err := svc.CreateProduct(ctx, uuid.New(), validInput())
	require.NoError(t, err)

	first, err := svc.ListByArtist(ctx, artistID, pagination.Params{Limit: 3})
	require.NoError(t, err)
	require.Len(t, first.Products, 3)
	assert.Equal(t, ids[4], first.Products[0].ID)
	assert.Equal(t, ids[2], first.Products[2].ID)
	require.NotEmpty(t, first.NextCursor)

	second, err := svc.ListByArtist(ctx, artistID, pagination.Params{Limit: 3, Cursor: first.NextCursor})
	require.NoError(t, err)
	require.Len(t, second.Products, 2)
	assert.Equal(t, ids[1], second.Products[0].ID)
	assert.Equal(t, ids[0], second.Products[1].ID)
	assert.Empty(t, second.NextCursor)

	_, err = svc.ListByArtist(ctx, artistID, pagination.Params{Cursor: "not-base64!"})
	requireCode(t, err, pkgerrors.CodeValidation)
}

package product

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/soundstall-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/soundstall-backend/pkg/errors"
	"github.com/angelmondragon/soundstall-backend/pkg/pagination"
)

// Service exposes artist product management operations.
type Service interface {
	CreateProduct(ctx context.Context, artistID uuid.UUID, input CreateProductInput) (*ProductDTO, error)
	UpdateProduct(ctx context.Context, artistID, productID uuid.UUID, input UpdateProductInput) (*ProductDTO, error)
	DeleteProduct(ctx context.Context, artistID, productID uuid.UUID) error
	GetProduct(ctx context.Context, productID uuid.UUID) (*ProductDTO, error)
	ListByArtist(ctx context.Context, artistID uuid.UUID, params pagination.Params) (*ProductListResult, error)
}

// CreateProductInput holds the validated payload to create a product.
type CreateProductInput struct {
	Name        string
	Description string
	Price       decimal.Decimal
	Image       string
	Colors      []string
	Items       int
}

// UpdateProductInput holds optional mutation values for a product.
type UpdateProductInput struct {
	Name        *string
	Description *string
	Price       *decimal.Decimal
	Image       *string
	Colors      *[]string
	Items       *int
}

type service struct {
	repo *Repository
}

// NewService constructs a product service instance.
func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) CreateProduct(ctx context.Context, artistID uuid.UUID, input CreateProductInput) (*ProductDTO, error) {
	if artistID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "artist required")
	}

	product := &models.Product{
		ArtistID:    artistID,
		Name:        strings.TrimSpace(input.Name),
		Description: strings.TrimSpace(input.Description),
		Price:       input.Price,
		Image:       strings.TrimSpace(input.Image),
		Colors:      cleanColors(input.Colors),
		Stock:       input.Items,
	}
	if err := validateProduct(product); err != nil {
		return nil, err
	}

	created, err := s.repo.Create(ctx, product)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert product")
	}
	return NewProductDTO(created), nil
}

func (s *service) UpdateProduct(ctx context.Context, artistID, productID uuid.UUID, input UpdateProductInput) (*ProductDTO, error) {
	product, err := s.loadOwned(ctx, artistID, productID)
	if err != nil {
		return nil, err
	}

	applyUpdateToProduct(product, input)
	if err := validateProduct(product); err != nil {
		return nil, err
	}

	updated, err := s.repo.Update(ctx, product)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update product")
	}
	return NewProductDTO(updated), nil
}

func (s *service) DeleteProduct(ctx context.Context, artistID, productID uuid.UUID) error {
	if _, err := s.loadOwned(ctx, artistID, productID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, productID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete product")
	}
	return nil
}

func (s *service) GetProduct(ctx context.Context, productID uuid.UUID) (*ProductDTO, error) {
	product, err := s.repo.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return NewProductDTO(product), nil
}

func (s *service) ListByArtist(ctx context.Context, artistID uuid.UUID, params pagination.Params) (*ProductListResult, error) {
	products, next, err := s.repo.ListByArtist(ctx, artistID, params)
	if err != nil {
		return nil, err
	}
	return &ProductListResult{
		ArtistID:   artistID,
		Products:   productDTOs(products),
		NextCursor: next,
	}, nil
}

// loadOwned returns the product when artistID owns it. A missing product is
// NotFound; someone else's product is Forbidden.
func (s *service) loadOwned(ctx context.Context, artistID, productID uuid.UUID) (*models.Product, error) {
	if artistID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "artist required")
	}
	product, err := s.repo.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	if product.ArtistID != artistID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "product belongs to another artist")
	}
	return product, nil
}

func applyUpdateToProduct(product *models.Product, input UpdateProductInput) {
	if input.Name != nil {
		product.Name = strings.TrimSpace(*input.Name)
	}
	if input.Description != nil {
		product.Description = strings.TrimSpace(*input.Description)
	}
	if input.Price != nil {
		product.Price = *input.Price
	}
	if input.Image != nil {
		product.Image = strings.TrimSpace(*input.Image)
	}
	if input.Colors != nil {
		product.Colors = cleanColors(*input.Colors)
	}
	if input.Items != nil {
		product.Stock = *input.Items
	}
}

func validateProduct(product *models.Product) error {
	fields := map[string]string{}
	if product.Name == "" {
		fields["name"] = "is required"
	}
	if product.Description == "" {
		fields["description"] = "is required"
	}
	if product.Image == "" {
		fields["image"] = "is required"
	}
	if len(product.Colors) == 0 {
		fields["colors"] = "at least one color is required"
	}
	if !product.Price.IsPositive() {
		fields["price"] = "must be greater than zero"
	} else if product.Price.Exponent() < -2 && !product.Price.Equal(product.Price.Round(2)) {
		fields["price"] = "must have at most two decimal places"
	}
	if product.Stock < 0 {
		fields["items"] = "cannot be negative"
	}
	if len(fields) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid product").WithDetails(fields)
	}
	return nil
}

func cleanColors(colors []string) []string {
	out := make([]string, 0, len(colors))
	for _, c := range colors {
		if c = strings.TrimSpace(c); c != "" {
			out = append(out, c)
		}
	}
	return out
}

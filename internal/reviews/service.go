package reviews

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/angelmondragon/soundstall-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/soundstall-backend/pkg/errors"
)

const (
	MinRating = 1
	MaxRating = 5
)

type productLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

// Service manages product reviews.
type Service interface {
	Add(ctx context.Context, userID, productID uuid.UUID, input AddReviewInput) (*ReviewDTO, error)
	List(ctx context.Context, productID uuid.UUID) ([]ReviewDTO, error)
}

// AddReviewInput is the body of a new review.
type AddReviewInput struct {
	Rating  int
	Comment string
}

// ReviewDTO is the review payload returned to clients.
type ReviewDTO struct {
	ID        uuid.UUID `json:"id"`
	ProductID uuid.UUID `json:"product_id"`
	UserID    uuid.UUID `json:"user_id"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

type service struct {
	repo     Repository
	products productLoader
}

// NewService builds a review service.
func NewService(repo Repository, products productLoader) (Service, error) {
	if repo == nil {
		return nil, errors.New("review repository required")
	}
	if products == nil {
		return nil, errors.New("product loader required")
	}
	return &service{repo: repo, products: products}, nil
}

// Add stores one review per user and product.
func (s *service) Add(ctx context.Context, userID, productID uuid.UUID, input AddReviewInput) (*ReviewDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user required")
	}
	comment := strings.TrimSpace(input.Comment)
	fields := map[string]string{}
	if input.Rating < MinRating || input.Rating > MaxRating {
		fields["rating"] = "must be between 1 and 5"
	}
	if comment == "" {
		fields["comment"] = "is required"
	}
	if len(fields) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rating and comment are required").WithDetails(fields)
	}

	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}

	review := &models.Review{
		ProductID: productID,
		UserID:    userID,
		Rating:    input.Rating,
		Comment:   comment,
	}
	if err := s.repo.Create(ctx, review); err != nil {
		return nil, err
	}
	dto := toDTO(*review)
	return &dto, nil
}

func (s *service) List(ctx context.Context, productID uuid.UUID) ([]ReviewDTO, error) {
	reviews, err := s.repo.ListByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	return lo.Map(reviews, func(r models.Review, _ int) ReviewDTO { return toDTO(r) }), nil
}

func toDTO(r models.Review) ReviewDTO {
	return ReviewDTO{
		ID:        r.ID,
		ProductID: r.ProductID,
		UserID:    r.UserID,
		Rating:    r.Rating,
		Comment:   r.Comment,
		CreatedAt: r.CreatedAt,
	}
}

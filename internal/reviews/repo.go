package reviews

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/soundstall-backend/internal/repo"
	"github.com/angelmondragon/soundstall-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/soundstall-backend/pkg/errors"
)

// ErrAlreadyReviewed is returned when the user has reviewed the product before.
var ErrAlreadyReviewed = errors.New("you have already reviewed this product")

const uniqueProductUser = "idx_reviews_product_user"

// Repository persists product reviews.
type Repository interface {
	Create(ctx context.Context, review *models.Review) error
	ListByProduct(ctx context.Context, productID uuid.UUID) ([]models.Review, error)
}

type repository struct {
	repo.Base
}

// NewRepository returns a review repository bound to the provided database.
func NewRepository(conn *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(conn)}
}

func (r *repository) Create(ctx context.Context, review *models.Review) error {
	if err := r.DB(ctx).Create(review).Error; err != nil {
		if r.IsUniqueViolation(err, uniqueProductUser) {
			return pkgerrors.Wrap(pkgerrors.CodeConflict, ErrAlreadyReviewed, "you have already reviewed this product")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert review")
	}
	return nil
}

// ListByProduct returns the product's reviews newest first.
func (r *repository) ListByProduct(ctx context.Context, productID uuid.UUID) ([]models.Review, error) {
	var reviews []models.Review
	if err := r.DB(ctx).
		Where("product_id = ?", productID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&reviews).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list reviews")
	}
	return reviews, nil
}

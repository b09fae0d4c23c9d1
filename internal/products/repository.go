package product

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/soundstall-backend/internal/repo"
	"github.com/angelmondragon/soundstall-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/soundstall-backend/pkg/errors"
	"github.com/angelmondragon/soundstall-backend/pkg/pagination"
)

// Repository persists catalog products.
type Repository struct {
	repo.Base
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(conn *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(conn)}
}

// FindByID loads the product, returning nil when it does not exist.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	found, err := r.First(ctx, &product, "id = ?", id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if !found {
		return nil, nil
	}
	return &product, nil
}

// FindOwner returns the artist that owns the product, or uuid.Nil when the
// product does not exist.
func (r *Repository) FindOwner(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	var owners []uuid.UUID
	if err := r.DB(ctx).
		Model(&models.Product{}).
		Where("id = ?", id).
		Limit(1).
		Pluck("artist_id", &owners).Error; err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product owner")
	}
	if len(owners) == 0 {
		return uuid.Nil, nil
	}
	return owners[0], nil
}

func (r *Repository) Create(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := r.DB(ctx).Create(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

func (r *Repository) Update(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := r.DB(ctx).Save(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.DB(ctx).Delete(&models.Product{}, "id = ?", id).Error
}

// ListByArtist pages through an artist's products newest first.
func (r *Repository) ListByArtist(ctx context.Context, artistID uuid.UUID, params pagination.Params) ([]models.Product, string, error) {
	cursor, err := params.After()
	if err != nil {
		return nil, "", err
	}

	qb := r.DB(ctx).Where("artist_id = ?", artistID)
	if cursor != nil {
		qb = qb.Where("(created_at < ?) OR (created_at = ? AND id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	var records []models.Product
	if err := qb.Order("created_at DESC").
		Order("id DESC").
		Limit(params.FetchSize()).
		Find(&records).Error; err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list artist products")
	}

	records, nextCursor := pagination.Trim(records, params, func(p models.Product) pagination.Cursor {
		return pagination.Cursor{CreatedAt: p.CreatedAt, ID: p.ID}
	})
	return records, nextCursor, nil
}

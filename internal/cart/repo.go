package cart

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/soundstall-backend/internal/repo"
	"github.com/angelmondragon/soundstall-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/soundstall-backend/pkg/errors"
)

const uniqueUserProduct = "idx_cart_items_user_product"

// Repository stores cart lines per user. Writes touch a single line so
// concurrent mutations of different lines never overwrite each other.
type Repository interface {
	List(ctx context.Context, userID uuid.UUID) ([]Line, error)
	// FindByProduct returns nil when the user has no line for the product.
	FindByProduct(ctx context.Context, userID, productID uuid.UUID) (*Line, error)
	Insert(ctx context.Context, userID uuid.UUID, line Line) error
	// SetQuantity moves the line from expected to next and fails with
	// ErrQuantityChanged when the stored quantity differs from expected.
	SetQuantity(ctx context.Context, userID, productID uuid.UUID, expected, next int, total decimal.Decimal) error
	RemoveLine(ctx context.Context, userID, lineID uuid.UUID) error
	Clear(ctx context.Context, userID uuid.UUID) error
	Count(ctx context.Context, userID uuid.UUID) (int, error)
}

type repository struct {
	repo.Base
	now func() time.Time
}

// NewRepository returns a relational cart repository.
func NewRepository(conn *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(conn), now: time.Now}
}

func (r *repository) List(ctx context.Context, userID uuid.UUID) ([]Line, error) {
	var items []models.CartItem
	if err := r.DB(ctx).
		Where("user_id = ?", userID).
		Order("added_at ASC").
		Order("id ASC").
		Find(&items).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list cart lines")
	}
	lines := make([]Line, 0, len(items))
	for _, item := range items {
		lines = append(lines, lineFromModel(item))
	}
	return lines, nil
}

func (r *repository) FindByProduct(ctx context.Context, userID, productID uuid.UUID) (*Line, error) {
	var item models.CartItem
	found, err := r.First(ctx, &item, "user_id = ? AND product_id = ?", userID, productID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart line")
	}
	if !found {
		return nil, nil
	}
	line := lineFromModel(item)
	return &line, nil
}

func (r *repository) Insert(ctx context.Context, userID uuid.UUID, line Line) error {
	item := lineToModel(userID, line)
	if err := r.DB(ctx).Create(&item).Error; err != nil {
		if r.IsUniqueViolation(err, uniqueUserProduct) {
			return ErrLineExists
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert cart line")
	}
	return nil
}

func (r *repository) SetQuantity(ctx context.Context, userID, productID uuid.UUID, expected, next int, total decimal.Decimal) error {
	res := r.DB(ctx).
		Model(&models.CartItem{}).
		Where("user_id = ? AND product_id = ? AND quantity = ?", userID, productID, expected).
		Updates(map[string]any{
			"quantity":    next,
			"total_price": total,
			"updated_at":  r.now().UTC(),
		})
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "update cart line")
	}
	if res.RowsAffected == 0 {
		return ErrQuantityChanged
	}
	return nil
}

func (r *repository) RemoveLine(ctx context.Context, userID, lineID uuid.UUID) error {
	if err := r.DB(ctx).
		Where("user_id = ? AND id = ?", userID, lineID).
		Delete(&models.CartItem{}).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove cart line")
	}
	return nil
}

func (r *repository) Clear(ctx context.Context, userID uuid.UUID) error {
	if err := r.DB(ctx).
		Where("user_id = ?", userID).
		Delete(&models.CartItem{}).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
	}
	return nil
}

func (r *repository) Count(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int64
	if err := r.DB(ctx).
		Model(&models.CartItem{}).
		Where("user_id = ?", userID).
		Count(&count).Error; err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count cart lines")
	}
	return int(count), nil
}


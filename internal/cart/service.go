package cart

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/soundstall-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/soundstall-backend/pkg/errors"
	"github.com/angelmondragon/soundstall-backend/pkg/logger"
)

// maxWriteAttempts bounds how often a mutation re-reads a line that changed
// under it before giving up with a conflict.
const maxWriteAttempts = 3

type productLoader interface {
	// FindByID returns nil when the product does not exist.
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

// Service keeps each user's cart consistent with the catalog.
type Service interface {
	AddItem(ctx context.Context, userID, productID uuid.UUID, quantity int) ([]Line, error)
	UpdateItem(ctx context.Context, userID, productID uuid.UUID, quantity int) ([]Line, error)
	RemoveItem(ctx context.Context, userID, lineID uuid.UUID) ([]Line, error)
	Clear(ctx context.Context, userID uuid.UUID) ([]Line, error)
	Items(ctx context.Context, userID uuid.UUID) (*View, error)
	Count(ctx context.Context, userID uuid.UUID) (int, error)
}

// ServiceParams groups dependencies for the cart service.
type ServiceParams struct {
	Repo     Repository
	Products productLoader
	Logger   *logger.Logger
}

type service struct {
	repo     Repository
	products productLoader
	logg     *logger.Logger
	now      func() time.Time
}

// NewService builds a cart service backed by the provided stack.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, errors.New("cart repository required")
	}
	if params.Products == nil {
		return nil, errors.New("product loader required")
	}
	return &service{
		repo:     params.Repo,
		products: params.Products,
		logg:     params.Logger,
		now:      time.Now,
	}, nil
}

// AddItem merges quantity into the user's line for the product, creating the
// line from a snapshot of the product when absent. Stock is checked against
// the line's resulting quantity.
func (s *service) AddItem(ctx context.Context, userID, productID uuid.UUID, quantity int) ([]Line, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	if quantity < 1 {
		return nil, invalidQuantity()
	}
	product, err := s.loadProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	for attempt := 0; attempt < maxWriteAttempts; attempt++ {
		existing, err := s.repo.FindByProduct(ctx, userID, productID)
		if err != nil {
			return nil, err
		}

		if existing == nil {
			if err := checkStock(product, quantity); err != nil {
				return nil, err
			}
			err = s.repo.Insert(ctx, userID, snapshot(product, quantity, s.now()))
			if errors.Is(err, ErrLineExists) {
				continue
			}
			if err != nil {
				return nil, err
			}
			return s.repo.List(ctx, userID)
		}

		next := existing.Quantity + quantity
		if err := checkStock(product, next); err != nil {
			return nil, err
		}
		err = s.repo.SetQuantity(ctx, userID, productID, existing.Quantity, next, LineTotal(existing.UnitPrice, next))
		if errors.Is(err, ErrQuantityChanged) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return s.repo.List(ctx, userID)
	}

	s.warnContention(ctx, userID, productID)
	return nil, contention()
}

// UpdateItem sets the line's quantity to an absolute value.
func (s *service) UpdateItem(ctx context.Context, userID, productID uuid.UUID, quantity int) ([]Line, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	if quantity < 1 {
		return nil, invalidQuantity()
	}

	for attempt := 0; attempt < maxWriteAttempts; attempt++ {
		existing, err := s.repo.FindByProduct(ctx, userID, productID)
		if err != nil {
			return nil, err
		}
		if existing == nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, ErrLineNotFound, "product not found in cart").
				WithDetails(map[string]string{"product_id": productID.String()})
		}

		product, err := s.loadProduct(ctx, productID)
		if err != nil {
			return nil, err
		}
		if err := checkStock(product, quantity); err != nil {
			return nil, err
		}
		if existing.Quantity == quantity {
			return s.repo.List(ctx, userID)
		}

		err = s.repo.SetQuantity(ctx, userID, productID, existing.Quantity, quantity, LineTotal(existing.UnitPrice, quantity))
		if errors.Is(err, ErrQuantityChanged) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return s.repo.List(ctx, userID)
	}

	s.warnContention(ctx, userID, productID)
	return nil, contention()
}

// RemoveItem drops the line with lineID. Unknown ids leave the cart as is.
func (s *service) RemoveItem(ctx context.Context, userID, lineID uuid.UUID) ([]Line, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	if err := s.repo.RemoveLine(ctx, userID, lineID); err != nil {
		return nil, err
	}
	return s.repo.List(ctx, userID)
}

func (s *service) Clear(ctx context.Context, userID uuid.UUID) ([]Line, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	if err := s.repo.Clear(ctx, userID); err != nil {
		return nil, err
	}
	return []Line{}, nil
}

func (s *service) Items(ctx context.Context, userID uuid.UUID) (*View, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	lines, err := s.repo.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &View{Cart: lines, TotalItems: len(lines)}, nil
}

// Count returns the number of distinct lines, not the sum of quantities.
func (s *service) Count(ctx context.Context, userID uuid.UUID) (int, error) {
	if err := requireUser(userID); err != nil {
		return 0, err
	}
	return s.repo.Count(ctx, userID)
}

func (s *service) loadProduct(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, ErrProductNotFound, "product not found").
			WithDetails(map[string]string{"product_id": productID.String()})
	}
	return product, nil
}

func (s *service) warnContention(ctx context.Context, userID, productID uuid.UUID) {
	if s.logg == nil {
		return
	}
	logCtx := s.logg.WithFields(ctx, map[string]any{
		"user_id":    userID.String(),
		"product_id": productID.String(),
		"attempts":   maxWriteAttempts,
	})
	s.logg.Warn(logCtx, "cart.write_contention")
}

func checkStock(product *models.Product, quantity int) error {
	if quantity <= product.Stock {
		return nil
	}
	return pkgerrors.Wrap(pkgerrors.CodeConflict, ErrInsufficientStock, "not enough items in stock").
		WithDetails(map[string]any{"requested": quantity, "available": product.Stock})
}

func requireUser(userID uuid.UUID) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user required")
	}
	return nil
}

func invalidQuantity() error {
	return pkgerrors.Wrap(pkgerrors.CodeValidation, ErrInvalidQuantity, "quantity must be at least 1").
		WithDetails(map[string]string{"quantity": "must be at least 1"})
}

func contention() error {
	return pkgerrors.New(pkgerrors.CodeConflict, "cart changed concurrently, retry the request")
}

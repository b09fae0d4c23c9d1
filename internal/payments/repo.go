package payments

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/soundstall-backend/internal/repo"
	"github.com/angelmondragon/soundstall-backend/pkg/db/models"
	"github.com/angelmondragon/soundstall-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/soundstall-backend/pkg/errors"
	"github.com/angelmondragon/soundstall-backend/pkg/pagination"
)

// ErrAttemptNotFound is returned when no attempt matches a (gateway, reference)
// pair. Callers use it to detect drift between a provider and local records.
var ErrAttemptNotFound = errors.New("payment attempt not found")

const uniqueGatewayReference = "idx_payment_attempts_gateway_reference"

// Repository persists payment attempts.
type Repository interface {
	Record(ctx context.Context, attempt *models.PaymentAttempt) error
	FindByReference(ctx context.Context, gateway enums.PaymentGateway, referenceID string) (*models.PaymentAttempt, error)
	UpdateStatus(ctx context.Context, gateway enums.PaymentGateway, referenceID string, status enums.PaymentStatus) (*models.PaymentAttempt, error)
	History(ctx context.Context, userID uuid.UUID, limit int) ([]models.PaymentAttempt, error)
}

type repository struct {
	repo.Base
	now func() time.Time
}

// NewRepository returns a payment attempt repository bound to the provided database.
func NewRepository(conn *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(conn), now: time.Now}
}

// Record inserts a new attempt in the created status.
func (r *repository) Record(ctx context.Context, attempt *models.PaymentAttempt) error {
	if attempt == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "payment attempt is required")
	}
	if !attempt.Amount.IsPositive() {
		return pkgerrors.New(pkgerrors.CodeValidation, "amount must be greater than zero")
	}
	if !attempt.Gateway.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unsupported gateway %q", attempt.Gateway))
	}
	if strings.TrimSpace(attempt.ReferenceID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "reference id is required")
	}
	if attempt.Currency == "" {
		attempt.Currency = enums.CurrencyUSD
	}
	attempt.Status = enums.PaymentStatusCreated

	if err := r.DB(ctx).Create(attempt).Error; err != nil {
		if r.IsUniqueViolation(err, uniqueGatewayReference) {
			return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "payment attempt already recorded").
				WithDetails(map[string]string{"gateway": attempt.Gateway.String(), "reference_id": attempt.ReferenceID})
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record payment attempt")
	}
	return nil
}

func (r *repository) FindByReference(ctx context.Context, gateway enums.PaymentGateway, referenceID string) (*models.PaymentAttempt, error) {
	var attempt models.PaymentAttempt
	found, err := r.First(ctx, &attempt, "gateway = ? AND reference_id = ?", gateway, referenceID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load payment attempt")
	}
	if !found {
		return nil, notFound(gateway, referenceID)
	}
	return &attempt, nil
}

// UpdateStatus moves the attempt to status when the lifecycle allows it. The
// guard is part of the UPDATE so concurrent confirmations cannot regress a
// terminal status.
func (r *repository) UpdateStatus(ctx context.Context, gateway enums.PaymentGateway, referenceID string, status enums.PaymentStatus) (*models.PaymentAttempt, error) {
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid payment status %q", status))
	}

	res := r.DB(ctx).
		Model(&models.PaymentAttempt{}).
		Where("gateway = ? AND reference_id = ?", gateway, referenceID).
		Where("status IN ?", enums.PaymentStatusesAllowingTransitionTo(status)).
		Updates(map[string]any{
			"status":     status,
			"updated_at": r.now().UTC(),
		})
	if res.Error != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "update payment status")
	}

	current, err := r.FindByReference(ctx, gateway, referenceID)
	if err != nil {
		return nil, err
	}
	if res.RowsAffected == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "payment status transition not allowed").
			WithDetails(map[string]string{"from": current.Status.String(), "to": status.String()})
	}
	return current, nil
}

// History returns a user's attempts newest first.
func (r *repository) History(ctx context.Context, userID uuid.UUID, limit int) ([]models.PaymentAttempt, error) {
	var attempts []models.PaymentAttempt
	if err := r.DB(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		Limit(pagination.Clamp(limit)).
		Find(&attempts).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list payment history")
	}
	return attempts, nil
}


func notFound(gateway enums.PaymentGateway, referenceID string) error {
	return pkgerrors.Wrap(pkgerrors.CodeNotFound, ErrAttemptNotFound, "payment attempt not found").
		WithDetails(map[string]string{"gateway": gateway.String(), "reference_id": referenceID})
}

package payments

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/angelmondragon/soundstall-backend/internal/gateways"
	"github.com/angelmondragon/soundstall-backend/pkg/db/models"
	"github.com/angelmondragon/soundstall-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/soundstall-backend/pkg/errors"
	"github.com/angelmondragon/soundstall-backend/pkg/logger"
	"github.com/angelmondragon/soundstall-backend/pkg/types"
)

type gatewayResolver interface {
	Create(name string) (gateways.Gateway, error)
	Available() []gateways.Descriptor
}

// Service orchestrates payment intents, confirmations and history.
type Service interface {
	CreateIntent(ctx context.Context, input IntentInput) (*IntentResult, error)
	Confirm(ctx context.Context, input ConfirmInput) (*ConfirmResult, error)
	ApplyProviderStatus(ctx context.Context, gateway enums.PaymentGateway, referenceID string, status enums.PaymentStatus) (*models.PaymentAttempt, error)
	History(ctx context.Context, userID uuid.UUID) ([]AttemptDTO, error)
	Gateways() []gateways.Descriptor
}

// ServiceParams groups dependencies for the payments service.
type ServiceParams struct {
	Repo         Repository
	Gateways     gatewayResolver
	HistoryLimit int
	Logger       *logger.Logger
}

type service struct {
	repo         Repository
	gateways     gatewayResolver
	historyLimit int
	logg         *logger.Logger
}

// NewService builds a payments service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, errors.New("repo is required")
	}
	if params.Gateways == nil {
		return nil, errors.New("gateway factory is required")
	}
	return &service{
		repo:         params.Repo,
		gateways:     params.Gateways,
		historyLimit: params.HistoryLimit,
		logg:         params.Logger,
	}, nil
}

// CreateIntent initiates the payment with the provider and records the
// attempt with the currency actually sent.
func (s *service) CreateIntent(ctx context.Context, input IntentInput) (*IntentResult, error) {
	if input.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user required")
	}
	adapter, err := s.gateways.Create(input.Gateway)
	if err != nil {
		return nil, err
	}

	pending, err := adapter.Initiate(ctx, gateways.InitiateRequest{
		UserID:   input.UserID,
		Amount:   input.Amount,
		Currency: input.Currency,
		Metadata: input.Metadata,
	})
	if err != nil {
		return nil, err
	}

	attempt := &models.PaymentAttempt{
		UserID:      input.UserID,
		Amount:      input.Amount,
		Currency:    pending.Currency,
		Gateway:     adapter.Name(),
		ReferenceID: pending.ReferenceID,
		Metadata:    types.Metadata(input.Metadata),
	}
	if err := s.repo.Record(ctx, attempt); err != nil {
		if s.logg != nil {
			logCtx := s.logg.WithReferenceID(s.logg.WithGateway(ctx, adapter.Name().String()), pending.ReferenceID)
			s.logg.Error(logCtx, "payments.record_failed_after_initiate", err)
		}
		return nil, err
	}

	return &IntentResult{
		AttemptID:       attempt.ID,
		ReferenceID:     pending.ReferenceID,
		Gateway:         adapter.Name(),
		Currency:        pending.Currency,
		ProviderHandoff: pending.Handoff,
	}, nil
}

// Confirm settles an attempt owned by the caller. Attempts owned by someone
// else are reported as not found.
func (s *service) Confirm(ctx context.Context, input ConfirmInput) (*ConfirmResult, error) {
	if input.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user required")
	}
	adapter, err := s.gateways.Create(input.Gateway)
	if err != nil {
		return nil, err
	}
	reference := strings.TrimSpace(input.Reference())
	if reference == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment_intent_id or order_id is required").
			WithDetails(map[string]string{"payment_intent_id": "is required"})
	}

	attempt, err := s.repo.FindByReference(ctx, adapter.Name(), reference)
	if err != nil {
		return nil, err
	}
	if attempt.UserID != input.UserID {
		return nil, notFound(adapter.Name(), reference)
	}

	settled, err := adapter.Finalize(ctx, gateways.FinalizeRequest{
		ReferenceID: reference,
		PaymentID:   input.PaymentID,
		Signature:   input.Signature,
	})
	if err != nil {
		return nil, err
	}

	updated, err := s.repo.UpdateStatus(ctx, adapter.Name(), reference, settled.Status)
	if err != nil {
		return nil, err
	}

	result := &ConfirmResult{
		ReferenceID: reference,
		Status:      updated.Status,
		Amount:      settled.Amount,
		Currency:    settled.Currency,
		Gateway:     adapter.Name(),
	}
	if result.Amount.IsZero() {
		result.Amount = updated.Amount
	}
	if result.Currency == "" {
		result.Currency = updated.Currency
	}
	return result, nil
}

// ApplyProviderStatus records a status pushed by the provider.
func (s *service) ApplyProviderStatus(ctx context.Context, gateway enums.PaymentGateway, referenceID string, status enums.PaymentStatus) (*models.PaymentAttempt, error) {
	if strings.TrimSpace(referenceID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "reference id is required")
	}
	return s.repo.UpdateStatus(ctx, gateway, referenceID, status)
}

func (s *service) History(ctx context.Context, userID uuid.UUID) ([]AttemptDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user required")
	}
	attempts, err := s.repo.History(ctx, userID, s.historyLimit)
	if err != nil {
		return nil, err
	}
	return AttemptsFromModels(attempts), nil
}

func (s *service) Gateways() []gateways.Descriptor {
	return s.gateways.Available()
}

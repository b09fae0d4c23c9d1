package qna

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

type ownerLookup interface {
	// FindOwner returns uuid.Nil when the product does not exist.
	FindOwner(ctx context.Context, productID uuid.UUID) (uuid.UUID, error)
}

// Service manages buyer questions and artist answers.
type Service interface {
	Ask(ctx context.Context, userID, productID uuid.UUID, text string) (*QuestionDTO, error)
	List(ctx context.Context, productID uuid.UUID) ([]QuestionDTO, error)
	Answer(ctx context.Context, artistID, productID, questionID uuid.UUID, text string) (*QuestionDTO, error)
}

// QuestionDTO is the question payload returned to clients.
type QuestionDTO struct {
	ID         uuid.UUID  `json:"id"`
	ProductID  uuid.UUID  `json:"product_id"`
	AskedBy    uuid.UUID  `json:"asked_by"`
	Question   string     `json:"question"`
	Answer     *string    `json:"answer,omitempty"`
	AnsweredBy *uuid.UUID `json:"answered_by,omitempty"`
	AskedAt    time.Time  `json:"asked_at"`
	AnsweredAt *time.Time `json:"answered_at,omitempty"`
}

type service struct {
	repo   Repository
	owners ownerLookup
}

// NewService builds a Q&A service.
func NewService(repo Repository, owners ownerLookup) (Service, error) {
	if repo == nil {
		return nil, errors.New("question repository required")
	}
	if owners == nil {
		return nil, errors.New("product owner lookup required")
	}
	return &service{repo: repo, owners: owners}, nil
}

// Ask stores the question trimmed and ending in a question mark.
func (s *service) Ask(ctx context.Context, userID, productID uuid.UUID, text string) (*QuestionDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user required")
	}
	question := NormalizeQuestion(text)
	if question == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "question is required").
			WithDetails(map[string]string{"question": "is required"})
	}
	if _, err := s.requireProduct(ctx, productID); err != nil {
		return nil, err
	}

	record := &models.Question{
		ProductID: productID,
		AskedBy:   userID,
		Question:  question,
	}
	if err := s.repo.Create(ctx, record); err != nil {
		return nil, err
	}
	dto := toDTO(*record)
	return &dto, nil
}

func (s *service) List(ctx context.Context, productID uuid.UUID) ([]QuestionDTO, error) {
	questions, err := s.repo.ListByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	return lo.Map(questions, func(q models.Question, _ int) QuestionDTO { return toDTO(q) }), nil
}

// Answer lets the product's artist reply to a question on that product.
func (s *service) Answer(ctx context.Context, artistID, productID, questionID uuid.UUID, text string) (*QuestionDTO, error) {
	if artistID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "artist required")
	}
	answer := strings.TrimSpace(text)
	if answer == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "answer is required").
			WithDetails(map[string]string{"answer": "is required"})
	}

	owner, err := s.requireProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if owner != artistID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only the product's artist can answer")
	}

	question, err := s.repo.FindByID(ctx, questionID)
	if err != nil {
		return nil, err
	}
	if question == nil || question.ProductID != productID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "question not found")
	}

	answered, err := s.repo.Answer(ctx, questionID, artistID, answer)
	if err != nil {
		return nil, err
	}
	dto := toDTO(*answered)
	return &dto, nil
}

func (s *service) requireProduct(ctx context.Context, productID uuid.UUID) (uuid.UUID, error) {
	owner, err := s.owners.FindOwner(ctx, productID)
	if err != nil {
		return uuid.Nil, err
	}
	if owner == uuid.Nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return owner, nil
}

// NormalizeQuestion trims the text and appends "?" when missing. Blank input
// stays blank.
func NormalizeQuestion(text string) string {
	question := strings.TrimSpace(text)
	if question == "" || strings.HasSuffix(question, "?") {
		return question
	}
	return question + "?"
}

func toDTO(q models.Question) QuestionDTO {
	return QuestionDTO{
		ID:         q.ID,
		ProductID:  q.ProductID,
		AskedBy:    q.AskedBy,
		Question:   q.Question,
		Answer:     q.Answer,
		AnsweredBy: q.AnsweredBy,
		AskedAt:    q.AskedAt,
		AnsweredAt: q.AnsweredAt,
	}
}

package qna

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/soundstall-backend/internal/repo"
	"github.com/angelmondragon/soundstall-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/soundstall-backend/pkg/errors"
)

// Repository persists product questions.
type Repository interface {
	Create(ctx context.Context, question *models.Question) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Question, error)
	ListByProduct(ctx context.Context, productID uuid.UUID) ([]models.Question, error)
	Answer(ctx context.Context, id, artistID uuid.UUID, answer string) (*models.Question, error)
}

type repository struct {
	repo.Base
	now func() time.Time
}

// NewRepository returns a question repository bound to the provided database.
func NewRepository(conn *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(conn), now: time.Now}
}

func (r *repository) Create(ctx context.Context, question *models.Question) error {
	if err := r.DB(ctx).Create(question).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert question")
	}
	return nil
}

// FindByID returns nil when the question does not exist.
func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Question, error) {
	var question models.Question
	found, err := r.First(ctx, &question, "id = ?", id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load question")
	}
	if !found {
		return nil, nil
	}
	return &question, nil
}

// ListByProduct returns questions in the order they were asked.
func (r *repository) ListByProduct(ctx context.Context, productID uuid.UUID) ([]models.Question, error) {
	var questions []models.Question
	if err := r.DB(ctx).
		Where("product_id = ?", productID).
		Order("asked_at ASC").
		Order("id ASC").
		Find(&questions).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list questions")
	}
	return questions, nil
}

// Answer records or replaces the artist's answer.
func (r *repository) Answer(ctx context.Context, id, artistID uuid.UUID, answer string) (*models.Question, error) {
	res := r.DB(ctx).
		Model(&models.Question{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"answer":      answer,
			"answered_by": artistID,
			"answered_at": r.now().UTC(),
		})
	if res.Error != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "answer question")
	}
	return r.FindByID(ctx, id)
}

package song

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/soundstall-backend/internal/repo"
	"github.com/angelmondragon/soundstall-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/soundstall-backend/pkg/errors"
	"github.com/angelmondragon/soundstall-backend/pkg/pagination"
)

// Repository persists songs.
type Repository struct {
	repo.Base
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(conn *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(conn)}
}

// FindByID loads the song, returning nil when it does not exist.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Song, error) {
	var song models.Song
	found, err := r.First(ctx, &song, "id = ?", id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load song")
	}
	if !found {
		return nil, nil
	}
	return &song, nil
}

func (r *Repository) Create(ctx context.Context, song *models.Song) (*models.Song, error) {
	if err := r.DB(ctx).Create(song).Error; err != nil {
		return nil, err
	}
	return song, nil
}

func (r *Repository) Update(ctx context.Context, song *models.Song) (*models.Song, error) {
	if err := r.DB(ctx).Save(song).Error; err != nil {
		return nil, err
	}
	return song, nil
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.DB(ctx).Delete(&models.Song{}, "id = ?", id).Error
}

// List pages through every song newest first. A non-empty genre narrows the
// page to that genre.
func (r *Repository) List(ctx context.Context, genre string, params pagination.Params) ([]models.Song, string, error) {
	qb := r.DB(ctx)
	if genre != "" {
		qb = qb.Where("genre = ?", genre)
	}
	return r.page(qb, params, "list songs")
}

// ListByArtist pages through an artist's songs newest first.
func (r *Repository) ListByArtist(ctx context.Context, artistID uuid.UUID, params pagination.Params) ([]models.Song, string, error) {
	return r.page(r.DB(ctx).Where("artist_id = ?", artistID), params, "list artist songs")
}

// FindByTitle returns songs whose title equals title ignoring case.
func (r *Repository) FindByTitle(ctx context.Context, title string) ([]models.Song, error) {
	var songs []models.Song
	if err := r.DB(ctx).
		Where("LOWER(title) = ?", strings.ToLower(title)).
		Order("created_at DESC").
		Order("id DESC").
		Find(&songs).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find songs by title")
	}
	return songs, nil
}

// SearchTitle returns up to limit songs whose title contains term ignoring
// case. LIKE wildcards in term match literally.
func (r *Repository) SearchTitle(ctx context.Context, term string, limit int) ([]models.Song, error) {
	var songs []models.Song
	if err := r.DB(ctx).
		Where(`LOWER(title) LIKE ? ESCAPE '\'`, "%"+escapeLike(strings.ToLower(term))+"%").
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&songs).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "search songs")
	}
	return songs, nil
}

func (r *Repository) page(qb *gorm.DB, params pagination.Params, op string) ([]models.Song, string, error) {
	cursor, err := params.After()
	if err != nil {
		return nil, "", err
	}
	if cursor != nil {
		qb = qb.Where("(created_at < ?) OR (created_at = ? AND id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	var records []models.Song
	if err := qb.Order("created_at DESC").
		Order("id DESC").
		Limit(params.FetchSize()).
		Find(&records).Error; err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, op)
	}

	records, nextCursor := pagination.Trim(records, params, func(s models.Song) pagination.Cursor {
		return pagination.Cursor{CreatedAt: s.CreatedAt, ID: s.ID}
	})
	return records, nextCursor, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

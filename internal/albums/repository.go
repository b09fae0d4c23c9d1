package album

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/soundstall-backend/internal/repo"
	"github.com/angelmondragon/soundstall-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/soundstall-backend/pkg/errors"
	"github.com/angelmondragon/soundstall-backend/pkg/pagination"
)

// ErrAlbumExists is returned when the artist already has an album by that name.
var ErrAlbumExists = errors.New("album already exists")

const uniqueArtistName = "idx_albums_artist_name"

// Repository persists albums and their track membership.
type Repository struct {
	repo.Base
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(conn *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(conn)}
}

// FindByID loads the album, returning nil when it does not exist.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Album, error) {
	var album models.Album
	found, err := r.First(ctx, &album, "id = ?", id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load album")
	}
	if !found {
		return nil, nil
	}
	return &album, nil
}

// FindByArtistAndName loads the artist's album with exactly that name.
func (r *Repository) FindByArtistAndName(ctx context.Context, artistID uuid.UUID, name string) (*models.Album, error) {
	var album models.Album
	found, err := r.First(ctx, &album, "artist_id = ? AND name = ?", artistID, name)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load album by name")
	}
	if !found {
		return nil, nil
	}
	return &album, nil
}

func (r *Repository) Create(ctx context.Context, album *models.Album) error {
	if err := r.DB(ctx).Create(album).Error; err != nil {
		if r.IsUniqueViolation(err, uniqueArtistName) {
			return ErrAlbumExists
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert album")
	}
	return nil
}

// AttachSong points the artist's song at the album. It reports false when
// no such song belongs to the artist.
func (r *Repository) AttachSong(ctx context.Context, artistID, albumID, songID uuid.UUID) (bool, error) {
	res := r.DB(ctx).
		Model(&models.Song{}).
		Where("id = ? AND artist_id = ?", songID, artistID).
		Update("album_id", albumID)
	if res.Error != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "attach song to album")
	}
	return res.RowsAffected > 0, nil
}

// Tracks returns the album's songs in the order they were uploaded.
func (r *Repository) Tracks(ctx context.Context, albumID uuid.UUID) ([]models.Song, error) {
	var songs []models.Song
	if err := r.DB(ctx).
		Where("album_id = ?", albumID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&songs).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list album tracks")
	}
	return songs, nil
}

// List pages through albums newest first without loading tracks.
func (r *Repository) List(ctx context.Context, params pagination.Params) ([]models.Album, string, error) {
	cursor, err := params.After()
	if err != nil {
		return nil, "", err
	}

	qb := r.DB(ctx)
	if cursor != nil {
		qb = qb.Where("(created_at < ?) OR (created_at = ? AND id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	var records []models.Album
	if err := qb.Order("created_at DESC").
		Order("id DESC").
		Limit(params.FetchSize()).
		Find(&records).Error; err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list albums")
	}

	records, nextCursor := pagination.Trim(records, params, func(a models.Album) pagination.Cursor {
		return pagination.Cursor{CreatedAt: a.CreatedAt, ID: a.ID}
	})
	return records, nextCursor, nil
}

package album

import (
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	song "github.com/angelmondragon/soundstall-backend/internal/songs"
	"github.com/angelmondragon/soundstall-backend/pkg/db/models"
)

// AlbumDTO is the album payload. Tracks is nil in list responses.
type AlbumDTO struct {
	ID        uuid.UUID      `json:"id"`
	ArtistID  uuid.UUID      `json:"artist_id"`
	Name      string         `json:"name"`
	Image     string         `json:"image"`
	Tracks    []song.SongDTO `json:"tracks,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// AlbumListResult is one page of albums.
type AlbumListResult struct {
	Albums     []AlbumDTO `json:"albums"`
	NextCursor string     `json:"next_cursor,omitempty"`
}

// NewAlbumDTO builds a DTO from the persisted model and its tracks.
func NewAlbumDTO(album *models.Album, tracks []models.Song) *AlbumDTO {
	dto := &AlbumDTO{
		ID:        album.ID,
		ArtistID:  album.ArtistID,
		Name:      album.Name,
		Image:     album.Image,
		CreatedAt: album.CreatedAt,
		UpdatedAt: album.UpdatedAt,
	}
	if tracks != nil {
		dto.Tracks = song.SongDTOs(tracks)
	}
	return dto
}

func albumDTOs(albums []models.Album) []AlbumDTO {
	return lo.Map(albums, func(a models.Album, _ int) AlbumDTO {
		return *NewAlbumDTO(&a, nil)
	})
}

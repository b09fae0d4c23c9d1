package song

import (
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/angelmondragon/soundstall-backend/pkg/db/models"
)

// SongDTO is the song payload returned to clients.
type SongDTO struct {
	ID          uuid.UUID  `json:"id"`
	ArtistID    uuid.UUID  `json:"artist_id"`
	AlbumID     *uuid.UUID `json:"album_id,omitempty"`
	Title       string     `json:"title"`
	Genre       string     `json:"genre"`
	Image       string     `json:"image"`
	Audio       string     `json:"audio"`
	Duration    int        `json:"duration"`
	Description string     `json:"description"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// SongListResult is one page of songs.
type SongListResult struct {
	Songs      []SongDTO `json:"songs"`
	NextCursor string    `json:"next_cursor,omitempty"`
}

// NewSongDTO builds a DTO from the persisted model.
func NewSongDTO(song *models.Song) *SongDTO {
	return &SongDTO{
		ID:          song.ID,
		ArtistID:    song.ArtistID,
		AlbumID:     song.AlbumID,
		Title:       song.Title,
		Genre:       song.Genre,
		Image:       song.Image,
		Audio:       song.Audio,
		Duration:    song.Duration,
		Description: song.Description,
		CreatedAt:   song.CreatedAt,
		UpdatedAt:   song.UpdatedAt,
	}
}

// SongDTOs converts a slice of models, keeping order.
func SongDTOs(songs []models.Song) []SongDTO {
	return lo.Map(songs, func(s models.Song, _ int) SongDTO {
		return *NewSongDTO(&s)
	})
}

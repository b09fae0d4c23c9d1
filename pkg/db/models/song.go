package models

import (
	"time"

	"github.com/google/uuid"
)

// Song is a track uploaded by an artist. AlbumID is set once the track is
// added to one of the artist's albums.
type Song struct {
	ID          uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	ArtistID    uuid.UUID  `gorm:"column:artist_id;type:uuid;not null;index"`
	AlbumID     *uuid.UUID `gorm:"column:album_id;type:uuid;index"`
	Title       string     `gorm:"column:title;not null"`
	Genre       string     `gorm:"column:genre;not null;index"`
	Image       string     `gorm:"column:image;not null"`
	Audio       string     `gorm:"column:audio;not null"`
	Duration    int        `gorm:"column:duration_seconds;not null;default:0"`
	Description string     `gorm:"column:description;not null;default:''"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

// Album groups an artist's songs under a name unique to that artist.
type Album struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	ArtistID  uuid.UUID `gorm:"column:artist_id;type:uuid;not null;uniqueIndex:idx_albums_artist_name,priority:1"`
	Name      string    `gorm:"column:name;not null;uniqueIndex:idx_albums_artist_name,priority:2"`
	Image     string    `gorm:"column:image;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

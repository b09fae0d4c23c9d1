package album

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/angelmondragon/soundstall-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/soundstall-backend/pkg/errors"
	"github.com/angelmondragon/soundstall-backend/pkg/pagination"
)

type songLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Song, error)
}

// Service groups an artist's songs into named albums.
type Service interface {
	AddTrack(ctx context.Context, artistID uuid.UUID, input AddTrackInput) (*AlbumDTO, error)
	Get(ctx context.Context, albumID uuid.UUID) (*AlbumDTO, error)
	List(ctx context.Context, params pagination.Params) (*AlbumListResult, error)
}

// AddTrackInput names the album and the song to put on it. Image is only
// required when the album does not exist yet.
type AddTrackInput struct {
	AlbumName  string
	AlbumImage string
	SongID     uuid.UUID
}

type service struct {
	repo  *Repository
	songs songLoader
}

// NewService builds an album service.
func NewService(repo *Repository, songs songLoader) (Service, error) {
	if repo == nil {
		return nil, errors.New("album repository required")
	}
	if songs == nil {
		return nil, errors.New("song loader required")
	}
	return &service{repo: repo, songs: songs}, nil
}

// AddTrack files the song under the artist's album of that name, creating
// the album on first use. A song sits on at most one album, so adding it
// again elsewhere moves it.
func (s *service) AddTrack(ctx context.Context, artistID uuid.UUID, input AddTrackInput) (*AlbumDTO, error) {
	if artistID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "artist required")
	}
	name := strings.TrimSpace(input.AlbumName)
	image := strings.TrimSpace(input.AlbumImage)
	fields := map[string]string{}
	if name == "" {
		fields["album_name"] = "is required"
	}
	if input.SongID == uuid.Nil {
		fields["song_id"] = "is required"
	}
	if len(fields) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid album track").WithDetails(fields)
	}

	song, err := s.songs.FindByID(ctx, input.SongID)
	if err != nil {
		return nil, err
	}
	if song == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "song not found")
	}
	if song.ArtistID != artistID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "song belongs to another artist")
	}

	album, err := s.findOrCreate(ctx, artistID, name, image)
	if err != nil {
		return nil, err
	}

	attached, err := s.repo.AttachSong(ctx, artistID, album.ID, song.ID)
	if err != nil {
		return nil, err
	}
	if !attached {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "song not found")
	}
	return s.withTracks(ctx, album)
}

func (s *service) findOrCreate(ctx context.Context, artistID uuid.UUID, name, image string) (*models.Album, error) {
	album, err := s.repo.FindByArtistAndName(ctx, artistID, name)
	if err != nil || album != nil {
		return album, err
	}
	if image == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid album track").
			WithDetails(map[string]string{"album_image": "is required for a new album"})
	}

	album = &models.Album{ArtistID: artistID, Name: name, Image: image}
	err = s.repo.Create(ctx, album)
	if errors.Is(err, ErrAlbumExists) {
		// created concurrently; use the winner
		album, err = s.repo.FindByArtistAndName(ctx, artistID, name)
		if err == nil && album == nil {
			err = pkgerrors.New(pkgerrors.CodeConflict, "album changed concurrently, retry")
		}
	}
	if err != nil {
		return nil, err
	}
	return album, nil
}

func (s *service) Get(ctx context.Context, albumID uuid.UUID) (*AlbumDTO, error) {
	album, err := s.repo.FindByID(ctx, albumID)
	if err != nil {
		return nil, err
	}
	if album == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "album not found")
	}
	return s.withTracks(ctx, album)
}

func (s *service) List(ctx context.Context, params pagination.Params) (*AlbumListResult, error) {
	albums, next, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, err
	}
	return &AlbumListResult{Albums: albumDTOs(albums), NextCursor: next}, nil
}

func (s *service) withTracks(ctx context.Context, album *models.Album) (*AlbumDTO, error) {
	tracks, err := s.repo.Tracks(ctx, album.ID)
	if err != nil {
		return nil, err
	}
	return NewAlbumDTO(album, tracks), nil
}

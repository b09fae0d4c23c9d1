package song

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/angelmondragon/soundstall-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/soundstall-backend/pkg/errors"
	"github.com/angelmondragon/soundstall-backend/pkg/pagination"
)

const (
	MinTitleLength = 3
	SearchLimit    = 10
)

// Service exposes song uploads and catalog lookups.
type Service interface {
	CreateSong(ctx context.Context, artistID uuid.UUID, input CreateSongInput) (*SongDTO, error)
	UpdateSong(ctx context.Context, artistID, songID uuid.UUID, input UpdateSongInput) (*SongDTO, error)
	DeleteSong(ctx context.Context, artistID, songID uuid.UUID) error
	GetSong(ctx context.Context, songID uuid.UUID) (*SongDTO, error)
	GetByTitle(ctx context.Context, title string) ([]SongDTO, error)
	Search(ctx context.Context, term string) ([]SongDTO, error)
	List(ctx context.Context, genre string, params pagination.Params) (*SongListResult, error)
	ListByArtist(ctx context.Context, artistID uuid.UUID, params pagination.Params) (*SongListResult, error)
}

// CreateSongInput holds the payload of a new song.
type CreateSongInput struct {
	Title       string
	Genre       string
	Image       string
	Audio       string
	Duration    int
	Description string
}

// UpdateSongInput holds optional mutation values for a song.
type UpdateSongInput struct {
	Title       *string
	Genre       *string
	Image       *string
	Audio       *string
	Duration    *int
	Description *string
}

type service struct {
	repo *Repository
}

// NewService constructs a song service instance.
func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("song repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) CreateSong(ctx context.Context, artistID uuid.UUID, input CreateSongInput) (*SongDTO, error) {
	if artistID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "artist required")
	}

	song := &models.Song{
		ArtistID:    artistID,
		Title:       strings.TrimSpace(input.Title),
		Genre:       normalizeGenre(input.Genre),
		Image:       strings.TrimSpace(input.Image),
		Audio:       strings.TrimSpace(input.Audio),
		Duration:    input.Duration,
		Description: strings.TrimSpace(input.Description),
	}
	if err := validateSong(song); err != nil {
		return nil, err
	}

	created, err := s.repo.Create(ctx, song)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert song")
	}
	return NewSongDTO(created), nil
}

func (s *service) UpdateSong(ctx context.Context, artistID, songID uuid.UUID, input UpdateSongInput) (*SongDTO, error) {
	song, err := s.loadOwned(ctx, artistID, songID)
	if err != nil {
		return nil, err
	}

	applyUpdateToSong(song, input)
	if err := validateSong(song); err != nil {
		return nil, err
	}

	updated, err := s.repo.Update(ctx, song)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update song")
	}
	return NewSongDTO(updated), nil
}

func (s *service) DeleteSong(ctx context.Context, artistID, songID uuid.UUID) error {
	if _, err := s.loadOwned(ctx, artistID, songID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, songID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete song")
	}
	return nil
}

func (s *service) GetSong(ctx context.Context, songID uuid.UUID) (*SongDTO, error) {
	song, err := s.repo.FindByID(ctx, songID)
	if err != nil {
		return nil, err
	}
	if song == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "song not found")
	}
	return NewSongDTO(song), nil
}

func (s *service) GetByTitle(ctx context.Context, title string) ([]SongDTO, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title required").
			WithDetails(map[string]string{"title": "is required"})
	}
	songs, err := s.repo.FindByTitle(ctx, title)
	if err != nil {
		return nil, err
	}
	if len(songs) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "song not found")
	}
	return SongDTOs(songs), nil
}

// Search matches a title fragment and returns an empty slice, not an error,
// when nothing matches.
func (s *service) Search(ctx context.Context, term string) ([]SongDTO, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "search term required").
			WithDetails(map[string]string{"title": "is required"})
	}
	songs, err := s.repo.SearchTitle(ctx, term, SearchLimit)
	if err != nil {
		return nil, err
	}
	return SongDTOs(songs), nil
}

func (s *service) List(ctx context.Context, genre string, params pagination.Params) (*SongListResult, error) {
	songs, next, err := s.repo.List(ctx, normalizeGenre(genre), params)
	if err != nil {
		return nil, err
	}
	return &SongListResult{Songs: SongDTOs(songs), NextCursor: next}, nil
}

func (s *service) ListByArtist(ctx context.Context, artistID uuid.UUID, params pagination.Params) (*SongListResult, error) {
	songs, next, err := s.repo.ListByArtist(ctx, artistID, params)
	if err != nil {
		return nil, err
	}
	return &SongListResult{Songs: SongDTOs(songs), NextCursor: next}, nil
}

// loadOwned returns the song when artistID uploaded it. A missing song is
// NotFound; someone else's song is Forbidden.
func (s *service) loadOwned(ctx context.Context, artistID, songID uuid.UUID) (*models.Song, error) {
	if artistID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "artist required")
	}
	song, err := s.repo.FindByID(ctx, songID)
	if err != nil {
		return nil, err
	}
	if song == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "song not found")
	}
	if song.ArtistID != artistID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "song belongs to another artist")
	}
	return song, nil
}

func applyUpdateToSong(song *models.Song, input UpdateSongInput) {
	if input.Title != nil {
		song.Title = strings.TrimSpace(*input.Title)
	}
	if input.Genre != nil {
		song.Genre = normalizeGenre(*input.Genre)
	}
	if input.Image != nil {
		song.Image = strings.TrimSpace(*input.Image)
	}
	if input.Audio != nil {
		song.Audio = strings.TrimSpace(*input.Audio)
	}
	if input.Duration != nil {
		song.Duration = *input.Duration
	}
	if input.Description != nil {
		song.Description = strings.TrimSpace(*input.Description)
	}
}

func validateSong(song *models.Song) error {
	fields := map[string]string{}
	if utf8.RuneCountInString(song.Title) < MinTitleLength {
		fields["title"] = fmt.Sprintf("must be at least %d characters", MinTitleLength)
	}
	if song.Genre == "" {
		fields["genre"] = "is required"
	}
	if song.Image == "" {
		fields["image"] = "is required"
	}
	if song.Audio == "" {
		fields["audio"] = "is required"
	}
	if song.Duration < 0 {
		fields["duration"] = "cannot be negative"
	}
	if len(fields) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid song").WithDetails(fields)
	}
	return nil
}

func normalizeGenre(genre string) string {
	return strings.ToLower(strings.TrimSpace(genre))
}

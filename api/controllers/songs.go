package controllers

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/soundstall-backend/api/controllers/callercontext"
	"github.com/angelmondragon/soundstall-backend/api/responses"
	"github.com/angelmondragon/soundstall-backend/api/validators"
	songsvc "github.com/angelmondragon/soundstall-backend/internal/songs"
	pkgerrors "github.com/angelmondragon/soundstall-backend/pkg/errors"
	"github.com/angelmondragon/soundstall-backend/pkg/logger"
	"github.com/angelmondragon/soundstall-backend/pkg/pagination"
)

type createSongRequest struct {
	Title       string `json:"title" validate:"required,min=3,max=200"`
	Genre       string `json:"genre" validate:"required,max=60"`
	Image       string `json:"image" validate:"required"`
	Audio       string `json:"audio" validate:"required"`
	Duration    *int   `json:"duration" validate:"omitempty,gte=0"`
	Description string `json:"description" validate:"max=2000"`
}

type updateSongRequest struct {
	Title       *string `json:"title,omitempty" validate:"omitempty,min=3,max=200"`
	Genre       *string `json:"genre,omitempty" validate:"omitempty,max=60"`
	Image       *string `json:"image,omitempty"`
	Audio       *string `json:"audio,omitempty"`
	Duration    *int    `json:"duration,omitempty" validate:"omitempty,gte=0"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=2000"`
}

func (r createSongRequest) toInput() songsvc.CreateSongInput {
	input := songsvc.CreateSongInput{
		Title:       validators.SanitizeString(r.Title, 200),
		Genre:       r.Genre,
		Image:       strings.TrimSpace(r.Image),
		Audio:       strings.TrimSpace(r.Audio),
		Description: strings.TrimSpace(r.Description),
	}
	if r.Duration != nil {
		input.Duration = *r.Duration
	}
	return input
}

func (r updateSongRequest) toInput() songsvc.UpdateSongInput {
	return songsvc.UpdateSongInput{
		Title:       r.Title,
		Genre:       r.Genre,
		Image:       r.Image,
		Audio:       r.Audio,
		Duration:    r.Duration,
		Description: r.Description,
	}
}

func pageParams(r *http.Request) (pagination.Params, error) {
	limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
	if err != nil {
		return pagination.Params{}, err
	}
	return pagination.Params{
		Limit:  limit,
		Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
	}, nil
}

// SongList pages through all songs newest first, optionally by genre.
func SongList(svc songsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "song service unavailable"))
			return
		}

		params, err := pageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.List(r.Context(), r.URL.Query().Get("genre"), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// SongListByArtist pages through one artist's songs.
func SongListByArtist(svc songsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "song service unavailable"))
			return
		}

		artistID, err := callercontext.URLParamUUID(r, "artistId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params, err := pageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.ListByArtist(r.Context(), artistID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// SongGet returns a single song.
func SongGet(svc songsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "song service unavailable"))
			return
		}

		songID, err := callercontext.URLParamUUID(r, "songId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		song, err := svc.GetSong(r.Context(), songID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, song)
	}
}

// SongGetByTitle returns the songs titled exactly {title}, ignoring case.
func SongGetByTitle(svc songsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "song service unavailable"))
			return
		}

		title, err := url.PathUnescape(chi.URLParam(r, "title"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid title").
				WithDetails(map[string]string{"title": "must be a valid path segment"}))
			return
		}

		songs, err := svc.GetByTitle(r.Context(), title)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"songs": songs})
	}
}

// SongSearch matches ?title= against song titles.
func SongSearch(svc songsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "song service unavailable"))
			return
		}

		songs, err := svc.Search(r.Context(), r.URL.Query().Get("title"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"songs": songs})
	}
}

// SongCreate uploads a song under the calling artist.
func SongCreate(svc songsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "song service unavailable"))
			return
		}

		artistID, err := callercontext.ResolveUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload createSongRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		song, err := svc.CreateSong(r.Context(), artistID, payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, song)
	}
}

// SongUpdate applies a partial update to one of the caller's songs.
func SongUpdate(svc songsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "song service unavailable"))
			return
		}

		artistID, err := callercontext.ResolveUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		songID, err := callercontext.URLParamUUID(r, "songId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateSongRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		song, err := svc.UpdateSong(r.Context(), artistID, songID, payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, song)
	}
}

// SongDelete removes one of the caller's songs.
func SongDelete(svc songsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "song service unavailable"))
			return
		}

		artistID, err := callercontext.ResolveUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		songID, err := callercontext.URLParamUUID(r, "songId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteSong(r.Context(), artistID, songID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

package controllers

import (
	"net/http"

	"github.com/angelmondragon/soundstall-backend/api/controllers/callercontext"
	"github.com/angelmondragon/soundstall-backend/api/responses"
	"github.com/angelmondragon/soundstall-backend/api/validators"
	albumsvc "github.com/angelmondragon/soundstall-backend/internal/albums"
	pkgerrors "github.com/angelmondragon/soundstall-backend/pkg/errors"
	"github.com/angelmondragon/soundstall-backend/pkg/logger"
)

type addTrackRequest struct {
	AlbumName  string `json:"album_name" validate:"required,max=200"`
	AlbumImage string `json:"album_image"`
	SongID     string `json:"song_id" validate:"required"`
}

// AlbumAddTrack files one of the caller's songs under a named album,
// creating the album when it does not exist yet.
func AlbumAddTrack(svc albumsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "album service unavailable"))
			return
		}

		artistID, err := callercontext.ResolveUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload addTrackRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		songID, err := validators.ParseUUIDParam(payload.SongID, "song_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		album, err := svc.AddTrack(r.Context(), artistID, albumsvc.AddTrackInput{
			AlbumName:  validators.SanitizeString(payload.AlbumName, 200),
			AlbumImage: payload.AlbumImage,
			SongID:     songID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, album)
	}
}

// AlbumList pages through albums newest first, without tracks.
func AlbumList(svc albumsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "album service unavailable"))
			return
		}

		params, err := pageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.List(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// AlbumGet returns an album with its tracks.
func AlbumGet(svc albumsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "album service unavailable"))
			return
		}

		albumID, err := callercontext.URLParamUUID(r, "albumId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		album, err := svc.Get(r.Context(), albumID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, album)
	}
}

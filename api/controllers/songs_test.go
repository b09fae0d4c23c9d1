package controllers

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	albumsvc "github.com/angelmondragon/soundstall-backend/internal/albums"
	songsvc "github.com/angelmondragon/soundstall-backend/internal/songs"
	"github.com/angelmondragon/soundstall-backend/pkg/db/dbtest"
	"github.com/angelmondragon/soundstall-backend/pkg/db/models"
)

type musicFixture struct {
	songs  songsvc.Service
	albums albumsvc.Service
}

func newMusicFixture(t *testing.T) musicFixture {
	t.Helper()
	conn := dbtest.OpenSQLite(t, &models.Song{}, &models.Album{})
	songRepo := songsvc.NewRepository(conn)
	songs, err := songsvc.NewService(songRepo)
	require.NoError(t, err)
	albums, err := albumsvc.NewService(albumsvc.NewRepository(conn), songRepo)
	require.NoError(t, err)
	return musicFixture{songs: songs, albums: albums}
}

const nightDriveBody = `{"title":"Night Drive","genre":"SynthWave","image":"/img/nd.png","audio":"/audio/nd.mp3","duration":214}`

func createSong(t *testing.T, f musicFixture, artistID uuid.UUID, body string) string {
	t.Helper()
	rec := serve(SongCreate(f.songs, testLogger), http.MethodPost, "/api/v1/songs", body, artistID, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	id, ok := dataOf(t, rec)["id"].(string)
	require.True(t, ok)
	return id
}

func TestSongLifecycle(t *testing.T) {
	f := newMusicFixture(t)
	artistID := uuid.New()
	songID := createSong(t, f, artistID, nightDriveBody)
	params := map[string]string{"songId": songID}

	rec := serve(SongGet(f.songs, testLogger), http.MethodGet, "/api/v1/songs/"+songID, "", uuid.Nil, params)
	require.Equal(t, http.StatusOK, rec.Code)
	song := dataOf(t, rec)
	assert.Equal(t, "Night Drive", song["title"])
	assert.Equal(t, "synthwave", song["genre"])
	assert.EqualValues(t, 214, song["duration"])

	rec = serve(SongUpdate(f.songs, testLogger), http.MethodPut, "/api/v1/songs/"+songID, `{"title":"Stolen"}`, uuid.New(), params)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = serve(SongUpdate(f.songs, testLogger), http.MethodPut, "/api/v1/songs/"+songID, `{"title":"Day Drive"}`, artistID, params)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Day Drive", dataOf(t, rec)["title"])

	rec = serve(SongListByArtist(f.songs, testLogger), http.MethodGet, "/api/v1/songs/artist/x", "", uuid.Nil,
		map[string]string{"artistId": artistID.String()})
	require.Equal(t, http.StatusOK, rec.Code)
	list, ok := dataOf(t, rec)["songs"].([]any)
	require.True(t, ok)
	assert.Len(t, list, 1)

	rec = serve(SongDelete(f.songs, testLogger), http.MethodDelete, "/api/v1/songs/"+songID, "", uuid.New(), params)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = serve(SongDelete(f.songs, testLogger), http.MethodDelete, "/api/v1/songs/"+songID, "", artistID, params)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = serve(SongGet(f.songs, testLogger), http.MethodGet, "/api/v1/songs/"+songID, "", uuid.Nil, params)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSongCreateValidation(t *testing.T) {
	f := newMusicFixture(t)
	cases := map[string]string{
		"short title":    `{"title":"ab","genre":"pop","image":"i","audio":"a"}`,
		"missing audio":  `{"title":"Anthem","genre":"pop","image":"i"}`,
		"negative":       `{"title":"Anthem","genre":"pop","image":"i","audio":"a","duration":-4}`,
		"unknown fields": `{"title":"Anthem","genre":"pop","image":"i","audio":"a","likes":9000}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			rec := serve(SongCreate(f.songs, testLogger), http.MethodPost, "/api/v1/songs", body, uuid.New(), nil)
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
		})
	}

	rec := serve(SongCreate(f.songs, testLogger), http.MethodPost, "/api/v1/songs", nightDriveBody, uuid.Nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSongLookups(t *testing.T) {
	f := newMusicFixture(t)
	createSong(t, f, uuid.New(), nightDriveBody)
	createSong(t, f, uuid.New(), `{"title":"Drive Home","genre":"rock","image":"i","audio":"a"}`)

	rec := serve(SongSearch(f.songs, testLogger), http.MethodGet, "/api/v1/songs/search?title=DRIVE", "", uuid.Nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	found, ok := dataOf(t, rec)["songs"].([]any)
	require.True(t, ok)
	assert.Len(t, found, 2)

	rec = serve(SongSearch(f.songs, testLogger), http.MethodGet, "/api/v1/songs/search", "", uuid.Nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(SongGetByTitle(f.songs, testLogger), http.MethodGet, "/", "", uuid.Nil, map[string]string{"title": "night%20drive"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	found, ok = dataOf(t, rec)["songs"].([]any)
	require.True(t, ok)
	assert.Len(t, found, 1)

	rec = serve(SongGetByTitle(f.songs, testLogger), http.MethodGet, "/", "", uuid.Nil, map[string]string{"title": "Nowhere"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = serve(SongList(f.songs, testLogger), http.MethodGet, "/api/v1/songs?genre=rock", "", uuid.Nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list, ok := dataOf(t, rec)["songs"].([]any)
	require.True(t, ok)
	require.Len(t, list, 1)
	assert.Equal(t, "Drive Home", list[0].(map[string]any)["title"])

	rec = serve(SongList(f.songs, testLogger), http.MethodGet, "/api/v1/songs?limit=0", "", uuid.Nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAlbumEndpoints(t *testing.T) {
	f := newMusicFixture(t)
	artistID := uuid.New()
	songID := createSong(t, f, artistID, nightDriveBody)

	body := `{"album_name":"Nocturnes","album_image":"/img/noc.png","song_id":"` + songID + `"}`
	rec := serve(AlbumAddTrack(f.albums, testLogger), http.MethodPost, "/api/v1/albums/tracks", body, uuid.New(), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = serve(AlbumAddTrack(f.albums, testLogger), http.MethodPost, "/api/v1/albums/tracks",
		`{"album_name":"Nocturnes","song_id":"not-a-uuid"}`, artistID, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(AlbumAddTrack(f.albums, testLogger), http.MethodPost, "/api/v1/albums/tracks", body, artistID, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	album := dataOf(t, rec)
	albumID, ok := album["id"].(string)
	require.True(t, ok)
	tracks, ok := album["tracks"].([]any)
	require.True(t, ok)
	assert.Len(t, tracks, 1)

	rec = serve(AlbumList(f.albums, testLogger), http.MethodGet, "/api/v1/albums", "", uuid.Nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	albums, ok := dataOf(t, rec)["albums"].([]any)
	require.True(t, ok)
	require.Len(t, albums, 1)
	assert.NotContains(t, albums[0].(map[string]any), "tracks")

	rec = serve(AlbumGet(f.albums, testLogger), http.MethodGet, "/api/v1/albums/"+albumID, "", uuid.Nil,
		map[string]string{"albumId": albumID})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Nocturnes", dataOf(t, rec)["name"])

	rec = serve(AlbumGet(f.albums, testLogger), http.MethodGet, "/", "", uuid.Nil,
		map[string]string{"albumId": uuid.NewString()})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

package db

import (
	"time"

	"github.com/rs/zerolog/log"

	"github.com/signoxe/server/internal/model"
)

const playlistItemColumns = `id, playlist_id, asset_id, position, duration, expire_on`

func (s *pgStore) CreatePlaylist(name string, ownerID int) (model.Playlist, error) {
	var p model.Playlist
	err := s.db.Get(&p, `
		INSERT INTO playlists (name, owner_id)
		VALUES ($1, $2)
		RETURNING id, name, owner_id
		`, name, ownerID)
	if err != nil {
		log.Error().Err(err).Msg("failed to create playlist")
		return model.Playlist{}, err
	}
	return p, nil
}

func (s *pgStore) GetPlaylistByID(id int) (model.Playlist, error) {
	var p model.Playlist
	err := s.db.Get(&p, `SELECT id, name, owner_id FROM playlists WHERE id = $1`, id)
	return p, err
}

func (s *pgStore) ListPlaylistsByOwner(ownerID int) ([]model.Playlist, error) {
	var playlists []model.Playlist
	err := s.db.Select(&playlists, `
		SELECT id, name, owner_id
		FROM playlists
		WHERE owner_id = $1
		ORDER BY name, id
		`, ownerID)
	return playlists, err
}

func (s *pgStore) ListPlaylistItems(playlistID int) ([]model.PlaylistItem, error) {
	var items []model.PlaylistItem
	err := s.db.Select(&items, `
		SELECT `+playlistItemColumns+`
		FROM playlist_items
		WHERE playlist_id = $1
		ORDER BY position, id
		`, playlistID)
	return items, err
}

func (s *pgStore) GetPlaylistItemByID(id int) (model.PlaylistItem, error) {
	var item model.PlaylistItem
	err := s.db.Get(&item, `
		SELECT `+playlistItemColumns+`
		FROM playlist_items
		WHERE id = $1
		`, id)
	return item, err
}

// AddPlaylistItem appends the asset to the playlist. A nil position places
// the item after the current last one.
func (s *pgStore) AddPlaylistItem(playlistID, assetID int, position, duration *int, expireOn *time.Time) (model.PlaylistItem, error) {
	var item model.PlaylistItem
	err := s.db.Get(&item, `
		INSERT INTO playlist_items (playlist_id, asset_id, position, duration, expire_on)
		VALUES ($1, $2,
		        COALESCE($3, (SELECT COALESCE(MAX(position) + 1, 0)
		                      FROM playlist_items WHERE playlist_id = $1)),
		        $4, $5)
		RETURNING `+playlistItemColumns+`
		`, playlistID, assetID, position, duration, expireOn)
	if err != nil {
		log.Error().Err(err).Int("playlist_id", playlistID).Msg("failed to add playlist item")
		return model.PlaylistItem{}, err
	}
	return item, nil
}

func (s *pgStore) UpdatePlaylistItem(id int, position, duration *int, expireOn *time.Time) (model.PlaylistItem, error) {
	var item model.PlaylistItem
	err := s.db.Get(&item, `
		UPDATE playlist_items
		SET position = COALESCE($2, position),
		duration = COALESCE($3, duration),
		expire_on = COALESCE($4, expire_on)
		WHERE id = $1
		RETURNING `+playlistItemColumns+`
		`, id, position, duration, expireOn)
	if err != nil {
		log.Error().Err(err).Int("item_id", id).Msg("failed to update playlist item")
	}
	return item, err
}

func (s *pgStore) DeletePlaylistItem(id int) error {
	_, err := s.db.Exec(`DELETE FROM playlist_items WHERE id = $1`, id)
	if err != nil {
		log.Error().Err(err).Int("item_id", id).Msg("failed to delete playlist item")
	}
	return err
}

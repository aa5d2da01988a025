package db

import (
	"database/sql"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/signoxe/server/internal/model"
)

func (s *pgStore) GetClientByID(id int) (model.Client, error) {
	var c model.Client
	err := s.db.Get(&c, `
		SELECT id, name, logo_url, logo_checksum, display_device_logo,
		       update_interval_sec, app_build_channel_id, created_at
		FROM clients
		WHERE id = $1
		`, id)
	if err != nil {
		log.Error().Err(err).Int("client_id", id).Msg("failed to get client")
	}
	return c, err
}

// GetOrCreateClientSettings returns the client's settings row, creating it
// with defaults on first use.
func (s *pgStore) GetOrCreateClientSettings(clientID int) (model.ClientSettings, error) {
	var cs model.ClientSettings
	err := s.db.Get(&cs, `
		SELECT id, client_id, idle_detection_enabled, idle_detection_threshold
		FROM client_settings
		WHERE client_id = $1
		`, clientID)
	if err == nil {
		return cs, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return cs, err
	}

	err = s.db.Get(&cs, `
		INSERT INTO client_settings (client_id)
		VALUES ($1)
		ON CONFLICT (client_id) DO UPDATE SET client_id = EXCLUDED.client_id
		RETURNING id, client_id, idle_detection_enabled, idle_detection_threshold
		`, clientID)
	if err != nil {
		log.Error().Err(err).Int("client_id", clientID).Msg("failed to create client settings")
	}
	return cs, err
}

// LatestAppManifest builds the update manifest for the newest build in the
// channel. Channels without builds get a benign default manifest.
func (s *pgStore) LatestAppManifest(channelID *int) (model.AppManifest, error) {
	var b model.AppBuild
	err := s.db.Get(&b, `
		SELECT id, version_code, url, checksum, channel_id, created_at
		FROM app_builds
		WHERE channel_id IS NOT DISTINCT FROM $1
		ORDER BY version_code DESC
		LIMIT 1
		`, channelID)
	if errors.Is(err, sql.ErrNoRows) {
		return model.DefaultAppManifest(), nil
	}
	if err != nil {
		log.Error().Err(err).Msg("failed to get latest app build")
		return model.AppManifest{}, err
	}
	return model.AppManifest{
		Version:   b.VersionCode,
		UpdateURL: b.URL,
		Checksum:  b.Checksum,
	}, nil
}

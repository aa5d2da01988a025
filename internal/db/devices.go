package db

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/signoxe/server/internal/model"
)

const deviceColumns = `id, device_id, name, last_ping, group_id, debug_mode, enabled,
	owner_id, build_version, command, created_at, updated_at`

// GetDeviceByDeviceID looks a device up by its external identifier. Returns
// (nil, nil) when no such device exists so callers can auto-register.
func (s *pgStore) GetDeviceByDeviceID(deviceID string) (*model.Device, error) {
	var d model.Device
	err := s.db.Get(&d, `
		SELECT `+deviceColumns+`
		FROM devices
		WHERE device_id = $1
		`, deviceID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		log.Error().Err(err).Str("device_id", deviceID).Msg("failed to get device by device id")
		return nil, err
	}
	return &d, nil
}

func (s *pgStore) GetDeviceByID(id int) (model.Device, error) {
	var d model.Device
	err := s.db.Get(&d, `
		SELECT `+deviceColumns+`
		FROM devices
		WHERE id = $1
		`, id)
	return d, err
}

func (s *pgStore) CreateDevice(deviceID string, enabled bool) (model.Device, error) {
	// New devices get a placeholder name derived from their identifier.
	name := fmt.Sprintf("Device %s", strings.SplitN(deviceID, "-", 2)[0])
	var d model.Device
	err := s.db.Get(&d, `
		INSERT INTO devices (device_id, name, enabled, last_ping, created_at, updated_at)
		VALUES ($1, $2, $3, now(), now(), now())
		RETURNING `+deviceColumns+`
		`, deviceID, name, enabled)
	if err != nil {
		log.Error().Err(err).Str("device_id", deviceID).Msg("failed to create device")
		return model.Device{}, err
	}
	return d, nil
}

func (s *pgStore) ListDevicesByOwner(ownerID int) ([]model.Device, error) {
	var devices []model.Device
	err := s.db.Select(&devices, `
		SELECT `+deviceColumns+`
		FROM devices
		WHERE owner_id = $1
		ORDER BY id
		`, ownerID)
	return devices, err
}

func (s *pgStore) ListDevicesByGroup(groupID int) ([]model.Device, error) {
	var devices []model.Device
	err := s.db.Select(&devices, `
		SELECT `+deviceColumns+`
		FROM devices
		WHERE group_id = $1
		ORDER BY id
		`, groupID)
	return devices, err
}

func (s *pgStore) UpdateDevicePing(deviceID string, at time.Time) error {
	_, err := s.db.Exec(`
		UPDATE devices
		SET last_ping = $2,
		updated_at = now()
		WHERE device_id = $1
		`, deviceID, at)
	if err != nil {
		log.Error().Err(err).Str("device_id", deviceID).Msg("failed to update device ping")
	}
	return err
}

// UpdateDevice patches the device. Assigning a group also adopts the
// group's owner, which is what makes a device fully configured.
func (s *pgStore) UpdateDevice(id int, name *string, groupID *int, enabled, debugMode *bool) (model.Device, error) {
	var d model.Device
	err := s.db.Get(&d, `
		UPDATE devices
		SET name = COALESCE($2, name),
		group_id = COALESCE($3, group_id),
		owner_id = CASE WHEN $3::int IS NOT NULL
		                THEN (SELECT owner_id FROM device_groups WHERE id = $3)
		                ELSE owner_id END,
		enabled = COALESCE($4, enabled),
		debug_mode = COALESCE($5, debug_mode),
		updated_at = now()
		WHERE id = $1
		RETURNING `+deviceColumns+`
		`, id, name, groupID, enabled, debugMode)
	if err != nil {
		log.Error().Err(err).Int("device_id", id).Msg("failed to update device")
	}
	return d, err
}

func (s *pgStore) SetDeviceCommand(id int, command string) error {
	_, err := s.db.Exec(`
		UPDATE devices
		SET command = $2,
		updated_at = now()
		WHERE id = $1
		`, id, command)
	if err != nil {
		log.Error().Err(err).Int("device_id", id).Str("command", command).
			Msg("failed to set device command")
	}
	return err
}

// ConsumeDeviceCommand atomically takes the pending command off the device.
// Concurrent polls cannot both observe the same command: the UPDATE only
// matches while a command is present. RETURNING evaluates against the
// updated row, so the pre-update value is read through a self-join against
// the statement snapshot.
func (s *pgStore) ConsumeDeviceCommand(id int) (*string, error) {
	var command string
	err := s.db.Get(&command, `
		UPDATE devices d
		SET command = NULL,
		updated_at = now()
		FROM devices o
		WHERE o.id = d.id AND d.id = $1 AND d.command IS NOT NULL
		RETURNING o.command
		`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		log.Error().Err(err).Int("device_id", id).Msg("failed to consume device command")
		return nil, err
	}
	return &command, nil
}

func (s *pgStore) UpdateDeviceBuildVersion(deviceID string, buildVersion int, at time.Time) error {
	_, err := s.db.Exec(`
		UPDATE devices
		SET build_version = $2,
		last_ping = $3,
		updated_at = now()
		WHERE device_id = $1
		`, deviceID, buildVersion, at)
	if err != nil {
		log.Error().Err(err).Str("device_id", deviceID).Msg("failed to update device build version")
	}
	return err
}

func (s *pgStore) ListDeviceIDsByOwner(ownerID int) ([]string, error) {
	var ids []string
	err := s.db.Select(&ids, `SELECT device_id FROM devices WHERE owner_id = $1`, ownerID)
	return ids, err
}

func (s *pgStore) ListDeviceIDsByGroup(groupID int) ([]string, error) {
	var ids []string
	err := s.db.Select(&ids, `SELECT device_id FROM devices WHERE group_id = $1`, groupID)
	return ids, err
}

func (s *pgStore) ListDeviceIDsByContentFeed(feedID int) ([]string, error) {
	var ids []string
	err := s.db.Select(&ids, `
		SELECT d.device_id
		FROM devices d
		JOIN device_groups g ON g.id = d.group_id
		WHERE g.feed_id = $1
		   OR g.id IN (SELECT device_group_id FROM scheduled_content WHERE content_id = $2)
		   OR g.id IN (SELECT device_group_id FROM special_content WHERE content_id = $2)
		`, feedID, feedID)
	return ids, err
}

func (s *pgStore) ListDeviceIDsByPlaylist(playlistID int) ([]string, error) {
	var ids []string
	err := s.db.Select(&ids, `
		SELECT d.device_id
		FROM devices d
		JOIN playlists p ON p.owner_id = d.owner_id
		WHERE p.id = $1
		`, playlistID)
	return ids, err
}

func (s *pgStore) ListDeviceIDsByTickerSeries(seriesID int) ([]string, error) {
	var ids []string
	err := s.db.Select(&ids, `
		SELECT d.device_id
		FROM devices d
		JOIN ticker_series t ON t.owner_id = d.owner_id
		WHERE t.id = $1
		`, seriesID)
	return ids, err
}

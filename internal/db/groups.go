package db

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/signoxe/server/internal/model"
)

const groupColumns = `id, name, feed_id, owner_id, display_date_time, mirror_id, orientation`

func (s *pgStore) CreateDeviceGroup(name string, ownerID int, feedID *int, orientation string) (model.DeviceGroup, error) {
	if orientation == "" {
		orientation = model.OrientationLandscape
	}
	if !model.ValidOrientation(orientation) {
		return model.DeviceGroup{}, fmt.Errorf("invalid orientation %q", orientation)
	}
	var g model.DeviceGroup
	err := s.db.Get(&g, `
		INSERT INTO device_groups (name, owner_id, feed_id, orientation)
		VALUES ($1, $2, $3, $4)
		RETURNING `+groupColumns+`
		`, name, ownerID, feedID, orientation)
	if err != nil {
		log.Error().Err(err).Msg("failed to create device group")
		return model.DeviceGroup{}, err
	}
	return g, nil
}

func (s *pgStore) GetDeviceGroupByID(id int) (model.DeviceGroup, error) {
	var g model.DeviceGroup
	err := s.db.Get(&g, `
		SELECT `+groupColumns+`
		FROM device_groups
		WHERE id = $1
		`, id)
	return g, err
}

func (s *pgStore) ListDeviceGroupsByOwner(ownerID int) ([]model.DeviceGroup, error) {
	var groups []model.DeviceGroup
	err := s.db.Select(&groups, `
		SELECT `+groupColumns+`
		FROM device_groups
		WHERE owner_id = $1
		ORDER BY name, id
		`, ownerID)
	return groups, err
}

func (s *pgStore) ListDeviceGroupsByMirror(mirrorID int) ([]model.DeviceGroup, error) {
	var groups []model.DeviceGroup
	err := s.db.Select(&groups, `
		SELECT `+groupColumns+`
		FROM device_groups
		WHERE mirror_id = $1
		ORDER BY id
		`, mirrorID)
	return groups, err
}

func (s *pgStore) UpdateDeviceGroup(id int, name *string, feedID *int, displayDateTime *bool, orientation *string, mirrorID *int) (model.DeviceGroup, error) {
	if orientation != nil && !model.ValidOrientation(*orientation) {
		return model.DeviceGroup{}, fmt.Errorf("invalid orientation %q", *orientation)
	}
	var g model.DeviceGroup
	err := s.db.Get(&g, `
		UPDATE device_groups
		SET name = COALESCE($2, name),
		feed_id = COALESCE($3, feed_id),
		display_date_time = COALESCE($4, display_date_time),
		orientation = COALESCE($5, orientation),
		mirror_id = COALESCE($6, mirror_id)
		WHERE id = $1
		RETURNING `+groupColumns+`
		`, id, name, feedID, displayDateTime, orientation, mirrorID)
	if err != nil {
		log.Error().Err(err).Int("group_id", id).Msg("failed to update device group")
	}
	return g, err
}

// DeleteDeviceGroup removes a group along with its owned schedule rows
// (cascade) and, when the group's fallback feed was auto-created for it,
// that disposable feed as well. Shared feeds are left alone.
func (s *pgStore) DeleteDeviceGroup(id int) error {
	tx, err := s.db.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var g model.DeviceGroup
	if err := tx.Get(&g, `SELECT `+groupColumns+` FROM device_groups WHERE id = $1`, id); err != nil {
		return err
	}

	if _, err := tx.Exec(`DELETE FROM device_groups WHERE id = $1`, id); err != nil {
		log.Error().Err(err).Int("group_id", id).Msg("failed to delete device group")
		return err
	}

	if g.FeedID != nil {
		if _, err := tx.Exec(`
			DELETE FROM content_feeds WHERE id = $1 AND auto_created = TRUE
			`, *g.FeedID); err != nil {
			return err
		}
	}

	return tx.Commit()
}

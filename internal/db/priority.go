package db

import (
	"database/sql"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/signoxe/server/internal/model"
)

const priorityColumns = `id, device_group_id, activated_at, duration_minutes, message_asset_id`

// GetPriorityMessage returns the group's priority message row, or (nil, nil)
// when the group never had one activated.
func (s *pgStore) GetPriorityMessage(groupID int) (*model.PriorityMessage, error) {
	var pm model.PriorityMessage
	err := s.db.Get(&pm, `
		SELECT `+priorityColumns+`
		FROM priority_messages
		WHERE device_group_id = $1
		`, groupID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &pm, nil
}

// GetOrCreatePriorityMessage relies on the one-row-per-group unique
// constraint, so concurrent callers converge on the same row.
func (s *pgStore) GetOrCreatePriorityMessage(groupID int) (model.PriorityMessage, error) {
	var pm model.PriorityMessage
	err := s.db.Get(&pm, `
		INSERT INTO priority_messages (device_group_id)
		VALUES ($1)
		ON CONFLICT (device_group_id) DO UPDATE SET device_group_id = EXCLUDED.device_group_id
		RETURNING `+priorityColumns+`
		`, groupID)
	if err != nil {
		log.Error().Err(err).Int("group_id", groupID).Msg("failed to get or create priority message")
		return model.PriorityMessage{}, err
	}
	return pm, nil
}

// ActivatePriorityMessage stamps the activation time and overwrites any
// message already running for the group.
func (s *pgStore) ActivatePriorityMessage(groupID, durationMinutes, messageAssetID int, at time.Time) (model.PriorityMessage, error) {
	var pm model.PriorityMessage
	err := s.db.Get(&pm, `
		INSERT INTO priority_messages (device_group_id, activated_at, duration_minutes, message_asset_id)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (device_group_id) DO UPDATE
		SET activated_at = EXCLUDED.activated_at,
		    duration_minutes = EXCLUDED.duration_minutes,
		    message_asset_id = EXCLUDED.message_asset_id
		RETURNING `+priorityColumns+`
		`, groupID, at, durationMinutes, messageAssetID)
	if err != nil {
		log.Error().Err(err).Int("group_id", groupID).Msg("failed to activate priority message")
		return model.PriorityMessage{}, err
	}
	return pm, nil
}

// UpdatePriorityMessage patches the running message without touching its
// activation time.
func (s *pgStore) UpdatePriorityMessage(groupID int, durationMinutes, messageAssetID *int) (model.PriorityMessage, error) {
	var pm model.PriorityMessage
	err := s.db.Get(&pm, `
		UPDATE priority_messages
		SET duration_minutes = COALESCE($2, duration_minutes),
		message_asset_id = COALESCE($3, message_asset_id)
		WHERE device_group_id = $1
		RETURNING `+priorityColumns+`
		`, groupID, durationMinutes, messageAssetID)
	if err != nil {
		log.Error().Err(err).Int("group_id", groupID).Msg("failed to update priority message")
	}
	return pm, err
}

func (s *pgStore) DeactivatePriorityMessage(groupID int) error {
	_, err := s.db.Exec(`
		UPDATE priority_messages
		SET activated_at = NULL
		WHERE device_group_id = $1
		`, groupID)
	if err != nil {
		log.Error().Err(err).Int("group_id", groupID).Msg("failed to deactivate priority message")
	}
	return err
}

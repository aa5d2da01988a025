package db

import (
	"database/sql"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/signoxe/server/internal/model"
)

const mirrorColumns = `id, mirror_id, name, address, owner_id, last_ping`

// GetMirrorByMirrorID returns (nil, nil) when no mirror matches, so the feed
// endpoint can auto-register unknown mirrors.
func (s *pgStore) GetMirrorByMirrorID(mirrorID string) (*model.MirrorServer, error) {
	var m model.MirrorServer
	err := s.db.Get(&m, `
		SELECT `+mirrorColumns+`
		FROM mirror_servers
		WHERE mirror_id = $1
		`, mirrorID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		log.Error().Err(err).Str("mirror_id", mirrorID).Msg("failed to get mirror")
		return nil, err
	}
	return &m, nil
}

func (s *pgStore) GetMirrorByID(id int) (model.MirrorServer, error) {
	var m model.MirrorServer
	err := s.db.Get(&m, `
		SELECT `+mirrorColumns+`
		FROM mirror_servers
		WHERE id = $1
		`, id)
	return m, err
}

func (s *pgStore) CreateMirror(mirrorID, name string) (model.MirrorServer, error) {
	var m model.MirrorServer
	err := s.db.Get(&m, `
		INSERT INTO mirror_servers (mirror_id, name, last_ping)
		VALUES ($1, $2, now())
		RETURNING `+mirrorColumns+`
		`, mirrorID, name)
	if err != nil {
		log.Error().Err(err).Str("mirror_id", mirrorID).Msg("failed to create mirror")
		return model.MirrorServer{}, err
	}
	return m, nil
}

func (s *pgStore) UpdateMirrorPing(id int, at time.Time) error {
	_, err := s.db.Exec(`
		UPDATE mirror_servers
		SET last_ping = $2
		WHERE id = $1
		`, id, at)
	if err != nil {
		log.Error().Err(err).Int("mirror_id", id).Msg("failed to update mirror ping")
	}
	return err
}

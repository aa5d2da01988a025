package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"github.com/signoxe/server/internal/model"
)

const scheduledColumns = `id, day, is_default, start_time, end_time, bring_to_front,
	content_id, device_group_id`

const specialColumns = `id, date, content_id, device_group_id`

func (s *pgStore) ListScheduledContent(groupID int) ([]model.ScheduledContent, error) {
	var entries []model.ScheduledContent
	err := s.db.Select(&entries, `
		SELECT `+scheduledColumns+`
		FROM scheduled_content
		WHERE device_group_id = $1
		ORDER BY is_default DESC, start_time, id
		`, groupID)
	return entries, err
}

func (s *pgStore) GetScheduledContentByID(id int) (model.ScheduledContent, error) {
	var sc model.ScheduledContent
	err := s.db.Get(&sc, `
		SELECT `+scheduledColumns+`
		FROM scheduled_content
		WHERE id = $1
		`, id)
	return sc, err
}

// GetScheduledContentAt returns the timed entry whose [start, end) window
// contains the given wall-clock time, or (nil, nil) when none does.
func (s *pgStore) GetScheduledContentAt(groupID int, day model.Weekday, at model.TimeOfDay) (*model.ScheduledContent, error) {
	var sc model.ScheduledContent
	err := s.db.Get(&sc, `
		SELECT `+scheduledColumns+`
		FROM scheduled_content
		WHERE device_group_id = $1
		  AND day = $2
		  AND is_default = FALSE
		  AND start_time <= $3
		  AND end_time > $3
		`, groupID, day, at)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sc, nil
}

// GetDefaultScheduledContent returns the day's default entry, or (nil, nil).
func (s *pgStore) GetDefaultScheduledContent(groupID int, day model.Weekday) (*model.ScheduledContent, error) {
	var sc model.ScheduledContent
	err := s.db.Get(&sc, `
		SELECT `+scheduledColumns+`
		FROM scheduled_content
		WHERE device_group_id = $1
		  AND day = $2
		  AND is_default = TRUE
		`, groupID, day)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sc, nil
}

// checkScheduleClash validates sc against the full current sibling set for
// its (group, day) inside tx. The sibling rows are locked first so two
// concurrent writes cannot both pass the check.
func checkScheduleClash(tx *sqlx.Tx, sc model.ScheduledContent) error {
	var siblings []model.ScheduledContent
	err := tx.Select(&siblings, `
		SELECT `+scheduledColumns+`
		FROM scheduled_content
		WHERE device_group_id = $1 AND day = $2
		FOR UPDATE
		`, sc.DeviceGroupID, sc.Day)
	if err != nil {
		return err
	}

	for _, sib := range siblings {
		if sib.ID == sc.ID {
			continue
		}
		if sc.Default && sib.Default {
			return ErrDuplicateDefault
		}
		if sc.OverlapsWith(sib) {
			return ErrScheduleOverlap
		}
	}
	return nil
}

// ensureScheduleContentFeed gives an entry created without an explicit
// content feed its own disposable clone of the group's fallback feed.
func ensureScheduleContentFeed(tx *sqlx.Tx, groupID int, contentID *int, title string) (*int, error) {
	if contentID != nil {
		return contentID, nil
	}

	var g model.DeviceGroup
	if err := tx.Get(&g, `SELECT `+groupColumns+` FROM device_groups WHERE id = $1`, groupID); err != nil {
		return nil, err
	}
	if g.FeedID == nil {
		return nil, fmt.Errorf("device group %d has no feed to clone for new schedule entry", groupID)
	}

	var cf model.ContentFeed
	err := tx.Get(&cf, `
		INSERT INTO content_feeds (title, playlist_id, ticker_series_id, image_duration,
		                           web_duration, overlay_ticker, auto_created)
		SELECT $2, playlist_id, ticker_series_id, image_duration, web_duration, overlay_ticker, TRUE
		FROM content_feeds
		WHERE id = $1
		RETURNING `+feedColumns+`
		`, *g.FeedID, title)
	if err != nil {
		return nil, err
	}
	return &cf.ID, nil
}

func (s *pgStore) CreateScheduledContent(sc model.ScheduledContent) (model.ScheduledContent, error) {
	if err := sc.Validate(); err != nil {
		return model.ScheduledContent{}, err
	}

	tx, err := s.db.Beginx()
	if err != nil {
		return model.ScheduledContent{}, err
	}
	defer tx.Rollback()

	if err := checkScheduleClash(tx, sc); err != nil {
		return model.ScheduledContent{}, err
	}

	title := fmt.Sprintf("Content for group %d on %s", sc.DeviceGroupID, sc.Day)
	contentID, err := ensureScheduleContentFeed(tx, sc.DeviceGroupID, sc.ContentID, title)
	if err != nil {
		return model.ScheduledContent{}, err
	}

	var out model.ScheduledContent
	err = tx.Get(&out, `
		INSERT INTO scheduled_content (day, is_default, start_time, end_time, bring_to_front,
		                               content_id, device_group_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+scheduledColumns+`
		`, sc.Day, sc.Default, sc.StartTime, sc.EndTime, sc.BringToFront, contentID, sc.DeviceGroupID)
	if err != nil {
		log.Error().Err(err).Int("group_id", sc.DeviceGroupID).Msg("failed to create scheduled content")
		return model.ScheduledContent{}, err
	}

	if err := tx.Commit(); err != nil {
		return model.ScheduledContent{}, err
	}
	return out, nil
}

func (s *pgStore) UpdateScheduledContent(sc model.ScheduledContent) (model.ScheduledContent, error) {
	if err := sc.Validate(); err != nil {
		return model.ScheduledContent{}, err
	}

	tx, err := s.db.Beginx()
	if err != nil {
		return model.ScheduledContent{}, err
	}
	defer tx.Rollback()

	if err := checkScheduleClash(tx, sc); err != nil {
		return model.ScheduledContent{}, err
	}

	var out model.ScheduledContent
	err = tx.Get(&out, `
		UPDATE scheduled_content
		SET day = $2,
		is_default = $3,
		start_time = $4,
		end_time = $5,
		bring_to_front = $6,
		content_id = COALESCE($7, content_id)
		WHERE id = $1
		RETURNING `+scheduledColumns+`
		`, sc.ID, sc.Day, sc.Default, sc.StartTime, sc.EndTime, sc.BringToFront, sc.ContentID)
	if err != nil {
		log.Error().Err(err).Int("schedule_id", sc.ID).Msg("failed to update scheduled content")
		return model.ScheduledContent{}, err
	}

	if err := tx.Commit(); err != nil {
		return model.ScheduledContent{}, err
	}
	return out, nil
}

func (s *pgStore) DeleteScheduledContent(id int) error {
	_, err := s.db.Exec(`DELETE FROM scheduled_content WHERE id = $1`, id)
	if err != nil {
		log.Error().Err(err).Int("schedule_id", id).Msg("failed to delete scheduled content")
	}
	return err
}

// EnableScheduling creates a default entry for every day of the week that
// doesn't already have one, each with its own clone of the group feed.
func (s *pgStore) EnableScheduling(groupID int) error {
	for _, day := range model.Weekdays {
		existing, err := s.GetDefaultScheduledContent(groupID, day)
		if err != nil {
			return err
		}
		if existing != nil {
			continue
		}
		_, err = s.CreateScheduledContent(model.ScheduledContent{
			Day:           day,
			Default:       true,
			DeviceGroupID: groupID,
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *pgStore) DisableScheduling(groupID int) error {
	_, err := s.db.Exec(`DELETE FROM scheduled_content WHERE device_group_id = $1`, groupID)
	if err != nil {
		log.Error().Err(err).Int("group_id", groupID).Msg("failed to disable scheduling")
	}
	return err
}

// GetSpecialContent returns the override for the given calendar date, or
// (nil, nil).
func (s *pgStore) GetSpecialContent(groupID int, date time.Time) (*model.SpecialContent, error) {
	var sc model.SpecialContent
	err := s.db.Get(&sc, `
		SELECT `+specialColumns+`
		FROM special_content
		WHERE device_group_id = $1 AND date = $2::date
		`, groupID, date)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sc, nil
}

func (s *pgStore) GetSpecialContentByID(id int) (model.SpecialContent, error) {
	var sc model.SpecialContent
	err := s.db.Get(&sc, `
		SELECT `+specialColumns+`
		FROM special_content
		WHERE id = $1
		`, id)
	return sc, err
}

func (s *pgStore) ListSpecialContent(groupID int) ([]model.SpecialContent, error) {
	var entries []model.SpecialContent
	err := s.db.Select(&entries, `
		SELECT `+specialColumns+`
		FROM special_content
		WHERE device_group_id = $1
		ORDER BY date, id
		`, groupID)
	return entries, err
}

func (s *pgStore) CreateSpecialContent(sc model.SpecialContent) (model.SpecialContent, error) {
	tx, err := s.db.Beginx()
	if err != nil {
		return model.SpecialContent{}, err
	}
	defer tx.Rollback()

	var count int
	err = tx.Get(&count, `
		SELECT COUNT(*)
		FROM special_content
		WHERE device_group_id = $1 AND date = $2::date
		`, sc.DeviceGroupID, sc.Date)
	if err != nil {
		return model.SpecialContent{}, err
	}
	if count > 0 {
		return model.SpecialContent{}, ErrDuplicateSpecialContent
	}

	title := fmt.Sprintf("Content for group %d on %s", sc.DeviceGroupID, sc.Date.Format("2006-01-02"))
	contentID, err := ensureScheduleContentFeed(tx, sc.DeviceGroupID, sc.ContentID, title)
	if err != nil {
		return model.SpecialContent{}, err
	}

	var out model.SpecialContent
	err = tx.Get(&out, `
		INSERT INTO special_content (date, content_id, device_group_id)
		VALUES ($1::date, $2, $3)
		RETURNING `+specialColumns+`
		`, sc.Date, contentID, sc.DeviceGroupID)
	if err != nil {
		log.Error().Err(err).Int("group_id", sc.DeviceGroupID).Msg("failed to create special content")
		return model.SpecialContent{}, err
	}

	if err := tx.Commit(); err != nil {
		return model.SpecialContent{}, err
	}
	return out, nil
}

func (s *pgStore) DeleteSpecialContent(id int) error {
	_, err := s.db.Exec(`DELETE FROM special_content WHERE id = $1`, id)
	if err != nil {
		log.Error().Err(err).Int("special_content_id", id).Msg("failed to delete special content")
	}
	return err
}

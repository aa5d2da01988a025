package db

import (
	"database/sql"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/signoxe/server/internal/model"
)

const assetColumns = `id, name, type, owner_id, media_url, checksum, web_url, web_content,
	calendar_url, created_at`

const feedColumns = `id, title, playlist_id, ticker_series_id, image_duration, web_duration,
	overlay_ticker, auto_created`

func (s *pgStore) CreateAsset(a model.Asset) (model.Asset, error) {
	var out model.Asset
	err := s.db.Get(&out, `
		INSERT INTO assets (name, type, owner_id, media_url, checksum, web_url, web_content,
		                    calendar_url, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now())
		RETURNING `+assetColumns+`
		`, a.Name, a.Type, a.OwnerID, a.MediaURL, a.Checksum, a.WebURL, a.WebContent, a.CalendarURL)
	if err != nil {
		log.Error().Err(err).Str("type", string(a.Type)).Msg("failed to create asset")
		return model.Asset{}, err
	}
	return out, nil
}

func (s *pgStore) GetAssetByID(id int) (model.Asset, error) {
	var a model.Asset
	err := s.db.Get(&a, `
		SELECT `+assetColumns+`
		FROM assets
		WHERE id = $1
		`, id)
	return a, err
}

func (s *pgStore) ListAssetsByOwner(ownerID int) ([]model.Asset, error) {
	var assets []model.Asset
	err := s.db.Select(&assets, `
		SELECT `+assetColumns+`
		FROM assets
		WHERE owner_id = $1
		ORDER BY created_at DESC, id DESC
		`, ownerID)
	return assets, err
}

func (s *pgStore) DeleteAsset(id int) error {
	_, err := s.db.Exec(`DELETE FROM assets WHERE id = $1`, id)
	if err != nil {
		log.Error().Err(err).Int("asset_id", id).Msg("failed to delete asset")
	}
	return err
}

// GetFeedSnippetForDate returns the snippet published for the given date, or
// the evergreen snippet when no dated one exists. (nil, nil) means the feed
// has nothing to show today.
func (s *pgStore) GetFeedSnippetForDate(assetID int, date time.Time) (*model.FeedSnippet, error) {
	var sn model.FeedSnippet
	err := s.db.Get(&sn, `
		SELECT id, feed_asset_id, date, title, url, checksum, duration
		FROM feed_snippets
		WHERE feed_asset_id = $1 AND (date = $2::date OR date IS NULL)
		ORDER BY date NULLS LAST
		LIMIT 1
		`, assetID, date)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sn, nil
}

// GetCurrentCalendarEvent returns the event covering the given instant, or
// (nil, nil) when the calendar has no current event.
func (s *pgStore) GetCurrentCalendarEvent(assetID int, at time.Time) (*model.CalendarEvent, error) {
	var ev model.CalendarEvent
	err := s.db.Get(&ev, `
		SELECT id, calendar_asset_id, start_ts, end_ts, title, content
		FROM calendar_events
		WHERE calendar_asset_id = $1 AND start_ts <= $2 AND end_ts >= $2
		ORDER BY start_ts
		LIMIT 1
		`, assetID, at)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &ev, nil
}

// ReplaceCalendarEvents swaps in a freshly fetched event set for a calendar
// asset. Called by the calendar refresh worker, never inline in a request.
func (s *pgStore) ReplaceCalendarEvents(assetID int, events []model.CalendarEvent) error {
	tx, err := s.db.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM calendar_events WHERE calendar_asset_id = $1`, assetID); err != nil {
		return err
	}
	for _, ev := range events {
		if _, err := tx.Exec(`
			INSERT INTO calendar_events (calendar_asset_id, start_ts, end_ts, title, content)
			VALUES ($1, $2, $3, $4, $5)
			`, assetID, ev.Start, ev.End, ev.Title, ev.Content); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *pgStore) CreateContentFeed(title string, playlistID, tickerSeriesID *int, imageDuration, webDuration int, overlayTicker bool) (model.ContentFeed, error) {
	var cf model.ContentFeed
	err := s.db.Get(&cf, `
		INSERT INTO content_feeds (title, playlist_id, ticker_series_id, image_duration,
		                           web_duration, overlay_ticker, auto_created)
		VALUES ($1, $2, $3, $4, $5, $6, FALSE)
		RETURNING `+feedColumns+`
		`, title, playlistID, tickerSeriesID, imageDuration, webDuration, overlayTicker)
	if err != nil {
		log.Error().Err(err).Msg("failed to create content feed")
		return model.ContentFeed{}, err
	}
	return cf, nil
}

func (s *pgStore) GetContentFeedByID(id int) (model.ContentFeed, error) {
	var cf model.ContentFeed
	err := s.db.Get(&cf, `
		SELECT `+feedColumns+`
		FROM content_feeds
		WHERE id = $1
		`, id)
	return cf, err
}

func (s *pgStore) UpdateContentFeed(id int, title *string, playlistID, tickerSeriesID *int, imageDuration, webDuration *int, overlayTicker *bool) (model.ContentFeed, error) {
	var cf model.ContentFeed
	err := s.db.Get(&cf, `
		UPDATE content_feeds
		SET title = COALESCE($2, title),
		playlist_id = COALESCE($3, playlist_id),
		ticker_series_id = COALESCE($4, ticker_series_id),
		image_duration = COALESCE($5, image_duration),
		web_duration = COALESCE($6, web_duration),
		overlay_ticker = COALESCE($7, overlay_ticker)
		WHERE id = $1
		RETURNING `+feedColumns+`
		`, id, title, playlistID, tickerSeriesID, imageDuration, webDuration, overlayTicker)
	if err != nil {
		log.Error().Err(err).Int("feed_id", id).Msg("failed to update content feed")
	}
	return cf, err
}

func (s *pgStore) DeleteContentFeed(id int) error {
	_, err := s.db.Exec(`DELETE FROM content_feeds WHERE id = $1`, id)
	if err != nil {
		log.Error().Err(err).Int("feed_id", id).Msg("failed to delete content feed")
	}
	return err
}

// CloneContentFeed copies a feed into a new disposable row owned by a single
// schedule or special-content entry. The source row is never touched.
func (s *pgStore) CloneContentFeed(srcID int, title string) (model.ContentFeed, error) {
	var cf model.ContentFeed
	err := s.db.Get(&cf, `
		INSERT INTO content_feeds (title, playlist_id, ticker_series_id, image_duration,
		                           web_duration, overlay_ticker, auto_created)
		SELECT $2, playlist_id, ticker_series_id, image_duration, web_duration, overlay_ticker, TRUE
		FROM content_feeds
		WHERE id = $1
		RETURNING `+feedColumns+`
		`, srcID, title)
	if err != nil {
		log.Error().Err(err).Int("source_feed_id", srcID).Msg("failed to clone content feed")
		return model.ContentFeed{}, err
	}
	return cf, nil
}

package db

import (
	"github.com/rs/zerolog/log"

	"github.com/signoxe/server/internal/model"
)

const tickerColumns = `id, text, speed, font_family, font_size, colour, outline, background,
	position, ticker_series_id`

func (s *pgStore) CreateTickerSeries(name string, ownerID int) (model.TickerSeries, error) {
	var ts model.TickerSeries
	err := s.db.Get(&ts, `
		INSERT INTO ticker_series (name, owner_id)
		VALUES ($1, $2)
		RETURNING id, name, owner_id
		`, name, ownerID)
	if err != nil {
		log.Error().Err(err).Msg("failed to create ticker series")
		return model.TickerSeries{}, err
	}
	return ts, nil
}

func (s *pgStore) GetTickerSeriesByID(id int) (model.TickerSeries, error) {
	var ts model.TickerSeries
	err := s.db.Get(&ts, `SELECT id, name, owner_id FROM ticker_series WHERE id = $1`, id)
	return ts, err
}

func (s *pgStore) ListTickerSeriesByOwner(ownerID int) ([]model.TickerSeries, error) {
	var series []model.TickerSeries
	err := s.db.Select(&series, `
		SELECT id, name, owner_id
		FROM ticker_series
		WHERE owner_id = $1
		ORDER BY name, id
		`, ownerID)
	return series, err
}

func (s *pgStore) ListTickersBySeries(seriesID int) ([]model.Ticker, error) {
	var tickers []model.Ticker
	err := s.db.Select(&tickers, `
		SELECT `+tickerColumns+`
		FROM tickers
		WHERE ticker_series_id = $1
		ORDER BY position, id
		`, seriesID)
	return tickers, err
}

func (s *pgStore) GetTickerByID(id int) (model.Ticker, error) {
	var t model.Ticker
	err := s.db.Get(&t, `
		SELECT `+tickerColumns+`
		FROM tickers
		WHERE id = $1
		`, id)
	return t, err
}

// CreateTicker appends the ticker to its series when no position is given.
func (s *pgStore) CreateTicker(t model.Ticker) (model.Ticker, error) {
	var out model.Ticker
	err := s.db.Get(&out, `
		INSERT INTO tickers (text, speed, font_family, font_size, colour, outline, background,
		                     position, ticker_series_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7,
		        COALESCE(NULLIF($8, -1), (SELECT COALESCE(MAX(position) + 1, 0)
		                                  FROM tickers WHERE ticker_series_id = $9)),
		        $9)
		RETURNING `+tickerColumns+`
		`, t.Text, t.Speed, t.FontFamily, t.FontSize, t.Colour, t.Outline, t.Background,
		t.Position, t.TickerSeriesID)
	if err != nil {
		log.Error().Err(err).Int("series_id", t.TickerSeriesID).Msg("failed to create ticker")
		return model.Ticker{}, err
	}
	return out, nil
}

func (s *pgStore) UpdateTicker(id int, text *string, speed, position *int) (model.Ticker, error) {
	var t model.Ticker
	err := s.db.Get(&t, `
		UPDATE tickers
		SET text = COALESCE($2, text),
		speed = COALESCE($3, speed),
		position = COALESCE($4, position)
		WHERE id = $1
		RETURNING `+tickerColumns+`
		`, id, text, speed, position)
	if err != nil {
		log.Error().Err(err).Int("ticker_id", id).Msg("failed to update ticker")
	}
	return t, err
}

func (s *pgStore) DeleteTicker(id int) error {
	_, err := s.db.Exec(`DELETE FROM tickers WHERE id = $1`, id)
	if err != nil {
		log.Error().Err(err).Int("ticker_id", id).Msg("failed to delete ticker")
	}
	return err
}

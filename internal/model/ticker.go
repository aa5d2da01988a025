package model

// Ticker speed choices. Lower is faster.
const (
	TickerFastest = 100
	TickerFaster  = 200
	TickerFast    = 300
	TickerNormal  = 400
	TickerSlow    = 500
	TickerSlower  = 600
	TickerSlowest = 700
)

// TickerSeries is an ordered collection of tickers.
type TickerSeries struct {
	ID      int    `db:"id"       json:"id"`
	Name    string `db:"name"     json:"name"`
	OwnerID *int   `db:"owner_id" json:"owner_id,omitempty"`
}

// Ticker is a single scrolling text entry in a series.
type Ticker struct {
	ID             int     `db:"id"               json:"id"`
	Text           string  `db:"text"             json:"text"`
	Speed          int     `db:"speed"            json:"speed"`
	FontFamily     string  `db:"font_family"      json:"font_family"`
	FontSize       float64 `db:"font_size"        json:"font_size"`
	Colour         string  `db:"colour"           json:"colour"`
	Outline        string  `db:"outline"          json:"outline"`
	Background     string  `db:"background"       json:"background"`
	Position       int     `db:"position"         json:"position"`
	TickerSeriesID int     `db:"ticker_series_id" json:"ticker_series_id"`
}

// Dict returns the wire representation of the ticker as it appears in a feed.
func (t Ticker) Dict() map[string]any {
	return map[string]any{
		"text":       t.Text,
		"speed":      t.Speed,
		"fontfamily": t.FontFamily,
		"fontsize":   t.FontSize,
		"color":      t.Colour,
		"outline":    t.Outline,
		"background": t.Background,
	}
}

package feed

import (
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/signoxe/server/internal/model"
)

// Assemble builds the renderable payload for a content feed:
//
//	{playlist: [...], tickers: [...], settings: {...}}
//
// Items that have expired, have nothing to show right now, or are invalid
// are skipped rather than failing the whole feed. A feed without a playlist
// is a configuration error and returns ErrPlaylistNotConfigured.
func Assemble(s Store, cf model.ContentFeed, at time.Time) (map[string]any, error) {
	if cf.PlaylistID == nil {
		return nil, ErrPlaylistNotConfigured
	}

	items, err := s.ListPlaylistItems(*cf.PlaylistID)
	if err != nil {
		return nil, err
	}

	playlist := make([]map[string]any, 0, len(items))
	for _, item := range items {
		if item.Expired(at) {
			continue
		}
		asset, err := s.GetAssetByID(item.AssetID)
		if err != nil {
			return nil, err
		}
		dict, err := AssetDict(s, asset, at)
		if errors.Is(err, ErrNoContent) || errors.Is(err, ErrInvalidAsset) {
			log.Debug().Err(err).Int("asset_id", asset.ID).Msg("skipping playlist item")
			continue
		}
		if err != nil {
			return nil, err
		}
		// Duration precedence: asset, playlist item, then the feed's
		// per-type default. Videos without any of those play to their
		// own length.
		if _, ok := dict["duration"]; !ok {
			switch {
			case item.Duration != nil:
				dict["duration"] = *item.Duration
			case dict["type"] == "image":
				dict["duration"] = cf.ImageDuration
			case dict["type"] == "web", dict["type"] == "calendar":
				dict["duration"] = cf.WebDuration
			}
		}
		playlist = append(playlist, dict)
	}

	tickers := make([]map[string]any, 0)
	if cf.TickerSeriesID != nil {
		ts, err := s.ListTickersBySeries(*cf.TickerSeriesID)
		if err != nil {
			return nil, err
		}
		for _, t := range ts {
			tickers = append(tickers, t.Dict())
		}
	}

	return map[string]any{
		"playlist": playlist,
		"tickers":  tickers,
		"settings": cf.Settings(),
	}, nil
}

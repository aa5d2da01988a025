package feed

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/signoxe/server/internal/model"
)

func md5hex(s string) string {
	sum := md5.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}

// AssetDict resolves an asset to its wire representation at the given
// instant. FEED and CALENDAR assets are time dependent; they return
// ErrNoContent when nothing applies right now. ErrInvalidAsset means the
// asset row is missing data its type requires.
//
// A "duration" key is present only when the asset supplies its own;
// otherwise the assembler falls back to the playlist item's duration.
func AssetDict(s Store, a model.Asset, at time.Time) (map[string]any, error) {
	switch a.Type {
	case model.AssetImage, model.AssetVideo:
		if a.MediaURL == nil || a.Checksum == nil {
			return nil, ErrInvalidAsset
		}
		return map[string]any{
			"type":     strings.ToLower(string(a.Type)),
			"url":      *a.MediaURL,
			"checksum": *a.Checksum,
		}, nil

	case model.AssetWeb:
		// Hosted web content is rendered to storage out of band; until the
		// render lands MediaURL is empty and the asset is not yet servable.
		var url string
		switch {
		case a.WebURL != nil && *a.WebURL != "":
			url = *a.WebURL
		case a.MediaURL != nil && *a.MediaURL != "":
			url = *a.MediaURL
		default:
			return nil, ErrInvalidAsset
		}
		checksum := md5hex(url)
		if a.Checksum != nil && *a.Checksum != "" {
			checksum = *a.Checksum
		}
		return map[string]any{
			"type":     "web",
			"url":      url,
			"checksum": checksum,
		}, nil

	case model.AssetFeed:
		sn, err := s.GetFeedSnippetForDate(a.ID, at)
		if err != nil {
			return nil, err
		}
		if sn == nil {
			return nil, ErrNoContent
		}
		dict := map[string]any{
			"type":     "web",
			"url":      sn.URL,
			"checksum": sn.Checksum,
		}
		if sn.Duration != nil {
			dict["duration"] = *sn.Duration
		}
		return dict, nil

	case model.AssetCalendar:
		if a.CalendarURL == nil || *a.CalendarURL == "" {
			return nil, ErrInvalidAsset
		}
		ev, err := s.GetCurrentCalendarEvent(a.ID, at)
		if err != nil {
			return nil, err
		}
		if ev == nil {
			return nil, ErrNoContent
		}
		return map[string]any{
			"type":     "calendar",
			"title":    ev.Title,
			"content":  ev.Content,
			"checksum": md5hex(ev.Title + ev.Content),
		}, nil
	}
	return nil, fmt.Errorf("%w: unknown asset type %q", ErrInvalidAsset, a.Type)
}

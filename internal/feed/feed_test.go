package feed

import (
	"fmt"
	"time"

	"github.com/signoxe/server/internal/model"
)

// stubStore backs the pipeline tests with in-memory data.
type stubStore struct {
	special *model.SpecialContent
	timed   *model.ScheduledContent
	def     *model.ScheduledContent
	feeds   map[int]model.ContentFeed
	items   []model.PlaylistItem
	assets  map[int]model.Asset
	snippet *model.FeedSnippet
	event   *model.CalendarEvent
	tickers []model.Ticker
	pm      *model.PriorityMessage

	deactivated bool
}

func (s *stubStore) GetSpecialContent(int, time.Time) (*model.SpecialContent, error) {
	return s.special, nil
}

func (s *stubStore) GetScheduledContentAt(_ int, _ model.Weekday, at model.TimeOfDay) (*model.ScheduledContent, error) {
	if s.timed != nil && s.timed.Contains(at) {
		return s.timed, nil
	}
	return nil, nil
}

func (s *stubStore) GetDefaultScheduledContent(int, model.Weekday) (*model.ScheduledContent, error) {
	return s.def, nil
}

func (s *stubStore) GetContentFeedByID(id int) (model.ContentFeed, error) {
	cf, ok := s.feeds[id]
	if !ok {
		return model.ContentFeed{}, fmt.Errorf("content feed %d not found", id)
	}
	return cf, nil
}

func (s *stubStore) ListPlaylistItems(int) ([]model.PlaylistItem, error) {
	return s.items, nil
}

func (s *stubStore) GetAssetByID(id int) (model.Asset, error) {
	a, ok := s.assets[id]
	if !ok {
		return model.Asset{}, fmt.Errorf("asset %d not found", id)
	}
	return a, nil
}

func (s *stubStore) GetFeedSnippetForDate(int, time.Time) (*model.FeedSnippet, error) {
	return s.snippet, nil
}

func (s *stubStore) GetCurrentCalendarEvent(int, time.Time) (*model.CalendarEvent, error) {
	return s.event, nil
}

func (s *stubStore) ListTickersBySeries(int) ([]model.Ticker, error) {
	return s.tickers, nil
}

func (s *stubStore) GetPriorityMessage(int) (*model.PriorityMessage, error) {
	return s.pm, nil
}

func (s *stubStore) DeactivatePriorityMessage(int) error {
	s.deactivated = true
	if s.pm != nil {
		s.pm.ActivatedAt = nil
	}
	return nil
}

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }

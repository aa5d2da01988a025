package feed

import (
	"time"

	"github.com/signoxe/server/internal/model"
)

// ResolveContentFeed picks the content feed a group should display at the
// given instant. First match wins:
//
//  1. special content for today's date
//  2. timed scheduled content whose window contains the current time
//  3. the day's default scheduled content
//  4. the group's own fallback feed
//
// Reaching the fallback on a group with a schedule means the schedule has a
// gap; that is served, not failed. ErrNotConfigured is returned only when
// nothing at all points at a feed.
func ResolveContentFeed(s Store, group model.DeviceGroup, at time.Time) (model.ContentFeed, error) {
	feedID := group.FeedID

	special, err := s.GetSpecialContent(group.ID, at)
	if err != nil {
		return model.ContentFeed{}, err
	}
	if special != nil && special.ContentID != nil {
		feedID = special.ContentID
	} else {
		day := model.WeekdayOf(at)
		timed, err := s.GetScheduledContentAt(group.ID, day, model.TimeOfDayOf(at))
		if err != nil {
			return model.ContentFeed{}, err
		}
		if timed != nil && timed.ContentID != nil {
			feedID = timed.ContentID
		} else {
			def, err := s.GetDefaultScheduledContent(group.ID, day)
			if err != nil {
				return model.ContentFeed{}, err
			}
			if def != nil && def.ContentID != nil {
				feedID = def.ContentID
			}
		}
	}

	if feedID == nil {
		return model.ContentFeed{}, ErrNotConfigured
	}
	return s.GetContentFeedByID(*feedID)
}

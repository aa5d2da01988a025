package feed

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/signoxe/server/internal/model"
)

func activatedMessage(at time.Time, minutes int, assetID int) *model.PriorityMessage {
	return &model.PriorityMessage{
		ID:              1,
		DeviceGroupID:   3,
		ActivatedAt:     &at,
		DurationMinutes: &minutes,
		MessageAssetID:  &assetID,
	}
}

func TestPriorityOverlayActive(t *testing.T) {
	activated := tuesdayNoon.Add(-14 * time.Minute)
	s := &stubStore{
		pm:     activatedMessage(activated, 15, 10),
		assets: map[int]model.Asset{10: imageAsset(10, "https://cdn/alert.png")},
	}
	group := model.DeviceGroup{ID: 3}

	overlay, err := ComputePriorityOverlay(s, group, tuesdayNoon)
	require.NoError(t, err)
	assert.True(t, overlay.BringToFront)
	require.NotNil(t, overlay.PriorityMessage)
	assert.Equal(t, "https://cdn/alert.png", overlay.PriorityMessage["url"])
	assert.False(t, s.deactivated)
}

func TestPriorityOverlayExpiresOnRead(t *testing.T) {
	activated := tuesdayNoon.Add(-16 * time.Minute)
	s := &stubStore{
		pm:     activatedMessage(activated, 15, 10),
		assets: map[int]model.Asset{10: imageAsset(10, "https://cdn/alert.png")},
	}
	group := model.DeviceGroup{ID: 3}

	overlay, err := ComputePriorityOverlay(s, group, tuesdayNoon)
	require.NoError(t, err)
	assert.False(t, overlay.BringToFront)
	assert.Nil(t, overlay.PriorityMessage)
	assert.True(t, s.deactivated, "reading an expired message clears it")
	assert.Nil(t, s.pm.ActivatedAt)
}

func TestPriorityOverlayIndefinite(t *testing.T) {
	activated := tuesdayNoon.Add(-72 * time.Hour)
	s := &stubStore{
		pm:     activatedMessage(activated, 0, 10),
		assets: map[int]model.Asset{10: imageAsset(10, "https://cdn/alert.png")},
	}
	group := model.DeviceGroup{ID: 3}

	overlay, err := ComputePriorityOverlay(s, group, tuesdayNoon)
	require.NoError(t, err)
	assert.True(t, overlay.BringToFront, "duration zero runs until cleared")
	assert.False(t, s.deactivated)
}

func TestPriorityOverlayUnset(t *testing.T) {
	group := model.DeviceGroup{ID: 3}

	cases := map[string]*model.PriorityMessage{
		"no row":          nil,
		"never activated": {ID: 1, DeviceGroupID: 3, DurationMinutes: intPtr(15), MessageAssetID: intPtr(10)},
		"no duration": {ID: 1, DeviceGroupID: 3, ActivatedAt: &tuesdayNoon,
			MessageAssetID: intPtr(10)},
		"no asset": {ID: 1, DeviceGroupID: 3, ActivatedAt: &tuesdayNoon,
			DurationMinutes: intPtr(15)},
	}
	for name, pm := range cases {
		t.Run(name, func(t *testing.T) {
			s := &stubStore{pm: pm}
			overlay, err := ComputePriorityOverlay(s, group, tuesdayNoon)
			require.NoError(t, err)
			assert.False(t, overlay.BringToFront)
			assert.Nil(t, overlay.PriorityMessage)
		})
	}
}

func TestPriorityOverlayScheduleFallback(t *testing.T) {
	group := model.DeviceGroup{ID: 3}

	s := &stubStore{
		timed: &model.ScheduledContent{
			Day:          model.Tuesday,
			StartTime:    mustTimeOfDay(t, "11:00"),
			EndTime:      mustTimeOfDay(t, "13:00"),
			BringToFront: true,
			ContentID:    intPtr(2),
		},
	}
	overlay, err := ComputePriorityOverlay(s, group, tuesdayNoon)
	require.NoError(t, err)
	assert.True(t, overlay.BringToFront, "flag comes from the timed entry in effect")
	assert.Nil(t, overlay.PriorityMessage)

	// with no timed entry the default carries the flag
	s = &stubStore{
		def: &model.ScheduledContent{Day: model.Tuesday, Default: true, BringToFront: true, ContentID: intPtr(2)},
	}
	overlay, err = ComputePriorityOverlay(s, group, tuesdayNoon)
	require.NoError(t, err)
	assert.True(t, overlay.BringToFront)
}

func TestOverlayMerge(t *testing.T) {
	payload := map[string]any{"playlist": []map[string]any{}}

	Overlay{BringToFront: true, PriorityMessage: map[string]any{"type": "image"}}.Merge(payload)
	assert.Equal(t, true, payload["bringToFront"])
	assert.NotNil(t, payload["priorityMessage"])

	Overlay{}.Merge(payload)
	assert.Equal(t, false, payload["bringToFront"])
	assert.Nil(t, payload["priorityMessage"], "cleared overlay nulls the message")
}

package feed

import (
	"time"

	"github.com/rs/zerolog/log"

	"github.com/signoxe/server/internal/model"
)

// Overlay is the priority layer merged into the top level of a feed
// payload.
type Overlay struct {
	BringToFront    bool           `json:"bringToFront"`
	PriorityMessage map[string]any `json:"priorityMessage"`
}

// active reports whether the message is running at the given instant. A
// message missing any of activation time, duration or asset is unset.
// Duration zero means active until explicitly cleared.
func active(pm *model.PriorityMessage, at time.Time) bool {
	if pm == nil || pm.ActivatedAt == nil || pm.DurationMinutes == nil || pm.MessageAssetID == nil {
		return false
	}
	if *pm.DurationMinutes == 0 {
		return true
	}
	deadline := pm.ActivatedAt.Add(time.Duration(*pm.DurationMinutes) * time.Minute)
	return !at.After(deadline)
}

// ComputePriorityOverlay evaluates the group's priority message at the given
// instant. Reading an expired message deactivates it, so the next activation
// starts from a clean row. With no active message the bringToFront flag
// falls back to the scheduled entry currently in effect.
func ComputePriorityOverlay(s Store, group model.DeviceGroup, at time.Time) (Overlay, error) {
	pm, err := s.GetPriorityMessage(group.ID)
	if err != nil {
		return Overlay{}, err
	}

	if pm != nil && pm.ActivatedAt != nil && !active(pm, at) {
		if err := s.DeactivatePriorityMessage(group.ID); err != nil {
			return Overlay{}, err
		}
		log.Info().Int("group_id", group.ID).Msg("priority message expired, deactivated")
		pm.ActivatedAt = nil
	}

	if active(pm, at) {
		asset, err := s.GetAssetByID(*pm.MessageAssetID)
		if err != nil {
			return Overlay{}, err
		}
		dict, err := AssetDict(s, asset, at)
		if err != nil {
			return Overlay{}, err
		}
		return Overlay{BringToFront: true, PriorityMessage: dict}, nil
	}

	bringToFront := false
	day := model.WeekdayOf(at)
	timed, err := s.GetScheduledContentAt(group.ID, day, model.TimeOfDayOf(at))
	if err != nil {
		return Overlay{}, err
	}
	if timed != nil {
		bringToFront = timed.BringToFront
	} else {
		def, err := s.GetDefaultScheduledContent(group.ID, day)
		if err != nil {
			return Overlay{}, err
		}
		if def != nil {
			bringToFront = def.BringToFront
		}
	}
	return Overlay{BringToFront: bringToFront}, nil
}

// Merge writes the overlay's fields into the top level of a feed payload.
func (o Overlay) Merge(payload map[string]any) {
	payload["bringToFront"] = o.BringToFront
	if o.PriorityMessage != nil {
		payload["priorityMessage"] = o.PriorityMessage
	} else {
		payload["priorityMessage"] = nil
	}
}

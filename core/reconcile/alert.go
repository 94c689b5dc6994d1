package reconcile

import (
	"time"

	"github.com/google/uuid"
)

// AlertTrigger decides whether an event's change volume needs human review.
type AlertTrigger struct {
	// Threshold is exclusive: more than Threshold observations raise an alert.
	Threshold int
}

// MaybeAlert returns a pending alert carrying the change log verbatim when
// observed exceeds the threshold, or nil otherwise.
func (t AlertTrigger) MaybeAlert(observed int, changes []ChangeEntry, ownerID, deviceID string, ts time.Time) *Alert {
	if observed <= t.Threshold {
		return nil
	}

	bundled := make([]ChangeEntry, len(changes))
	copy(bundled, changes)

	return &Alert{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		DeviceID:  deviceID,
		Timestamp: ts,
		Changes:   bundled,
		Status:    AlertStatusPending,
	}
}

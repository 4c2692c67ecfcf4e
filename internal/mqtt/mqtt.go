// Package mqtt publishes the valve status to an MQTT broker.
package mqtt

import (
	"encoding/json"
	"time"

	"irrigation_valve/internal/models"
)

// Sub-topics below the configured base topic.
const (
	StateSubtopic        = "state"
	AvailabilitySubtopic = "availability"
)

const (
	availabilityOnline  = "online"
	availabilityOffline = "offline"
)

// Publisher publishes valve messages to the broker.
type Publisher interface {
	// PublishState sends a retained status document.
	PublishState(payload []byte) error

	// PublishAvailability sends the retained online/offline marker.
	PublishAvailability(online bool) error

	// Close announces offline and disconnects.
	Close() error
}

// StatePayload is the JSON document published on <topic>/state.
type StatePayload struct {
	Timestamp string        `json:"timestamp"`
	Reason    string        `json:"reason"`
	Valve     string        `json:"valve"`
	Status    models.Status `json:"status"`
}

// FormatStatePayload creates the JSON payload for a committed transition.
func FormatStatePayload(st models.Status, reason string) ([]byte, error) {
	ts := st.Now
	if ts.IsZero() {
		ts = time.Now()
	}
	return json.Marshal(StatePayload{
		Timestamp: ts.UTC().Format(time.RFC3339),
		Reason:    reason,
		Valve:     st.ValveLabel(),
		Status:    st,
	})
}

func availabilityPayload(online bool) []byte {
	if online {
		return []byte(availabilityOnline)
	}
	return []byte(availabilityOffline)
}

func join(base, sub string) string {
	return base + "/" + sub
}

// websocket/device_events.go
package websocket

import (
	"encoding/json"
	"log"
	"time"
)

// DeviceEvent is a real-time notification about a device's assignment state.
type DeviceEvent struct {
	Type         string      `json:"type"` // ASSIGNMENT_CREATED, HANDOVER_COMPLETED
	SerialNumber string      `json:"serialNumber"`
	BadgeNumber  string      `json:"badgeNumber,omitempty"`
	Data         interface{} `json:"data,omitempty"`
	Timestamp    time.Time   `json:"timestamp"`
}

// BroadcastDeviceEvent sends the event to all connected clients. Clients
// that cannot keep up are dropped rather than blocking the sender.
func BroadcastDeviceEvent(event DeviceEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("Failed to marshal device event: %v", err)
		return
	}

	hub.mutex.Lock()
	defer hub.mutex.Unlock()

	for c := range hub.clients {
		select {
		case c.send <- data:
		default:
			close(c.send)
			delete(hub.clients, c)
		}
	}
}

// SendAssignmentCreated broadcasts a new custody assignment.
func SendAssignmentCreated(serialNumber, badgeNumber string, data interface{}) {
	BroadcastDeviceEvent(DeviceEvent{
		Type:         "ASSIGNMENT_CREATED",
		SerialNumber: serialNumber,
		BadgeNumber:  badgeNumber,
		Data:         data,
		Timestamp:    time.Now(),
	})
}

// SendHandoverCompleted broadcasts a closed assignment.
func SendHandoverCompleted(serialNumber, badgeNumber string, handoverDate time.Time) {
	BroadcastDeviceEvent(DeviceEvent{
		Type:         "HANDOVER_COMPLETED",
		SerialNumber: serialNumber,
		BadgeNumber:  badgeNumber,
		Data: map[string]interface{}{
			"handoverDate": handoverDate.Format("2006-01-02"),
		},
		Timestamp: time.Now(),
	})
}

// models/assignment.go
package models

import "time"

// Assignment is one custody period linking a user (by badge number) to a
// device. It lives embedded in the device document under the "users" array,
// in insertion order. An assignment starts open and is closed exactly once
// by a handover; there is no reopen path.
type Assignment struct {
	BadgeNumber  string       `bson:"badgeNumber" json:"badgeNumber"`
	ReceivedDate Date         `bson:"receivedDate" json:"receivedDate"`
	HandoverDate HandoverDate `bson:"handoverDate" json:"handoverDate"`
	Note         string       `bson:"note,omitempty" json:"note,omitempty"`
	CreatedAt    time.Time    `bson:"createdAt" json:"createdAt"`
}

// Open reports whether the user still holds the device.
func (a *Assignment) Open() bool { return a.HandoverDate.Open() }

// models/device.go
package models

import (
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Device struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SerialNumber  string             `bson:"serialNumber" json:"serialNumber"`
	Category      string             `bson:"category" json:"category"`
	Model         string             `bson:"model,omitempty" json:"model,omitempty"`
	Description   string             `bson:"description,omitempty" json:"description,omitempty"`
	Manufacture   string             `bson:"manufacture,omitempty" json:"manufacture,omitempty"`
	Status        string             `bson:"status,omitempty" json:"status,omitempty"`
	InvoiceNumber string             `bson:"invoiceNumber,omitempty" json:"invoiceNumber,omitempty"`
	Supplier      string             `bson:"supplier,omitempty" json:"supplier,omitempty"`
	Assignments   []Assignment       `bson:"users,omitempty" json:"users"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
}

// CurrentHolder returns the open assignment with the most recent received
// date, or nil when nobody holds the device. Multiple open assignments are a
// data-integrity violation in correct operation, but imported history can
// contain them, so this is a tolerant read: ties on received date break by
// list position, last wins.
func (d *Device) CurrentHolder() *Assignment {
	var current *Assignment
	for i := range d.Assignments {
		a := &d.Assignments[i]
		if !a.Open() {
			continue
		}
		if current == nil || !a.ReceivedDate.Before(current.ReceivedDate) {
			current = a
		}
	}
	return current
}

// History returns the closed assignments ordered by received date ascending,
// for audit display. Open assignments are excluded.
func (d *Device) History() []Assignment {
	history := make([]Assignment, 0, len(d.Assignments))
	for _, a := range d.Assignments {
		if !a.Open() {
			history = append(history, a)
		}
	}
	sort.SliceStable(history, func(i, j int) bool {
		return history[i].ReceivedDate.Before(history[j].ReceivedDate)
	})
	return history
}

// HasBadge reports whether badgeNumber appears anywhere in the device's
// assignment history, open or closed. Import dedupe keys on this.
func (d *Device) HasBadge(badgeNumber string) bool {
	for i := range d.Assignments {
		if d.Assignments[i].BadgeNumber == badgeNumber {
			return true
		}
	}
	return false
}

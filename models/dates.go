// models/dates.go
package models

import (
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

// Date formats accepted from CSV imports and request payloads. Historical
// data mixes spellings, so parsing is permissive.
var dateFormats = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006/01/02",
	"02-01-2006",
}

// ParseDate parses a date string using the accepted formats.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date format: %q", s)
}

// isOpenSentinel reports whether a stored handover value means "still open".
// Legacy documents use null, "" or the literal string "NULL" interchangeably.
func isOpenSentinel(s string) bool {
	s = strings.TrimSpace(s)
	return s == "" || strings.EqualFold(s, "NULL")
}

// ParseHandover interprets an imported handover field: the open sentinels
// produce the open state, anything else must parse as a date.
func ParseHandover(s string) (HandoverDate, error) {
	if isOpenSentinel(s) {
		return HandoverDate{}, nil
	}
	t, err := ParseDate(s)
	if err != nil {
		return HandoverDate{}, err
	}
	return ClosedOn(t), nil
}

// Date is a received date. Stored documents carry either a bson datetime or
// a raw date string (CSV imports wrote strings), so decoding accepts both.
// The zero value means "unknown" and sorts before every real date.
type Date struct {
	Time time.Time
}

func (d Date) IsZero() bool { return d.Time.IsZero() }

// Before orders dates; an unknown date sorts first.
func (d Date) Before(other Date) bool { return d.Time.Before(other.Time) }

func (d Date) MarshalBSONValue() (bsontype.Type, []byte, error) {
	if d.Time.IsZero() {
		return bson.TypeNull, nil, nil
	}
	return bson.MarshalValue(d.Time.UTC())
}

func (d *Date) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	rv := bson.RawValue{Type: t, Value: data}
	switch t {
	case bson.TypeNull, bson.TypeUndefined:
		*d = Date{}
		return nil
	case bson.TypeDateTime:
		*d = Date{Time: rv.Time().UTC()}
		return nil
	case bson.TypeString:
		s := strings.TrimSpace(rv.StringValue())
		if s == "" {
			*d = Date{}
			return nil
		}
		parsed, err := ParseDate(s)
		if err != nil {
			return err
		}
		*d = Date{Time: parsed}
		return nil
	}
	return fmt.Errorf("cannot decode %v into a date", t)
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.Time.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.Time.Format("2006-01-02") + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "null" || s == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = Date{Time: parsed}
	return nil
}

// HandoverDate is the tagged open/closed state of an assignment. Legacy
// documents spell "open" three ways (null, "", "NULL"); all collapse to the
// single open state on decode, and open always encodes back as bson null so
// the sentinel zoo never grows.
type HandoverDate struct {
	Valid bool // false = assignment still open
	Time  time.Time
}

// ClosedOn builds a closed handover state.
func ClosedOn(t time.Time) HandoverDate {
	return HandoverDate{Valid: true, Time: t.UTC()}
}

// Open reports whether the assignment has not been handed over.
func (h HandoverDate) Open() bool { return !h.Valid }

func (h HandoverDate) MarshalBSONValue() (bsontype.Type, []byte, error) {
	if !h.Valid {
		return bson.TypeNull, nil, nil
	}
	return bson.MarshalValue(h.Time.UTC())
}

func (h *HandoverDate) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	rv := bson.RawValue{Type: t, Value: data}
	switch t {
	case bson.TypeNull, bson.TypeUndefined:
		*h = HandoverDate{}
		return nil
	case bson.TypeDateTime:
		*h = ClosedOn(rv.Time())
		return nil
	case bson.TypeString:
		s := rv.StringValue()
		if isOpenSentinel(s) {
			*h = HandoverDate{}
			return nil
		}
		parsed, err := ParseDate(s)
		if err != nil {
			return err
		}
		*h = ClosedOn(parsed)
		return nil
	}
	return fmt.Errorf("cannot decode %v into a handover date", t)
}

func (h HandoverDate) MarshalJSON() ([]byte, error) {
	if !h.Valid {
		return []byte("null"), nil
	}
	return []byte(`"` + h.Time.Format("2006-01-02") + `"`), nil
}

func (h *HandoverDate) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "null" || isOpenSentinel(s) {
		*h = HandoverDate{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*h = ClosedOn(parsed)
	return nil
}

// internal/domain/entity/flight_record.go
package entity

import (
	"errors"
	"strings"
	"time"
)

// Flight links a client to an airline for one journey
type Flight struct {
	Base
	ClientID  int    `json:"ClientID" validate:"gt=0,lte=9007199254740991"`
	AirlineID int    `json:"AirlineID" validate:"gt=0,lte=9007199254740991"`
	Date      string `json:"Date" validate:"flightdate"`
	StartCity string `json:"StartCity" validate:"notblank"`
	EndCity   string `json:"EndCity" validate:"notblank"`
}

func (f Flight) RecordID() int    { return f.ID }
func (f Flight) RecordKind() Kind { return KindFlight }

func (f Flight) Fields() map[string]any {
	return map[string]any{
		"ID":        f.ID,
		"Type":      string(KindFlight),
		"ClientID":  f.ClientID,
		"AirlineID": f.AirlineID,
		"Date":      f.Date,
		"StartCity": f.StartCity,
		"EndCity":   f.EndCity,
	}
}

func (f Flight) withBase(base Base) Record {
	f.Base = base
	return f
}

// Timestamps carry a 'T' separator; anything else must be a plain calendar date.
var flightTimestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04",
	"2006-01-02T15Z07:00",
	"2006-01-02T15",
}

// Month and day may drop their leading zero
const flightDateLayout = "2006-1-2"

var errFlightDate = errors.New("unrecognised flight date")

// ParseFlightDate parses a YYYY-MM-DD date or an ISO 8601 timestamp with
// at least an hour
func ParseFlightDate(value string) (time.Time, error) {
	if !strings.Contains(value, "T") {
		return time.Parse(flightDateLayout, value)
	}
	for _, layout := range flightTimestampLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errFlightDate
}

// internal/domain/entity/record.go
package entity

import (
	"strings"
)

// Kind identifies which of the three record shapes a Record carries
type Kind string

const (
	KindClient  Kind = "client"
	KindAirline Kind = "airline"
	KindFlight  Kind = "flight"
)

// Kinds lists every known record kind in display order
var Kinds = []Kind{KindClient, KindAirline, KindFlight}

// ParseKind resolves a Type discriminator, ignoring case and surrounding space
func ParseKind(value string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(value))); k {
	case KindClient, KindAirline, KindFlight:
		return k, nil
	}
	return "", &UnknownTypeError{Value: value}
}

// Record is one Client, Airline or Flight. The set of implementations is closed.
type Record interface {
	RecordID() int
	RecordKind() Kind
	// Fields returns the record in internal field naming, ID and Type included
	Fields() map[string]any

	withBase(base Base) Record
}

// MaxID is the largest record ID, the largest integer a JSON number holds exactly
const MaxID = 1<<53 - 1

// Base holds the fields shared by every record kind
type Base struct {
	ID   int  `json:"ID" validate:"gt=0,lte=9007199254740991"`
	Type Kind `json:"Type"`
}

// WithID returns a copy of r carrying the given ID
func WithID(r Record, id int) Record {
	return r.withBase(Base{ID: id, Type: r.RecordKind()})
}

// Normalize returns a copy of r whose Type equals its kind
func Normalize(r Record) Record {
	return r.withBase(Base{ID: r.RecordID(), Type: r.RecordKind()})
}

package entity

// Airline represents an airline entity
type Airline struct {
	Base
	CompanyName string `json:"CompanyName" validate:"notblank"`
}

func (a Airline) RecordID() int    { return a.ID }
func (a Airline) RecordKind() Kind { return KindAirline }

func (a Airline) Fields() map[string]any {
	return map[string]any{
		"ID":          a.ID,
		"Type":        string(KindAirline),
		"CompanyName": a.CompanyName,
	}
}

func (a Airline) withBase(base Base) Record {
	a.Base = base
	return a
}

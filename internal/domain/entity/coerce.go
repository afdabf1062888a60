package entity

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FromMap builds a record from a payload whose Type field names its kind.
// Either field spelling is accepted.
func FromMap(data map[string]any) (Record, error) {
	kind, err := ParseKind(toString(data["Type"]))
	if err != nil {
		return nil, err
	}
	return FromMapAs(kind, data)
}

// FromMapAs builds a record of the given kind. Any Type in data is ignored and
// numeric fields are coerced; a value that cannot be read as an integer fails.
func FromMapAs(kind Kind, data map[string]any) (Record, error) {
	external := IsExternal(kind, data)
	get := func(internal string) any {
		return lookupField(kind, data, internal, external)
	}

	id, err := toInt("ID", get("ID"))
	if err != nil {
		return nil, err
	}
	base := Base{ID: id, Type: kind}

	switch kind {
	case KindClient:
		return Client{
			Base:        base,
			Name:        toString(get("Name")),
			PhoneNumber: toString(get("PhoneNumber")),
			Address1:    toString(get("Address1")),
			Address2:    toString(get("Address2")),
			Address3:    toString(get("Address3")),
			City:        toString(get("City")),
			State:       toString(get("State")),
			ZipCode:     toString(get("ZipCode")),
			Country:     toString(get("Country")),
		}, nil
	case KindAirline:
		return Airline{
			Base:        base,
			CompanyName: toString(get("CompanyName")),
		}, nil
	case KindFlight:
		clientID, err := toInt("ClientID", get("ClientID"))
		if err != nil {
			return nil, err
		}
		airlineID, err := toInt("AirlineID", get("AirlineID"))
		if err != nil {
			return nil, err
		}
		return Flight{
			Base:      base,
			ClientID:  clientID,
			AirlineID: airlineID,
			Date:      toString(get("Date")),
			StartCity: toString(get("StartCity")),
			EndCity:   toString(get("EndCity")),
		}, nil
	}
	return nil, &UnknownTypeError{Value: string(kind)}
}

// toInt coerces a decoded JSON or form value to an int. Missing and empty
// values read as zero, which callers treat as "not supplied".
func toInt(field string, value any) (int, error) {
	invalid := func() (int, error) {
		return 0, &ValidationError{Field: field, Reason: fmt.Sprintf("must be an integer, got %v", value)}
	}

	switch v := value.(type) {
	case nil:
		return 0, nil
	case int:
		return v, nil
	case int32:
		return int(v), nil
	case int64:
		return int(v), nil
	case uint:
		if v > math.MaxInt {
			return invalid()
		}
		return int(v), nil
	case float64:
		if v != math.Trunc(v) || v < math.MinInt || v >= math.MaxInt {
			return invalid()
		}
		return int(v), nil
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return int(n), nil
		}
		f, err := v.Float64()
		if err != nil {
			return invalid()
		}
		return toInt(field, f)
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return 0, nil
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return invalid()
		}
		return n, nil
	}
	return invalid()
}

func toString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	}
	return fmt.Sprint(value)
}

package entity

import (
	"encoding/json"
	"errors"
	"math"
	"strings"
	"testing"
)

func validClientData() map[string]any {
	return map[string]any{
		"Type":           "client",
		"ID":             1,
		"Name":           "John Doe",
		"Phone Number":   "555-1234",
		"Address Line 1": "123 Main St",
		"City":           "New York",
		"State":          "NY",
		"Zip Code":       "10001",
		"Country":        "USA",
	}
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		in   string
		want Kind
	}{
		{"client", KindClient},
		{"Airline", KindAirline},
		{"  FLIGHT ", KindFlight},
	}
	for _, tt := range tests {
		got, err := ParseKind(tt.in)
		if err != nil {
			t.Fatalf("ParseKind(%q) failed: %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseKind(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFromMap_UnknownTypeNamesValue(t *testing.T) {
	for _, typ := range []string{"boat", ""} {
		_, err := FromMap(map[string]any{"Type": typ, "ID": 1})
		if !errors.Is(err, ErrUnknownType) {
			t.Fatalf("FromMap(Type=%q) error = %v, want ErrUnknownType", typ, err)
		}
		var ute *UnknownTypeError
		if !errors.As(err, &ute) || ute.Value != typ {
			t.Errorf("UnknownTypeError value = %+v, want %q", ute, typ)
		}
		if typ != "" && !strings.Contains(err.Error(), typ) {
			t.Errorf("error %q does not name the offending value", err)
		}
	}
}

func TestFromMap_ExternalClient(t *testing.T) {
	rec, err := FromMap(validClientData())
	if err != nil {
		t.Fatalf("FromMap failed: %v", err)
	}
	c, ok := rec.(Client)
	if !ok {
		t.Fatalf("got %T, want Client", rec)
	}
	if c.PhoneNumber != "555-1234" || c.Address1 != "123 Main St" || c.ZipCode != "10001" {
		t.Errorf("external fields not mapped: %+v", c)
	}
	if c.Type != KindClient {
		t.Errorf("Type = %q, want client", c.Type)
	}
}

func TestFromMap_InternalFlightAndTypeForced(t *testing.T) {
	data := map[string]any{
		"ID":        "7",
		"Type":      "FLIGHT",
		"ClientID":  json.Number("1"),
		"AirlineID": 2.0,
		"Date":      "2024-12-15",
		"StartCity": "New York",
		"EndCity":   "London",
	}
	rec, err := FromMapAs(KindFlight, data)
	if err != nil {
		t.Fatalf("FromMapAs failed: %v", err)
	}
	f := rec.(Flight)
	if f.ID != 7 || f.ClientID != 1 || f.AirlineID != 2 {
		t.Errorf("numeric coercion failed: %+v", f)
	}
	if f.Type != KindFlight {
		t.Errorf("Type = %q, want flight", f.Type)
	}
}

func TestFromMapAs_ForcesConstructorKind(t *testing.T) {
	rec, err := FromMapAs(KindAirline, map[string]any{"Type": "client", "Company Name": "Delta"})
	if err != nil {
		t.Fatalf("FromMapAs failed: %v", err)
	}
	a, ok := rec.(Airline)
	if !ok || a.Type != KindAirline || a.CompanyName != "Delta" {
		t.Errorf("got %#v, want airline Delta", rec)
	}
}

func TestFromMap_LegacyFlightReferenceSpelling(t *testing.T) {
	rec, err := FromMapAs(KindFlight, map[string]any{
		"ID": 1, "Client_ID": 3, "Airline_ID": 4, "Date": "2024-12-15", "StartCity": "A", "EndCity": "B",
	})
	if err != nil {
		t.Fatalf("FromMapAs failed: %v", err)
	}
	if f := rec.(Flight); f.ClientID != 3 || f.AirlineID != 4 {
		t.Errorf("references = %d/%d, want 3/4", f.ClientID, f.AirlineID)
	}
}

func TestFromMap_BadNumberFailsConstruction(t *testing.T) {
	tests := []map[string]any{
		{"Type": "client", "ID": "abc"},
		{"Type": "client", "ID": 1.5},
		{"Type": "flight", "ID": 1, "Client_ID": "x", "Start City": "A"},
		{"Type": "airline", "ID": true},
		{"Type": "client", "ID": 1e19},
		{"Type": "client", "ID": -1e19},
		{"Type": "client", "ID": json.Number("1e19")},
		{"Type": "client", "ID": uint(math.MaxUint)},
	}
	for _, data := range tests {
		_, err := FromMap(data)
		if !errors.Is(err, ErrValidation) {
			t.Errorf("FromMap(%v) error = %v, want ErrValidation", data, err)
		}
	}
}

func TestValidate_Client(t *testing.T) {
	base, _ := FromMap(validClientData())
	if err := Validate(base); err != nil {
		t.Fatalf("valid client rejected: %v", err)
	}

	tests := []struct {
		name  string
		edit  func(c *Client)
		field string
	}{
		{"missing name", func(c *Client) { c.Name = "" }, "Name"},
		{"blank phone", func(c *Client) { c.PhoneNumber = "   " }, "PhoneNumber"},
		{"blank city", func(c *Client) { c.City = "\t" }, "City"},
		{"missing country", func(c *Client) { c.Country = "" }, "Country"},
		{"zero id", func(c *Client) { c.ID = 0 }, "ID"},
		{"negative id", func(c *Client) { c.ID = -1 }, "ID"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base.(Client)
			tt.edit(&c)
			err := Validate(c)
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("Validate error = %v, want *ValidationError", err)
			}
			if ve.Field != tt.field {
				t.Errorf("field = %q, want %q", ve.Field, tt.field)
			}
		})
	}
}

func TestValidate_OptionalClientFields(t *testing.T) {
	c := Client{Base: Base{ID: 1, Type: KindClient}, Name: "A", PhoneNumber: "1", City: "B", Country: "C"}
	if err := Validate(c); err != nil {
		t.Errorf("minimal client rejected: %v", err)
	}
}

func TestValidate_Airline(t *testing.T) {
	ok := Airline{Base: Base{ID: 1, Type: KindAirline}, CompanyName: "Delta"}
	if err := Validate(ok); err != nil {
		t.Fatalf("valid airline rejected: %v", err)
	}
	bad := Airline{Base: Base{ID: 1, Type: KindAirline}, CompanyName: "  "}
	err := Validate(bad)
	if !errors.Is(err, ErrValidation) || !strings.Contains(err.Error(), "Company name is required") {
		t.Errorf("Validate = %v, want company name error", err)
	}
}

func TestValidate_Flight(t *testing.T) {
	valid := Flight{
		Base:      Base{ID: 3, Type: KindFlight},
		ClientID:  1,
		AirlineID: 2,
		Date:      "2024-12-15T14:30:00",
		StartCity: "New York",
		EndCity:   "London",
	}
	if err := Validate(valid); err != nil {
		t.Fatalf("valid flight rejected: %v", err)
	}

	tests := []struct {
		name  string
		edit  func(f *Flight)
		field string
	}{
		{"client id", func(f *Flight) { f.ClientID = 0 }, "ClientID"},
		{"airline id", func(f *Flight) { f.AirlineID = -4 }, "AirlineID"},
		{"client id too large", func(f *Flight) { f.ClientID = MaxID + 1 }, "ClientID"},
		{"id too large", func(f *Flight) { f.ID = math.MaxInt }, "ID"},
		{"bad date", func(f *Flight) { f.Date = "15/12/2024" }, "Date"},
		{"empty date", func(f *Flight) { f.Date = "" }, "Date"},
		{"start city", func(f *Flight) { f.StartCity = "" }, "StartCity"},
		{"end city", func(f *Flight) { f.EndCity = " " }, "EndCity"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := valid
			tt.edit(&f)
			var ve *ValidationError
			if err := Validate(f); !errors.As(err, &ve) || ve.Field != tt.field {
				t.Errorf("Validate = %v, want failure on %s", err, tt.field)
			}
		})
	}
}

func TestValidate_TypeMismatch(t *testing.T) {
	c := Client{Base: Base{ID: 1, Type: KindFlight}, Name: "A", PhoneNumber: "1", City: "B", Country: "C"}
	var ve *ValidationError
	if err := Validate(c); !errors.As(err, &ve) || ve.Field != "Type" {
		t.Errorf("Validate = %v, want Type failure", err)
	}
	if err := Validate(Normalize(c)); err != nil {
		t.Errorf("normalized client rejected: %v", err)
	}
}

func TestParseFlightDate(t *testing.T) {
	good := []string{
		"2024-12-15",
		"2024-1-5",
		"2024-12-15T10",
		"2024-12-15T10+02:00",
		"2024-12-15T14:30",
		"2024-12-15T14:30:00",
		"2024-12-15T14:30:00.123",
		"2024-12-15T14:30:00Z",
		"2024-12-15T14:30:00+05:30",
	}
	for _, s := range good {
		if _, err := ParseFlightDate(s); err != nil {
			t.Errorf("ParseFlightDate(%q) failed: %v", s, err)
		}
	}
	bad := []string{"", "2024-13-01", "2024-2-30", "tomorrow", "2024-12-15 14:30", "2024-12-15Tnoon", "2024-1-5T10"}
	for _, s := range bad {
		if _, err := ParseFlightDate(s); err == nil {
			t.Errorf("ParseFlightDate(%q) succeeded, want error", s)
		}
	}
}

func TestToExternal(t *testing.T) {
	f := Flight{Base: Base{ID: 3, Type: KindFlight}, ClientID: 1, AirlineID: 2, Date: "2024-12-15", StartCity: "A", EndCity: "B"}
	got := ToExternal(f)
	want := map[string]any{
		"ID": 3, "Type": "flight", "Client_ID": 1, "Airline_ID": 2,
		"Date": "2024-12-15", "Start City": "A", "End City": "B",
	}
	if len(got) != len(want) {
		t.Fatalf("ToExternal keys = %v, want %v", got, want)
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("ToExternal[%q] = %v, want %v", k, got[k], v)
		}
	}

	back, err := FromMap(got)
	if err != nil {
		t.Fatalf("FromMap(ToExternal) failed: %v", err)
	}
	if back != Record(f) {
		t.Errorf("external round trip = %#v, want %#v", back, f)
	}
}

func TestInternalFieldName(t *testing.T) {
	if got := InternalFieldName(KindClient, "Phone Number"); got != "PhoneNumber" {
		t.Errorf("got %q, want PhoneNumber", got)
	}
	if got := InternalFieldName(KindFlight, "Start City"); got != "StartCity" {
		t.Errorf("got %q, want StartCity", got)
	}
	if got := InternalFieldName(KindAirline, "CompanyName"); got != "CompanyName" {
		t.Errorf("got %q, want CompanyName", got)
	}
	keys := ToInternalKeys(KindClient, map[string]any{"Zip Code": "1", "Extra": 2})
	if keys["ZipCode"] != "1" || keys["Extra"] != 2 {
		t.Errorf("ToInternalKeys = %v", keys)
	}
}

func TestWithID(t *testing.T) {
	a := Airline{Base: Base{ID: 1, Type: KindAirline}, CompanyName: "Delta"}
	b := WithID(a, 9)
	if b.RecordID() != 9 || a.ID != 1 {
		t.Errorf("WithID modified its input or failed: a=%d b=%d", a.ID, b.RecordID())
	}
}

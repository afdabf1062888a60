package entity

// fieldName pairs the internal spelling of a field with the one used at the
// HTTP and file boundary.
type fieldName struct {
	Internal string
	External string
}

var (
	clientFieldNames = []fieldName{
		{"ID", "ID"},
		{"Type", "Type"},
		{"Name", "Name"},
		{"PhoneNumber", "Phone Number"},
		{"Address1", "Address Line 1"},
		{"Address2", "Address Line 2"},
		{"Address3", "Address Line 3"},
		{"City", "City"},
		{"State", "State"},
		{"ZipCode", "Zip Code"},
		{"Country", "Country"},
	}
	airlineFieldNames = []fieldName{
		{"ID", "ID"},
		{"Type", "Type"},
		{"CompanyName", "Company Name"},
	}
	flightFieldNames = []fieldName{
		{"ID", "ID"},
		{"Type", "Type"},
		{"ClientID", "Client_ID"},
		{"AirlineID", "Airline_ID"},
		{"Date", "Date"},
		{"StartCity", "Start City"},
		{"EndCity", "End City"},
	}
)

// A payload is in external shape when it carries the kind's marker key.
var externalMarkers = map[Kind]string{
	KindClient:  "Phone Number",
	KindAirline: "Company Name",
	KindFlight:  "Start City",
}

func fieldNamesFor(kind Kind) []fieldName {
	switch kind {
	case KindClient:
		return clientFieldNames
	case KindAirline:
		return airlineFieldNames
	case KindFlight:
		return flightFieldNames
	}
	return nil
}

// FieldNames lists the internal field names of a kind in declaration order
func FieldNames(kind Kind) []string {
	names := fieldNamesFor(kind)
	out := make([]string, 0, len(names))
	for _, n := range names {
		out = append(out, n.Internal)
	}
	return out
}

// IsExternal reports whether data uses the external field spelling for kind
func IsExternal(kind Kind, data map[string]any) bool {
	marker, ok := externalMarkers[kind]
	if !ok {
		return false
	}
	_, found := data[marker]
	return found
}

// InternalFieldName maps an external field label to its internal name.
// Names that are already internal, or unknown, come back unchanged.
func InternalFieldName(kind Kind, name string) string {
	for _, n := range fieldNamesFor(kind) {
		if n.External == name {
			return n.Internal
		}
	}
	return name
}

// ToInternalKeys renames every external key in data to its internal name.
// Keys the kind does not know are kept as they are.
func ToInternalKeys(kind Kind, data map[string]any) map[string]any {
	out := make(map[string]any, len(data))
	for key, value := range data {
		out[InternalFieldName(kind, key)] = value
	}
	return out
}

// ToExternal renders a record with the external field labels
func ToExternal(r Record) map[string]any {
	fields := r.Fields()
	names := fieldNamesFor(r.RecordKind())
	out := make(map[string]any, len(names))
	for _, n := range names {
		out[n.External] = fields[n.Internal]
	}
	return out
}

// lookupField reads one field from data, preferring the spelling that matches
// the payload's detected shape and falling back to the other one.
func lookupField(kind Kind, data map[string]any, internal string, external bool) any {
	primary, secondary := internal, internal
	for _, n := range fieldNamesFor(kind) {
		if n.Internal == internal {
			primary, secondary = n.Internal, n.External
			break
		}
	}
	if external {
		primary, secondary = secondary, primary
	}
	if v, ok := data[primary]; ok {
		return v
	}
	return data[secondary]
}

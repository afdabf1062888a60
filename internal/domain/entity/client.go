package entity

// Client represents a customer with contact and address details
type Client struct {
	Base
	Name        string `json:"Name" validate:"notblank"`
	PhoneNumber string `json:"PhoneNumber" validate:"notblank"`
	Address1    string `json:"Address1"`
	Address2    string `json:"Address2"`
	Address3    string `json:"Address3"`
	City        string `json:"City" validate:"notblank"`
	State       string `json:"State"`
	ZipCode     string `json:"ZipCode"`
	Country     string `json:"Country" validate:"notblank"`
}

func (c Client) RecordID() int    { return c.ID }
func (c Client) RecordKind() Kind { return KindClient }

func (c Client) Fields() map[string]any {
	return map[string]any{
		"ID":          c.ID,
		"Type":        string(KindClient),
		"Name":        c.Name,
		"PhoneNumber": c.PhoneNumber,
		"Address1":    c.Address1,
		"Address2":    c.Address2,
		"Address3":    c.Address3,
		"City":        c.City,
		"State":       c.State,
		"ZipCode":     c.ZipCode,
		"Country":     c.Country,
	}
}

func (c Client) withBase(base Base) Record {
	c.Base = base
	return c
}

package models

// PlaceDetails is the place data returned by a places provider.
type PlaceDetails struct {
	PlaceID           string             `json:"placeId"`
	Name              string             `json:"name"`
	FormattedAddress  string             `json:"formattedAddress"`
	PhoneNumber       string             `json:"phoneNumber,omitempty"`
	AddressComponents []AddressComponent `json:"addressComponents"`
	OpeningHours      *OpeningHours      `json:"openingHours,omitempty"`
	Photos            []PhotoRef         `json:"photos"`
	MapsURL           string             `json:"mapsUrl,omitempty"`
}

// AddressComponent is one typed part of a postal address (locality, country, ...).
type AddressComponent struct {
	LongName  string   `json:"longName"`
	ShortName string   `json:"shortName"`
	Types     []string `json:"types"`
}

// HasType reports whether the component is tagged with the given type.
func (c AddressComponent) HasType(kind string) bool {
	for _, t := range c.Types {
		if t == kind {
			return true
		}
	}

	return false
}

// OpeningHours describes when a place is open.
type OpeningHours struct {
	OpenNow     *bool    `json:"openNow,omitempty"` // OpenNow is nil when the provider does not know.
	WeekdayText []string `json:"weekdayText"`
}

// PhotoRef references a photo that can be fetched from the provider.
type PhotoRef struct {
	Reference string `json:"reference"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	URL       string `json:"url,omitempty"` // URL is filled in by the API layer.
}

// Photo is binary image data fetched from a provider.
type Photo struct {
	ContentType string
	Data        []byte
}

// Prediction is a single autocomplete suggestion.
type Prediction struct {
	PlaceID       string `json:"placeId"`
	Description   string `json:"description"`
	MainText      string `json:"mainText"`
	SecondaryText string `json:"secondaryText"`
}

package places

import (
	"net/url"
	"strings"

	"github.com/UnknownOlympus/itinera/internal/models"
)

const mapsSearchURL = "https://www.google.com/maps/search/"

// shortAddressTypes are the component types kept in a short address.
var shortAddressTypes = []string{
	"locality",
	"administrative_area_level_3",
	"administrative_area_level_2",
	"administrative_area_level_1",
}

// ShortAddress joins the short names of the locality and administrative area
// components of details with ", ". It falls back to the formatted address when
// none of them is present.
func ShortAddress(details *models.PlaceDetails) string {
	parts := make([]string, 0, len(shortAddressTypes))
	for _, component := range details.AddressComponents {
		for _, kind := range shortAddressTypes {
			if component.HasType(kind) && component.ShortName != "" {
				parts = append(parts, component.ShortName)
				break
			}
		}
	}

	if len(parts) == 0 {
		return details.FormattedAddress
	}

	return strings.Join(parts, ", ")
}

// NewPlaceFromDetails builds the itinerary entry for a place that is being added:
// not visited, unscheduled, without tasks.
func NewPlaceFromDetails(details *models.PlaceDetails) models.Place {
	return models.Place{
		PlaceID:      details.PlaceID,
		Name:         details.Name,
		Visited:      false,
		ShortAddress: ShortAddress(details),
		Tasks:        []models.Task{},
		Schedule:     nil,
	}
}

// MapsURL returns a Google Maps link that opens the place.
func MapsURL(address, placeID string) string {
	query := url.Values{}
	query.Set("api", "1")
	query.Set("query", address)
	if placeID != "" {
		query.Set("query_place_id", placeID)
	}

	return mapsSearchURL + "?" + query.Encode()
}

package places

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/UnknownOlympus/itinera/internal/models"
	"googlemaps.github.io/maps"
)

// GoogleProvider resolves places with the Google Maps Places API.
type GoogleProvider struct {
	client   GoogleAPIClient // client is the Google Maps API client
	language string          // language of returned names and addresses
	log      *slog.Logger    // log is the logger for logging operations
}

// GoogleAPIClient is the subset of *maps.Client used by GoogleProvider.
type GoogleAPIClient interface {
	PlaceAutocomplete(ctx context.Context, r *maps.PlaceAutocompleteRequest) (maps.AutocompleteResponse, error)
	PlaceDetails(ctx context.Context, r *maps.PlaceDetailsRequest) (maps.PlaceDetailsResult, error)
	PlacePhoto(ctx context.Context, r *maps.PlacePhotoRequest) (maps.PlacePhotoResponse, error)
}

// detailFields restricts PlaceDetails to what the detail screen shows.
var detailFields = []maps.PlaceDetailsFieldMask{
	maps.PlaceDetailsFieldMaskPlaceID,
	maps.PlaceDetailsFieldMaskAddressComponent,
	maps.PlaceDetailsFieldMaskFormattedAddress,
	maps.PlaceDetailsFieldMaskFormattedPhoneNumber,
	maps.PlaceDetailsFieldMaskName,
	maps.PlaceDetailsFieldMaskOpeningHours,
	maps.PlaceDetailsFieldMaskPhotos,
}

// NewGoogleProvider wraps a Google Maps client.
func NewGoogleProvider(client GoogleAPIClient, language string, log *slog.Logger) *GoogleProvider {
	return &GoogleProvider{client: client, language: language, log: log}
}

// Autocomplete returns place suggestions for input.
func (gp *GoogleProvider) Autocomplete(ctx context.Context, input string) ([]models.Prediction, error) {
	gp.log.DebugContext(ctx, "Autocomplete using Google Maps", "input", input)

	req := maps.PlaceAutocompleteRequest{Input: input, Language: gp.language}
	resp, err := gp.client.PlaceAutocomplete(ctx, &req)
	if err != nil {
		return nil, fmt.Errorf("failed to autocomplete place: %w", err)
	}

	predictions := make([]models.Prediction, 0, len(resp.Predictions))
	for _, p := range resp.Predictions {
		predictions = append(predictions, models.Prediction{
			PlaceID:       p.PlaceID,
			Description:   p.Description,
			MainText:      p.StructuredFormatting.MainText,
			SecondaryText: p.StructuredFormatting.SecondaryText,
		})
	}

	return predictions, nil
}

// Details fetches the place identified by placeID.
func (gp *GoogleProvider) Details(ctx context.Context, placeID string) (*models.PlaceDetails, error) {
	gp.log.DebugContext(ctx, "Place details using Google Maps", "place_id", placeID)

	req := maps.PlaceDetailsRequest{PlaceID: placeID, Language: gp.language, Fields: detailFields}
	result, err := gp.client.PlaceDetails(ctx, &req)
	if err != nil {
		return nil, fmt.Errorf("failed to get place details: %w", err)
	}

	if result.PlaceID == "" {
		return nil, ErrEmptyResponse
	}

	details := &models.PlaceDetails{
		PlaceID:           result.PlaceID,
		Name:              result.Name,
		FormattedAddress:  result.FormattedAddress,
		PhoneNumber:       result.FormattedPhoneNumber,
		AddressComponents: make([]models.AddressComponent, 0, len(result.AddressComponents)),
		Photos:            make([]models.PhotoRef, 0, len(result.Photos)),
	}

	for _, c := range result.AddressComponents {
		details.AddressComponents = append(details.AddressComponents, models.AddressComponent{
			LongName:  c.LongName,
			ShortName: c.ShortName,
			Types:     c.Types,
		})
	}

	for _, p := range result.Photos {
		details.Photos = append(details.Photos, models.PhotoRef{
			Reference: p.PhotoReference,
			Width:     p.Width,
			Height:    p.Height,
		})
	}

	if result.OpeningHours != nil {
		details.OpeningHours = &models.OpeningHours{
			OpenNow:     result.OpeningHours.OpenNow,
			WeekdayText: result.OpeningHours.WeekdayText,
		}
	}

	details.MapsURL = MapsURL(details.FormattedAddress, details.PlaceID)

	return details, nil
}

// Photo downloads a place photo scaled to fit maxWidth x maxHeight.
func (gp *GoogleProvider) Photo(ctx context.Context, ref string, maxWidth, maxHeight uint) (*models.Photo, error) {
	gp.log.DebugContext(ctx, "Place photo using Google Maps", "width", maxWidth, "height", maxHeight)

	req := maps.PlacePhotoRequest{PhotoReference: ref, MaxWidth: maxWidth, MaxHeight: maxHeight}
	resp, err := gp.client.PlacePhoto(ctx, &req)
	if err != nil {
		return nil, fmt.Errorf("failed to get place photo: %w", err)
	}
	if resp.Data == nil {
		return nil, ErrEmptyResponse
	}
	defer resp.Data.Close()

	data, err := io.ReadAll(resp.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to read place photo: %w", err)
	}

	return &models.Photo{ContentType: resp.ContentType, Data: data}, nil
}

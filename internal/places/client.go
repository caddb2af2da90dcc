package places

import (
	"context"
	"errors"

	"github.com/UnknownOlympus/itinera/internal/models"
)

// Client is an interface that defines the places search operations used by the itinerary.
// Autocomplete returns suggestions for a partial input, Details resolves one place,
// and Photo downloads a photo referenced by Details, scaled to fit the given bounds.
type Client interface {
	Autocomplete(ctx context.Context, input string) ([]models.Prediction, error)
	Details(ctx context.Context, placeID string) (*models.PlaceDetails, error)
	Photo(ctx context.Context, ref string, maxWidth, maxHeight uint) (*models.Photo, error)
}

// Common errors for places clients.
var (
	// ErrEmptyResponse is returned when the provider responds with an empty result.
	ErrEmptyResponse = errors.New("places provider returned empty response")
	// ErrPhotosUnsupported is returned by providers that do not host photos.
	ErrPhotosUnsupported = errors.New("places provider does not serve photos")
	// ErrDisabled is returned by the client of commands that run without a provider.
	ErrDisabled = errors.New("places provider is disabled")
)

type disabled struct{}

// NewDisabled returns a client failing every call with ErrDisabled. It needs no
// credentials, for commands that only read the stored itinerary.
func NewDisabled() Client {
	return disabled{}
}

func (disabled) Autocomplete(context.Context, string) ([]models.Prediction, error) {
	return nil, ErrDisabled
}

func (disabled) Details(context.Context, string) (*models.PlaceDetails, error) {
	return nil, ErrDisabled
}

func (disabled) Photo(context.Context, string, uint, uint) (*models.Photo, error) {
	return nil, ErrDisabled
}

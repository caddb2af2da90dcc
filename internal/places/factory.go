package places

import (
	"errors"
	"fmt"
	"log/slog"

	"googlemaps.github.io/maps"
)

// ClientType represents the type of places provider.
type ClientType string

const (
	// ClientTypeGoogle represents the Google Maps Places API.
	ClientTypeGoogle ClientType = "google"
	// ClientTypeNominatim represents OpenStreetMap Nominatim.
	ClientTypeNominatim ClientType = "nominatim"
)

// ClientConfig holds configuration for creating a places client.
type ClientConfig struct {
	Type      ClientType   // Type of provider to create
	APIKey    string       // API key (used by Google provider)
	RateLimit int          // Rate limit for requests per second (used by Google provider)
	Language  string       // Language of names and addresses in results
	Logger    *slog.Logger // Logger for the provider
}

// NewClient creates a places client based on the provided configuration.
//
// Supported provider types:
// - "google": Google Maps Places API (requires API key)
// - "nominatim": OpenStreetMap Nominatim API (free, no API key required, no photos)
func NewClient(config ClientConfig) (Client, error) {
	switch config.Type {
	case ClientTypeGoogle:
		return newGoogleProvider(config)
	case ClientTypeNominatim:
		return NewNominatimProvider(config.Language, config.Logger), nil
	default:
		return nil, fmt.Errorf("unsupported provider type: %s", config.Type)
	}
}

func newGoogleProvider(config ClientConfig) (Client, error) {
	if config.APIKey == "" {
		return nil, errors.New("API key is required for Google provider")
	}

	clientOpts := []maps.ClientOption{
		maps.WithAPIKey(config.APIKey),
	}

	if config.RateLimit > 0 {
		clientOpts = append(clientOpts, maps.WithRateLimit(config.RateLimit))
	}

	client, err := maps.NewClient(clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Google Maps client: %w", err)
	}

	return NewGoogleProvider(client, config.Language, config.Logger), nil
}

package places

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/UnknownOlympus/itinera/internal/models"
	"golang.org/x/time/rate"
)

// NominatimBaseURL is the public OpenStreetMap Nominatim endpoint.
const NominatimBaseURL = "https://nominatim.openstreetmap.org"

// NominatimProvider implements the Client interface using OpenStreetMap's Nominatim API.
// This is a free service with usage limits (1 request/second for fair use) and it
// hosts no photos.
type NominatimProvider struct {
	client   HTTPClient    // HTTP client for making requests
	baseURL  string        // Base URL for the Nominatim API
	language string        // Preferred language of results
	log      *slog.Logger  // Logger for logging operations
	limiter  *rate.Limiter // Keeps requests within the usage policy
	// userAgent is required by Nominatim usage policy
	userAgent string
}

// HTTPClient defines the interface for making HTTP requests.
// This allows for easy mocking in tests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// nominatimPlace is one element of a Nominatim search or lookup response.
type nominatimPlace struct {
	OSMType     string            `json:"osm_type"`
	OSMID       int64             `json:"osm_id"`
	Name        string            `json:"name"`
	DisplayName string            `json:"display_name"`
	Address     map[string]string `json:"address"`
	ExtraTags   map[string]string `json:"extratags"`
}

// ErrInvalidPlaceID is returned for ids that do not reference an OSM object.
var ErrInvalidPlaceID = errors.New("invalid nominatim place id")

const (
	nominatimTimeout     = 10 * time.Second
	nominatimSuggestions = 5
	nominatimUserAgent   = "Itinera/1.0 (https://github.com/UnknownOlympus/itinera)"
)

// NewNominatimProvider creates a Nominatim client against the public endpoint,
// limited to one request per second.
func NewNominatimProvider(language string, log *slog.Logger) *NominatimProvider {
	return NewNominatimProviderWithClient(
		&http.Client{Timeout: nominatimTimeout},
		rate.NewLimiter(rate.Every(time.Second), 1),
		language,
		log,
	)
}

// NewNominatimProviderWithClient creates a Nominatim provider with a custom HTTP client and limiter.
// Useful for testing with mocked HTTP clients.
func NewNominatimProviderWithClient(
	client HTTPClient,
	limiter *rate.Limiter,
	language string,
	log *slog.Logger,
) *NominatimProvider {
	return &NominatimProvider{
		client:    client,
		baseURL:   NominatimBaseURL,
		language:  language,
		log:       log,
		limiter:   limiter,
		userAgent: nominatimUserAgent,
	}
}

// Autocomplete searches places matching input.
//
// Free-form queries that find nothing are retried with progressively shorter
// variations, dropping trailing comma separated parts:
// "Louvre, Rue de Rivoli, 75001" -> "Louvre, Rue de Rivoli" -> "Louvre".
func (np *NominatimProvider) Autocomplete(ctx context.Context, input string) ([]models.Prediction, error) {
	np.log.DebugContext(ctx, "Autocomplete using Nominatim", "input", input)

	variations := queryFallbacks(input)
	for idx, variation := range variations {
		query := url.Values{}
		query.Set("q", variation)
		query.Set("limit", strconv.Itoa(nominatimSuggestions))

		var results []nominatimPlace
		if err := np.get(ctx, "/search", query, &results); err != nil {
			return nil, err
		}

		if len(results) > 0 {
			if idx > 0 {
				np.log.InfoContext(ctx, "Search matched using fallback query",
					"original", input,
					"fallback", variation,
					"fallback_level", idx)
			}

			predictions := make([]models.Prediction, 0, len(results))
			for _, result := range results {
				predictions = append(predictions, result.prediction())
			}

			return predictions, nil
		}

		np.log.DebugContext(ctx, "Query variation returned no results, trying fallback",
			"variation", variation,
			"fallback_level", idx)
	}

	return []models.Prediction{}, nil
}

// Details looks up one place by its OSM reference ("N123", "W456", "R789").
func (np *NominatimProvider) Details(ctx context.Context, placeID string) (*models.PlaceDetails, error) {
	np.log.DebugContext(ctx, "Place details using Nominatim", "place_id", placeID)

	if !validOSMReference(placeID) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPlaceID, placeID)
	}

	query := url.Values{}
	query.Set("osm_ids", placeID)
	query.Set("extratags", "1")

	var results []nominatimPlace
	if err := np.get(ctx, "/lookup", query, &results); err != nil {
		return nil, err
	}

	if len(results) == 0 {
		return nil, ErrEmptyResponse
	}

	return results[0].details(), nil
}

// Photo is not supported by Nominatim.
func (np *NominatimProvider) Photo(_ context.Context, _ string, _, _ uint) (*models.Photo, error) {
	return nil, ErrPhotosUnsupported
}

func (np *NominatimProvider) get(ctx context.Context, path string, query url.Values, out any) error {
	if err := np.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit exceeded: %w", err)
	}

	reqURL, err := url.Parse(np.baseURL + path)
	if err != nil {
		return fmt.Errorf("failed to parse base URL: %w", err)
	}

	query.Set("format", "jsonv2")
	query.Set("addressdetails", "1")
	if np.language != "" {
		query.Set("accept-language", np.language)
	}
	reqURL.RawQuery = query.Encode()

	np.log.DebugContext(ctx, "Nominatim request URL", "url", reqURL.String())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	// Set required headers per Nominatim usage policy
	req.Header.Set("User-Agent", np.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := np.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute nominatim request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		np.log.ErrorContext(ctx, "Nominatim API error", "status", resp.StatusCode, "body", string(body))
		return fmt.Errorf("nominatim API returned status %d: %s", resp.StatusCode, string(body))
	}

	if err = json.Unmarshal(body, out); err != nil {
		np.log.ErrorContext(ctx, "Failed to parse Nominatim response", "error", err, "body", string(body))
		return fmt.Errorf("failed to decode nominatim response: %w", err)
	}

	return nil
}

// queryFallbacks creates a list of progressively simpler query variations.
func queryFallbacks(input string) []string {
	if input == "" {
		return []string{""}
	}

	seen := make(map[string]bool)
	variations := []string{}

	addVariation := func(v string) {
		if v != "" && !seen[v] {
			seen[v] = true
			variations = append(variations, v)
		}
	}

	addVariation(input)

	parts := strings.Split(input, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	if len(parts) > 1 {
		addVariation(strings.Join(parts[:len(parts)-1], ", "))

		const lenComponents = 2
		if len(parts) > lenComponents {
			addVariation(strings.Join(parts[:len(parts)-2], ", "))
		}

		addVariation(parts[0])
	}

	return variations
}

func validOSMReference(id string) bool {
	if len(id) < 2 || !strings.ContainsRune("NWR", rune(id[0])) {
		return false
	}

	_, err := strconv.ParseUint(id[1:], 10, 64)

	return err == nil
}

func (p nominatimPlace) placeID() string {
	if p.OSMType == "" {
		return ""
	}

	return strings.ToUpper(p.OSMType[:1]) + strconv.FormatInt(p.OSMID, 10)
}

func (p nominatimPlace) displayName() string {
	if p.Name != "" {
		return p.Name
	}

	first, _, _ := strings.Cut(p.DisplayName, ",")

	return first
}

func (p nominatimPlace) prediction() models.Prediction {
	name := p.displayName()
	secondary := strings.TrimPrefix(strings.TrimPrefix(p.DisplayName, name), ", ")

	return models.Prediction{
		PlaceID:       p.placeID(),
		Description:   p.DisplayName,
		MainText:      name,
		SecondaryText: secondary,
	}
}

func (p nominatimPlace) details() *models.PlaceDetails {
	details := &models.PlaceDetails{
		PlaceID:           p.placeID(),
		Name:              p.displayName(),
		FormattedAddress:  p.DisplayName,
		PhoneNumber:       p.ExtraTags["phone"],
		AddressComponents: p.addressComponents(),
		Photos:            []models.PhotoRef{},
	}

	if hours := p.ExtraTags["opening_hours"]; hours != "" {
		details.OpeningHours = &models.OpeningHours{WeekdayText: strings.Split(hours, "; ")}
	}

	details.MapsURL = MapsURL(details.FormattedAddress, "")

	return details
}

// addressComponents maps OSM address keys onto Google style component types.
func (p nominatimPlace) addressComponents() []models.AddressComponent {
	components := []models.AddressComponent{}

	add := func(long, short string, types ...string) {
		if long == "" {
			return
		}
		if short == "" {
			short = long
		}
		components = append(components, models.AddressComponent{LongName: long, ShortName: short, Types: types})
	}

	for _, key := range []string{"city", "town", "village", "hamlet"} {
		if locality := p.Address[key]; locality != "" {
			add(locality, "", "locality", "political")
			break
		}
	}

	add(p.Address["county"], "", "administrative_area_level_2", "political")

	_, stateCode, _ := strings.Cut(p.Address["ISO3166-2-lvl4"], "-")
	add(p.Address["state"], stateCode, "administrative_area_level_1", "political")

	add(p.Address["country"], strings.ToUpper(p.Address["country_code"]), "country", "political")

	return components
}
